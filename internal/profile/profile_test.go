package profile

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dyluth/kashi/internal/imagestore"
	"github.com/dyluth/kashi/internal/listing"
	"github.com/dyluth/kashi/pkg/market"
)

var pngImage = imagestore.Image{Name: "lamp.png", Data: []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")}

func TestValidateText(t *testing.T) {
	tests := []struct {
		text    string
		wantErr string
	}{
		{"Desk lamp", ""},
		{`Lamp, 2 bulbs. "Like new"`, ""},
		{"O'Neil's chair", ""},
		{"   ", "cannot be empty"},
		{"Lamp!", "not allowed"},
		{"שולחן", "not allowed"},
		{"Desk  lamp", "consecutive spaces"},
		{"12345", "must contain letters"},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			err := ValidateText("name", tt.text)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, "name", ve.Field)
			assert.Contains(t, ve.Message, tt.wantErr)
		})
	}
}

func TestListing_Validate(t *testing.T) {
	valid := func() *Listing {
		return &Listing{Name: "Desk lamp", Description: "Warm light", Price: "19.99", Image: pngImage}
	}

	price, err := valid().Validate()
	require.NoError(t, err)
	assert.Equal(t, market.Price(19.99), price)

	tests := []struct {
		name   string
		mutate func(l *Listing)
		field  string
	}{
		{"bad name", func(l *Listing) { l.Name = "!!" }, "name"},
		{"bad description", func(l *Listing) { l.Description = "a  b" }, "description"},
		{"zero price", func(l *Listing) { l.Price = "0" }, "price"},
		{"negative price", func(l *Listing) { l.Price = "-3" }, "price"},
		{"not a number", func(l *Listing) { l.Price = "cheap" }, "price"},
		{"nan", func(l *Listing) { l.Price = "NaN" }, "price"},
		{"gif image", func(l *Listing) { l.Image = imagestore.Image{Name: "a.gif", Data: []byte("GIF89a\x01\x00")} }, "image"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := valid()
			tt.mutate(l)
			_, err := l.Validate()
			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.field, ve.Field)
		})
	}
}

type fakeImages struct {
	folder imagestore.Folder
	err    error
}

func (f *fakeImages) Upload(ctx context.Context, folder imagestore.Folder, img imagestore.Image) (string, error) {
	f.folder = folder
	if f.err != nil {
		return "", f.err
	}
	return "https://cdn.example.com/" + string(folder) + "/x.png", nil
}

type fakeAPI struct {
	mu       sync.Mutex
	created  *market.NewItem
	updated  *market.ProfileAttributes
	profile  *market.Profile
	items    []market.Item
	trades   []market.Trade
	offers   []market.PendingOffer
	pending  []string
	calls    []string
	failWith error
}

func (f *fakeAPI) record(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, name)
}

func (f *fakeAPI) CreateItem(ctx context.Context, item *market.NewItem) error {
	f.created = item
	return f.failWith
}

func (f *fakeAPI) UpdateProfile(ctx context.Context, userID string, attrs market.ProfileAttributes) error {
	f.updated = &attrs
	return f.failWith
}

func (f *fakeAPI) GetProfile(ctx context.Context, userID string) (*market.Profile, error) {
	f.record("profile")
	if f.failWith != nil {
		return nil, f.failWith
	}
	return f.profile, nil
}

func (f *fakeAPI) ListSellerItems(ctx context.Context, sellerID string) ([]market.Item, error) {
	f.record("items")
	return f.items, nil
}

func (f *fakeAPI) AcceptedTrades(ctx context.Context, userID string) ([]market.Trade, error) {
	f.record("trades")
	return f.trades, nil
}

func (f *fakeAPI) PendingOffers(ctx context.Context, sellerID string) ([]market.PendingOffer, error) {
	f.record("offers")
	return f.offers, nil
}

func (f *fakeAPI) BuyerPendingItemIDs(ctx context.Context, buyerID string) ([]string, error) {
	f.record("pending")
	return f.pending, nil
}

func TestPublish(t *testing.T) {
	ctx := context.Background()

	t.Run("uploads image and creates active item", func(t *testing.T) {
		api := &fakeAPI{}
		images := &fakeImages{}
		item, err := Publish(ctx, api, images, "seller-1", &Listing{Name: " Desk lamp ", Description: "Warm light", Price: "20", Image: pngImage})
		require.NoError(t, err)
		assert.Equal(t, imagestore.FolderItems, images.folder)
		assert.Equal(t, api.created, item)
		assert.Equal(t, "Desk lamp", item.Name)
		assert.Equal(t, "seller-1", item.Seller)
		assert.True(t, item.IsActive)
		assert.False(t, item.IsSold)
		assert.Contains(t, item.Image, "images/item-images")
	})

	t.Run("invalid listing is never uploaded", func(t *testing.T) {
		api := &fakeAPI{}
		images := &fakeImages{}
		_, err := Publish(ctx, api, images, "seller-1", &Listing{Name: "x", Description: "y", Price: "0", Image: pngImage})
		require.Error(t, err)
		assert.Empty(t, images.folder)
		assert.Nil(t, api.created)
	})

	t.Run("requires a seller", func(t *testing.T) {
		_, err := Publish(ctx, &fakeAPI{}, &fakeImages{}, "", &Listing{})
		assert.Error(t, err)
	})

	t.Run("upload failure", func(t *testing.T) {
		api := &fakeAPI{}
		_, err := Publish(ctx, api, &fakeImages{err: errors.New("denied")}, "s", &Listing{Name: "Lamp", Description: "Nice", Price: "5", Image: pngImage})
		require.Error(t, err)
		assert.Nil(t, api.created)
	})
}

func TestEdit_Validate(t *testing.T) {
	tests := []struct {
		name  string
		edit  Edit
		field string
	}{
		{"nothing set", Edit{Name: "  "}, "profile"},
		{"name too short", Edit{Name: "A"}, "name"},
		{"name too long", Edit{Name: strings.Repeat("a", 51)}, "name"},
		{"address too short", Edit{Address: "Road"}, "address"},
		{"address too long", Edit{Address: strings.Repeat("a", 201)}, "address"},
		{"phone without plus", Edit{Phone: "0541234567"}, "phone"},
		{"phone leading zero", Edit{Phone: "+0541234567"}, "phone"},
		{"phone too long", Edit{Phone: "+1234567890123456"}, "phone"},
		{"bad photo", Edit{Photo: &imagestore.Image{Name: "a.txt", Data: []byte("text")}}, "photo"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.edit.Validate()
			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.field, ve.Field)
		})
	}

	valid := []Edit{
		{Name: "Al"},
		{Address: "1 Main Street"},
		{Phone: "+972541234567"},
		{Photo: &pngImage},
	}
	for _, e := range valid {
		assert.NoError(t, e.Validate())
	}
}

func TestApply(t *testing.T) {
	ctx := context.Background()

	t.Run("uploads photo and saves set fields", func(t *testing.T) {
		api := &fakeAPI{}
		images := &fakeImages{}
		attrs, err := Apply(ctx, api, images, "u1", &Edit{Name: " Alice ", Photo: &pngImage})
		require.NoError(t, err)
		assert.Equal(t, imagestore.FolderProfiles, images.folder)
		assert.Equal(t, "Alice", attrs.Name)
		assert.Contains(t, attrs.Picture, "images/profile-photos")
		assert.Empty(t, attrs.Address)
		require.NotNil(t, api.updated)
		assert.Equal(t, attrs, *api.updated)
	})

	t.Run("api failure", func(t *testing.T) {
		api := &fakeAPI{failWith: errors.New("boom")}
		_, err := Apply(ctx, api, &fakeImages{}, "u1", &Edit{Phone: "+972541234567"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to update profile")
	})
}

func TestCheckActive(t *testing.T) {
	ctx := context.Background()

	assert.NoError(t, CheckActive(ctx, &fakeAPI{profile: &market.Profile{IsActive: true}}, "u1"))
	assert.ErrorIs(t, CheckActive(ctx, &fakeAPI{profile: &market.Profile{IsActive: false}}, "u1"), ErrDeactivated)

	err := CheckActive(ctx, &fakeAPI{failWith: errors.New("down")}, "u1")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrDeactivated)
}

func TestFormatPhone(t *testing.T) {
	assert.Equal(t, "+972 54-123-4567", FormatPhone("+972541234567"))
	assert.Equal(t, "+15551234", FormatPhone("+15551234"))
	assert.Equal(t, "", FormatPhone(""))
}

func sampleAPI() *fakeAPI {
	return &fakeAPI{
		profile: &market.Profile{
			UserID:       "seller-1",
			Username:     "alice",
			Name:         "Alice Cohen",
			Address:      "1 Main Street",
			PhoneNumber:  "+972541234567",
			CreationDate: market.Timestamp{Time: time.Date(2024, 5, 1, 14, 30, 0, 0, time.UTC)},
			IsActive:     true,
		},
		items: []market.Item{
			{ItemID: "item-0001-aaaa", Name: "Desk lamp", Price: 20, Seller: "seller-1", IsActive: true},
			{ItemID: "item-0002-bbbb", Name: "Hidden chair", Price: 5, Seller: "seller-1", IsActive: false},
			{ItemID: "item-0003-cccc", Name: "Bookshelf", Price: 45, Seller: "seller-1", IsActive: true},
		},
		trades: []market.Trade{
			{TransactionID: "t1", ItemName: "Old sofa", Side: market.TradeSold, OtherUsername: "bob", ItemPrice: 100},
		},
		offers: []market.PendingOffer{
			{TransactionID: "offer-1234-5678", ItemName: "Bookshelf", BuyerName: "carol", ItemPrice: 45},
		},
		pending: []string{"item-0003-cccc"},
	}
}

func TestLoad(t *testing.T) {
	ctx := context.Background()

	t.Run("own profile", func(t *testing.T) {
		api := sampleAPI()
		page, err := Load(ctx, api, "seller-1", "seller-1")
		require.NoError(t, err)
		assert.True(t, page.Own)
		assert.Len(t, page.Items, 2)
		assert.Len(t, page.Trades, 1)
		assert.Len(t, page.Offers, 1)
		assert.ElementsMatch(t, []string{"profile", "items", "trades", "offers"}, api.calls)
	})

	t.Run("someone else's profile", func(t *testing.T) {
		api := sampleAPI()
		page, err := Load(ctx, api, "seller-1", "buyer-1")
		require.NoError(t, err)
		assert.False(t, page.Own)
		assert.Nil(t, page.Trades)
		assert.True(t, page.Pending["item-0003-cccc"])
		assert.ElementsMatch(t, []string{"profile", "items", "pending"}, api.calls)
	})

	t.Run("logged out", func(t *testing.T) {
		api := sampleAPI()
		_, err := Load(ctx, api, "seller-1", "")
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"profile", "items"}, api.calls)
	})

	t.Run("profile failure", func(t *testing.T) {
		api := sampleAPI()
		api.failWith = errors.New("down")
		_, err := Load(ctx, api, "seller-1", "")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to load profile")
	})
}

func TestFormat(t *testing.T) {
	ctx := context.Background()

	t.Run("visitor sees buy labels", func(t *testing.T) {
		page, err := Load(ctx, sampleAPI(), "seller-1", "buyer-1")
		require.NoError(t, err)

		var buf bytes.Buffer
		require.NoError(t, Format(&buf, page))
		out := buf.String()

		assert.Contains(t, out, "User name:     alice")
		assert.Contains(t, out, "Phone Number:  +972 54-123-4567")
		assert.Contains(t, out, "Date Joined:   May 01, 2024, 02:30:00 PM")
		assert.Contains(t, out, "Items in Stock: 2")
		assert.Contains(t, out, listing.LabelBuy)
		assert.Contains(t, out, "("+listing.LabelPending+")")
		assert.NotContains(t, out, "Hidden chair")
		assert.NotContains(t, out, "Transactions")
	})

	t.Run("owner sees history and offers", func(t *testing.T) {
		page, err := Load(ctx, sampleAPI(), "seller-1", "seller-1")
		require.NoError(t, err)

		var buf bytes.Buffer
		require.NoError(t, Format(&buf, page))
		out := buf.String()

		assert.Contains(t, out, "("+listing.LabelOwnListing+")")
		assert.Contains(t, out, "Transactions")
		assert.Contains(t, out, "Old sofa")
		assert.Contains(t, out, "Sold")
		assert.Contains(t, out, "Pending Offers")
		assert.Contains(t, out, "carol")
		assert.Contains(t, out, "offer-12")
	})

	t.Run("owner without activity", func(t *testing.T) {
		api := sampleAPI()
		api.trades, api.offers = nil, nil
		page, err := Load(ctx, api, "seller-1", "seller-1")
		require.NoError(t, err)

		var buf bytes.Buffer
		require.NoError(t, Format(&buf, page))
		assert.Contains(t, buf.String(), "No transactions yet")
		assert.Contains(t, buf.String(), "No pending offers")
	})
}
