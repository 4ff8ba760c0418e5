package listing

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/dyluth/kashi/pkg/market"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	items        []market.Item
	sellerItems  map[string][]market.Item
	pending      []string
	err          error
	pendingErr   error
	pendingCalls int
}

func (f *fakeSource) ListItems(ctx context.Context) ([]market.Item, error) {
	return f.items, f.err
}

func (f *fakeSource) ListSellerItems(ctx context.Context, sellerID string) ([]market.Item, error) {
	return f.sellerItems[sellerID], f.err
}

func (f *fakeSource) BuyerPendingItemIDs(ctx context.Context, buyerID string) ([]string, error) {
	f.pendingCalls++
	return f.pending, f.pendingErr
}

func ts(s string) market.Timestamp {
	t, _ := time.Parse("2006-01-02", s)
	return market.Timestamp{Time: t}
}

func sampleItems() []market.Item {
	return []market.Item{
		{ItemID: "aaaa1111", Name: "Desk Lamp", Description: "Bright lamp", Price: 19.99, Seller: "A", SellerUsername: "alice", IsActive: true, CreationDate: ts("2024-01-10")},
		{ItemID: "bbbb2222", Name: "Chair", Description: "Wood", Price: 40, Seller: "B", SellerUsername: "bob", IsActive: true, CreationDate: ts("2024-02-10")},
		{ItemID: "cccc3333", Name: "Sofa", Description: "Soft", Price: 300, Seller: "C", SellerUsername: "carol", IsActive: true, IsSold: true, CreationDate: ts("2024-03-10")},
		{ItemID: "dddd4444", Name: "Hidden", Description: "Gone", Price: 5, Seller: "C", SellerUsername: "carol", IsActive: false, CreationDate: ts("2024-04-10")},
	}
}

func TestListItems(t *testing.T) {
	ctx := context.Background()

	t.Run("default format shows buy state and pagination", func(t *testing.T) {
		src := &fakeSource{items: sampleItems(), pending: []string{"bbbb2222"}}
		var buf bytes.Buffer

		view, err := ListItems(ctx, src, &Options{Viewer: "A", PageSize: 10}, &buf)
		require.NoError(t, err)

		out := buf.String()
		assert.Contains(t, out, "(Your listing)")
		assert.Contains(t, out, "(Pending)")
		assert.Contains(t, out, "(Sold)")
		assert.NotContains(t, out, "Hidden")
		assert.Contains(t, out, "3 items found (page 1 of 1)")
		assert.Equal(t, 3, len(view.Filtered()))

		// newest first
		assert.Less(t, strings.Index(out, "Sofa"), strings.Index(out, "Desk Lamp"))
	})

	t.Run("empty result shows placeholder", func(t *testing.T) {
		src := &fakeSource{items: sampleItems()}
		var buf bytes.Buffer

		_, err := ListItems(ctx, src, &Options{Query: "piano"}, &buf)
		require.NoError(t, err)
		assert.Contains(t, buf.String(), NoItemsMessage)
	})

	t.Run("logged out viewer skips pending lookup", func(t *testing.T) {
		src := &fakeSource{items: sampleItems()}
		var buf bytes.Buffer

		_, err := ListItems(ctx, src, &Options{}, &buf)
		require.NoError(t, err)
		assert.Equal(t, 0, src.pendingCalls)
		assert.Contains(t, buf.String(), "BUY")
	})

	t.Run("seller filter uses seller endpoint", func(t *testing.T) {
		src := &fakeSource{sellerItems: map[string][]market.Item{"B": {sampleItems()[1]}}}
		var buf bytes.Buffer

		view, err := ListItems(ctx, src, &Options{Filters: &FilterCriteria{Seller: "B"}, Format: OutputFormatJSONL}, &buf)
		require.NoError(t, err)
		require.Len(t, view.Filtered(), 1)

		var item market.Item
		require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &item))
		assert.Equal(t, "bbbb2222", item.ItemID)
	})

	t.Run("date range", func(t *testing.T) {
		src := &fakeSource{items: sampleItems()}
		var buf bytes.Buffer

		filters := &FilterCriteria{Since: ts("2024-02-01").Time, Until: ts("2024-02-28").Time}
		view, err := ListItems(ctx, src, &Options{Filters: filters}, &buf)
		require.NoError(t, err)
		require.Len(t, view.Filtered(), 1)
		assert.Equal(t, "Chair", view.Filtered()[0].Name)
	})

	t.Run("page request is clamped", func(t *testing.T) {
		src := &fakeSource{items: sampleItems()}
		var buf bytes.Buffer

		view, err := ListItems(ctx, src, &Options{PageSize: 2, Page: 9}, &buf)
		require.NoError(t, err)
		assert.Equal(t, 2, view.Page())
	})

	t.Run("fetch error", func(t *testing.T) {
		src := &fakeSource{err: errors.New("boom")}
		_, err := ListItems(ctx, src, &Options{}, &bytes.Buffer{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to fetch items")
	})

	t.Run("pending lookup error", func(t *testing.T) {
		src := &fakeSource{items: sampleItems(), pendingErr: errors.New("boom")}
		_, err := ListItems(ctx, src, &Options{Viewer: "A"}, &bytes.Buffer{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to fetch pending offers")
	})

	t.Run("unknown format", func(t *testing.T) {
		src := &fakeSource{items: sampleItems()}
		_, err := ListItems(ctx, src, &Options{Format: "xml"}, &bytes.Buffer{})
		assert.Error(t, err)
	})
}

func TestFilterCriteria(t *testing.T) {
	items := sampleItems()
	items = append(items, market.Item{ItemID: "undated", IsActive: true})

	t.Run("nil keeps everything", func(t *testing.T) {
		var fc *FilterCriteria
		assert.Len(t, fc.Apply(items), len(items))
	})

	t.Run("since excludes older and undated", func(t *testing.T) {
		fc := &FilterCriteria{Since: ts("2024-03-01").Time}
		got := fc.Apply(items)
		require.Len(t, got, 2)
		assert.Equal(t, "cccc3333", got[0].ItemID)
		assert.Equal(t, "dddd4444", got[1].ItemID)
	})

	t.Run("seller", func(t *testing.T) {
		fc := &FilterCriteria{Seller: "C"}
		assert.Len(t, fc.Apply(items), 2)
	})
}

func TestRank(t *testing.T) {
	items := sampleItems()

	got := Rank(items, "lmp")
	require.NotEmpty(t, got)
	assert.Equal(t, "Desk Lamp", got[0].Name)
	for _, it := range got {
		assert.NotEqual(t, "Hidden", it.Name)
		assert.NotEqual(t, "Chair", it.Name)
	}

	assert.Len(t, Rank(items, ""), 3)
}

func TestParseOutputFormat(t *testing.T) {
	f, err := ParseOutputFormat("")
	require.NoError(t, err)
	assert.Equal(t, OutputFormatDefault, f)

	f, err = ParseOutputFormat("cards")
	require.NoError(t, err)
	assert.Equal(t, OutputFormatCards, f)

	_, err = ParseOutputFormat("yaml")
	assert.Error(t, err)
}

func TestFormatCards(t *testing.T) {
	view := NewView(sampleItems(), 2)
	var buf bytes.Buffer

	n := FormatCards(&buf, &Page{View: view, Viewer: "B"})
	assert.Equal(t, 2, n)
	out := buf.String()
	assert.Contains(t, out, "Sold by: alice")
	assert.Contains(t, out, "Price: $19.99")
	assert.Contains(t, out, "[1] | 2 | Next | Last Page")
}
