package profile

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"
	"golang.org/x/sync/errgroup"

	"github.com/dyluth/kashi/internal/listing"
	"github.com/dyluth/kashi/pkg/market"
)

// ErrDeactivated is returned when the viewer's account has been switched off
// by an administrator.
var ErrDeactivated = errors.New("User Deactivated")

// ProfileGetter reads a user profile.
type ProfileGetter interface {
	GetProfile(ctx context.Context, userID string) (*market.Profile, error)
}

// Client is the part of the API client used to build a profile page.
type Client interface {
	ProfileGetter
	ListSellerItems(ctx context.Context, sellerID string) ([]market.Item, error)
	AcceptedTrades(ctx context.Context, userID string) ([]market.Trade, error)
	PendingOffers(ctx context.Context, sellerID string) ([]market.PendingOffer, error)
	BuyerPendingItemIDs(ctx context.Context, buyerID string) ([]string, error)
}

// CheckActive returns ErrDeactivated if userID's account is inactive.
func CheckActive(ctx context.Context, client ProfileGetter, userID string) error {
	p, err := client.GetProfile(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to load profile: %w", err)
	}
	if !p.IsActive {
		return ErrDeactivated
	}
	return nil
}

// Page is a user's profile as seen by the viewer. Trades and Offers are only
// loaded when the viewer looks at their own profile.
type Page struct {
	Profile *market.Profile
	Items   []market.Item // active listings
	Trades  []market.Trade
	Offers  []market.PendingOffer
	Own     bool
	Viewer  string
	Pending map[string]bool // items the viewer has pending offers on
}

// Load fetches everything shown on userID's profile page concurrently.
func Load(ctx context.Context, client Client, userID, viewer string) (*Page, error) {
	page := &Page{Own: viewer != "" && viewer == userID, Viewer: viewer, Pending: map[string]bool{}}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		p, err := client.GetProfile(gctx, userID)
		if err != nil {
			return fmt.Errorf("failed to load profile: %w", err)
		}
		page.Profile = p
		return nil
	})

	g.Go(func() error {
		items, err := client.ListSellerItems(gctx, userID)
		if err != nil {
			return fmt.Errorf("failed to load listings: %w", err)
		}
		for _, it := range items {
			if it.IsActive {
				page.Items = append(page.Items, it)
			}
		}
		return nil
	})

	if page.Own {
		g.Go(func() error {
			trades, err := client.AcceptedTrades(gctx, userID)
			if err != nil {
				return fmt.Errorf("failed to load trade history: %w", err)
			}
			page.Trades = trades
			return nil
		})
		g.Go(func() error {
			offers, err := client.PendingOffers(gctx, userID)
			if err != nil {
				return fmt.Errorf("failed to load pending offers: %w", err)
			}
			page.Offers = offers
			return nil
		})
	} else if viewer != "" {
		g.Go(func() error {
			ids, err := client.BuyerPendingItemIDs(gctx, viewer)
			if err != nil {
				return fmt.Errorf("failed to load pending offers: %w", err)
			}
			page.Pending = listing.PendingSet(ids)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return page, nil
}

// FormatPhone renders 13-character numbers like +972541234567 as
// "+972 54-123-4567" and returns anything else unchanged.
func FormatPhone(number string) string {
	if len(number) != 13 {
		return number
	}
	return fmt.Sprintf("%s %s-%s-%s", number[:4], number[4:6], number[6:9], number[9:])
}

// JoinedLayout formats the join date, e.g. "May 01, 2024, 02:30:00 PM".
const JoinedLayout = "January 02, 2006, 03:04:05 PM"

// Format writes the profile page.
func Format(w io.Writer, p *Page) error {
	prof := p.Profile
	fmt.Fprintf(w, "User name:     %s\n", prof.Username)
	fmt.Fprintf(w, "Full Name:     %s\n", prof.Name)
	if !prof.CreationDate.IsZero() {
		fmt.Fprintf(w, "Date Joined:   %s\n", prof.CreationDate.Format(JoinedLayout))
	}
	fmt.Fprintf(w, "Address:       %s\n", prof.Address)
	fmt.Fprintf(w, "Phone Number:  %s\n", FormatPhone(prof.PhoneNumber))
	if prof.Picture != "" {
		fmt.Fprintf(w, "Picture:       %s\n", prof.Picture)
	}
	if !prof.IsActive {
		fmt.Fprintln(w, "Status:        deactivated")
	}

	fmt.Fprintf(w, "\nItems in Stock: %d\n", len(p.Items))
	for i := range p.Items {
		it := &p.Items[i]
		state := listing.BuyControl(it, p.Viewer, p.Pending)
		label := state.Label
		if !state.Enabled {
			label = "(" + label + ")"
		}
		fmt.Fprintf(w, "  %-8s %-28s %-10s %s\n", shortID(it.ItemID), it.Name, it.Price.Display(), label)
	}

	if !p.Own {
		return nil
	}

	fmt.Fprintln(w, "\nTransactions")
	if err := FormatTrades(w, p.Trades); err != nil {
		return err
	}

	fmt.Fprintln(w, "\nPending Offers")
	if len(p.Offers) == 0 {
		fmt.Fprintln(w, "No pending offers")
		return nil
	}
	return FormatOffers(w, p.Offers)
}

// FormatTrades writes the accepted trade history.
func FormatTrades(w io.Writer, trades []market.Trade) error {
	if len(trades) == 0 {
		fmt.Fprintln(w, "No transactions yet")
		return nil
	}

	table := tablewriter.NewWriter(w)
	table.Header("Type", "Item", "With", "Price", "Date")
	for i := range trades {
		t := &trades[i]
		kind := "Sold"
		if t.Side == market.TradeBought {
			kind = "Bought"
		}
		if err := table.Append([]string{kind, t.ItemName, t.OtherUsername, t.ItemPrice.Display(), t.TransactionDate.Date()}); err != nil {
			return fmt.Errorf("failed to format transactions table: %w", err)
		}
	}
	if err := table.Render(); err != nil {
		return fmt.Errorf("failed to render transactions table: %w", err)
	}
	return nil
}

// FormatOffers writes the pending offers table.
func FormatOffers(w io.Writer, offers []market.PendingOffer) error {
	table := tablewriter.NewWriter(w)
	table.Header("Offer", "Item", "Buyer", "Price", "Date")
	for i := range offers {
		o := &offers[i]
		if err := table.Append([]string{shortID(o.TransactionID), o.ItemName, o.BuyerName, o.ItemPrice.Display(), o.TransactionDate.Date()}); err != nil {
			return fmt.Errorf("failed to format offers table: %w", err)
		}
	}
	if err := table.Render(); err != nil {
		return fmt.Errorf("failed to render offers table: %w", err)
	}
	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
