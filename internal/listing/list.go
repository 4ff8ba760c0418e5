package listing

import (
	"context"
	"fmt"
	"io"
	"sort"

	"github.com/dyluth/kashi/pkg/market"
)

// Source is the part of the API client the listing reads from.
type Source interface {
	ListItems(ctx context.Context) ([]market.Item, error)
	ListSellerItems(ctx context.Context, sellerID string) ([]market.Item, error)
	BuyerPendingItemIDs(ctx context.Context, buyerID string) ([]string, error)
}

// Options controls one rendering of the listing.
type Options struct {
	Viewer   string // userID of the viewer, empty when logged out
	Query    string
	Fuzzy    bool
	PageSize int
	Page     int
	Format   OutputFormat
	Filters  *FilterCriteria
}

// ListItems fetches the listing, applies the query and filters, and writes the
// requested page to w. When Filters.Seller is set only that seller's items are fetched.
// Items are shown newest first unless fuzzy ranking is on.
func ListItems(ctx context.Context, src Source, opts *Options, w io.Writer) (*View, error) {
	var (
		items []market.Item
		err   error
	)
	if opts.Filters != nil && opts.Filters.Seller != "" {
		items, err = src.ListSellerItems(ctx, opts.Filters.Seller)
	} else {
		items, err = src.ListItems(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch items: %w", err)
	}

	items = opts.Filters.Apply(items)

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].CreationDate.After(items[j].CreationDate.Time)
	})

	pending := map[string]bool{}
	if opts.Viewer != "" {
		ids, err := src.BuyerPendingItemIDs(ctx, opts.Viewer)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch pending offers: %w", err)
		}
		pending = PendingSet(ids)
	}

	view := NewView(items, opts.PageSize)
	view.SetFuzzy(opts.Fuzzy)
	view.SetQuery(opts.Query)
	if opts.Page > 0 {
		view.GoTo(opts.Page)
	}

	page := &Page{View: view, Viewer: opts.Viewer, Pending: pending}

	switch opts.Format {
	case OutputFormatDefault, "":
		FormatTable(w, page)
	case OutputFormatCards:
		FormatCards(w, page)
	case OutputFormatJSONL:
		if err := FormatJSONL(w, view.PageItems()); err != nil {
			return nil, fmt.Errorf("failed to format JSONL output: %w", err)
		}
	default:
		return nil, fmt.Errorf("unknown output format: %s", opts.Format)
	}

	return view, nil
}
