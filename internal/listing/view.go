package listing

import (
	"fmt"
	"strconv"

	"github.com/dyluth/kashi/pkg/market"
)

// DefaultPageSize is used when a view is created with a non-positive size.
const DefaultPageSize = 10

// NoItemsMessage is shown instead of an empty page.
const NoItemsMessage = "No items match your search criteria."

// View is the paginated, filtered state of the item listing.
// SetQuery and SetPageSize reset the current page to 1.
type View struct {
	items    []market.Item
	filtered []market.Item
	query    string
	pageSize int
	page     int
	fuzzy    bool
}

// NewView creates a view over items with an empty query on page 1.
func NewView(items []market.Item, pageSize int) *View {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	v := &View{items: items, pageSize: pageSize, page: 1}
	v.refilter()
	return v
}

// SetQuery changes the search query and returns to page 1.
func (v *View) SetQuery(query string) {
	v.query = query
	v.refilter()
	v.page = 1
}

// SetFuzzy switches between substring filtering and fuzzy ranking, returning to page 1.
func (v *View) SetFuzzy(enabled bool) {
	v.fuzzy = enabled
	v.refilter()
	v.page = 1
}

// SetPageSize changes the page size and returns to page 1.
func (v *View) SetPageSize(size int) error {
	if size <= 0 {
		return fmt.Errorf("invalid page size %d: must be positive", size)
	}
	v.pageSize = size
	v.page = 1
	return nil
}

// GoTo moves to page p, clamped into [1, TotalPages].
func (v *View) GoTo(p int) {
	total := v.TotalPages()
	if p > total {
		p = total
	}
	if p < 1 {
		p = 1
	}
	v.page = p
}

func (v *View) refilter() {
	if v.fuzzy {
		v.filtered = Rank(v.items, v.query)
		return
	}
	v.filtered = Filter(v.items, v.query)
}

// Query returns the current search query.
func (v *View) Query() string { return v.query }

// Page returns the current page, starting at 1.
func (v *View) Page() int { return v.page }

// PageSize returns the number of items per page.
func (v *View) PageSize() int { return v.pageSize }

// Filtered returns every item matching the query, across all pages.
func (v *View) Filtered() []market.Item { return v.filtered }

// TotalPages returns ceil(N/P) for N filtered items. Zero when nothing matches.
func (v *View) TotalPages() int {
	return (len(v.filtered) + v.pageSize - 1) / v.pageSize
}

// PageItems returns the filtered items on the current page.
func (v *View) PageItems() []market.Item {
	start := (v.page - 1) * v.pageSize
	if start >= len(v.filtered) {
		return nil
	}
	end := start + v.pageSize
	if end > len(v.filtered) {
		end = len(v.filtered)
	}
	return v.filtered[start:end]
}

// Empty reports whether the placeholder should replace the page.
func (v *View) Empty() bool {
	return len(v.filtered) == 0
}

// Control is a pagination button.
type Control struct {
	Label    string
	Page     int
	Disabled bool
}

// Controls returns the pagination controls for the current state:
// First Page, Previous (when not on page 1), one per page, Next (when not on
// the last page) and Last Page. A control targeting the current page is disabled.
func (v *View) Controls() []Control {
	total := v.TotalPages()
	last := total
	if last < 1 {
		last = 1
	}

	mk := func(label string, page int) Control {
		return Control{Label: label, Page: page, Disabled: page == v.page}
	}

	controls := []Control{mk("First Page", 1)}
	if v.page > 1 {
		controls = append(controls, mk("Previous", v.page-1))
	}
	for i := 1; i <= total; i++ {
		controls = append(controls, mk(strconv.Itoa(i), i))
	}
	if v.page < total {
		controls = append(controls, mk("Next", v.page+1))
	}
	controls = append(controls, mk("Last Page", last))
	return controls
}

// Buy control labels.
const (
	LabelBuy         = "BUY"
	LabelOwnListing  = "Your listing"
	LabelPending     = "Pending"
	LabelRejected    = "Rejected"
	LabelSold        = "Sold"
	LabelUnavailable = "Unavailable"
)

// BuyState is the label and enabled state of an item's buy control.
type BuyState struct {
	Label   string
	Enabled bool
}

// BuyControl computes the buy control for item as seen by viewer.
// pending holds the IDs of items the viewer already has a pending offer on.
// Own listings take precedence over pending offers.
func BuyControl(item *market.Item, viewer string, pending map[string]bool) BuyState {
	switch {
	case viewer != "" && item.Seller == viewer:
		return BuyState{Label: LabelOwnListing}
	case pending[item.ItemID]:
		return BuyState{Label: LabelPending}
	case bool(item.IsSold):
		return BuyState{Label: LabelSold}
	case !bool(item.IsActive):
		return BuyState{Label: LabelUnavailable}
	default:
		return BuyState{Label: LabelBuy, Enabled: true}
	}
}

// PendingSet converts a list of item IDs into a lookup set.
func PendingSet(ids []string) map[string]bool {
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}
