package listing

import (
	"strings"
	"time"

	"github.com/dyluth/kashi/pkg/market"
	"github.com/sahilm/fuzzy"
)

// Filter returns the active items whose name, description or seller username
// contains query, case-insensitively. An empty query keeps every active item.
// Order is preserved.
func Filter(items []market.Item, query string) []market.Item {
	q := strings.ToLower(query)

	out := make([]market.Item, 0, len(items))
	for _, item := range items {
		if !item.IsActive {
			continue
		}
		if q == "" || matchesQuery(&item, q) {
			out = append(out, item)
		}
	}
	return out
}

func matchesQuery(item *market.Item, q string) bool {
	return strings.Contains(strings.ToLower(item.Name), q) ||
		strings.Contains(strings.ToLower(item.Description), q) ||
		strings.Contains(strings.ToLower(item.SellerUsername), q)
}

// FilterCriteria narrows a listing beyond the search query.
// All filters are ANDed together.
type FilterCriteria struct {
	Since  time.Time // zero = no lower bound on creation date
	Until  time.Time // zero = no upper bound on creation date
	Seller string    // exact seller userID, empty = no filter
}

// matchesFilter returns true if the item matches all filter criteria.
// Items without a creation date never match a date range.
func (fc *FilterCriteria) matchesFilter(item *market.Item) bool {
	if !fc.Since.IsZero() || !fc.Until.IsZero() {
		if item.CreationDate.IsZero() {
			return false
		}
		if !fc.Since.IsZero() && item.CreationDate.Before(fc.Since) {
			return false
		}
		if !fc.Until.IsZero() && item.CreationDate.After(fc.Until) {
			return false
		}
	}

	if fc.Seller != "" && item.Seller != fc.Seller {
		return false
	}

	return true
}

// Apply returns the items matching the criteria. A nil receiver keeps everything.
func (fc *FilterCriteria) Apply(items []market.Item) []market.Item {
	if fc == nil {
		return items
	}
	out := make([]market.Item, 0, len(items))
	for i := range items {
		if fc.matchesFilter(&items[i]) {
			out = append(out, items[i])
		}
	}
	return out
}

// searchItems implements fuzzy.Source over name, description and seller.
type searchItems []market.Item

func (s searchItems) Len() int { return len(s) }

func (s searchItems) String(i int) string {
	return strings.ToLower(s[i].Name + " " + s[i].SellerUsername + " " + s[i].Description)
}

// Rank orders the active items by fuzzy relevance to query, best first.
// Items that do not match at all are dropped. An empty query behaves like Filter.
func Rank(items []market.Item, query string) []market.Item {
	q := strings.ToLower(query)
	active := Filter(items, "")
	if q == "" {
		return active
	}

	matches := fuzzy.FindFrom(q, searchItems(active))
	out := make([]market.Item, len(matches))
	for i, m := range matches {
		out[i] = active[m.Index]
	}
	return out
}
