package listing

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/dyluth/kashi/pkg/market"
)

// OutputFormat specifies how to format the item listing.
type OutputFormat string

const (
	// OutputFormatDefault uses a table with truncated descriptions
	OutputFormatDefault OutputFormat = "default"

	// OutputFormatCards prints one block per item, like the storefront cards
	OutputFormatCards OutputFormat = "cards"

	// OutputFormatJSONL outputs complete items as line-delimited JSON
	OutputFormatJSONL OutputFormat = "jsonl"
)

// ParseOutputFormat validates a --output value.
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch OutputFormat(s) {
	case OutputFormatDefault, OutputFormatCards, OutputFormatJSONL:
		return OutputFormat(s), nil
	case "":
		return OutputFormatDefault, nil
	default:
		return "", fmt.Errorf("unknown output format: %s (must be default, cards or jsonl)", s)
	}
}

// Page is everything needed to render one page of the listing.
type Page struct {
	View    *View
	Viewer  string
	Pending map[string]bool
}

// FormatTable writes the current page as a table followed by the pagination bar.
// Returns the number of items written.
func FormatTable(w io.Writer, p *Page) int {
	if p.View.Empty() {
		fmt.Fprintln(w, NoItemsMessage)
		return 0
	}

	items := p.View.PageItems()

	fmt.Fprintf(w, "%-10s %-24s %-10s %-14s %-12s %s\n",
		"ID", "NAME", "PRICE", "SELLER", "BUY", "DESCRIPTION")
	fmt.Fprintf(w, "%-10s %-24s %-10s %-14s %-12s %s\n",
		"----------", "------------------------", "----------", "--------------", "------------", "----------------------------------------")

	for i := range items {
		item := &items[i]
		state := BuyControl(item, p.Viewer, p.Pending)
		fmt.Fprintf(w, "%-10s %-24s %-10s %-14s %-12s %s\n",
			formatID(item.ItemID),
			truncate(item.Name, 24),
			item.Price.Display(),
			formatSeller(item.SellerUsername),
			formatBuy(state),
			formatDescription(item.Description),
		)
	}

	fmt.Fprintln(w)
	FormatControls(w, p.View)

	countMsg := "item"
	if len(p.View.Filtered()) != 1 {
		countMsg = "items"
	}
	fmt.Fprintf(w, "\n%d %s found (page %d of %d)\n", len(p.View.Filtered()), countMsg, p.View.Page(), p.View.TotalPages())

	return len(items)
}

// FormatCards writes the current page as item cards.
func FormatCards(w io.Writer, p *Page) int {
	if p.View.Empty() {
		fmt.Fprintln(w, NoItemsMessage)
		return 0
	}

	items := p.View.PageItems()
	for i := range items {
		item := &items[i]
		state := BuyControl(item, p.Viewer, p.Pending)

		fmt.Fprintf(w, "┌ %s\n", item.Name)
		if item.Description != "" {
			fmt.Fprintf(w, "│ %s\n", item.Description)
		}
		fmt.Fprintf(w, "│ Sold by: %s\n", formatSeller(item.SellerUsername))
		fmt.Fprintf(w, "│ Price: %s\n", item.Price.Display())
		if item.Image != "" {
			fmt.Fprintf(w, "│ Image: %s\n", item.Image)
		}
		fmt.Fprintf(w, "└ %s  (id %s)\n\n", formatBuy(state), formatID(item.ItemID))
	}

	FormatControls(w, p.View)
	return len(items)
}

// FormatControls writes the pagination bar. The current page is bracketed;
// other disabled controls are omitted.
func FormatControls(w io.Writer, v *View) {
	parts := make([]string, 0, v.TotalPages()+4)
	for _, c := range v.Controls() {
		if c.Disabled {
			if c.Page == v.Page() && isNumber(c.Label) {
				parts = append(parts, "["+c.Label+"]")
			}
			continue
		}
		parts = append(parts, c.Label)
	}
	fmt.Fprintln(w, strings.Join(parts, " | "))
}

// FormatJSONL writes items as line-delimited JSON.
func FormatJSONL(w io.Writer, items []market.Item) error {
	for _, item := range items {
		data, err := json.Marshal(item)
		if err != nil {
			return fmt.Errorf("failed to marshal item to JSON: %w", err)
		}

		_, err = fmt.Fprintf(w, "%s\n", string(data))
		if err != nil {
			return fmt.Errorf("failed to write JSONL output: %w", err)
		}
	}

	return nil
}

// FormatSingleJSON writes a single value as pretty-printed JSON.
func FormatSingleJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal to JSON: %w", err)
	}

	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to write JSON output: %w", err)
	}
	fmt.Fprintln(w)

	return nil
}

// formatID truncates an ID to its first 8 characters.
func formatID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func formatSeller(username string) string {
	if username == "" {
		return "-"
	}
	return truncate(username, 14)
}

func formatBuy(state BuyState) string {
	if state.Enabled {
		return state.Label
	}
	return "(" + state.Label + ")"
}

// formatDescription keeps the first non-empty line, max 40 characters.
func formatDescription(desc string) string {
	for _, line := range strings.Split(desc, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			return truncate(trimmed, 40)
		}
	}
	return "-"
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) > max {
		return string(r[:max-3]) + "..."
	}
	return s
}

func isNumber(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
