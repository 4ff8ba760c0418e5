package commands

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/dyluth/kashi/internal/listing"
	"github.com/dyluth/kashi/internal/printer"
	"github.com/dyluth/kashi/internal/session"
	"github.com/dyluth/kashi/internal/timespec"
)

var (
	itemsOutputFormat string
	itemsSince        string
	itemsUntil        string
	itemsSeller       string
	itemsPage         int
	itemsPageSize     int
	itemsFuzzy        bool
	itemsReset        bool
)

var itemsCmd = &cobra.Command{
	Use:   "items [QUERY]",
	Short: "Browse and search listings",
	Long: `Browse the marketplace listings, newest first.

QUERY matches item names, descriptions and seller usernames, case-insensitively.
When logged in, the last query is remembered and reused when QUERY is omitted;
use --reset to clear it.

Output Formats:
  default - Table with a buy column and page controls
  cards   - One block per item
  jsonl   - Line-delimited JSON, one item per line

Time Filters:
  --since  - Listed at or after this time
  --until  - Listed at or before this time

Examples:
  # Search for lamps
  kashi items lamp

  # Page 2, twenty per page
  kashi items --page 2 --page-size 20

  # Items listed this week as JSONL
  kashi items --since 7d --output jsonl | jq .item_name

  # Fuzzy-ranked search
  kashi items --fuzzy dsk lmp`,
	RunE: runItems,
}

func init() {
	itemsCmd.Flags().StringVarP(&itemsOutputFormat, "output", "o", "default", "Output format: default, cards or jsonl")
	itemsCmd.Flags().StringVar(&itemsSince, "since", "", "Show items listed after time (duration like 7d, date, or RFC3339)")
	itemsCmd.Flags().StringVar(&itemsUntil, "until", "", "Show items listed before time (duration like 7d, date, or RFC3339)")
	itemsCmd.Flags().StringVar(&itemsSeller, "seller", "", "Only show items of this seller (user ID)")
	itemsCmd.Flags().IntVarP(&itemsPage, "page", "p", 1, "Page to show")
	itemsCmd.Flags().IntVar(&itemsPageSize, "page-size", 0, "Items per page (default listing.page_size)")
	itemsCmd.Flags().BoolVar(&itemsFuzzy, "fuzzy", false, "Rank by fuzzy match instead of substring filtering")
	itemsCmd.Flags().BoolVar(&itemsReset, "reset", false, "Clear the remembered search query")

	rootCmd.AddCommand(itemsCmd)
}

func runItems(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	format, err := listing.ParseOutputFormat(itemsOutputFormat)
	if err != nil {
		return printer.Error(
			"invalid output format",
			fmt.Sprintf("Unknown format: %s", itemsOutputFormat),
			[]string{"Valid formats: default, cards, jsonl"},
		)
	}

	since, until, err := timespec.ParseRange(itemsSince, itemsUntil, time.Now())
	if err != nil {
		return printer.Error("invalid time filter", err.Error(), []string{"Examples: --since 7d, --since 2024-05-01, --until 2024-05-31T18:00:00Z"})
	}

	e, err := loadEnv(cmd)
	if err != nil {
		return err
	}
	defer e.close()

	pageSize := itemsPageSize
	if pageSize == 0 {
		pageSize = e.cfg.Listing.PageSize
	}
	if !slices.Contains(e.cfg.Listing.PageSizes, pageSize) && pageSize != e.cfg.Listing.PageSize {
		return printer.Error(
			"invalid page size",
			fmt.Sprintf("Page size %d is not offered.", pageSize),
			[]string{fmt.Sprintf("Valid page sizes: %s", joinInts(e.cfg.Listing.PageSizes))},
		)
	}

	viewer := ""
	if e.session != nil {
		if viewer, err = e.requireViewer(ctx); err != nil {
			return err
		}
	}

	query := strings.TrimSpace(strings.Join(args, " "))
	switch {
	case itemsReset:
		query = ""
		if err := session.SaveQuery(ctx, e.store, ""); err != nil {
			return fmt.Errorf("failed to save search query: %w", err)
		}
	case query != "":
		if err := session.SaveQuery(ctx, e.store, query); err != nil {
			return fmt.Errorf("failed to save search query: %w", err)
		}
	case e.session != nil:
		query = e.session.SearchQuery
	}

	view, err := listing.ListItems(ctx, e.client, &listing.Options{
		Viewer:   viewer,
		Query:    query,
		Fuzzy:    itemsFuzzy,
		PageSize: pageSize,
		Page:     itemsPage,
		Format:   format,
		Filters:  &listing.FilterCriteria{Since: since, Until: until, Seller: itemsSeller},
	}, cmd.OutOrStdout())
	if err != nil {
		return printer.APIError("Failed to load items", err)
	}

	if itemsPage > view.TotalPages() && view.TotalPages() > 0 && format != listing.OutputFormatJSONL {
		printer.Warning("Page %d does not exist; showing page %d\n", itemsPage, view.Page())
	}

	return nil
}

func joinInts(values []int) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = fmt.Sprint(v)
	}
	return strings.Join(parts, ", ")
}
