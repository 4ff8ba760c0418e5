package admin

import (
	"fmt"
	"io"
	"strconv"

	"github.com/dyluth/kashi/pkg/market"
	"github.com/olekukonko/tablewriter"
)

// FormatStats writes the statistics summary.
func FormatStats(w io.Writer, s *market.Statistics) {
	fmt.Fprintf(w, "Total items:  %d\n", s.TotalItems)
	fmt.Fprintf(w, "Total users:  %d\n", s.TotalUsers)
	if s.UserWithMostItems.Username != "" {
		fmt.Fprintf(w, "Top seller:   %s (%d items)\n", s.UserWithMostItems.Username, s.UserWithMostItems.ItemCount)
	} else {
		fmt.Fprintf(w, "Top seller:   -\n")
	}
	if s.UserWithMostPurchases.Username != "" {
		fmt.Fprintf(w, "Top buyer:    %s (%d purchases)\n", s.UserWithMostPurchases.Username, s.UserWithMostPurchases.PurchaseCount)
	} else {
		fmt.Fprintf(w, "Top buyer:    -\n")
	}
}

// FormatUsers writes the users table.
func FormatUsers(w io.Writer, users []market.AdminUser) error {
	if len(users) == 0 {
		fmt.Fprintln(w, "No users found")
		return nil
	}

	table := tablewriter.NewWriter(w)
	table.Header("ID", "Username", "Name", "Phone", "Items", "Joined", "Active")
	for i := range users {
		u := &users[i]
		row := []string{
			shortID(u.ID),
			dash(u.Username),
			dash(u.FullName),
			dash(u.PhoneNumber),
			strconv.Itoa(u.ItemsForSale),
			u.JoinDate.Date(),
			switchState(UserSwitch(u)),
		}
		if err := table.Append(row); err != nil {
			return fmt.Errorf("failed to format users table: %w", err)
		}
	}
	if err := table.Render(); err != nil {
		return fmt.Errorf("failed to render users table: %w", err)
	}
	return nil
}

// FormatItems writes the items table.
func FormatItems(w io.Writer, items []market.AdminItem) error {
	if len(items) == 0 {
		fmt.Fprintln(w, "No items found")
		return nil
	}

	table := tablewriter.NewWriter(w)
	table.Header("ID", "Name", "Price", "Seller", "Sold", "Active")
	for i := range items {
		it := &items[i]
		sold := "no"
		if it.IsSold {
			sold = "yes"
		}
		row := []string{
			shortID(it.ItemID),
			dash(it.Name),
			it.Price.Display(),
			dash(it.PosterUsername),
			sold,
			switchState(ItemSwitch(it)),
		}
		if err := table.Append(row); err != nil {
			return fmt.Errorf("failed to format items table: %w", err)
		}
	}
	if err := table.Render(); err != nil {
		return fmt.Errorf("failed to render items table: %w", err)
	}
	return nil
}

// switchState renders a switch as shown in the tables.
func switchState(sw *Switch) string {
	state := "off"
	if sw.On {
		state = "on"
	}
	if sw.Locked {
		state += " (locked)"
	}
	return state
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
