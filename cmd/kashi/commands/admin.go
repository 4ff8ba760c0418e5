package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dyluth/kashi/internal/admin"
	"github.com/dyluth/kashi/internal/printer"
)

var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Administrator dashboard",
	Long: `Administrator dashboard: marketplace statistics, all users and all items.

Without a subcommand everything is shown. Only administrators may use it.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAdminShow(cmd, admin.SectionAll)
	},
}

var adminStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show marketplace statistics",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAdminShow(cmd, admin.SectionStats)
	},
}

var adminUsersCmd = &cobra.Command{
	Use:   "users",
	Short: "List all users",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAdminShow(cmd, admin.SectionUsers)
	},
}

var adminItemsCmd = &cobra.Command{
	Use:   "items",
	Short: "List all items, including inactive and sold ones",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAdminShow(cmd, admin.SectionItems)
	},
}

var adminToggleCmd = &cobra.Command{
	Use:   "toggle user|item ID",
	Short: "Activate or deactivate a user or item",
	Long: `Flip the active flag of a user or an item.

Deactivated users cannot use the marketplace; deactivated items are hidden from
the listing. Sold items cannot be toggled.

Examples:
  kashi admin toggle user 9b2e4d
  kashi admin toggle item 3f9a1c`,
	Args:      cobra.ExactArgs(2),
	ValidArgs: []string{string(admin.TargetUser), string(admin.TargetItem)},
	RunE:      runAdminToggle,
}

func init() {
	adminCmd.AddCommand(adminStatsCmd)
	adminCmd.AddCommand(adminUsersCmd)
	adminCmd.AddCommand(adminItemsCmd)
	adminCmd.AddCommand(adminToggleCmd)
	rootCmd.AddCommand(adminCmd)
}

func runAdminShow(cmd *cobra.Command, sections admin.Section) error {
	ctx := cmd.Context()

	e, err := loadEnv(cmd)
	if err != nil {
		return err
	}
	defer e.close()

	viewer, err := e.requireViewer(ctx)
	if err != nil {
		return err
	}

	d, err := admin.LoadDashboard(ctx, e.client, viewer, sections)
	if err != nil {
		return adminErr("Failed to load dashboard", err)
	}

	w := cmd.OutOrStdout()
	if d.Stats != nil {
		admin.FormatStats(w, d.Stats)
	}
	if sections&admin.SectionUsers != 0 {
		if sections != admin.SectionUsers {
			fmt.Fprintln(w, "\nUsers")
		}
		if err := admin.FormatUsers(w, d.Users); err != nil {
			return err
		}
	}
	if sections&admin.SectionItems != 0 {
		if sections != admin.SectionItems {
			fmt.Fprintln(w, "\nItems")
		}
		if err := admin.FormatItems(w, d.Items); err != nil {
			return err
		}
	}
	return nil
}

func runAdminToggle(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	target := admin.Target(args[0])
	if target != admin.TargetUser && target != admin.TargetItem {
		return printer.Error(
			"invalid toggle target",
			fmt.Sprintf("Unknown target: %s", args[0]),
			[]string{"Valid targets: user, item"},
		)
	}

	e, err := loadEnv(cmd)
	if err != nil {
		return err
	}
	defer e.close()

	viewer, err := e.requireViewer(ctx)
	if err != nil {
		return err
	}

	section := admin.SectionUsers
	if target == admin.TargetItem {
		section = admin.SectionItems
	}
	d, err := admin.LoadDashboard(ctx, e.client, viewer, section)
	if err != nil {
		return adminErr("Failed to load dashboard", err)
	}

	var (
		sw   *admin.Switch
		name string
	)
	if target == admin.TargetUser {
		ids := make([]string, len(d.Users))
		for i := range d.Users {
			ids[i] = d.Users[i].ID
		}
		id, err := resolveID("user", args[1], ids, "kashi admin users")
		if err != nil {
			return err
		}
		u := d.FindUser(id)
		sw, name = admin.UserSwitch(u), u.Username
	} else {
		ids := make([]string, len(d.Items))
		for i := range d.Items {
			ids[i] = d.Items[i].ItemID
		}
		id, err := resolveID("item", args[1], ids, "kashi admin items")
		if err != nil {
			return err
		}
		it := d.FindItem(id)
		sw, name = admin.ItemSwitch(it), it.Name
	}

	if _, err := admin.Toggle(ctx, e.client, sw); err != nil {
		return adminErr(fmt.Sprintf("Failed to toggle %s", target), err)
	}

	state := "deactivated"
	if sw.On {
		state = "activated"
	}
	printer.Success("%s %s %s\n", target, name, state)
	return nil
}

func adminErr(action string, err error) error {
	switch {
	case errors.Is(err, admin.ErrNotAdmin):
		return printer.Error("administrator access required", "Your account is not an administrator.", nil)
	case errors.Is(err, admin.ErrLocked):
		return printer.Error("item is sold", "Sold items cannot be activated or deactivated.", nil)
	}
	return printer.APIError(action, err)
}
