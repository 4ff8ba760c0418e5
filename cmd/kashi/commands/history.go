package commands

import (
	"github.com/spf13/cobra"

	"github.com/dyluth/kashi/internal/printer"
	"github.com/dyluth/kashi/internal/profile"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show your completed trades",
	Long: `Show the items you bought and sold through accepted offers.`,
	Args:  cobra.NoArgs,
	RunE:  runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
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

	trades, err := e.client.AcceptedTrades(ctx, viewer)
	if err != nil {
		return printer.APIError("Failed to load trade history", err)
	}
	return profile.FormatTrades(cmd.OutOrStdout(), trades)
}
