package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/dyluth/kashi/internal/offer"
	"github.com/dyluth/kashi/internal/printer"
	"github.com/dyluth/kashi/internal/profile"
	"github.com/dyluth/kashi/internal/watch"
	"github.com/dyluth/kashi/pkg/market"
)

var (
	watchInterval time.Duration
	watchTimeout  time.Duration
)

var offersCmd = &cobra.Command{
	Use:   "offers",
	Short: "Review offers on your items",
	Long: `List the pending offers buyers have made on your items.

Use 'kashi offers accept' or 'kashi offers reject' with an offer ID from the list
to decide. The buyer is emailed about the decision.`,
	Args: cobra.NoArgs,
	RunE: runOffersList,
}

var offersAcceptCmd = &cobra.Command{
	Use:   "accept OFFER_ID",
	Short: "Accept a pending offer",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDecide(cmd, args[0], market.StatusAccepted)
	},
}

var offersRejectCmd = &cobra.Command{
	Use:   "reject OFFER_ID",
	Short: "Reject a pending offer",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDecide(cmd, args[0], market.StatusRejected)
	},
}

var offersWatchCmd = &cobra.Command{
	Use:   "watch ITEM_ID",
	Short: "Wait for the seller to decide your offer on an item",
	Long: `Wait until the seller accepts or rejects your pending offer on ITEM_ID.

Examples:
  kashi offers watch 3f9a1c
  kashi offers watch 3f9a1c --interval 10s --timeout 30m`,
	Args: cobra.ExactArgs(1),
	RunE: runOffersWatch,
}

func init() {
	offersWatchCmd.Flags().DurationVar(&watchInterval, "interval", watch.DefaultInterval, "How often to check")
	offersWatchCmd.Flags().DurationVar(&watchTimeout, "timeout", 0, "Give up after this long (0 waits forever)")

	offersCmd.AddCommand(offersAcceptCmd)
	offersCmd.AddCommand(offersRejectCmd)
	offersCmd.AddCommand(offersWatchCmd)
	rootCmd.AddCommand(offersCmd)
}

func runOffersList(cmd *cobra.Command, args []string) error {
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

	offers, err := offer.NewSeller(e.client, nil).Pending(ctx, viewer)
	if err != nil {
		return printer.APIError("Failed to load pending offers", err)
	}

	if len(offers) == 0 {
		printer.Info("No pending offers\n")
		return nil
	}
	return profile.FormatOffers(cmd.OutOrStdout(), offers)
}

func runDecide(cmd *cobra.Command, shortOfferID string, decision market.Status) error {
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

	notifier, err := e.notifier()
	if err != nil {
		return err
	}
	seller := offer.NewSeller(e.client, notifier)

	offers, err := seller.Pending(ctx, viewer)
	if err != nil {
		return printer.APIError("Failed to load pending offers", err)
	}

	ids := make([]string, len(offers))
	for i := range offers {
		ids[i] = offers[i].TransactionID
	}
	offerID, err := resolveID("offer", shortOfferID, ids, "kashi offers")
	if err != nil {
		return err
	}

	var target *market.PendingOffer
	for i := range offers {
		if offers[i].TransactionID == offerID {
			target = &offers[i]
		}
	}

	res, err := seller.Decide(ctx, viewer, target, decision, offer.NewDecisionControls())
	if err != nil {
		return printer.APIError(fmt.Sprintf("Failed to %s offer", verbFor(decision)), err)
	}

	printer.Success("Offer from %s on %s %s\n", target.BuyerName, target.ItemName, res.Decision)
	if res.NotifyErr != nil {
		printer.Warning("The buyer could not be emailed: %v\n", res.NotifyErr)
	}
	if res.RefreshErr != nil {
		printer.Warning("Could not refresh pending offers: %v\n", res.RefreshErr)
		return nil
	}
	if len(res.Pending) > 0 {
		printer.Info("%d offer(s) still pending\n", len(res.Pending))
	}
	return nil
}

func verbFor(decision market.Status) string {
	if decision == market.StatusAccepted {
		return "accept"
	}
	return "reject"
}

func runOffersWatch(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	if watchInterval <= 0 {
		return printer.Error("invalid interval", "--interval must be positive.", nil)
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

	pendingIDs, err := e.client.BuyerPendingItemIDs(ctx, viewer)
	if err != nil {
		return printer.APIError("Failed to load your pending offers", err)
	}
	itemID, err := resolveID("item", args[0], pendingIDs, "kashi items")
	if err != nil {
		return err
	}

	printer.Step("Waiting for the seller to decide on %s...\n", shortID(itemID))

	status, err := watch.PollForDecision(ctx, e.client, viewer, itemID, watchInterval, watchTimeout)
	switch {
	case errors.Is(err, watch.ErrNoPendingOffer):
		return printer.Error("no pending offer", "You have no pending offer on that item.", []string{"Make one:\n  kashi buy " + shortID(itemID)})
	case errors.Is(err, watch.ErrTimeout):
		return printer.Error("timed out", fmt.Sprintf("No decision within %s.", watchTimeout), nil)
	case errors.Is(err, context.Canceled):
		return nil
	case err != nil:
		return printer.APIError("Failed to watch offer", err)
	}

	if status == market.StatusAccepted {
		printer.Success("Your offer was accepted\n")
	} else {
		printer.Warning("Your offer was rejected\n")
	}
	return nil
}
