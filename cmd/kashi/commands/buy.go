package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dyluth/kashi/internal/listing"
	"github.com/dyluth/kashi/internal/offer"
	"github.com/dyluth/kashi/internal/printer"
	"github.com/dyluth/kashi/pkg/market"
)

var buyCmd = &cobra.Command{
	Use:   "buy ITEM_ID",
	Short: "Make an offer on an item at its listed price",
	Long: `Make an offer on an item at its listed price.

ITEM_ID may be shortened to its first 6 or more characters, as shown by
'kashi items'. The seller is emailed about the offer and can accept or reject it.`,
	Args: cobra.ExactArgs(1),
	RunE: runBuy,
}

func init() {
	rootCmd.AddCommand(buyCmd)
}

func runBuy(cmd *cobra.Command, args []string) error {
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

	items, err := e.client.ListItems(ctx)
	if err != nil {
		return printer.APIError("Failed to load items", err)
	}

	ids := make([]string, len(items))
	for i := range items {
		ids[i] = items[i].ItemID
	}
	itemID, err := resolveID("item", args[0], ids, "kashi items")
	if err != nil {
		return err
	}

	var item *market.Item
	for i := range items {
		if items[i].ItemID == itemID {
			item = &items[i]
		}
	}
	if state := listing.BuyControl(item, viewer, nil); item.Seller != viewer && !state.Enabled {
		return printer.ErrorWithContext(
			"item cannot be bought",
			fmt.Sprintf("%s is %s.", item.Name, state.Label),
			map[string]string{"Item": item.ItemID},
			nil,
		)
	}

	notifier, err := e.notifier()
	if err != nil {
		return err
	}

	control := offer.NewControl(listing.LabelBuy)
	res, err := offer.NewBuyer(e.client, notifier).Buy(ctx, viewer, items, itemID, control)
	switch {
	case errors.Is(err, offer.ErrOwnListing):
		return printer.Error("cannot buy your own item", fmt.Sprintf("%s is your listing.", item.Name), nil)
	case errors.Is(err, offer.ErrNotPurchasable):
		return printer.Error("item cannot be bought", fmt.Sprintf("%s is sold or no longer listed.", item.Name), nil)
	case err != nil:
		return printer.APIError("Failed to send offer", err)
	}

	if res.AlreadyExists {
		printer.Warning("You already made an offer on %s: %s\n", item.Name, res.Label)
		return nil
	}

	printer.Success("Offer sent for %s at %s\n", item.Name, item.Price.Display())
	printer.Info("Follow it with: kashi offers watch %s\n", shortID(item.ItemID))
	return nil
}
