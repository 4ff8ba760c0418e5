package commands

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/dyluth/kashi/internal/imagestore"
	"github.com/dyluth/kashi/internal/printer"
	"github.com/dyluth/kashi/internal/profile"
)

var (
	sellName        string
	sellDescription string
	sellPrice       string
	sellImage       string
)

var sellCmd = &cobra.Command{
	Use:   "sell",
	Short: "List an item for sale",
	Long: `List an item for sale.

Name and description may contain letters, digits, spaces and . , ' " only.
The image must be a JPEG, PNG or WebP file of at most 5 MB.

Example:
  kashi sell --name "Desk lamp" --description "Warm light, barely used" \
    --price 19.90 --image ./lamp.jpg`,
	Args: cobra.NoArgs,
	RunE: runSell,
}

func init() {
	sellCmd.Flags().StringVar(&sellName, "name", "", "Item name")
	sellCmd.Flags().StringVar(&sellDescription, "description", "", "Item description")
	sellCmd.Flags().StringVar(&sellPrice, "price", "", "Price, greater than 0")
	sellCmd.Flags().StringVar(&sellImage, "image", "", "Path to the item photo")
	for _, f := range []string{"name", "description", "price", "image"} {
		_ = sellCmd.MarkFlagRequired(f)
	}
	rootCmd.AddCommand(sellCmd)
}

func runSell(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	img, err := readImage(sellImage)
	if err != nil {
		return err
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

	images, err := e.imageStore(ctx)
	if err != nil {
		return printer.Error("failed to set up image storage", err.Error(), []string{"Check the images section of your configuration."})
	}

	item, err := profile.Publish(ctx, e.client, images, viewer, &profile.Listing{
		Name:        sellName,
		Description: sellDescription,
		Price:       sellPrice,
		Image:       *img,
	})
	if err != nil {
		return formErr("Failed to list item", err)
	}

	printer.Success("Listed %s for %s\n", item.Name, item.Price.Display())
	return nil
}

func readImage(path string) (*imagestore.Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, printer.Error("cannot read image", err.Error(), nil)
	}
	return &imagestore.Image{Name: filepath.Base(path), Data: data}, nil
}

// formErr prints validation errors as such and anything else as an API failure.
func formErr(action string, err error) error {
	var ve *profile.ValidationError
	if errors.As(err, &ve) {
		return printer.Error(fmt.Sprintf("invalid %s", ve.Field), fmt.Sprintf("The %s %s.", ve.Field, ve.Message), nil)
	}
	return printer.APIError(action, err)
}
