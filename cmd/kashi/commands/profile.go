package commands

import (
	"github.com/spf13/cobra"

	"github.com/dyluth/kashi/internal/imagestore"
	"github.com/dyluth/kashi/internal/printer"
	"github.com/dyluth/kashi/internal/profile"
)

var (
	editName    string
	editAddress string
	editPhone   string
	editPhoto   string
)

var profileCmd = &cobra.Command{
	Use:   "profile [USER_ID]",
	Short: "Show a user's profile",
	Long: `Show a user's profile and the items they have in stock.

Without USER_ID your own profile is shown, including your trade history and
the offers waiting for your decision.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runProfile,
}

var profileEditCmd = &cobra.Command{
	Use:   "edit",
	Short: "Update your profile",
	Long: `Update your profile. Only the fields given are changed.

Example:
  kashi profile edit --phone +972541234567 --photo ./me.png`,
	Args: cobra.NoArgs,
	RunE: runProfileEdit,
}

func init() {
	profileEditCmd.Flags().StringVar(&editName, "name", "", "Full name (2-50 characters)")
	profileEditCmd.Flags().StringVar(&editAddress, "address", "", "Address (5-200 characters)")
	profileEditCmd.Flags().StringVar(&editPhone, "phone", "", "Phone number, +<country_code><number>")
	profileEditCmd.Flags().StringVar(&editPhoto, "photo", "", "Path to a profile photo")

	profileCmd.AddCommand(profileEditCmd)
	rootCmd.AddCommand(profileCmd)
}

func runProfile(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	e, err := loadEnv(cmd)
	if err != nil {
		return err
	}
	defer e.close()

	viewer := ""
	if e.session != nil {
		if viewer, err = e.requireViewer(ctx); err != nil {
			return err
		}
	}

	userID := viewer
	if len(args) == 1 {
		userID = args[0]
	}
	if userID == "" {
		return printer.Error(
			"no user given",
			"You are not logged in, so there is no profile of your own to show.",
			[]string{"Log in:\n  kashi login", "Or name a user:\n  kashi profile USER_ID"},
		)
	}

	page, err := profile.Load(ctx, e.client, userID, viewer)
	if err != nil {
		return printer.APIError("Failed to load profile", err)
	}
	return profile.Format(cmd.OutOrStdout(), page)
}

func runProfileEdit(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	edit := &profile.Edit{Name: editName, Address: editAddress, Phone: editPhone}
	if editPhoto != "" {
		img, err := readImage(editPhoto)
		if err != nil {
			return err
		}
		edit.Photo = img
	}
	if err := edit.Validate(); err != nil {
		return formErr("Failed to update profile", err)
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

	var images imagestore.Store
	if edit.Photo != nil {
		if images, err = e.imageStore(ctx); err != nil {
			return printer.Error("failed to set up image storage", err.Error(), []string{"Check the images section of your configuration."})
		}
	}

	if _, err := profile.Apply(ctx, e.client, images, viewer, edit); err != nil {
		return formErr("Failed to update profile", err)
	}

	printer.Success("Profile updated\n")
	return nil
}
