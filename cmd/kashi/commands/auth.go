package commands

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dyluth/kashi/internal/auth"
	"github.com/dyluth/kashi/internal/printer"
)

var loginCode string

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in to the marketplace",
	Long: `Log in with the marketplace's identity provider.

kashi prints the login URL. Open it in a browser, sign in, then paste the URL
the browser was redirected to (or just its code parameter).

Use --code to pass the code without prompting.`,
	Args: cobra.NoArgs,
	RunE: runLogin,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the logged-in user",
	Args:  cobra.NoArgs,
	RunE:  runLogout,
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the logged-in user",
	Args:  cobra.NoArgs,
	RunE:  runWhoami,
}

func init() {
	loginCmd.Flags().StringVar(&loginCode, "code", "", "Authorization code or redirect URL")
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)
}

func runLogin(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	e, err := loadEnv(cmd)
	if err != nil {
		return err
	}
	defer e.close()

	a := e.cfg.Auth
	svc, err := auth.NewService(auth.Options{
		AuthorizeURL: a.AuthorizeURL,
		TokenURL:     a.TokenURL,
		ClientID:     a.ClientID,
		ClientSecret: a.ClientSecret,
		RedirectURL:  a.RedirectURL,
		Scopes:       a.Scopes,
	}, nil)
	if err != nil {
		return printer.Error(
			"login is not configured",
			err.Error(),
			[]string{"Set auth.token_url and auth.client_id in your configuration."},
		)
	}

	input := loginCode
	if input == "" {
		state, err := auth.GenerateState()
		if err != nil {
			return err
		}
		printer.Info("Open this URL in your browser and sign in:\n\n  %s\n\n", svc.AuthURL(state))
		printer.Info("Paste the URL you were redirected to: ")

		line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
		if err != nil && strings.TrimSpace(line) == "" {
			return printer.Error("login cancelled", "No redirect URL was entered.", nil)
		}
		input = line
	}

	code, err := auth.CodeFromInput(input)
	if err != nil {
		return printer.Error("login failed", err.Error(), []string{"Try again:\n  kashi login"})
	}

	sess, err := svc.Login(ctx, code, e.client)
	if err != nil {
		return printer.Error("login failed", err.Error(), []string{"Authorization codes can only be used once. Try again:\n  kashi login"})
	}

	if err := e.store.Save(ctx, sess); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	printer.Success("Logged in as %s\n", displayName(sess.Username, sess.UserID))
	if sess.IsAdmin {
		printer.Info("You are an administrator. See 'kashi admin --help'.\n")
	}
	return nil
}

func runLogout(cmd *cobra.Command, args []string) error {
	e, err := loadEnv(cmd)
	if err != nil {
		return err
	}
	defer e.close()

	if err := e.store.Clear(cmd.Context()); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	printer.Success("Logged out\n")
	return nil
}

func runWhoami(cmd *cobra.Command, args []string) error {
	e, err := loadEnv(cmd)
	if err != nil {
		return err
	}
	defer e.close()

	if e.session == nil {
		printer.Warning("Not logged in\n")
		return nil
	}

	s := e.session
	printer.Info("User:      %s\n", displayName(s.Username, s.UserID))
	printer.Info("User ID:   %s\n", s.UserID)
	printer.Info("Admin:     %t\n", s.IsAdmin)
	if !s.LoggedInAt.IsZero() {
		printer.Info("Logged in: %s\n", s.LoggedInAt.Format("2006-01-02 15:04"))
	}
	if s.SearchQuery != "" {
		printer.Info("Search:    %q\n", s.SearchQuery)
	}
	return nil
}

func displayName(username, userID string) string {
	if username == "" {
		return userID
	}
	return username
}
