package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var (
	version string
	commit  string
	date    string

	configPath string
	verbose    bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "kashi",
	Short: "kashi - browse, buy and sell on the Kashi marketplace",
	Long: `kashi is a command-line client for the Kashi second-hand marketplace.

Browse and search listings, make offers, accept or reject offers on your own
items, and manage users and items as an administrator.

Run 'kashi init' to create a configuration file, then 'kashi login'.`,
	Version: version,
	RunE: func(cmd *cobra.Command, args []string) error {
		// If no subcommand is specified, show help
		return cmd.Help()
	},
	// Enable strict flag parsing - unknown flags will cause an error
	FParseErrWhitelist: cobra.FParseErrWhitelist{},
}

// Execute runs the root command with ctx, which is cancelled on Ctrl-C.
func Execute(ctx context.Context) error {
	// We print formatted colored errors directly in the printer package
	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true
	return rootCmd.ExecuteContext(ctx)
}

// SetVersionInfo sets the version information for the CLI
func SetVersionInfo(v, c, d string) {
	version = v
	commit = c
	date = d
	rootCmd.Version = fmt.Sprintf("%s (commit: %s, built: %s)", v, c, d)
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "f", "", "Config file (default $KASHI_CONFIG or $XDG_CONFIG_HOME/kashi/kashi.yml)")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "Log API calls and debug details to stderr")
}
