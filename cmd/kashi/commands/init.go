package commands

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dyluth/kashi/internal/config"
	"github.com/dyluth/kashi/internal/printer"
	"github.com/dyluth/kashi/internal/scaffold"
)

var (
	forceInit bool
	tomlInit  bool
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a starter configuration file",
	Long: `Create a starter kashi configuration file.

The file is written to --config if given, else $KASHI_CONFIG, else
$XDG_CONFIG_HOME/kashi/kashi.yml. Use --toml to write kashi.toml instead.

Use --force to overwrite an existing configuration.`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

func init() {
	initCmd.Flags().BoolVar(&forceInit, "force", false, "Overwrite an existing configuration file")
	initCmd.Flags().BoolVar(&tomlInit, "toml", false, "Write TOML instead of YAML")
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	path := config.DefaultPath(configPath)
	if tomlInit && !strings.EqualFold(filepath.Ext(path), ".toml") {
		path = strings.TrimSuffix(path, filepath.Ext(path)) + ".toml"
	}

	if !forceInit {
		if err := scaffold.CheckExisting(path); err != nil {
			return printer.Error("configuration already exists", err.Error(), nil)
		}
	}

	if err := scaffold.Initialize(path, forceInit); err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}

	scaffold.PrintSuccess(path)
	return nil
}
