package scaffold

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dyluth/kashi/internal/config"
	"github.com/dyluth/kashi/internal/printer"
)

//go:embed templates/*
var templatesFS embed.FS

// Initialize writes a starter config file at path. A path ending in .toml gets
// the TOML template, anything else the YAML one.
// If force is true, an existing file at path is replaced.
func Initialize(path string, force bool) error {
	if force {
		if err := handleForce(path); err != nil {
			return err
		}
	} else if err := CheckExisting(path); err != nil {
		return err
	}

	content, err := templateFor(path)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", filepath.Dir(path), err)
	}

	if err := os.WriteFile(path, content, 0600); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	if err := validateCreatedFile(path); err != nil {
		return err
	}

	return nil
}

// handleForce removes an existing config file if --force was specified
func handleForce(path string) error {
	if _, err := os.Stat(path); err == nil {
		printer.Warning("Removing existing %s...\n", path)
		if err := os.Remove(path); err != nil {
			return fmt.Errorf("failed to remove %s: %w", path, err)
		}
	}
	return nil
}

func templateFor(path string) ([]byte, error) {
	name := "templates/kashi.yml.tmpl"
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		name = "templates/kashi.toml.tmpl"
	}

	content, err := templatesFS.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s template: %w", filepath.Base(name), err)
	}
	return content, nil
}

// validateCreatedFile loads the written file through the config loader
func validateCreatedFile(path string) error {
	if _, err := config.Load(path); err != nil {
		return fmt.Errorf("created %s is not a valid configuration: %w", path, err)
	}
	return nil
}

// PrintSuccess prints the success message with the created file
func PrintSuccess(path string) {
	printer.Success("Created %s\n", path)
	printer.Println("\nNext steps:")
	printer.Printf("  1. Set api.base_url and the auth section in %s\n", path)
	printer.Println("  2. Run 'kashi login' to sign in")
	printer.Println("  3. Run 'kashi items' to browse the marketplace")
}
