package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/dyluth/kashi/cmd/kashi/commands"
)

// Version information - set during build
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	commands.SetVersionInfo(version, commit, date)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Errors are printed by the printer package with color formatting
	if err := commands.Execute(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
