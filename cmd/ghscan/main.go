// Package main provides the ghscan CLI entry point.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/custodia-labs/ghscan/internal/adapters/driven/config/file"
	"github.com/custodia-labs/ghscan/internal/adapters/driving/cli"
	"github.com/custodia-labs/ghscan/internal/app"
	"github.com/custodia-labs/ghscan/internal/core/services"
)

// Set via ldflags: -X main.version=v1.0.0
var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func run() error {
	store, err := file.NewConfigStore("")
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cli.SetVersion(version)
	cli.Configure(services.NewSettingsService(store), app.NewScanner)
	return cli.ExecuteContext(ctx)
}
