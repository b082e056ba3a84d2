// Package cli implements the ghscan command line interface.
package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/ghscan/internal/core/domain"
	"github.com/custodia-labs/ghscan/internal/core/ports/driving"
	"github.com/custodia-labs/ghscan/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

// ScannerFactory builds a scan service for the effective settings.
// Offline services only serve history and must not require a token.
// The returned close function releases the history database, if any.
type ScannerFactory func(ctx context.Context, settings domain.AppSettings, offline bool) (driving.ScanService, func() error, error)

var (
	verbose bool

	settingsService driving.SettingsService
	scannerFactory  ScannerFactory
)

var rootCmd = &cobra.Command{
	Use:   "ghscan",
	Short: "Scan a GitHub organisation's repositories with GraphQL",
	Long: `ghscan pages through an organisation's repositories using the GitHub
GraphQL API and reports the ones that match a set of filters, for example
every active repository that still carries a Jenkinsfile.

The token is read from $GITHUB_PAT (see "ghscan config set token_env").`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "print debug output to stderr")
}

// Configure sets the services used by the commands.
func Configure(settings driving.SettingsService, factory ScannerFactory) {
	settingsService = settings
	scannerFactory = factory
}

// SetVersion sets the version reported by "ghscan version".
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// ExecuteContext runs the root command with ctx; cancelling ctx stops a scan
// before its next request.
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// loadSettings returns the effective settings.
func loadSettings() (domain.AppSettings, error) {
	if settingsService == nil {
		return domain.AppSettings{}, errors.New("settings service not configured")
	}
	return settingsService.Get()
}

// openScanner builds a scan service, returning a no-op closer on failure.
func openScanner(ctx context.Context, settings domain.AppSettings, offline bool) (driving.ScanService, func() error, error) {
	if scannerFactory == nil {
		return nil, nil, errors.New("scan service not configured")
	}
	svc, closeFn, err := scannerFactory(ctx, settings, offline)
	if err != nil {
		return nil, nil, err
	}
	if closeFn == nil {
		closeFn = func() error { return nil }
	}
	return svc, closeFn, nil
}
