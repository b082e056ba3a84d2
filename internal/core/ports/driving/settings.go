package driving

import (
	"github.com/custodia-labs/ghscan/internal/core/domain"
	"github.com/custodia-labs/ghscan/internal/core/services"
)

// SettingsService manages persisted configuration.
type SettingsService interface {
	// Get returns the effective settings (stored values over defaults).
	Get() (domain.AppSettings, error)

	// Value returns one effective setting as text.
	Value(key string) (string, error)

	// Set validates and persists one setting.
	Set(key, value string) error

	// Path returns the configuration file path.
	Path() string
}

// Ensure the service implements the port.
var _ SettingsService = (*services.SettingsService)(nil)
