package services

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/custodia-labs/ghscan/internal/core/domain"
	"github.com/custodia-labs/ghscan/internal/core/ports/driven"
)

// Config keys for settings storage.
const (
	KeyEndpoint    = "endpoint"
	KeyOrg         = "org"
	KeyTokenEnv    = "token_env"
	KeySchemaURL   = "schema_url"
	KeySchemaCache = "schema_cache"
	KeyQueryDir    = "query_dir"
	KeyPageSize    = "page_size"
	KeyFilePath    = "file_path"
	KeyDatabase    = "database"
)

// SettingsService reads and writes AppSettings through a ConfigStore.
// Keys absent from the store fall back to domain.DefaultAppSettings.
type SettingsService struct {
	configStore driven.ConfigStore
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{configStore: configStore}
}

// Keys returns the recognised setting keys in sorted order.
func Keys() []string {
	keys := []string{
		KeyEndpoint, KeyOrg, KeyTokenEnv, KeySchemaURL, KeySchemaCache,
		KeyQueryDir, KeyPageSize, KeyFilePath, KeyDatabase,
	}
	sort.Strings(keys)
	return keys
}

// Get retrieves the current settings and validates them.
func (s *SettingsService) Get() (domain.AppSettings, error) {
	defaults := domain.DefaultAppSettings()

	settings := domain.AppSettings{
		Endpoint:    s.getString(KeyEndpoint, defaults.Endpoint),
		Org:         s.getString(KeyOrg, defaults.Org),
		TokenEnv:    s.getString(KeyTokenEnv, defaults.TokenEnv),
		SchemaURL:   s.getString(KeySchemaURL, defaults.SchemaURL),
		SchemaCache: s.getString(KeySchemaCache, defaults.SchemaCache),
		QueryDir:    s.getString(KeyQueryDir, defaults.QueryDir),
		PageSize:    s.getInt(KeyPageSize, defaults.PageSize),
		FilePath:    s.getString(KeyFilePath, defaults.FilePath),
		Database:    s.getString(KeyDatabase, defaults.Database),
	}

	if err := settings.Validate(); err != nil {
		return settings, fmt.Errorf("%s: %w", s.configStore.Path(), err)
	}
	return settings, nil
}

// Value returns the effective value of key as text.
func (s *SettingsService) Value(key string) (string, error) {
	settings, err := s.Get()
	if err != nil {
		return "", err
	}
	switch key {
	case KeyEndpoint:
		return settings.Endpoint, nil
	case KeyOrg:
		return settings.Org, nil
	case KeyTokenEnv:
		return settings.TokenEnv, nil
	case KeySchemaURL:
		return settings.SchemaURL, nil
	case KeySchemaCache:
		return settings.SchemaCache, nil
	case KeyQueryDir:
		return settings.QueryDir, nil
	case KeyPageSize:
		return strconv.Itoa(settings.PageSize), nil
	case KeyFilePath:
		return settings.FilePath, nil
	case KeyDatabase:
		return settings.Database, nil
	default:
		return "", fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}
}

// Set parses value for key, validates the resulting settings and persists it.
func (s *SettingsService) Set(key, value string) error {
	current, err := s.Get()
	if err != nil {
		current = domain.DefaultAppSettings()
	}

	var stored any = value
	switch key {
	case KeyEndpoint:
		current.Endpoint = value
	case KeyOrg:
		current.Org = value
	case KeyTokenEnv:
		current.TokenEnv = value
	case KeySchemaURL:
		current.SchemaURL = value
	case KeySchemaCache:
		current.SchemaCache = value
	case KeyQueryDir:
		current.QueryDir = value
	case KeyPageSize:
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%w: page_size must be an integer: %q", domain.ErrInvalidInput, value)
		}
		current.PageSize = n
		stored = n
	case KeyFilePath:
		current.FilePath = value
	case KeyDatabase:
		current.Database = value
	default:
		return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}

	if err := current.Validate(); err != nil {
		return err
	}
	if err := s.configStore.Set(key, stored); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

// Path returns the backing configuration file.
func (s *SettingsService) Path() string {
	return s.configStore.Path()
}

func (s *SettingsService) getString(key, defaultVal string) string {
	if _, ok := s.configStore.Get(key); !ok {
		return defaultVal
	}
	return s.configStore.GetString(key)
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	if _, ok := s.configStore.Get(key); !ok {
		return defaultVal
	}
	return s.configStore.GetInt(key)
}
