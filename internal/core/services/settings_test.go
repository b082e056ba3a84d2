package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ghscan/internal/adapters/driven/config/file"
	"github.com/custodia-labs/ghscan/internal/core/domain"
)

func newSettingsService(t *testing.T) (*SettingsService, *file.ConfigStore) {
	t.Helper()
	store, err := file.NewConfigStore(t.TempDir())
	require.NoError(t, err)
	return NewSettingsService(store), store
}

func TestSettingsService_Get_ReturnsDefaults(t *testing.T) {
	service, _ := newSettingsService(t)

	settings, err := service.Get()

	require.NoError(t, err)
	assert.Equal(t, domain.DefaultAppSettings(), settings)
}

func TestSettingsService_Get_ReturnsStoredValues(t *testing.T) {
	service, store := newSettingsService(t)
	require.NoError(t, store.Set(KeyOrg, "fac"))
	require.NoError(t, store.Set(KeyPageSize, 50))
	require.NoError(t, store.Set(KeySchemaURL, ""))

	settings, err := service.Get()

	require.NoError(t, err)
	assert.Equal(t, "fac", settings.Org)
	assert.Equal(t, 50, settings.PageSize)
	assert.Empty(t, settings.SchemaURL, "an explicit empty value disables the default")
	assert.Equal(t, domain.DefaultEndpoint, settings.Endpoint)
}

func TestSettingsService_Get_InvalidStoredValue(t *testing.T) {
	service, store := newSettingsService(t)
	require.NoError(t, store.Set(KeyPageSize, 1000))

	_, err := service.Get()

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.ErrorContains(t, err, store.Path())
}

func TestSettingsService_Set(t *testing.T) {
	service, store := newSettingsService(t)

	require.NoError(t, service.Set(KeyOrg, "fac"))
	require.NoError(t, service.Set(KeyPageSize, "25"))

	assert.Equal(t, "fac", store.GetString(KeyOrg))
	assert.Equal(t, 25, store.GetInt(KeyPageSize))

	v, err := service.Value(KeyPageSize)
	require.NoError(t, err)
	assert.Equal(t, "25", v)
}

func TestSettingsService_SetRejects(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"unknown key", "colour", "blue"},
		{"non-numeric page size", KeyPageSize, "ten"},
		{"page size out of range", KeyPageSize, "0"},
		{"relative endpoint", KeyEndpoint, "graphql"},
		{"empty file path", KeyFilePath, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, store := newSettingsService(t)

			err := service.Set(tt.key, tt.value)

			assert.ErrorIs(t, err, domain.ErrInvalidInput)
			_, ok := store.Get(tt.key)
			assert.False(t, ok, "rejected values are not persisted")
		})
	}
}

func TestSettingsService_Value(t *testing.T) {
	service, _ := newSettingsService(t)

	for _, key := range Keys() {
		t.Run(key, func(t *testing.T) {
			_, err := service.Value(key)
			assert.NoError(t, err)
		})
	}

	v, err := service.Value(KeyFilePath)
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultFilePath, v)

	_, err = service.Value("nope")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestKeys(t *testing.T) {
	keys := Keys()

	assert.Len(t, keys, 9)
	assert.IsIncreasing(t, keys)
}
