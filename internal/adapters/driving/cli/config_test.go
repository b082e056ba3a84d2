package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ghscan/internal/core/domain"
)

func TestConfigCmd_HasSubcommands(t *testing.T) {
	names := make([]string, 0, len(configCmd.Commands()))
	for _, c := range configCmd.Commands() {
		names = append(names, c.Name())
	}

	assert.ElementsMatch(t, []string{"list", "get", "set", "path"}, names)
}

func TestConfigCmd_ListDefaults(t *testing.T) {
	setupTestServices(t)

	out, _, err := execute(t, "config")

	require.NoError(t, err)
	newGoldie(t).Assert(t, "config_list", []byte(out))
}

func TestConfigCmd_SetAndGet(t *testing.T) {
	setupTestServices(t)

	out, _, err := execute(t, "config", "set", "org", "acme")
	require.NoError(t, err)
	assert.Equal(t, "✓ org updated\n", out)

	out, _, err = execute(t, "config", "get", "org")
	require.NoError(t, err)
	assert.Equal(t, "acme\n", out)

	out, _, err = execute(t, "config", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "org           acme\n")
}

func TestConfigCmd_SetInvalid(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"page size too large", "page_size", "500"},
		{"page size not a number", "page_size", "ten"},
		{"relative endpoint", "endpoint", "/graphql"},
		{"unknown key", "colour", "blue"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setupTestServices(t)

			_, _, err := execute(t, "config", "set", tt.key, tt.value)

			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
}

func TestConfigCmd_GetUnknown(t *testing.T) {
	setupTestServices(t)

	_, _, err := execute(t, "config", "get", "colour")

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestConfigCmd_Path(t *testing.T) {
	_, settings := setupTestServices(t)

	out, _, err := execute(t, "config", "path")

	require.NoError(t, err)
	assert.Equal(t, settings.Path()+"\n", out)
}

func TestConfigCmd_NotConfigured(t *testing.T) {
	old := settingsService
	settingsService = nil
	defer func() { settingsService = old }()

	_, _, err := execute(t, "config", "path")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "not configured")
}
