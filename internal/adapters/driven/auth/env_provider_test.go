package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ghscan/internal/core/domain"
)

func mapLookup(env map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}
}

func TestEnvTokenProvider_GetToken(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		want    string
		wantErr string
	}{
		{name: "set", env: map[string]string{"GITHUB_PAT": "ghp_abc"}, want: "ghp_abc"},
		{name: "trimmed", env: map[string]string{"GITHUB_PAT": " ghp_abc\n"}, want: "ghp_abc"},
		{name: "unset", env: map[string]string{}, wantErr: "GITHUB_PAT is not set"},
		{name: "empty", env: map[string]string{"GITHUB_PAT": "  "}, wantErr: "GITHUB_PAT is empty"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewEnvTokenProviderWithLookup("", mapLookup(tt.env))

			got, err := p.GetToken(context.Background())

			if tt.wantErr != "" {
				assert.ErrorIs(t, err, domain.ErrCredentialMissing)
				assert.ErrorContains(t, err, tt.wantErr)
				assert.False(t, p.IsAuthenticated())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.True(t, p.IsAuthenticated())
		})
	}
}

func TestEnvTokenProvider_CustomName(t *testing.T) {
	p := NewEnvTokenProviderWithLookup("GH_TOKEN", mapLookup(map[string]string{"GH_TOKEN": "tok"}))

	got, err := p.GetToken(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "tok", got)
	assert.Equal(t, "GH_TOKEN", p.Name())
}

func TestEnvTokenProvider_ProcessEnvironment(t *testing.T) {
	t.Setenv("GHSCAN_TEST_TOKEN", "from-env")
	p := NewEnvTokenProvider("GHSCAN_TEST_TOKEN")

	got, err := p.GetToken(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "from-env", got)
	assert.Equal(t, DefaultTokenEnv, NewEnvTokenProvider("").Name())
}
