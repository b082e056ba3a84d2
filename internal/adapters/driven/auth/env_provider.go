package auth

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/custodia-labs/ghscan/internal/core/domain"
	"github.com/custodia-labs/ghscan/internal/core/ports/driven"
)

// DefaultTokenEnv is the environment variable holding the GitHub token.
const DefaultTokenEnv = "GITHUB_PAT"

// Ensure EnvTokenProvider implements the TokenProvider interface.
var _ driven.TokenProvider = (*EnvTokenProvider)(nil)

// EnvTokenProvider reads a Personal Access Token from the environment.
// PATs don't expire and don't require refresh.
type EnvTokenProvider struct {
	name   string
	lookup func(string) (string, bool)
}

// NewEnvTokenProvider creates a provider for the named variable
// (DefaultTokenEnv when empty).
func NewEnvTokenProvider(name string) *EnvTokenProvider {
	return NewEnvTokenProviderWithLookup(name, os.LookupEnv)
}

// NewEnvTokenProviderWithLookup creates a provider with a custom lookup,
// e.g. for tests that must not touch the process environment.
func NewEnvTokenProviderWithLookup(name string, lookup func(string) (string, bool)) *EnvTokenProvider {
	if name == "" {
		name = DefaultTokenEnv
	}
	return &EnvTokenProvider{name: name, lookup: lookup}
}

// Name returns the environment variable name.
func (p *EnvTokenProvider) Name() string {
	return p.name
}

// GetToken returns the token. Unset and blank values wrap domain.ErrCredentialMissing.
func (p *EnvTokenProvider) GetToken(_ context.Context) (string, error) {
	token, ok := p.lookup(p.name)
	if !ok {
		return "", fmt.Errorf("%w: %s is not set", domain.ErrCredentialMissing, p.name)
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", fmt.Errorf("%w: %s is empty", domain.ErrCredentialMissing, p.name)
	}
	return token, nil
}

// IsAuthenticated returns true if a non-empty token is set.
func (p *EnvTokenProvider) IsAuthenticated() bool {
	_, err := p.GetToken(context.Background())
	return err == nil
}
