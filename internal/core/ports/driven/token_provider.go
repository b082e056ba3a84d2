package driven

import "context"

// TokenProvider provides access tokens for authenticated API calls.
type TokenProvider interface {
	// GetToken returns the bearer token.
	// Returns an error wrapping domain.ErrCredentialMissing when none is configured.
	GetToken(ctx context.Context) (string, error)

	// IsAuthenticated returns true if a token is available.
	IsAuthenticated() bool
}
