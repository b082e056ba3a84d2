package domain

import (
	"fmt"
	"net/url"
)

// Built-in setting defaults.
const (
	DefaultEndpoint  = "https://api.github.com/graphql"
	DefaultTokenEnv  = "GITHUB_PAT"
	DefaultSchemaURL = "https://docs.github.com/public/fpt/schema.docs.graphql"
	DefaultPageSize  = 10
	DefaultFilePath  = "Jenkinsfile"

	// MaxPageSize is the largest page the GitHub API accepts for a connection.
	MaxPageSize = 100
)

// AppSettings holds the persisted ghscan configuration.
// CLI flags override these values for a single invocation.
type AppSettings struct {
	// Endpoint is the GraphQL API URL.
	Endpoint string

	// Org is the default organisation login.
	Org string

	// TokenEnv names the environment variable holding the token.
	TokenEnv string

	// SchemaURL is where the schema SDL is downloaded from.
	// Empty disables validation unless a snapshot exists.
	SchemaURL string

	// SchemaCache is the snapshot path. Empty means $TMPDIR/github.schema.graphql.
	SchemaCache string

	// QueryDir is searched for NAME.graphql before the built-in queries.
	QueryDir string

	// PageSize is the number of repositories fetched per request.
	PageSize int

	// FilePath is the file looked up on each repository's default branch.
	FilePath string

	// Database is the directory of the scan history database.
	// Empty disables recording unless --db is given.
	Database string
}

// DefaultAppSettings returns the built-in defaults.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Endpoint:  DefaultEndpoint,
		TokenEnv:  DefaultTokenEnv,
		SchemaURL: DefaultSchemaURL,
		PageSize:  DefaultPageSize,
		FilePath:  DefaultFilePath,
	}
}

// Validate checks the settings are usable.
func (s AppSettings) Validate() error {
	u, err := url.Parse(s.Endpoint)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%w: endpoint %q is not an absolute URL", ErrInvalidInput, s.Endpoint)
	}
	if s.TokenEnv == "" {
		return fmt.Errorf("%w: token_env is empty", ErrInvalidInput)
	}
	if s.PageSize < 1 || s.PageSize > MaxPageSize {
		return fmt.Errorf("%w: page_size must be between 1 and %d, got %d", ErrInvalidInput, MaxPageSize, s.PageSize)
	}
	if s.FilePath == "" {
		return fmt.Errorf("%w: file_path is empty", ErrInvalidInput)
	}
	return nil
}
