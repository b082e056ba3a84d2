package driving

import (
	"context"

	"github.com/custodia-labs/ghscan/internal/core/domain"
	"github.com/custodia-labs/ghscan/internal/core/services"
)

// ScanService runs scans and ad-hoc queries against the GraphQL API.
type ScanService interface {
	// Scan enumerates the connection, calling visit for every accepted node.
	Scan(ctx context.Context, opts services.ScanOptions, visit func(domain.Node) error) (*services.ScanResult, error)

	// Query executes a single query (name or literal text) and returns the result document.
	Query(ctx context.Context, nameOrText string, vars domain.Variables) (*domain.ResultDocument, error)

	// History returns the most recent recorded runs.
	History(ctx context.Context, limit int) ([]domain.ScanRun, error)

	// Matches returns the recorded matches of a run.
	Matches(ctx context.Context, runID string) ([]domain.ScanMatch, error)
}

// Ensure the service implements the port.
var _ ScanService = (*services.ScanService)(nil)
