package driven

import (
	"context"

	"github.com/custodia-labs/ghscan/internal/core/domain"
)

// ScanStore persists scan runs and their matches.
type ScanStore interface {
	// SaveRun inserts or updates a run.
	SaveRun(ctx context.Context, run domain.ScanRun) error

	// AddMatch records one accepted node for a run.
	AddMatch(ctx context.Context, match domain.ScanMatch) error

	// GetRun returns a run by ID. Returns domain.ErrNotFound if absent.
	GetRun(ctx context.Context, id string) (*domain.ScanRun, error)

	// ListRuns returns the most recent runs first, at most limit (0 = all).
	ListRuns(ctx context.Context, limit int) ([]domain.ScanRun, error)

	// ListMatches returns a run's matches in acceptance order.
	ListMatches(ctx context.Context, runID string) ([]domain.ScanMatch, error)
}
