package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/custodia-labs/ghscan/internal/core/domain"
	"github.com/custodia-labs/ghscan/internal/core/ports/driven"
)

// Ensure ScanStore implements the interface.
var _ driven.ScanStore = (*ScanStore)(nil)

// ScanStore is an in-memory implementation of driven.ScanStore.
type ScanStore struct {
	mu      sync.RWMutex
	runs    map[string]domain.ScanRun
	matches map[string][]domain.ScanMatch
}

// NewScanStore creates a new in-memory scan store.
func NewScanStore() *ScanStore {
	return &ScanStore{
		runs:    make(map[string]domain.ScanRun),
		matches: make(map[string][]domain.ScanMatch),
	}
}

// SaveRun stores or updates a run.
func (s *ScanStore) SaveRun(_ context.Context, run domain.ScanRun) error {
	if run.ID == "" {
		return domain.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs[run.ID] = run
	return nil
}

// AddMatch records a match. The run must exist.
func (s *ScanStore) AddMatch(_ context.Context, match domain.ScanMatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.runs[match.RunID]; !ok {
		return domain.ErrNotFound
	}
	s.matches[match.RunID] = append(s.matches[match.RunID], match)
	return nil
}

// GetRun retrieves a run by ID.
func (s *ScanStore) GetRun(_ context.Context, id string) (*domain.ScanRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	run, ok := s.runs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &run, nil
}

// ListRuns returns runs newest first, at most limit (0 = all).
func (s *ScanStore) ListRuns(_ context.Context, limit int) ([]domain.ScanRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	runs := make([]domain.ScanRun, 0, len(s.runs))
	for _, run := range s.runs {
		runs = append(runs, run)
	}
	sort.Slice(runs, func(i, j int) bool {
		return runs[i].StartedAt.After(runs[j].StartedAt)
	})
	if limit > 0 && len(runs) > limit {
		runs = runs[:limit]
	}
	return runs, nil
}

// ListMatches returns a run's matches in the order they were added.
func (s *ScanStore) ListMatches(_ context.Context, runID string) ([]domain.ScanMatch, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	matches := s.matches[runID]
	out := make([]domain.ScanMatch, len(matches))
	copy(out, matches)
	return out, nil
}
