package sqlite

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/custodia-labs/ghscan/internal/core/domain"
	"github.com/custodia-labs/ghscan/internal/core/ports/driven"
)

// scanStore implements driven.ScanStore.
type scanStore struct {
	store *Store
}

var _ driven.ScanStore = (*scanStore)(nil)

// SaveRun inserts or updates a run.
func (s *scanStore) SaveRun(ctx context.Context, run domain.ScanRun) error {
	if run.ID == "" {
		return fmt.Errorf("%w: run has no ID", domain.ErrInvalidInput)
	}

	vars := run.Variables
	if vars == nil {
		vars = domain.Variables{}
	}
	varsJSON, err := json.Marshal(vars)
	if err != nil {
		return fmt.Errorf("marshalling variables: %w", err)
	}

	_, err = s.store.db.ExecContext(ctx, `
		INSERT INTO scan_runs (id, org, query_hash, variables, scanned, matched, total, started_at, finished_at, error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			org = excluded.org,
			query_hash = excluded.query_hash,
			variables = excluded.variables,
			scanned = excluded.scanned,
			matched = excluded.matched,
			total = excluded.total,
			finished_at = excluded.finished_at,
			error = excluded.error
	`, run.ID, run.Org, run.Query, string(varsJSON), run.Scanned, run.Matched, run.Total,
		run.StartedAt.UTC(), nullTime(run.FinishedAt), run.Error)
	if err != nil {
		return fmt.Errorf("saving scan run: %w", err)
	}
	return nil
}

// AddMatch records one accepted node. The run must exist.
func (s *scanStore) AddMatch(ctx context.Context, match domain.ScanMatch) error {
	nodeJSON, err := json.Marshal(match.Node)
	if err != nil {
		return fmt.Errorf("marshalling node: %w", err)
	}

	var exists int
	err = s.store.db.QueryRowContext(ctx, "SELECT 1 FROM scan_runs WHERE id = ?", match.RunID).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("scan run %s: %w", match.RunID, domain.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("checking scan run: %w", err)
	}

	_, err = s.store.db.ExecContext(ctx, `
		INSERT INTO scan_matches (run_id, position, name, node)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(run_id, position) DO UPDATE SET
			name = excluded.name,
			node = excluded.node
	`, match.RunID, match.Position, match.Name, string(nodeJSON))
	if err != nil {
		return fmt.Errorf("saving scan match: %w", err)
	}
	return nil
}

// GetRun retrieves a run by ID.
func (s *scanStore) GetRun(ctx context.Context, id string) (*domain.ScanRun, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, org, query_hash, variables, scanned, matched, total, started_at, finished_at, error
		FROM scan_runs WHERE id = ?
	`, id)

	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return run, nil
}

// ListRuns returns the most recent runs first, at most limit (0 = all).
func (s *scanStore) ListRuns(ctx context.Context, limit int) ([]domain.ScanRun, error) {
	query := `
		SELECT id, org, query_hash, variables, scanned, matched, total, started_at, finished_at, error
		FROM scan_runs ORDER BY started_at DESC, id`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying scan runs: %w", err)
	}
	defer rows.Close()

	var runs []domain.ScanRun
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}
	return runs, rows.Err()
}

// ListMatches returns a run's matches in acceptance order.
func (s *scanStore) ListMatches(ctx context.Context, runID string) ([]domain.ScanMatch, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT run_id, position, name, node
		FROM scan_matches WHERE run_id = ? ORDER BY position
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("querying scan matches: %w", err)
	}
	defer rows.Close()

	var matches []domain.ScanMatch
	for rows.Next() {
		var match domain.ScanMatch
		var nodeJSON string
		if err := rows.Scan(&match.RunID, &match.Position, &match.Name, &nodeJSON); err != nil {
			return nil, fmt.Errorf("scanning match: %w", err)
		}
		node, err := decodeObject(nodeJSON)
		if err != nil {
			return nil, fmt.Errorf("decoding match node: %w", err)
		}
		match.Node = domain.Node(node)
		matches = append(matches, match)
	}
	return matches, rows.Err()
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*domain.ScanRun, error) {
	var run domain.ScanRun
	var varsJSON string
	var finishedAt sql.NullTime
	if err := row.Scan(&run.ID, &run.Org, &run.Query, &varsJSON, &run.Scanned, &run.Matched,
		&run.Total, &run.StartedAt, &finishedAt, &run.Error); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning run: %w", err)
	}

	vars, err := decodeObject(varsJSON)
	if err != nil {
		return nil, fmt.Errorf("decoding run variables: %w", err)
	}
	run.Variables = domain.Variables(vars)
	if finishedAt.Valid {
		run.FinishedAt = finishedAt.Time
	}
	return &run, nil
}

func nullTime(t time.Time) sql.NullTime {
	if t.IsZero() {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}

// decodeObject decodes a JSON object keeping integral numbers as int64.
func decodeObject(data string) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader([]byte(data)))
	dec.UseNumber()

	var obj map[string]any
	if err := dec.Decode(&obj); err != nil {
		return nil, err
	}
	return numbers(obj).(map[string]any), nil
}

func numbers(v any) any {
	switch val := v.(type) {
	case map[string]any:
		for k, item := range val {
			val[k] = numbers(item)
		}
		return val
	case []any:
		for i, item := range val {
			val[i] = numbers(item)
		}
		return val
	case json.Number:
		if n, err := val.Int64(); err == nil {
			return n
		}
		if f, err := val.Float64(); err == nil {
			return f
		}
		return val.String()
	default:
		return val
	}
}
