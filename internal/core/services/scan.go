package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/ghscan/internal/core/domain"
	"github.com/custodia-labs/ghscan/internal/core/ports/driven"
	"github.com/custodia-labs/ghscan/internal/logger"
)

// Names of the built-in queries resolved through the QuerySource.
const (
	DefaultQuery      = "repositories"
	DefaultTotalQuery = "total"
)

// ErrStoreUnavailable indicates history was requested without a scan store.
var ErrStoreUnavailable = errors.New("scan store unavailable")

// ScanOptions are the caller-facing scan parameters.
type ScanOptions struct {
	Org        string
	Query      string
	TotalQuery string
	TotalPath  string
	Path       string
	AfterVar   string
	Archived   bool
	All        bool
	Limit      int
	Strict     bool
	Variables  domain.Variables
	Filters    []Predicate
}

// ScanResult summarises a finished scan.
type ScanResult struct {
	RunID    string
	Stats    domain.ScanStats
	Requests int
}

// ScanService loads, compiles and runs scans, recording them when a store is configured.
type ScanService struct {
	queries  driven.QuerySource
	compiler *QueryCompiler
	executor Executor
	sink     driven.DiagnosticSink
	store    driven.ScanStore
}

// NewScanService creates a scan service.
// queries, sink and store are optional.
func NewScanService(
	queries driven.QuerySource,
	compiler *QueryCompiler,
	executor Executor,
	sink driven.DiagnosticSink,
	store driven.ScanStore,
) *ScanService {
	if sink == nil {
		sink = LogSink{}
	}
	return &ScanService{
		queries:  queries,
		compiler: compiler,
		executor: executor,
		sink:     sink,
		store:    store,
	}
}

// Compile resolves nameOrText through the query source and compiles it.
func (s *ScanService) Compile(nameOrText string) (*domain.CompiledQuery, error) {
	text := nameOrText
	if s.queries != nil {
		loaded, err := s.queries.Load(nameOrText)
		if err != nil {
			return nil, fmt.Errorf("load query: %w", err)
		}
		text = loaded
	}
	return s.compiler.Compile(text)
}

// Query executes a single query and returns the normalised result.
func (s *ScanService) Query(ctx context.Context, nameOrText string, vars domain.Variables) (*domain.ResultDocument, error) {
	q, err := s.Compile(nameOrText)
	if err != nil {
		return nil, err
	}
	return s.executor.Execute(ctx, q, vars, nil)
}

// Prepare compiles the queries named in opts and builds a pipeline.
func (s *ScanService) Prepare(opts ScanOptions) (*ScanPipeline, error) {
	if opts.Query == "" {
		opts.Query = DefaultQuery
	}
	// The built-in total query only knows the repositories connection;
	// custom queries read totalCount from their own first page.
	if opts.TotalQuery == "" && opts.Query == DefaultQuery {
		opts.TotalQuery = DefaultTotalQuery
	}

	query, err := s.Compile(opts.Query)
	if err != nil {
		return nil, err
	}
	var total *domain.CompiledQuery
	if opts.TotalQuery != "" {
		if total, err = s.Compile(opts.TotalQuery); err != nil {
			return nil, err
		}
	}

	cfg := ScanConfig{
		Query:      query,
		TotalQuery: total,
		AfterVar:   opts.AfterVar,
		Org:        opts.Org,
		All:        opts.All,
		Archived:   opts.Archived,
		Limit:      opts.Limit,
		Strict:     opts.Strict,
	}
	if opts.Path != "" {
		cfg.Path = domain.SplitPath(opts.Path)
	}
	if opts.TotalPath != "" {
		cfg.TotalPath = domain.SplitPath(opts.TotalPath)
	}

	return NewScanPipeline(s.executor, s.sink, cfg, opts.Filters...), nil
}

// Scan runs a scan and calls visit for every accepted node, in order.
// An error from visit aborts the scan after the node is reported to the sink.
func (s *ScanService) Scan(
	ctx context.Context, opts ScanOptions, visit func(domain.Node) error,
) (*ScanResult, error) {
	pipeline, err := s.Prepare(opts)
	if err != nil {
		return nil, err
	}

	run := domain.ScanRun{
		ID:        uuid.New().String(),
		Org:       opts.Org,
		Query:     pipeline.Config().Query.Hash,
		Variables: opts.Variables,
		StartedAt: time.Now().UTC(),
	}
	result := &ScanResult{RunID: run.ID}
	if s.store != nil {
		if sErr := s.store.SaveRun(ctx, run); sErr != nil {
			logger.Warn("Failed to record scan run %s: %v", run.ID, sErr)
		}
	}

	it, err := pipeline.Run(ctx, opts.Variables)
	if err != nil {
		s.record(ctx, run, pipeline.Stats(), err)
		return nil, err
	}

	for it.Next() {
		node := it.Node()
		if visit != nil {
			if vErr := visit(node); vErr != nil {
				s.sink.NodeFailure(node, vErr)
				err = vErr
				break
			}
		}
		if s.store != nil {
			match := domain.ScanMatch{
				RunID:    run.ID,
				Position: pipeline.Matched(),
				Name:     node.String(FieldName),
				Node:     node,
			}
			if mErr := s.store.AddMatch(ctx, match); mErr != nil {
				logger.Warn("Failed to record match %q: %v", match.Name, mErr)
			}
		}
	}
	if err == nil {
		err = it.Err()
	}

	result.Stats = pipeline.Stats()
	result.Requests = it.Requests()
	s.record(ctx, run, result.Stats, err)

	return result, err
}

// History returns the most recent recorded runs.
func (s *ScanService) History(ctx context.Context, limit int) ([]domain.ScanRun, error) {
	if s.store == nil {
		return nil, ErrStoreUnavailable
	}
	return s.store.ListRuns(ctx, limit)
}

// Matches returns the recorded matches of a run.
func (s *ScanService) Matches(ctx context.Context, runID string) ([]domain.ScanMatch, error) {
	if s.store == nil {
		return nil, ErrStoreUnavailable
	}
	return s.store.ListMatches(ctx, runID)
}

func (s *ScanService) record(ctx context.Context, run domain.ScanRun, stats domain.ScanStats, scanErr error) {
	if s.store == nil {
		return
	}

	run.Scanned = stats.Scanned
	run.Matched = stats.Matched
	if stats.Total != nil {
		run.Total = *stats.Total
	}
	run.FinishedAt = time.Now().UTC()
	if scanErr != nil {
		run.Error = scanErr.Error()
	}

	if err := s.store.SaveRun(ctx, run); err != nil {
		logger.Warn("Failed to record scan run %s: %v", run.ID, err)
	}
}
