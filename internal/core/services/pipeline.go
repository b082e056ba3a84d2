package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/ghscan/internal/core/domain"
	"github.com/custodia-labs/ghscan/internal/core/ports/driven"
	"github.com/custodia-labs/ghscan/internal/logger"
)

// Defaults for the built-in repositories query.
const (
	DefaultConnectionPath = "result.repositories"
	DefaultOrgVar         = "org"
)

// ScanConfig describes one scan.
type ScanConfig struct {
	// Query is the paginated query. Required.
	Query *domain.CompiledQuery

	// Path locates the connection inside data. Default DefaultConnectionPath.
	Path []string

	// AfterVar names the cursor variable. Default DefaultAfterVar(Path).
	AfterVar string

	// TotalQuery is issued once before paging to read the connection size.
	// Defaults to Query.
	TotalQuery *domain.CompiledQuery

	// TotalPath locates the total count. Default Path + "totalCount".
	TotalPath []string

	// Org is passed as the OrgVar variable when non-empty.
	Org    string
	OrgVar string

	// All disables the archived filter; otherwise only nodes whose
	// isArchived equals Archived are accepted.
	All      bool
	Archived bool

	// Limit stops the scan once this many nodes matched. Zero is unlimited.
	Limit int

	// Strict makes unresolvable paths fail instead of ending the scan.
	Strict bool
}

func (c ScanConfig) withDefaults() ScanConfig {
	if len(c.Path) == 0 {
		c.Path = domain.SplitPath(DefaultConnectionPath)
	} else {
		c.Path = domain.SplitPath(strings.Join(c.Path, "."))
	}
	if c.AfterVar == "" {
		c.AfterVar = DefaultAfterVar(c.Path)
	}
	if c.TotalQuery == nil {
		c.TotalQuery = c.Query
	}
	if len(c.TotalPath) == 0 {
		c.TotalPath = append(append([]string{}, c.Path...), "totalCount")
	} else {
		c.TotalPath = domain.SplitPath(strings.Join(c.TotalPath, "."))
	}
	if c.OrgVar == "" {
		c.OrgVar = DefaultOrgVar
	}
	return c
}

// ScanPipeline filters, counts and limits the nodes of a paginated query.
type ScanPipeline struct {
	executor Executor
	walker   *PaginationWalker
	sink     driven.DiagnosticSink
	cfg      ScanConfig
	filters  []Predicate
	stats    domain.ScanStats
}

// NewScanPipeline creates a pipeline. The archived filter derived from cfg
// is always first; filters are appended after it. A nil sink logs diagnostics.
func NewScanPipeline(
	executor Executor, sink driven.DiagnosticSink, cfg ScanConfig, filters ...Predicate,
) *ScanPipeline {
	if sink == nil {
		sink = LogSink{}
	}
	cfg = cfg.withDefaults()

	var opts []WalkerOption
	if cfg.Strict {
		opts = append(opts, WithStrictPaths())
	}

	p := &ScanPipeline{
		executor: executor,
		walker:   NewPaginationWalker(executor, opts...),
		sink:     sink,
		cfg:      cfg,
		filters:  []Predicate{ArchivedFilter(cfg.All, cfg.Archived)},
		stats:    domain.ScanStats{Limit: cfg.Limit},
	}
	p.filters = append(p.filters, filters...)
	return p
}

// AddFilter appends a predicate. Call before Run.
func (p *ScanPipeline) AddFilter(f Predicate) {
	p.filters = append(p.filters, f)
}

// Config returns the effective configuration.
func (p *ScanPipeline) Config() ScanConfig {
	return p.cfg
}

// Stats returns a snapshot of the counters.
func (p *ScanPipeline) Stats() domain.ScanStats {
	return p.stats
}

// Scanned returns the number of nodes pulled from the walker.
func (p *ScanPipeline) Scanned() int { return p.stats.Scanned }

// Matched returns the number of nodes that passed every filter.
func (p *ScanPipeline) Matched() int { return p.stats.Matched }

// Total returns the connection size read at the start of Run, or -1 before Run.
func (p *ScanPipeline) Total() int {
	if p.stats.Total == nil {
		return -1
	}
	return *p.stats.Total
}

// Run resets the counters, resolves the total count and returns an iterator
// over accepted nodes. It fails with domain.ErrConfiguration, before any page
// is fetched, when the total cannot be resolved (e.g. unknown organisation).
func (p *ScanPipeline) Run(ctx context.Context, base domain.Variables) (*ScanIterator, error) {
	if p.cfg.Query == nil {
		return nil, fmt.Errorf("%w: scan has no query", domain.ErrInvalidInput)
	}

	p.stats = domain.ScanStats{Limit: p.cfg.Limit}

	var orgVars domain.Variables
	if p.cfg.Org != "" {
		orgVars = domain.Variables{p.cfg.OrgVar: p.cfg.Org}
	}
	vars := domain.MergeVariables(orgVars, base)

	logger.Section("Scan")
	logger.Debug("Organisation: %q, archived=%t, all=%t, limit=%d",
		p.cfg.Org, p.cfg.Archived, p.cfg.All, p.cfg.Limit)

	total, err := p.resolveTotal(ctx, vars)
	if err != nil {
		return nil, err
	}
	p.stats.Total = &total
	logger.Info("Total nodes reported: %d", total)

	return &ScanIterator{
		pipeline: p,
		nodes:    p.walker.Paginate(ctx, p.cfg.Query, p.cfg.Path, p.cfg.AfterVar, vars),
	}, nil
}

func (p *ScanPipeline) resolveTotal(ctx context.Context, vars domain.Variables) (int, error) {
	doc, err := p.executor.Execute(ctx, p.cfg.TotalQuery, vars, nil)
	if err != nil {
		return 0, fmt.Errorf("total count: %w", err)
	}

	raw, _ := doc.Lookup(p.cfg.TotalPath...)
	total, ok := domain.AsInt(raw)
	if !ok {
		msg := fmt.Sprintf("cannot resolve %s", strings.Join(p.cfg.TotalPath, "."))
		if p.cfg.Org != "" {
			msg += fmt.Sprintf(" for organisation %q", p.cfg.Org)
		}
		if doc.HasErrors() {
			msg += ": " + doc.Errors[0].Message
		}
		return 0, fmt.Errorf("%w: %s", domain.ErrConfiguration, msg)
	}
	return total, nil
}

func (p *ScanPipeline) accept(node domain.Node) (bool, error) {
	for _, f := range p.filters {
		ok, err := f(node)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

// ScanIterator yields the accepted nodes of a pipeline run.
// It shares the pipeline's counters, so Scanned/Matched are live while iterating.
type ScanIterator struct {
	pipeline *ScanPipeline
	nodes    *NodeIterator
	current  domain.Node
	last     domain.Node
	err      error
	done     bool
}

// Next advances to the next accepted node.
// The limit is checked before pulling, so no node is inspected once it is reached.
func (it *ScanIterator) Next() bool {
	if it.done {
		return false
	}

	p := it.pipeline
	for {
		if p.stats.LimitReached() {
			logger.Debug("Match limit %d reached after %d nodes", p.stats.Limit, p.stats.Scanned)
			return it.stop(nil)
		}

		if !it.nodes.Next() {
			if err := it.nodes.Err(); err != nil {
				p.sink.NodeFailure(it.last, err)
				return it.stop(err)
			}
			return it.stop(nil)
		}

		node := it.nodes.Node()
		it.last = node
		p.stats.Scanned++

		ok, err := p.accept(node)
		if err != nil {
			p.sink.NodeFailure(node, err)
			return it.stop(fmt.Errorf("%w: %w", domain.ErrPredicate, err))
		}
		if ok {
			p.stats.Matched++
			it.current = node
			return true
		}
	}
}

// Node returns the current accepted node.
func (it *ScanIterator) Node() domain.Node {
	return it.current
}

// Err returns the error that ended the scan, if any.
func (it *ScanIterator) Err() error {
	return it.err
}

// Requests returns the number of page requests issued, excluding the total query.
func (it *ScanIterator) Requests() int {
	return it.nodes.Requests()
}

func (it *ScanIterator) stop(err error) bool {
	it.done = true
	it.current = nil
	it.err = err
	return false
}
