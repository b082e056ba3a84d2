package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/ghscan/internal/core/domain"
	"github.com/custodia-labs/ghscan/internal/logger"
)

// WalkerOption configures a PaginationWalker.
type WalkerOption func(*PaginationWalker)

// WithStrictPaths makes the walker fail with domain.ErrStructural when the
// connection path does not resolve or pageInfo is missing, instead of
// ending the sequence.
func WithStrictPaths() WalkerOption {
	return func(w *PaginationWalker) {
		w.strict = true
	}
}

// PaginationWalker flattens a cursor-paginated connection into a stream of nodes.
type PaginationWalker struct {
	executor Executor
	strict   bool
}

// NewPaginationWalker creates a walker that fetches pages through executor.
func NewPaginationWalker(executor Executor, opts ...WalkerOption) *PaginationWalker {
	w := &PaginationWalker{executor: executor}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// DefaultAfterVar returns the cursor variable name for a connection path:
// the last segment followed by "After" (repositories -> repositoriesAfter).
func DefaultAfterVar(path []string) string {
	if len(path) == 0 {
		return "after"
	}
	return path[len(path)-1] + "After"
}

// Paginate returns an iterator over every node of the connection at path.
// path may be given as separate segments or as one dotted string.
// An empty afterVar uses DefaultAfterVar. base is copied, never modified.
// Nothing is fetched until the first call to Next. A nil ctx means
// context.Background().
func (w *PaginationWalker) Paginate(
	ctx context.Context, q *domain.CompiledQuery, path []string, afterVar string, base domain.Variables,
) *NodeIterator {
	path = domain.SplitPath(strings.Join(path, "."))
	if afterVar == "" {
		afterVar = DefaultAfterVar(path)
	}
	if ctx == nil {
		ctx = context.Background()
	}

	return &NodeIterator{
		ctx:      ctx,
		walker:   w,
		query:    q,
		path:     path,
		afterVar: afterVar,
		vars:     base.Clone(),
		state:    stateFetching,
	}
}

type walkState int

const (
	stateFetching walkState = iota
	stateEmitting
	stateDone
)

// NodeIterator is a pull-based cursor over a paginated connection.
//
//	it := walker.Paginate(ctx, q, []string{"result", "repositories"}, "", vars)
//	for it.Next() {
//	    node := it.Node()
//	}
//	if err := it.Err(); err != nil { ... }
//
// Pages are fetched sequentially, only when the current page is exhausted.
// A NodeIterator must not be shared between goroutines.
type NodeIterator struct {
	ctx      context.Context
	walker   *PaginationWalker
	query    *domain.CompiledQuery
	path     []string
	afterVar string
	vars     domain.Variables

	state      walkState
	page       []domain.Node
	pos        int
	hasNext    bool
	nextCursor *string
	pending    error

	current  domain.Node
	err      error
	requests int
	emitted  int
}

// Next advances to the next node, fetching the next page if needed.
// It returns false when the connection is exhausted or an error occurred.
func (it *NodeIterator) Next() bool {
	for {
		switch it.state {
		case stateDone:
			return false

		case stateEmitting:
			if it.pos < len(it.page) {
				it.current = it.page[it.pos]
				it.pos++
				it.emitted++
				return true
			}
			if it.pending != nil {
				it.finish(it.pending)
				return false
			}
			if !it.hasNext {
				it.finish(nil)
				return false
			}
			if it.nextCursor == nil {
				it.finish(fmt.Errorf("%w: %s reports another page but no endCursor",
					domain.ErrStructural, strings.Join(it.path, ".")))
				return false
			}
			it.vars[it.afterVar] = *it.nextCursor
			it.state = stateFetching

		case stateFetching:
			if err := it.fetch(); err != nil {
				it.finish(err)
				return false
			}
		}
	}
}

// Node returns the current node. Valid only after Next returned true.
func (it *NodeIterator) Node() domain.Node {
	return it.current
}

// Err returns the error that ended iteration, if any.
func (it *NodeIterator) Err() error {
	return it.err
}

// Requests returns the number of requests issued so far.
func (it *NodeIterator) Requests() int {
	return it.requests
}

// Emitted returns the number of nodes returned by Next so far.
func (it *NodeIterator) Emitted() int {
	return it.emitted
}

// Variables returns a copy of the variables the next request would use.
func (it *NodeIterator) Variables() domain.Variables {
	return it.vars.Clone()
}

func (it *NodeIterator) fetch() error {
	if err := it.ctx.Err(); err != nil {
		return err
	}

	it.requests++
	logger.Debug("Fetching page %d of %s (%s=%v)",
		it.requests, strings.Join(it.path, "."), it.afterVar, it.vars[it.afterVar])

	doc, err := it.walker.executor.Execute(it.ctx, it.query, it.vars, nil)
	if err != nil {
		return err
	}

	it.page = nil
	it.pos = 0
	it.hasNext = false
	it.nextCursor = nil
	it.state = stateEmitting

	raw, _ := doc.Lookup(it.path...)
	conn, ok := raw.(map[string]any)
	if !ok {
		if it.walker.strict {
			return fmt.Errorf("%w: path %s did not resolve to an object",
				domain.ErrStructural, strings.Join(it.path, "."))
		}
		logger.Debug("Path %s did not resolve; ending pagination", strings.Join(it.path, "."))
		return nil
	}

	it.page = domain.ExtractNodes(conn)
	logger.Debug("Page %d returned %d nodes", it.requests, len(it.page))

	info, ok := domain.ExtractPageInfo(conn)
	if !ok {
		if it.walker.strict {
			it.pending = fmt.Errorf("%w: %s has no pageInfo",
				domain.ErrStructural, strings.Join(it.path, "."))
		}
		return nil
	}

	it.hasNext = info.HasNextPage
	it.nextCursor = info.EndCursor
	return nil
}

func (it *NodeIterator) finish(err error) {
	it.state = stateDone
	it.current = nil
	it.err = err
}

// Collect drains it into a slice.
func Collect(it *NodeIterator) ([]domain.Node, error) {
	var nodes []domain.Node
	for it.Next() {
		nodes = append(nodes, it.Node())
	}
	return nodes, it.Err()
}
