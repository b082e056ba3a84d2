package services

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"

	"github.com/custodia-labs/ghscan/internal/core/domain"
	"github.com/custodia-labs/ghscan/internal/core/ports/driven"
	"github.com/custodia-labs/ghscan/internal/logger"
)

// QueryRegistry holds compiled queries keyed by content hash.
// Entries live as long as the registry; nothing is evicted.
type QueryRegistry struct {
	mu      sync.Mutex
	queries map[string]*domain.CompiledQuery
}

// NewQueryRegistry creates an empty registry.
func NewQueryRegistry() *QueryRegistry {
	return &QueryRegistry{
		queries: make(map[string]*domain.CompiledQuery),
	}
}

// Get returns the compiled query stored under hash.
func (r *QueryRegistry) Get(hash string) (*domain.CompiledQuery, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	q, ok := r.queries[hash]
	return q, ok
}

// Len returns the number of distinct compiled queries.
func (r *QueryRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.queries)
}

// HashQuery returns the hex SHA-256 of query text.
func HashQuery(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

// QueryCompiler compiles query text at most once per distinct content.
type QueryCompiler struct {
	compiler driven.QueryCompiler
	registry *QueryRegistry
}

// NewQueryCompiler creates a compiler backed by registry.
// A nil registry gets a fresh one.
func NewQueryCompiler(compiler driven.QueryCompiler, registry *QueryRegistry) *QueryCompiler {
	if registry == nil {
		registry = NewQueryRegistry()
	}
	return &QueryCompiler{
		compiler: compiler,
		registry: registry,
	}
}

// Registry returns the backing registry.
func (c *QueryCompiler) Registry() *QueryRegistry {
	return c.registry
}

// Compile returns the compiled form of text.
// Identical text always yields the identical *CompiledQuery.
func (c *QueryCompiler) Compile(text string) (*domain.CompiledQuery, error) {
	hash := HashQuery(text)

	// The lock is held across compilation so concurrent callers with the
	// same text never compile it twice.
	c.registry.mu.Lock()
	defer c.registry.mu.Unlock()

	if q, ok := c.registry.queries[hash]; ok {
		logger.Debug("Query %s already compiled", shortHash(hash))
		return q, nil
	}

	if c.compiler == nil {
		return nil, fmt.Errorf("%w: no compiler configured", domain.ErrCompilation)
	}

	compiled, err := c.compiler.Compile(text)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrCompilation, err)
	}

	q := &domain.CompiledQuery{
		Handle:        compiled.Handle,
		Hash:          hash,
		Text:          text,
		OperationName: compiled.OperationName,
		Defaults:      compiled.Defaults.Clone(),
	}
	c.registry.queries[hash] = q
	logger.Debug("Compiled query %s (operation %q, %d defaults)", shortHash(hash), q.OperationName, len(q.Defaults))

	return q, nil
}
