package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/custodia-labs/ghscan/internal/core/domain"
)

// fakeCompiler implements driven.QueryCompiler and counts compilations.
type fakeCompiler struct {
	mu       sync.Mutex
	calls    map[string]int
	defaults domain.Variables
	err      error
}

func newFakeCompiler() *fakeCompiler {
	return &fakeCompiler{calls: make(map[string]int)}
}

func (c *fakeCompiler) Compile(text string) (domain.Compilation, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls[text]++
	if c.err != nil {
		return domain.Compilation{}, c.err
	}
	return domain.Compilation{
		Handle:   fmt.Sprintf("handle-%d", len(c.calls)),
		Defaults: c.defaults,
	}, nil
}

func (c *fakeCompiler) count(text string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls[text]
}

// fakeTransport implements driven.Transport with a scripted handler.
type fakeTransport struct {
	mu      sync.Mutex
	handler func(call int, q *domain.CompiledQuery, vars domain.Variables) (string, error)
	calls   []domain.Variables
	queries []*domain.CompiledQuery
}

func (t *fakeTransport) Send(_ context.Context, q *domain.CompiledQuery, vars domain.Variables) ([]byte, error) {
	t.mu.Lock()
	call := len(t.calls)
	t.calls = append(t.calls, vars.Clone())
	t.queries = append(t.queries, q)
	t.mu.Unlock()

	body, err := t.handler(call, q, vars)
	if err != nil {
		return nil, err
	}
	return []byte(body), nil
}

func (t *fakeTransport) callCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.calls)
}

// pagesTransport replays bodies in order and fails past the end.
func pagesTransport(bodies ...string) *fakeTransport {
	return &fakeTransport{
		handler: func(call int, _ *domain.CompiledQuery, _ domain.Variables) (string, error) {
			if call >= len(bodies) {
				return "", fmt.Errorf("%w: unexpected request %d", domain.ErrTransport, call+1)
			}
			return bodies[call], nil
		},
	}
}

// recordingSink implements driven.DiagnosticSink for assertions.
type recordingSink struct {
	graphQLErrors []domain.GraphQLError
	failedNodes   []domain.Node
	failures      []error
}

func (s *recordingSink) GraphQLErrors(errs []domain.GraphQLError) {
	s.graphQLErrors = append(s.graphQLErrors, errs...)
}

func (s *recordingSink) NodeFailure(node domain.Node, err error) {
	s.failedNodes = append(s.failedNodes, node)
	s.failures = append(s.failures, err)
}

// repo builds a repository node as returned by the repositories query.
func repo(name string, archived bool) map[string]any {
	return map[string]any{"name": name, "isArchived": archived}
}

// connectionPage renders a response body with the connection at result.repositories.
func connectionPage(nodes []map[string]any, hasNext bool, cursor any) string {
	return renderBody(map[string]any{
		"result": map[string]any{
			"repositories": map[string]any{
				"pageInfo": map[string]any{"hasNextPage": hasNext, "endCursor": cursor},
				"nodes":    nodes,
			},
		},
	}, nil)
}

// totalBody renders a total-count response.
func totalBody(total any) string {
	if total == nil {
		return renderBody(map[string]any{"result": nil}, []map[string]any{
			{"type": "NOT_FOUND", "message": "Could not resolve to an Organization with the login of 'nope'."},
		})
	}
	return renderBody(map[string]any{
		"result": map[string]any{"repositories": map[string]any{"totalCount": total}},
	}, nil)
}

func renderBody(data map[string]any, errs []map[string]any) string {
	body := map[string]any{"data": data}
	if errs != nil {
		body["errors"] = errs
	}
	out, err := json.Marshal(body)
	if err != nil {
		panic(err)
	}
	return string(out)
}

func compiled(text string, defaults domain.Variables) *domain.CompiledQuery {
	return &domain.CompiledQuery{
		Handle:   text,
		Hash:     HashQuery(text),
		Text:     text,
		Defaults: defaults,
	}
}

func names(nodes []domain.Node) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = n.String("name")
	}
	return out
}
