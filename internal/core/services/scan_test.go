package services

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ghscan/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/ghscan/internal/core/domain"
)

// mapQuerySource implements driven.QuerySource from a fixed map.
type mapQuerySource map[string]string

func (m mapQuerySource) Load(nameOrText string) (string, error) {
	if text, ok := m[nameOrText]; ok {
		return text, nil
	}
	return "", fmt.Errorf("query %q: %w", nameOrText, domain.ErrNotFound)
}

const (
	pagesText = "query pages"
	totalText = "query total"
)

func newScanService(t *testing.T, total any, pages ...string) (*ScanService, *memory.ScanStore, *fakeTransport) {
	t.Helper()
	pageCalls := 0
	tr := &fakeTransport{handler: func(_ int, q *domain.CompiledQuery, _ domain.Variables) (string, error) {
		if q.Text == totalText {
			return totalBody(total), nil
		}
		if pageCalls >= len(pages) {
			return "", errors.New("unexpected page request")
		}
		pageCalls++
		return pages[pageCalls-1], nil
	}}
	store := memory.NewScanStore()
	queries := mapQuerySource{DefaultQuery: pagesText, DefaultTotalQuery: totalText}
	svc := NewScanService(queries, NewQueryCompiler(newFakeCompiler(), nil), NewQueryExecutor(tr, nil), &recordingSink{}, store)
	return svc, store, tr
}

func TestScanService_Scan(t *testing.T) {
	svc, store, tr := newScanService(t, 5, connectionPage(fiveRepos(), false, nil))
	ctx := context.Background()

	var visited []string
	result, err := svc.Scan(ctx, ScanOptions{Org: "fac", Limit: 2}, func(n domain.Node) error {
		visited = append(visited, n.String("name"))
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"1", "3"}, visited)
	assert.Equal(t, 3, result.Stats.Scanned)
	assert.Equal(t, 2, result.Stats.Matched)
	require.NotNil(t, result.Stats.Total)
	assert.Equal(t, 5, *result.Stats.Total)
	assert.Equal(t, 1, result.Requests)
	assert.Equal(t, 2, tr.callCount())

	run, err := store.GetRun(ctx, result.RunID)
	require.NoError(t, err)
	assert.Equal(t, "fac", run.Org)
	assert.Equal(t, 3, run.Scanned)
	assert.Equal(t, 2, run.Matched)
	assert.Equal(t, 5, run.Total)
	assert.Empty(t, run.Error)
	assert.Equal(t, HashQuery(pagesText), run.Query)
	assert.False(t, run.FinishedAt.Before(run.StartedAt))

	matches, err := svc.Matches(ctx, result.RunID)
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, "1", matches[0].Name)
	assert.Equal(t, 1, matches[0].Position)
	assert.Equal(t, "3", matches[1].Name)
	assert.Equal(t, 2, matches[1].Position)
}

func TestScanService_ScanRecordsConfigurationError(t *testing.T) {
	svc, store, tr := newScanService(t, nil, connectionPage(fiveRepos(), false, nil))
	ctx := context.Background()

	result, err := svc.Scan(ctx, ScanOptions{Org: "nope"}, nil)

	assert.Nil(t, result)
	assert.ErrorIs(t, err, domain.ErrConfiguration)
	assert.Equal(t, 1, tr.callCount())

	runs, err := store.ListRuns(ctx, 0)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Contains(t, runs[0].Error, "configuration error")
}

func TestScanService_VisitErrorAborts(t *testing.T) {
	svc, _, _ := newScanService(t, 5, connectionPage(fiveRepos(), false, nil))
	sink := svc.sink.(*recordingSink)
	stop := errors.New("write failed")

	result, err := svc.Scan(context.Background(), ScanOptions{All: true}, func(n domain.Node) error {
		if n.String("name") == "2" {
			return stop
		}
		return nil
	})

	assert.ErrorIs(t, err, stop)
	require.NotNil(t, result)
	assert.Equal(t, 2, result.Stats.Scanned)
	require.Len(t, sink.failedNodes, 1)
	assert.Equal(t, "2", sink.failedNodes[0].String("name"))
}

func TestScanService_ReusesCompiledQueries(t *testing.T) {
	page := connectionPage(fiveRepos(), false, nil)
	svc, _, _ := newScanService(t, 5, page, page)

	_, err := svc.Scan(context.Background(), ScanOptions{}, nil)
	require.NoError(t, err)
	_, err = svc.Scan(context.Background(), ScanOptions{}, nil)
	require.NoError(t, err)

	assert.Equal(t, 2, svc.compiler.Registry().Len())
}

func TestScanService_UnknownQuery(t *testing.T) {
	svc, _, _ := newScanService(t, 5)

	_, err := svc.Scan(context.Background(), ScanOptions{Query: "missing"}, nil)

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestScanService_Query(t *testing.T) {
	svc, _, tr := newScanService(t, 7)

	doc, err := svc.Query(context.Background(), DefaultTotalQuery, domain.Variables{"org": "fac"})

	require.NoError(t, err)
	v, ok := doc.Lookup("result", "repositories", "totalCount")
	assert.True(t, ok)
	assert.Equal(t, int64(7), v)
	assert.Equal(t, "fac", tr.calls[0]["org"])
}

func TestScanService_LiteralQueryWithoutSource(t *testing.T) {
	tr := pagesTransport(`{"data":{"viewer":{"login":"octocat"}}}`)
	svc := NewScanService(nil, NewQueryCompiler(newFakeCompiler(), nil), NewQueryExecutor(tr, nil), nil, nil)

	doc, err := svc.Query(context.Background(), "{ viewer { login } }", nil)

	require.NoError(t, err)
	assert.Equal(t, "{ viewer { login } }", tr.queries[0].Text)
	assert.Equal(t, "octocat", doc.Data["viewer"].(map[string]any)["login"])
}

func TestScanService_HistoryWithoutStore(t *testing.T) {
	svc := NewScanService(nil, NewQueryCompiler(newFakeCompiler(), nil), nil, nil, nil)

	_, err := svc.History(context.Background(), 10)
	assert.ErrorIs(t, err, ErrStoreUnavailable)

	_, err = svc.Matches(context.Background(), "x")
	assert.ErrorIs(t, err, ErrStoreUnavailable)
}

func TestScanService_History(t *testing.T) {
	svc, _, _ := newScanService(t, 0, connectionPage(nil, false, nil))

	result, err := svc.Scan(context.Background(), ScanOptions{Org: "fac"}, nil)
	require.NoError(t, err)

	runs, err := svc.History(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, result.RunID, runs[0].ID)
}

func starredPage() string {
	return renderBody(map[string]any{
		"viewer": map[string]any{"starred": map[string]any{
			"totalCount": 2,
			"pageInfo":   map[string]any{"hasNextPage": false, "endCursor": "s1"},
			"nodes":      []any{map[string]any{"name": "x"}, map[string]any{"name": "y"}},
		}},
	}, nil)
}

func TestScanService_CustomQueryReadsOwnTotal(t *testing.T) {
	tr := &fakeTransport{handler: func(_ int, q *domain.CompiledQuery, _ domain.Variables) (string, error) {
		if q.Text != "query starred" {
			return "", fmt.Errorf("unexpected query %q", q.Text)
		}
		return starredPage(), nil
	}}
	queries := mapQuerySource{"starred": "query starred", DefaultTotalQuery: totalText}
	svc := NewScanService(queries, NewQueryCompiler(newFakeCompiler(), nil), NewQueryExecutor(tr, nil), &recordingSink{}, nil)

	var visited []string
	result, err := svc.Scan(context.Background(), ScanOptions{
		Org: "fac", Query: "starred", Path: "viewer.starred", All: true,
	}, func(n domain.Node) error {
		visited = append(visited, n.String("name"))
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"x", "y"}, visited)
	require.NotNil(t, result.Stats.Total)
	assert.Equal(t, 2, *result.Stats.Total)
	for _, q := range tr.queries {
		assert.Equal(t, "query starred", q.Text)
	}
}

func TestScanService_ExplicitTotalQueryAndPath(t *testing.T) {
	tr := &fakeTransport{handler: func(_ int, q *domain.CompiledQuery, _ domain.Variables) (string, error) {
		if q.Text == "query count" {
			return renderBody(map[string]any{"viewer": map[string]any{"stars": 9}}, nil), nil
		}
		return starredPage(), nil
	}}
	queries := mapQuerySource{"starred": "query starred", "count": "query count"}
	svc := NewScanService(queries, NewQueryCompiler(newFakeCompiler(), nil), NewQueryExecutor(tr, nil), &recordingSink{}, nil)

	result, err := svc.Scan(context.Background(), ScanOptions{
		Query: "starred", Path: "viewer.starred", TotalQuery: "count", TotalPath: "viewer.stars", All: true,
	}, nil)

	require.NoError(t, err)
	require.NotNil(t, result.Stats.Total)
	assert.Equal(t, 9, *result.Stats.Total)
	assert.Equal(t, 2, result.Stats.Matched)
	assert.Equal(t, "query count", tr.queries[0].Text)
}

func TestScanService_BuiltinQueryUsesTotalQuery(t *testing.T) {
	svc, _, tr := newScanService(t, 5, connectionPage(fiveRepos(), false, nil))

	_, err := svc.Scan(context.Background(), ScanOptions{Org: "fac"}, nil)

	require.NoError(t, err)
	assert.Equal(t, totalText, tr.queries[0].Text)
	assert.Equal(t, pagesText, tr.queries[1].Text)
}
