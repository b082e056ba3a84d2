package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/custodia-labs/ghscan/internal/core/domain"
	"github.com/custodia-labs/ghscan/internal/core/ports/driven"
	"github.com/custodia-labs/ghscan/internal/logger"
)

// Executor runs compiled queries. QueryExecutor is the production implementation.
type Executor interface {
	Execute(ctx context.Context, q *domain.CompiledQuery, base, override domain.Variables) (*domain.ResultDocument, error)
}

// Ensure QueryExecutor implements the interface.
var _ Executor = (*QueryExecutor)(nil)

// QueryExecutor sends compiled queries through a transport and normalises the response.
type QueryExecutor struct {
	transport driven.Transport
	sink      driven.DiagnosticSink
}

// NewQueryExecutor creates an executor. A nil sink logs diagnostics.
func NewQueryExecutor(transport driven.Transport, sink driven.DiagnosticSink) *QueryExecutor {
	if sink == nil {
		sink = LogSink{}
	}
	return &QueryExecutor{
		transport: transport,
		sink:      sink,
	}
}

// Execute runs q with variables merged as defaults < base < override.
// GraphQL errors in the response are reported to the sink and do not fail
// the call; the (possibly partial) data is still returned. Transport errors
// are returned unchanged.
func (e *QueryExecutor) Execute(
	ctx context.Context, q *domain.CompiledQuery, base, override domain.Variables,
) (*domain.ResultDocument, error) {
	if q == nil {
		return nil, fmt.Errorf("%w: nil query", domain.ErrInvalidInput)
	}

	vars := domain.MergeVariables(q.Defaults, base, override)
	logger.Debug("Executing query %s with %d variables", shortHash(q.Hash), len(vars))

	body, err := e.transport.Send(ctx, q, vars)
	if err != nil {
		return nil, err
	}

	doc, err := DecodeResult(body)
	if err != nil {
		return nil, err
	}

	if doc.HasErrors() {
		e.sink.GraphQLErrors(doc.Errors)
	}

	return doc, nil
}

// DecodeResult parses a GraphQL response body into a normalised ResultDocument.
// Numbers become int64 when integral and float64 otherwise.
func DecodeResult(body []byte) (*domain.ResultDocument, error) {
	var raw struct {
		Data   json.RawMessage       `json:"data"`
		Errors []domain.GraphQLError `json:"errors"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("%w: decode response: %w", domain.ErrTransport, err)
	}

	data := make(map[string]any)
	if len(raw.Data) > 0 && !bytes.Equal(raw.Data, []byte("null")) {
		dec := json.NewDecoder(bytes.NewReader(raw.Data))
		dec.UseNumber()

		var v any
		if err := dec.Decode(&v); err != nil {
			return nil, fmt.Errorf("%w: decode data: %w", domain.ErrTransport, err)
		}
		m, ok := normalizeValue(v).(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: data is not an object", domain.ErrTransport)
		}
		data = m
	}

	return &domain.ResultDocument{Data: data, Errors: raw.Errors}, nil
}

func normalizeValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		for k, item := range val {
			val[k] = normalizeValue(item)
		}
		return val
	case []any:
		for i, item := range val {
			val[i] = normalizeValue(item)
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

func shortHash(hash string) string {
	if len(hash) > 12 {
		return hash[:12]
	}
	return hash
}
