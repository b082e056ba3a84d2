package driven

import (
	"context"

	"github.com/custodia-labs/ghscan/internal/core/domain"
)

// Transport sends compiled queries to a GraphQL endpoint.
type Transport interface {
	// Send executes the query with the given variables and returns the raw
	// JSON response body. GraphQL-level errors are part of the body, not the
	// returned error; the error is reserved for auth, network and HTTP failures.
	Send(ctx context.Context, query *domain.CompiledQuery, vars domain.Variables) ([]byte, error)
}
