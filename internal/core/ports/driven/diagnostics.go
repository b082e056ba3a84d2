package driven

import "github.com/custodia-labs/ghscan/internal/core/domain"

// DiagnosticSink receives non-fatal and post-mortem diagnostics.
type DiagnosticSink interface {
	// GraphQLErrors is called once per response that carried an errors list.
	GraphQLErrors(errs []domain.GraphQLError)

	// NodeFailure is called with the offending node before a scan aborts.
	// node is nil when the failure happened before any node was seen.
	NodeFailure(node domain.Node, err error)
}
