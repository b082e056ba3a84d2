package services

import (
	"encoding/json"

	"github.com/custodia-labs/ghscan/internal/core/domain"
	"github.com/custodia-labs/ghscan/internal/core/ports/driven"
	"github.com/custodia-labs/ghscan/internal/logger"
)

// Ensure LogSink implements the interface.
var _ driven.DiagnosticSink = LogSink{}

// LogSink writes diagnostics through the logger at error level.
type LogSink struct{}

// GraphQLErrors logs each error of a partial response.
func (LogSink) GraphQLErrors(errs []domain.GraphQLError) {
	for _, e := range errs {
		logger.Error("graphql: %s", e.Error())
	}
}

// NodeFailure logs the failure and the full structure of the node being processed.
func (LogSink) NodeFailure(node domain.Node, err error) {
	logger.Error("scan aborted: %v", err)
	if node == nil {
		return
	}
	data, mErr := json.MarshalIndent(node, "", "  ")
	if mErr != nil {
		logger.Error("node: %#v", node)
		return
	}
	logger.Error("node:\n%s", data)
}
