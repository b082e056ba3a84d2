package domain

import "errors"

// Domain errors represent scan failures.
// Adapters wrap them with %w so callers can classify with errors.Is.
var (
	// ErrConfiguration indicates the scan cannot start: a missing credential,
	// an unknown organisation or an unresolvable total count.
	ErrConfiguration = errors.New("configuration error")

	// ErrCredentialMissing indicates the API token is not set.
	// It is always reported together with ErrConfiguration.
	ErrCredentialMissing = errors.New("credential missing")

	// ErrCompilation indicates malformed query text or a schema mismatch.
	ErrCompilation = errors.New("query compilation failed")

	// ErrTransport indicates a network or protocol failure talking to the endpoint.
	ErrTransport = errors.New("transport error")

	// ErrPredicate indicates a filter predicate failed while evaluating a node.
	ErrPredicate = errors.New("predicate failed")

	// ErrStructural indicates the response does not have the shape the query promised.
	// Only raised in strict mode or when a cursor is missing on a non-final page.
	ErrStructural = errors.New("unexpected response structure")

	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")
)
