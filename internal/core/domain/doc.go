// Package domain defines the core entities for ghscan.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - CompiledQuery: A parsed query, deduplicated by content hash
//   - Variables: GraphQL variables with layered merge semantics
//   - ResultDocument: A normalised GraphQL response (data + errors)
//   - PageInfo: Cursor state of a paginated connection
//   - Node: One schema-less record from a connection's node list
//   - ScanStats: Counters of a scan run
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
