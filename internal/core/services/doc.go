// Package services implements the scanning core.
// Services contain the pagination and filtering logic and orchestrate
// calls to driven ports (adapters).
//
// The pieces, leaves first:
//
//   - QueryCompiler: compiles query text once per content hash
//   - QueryExecutor: runs a compiled query with merged variables
//   - PaginationWalker: flattens a cursor-paginated connection into a NodeIterator
//   - ScanPipeline: filters, counts and limits the walker's nodes
//   - ScanService: ties query loading, compilation, scanning and recording together
//
// Iterators are pull-based and single-consumer: a page is fetched only when
// the consumer asks for a node beyond the current page.
package services
