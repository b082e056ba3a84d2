// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - Transport: Sends a compiled query to the GraphQL endpoint
//   - QueryCompiler: Parses query text into an executable handle
//   - TokenProvider: Supplies the bearer credential
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - SchemaSource: Supplies the schema used for validation. Without it queries are parsed only.
//   - QuerySource: Resolves named queries. Without it only literal query text is accepted.
//   - DiagnosticSink: Receives GraphQL errors and failing nodes. Without it they are logged.
//   - ScanStore: Records scan runs. Without it scans are not persisted.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
