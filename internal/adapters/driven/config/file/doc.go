// Package file provides the TOML-backed configuration store.
//
// The file lives at ~/.ghscan/config.toml by default. Nested tables are
// flattened to dot-notation keys on load, so
//
//	[schema]
//	url = "..."
//
// is read as "schema.url".
package file
