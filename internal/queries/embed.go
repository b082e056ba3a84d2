// Package queries embeds the built-in GraphQL queries.
//
// Each file is addressable by its base name without the .graphql extension,
// e.g. "repositories" or "total".
package queries

import "embed"

// Extension is the file extension of query files.
const Extension = ".graphql"

// FS contains the built-in queries embedded at compile time.
//
//go:embed *.graphql
var FS embed.FS
