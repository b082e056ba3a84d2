// Package graphql implements the GraphQL driven adapters: an HTTP transport
// for the GitHub GraphQL endpoint and a query compiler backed by gqlparser.
//
// # Transport
//
// [HTTPTransport] POSTs {query, variables, operationName} to the endpoint
// with a bearer token obtained from a [driven.TokenProvider]. The token is
// read lazily on the first request, so a missing GITHUB_PAT surfaces as a
// configuration error before any network traffic.
//
// Non-2xx responses are classified with go-github's CheckResponse:
//
//   - 401/404/5xx become [*APIError]
//   - primary and secondary rate limits become [*RateLimitError]
//
// Both are wrapped with [domain.ErrTransport]. There is no retry and no
// throttling; rate limit headers are only observed for diagnostics.
//
// GraphQL-level errors arrive with HTTP 200 and are left in the body for
// the executor to report.
//
// # Compiler
//
// [Compiler] parses query text and, when a schema is loaded, validates it.
// Without a schema it runs in schema-less mode: syntax is checked but field
// names are not. Variable defaults declared on the operation are extracted
// so the executor can merge them under caller variables.
package graphql
