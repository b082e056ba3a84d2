package domain

import (
	"fmt"
	"strings"
)

// ResultDocument is a normalised GraphQL response.
// Data mirrors the query shape using only map[string]any, []any and scalars.
type ResultDocument struct {
	Data   map[string]any `json:"data" yaml:"data"`
	Errors []GraphQLError `json:"errors,omitempty" yaml:"errors,omitempty"`
}

// HasErrors reports whether the response carried GraphQL errors.
func (r *ResultDocument) HasErrors() bool {
	return r != nil && len(r.Errors) > 0
}

// Lookup descends Data along path.
func (r *ResultDocument) Lookup(path ...string) (any, bool) {
	if r == nil {
		return nil, false
	}
	return lookup(r.Data, path)
}

// GraphQLError is one entry of a response's errors list.
type GraphQLError struct {
	Message    string         `json:"message" yaml:"message"`
	Type       string         `json:"type,omitempty" yaml:"type,omitempty"`
	Path       []any          `json:"path,omitempty" yaml:"path,omitempty"`
	Locations  []Location     `json:"locations,omitempty" yaml:"locations,omitempty"`
	Extensions map[string]any `json:"extensions,omitempty" yaml:"extensions,omitempty"`
}

// Location is a line/column position in the query text.
type Location struct {
	Line   int `json:"line" yaml:"line"`
	Column int `json:"column" yaml:"column"`
}

func (e GraphQLError) Error() string {
	var b strings.Builder
	if e.Type != "" {
		b.WriteString(e.Type)
		b.WriteString(": ")
	}
	b.WriteString(e.Message)
	if len(e.Path) > 0 {
		parts := make([]string, len(e.Path))
		for i, p := range e.Path {
			parts[i] = fmt.Sprint(p)
		}
		fmt.Fprintf(&b, " (path: %s)", strings.Join(parts, "."))
	}
	return b.String()
}

// PageInfo is the cursor state of a paginated connection.
type PageInfo struct {
	HasNextPage bool
	EndCursor   *string
}

// ExtractPageInfo reads pageInfo from a connection object.
// The second result is false when pageInfo is absent or not an object.
func ExtractPageInfo(connection map[string]any) (PageInfo, bool) {
	raw, ok := connection["pageInfo"].(map[string]any)
	if !ok {
		return PageInfo{}, false
	}

	var info PageInfo
	info.HasNextPage, _ = raw["hasNextPage"].(bool)
	if cursor, ok := raw["endCursor"].(string); ok {
		info.EndCursor = &cursor
	}
	return info, true
}

// ExtractNodes returns the nodes list of a connection object.
// Entries that are not objects are skipped; GraphQL returns null for
// nodes the viewer cannot see.
func ExtractNodes(connection map[string]any) []Node {
	raw, ok := connection["nodes"].([]any)
	if !ok {
		return nil
	}

	nodes := make([]Node, 0, len(raw))
	for _, item := range raw {
		if m, ok := item.(map[string]any); ok {
			nodes = append(nodes, Node(m))
		}
	}
	return nodes
}
