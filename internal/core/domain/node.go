package domain

import "strings"

// Node is one record from a connection's node list.
// It holds whatever fields the query selected; no schema typing is applied.
type Node map[string]any

// Lookup descends the node along path.
// A single element containing dots is split, so "defaultBranch.target" works.
func (n Node) Lookup(path ...string) (any, bool) {
	return lookup(map[string]any(n), path)
}

// Has reports whether path resolves to a non-nil value.
func (n Node) Has(path ...string) bool {
	v, ok := n.Lookup(path...)
	return ok && v != nil
}

// String returns the string at path, or "" if absent or not a string.
func (n Node) String(path ...string) string {
	v, _ := n.Lookup(path...)
	s, _ := v.(string)
	return s
}

// Bool returns the bool at path and whether it was present as a bool.
func (n Node) Bool(path ...string) (bool, bool) {
	v, _ := n.Lookup(path...)
	b, ok := v.(bool)
	return b, ok
}

// Int returns the integer at path and whether it was present as a number.
func (n Node) Int(path ...string) (int, bool) {
	v, _ := n.Lookup(path...)
	return AsInt(v)
}

// AsInt converts the numeric types produced by JSON normalisation to int.
func AsInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		if n == float64(int(n)) {
			return int(n), true
		}
	}
	return 0, false
}

// SplitPath turns "a.b.c" into ["a", "b", "c"], ignoring empty segments.
func SplitPath(path string) []string {
	return strings.FieldsFunc(path, func(r rune) bool { return r == '.' })
}

func lookup(root map[string]any, path []string) (any, bool) {
	if len(path) == 1 && strings.Contains(path[0], ".") {
		path = SplitPath(path[0])
	}

	var cur any = root
	for _, key := range path {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = obj[key]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}
