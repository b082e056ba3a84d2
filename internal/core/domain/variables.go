package domain

import "maps"

// Variables maps GraphQL variable names to values.
// Values are strings, integers, booleans or nil.
type Variables map[string]any

// MergeVariables merges layers in order of increasing precedence.
// The usual order is compiled defaults, caller base variables, per-call overrides.
// Nil layers are skipped and the result is always a fresh map.
func MergeVariables(layers ...Variables) Variables {
	merged := make(Variables)
	for _, layer := range layers {
		maps.Copy(merged, layer)
	}
	return merged
}

// Clone returns a shallow copy of v.
func (v Variables) Clone() Variables {
	return MergeVariables(v)
}
