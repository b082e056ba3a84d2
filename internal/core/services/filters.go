package services

import (
	"fmt"
	"regexp"

	"github.com/custodia-labs/ghscan/internal/core/domain"
)

// Node field paths selected by the built-in repositories query.
const (
	FieldArchived    = "isArchived"
	FieldName        = "name"
	FieldFile        = "defaultBranch.target.file"
	FieldFileContent = "defaultBranch.target.file.object.text"
)

// Predicate decides whether a node is accepted.
// An error aborts the scan.
type Predicate func(domain.Node) (bool, error)

// ArchivedFilter accepts every node when all is set; otherwise only nodes
// whose isArchived flag equals archived. A node without a boolean isArchived
// field is an error, since the query did not select what the filter needs.
func ArchivedFilter(all, archived bool) Predicate {
	return func(n domain.Node) (bool, error) {
		if all {
			return true, nil
		}
		v, ok := n.Bool(FieldArchived)
		if !ok {
			return false, fmt.Errorf("node has no boolean %s field", FieldArchived)
		}
		return v == archived, nil
	}
}

// FileExistsFilter accepts nodes where the field at path is present and non-null.
// An empty path uses FieldFile.
func FileExistsFilter(path string) Predicate {
	if path == "" {
		path = FieldFile
	}
	return func(n domain.Node) (bool, error) {
		return n.Has(path), nil
	}
}

// ContentMatchFilter accepts nodes whose string at path matches re.
// An empty path uses FieldFileContent. Missing content never matches.
func ContentMatchFilter(re *regexp.Regexp, path string) Predicate {
	if path == "" {
		path = FieldFileContent
	}
	return func(n domain.Node) (bool, error) {
		v, ok := n.Lookup(path)
		if !ok || v == nil {
			return false, nil
		}
		s, ok := v.(string)
		if !ok {
			return false, fmt.Errorf("%s is %T, not a string", path, v)
		}
		return re.MatchString(s), nil
	}
}

// NameMatchFilter accepts nodes whose name matches re.
func NameMatchFilter(re *regexp.Regexp) Predicate {
	return func(n domain.Node) (bool, error) {
		return re.MatchString(n.String(FieldName)), nil
	}
}
