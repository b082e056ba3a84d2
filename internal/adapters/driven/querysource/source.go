// Package querysource resolves query names to GraphQL text.
//
// Lookup order for a name is: a readable .graphql file path, the configured
// query directory, then the built-in queries embedded in the binary.
// Anything containing a selection set is treated as literal query text.
package querysource

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/custodia-labs/ghscan/internal/core/domain"
	"github.com/custodia-labs/ghscan/internal/core/ports/driven"
	"github.com/custodia-labs/ghscan/internal/queries"
)

// Ensure Source implements the QuerySource interface.
var _ driven.QuerySource = (*Source)(nil)

// Source loads queries from an optional directory and an embedded set.
type Source struct {
	dir      string
	builtins fs.FS
}

// New creates a source over dir (may be empty) and the built-in queries.
func New(dir string) *Source {
	return NewWithFS(dir, queries.FS)
}

// NewWithFS creates a source with a custom built-in set.
func NewWithFS(dir string, builtins fs.FS) *Source {
	return &Source{dir: dir, builtins: builtins}
}

// IsLiteral reports whether s is query text rather than a name.
func IsLiteral(s string) bool {
	return strings.Contains(s, "{")
}

// Load returns literal text unchanged, or the text of the named query.
func (s *Source) Load(nameOrText string) (string, error) {
	if IsLiteral(nameOrText) {
		return nameOrText, nil
	}

	name := strings.TrimSpace(nameOrText)
	if name == "" {
		return "", fmt.Errorf("%w: empty query name", domain.ErrInvalidInput)
	}

	if strings.HasSuffix(name, queries.Extension) {
		if data, err := os.ReadFile(name); err == nil {
			return string(data), nil
		}
	}

	file := strings.TrimSuffix(name, queries.Extension) + queries.Extension

	if s.dir != "" {
		data, err := os.ReadFile(filepath.Join(s.dir, file))
		if err == nil {
			return string(data), nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("read query %s: %w", name, err)
		}
	}

	if s.builtins != nil {
		data, err := fs.ReadFile(s.builtins, file)
		if err == nil {
			return string(data), nil
		}
	}

	return "", fmt.Errorf("query %q: %w", name, domain.ErrNotFound)
}

// Names lists the available query names, directory entries shadowing built-ins.
func (s *Source) Names() ([]string, error) {
	seen := make(map[string]bool)

	if s.builtins != nil {
		entries, err := fs.Glob(s.builtins, "*"+queries.Extension)
		if err != nil {
			return nil, fmt.Errorf("list built-in queries: %w", err)
		}
		for _, e := range entries {
			seen[strings.TrimSuffix(e, queries.Extension)] = true
		}
	}

	if s.dir != "" {
		entries, err := filepath.Glob(filepath.Join(s.dir, "*"+queries.Extension))
		if err != nil {
			return nil, fmt.Errorf("list queries in %s: %w", s.dir, err)
		}
		for _, e := range entries {
			seen[strings.TrimSuffix(filepath.Base(e), queries.Extension)] = true
		}
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}
