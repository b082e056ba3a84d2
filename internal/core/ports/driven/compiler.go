package driven

import "github.com/custodia-labs/ghscan/internal/core/domain"

// QueryCompiler turns query text into an executable handle.
// Compilation may be expensive; callers deduplicate through a registry.
type QueryCompiler interface {
	Compile(text string) (domain.Compilation, error)
}
