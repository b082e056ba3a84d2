package driven

import "context"

// SchemaSource supplies the SDL of the remote schema.
// Implementations may cache a snapshot on disk.
type SchemaSource interface {
	// Schema returns the SDL text. An empty string means no schema is
	// available and queries are compiled without validation.
	Schema(ctx context.Context) (string, error)

	// Invalidate discards any cached snapshot.
	Invalidate() error
}
