package domain

// Compilation is what a query compiler produces for one query text.
type Compilation struct {
	// Handle is the compiler's executable representation. Opaque to the core.
	Handle any

	// OperationName is the name of the selected operation, empty for anonymous queries.
	OperationName string

	// Defaults holds the default values declared on the operation's variables.
	Defaults Variables
}

// CompiledQuery is a compiled query, deduplicated by the hash of its text.
// It is immutable once created; callers must not modify Defaults.
type CompiledQuery struct {
	Handle        any
	Hash          string
	Text          string
	OperationName string
	Defaults      Variables
}
