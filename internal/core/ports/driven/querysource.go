package driven

// QuerySource resolves query text.
type QuerySource interface {
	// Load returns literal query text unchanged, or the text of a named query.
	Load(nameOrText string) (string, error)
}
