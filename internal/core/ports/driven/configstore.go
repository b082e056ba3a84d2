package driven

// ConfigStore is flat key/value configuration with typed reads.
// Keys are dotted ("schema.url"); Set persists immediately.
type ConfigStore interface {
	// Get returns the raw value and whether the key exists.
	Get(key string) (any, bool)

	// GetString returns "" when the key is absent or not a string.
	GetString(key string) string

	// GetInt returns 0 when the key is absent or not integral.
	GetInt(key string) int

	Set(key string, value any) error

	// Path returns the backing file.
	Path() string
}
