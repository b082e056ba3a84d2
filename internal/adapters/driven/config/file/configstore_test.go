package file

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfigStore_Success(t *testing.T) {
	tmpDir := t.TempDir()

	store, err := NewConfigStore(tmpDir)

	require.NoError(t, err)
	require.NotNil(t, store)
	assert.Equal(t, filepath.Join(tmpDir, FileName), store.Path())
	assert.NoFileExists(t, store.Path(), "opening must not create the file")
}

func TestNewConfigStore_DefaultDir(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	store, err := NewConfigStore("")

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".ghscan", FileName), store.Path())
	assert.NoDirExists(t, filepath.Join(home, ".ghscan"))
}

func TestConfigStore_ReadsNestedTables(t *testing.T) {
	tmpDir := t.TempDir()
	content := `
org = "fac"
page_size = 25

[schema]
url = "https://example.com/schema.graphql"
`
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, FileName), []byte(content), 0600))

	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	assert.Equal(t, "fac", store.GetString("org"))
	assert.Equal(t, 25, store.GetInt("page_size"))
	assert.Equal(t, "https://example.com/schema.graphql", store.GetString("schema.url"))
}

func TestConfigStore_Typed(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Set("str", "hello"))
	require.NoError(t, store.Set("int", int64(42)))
	require.NoError(t, store.Set("float", 7.0))
	require.NoError(t, store.Set("numstr", "13"))
	require.NoError(t, store.Set("bool", true))

	tests := []struct {
		name string
		got  any
		want any
	}{
		{"string", store.GetString("str"), "hello"},
		{"string of int", store.GetString("int"), ""},
		{"int", store.GetInt("int"), 42},
		{"integral float", store.GetInt("float"), 7},
		{"numeric string", store.GetInt("numstr"), 13},
		{"int of string", store.GetInt("str"), 0},
		{"missing int", store.GetInt("missing"), 0},
		{"int of bool", store.GetInt("bool"), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.got)
		})
	}

	_, ok := store.Get("missing")
	assert.False(t, ok)
}

func TestConfigStore_Persistence(t *testing.T) {
	tmpDir := filepath.Join(t.TempDir(), "nested", "dir")

	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)
	require.NoError(t, store.Set("org", "fac"))
	require.NoError(t, store.Set("schema.url", "https://example.com"))
	require.NoError(t, store.Set("page_size", 50))

	reopened, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	assert.Equal(t, "fac", reopened.GetString("org"))
	assert.Equal(t, "https://example.com", reopened.GetString("schema.url"))
	assert.Equal(t, 50, reopened.GetInt("page_size"))

	data, err := os.ReadFile(reopened.Path())
	require.NoError(t, err)
	assert.Contains(t, string(data), "[schema]")
}

func TestConfigStore_FilePermissions(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, store.Save())

	info, err := os.Stat(store.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestConfigStore_EmptyFile(t *testing.T) {
	tmpDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, FileName), nil, 0600))

	store, err := NewConfigStore(tmpDir)

	require.NoError(t, err)
	assert.Empty(t, store.GetString("org"))
}

func TestNewConfigStore_InvalidTOML(t *testing.T) {
	tmpDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, FileName), []byte("org = = ["), 0600))

	_, err := NewConfigStore(tmpDir)

	assert.ErrorContains(t, err, "parsing")
}

func TestConfigStore_Concurrency(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := range 10 {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_ = store.Set("key", n)
			_ = store.GetInt("key")
		}(i)
	}
	wg.Wait()

	_, ok := store.Get("key")
	assert.True(t, ok)
}

func TestUnflattenMap(t *testing.T) {
	got := unflattenMap(map[string]any{
		"org":        "fac",
		"schema.url": "u",
		"schema.ttl": int64(3),
		"a.b.c":      true,
	})

	assert.Equal(t, map[string]any{
		"org":    "fac",
		"schema": map[string]any{"url": "u", "ttl": int64(3)},
		"a":      map[string]any{"b": map[string]any{"c": true}},
	}, got)
	assert.Equal(t, map[string]any{
		"org":        "fac",
		"schema.url": "u",
		"schema.ttl": int64(3),
		"a.b.c":      true,
	}, flattenMap(got, ""))
}
