package cache

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/repodoc/pkg/models"
)

func TestKeyNamespacing(t *testing.T) {
	repo := models.RepositoryID("acme/widgets")

	tests := []struct {
		name string
		got  Key
		want Key
	}{
		{"tree root", TreeKey(repo, ""), "repo-tree:acme/widgets:root"},
		{"tree subdir", TreeKey(repo, "src/lib"), "repo-tree:acme/widgets:src/lib"},
		{"file no revision", FileKey(repo, "README.md", ""), "file-content:acme/widgets/README.md"},
		{"file with revision", FileKey(repo, "README.md", "abc123"), "file-content:acme/widgets/README.md@abc123"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.got)
		})
	}
}

func TestMemoryStoreRoundTrip(t *testing.T) {
	store := NewMemoryStore(time.Minute)

	store.Set("k1", []byte(`{"a":1}`))
	raw, ok := store.Get("k1")
	require.True(t, ok)
	assert.Equal(t, []byte(`{"a":1}`), raw)

	store.Delete("k1")
	_, ok = store.Get("k1")
	assert.False(t, ok)
}

func TestFileStoreRoundTrip(t *testing.T) {
	store := NewFileStore(t.TempDir())

	key := FileKey("acme/widgets", "src/main.go", "rev1")
	store.Set(key, []byte("content"))

	raw, ok := store.Get(key)
	require.True(t, ok)
	assert.Equal(t, []byte("content"), raw)

	_, ok = store.Get("missing")
	assert.False(t, ok)
}

func TestFileStoreUnwritableDirectoryIsNonFatal(t *testing.T) {
	store := NewFileStore(filepath.Join(string(os.PathSeparator), "proc", "no-such-dir", "cache"))

	// Must not panic or error out; the entry is simply absent.
	store.Set("k", []byte("v"))
	_, ok := store.Get("k")
	assert.False(t, ok)
}

func TestGetJSONEvictsCorruptEntry(t *testing.T) {
	store := NewMemoryStore(time.Minute)
	store.Set("bad", []byte("{not json"))

	_, ok := GetJSON[models.FileContent](store, "bad")
	assert.False(t, ok, "corrupt entry must read as a miss")

	_, ok = store.Get("bad")
	assert.False(t, ok, "corrupt entry must be evicted")
}

func TestSetGetJSONRoundTrip(t *testing.T) {
	store := NewMemoryStore(time.Minute)

	in := models.FileContent{Path: "README.md", Content: "# Widgets", Size: 9}
	SetJSON(store, "fc", in)

	out, ok := GetJSON[models.FileContent](store, "fc")
	require.True(t, ok)
	assert.Equal(t, in, out)
}

func TestLayeredStoreRepopulatesMemory(t *testing.T) {
	dir := t.TempDir()
	layered := NewLayeredStore(dir, time.Minute)

	layered.Set("k", []byte("v"))

	// A fresh layered store over the same directory sees the persisted value.
	fresh := NewLayeredStore(dir, time.Minute)
	raw, ok := fresh.Get("k")
	require.True(t, ok)
	assert.Equal(t, []byte("v"), raw)

	// Now present in the memory layer too.
	raw, ok = fresh.memory.Get("k")
	require.True(t, ok)
	assert.Equal(t, []byte("v"), raw)
}
