// Package cache provides the local persistence layer used to memoize remote
// fetch results and derived artifacts. Cache failures are never fatal: a
// failed read or write is logged and treated as a miss, and a corrupt entry
// is evicted on detection. The store never blocks and never retries.
package cache

import (
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/repodoc/pkg/models"
)

// Key is a namespaced cache key. All cache invalidation rules are centralized
// here rather than re-derived at each call site.
type Key string

// SettingsAPIKeys stores the user's persisted credentials.
const SettingsAPIKeys Key = "settings:api-keys"

// TreeKey identifies a cached directory listing. The repository root uses
// the literal path "root".
func TreeKey(repo models.RepositoryID, path string) Key {
	if path == "" {
		path = "root"
	}
	return Key(fmt.Sprintf("repo-tree:%s:%s", repo, path))
}

// FileKey identifies a cached file body. The revision marker, when known,
// keeps the key stable across content changes.
func FileKey(repo models.RepositoryID, path, revision string) Key {
	k := fmt.Sprintf("file-content:%s/%s", repo, path)
	if revision != "" {
		k += "@" + revision
	}
	return Key(k)
}

// Store is the key/value persistence contract. Values are structurally
// opaque: serialized on write, deserialized on read.
type Store interface {
	Get(key Key) ([]byte, bool)
	Set(key Key, value []byte)
	Delete(key Key)
}

// GetJSON reads and deserializes a cached value. A corrupt entry is evicted
// and reported as a miss.
func GetJSON[T any](s Store, key Key) (T, bool) {
	var zero T
	raw, ok := s.Get(key)
	if !ok {
		return zero, false
	}
	var value T
	if err := json.Unmarshal(raw, &value); err != nil {
		log.Warn().Str("key", string(key)).Err(err).Msg("evicting corrupt cache entry")
		s.Delete(key)
		return zero, false
	}
	return value, true
}

// SetJSON serializes and stores a value. Serialization failure is logged
// and dropped.
func SetJSON[T any](s Store, key Key, value T) {
	raw, err := json.Marshal(value)
	if err != nil {
		log.Warn().Str("key", string(key)).Err(err).Msg("cache serialization failed")
		return
	}
	s.Set(key, raw)
}
