package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
)

// FileStore persists cache entries as individual files under a directory.
// Every failure mode (unwritable directory, unreadable entry, quota) is
// logged and degraded to a cache miss.
type FileStore struct {
	dir string
}

// NewFileStore creates a file-backed store rooted at dir. The directory is
// created lazily on first write.
func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

func (s *FileStore) Get(key Key) ([]byte, bool) {
	raw, err := os.ReadFile(s.pathFor(key))
	if err != nil {
		if !os.IsNotExist(err) {
			log.Warn().Str("key", string(key)).Err(err).Msg("cache read failed")
		}
		return nil, false
	}
	return raw, true
}

func (s *FileStore) Set(key Key, value []byte) {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		log.Warn().Str("dir", s.dir).Err(err).Msg("cache directory unavailable")
		return
	}
	if err := os.WriteFile(s.pathFor(key), value, 0644); err != nil {
		log.Warn().Str("key", string(key)).Err(err).Msg("cache write failed")
	}
}

func (s *FileStore) Delete(key Key) {
	if err := os.Remove(s.pathFor(key)); err != nil && !os.IsNotExist(err) {
		log.Warn().Str("key", string(key)).Err(err).Msg("cache delete failed")
	}
}

// pathFor maps a namespaced key to a filesystem-safe file name. A short
// digest suffix keeps sanitized names collision-free.
func (s *FileStore) pathFor(key Key) string {
	digest := sha256.Sum256([]byte(key))
	sanitized := sanitizeKey(string(key))
	name := sanitized + "-" + hex.EncodeToString(digest[:6]) + ".json"
	return filepath.Join(s.dir, name)
}

var keySanitizer = strings.NewReplacer("/", "_", ":", "_", "@", "_", "\\", "_")

func sanitizeKey(key string) string {
	sanitized := keySanitizer.Replace(key)
	if len(sanitized) > 120 {
		sanitized = sanitized[:120]
	}
	return sanitized
}
