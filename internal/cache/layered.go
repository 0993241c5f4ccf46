package cache

import "time"

// LayeredStore reads through an in-memory layer backed by a persistent one.
// Hits in the persistent layer repopulate the memory layer; writes go to both.
type LayeredStore struct {
	memory     *MemoryStore
	persistent Store
}

// NewLayeredStore builds the standard two-level store: go-cache in front of
// the file-backed store.
func NewLayeredStore(dir string, ttl time.Duration) *LayeredStore {
	return &LayeredStore{
		memory:     NewMemoryStore(ttl),
		persistent: NewFileStore(dir),
	}
}

func (s *LayeredStore) Get(key Key) ([]byte, bool) {
	if raw, ok := s.memory.Get(key); ok {
		return raw, true
	}
	raw, ok := s.persistent.Get(key)
	if !ok {
		return nil, false
	}
	s.memory.Set(key, raw)
	return raw, true
}

func (s *LayeredStore) Set(key Key, value []byte) {
	s.memory.Set(key, value)
	s.persistent.Set(key, value)
}

func (s *LayeredStore) Delete(key Key) {
	s.memory.Delete(key)
	s.persistent.Delete(key)
}
