package cache

import (
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryStore is the in-process cache layer. Entries expire so a long-lived
// process does not accumulate stale repository listings indefinitely.
type MemoryStore struct {
	client *gocache.Cache
}

// NewMemoryStore creates an in-memory store with the given default TTL.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &MemoryStore{
		client: gocache.New(ttl, 10*time.Minute),
	}
}

func (s *MemoryStore) Get(key Key) ([]byte, bool) {
	value, ok := s.client.Get(string(key))
	if !ok {
		return nil, false
	}
	raw, ok := value.([]byte)
	return raw, ok
}

func (s *MemoryStore) Set(key Key, value []byte) {
	s.client.Set(string(key), value, gocache.DefaultExpiration)
}

func (s *MemoryStore) Delete(key Key) {
	s.client.Delete(string(key))
}
