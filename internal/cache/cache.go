// =============================
// File: internal/cache/cache.go
// =============================
package cache

import (
	"sync"
	"time"

	"github.com/memelab/token-radar/internal/token"
)

// Store is an in-memory TTL cache for normalized token lists. Each adapter
// owns one Store; entries are never shared across adapters. All records are
// process-memory only and rebuilt from upstream on restart.
type Store struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[string]entry
	now     func() time.Time
}

type entry struct {
	data []token.Token
	ts   time.Time
}

// NewStore creates a cache whose entries stay fresh for ttl.
func NewStore(ttl time.Duration) *Store {
	return &Store{
		ttl:     ttl,
		entries: make(map[string]entry),
		now:     time.Now,
	}
}

// Get returns the cached value while its age is strictly below the TTL.
// An entry exactly at the TTL boundary is already a miss.
func (s *Store) Get(key string) ([]token.Token, bool) {
	s.mu.RLock()
	e, ok := s.entries[key]
	s.mu.RUnlock()

	if !ok || s.now().Sub(e.ts) >= s.ttl {
		return nil, false
	}
	return e.data, true
}

// Set stores a value stamped with the current time.
func (s *Store) Set(key string, data []token.Token) {
	s.mu.Lock()
	s.entries[key] = entry{data: data, ts: s.now()}
	s.mu.Unlock()
}

// Len reports the number of entries, expired ones included.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
