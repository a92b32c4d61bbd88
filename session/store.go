package session

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru"
)

// DefaultMaxSessions bounds the store when no size is configured.
const DefaultMaxSessions = 10000

// Store keeps the most recently used sessions in memory. Evicted sessions
// are gone for good; nothing is persisted.
type Store struct {
	cache *lru.Cache
}

// NewStore creates a store holding at most size sessions.
func NewStore(size int) (*Store, error) {
	if size <= 0 {
		size = DefaultMaxSessions
	}
	cache, err := lru.New(size)
	if err != nil {
		return nil, fmt.Errorf("create session cache: %w", err)
	}
	return &Store{cache: cache}, nil
}

// Put adds or replaces a session.
func (s *Store) Put(sess *Session) {
	s.cache.Add(sess.ID(), sess)
}

// Get returns a session and marks it recently used.
func (s *Store) Get(id string) (*Session, bool) {
	raw, ok := s.cache.Get(id)
	if !ok {
		return nil, false
	}
	return raw.(*Session), true
}

// Remove drops a session. It reports whether the session was present.
func (s *Store) Remove(id string) bool {
	if !s.cache.Contains(id) {
		return false
	}
	s.cache.Remove(id)
	return true
}

// Len returns the number of live sessions.
func (s *Store) Len() int {
	return s.cache.Len()
}
