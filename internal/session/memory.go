package session

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps sessions in process memory. Suitable for development and
// tests; production uses the Redis store so sessions survive restarts.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string]memoryEntry
	nonces   map[string]memoryEntry
	ttl      time.Duration
	nowFunc  func() time.Time
}

type memoryEntry struct {
	value     string
	expiresAt time.Time
}

// NewMemoryStore creates an in-memory session store with the given TTL.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]memoryEntry),
		nonces:   make(map[string]memoryEntry),
		ttl:      ttl,
		nowFunc:  time.Now,
	}
}

var _ Store = (*MemoryStore)(nil)

func (s *MemoryStore) Create(_ context.Context, token string) (string, error) {
	id, err := NewID()
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[id] = memoryEntry{value: token, expiresAt: s.nowFunc().Add(s.ttl)}
	return id, nil
}

func (s *MemoryStore) Get(_ context.Context, sessionID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.sessions[sessionID]
	if !ok || s.nowFunc().After(entry.expiresAt) {
		delete(s.sessions, sessionID)
		return "", ErrNotFound
	}
	return entry.value, nil
}

func (s *MemoryStore) Destroy(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
	return nil
}

func (s *MemoryStore) SaveNonce(_ context.Context, sessionID, nonce string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nonces[sessionID+":"+nonce] = memoryEntry{expiresAt: s.nowFunc().Add(s.ttl)}
	return nil
}

func (s *MemoryStore) ConsumeNonce(_ context.Context, sessionID, nonce string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := sessionID + ":" + nonce
	entry, ok := s.nonces[key]
	if !ok {
		return false, nil
	}
	delete(s.nonces, key)
	if s.nowFunc().After(entry.expiresAt) {
		return false, nil
	}
	return true, nil
}
