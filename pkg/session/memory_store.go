package session

import (
	"context"
	"encoding/json"
	"maps"
	"sync"
	"time"
)

// MemoryStore keeps sessions in process memory. Data is copied through JSON
// on every read and write so values behave as they would with a remote store.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]memoryEntry
	now      func() time.Time
}

type memoryEntry struct {
	data    []byte
	expires time.Time
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]memoryEntry),
		now:      time.Now,
	}
}

func (s *MemoryStore) Get(_ context.Context, id string) (Record, error) {
	s.mu.RLock()
	e, ok := s.sessions[id]
	s.mu.RUnlock()

	if !ok || !e.expires.After(s.now()) {
		return Record{}, ErrSessionNotFound
	}

	var data map[string]any
	if err := json.Unmarshal(e.data, &data); err != nil {
		return Record{}, err
	}

	return Record{ID: id, Data: data, Expires: e.expires}, nil
}

func (s *MemoryStore) Set(_ context.Context, rec Record) error {
	if rec.ID == "" {
		return ErrInvalidSession
	}

	data, err := json.Marshal(nonNil(rec.Data))
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[rec.ID] = memoryEntry{data: data, expires: rec.Expires}
	s.evictExpiredLocked()
	return nil
}

func (s *MemoryStore) Touch(_ context.Context, id string, expires time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.sessions[id]
	if !ok || !e.expires.After(s.now()) {
		return ErrSessionNotFound
	}
	e.expires = expires
	s.sessions[id] = e
	return nil
}

func (s *MemoryStore) Destroy(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}

// Len returns the number of stored sessions, expired ones included.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

func (s *MemoryStore) evictExpiredLocked() {
	now := s.now()
	maps.DeleteFunc(s.sessions, func(_ string, e memoryEntry) bool {
		return !e.expires.After(now)
	})
}

func nonNil(m map[string]any) map[string]any {
	if m == nil {
		return map[string]any{}
	}
	return m
}
