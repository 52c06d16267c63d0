package session

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"sync"
	"time"
)

// Session is the per-request view of a stored session.
//
// A Session is created empty when the request carries no valid session
// cookie and is persisted only if the handler changes it. Every mutating
// method marks it modified; reads never do.
type Session struct {
	mu sync.RWMutex

	id         string
	data       map[string]any
	expires    time.Time
	isNew      bool
	modified   bool
	destroyed  bool
	previousID string
}

func newSession() (*Session, error) {
	id, err := generateID()
	if err != nil {
		return nil, err
	}
	return &Session{id: id, data: make(map[string]any), isNew: true}, nil
}

func fromRecord(rec Record) *Session {
	data := rec.Data
	if data == nil {
		data = make(map[string]any)
	}
	return &Session{id: rec.ID, data: data, expires: rec.Expires}
}

// ID returns the session id.
func (s *Session) ID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.id
}

// Expires returns the expiry loaded from the store; zero for new sessions.
func (s *Session) Expires() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.expires
}

// IsNew reports whether the session was created during this request.
func (s *Session) IsNew() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isNew
}

// IsModified reports whether the session will be written back.
func (s *Session) IsModified() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.modified
}

// Get retrieves a value from session data.
func (s *Session) Get(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[key]
	return v, ok
}

// GetString retrieves a string value from session data.
func (s *Session) GetString(key string) (string, bool) {
	v, ok := s.Get(key)
	if !ok {
		return "", false
	}
	str, ok := v.(string)
	return str, ok
}

// GetInt retrieves an int value. Numbers decoded from a store come back as
// float64, so those are converted too.
func (s *Session) GetInt(key string) (int, bool) {
	v, ok := s.Get(key)
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case int:
		return n, true
	case int32:
		return int(n), true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	default:
		return 0, false
	}
}

// GetBool retrieves a bool value from session data.
func (s *Session) GetBool(key string) (bool, bool) {
	v, ok := s.Get(key)
	if !ok {
		return false, false
	}
	b, ok := v.(bool)
	return b, ok
}

// Values returns a shallow copy of the session data.
func (s *Session) Values() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]any, len(s.data))
	for k, v := range s.data {
		out[k] = v
	}
	return out
}

// Set stores a value and marks the session modified.
func (s *Session) Set(key string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = value
	s.modified = true
}

// Delete removes a value. Deleting a missing key does not modify the session.
func (s *Session) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.data[key]; ok {
		delete(s.data, key)
		s.modified = true
	}
}

// Clear removes all data.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.data) > 0 {
		s.data = make(map[string]any)
		s.modified = true
	}
}

// Regenerate replaces the session with an empty one under a fresh id.
// The previous record is removed from the store when the response commits.
func (s *Session) Regenerate() error {
	id, err := generateID()
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.isNew && s.previousID == "" {
		s.previousID = s.id
	}
	s.id = id
	s.data = make(map[string]any)
	s.isNew = true
	s.modified = true
	s.destroyed = false
	return nil
}

// Destroy removes the session from the store and clears the cookie when the
// response commits.
func (s *Session) Destroy() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = make(map[string]any)
	s.destroyed = true
	s.modified = false
}

func (s *Session) record(expires time.Time) Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data := make(map[string]any, len(s.data))
	for k, v := range s.data {
		data[k] = v
	}
	return Record{ID: s.id, Data: data, Expires: expires}
}

// generateID returns 32 random bytes, base64url encoded.
func generateID() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", errors.Join(ErrTokenGeneration, err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
