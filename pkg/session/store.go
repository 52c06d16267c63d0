package session

import (
	"context"
	"time"
)

// Record is the persisted form of a session.
type Record struct {
	ID      string
	Data    map[string]any
	Expires time.Time
}

// Store persists session records keyed by id.
//
// Implementations must treat records whose Expires is in the past as absent
// and should let the backend evict them on its own (TTL index, key expiry).
type Store interface {
	// Get returns the live record for id or ErrSessionNotFound.
	Get(ctx context.Context, id string) (Record, error)

	// Set creates or replaces the record.
	Set(ctx context.Context, rec Record) error

	// Touch moves the expiry of an existing record without rewriting its data.
	Touch(ctx context.Context, id string, expires time.Time) error

	// Destroy removes the record. Removing a missing record is not an error.
	Destroy(ctx context.Context, id string) error
}
