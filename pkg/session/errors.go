package session

import "errors"

var (
	// ErrSessionNotFound indicates no live session exists for the id
	ErrSessionNotFound = errors.New("session.not_found")

	// ErrInvalidSession indicates a record without an id was handed to a store
	ErrInvalidSession = errors.New("session.invalid")

	// ErrTokenGeneration indicates session id generation failed
	ErrTokenGeneration = errors.New("session.token_generation_failed")

	// ErrStoreUnavailable wraps backing store failures surfaced to the pipeline
	ErrStoreUnavailable = errors.New("session.store_unavailable")

	// ErrCommitFailed is returned from writes after the session could not be saved
	ErrCommitFailed = errors.New("session.commit_failed")
)
