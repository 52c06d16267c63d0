package app

import "errors"

var (
	// ErrConnection is returned when the session backend cannot be reached
	// at startup. The listener is never opened in that case.
	ErrConnection = errors.New("app: database connection failed")

	// ErrInvalidConfig is returned when configuration values are out of range.
	ErrInvalidConfig = errors.New("app: invalid configuration")

	// ErrSetup is returned when a component cannot be built from the config.
	ErrSetup = errors.New("app: setup failed")
)
