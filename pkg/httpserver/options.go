package httpserver

import (
	"log/slog"
	"net"
)

// Option configures the HTTP server.
type Option func(*Server)

// StartHook runs once the listener is bound, before the first request is
// accepted. addr is the bound address, which differs from the configured
// one when port 0 was requested.
type StartHook func(log *slog.Logger, addr net.Addr)

// StopHook runs after a graceful shutdown completes.
type StopHook func(log *slog.Logger)

// WithLogger sets the logger handed to hooks. Nil keeps the discard logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.log = l
		}
	}
}

// WithStartHook registers a callback that runs when the server begins listening.
func WithStartHook(h StartHook) Option {
	if h == nil {
		panic("WithStartHook: nil hook")
	}
	return func(s *Server) { s.onStart = append(s.onStart, h) }
}

// WithStopHook registers a callback that runs after the server shuts down.
func WithStopHook(h StopHook) Option {
	if h == nil {
		panic("WithStopHook: nil hook")
	}
	return func(s *Server) { s.onStop = append(s.onStop, h) }
}
