package session

import (
	"net/http"
	"time"

	"github.com/dmitrymomot/webseed/pkg/cookie"
)

// Option is a functional option for configuring the Manager
type Option func(*Manager)

// ErrorHandler writes the response when the session cannot be loaded or saved.
type ErrorHandler func(w http.ResponseWriter, r *http.Request, err error)

// Observer is notified after every store operation. op is one of
// "get", "set", "touch", "destroy".
type Observer func(op string, err error)

// WithStore sets the session store
func WithStore(store Store) Option {
	return func(m *Manager) {
		m.store = store
	}
}

// WithCookieManager sets the cookie manager used to sign the session id,
// plus attributes applied to every session cookie.
func WithCookieManager(cookieMgr *cookie.Manager, opts ...cookie.Option) Option {
	return func(m *Manager) {
		m.cookies = cookieMgr
		m.cookieOpts = append(m.cookieOpts, opts...)
	}
}

// WithCookieName sets the session cookie name
func WithCookieName(name string) Option {
	return func(m *Manager) {
		if name != "" {
			m.cookieName = name
		}
	}
}

// WithMaxAge sets the session lifetime, counted from the last request.
func WithMaxAge(d time.Duration) Option {
	return func(m *Manager) {
		if d > 0 {
			m.maxAge = d
		}
	}
}

// WithErrorHandler sets the handler used when the store fails.
func WithErrorHandler(h ErrorHandler) Option {
	return func(m *Manager) {
		if h != nil {
			m.errorHandler = h
		}
	}
}

// WithObserver sets a hook called after every store operation.
func WithObserver(o Observer) Option {
	return func(m *Manager) {
		m.observer = o
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		if now != nil {
			m.now = now
		}
	}
}
