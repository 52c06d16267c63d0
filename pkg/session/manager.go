package session

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/dmitrymomot/webseed/pkg/cookie"
)

const (
	DefaultCookieName = "sid"
	DefaultMaxAge     = 24 * time.Hour
)

// Manager loads sessions for incoming requests and writes them back
// before the response is sent.
type Manager struct {
	store        Store
	cookies      *cookie.Manager
	cookieOpts   []cookie.Option
	cookieName   string
	maxAge       time.Duration
	errorHandler ErrorHandler
	observer     Observer
	now          func() time.Time
}

// New creates a session manager. A store and a cookie manager are required.
func New(opts ...Option) *Manager {
	m := &Manager{
		cookieName:   DefaultCookieName,
		maxAge:       DefaultMaxAge,
		errorHandler: defaultErrorHandler,
		now:          time.Now,
	}

	for _, opt := range opts {
		opt(m)
	}

	if m.store == nil {
		panic("session: store is required")
	}
	if m.cookies == nil {
		panic("session: cookie manager is required")
	}

	return m
}

// CookieName returns the name of the session cookie.
func (m *Manager) CookieName() string {
	return m.cookieName
}

// MaxAge returns the configured session lifetime.
func (m *Manager) MaxAge() time.Duration {
	return m.maxAge
}

// Load returns the session named by the request cookie, or a fresh session
// when the cookie is absent, tampered with, or points at an expired record.
// Store failures other than not-found are returned as ErrStoreUnavailable.
func (m *Manager) Load(ctx context.Context, r *http.Request) (*Session, error) {
	id, err := m.cookies.GetSigned(r, m.cookieName)
	if err != nil || id == "" {
		return newSession()
	}

	rec, err := m.store.Get(ctx, id)
	m.observe("get", ignoreNotFound(err))
	switch {
	case errors.Is(err, ErrSessionNotFound):
		return newSession()
	case err != nil:
		return nil, errors.Join(ErrStoreUnavailable, err)
	}

	if !rec.Expires.IsZero() && !rec.Expires.After(m.now()) {
		return newSession()
	}

	return fromRecord(rec), nil
}

// Save persists the session and writes the cookie to w.
//
// Destroyed sessions are removed and the cookie cleared. Modified sessions
// are written in full. Loaded sessions that were not modified only have
// their expiry pushed forward. New sessions that were never modified are
// neither stored nor sent to the client.
func (m *Manager) Save(ctx context.Context, w http.ResponseWriter, s *Session) error {
	s.mu.RLock()
	id, previousID := s.id, s.previousID
	isNew, modified, destroyed := s.isNew, s.modified, s.destroyed
	s.mu.RUnlock()

	if previousID != "" {
		if err := m.destroy(ctx, previousID); err != nil {
			return err
		}
	}

	if destroyed {
		if isNew && previousID == "" {
			return nil
		}
		if !isNew {
			if err := m.destroy(ctx, id); err != nil {
				return err
			}
		}
		m.cookies.Delete(w, m.cookieName, m.cookieOpts...)
		return nil
	}

	expires := m.now().Add(m.maxAge)

	switch {
	case modified:
		err := m.store.Set(ctx, s.record(expires))
		m.observe("set", err)
		if err != nil {
			return errors.Join(ErrStoreUnavailable, err)
		}
	case !isNew:
		err := m.store.Touch(ctx, id, expires)
		m.observe("touch", ignoreNotFound(err))
		if errors.Is(err, ErrSessionNotFound) {
			// record vanished between load and commit; nothing left to refresh
			m.cookies.Delete(w, m.cookieName, m.cookieOpts...)
			return nil
		}
		if err != nil {
			return errors.Join(ErrStoreUnavailable, err)
		}
	default:
		return nil
	}

	s.mu.Lock()
	s.expires = expires
	s.mu.Unlock()

	opts := append([]cookie.Option{
		cookie.WithExpires(expires),
		cookie.WithMaxAge(int(m.maxAge / time.Second)),
	}, m.cookieOpts...)
	return m.cookies.SetSigned(w, m.cookieName, id, opts...)
}

// Middleware attaches a session to each request and commits it right before
// the response header is written, or after the handler returns if it never
// wrote anything. A handler panic commits before the panic is re-raised.
func (m *Manager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s, err := m.Load(r.Context(), r)
		if err != nil {
			m.errorHandler(w, r, err)
			return
		}

		r = r.WithContext(WithSession(r.Context(), s))
		cw := &commitWriter{
			ResponseWriter: w,
			commit:         func() error { return m.Save(r.Context(), w, s) },
			fail:           func(err error) { m.errorHandler(w, r, err) },
		}

		defer func() {
			// a panicking handler still commits what it changed; the
			// panic itself is left to the outer recovery middleware
			if rec := recover(); rec != nil {
				if rec != http.ErrAbortHandler {
					cw.finish()
				}
				panic(rec)
			}
		}()

		next.ServeHTTP(cw, r)
		cw.finish()
	})
}

func (m *Manager) destroy(ctx context.Context, id string) error {
	err := m.store.Destroy(ctx, id)
	m.observe("destroy", err)
	if err != nil {
		return errors.Join(ErrStoreUnavailable, err)
	}
	return nil
}

func (m *Manager) observe(op string, err error) {
	if m.observer != nil {
		m.observer(op, err)
	}
}

func ignoreNotFound(err error) error {
	if errors.Is(err, ErrSessionNotFound) {
		return nil
	}
	return err
}

func defaultErrorHandler(w http.ResponseWriter, _ *http.Request, _ error) {
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}
