package server_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/webseed/core"
	"github.com/dmitrymomot/webseed/internal/server"
	"github.com/dmitrymomot/webseed/pkg/bodyparser"
	"github.com/dmitrymomot/webseed/pkg/cookie"
	"github.com/dmitrymomot/webseed/pkg/logger"
	"github.com/dmitrymomot/webseed/pkg/requestid"
	"github.com/dmitrymomot/webseed/pkg/session"
)

type failingStore struct{ session.Store }

func (failingStore) Set(context.Context, session.Record) error {
	return errors.New("write concern timeout")
}

func routes(r chi.Router) {
	r.Get("/panic", func(w http.ResponseWriter, r *http.Request) {
		panic("kaboom: secret detail")
	})
	r.Method(http.MethodGet, "/forbidden", server.HandlerFunc(func(w http.ResponseWriter, r *http.Request) error {
		return core.ErrForbidden
	}))
	r.Method(http.MethodGet, "/fail", server.HandlerFunc(func(w http.ResponseWriter, r *http.Request) error {
		return errors.New("db exploded")
	}))
	r.Post("/echo", func(w http.ResponseWriter, r *http.Request) {
		payload, _ := bodyparser.FromContext(r.Context())
		_ = core.JSON(w, http.StatusOK, payload)
	})
	r.Post("/login-then-panic", func(w http.ResponseWriter, r *http.Request) {
		session.MustFromContext(r.Context()).Set("user", "alice")
		panic("after login")
	})
	r.Post("/login", func(w http.ResponseWriter, r *http.Request) {
		session.MustFromContext(r.Context()).Set("user", "alice")
		w.WriteHeader(http.StatusNoContent)
	})
	r.Get("/whoami", func(w http.ResponseWriter, r *http.Request) {
		user, _ := session.MustFromContext(r.Context()).GetString("user")
		_, _ = io.WriteString(w, user)
	})
}

func newHandler(t *testing.T, store session.Store, cfg server.Config) (http.Handler, *bytes.Buffer) {
	t.Helper()

	var logs bytes.Buffer
	log := logger.New(
		logger.WithOutput(&logs),
		logger.WithFormat(logger.FormatJSON),
		logger.WithLevel(slog.LevelDebug),
		logger.WithContextExtractors(requestid.LoggerExtractor()),
	)

	cookies, err := cookie.New([]string{strings.Repeat("s", 32)})
	require.NoError(t, err)

	onError := server.NewErrorHandler(log)
	mgr := session.New(
		session.WithStore(store),
		session.WithCookieManager(cookies),
		session.WithMaxAge(time.Hour),
		session.WithErrorHandler(session.ErrorHandler(onError)),
	)

	h, err := server.New(cfg,
		server.WithLogger(log),
		server.WithSessions(mgr),
		server.WithRoutes(routes),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = h.Close() })

	return h, &logs
}

func staticDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "hello.txt"), []byte("hello world"), 0o644))
	return dir
}

func do(h http.Handler, r *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	return w
}

func TestPipeline_Errors(t *testing.T) {
	t.Parallel()

	h, logs := newHandler(t, session.NewMemoryStore(), server.Config{BodyLimit: 1024})

	tests := []struct {
		name   string
		method string
		target string
		code   int
	}{
		{"panic", http.MethodGet, "/panic", http.StatusInternalServerError},
		{"returned error", http.MethodGet, "/fail", http.StatusInternalServerError},
		{"http error", http.MethodGet, "/forbidden", http.StatusForbidden},
		{"unknown route", http.MethodGet, "/nope", http.StatusNotFound},
		{"wrong method", http.MethodDelete, "/whoami", http.StatusMethodNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(h, httptest.NewRequest(tt.method, tt.target, nil))
			assert.Equal(t, tt.code, w.Code)
			assert.Equal(t, http.StatusText(tt.code), w.Body.String())
			assert.NotEmpty(t, w.Header().Get(requestid.Header))
		})
	}

	assert.Contains(t, logs.String(), "kaboom: secret detail")
	assert.Contains(t, logs.String(), `"request_id"`)
}

func TestPipeline_BodyParsing(t *testing.T) {
	t.Parallel()

	h, _ := newHandler(t, session.NewMemoryStore(), server.Config{BodyLimit: 64})

	post := func(contentType, body string) *httptest.ResponseRecorder {
		r := httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader(body))
		r.Header.Set("Content-Type", contentType)
		return do(h, r)
	}

	w := post("application/json", `{"a":1}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"a":1}`, w.Body.String())

	w = post("application/x-www-form-urlencoded", "user[name]=bob&tags[]=x")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"user":{"name":"bob"},"tags":["x"]}`, w.Body.String())

	w = post("application/json", `{"a":`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Bad Request", w.Body.String())

	w = post("application/json", `{"a":"`+strings.Repeat("x", 100)+`"}`)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func TestPipeline_Static(t *testing.T) {
	t.Parallel()

	h, _ := newHandler(t, session.NewMemoryStore(), server.Config{
		StaticDir:      staticDir(t),
		StaticPrefixes: []string{"/static", "files/"},
	})

	for _, prefix := range []string{"/static", "/files"} {
		w := do(h, httptest.NewRequest(http.MethodGet, prefix+"/hello.txt", nil))
		assert.Equal(t, http.StatusOK, w.Code, prefix)
		assert.Equal(t, "hello world", w.Body.String(), prefix)
		assert.Empty(t, w.Header().Values("Set-Cookie"), "static responses must not create sessions")

		w = do(h, httptest.NewRequest(http.MethodGet, prefix+"/missing.txt", nil))
		assert.Equal(t, http.StatusNotFound, w.Code, prefix)
		assert.Equal(t, "Not Found", w.Body.String())

		w = do(h, httptest.NewRequest(http.MethodGet, prefix+"/../secret", nil))
		assert.Equal(t, http.StatusForbidden, w.Code, prefix)
	}

	w := do(h, httptest.NewRequest(http.MethodGet, "/hello.txt", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPipeline_MissingStaticDir(t *testing.T) {
	t.Parallel()

	h, logs := newHandler(t, session.NewMemoryStore(), server.Config{
		StaticDir:      filepath.Join(t.TempDir(), "absent"),
		StaticPrefixes: []string{"/static"},
	})

	w := do(h, httptest.NewRequest(http.MethodGet, "/static/app.css", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, logs.String(), "static directory not found")
}

func TestPipeline_Sessions(t *testing.T) {
	t.Parallel()

	h, _ := newHandler(t, session.NewMemoryStore(), server.Config{})

	w := do(h, httptest.NewRequest(http.MethodGet, "/whoami", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Values("Set-Cookie"))

	w = do(h, httptest.NewRequest(http.MethodPost, "/login", nil))
	require.Equal(t, http.StatusNoContent, w.Code)
	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, session.DefaultCookieName, cookies[0].Name)

	r := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	r.AddCookie(cookies[0])
	w = do(h, r)
	assert.Equal(t, "alice", w.Body.String())
	assert.Len(t, w.Result().Cookies(), 1, "rolling refresh re-sends the cookie")
}

func TestPipeline_PanicAfterSessionWriteStillCommits(t *testing.T) {
	t.Parallel()

	store := session.NewMemoryStore()
	h, _ := newHandler(t, store, server.Config{})

	w := do(h, httptest.NewRequest(http.MethodPost, "/login-then-panic", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Internal Server Error", w.Body.String())
	assert.Equal(t, 1, store.Len())

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)

	r := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	r.AddCookie(cookies[0])
	assert.Equal(t, "alice", do(h, r).Body.String())
}

func TestPipeline_SessionStoreFailure(t *testing.T) {
	t.Parallel()

	h, logs := newHandler(t, failingStore{session.NewMemoryStore()}, server.Config{})

	w := do(h, httptest.NewRequest(http.MethodPost, "/login", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Internal Server Error", w.Body.String())
	assert.Empty(t, w.Header().Values("Set-Cookie"))
	assert.Contains(t, logs.String(), "write concern timeout")
}

func TestPipeline_Health(t *testing.T) {
	t.Parallel()

	var ready error
	h, err := server.New(server.Config{MetricsEnabled: true},
		server.WithReadinessCheck(func(context.Context) error { return ready }),
	)
	require.NoError(t, err)

	w := do(h, httptest.NewRequest(http.MethodGet, "/health/live", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(h, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	ready = errors.New("ping failed")
	w = do(h, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	w = do(h, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "http_requests_total")
}

func TestPipeline_MetricsDisabled(t *testing.T) {
	t.Parallel()

	h, err := server.New(server.Config{})
	require.NoError(t, err)

	w := do(h, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}
