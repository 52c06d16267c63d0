package app_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/cookiejar"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/webseed/internal/app"
	"github.com/dmitrymomot/webseed/internal/server"
	"github.com/dmitrymomot/webseed/pkg/httpserver"
	"github.com/dmitrymomot/webseed/pkg/logger"
	"github.com/dmitrymomot/webseed/pkg/mongo"
	"github.com/dmitrymomot/webseed/pkg/session"
)

// syncBuffer is a bytes.Buffer safe for the concurrent writes of a server.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func testConfig(t *testing.T, port int) app.Config {
	t.Helper()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("<h1>home</h1>"), 0o644))

	return app.Config{
		Env:   "development",
		Mongo: mongo.Config{Host: "127.0.0.1", Port: 27017, Name: "webseed"},
		HTTP: httpserver.Config{
			Host:            "127.0.0.1",
			Port:            port,
			ShutdownTimeout: time.Second,
		},
		Server: server.Config{
			StaticDir:      dir,
			StaticPrefixes: []string{"/static", "/files"},
			BodyLimit:      1024,
		},
		Session: app.SessionConfig{
			Secret:     strings.Repeat("k", 32),
			MaxAgeMs:   60_000,
			CookieName: "sid",
			Store:      app.StoreMemory,
		},
	}
}

func freePort(t *testing.T) int {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := ln.Addr().(*net.TCPAddr).Port
	require.NoError(t, ln.Close())
	return port
}

func TestStart_ConnectionFailureNeverBinds(t *testing.T) {
	t.Parallel()

	port := freePort(t)
	cfg := testConfig(t, port)

	var readyCalled bool
	dialErr := errors.New("connection refused")
	a, err := app.Start(context.Background(), cfg,
		app.WithDialer(func(context.Context, app.Config) (app.Backend, error) { return nil, dialErr }),
		app.WithReadyCallback(func(net.Addr) { readyCalled = true }),
	)

	require.Error(t, err)
	assert.Nil(t, a)
	assert.ErrorIs(t, err, app.ErrConnection)
	assert.ErrorIs(t, err, dialErr)
	assert.False(t, readyCalled)

	conn, dialErr2 := net.DialTimeout("tcp", net.JoinHostPort("127.0.0.1", itoa(port)), 200*time.Millisecond)
	if dialErr2 == nil {
		_ = conn.Close()
	}
	assert.Error(t, dialErr2, "nothing may listen on the configured port")
}

func TestStart_UnreachableMongo(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t, 0)
	cfg.Session.Store = app.StoreMongo
	cfg.Mongo = mongo.Config{Host: "127.0.0.1", Port: freePort(t), Name: "webseed", ConnectTimeout: 300 * time.Millisecond}

	_, err := app.Start(context.Background(), cfg)
	require.Error(t, err)
	assert.ErrorIs(t, err, app.ErrConnection)
	assert.ErrorIs(t, err, mongo.ErrFailedToConnectToMongo)
}

func TestStart_ServesAfterConnect(t *testing.T) {
	t.Parallel()

	logs := &syncBuffer{}
	log := logger.New(logger.WithOutput(logs), logger.WithFormat(logger.FormatJSON))

	readyAddr := make(chan net.Addr, 1)
	a, err := app.Start(context.Background(), testConfig(t, 0),
		app.WithLogger(log),
		app.WithReadyCallback(func(addr net.Addr) { readyAddr <- addr }),
		app.WithRoutes(func(r chi.Router) {
			r.Post("/count", func(w http.ResponseWriter, r *http.Request) {
				sess := session.MustFromContext(r.Context())
				n, _ := sess.GetInt("n")
				sess.Set("n", n+1)
				_, _ = io.WriteString(w, itoa(n+1))
			})
		}),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Shutdown(context.Background()) })

	addr := <-readyAddr
	assert.Equal(t, a.Addr().String(), addr.String())

	out := logs.String()
	assert.Contains(t, out, `"msg":"database connected"`)
	assert.Contains(t, out, `"target":"memory"`)
	assert.Contains(t, out, `"msg":"server listening"`)
	assert.Contains(t, out, `"port":`+itoa(addr.(*net.TCPAddr).Port))
	assert.Less(t, strings.Index(out, "database connected"), strings.Index(out, "server listening"))

	base := "http://" + addr.String()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	client := &http.Client{Jar: jar, Timeout: 2 * time.Second}

	body := get(t, client, base+"/static/index.html", http.StatusOK)
	assert.Equal(t, "<h1>home</h1>", body)
	get(t, client, base+"/files/", http.StatusOK)
	get(t, client, base+"/health/ready", http.StatusOK)
	get(t, client, base+"/nope", http.StatusNotFound)

	for want := 1; want <= 3; want++ {
		resp, err := client.Post(base+"/count", "text/plain", nil)
		require.NoError(t, err)
		b, _ := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		assert.Equal(t, itoa(want), string(b))
	}
}

func TestStart_PortInUse(t *testing.T) {
	t.Parallel()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = ln.Close() })

	closed := false
	dialer := func(context.Context, app.Config) (app.Backend, error) {
		b, _ := app.DialMemory(context.Background(), app.Config{})
		return &closeTracker{Backend: b, closed: &closed}, nil
	}

	_, err = app.Start(context.Background(), testConfig(t, ln.Addr().(*net.TCPAddr).Port), app.WithDialer(dialer))
	require.Error(t, err)
	assert.ErrorIs(t, err, httpserver.ErrStart)
	assert.True(t, closed, "backend must be released when binding fails")
}

func TestApp_RunStopsOnCancel(t *testing.T) {
	t.Parallel()

	a, err := app.Start(context.Background(), testConfig(t, 0))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Run(ctx) }()

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(3 * time.Second):
		require.Fail(t, "run did not return")
	}
	require.NoError(t, a.Shutdown(context.Background()), "shutdown is idempotent")
}

func TestDefaultDialer(t *testing.T) {
	t.Parallel()

	for _, store := range []string{app.StoreMongo, app.StoreRedis, app.StoreMemory} {
		cfg := app.Config{Session: app.SessionConfig{Store: store}}
		assert.NotNil(t, app.DefaultDialer(cfg), store)
	}

	b, err := app.DefaultDialer(app.Config{Session: app.SessionConfig{Store: app.StoreMemory}})(context.Background(), app.Config{})
	require.NoError(t, err)
	assert.Equal(t, "memory", b.Target())
	assert.NoError(t, b.Ping(context.Background()))
}

type closeTracker struct {
	app.Backend
	closed *bool
}

func (c *closeTracker) Close(ctx context.Context) error {
	*c.closed = true
	return c.Backend.Close(ctx)
}

func get(t *testing.T, client *http.Client, url string, code int) string {
	t.Helper()
	resp, err := client.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, code, resp.StatusCode, url)
	return string(b)
}

func itoa(n int) string {
	return strconv.Itoa(n)
}
