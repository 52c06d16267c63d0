// Package app wires the application together and starts it in dependency
// order: connect the session backend, build the HTTP pipeline, bind the
// listener, then serve. If the backend cannot be reached no port is opened.
package app

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/webseed/internal/metrics"
	"github.com/dmitrymomot/webseed/internal/server"
	"github.com/dmitrymomot/webseed/pkg/cookie"
	"github.com/dmitrymomot/webseed/pkg/httpserver"
	"github.com/dmitrymomot/webseed/pkg/logger"
	"github.com/dmitrymomot/webseed/pkg/session"
)

// Option configures Start.
type Option func(*options)

type options struct {
	logger *slog.Logger
	dialer Dialer
	routes []func(chi.Router)
	ready  []func(net.Addr)
}

// WithLogger sets the application logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithDialer replaces the backend dialer chosen from SESSION_STORE.
func WithDialer(d Dialer) Option {
	return func(o *options) {
		if d != nil {
			o.dialer = d
		}
	}
}

// WithRoutes mounts application routes on the pipeline, behind the session
// and body parsing stages.
func WithRoutes(fn func(chi.Router)) Option {
	return func(o *options) {
		if fn != nil {
			o.routes = append(o.routes, fn)
		}
	}
}

// WithReadyCallback registers fn to run once the server is listening.
// It receives the bound address.
func WithReadyCallback(fn func(net.Addr)) Option {
	return func(o *options) {
		if fn != nil {
			o.ready = append(o.ready, fn)
		}
	}
}

// App is a started application.
type App struct {
	log     *slog.Logger
	backend Backend
	handler *server.Handler
	srv     *httpserver.Server

	closeOnce sync.Once
	closeErr  error
}

// Start connects the backend and starts serving. It returns once the
// listener is bound; serving continues in the background until Shutdown.
// Connection failures are returned wrapped in ErrConnection without any
// retry, and bind failures wrapped in httpserver.ErrStart.
func Start(ctx context.Context, cfg Config, opts ...Option) (*App, error) {
	o := options{logger: logger.Discard()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.dialer == nil {
		o.dialer = DefaultDialer(cfg)
	}
	log := o.logger.With(logger.Component("app"))

	backend, err := o.dialer(ctx, cfg)
	if err == nil && backend == nil {
		err = errors.New("dialer returned no backend")
	}
	if err != nil {
		log.ErrorContext(ctx, "database connection failed", logger.Error(err))
		return nil, errors.Join(ErrConnection, err)
	}
	log.InfoContext(ctx, "database connected", logger.Target(backend.Target()))

	a := &App{log: log, backend: backend}

	handler, err := a.buildHandler(cfg, o)
	if err != nil {
		a.closeBackend()
		return nil, err
	}
	a.handler = handler

	a.srv = httpserver.New(cfg.HTTP,
		httpserver.WithLogger(log),
		httpserver.WithStartHook(func(l *slog.Logger, addr net.Addr) {
			attrs := []any{slog.String("addr", addr.String())}
			if tcp, ok := addr.(*net.TCPAddr); ok {
				attrs = append(attrs, slog.Int("port", tcp.Port))
			}
			l.Info("server listening", attrs...)
			for _, fn := range o.ready {
				fn(addr)
			}
		}),
		httpserver.WithStopHook(func(l *slog.Logger) {
			l.Info("server stopped")
		}),
	)

	if _, err := a.srv.Start(handler); err != nil {
		log.ErrorContext(ctx, "server failed to start", logger.Error(err))
		_ = handler.Close()
		a.closeBackend()
		return nil, err
	}

	return a, nil
}

func (a *App) buildHandler(cfg Config, o options) (*server.Handler, error) {
	cookieOpts := []cookie.Option{cookie.WithSecure(cfg.Session.SecureCookies)}
	if cfg.Session.CookieDomain != "" {
		cookieOpts = append(cookieOpts, cookie.WithDomain(cfg.Session.CookieDomain))
	}
	cookies, err := cookie.New(cookie.ParseSecrets(cfg.Session.Secret))
	if err != nil {
		return nil, errors.Join(ErrSetup, err)
	}

	onError := server.NewErrorHandler(o.logger.With(logger.Component("http")))
	sessions := session.New(
		session.WithStore(a.backend.Store()),
		session.WithCookieManager(cookies, cookieOpts...),
		session.WithCookieName(cfg.Session.CookieName),
		session.WithMaxAge(cfg.Session.MaxAge()),
		session.WithErrorHandler(session.ErrorHandler(onError)),
		session.WithObserver(metrics.ObserveSessionOp),
	)

	serverOpts := []server.Option{
		server.WithLogger(o.logger),
		server.WithSessions(sessions),
		server.WithReadinessCheck(a.backend.Ping),
	}
	for _, fn := range o.routes {
		serverOpts = append(serverOpts, server.WithRoutes(fn))
	}

	h, err := server.New(cfg.Server, serverOpts...)
	if err != nil {
		return nil, errors.Join(ErrSetup, err)
	}
	return h, nil
}

// Addr returns the address the server is bound to.
func (a *App) Addr() net.Addr {
	return a.srv.Addr()
}

// Wait blocks until the server stops serving.
func (a *App) Wait() error {
	return a.srv.Wait()
}

// Shutdown stops accepting requests, waits for in-flight ones, then
// releases static roots and the backend connection.
// It is safe to call more than once.
func (a *App) Shutdown(ctx context.Context) error {
	a.closeOnce.Do(func() {
		a.closeErr = errors.Join(
			a.srv.Shutdown(ctx),
			a.handler.Close(),
			a.backend.Close(ctx),
		)
	})
	return a.closeErr
}

// Run blocks until ctx is cancelled, SIGINT or SIGTERM arrives, or the
// server fails, then shuts down.
func (a *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	served := make(chan error, 1)
	go func() { served <- a.srv.Wait() }()

	var serveErr error
	select {
	case <-ctx.Done():
		a.log.Info("shutting down")
	case serveErr = <-served:
	}

	return errors.Join(serveErr, a.Shutdown(context.Background()))
}

func (a *App) closeBackend() {
	if err := a.backend.Close(context.Background()); err != nil {
		a.log.Warn("failed to close backend", logger.Error(err))
	}
}
