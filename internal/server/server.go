// Package server assembles the HTTP pipeline:
//
//	request id -> client ip -> access log -> metrics -> recoverer -> session ->
//	body parser -> routes (static mounts, application routes) -> error handler
//
// Health probes and the metrics endpoint sit before the session stage so
// probes never touch the session store.
package server

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dmitrymomot/webseed/core"
	"github.com/dmitrymomot/webseed/pkg/bodyparser"
	"github.com/dmitrymomot/webseed/pkg/clientip"
	"github.com/dmitrymomot/webseed/pkg/httpserver"
	"github.com/dmitrymomot/webseed/pkg/logger"
	"github.com/dmitrymomot/webseed/pkg/requestid"
	"github.com/dmitrymomot/webseed/pkg/session"
	"github.com/dmitrymomot/webseed/pkg/static"
)

// Config is the part of the application config the pipeline needs.
type Config struct {
	StaticDir      string   `env:"STATIC_DIR" envDefault:"public"`
	StaticPrefixes []string `env:"STATIC_PREFIXES" envDefault:"/static,/files" envSeparator:","`
	BodyLimit      int64    `env:"BODY_LIMIT" envDefault:"102400"`
	MetricsEnabled bool     `env:"METRICS_ENABLED" envDefault:"false"`
	TrustProxy     bool     `env:"TRUST_PROXY" envDefault:"false"`
}

// Option configures the pipeline.
type Option func(*options)

type options struct {
	logger   *slog.Logger
	sessions *session.Manager
	routes   []func(chi.Router)
	ready    []func(context.Context) error
}

// WithLogger sets the logger used for access logs and errors.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithSessions enables the session stage.
func WithSessions(m *session.Manager) Option {
	return func(o *options) { o.sessions = m }
}

// WithRoutes mounts application routes behind the session and body
// parsing stages.
func WithRoutes(fn func(chi.Router)) Option {
	return func(o *options) {
		if fn != nil {
			o.routes = append(o.routes, fn)
		}
	}
}

// WithReadinessCheck adds a dependency check to /health/ready.
func WithReadinessCheck(fn func(context.Context) error) Option {
	return func(o *options) {
		if fn != nil {
			o.ready = append(o.ready, fn)
		}
	}
}

// Handler is the assembled pipeline. Close releases the static roots.
type Handler struct {
	http.Handler
	closers []io.Closer
}

func (h *Handler) Close() error {
	var errs []error
	for _, c := range h.closers {
		errs = append(errs, c.Close())
	}
	return errors.Join(errs...)
}

// New builds the pipeline. A missing static directory is not fatal: the
// prefixes are left unmounted and every request under them is 404.
func New(cfg Config, opts ...Option) (*Handler, error) {
	o := options{logger: logger.Discard()}
	for _, opt := range opts {
		opt(&o)
	}
	log := o.logger.With(logger.Component("http"))
	onError := NewErrorHandler(log)

	r := chi.NewRouter()
	r.Use(
		requestid.Middleware,
		clientip.Middleware(cfg.TrustProxy),
		accessLog(log),
		instrument,
		recoverer(log, onError),
		withErrorHandler(onError),
	)
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		onError(w, r, core.ErrNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		onError(w, r, core.ErrMethodNotAllowed)
	})

	r.Get("/health/live", httpserver.HealthCheckHandler(log))
	r.Get("/health/ready", httpserver.HealthCheckHandler(log, o.ready...))
	if cfg.MetricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}

	h := &Handler{Handler: r}

	var files http.Handler
	if cfg.StaticDir != "" {
		sh, err := static.New(cfg.StaticDir, static.WithErrorHandler(static.ErrorHandler(onError)))
		switch {
		case err == nil:
			files = sh
			h.closers = append(h.closers, sh)
		case errors.Is(err, fs.ErrNotExist):
			log.Warn("static directory not found, static routes disabled", slog.String("dir", cfg.StaticDir))
		default:
			return nil, err
		}
	}

	r.Group(func(r chi.Router) {
		if o.sessions != nil {
			r.Use(o.sessions.Middleware)
		}
		r.Use(
			bodyparser.JSON(bodyparser.WithLimit(cfg.BodyLimit), bodyparser.WithErrorHandler(bodyparser.ErrorHandler(onError))),
			bodyparser.URLEncoded(bodyparser.WithLimit(cfg.BodyLimit), bodyparser.WithErrorHandler(bodyparser.ErrorHandler(onError))),
		)

		if files != nil {
			for _, prefix := range cfg.StaticPrefixes {
				prefix = "/" + strings.Trim(strings.TrimSpace(prefix), "/")
				if prefix == "/" {
					continue
				}
				mount := http.StripPrefix(prefix, files)
				r.Handle(prefix, mount)
				r.Handle(prefix+"/*", mount)
			}
		}

		for _, fn := range o.routes {
			fn(r)
		}
	})

	return h, nil
}
