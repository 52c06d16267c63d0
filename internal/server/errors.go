package server

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/webseed/core"
	"github.com/dmitrymomot/webseed/pkg/logger"
)

// ErrorHandler is the terminal handler for every failure in the pipeline.
type ErrorHandler func(w http.ResponseWriter, r *http.Request, err error)

// NewErrorHandler returns the fallback error handler. Errors carrying a
// core.HTTPError keep its status; anything else becomes 500. The body is
// only the status text, so internal details never reach the client.
func NewErrorHandler(log *slog.Logger) ErrorHandler {
	return func(w http.ResponseWriter, r *http.Request, err error) {
		code := core.StatusCode(err)

		level := slog.LevelWarn
		if code >= http.StatusInternalServerError {
			level = slog.LevelError
		}
		log.LogAttrs(r.Context(), level, "request failed",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			logger.Status(code),
			logger.Error(err),
		)

		if headerWritten(w) {
			return
		}

		h := w.Header()
		h.Del("Content-Length")
		h.Set("Content-Type", "text/plain; charset=utf-8")
		h.Set("X-Content-Type-Options", "nosniff")
		w.WriteHeader(code)
		_, _ = w.Write([]byte(http.StatusText(code)))
	}
}

// HandlerFunc is a route handler that reports failure by returning an error.
// The error is passed to the pipeline's error handler.
type HandlerFunc func(w http.ResponseWriter, r *http.Request) error

func (fn HandlerFunc) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if err := fn(w, r); err != nil {
		errorHandlerFrom(r.Context())(w, r, err)
	}
}

type errorHandlerKey struct{}

func withErrorHandler(h ErrorHandler) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := context.WithValue(r.Context(), errorHandlerKey{}, h)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func errorHandlerFrom(ctx context.Context) ErrorHandler {
	if h, ok := ctx.Value(errorHandlerKey{}).(ErrorHandler); ok {
		return h
	}
	return NewErrorHandler(logger.Discard())
}

// headerWritten reports whether a status was already sent on w or on any
// writer it wraps.
func headerWritten(w http.ResponseWriter) bool {
	for {
		if s, ok := w.(interface{ Status() int }); ok && s.Status() != 0 {
			return true
		}
		u, ok := w.(interface{ Unwrap() http.ResponseWriter })
		if !ok {
			return false
		}
		w = u.Unwrap()
	}
}
