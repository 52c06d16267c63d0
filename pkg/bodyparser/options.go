package bodyparser

import (
	"errors"
	"net/http"

	"github.com/dmitrymomot/webseed/core"
)

const (
	DefaultLimit          = 100 << 10
	DefaultParameterLimit = 1000
	DefaultDepth          = 5
)

// ErrorHandler writes the response for a body that could not be parsed.
type ErrorHandler func(w http.ResponseWriter, r *http.Request, err error)

type Option func(*config)

type config struct {
	limit          int64
	parameterLimit int
	depth          int
	onError        ErrorHandler
}

func newConfig(opts []Option) config {
	c := config{
		limit:          DefaultLimit,
		parameterLimit: DefaultParameterLimit,
		depth:          DefaultDepth,
		onError:        defaultErrorHandler,
	}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// WithLimit sets the maximum accepted body size in bytes.
func WithLimit(n int64) Option {
	return func(c *config) {
		if n > 0 {
			c.limit = n
		}
	}
}

// WithParameterLimit caps the number of fields in a urlencoded body.
func WithParameterLimit(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.parameterLimit = n
		}
	}
}

// WithDepth caps bracket nesting in urlencoded keys. Deeper brackets are
// kept verbatim as part of the last key.
func WithDepth(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.depth = n
		}
	}
}

// WithErrorHandler routes parse failures through h.
func WithErrorHandler(h ErrorHandler) Option {
	return func(c *config) {
		if h != nil {
			c.onError = h
		}
	}
}

func defaultErrorHandler(w http.ResponseWriter, _ *http.Request, err error) {
	code := http.StatusBadRequest
	var httpErr core.HTTPError
	if errors.As(err, &httpErr) {
		code = httpErr.Code
	}
	http.Error(w, http.StatusText(code), code)
}
