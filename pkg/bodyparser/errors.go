package bodyparser

import (
	"errors"
	"net/http"

	"github.com/dmitrymomot/webseed/core"
)

var (
	ErrMalformedBody      = core.NewHTTPError(http.StatusBadRequest, "malformed_body")
	ErrBodyTooLarge       = core.NewHTTPError(http.StatusRequestEntityTooLarge, "body_too_large")
	ErrTooManyParameters  = core.NewHTTPError(http.StatusRequestEntityTooLarge, "too_many_parameters")
	ErrUnsupportedCharset = core.NewHTTPError(http.StatusUnsupportedMediaType, "unsupported_charset")

	ErrNoPayload = errors.New("bodyparser: no parsed body in context")
)
