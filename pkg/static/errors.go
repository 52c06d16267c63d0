package static

import (
	"errors"
	"net/http"

	"github.com/dmitrymomot/webseed/core"
)

var (
	ErrInvalidRoot = errors.New("static: invalid root directory")

	ErrForbidden = core.NewHTTPError(http.StatusForbidden, "forbidden")
	ErrNotFound  = core.NewHTTPError(http.StatusNotFound, "not_found")
)
