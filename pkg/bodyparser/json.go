package bodyparser

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
)

// JSON parses application/json and */*+json bodies. Only objects and arrays
// are accepted at the top level. Requests with other content types and
// empty bodies pass through without a payload.
func JSON(opts ...Option) func(http.Handler) http.Handler {
	cfg := newConfig(opts)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			mt, charset := mediaType(r)
			if !isJSON(mt) || !hasBody(r) {
				next.ServeHTTP(w, r)
				return
			}
			if err := checkCharset(charset); err != nil {
				cfg.onError(w, r, err)
				return
			}

			body, err := readBody(w, r, cfg.limit)
			if err != nil {
				cfg.onError(w, r, err)
				return
			}
			if len(bytes.TrimSpace(body)) == 0 {
				next.ServeHTTP(w, r)
				return
			}

			payload, err := decodeJSON(body)
			if err != nil {
				cfg.onError(w, r, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithPayload(r.Context(), payload)))
		})
	}
}

func isJSON(mt string) bool {
	return mt == "application/json" || (strings.HasPrefix(mt, "application/") && strings.HasSuffix(mt, "+json"))
}

func hasBody(r *http.Request) bool {
	return r.Body != nil && r.Body != http.NoBody && r.ContentLength != 0
}

func decodeJSON(body []byte) (any, error) {
	trimmed := bytes.TrimLeft(body, " \t\r\n")
	if len(trimmed) == 0 || (trimmed[0] != '{' && trimmed[0] != '[') {
		return nil, errors.Join(ErrMalformedBody, errors.New("top-level value must be an object or array"))
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	var payload any
	if err := dec.Decode(&payload); err != nil {
		return nil, errors.Join(ErrMalformedBody, err)
	}

	var extra json.RawMessage
	if err := dec.Decode(&extra); !errors.Is(err, io.EOF) {
		return nil, errors.Join(ErrMalformedBody, errors.New("unexpected data after JSON value"))
	}

	return payload, nil
}
