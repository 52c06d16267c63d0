package bodyparser

import (
	"bytes"
	"errors"
	"io"
	"mime"
	"net/http"
	"strings"
)

// mediaType returns the lowercased media type and charset of the request.
func mediaType(r *http.Request) (string, string) {
	ct := r.Header.Get("Content-Type")
	if ct == "" {
		return "", ""
	}
	mt, params, err := mime.ParseMediaType(ct)
	if err != nil {
		mt, _, _ = strings.Cut(ct, ";")
		return strings.ToLower(strings.TrimSpace(mt)), ""
	}
	return mt, strings.ToLower(params["charset"])
}

func checkCharset(charset string) error {
	switch charset {
	case "", "utf-8", "utf8", "us-ascii":
		return nil
	default:
		return ErrUnsupportedCharset
	}
}

// readBody reads at most limit bytes and replaces r.Body with a reader over
// the same bytes, so handlers can still read the raw body.
func readBody(w http.ResponseWriter, r *http.Request, limit int64) ([]byte, error) {
	if r.ContentLength > limit {
		return nil, ErrBodyTooLarge
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, limit))
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, ErrBodyTooLarge
		}
		return nil, errors.Join(ErrMalformedBody, err)
	}

	r.Body = io.NopCloser(bytes.NewReader(body))
	return body, nil
}
