// Package static serves read-only files from a single directory.
//
// The directory is opened with os.Root, so no request can reach a file
// outside it, symlinks included. Only GET and HEAD are served. Paths with
// ".." segments are rejected with 403, dotfiles and missing files are 404,
// and a directory resolves to its index.html or 404; listings are never
// produced. Transfer details (ranges, conditional requests, content type)
// are left to http.ServeContent.
package static

import (
	"errors"
	"io/fs"
	"net/http"
	"os"
	"path"
	"strings"
)

const indexFile = "index.html"

// ErrorHandler writes the response for a request that could not be served.
type ErrorHandler func(w http.ResponseWriter, r *http.Request, err error)

type Option func(*Handler)

// WithErrorHandler routes 403 and 404 outcomes through h.
func WithErrorHandler(h ErrorHandler) Option {
	return func(s *Handler) {
		if h != nil {
			s.onError = h
		}
	}
}

// Handler serves files below one directory.
type Handler struct {
	root    *os.Root
	onError ErrorHandler
}

// New opens dir and returns a handler serving it. The request path is
// resolved relative to dir, so mount it behind http.StripPrefix.
func New(dir string, opts ...Option) (*Handler, error) {
	root, err := os.OpenRoot(dir)
	if err != nil {
		return nil, errors.Join(ErrInvalidRoot, err)
	}

	h := &Handler{root: root, onError: defaultErrorHandler}
	for _, opt := range opts {
		opt(h)
	}
	return h, nil
}

// Close releases the root directory handle.
func (h *Handler) Close() error {
	return h.root.Close()
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		h.onError(w, r, ErrNotFound)
		return
	}

	name, err := resolve(r.URL.Path)
	if err != nil {
		h.onError(w, r, err)
		return
	}

	f, info, err := h.open(name)
	if err != nil {
		h.onError(w, r, ErrNotFound)
		return
	}
	defer f.Close()

	http.ServeContent(w, r, info.Name(), info.ModTime(), f)
}

// open returns the regular file for name, following a directory to its
// index file.
func (h *Handler) open(name string) (*os.File, fs.FileInfo, error) {
	f, err := h.root.Open(name)
	if err != nil {
		return nil, nil, err
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, nil, err
	}

	if info.IsDir() {
		f.Close()
		return h.openRegular(path.Join(name, indexFile))
	}
	if !info.Mode().IsRegular() {
		f.Close()
		return nil, nil, fs.ErrNotExist
	}
	return f, info, nil
}

func (h *Handler) openRegular(name string) (*os.File, fs.FileInfo, error) {
	f, err := h.root.Open(name)
	if err != nil {
		return nil, nil, err
	}
	info, err := f.Stat()
	if err != nil || !info.Mode().IsRegular() {
		f.Close()
		return nil, nil, fs.ErrNotExist
	}
	return f, info, nil
}

// resolve turns a URL path into a name relative to the root.
func resolve(urlPath string) (string, error) {
	urlPath = strings.ReplaceAll(urlPath, "\\", "/")
	for seg := range strings.SplitSeq(urlPath, "/") {
		switch {
		case seg == "..":
			return "", ErrForbidden
		case seg == "" || seg == ".":
			continue
		case seg[0] == '.' || strings.IndexByte(seg, 0) >= 0:
			return "", ErrNotFound
		}
	}

	name := strings.TrimPrefix(path.Clean("/"+urlPath), "/")
	if name == "" {
		name = "."
	}
	return name, nil
}

func defaultErrorHandler(w http.ResponseWriter, _ *http.Request, err error) {
	code := http.StatusNotFound
	if errors.Is(err, ErrForbidden) {
		code = http.StatusForbidden
	}
	http.Error(w, http.StatusText(code), code)
}
