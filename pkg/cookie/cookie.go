package cookie

import (
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/gorilla/securecookie"
)

const minSecretLength = 32

// Manager writes and reads cookies with shared default attributes and
// HMAC-SHA256 signing. The first secret signs; every secret verifies, which
// allows rotating keys without invalidating cookies already issued.
type Manager struct {
	codecs   []securecookie.Codec
	defaults Options
}

func New(secrets []string, opts ...Option) (*Manager, error) {
	secrets = slices.DeleteFunc(slices.Clone(secrets), func(s string) bool { return s == "" })
	if len(secrets) == 0 {
		return nil, ErrNoSecret
	}

	codecs := make([]securecookie.Codec, 0, len(secrets))
	for i, s := range secrets {
		if len(s) < minSecretLength {
			return nil, fmt.Errorf("%w: secret %d has %d chars, need at least %d", ErrSecretTooShort, i, len(s), minSecretLength)
		}
		// expiry is enforced by the cookie attributes and the session store
		codecs = append(codecs, securecookie.New([]byte(s), nil).
			MaxAge(0).
			SetSerializer(securecookie.NopEncoder{}))
	}

	defaults := Options{
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}

	return &Manager{
		codecs:   codecs,
		defaults: applyOptions(defaults, opts),
	}, nil
}

// ParseSecrets splits a comma-separated secret list, trimming blanks.
func ParseSecrets(s string) []string {
	var out []string
	for part := range strings.SplitSeq(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func (m *Manager) Set(w http.ResponseWriter, name, value string, opts ...Option) {
	o := applyOptions(m.defaults, opts)

	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     o.Path,
		Domain:   o.Domain,
		MaxAge:   o.MaxAge,
		Expires:  o.Expires,
		Secure:   o.Secure,
		HttpOnly: o.HttpOnly,
		SameSite: o.SameSite,
	})
}

func (m *Manager) Get(r *http.Request, name string) (string, error) {
	c, err := r.Cookie(name)
	if err != nil {
		if errors.Is(err, http.ErrNoCookie) {
			return "", ErrCookieNotFound
		}
		return "", err
	}
	return c.Value, nil
}

// Delete expires the cookie on the client using the given attributes, which
// must match the ones it was set with (path and domain in particular).
func (m *Manager) Delete(w http.ResponseWriter, name string, opts ...Option) {
	o := applyOptions(m.defaults, opts)

	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     o.Path,
		Domain:   o.Domain,
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		Secure:   o.Secure,
		HttpOnly: o.HttpOnly,
		SameSite: o.SameSite,
	})
}

// SetSigned signs value, binding it to the cookie name, and sets the cookie.
func (m *Manager) SetSigned(w http.ResponseWriter, name, value string, opts ...Option) error {
	signed, err := m.codecs[0].Encode(name, []byte(value))
	if err != nil {
		return errors.Join(ErrEncode, err)
	}
	m.Set(w, name, signed, opts...)
	return nil
}

// GetSigned reads a cookie written by SetSigned under the same name.
func (m *Manager) GetSigned(r *http.Request, name string) (string, error) {
	signed, err := m.Get(r, name)
	if err != nil {
		return "", err
	}

	var lastErr error
	for _, codec := range m.codecs {
		var value []byte
		if lastErr = codec.Decode(name, signed, &value); lastErr == nil {
			return string(value), nil
		}
	}

	if errors.Is(lastErr, securecookie.ErrMacInvalid) {
		return "", ErrInvalidSignature
	}
	return "", errors.Join(ErrInvalidFormat, lastErr)
}
