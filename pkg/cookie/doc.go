// Package cookie sets, reads and deletes HTTP cookies with shared default
// attributes, and signs values with gorilla/securecookie (HMAC-SHA256 over
// the cookie name, a timestamp and the value) so tampered or renamed cookies
// are rejected.
//
// Secrets must be at least 32 characters. Several secrets may be supplied;
// the first one signs and all of them verify, so a secret can be rotated by
// prepending the new one.
//
//	mgr, err := cookie.New(cookie.ParseSecrets(cfg.SessionSecret),
//	    cookie.WithDomain(cfg.CookieDomain),
//	)
//	err = mgr.SetSigned(w, "sid", id, cookie.WithExpires(time.Now().Add(ttl)))
//	id, err := mgr.GetSigned(r, "sid")
//
// Errors: ErrNoSecret, ErrSecretTooShort, ErrCookieNotFound,
// ErrInvalidFormat, ErrInvalidSignature, ErrEncode.
package cookie
