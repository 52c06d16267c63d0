// Package session provides cookie-identified server-side sessions.
//
// A Manager loads the session named by a signed cookie, exposes it to
// handlers through the request context, and writes it back right before
// the response header goes out. Sessions follow three rules:
//
//   - a session that was never modified is never stored and no cookie is set
//   - an unmodified session that already exists is not rewritten; only its
//     expiry is pushed forward through Store.Touch
//   - every response for an existing session carries a refreshed cookie, so
//     the lifetime counts from the last request
//
// Basic usage:
//
//	cookies, _ := cookie.New([]string{secret})
//	mgr := session.New(
//		session.WithStore(mongostore.New(db)),
//		session.WithCookieManager(cookies, cookie.WithDomain("example.com")),
//		session.WithMaxAge(24*time.Hour),
//	)
//	router.Use(mgr.Middleware)
//
//	func handler(w http.ResponseWriter, r *http.Request) {
//		sess := session.MustFromContext(r.Context())
//		sess.Set("views", 1)
//	}
//
// Stores are interchangeable: MemoryStore for tests and development,
// mongostore for MongoDB and redisstore for Redis.
package session
