// Package httpserver provides a lightweight wrapper around net/http that adds
// synchronous binding, graceful shutdown, configurable server timeouts,
// health-check handlers, and structured logging via slog.
//
// Start binds the listener before returning, so a caller knows the port is
// open (or why it is not) without polling. Start hooks receive the bound
// address, which is how callers learn the port chosen for ":0".
//
// # Usage
//
//	srv := httpserver.New(cfg,
//		httpserver.WithLogger(log),
//		httpserver.WithStartHook(func(log *slog.Logger, addr net.Addr) {
//			log.Info("server listening", "addr", addr.String())
//		}),
//	)
//
//	if _, err := srv.Start(router); err != nil {
//		return err
//	}
//	<-ctx.Done()
//	return srv.Shutdown(context.Background())
//
// # Errors
//
// Start wraps listen and serve errors with ErrStart, while Shutdown wraps
// underlying shutdown errors with ErrShutdown. Use errors.Is to distinguish
// them.
package httpserver
