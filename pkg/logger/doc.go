// Package logger builds *slog.Logger instances with functional options and a
// handler decorator that injects request-scoped attributes (such as the
// request id) from context.Context on every record.
//
// # Usage
//
//	log := logger.New(
//	    logger.WithEnvironment(cfg.AppEnv, "webseed"),
//	    logger.WithLevelName(cfg.LogLevel),
//	    logger.WithContextExtractors(requestid.LoggerExtractor()),
//	)
//	logger.SetAsDefault(log)
//
//	log.InfoContext(ctx, "database connected", logger.Target(uri))
//
// Attribute helpers (Error, RequestID, Component, Duration, Target, Status)
// return empty attributes for zero inputs so callers can skip nil checks:
//
//	log.Info("shutdown complete", logger.Error(err))
package logger
