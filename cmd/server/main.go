package main

import (
	"context"
	"log"
	"os"

	"github.com/dmitrymomot/webseed/internal/app"
	"github.com/dmitrymomot/webseed/pkg/clientip"
	"github.com/dmitrymomot/webseed/pkg/logger"
	"github.com/dmitrymomot/webseed/pkg/requestid"
)

const serviceName = "webseed"

func main() {
	cfg, err := app.LoadConfig()
	if err != nil {
		// Use log before slog is initialized
		log.Fatalf("Failed to load config: %v", err)
	}

	l := logger.New(
		logger.WithEnvironment(cfg.Env, serviceName),
		logger.WithLevelName(cfg.LogLevel),
		logger.WithFormat(logger.Format(cfg.LogFormat)),
		logger.WithContextExtractors(requestid.LoggerExtractor(), clientip.LoggerExtractor()),
	)
	logger.SetAsDefault(l)

	ctx := context.Background()

	a, err := app.Start(ctx, cfg, app.WithLogger(l))
	if err != nil {
		l.Error("startup failed", logger.Error(err))
		os.Exit(1)
	}

	if err := a.Run(ctx); err != nil {
		l.Error("server stopped with error", logger.Error(err))
		os.Exit(1)
	}
}
