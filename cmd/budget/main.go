package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"budget/internal/cache"
	"budget/internal/cli"
	apphttp "budget/internal/http"
	"budget/internal/log"
	"budget/internal/services"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	cli.LoadEnvFile()

	cfg, err := cli.LoadAndValidateConfig()
	if err != nil {
		bootLogger := cli.SetupLogger(nil, os.Stderr)
		bootLogger.Error("Configuration validation failed",
			log.FieldError, err,
			log.FieldErrorType, log.ErrorTypeConfiguration)
		os.Exit(1)
	}

	logger := cli.SetupLogger(cfg, os.Stdout)
	appLogger := logger.WithComponent(log.ComponentApp)
	appLogger.Info("Starting budget server",
		"port", cfg.Port,
		log.FieldBackend, cfg.DataBackend,
		"amqp_enabled", cfg.AMQPEnabled())

	ctx, cancel := cli.SignalContext(context.Background(), appLogger)
	defer cancel()

	cacheManager := cache.NewManager(logger)
	svc, err := cli.OpenService(ctx, cfg, logger, services.WithCacheManager(cacheManager))
	if err != nil {
		appLogger.Error("Failed to open ledger",
			log.FieldError, err,
			log.FieldBackend, cfg.DataBackend,
			log.FieldOperation, log.OpStartup)
		os.Exit(1)
	}
	cacheManager.StartCleanup(cfg.CacheTTL)

	srv := apphttp.NewServer(apphttp.Config{
		Addr:               ":" + cfg.Port,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		Logger:             logger,
	}, svc)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		appLogger.Info("HTTP server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer shutdownCancel()

		appLogger.Info("Shutting down HTTP server", log.FieldOperation, log.OpShutdown)
		return srv.Shutdown(shutdownCtx)
	})

	exitCode := 0
	if err := g.Wait(); err != nil {
		appLogger.Error("Server error", log.FieldError, err)
		exitCode = 1
	}

	start := time.Now()
	cacheManager.Stop()
	if err := svc.Close(); err != nil {
		appLogger.Error("Failed to close ledger backend", log.FieldError, err)
		exitCode = 1
	}
	appLogger.Info("Server stopped gracefully", "close_ms", time.Since(start).Milliseconds())
	cancel()
	os.Exit(exitCode)
}
