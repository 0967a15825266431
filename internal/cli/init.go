// Package cli holds the bootstrap steps shared by cmd/budget and
// cmd/budgetctl.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"budget/internal/backend"
	"budget/internal/config"
	"budget/internal/ledger"
	"budget/internal/log"
	"budget/internal/services"
)

// SetupLogger builds the process logger from cfg and installs it as the
// slog default.
func SetupLogger(cfg *config.Config, out io.Writer) *log.Logger {
	lc := log.DefaultConfig()
	if out != nil {
		lc.Output = out
	}
	if cfg != nil {
		if lvl, err := log.ParseLevel(cfg.LogLevel); err == nil {
			lc.Level = lvl
		}
		lc.Format = cfg.LogFormat
	}
	logger := log.New(lc)
	log.SetDefault(logger)
	return logger
}

// LoadEnvFile loads .env for local development. A missing file is fine.
func LoadEnvFile(files ...string) {
	_ = godotenv.Load(files...)
}

// LoadAndValidateConfig loads configuration and validates it.
func LoadAndValidateConfig() (*config.Config, error) {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// OpenService wires the configured backend, the ledger repository and the
// ledger service. The returned service owns the backend: closing it releases
// the store and any AMQP connection.
func OpenService(ctx context.Context, cfg *config.Config, logger *log.Logger, opts ...services.ServiceOption) (*services.LedgerService, error) {
	bc, err := backend.FromAppConfig(cfg)
	if err != nil {
		return nil, err
	}
	res, err := backend.NewFactory(logger).CreateBackend(ctx, bc)
	if err != nil {
		return nil, err
	}

	repo, err := ledger.Open(ctx, res.Store, ledger.WithLogger(logger))
	if err != nil {
		_ = res.Cleanup()
		return nil, fmt.Errorf("open ledger: %w", err)
	}

	opts = append([]services.ServiceOption{
		services.WithServiceLogger(logger),
		services.WithCacheTTL(cfg.CacheTTL),
	}, opts...)
	if res.Publisher != nil {
		opts = append(opts, services.WithPublisher(res.Publisher))
	}
	return services.NewLedgerService(repo, res.Store, opts...), nil
}

// SignalContext returns a context cancelled on SIGINT or SIGTERM.
func SignalContext(parent context.Context, logger *log.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		defer signal.Stop(sigChan)
		select {
		case sig := <-sigChan:
			logger.Info("Shutdown signal received", "signal", sig.String())
			cancel()
		case <-ctx.Done():
		}
	}()
	return ctx, cancel
}
