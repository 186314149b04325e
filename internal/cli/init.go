// Package cli holds the fintrack commands and the start-up plumbing they
// share: configuration, logging, backend and service wiring, and signal
// handling.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shopspring/decimal"

	"fintrack/internal/analytics"
	"fintrack/internal/auth"
	"fintrack/internal/backend"
	"fintrack/internal/cache"
	"fintrack/internal/config"
	"fintrack/internal/log"
	"fintrack/internal/services"
)

// setupLogger builds the process logger from cfg and makes it the slog default.
func setupLogger(cfg *config.Config) *log.Logger {
	lc := log.DefaultConfig()
	lc.Level = log.ParseLevel(cfg.LogLevel)
	lc.Format = cfg.LogFormat
	lc.Output = os.Stderr
	logger := log.New(lc)
	log.SetDefault(logger)
	return logger
}

// loadConfig reads the configuration and applies the --config and
// --log-level overrides from the root command.
func loadConfig(opts *rootOptions) (*config.Config, error) {
	if opts.configPath != "" {
		if err := os.Setenv("FINTRACK_CONFIG", opts.configPath); err != nil {
			return nil, fmt.Errorf("set config path: %w", err)
		}
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if opts.logLevel != "" {
		cfg.LogLevel = opts.logLevel
	}
	return cfg, nil
}

// openBackend validates only what the storage layer needs, so offline
// commands work without server-only settings such as JWT_SECRET.
func openBackend(ctx context.Context, cfg *config.Config, logger *log.Logger) (*backend.BackendResult, error) {
	bc, err := backend.FromAppConfig(cfg)
	if err != nil {
		return nil, err
	}
	res, err := backend.NewFactory(logger).CreateBackend(ctx, bc)
	if err != nil {
		return nil, fmt.Errorf("open %s backend: %w", bc.Type, err)
	}
	return res, nil
}

func analyticsOptions(cfg *config.Config) analytics.Options {
	opts := analytics.DefaultOptions()
	opts.RollingWindow = cfg.RollingWindow
	if d, err := decimal.NewFromString(cfg.OptimalAverage); err == nil {
		opts.OptimalAverage = d
	}
	return opts
}

// app is the service graph shared by serve, report and import.
type app struct {
	backend      *backend.BackendResult
	tokens       *auth.TokenIssuer
	analytics    *services.AnalyticsService
	transactions *services.TransactionService
	auth         *services.AuthService
	closers      []func()
}

// close releases the report cache. The backend has its own Cleanup.
func (a *app) close() {
	for _, c := range a.closers {
		c()
	}
}

// buildApp wires services over an open backend. A zero CacheTTL disables
// report caching.
func buildApp(cfg *config.Config, res *backend.BackendResult, logger *log.Logger) (*app, error) {
	var (
		reports cache.Cache[int64, analytics.Report]
		closers []func()
	)
	if cfg.CacheTTL > 0 {
		c, err := cache.NewTTLCache[int64, analytics.Report](cache.Config[analytics.Report]{
			MaxCost: cfg.CacheMaxCost,
			TTL:     cfg.CacheTTL,
			Cost:    services.ReportCost,
		})
		if err != nil {
			return nil, err
		}
		reports = c
		closers = append(closers, c.Close)
	}

	// A nil *amqp.Client must not become a non-nil interface.
	var publisher services.EventPublisher
	if res.Publisher != nil {
		publisher = res.Publisher
	}

	tokens := auth.NewTokenIssuer(cfg.JWTSecret, cfg.SessionTTL)
	analyticsSvc := services.NewAnalyticsService(res.Repository, reports, analyticsOptions(cfg), logger)
	return &app{
		backend:      res,
		tokens:       tokens,
		analytics:    analyticsSvc,
		transactions: services.NewTransactionService(res.Repository, publisher, analyticsSvc, logger),
		auth:         services.NewAuthService(res.Repository, tokens, logger),
		closers:      closers,
	}, nil
}

// signalContext is canceled on SIGINT or SIGTERM. Calling stop releases the
// signal handler.
func signalContext(parent context.Context, logger *log.Logger) (ctx context.Context, stop func()) {
	ctx, cancel := context.WithCancel(parent)
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		select {
		case sig := <-sigChan:
			logger.Info("Shutdown signal received", "signal", sig.String())
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, func() {
		signal.Stop(sigChan)
		cancel()
	}
}

// shutdownTimeout bounds graceful shutdown of servers and consumers.
const shutdownTimeout = 30 * time.Second
