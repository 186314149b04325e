package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	apphttp "fintrack/internal/http"
	"fintrack/internal/log"
	"fintrack/internal/middleware/ratelimit"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the JSON API server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), opts, addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default \":$PORT\")")
	return cmd
}

func runServe(ctx context.Context, opts *rootOptions, addr string) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	logger := setupLogger(cfg)

	ctx, stop := signalContext(ctx, logger)
	defer stop()

	res, err := openBackend(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := res.Cleanup(); err != nil {
			logger.Error("Backend cleanup failed", log.FieldError, err)
		}
	}()

	a, err := buildApp(cfg, res, logger)
	if err != nil {
		return err
	}
	defer a.close()

	if addr == "" {
		addr = ":" + cfg.Port
	}
	srv := apphttp.NewServer(addr, apphttp.Deps{
		Transactions: a.transactions,
		Analytics:    a.analytics,
		Auth:         a.auth,
		Tokens:       a.tokens,
		Store:        res.Repository,
		Logger:       logger,
		RateLimit: ratelimit.Config{
			RequestsPerSecond: cfg.RateLimitRPS,
			Burst:             cfg.RateLimitBurst,
		},
		TrustedProxies: cfg.TrustedProxies,
	})

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting fintrack server",
			"addr", addr,
			log.FieldBackend, cfg.DataBackend,
			log.FieldOperation, log.OpStartup)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server on %s: %w", addr, err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	logger.Info("Server stopped gracefully", log.FieldOperation, log.OpShutdown)
	return nil
}
