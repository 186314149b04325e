package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"fintrack/internal/config"
	"fintrack/internal/storage"
)

func newMigrateCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations for the configured backend",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			logger := setupLogger(cfg)

			switch cfg.DataBackend {
			case config.BackendSQLite:
				repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
				if err != nil {
					return err
				}
				defer repo.Close()
				logger.Info("SQLite migrations applied", "db_path", cfg.SQLiteDBPath)
			case config.BackendPostgres:
				if cfg.PostgresURL == "" {
					return fmt.Errorf("DATABASE_URL is required for the postgres backend")
				}
				if err := storage.RunPostgresMigrations(cfg.PostgresURL); err != nil {
					return fmt.Errorf("run postgres migrations: %w", err)
				}
				logger.Info("Postgres migrations applied")
			default:
				fmt.Fprintf(cmd.OutOrStdout(), "backend %q has no schema to migrate\n", cfg.DataBackend)
			}
			return nil
		},
	}
}
