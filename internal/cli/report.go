package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/storage"
)

func newReportCmd(opts *rootOptions) *cobra.Command {
	var (
		email  string
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print the analytics report for a user",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			logger := setupLogger(cfg)
			ctx := cmd.Context()

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
			user, err := lookupUser(ctx, res.Repository, email)
			if err != nil {
				return err
			}

			report, err := a.analytics.Report(ctx, user.ID)
			if err != nil {
				return fmt.Errorf("build report: %w", err)
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(report)
			}
			_, err = fmt.Fprint(out, renderReport(user, report))
			return err
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "email of the user to report on")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the report as JSON")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func lookupUser(ctx context.Context, users storage.UserStore, email string) (core.User, error) {
	email = core.NormalizeEmail(email)
	if !core.ValidEmail(email) {
		return core.User{}, fmt.Errorf("invalid email %q", email)
	}
	user, err := users.GetUserByEmail(ctx, email)
	if errors.Is(err, storage.ErrNotFound) {
		return core.User{}, fmt.Errorf("no user with email %q", email)
	}
	if err != nil {
		return core.User{}, fmt.Errorf("look up user: %w", err)
	}
	return user, nil
}
