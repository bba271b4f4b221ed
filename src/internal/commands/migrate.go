package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/api-sage/bank-viewer/src/internal/adapter/repository/postgres"
)

var errDatabaseNotConfigured = errors.New("DATABASE_DSN is not set")

func newMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations for the sign-in audit log",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadDatabaseConfig()
			if err != nil {
				return err
			}
			if cfg.DatabaseDSN == "" {
				return errDatabaseNotConfigured
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()

			db, err := postgres.Open(ctx, cfg.DatabaseDSN)
			if err != nil {
				return err
			}
			defer db.Close()

			applied, err := postgres.RunMigrations(ctx, db, cfg.MigrationsDir)
			if err != nil {
				return fmt.Errorf("run migrations: %w", err)
			}

			if len(applied) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "database is up to date")
				return nil
			}
			for _, version := range applied {
				fmt.Fprintf(cmd.OutOrStdout(), "applied %s\n", version)
			}
			return nil
		},
	}
}
