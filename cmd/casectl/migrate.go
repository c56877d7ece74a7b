package main

import (
	"fmt"
	"os"

	"github.com/case-tracker/backend/internal/db"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			n, err := db.RunMigrations(cmd.Context(), a.pool, os.DirFS(a.cfg.MigrationsDir), a.log)
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}
			a.log.Info("migrations completed", zap.Int("applied", n))
			return nil
		},
	}
}
