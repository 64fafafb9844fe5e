package main

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"resume-tailor/internal/shared/config"
	"resume-tailor/internal/shared/storage/db"
	"resume-tailor/internal/shared/telemetry"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply database migrations for the run history",
	RunE:  runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	cfg := config.Load()
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		return errors.New("DATABASE_URL is required")
	}

	ctx := cmd.Context()
	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, db.OptionsFromEnv(db.DefaultMigrateOptions()))
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	if err := db.RunMigrations(ctx, sqlDB); err != nil {
		return err
	}
	telemetry.Info("migrate.complete", nil)
	return nil
}
