package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/sagarc03/folio/config"
	"github.com/sagarc03/folio/database"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the local media store catalog",
	Long: `Create the catalog tables used by the local backend and validate
their schema. serve runs the same migrations on startup; this command is for
deployments that prepare the database ahead of time.`,
	Args: cobra.NoArgs,
	RunE: runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, args []string) error {
	cfg, err := config.FromContext(cmd.Context())
	if err != nil {
		return err
	}

	ctx := cmd.Context()

	db, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer func() { _ = db.Close() }()

	if err = db.Ping(ctx); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}

	if err = db.Migrate(ctx); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}

	if err = db.Validate(ctx); err != nil {
		return fmt.Errorf("validate database schema: %w", err)
	}

	slog.Info("database migration complete",
		"type", cfg.Database.Type,
		"assets_table", cfg.Database.Tables.Assets,
		"folders_table", cfg.Database.Tables.Folders,
	)
	return nil
}
