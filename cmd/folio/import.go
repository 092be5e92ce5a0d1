package main

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sagarc03/folio"
	"github.com/sagarc03/folio/config"
	"github.com/sagarc03/folio/database"
	"github.com/sagarc03/folio/filesystem"
	"github.com/sagarc03/folio/local"
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Catalog image files already in the media directory",
	Long: `Scan the local media directory and catalog every image file that is
not yet known to the database. This is useful when:
  - Setting up folio on top of an existing photo directory
  - Recovering the catalog after database loss

Files must be named <public id>.<format>, for example
elijah-gallery/summer-2024/beach.jpg. Only filesystem storage can be
scanned.`,
	Args: cobra.NoArgs,
	RunE: runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	cfg, err := config.FromContext(cmd.Context())
	if err != nil {
		return err
	}

	if cfg.Storage.Type != "filesystem" {
		return fmt.Errorf("import requires filesystem storage, got %s", cfg.Storage.Type)
	}

	ctx := cmd.Context()

	repo, closeDB, err := database.Open(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("open catalog: %w", err)
	}
	defer closeDB()

	files, closeFiles, err := openFilesystem(cfg.Storage.Path, false)
	if err != nil {
		return err
	}
	defer closeFiles()

	store := local.New(repo, files, local.Config{CloudName: cfg.Local.CloudName})

	slog.Info("scanning storage directory", "path", cfg.Storage.Path)

	created, unchanged, skipped := 0, 0, 0
	err = files.Walk(ctx, func(entry filesystem.Entry) error {
		if !strings.HasPrefix(entry.ContentType, "image/") {
			return nil
		}

		_, isNew, regErr := store.Register(ctx, entry.Path, entry.Size, entry.ETag)
		if errors.Is(regErr, folio.ErrInvalidInput) {
			skipped++
			slog.Warn("skipped", "path", entry.Path, "err", regErr)
			return nil
		}
		if regErr != nil {
			return fmt.Errorf("import %s: %w", entry.Path, regErr)
		}

		if isNew {
			created++
			slog.Debug("cataloged", "path", entry.Path)
		} else {
			unchanged++
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("scan storage: %w", err)
	}

	slog.Info("import complete", "cataloged", created, "existing", unchanged, "skipped", skipped)
	return nil
}
