package main

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/sagarc03/folio"
	"github.com/sagarc03/folio/config"
)

var removeCmd = &cobra.Command{
	Use:   "remove [flags] <publicId1> [publicId2] ...",
	Short: "Delete images from the media store",
	Long: `Delete images by their full public ID, the same way the admin
API does.

Examples:
  # Remove a single image
  folio remove elijah-gallery/summer-2024/beach

  # Remove quietly (suppress per-image output)
  folio remove -q elijah-gallery/old-1 elijah-gallery/old-2`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRemove,
}

var removeQuiet bool

func init() {
	removeCmd.Flags().BoolVarP(&removeQuiet, "quiet", "q", false, "suppress per-image output")
	rootCmd.AddCommand(removeCmd)
}

func runRemove(cmd *cobra.Command, args []string) error {
	cfg, err := config.FromContext(cmd.Context())
	if err != nil {
		return err
	}

	ctx := cmd.Context()

	service, b, err := newGalleryService(ctx, cfg)
	if err != nil {
		return err
	}
	defer b.Close()

	removed := 0
	notFound := 0

	for _, publicID := range args {
		_, deleteErr := service.DeleteImage(ctx, publicID)
		if errors.Is(deleteErr, folio.ErrNotFound) {
			notFound++
			if !removeQuiet {
				slog.Warn("not found", "public_id", publicID)
			}
			continue
		}
		if deleteErr != nil {
			return fmt.Errorf("remove %s: %w", publicID, deleteErr)
		}
		removed++
		if !removeQuiet {
			slog.Info("removed", "public_id", publicID)
		}
	}

	slog.Info("remove complete", "removed", removed, "not_found", notFound)
	return nil
}
