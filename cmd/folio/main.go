package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sagarc03/folio/config"
)

var version = "dev"

var rootCmd = &cobra.Command{
	Version: version,
	Use:     "folio",
	Short:   "Photography portfolio backend",
	Long: `Folio serves a photography portfolio: albums, a gallery feed, signed
direct uploads and an admin area, on top of Cloudinary or a self-hosted
media store.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		envFiles, _ := cmd.Flags().GetStringSlice("env-file")
		if err := loadDotEnv(envFiles); err != nil {
			return err
		}

		configFiles, _ := cmd.Flags().GetStringSlice("config")
		cfg, err := config.Load(configFiles, cmd.Flags())
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		setupLogging(cfg)
		cmd.SetContext(config.WithContext(cmd.Context(), cfg))
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringSlice("config", nil, "config file path, repeat to merge (default: ./config.yaml)")
	rootCmd.PersistentFlags().StringSlice("env-file", []string{".env", ".env.local"}, "dotenv files loaded into the environment, later files win")
	rootCmd.PersistentFlags().String("backend", "", "media store: cloudinary, local (default: cloudinary, env: FOLIO_MEDIA_BACKEND)")
	rootCmd.PersistentFlags().String("root-folder", "", "gallery root folder (default: elijah-gallery, env: FOLIO_GALLERY_ROOT_FOLDER)")
	rootCmd.PersistentFlags().String("db-type", "", "catalog database type: sqlite, postgres (default: sqlite, env: FOLIO_DATABASE_TYPE)")
	rootCmd.PersistentFlags().String("db-dsn", "", "catalog connection string (default: folio.db, env: FOLIO_DATABASE_DSN)")
	rootCmd.PersistentFlags().String("storage-path", "", "local media directory (default: ./media, env: FOLIO_STORAGE_PATH)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
