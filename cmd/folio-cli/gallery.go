package main

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/sagarc03/folio/clientcli"
)

var albumsCmd = &cobra.Command{
	Use:   "albums",
	Short: "List albums",
	Long: `List every album with its image count, newest first.

Examples:
  folio-cli albums
  folio-cli albums --json`,
	Args: cobra.NoArgs,
	RunE: runAlbums,
}

var imagesCmd = &cobra.Command{
	Use:   "images <album-id>",
	Short: "List the images of an album",
	Long: `List the images of one album, newest first. Use "main" for images
stored directly in the root folder.

Examples:
  folio-cli images summer-2024
  folio-cli images main --json`,
	Args: cobra.ExactArgs(1),
	RunE: runImages,
}

var galleryCmd = &cobra.Command{
	Use:   "gallery",
	Short: "Show the gallery feed",
	Long: `Show every image across the root folder and its albums as one feed.

With --watch the feed is polled until interrupted and only changes are
printed after the first listing.

Examples:
  folio-cli gallery
  folio-cli gallery --watch --interval 10s`,
	Args: cobra.NoArgs,
	RunE: runGallery,
}

var createAlbumCmd = &cobra.Command{
	Use:   "create-album <name>",
	Short: "Create an album",
	Long: `Create an album from a display name. The album ID is derived from the
name: lowercased, with every run of other characters replaced by "-".

Examples:
  folio-cli create-album "Summer Trip 2024"`,
	Args: cobra.ExactArgs(1),
	RunE: runCreateAlbum,
}

var (
	galleryWatch    bool
	galleryInterval time.Duration
)

func init() {
	galleryCmd.Flags().BoolVarP(&galleryWatch, "watch", "w", false, "poll the feed and print changes")
	galleryCmd.Flags().DurationVar(&galleryInterval, "interval", clientcli.DefaultWatchInterval, "polling interval for --watch")
}

func runAlbums(cmd *cobra.Command, _ []string) error {
	client, err := getClient()
	if err != nil {
		return err
	}

	albums, err := client.Albums(cmd.Context())
	if err != nil {
		return err
	}

	return getFormatter().FormatAlbums(os.Stdout, albums)
}

func runImages(cmd *cobra.Command, args []string) error {
	client, err := getClient()
	if err != nil {
		return err
	}

	images, err := client.AlbumImages(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	return getFormatter().FormatImages(os.Stdout, images)
}

func runGallery(cmd *cobra.Command, _ []string) error {
	client, err := getClient()
	if err != nil {
		return err
	}

	formatter := getFormatter()

	if !galleryWatch {
		images, galleryErr := client.Gallery(cmd.Context())
		if galleryErr != nil {
			return galleryErr
		}
		return formatter.FormatImages(os.Stdout, images)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return client.WatchGallery(ctx, galleryInterval, func(u clientcli.GalleryUpdate) error {
		return formatter.FormatGalleryUpdate(os.Stdout, u)
	}, func(err error) {
		_ = formatter.FormatError(os.Stderr, err)
	})
}

func runCreateAlbum(cmd *cobra.Command, args []string) error {
	client, err := getClient()
	if err != nil {
		return err
	}

	result, err := client.CreateAlbum(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	return getFormatter().FormatCreateAlbum(os.Stdout, result)
}
