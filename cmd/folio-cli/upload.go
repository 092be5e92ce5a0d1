package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/sagarc03/folio/clientcli"
)

var (
	uploadAlbum     string
	uploadRecursive bool
)

var uploadCmd = &cobra.Command{
	Use:   "upload [--album <id>] <file> [file...]",
	Short: "Upload images",
	Long: `Upload images straight to the media store with one signed grant.

Files are uploaded one after another. A failed file does not stop the
rest; the command exits non-zero when any file failed.

Examples:
  folio-cli upload beach.jpg
  folio-cli upload --album summer-2024 beach.jpg sunset.png
  folio-cli upload -r --album archive ./scans`,
	Args: cobra.MinimumNArgs(1),
	RunE: runUpload,
}

func init() {
	uploadCmd.Flags().StringVarP(&uploadAlbum, "album", "a", "", "album to upload into (default: the root folder)")
	uploadCmd.Flags().BoolVarP(&uploadRecursive, "recursive", "r", false, "upload image files in directories recursively")
}

func runUpload(cmd *cobra.Command, args []string) error {
	client, err := getClient()
	if err != nil {
		return err
	}

	results, err := client.Upload(cmd.Context(), clientcli.UploadOptions{
		AlbumID:   uploadAlbum,
		Paths:     args,
		Recursive: uploadRecursive,
	})
	if err != nil {
		return err
	}

	if err := getFormatter().FormatUpload(os.Stdout, results); err != nil {
		return err
	}

	if clientcli.HasUploadErrors(results) {
		return &exitError{code: 1}
	}

	return nil
}
