package main

import (
	"fmt"
	"io/fs"
	"log/slog"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sagarc03/folio"
	"github.com/sagarc03/folio/config"
)

var addCmd = &cobra.Command{
	Use:   "add [flags] <file1> [file2] ...",
	Short: "Upload image files into an album",
	Long: `Upload image files from disk into an album using the server-held
credentials of the configured media store.

Each file becomes an image whose public ID is its file name without the
extension. Directories added with -r are flattened: nested paths are joined
with underscores.

Examples:
  # Upload into the root (main) album
  folio add photo.jpg

  # Upload into an album
  folio add --album summer-2024 beach.jpg sunset.png

  # Upload a directory recursively, keeping images already stored
  folio add -r --no-clobber --album archive ./scans`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAdd,
}

var (
	addAlbum     string
	addRecursive bool
	addNoClobber bool
	addQuiet     bool
)

func init() {
	addCmd.Flags().StringVarP(&addAlbum, "album", "a", "", "album to upload into (default: the root folder)")
	addCmd.Flags().BoolVarP(&addRecursive, "recursive", "r", false, "recursively add directories")
	addCmd.Flags().BoolVarP(&addNoClobber, "no-clobber", "n", false, "keep images that already exist instead of overwriting")
	addCmd.Flags().BoolVarP(&addQuiet, "quiet", "q", false, "suppress per-file output")
	rootCmd.AddCommand(addCmd)
}

// fileEntry is a file to upload and the public ID it is stored under,
// relative to the album folder.
type fileEntry struct {
	sourcePath string
	publicID   string
}

func runAdd(cmd *cobra.Command, args []string) error {
	cfg, err := config.FromContext(cmd.Context())
	if err != nil {
		return err
	}

	ctx := cmd.Context()

	album := strings.TrimSpace(addAlbum)
	if album == folio.MainAlbum {
		album = ""
	}
	if album != "" && !folio.IsValidAlbumID(album) {
		return fmt.Errorf("invalid album id: %q", addAlbum)
	}

	b, err := openBackend(ctx, cfg)
	if err != nil {
		return err
	}
	defer b.Close()

	if b.store == nil {
		return fmt.Errorf("add: %w", folio.ErrNotConfigured)
	}

	var files []fileEntry
	for _, arg := range args {
		entries, collectErr := collectFiles(arg, addRecursive)
		if collectErr != nil {
			return fmt.Errorf("collect files from %s: %w", arg, collectErr)
		}
		files = append(files, entries...)
	}

	if len(files) == 0 {
		slog.Info("no images to add")
		return nil
	}

	folder := folio.AlbumFolder(cfg.Gallery.RootFolder, album)
	added := 0

	for _, entry := range files {
		f, openErr := os.Open(entry.sourcePath)
		if openErr != nil {
			return fmt.Errorf("open %s: %w", entry.sourcePath, openErr)
		}

		asset, uploadErr := b.store.Upload(ctx, folio.UploadRequest{
			Folder:    folder,
			PublicID:  entry.publicID,
			Filename:  filepath.Base(entry.sourcePath),
			Overwrite: !addNoClobber,
		}, f)
		_ = f.Close()

		if uploadErr != nil {
			return fmt.Errorf("add %s: %w", entry.sourcePath, uploadErr)
		}

		added++
		if !addQuiet {
			slog.Info("added", "public_id", asset.PublicID, "format", asset.Format, "bytes", asset.Bytes)
		}
	}

	slog.Info("add complete", "added", added, "folder", folder)
	return nil
}

// collectFiles gathers image files from a path, optionally recursively.
// Non-image files found while walking a directory are skipped.
func collectFiles(path string, recursive bool) ([]fileEntry, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	if !info.IsDir() {
		if !isImageFile(path) {
			return nil, fmt.Errorf("%s is not an image file", path)
		}
		return []fileEntry{{sourcePath: path, publicID: publicIDFor(filepath.Base(path))}}, nil
	}

	if !recursive {
		return nil, fmt.Errorf("%s is a directory (use -r to add recursively)", path)
	}

	var entries []fileEntry
	walkErr := filepath.WalkDir(path, func(walkPath string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}

		if d.IsDir() {
			if walkPath != path && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}

		if strings.HasPrefix(d.Name(), ".") || !isImageFile(walkPath) {
			return nil
		}

		relPath, relErr := filepath.Rel(path, walkPath)
		if relErr != nil {
			return relErr
		}

		entries = append(entries, fileEntry{
			sourcePath: walkPath,
			publicID:   publicIDFor(relPath),
		})
		return nil
	})

	if walkErr != nil {
		return nil, walkErr
	}

	return entries, nil
}

// publicIDFor drops the extension and flattens directories so the image
// lands directly in the album folder.
func publicIDFor(relPath string) string {
	relPath = filepath.ToSlash(relPath)
	relPath = strings.TrimSuffix(relPath, filepath.Ext(relPath))
	return strings.ReplaceAll(relPath, "/", "_")
}

// isImageFile reports whether the extension maps to an image MIME type.
func isImageFile(path string) bool {
	ext := filepath.Ext(path)
	if ext == "" {
		return false
	}
	return strings.HasPrefix(mime.TypeByExtension(strings.ToLower(ext)), "image/")
}
