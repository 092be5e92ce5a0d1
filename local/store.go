package local

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // GIF decoder
	_ "image/jpeg" // JPEG decoder
	_ "image/png"  // PNG decoder
	"io"
	"log/slog"
	"net/url"
	"path"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/sagarc03/folio"
)

// DefaultThumbnailWidth is the width of gallery thumbnails.
const DefaultThumbnailWidth = 800

// Config holds store settings.
type Config struct {
	// CloudName is the account name clients put in upload URLs.
	CloudName string
	// PublicURL is the absolute URL the Handler is mounted at, e.g.
	// "https://photos.example.com/media".
	PublicURL string
	// ThumbnailWidth is used by ThumbnailURL (default: 800).
	ThumbnailWidth int
}

// Store implements folio.MediaStore and folio.Thumbnailer.
type Store struct {
	repo  folio.AssetRepo
	files folio.FileStorage
	cfg   Config
}

// New creates a Store.
func New(repo folio.AssetRepo, files folio.FileStorage, cfg Config) *Store {
	if cfg.ThumbnailWidth <= 0 {
		cfg.ThumbnailWidth = DefaultThumbnailWidth
	}
	cfg.PublicURL = strings.TrimSuffix(cfg.PublicURL, "/")

	return &Store{repo: repo, files: files, cfg: cfg}
}

// CloudName returns the configured account name.
func (s *Store) CloudName() string {
	return s.cfg.CloudName
}

// UploadURL is the direct-upload endpoint handed out with grants.
func (s *Store) UploadURL() string {
	return s.cfg.PublicURL + "/v1_1/" + url.PathEscape(s.cfg.CloudName) + "/image/upload"
}

// blobPath is where an asset's bytes live in file storage.
func blobPath(a folio.Asset) string {
	return a.PublicID + "." + a.Format
}

// URL returns the delivery URL of an asset.
func (s *Store) URL(a folio.Asset) string {
	segments := strings.Split(blobPath(a), "/")
	for i, seg := range segments {
		segments[i] = url.PathEscape(seg)
	}
	return s.cfg.PublicURL + "/files/" + strings.Join(segments, "/")
}

// ThumbnailURL returns the delivery URL of a resized rendition.
func (s *Store) ThumbnailURL(a folio.Asset) string {
	return s.URL(a) + "?w=" + strconv.Itoa(s.cfg.ThumbnailWidth)
}

func (s *Store) withURL(a folio.Asset) folio.Asset {
	a.SecureURL = s.URL(a)
	return a
}

func (s *Store) Search(ctx context.Context, q folio.SearchQuery) (folio.SearchResult, error) {
	res, err := s.repo.Search(ctx, q)
	if err != nil {
		return folio.SearchResult{}, fmt.Errorf("search: %w", err)
	}

	for i := range res.Assets {
		res.Assets[i] = s.withURL(res.Assets[i])
	}

	return res, nil
}

func (s *Store) SubFolders(ctx context.Context, folder string) ([]folio.Folder, error) {
	folders, err := s.repo.SubFolders(ctx, folder)
	if err != nil {
		return nil, fmt.Errorf("sub folders: %w", err)
	}
	return folders, nil
}

// Get returns one asset by its full public ID.
func (s *Store) Get(ctx context.Context, publicID string) (folio.Asset, error) {
	a, err := s.repo.Get(ctx, publicID)
	if err != nil {
		return folio.Asset{}, err
	}
	return s.withURL(a), nil
}

var formatExtensions = map[string]string{
	"jpeg": "jpg",
}

// validPublicID rejects IDs that are unsafe as storage paths, including
// dot-prefixed segments which are reserved for caches.
func validPublicID(id string) bool {
	if !folio.IsValidPublicID(id) {
		return false
	}
	for seg := range strings.SplitSeq(id, "/") {
		if strings.HasPrefix(seg, ".") {
			return false
		}
	}
	return true
}

// Upload stores an image. PublicID is relative to Folder and defaults to a
// random ID. Without Overwrite an existing asset is returned unchanged.
func (s *Store) Upload(ctx context.Context, req folio.UploadRequest, content io.Reader) (folio.Asset, error) {
	if req.Folder != "" && !validPublicID(req.Folder) {
		return folio.Asset{}, fmt.Errorf("upload: folder %q: %w", req.Folder, folio.ErrInvalidInput)
	}

	id := req.PublicID
	if id == "" {
		id = uuid.New().String()
	}
	if req.Folder != "" {
		id = req.Folder + "/" + id
	}

	if !validPublicID(id) {
		return folio.Asset{}, fmt.Errorf("upload: public id %q: %w", id, folio.ErrInvalidInput)
	}

	existing, err := s.repo.Get(ctx, id)
	switch {
	case err == nil:
		if !req.Overwrite {
			return s.withURL(existing), nil
		}
	case errors.Is(err, folio.ErrNotFound):
	default:
		return folio.Asset{}, fmt.Errorf("upload: lookup %s: %w", id, err)
	}

	data, err := io.ReadAll(content)
	if err != nil {
		return folio.Asset{}, fmt.Errorf("upload: read content: %w", err)
	}

	imgCfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return folio.Asset{}, fmt.Errorf("upload: unsupported image: %w: %w", folio.ErrInvalidInput, err)
	}
	if ext, ok := formatExtensions[format]; ok {
		format = ext
	}

	asset := folio.Asset{PublicID: id, Format: format}

	saved, err := s.files.Write(ctx, blobPath(asset), bytes.NewReader(data))
	if err != nil {
		return folio.Asset{}, fmt.Errorf("upload: write %s: %w", id, err)
	}

	if existing.PublicID != "" && existing.Format != format {
		if err := s.files.Delete(ctx, blobPath(existing)); err != nil && !errors.Is(err, folio.ErrNotFound) {
			slog.Warn("failed to remove replaced blob", "public_id", id, "error", err)
		}
	}

	folder := folio.FolderOf(id)
	if folder != "" {
		if err := s.repo.EnsureFolder(ctx, folder); err != nil {
			return folio.Asset{}, fmt.Errorf("upload: %w", err)
		}
	}

	stored, _, err := s.repo.Upsert(ctx, folio.AssetEntry{
		PublicID: id,
		Folder:   folder,
		Format:   format,
		Width:    imgCfg.Width,
		Height:   imgCfg.Height,
		Bytes:    saved.BytesWritten,
		Tags:     req.Tags,
		ETag:     saved.Etag,
	})
	if err != nil {
		return folio.Asset{}, fmt.Errorf("upload: catalog %s: %w", id, err)
	}

	slog.Debug("asset stored", "public_id", id, "format", format, "bytes", saved.BytesWritten)

	return s.withURL(stored), nil
}

// Destroy removes an asset from the catalog and its blob from storage.
func (s *Store) Destroy(ctx context.Context, publicID string) (folio.DestroyResult, error) {
	a, err := s.repo.Get(ctx, publicID)
	if err != nil {
		if errors.Is(err, folio.ErrNotFound) {
			return folio.DestroyNotFound, nil
		}
		return "", fmt.Errorf("destroy %s: %w", publicID, err)
	}

	if err := s.repo.Delete(ctx, publicID); err != nil {
		if errors.Is(err, folio.ErrNotFound) {
			return folio.DestroyNotFound, nil
		}
		return "", fmt.Errorf("destroy %s: %w", publicID, err)
	}

	if err := s.files.Delete(ctx, blobPath(a)); err != nil && !errors.Is(err, folio.ErrNotFound) {
		slog.Warn("failed to remove blob", "public_id", publicID, "error", err)
	}

	return folio.DestroyOK, nil
}

// Register catalogs a blob that is already in file storage, such as files
// copied into the media directory by hand. The file extension must be the
// canonical one for its image format. Returns true when a new catalog entry
// was created.
func (s *Store) Register(ctx context.Context, blob string, size int64, etag string) (folio.Asset, bool, error) {
	ext := path.Ext(blob)
	id := strings.TrimSuffix(blob, ext)
	if ext == "" || !validPublicID(id) {
		return folio.Asset{}, false, fmt.Errorf("register %s: %w", blob, folio.ErrInvalidInput)
	}

	rc, err := s.files.Get(ctx, blob)
	if err != nil {
		return folio.Asset{}, false, fmt.Errorf("register %s: %w", blob, err)
	}
	defer func() { _ = rc.Close() }()

	imgCfg, format, err := image.DecodeConfig(rc)
	if err != nil {
		return folio.Asset{}, false, fmt.Errorf("register %s: not an image: %w", blob, folio.ErrInvalidInput)
	}
	if canonical, ok := formatExtensions[format]; ok {
		format = canonical
	}
	if "."+format != strings.ToLower(ext) || ext != strings.ToLower(ext) {
		return folio.Asset{}, false, fmt.Errorf("register %s: extension does not match %s: %w", blob, format, folio.ErrInvalidInput)
	}

	folder := folio.FolderOf(id)
	if folder != "" {
		if err := s.repo.EnsureFolder(ctx, folder); err != nil {
			return folio.Asset{}, false, fmt.Errorf("register %s: %w", blob, err)
		}
	}

	existing, err := s.repo.Get(ctx, id)
	if err == nil && existing.ETag == etag && existing.Format == format {
		return s.withURL(existing), false, nil
	}

	stored, created, err := s.repo.Upsert(ctx, folio.AssetEntry{
		PublicID: id,
		Folder:   folder,
		Format:   format,
		Width:    imgCfg.Width,
		Height:   imgCfg.Height,
		Bytes:    size,
		Tags:     []string{},
		ETag:     etag,
	})
	if err != nil {
		return folio.Asset{}, false, fmt.Errorf("register %s: %w", blob, err)
	}

	return s.withURL(stored), created, nil
}
