package folio

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/alitto/pond/v2"
)

// Result caps used by the gallery queries.
const (
	AlbumImagesLimit = 100
	GalleryLimit     = 200
	AlbumCountLimit  = 500
)

// DefaultAlbumConcurrency bounds the per-album queries issued by ListAlbums.
const DefaultAlbumConcurrency = 4

// MediaStore defines the external asset store the gallery delegates to.
//
// All methods accept a context for cancellation and timeout control.
type MediaStore interface {
	// Search returns assets matching q, newest first.
	Search(ctx context.Context, q SearchQuery) (SearchResult, error)

	// SubFolders lists the immediate children of folder.
	SubFolders(ctx context.Context, folder string) ([]Folder, error)

	// Upload stores content in the store using the server-held credentials.
	Upload(ctx context.Context, req UploadRequest, content io.Reader) (Asset, error)

	// Destroy deletes an asset by its full public ID. A missing asset is
	// reported through DestroyNotFound rather than an error.
	Destroy(ctx context.Context, publicID string) (DestroyResult, error)
}

// Thumbnailer is implemented by stores that can serve resized renditions.
type Thumbnailer interface {
	ThumbnailURL(a Asset) string
}

// ServiceConfig holds configuration for GalleryService.
type ServiceConfig struct {
	RootFolder string
	CloudName  string
	APIKey     string
	APISecret  string
	// UploadURL is the direct-upload endpoint handed out with grants.
	UploadURL string
	// AlbumConcurrency bounds concurrent per-album queries (default: 4).
	AlbumConcurrency int
	// Now overrides the clock used for grant timestamps.
	Now func() time.Time
}

// Configured reports whether all three store credentials are present.
func (c ServiceConfig) Configured() bool {
	return c.CloudName != "" && c.APIKey != "" && c.APISecret != ""
}

// GalleryService implements the album directory, album content resolver,
// gallery aggregator, upload coordinator, album creation and image deletion
// on top of a MediaStore.
type GalleryService struct {
	store MediaStore
	cfg   ServiceConfig
	now   func() time.Time
}

// NewGalleryService creates a GalleryService. Missing credentials are not an
// error: reads then fail with ErrNotConfigured so callers can degrade.
func NewGalleryService(store MediaStore, cfg ServiceConfig) (*GalleryService, error) {
	if !IsValidPublicID(cfg.RootFolder) {
		return nil, fmt.Errorf("new gallery service: invalid root folder %q: %w", cfg.RootFolder, ErrInvalidInput)
	}

	if cfg.Configured() && store == nil {
		return nil, fmt.Errorf("new gallery service: credentials set but no media store")
	}

	if cfg.AlbumConcurrency <= 0 {
		cfg.AlbumConcurrency = DefaultAlbumConcurrency
	}

	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	return &GalleryService{store: store, cfg: cfg, now: now}, nil
}

// Status reports whether the service can reach a configured store.
func (s *GalleryService) Status() ServiceStatus {
	return ServiceStatus{
		Configured: s.cfg.Configured(),
		RootFolder: s.cfg.RootFolder,
		CloudName:  s.cfg.CloudName,
	}
}

// ListAlbums returns every folder under the root as an album, newest first.
//
// For each folder two queries are issued: the newest non-placeholder asset
// (cover image) and the count of non-placeholder assets. The per-folder work
// runs on a bounded worker pool.
//
// A store failure is logged and the listing degrades to empty. Returns
// ErrNotConfigured when store credentials are missing.
func (s *GalleryService) ListAlbums(ctx context.Context) ([]Album, error) {
	if !s.cfg.Configured() {
		return nil, ErrNotConfigured
	}

	folders, err := s.store.SubFolders(ctx, s.cfg.RootFolder)
	if err != nil {
		slog.Error("failed to list album folders", "root", s.cfg.RootFolder, "error", err)
		return []Album{}, nil
	}

	if len(folders) == 0 {
		return []Album{}, nil
	}

	pool := pond.NewResultPool[Album](s.cfg.AlbumConcurrency, pond.WithContext(ctx))
	defer pool.StopAndWait()

	group := pool.NewGroup()
	for _, f := range folders {
		group.SubmitErr(func() (Album, error) {
			return s.describeAlbum(ctx, f)
		})
	}

	albums, err := group.Wait()
	if err != nil {
		slog.Error("failed to describe albums", "root", s.cfg.RootFolder, "error", err)
		return []Album{}, nil
	}

	slices.SortStableFunc(albums, func(a, b Album) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})

	return albums, nil
}

func (s *GalleryService) describeAlbum(ctx context.Context, f Folder) (Album, error) {
	albumID := f.Name

	cover, err := s.store.Search(ctx, s.albumQuery(albumID, 1))
	if err != nil {
		return Album{}, fmt.Errorf("album %s: cover: %w", albumID, err)
	}

	count, err := s.store.Search(ctx, s.albumQuery(albumID, AlbumCountLimit))
	if err != nil {
		return Album{}, fmt.Errorf("album %s: count: %w", albumID, err)
	}

	covers, _ := FilterPlaceholders(cover.Assets, s.cfg.RootFolder, albumID)
	_, leaked := FilterPlaceholders(count.Assets, s.cfg.RootFolder, albumID)

	album := Album{
		ID:         albumID,
		Name:       DisplayName(albumID),
		ImageCount: max(count.TotalCount-leaked, 0),
		CreatedAt:  f.CreatedAt,
	}
	if len(covers) > 0 {
		album.CoverImage = covers[0].SecureURL
	}

	slog.Debug("described album", "album", albumID, "images", album.ImageCount)

	return album, nil
}

func (s *GalleryService) albumQuery(albumID string, limit int) SearchQuery {
	q := SearchQuery{
		Folder:     AlbumFolder(s.cfg.RootFolder, albumID),
		MaxResults: limit,
	}
	return ExcludePlaceholders(q, s.cfg.RootFolder, albumID)
}

// ListAlbumImages returns the real images of one album, newest first, capped
// at AlbumImagesLimit.
//
// A store failure is logged and the listing degrades to empty. Returns
// ErrInvalidInput for an empty or malformed album ID and ErrNotConfigured
// when store credentials are missing.
func (s *GalleryService) ListAlbumImages(ctx context.Context, albumID string) ([]Image, error) {
	if !IsValidAlbumID(albumID) {
		return nil, fmt.Errorf("list album images: album id %q: %w", albumID, ErrInvalidInput)
	}

	if !s.cfg.Configured() {
		return nil, ErrNotConfigured
	}

	res, err := s.store.Search(ctx, s.albumQuery(albumID, AlbumImagesLimit))
	if err != nil {
		slog.Error("failed to list album images", "album", albumID, "error", err)
		return []Image{}, nil
	}

	return s.toImages(res.Assets, albumID), nil
}

// ListAllImages returns images from the root folder and its immediate
// sub-folders as one feed, newest first, capped at GalleryLimit. Unlike the
// album reads, a store failure is returned.
func (s *GalleryService) ListAllImages(ctx context.Context) ([]Image, error) {
	if !s.cfg.Configured() {
		return nil, ErrNotConfigured
	}

	q := ExcludePlaceholders(SearchQuery{
		Folder:            s.cfg.RootFolder,
		IncludeSubFolders: true,
		MaxResults:        GalleryLimit,
	}, s.cfg.RootFolder, "")

	res, err := s.store.Search(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list all images: %w", err)
	}

	return s.toImages(res.Assets, ""), nil
}

// toImages converts assets, dropping placeholders. albumID scopes the
// placeholder match; empty means the whole gallery.
func (s *GalleryService) toImages(assets []Asset, albumID string) []Image {
	kept, _ := FilterPlaceholders(assets, s.cfg.RootFolder, albumID)

	thumbs, _ := s.store.(Thumbnailer)

	images := make([]Image, 0, len(kept))
	for _, a := range kept {
		img := Image{
			ID:        a.PublicID,
			URL:       a.SecureURL,
			Width:     a.Width,
			Height:    a.Height,
			Format:    a.Format,
			Album:     AlbumFromFolder(s.cfg.RootFolder, a.Folder),
			CreatedAt: a.CreatedAt,
		}
		if thumbs != nil {
			img.ThumbnailURL = thumbs.ThumbnailURL(a)
		}
		images = append(images, img)
	}
	return images
}

// CreateUploadGrant signs {folder, timestamp} for a direct upload into the
// album's folder, or into the root when albumID is empty. The API secret is
// used for signing only and never appears in the grant.
func (s *GalleryService) CreateUploadGrant(ctx context.Context, albumID string) (UploadGrant, error) {
	if err := ctx.Err(); err != nil {
		return UploadGrant{}, fmt.Errorf("create upload grant: %w", err)
	}

	if !s.cfg.Configured() {
		return UploadGrant{}, ErrNotConfigured
	}

	albumID = strings.TrimSpace(albumID)
	if albumID != "" && !IsValidAlbumID(albumID) {
		return UploadGrant{}, fmt.Errorf("create upload grant: album id %q: %w", albumID, ErrInvalidInput)
	}

	folder := AlbumFolder(s.cfg.RootFolder, albumID)
	timestamp := s.now().Unix()

	signature, err := SignParams(map[string]string{
		"folder":    folder,
		"timestamp": strconv.FormatInt(timestamp, 10),
	}, s.cfg.APISecret)
	if err != nil {
		return UploadGrant{}, fmt.Errorf("create upload grant: %w", err)
	}

	return UploadGrant{
		CloudName: s.cfg.CloudName,
		APIKey:    s.cfg.APIKey,
		Folder:    folder,
		Timestamp: timestamp,
		Signature: signature,
		UploadURL: s.cfg.UploadURL,
	}, nil
}

// CreateAlbum creates the album folder by uploading its placeholder asset.
// Recreating an existing album overwrites the placeholder and succeeds.
//
// Returns ErrNotConfigured when credentials are missing (checked first),
// ErrInvalidInput for a blank name and ErrUpstream when the upload fails.
func (s *GalleryService) CreateAlbum(ctx context.Context, name string) (CreateAlbumResult, error) {
	if !s.cfg.Configured() {
		return CreateAlbumResult{}, ErrNotConfigured
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return CreateAlbumResult{}, fmt.Errorf("create album: album name is required: %w", ErrInvalidInput)
	}

	albumID := DeriveAlbumID(name)
	folder := AlbumFolder(s.cfg.RootFolder, albumID)

	req := UploadRequest{
		Folder:    folder,
		PublicID:  PlaceholderID(albumID),
		Filename:  "placeholder.png",
		Tags:      PlaceholderTags(),
		Overwrite: true,
	}

	if _, err := s.store.Upload(ctx, req, bytes.NewReader(PlaceholderPNG())); err != nil {
		return CreateAlbumResult{}, fmt.Errorf("create album %s: %w: %w", albumID, ErrUpstream, err)
	}

	slog.Info("album created", "album", albumID, "folder", folder)

	return CreateAlbumResult{
		Success: true,
		AlbumID: albumID,
		Folder:  folder,
		Message: fmt.Sprintf(`Album "%s" created successfully`, name),
	}, nil
}

// DeleteImage destroys one asset.
//
// Returns ErrNotConfigured when credentials are missing (checked first),
// ErrInvalidInput for an empty ID, ErrNotFound when the store reports the
// asset missing and ErrUpstream for any other failure.
func (s *GalleryService) DeleteImage(ctx context.Context, publicID string) (DeleteResult, error) {
	if !s.cfg.Configured() {
		return DeleteResult{}, ErrNotConfigured
	}

	publicID = strings.TrimSpace(publicID)
	if publicID == "" {
		return DeleteResult{}, fmt.Errorf("delete image: image id is required: %w", ErrInvalidInput)
	}

	result, err := s.store.Destroy(ctx, publicID)
	if err != nil {
		return DeleteResult{}, fmt.Errorf("delete image %s: %w: %w", publicID, ErrUpstream, err)
	}

	switch result {
	case DestroyOK:
		slog.Info("image deleted", "public_id", publicID)
		return DeleteResult{Success: true, Message: "Image deleted successfully"}, nil
	case DestroyNotFound:
		return DeleteResult{}, fmt.Errorf("delete image %s: %w", publicID, ErrNotFound)
	default:
		return DeleteResult{}, fmt.Errorf("delete image %s: unexpected result %q: %w", publicID, result, ErrUpstream)
	}
}

// DebugAlbum lists everything stored in an album folder, placeholders
// included, for troubleshooting from the admin area.
func (s *GalleryService) DebugAlbum(ctx context.Context, albumID string) (AlbumDebug, error) {
	if !IsValidAlbumID(albumID) {
		return AlbumDebug{}, fmt.Errorf("debug album: album id %q: %w", albumID, ErrInvalidInput)
	}

	if !s.cfg.Configured() {
		return AlbumDebug{}, ErrNotConfigured
	}

	folder := AlbumFolder(s.cfg.RootFolder, albumID)

	res, err := s.store.Search(ctx, SearchQuery{Folder: folder, MaxResults: AlbumCountLimit})
	if err != nil {
		return AlbumDebug{}, fmt.Errorf("debug album %s: %w", albumID, err)
	}

	debug := AlbumDebug{
		AlbumID:    albumID,
		Folder:     folder,
		AllImages:  make([]DebugImage, 0, len(res.Assets)),
		RealImages: []DebugImage{},
		TotalCount: res.TotalCount,
	}

	for _, a := range res.Assets {
		img := DebugImage{
			ID:            a.PublicID,
			URL:           a.SecureURL,
			Tags:          a.Tags,
			IsPlaceholder: IsAlbumPlaceholder(a, s.cfg.RootFolder, albumID),
			CreatedAt:     a.CreatedAt,
		}
		debug.AllImages = append(debug.AllImages, img)
		if !img.IsPlaceholder {
			debug.RealImages = append(debug.RealImages, img)
		}
	}
	debug.RealCount = len(debug.RealImages)

	return debug, nil
}
