package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/sagarc03/folio"
	"github.com/sagarc03/folio/cloudinary"
	"github.com/sagarc03/folio/config"
	"github.com/sagarc03/folio/database"
	"github.com/sagarc03/folio/filesystem"
	"github.com/sagarc03/folio/keybackend"
	"github.com/sagarc03/folio/local"
	"github.com/sagarc03/folio/s3storage"
)

// backend is a wired media store plus everything the gallery needs to sign
// grants for it.
type backend struct {
	name      string
	store     folio.MediaStore
	media     http.Handler
	cloudName string
	apiKey    string
	apiSecret string
	uploadURL string
	closers   []func()
}

func (b *backend) Close() {
	for i := len(b.closers) - 1; i >= 0; i-- {
		b.closers[i]()
	}
}

func (b *backend) serviceConfig(cfg *config.Config) folio.ServiceConfig {
	return folio.ServiceConfig{
		RootFolder:       cfg.Gallery.RootFolder,
		CloudName:        b.cloudName,
		APIKey:           b.apiKey,
		APISecret:        b.apiSecret,
		UploadURL:        b.uploadURL,
		AlbumConcurrency: cfg.Gallery.AlbumConcurrency,
	}
}

// newGalleryService opens the configured backend and wraps it in a
// GalleryService. The caller closes the backend.
func newGalleryService(ctx context.Context, cfg *config.Config) (*folio.GalleryService, *backend, error) {
	b, err := openBackend(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	service, err := folio.NewGalleryService(b.store, b.serviceConfig(cfg))
	if err != nil {
		b.Close()
		return nil, nil, fmt.Errorf("create gallery service: %w", err)
	}

	return service, b, nil
}

func openBackend(ctx context.Context, cfg *config.Config) (*backend, error) {
	switch cfg.Media.Backend {
	case "cloudinary":
		return openCloudinary(cfg)
	case "local":
		return openLocal(ctx, cfg)
	default:
		return nil, fmt.Errorf("unsupported media backend: %s", cfg.Media.Backend)
	}
}

// openCloudinary never fails on missing credentials: the gallery then runs
// unconfigured and its read endpoints degrade to empty lists.
func openCloudinary(cfg *config.Config) (*backend, error) {
	c := cfg.Cloudinary
	b := &backend{
		name:      "cloudinary",
		cloudName: c.CloudName,
		apiKey:    c.APIKey,
		apiSecret: c.APISecret,
	}

	var opts []cloudinary.Option
	if c.Timeout > 0 {
		opts = append(opts, cloudinary.WithTimeout(c.Timeout))
	}

	client, err := cloudinary.New(cloudinary.Config{
		CloudName: c.CloudName,
		APIKey:    c.APIKey,
		APISecret: c.APISecret,
		BaseURL:   c.BaseURL,
	}, opts...)
	if errors.Is(err, folio.ErrNotConfigured) {
		slog.Warn("cloudinary credentials missing, gallery will report itself unconfigured")
		return b, nil
	}
	if err != nil {
		return nil, err
	}

	b.store = client
	b.uploadURL = client.UploadURL()
	return b, nil
}

func openLocal(ctx context.Context, cfg *config.Config) (*backend, error) {
	b := &backend{
		name:      "local",
		cloudName: cfg.Local.CloudName,
		apiKey:    cfg.Local.APIKey,
		apiSecret: cfg.Local.APISecret,
	}

	repo, closeDB, err := database.Open(ctx, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	b.closers = append(b.closers, closeDB)
	slog.Info("connected to catalog", "type", cfg.Database.Type)

	files, closeFiles, err := openBlobStore(ctx, cfg.Storage)
	if err != nil {
		b.Close()
		return nil, err
	}
	b.closers = append(b.closers, closeFiles)

	secrets, err := keybackend.NewSecretStore(cfg.Local.PrimaryKey(), cfg.Local.Keys)
	if err != nil {
		b.Close()
		return nil, fmt.Errorf("load upload keys: %w", err)
	}
	if secrets.Len() == 0 {
		slog.Warn("no upload keys configured, direct uploads will be rejected")
	}

	store := local.New(repo, files, local.Config{
		CloudName:      cfg.Local.CloudName,
		PublicURL:      strings.TrimSuffix(cfg.Server.PublicURL, "/") + "/media",
		ThumbnailWidth: cfg.Local.ThumbnailWidth,
	})
	verifier := folio.NewSignatureVerifier(secrets, cfg.Local.SignatureTTL)

	b.store = store
	b.media = local.NewHandler(store, verifier, cfg.Server.MaxUploadSize).Router()
	b.uploadURL = store.UploadURL()
	return b, nil
}

func openBlobStore(ctx context.Context, cfg config.StorageConfig) (folio.FileStorage, func(), error) {
	switch cfg.Type {
	case "filesystem":
		store, closeRoot, err := openFilesystem(cfg.Path, true)
		if err != nil {
			return nil, nil, err
		}
		slog.Info("using filesystem storage", "path", cfg.Path)
		return store, closeRoot, nil
	case "s3":
		store, err := s3storage.New(ctx, cfg.S3)
		if err != nil {
			return nil, nil, err
		}
		slog.Info("using s3 storage", "bucket", cfg.S3.Bucket, "prefix", cfg.S3.Prefix)
		return store, func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unsupported storage type: %s", cfg.Type)
	}
}

func openFilesystem(path string, create bool) (*filesystem.Store, func(), error) {
	store, err := filesystem.Open(path, create)
	if err != nil {
		return nil, nil, err
	}
	return store, func() { _ = store.Close() }, nil
}
