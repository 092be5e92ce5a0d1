package local

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"

	"github.com/disintegration/imaging"

	"github.com/sagarc03/folio"
)

const (
	// MaxThumbnailWidth caps the ?w= parameter.
	MaxThumbnailWidth = 4096

	thumbnailJPEGQuality = 85

	// thumbsDir holds cached renditions. Dot-prefixed paths are never valid
	// public IDs, so the cache cannot collide with uploads.
	thumbsDir = ".thumbs"
)

// thumbnailPath keys a rendition by the original's etag so a replaced
// upload never serves a stale thumbnail.
func thumbnailPath(a folio.Asset, width int) string {
	return thumbsDir + "/" + strconv.Itoa(width) + "/" + a.ETag + "." + a.Format
}

// Thumbnail returns a rendition of a no wider than width, generating and
// caching it on first use. Images already narrower are re-encoded as is.
func (s *Store) Thumbnail(ctx context.Context, a folio.Asset, width int) (io.ReadSeekCloser, error) {
	if width <= 0 || width > MaxThumbnailWidth {
		return nil, fmt.Errorf("thumbnail: width %d: %w", width, folio.ErrInvalidInput)
	}

	cached := thumbnailPath(a, width)

	rc, err := s.files.Get(ctx, cached)
	if err == nil {
		return rc, nil
	}
	if !errors.Is(err, folio.ErrNotFound) {
		return nil, fmt.Errorf("thumbnail: open cache: %w", err)
	}

	data, err := s.renderThumbnail(ctx, a, width)
	if err != nil {
		return nil, err
	}

	if _, err := s.files.Write(ctx, cached, bytes.NewReader(data)); err != nil {
		slog.Warn("failed to cache thumbnail", "public_id", a.PublicID, "width", width, "error", err)
	}

	return readSeekNopCloser{bytes.NewReader(data)}, nil
}

func (s *Store) renderThumbnail(ctx context.Context, a folio.Asset, width int) ([]byte, error) {
	format, err := imaging.FormatFromExtension(a.Format)
	if err != nil {
		return nil, fmt.Errorf("thumbnail %s: %w: %w", a.PublicID, folio.ErrInvalidInput, err)
	}

	src, err := s.files.Get(ctx, blobPath(a))
	if err != nil {
		return nil, fmt.Errorf("thumbnail %s: open original: %w", a.PublicID, err)
	}
	defer func() { _ = src.Close() }()

	img, err := imaging.Decode(src, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("thumbnail %s: decode: %w", a.PublicID, err)
	}

	if img.Bounds().Dx() > width {
		img = imaging.Resize(img, width, 0, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, format, imaging.JPEGQuality(thumbnailJPEGQuality)); err != nil {
		return nil, fmt.Errorf("thumbnail %s: encode: %w", a.PublicID, err)
	}

	slog.Debug("thumbnail rendered", "public_id", a.PublicID, "width", width, "bytes", buf.Len())

	return buf.Bytes(), nil
}

type readSeekNopCloser struct {
	io.ReadSeeker
}

func (readSeekNopCloser) Close() error { return nil }
