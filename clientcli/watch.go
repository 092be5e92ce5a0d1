package clientcli

import (
	"context"
	"errors"
	"time"

	"github.com/sagarc03/folio"
)

// DefaultWatchInterval is the polling period used by WatchGallery when
// none is given.
const DefaultWatchInterval = 5 * time.Second

// WatchGallery polls the gallery feed every interval and calls fn with each
// result until ctx is done or fn returns an error. A failed poll is passed
// to onError and polling continues; a nil onError stops on the first failure.
func (c *Client) WatchGallery(ctx context.Context, interval time.Duration, fn func(GalleryUpdate) error, onError func(error)) error {
	if interval <= 0 {
		interval = DefaultWatchInterval
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var previous []folio.Image
	first := true

	for {
		images, err := c.Gallery(ctx)
		switch {
		case err != nil && ctx.Err() != nil:
			// cancelled mid-poll; the select below returns
		case err != nil:
			if onError == nil {
				return err
			}
			onError(err)
		default:
			update := GalleryUpdate{Initial: first, Images: images}
			if !first {
				update.Added, update.Removed = diffImages(previous, images)
			}
			if fnErr := fn(update); fnErr != nil {
				return fnErr
			}
			previous = images
			first = false
		}

		select {
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.Canceled) {
				return nil
			}
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// diffImages compares two polls by image ID.
func diffImages(before, after []folio.Image) (added []folio.Image, removed []string) {
	seen := make(map[string]struct{}, len(before))
	for _, img := range before {
		seen[img.ID] = struct{}{}
	}

	current := make(map[string]struct{}, len(after))
	for _, img := range after {
		current[img.ID] = struct{}{}
		if _, ok := seen[img.ID]; !ok {
			added = append(added, img)
		}
	}

	for _, img := range before {
		if _, ok := current[img.ID]; !ok {
			removed = append(removed, img.ID)
		}
	}

	return added, removed
}
