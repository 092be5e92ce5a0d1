package cloudinary

import (
	"context"
	"fmt"
	"io"

	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"

	"github.com/sagarc03/folio"
)

// Upload sends content through the signed Upload API. PublicID is relative
// to Folder, as with the hosted API.
func (c *Client) Upload(ctx context.Context, r folio.UploadRequest, content io.Reader) (folio.Asset, error) {
	ctx, cancel := c.bound(ctx)
	defer cancel()

	params := uploader.UploadParams{
		Folder:    r.Folder,
		PublicID:  r.PublicID,
		Overwrite: api.Bool(r.Overwrite),
		Tags:      r.Tags,
	}

	resp, err := c.cld.Upload.Upload(ctx, content, params)
	if err != nil {
		return folio.Asset{}, fmt.Errorf("upload %s/%s: %w", r.Folder, r.PublicID, callFailed(err))
	}
	if err := reported(resp.Error); err != nil {
		return folio.Asset{}, fmt.Errorf("upload %s/%s: %w", r.Folder, r.PublicID, err)
	}

	return folio.Asset{
		PublicID:  resp.PublicID,
		Folder:    folio.FolderOf(resp.PublicID),
		Format:    resp.Format,
		Width:     resp.Width,
		Height:    resp.Height,
		Bytes:     int64(resp.Bytes),
		Tags:      resp.Tags,
		SecureURL: resp.SecureURL,
		CreatedAt: resp.CreatedAt,
	}, nil
}

// Destroy deletes an image by its full public ID. The API reports a missing
// asset as a "not found" result, not as an error.
func (c *Client) Destroy(ctx context.Context, publicID string) (folio.DestroyResult, error) {
	ctx, cancel := c.bound(ctx)
	defer cancel()

	resp, err := c.cld.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: publicID})
	if err != nil {
		return "", fmt.Errorf("destroy %s: %w", publicID, callFailed(err))
	}
	if err := reported(resp.Error); err != nil {
		return "", fmt.Errorf("destroy %s: %w", publicID, err)
	}

	return folio.DestroyResult(resp.Result), nil
}
