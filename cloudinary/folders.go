package cloudinary

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/cloudinary/cloudinary-go/v2/api/admin"

	"github.com/sagarc03/folio"
)

// missingFolder prefixes the API message for a folder that does not exist.
const missingFolder = "Can't find folder"

// SubFolders lists the immediate children of folder, following pagination.
// A folder that does not exist yet has no children.
//
// The folders API reports no creation time, so each child's CreatedAt is
// taken from the album placeholder uploaded when the folder was created.
// Folders without one keep a zero time.
func (c *Client) SubFolders(ctx context.Context, folder string) ([]folio.Folder, error) {
	folders := []folio.Folder{}
	cursor := ""

	for {
		resp, err := c.subFolderPage(ctx, folder, cursor)
		if err != nil {
			var apiErr *APIError
			if errors.As(err, &apiErr) && strings.HasPrefix(apiErr.Message, missingFolder) {
				return folders, nil
			}
			return nil, fmt.Errorf("sub folders %s: %w", folder, err)
		}

		for _, f := range resp.Folders {
			folders = append(folders, folio.Folder{Name: f.Name, Path: f.Path})
		}

		if resp.NextCursor == "" {
			break
		}
		cursor = resp.NextCursor
	}

	if len(folders) == 0 {
		return folders, nil
	}

	created, err := c.placeholderTimes(ctx, folder)
	if err != nil {
		slog.Warn("failed to look up album creation times", "folder", folder, "error", err)
		return folders, nil
	}
	for i := range folders {
		folders[i].CreatedAt = created[folders[i].Path]
	}

	return folders, nil
}

func (c *Client) subFolderPage(ctx context.Context, folder, cursor string) (*admin.FoldersResult, error) {
	ctx, cancel := c.bound(ctx)
	defer cancel()

	resp, err := c.cld.Admin.SubFolders(ctx, admin.SubFoldersParams{
		Folder:     folder,
		MaxResults: maxSearchResults,
		NextCursor: cursor,
	})
	if err != nil {
		return nil, callFailed(err)
	}
	if err := reported(resp.Error); err != nil {
		return nil, err
	}
	return resp, nil
}

// placeholderTimes maps each child folder of root to the upload time of its
// placeholder, the earliest one when several exist.
func (c *Client) placeholderTimes(ctx context.Context, root string) (map[string]time.Time, error) {
	expression := fmt.Sprintf("folder:%s/* AND tags=%s", escape(root), quote(folio.PlaceholderTag))

	resp, err := c.search(ctx, newestFirst(expression, maxSearchResults))
	if err != nil {
		return nil, err
	}

	created := make(map[string]time.Time, len(resp.Assets))
	for _, r := range resp.Assets {
		a := toAsset(r)
		if t, ok := created[a.Folder]; ok && t.Before(a.CreatedAt) {
			continue
		}
		created[a.Folder] = a.CreatedAt
	}
	return created, nil
}
