package clientcli

import "github.com/sagarc03/folio"

// UploadOptions configures an upload operation.
type UploadOptions struct {
	// AlbumID is the target album; empty uploads into the root folder.
	AlbumID   string
	Paths     []string
	Recursive bool
}

// UploadResult represents the result of uploading a single file.
type UploadResult struct {
	LocalPath string `json:"local_path"`
	PublicID  string `json:"public_id,omitempty"`
	URL       string `json:"url,omitempty"`
	Format    string `json:"format,omitempty"`
	Width     int    `json:"width,omitempty"`
	Height    int    `json:"height,omitempty"`
	Size      int64  `json:"size_bytes,omitempty"`
	Err       error  `json:"-"` // nil on success
}

// DeleteResult represents the result of deleting a single image.
type DeleteResult struct {
	PublicID string `json:"public_id"`
	Deleted  bool   `json:"deleted"`
	Err      error  `json:"-"` // nil on success
}

// Status is the admin status report.
type Status struct {
	folio.ServiceStatus
	Backend string `json:"backend"`
}

// GalleryUpdate is one poll of the gallery feed while watching.
type GalleryUpdate struct {
	// Initial is set on the first successful poll.
	Initial bool
	Images  []folio.Image
	// Added holds images not present in the previous poll.
	Added   []folio.Image
	// Removed holds the IDs of images that disappeared since the previous poll.
	Removed []string
}

// errorBody covers both error shapes the client can see: the gallery API's
// {"error": "...", "details": "..."} and the media store's
// {"error": {"message": "..."}}.
type errorBody struct {
	Error   any    `json:"error"`
	Details string `json:"details"`
	Message string `json:"message"`
}

// albumsResponse mirrors GET /api/albums.
type albumsResponse struct {
	Albums  []folio.Album `json:"albums"`
	Message string        `json:"message"`
	Error   string        `json:"error"`
}

// imagesResponse mirrors GET /api/albums/{id} and GET /api/gallery.
type imagesResponse struct {
	Images  []folio.Image `json:"images"`
	Message string        `json:"message"`
	Error   string        `json:"error"`
}
