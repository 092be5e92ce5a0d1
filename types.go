package folio

import (
	"errors"
	"fmt"
	"regexp"
	"time"
)

// Album is one folder directly under the gallery root.
type Album struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	CoverImage string    `json:"coverImage,omitempty"`
	ImageCount int       `json:"imageCount"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Image is a real (non-placeholder) asset as presented to API clients.
type Image struct {
	ID           string    `json:"id"`
	URL          string    `json:"url"`
	ThumbnailURL string    `json:"thumbnailUrl,omitempty"`
	Width        int       `json:"width"`
	Height       int       `json:"height"`
	Format       string    `json:"format"`
	Album        string    `json:"album,omitempty"`
	CreatedAt    time.Time `json:"createdAt,omitzero"`
}

// Asset is a stored file as reported by a MediaStore. The JSON shape follows
// the hosted store's resource representation.
type Asset struct {
	PublicID  string    `json:"public_id"`
	Folder    string    `json:"folder"`
	Format    string    `json:"format"`
	Width     int       `json:"width"`
	Height    int       `json:"height"`
	Bytes     int64     `json:"bytes"`
	Tags      []string  `json:"tags"`
	SecureURL string    `json:"secure_url"`
	ETag      string    `json:"etag,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Folder is a media store folder.
type Folder struct {
	Name      string    `json:"name"`
	Path      string    `json:"path"`
	CreatedAt time.Time `json:"created_at,omitzero"`
}

// SearchQuery selects assets by folder. Results are always ordered by
// creation time, newest first.
type SearchQuery struct {
	// Folder is matched exactly.
	Folder string
	// IncludeSubFolders also matches assets in the immediate children of Folder.
	IncludeSubFolders bool
	// ExcludePublicIDs drops assets with these full public IDs.
	ExcludePublicIDs []string
	// ExcludeTags drops assets carrying any of these tags.
	ExcludeTags []string
	// MaxResults caps the number of returned assets. TotalCount is not capped.
	MaxResults int
}

type SearchResult struct {
	Assets     []Asset
	TotalCount int
}

// UploadRequest describes a server-side upload into the media store.
type UploadRequest struct {
	Folder    string
	PublicID  string
	Filename  string
	Tags      []string
	Overwrite bool
}

// DestroyResult is the store's verdict on a delete request.
type DestroyResult string

const (
	DestroyOK       DestroyResult = "ok"
	DestroyNotFound DestroyResult = "not found"
)

// UploadGrant is a short-lived set of signed parameters that lets a client
// upload straight into one folder of the media store.
type UploadGrant struct {
	CloudName string `json:"cloudName"`
	APIKey    string `json:"apiKey"`
	Folder    string `json:"folder"`
	Timestamp int64  `json:"timestamp"`
	Signature string `json:"signature"`
	UploadURL string `json:"uploadUrl,omitempty"`
}

type CreateAlbumResult struct {
	Success bool   `json:"success"`
	AlbumID string `json:"albumId"`
	Folder  string `json:"folder"`
	Message string `json:"message"`
}

type DeleteResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// DebugImage is an album entry as seen by the album inspector, placeholders included.
type DebugImage struct {
	ID            string    `json:"id"`
	URL           string    `json:"url"`
	Tags          []string  `json:"tags"`
	IsPlaceholder bool      `json:"isPlaceholder"`
	CreatedAt     time.Time `json:"createdAt,omitzero"`
}

type AlbumDebug struct {
	AlbumID    string       `json:"albumId"`
	Folder     string       `json:"folder"`
	AllImages  []DebugImage `json:"allImages"`
	RealImages []DebugImage `json:"realImages"`
	TotalCount int          `json:"totalCount"`
	RealCount  int          `json:"realCount"`
}

// ServiceStatus summarizes how the gallery is wired.
type ServiceStatus struct {
	Configured bool   `json:"configured"`
	RootFolder string `json:"rootFolder"`
	CloudName  string `json:"cloudName,omitempty"`
}

// AssetEntry is what the local store records in its catalog for one upload.
type AssetEntry struct {
	PublicID string
	Folder   string
	Format   string
	Width    int
	Height   int
	Bytes    int64
	Tags     []string
	ETag     string
}

type SaveResult struct {
	BytesWritten int64
	Etag         string
}

// Tables holds configurable table names for the local store catalog.
type Tables struct {
	Assets  string `mapstructure:"assets"`
	Folders string `mapstructure:"folders"`
}

var validTableNameRegex = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// IsValidTableName checks if a table name is valid (lowercase, alphanumeric with underscores, max 63 chars).
func IsValidTableName(name string) bool {
	return validTableNameRegex.MatchString(name) && len(name) <= 63
}

// Validate checks that all required table names are set, valid and distinct.
func (t Tables) Validate() error {
	if t.Assets == "" {
		return errors.New("validate tables: assets table name cannot be empty")
	}
	if t.Folders == "" {
		return errors.New("validate tables: folders table name cannot be empty")
	}

	for _, name := range []string{t.Assets, t.Folders} {
		if !IsValidTableName(name) {
			return fmt.Errorf("validate tables: invalid table name: %s (must match ^[a-z_][a-z0-9_]*$ and be <= 63 chars)", name)
		}
	}

	if t.Assets == t.Folders {
		return fmt.Errorf("validate tables: assets and folders must use different tables, both are %s", t.Assets)
	}

	return nil
}
