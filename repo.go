package folio

import (
	"context"
	"io"
)

// AssetRepo defines the catalog used by the self-hosted media store.
// Implementations must be safe for concurrent use.
//
// All methods accept a context for cancellation and timeout control.
type AssetRepo interface {
	// Get retrieves an asset by its full public ID.
	//
	// Returns ErrNotFound if the asset does not exist.
	Get(ctx context.Context, publicID string) (Asset, error)

	// Upsert creates or replaces the catalog entry for entry.PublicID.
	//
	// Returns:
	//   - Asset: the stored asset with its creation time
	//   - bool: true if a new entry was created, false if an existing one was replaced
	//   - error: any database error
	Upsert(ctx context.Context, entry AssetEntry) (Asset, bool, error)

	// Delete removes an asset by its full public ID.
	//
	// Returns ErrNotFound if the asset does not exist.
	Delete(ctx context.Context, publicID string) error

	// Search returns assets matching q, newest first, along with the
	// uncapped number of matches.
	Search(ctx context.Context, q SearchQuery) (SearchResult, error)

	// EnsureFolder records a folder and all of its ancestors. Existing
	// folders keep their original creation time.
	EnsureFolder(ctx context.Context, path string) error

	// SubFolders lists the immediate children of parent ordered by name.
	SubFolders(ctx context.Context, parent string) ([]Folder, error)
}

// FileStorage defines blob storage for the self-hosted media store.
// Implementations can use a local directory, S3, or any other backend.
//
// All methods accept a context for cancellation and timeout control.
type FileStorage interface {
	// Get opens a blob for reading. The caller closes the returned reader.
	//
	// Returns ErrNotFound if the blob does not exist.
	Get(ctx context.Context, path string) (io.ReadSeekCloser, error)

	// Write stores content at path, replacing any existing blob.
	//
	// Implementations should:
	//   - Write atomically when possible
	//   - Compute an ETag during the write
	//   - Clean up partial writes when ctx is cancelled
	Write(ctx context.Context, path string, content io.Reader) (SaveResult, error)

	// Delete removes a blob.
	//
	// Returns ErrNotFound if the blob does not exist.
	Delete(ctx context.Context, path string) error
}
