package http

// User-facing error messages. Clients match on some of these, so they are
// part of the API.
const (
	MsgNotConfigured       = "Media store not configured"
	MsgNotConfiguredAdvice = "Media store not configured. Please set up your environment variables."

	MsgLoadAlbumsFailed      = "Failed to load albums"
	MsgLoadAlbumImagesFailed = "Failed to load album images"
	MsgLoadGalleryFailed     = "Failed to load gallery images"

	MsgAlbumNameRequired  = "Album name is required"
	MsgCreateFolderFailed = "Failed to create album folder"
	MsgCreateAlbumFailed  = "Failed to create album"

	MsgInvalidAlbumID   = "Invalid album ID"
	MsgAlbumIDRequired  = "Album ID is required"
	MsgSignUploadFailed = "Failed to sign upload"
	MsgDebugAlbumFailed = "Failed to debug album"

	MsgImageIDRequired   = "Image ID is required"
	MsgImageNotFound     = "Image not found"
	MsgDeleteImageFailed = "Failed to delete image"

	MsgAuthRequired = "Authentication required"
)
