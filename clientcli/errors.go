package clientcli

import "errors"

// Errors for profile operations.
var (
	ErrProfileNotFound = errors.New("profile not found")
	ErrNoProfiles      = errors.New("no profiles configured")
	ErrProfileExists   = errors.New("profile already exists")
)

// Errors for configuration validation.
var (
	ErrCredentialsRequired = errors.New("admin username and password are required")
	ErrConfigRequired      = errors.New("config is required")
)

// Errors for input validation.
var (
	ErrNoPaths       = errors.New("no paths provided")
	ErrNoIDs         = errors.New("no image ids provided")
	ErrEmptyAlbum    = errors.New("album id is required")
	ErrNoUploadURL   = errors.New("upload grant has no upload url")
	ErrNotConfigured = errors.New("media store not configured on the server")
)
