package folio

import "errors"

var (
	// ErrNotFound is returned when an asset or album does not exist
	ErrNotFound = errors.New("not found")
	// ErrInvalidInput is returned when input validation fails
	ErrInvalidInput = errors.New("invalid input")
	// ErrUnauthorized is returned when credentials or signatures are rejected
	ErrUnauthorized = errors.New("unauthorized")
	// ErrNotConfigured is returned when media store credentials are missing
	ErrNotConfigured = errors.New("media store not configured")
	// ErrUpstream is returned when the media store rejects a call or answers unexpectedly
	ErrUpstream = errors.New("upstream media store error")
)
