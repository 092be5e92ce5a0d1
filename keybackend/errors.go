package keybackend

import "errors"

// ErrKeyNotFound is returned when the API key does not exist in the store.
var ErrKeyNotFound = errors.New("api key not found")
