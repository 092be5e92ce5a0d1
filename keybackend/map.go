// Package keybackend provides folio.SecretStore implementations used to
// verify signed uploads against the self-hosted media store.
package keybackend

import (
	"fmt"

	"github.com/sagarc03/folio"
)

// MapSecretStore retrieves secrets from an in-memory map.
type MapSecretStore struct {
	keys map[string]string
}

// NewMapSecretStore creates a map-based secret store keyed by API key.
func NewMapSecretStore(keys map[string]string) *MapSecretStore {
	return &MapSecretStore{keys: keys}
}

// Lookup returns the secret for apiKey.
func (s *MapSecretStore) Lookup(apiKey string) (string, error) {
	secret, found := s.keys[apiKey]
	if !found {
		return "", fmt.Errorf("%w: %w", ErrKeyNotFound, folio.ErrUnauthorized)
	}
	return secret, nil
}

// Len reports how many keys are loaded.
func (s *MapSecretStore) Len() int {
	return len(s.keys)
}
