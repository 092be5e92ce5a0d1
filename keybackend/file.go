package keybackend

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// KeyPair represents an API key and secret pair.
type KeyPair struct {
	APIKey    string `json:"api_key" yaml:"api_key" mapstructure:"api_key"`
	APISecret string `json:"api_secret" yaml:"api_secret" mapstructure:"api_secret"`
}

// LoadKeysFromFile loads API keys from a JSON or YAML file (by extension).
// The file should contain a list of key pairs:
//
//	[
//	  {"api_key": "uploader", "api_secret": "s3cr3t"},
//	  {"api_key": "importer", "api_secret": "another"}
//	]
//
// Pairs with an empty key or secret are skipped. Returns a map of API key to secret.
func LoadKeysFromFile(path string) (map[string]string, error) {
	data, err := os.ReadFile(path) //nolint:gosec // Path is from trusted config file
	if err != nil {
		return nil, fmt.Errorf("read keys file: %w", err)
	}

	var pairs []KeyPair

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &pairs)
	default:
		err = json.Unmarshal(data, &pairs)
	}
	if err != nil {
		return nil, fmt.Errorf("parse keys file: %w", err)
	}

	keys := make(map[string]string, len(pairs))
	for _, p := range pairs {
		if p.APIKey != "" && p.APISecret != "" {
			keys[p.APIKey] = p.APISecret
		}
	}

	return keys, nil
}
