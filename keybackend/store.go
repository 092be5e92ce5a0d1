package keybackend

// KeysConfig holds configuration for loading API keys.
type KeysConfig struct {
	Inline []KeyPair `mapstructure:"inline"` // Inline key pairs from config
	File   string    `mapstructure:"file"`   // Path to a JSON or YAML file of key pairs
}

// NewSecretStore merges the primary pair, inline pairs and file pairs into
// one store. Later sources win on duplicate keys, so file keys override
// inline keys, which override the primary pair.
func NewSecretStore(primary KeyPair, cfg KeysConfig) (*MapSecretStore, error) {
	keys := make(map[string]string)

	add := func(p KeyPair) {
		if p.APIKey != "" && p.APISecret != "" {
			keys[p.APIKey] = p.APISecret
		}
	}

	add(primary)
	for _, p := range cfg.Inline {
		add(p)
	}

	if cfg.File != "" {
		fileKeys, err := LoadKeysFromFile(cfg.File)
		if err != nil {
			return nil, err
		}
		for k, v := range fileKeys {
			keys[k] = v
		}
	}

	return NewMapSecretStore(keys), nil
}
