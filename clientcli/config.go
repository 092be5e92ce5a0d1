package clientcli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultEndpoint is the default server endpoint URL.
	DefaultEndpoint = "http://localhost:3000"

	// DefaultAdminPrefix is where the server mounts its admin routes.
	DefaultAdminPrefix = "/admin"
)

// Profile holds configuration for a single server profile.
type Profile struct {
	Name        string `yaml:"name"`
	Endpoint    string `yaml:"endpoint"`
	Username    string `yaml:"username,omitempty"`
	Password    string `yaml:"password,omitempty"`
	AdminPrefix string `yaml:"admin_prefix,omitempty"`
	Default     bool   `yaml:"default,omitempty"`
}

// ConfigFile holds the full config file structure with multiple profiles.
type ConfigFile struct {
	Profiles []Profile `yaml:"profiles"`
}

// GetProfile returns the profile by name.
// If name is empty, returns the default profile.
func (c *ConfigFile) GetProfile(name string) (*Profile, error) {
	if len(c.Profiles) == 0 {
		return nil, ErrNoProfiles
	}

	if name == "" {
		return c.GetDefaultProfile()
	}

	for i := range c.Profiles {
		if c.Profiles[i].Name == name {
			return &c.Profiles[i], nil
		}
	}

	return nil, fmt.Errorf("%w: %s", ErrProfileNotFound, name)
}

// GetDefaultProfile returns the default profile.
// If no profile is marked as default, returns the first profile.
func (c *ConfigFile) GetDefaultProfile() (*Profile, error) {
	if len(c.Profiles) == 0 {
		return nil, ErrNoProfiles
	}

	for i := range c.Profiles {
		if c.Profiles[i].Default {
			return &c.Profiles[i], nil
		}
	}

	return &c.Profiles[0], nil
}

// AddProfile adds a new profile. Returns ErrProfileExists if a profile
// with the same name already exists.
func (c *ConfigFile) AddProfile(p Profile) error {
	for i := range c.Profiles {
		if c.Profiles[i].Name == p.Name {
			return fmt.Errorf("%w: %s", ErrProfileExists, p.Name)
		}
	}
	c.Profiles = append(c.Profiles, p)
	return nil
}

// UpdateProfile replaces an existing profile. Returns ErrProfileNotFound
// if the profile doesn't exist.
func (c *ConfigFile) UpdateProfile(p Profile) error {
	for i := range c.Profiles {
		if c.Profiles[i].Name == p.Name {
			c.Profiles[i] = p
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrProfileNotFound, p.Name)
}

// RemoveProfile removes a profile by name.
func (c *ConfigFile) RemoveProfile(name string) error {
	for i := range c.Profiles {
		if c.Profiles[i].Name == name {
			c.Profiles = append(c.Profiles[:i], c.Profiles[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrProfileNotFound, name)
}

// SetDefault marks name as the default profile and clears the flag from
// every other profile.
func (c *ConfigFile) SetDefault(name string) error {
	found := false
	for i := range c.Profiles {
		if c.Profiles[i].Name == name {
			c.Profiles[i].Default = true
			found = true
		} else {
			c.Profiles[i].Default = false
		}
	}

	if !found {
		return fmt.Errorf("%w: %s", ErrProfileNotFound, name)
	}
	return nil
}

// Save writes the config to path, creating the parent directory if needed.
func (c *ConfigFile) Save(path string) error {
	cleanPath := filepath.Clean(path)

	if err := os.MkdirAll(filepath.Dir(cleanPath), 0o700); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(cleanPath, data, 0o600); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}

	return nil
}

// LoadConfigFile loads the config file from the specified path.
func LoadConfigFile(path string) (*ConfigFile, error) {
	data, err := os.ReadFile(filepath.Clean(path)) //#nosec G304 -- path is user-provided config file
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var cfg ConfigFile
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}

	return &cfg, nil
}

// DefaultConfigPath returns ~/.folio/config.yaml.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".folio", "config.yaml")
}

// Config holds resolved client configuration for a single server.
type Config struct {
	Endpoint    string
	Username    string
	Password    string
	AdminPrefix string
}

// WithDefaults returns a copy of the config with default values applied.
func (c *Config) WithDefaults() *Config {
	cfg := *c
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEndpoint
	}
	if cfg.AdminPrefix == "" {
		cfg.AdminPrefix = DefaultAdminPrefix
	}
	cfg.Endpoint = strings.TrimSuffix(cfg.Endpoint, "/")
	cfg.AdminPrefix = "/" + strings.Trim(cfg.AdminPrefix, "/")
	return &cfg
}

// HasCredentials reports whether admin credentials are set.
func (c *Config) HasCredentials() bool {
	return c.Username != "" && c.Password != ""
}

// ConfigFromProfile creates a Config from a Profile.
func ConfigFromProfile(p *Profile) *Config {
	if p == nil {
		return &Config{}
	}
	return &Config{
		Endpoint:    p.Endpoint,
		Username:    p.Username,
		Password:    p.Password,
		AdminPrefix: p.AdminPrefix,
	}
}

// ConfigFromEnv loads config from FOLIO_ENDPOINT, FOLIO_ADMIN_USERNAME,
// FOLIO_ADMIN_PASSWORD and FOLIO_ADMIN_PREFIX.
func ConfigFromEnv() *Config {
	return &Config{
		Endpoint:    os.Getenv("FOLIO_ENDPOINT"),
		Username:    os.Getenv("FOLIO_ADMIN_USERNAME"),
		Password:    os.Getenv("FOLIO_ADMIN_PASSWORD"),
		AdminPrefix: os.Getenv("FOLIO_ADMIN_PREFIX"),
	}
}

// ProfileFromEnv returns the profile name from FOLIO_PROFILE.
func ProfileFromEnv() string {
	return os.Getenv("FOLIO_PROFILE")
}

// ConfigPathFromEnv returns the config file path from FOLIO_CONFIG.
func ConfigPathFromEnv() string {
	return os.Getenv("FOLIO_CONFIG")
}

// MergeConfig merges configs, later ones taking precedence. Empty strings
// never override values set earlier.
func MergeConfig(configs ...*Config) *Config {
	result := &Config{}
	for _, cfg := range configs {
		if cfg == nil {
			continue
		}
		if cfg.Endpoint != "" {
			result.Endpoint = cfg.Endpoint
		}
		if cfg.Username != "" {
			result.Username = cfg.Username
		}
		if cfg.Password != "" {
			result.Password = cfg.Password
		}
		if cfg.AdminPrefix != "" {
			result.AdminPrefix = cfg.AdminPrefix
		}
	}
	return result
}
