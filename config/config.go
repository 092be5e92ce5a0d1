package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/sagarc03/folio/database"
	foliohttp "github.com/sagarc03/folio/http"
	"github.com/sagarc03/folio/keybackend"
	"github.com/sagarc03/folio/s3storage"
)

// configKey is the context key for storing the loaded configuration.
type configKey struct{}

// WithContext returns a new context with the config stored.
func WithContext(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, configKey{}, cfg)
}

// FromContext retrieves the config from context.
// Returns an error if config is not found.
func FromContext(ctx context.Context) (*Config, error) {
	cfg, ok := ctx.Value(configKey{}).(*Config)
	if !ok || cfg == nil {
		return nil, errors.New("config not found in context")
	}
	return cfg, nil
}

// Config is the root configuration struct for folio.
type Config struct {
	Env        string               `mapstructure:"env" validate:"required,oneof=development production"`
	Server     ServerConfig         `mapstructure:"server"`
	Gallery    GalleryConfig        `mapstructure:"gallery"`
	Media      MediaConfig          `mapstructure:"media"`
	Cloudinary CloudinaryConfig     `mapstructure:"cloudinary"`
	Local      LocalConfig          `mapstructure:"local"`
	Database   database.Config      `mapstructure:"database"`
	Storage    StorageConfig        `mapstructure:"storage"`
	Admin      AdminConfig          `mapstructure:"admin"`
	CORS       foliohttp.CORSConfig `mapstructure:"cors"`
	Log        LogConfig            `mapstructure:"log"`
}

// IsProduction reports whether env is production.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port          int    `mapstructure:"port" validate:"required,min=1,max=65535"`
	MaxUploadSize int64  `mapstructure:"max_upload_size" validate:"min=0"`
	PublicURL     string `mapstructure:"public_url" validate:"required,url"`
	SiteDir       string `mapstructure:"site_dir"`
}

// GalleryConfig holds gallery-level configuration.
type GalleryConfig struct {
	RootFolder       string `mapstructure:"root_folder" validate:"required"`
	AlbumConcurrency int    `mapstructure:"album_concurrency" validate:"min=1,max=64"`
}

// MediaConfig selects the media store implementation.
type MediaConfig struct {
	Backend string `mapstructure:"backend" validate:"required,oneof=cloudinary local"`
}

// CloudinaryConfig holds hosted store credentials. Missing credentials are
// not an error: the gallery then runs in its unconfigured mode.
type CloudinaryConfig struct {
	CloudName string        `mapstructure:"cloud_name"`
	APIKey    string        `mapstructure:"api_key"`
	APISecret string        `mapstructure:"api_secret"`
	BaseURL   string        `mapstructure:"base_url" validate:"required,url"`
	Timeout   time.Duration `mapstructure:"timeout" validate:"min=0"`
}

// LocalConfig holds the self-hosted store configuration.
type LocalConfig struct {
	CloudName      string                `mapstructure:"cloud_name" validate:"required"`
	APIKey         string                `mapstructure:"api_key"`
	APISecret      string                `mapstructure:"api_secret"`
	SignatureTTL   time.Duration         `mapstructure:"signature_ttl" validate:"min=0"`
	ThumbnailWidth int                   `mapstructure:"thumbnail_width" validate:"min=1,max=4096"`
	Keys           keybackend.KeysConfig `mapstructure:"keys"`
}

// PrimaryKey is the key pair the gallery signs grants with.
func (c LocalConfig) PrimaryKey() keybackend.KeyPair {
	return keybackend.KeyPair{APIKey: c.APIKey, APISecret: c.APISecret}
}

// StorageConfig holds blob storage configuration for the local store.
type StorageConfig struct {
	Type string           `mapstructure:"type" validate:"required,oneof=filesystem s3"`
	Path string           `mapstructure:"path" validate:"required_if=Type filesystem"`
	S3   s3storage.Config `mapstructure:"s3"`
}

// AdminConfig holds the admin gate configuration.
type AdminConfig struct {
	Username      string `mapstructure:"username" validate:"required"`
	Password      string `mapstructure:"password" validate:"required"`
	Realm         string `mapstructure:"realm" validate:"required"`
	Prefix        string `mapstructure:"prefix" validate:"required,startswith=/"`
	ProtectWrites bool   `mapstructure:"protect_writes"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level string `mapstructure:"level" validate:"required,oneof=debug info warn error"`
}

// flagToViperKey maps CLI flag names to viper configuration keys.
var flagToViperKey = map[string]string{
	"db-type":      "database.type",
	"db-dsn":       "database.dsn",
	"storage-path": "storage.path",
	"port":         "server.port",
	"backend":      "media.backend",
	"site-dir":     "server.site_dir",
	"root-folder":  "gallery.root_folder",
	"public-url":   "server.public_url",
}

// envAliases are the conventional variable names accepted next to the
// FOLIO_ prefixed ones. Earlier names win.
var envAliases = map[string][]string{
	"cloudinary.cloud_name": {"FOLIO_CLOUDINARY_CLOUD_NAME", "CLOUDINARY_CLOUD_NAME", "NEXT_PUBLIC_CLOUDINARY_CLOUD_NAME"},
	"cloudinary.api_key":    {"FOLIO_CLOUDINARY_API_KEY", "CLOUDINARY_API_KEY"},
	"cloudinary.api_secret": {"FOLIO_CLOUDINARY_API_SECRET", "CLOUDINARY_API_SECRET"},
	"admin.username":        {"FOLIO_ADMIN_USERNAME", "ADMIN_USERNAME"},
	"admin.password":        {"FOLIO_ADMIN_PASSWORD", "ADMIN_PASSWORD"},
}

// bindFlags binds CLI flags to viper keys with custom name mapping.
func bindFlags(v *viper.Viper, flags *pflag.FlagSet) {
	flags.VisitAll(func(f *pflag.Flag) {
		// Use custom mapping if it exists, otherwise use flag name as-is
		viperKey := f.Name
		if mapped, ok := flagToViperKey[viperKey]; ok {
			viperKey = mapped
		}

		// Only bind if the flag was explicitly set
		if f.Changed {
			_ = v.BindPFlag(viperKey, f)
		}
	})
}

// setDefaults configures default values on the viper instance.
func setDefaults(v *viper.Viper) {
	v.SetDefault("env", "development")

	v.SetDefault("server.port", 3000)
	v.SetDefault("server.max_upload_size", 20<<20)
	v.SetDefault("server.public_url", "http://localhost:3000")
	v.SetDefault("server.site_dir", "")

	v.SetDefault("gallery.root_folder", "elijah-gallery")
	v.SetDefault("gallery.album_concurrency", 4)

	v.SetDefault("media.backend", "cloudinary")

	v.SetDefault("cloudinary.cloud_name", "")
	v.SetDefault("cloudinary.api_key", "")
	v.SetDefault("cloudinary.api_secret", "")
	v.SetDefault("cloudinary.base_url", "https://api.cloudinary.com")
	v.SetDefault("cloudinary.timeout", "30s")

	v.SetDefault("local.cloud_name", "local")
	v.SetDefault("local.api_key", "")
	v.SetDefault("local.api_secret", "")
	v.SetDefault("local.signature_ttl", "1h")
	v.SetDefault("local.thumbnail_width", 800)
	v.SetDefault("local.keys.file", "")

	v.SetDefault("database.type", "sqlite")
	v.SetDefault("database.dsn", "folio.db")
	v.SetDefault("database.tables.assets", "folio_assets")
	v.SetDefault("database.tables.folders", "folio_folders")

	v.SetDefault("storage.type", "filesystem")
	v.SetDefault("storage.path", "./media")
	v.SetDefault("storage.s3.bucket", "")
	v.SetDefault("storage.s3.region", "")
	v.SetDefault("storage.s3.endpoint", "")
	v.SetDefault("storage.s3.prefix", "")
	v.SetDefault("storage.s3.access_key_id", "")
	v.SetDefault("storage.s3.secret_access_key", "")
	v.SetDefault("storage.s3.use_path_style", false)

	v.SetDefault("admin.username", foliohttp.DefaultAdminUsername)
	v.SetDefault("admin.password", foliohttp.DefaultAdminPassword)
	v.SetDefault("admin.realm", foliohttp.DefaultAdminRealm)
	v.SetDefault("admin.prefix", "/admin")
	v.SetDefault("admin.protect_writes", false)

	v.SetDefault("cors.enabled", false)
	v.SetDefault("cors.allowed_origins", []string{"*"})
	v.SetDefault("cors.allowed_methods", []string{"GET", "POST", "DELETE", "OPTIONS"})
	v.SetDefault("cors.allowed_headers", []string{"Accept", "Authorization", "Content-Type"})
	v.SetDefault("cors.exposed_headers", []string{})
	v.SetDefault("cors.allow_credentials", false)
	v.SetDefault("cors.max_age", 300)

	v.SetDefault("log.level", "info")
}

// Load reads configuration and returns a validated Config struct.
// Order of precedence (highest to lowest): flags > env > config files > defaults
//
// Parameters:
//   - configFiles: list of config file paths (later files override earlier ones)
//   - flags: cobra flag set for flag binding (can be nil)
func Load(configFiles []string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	// 1. Set defaults
	setDefaults(v)

	// 2. Read config files
	if len(configFiles) > 0 {
		v.SetConfigFile(configFiles[0])
		if err := v.ReadInConfig(); err != nil {
			slog.Warn("error reading config file", "file", configFiles[0], "err", err)
		}

		for _, cf := range configFiles[1:] {
			v.SetConfigFile(cf)
			if err := v.MergeInConfig(); err != nil {
				slog.Warn("error merging config file", "file", cf, "err", err)
			}
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")

		if err := v.ReadInConfig(); err != nil {
			var configNotFound viper.ConfigFileNotFoundError
			if !errors.As(err, &configNotFound) {
				slog.Warn("error reading config file", "err", err)
			}
		}
	}

	// 3. Bind environment variables
	v.SetEnvPrefix("FOLIO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, names := range envAliases {
		_ = v.BindEnv(append([]string{key}, names...)...)
	}

	// 4. Bind flags (if provided)
	if flags != nil {
		bindFlags(v, flags)
	}

	// 5. Unmarshal into Config struct
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	// 6. Validate using go-playground/validator
	validate := validator.New()
	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	if err := cfg.validateBackend(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

// validateBackend checks settings that only matter for the chosen backend.
func (c *Config) validateBackend() error {
	if c.Media.Backend != "local" {
		return nil
	}

	if err := c.Database.Tables.Validate(); err != nil {
		return err
	}

	if c.Storage.Type == "s3" && c.Storage.S3.Bucket == "" {
		return errors.New("storage.s3.bucket is required when storage.type is s3")
	}

	return nil
}
