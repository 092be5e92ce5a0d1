// Package config provides configuration loading and validation for folio.
//
// The package handles YAML configuration files, environment variables, and CLI flags
// with automatic merging and validation using go-playground/validator.
//
// # Configuration Precedence
//
// Values are loaded in this order (later sources override earlier ones):
//
//  1. Default values
//  2. Configuration file(s) - multiple files merged left-to-right
//  3. Environment variables (FOLIO_ prefix, plus conventional aliases)
//  4. CLI flags
//
// # Usage
//
//	cfg, err := config.Load([]string{"config.yaml"}, cmd.Flags())
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Store in context for subcommands
//	ctx = config.WithContext(ctx, cfg)
//
//	// Retrieve later
//	cfg, err = config.FromContext(ctx)
//
// # Environment Variables
//
// All config keys map to environment variables with FOLIO_ prefix:
//   - server.port → FOLIO_SERVER_PORT
//   - media.backend → FOLIO_MEDIA_BACKEND
//   - local.api_secret → FOLIO_LOCAL_API_SECRET
//
// The hosted store credentials and admin login also accept the names used
// by existing deployments: CLOUDINARY_CLOUD_NAME (or
// NEXT_PUBLIC_CLOUDINARY_CLOUD_NAME), CLOUDINARY_API_KEY,
// CLOUDINARY_API_SECRET, ADMIN_USERNAME and ADMIN_PASSWORD.
//
// # Validation
//
// Configuration is validated using struct tags:
//   - Port must be 1-65535
//   - Backend must be cloudinary or local
//   - Database type must be sqlite or postgres, storage type filesystem or s3
//   - Log level must be debug, info, warn, or error
//
// Missing hosted store credentials are not a validation error. The server
// starts and reports itself as unconfigured instead.
package config
