package cloudinary

import (
	"context"
	"fmt"
	"strings"
	"time"

	sdk "github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/config"

	"github.com/sagarc03/folio"
)

const (
	// DefaultBaseURL is the hosted API endpoint.
	DefaultBaseURL = "https://api.cloudinary.com"

	// DefaultTimeout bounds every call to the hosted API.
	DefaultTimeout = 30 * time.Second

	// ThumbnailTransform is inserted into delivery URLs for gallery thumbnails.
	ThumbnailTransform = "w_800,h_auto,c_fill,q_auto,f_auto"
)

// Config holds account credentials.
type Config struct {
	CloudName string
	APIKey    string
	APISecret string
	// BaseURL overrides DefaultBaseURL.
	BaseURL string
}

// Client talks to one Cloudinary account through the SDK.
type Client struct {
	cfg     Config
	cld     *sdk.Cloudinary
	timeout time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout bounds each API call. Zero or negative disables the bound.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.timeout = timeout
	}
}

// New creates a Client. All three credentials are required.
func New(cfg Config, opts ...Option) (*Client, error) {
	if cfg.CloudName == "" || cfg.APIKey == "" || cfg.APISecret == "" {
		return nil, fmt.Errorf("new cloudinary client: %w", folio.ErrNotConfigured)
	}

	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	cfg.BaseURL = strings.TrimSuffix(cfg.BaseURL, "/")

	conf, err := config.NewFromParams(cfg.CloudName, cfg.APIKey, cfg.APISecret)
	if err != nil {
		return nil, fmt.Errorf("new cloudinary client: %w", err)
	}
	conf.API.UploadPrefix = cfg.BaseURL

	cld, err := sdk.NewFromConfiguration(*conf)
	if err != nil {
		return nil, fmt.Errorf("new cloudinary client: %w", err)
	}

	c := &Client{cfg: cfg, cld: cld, timeout: DefaultTimeout}
	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// UploadURL is the public direct-upload endpoint for images.
func (c *Client) UploadURL() string {
	return c.cfg.BaseURL + "/v1_1/" + c.cfg.CloudName + "/image/upload"
}

// ThumbnailURL rewrites a delivery URL to a resized, auto-format rendition.
// URLs that are not upload delivery URLs are returned empty.
func (c *Client) ThumbnailURL(a folio.Asset) string {
	if !strings.Contains(a.SecureURL, "/upload/") {
		return ""
	}
	return strings.Replace(a.SecureURL, "/upload/", "/upload/"+ThumbnailTransform+"/", 1)
}

func (c *Client) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.timeout)
}

// APIError is an error message reported by the hosted API in a response
// body. The SDK decodes these instead of failing the call.
type APIError struct {
	Message string
}

func (e *APIError) Error() string {
	return "cloudinary: " + e.Message
}

// Unwrap places every API-reported failure under folio.ErrUpstream.
func (e *APIError) Unwrap() error {
	return folio.ErrUpstream
}

// callFailed wraps an error returned by the SDK itself (transport, decoding).
func callFailed(err error) error {
	return fmt.Errorf("%w: %w", folio.ErrUpstream, err)
}

// reported returns the error carried in a decoded response body, if any.
func reported(body api.ErrorResp) error {
	if body.Message == "" {
		return nil
	}
	return &APIError{Message: body.Message}
}
