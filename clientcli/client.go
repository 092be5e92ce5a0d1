package clientcli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"mime"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/sagarc03/folio"
)

// DefaultTimeout is the default HTTP client timeout.
const DefaultTimeout = 30 * time.Second

// Client performs operations against a folio server.
type Client struct {
	config     *Config
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// New creates a new Client with the given config and options.
func New(cfg *Config, opts ...Option) (*Client, error) {
	if cfg == nil {
		return nil, ErrConfigRequired
	}

	c := &Client{
		config:     cfg.WithDefaults(),
		httpClient: &http.Client{Timeout: DefaultTimeout},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// Endpoint returns the normalized server URL.
func (c *Client) Endpoint() string {
	return c.config.Endpoint
}

// Albums lists every album. A server without media store credentials
// answers with an empty list and an advisory, reported as ErrNotConfigured.
func (c *Client) Albums(ctx context.Context) ([]folio.Album, error) {
	var resp albumsResponse
	if err := c.getJSON(ctx, "/api/albums", false, &resp); err != nil {
		return nil, fmt.Errorf("list albums: %w", err)
	}
	if resp.Message != "" && len(resp.Albums) == 0 {
		return []folio.Album{}, fmt.Errorf("list albums: %w: %s", ErrNotConfigured, resp.Message)
	}
	return nonNil(resp.Albums), nil
}

// AlbumImages lists the images of one album.
func (c *Client) AlbumImages(ctx context.Context, albumID string) ([]folio.Image, error) {
	if strings.TrimSpace(albumID) == "" {
		return nil, ErrEmptyAlbum
	}

	var resp imagesResponse
	if err := c.getJSON(ctx, "/api/albums/"+url.PathEscape(albumID), false, &resp); err != nil {
		return nil, fmt.Errorf("list album %s: %w", albumID, err)
	}
	if resp.Message != "" && len(resp.Images) == 0 {
		return []folio.Image{}, fmt.Errorf("list album %s: %w: %s", albumID, ErrNotConfigured, resp.Message)
	}
	return nonNil(resp.Images), nil
}

// Gallery returns the flat feed of every image.
func (c *Client) Gallery(ctx context.Context) ([]folio.Image, error) {
	var resp imagesResponse
	if err := c.getJSON(ctx, "/api/gallery", false, &resp); err != nil {
		return nil, fmt.Errorf("gallery: %w", err)
	}
	if resp.Message != "" && len(resp.Images) == 0 {
		return []folio.Image{}, fmt.Errorf("gallery: %w: %s", ErrNotConfigured, resp.Message)
	}
	return nonNil(resp.Images), nil
}

// CreateAlbum creates an album from a display name.
func (c *Client) CreateAlbum(ctx context.Context, name string) (folio.CreateAlbumResult, error) {
	var result folio.CreateAlbumResult
	err := c.sendJSON(ctx, http.MethodPost, "/api/albums/create", map[string]string{"albumName": name}, &result)
	if err != nil {
		return folio.CreateAlbumResult{}, fmt.Errorf("create album: %w", err)
	}
	return result, nil
}

// Sign requests an upload grant for albumID, or for the root folder when
// albumID is empty.
func (c *Client) Sign(ctx context.Context, albumID string) (folio.UploadGrant, error) {
	var grant folio.UploadGrant
	if err := c.sendJSON(ctx, http.MethodPost, "/api/sign", map[string]string{"albumId": albumID}, &grant); err != nil {
		return folio.UploadGrant{}, fmt.Errorf("sign upload: %w", err)
	}
	return grant, nil
}

// Upload requests one grant and posts every file to the media store in
// turn. A failed file is recorded in its result and the rest continue.
// The error is non-nil only when no upload could be attempted.
func (c *Client) Upload(ctx context.Context, opts UploadOptions) ([]UploadResult, error) {
	if len(opts.Paths) == 0 {
		return nil, ErrNoPaths
	}

	var files []string
	for _, p := range opts.Paths {
		found, err := collectImages(p, opts.Recursive)
		if err != nil {
			return nil, fmt.Errorf("upload: %w", err)
		}
		files = append(files, found...)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("upload: %w", ErrNoPaths)
	}

	grant, err := c.Sign(ctx, opts.AlbumID)
	if err != nil {
		return nil, err
	}

	uploadURL := grant.UploadURL
	if uploadURL == "" {
		if grant.CloudName == "" {
			return nil, fmt.Errorf("upload: %w", ErrNoUploadURL)
		}
		uploadURL = "https://api.cloudinary.com/v1_1/" + url.PathEscape(grant.CloudName) + "/image/upload"
	}

	results := make([]UploadResult, 0, len(files))
	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		result, uploadErr := c.uploadFile(ctx, uploadURL, grant, path)
		if uploadErr != nil {
			result = UploadResult{LocalPath: path, Err: uploadErr}
		}
		results = append(results, result)
	}

	return results, nil
}

// HasUploadErrors reports whether any result failed.
func HasUploadErrors(results []UploadResult) bool {
	for i := range results {
		if results[i].Err != nil {
			return true
		}
	}
	return false
}

func (c *Client) uploadFile(ctx context.Context, uploadURL string, grant folio.UploadGrant, path string) (UploadResult, error) {
	file, err := os.Open(path) //#nosec G304 -- path is user-provided input
	if err != nil {
		return UploadResult{}, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	fields := [][2]string{
		{"api_key", grant.APIKey},
		{"timestamp", strconv.FormatInt(grant.Timestamp, 10)},
		{"signature", grant.Signature},
		{"folder", grant.Folder},
	}
	for _, f := range fields {
		if err := mw.WriteField(f[0], f[1]); err != nil {
			return UploadResult{}, fmt.Errorf("write field %s: %w", f[0], err)
		}
	}

	part, err := mw.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return UploadResult{}, fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return UploadResult{}, fmt.Errorf("read file: %w", err)
	}
	if err := mw.Close(); err != nil {
		return UploadResult{}, fmt.Errorf("close multipart: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, uploadURL, &buf)
	if err != nil {
		return UploadResult{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var asset folio.Asset
	if err := c.do(req, &asset); err != nil {
		return UploadResult{}, err
	}

	return UploadResult{
		LocalPath: path,
		PublicID:  asset.PublicID,
		URL:       asset.SecureURL,
		Format:    asset.Format,
		Width:     asset.Width,
		Height:    asset.Height,
		Size:      asset.Bytes,
	}, nil
}

// Delete deletes images by full public ID. Continues on error, collecting
// results for every ID.
func (c *Client) Delete(ctx context.Context, publicIDs []string) ([]DeleteResult, error) {
	if len(publicIDs) == 0 {
		return nil, ErrNoIDs
	}

	results := make([]DeleteResult, 0, len(publicIDs))
	for _, id := range publicIDs {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		var resp folio.DeleteResult
		err := c.sendJSON(ctx, http.MethodDelete, "/api/images/delete", map[string]string{"publicId": id}, &resp)
		results = append(results, DeleteResult{
			PublicID: id,
			Deleted:  err == nil && resp.Success,
			Err:      err,
		})
	}

	return results, nil
}

// HasDeleteErrors reports whether any result failed.
func HasDeleteErrors(results []DeleteResult) bool {
	for i := range results {
		if results[i].Err != nil {
			return true
		}
	}
	return false
}

// Health calls the server's health check.
func (c *Client) Health(ctx context.Context) error {
	var body struct {
		Status string `json:"status"`
	}
	if err := c.getJSON(ctx, "/healthz", false, &body); err != nil {
		return fmt.Errorf("health: %w", err)
	}
	if body.Status != "ok" {
		return fmt.Errorf("health: server reported %q", body.Status)
	}
	return nil
}

// Status reads the admin status endpoint.
func (c *Client) Status(ctx context.Context) (Status, error) {
	var status Status
	if err := c.getJSON(ctx, c.config.AdminPrefix+"/status", true, &status); err != nil {
		return Status{}, fmt.Errorf("status: %w", err)
	}
	return status, nil
}

// DebugAlbum reads the admin album inspector.
func (c *Client) DebugAlbum(ctx context.Context, albumID string) (folio.AlbumDebug, error) {
	if strings.TrimSpace(albumID) == "" {
		return folio.AlbumDebug{}, ErrEmptyAlbum
	}

	path := c.config.AdminPrefix + "/debug/album?" + url.Values{"albumId": {albumID}}.Encode()

	var debug folio.AlbumDebug
	if err := c.getJSON(ctx, path, true, &debug); err != nil {
		return folio.AlbumDebug{}, fmt.Errorf("debug album %s: %w", albumID, err)
	}
	return debug, nil
}

func (c *Client) getJSON(ctx context.Context, path string, admin bool, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.config.Endpoint+path, http.NoBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if admin {
		if !c.config.HasCredentials() {
			return ErrCredentialsRequired
		}
		req.SetBasicAuth(c.config.Username, c.config.Password)
	}
	return c.do(req, out)
}

// sendJSON posts a JSON body. Credentials are sent whenever they are set
// since the server may protect write endpoints.
func (c *Client) sendJSON(ctx context.Context, method, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.config.Endpoint+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.config.HasCredentials() {
		req.SetBasicAuth(c.config.Username, c.config.Password)
	}
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return parseServerError(resp.StatusCode, body)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("parse response: %w", err)
	}
	return nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

// collectImages expands path into the image files to upload.
func collectImages(path string, recursive bool) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}

	if !info.IsDir() {
		return []string{path}, nil
	}
	if !recursive {
		return nil, fmt.Errorf("%s is a directory (use -r to upload recursively)", path)
	}

	var files []string
	walkErr := filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if p != path && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.HasPrefix(d.Name(), ".") && isImage(p) {
			files = append(files, p)
		}
		return nil
	})
	if walkErr != nil {
		return nil, fmt.Errorf("walk directory: %w", walkErr)
	}

	return files, nil
}

func isImage(path string) bool {
	return strings.HasPrefix(mime.TypeByExtension(strings.ToLower(filepath.Ext(path))), "image/")
}

// parseServerError extracts the message from an error response.
func parseServerError(statusCode int, body []byte) error {
	apiErr := &APIError{StatusCode: statusCode, Message: strings.TrimSpace(string(body))}

	var eb errorBody
	if err := json.Unmarshal(body, &eb); err == nil {
		switch e := eb.Error.(type) {
		case string:
			apiErr.Message = e
		case map[string]any:
			if m, ok := e["message"].(string); ok {
				apiErr.Message = m
			}
		}
		apiErr.Details = eb.Details
	}

	return apiErr
}

// APIError represents an error response from the server or media store.
type APIError struct {
	StatusCode int
	Message    string
	Details    string
}

func (e *APIError) Error() string {
	msg := "server error: " + strconv.Itoa(e.StatusCode) + " - " + e.Message
	if e.Details != "" {
		msg += " (" + e.Details + ")"
	}
	return msg
}

// Is reports whether target is an *APIError with the same StatusCode.
func (e *APIError) Is(target error) bool {
	var t *APIError
	if !errors.As(target, &t) {
		return false
	}
	return t.StatusCode == e.StatusCode
}

// Sentinel errors for common API error conditions.
// Use errors.Is() to check for these conditions.
var (
	// ErrNotFound is returned when the requested resource does not exist (404).
	ErrNotFound = &APIError{StatusCode: http.StatusNotFound}

	// ErrUnauthorized is returned when admin credentials are missing or wrong (401).
	ErrUnauthorized = &APIError{StatusCode: http.StatusUnauthorized}

	// ErrBadRequest is returned for rejected input (400).
	ErrBadRequest = &APIError{StatusCode: http.StatusBadRequest}
)
