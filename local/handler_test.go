package local_test

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sagarc03/folio"
	"github.com/sagarc03/folio/local"
)

var fixedNow = time.Unix(1_700_000_000, 0)

func setupServer(t *testing.T) (testEnv, *httptest.Server) {
	t.Helper()

	env := setupStore(t)
	verifier := folio.NewSignatureVerifier(staticSecrets{testAPIKey: testAPISecret}, time.Hour).
		WithClock(func() time.Time { return fixedNow })

	srv := httptest.NewServer(local.NewHandler(env.store, verifier, 1<<20).Router())
	t.Cleanup(srv.Close)

	return env, srv
}

// signedForm builds a direct-upload body the way a browser holding a grant would.
func signedForm(t *testing.T, params map[string]string, secret string, file []byte) (*bytes.Buffer, string) {
	t.Helper()

	signed := map[string]string{"timestamp": strconv.FormatInt(fixedNow.Unix(), 10)}
	for k, v := range params {
		signed[k] = v
	}
	signature, err := folio.SignParams(signed, secret)
	require.NoError(t, err)
	signed["signature"] = signature
	signed["api_key"] = testAPIKey

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range signed {
		require.NoError(t, mw.WriteField(k, v))
	}
	if file != nil {
		part, err := mw.CreateFormFile("file", "photo.png")
		require.NoError(t, err)
		_, err = part.Write(file)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	return &buf, mw.FormDataContentType()
}

func postUpload(t *testing.T, url string, body io.Reader, contentType string) *http.Response {
	t.Helper()

	resp, err := http.Post(url, contentType, body) //nolint:noctx // test
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func TestHandler_Upload(t *testing.T) {
	_, srv := setupServer(t)

	body, ct := signedForm(t, map[string]string{"folder": "gallery/trip"}, testAPISecret, pngBytes(t, 8, 6))
	resp := postUpload(t, srv.URL+"/v1_1/local/image/upload", body, ct)

	require.Equal(t, http.StatusOK, resp.StatusCode)

	var asset folio.Asset
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&asset))
	assert.Equal(t, "gallery/trip", asset.Folder)
	assert.Equal(t, "png", asset.Format)
	assert.Equal(t, 8, asset.Width)
	assert.Equal(t, 6, asset.Height)
}

func TestHandler_Upload_Rejected(t *testing.T) {
	tests := []struct {
		name       string
		path       string
		params     map[string]string
		secret     string
		file       []byte
		tamper     func(*bytes.Buffer)
		wantStatus int
	}{
		{
			name:       "unknown cloud",
			path:       "/v1_1/other/image/upload",
			params:     map[string]string{"folder": "gallery"},
			secret:     testAPISecret,
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "wrong secret",
			path:       "/v1_1/local/image/upload",
			params:     map[string]string{"folder": "gallery"},
			secret:     "nope",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "missing file",
			path:       "/v1_1/local/image/upload",
			params:     map[string]string{"folder": "gallery"},
			secret:     testAPISecret,
			file:       []byte{},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "not an image",
			path:       "/v1_1/local/image/upload",
			params:     map[string]string{"folder": "gallery"},
			secret:     testAPISecret,
			file:       []byte("plain text"),
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, srv := setupServer(t)

			file := tt.file
			switch {
			case file == nil:
				file = pngBytes(t, 2, 2)
			case len(file) == 0:
				file = nil
			}

			body, ct := signedForm(t, tt.params, tt.secret, file)
			resp := postUpload(t, srv.URL+tt.path, body, ct)

			assert.Equal(t, tt.wantStatus, resp.StatusCode)

			var apiErr struct {
				Error struct {
					Message string `json:"message"`
				} `json:"error"`
			}
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&apiErr))
			assert.NotEmpty(t, apiErr.Error.Message)
		})
	}
}

func TestHandler_Upload_GrantBoundToFolder(t *testing.T) {
	_, srv := setupServer(t)

	// Sign for one folder, then submit for another.
	signature, err := folio.SignParams(map[string]string{
		"folder":    "gallery/a",
		"timestamp": strconv.FormatInt(fixedNow.Unix(), 10),
	}, testAPISecret)
	require.NoError(t, err)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("folder", "gallery/b"))
	require.NoError(t, mw.WriteField("timestamp", strconv.FormatInt(fixedNow.Unix(), 10)))
	require.NoError(t, mw.WriteField("signature", signature))
	require.NoError(t, mw.WriteField("api_key", testAPIKey))
	part, err := mw.CreateFormFile("file", "x.png")
	require.NoError(t, err)
	_, err = part.Write(pngBytes(t, 2, 2))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	resp := postUpload(t, srv.URL+"/v1_1/local/image/upload", &buf, mw.FormDataContentType())
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestHandler_Files(t *testing.T) {
	env, srv := setupServer(t)

	original := pngBytes(t, 120, 60)
	asset, err := env.store.Upload(t.Context(), folio.UploadRequest{
		Folder: "gallery", PublicID: "shot", Overwrite: true,
	}, bytes.NewReader(original))
	require.NoError(t, err)

	get := func(t *testing.T, path string) (*http.Response, []byte) {
		t.Helper()
		resp, err := http.Get(srv.URL + path) //nolint:noctx // test
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()
		data, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		return resp, data
	}

	t.Run("original", func(t *testing.T) {
		resp, data := get(t, "/files/gallery/shot.png")

		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, original, data)
		assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))
		assert.Equal(t, `"`+asset.ETag+`"`, resp.Header.Get("ETag"))
	})

	t.Run("conditional get", func(t *testing.T) {
		req, err := http.NewRequestWithContext(t.Context(), http.MethodGet, srv.URL+"/files/gallery/shot.png", nil)
		require.NoError(t, err)
		req.Header.Set("If-None-Match", `"`+asset.ETag+`"`)

		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		_ = resp.Body.Close()

		assert.Equal(t, http.StatusNotModified, resp.StatusCode)
	})

	t.Run("overwrite changes the served bytes", func(t *testing.T) {
		replaced, err := env.store.Upload(t.Context(), folio.UploadRequest{
			Folder: "gallery", PublicID: "again", Overwrite: true,
		}, bytes.NewReader(pngBytes(t, 10, 10)))
		require.NoError(t, err)

		first, _ := get(t, "/files/gallery/again.png")
		assert.Equal(t, "public, no-cache", first.Header.Get("Cache-Control"))
		assert.NotContains(t, first.Header.Get("Cache-Control"), "immutable")

		_, err = env.store.Upload(t.Context(), folio.UploadRequest{
			Folder: "gallery", PublicID: "again", Overwrite: true,
		}, bytes.NewReader(pngBytes(t, 20, 20)))
		require.NoError(t, err)

		second, data := get(t, "/files/gallery/again.png")
		require.Equal(t, http.StatusOK, second.StatusCode)
		assert.NotEqual(t, first.Header.Get("ETag"), second.Header.Get("ETag"))
		assert.NotEqual(t, `"`+replaced.ETag+`"`, second.Header.Get("ETag"))
		cfg, _, err := imageDecodeConfig(data)
		require.NoError(t, err)
		assert.Equal(t, 20, cfg.Width)
	})

	t.Run("thumbnail", func(t *testing.T) {
		resp, data := get(t, "/files/gallery/shot.png?w=30")

		require.Equal(t, http.StatusOK, resp.StatusCode)
		cfg, format, err := imageDecodeConfig(data)
		require.NoError(t, err)
		assert.Equal(t, "png", format)
		assert.Equal(t, 30, cfg.Width)
		assert.Equal(t, 15, cfg.Height)
		assert.NotEqual(t, `"`+asset.ETag+`"`, resp.Header.Get("ETag"))
	})

	t.Run("bad width", func(t *testing.T) {
		resp, _ := get(t, "/files/gallery/shot.png?w=wide")
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("wrong extension", func(t *testing.T) {
		resp, _ := get(t, "/files/gallery/shot.jpg")
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("missing", func(t *testing.T) {
		resp, _ := get(t, "/files/gallery/nothing.png")
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("cache directory is not served", func(t *testing.T) {
		resp, _ := get(t, "/files/.thumbs/30/"+asset.ETag+".png")
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}
