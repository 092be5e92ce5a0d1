package local

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"path"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/sagarc03/folio"
)

// DefaultMaxUploadSize bounds a direct upload request body.
const DefaultMaxUploadSize = 20 << 20

// Handler serves the direct-upload endpoint and delivery URLs of a Store.
type Handler struct {
	store         *Store
	verifier      *folio.SignatureVerifier
	maxUploadSize int64
}

// NewHandler creates a Handler. maxUploadSize <= 0 uses DefaultMaxUploadSize.
func NewHandler(store *Store, verifier *folio.SignatureVerifier, maxUploadSize int64) *Handler {
	if maxUploadSize <= 0 {
		maxUploadSize = DefaultMaxUploadSize
	}
	return &Handler{store: store, verifier: verifier, maxUploadSize: maxUploadSize}
}

// Router returns the store's routes, relative to its mount point.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Post("/v1_1/{cloud}/image/upload", h.handleUpload)
	r.Get("/files/*", h.handleFile)
	r.Head("/files/*", h.handleFile)
	return r
}

type apiError struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// writeAPIError answers in the hosted API's error shape so the same clients
// can talk to either store.
func writeAPIError(w http.ResponseWriter, code int, msg string) {
	var body apiError
	body.Error.Message = msg
	writeJSON(w, code, body)
}

func writeJSON(w http.ResponseWriter, code int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) handleUpload(w http.ResponseWriter, r *http.Request) {
	if chi.URLParam(r, "cloud") != h.store.CloudName() {
		writeAPIError(w, http.StatusNotFound, "Unknown cloud name")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)
	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeAPIError(w, http.StatusRequestEntityTooLarge, "File size too large")
			return
		}
		writeAPIError(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	params := make(map[string]string, len(r.MultipartForm.Value))
	for k, v := range r.MultipartForm.Value {
		if len(v) > 0 {
			params[k] = v[0]
		}
	}

	if err := h.verifier.Verify(params); err != nil {
		slog.Warn("upload rejected", "folder", params["folder"], "error", err)
		writeAPIError(w, http.StatusUnauthorized, "Invalid Signature")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeAPIError(w, http.StatusBadRequest, "Missing required parameter - file")
		return
	}
	defer func() { _ = file.Close() }()

	overwrite := true
	if v, ok := params["overwrite"]; ok {
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			writeAPIError(w, http.StatusBadRequest, "Invalid overwrite value")
			return
		}
		overwrite = parsed
	}

	req := folio.UploadRequest{
		Folder:    params["folder"],
		PublicID:  params["public_id"],
		Filename:  header.Filename,
		Tags:      splitTags(params["tags"]),
		Overwrite: overwrite,
	}

	asset, err := h.store.Upload(r.Context(), req, file)
	if err != nil {
		if errors.Is(err, folio.ErrInvalidInput) {
			writeAPIError(w, http.StatusBadRequest, "Invalid image file")
			return
		}
		slog.Error("upload failed", "folder", req.Folder, "error", err)
		writeAPIError(w, http.StatusInternalServerError, "Upload failed")
		return
	}

	writeJSON(w, http.StatusOK, asset)
}

func splitTags(s string) []string {
	tags := []string{}
	for t := range strings.SplitSeq(s, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

func (h *Handler) handleFile(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "*")
	ext := path.Ext(name)
	publicID := strings.TrimSuffix(name, ext)

	if ext == "" || !validPublicID(publicID) {
		http.NotFound(w, r)
		return
	}

	asset, err := h.store.Get(r.Context(), publicID)
	if err != nil || "."+asset.Format != ext {
		if err != nil && !errors.Is(err, folio.ErrNotFound) {
			slog.Error("failed to look up asset", "public_id", publicID, "error", err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		http.NotFound(w, r)
		return
	}

	etag := asset.ETag
	content, err := h.open(r, asset, &etag)
	if err != nil {
		switch {
		case errors.Is(err, folio.ErrInvalidInput):
			http.Error(w, "invalid width", http.StatusBadRequest)
		case errors.Is(err, folio.ErrNotFound):
			http.NotFound(w, r)
		default:
			slog.Error("failed to open asset", "public_id", publicID, "error", err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		}
		return
	}
	defer func() { _ = content.Close() }()

	if ct := mime.TypeByExtension(ext); ct != "" {
		w.Header().Set("Content-Type", ct)
	}
	w.Header().Set("ETag", `"`+etag+`"`)
	// Overwriting uploads reuse the URL, so clients revalidate by ETag.
	w.Header().Set("Cache-Control", "public, no-cache")

	http.ServeContent(w, r, name, asset.CreatedAt, content)
}

// open returns the original, or a resized rendition when ?w= is present.
func (h *Handler) open(r *http.Request, a folio.Asset, etag *string) (io.ReadSeekCloser, error) {
	raw := r.URL.Query().Get("w")
	if raw == "" {
		return h.store.files.Get(r.Context(), blobPath(a))
	}

	width, err := strconv.Atoi(raw)
	if err != nil {
		return nil, folio.ErrInvalidInput
	}

	*etag = a.ETag + "-w" + raw
	return h.store.Thumbnail(r.Context(), a, width)
}
