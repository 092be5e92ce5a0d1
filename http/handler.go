package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/sagarc03/folio"
)

// maxBodySize bounds JSON request bodies.
const maxBodySize = 1 << 20

type Service interface {
	Status() folio.ServiceStatus
	ListAlbums(ctx context.Context) ([]folio.Album, error)
	ListAlbumImages(ctx context.Context, albumID string) ([]folio.Image, error)
	ListAllImages(ctx context.Context) ([]folio.Image, error)
	CreateUploadGrant(ctx context.Context, albumID string) (folio.UploadGrant, error)
	CreateAlbum(ctx context.Context, name string) (folio.CreateAlbumResult, error)
	DeleteImage(ctx context.Context, publicID string) (folio.DeleteResult, error)
	DebugAlbum(ctx context.Context, albumID string) (folio.AlbumDebug, error)
}

type CORSConfig struct {
	Enabled          bool     `mapstructure:"enabled"`
	AllowedOrigins   []string `mapstructure:"allowed_origins"`
	AllowedMethods   []string `mapstructure:"allowed_methods"`
	AllowedHeaders   []string `mapstructure:"allowed_headers"`
	ExposedHeaders   []string `mapstructure:"exposed_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
	MaxAge           int      `mapstructure:"max_age"`
}

type AdminConfig struct {
	BasicAuth BasicAuthConfig
	// Prefix is where admin routes live (default: /admin).
	Prefix string
	// ProtectWrites puts the create, sign and delete endpoints behind the
	// admin credentials as well.
	ProtectWrites bool
}

type HandlerConfig struct {
	// Backend names the media store in use, reported by the status endpoint.
	Backend string
	Admin   AdminConfig
	CORS    CORSConfig
	// SiteDir, when set, is served for every non-API GET request.
	SiteDir string
	// Media, when set, is mounted at /media (the self-hosted store).
	Media http.Handler
}

// Handler provides the gallery HTTP API.
type Handler struct {
	config  HandlerConfig
	service Service
}

// NewHandler creates a new Handler with the given configuration and service.
func NewHandler(config *HandlerConfig, service Service) *Handler {
	cfg := *config
	if cfg.Admin.Prefix == "" {
		cfg.Admin.Prefix = "/admin"
	}
	cfg.Admin.Prefix = "/" + strings.Trim(cfg.Admin.Prefix, "/")

	return &Handler{
		config:  cfg,
		service: service,
	}
}

// Router returns an http.Handler with all routes configured.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger)
	r.Use(middleware.Recoverer)

	if h.config.CORS.Enabled {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   h.config.CORS.AllowedOrigins,
			AllowedMethods:   h.config.CORS.AllowedMethods,
			AllowedHeaders:   h.config.CORS.AllowedHeaders,
			ExposedHeaders:   h.config.CORS.ExposedHeaders,
			AllowCredentials: h.config.CORS.AllowCredentials,
			MaxAge:           h.config.CORS.MaxAge,
		}))
	}

	adminGate := BasicAuthMiddleware(h.config.Admin.BasicAuth)

	var site http.Handler
	if h.config.SiteDir != "" {
		site = NewSiteHandler(h.config.SiteDir)
	}

	r.Get("/healthz", h.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
			WriteError(w, http.StatusNotFound, "Not found", "")
		})

		r.Get("/albums", h.handleListAlbums)
		r.Get("/albums/{albumId}", h.handleAlbumImages)
		r.Get("/gallery", h.handleGallery)

		r.Group(func(r chi.Router) {
			if h.config.Admin.ProtectWrites {
				r.Use(adminGate)
			}
			r.Post("/albums/create", h.handleCreateAlbum)
			r.Post("/sign", h.handleSign)
			r.Delete("/images/delete", h.handleDeleteImage)
		})
	})

	r.Route(h.config.Admin.Prefix, func(r chi.Router) {
		r.Use(adminGate)
		r.Get("/status", h.handleStatus)
		r.Get("/debug/album", h.handleDebugAlbum)
		if site != nil {
			r.Get("/*", site.ServeHTTP)
		}
	})

	if h.config.Media != nil {
		r.Mount("/media", h.config.Media)
	}

	if site != nil {
		r.Get("/*", site.ServeHTTP)
		r.Head("/*", site.ServeHTTP)
	}

	return r
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	_ = WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// decodeBody reads an optional JSON body into v. A missing or malformed
// body leaves v zero and the handler reports the missing field instead.
func decodeBody(r *http.Request, v any) {
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodySize)).Decode(v); err != nil && !errors.Is(err, io.EOF) {
		slog.Debug("ignoring malformed request body", "path", r.URL.Path, "error", err)
	}
}

type albumsResponse struct {
	Albums  []folio.Album `json:"albums"`
	Message string        `json:"message,omitempty"`
	Error   string        `json:"error,omitempty"`
}

func (h *Handler) handleListAlbums(w http.ResponseWriter, r *http.Request) {
	albums, err := h.service.ListAlbums(r.Context())
	if err != nil {
		if errors.Is(err, folio.ErrNotConfigured) {
			_ = WriteJSON(w, http.StatusOK, albumsResponse{Albums: []folio.Album{}, Message: MsgNotConfiguredAdvice})
			return
		}
		slog.Error("failed to list albums", "error", err)
		_ = WriteJSON(w, http.StatusInternalServerError, albumsResponse{Albums: []folio.Album{}, Error: MsgLoadAlbumsFailed})
		return
	}

	_ = WriteJSON(w, http.StatusOK, albumsResponse{Albums: albums})
}

type imagesResponse struct {
	Images  []folio.Image `json:"images"`
	Message string        `json:"message,omitempty"`
	Error   string        `json:"error,omitempty"`
}

// writeImages answers a read endpoint: not configured degrades to an empty
// list with an advisory message, failures to an empty list with an error.
func writeImages(w http.ResponseWriter, images []folio.Image, err error, failure string) {
	switch {
	case err == nil:
		_ = WriteJSON(w, http.StatusOK, imagesResponse{Images: images})
	case errors.Is(err, folio.ErrNotConfigured):
		_ = WriteJSON(w, http.StatusOK, imagesResponse{Images: []folio.Image{}, Message: MsgNotConfiguredAdvice})
	case errors.Is(err, folio.ErrInvalidInput):
		_ = WriteJSON(w, http.StatusBadRequest, imagesResponse{Images: []folio.Image{}, Error: MsgInvalidAlbumID})
	default:
		slog.Error(failure, "error", err)
		_ = WriteJSON(w, http.StatusInternalServerError, imagesResponse{Images: []folio.Image{}, Error: failure})
	}
}

func (h *Handler) handleAlbumImages(w http.ResponseWriter, r *http.Request) {
	albumID := chi.URLParam(r, "albumId")
	images, err := h.service.ListAlbumImages(r.Context(), albumID)
	writeImages(w, images, err, MsgLoadAlbumImagesFailed)
}

func (h *Handler) handleGallery(w http.ResponseWriter, r *http.Request) {
	images, err := h.service.ListAllImages(r.Context())
	writeImages(w, images, err, MsgLoadGalleryFailed)
}

type createAlbumRequest struct {
	AlbumName string `json:"albumName"`
}

func (h *Handler) handleCreateAlbum(w http.ResponseWriter, r *http.Request) {
	var req createAlbumRequest
	decodeBody(r, &req)

	result, err := h.service.CreateAlbum(r.Context(), req.AlbumName)
	if err != nil {
		switch {
		case errors.Is(err, folio.ErrInvalidInput):
			WriteError(w, http.StatusBadRequest, MsgAlbumNameRequired, "")
		case errors.Is(err, folio.ErrUpstream):
			HandleError(w, err, MsgCreateFolderFailed)
		default:
			HandleError(w, err, MsgCreateAlbumFailed)
		}
		return
	}

	_ = WriteJSON(w, http.StatusOK, result)
}

type signRequest struct {
	AlbumID string `json:"albumId"`
}

func (h *Handler) handleSign(w http.ResponseWriter, r *http.Request) {
	var req signRequest
	decodeBody(r, &req)

	grant, err := h.service.CreateUploadGrant(r.Context(), req.AlbumID)
	if err != nil {
		if errors.Is(err, folio.ErrInvalidInput) {
			WriteError(w, http.StatusBadRequest, MsgInvalidAlbumID, "")
			return
		}
		HandleError(w, err, MsgSignUploadFailed)
		return
	}

	_ = WriteJSON(w, http.StatusOK, grant)
}

type deleteImageRequest struct {
	PublicID string `json:"publicId"`
}

func (h *Handler) handleDeleteImage(w http.ResponseWriter, r *http.Request) {
	var req deleteImageRequest
	decodeBody(r, &req)

	result, err := h.service.DeleteImage(r.Context(), req.PublicID)
	if err != nil {
		switch {
		case errors.Is(err, folio.ErrInvalidInput):
			WriteError(w, http.StatusBadRequest, MsgImageIDRequired, "")
		case errors.Is(err, folio.ErrNotFound):
			WriteError(w, http.StatusNotFound, MsgImageNotFound, "")
		default:
			HandleError(w, err, MsgDeleteImageFailed)
		}
		return
	}

	_ = WriteJSON(w, http.StatusOK, result)
}

type statusResponse struct {
	folio.ServiceStatus
	Backend string `json:"backend"`
}

func (h *Handler) handleStatus(w http.ResponseWriter, _ *http.Request) {
	_ = WriteJSON(w, http.StatusOK, statusResponse{
		ServiceStatus: h.service.Status(),
		Backend:       h.config.Backend,
	})
}

func (h *Handler) handleDebugAlbum(w http.ResponseWriter, r *http.Request) {
	albumID := strings.TrimSpace(r.URL.Query().Get("albumId"))
	if albumID == "" {
		WriteError(w, http.StatusBadRequest, MsgAlbumIDRequired, "")
		return
	}

	debug, err := h.service.DebugAlbum(r.Context(), albumID)
	if err != nil {
		if errors.Is(err, folio.ErrInvalidInput) {
			WriteError(w, http.StatusBadRequest, MsgInvalidAlbumID, "")
			return
		}
		HandleError(w, err, MsgDebugAlbumFailed)
		return
	}

	_ = WriteJSON(w, http.StatusOK, debug)
}
