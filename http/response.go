package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/sagarc03/folio"
)

// ErrorResponse represents a JSON error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// WriteError writes a JSON error response
func WriteError(w http.ResponseWriter, code int, message, details string) {
	if err := WriteJSON(w, code, ErrorResponse{
		Error:   message,
		Details: details,
	}); err != nil {
		slog.Error("failed to encode error response", "error", err)
	}
}

// HandleError writes the error response for a failed write operation.
// fallback is the message used for upstream and unexpected failures.
func HandleError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, folio.ErrNotConfigured):
		WriteError(w, http.StatusInternalServerError, MsgNotConfigured, "")
	case errors.Is(err, folio.ErrInvalidInput):
		WriteError(w, http.StatusBadRequest, fallback, err.Error())
	case errors.Is(err, folio.ErrNotFound):
		WriteError(w, http.StatusNotFound, fallback, err.Error())
	default:
		slog.Error("request error", "error", err)
		WriteError(w, http.StatusInternalServerError, fallback, err.Error())
	}
}

// WriteJSON writes a JSON response
func WriteJSON(w http.ResponseWriter, code int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	return json.NewEncoder(w).Encode(data)
}
