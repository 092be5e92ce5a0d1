package http

import (
	"crypto/sha256"
	"crypto/subtle"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
)

// Admin gate defaults.
const (
	DefaultAdminUsername = "admin"
	DefaultAdminPassword = "change-me"
	DefaultAdminRealm    = "Folio Admin"
)

type BasicAuthConfig struct {
	Username string
	Password string
	Realm    string
}

// UsesDefaults reports whether the gate would accept the built-in credentials.
func (c BasicAuthConfig) UsesDefaults() bool {
	return c.Username == "" || c.Password == "" ||
		(c.Username == DefaultAdminUsername && c.Password == DefaultAdminPassword)
}

// BasicAuthMiddleware requires HTTP Basic credentials matching cfg on every
// request. Empty fields fall back to the defaults.
func BasicAuthMiddleware(cfg BasicAuthConfig) func(http.Handler) http.Handler {
	if cfg.Username == "" {
		cfg.Username = DefaultAdminUsername
	}
	if cfg.Password == "" {
		cfg.Password = DefaultAdminPassword
	}
	if cfg.Realm == "" {
		cfg.Realm = DefaultAdminRealm
	}

	wantUser := sha256.Sum256([]byte(cfg.Username))
	wantPass := sha256.Sum256([]byte(cfg.Password))
	challenge := `Basic realm="` + cfg.Realm + `"`

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, pass, ok := r.BasicAuth()

			// Hash first so the comparison does not leak lengths.
			gotUser := sha256.Sum256([]byte(user))
			gotPass := sha256.Sum256([]byte(pass))
			userOK := subtle.ConstantTimeCompare(gotUser[:], wantUser[:])
			passOK := subtle.ConstantTimeCompare(gotPass[:], wantPass[:])

			if !ok || userOK&passOK != 1 {
				w.Header().Set("WWW-Authenticate", challenge)
				http.Error(w, MsgAuthRequired, http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequestLogger logs one line per request once it completes.
func RequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r)

		slog.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}
