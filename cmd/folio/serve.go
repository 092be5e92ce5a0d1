package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/sagarc03/folio/config"
	foliohttp "github.com/sagarc03/folio/http"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Start the folio HTTP server.

With the local backend the server also hosts the media store itself under
/media: direct uploads, image delivery and thumbnails.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().Int("port", 3000, "HTTP server port")
	serveCmd.Flags().String("site-dir", "", "serve a pre-built front end from this directory")
	serveCmd.Flags().String("public-url", "", "externally visible base URL (default: http://localhost:3000)")

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.FromContext(cmd.Context())
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	service, b, err := newGalleryService(ctx, cfg)
	if err != nil {
		return err
	}
	defer b.Close()

	status := service.Status()
	if !status.Configured {
		slog.Warn("media store not configured, read endpoints will return empty results", "backend", b.name)
	}

	adminAuth := foliohttp.BasicAuthConfig{
		Username: cfg.Admin.Username,
		Password: cfg.Admin.Password,
		Realm:    cfg.Admin.Realm,
	}
	if adminAuth.UsesDefaults() {
		slog.Warn("admin area uses the default credentials, set ADMIN_USERNAME and ADMIN_PASSWORD")
	}

	handlerConfig := foliohttp.HandlerConfig{
		Backend: b.name,
		Admin: foliohttp.AdminConfig{
			BasicAuth:     adminAuth,
			Prefix:        cfg.Admin.Prefix,
			ProtectWrites: cfg.Admin.ProtectWrites,
		},
		CORS:    cfg.CORS,
		SiteDir: cfg.Server.SiteDir,
		Media:   b.media,
	}

	handler := foliohttp.NewHandler(&handlerConfig, service)

	addr := fmt.Sprintf(":%d", cfg.Server.Port)

	server := &http.Server{
		Addr:         addr,
		Handler:      handler.Router(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

		select {
		case <-sigCh:
		case <-ctx.Done():
		}

		slog.Info("shutting down server...")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown error", "err", err)
		}
		cancel()
	}()

	slog.Info("starting server",
		"addr", addr,
		"backend", b.name,
		"root_folder", status.RootFolder,
		"configured", status.Configured,
	)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}
