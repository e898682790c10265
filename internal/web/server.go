package web

import (
	"context"
	"embed"
	"io/fs"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/notepane/notepane/internal/config"
	"github.com/notepane/notepane/internal/db"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static/*
var staticFS embed.FS

// iconPaths are requested by Outlook for the add-in manifest; they answer 204.
var iconPaths = []string{
	"/icon-16.png",
	"/icon-32.png",
	"/icon-64.png",
	"/icon-80.png",
	"/icon-128.png",
	"/favicon.ico",
}

// NewHandler builds the routed and wrapped HTTP handler.
func NewHandler(store *db.Store, cfg *config.Config, version string) http.Handler {
	// Create sub-FS for templates (strip "templates/" prefix)
	templateSub, err := fs.Sub(templateFS, "templates")
	if err != nil {
		log.Fatalf("failed to create template sub-FS: %v", err)
	}

	// Create sub-FS for static files (strip "static/" prefix)
	staticSub, err := fs.Sub(staticFS, "static")
	if err != nil {
		log.Fatalf("failed to create static sub-FS: %v", err)
	}

	h := &Handlers{
		store:    store,
		cfg:      cfg,
		renderer: NewRenderer(templateSub, version),
		static:   staticSub,
	}

	mux := http.NewServeMux()

	// Routes using Go 1.22+ pattern syntax
	mux.HandleFunc("GET /{$}", h.HandleTaskpane)
	mux.HandleFunc("GET /taskpane.js", h.HandleStatic("taskpane.js"))
	mux.HandleFunc("GET /taskpane.css", h.HandleStatic("taskpane.css"))
	for _, p := range iconPaths {
		mux.HandleFunc("GET "+p, h.HandleIcon)
	}
	mux.HandleFunc("POST /save", h.HandleSave)
	mux.HandleFunc("GET /test-db", h.HandleTestDB)
	mux.HandleFunc("GET /view-notes", h.HandleViewNotes)
	mux.HandleFunc("GET /notes/{id}", h.HandleNote)

	return requestLog(securityHeaders(withCORS(cfg, mux)))
}

// NewServer creates and configures the HTTP server.
func NewServer(store *db.Store, cfg *config.Config, version string) *http.Server {
	return &http.Server{
		Addr:              cfg.Addr(),
		Handler:           NewHandler(store, cfg, version),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}

// Run starts the HTTP server and handles graceful shutdown on SIGINT/SIGTERM.
// It serves HTTPS when cfg has a certificate/key pair.
func Run(srv *http.Server, cfg *config.Config) error {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	errCh := make(chan error, 1)
	scheme := "http"
	if cfg.TLSEnabled() {
		scheme = "https"
		go func() {
			errCh <- srv.ListenAndServeTLS(cfg.TLSCertFile, cfg.TLSKeyFile)
		}()
	} else {
		go func() {
			errCh <- srv.ListenAndServe()
		}()
	}

	log.Printf("notepane running at %s://%s", scheme, srv.Addr)

	if strings.Contains(srv.Addr, "0.0.0.0") || strings.HasPrefix(srv.Addr, "[::]") || strings.HasPrefix(srv.Addr, ":") {
		log.Printf("WARNING: Server is binding to all interfaces and may be accessible from the network")
	}

	select {
	case err := <-errCh:
		return err
	case <-sigCh:
		log.Println("Shutting down...")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(ctx)
	}
}
