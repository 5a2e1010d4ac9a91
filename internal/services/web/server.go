package web

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/louisbranch/pagesync/internal/platform/timeouts"
	"github.com/louisbranch/pagesync/internal/services/content"
	"github.com/louisbranch/pagesync/internal/services/shared/sitemenu"
	webstorage "github.com/louisbranch/pagesync/internal/services/web/storage"
	websqlite "github.com/louisbranch/pagesync/internal/services/web/storage/sqlite"
)

// Config defines the inputs for the content web server.
type Config struct {
	HTTPAddr string
	// ContentDir holds the content documents.
	ContentDir string
	// Live rebuilds the catalog before every lookup.
	Live bool
	// Extensions overrides content.DefaultExtensions.
	Extensions []string
	// Sanitize runs page bodies through the HTML sanitizer at load time.
	Sanitize bool
	// MenuFile is an optional YAML menu. Without it the menu is derived from
	// the top-level routes.
	MenuFile string
	// DBPath is the SQLite page view database. Empty disables persistence.
	DBPath   string
	SiteName string
	BaseURL  string
	// TrustForwardedProto honors X-Forwarded-Proto from a fronting proxy.
	TrustForwardedProto bool
}

// Server hosts the content HTTP server.
type Server struct {
	httpAddr   string
	httpServer *http.Server
	store      *content.Store
	pageViews  webstorage.Store
}

// NewServer opens the content store and analytics storage and returns a
// ready-to-run server.
func NewServer(ctx context.Context, config Config) (*Server, error) {
	if ctx == nil {
		return nil, errors.New("context is required")
	}
	httpAddr := strings.TrimSpace(config.HTTPAddr)
	if httpAddr == "" {
		return nil, errors.New("http address is required")
	}

	var sanitize func(string) string
	if config.Sanitize {
		sanitize = content.NewSanitizer()
	}
	store, err := content.Open(ctx, content.Config{
		Dir:        config.ContentDir,
		Live:       config.Live,
		Extensions: config.Extensions,
		Sanitize:   sanitize,
		Logf: func(format string, args ...any) {
			log.Printf("content "+format, args...)
		},
	})
	if err != nil {
		return nil, fmt.Errorf("open content store: %w", err)
	}
	catalog := store.Catalog()
	log.Printf("content loaded dir=%s pages=%d skipped=%d live=%t", config.ContentDir, catalog.Len(), len(catalog.Skipped()), config.Live)

	var menu []sitemenu.Item
	if path := strings.TrimSpace(config.MenuFile); path != "" {
		menu, err = sitemenu.LoadFile(path)
		if err != nil {
			return nil, fmt.Errorf("load menu: %w", err)
		}
	}

	var pageViews webstorage.Store
	if path := strings.TrimSpace(config.DBPath); path != "" {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create storage dir: %w", err)
			}
		}
		sqliteStore, err := websqlite.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open page view storage: %w", err)
		}
		pageViews = sqliteStore
	}

	handler, err := NewHandler(Dependencies{
		Content:             store,
		Menu:                menu,
		PageViews:           pageViews,
		SiteName:            config.SiteName,
		BaseURL:             config.BaseURL,
		TrustForwardedProto: config.TrustForwardedProto,
	})
	if err != nil {
		if pageViews != nil {
			_ = pageViews.Close()
		}
		return nil, fmt.Errorf("build handler: %w", err)
	}

	return &Server{
		httpAddr: httpAddr,
		httpServer: &http.Server{
			Addr:              httpAddr,
			Handler:           handler,
			ReadHeaderTimeout: timeouts.ReadHeader,
		},
		store:     store,
		pageViews: pageViews,
	}, nil
}

// ListenAndServe runs the HTTP server until the context ends.
//
// On cancellation, it performs a bounded shutdown so in-flight requests
// are drained before hard close.
func (s *Server) ListenAndServe(ctx context.Context) error {
	if s == nil {
		return errors.New("web server is nil")
	}
	if ctx == nil {
		return errors.New("context is required")
	}
	listener, err := net.Listen("tcp", s.httpAddr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.httpAddr, err)
	}
	return s.Serve(ctx, listener)
}

// Serve runs the HTTP server on listener until the context ends.
func (s *Server) Serve(ctx context.Context, listener net.Listener) error {
	if s == nil {
		return errors.New("web server is nil")
	}
	if ctx == nil {
		return errors.New("context is required")
	}
	if listener == nil {
		return errors.New("listener is required")
	}

	serveErr := make(chan error, 1)
	log.Printf("web listening on %s", listener.Addr())
	go func() {
		serveErr <- s.httpServer.Serve(listener)
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeouts.Shutdown)
		err := s.httpServer.Shutdown(shutdownCtx)
		cancel()
		if err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve http: %w", err)
	}
}

// Reload rebuilds the content catalog from disk.
func (s *Server) Reload(ctx context.Context) error {
	if s == nil {
		return errors.New("web server is nil")
	}
	if err := s.store.Reload(ctx); err != nil {
		return err
	}
	log.Printf("content reloaded pages=%d", s.store.Catalog().Len())
	return nil
}

// Handler exposes the root handler, mainly for in-process clients.
func (s *Server) Handler() http.Handler {
	if s == nil || s.httpServer == nil {
		return nil
	}
	return s.httpServer.Handler
}

// Close releases the page view storage.
func (s *Server) Close() {
	if s == nil {
		return
	}
	if s.pageViews != nil {
		if err := s.pageViews.Close(); err != nil {
			log.Printf("close page view storage: %v", err)
		}
	}
}
