// Package web parses web command flags and launches the content server.
package web

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	entrypoint "github.com/louisbranch/pagesync/internal/platform/cmd"
	"github.com/louisbranch/pagesync/internal/platform/config"
	"github.com/louisbranch/pagesync/internal/services/web"
)

// Config holds the web command configuration.
type Config struct {
	HTTPAddr   string `env:"PAGESYNC_WEB_HTTP_ADDR"   envDefault:"localhost:8080"`
	ContentDir string `env:"PAGESYNC_CONTENT_DIR"     envDefault:"content"`
	Live       bool   `env:"PAGESYNC_CONTENT_LIVE"`
	Extensions string `env:"PAGESYNC_CONTENT_EXTENSIONS"`
	Sanitize   bool   `env:"PAGESYNC_CONTENT_SANITIZE" envDefault:"true"`
	MenuFile   string `env:"PAGESYNC_WEB_MENU_FILE"`
	DBPath     string `env:"PAGESYNC_WEB_DB_PATH"     envDefault:"data/pagesync.db"`
	SiteName   string `env:"PAGESYNC_WEB_SITE_NAME"   envDefault:"pagesync"`
	BaseURL    string `env:"PAGESYNC_WEB_BASE_URL"`
	// TrustForwardedProto honors X-Forwarded-Proto from a fronting proxy.
	TrustForwardedProto bool `env:"PAGESYNC_WEB_TRUST_FORWARDED_PROTO"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}

	fs.StringVar(&cfg.HTTPAddr, "http-addr", cfg.HTTPAddr, "HTTP listen address")
	fs.StringVar(&cfg.ContentDir, "content-dir", cfg.ContentDir, "Content document directory")
	fs.BoolVar(&cfg.Live, "live", cfg.Live, "Rebuild the catalog before every lookup")
	fs.StringVar(&cfg.Extensions, "extensions", cfg.Extensions, "Comma-separated content file extensions")
	fs.BoolVar(&cfg.Sanitize, "sanitize", cfg.Sanitize, "Sanitize page bodies at load time")
	fs.StringVar(&cfg.MenuFile, "menu", cfg.MenuFile, "YAML site menu file")
	fs.StringVar(&cfg.DBPath, "db-path", cfg.DBPath, "SQLite page view database (empty disables)")
	fs.StringVar(&cfg.SiteName, "site-name", cfg.SiteName, "Site name used in page titles")
	fs.StringVar(&cfg.BaseURL, "base-url", cfg.BaseURL, "Public base URL used in the sitemap")
	fs.BoolVar(&cfg.TrustForwardedProto, "trust-forwarded-proto", cfg.TrustForwardedProto, "Honor X-Forwarded-Proto from a fronting proxy")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run starts the content web server. SIGHUP rebuilds the catalog.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceWeb, func(ctx context.Context) error {
		server, err := web.NewServer(ctx, web.Config{
			HTTPAddr:   cfg.HTTPAddr,
			ContentDir: cfg.ContentDir,
			Live:       cfg.Live,
			Extensions: config.SplitList(cfg.Extensions),
			Sanitize:   cfg.Sanitize,
			MenuFile:   cfg.MenuFile,
			DBPath:     cfg.DBPath,
			SiteName:   cfg.SiteName,
			BaseURL:    cfg.BaseURL,

			TrustForwardedProto: cfg.TrustForwardedProto,
		})
		if err != nil {
			return fmt.Errorf("init web server: %w", err)
		}
		defer server.Close()

		reloadCtx, stopReload := context.WithCancel(ctx)
		defer stopReload()
		go reloadOnHangup(reloadCtx, server)

		if err := server.ListenAndServe(ctx); err != nil {
			return fmt.Errorf("serve web: %w", err)
		}
		return nil
	})
}

func reloadOnHangup(ctx context.Context, server *web.Server) {
	hangup := make(chan os.Signal, 1)
	signal.Notify(hangup, syscall.SIGHUP)
	defer signal.Stop(hangup)
	for {
		select {
		case <-ctx.Done():
			return
		case <-hangup:
			if err := server.Reload(ctx); err != nil {
				log.Printf("content reload failed err=%v", err)
				continue
			}
			log.Printf("content reloaded")
		}
	}
}
