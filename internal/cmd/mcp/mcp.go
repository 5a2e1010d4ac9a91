// Package mcp parses MCP command flags and serves the content tools on stdio.
package mcp

import (
	"context"
	"flag"
	"log"

	entrypoint "github.com/louisbranch/pagesync/internal/platform/cmd"
	"github.com/louisbranch/pagesync/internal/platform/config"
	mcpservice "github.com/louisbranch/pagesync/internal/services/mcp/service"
)

// Config holds MCP command configuration.
type Config struct {
	ContentDir string `env:"PAGESYNC_CONTENT_DIR"        envDefault:"content"`
	Live       bool   `env:"PAGESYNC_CONTENT_LIVE"`
	Extensions string `env:"PAGESYNC_CONTENT_EXTENSIONS"`
	Sanitize   bool   `env:"PAGESYNC_CONTENT_SANITIZE"   envDefault:"true"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}

	fs.StringVar(&cfg.ContentDir, "content-dir", cfg.ContentDir, "Content document directory")
	fs.BoolVar(&cfg.Live, "live", cfg.Live, "Rebuild the catalog before every lookup")
	fs.StringVar(&cfg.Extensions, "extensions", cfg.Extensions, "Comma-separated content file extensions")
	fs.BoolVar(&cfg.Sanitize, "sanitize", cfg.Sanitize, "Sanitize page bodies at load time")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run starts the MCP protocol adapter on stdio.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceMCP, func(ctx context.Context) error {
		return mcpservice.Run(ctx, mcpservice.Config{
			ContentDir: cfg.ContentDir,
			Live:       cfg.Live,
			Extensions: config.SplitList(cfg.Extensions),
			Sanitize:   cfg.Sanitize,
			Logf: func(format string, args ...any) {
				log.Printf("content "+format, args...)
			},
		})
	})
}
