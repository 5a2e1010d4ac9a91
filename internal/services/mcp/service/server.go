package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/louisbranch/pagesync/internal/services/content"
	"github.com/louisbranch/pagesync/internal/services/mcp/domain"
)

const (
	serverName    = "pagesync MCP"
	serverVersion = "0.1.0"
)

// Config configures the content source served to MCP clients.
type Config struct {
	ContentDir string
	Live       bool
	Extensions []string
	// Sanitize runs page bodies through content.NewSanitizer at load time.
	Sanitize   bool
	Logf       func(format string, args ...any)
}

// Server exposes the content tools over an MCP transport.
type Server struct {
	mcpServer *mcp.Server
}

// Run opens the content directory and serves MCP over stdio until ctx ends.
func Run(ctx context.Context, cfg Config) error {
	store, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	server, err := NewServer(store)
	if err != nil {
		return err
	}
	return server.Serve(ctx)
}

func openStore(ctx context.Context, cfg Config) (*content.Store, error) {
	var sanitize func(string) string
	if cfg.Sanitize {
		sanitize = content.NewSanitizer()
	}
	store, err := content.Open(ctx, content.Config{
		Dir:        cfg.ContentDir,
		Live:       cfg.Live,
		Extensions: cfg.Extensions,
		Sanitize:   sanitize,
		Logf:       cfg.Logf,
	})
	if err != nil {
		return nil, fmt.Errorf("open content: %w", err)
	}
	return store, nil
}

// NewServer registers the content tools against source.
func NewServer(source domain.PageSource) (*Server, error) {
	if source == nil {
		return nil, errors.New("page source is required")
	}
	mcpServer := mcp.NewServer(&mcp.Implementation{Name: serverName, Version: serverVersion}, nil)
	mcp.AddTool(mcpServer, domain.PageGetTool(), domain.PageGetHandler(source))
	mcp.AddTool(mcpServer, domain.PageListTool(), domain.PageListHandler(source))
	return &Server{mcpServer: mcpServer}, nil
}

// Serve starts the MCP server on stdio and blocks until it stops or the context ends.
func (s *Server) Serve(ctx context.Context) error {
	return s.serveWithTransport(ctx, &mcp.StdioTransport{})
}

func (s *Server) serveWithTransport(ctx context.Context, transport mcp.Transport) error {
	if s == nil || s.mcpServer == nil {
		return fmt.Errorf("MCP server is not configured")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	err := s.mcpServer.Run(ctx, transport)
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("serve MCP: %w", err)
	}
	return nil
}
