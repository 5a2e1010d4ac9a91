package domain

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/louisbranch/pagesync/internal/services/content"
	"github.com/louisbranch/pagesync/internal/services/shared/route"
)

// PageSource is the read side of the content store.
type PageSource interface {
	Get(ctx context.Context, route string) (content.Page, bool, error)
	Routes(ctx context.Context) ([]string, error)
}

// PageGetInput represents the MCP tool input for a page lookup.
type PageGetInput struct {
	Route string `json:"route" jsonschema:"page route, e.g. /docs/intro"`
}

// PageGetResult represents a looked up page. Found is false when no page
// exists for the route.
type PageGetResult struct {
	Route       string `json:"route"`
	Found       bool   `json:"found"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	Keywords    string `json:"keywords,omitempty"`
	HTML        string `json:"html,omitempty"`
	NoIndex     bool   `json:"noindex,omitempty"`
}

// PageListInput represents the MCP tool input for listing routes.
type PageListInput struct {
	Prefix string `json:"prefix,omitempty" jsonschema:"only list routes starting with this prefix"`
}

// PageListResult lists known routes in ascending order.
type PageListResult struct {
	Routes []string `json:"routes"`
}

// PageGetTool defines the MCP tool schema for page lookups.
func PageGetTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "page_get",
		Description: "Returns the page stored for a route",
	}
}

// PageListTool defines the MCP tool schema for route listings.
func PageListTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "page_list",
		Description: "Lists the routes of every stored page",
	}
}

// PageGetHandler resolves a route against source.
func PageGetHandler(source PageSource) mcp.ToolHandlerFor[PageGetInput, PageGetResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input PageGetInput) (*mcp.CallToolResult, PageGetResult, error) {
		if source == nil {
			return nil, PageGetResult{}, fmt.Errorf("page source is not configured")
		}
		key := route.Normalize(input.Route)
		page, ok, err := source.Get(ctx, key)
		if err != nil {
			return nil, PageGetResult{}, fmt.Errorf("page get failed: %w", err)
		}
		if !ok {
			return &mcp.CallToolResult{}, PageGetResult{Route: key}, nil
		}
		return &mcp.CallToolResult{}, PageGetResult{
			Route:       page.Route,
			Found:       true,
			Title:       page.Title,
			Description: page.Description,
			Keywords:    page.Keywords,
			HTML:        page.Body,
			NoIndex:     page.NoIndex,
		}, nil
	}
}

// PageListHandler lists routes from source.
func PageListHandler(source PageSource) mcp.ToolHandlerFor[PageListInput, PageListResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input PageListInput) (*mcp.CallToolResult, PageListResult, error) {
		if source == nil {
			return nil, PageListResult{}, fmt.Errorf("page source is not configured")
		}
		routes, err := source.Routes(ctx)
		if err != nil {
			return nil, PageListResult{}, fmt.Errorf("page list failed: %w", err)
		}
		prefix := strings.TrimSpace(input.Prefix)
		result := PageListResult{Routes: make([]string, 0, len(routes))}
		for _, r := range routes {
			if prefix != "" && !strings.HasPrefix(r, prefix) {
				continue
			}
			result.Routes = append(result.Routes, r)
		}
		return &mcp.CallToolResult{}, result, nil
	}
}
