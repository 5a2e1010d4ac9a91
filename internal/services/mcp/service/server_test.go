package service

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/louisbranch/pagesync/internal/services/content"
)

func TestNewServerRequiresSource(t *testing.T) {
	t.Parallel()

	if _, err := NewServer(nil); err == nil {
		t.Fatal("expected error for nil source")
	}
}

func TestServeListsToolsAndStops(t *testing.T) {
	t.Parallel()

	store, err := content.Open(context.Background(), content.Config{FS: fstest.MapFS{
		"a.html": {Data: []byte("<span id=\"x-rel\">/a</span>\n<span id=\"x-title\">A</span>\nbody\n")},
	}})
	if err != nil {
		t.Fatalf("content.Open() error = %v", err)
	}
	server, err := NewServer(store)
	if err != nil {
		t.Fatalf("NewServer() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	serverTransport, clientTransport := mcp.NewInMemoryTransports()
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- server.serveWithTransport(ctx, serverTransport)
	}()

	client := mcp.NewClient(&mcp.Implementation{Name: "client", Version: "v0.0.1"}, nil)
	clientCtx, clientCancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer clientCancel()
	session, err := client.Connect(clientCtx, clientTransport, nil)
	if err != nil {
		t.Fatalf("connect client: %v", err)
	}
	defer session.Close()

	tools, err := session.ListTools(clientCtx, nil)
	if err != nil {
		t.Fatalf("ListTools() error = %v", err)
	}
	var names []string
	for _, tool := range tools.Tools {
		names = append(names, tool.Name)
	}
	sort.Strings(names)
	if len(names) != 2 || names[0] != "page_get" || names[1] != "page_list" {
		t.Fatalf("tools = %v, want [page_get page_list]", names)
	}

	result, err := session.CallTool(clientCtx, &mcp.CallToolParams{
		Name:      "page_get",
		Arguments: map[string]any{"route": "/a"},
	})
	if err != nil {
		t.Fatalf("CallTool() error = %v", err)
	}
	if result.IsError {
		t.Fatalf("CallTool() result = %+v, want success", result)
	}

	cancel()
	select {
	case err := <-serveErr:
		if err != nil {
			t.Fatalf("serve returned error: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("serve did not stop after cancel")
	}
}

func TestServeNilServer(t *testing.T) {
	t.Parallel()

	var server *Server
	if err := server.Serve(context.Background()); err == nil {
		t.Fatal("expected error for nil server")
	}
}

func TestOpenStoreSanitizesBodies(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	doc := "<span id=\"x-rel\">/a</span>\n<p class=\"lead\">Hi<script>alert(1)</script></p>\n"
	if err := os.WriteFile(filepath.Join(dir, "a.html"), []byte(doc), 0o644); err != nil {
		t.Fatalf("write content: %v", err)
	}

	tests := []struct {
		name       string
		sanitize   bool
		wantScript bool
	}{
		{name: "sanitized", sanitize: true, wantScript: false},
		{name: "raw", sanitize: false, wantScript: true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			store, err := openStore(context.Background(), Config{ContentDir: dir, Sanitize: tc.sanitize})
			if err != nil {
				t.Fatalf("openStore() error = %v", err)
			}
			page, ok, err := store.Get(context.Background(), "/a")
			if err != nil || !ok {
				t.Fatalf("Get(/a) = %v, %v", ok, err)
			}
			if got := strings.Contains(page.Body, "<script"); got != tc.wantScript {
				t.Fatalf("body = %q, script present = %v, want %v", page.Body, got, tc.wantScript)
			}
			if !strings.Contains(page.Body, `class="lead"`) {
				t.Fatalf("body = %q, want class preserved", page.Body)
			}
		})
	}
}
