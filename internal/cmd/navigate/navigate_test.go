package navigate

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"net/http/httptest"
	"reflect"
	"testing"
	"testing/fstest"

	"github.com/louisbranch/pagesync/internal/services/content"
	"github.com/louisbranch/pagesync/internal/services/navigator"
	"github.com/louisbranch/pagesync/internal/services/web"
)

func TestParseConfigDefaults(t *testing.T) {
	fs := flag.NewFlagSet("navigate", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, nil)
	if err != nil {
		t.Fatalf("ParseConfig() error = %v", err)
	}
	if cfg.BaseURL != "http://localhost:8080/" {
		t.Fatalf("BaseURL = %q, want %q", cfg.BaseURL, "http://localhost:8080/")
	}
	if cfg.policy != navigator.FailureDiscardStale {
		t.Fatalf("policy = %v, want %v", cfg.policy, navigator.FailureDiscardStale)
	}
	if !cfg.Analytics {
		t.Fatal("Analytics = false, want true")
	}
	if len(cfg.Links) != 0 {
		t.Fatalf("Links = %v, want none", cfg.Links)
	}
}

func TestParseConfigFlagsAndLinks(t *testing.T) {
	fs := flag.NewFlagSet("navigate", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, []string{"-base", "http://example.test/site/", "-policy", "apply-always", "-sequential", "a", "/site/b"})
	if err != nil {
		t.Fatalf("ParseConfig() error = %v", err)
	}
	if cfg.BaseURL != "http://example.test/site/" {
		t.Fatalf("BaseURL = %q, want %q", cfg.BaseURL, "http://example.test/site/")
	}
	if cfg.policy != navigator.FailureApplyAlways {
		t.Fatalf("policy = %v, want %v", cfg.policy, navigator.FailureApplyAlways)
	}
	if !cfg.Sequential {
		t.Fatal("Sequential = false, want true")
	}
	if want := []string{"a", "/site/b"}; !reflect.DeepEqual(cfg.Links, want) {
		t.Fatalf("Links = %v, want %v", cfg.Links, want)
	}
}

func TestParseConfigUsageErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{name: "unknown policy", args: []string{"-policy", "latest"}},
		{name: "empty base", args: []string{"-base", " "}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := flag.NewFlagSet("navigate", flag.ContinueOnError)
			_, err := ParseConfig(fs, tt.args)
			if !errors.Is(err, ErrUsage) {
				t.Fatalf("ParseConfig() error = %v, want ErrUsage", err)
			}
		})
	}
}

func newSite(t *testing.T) *httptest.Server {
	t.Helper()
	page := func(rel, title string) *fstest.MapFile {
		return &fstest.MapFile{Data: []byte("<span id=\"x-rel\">" + rel + "</span>\n<span id=\"x-title\">" + title + "</span>\n<p>" + title + "</p>\n")}
	}
	store, err := content.Open(context.Background(), content.Config{FS: fstest.MapFS{
		"index.html":      page("/", "Home"),
		"a.html":          page("/a", "Alpha"),
		"b.html":          page("/b", "Beta"),
		"docs.html":       page("/docs", "Docs"),
		"docs/start.html": page("/docs/start", "Start"),
	}})
	if err != nil {
		t.Fatalf("content.Open() error = %v", err)
	}
	handler, err := web.NewHandler(web.Dependencies{Content: store})
	if err != nil {
		t.Fatalf("NewHandler() error = %v", err)
	}
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func TestNavigateSequential(t *testing.T) {
	t.Parallel()

	srv := newSite(t)
	result, err := Navigate(context.Background(), Config{
		BaseURL:    srv.URL + "/",
		Analytics:  true,
		Sequential: true,
		Links:      []string{"a", "/b", "missing"},
	})
	if err != nil {
		t.Fatalf("Navigate() error = %v", err)
	}

	outcomes := make([]string, 0, len(result.Requests))
	for _, req := range result.Requests {
		outcomes = append(outcomes, req.Route+"="+req.Outcome)
	}
	want := []string{"/=applied", "/a=applied", "/b=applied", "/missing=failed"}
	if !reflect.DeepEqual(outcomes, want) {
		t.Fatalf("outcomes = %v, want %v", outcomes, want)
	}
	if result.Location != srv.URL+"/missing" {
		t.Fatalf("Location = %q, want %q", result.Location, srv.URL+"/missing")
	}
	if result.Document.Fallbacks != 1 || len(result.Document.History) != 3 {
		t.Fatalf("document = %+v", result.Document)
	}
}

func TestNavigateHighlightsParentMenuEntry(t *testing.T) {
	t.Parallel()

	srv := newSite(t)
	result, err := Navigate(context.Background(), Config{
		BaseURL:    srv.URL + "/",
		Sequential: true,
		Links:      []string{"/docs/start"},
	})
	if err != nil {
		t.Fatalf("Navigate() error = %v", err)
	}
	if result.Document.Highlighted != "/docs" {
		t.Fatalf("Highlighted = %q, want %q", result.Document.Highlighted, "/docs")
	}
	if len(result.Document.Menu) == 0 {
		t.Fatal("expected the server menu to be loaded")
	}
	if result.Document.Title != "Start" {
		t.Fatalf("Title = %q, want %q", result.Document.Title, "Start")
	}
}

func TestNavigateConcurrentEndsOnLastLink(t *testing.T) {
	t.Parallel()

	srv := newSite(t)
	result, err := Navigate(context.Background(), Config{
		BaseURL: srv.URL + "/",
		Links:   []string{"a", "b"},
	})
	if err != nil {
		t.Fatalf("Navigate() error = %v", err)
	}
	if result.Document.Title != "Beta" {
		t.Fatalf("Title = %q, want %q", result.Document.Title, "Beta")
	}
	if last := result.Requests[len(result.Requests)-1]; last.Outcome != "applied" {
		t.Fatalf("last request = %+v, want applied", last)
	}
}

func TestNavigateRejectsExternalLink(t *testing.T) {
	t.Parallel()

	srv := newSite(t)
	_, err := Navigate(context.Background(), Config{
		BaseURL: srv.URL + "/",
		Links:   []string{"https://elsewhere.test/"},
	})
	if !errors.Is(err, navigator.ErrExternalLink) {
		t.Fatalf("Navigate() error = %v, want ErrExternalLink", err)
	}
}

func TestRunWritesJSON(t *testing.T) {
	t.Setenv("PAGESYNC_OTEL_ENABLED", "false")

	srv := newSite(t)
	var out bytes.Buffer
	if err := Run(context.Background(), Config{BaseURL: srv.URL + "/", Links: []string{"a"}}, &out); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	var result Result
	if err := json.NewDecoder(&out).Decode(&result); err != nil {
		t.Fatalf("decode output: %v", err)
	}
	if result.Document.Title != "Alpha" {
		t.Fatalf("Title = %q, want %q", result.Document.Title, "Alpha")
	}
}
