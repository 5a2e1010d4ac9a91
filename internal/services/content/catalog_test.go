package content

import (
	"reflect"
	"strings"
	"testing"
	"testing/fstest"
	"time"
)

func marker(key, value string) string {
	return `<span id="x-` + key + `">` + value + `</span>`
}

func doc(lines ...string) *fstest.MapFile {
	return &fstest.MapFile{Data: []byte(strings.Join(lines, "\n") + "\n")}
}

func TestLoadRoundTrip(t *testing.T) {
	t.Parallel()

	fsys := fstest.MapFS{
		"x.html": doc(marker(KeyTitle, "T"), marker(KeyRel, "/x"), "A", "B"),
	}
	catalog, err := Load(fsys, LoadOptions{})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	page, ok := catalog.Lookup("/x")
	if !ok {
		t.Fatal("expected /x to be present")
	}
	want := Page{Route: "/x", Title: "T", Body: "A\nB\n"}
	if !reflect.DeepEqual(page, want) {
		t.Fatalf("page = %+v, want %+v", page, want)
	}
	if strings.Contains(page.Body, "x-") {
		t.Fatalf("body still contains marker: %q", page.Body)
	}
}

func TestLoadAllMetadata(t *testing.T) {
	t.Parallel()

	fsys := fstest.MapFS{
		"docs/intro.htm": doc(
			marker(KeyRel, "docs/intro/"),
			marker(KeyTitle, "Intro"),
			marker(KeyDescription, "Start here"),
			marker(KeyKeywords, "intro, start"),
			marker(KeyNoIndex, "true"),
			"<p>Hello</p>",
		),
	}
	catalog, err := Load(fsys, LoadOptions{})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	page, ok := catalog.Lookup("/docs/intro")
	if !ok {
		t.Fatal("expected /docs/intro to be present")
	}
	want := Page{
		Route:       "/docs/intro",
		Title:       "Intro",
		Description: "Start here",
		Keywords:    "intro, start",
		Body:        "<p>Hello</p>\n",
		NoIndex:     true,
	}
	if !reflect.DeepEqual(page, want) {
		t.Fatalf("page = %+v, want %+v", page, want)
	}
}

func TestLoadNormalizesLookups(t *testing.T) {
	t.Parallel()

	fsys := fstest.MapFS{
		"index.html": doc(marker(KeyRel, "/"), "home"),
		"x.html":     doc(marker(KeyRel, "/x"), "x"),
	}
	catalog, err := Load(fsys, LoadOptions{})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	for _, raw := range []string{"/x/", "/x", "x"} {
		page, ok := catalog.Lookup(raw)
		if !ok || page.Route != "/x" {
			t.Fatalf("Lookup(%q) = %q (ok=%t), want /x", raw, page.Route, ok)
		}
	}
	for _, raw := range []string{"", "/"} {
		page, ok := catalog.Lookup(raw)
		if !ok || page.Route != "/" {
			t.Fatalf("Lookup(%q) = %q (ok=%t), want /", raw, page.Route, ok)
		}
	}
}

func TestLoadExcludesDocumentsWithoutRel(t *testing.T) {
	t.Parallel()

	var logged []string
	fsys := fstest.MapFS{
		"orphan.html": doc(marker(KeyTitle, "Orphan"), "secret body"),
		"kept.html":   doc(marker(KeyRel, "/kept"), "kept body"),
	}
	catalog, err := Load(fsys, LoadOptions{
		Logf: func(format string, args ...any) {
			logged = append(logged, format)
		},
	})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got := catalog.Routes(); !reflect.DeepEqual(got, []string{"/kept"}) {
		t.Fatalf("routes = %v, want [/kept]", got)
	}
	for _, raw := range []string{"", "/", "orphan", "/orphan", "orphan.html", "/Orphan"} {
		if page, ok := catalog.Lookup(raw); ok {
			t.Fatalf("Lookup(%q) returned %+v for a document without rel", raw, page)
		}
	}
	for _, raw := range catalog.Routes() {
		page, _ := catalog.Lookup(raw)
		if page.Title == "Orphan" || strings.Contains(page.Body, "secret body") {
			t.Fatalf("orphan document leaked through route %q", raw)
		}
	}
	if got := catalog.Skipped(); !reflect.DeepEqual(got, []string{"orphan.html"}) {
		t.Fatalf("skipped = %v, want [orphan.html]", got)
	}
	if len(logged) != 1 {
		t.Fatalf("logged %d reports, want 1", len(logged))
	}
}

func TestLoadFirstDocumentWinsDuplicateRoute(t *testing.T) {
	t.Parallel()

	fsys := fstest.MapFS{
		"a.html": doc(marker(KeyRel, "/dup"), marker(KeyTitle, "A")),
		"b.html": doc(marker(KeyRel, "/dup/"), marker(KeyTitle, "B")),
	}
	catalog, err := Load(fsys, LoadOptions{})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	page, ok := catalog.Lookup("/dup")
	if !ok || page.Title != "A" {
		t.Fatalf("Lookup(/dup) title = %q (ok=%t), want A", page.Title, ok)
	}
	if catalog.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", catalog.Len())
	}
}

func TestLoadSkipsHiddenAndUnrecognizedFiles(t *testing.T) {
	t.Parallel()

	fsys := fstest.MapFS{
		".draft.html":      doc(marker(KeyRel, "/draft")),
		".git/page.html":   doc(marker(KeyRel, "/git")),
		"notes.txt":        doc(marker(KeyRel, "/notes")),
		"nested/deep.HTML": doc(marker(KeyRel, "/deep")),
		"nested/style.css": doc("body{}"),
	}
	catalog, err := Load(fsys, LoadOptions{})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got := catalog.Routes(); !reflect.DeepEqual(got, []string{"/deep"}) {
		t.Fatalf("routes = %v, want [/deep]", got)
	}
}

func TestLoadCustomExtensionsAndSanitize(t *testing.T) {
	t.Parallel()

	fsys := fstest.MapFS{
		"page.md": doc(marker(KeyRel, "/md"), "raw"),
	}
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	catalog, err := Load(fsys, LoadOptions{
		Extensions: []string{".md"},
		Sanitize:   strings.ToUpper,
		Now:        func() time.Time { return now },
	})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	page, ok := catalog.Lookup("/md")
	if !ok {
		t.Fatal("expected /md to be present")
	}
	if page.Body != "RAW\n" {
		t.Fatalf("body = %q, want %q", page.Body, "RAW\n")
	}
	if !catalog.BuiltAt().Equal(now) {
		t.Fatalf("BuiltAt() = %v, want %v", catalog.BuiltAt(), now)
	}
}

func TestLoadRequiresSource(t *testing.T) {
	t.Parallel()

	if _, err := Load(nil, LoadOptions{}); err == nil {
		t.Fatal("expected error for nil source")
	}
}

func TestNilCatalogIsEmpty(t *testing.T) {
	t.Parallel()

	var catalog *Catalog
	if _, ok := catalog.Lookup("/"); ok {
		t.Fatal("expected nil catalog lookup miss")
	}
	if catalog.Len() != 0 || catalog.Routes() != nil || catalog.Skipped() != nil {
		t.Fatal("expected nil catalog to report empty state")
	}
}
