package navigator

import (
	"testing"

	"github.com/louisbranch/pagesync/internal/services/shared/contentwire"
	"github.com/louisbranch/pagesync/internal/services/shared/sitemenu"
)

func TestDocumentRecordsViewCalls(t *testing.T) {
	t.Parallel()

	doc := NewDocument(DocumentState{Title: "Start", History: []string{"http://pages.test/"}})
	doc.BeginTransition()
	doc.Highlight("/a")
	doc.SetTitle("A")
	doc.ReplaceContent("<p>a</p>")
	doc.SetNoIndex(true)
	doc.ClearTransition()
	doc.ScrollToTop()
	doc.Push("http://pages.test/a")

	state := doc.Snapshot()
	if state.Title != "A" || state.Content != "<p>a</p>" || !state.NoIndex {
		t.Fatalf("state = %+v", state)
	}
	if state.Transitioning {
		t.Fatal("expected transition to be cleared")
	}
	if state.ScrollResets != 1 || state.Highlighted != "/a" {
		t.Fatalf("state = %+v", state)
	}
	if len(state.History) != 2 || state.History[1] != "http://pages.test/a" {
		t.Fatalf("history = %v", state.History)
	}

	state.History[0] = "mutated"
	if doc.Snapshot().History[0] != "http://pages.test/" {
		t.Fatal("snapshot history must be a copy")
	}
}

func TestDocumentShowFallback(t *testing.T) {
	t.Parallel()

	doc := NewDocument(DocumentState{})
	doc.BeginTransition()
	doc.ShowFallback()

	state := doc.Snapshot()
	if state.Title != contentwire.FallbackTitle || state.Content != contentwire.FallbackHTML {
		t.Fatalf("state = %+v, want fallback", state)
	}
	if state.Transitioning || state.Fallbacks != 1 || !state.NoIndex {
		t.Fatalf("state = %+v", state)
	}
}

func TestDocumentHighlightResolvesMenuEntry(t *testing.T) {
	t.Parallel()

	doc := NewDocument(DocumentState{})
	doc.SetMenu([]sitemenu.Item{
		{Label: "Home", Route: "/"},
		{Label: "Docs", Route: "/docs"},
		{Label: "Blog", Route: "/blog"},
	})

	tests := []struct {
		route string
		want  string
	}{
		{route: "/", want: "/"},
		{route: "/docs", want: "/docs"},
		{route: "/docs/start", want: "/docs"},
		{route: "/docsearch", want: ""},
		{route: "/about", want: ""},
	}
	for _, tc := range tests {
		doc.Highlight(tc.route)
		if got := doc.Snapshot().Highlighted; got != tc.want {
			t.Fatalf("Highlight(%q) = %q, want %q", tc.route, got, tc.want)
		}
	}

	state := doc.Snapshot()
	state.Menu[0].Label = "mutated"
	if doc.Snapshot().Menu[0].Label != "Home" {
		t.Fatal("snapshot menu must be a copy")
	}
}
