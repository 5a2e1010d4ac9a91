package navigator

import (
	"sync"

	"github.com/louisbranch/pagesync/internal/services/shared/contentwire"
	"github.com/louisbranch/pagesync/internal/services/shared/sitemenu"
)

// DocumentState is a point-in-time copy of a Document.
type DocumentState struct {
	Title         string          `json:"title"`
	Content       string          `json:"content"`
	NoIndex       bool            `json:"noIndex"`
	Transitioning bool            `json:"transitioning"`
	ScrollResets  int             `json:"scrollResets"`
	Fallbacks     int             `json:"fallbacks"`
	Highlighted   string          `json:"highlighted"`
	History       []string        `json:"history"`
	// Menu is the site menu Highlight resolves against.
	Menu          []sitemenu.Item `json:"menu,omitempty"`
}

// Document is an in-memory View, History and Menu.
type Document struct {
	mu    sync.Mutex
	state DocumentState
}

// NewDocument returns a Document showing initial.
func NewDocument(initial DocumentState) *Document {
	initial.History = append([]string(nil), initial.History...)
	initial.Menu = append([]sitemenu.Item(nil), initial.Menu...)
	return &Document{state: initial}
}

// Snapshot copies the current state.
func (d *Document) Snapshot() DocumentState {
	d.mu.Lock()
	defer d.mu.Unlock()
	state := d.state
	state.History = append([]string(nil), d.state.History...)
	state.Menu = append([]sitemenu.Item(nil), d.state.Menu...)
	return state
}

func (d *Document) BeginTransition() {
	d.mu.Lock()
	d.state.Transitioning = true
	d.mu.Unlock()
}

func (d *Document) SetTitle(title string) {
	d.mu.Lock()
	d.state.Title = title
	d.mu.Unlock()
}

func (d *Document) ReplaceContent(html string) {
	d.mu.Lock()
	d.state.Content = html
	d.mu.Unlock()
}

func (d *Document) SetNoIndex(noIndex bool) {
	d.mu.Lock()
	d.state.NoIndex = noIndex
	d.mu.Unlock()
}

func (d *Document) ClearTransition() {
	d.mu.Lock()
	d.state.Transitioning = false
	d.mu.Unlock()
}

func (d *Document) ScrollToTop() {
	d.mu.Lock()
	d.state.ScrollResets++
	d.mu.Unlock()
}

// ShowFallback replaces the page with the fixed fallback content.
func (d *Document) ShowFallback() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.state.Title = contentwire.FallbackTitle
	d.state.Content = contentwire.FallbackHTML
	d.state.NoIndex = true
	d.state.Transitioning = false
	d.state.Fallbacks++
}

// Push appends a history entry.
func (d *Document) Push(url string) {
	d.mu.Lock()
	d.state.History = append(d.state.History, url)
	d.mu.Unlock()
}

// SetMenu replaces the site menu.
func (d *Document) SetMenu(items []sitemenu.Item) {
	d.mu.Lock()
	d.state.Menu = append([]sitemenu.Item(nil), items...)
	d.mu.Unlock()
}

// Highlight marks the menu entry matching route as active, the same way the
// server marks its nav. Without a menu the route itself is highlighted.
func (d *Document) Highlight(route string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.state.Menu) == 0 {
		d.state.Highlighted = route
		return
	}
	d.state.Highlighted = sitemenu.Active(d.state.Menu, route)
}

var (
	_ View    = (*Document)(nil)
	_ History = (*Document)(nil)
	_ Menu    = (*Document)(nil)
)
