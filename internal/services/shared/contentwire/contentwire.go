// Package contentwire defines the JSON contract between the navigation client
// and the content endpoint.
//
// The client posts a Request naming a route. The server answers 200 with a
// Page, or 200 with the literal JSON null when no page exists for the route.
// Every other response is a transport failure.
package contentwire

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/louisbranch/pagesync/internal/services/content"
)

// Endpoint is the fixed content-fetch path.
const Endpoint = "/api/content"

// PageViewEndpoint receives analytics page views.
const PageViewEndpoint = "/api/pageviews"

// MenuEndpoint serves the site menu.
const MenuEndpoint = "/api/menu"

// MaxRequestBytes bounds the size of a content request body.
const MaxRequestBytes = 4 << 10

// Fallback content shown when a page cannot be delivered.
const (
	FallbackTitle = "Page not found"
	FallbackHTML  = `<section class="page-fallback"><h1>Page not found</h1><p>The page you asked for could not be loaded.</p></section>`
)

// ErrMalformed reports a payload that is not a valid wire message.
var ErrMalformed = errors.New("malformed content payload")

// Request asks for the page at Route, the client's relative path.
type Request struct {
	Route string `json:"route"`
}

// Page is the success payload for a content request.
type Page struct {
	Title       string `json:"title"`
	HTML        string `json:"html"`
	Keywords    string `json:"keywords"`
	Description string `json:"description"`
	NoIndex     bool   `json:"noIndex,omitempty"`
}

// PageView is one analytics hit recorded after a navigation is applied.
type PageView struct {
	Path  string `json:"path"`
	Title string `json:"title"`
}

// FromPage maps a content record to its wire payload.
func FromPage(page content.Page) *Page {
	return &Page{
		Title:       page.Title,
		HTML:        page.Body,
		Keywords:    page.Keywords,
		Description: page.Description,
		NoIndex:     page.NoIndex,
	}
}

// DecodeRequest reads one content request.
func DecodeRequest(r io.Reader) (Request, error) {
	var req Request
	decoder := json.NewDecoder(io.LimitReader(r, MaxRequestBytes))
	if err := decoder.Decode(&req); err != nil {
		return Request{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return req, nil
}

// DecodePage reads a response body. A JSON null yields a nil page and no error.
func DecodePage(r io.Reader) (*Page, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read content payload: %w", err)
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: empty body", ErrMalformed)
	}
	if bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}
	if raw[0] != '{' {
		return nil, fmt.Errorf("%w: expected object", ErrMalformed)
	}
	var page Page
	if err := json.Unmarshal(raw, &page); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return &page, nil
}
