// Package httpmux mounts the web route groups onto a root mux.
package httpmux

import (
	"io/fs"
	"net/http"
)

// APIPrefix is the root of every JSON endpoint.
const APIPrefix = "/api/"

// MountStatic wires the shared static route into the root mux.
func MountStatic(rootMux *http.ServeMux, staticFS fs.FS, withStaticMime func(http.Handler) http.Handler) {
	if rootMux == nil || staticFS == nil {
		return
	}
	staticHandler := http.StripPrefix("/static/", http.FileServer(http.FS(staticFS)))
	if withStaticMime != nil {
		staticHandler = withStaticMime(staticHandler)
	}
	rootMux.Handle("/static/", staticHandler)
}

// MountAPIAndPages wires the API group under /api/ and sends every other
// path to pages. Unknown API paths never fall through to pages.
func MountAPIAndPages(rootMux *http.ServeMux, apiMux *http.ServeMux, pages http.Handler) {
	if rootMux == nil {
		return
	}
	if apiMux != nil {
		rootMux.Handle(APIPrefix, apiMux)
	}
	if pages != nil {
		rootMux.Handle("/", pages)
	}
}
