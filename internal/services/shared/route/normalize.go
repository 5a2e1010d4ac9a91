// Package route canonicalizes page routes shared by the content store, the
// web transport and the navigation client.
package route

import (
	"net/http"
	"strings"
)

// Root is the canonical route of the site index.
const Root = "/"

// Normalize converts a client-supplied path into a route key.
//
// Trailing slashes are trimmed, an empty result becomes Root, and a leading
// slash is ensured, so "/x/", "/x" and "x" all map to "/x".
func Normalize(raw string) string {
	trimmed := strings.TrimRight(strings.TrimSpace(raw), "/")
	if trimmed == "" {
		return Root
	}
	if !strings.HasPrefix(trimmed, "/") {
		trimmed = "/" + trimmed
	}
	return trimmed
}

// RedirectTrailingSlash canonicalizes request paths by stripping trailing "/" characters.
//
// It returns true when a redirect was written. Route handlers should stop further
// processing when true.
func RedirectTrailingSlash(w http.ResponseWriter, r *http.Request) bool {
	if w == nil || r == nil || r.URL == nil {
		return false
	}

	originalPath := r.URL.Path
	canonical := strings.TrimRight(originalPath, "/")
	if canonical == "" {
		canonical = Root
	}
	if canonical == originalPath {
		return false
	}

	target := canonical
	if r.URL.RawQuery != "" {
		target += "?" + r.URL.RawQuery
	}
	http.Redirect(w, r, target, http.StatusMovedPermanently)
	return true
}
