package navigator

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/louisbranch/pagesync/internal/services/shared/route"
)

// Location is the client address split into the parts navigation needs.
type Location struct {
	// Full is the absolute URL.
	Full string
	// Path is the URL path, including any base path.
	Path string
	// Route is the normalized path relative to the base path.
	Route string
}

// ParseLocation resolves href against base. Hrefs that leave base's origin
// fail with ErrExternalLink.
func ParseLocation(base *url.URL, href string) (Location, error) {
	if base == nil {
		return Location{}, fmt.Errorf("base url is required")
	}
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return Location{}, fmt.Errorf("parse href %q: %w", href, err)
	}
	resolved := base.ResolveReference(ref)
	if !strings.EqualFold(resolved.Scheme, base.Scheme) || !strings.EqualFold(resolved.Host, base.Host) {
		return Location{}, fmt.Errorf("%w: %s", ErrExternalLink, resolved.String())
	}
	resolved.Fragment = ""

	path := resolved.Path
	if path == "" {
		path = route.Root
	}
	return Location{
		Full:  resolved.String(),
		Path:  path,
		Route: relativeRoute(basePath(base), path),
	}, nil
}

func basePath(base *url.URL) string {
	return strings.TrimRight(base.Path, "/")
}

func relativeRoute(prefix, path string) string {
	if prefix != "" && (path == prefix || strings.HasPrefix(path, prefix+"/")) {
		path = strings.TrimPrefix(path, prefix)
	}
	return route.Normalize(path)
}

func joinPath(prefix, key string) string {
	if prefix == "" {
		return key
	}
	if key == route.Root {
		return prefix + "/"
	}
	return prefix + key
}
