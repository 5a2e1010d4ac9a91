package content

import (
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/louisbranch/pagesync/internal/services/shared/route"
)

// DefaultExtensions lists the file extensions recognized as content documents.
var DefaultExtensions = []string{".html", ".htm"}

// LoadOptions tunes how a catalog is built from a source tree.
type LoadOptions struct {
	// Extensions overrides DefaultExtensions. Matching is case-insensitive.
	Extensions []string
	// Sanitize post-processes every page body after markers are stripped.
	Sanitize func(string) string
	// Logf receives reports about skipped documents. Nil discards them.
	Logf func(format string, args ...any)
	// Now stamps the catalog build time. Defaults to time.Now.
	Now func() time.Time
}

// Catalog is an immutable route-keyed set of pages.
type Catalog struct {
	pages   map[string]Page
	skipped []string
	builtAt time.Time
	build   uint64
}

// Lookup normalizes rawRoute and returns the page keyed by it.
func (c *Catalog) Lookup(rawRoute string) (Page, bool) {
	if c == nil {
		return Page{}, false
	}
	page, ok := c.pages[route.Normalize(rawRoute)]
	return page, ok
}

// Routes returns every route in the catalog in ascending order.
func (c *Catalog) Routes() []string {
	if c == nil {
		return nil
	}
	routes := make([]string, 0, len(c.pages))
	for key := range c.pages {
		routes = append(routes, key)
	}
	sort.Strings(routes)
	return routes
}

// Len reports how many pages the catalog holds.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.pages)
}

// Skipped returns the source paths left out for lacking a rel marker.
func (c *Catalog) Skipped() []string {
	if c == nil {
		return nil
	}
	return append([]string(nil), c.skipped...)
}

// BuiltAt reports when the catalog was constructed.
func (c *Catalog) BuiltAt() time.Time {
	if c == nil {
		return time.Time{}
	}
	return c.builtAt
}

// Load walks fsys and builds a new catalog from every recognized document.
//
// Documents are visited in lexical path order. When two documents claim the
// same route the first one wins.
func Load(fsys fs.FS, opts LoadOptions) (*Catalog, error) {
	if fsys == nil {
		return nil, fmt.Errorf("content source is required")
	}
	extensions := opts.Extensions
	if len(extensions) == 0 {
		extensions = DefaultExtensions
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	logf := opts.Logf
	if logf == nil {
		logf = func(string, ...any) {}
	}

	catalog := &Catalog{pages: make(map[string]Page)}
	owners := make(map[string]string)
	err := fs.WalkDir(fsys, ".", func(filePath string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if filePath != "." && strings.HasPrefix(entry.Name(), ".") {
			if entry.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if entry.IsDir() || !hasExtension(entry.Name(), extensions) {
			return nil
		}

		doc, err := readDocument(fsys, filePath)
		if err != nil {
			return err
		}
		if !doc.hasRel {
			catalog.skipped = append(catalog.skipped, filePath)
			logf("content document skipped path=%s reason=missing_rel", filePath)
			return nil
		}

		page := doc.page
		page.Route = route.Normalize(doc.rel)
		if owner, taken := owners[page.Route]; taken {
			logf("content document skipped path=%s reason=duplicate_route route=%s owner=%s", filePath, page.Route, owner)
			return nil
		}
		if opts.Sanitize != nil {
			page.Body = opts.Sanitize(page.Body)
		}
		owners[page.Route] = filePath
		catalog.pages[page.Route] = page
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("load content: %w", err)
	}
	catalog.builtAt = now()
	return catalog, nil
}

func readDocument(fsys fs.FS, filePath string) (document, error) {
	file, err := fsys.Open(filePath)
	if err != nil {
		return document{}, fmt.Errorf("open %s: %w", filePath, err)
	}
	defer file.Close()

	doc, err := parseDocument(file)
	if err != nil {
		return document{}, fmt.Errorf("parse %s: %w", filePath, err)
	}
	return doc, nil
}

func hasExtension(name string, extensions []string) bool {
	ext := strings.ToLower(path.Ext(name))
	for _, candidate := range extensions {
		if ext == strings.ToLower(candidate) {
			return true
		}
	}
	return false
}
