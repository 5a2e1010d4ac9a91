// Package sitemenu loads the site navigation menu and resolves which entry is
// active for a route.
package sitemenu

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"github.com/louisbranch/pagesync/internal/services/shared/route"
)

// Item is one navigation entry.
type Item struct {
	Label string `yaml:"label" json:"label"`
	Route string `yaml:"route" json:"route"`
}

type file struct {
	Items []Item `yaml:"items"`
}

// Load parses a YAML menu document.
func Load(data []byte) ([]Item, error) {
	var parsed file
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&parsed); err != nil {
		if len(bytes.TrimSpace(data)) == 0 {
			return nil, nil
		}
		return nil, fmt.Errorf("parse menu: %w", err)
	}
	items := make([]Item, 0, len(parsed.Items))
	for idx, item := range parsed.Items {
		if strings.TrimSpace(item.Route) == "" {
			return nil, fmt.Errorf("menu item %d: route is required", idx)
		}
		item.Route = route.Normalize(item.Route)
		item.Label = strings.TrimSpace(item.Label)
		if item.Label == "" {
			item.Label = DefaultLabel(item.Route)
		}
		items = append(items, item)
	}
	return items, nil
}

// LoadFile reads and parses a YAML menu file.
func LoadFile(path string) ([]Item, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read menu: %w", err)
	}
	return Load(data)
}

// FromRoutes builds a menu from the root and every top-level route.
func FromRoutes(routes []string) []Item {
	items := []Item{}
	seen := map[string]bool{}
	for _, raw := range routes {
		key := route.Normalize(raw)
		if key != route.Root && strings.Count(key, "/") > 1 {
			continue
		}
		if seen[key] {
			continue
		}
		seen[key] = true
		item := Item{Label: DefaultLabel(key), Route: key}
		if key == route.Root {
			items = append([]Item{item}, items...)
			continue
		}
		items = append(items, item)
	}
	return items
}

// DefaultLabel derives a display label from the last segment of a route.
func DefaultLabel(raw string) string {
	key := route.Normalize(raw)
	if key == route.Root {
		return "Home"
	}
	segment := key[strings.LastIndex(key, "/")+1:]
	segment = strings.NewReplacer("-", " ", "_", " ").Replace(segment)
	return cases.Title(language.English).String(strings.TrimSpace(segment))
}

// Active returns the route of the menu entry matching current, or "" when
// none does. The root entry only matches the root route; other entries match
// themselves and their descendants, longest route first.
func Active(items []Item, current string) string {
	current = route.Normalize(current)
	best := ""
	for _, item := range items {
		candidate := route.Normalize(item.Route)
		if !matches(candidate, current) {
			continue
		}
		if len(candidate) > len(best) {
			best = candidate
		}
	}
	return best
}

func matches(item, current string) bool {
	if item == route.Root {
		return current == route.Root
	}
	return current == item || strings.HasPrefix(current, item+"/")
}
