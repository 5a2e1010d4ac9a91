package content

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
)

// Marker keys recognized in content documents.
const (
	KeyTitle       = "title"
	KeyDescription = "description"
	KeyKeywords    = "keywords"
	KeyRel         = "rel"
	KeyNoIndex     = "noindex"
)

const markerIDPrefix = "x-"

var recognizedKeys = map[string]struct{}{
	KeyTitle:       {},
	KeyDescription: {},
	KeyKeywords:    {},
	KeyRel:         {},
	KeyNoIndex:     {},
}

// document is the parse result of one source file before it is keyed by route.
type document struct {
	rel     string
	hasRel  bool
	page    Page
	markers int
}

// parseDocument reads r line by line, splitting metadata markers from body lines.
func parseDocument(r io.Reader) (document, error) {
	var (
		doc  document
		body strings.Builder
	)
	reader := bufio.NewReader(r)
	for {
		line, err := reader.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return document{}, fmt.Errorf("read line: %w", err)
		}
		if line == "" && err != nil {
			break
		}
		line = strings.TrimSuffix(line, "\n")
		line = strings.TrimSuffix(line, "\r")

		if key, value, ok := parseMarker(line); ok {
			doc.apply(key, value)
		} else {
			body.WriteString(line)
			body.WriteByte('\n')
		}
		if err != nil {
			break
		}
	}
	doc.page.Body = body.String()
	return doc, nil
}

func (d *document) apply(key, value string) {
	d.markers++
	switch key {
	case KeyTitle:
		d.page.Title = value
	case KeyDescription:
		d.page.Description = value
	case KeyKeywords:
		d.page.Keywords = value
	case KeyRel:
		d.rel = value
		d.hasRel = true
	case KeyNoIndex:
		d.page.NoIndex = parseFlag(value)
	}
}

// parseMarker reports whether line is exactly one marker element
// <tag id="x-KEY">VALUE</tag> with a recognized key.
func parseMarker(line string) (key string, value string, ok bool) {
	trimmed := strings.TrimSpace(line)
	if !strings.HasPrefix(trimmed, "<") || !strings.HasSuffix(trimmed, ">") {
		return "", "", false
	}

	z := html.NewTokenizer(strings.NewReader(trimmed))
	if z.Next() != html.StartTagToken {
		return "", "", false
	}
	start := z.Token()
	key, ok = markerKey(start.Attr)
	if !ok {
		return "", "", false
	}

	var text strings.Builder
	for {
		switch z.Next() {
		case html.TextToken:
			text.Write(z.Text())
		case html.EndTagToken:
			name, _ := z.TagName()
			if string(name) != start.Data {
				return "", "", false
			}
			if z.Next() != html.ErrorToken || !errors.Is(z.Err(), io.EOF) {
				return "", "", false
			}
			return key, strings.TrimSpace(text.String()), true
		default:
			return "", "", false
		}
	}
}

func markerKey(attrs []html.Attribute) (string, bool) {
	for _, attr := range attrs {
		if attr.Key != "id" {
			continue
		}
		id := strings.ToLower(strings.TrimSpace(attr.Val))
		if !strings.HasPrefix(id, markerIDPrefix) {
			return "", false
		}
		key := strings.TrimPrefix(id, markerIDPrefix)
		if _, known := recognizedKeys[key]; !known {
			return "", false
		}
		return key, true
	}
	return "", false
}

func parseFlag(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}
