// Package htmx renders pages either as full documents or as swappable main
// fragments for HTMX-driven navigation.
package htmx

import (
	"bytes"
	"html"
	"net/http"
	"strings"

	"github.com/a-h/templ"
)

// RequestHeaderKey is the HTMX request header used to detect partial updates.
const RequestHeaderKey = "HX-Request"

// Page describes one response that can be delivered whole or as a fragment.
type Page struct {
	// Title is injected ahead of HTMX fragments that carry no <title>.
	Title string
	// Status defaults to 200.
	Status int
	// Fragment is rendered for HTMX requests when Full is nil.
	Fragment templ.Component
	// Full is the complete document. HTMX requests receive only its <main>
	// content when Full is set.
	Full templ.Component
}

// responseBuffer captures component rendering for HTMX responses.
type responseBuffer struct {
	header      http.Header
	statusCode  int
	body        bytes.Buffer
	headerWrote bool
}

func (w *responseBuffer) Header() http.Header {
	return w.header
}

func (w *responseBuffer) WriteHeader(status int) {
	if w.headerWrote {
		return
	}
	w.headerWrote = true
	w.statusCode = status
}

func (w *responseBuffer) Write(body []byte) (int, error) {
	return w.body.Write(body)
}

// IsHTMXRequest reports whether the request was initiated by HTMX.
func IsHTMXRequest(r *http.Request) bool {
	if r == nil {
		return false
	}
	return strings.EqualFold(r.Header.Get(RequestHeaderKey), "true")
}

// TitleTag formats an escaped `<title>` element.
func TitleTag(title string) string {
	title = strings.TrimSpace(title)
	if title == "" {
		return ""
	}
	return "<title>" + html.EscapeString(title) + "</title>"
}

// Render writes page as a full document, or as a fragment for HTMX requests.
func Render(w http.ResponseWriter, r *http.Request, page Page) {
	if w == nil {
		return
	}
	status := page.Status
	if status <= 0 {
		status = http.StatusOK
	}
	w.Header().Add("Vary", RequestHeaderKey)

	if !IsHTMXRequest(r) {
		full := page.Full
		if full == nil {
			full = page.Fragment
		}
		if full == nil {
			w.WriteHeader(status)
			return
		}
		templ.Handler(full, templ.WithStatus(status)).ServeHTTP(w, r)
		return
	}

	target := page.Fragment
	fromFull := page.Full != nil
	if fromFull {
		target = page.Full
	}
	if target == nil {
		w.WriteHeader(status)
		return
	}
	capture := newResponseBuffer()
	templ.Handler(target, templ.WithStatus(status)).ServeHTTP(capture, r)

	body := capture.body.Bytes()
	if fromFull {
		if mainContent, ok := extractMainContent(body); ok {
			body = mainContent
		}
	}
	body = prependTitleIfMissing(body, TitleTag(page.Title))

	copyHeaders(w.Header(), capture.Header())
	if !capture.headerWrote {
		capture.statusCode = status
	}
	w.WriteHeader(capture.statusCode)
	_, _ = w.Write(body)
}

func newResponseBuffer() *responseBuffer {
	return &responseBuffer{
		header:     make(http.Header),
		statusCode: http.StatusOK,
	}
}

func prependTitleIfMissing(body []byte, titleTag string) []byte {
	if titleTag == "" {
		return body
	}
	if bytes.Contains(bytes.ToLower(body), []byte("<title")) {
		return body
	}
	return append([]byte(titleTag), body...)
}

func copyHeaders(dst, src http.Header) {
	for key, values := range src {
		if strings.EqualFold(key, "Set-Cookie") || strings.EqualFold(key, "Vary") {
			for _, value := range values {
				dst.Add(key, value)
			}
			continue
		}
		// Single-valued headers should not accumulate duplicates when copied from
		// a temporary response buffer.
		for _, value := range values {
			dst.Set(key, value)
		}
	}
}

func extractMainContent(body []byte) ([]byte, bool) {
	start := bytes.Index(body, []byte("<main"))
	if start < 0 {
		return nil, false
	}
	openClose := bytes.Index(body[start:], []byte(">"))
	if openClose < 0 {
		return nil, false
	}
	contentStart := start + openClose + 1
	end := bytes.LastIndex(body[contentStart:], []byte("</main>"))
	if end < 0 {
		return nil, false
	}
	return body[contentStart : contentStart+end], true
}
