package web

import (
	"context"
	"io"
	"strings"

	"github.com/a-h/templ"

	"github.com/louisbranch/pagesync/internal/services/content"
	"github.com/louisbranch/pagesync/internal/services/shared/contentwire"
	"github.com/louisbranch/pagesync/internal/services/shared/sitemenu"
)

// shellView is everything the page shell renders.
type shellView struct {
	SiteName string
	Route    string
	// Page is nil when the fallback fragment is shown.
	Page   *content.Page
	Menu   []sitemenu.Item
	Active string
}

func (v shellView) title() string {
	pageTitle := contentwire.FallbackTitle
	if v.Page != nil {
		pageTitle = strings.TrimSpace(v.Page.Title)
	}
	switch {
	case pageTitle == "":
		return v.SiteName
	case v.SiteName == "" || pageTitle == v.SiteName:
		return pageTitle
	default:
		return pageTitle + " | " + v.SiteName
	}
}

// shell renders the full document with the page embedded in <main>.
func shell(view shellView) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		sw := &stickyWriter{w: w}
		sw.write("<!DOCTYPE html>\n<html lang=\"en\">\n<head>\n")
		sw.write("<meta charset=\"utf-8\">\n")
		sw.write("<meta name=\"viewport\" content=\"width=device-width, initial-scale=1\">\n")
		sw.write("<title>" + templ.EscapeString(view.title()) + "</title>\n")
		if view.Page != nil {
			if view.Page.Description != "" {
				sw.write("<meta name=\"description\" content=\"" + templ.EscapeString(view.Page.Description) + "\">\n")
			}
			if view.Page.Keywords != "" {
				sw.write("<meta name=\"keywords\" content=\"" + templ.EscapeString(view.Page.Keywords) + "\">\n")
			}
			if view.Page.NoIndex {
				sw.write("<meta name=\"robots\" content=\"noindex\">\n")
			}
		} else {
			sw.write("<meta name=\"robots\" content=\"noindex\">\n")
		}
		sw.write("<link rel=\"stylesheet\" href=\"/static/site.css\">\n")
		sw.write("</head>\n<body>\n")
		if sw.err != nil {
			return sw.err
		}
		if err := menuNav(view.Menu, view.Active).Render(ctx, w); err != nil {
			return err
		}
		sw.write("\n<main id=\"content\" data-route=\"" + templ.EscapeString(view.Route) + "\" data-embedded=\"true\">")
		if view.Page != nil {
			sw.write(view.Page.Body)
		} else {
			sw.write(contentwire.FallbackHTML)
		}
		sw.write("</main>\n</body>\n</html>\n")
		return sw.err
	})
}

// menuNav renders the site menu with the active entry marked.
func menuNav(items []sitemenu.Item, active string) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		sw := &stickyWriter{w: w}
		sw.write("<header class=\"site\"><nav class=\"site-menu\"><ul>")
		for _, item := range items {
			sw.write("<li><a href=\"" + templ.EscapeString(item.Route) + "\" data-route=\"" + templ.EscapeString(item.Route) + "\"")
			if item.Route == active {
				sw.write(" class=\"active\" aria-current=\"page\"")
			}
			sw.write(">" + templ.EscapeString(item.Label) + "</a></li>")
		}
		sw.write("</ul></nav></header>")
		return sw.err
	})
}

// stickyWriter keeps the first write error so rendering code can stay linear.
type stickyWriter struct {
	w   io.Writer
	err error
}

func (s *stickyWriter) write(value string) {
	if s.err != nil {
		return
	}
	_, s.err = io.WriteString(s.w, value)
}
