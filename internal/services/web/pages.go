package web

import (
	"log"
	"net/http"

	"github.com/louisbranch/pagesync/internal/services/content"
	"github.com/louisbranch/pagesync/internal/services/shared/htmx"
	"github.com/louisbranch/pagesync/internal/services/shared/route"
	"github.com/louisbranch/pagesync/internal/services/shared/sitemenu"
	"github.com/louisbranch/pagesync/internal/services/web/platform/httpx"
)

// handlePage serves the full shell for a route, or its <main> fragment for
// HTMX swaps. Missing pages get the fallback with 404.
func (h *handler) handlePage(w http.ResponseWriter, r *http.Request) {
	if route.RedirectTrailingSlash(w, r) {
		return
	}
	ctx := httpx.RequestContext(r)
	key := route.Normalize(r.URL.Path)

	status := http.StatusOK
	var shown *content.Page
	page, ok, err := h.content.Get(ctx, key)
	switch {
	case err != nil:
		log.Printf("page lookup failed route=%s err=%v", key, err)
		status = http.StatusServiceUnavailable
	case !ok:
		status = http.StatusNotFound
	default:
		shown = &page
	}

	menu := h.menuItems(ctx)
	view := shellView{
		SiteName: h.siteName,
		Route:    key,
		Page:     shown,
		Menu:     menu,
		Active:   sitemenu.Active(menu, key),
	}
	htmx.Render(w, r, htmx.Page{
		Title:  view.title(),
		Status: status,
		Full:   shell(view),
	})
}
