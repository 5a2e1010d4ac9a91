package web

import (
	"encoding/xml"
	"log"
	"net/http"

	apperrors "github.com/louisbranch/pagesync/internal/services/web/platform/errors"
	"github.com/louisbranch/pagesync/internal/services/web/platform/httpx"
	"github.com/louisbranch/pagesync/internal/services/web/platform/requestmeta"
)

const sitemapNamespace = "http://www.sitemaps.org/schemas/sitemap/0.9"

type sitemapURLSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc string `xml:"loc"`
}

// handleSitemap lists every indexable route.
func (h *handler) handleSitemap(w http.ResponseWriter, r *http.Request) {
	pages, err := h.content.Pages(httpx.RequestContext(r))
	if err != nil {
		log.Printf("sitemap failed err=%v", err)
		httpx.WriteError(w, apperrors.Wrap(apperrors.KindUnavailable, "sitemap unavailable", err))
		return
	}

	base := h.baseURL
	if base == "" {
		base = requestmeta.Origin(r, h.schemePolicy)
	}
	set := sitemapURLSet{XMLNS: sitemapNamespace}
	for _, page := range pages {
		if page.NoIndex {
			continue
		}
		set.URLs = append(set.URLs, sitemapURL{Loc: base + page.Route})
	}

	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(xml.Header))
	encoder := xml.NewEncoder(w)
	encoder.Indent("", "  ")
	if err := encoder.Encode(set); err != nil {
		log.Printf("sitemap encode failed err=%v", err)
	}
}
