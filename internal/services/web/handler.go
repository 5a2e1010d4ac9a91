package web

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/louisbranch/pagesync/internal/services/content"
	"github.com/louisbranch/pagesync/internal/services/shared/contentwire"
	"github.com/louisbranch/pagesync/internal/services/shared/sitemenu"
	"github.com/louisbranch/pagesync/internal/services/web/platform/httpx"
	"github.com/louisbranch/pagesync/internal/services/web/platform/requestmeta"
	"github.com/louisbranch/pagesync/internal/services/web/static"
	webstorage "github.com/louisbranch/pagesync/internal/services/web/storage"
	"github.com/louisbranch/pagesync/internal/services/web/transport/httpmux"
	webhttp "github.com/louisbranch/pagesync/internal/services/web/transport/http"
)

const (
	tracerName = "github.com/louisbranch/pagesync/internal/services/web"

	healthPath  = "/healthz"
	sitemapPath = "/sitemap.xml"

	staticCacheControl = "public, max-age=3600"
)

// ContentSource resolves pages for the handlers.
type ContentSource interface {
	Get(ctx context.Context, route string) (content.Page, bool, error)
	Pages(ctx context.Context) ([]content.Page, error)
}

// Dependencies are the collaborators the HTTP handler serves from.
type Dependencies struct {
	Content ContentSource
	// Menu is served as-is. When empty it is derived from the current routes
	// on every request.
	Menu []sitemenu.Item
	// PageViews is optional. Without it page views are accepted and dropped.
	PageViews webstorage.Store
	SiteName  string
	// BaseURL prefixes sitemap locations. Empty uses the request host.
	BaseURL string
	// TrustForwardedProto honors X-Forwarded-Proto when resolving the
	// request scheme.
	TrustForwardedProto bool
}

type handler struct {
	content      ContentSource
	menu         []sitemenu.Item
	pageViews    webstorage.Store
	siteName     string
	baseURL      string
	schemePolicy requestmeta.SchemePolicy
	tracer       trace.Tracer
}

// NewHandler builds the root HTTP handler.
func NewHandler(deps Dependencies) (http.Handler, error) {
	if deps.Content == nil {
		return nil, errors.New("content source is required")
	}
	h := &handler{
		content:      deps.Content,
		menu:         deps.Menu,
		pageViews:    deps.PageViews,
		siteName:     strings.TrimSpace(deps.SiteName),
		baseURL:      strings.TrimRight(strings.TrimSpace(deps.BaseURL), "/"),
		schemePolicy: requestmeta.SchemePolicy{TrustForwardedProto: deps.TrustForwardedProto},
		tracer:       otel.Tracer(tracerName),
	}

	apiMux := http.NewServeMux()
	apiMux.Handle(contentwire.Endpoint, httpx.Chain(http.HandlerFunc(h.handleContent), httpx.RequireMethod(http.MethodPost)))
	apiMux.Handle(contentwire.MenuEndpoint, httpx.Chain(http.HandlerFunc(h.handleMenu), httpx.RequireMethod(http.MethodGet)))
	apiMux.Handle(contentwire.PageViewEndpoint, httpx.Chain(http.HandlerFunc(h.handlePageViews), httpx.RequireMethod(http.MethodGet, http.MethodPost)))

	rootMux := http.NewServeMux()
	httpmux.MountStatic(rootMux, static.FS, func(next http.Handler) http.Handler {
		return webhttp.WithCacheControl(staticCacheControl)(webhttp.WithStaticMime(next))
	})
	rootMux.Handle(healthPath, httpx.Chain(http.HandlerFunc(handleHealth), httpx.RequireMethod(http.MethodGet)))
	rootMux.Handle(sitemapPath, httpx.Chain(http.HandlerFunc(h.handleSitemap), httpx.RequireMethod(http.MethodGet)))
	httpmux.MountAPIAndPages(rootMux, apiMux, httpx.Chain(http.HandlerFunc(h.handlePage), httpx.RequireMethod(http.MethodGet)))

	return httpx.Chain(rootMux, httpx.RequestID(), httpx.AccessLog(), httpx.RecoverPanic()), nil
}

// menuItems returns the configured menu or one derived from current routes.
func (h *handler) menuItems(ctx context.Context) []sitemenu.Item {
	if len(h.menu) > 0 {
		return h.menu
	}
	pages, err := h.content.Pages(ctx)
	if err != nil {
		log.Printf("derive menu failed err=%v", err)
		return nil
	}
	routes := make([]string, 0, len(pages))
	for _, page := range pages {
		if page.NoIndex {
			continue
		}
		routes = append(routes, page.Route)
	}
	return sitemenu.FromRoutes(routes)
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	_ = httpx.WriteText(w, http.StatusOK, "text/plain; charset=utf-8", "ok\n")
}
