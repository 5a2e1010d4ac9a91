package web

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/louisbranch/pagesync/internal/services/shared/contentwire"
	"github.com/louisbranch/pagesync/internal/services/shared/route"
	"github.com/louisbranch/pagesync/internal/services/shared/sitemenu"
	apperrors "github.com/louisbranch/pagesync/internal/services/web/platform/errors"
	"github.com/louisbranch/pagesync/internal/services/web/platform/httpx"
	"github.com/louisbranch/pagesync/internal/services/web/platform/requestmeta"
	webstorage "github.com/louisbranch/pagesync/internal/services/web/storage"
)

const defaultPageViewLimit = 50

// pageViewCount is the JSON shape of one aggregated analytics row.
type pageViewCount struct {
	Path         string    `json:"path"`
	Title        string    `json:"title"`
	Views        int64     `json:"views"`
	LastViewedAt time.Time `json:"lastViewedAt"`
}

// handleContent answers the content transport: the page payload, or null
// when the route has no page.
func (h *handler) handleContent(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(httpx.RequestContext(r), "web.content")
	defer span.End()

	req, err := contentwire.DecodeRequest(r.Body)
	if err != nil {
		span.SetStatus(codes.Error, "decode request")
		httpx.WriteError(w, apperrors.Wrap(apperrors.KindInvalidInput, "invalid content request", err))
		return
	}
	key := route.Normalize(req.Route)
	span.SetAttributes(attribute.String("content.route", key))

	page, ok, err := h.content.Get(ctx, key)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "content lookup")
		log.Printf("content lookup failed route=%s err=%v", key, err)
		httpx.WriteError(w, apperrors.Wrap(apperrors.KindUnavailable, "content unavailable", err))
		return
	}
	span.SetAttributes(attribute.Bool("content.found", ok))
	if !ok {
		_ = httpx.WriteJSON(w, http.StatusOK, nil)
		return
	}
	_ = httpx.WriteJSON(w, http.StatusOK, contentwire.FromPage(page))
}

func (h *handler) handleMenu(w http.ResponseWriter, r *http.Request) {
	items := h.menuItems(httpx.RequestContext(r))
	if items == nil {
		items = []sitemenu.Item{}
	}
	_ = httpx.WriteJSON(w, http.StatusOK, items)
}

func (h *handler) handlePageViews(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodPost {
		h.recordPageView(w, r)
		return
	}
	h.listPageViews(w, r)
}

func (h *handler) recordPageView(w http.ResponseWriter, r *http.Request) {
	if requestmeta.IsCrossOrigin(r, h.schemePolicy) {
		httpx.WriteError(w, apperrors.E(apperrors.KindForbidden, "cross-origin page views are not accepted"))
		return
	}
	var view contentwire.PageView
	if err := httpx.DecodeJSON(w, r, contentwire.MaxRequestBytes, &view); err != nil {
		httpx.WriteError(w, err)
		return
	}
	path := strings.TrimSpace(view.Path)
	if path == "" {
		httpx.WriteError(w, apperrors.E(apperrors.KindInvalidInput, "path is required"))
		return
	}
	if h.pageViews != nil {
		err := h.pageViews.RecordPageView(httpx.RequestContext(r), webstorage.PageView{
			Path:       path,
			Title:      view.Title,
			RemoteAddr: r.RemoteAddr,
		})
		if errors.Is(err, webstorage.ErrInvalidPageView) {
			httpx.WriteError(w, apperrors.Wrap(apperrors.KindInvalidInput, "page view rejected", err))
			return
		}
		if err != nil {
			log.Printf("record page view failed path=%s err=%v", path, err)
			httpx.WriteError(w, apperrors.Wrap(apperrors.KindUnavailable, "page view not recorded", err))
			return
		}
	}
	w.WriteHeader(http.StatusAccepted)
}

func (h *handler) listPageViews(w http.ResponseWriter, r *http.Request) {
	if h.pageViews == nil {
		httpx.WriteError(w, apperrors.E(apperrors.KindUnavailable, "page view storage is not configured"))
		return
	}
	limit := defaultPageViewLimit
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			httpx.WriteError(w, apperrors.E(apperrors.KindInvalidInput, "limit must be a non-negative integer"))
			return
		}
		limit = parsed
	}

	counts, err := h.pageViews.ListPageViewCounts(httpx.RequestContext(r), limit)
	if err != nil {
		log.Printf("list page views failed err=%v", err)
		httpx.WriteError(w, apperrors.Wrap(apperrors.KindUnavailable, "page views unavailable", err))
		return
	}
	payload := make([]pageViewCount, 0, len(counts))
	for _, count := range counts {
		payload = append(payload, pageViewCount{
			Path:         count.Path,
			Title:        count.Title,
			Views:        count.Views,
			LastViewedAt: count.LastViewedAt,
		})
	}
	_ = httpx.WriteJSON(w, http.StatusOK, payload)
}
