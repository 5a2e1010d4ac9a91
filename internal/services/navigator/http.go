package navigator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"

	"github.com/louisbranch/pagesync/internal/platform/timeouts"
	"github.com/louisbranch/pagesync/internal/services/shared/contentwire"
	"github.com/louisbranch/pagesync/internal/services/shared/sitemenu"
)

const (
	tracerName       = "github.com/louisbranch/pagesync/internal/services/navigator"
	maxResponseBytes = 8 << 20
)

// HTTPFetcher fetches pages from a web server's content endpoint.
type HTTPFetcher struct {
	endpoint string
	client   *http.Client
}

// NewHTTPFetcher posts to baseURL's content endpoint. A nil client uses one
// bounded by timeouts.ContentFetch.
func NewHTTPFetcher(baseURL string, client *http.Client) (*HTTPFetcher, error) {
	endpoint, err := endpointURL(baseURL, contentwire.Endpoint)
	if err != nil {
		return nil, err
	}
	if client == nil {
		client = &http.Client{Timeout: timeouts.ContentFetch}
	}
	return &HTTPFetcher{endpoint: endpoint, client: client}, nil
}

// Fetch implements Fetcher.
func (f *HTTPFetcher) Fetch(ctx context.Context, route string) (*contentwire.Page, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "navigator.fetch")
	defer span.End()
	span.SetAttributes(attribute.String("content.route", route))

	page, err := f.fetch(ctx, route)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "fetch failed")
		return nil, err
	}
	span.SetAttributes(attribute.Bool("content.found", page != nil))
	return page, nil
}

func (f *HTTPFetcher) fetch(ctx context.Context, route string) (*contentwire.Page, error) {
	body, err := json.Marshal(contentwire.Request{Route: route})
	if err != nil {
		return nil, fmt.Errorf("encode content request: %w", err)
	}
	resp, err := post(ctx, f.client, f.endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("content request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBytes))
		return nil, fmt.Errorf("content request: unexpected status %d", resp.StatusCode)
	}
	return contentwire.DecodePage(io.LimitReader(resp.Body, maxResponseBytes))
}

// HTTPAnalytics reports page views to a web server's page view endpoint.
type HTTPAnalytics struct {
	endpoint string
	client   *http.Client
}

// NewHTTPAnalytics posts to baseURL's page view endpoint.
func NewHTTPAnalytics(baseURL string, client *http.Client) (*HTTPAnalytics, error) {
	endpoint, err := endpointURL(baseURL, contentwire.PageViewEndpoint)
	if err != nil {
		return nil, err
	}
	if client == nil {
		client = &http.Client{Timeout: timeouts.Analytics}
	}
	return &HTTPAnalytics{endpoint: endpoint, client: client}, nil
}

// Track implements Analytics. The response is ignored; only transport
// failures are reported.
func (a *HTTPAnalytics) Track(ctx context.Context, path, title string) error {
	body, err := json.Marshal(contentwire.PageView{Path: path, Title: title})
	if err != nil {
		return fmt.Errorf("encode page view: %w", err)
	}
	resp, err := post(ctx, a.client, a.endpoint, body)
	if err != nil {
		return fmt.Errorf("page view request: %w", err)
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
	return resp.Body.Close()
}

// FetchMenu reads the site menu from baseURL's menu endpoint. A nil client
// uses one bounded by timeouts.ContentFetch.
func FetchMenu(ctx context.Context, baseURL string, client *http.Client) ([]sitemenu.Item, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "navigator.menu")
	defer span.End()

	items, err := fetchMenu(ctx, baseURL, client)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "menu fetch failed")
		return nil, err
	}
	span.SetAttributes(attribute.Int("menu.items", len(items)))
	return items, nil
}

func fetchMenu(ctx context.Context, baseURL string, client *http.Client) ([]sitemenu.Item, error) {
	endpoint, err := endpointURL(baseURL, contentwire.MenuEndpoint)
	if err != nil {
		return nil, err
	}
	if client == nil {
		client = &http.Client{Timeout: timeouts.ContentFetch}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("menu request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBytes))
		return nil, fmt.Errorf("menu request: unexpected status %d", resp.StatusCode)
	}
	var items []sitemenu.Item
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&items); err != nil {
		return nil, fmt.Errorf("decode menu: %w", err)
	}
	return items, nil
}

func post(ctx context.Context, client *http.Client, endpoint string, body []byte) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))
	return client.Do(req)
}

func endpointURL(baseURL, endpoint string) (string, error) {
	base, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil {
		return "", fmt.Errorf("parse base url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return "", fmt.Errorf("base url %q must be absolute", baseURL)
	}
	return strings.TrimRight(base.String(), "/") + endpoint, nil
}
