package navigator

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/louisbranch/pagesync/internal/platform/timeouts"
	"github.com/louisbranch/pagesync/internal/services/shared/contentwire"
	"github.com/louisbranch/pagesync/internal/services/shared/route"
)

var (
	// ErrNotFound reports a null content payload.
	ErrNotFound = errors.New("page not found")
	// ErrExternalLink reports an href outside the site origin.
	ErrExternalLink = errors.New("external link")
)

// Fetcher retrieves the page for a route. A nil page with a nil error means
// the route has no page.
type Fetcher interface {
	Fetch(ctx context.Context, route string) (*contentwire.Page, error)
}

// FetcherFunc adapts a function to Fetcher.
type FetcherFunc func(ctx context.Context, route string) (*contentwire.Page, error)

// Fetch calls f.
func (f FetcherFunc) Fetch(ctx context.Context, route string) (*contentwire.Page, error) {
	return f(ctx, route)
}

// View is the mutable display the synchronizer drives. Implementations must
// be safe for concurrent use: navigation start runs on the caller goroutine
// while completions run on fetch goroutines.
type View interface {
	BeginTransition()
	SetTitle(title string)
	ReplaceContent(html string)
	SetNoIndex(noIndex bool)
	ClearTransition()
	ScrollToTop()
	ShowFallback()
}

// History records navigations made by link activation.
type History interface {
	Push(url string)
}

// Menu shows which entry matches the route being navigated to.
type Menu interface {
	Highlight(route string)
}

// Analytics receives a page view after each applied navigation.
type Analytics interface {
	Track(ctx context.Context, path, title string) error
}

// Initializer prepares a page after it is shown. page is nil on the initial
// embedded delivery.
type Initializer interface {
	InitPage(ctx context.Context, page *contentwire.Page)
}

// InitializerFunc adapts a function to Initializer.
type InitializerFunc func(ctx context.Context, page *contentwire.Page)

// InitPage calls f.
func (f InitializerFunc) InitPage(ctx context.Context, page *contentwire.Page) {
	f(ctx, page)
}

// FailurePolicy decides what a failed response does once it is stale.
type FailurePolicy int

const (
	// FailureDiscardStale discards stale failures like stale successes.
	FailureDiscardStale FailurePolicy = iota
	// FailureApplyAlways shows the fallback for every failure, even one that
	// a later navigation already superseded.
	FailureApplyAlways
)

func (p FailurePolicy) String() string {
	if p == FailureApplyAlways {
		return "apply-always"
	}
	return "discard-stale"
}

// ParseFailurePolicy reads the String form of a FailurePolicy.
func ParseFailurePolicy(value string) (FailurePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "discard-stale":
		return FailureDiscardStale, nil
	case "apply-always":
		return FailureApplyAlways, nil
	default:
		return FailureDiscardStale, fmt.Errorf("unknown failure policy %q", value)
	}
}

// Config wires a Synchronizer.
type Config struct {
	Fetcher Fetcher
	View    View
	// History, Menu and Analytics are optional.
	History   History
	Menu      Menu
	Analytics Analytics
	// BaseURL is the site origin, optionally with a base path.
	BaseURL       string
	FailurePolicy FailurePolicy
	Logf          func(format string, args ...any)
}

type registration struct {
	prefix      string
	initializer Initializer
}

// Synchronizer sequences navigations and applies only the latest response.
type Synchronizer struct {
	fetcher   Fetcher
	view      View
	history   History
	menu      Menu
	analytics Analytics
	policy    FailurePolicy
	logf      func(format string, args ...any)
	base      *url.URL

	seq atomic.Uint64
	// applyMu serializes completions; initializers run while it is held.
	applyMu sync.Mutex
	// viewMu orders id allocation against the current-id check and the view
	// updates that follow it. Initializers never run while it is held.
	viewMu sync.Mutex

	mu            sync.Mutex
	location      Location
	registrations []registration
	booted        bool

	inflight sync.WaitGroup
}

// New validates cfg and returns an idle Synchronizer.
func New(cfg Config) (*Synchronizer, error) {
	if cfg.Fetcher == nil {
		return nil, errors.New("fetcher is required")
	}
	if cfg.View == nil {
		return nil, errors.New("view is required")
	}
	base, err := url.Parse(strings.TrimSpace(cfg.BaseURL))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("base url %q must be absolute", cfg.BaseURL)
	}
	switch cfg.FailurePolicy {
	case FailureDiscardStale, FailureApplyAlways:
	default:
		return nil, fmt.Errorf("unknown failure policy %d", cfg.FailurePolicy)
	}
	logf := cfg.Logf
	if logf == nil {
		logf = log.Printf
	}
	s := &Synchronizer{
		fetcher:   cfg.Fetcher,
		view:      cfg.View,
		history:   cfg.History,
		menu:      cfg.Menu,
		analytics: cfg.Analytics,
		policy:    cfg.FailurePolicy,
		logf:      logf,
		base:      base,
	}
	s.location = Location{Full: base.String(), Path: joinPath(basePath(base), route.Root), Route: route.Root}
	return s, nil
}

// Register adds an initializer for routes under prefix. The prefix "/"
// matches only the root route. Registration order is dispatch order.
func (s *Synchronizer) Register(prefix string, initializer Initializer) {
	if initializer == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.registrations = append(s.registrations, registration{prefix: strings.TrimSpace(prefix), initializer: initializer})
}

// Location returns the current client location.
func (s *Synchronizer) Location() Location {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.location
}

// Boot handles the first page load. With embedded content no fetch is made
// and initializers run once with a nil page; otherwise the page is
// requested. Only the first call has any effect.
func (s *Synchronizer) Boot(ctx context.Context, href string, embedded bool) (*Request, error) {
	loc, err := ParseLocation(s.base, href)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	if s.booted {
		s.mu.Unlock()
		return nil, nil
	}
	s.booted = true
	s.location = loc
	s.mu.Unlock()

	if !embedded {
		return s.start(ctx, loc.Route, loc.Path), nil
	}

	if s.menu != nil {
		s.viewMu.Lock()
		s.menu.Highlight(loc.Route)
		s.viewMu.Unlock()
	}
	req := newRequest(BootID, loc.Route, loc.Path)
	s.applyMu.Lock()
	s.dispatch(ctx, loc.Route, nil)
	s.applyMu.Unlock()
	req.finish(OutcomeApplied, nil)
	return req, nil
}

// Navigate follows a link: it records a history entry and requests the page.
func (s *Synchronizer) Navigate(ctx context.Context, href string) (*Request, error) {
	loc, err := s.moveTo(href)
	if err != nil {
		return nil, err
	}
	if s.history != nil {
		s.history.Push(loc.Full)
	}
	return s.start(ctx, loc.Route, loc.Path), nil
}

// PopState handles a back or forward move: it requests the page without
// touching history.
func (s *Synchronizer) PopState(ctx context.Context, href string) (*Request, error) {
	loc, err := s.moveTo(href)
	if err != nil {
		return nil, err
	}
	return s.start(ctx, loc.Route, loc.Path), nil
}

// RequestPage fetches the page for rawRoute and applies it if no later
// request has been made by the time it arrives.
func (s *Synchronizer) RequestPage(ctx context.Context, rawRoute string) *Request {
	key := route.Normalize(rawRoute)
	return s.start(ctx, key, joinPath(basePath(s.base), key))
}

// Wait blocks until every started fetch and analytics report has finished.
func (s *Synchronizer) Wait() {
	s.inflight.Wait()
}

func (s *Synchronizer) moveTo(href string) (Location, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, err := url.Parse(s.location.Full)
	if err != nil {
		current = s.base
	}
	loc, err := ParseLocation(current, href)
	if err != nil {
		return Location{}, err
	}
	loc.Route = relativeRoute(basePath(s.base), loc.Path)
	s.location = loc
	return loc, nil
}

// start marks the navigation as begun, takes the next id and fetches in the
// background.
func (s *Synchronizer) start(ctx context.Context, key, path string) *Request {
	if ctx == nil {
		ctx = context.Background()
	}
	s.viewMu.Lock()
	if s.menu != nil {
		s.menu.Highlight(key)
	}
	s.view.BeginTransition()
	req := newRequest(s.seq.Add(1), key, path)
	s.viewMu.Unlock()

	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()
		page, err := s.fetcher.Fetch(ctx, key)
		if err == nil && page == nil {
			err = ErrNotFound
		}
		s.complete(ctx, req, page, err)
	}()
	return req
}

func (s *Synchronizer) complete(ctx context.Context, req *Request, page *contentwire.Page, fetchErr error) {
	s.applyMu.Lock()
	defer s.applyMu.Unlock()

	outcome := s.apply(ctx, req, page, fetchErr)
	if outcome == OutcomeApplied {
		s.dispatch(ctx, req.Route, page)
	}
	req.finish(outcome, fetchErr)
}

// apply checks req against the counter and updates the view. No new id can
// be taken until it returns.
func (s *Synchronizer) apply(ctx context.Context, req *Request, page *contentwire.Page, fetchErr error) Outcome {
	s.viewMu.Lock()
	defer s.viewMu.Unlock()

	current := req.ID == s.seq.Load()
	if fetchErr != nil {
		if !current && s.policy == FailureDiscardStale {
			return OutcomeDiscarded
		}
		s.logf("navigation failed id=%d route=%s err=%v", req.ID, req.Route, fetchErr)
		s.view.ShowFallback()
		return OutcomeFailed
	}
	if !current {
		return OutcomeDiscarded
	}

	s.view.SetTitle(page.Title)
	s.view.ReplaceContent(page.HTML)
	s.view.SetNoIndex(page.NoIndex)
	s.view.ClearTransition()
	s.view.ScrollToTop()
	s.track(ctx, req.Path, page.Title)
	return OutcomeApplied
}

// dispatch runs every initializer whose prefix matches key, in order.
func (s *Synchronizer) dispatch(ctx context.Context, key string, page *contentwire.Page) {
	s.mu.Lock()
	registrations := append([]registration(nil), s.registrations...)
	s.mu.Unlock()

	for _, reg := range registrations {
		if prefixMatches(reg.prefix, key) {
			reg.initializer.InitPage(ctx, page)
		}
	}
}

func prefixMatches(prefix, key string) bool {
	if prefix == route.Root {
		return key == route.Root
	}
	return strings.HasPrefix(key, prefix)
}

// track reports the page view without blocking the apply.
func (s *Synchronizer) track(ctx context.Context, path, title string) {
	if s.analytics == nil {
		return
	}
	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()
		trackCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeouts.Analytics)
		defer cancel()
		if err := s.analytics.Track(trackCtx, path, title); err != nil {
			s.logf("analytics failed path=%s err=%v", path, err)
		}
	}()
}
