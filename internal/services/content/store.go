package content

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"sync/atomic"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/louisbranch/pagesync/internal/services/content"

// Config configures a Store.
type Config struct {
	// Dir is the source directory. Ignored when FS is set.
	Dir string
	// FS overrides Dir with an arbitrary filesystem.
	FS fs.FS
	// Live rebuilds the catalog from the source before every lookup.
	Live bool
	// Extensions, Sanitize and Logf are passed to Load.
	Extensions []string
	Sanitize   func(string) string
	Logf       func(format string, args ...any)
}

// Store serves page lookups from the most recently published catalog.
type Store struct {
	fsys    fs.FS
	live    bool
	opts    LoadOptions
	tracer  trace.Tracer
	catalog atomic.Pointer[Catalog]
	// builds numbers rebuilds in start order. A published catalog is never
	// replaced by one whose build started earlier.
	builds atomic.Uint64
}

// Open builds the initial catalog and returns a ready Store.
func Open(ctx context.Context, cfg Config) (*Store, error) {
	fsys := cfg.FS
	if fsys == nil {
		dir := strings.TrimSpace(cfg.Dir)
		if dir == "" {
			return nil, fmt.Errorf("content directory is required")
		}
		info, err := os.Stat(dir)
		if err != nil {
			return nil, fmt.Errorf("stat content directory: %w", err)
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("content path %q is not a directory", dir)
		}
		fsys = os.DirFS(dir)
	}

	store := &Store{
		fsys: fsys,
		live: cfg.Live,
		opts: LoadOptions{
			Extensions: cfg.Extensions,
			Sanitize:   cfg.Sanitize,
			Logf:       cfg.Logf,
		},
		tracer: otel.Tracer(tracerName),
	}
	if err := store.Reload(ctx); err != nil {
		return nil, err
	}
	return store, nil
}

// Live reports whether the store rebuilds before every lookup.
func (s *Store) Live() bool {
	return s != nil && s.live
}

// Catalog returns the currently published catalog.
func (s *Store) Catalog() *Catalog {
	if s == nil {
		return nil
	}
	return s.catalog.Load()
}

// Reload rebuilds the catalog from the source and publishes it.
//
// On failure the previously published catalog stays in place.
func (s *Store) Reload(ctx context.Context) error {
	_, err := s.rebuild(ctx)
	return err
}

// Get returns the page for rawRoute.
//
// A missing route is reported as ok=false with a nil error. An error is only
// returned when a live rebuild fails.
func (s *Store) Get(ctx context.Context, rawRoute string) (Page, bool, error) {
	catalog, err := s.current(ctx)
	if err != nil {
		return Page{}, false, err
	}
	page, ok := catalog.Lookup(rawRoute)
	return page, ok, nil
}

// Routes lists the routes of the current catalog.
func (s *Store) Routes(ctx context.Context) ([]string, error) {
	catalog, err := s.current(ctx)
	if err != nil {
		return nil, err
	}
	return catalog.Routes(), nil
}

// Pages returns every page of the current catalog in route order.
func (s *Store) Pages(ctx context.Context) ([]Page, error) {
	catalog, err := s.current(ctx)
	if err != nil {
		return nil, err
	}
	routes := catalog.Routes()
	pages := make([]Page, 0, len(routes))
	for _, key := range routes {
		page, _ := catalog.Lookup(key)
		pages = append(pages, page)
	}
	return pages, nil
}

// current returns the catalog a lookup should read, rebuilding first in live mode.
func (s *Store) current(ctx context.Context) (*Catalog, error) {
	if s == nil {
		return nil, errors.New("content store is not configured")
	}
	if s.live {
		return s.rebuild(ctx)
	}
	return s.catalog.Load(), nil
}

func (s *Store) rebuild(ctx context.Context) (*Catalog, error) {
	if s == nil {
		return nil, errors.New("content store is not configured")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	_, span := s.tracer.Start(ctx, "content.reload", trace.WithAttributes(
		attribute.Bool("content.live", s.live),
	))
	defer span.End()

	build := s.builds.Add(1)
	catalog, err := Load(s.fsys, s.opts)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "reload failed")
		return nil, err
	}
	span.SetAttributes(
		attribute.Int("content.pages", catalog.Len()),
		attribute.Int("content.skipped", len(catalog.skipped)),
	)
	catalog.build = build
	s.publish(catalog)
	return catalog, nil
}

// publish stores catalog unless a later build is already published.
func (s *Store) publish(catalog *Catalog) {
	for {
		prev := s.catalog.Load()
		if prev != nil && prev.build > catalog.build {
			return
		}
		if s.catalog.CompareAndSwap(prev, catalog) {
			return
		}
	}
}
