package storage

import (
	"context"
	"errors"
	"time"
)

// ErrInvalidPageView marks a page view the store refuses to record.
var ErrInvalidPageView = errors.New("invalid page view")

// PageView records one client report of an applied page.
type PageView struct {
	Path       string
	Title      string
	ViewedAt   time.Time
	RemoteAddr string
}

// PageViewCount aggregates page views per path.
type PageViewCount struct {
	Path         string
	Title        string
	Views        int64
	LastViewedAt time.Time
}

// Store is the contract for page view persistence.
type Store interface {
	Close() error
	RecordPageView(ctx context.Context, view PageView) error
	ListPageViewCounts(ctx context.Context, limit int) ([]PageViewCount, error)
}
