package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	sqlitemigrate "github.com/louisbranch/pagesync/internal/platform/storage/sqlitemigrate"
	webstorage "github.com/louisbranch/pagesync/internal/services/web/storage"
	"github.com/louisbranch/pagesync/internal/services/web/storage/sqlite/migrations"
	_ "modernc.org/sqlite"
)

const (
	maxPathLength  = 2048
	maxTitleLength = 512
)

// Store provides SQLite-backed persistence for page views.
type Store struct {
	sqlDB *sql.DB
	now   func() time.Time
}

// Open opens and migrates a page view SQLite store.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	cleanPath := filepath.Clean(path)
	dsn := "file:" + cleanPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	if _, err := sqlitemigrate.Apply(context.Background(), sqlDB, migrations.FS, ""); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB, now: time.Now}, nil
}

// Close releases the underlying SQLite connection.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// RecordPageView appends one page view.
func (s *Store) RecordPageView(ctx context.Context, view webstorage.PageView) error {
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	view.Path = strings.TrimSpace(view.Path)
	if view.Path == "" {
		return fmt.Errorf("%w: path is required", webstorage.ErrInvalidPageView)
	}
	if len(view.Path) > maxPathLength {
		return fmt.Errorf("%w: path exceeds %d bytes", webstorage.ErrInvalidPageView, maxPathLength)
	}
	view.Title = truncate(strings.TrimSpace(view.Title), maxTitleLength)
	if view.ViewedAt.IsZero() {
		view.ViewedAt = s.now().UTC()
	}

	_, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO page_views (path, title, remote_addr, viewed_at) VALUES (?, ?, ?, ?)`,
		view.Path,
		view.Title,
		strings.TrimSpace(view.RemoteAddr),
		timeToUnixMillis(view.ViewedAt),
	)
	if err != nil {
		return fmt.Errorf("record page view: %w", err)
	}
	return nil
}

// ListPageViewCounts returns per-path totals, most viewed first. A limit of
// zero or less returns every path.
func (s *Store) ListPageViewCounts(ctx context.Context, limit int) ([]webstorage.PageViewCount, error) {
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	if limit <= 0 {
		limit = -1
	}

	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT v.path,
		        (SELECT t.title FROM page_views t WHERE t.path = v.path ORDER BY t.id DESC LIMIT 1),
		        COUNT(*) AS views,
		        MAX(v.viewed_at)
		 FROM page_views v
		 GROUP BY v.path
		 ORDER BY views DESC, v.path ASC
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list page view counts: %w", err)
	}
	defer rows.Close()

	var counts []webstorage.PageViewCount
	for rows.Next() {
		var count webstorage.PageViewCount
		var lastViewedAt int64
		if err := rows.Scan(&count.Path, &count.Title, &count.Views, &lastViewedAt); err != nil {
			return nil, fmt.Errorf("scan page view count: %w", err)
		}
		count.LastViewedAt = unixMillisToTime(lastViewedAt)
		counts = append(counts, count)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate page view counts: %w", err)
	}
	return counts, nil
}

func truncate(value string, limit int) string {
	if len(value) <= limit {
		return value
	}
	cut := limit
	for cut > 0 && !utf8.RuneStart(value[cut]) {
		cut--
	}
	return value[:cut]
}

func timeToUnixMillis(value time.Time) int64 {
	if value.IsZero() {
		return 0
	}
	return value.UTC().UnixMilli()
}

func unixMillisToTime(value int64) time.Time {
	if value <= 0 {
		return time.Time{}
	}
	return time.UnixMilli(value).UTC()
}

var _ webstorage.Store = (*Store)(nil)
