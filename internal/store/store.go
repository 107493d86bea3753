// Package store persists cached reports, bookmarks, and search history.
package store

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/marketpulse/internal/model"
)

// MaxHistory is the number of history entries kept.
const MaxHistory = 50

// DefaultHistoryLimit is used by ListHistory when limit <= 0.
const DefaultHistoryLimit = 20

// ErrNotFound is returned when an ID does not exist.
var ErrNotFound = eris.New("store: not found")

// Store defines the persistence interface for analyses.
type Store interface {
	// Report cache
	GetCachedReport(ctx context.Context, company, provider string) (*model.CachedReport, error)
	SetCachedReport(ctx context.Context, company, provider string, report model.Report, ttl time.Duration) error
	DeleteExpiredReports(ctx context.Context) (int, error)

	// Bookmarks
	AddBookmark(ctx context.Context, company, provider string, report model.Report, notes string) (*model.Bookmark, error)
	GetBookmark(ctx context.Context, company string) (*model.Bookmark, error)
	ListBookmarks(ctx context.Context) ([]model.Bookmark, error)
	UpdateBookmarkNotes(ctx context.Context, id, notes string) error
	RemoveBookmark(ctx context.Context, id string) error

	// Search history
	RecordSearch(ctx context.Context, company, provider string, report model.Report) (*model.HistoryEntry, error)
	GetHistoryEntry(ctx context.Context, id string) (*model.HistoryEntry, error)
	ListHistory(ctx context.Context, limit int) ([]model.HistoryEntry, error)
	RemoveHistoryEntry(ctx context.Context, id string) error
	ClearHistory(ctx context.Context) (int, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

var (
	_ Store = (*SQLiteStore)(nil)
	_ Store = (*PostgresStore)(nil)
)

func notFound(entity, id string) error {
	return eris.Wrapf(ErrNotFound, "%s %s", entity, id)
}

func historyLimit(limit int) int {
	if limit <= 0 {
		return DefaultHistoryLimit
	}
	if limit > MaxHistory {
		return MaxHistory
	}
	return limit
}
