package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/marketpulse/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite. Timestamps are
// stored as Unix milliseconds.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS report_cache (
	company_key TEXT NOT NULL,
	provider    TEXT NOT NULL,
	company     TEXT NOT NULL,
	report      TEXT NOT NULL,
	cached_at   INTEGER NOT NULL,
	expires_at  INTEGER NOT NULL,
	PRIMARY KEY (company_key, provider)
);

CREATE TABLE IF NOT EXISTS bookmarks (
	id          TEXT PRIMARY KEY,
	company_key TEXT NOT NULL UNIQUE,
	company     TEXT NOT NULL,
	provider    TEXT NOT NULL,
	sentiment   TEXT NOT NULL,
	notes       TEXT NOT NULL DEFAULT '',
	report      TEXT NOT NULL,
	created_at  INTEGER NOT NULL,
	updated_at  INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS search_history (
	id          TEXT PRIMARY KEY,
	company_key TEXT NOT NULL,
	company     TEXT NOT NULL,
	provider    TEXT NOT NULL,
	sentiment   TEXT NOT NULL,
	report      TEXT NOT NULL,
	searched_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_report_cache_expires_at ON report_cache(expires_at);
CREATE INDEX IF NOT EXISTS idx_search_history_company_key ON search_history(company_key);
CREATE INDEX IF NOT EXISTS idx_search_history_searched_at ON search_history(searched_at);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) GetCachedReport(ctx context.Context, company, provider string) (*model.CachedReport, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT company, provider, report, cached_at, expires_at FROM report_cache
		 WHERE company_key = ? AND provider = ? AND expires_at > ?`,
		model.CompanyKey(company), provider, time.Now().UnixMilli(),
	)

	var cr model.CachedReport
	var reportJSON string
	var cachedAt, expiresAt int64
	err := row.Scan(&cr.Company, &cr.Provider, &reportJSON, &cachedAt, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: get cached report")
	}
	if cr.Report, err = decodeReport([]byte(reportJSON)); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal cached report")
	}
	cr.CachedAt = fromMillis(cachedAt)
	cr.ExpiresAt = fromMillis(expiresAt)
	return &cr, nil
}

func (s *SQLiteStore) SetCachedReport(ctx context.Context, company, provider string, report model.Report, ttl time.Duration) error {
	reportJSON, err := json.Marshal(report)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal report")
	}
	now := time.Now()

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO report_cache (company_key, provider, company, report, cached_at, expires_at) VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT (company_key, provider) DO UPDATE SET
		   company = excluded.company, report = excluded.report,
		   cached_at = excluded.cached_at, expires_at = excluded.expires_at`,
		model.CompanyKey(company), provider, company, string(reportJSON), now.UnixMilli(), now.Add(ttl).UnixMilli(),
	)
	return eris.Wrap(err, "sqlite: set cached report")
}

func (s *SQLiteStore) DeleteExpiredReports(ctx context.Context) (int, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM report_cache WHERE expires_at <= ?`, time.Now().UnixMilli(),
	)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: delete expired reports")
	}
	n, err := res.RowsAffected()
	return int(n), eris.Wrap(err, "sqlite: rows affected")
}

func (s *SQLiteStore) AddBookmark(ctx context.Context, company, provider string, report model.Report, notes string) (*model.Bookmark, error) {
	reportJSON, err := json.Marshal(report)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: marshal report")
	}
	now := time.Now().UnixMilli()

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO bookmarks (id, company_key, company, provider, sentiment, notes, report, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (company_key) DO UPDATE SET
		   company = excluded.company, provider = excluded.provider, sentiment = excluded.sentiment,
		   notes = excluded.notes, report = excluded.report, updated_at = excluded.updated_at`,
		uuid.New().String(), model.CompanyKey(company), company, provider, string(report.Sentiment),
		notes, string(reportJSON), now, now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: upsert bookmark")
	}

	b, err := s.GetBookmark(ctx, company)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, eris.Errorf("sqlite: bookmark for %q vanished after upsert", company)
	}
	return b, nil
}

const sqliteBookmarkColumns = `id, company, provider, sentiment, notes, report, created_at, updated_at`

func (s *SQLiteStore) GetBookmark(ctx context.Context, company string) (*model.Bookmark, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+sqliteBookmarkColumns+` FROM bookmarks WHERE company_key = ?`,
		model.CompanyKey(company),
	)
	b, err := scanSQLiteBookmark(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return b, err
}

func (s *SQLiteStore) ListBookmarks(ctx context.Context) ([]model.Bookmark, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+sqliteBookmarkColumns+` FROM bookmarks ORDER BY updated_at DESC, rowid DESC`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list bookmarks")
	}
	defer rows.Close()

	out := []model.Bookmark{}
	for rows.Next() {
		b, err := scanSQLiteBookmark(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *b)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: list bookmarks iterate")
}

func (s *SQLiteStore) UpdateBookmarkNotes(ctx context.Context, id, notes string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE bookmarks SET notes = ?, updated_at = ? WHERE id = ?`,
		notes, time.Now().UnixMilli(), id,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: update bookmark notes %s", id)
	}
	return checkRowsAffected(res, "bookmark", id)
}

func (s *SQLiteStore) RemoveBookmark(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM bookmarks WHERE id = ?`, id)
	if err != nil {
		return eris.Wrapf(err, "sqlite: remove bookmark %s", id)
	}
	return checkRowsAffected(res, "bookmark", id)
}

func (s *SQLiteStore) RecordSearch(ctx context.Context, company, provider string, report model.Report) (*model.HistoryEntry, error) {
	reportJSON, err := json.Marshal(report)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: marshal report")
	}
	e := &model.HistoryEntry{
		ID:         uuid.New().String(),
		Company:    company,
		Provider:   provider,
		Sentiment:  report.Sentiment,
		Report:     report,
		SearchedAt: fromMillis(time.Now().UnixMilli()),
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: begin record search")
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, `DELETE FROM search_history WHERE company_key = ?`, model.CompanyKey(company)); err != nil {
		return nil, eris.Wrap(err, "sqlite: delete previous search")
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO search_history (id, company_key, company, provider, sentiment, report, searched_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.ID, model.CompanyKey(company), company, provider, string(report.Sentiment), string(reportJSON), e.SearchedAt.UnixMilli(),
	); err != nil {
		return nil, eris.Wrap(err, "sqlite: insert search")
	}
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM search_history WHERE id NOT IN (
		   SELECT id FROM search_history ORDER BY searched_at DESC, rowid DESC LIMIT ?)`,
		MaxHistory,
	); err != nil {
		return nil, eris.Wrap(err, "sqlite: trim history")
	}
	if err := tx.Commit(); err != nil {
		return nil, eris.Wrap(err, "sqlite: commit record search")
	}
	return e, nil
}

const sqliteHistoryColumns = `id, company, provider, sentiment, report, searched_at`

func (s *SQLiteStore) GetHistoryEntry(ctx context.Context, id string) (*model.HistoryEntry, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+sqliteHistoryColumns+` FROM search_history WHERE id = ?`, id,
	)
	e, err := scanSQLiteHistory(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("history entry", id)
	}
	return e, err
}

func (s *SQLiteStore) ListHistory(ctx context.Context, limit int) ([]model.HistoryEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+sqliteHistoryColumns+` FROM search_history ORDER BY searched_at DESC, rowid DESC LIMIT ?`,
		historyLimit(limit),
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list history")
	}
	defer rows.Close()

	out := []model.HistoryEntry{}
	for rows.Next() {
		e, err := scanSQLiteHistory(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *e)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: list history iterate")
}

func (s *SQLiteStore) RemoveHistoryEntry(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM search_history WHERE id = ?`, id)
	if err != nil {
		return eris.Wrapf(err, "sqlite: remove history entry %s", id)
	}
	return checkRowsAffected(res, "history entry", id)
}

func (s *SQLiteStore) ClearHistory(ctx context.Context) (int, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM search_history`)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: clear history")
	}
	n, err := res.RowsAffected()
	return int(n), eris.Wrap(err, "sqlite: rows affected")
}

// helpers

func checkRowsAffected(res sql.Result, entity, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "rows affected")
	}
	if n == 0 {
		return notFound(entity, id)
	}
	return nil
}

type scannable interface {
	Scan(dest ...any) error
}

func scanSQLiteBookmark(row scannable) (*model.Bookmark, error) {
	var b model.Bookmark
	var reportJSON string
	var createdAt, updatedAt int64
	err := row.Scan(&b.ID, &b.Company, &b.Provider, &b.Sentiment, &b.Notes, &reportJSON, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: scan bookmark")
	}
	if b.Report, err = decodeReport([]byte(reportJSON)); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal bookmark report")
	}
	b.CreatedAt = fromMillis(createdAt)
	b.UpdatedAt = fromMillis(updatedAt)
	return &b, nil
}

func scanSQLiteHistory(row scannable) (*model.HistoryEntry, error) {
	var e model.HistoryEntry
	var reportJSON string
	var searchedAt int64
	err := row.Scan(&e.ID, &e.Company, &e.Provider, &e.Sentiment, &reportJSON, &searchedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: scan history entry")
	}
	if e.Report, err = decodeReport([]byte(reportJSON)); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal history report")
	}
	e.SearchedAt = fromMillis(searchedAt)
	return &e, nil
}

func fromMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}

// decodeReport unmarshals a stored report and restores empty defaults.
func decodeReport(data []byte) (model.Report, error) {
	var r model.Report
	if err := json.Unmarshal(data, &r); err != nil {
		return model.Report{}, err
	}
	r.Normalize()
	return r, nil
}
