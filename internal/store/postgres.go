package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rotisserie/eris"

	"github.com/sells-group/marketpulse/internal/db"
	"github.com/sells-group/marketpulse/internal/model"
)

// PostgresStore implements Store using a pgx pool.
type PostgresStore struct {
	pool db.Pool
}

// preparedStatements lists the hot-path cache queries prepared on each
// new connection.
var preparedStatements = map[string]string{
	"get_cached_report": postgresGetReport,
	"set_cached_report": postgresUpsertReport,
}

const postgresGetReport = `SELECT company, provider, report, cached_at, expires_at FROM report_cache
 WHERE company_key = $1 AND provider = $2 AND expires_at > now()`

const postgresUpsertReport = `INSERT INTO report_cache (company_key, provider, company, report, cached_at, expires_at) VALUES ($1, $2, $3, $4, $5, $6)
 ON CONFLICT (company_key, provider) DO UPDATE SET company = $3, report = $4, cached_at = $5, expires_at = $6`

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg db.PoolConfig) (*PostgresStore, error) {
	pool, err := db.Connect(ctx, connString, poolCfg, preparedStatements)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: connect")
	}
	return &PostgresStore{pool: pool}, nil
}

// NewPostgresWithPool wraps an existing pool.
func NewPostgresWithPool(pool db.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS report_cache (
	company_key TEXT NOT NULL,
	provider    TEXT NOT NULL,
	company     TEXT NOT NULL,
	report      JSONB NOT NULL,
	cached_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
	expires_at  TIMESTAMPTZ NOT NULL,
	PRIMARY KEY (company_key, provider)
);

CREATE TABLE IF NOT EXISTS bookmarks (
	id          TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	company_key TEXT NOT NULL UNIQUE,
	company     TEXT NOT NULL,
	provider    TEXT NOT NULL,
	sentiment   TEXT NOT NULL,
	notes       TEXT NOT NULL DEFAULT '',
	report      JSONB NOT NULL,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS search_history (
	id          TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	company_key TEXT NOT NULL,
	company     TEXT NOT NULL,
	provider    TEXT NOT NULL,
	sentiment   TEXT NOT NULL,
	report      JSONB NOT NULL,
	searched_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_report_cache_expires_at ON report_cache(expires_at);
CREATE INDEX IF NOT EXISTS idx_search_history_company_key ON search_history(company_key);
CREATE INDEX IF NOT EXISTS idx_search_history_searched_at ON search_history(searched_at DESC);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) GetCachedReport(ctx context.Context, company, provider string) (*model.CachedReport, error) {
	var cr model.CachedReport
	var reportJSON []byte

	err := s.pool.QueryRow(ctx, postgresGetReport, model.CompanyKey(company), provider).
		Scan(&cr.Company, &cr.Provider, &reportJSON, &cr.CachedAt, &cr.ExpiresAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, eris.Wrap(err, "postgres: get cached report")
	}
	if cr.Report, err = decodeReport(reportJSON); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal cached report")
	}
	return &cr, nil
}

func (s *PostgresStore) SetCachedReport(ctx context.Context, company, provider string, report model.Report, ttl time.Duration) error {
	reportJSON, err := json.Marshal(report)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal report")
	}
	now := time.Now().UTC()

	_, err = s.pool.Exec(ctx, postgresUpsertReport,
		model.CompanyKey(company), provider, company, reportJSON, now, now.Add(ttl),
	)
	return eris.Wrap(err, "postgres: set cached report")
}

func (s *PostgresStore) DeleteExpiredReports(ctx context.Context) (int, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM report_cache WHERE expires_at <= now()`)
	if err != nil {
		return 0, eris.Wrap(err, "postgres: delete expired reports")
	}
	return int(tag.RowsAffected()), nil
}

func (s *PostgresStore) AddBookmark(ctx context.Context, company, provider string, report model.Report, notes string) (*model.Bookmark, error) {
	reportJSON, err := json.Marshal(report)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: marshal report")
	}
	now := time.Now().UTC()
	b := &model.Bookmark{
		Company:   company,
		Provider:  provider,
		Sentiment: report.Sentiment,
		Notes:     notes,
		Report:    report,
	}

	err = s.pool.QueryRow(ctx,
		`INSERT INTO bookmarks (id, company_key, company, provider, sentiment, notes, report, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)
		 ON CONFLICT (company_key) DO UPDATE SET
		   company = $3, provider = $4, sentiment = $5, notes = $6, report = $7, updated_at = $8
		 RETURNING id, created_at, updated_at`,
		uuid.New().String(), model.CompanyKey(company), company, provider, string(report.Sentiment),
		notes, reportJSON, now,
	).Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: upsert bookmark")
	}
	return b, nil
}

const postgresBookmarkColumns = `id, company, provider, sentiment, notes, report, created_at, updated_at`

func (s *PostgresStore) GetBookmark(ctx context.Context, company string) (*model.Bookmark, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+postgresBookmarkColumns+` FROM bookmarks WHERE company_key = $1`,
		model.CompanyKey(company),
	)
	b, err := scanPostgresBookmark(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return b, err
}

func (s *PostgresStore) ListBookmarks(ctx context.Context) ([]model.Bookmark, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+postgresBookmarkColumns+` FROM bookmarks ORDER BY updated_at DESC`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list bookmarks")
	}
	defer rows.Close()

	out := []model.Bookmark{}
	for rows.Next() {
		b, err := scanPostgresBookmark(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *b)
	}
	return out, eris.Wrap(rows.Err(), "postgres: list bookmarks iterate")
}

func (s *PostgresStore) UpdateBookmarkNotes(ctx context.Context, id, notes string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE bookmarks SET notes = $1, updated_at = $2 WHERE id = $3`,
		notes, time.Now().UTC(), id,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: update bookmark notes %s", id)
	}
	if tag.RowsAffected() == 0 {
		return notFound("bookmark", id)
	}
	return nil
}

func (s *PostgresStore) RemoveBookmark(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM bookmarks WHERE id = $1`, id)
	if err != nil {
		return eris.Wrapf(err, "postgres: remove bookmark %s", id)
	}
	if tag.RowsAffected() == 0 {
		return notFound("bookmark", id)
	}
	return nil
}

func (s *PostgresStore) RecordSearch(ctx context.Context, company, provider string, report model.Report) (*model.HistoryEntry, error) {
	reportJSON, err := json.Marshal(report)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: marshal report")
	}
	e := &model.HistoryEntry{
		ID:         uuid.New().String(),
		Company:    company,
		Provider:   provider,
		Sentiment:  report.Sentiment,
		Report:     report,
		SearchedAt: time.Now().UTC(),
	}
	key := model.CompanyKey(company)

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: begin record search")
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if _, err := tx.Exec(ctx, `DELETE FROM search_history WHERE company_key = $1`, key); err != nil {
		return nil, eris.Wrap(err, "postgres: delete previous search")
	}
	if _, err := tx.Exec(ctx,
		`INSERT INTO search_history (id, company_key, company, provider, sentiment, report, searched_at) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		e.ID, key, company, provider, string(report.Sentiment), reportJSON, e.SearchedAt,
	); err != nil {
		return nil, eris.Wrap(err, "postgres: insert search")
	}
	if _, err := tx.Exec(ctx,
		`DELETE FROM search_history WHERE id NOT IN (
		   SELECT id FROM search_history ORDER BY searched_at DESC LIMIT $1)`,
		MaxHistory,
	); err != nil {
		return nil, eris.Wrap(err, "postgres: trim history")
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, eris.Wrap(err, "postgres: commit record search")
	}
	return e, nil
}

const postgresHistoryColumns = `id, company, provider, sentiment, report, searched_at`

func (s *PostgresStore) GetHistoryEntry(ctx context.Context, id string) (*model.HistoryEntry, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+postgresHistoryColumns+` FROM search_history WHERE id = $1`, id,
	)
	e, err := scanPostgresHistory(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, notFound("history entry", id)
	}
	return e, err
}

func (s *PostgresStore) ListHistory(ctx context.Context, limit int) ([]model.HistoryEntry, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+postgresHistoryColumns+` FROM search_history ORDER BY searched_at DESC LIMIT $1`,
		historyLimit(limit),
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list history")
	}
	defer rows.Close()

	out := []model.HistoryEntry{}
	for rows.Next() {
		e, err := scanPostgresHistory(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *e)
	}
	return out, eris.Wrap(rows.Err(), "postgres: list history iterate")
}

func (s *PostgresStore) RemoveHistoryEntry(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM search_history WHERE id = $1`, id)
	if err != nil {
		return eris.Wrapf(err, "postgres: remove history entry %s", id)
	}
	if tag.RowsAffected() == 0 {
		return notFound("history entry", id)
	}
	return nil
}

func (s *PostgresStore) ClearHistory(ctx context.Context) (int, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM search_history`)
	if err != nil {
		return 0, eris.Wrap(err, "postgres: clear history")
	}
	return int(tag.RowsAffected()), nil
}

func scanPostgresBookmark(row pgx.Row) (*model.Bookmark, error) {
	var b model.Bookmark
	var sentiment string
	var reportJSON []byte
	err := row.Scan(&b.ID, &b.Company, &b.Provider, &sentiment, &b.Notes, &reportJSON, &b.CreatedAt, &b.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, eris.Wrap(err, "postgres: scan bookmark")
	}
	b.Sentiment = model.Sentiment(sentiment)
	if b.Report, err = decodeReport(reportJSON); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal bookmark report")
	}
	return &b, nil
}

func scanPostgresHistory(row pgx.Row) (*model.HistoryEntry, error) {
	var e model.HistoryEntry
	var sentiment string
	var reportJSON []byte
	err := row.Scan(&e.ID, &e.Company, &e.Provider, &sentiment, &reportJSON, &e.SearchedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, eris.Wrap(err, "postgres: scan history entry")
	}
	e.Sentiment = model.Sentiment(sentiment)
	if e.Report, err = decodeReport(reportJSON); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal history report")
	}
	return &e, nil
}
