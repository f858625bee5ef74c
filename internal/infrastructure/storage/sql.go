package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	sq "github.com/Masterminds/squirrel"
	"github.com/lib/pq"
	_ "modernc.org/sqlite"

	"TeluguNews/internal/domain"
	"TeluguNews/internal/logging"
	"TeluguNews/internal/ports"
)

// Supported database/sql driver names.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

const metaKey = "meta"

const schema = `
CREATE TABLE IF NOT EXISTS news (
	id TEXT PRIMARY KEY,
	category TEXT NOT NULL,
	source TEXT NOT NULL,
	published_at BIGINT NOT NULL,
	payload TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_news_published ON news(published_at DESC);
CREATE INDEX IF NOT EXISTS idx_news_category ON news(category, published_at DESC);
CREATE TABLE IF NOT EXISTS meta (
	name TEXT PRIMARY KEY,
	payload TEXT NOT NULL
);
`

// SQLStore persists one row per article plus a meta row. Category views
// are served by query (ListCategory) rather than materialized.
type SQLStore struct {
	db      *sql.DB
	driver  string
	builder sq.StatementBuilderType
	logger  *slog.Logger
}

var _ ports.ArticleStore = (*SQLStore)(nil)

// OpenSQL opens the database, applies the schema and returns a ready store.
func OpenSQL(ctx context.Context, driver, dsn string) (*SQLStore, error) {
	switch driver {
	case DriverSQLite, DriverPostgres:
	default:
		return nil, fmt.Errorf("unsupported sql driver %q", driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if driver == DriverSQLite {
		db.SetMaxOpenConns(1)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if driver == DriverSQLite && dsn != ":memory:" {
		if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("enable WAL mode: %w", err)
		}
	}

	s := NewSQLStore(db, driver)
	if err := s.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// NewSQLStore wires an already opened sql.DB.
func NewSQLStore(db *sql.DB, driver string) *SQLStore {
	var placeholder sq.PlaceholderFormat = sq.Question
	if driver == DriverPostgres {
		placeholder = sq.Dollar
	}
	return &SQLStore{
		db:      db,
		driver:  driver,
		builder: sq.StatementBuilder.PlaceholderFormat(placeholder),
		logger:  logging.OrDiscard(nil),
	}
}

// WithLogger sets the logger used to report skipped rows.
func (s *SQLStore) WithLogger(log *slog.Logger) *SQLStore {
	s.logger = logging.OrDiscard(log)
	return s
}

// Migrate creates tables and indexes if they do not exist.
func (s *SQLStore) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// Close releases the connection pool.
func (s *SQLStore) Close() error {
	return s.db.Close()
}

// ReadAll returns every stored article, newest first. Rows whose payload
// does not decode are logged and left out, so one bad row never hides the rest.
func (s *SQLStore) ReadAll(ctx context.Context) ([]domain.Article, error) {
	query := s.builder.
		Select("id", "payload").
		From("news").
		OrderBy("published_at DESC", "id ASC")
	return s.queryArticles(ctx, query)
}

// ListCategory returns up to limit newest articles of one category.
func (s *SQLStore) ListCategory(ctx context.Context, category domain.Category, limit int) ([]domain.Article, error) {
	query := s.builder.
		Select("id", "payload").
		From("news").
		Where(sq.Eq{"category": string(category)}).
		OrderBy("published_at DESC", "id ASC")
	if limit > 0 {
		query = query.Limit(uint64(limit))
	}
	return s.queryArticles(ctx, query)
}

// ReplaceAll makes the table hold exactly articles inside one transaction.
func (s *SQLStore) ReplaceAll(ctx context.Context, articles []domain.Article) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	ids := make([]string, 0, len(articles))
	for _, a := range articles {
		ids = append(ids, a.ID)
	}

	if err := s.deleteExcept(ctx, tx, ids); err != nil {
		return err
	}

	for _, a := range articles {
		payload, err := json.Marshal(a)
		if err != nil {
			return fmt.Errorf("encode article %s: %w", a.ID, err)
		}

		query, args, err := s.builder.
			Insert("news").
			Columns("id", "category", "source", "published_at", "payload").
			Values(a.ID, string(a.Category), a.Source, a.PublishedAt.UnixMilli(), string(payload)).
			Suffix(`ON CONFLICT (id) DO UPDATE SET
				category = excluded.category,
				source = excluded.source,
				published_at = excluded.published_at,
				payload = excluded.payload`).
			ToSql()
		if err != nil {
			return fmt.Errorf("build upsert: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("upsert article %s: %w", a.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// ReadMeta returns domain.ErrNotFound until meta has been written once.
func (s *SQLStore) ReadMeta(ctx context.Context) (domain.Meta, error) {
	query, args, err := s.builder.
		Select("payload").
		From("meta").
		Where(sq.Eq{"name": metaKey}).
		ToSql()
	if err != nil {
		return domain.Meta{}, fmt.Errorf("build meta query: %w", err)
	}

	var payload string
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&payload); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Meta{}, domain.ErrNotFound
		}
		return domain.Meta{}, fmt.Errorf("query meta: %w", err)
	}

	var meta domain.Meta
	if err := json.Unmarshal([]byte(payload), &meta); err != nil {
		return domain.Meta{}, fmt.Errorf("%w: meta: %v", domain.ErrCorrupt, err)
	}
	return meta, nil
}

// WriteMeta upserts the single meta row.
func (s *SQLStore) WriteMeta(ctx context.Context, meta domain.Meta) error {
	payload, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("encode meta: %w", err)
	}

	query, args, err := s.builder.
		Insert("meta").
		Columns("name", "payload").
		Values(metaKey, string(payload)).
		Suffix("ON CONFLICT (name) DO UPDATE SET payload = excluded.payload").
		ToSql()
	if err != nil {
		return fmt.Errorf("build meta upsert: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert meta: %w", err)
	}
	return nil
}

func (s *SQLStore) deleteExcept(ctx context.Context, tx *sql.Tx, ids []string) error {
	del := s.builder.Delete("news")
	switch {
	case len(ids) == 0:
	case s.driver == DriverPostgres:
		del = del.Where("id <> ALL(?)", pq.StringArray(ids))
	default:
		del = del.Where(sq.NotEq{"id": ids})
	}

	query, args, err := del.ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("delete stale articles: %w", err)
	}
	return nil
}

func (s *SQLStore) queryArticles(ctx context.Context, query sq.SelectBuilder) ([]domain.Article, error) {
	stmt, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("query articles: %w", err)
	}

	articles := []domain.Article{}
	skipped := 0
	for rows.Next() {
		var (
			id      string
			payload string
		)
		if err := rows.Scan(&id, &payload); err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("scan article: %w", err)
		}
		var a domain.Article
		if err := json.Unmarshal([]byte(payload), &a); err != nil {
			s.logger.Warn("skipping undecodable article row", "id", id, "error", err)
			skipped++
			continue
		}
		articles = append(articles, a)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		_ = rows.Close()
		return nil, fmt.Errorf("rows iteration: %w", rowsErr)
	}

	if closeErr := rows.Close(); closeErr != nil {
		return nil, fmt.Errorf("close rows: %w", closeErr)
	}
	if skipped > 0 {
		s.logger.Warn("article rows skipped", "skipped", skipped, "kept", len(articles))
	}

	return articles, nil
}
