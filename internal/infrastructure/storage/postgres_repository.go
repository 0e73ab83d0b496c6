package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"ContentDigest/internal/domain"
	"ContentDigest/internal/ports"
)

const schema = `CREATE TABLE IF NOT EXISTS summaries (
	url               TEXT PRIMARY KEY,
	title             TEXT NOT NULL DEFAULT '',
	site_name         TEXT NOT NULL DEFAULT '',
	content_kind      TEXT NOT NULL,
	platform          TEXT NOT NULL DEFAULT '',
	media_id          TEXT NOT NULL DEFAULT '',
	transcript_source TEXT NOT NULL DEFAULT '',
	summary           TEXT NOT NULL DEFAULT '',
	provider          TEXT NOT NULL DEFAULT '',
	status            TEXT NOT NULL,
	published_at      TIMESTAMPTZ,
	created_at        TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at        TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

// PostgresRepository persists summarized pages into Postgres.
type PostgresRepository struct {
	db      *sql.DB
	builder sq.StatementBuilderType
}

var _ ports.SummaryRepository = (*PostgresRepository)(nil)

// NewPostgresRepository wires a sql.DB implementation.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{
		db:      db,
		builder: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// Open connects to Postgres and verifies the connection.
func Open(dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}

// EnsureSchema creates the summaries table when it does not exist yet.
func (r *PostgresRepository) EnsureSchema(ctx context.Context) error {
	if r.db == nil {
		return nil
	}
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// AlreadyProcessed returns a map with URLs that already exist in storage.
func (r *PostgresRepository) AlreadyProcessed(ctx context.Context, urls []string) (map[string]bool, error) {
	if r.db == nil || len(urls) == 0 {
		return map[string]bool{}, nil
	}

	query, args, err := r.builder.
		Select("url").
		From("summaries").
		Where("url = ANY(?)", pq.StringArray(urls)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build processed query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query processed: %w", err)
	}

	result := make(map[string]bool)
	for rows.Next() {
		var url string
		if err := rows.Scan(&url); err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("scan url: %w", err)
		}
		result[url] = true
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		_ = rows.Close()
		return nil, fmt.Errorf("rows iteration: %w", rowsErr)
	}

	if closeErr := rows.Close(); closeErr != nil {
		return nil, fmt.Errorf("close rows: %w", closeErr)
	}

	return result, nil
}

// SaveSummary upserts the summary record keyed by page URL.
func (r *PostgresRepository) SaveSummary(ctx context.Context, record domain.SummaryRecord) error {
	if r.db == nil {
		return nil
	}

	query, args, err := r.builder.
		Insert("summaries").
		Columns("url", "title", "site_name", "content_kind", "platform", "media_id",
			"transcript_source", "summary", "provider", "status", "published_at").
		Values(
			record.Article.URL,
			record.Article.Title,
			record.Article.SiteName,
			string(record.ContentKind),
			string(record.Platform),
			record.MediaID,
			record.TranscriptSource,
			record.Summary,
			record.Provider,
			string(record.Status),
			nullTime(record.Article.PublishedAt),
		).
		Suffix(`ON CONFLICT (url) DO UPDATE
			SET title = EXCLUDED.title,
			    site_name = EXCLUDED.site_name,
			    content_kind = EXCLUDED.content_kind,
			    platform = EXCLUDED.platform,
			    media_id = EXCLUDED.media_id,
			    transcript_source = EXCLUDED.transcript_source,
			    summary = EXCLUDED.summary,
			    provider = EXCLUDED.provider,
			    status = EXCLUDED.status,
			    published_at = EXCLUDED.published_at,
			    updated_at = NOW()`).
		ToSql()
	if err != nil {
		return fmt.Errorf("build upsert: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert summary: %w", err)
	}

	return nil
}

func nullTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t, Valid: !t.IsZero()}
}
