// Package storage persists generated articles in SQLite and keeps the
// small JSON file mapping outlet names to NewsAPI source ids.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "modernc.org/sqlite"

	"github.com/PranavKumarAV/Lets-stay-updated/internal/domain"
	"github.com/PranavKumarAV/Lets-stay-updated/internal/logger"
)

const schema = `
CREATE TABLE IF NOT EXISTS news_articles (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	title        TEXT NOT NULL,
	content      TEXT NOT NULL DEFAULT '',
	url          TEXT NOT NULL,
	source       TEXT NOT NULL,
	topic        TEXT NOT NULL DEFAULT '',
	ai_score     INTEGER NOT NULL DEFAULT 0,
	published_at TIMESTAMP,
	fetched_at   TIMESTAMP NOT NULL,
	metadata     TEXT NOT NULL DEFAULT '{}'
);
CREATE INDEX IF NOT EXISTS idx_news_articles_topic ON news_articles(topic);
CREATE INDEX IF NOT EXISTS idx_news_articles_score ON news_articles(ai_score DESC);
CREATE INDEX IF NOT EXISTS idx_news_articles_fetched ON news_articles(fetched_at);
`

// Store wraps the SQLite connection for article persistence.
type Store struct {
	db *sql.DB
	sb sq.StatementBuilderType
}

// Open opens (or creates) the database at path and applies the schema.
// SQLite allows one writer, so the pool is capped at a single connection.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("applying schema: %w", err)
	}
	logger.Info("database ready", "path", path)

	return &Store{
		db: db,
		sb: sq.StatementBuilder.PlaceholderFormat(sq.Question),
	}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// CreateArticle inserts one article, assigning its id and a fetch
// timestamp when missing.
func (s *Store) CreateArticle(ctx context.Context, a *domain.Article) error {
	if a.FetchedAt.IsZero() {
		a.FetchedAt = time.Now().UTC()
	}
	meta := []byte("{}")
	if a.Metadata != nil {
		var err error
		meta, err = json.Marshal(a.Metadata)
		if err != nil {
			return fmt.Errorf("encoding metadata: %w", err)
		}
	}

	query, args, err := s.sb.
		Insert("news_articles").
		Columns("title", "content", "url", "source", "topic", "ai_score", "published_at", "fetched_at", "metadata").
		Values(a.Title, a.Content, a.URL, a.Source, a.Topic, a.AIScore, nullTime(a.PublishedAt), a.FetchedAt, string(meta)).
		ToSql()
	if err != nil {
		return fmt.Errorf("building insert: %w", err)
	}
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("inserting article: %w", err)
	}
	if id, err := res.LastInsertId(); err == nil {
		a.ID = id
	}
	return nil
}

// SaveArticles persists a batch, logging and skipping individual failures.
// It returns how many made it in.
func (s *Store) SaveArticles(ctx context.Context, articles []domain.Article) int {
	saved := 0
	for i := range articles {
		if err := s.CreateArticle(ctx, &articles[i]); err != nil {
			logger.Warn("failed to save article", "title", articles[i].Title, "error", err)
			continue
		}
		saved++
	}
	return saved
}

// ArticleFilter narrows QueryArticles. Zero values mean "no constraint".
type ArticleFilter struct {
	Topics   []string
	Source   string
	MinScore int
	Limit    int
}

// QueryArticles returns stored articles matching the filter, best scores
// first, newest first within a score.
func (s *Store) QueryArticles(ctx context.Context, f ArticleFilter) ([]domain.Article, error) {
	q := s.sb.
		Select("id", "title", "content", "url", "source", "topic", "ai_score", "published_at", "fetched_at", "metadata").
		From("news_articles").
		OrderBy("ai_score DESC", "published_at DESC")

	if len(f.Topics) > 0 {
		q = q.Where(sq.Eq{"topic": f.Topics})
	}
	if f.Source != "" {
		q = q.Where(sq.Eq{"source": f.Source})
	}
	if f.MinScore > 0 {
		q = q.Where(sq.GtOrEq{"ai_score": f.MinScore})
	}
	if f.Limit > 0 {
		q = q.Limit(uint64(f.Limit))
	}

	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("building query: %w", err)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying articles: %w", err)
	}
	defer rows.Close()

	var out []domain.Article
	for rows.Next() {
		var (
			a         domain.Article
			published sql.NullTime
			meta      string
		)
		if err := rows.Scan(&a.ID, &a.Title, &a.Content, &a.URL, &a.Source, &a.Topic, &a.AIScore, &published, &a.FetchedAt, &meta); err != nil {
			return nil, fmt.Errorf("scanning article: %w", err)
		}
		if published.Valid {
			a.PublishedAt = published.Time
		}
		if meta != "" && meta != "{}" {
			if err := json.Unmarshal([]byte(meta), &a.Metadata); err != nil {
				logger.Warn("unreadable article metadata", "id", a.ID, "error", err)
			}
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// PurgeOlderThan deletes articles fetched more than age ago and reports
// how many went.
func (s *Store) PurgeOlderThan(ctx context.Context, age time.Duration) (int64, error) {
	cutoff := time.Now().UTC().Add(-age)
	query, args, err := s.sb.
		Delete("news_articles").
		Where(sq.Lt{"fetched_at": cutoff}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("building delete: %w", err)
	}
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("purging articles: %w", err)
	}
	n, _ := res.RowsAffected()
	if n > 0 {
		logger.Info("purged stale articles", "count", n, "cutoff", cutoff)
	}
	return n, nil
}

// CountArticles reports how many articles are stored.
func (s *Store) CountArticles(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM news_articles").Scan(&n)
	return n, err
}

func nullTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t
}

