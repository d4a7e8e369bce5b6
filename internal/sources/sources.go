// Package sources fetches raw articles from NewsAPI, RSS feeds and, as a
// last resort, generated mock data. Each strategy implements Fetcher so
// the aggregator can walk a fallback chain without knowing what backs it.
package sources

import (
	"context"

	"github.com/PranavKumarAV/Lets-stay-updated/internal/domain"
)

// Fetcher is one article-fetching strategy.
type Fetcher interface {
	Name() string
	Fetch(ctx context.Context, topics []string, count int) ([]domain.Article, error)
}
