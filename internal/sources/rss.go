package sources

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/PranavKumarAV/Lets-stay-updated/internal/domain"
	"github.com/PranavKumarAV/Lets-stay-updated/internal/logger"
	"github.com/PranavKumarAV/Lets-stay-updated/internal/metrics"
)

// RSSFetcher pulls an outlet's feed and keeps entries that look both
// recent and complete.
type RSSFetcher struct {
	outlet  Outlet
	parser  *gofeed.Parser
	maxAge  time.Duration
	timeout time.Duration
}

func NewRSSFetcher(outlet Outlet, maxAge, timeout time.Duration) *RSSFetcher {
	return &RSSFetcher{
		outlet:  outlet,
		parser:  gofeed.NewParser(),
		maxAge:  maxAge,
		timeout: timeout,
	}
}

func (f *RSSFetcher) Name() string {
	return f.outlet.Name + " via rss"
}

func (f *RSSFetcher) Fetch(ctx context.Context, topics []string, count int) ([]domain.Article, error) {
	if f.outlet.FeedURL == "" {
		return nil, fmt.Errorf("no feed url for %s", f.outlet.Name)
	}

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	feed, err := f.parser.ParseURLWithContext(f.outlet.FeedURL, ctx)
	if err != nil {
		return nil, fmt.Errorf("parsing feed %s: %w", f.outlet.FeedURL, err)
	}

	cutoff := time.Now().Add(-f.maxAge)
	var out []domain.Article
	for _, item := range feed.Items {
		if len(out) >= count {
			break
		}
		link := resolveLink(f.outlet.FeedURL, item.Link)
		if item.Title == "" || link == "" {
			continue
		}
		published := itemTime(item)
		if published.IsZero() || published.Before(cutoff) {
			continue
		}

		content := item.Content
		if content == "" {
			content = item.Description
		}
		a := domain.Article{
			Title:       strings.TrimSpace(item.Title),
			Content:     strings.TrimSpace(content),
			URL:         link,
			Source:      f.outlet.Name,
			PublishedAt: published,
		}
		a.SetMeta("rss", true)
		if len(item.Authors) > 0 && item.Authors[0].Name != "" {
			a.SetMeta("author", item.Authors[0].Name)
		}
		out = append(out, a)
	}

	logger.Debug("rss feed fetched", "outlet", f.outlet.Name, "total", len(feed.Items), "kept", len(out))
	metrics.Global.AddArticlesFetched(len(out))
	return out, nil
}

func itemTime(item *gofeed.Item) time.Time {
	if item.PublishedParsed != nil {
		return *item.PublishedParsed
	}
	if item.UpdatedParsed != nil {
		return *item.UpdatedParsed
	}
	return time.Time{}
}

// resolveLink turns relative entry links into absolute ones against the
// feed's origin. Some feeds publish paths instead of full URLs.
func resolveLink(feedURL, link string) string {
	link = strings.TrimSpace(link)
	if link == "" {
		return ""
	}
	u, err := url.Parse(link)
	if err != nil {
		return ""
	}
	if u.IsAbs() {
		return link
	}
	base, err := url.Parse(feedURL)
	if err != nil {
		return ""
	}
	return base.ResolveReference(u).String()
}
