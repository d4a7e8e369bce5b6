// Package news holds the aggregation pipeline: source selection, the
// fetch-retry-merge loop, dedupe and relevance filtering, ranking and
// summarization.
package news

import (
	"context"
	"strings"
	"time"

	"github.com/PranavKumarAV/Lets-stay-updated/internal/domain"
	"github.com/PranavKumarAV/Lets-stay-updated/internal/logger"
	"github.com/PranavKumarAV/Lets-stay-updated/internal/metrics"
	"github.com/PranavKumarAV/Lets-stay-updated/internal/sources"
)

const summarizeMinLen = 100

// Ranker is the model-backed stage: source selection, scoring and
// summarization, each degrading to a local heuristic internally.
type Ranker interface {
	SelectSources(ctx context.Context, topics []string, region string, excluded []string) []domain.Source
	RankArticles(ctx context.Context, articles []domain.Article, topics []string, prefs map[string]any) []domain.Article
	Summarize(ctx context.Context, content string) string
}

// StrategyFactory builds the ordered fetch chain for a set of selected
// sources, plus the top-up and last-resort fetchers.
type StrategyFactory interface {
	Strategies(selected []domain.Source) []sources.Fetcher
	Remaining(selected []domain.Source) []sources.Fetcher
	LastResort(selected []domain.Source) sources.Fetcher
}

// ContentEnricher optionally fills in fuller article text and checks
// links. A nil enricher disables both.
type ContentEnricher interface {
	EnrichContent(ctx context.Context, url, current string, minLen int) string
	Reachable(ctx context.Context, url string) bool
}

// Request describes one aggregation run.
type Request struct {
	Topics          []string
	Region          string
	ArticleCount    int
	ExcludedSources []string
	Preferences     map[string]any
	Summarize       bool
}

// Result is the pipeline output. An empty Articles slice with a nil error
// means the run succeeded but found nothing.
type Result struct {
	Articles   []domain.Article
	Sources    []domain.Source
	TotalCount int
}

// Options tune the pipeline.
type Options struct {
	MaxAttempts   int
	RecencyWindow time.Duration
	VerifyURLs    bool
	EnrichMinLen  int
}

// Aggregator runs the acquisition pipeline. All state is per-request; the
// struct itself is safe to share.
type Aggregator struct {
	ranker   Ranker
	factory  StrategyFactory
	enricher ContentEnricher
	opts     Options
}

func NewAggregator(ranker Ranker, factory StrategyFactory, enricher ContentEnricher, opts Options) *Aggregator {
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 5
	}
	if opts.RecencyWindow <= 0 {
		opts.RecencyWindow = 7 * 24 * time.Hour
	}
	return &Aggregator{ranker: ranker, factory: factory, enricher: enricher, opts: opts}
}

// Generate runs the whole pipeline for one request.
func (g *Aggregator) Generate(ctx context.Context, req Request) (*Result, error) {
	start := time.Now()
	defer metrics.Global.RecordProcessingTime(time.Since(start))

	selected := g.ranker.SelectSources(ctx, req.Topics, req.Region, req.ExcludedSources)
	logger.Info("sources selected", "count", len(selected), "topics", strings.Join(req.Topics, ","))

	collected := g.collect(ctx, req, selected)
	if len(collected) == 0 {
		logger.Warn("no valid articles collected", "topics", strings.Join(req.Topics, ","))
		return &Result{Articles: []domain.Article{}, Sources: selected, TotalCount: 0}, nil
	}

	ranked := g.ranker.RankArticles(ctx, collected, req.Topics, req.Preferences)
	if len(ranked) > req.ArticleCount {
		ranked = ranked[:req.ArticleCount]
	}

	if req.Summarize {
		g.attachSummaries(ctx, ranked)
	}

	metrics.Global.SetLastRun()
	logger.Info("aggregation complete",
		"articles", len(ranked),
		"collected", len(collected),
		"duration", time.Since(start))
	return &Result{Articles: ranked, Sources: selected, TotalCount: len(ranked)}, nil
}

// collect runs the fetch loop, the top-up pass and the last-resort
// generator until the target count is met or attempts run out.
func (g *Aggregator) collect(ctx context.Context, req Request, selected []domain.Source) []domain.Article {
	acc := newAccumulator(req.Topics, g.opts.RecencyWindow)
	strategies := g.factory.Strategies(selected)

	for attempt := 0; attempt < g.opts.MaxAttempts && acc.len() < req.ArticleCount; attempt++ {
		want := req.ArticleCount * 3
		if attempt > 0 {
			remaining := req.ArticleCount - acc.len()
			want = remaining * 2
			if want < 1 {
				want = 1
			}
		}

		progressed := false
		for _, fetcher := range strategies {
			if acc.len() >= req.ArticleCount {
				break
			}
			fetched, err := fetcher.Fetch(ctx, req.Topics, want)
			if err != nil {
				logger.Warn("fetcher failed", "fetcher", fetcher.Name(), "error", err)
				continue
			}
			if g.ingest(ctx, acc, fetched) > 0 {
				progressed = true
			}
		}
		if !progressed && attempt > 0 {
			break
		}
	}

	if acc.len() < req.ArticleCount {
		g.topUp(ctx, req, selected, acc)
	}
	if acc.len() == 0 {
		fetched, err := g.factory.LastResort(selected).Fetch(ctx, req.Topics, req.ArticleCount)
		if err == nil {
			g.ingest(ctx, acc, fetched)
		}
	}
	return acc.articles
}

// topUp walks outlets not already queried, one at a time, fetching just
// enough to close the gap.
func (g *Aggregator) topUp(ctx context.Context, req Request, selected []domain.Source, acc *accumulator) {
	for _, fetcher := range g.factory.Remaining(selected) {
		remaining := req.ArticleCount - acc.len()
		if remaining <= 0 {
			return
		}
		fetched, err := fetcher.Fetch(ctx, req.Topics, remaining*2)
		if err != nil {
			logger.Debug("top-up fetch failed", "fetcher", fetcher.Name(), "error", err)
			continue
		}
		g.ingest(ctx, acc, fetched)
	}
}

// ingest validates and admits fetched articles, returning how many were
// accepted.
func (g *Aggregator) ingest(ctx context.Context, acc *accumulator, fetched []domain.Article) int {
	accepted := 0
	for _, a := range fetched {
		if !acc.accept(a) {
			continue
		}
		if g.opts.VerifyURLs && g.enricher != nil && !g.enricher.Reachable(ctx, a.URL) {
			metrics.Global.IncrementArticlesRejected()
			acc.forget(a)
			continue
		}
		if g.enricher != nil && g.opts.EnrichMinLen > 0 {
			a.Content = g.enricher.EnrichContent(ctx, a.URL, a.Content, g.opts.EnrichMinLen)
		}
		acc.add(a)
		accepted++
	}
	return accepted
}

func (g *Aggregator) attachSummaries(ctx context.Context, articles []domain.Article) {
	for i := range articles {
		content := strings.TrimSpace(articles[i].Content)
		if content == "" {
			continue
		}
		if len(content) < summarizeMinLen {
			articles[i].SetMeta("summary", content)
			continue
		}
		articles[i].SetMeta("summary", g.ranker.Summarize(ctx, content))
	}
}

// accumulator tracks the per-request article set and its dedupe keys.
type accumulator struct {
	articles []domain.Article
	seenURL  map[string]bool
	seenTitle map[string]bool
	topics   []string
	window   time.Duration
	now      time.Time
}

func newAccumulator(topics []string, window time.Duration) *accumulator {
	return &accumulator{
		seenURL:  make(map[string]bool),
		seenTitle: make(map[string]bool),
		topics:   expandTopics(topics),
		window:   window,
		now:      time.Now(),
	}
}

func (acc *accumulator) len() int { return len(acc.articles) }

// accept validates one article and reserves its dedupe keys. The caller
// must follow with add or forget.
func (acc *accumulator) accept(a domain.Article) bool {
	url := strings.TrimSpace(a.URL)
	title := strings.ToLower(strings.TrimSpace(a.Title))
	if url == "" || title == "" {
		metrics.Global.IncrementArticlesRejected()
		return false
	}
	if acc.seenURL[url] || acc.seenTitle[title] {
		metrics.Global.IncrementDuplicatesFiltered()
		return false
	}
	if !relevant(a.Title, a.Content, acc.topics) {
		metrics.Global.IncrementArticlesRejected()
		return false
	}
	if !a.Recent(acc.now, acc.window) {
		metrics.Global.IncrementArticlesRejected()
		return false
	}
	acc.seenURL[url] = true
	acc.seenTitle[title] = true
	return true
}

func (acc *accumulator) add(a domain.Article) {
	acc.articles = append(acc.articles, a)
}

func (acc *accumulator) forget(a domain.Article) {
	delete(acc.seenURL, strings.TrimSpace(a.URL))
	delete(acc.seenTitle, strings.ToLower(strings.TrimSpace(a.Title)))
}
