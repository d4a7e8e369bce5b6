package news

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/PranavKumarAV/Lets-stay-updated/internal/domain"
	"github.com/PranavKumarAV/Lets-stay-updated/internal/sources"
)

type stubRanker struct {
	summarizeCalls int
}

func (r *stubRanker) SelectSources(_ context.Context, _ []string, _ string, _ []string) []domain.Source {
	return []domain.Source{{Name: "Stub Source"}}
}

func (r *stubRanker) RankArticles(_ context.Context, articles []domain.Article, _ []string, _ map[string]any) []domain.Article {
	out := make([]domain.Article, len(articles))
	copy(out, articles)
	for i := range out {
		out[i].AIScore = 90 - i
	}
	return out
}

func (r *stubRanker) Summarize(_ context.Context, content string) string {
	r.summarizeCalls++
	return "summary of: " + content[:20]
}

type stubFetcher struct {
	name     string
	articles []domain.Article
	err      error
	calls    int
}

func (f *stubFetcher) Name() string { return f.name }

func (f *stubFetcher) Fetch(_ context.Context, _ []string, _ int) ([]domain.Article, error) {
	f.calls++
	return f.articles, f.err
}

type stubFactory struct {
	primary    []sources.Fetcher
	remaining  []sources.Fetcher
	lastResort sources.Fetcher
}

func (f *stubFactory) Strategies(_ []domain.Source) []sources.Fetcher { return f.primary }
func (f *stubFactory) Remaining(_ []domain.Source) []sources.Fetcher  { return f.remaining }
func (f *stubFactory) LastResort(_ []domain.Source) sources.Fetcher   { return f.lastResort }

func freshArticle(n int, text string) domain.Article {
	return domain.Article{
		Title:       fmt.Sprintf("Headline %d about %s", n, text),
		Content:     fmt.Sprintf("Body %d mentioning %s in depth.", n, text),
		URL:         fmt.Sprintf("https://example.com/a/%d", n),
		Source:      "Stub Source",
		PublishedAt: time.Now().Add(-time.Hour),
	}
}

func newTestAggregator(r Ranker, f StrategyFactory) *Aggregator {
	return NewAggregator(r, f, nil, Options{MaxAttempts: 3, RecencyWindow: 7 * 24 * time.Hour})
}

func TestGenerateHappyPath(t *testing.T) {
	var articles []domain.Article
	for i := 0; i < 6; i++ {
		articles = append(articles, freshArticle(i, "artificial intelligence"))
	}
	factory := &stubFactory{
		primary:    []sources.Fetcher{&stubFetcher{name: "primary", articles: articles}},
		lastResort: &stubFetcher{name: "mock"},
	}
	g := newTestAggregator(&stubRanker{}, factory)

	res, err := g.Generate(context.Background(), Request{Topics: []string{"ai"}, ArticleCount: 3})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if res.TotalCount != 3 || len(res.Articles) != 3 {
		t.Fatalf("got %d articles, want 3", len(res.Articles))
	}
	for i, a := range res.Articles {
		if a.AIScore == 0 {
			t.Errorf("article %d unscored", i)
		}
		if i > 0 && res.Articles[i-1].AIScore < a.AIScore {
			t.Errorf("articles not sorted at %d", i)
		}
	}
}

func TestGenerateDeduplicates(t *testing.T) {
	a := freshArticle(1, "machine learning")
	sameURL := a
	sameURL.Title = "Different headline on machine learning"
	sameTitle := freshArticle(2, "machine learning")
	sameTitle.Title = a.Title

	factory := &stubFactory{
		primary:    []sources.Fetcher{&stubFetcher{name: "p", articles: []domain.Article{a, sameURL, sameTitle}}},
		lastResort: &stubFetcher{name: "mock"},
	}
	g := newTestAggregator(&stubRanker{}, factory)

	res, err := g.Generate(context.Background(), Request{Topics: []string{"ai"}, ArticleCount: 5})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(res.Articles) != 1 {
		t.Fatalf("got %d articles, want 1 after dedupe", len(res.Articles))
	}
}

func TestGenerateSynonymMatch(t *testing.T) {
	a := freshArticle(1, "machine learning breakthroughs")
	offTopic := freshArticle(2, "quarterly earnings at the bakery")

	factory := &stubFactory{
		primary:    []sources.Fetcher{&stubFetcher{name: "p", articles: []domain.Article{a, offTopic}}},
		lastResort: &stubFetcher{name: "mock"},
	}
	g := newTestAggregator(&stubRanker{}, factory)

	res, err := g.Generate(context.Background(), Request{Topics: []string{"ai"}, ArticleCount: 5})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(res.Articles) != 1 || res.Articles[0].URL != a.URL {
		t.Fatalf("synonym expansion should keep only the ML article, got %+v", res.Articles)
	}
}

func TestGenerateRecencyFilter(t *testing.T) {
	fresh := freshArticle(1, "ai policy")
	stale := freshArticle(2, "ai policy")
	stale.PublishedAt = time.Now().Add(-30 * 24 * time.Hour)
	undated := freshArticle(3, "ai policy")
	undated.PublishedAt = time.Time{}

	factory := &stubFactory{
		primary:    []sources.Fetcher{&stubFetcher{name: "p", articles: []domain.Article{fresh, stale, undated}}},
		lastResort: &stubFetcher{name: "mock"},
	}
	g := newTestAggregator(&stubRanker{}, factory)

	res, err := g.Generate(context.Background(), Request{Topics: []string{"ai"}, ArticleCount: 5})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(res.Articles) != 1 || res.Articles[0].URL != fresh.URL {
		t.Fatalf("only the fresh article should survive, got %d", len(res.Articles))
	}
}

func TestGenerateEmptyYieldIsNotError(t *testing.T) {
	factory := &stubFactory{
		primary:    []sources.Fetcher{&stubFetcher{name: "empty"}},
		lastResort: &stubFetcher{name: "mock"},
	}
	g := newTestAggregator(&stubRanker{}, factory)

	res, err := g.Generate(context.Background(), Request{Topics: []string{"ai"}, ArticleCount: 5})
	if err != nil {
		t.Fatalf("empty yield must not be an error, got %v", err)
	}
	if res.TotalCount != 0 || len(res.Articles) != 0 {
		t.Fatalf("want empty result, got %+v", res)
	}
}

func TestGenerateFetcherErrorFallsThrough(t *testing.T) {
	good := freshArticle(1, "ai safety")
	factory := &stubFactory{
		primary: []sources.Fetcher{
			&stubFetcher{name: "broken", err: errors.New("api down")},
			&stubFetcher{name: "working", articles: []domain.Article{good}},
		},
		lastResort: &stubFetcher{name: "mock"},
	}
	g := newTestAggregator(&stubRanker{}, factory)

	res, err := g.Generate(context.Background(), Request{Topics: []string{"ai"}, ArticleCount: 1})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(res.Articles) != 1 {
		t.Fatalf("fallback fetcher should supply the article, got %d", len(res.Articles))
	}
}

func TestGenerateTopUp(t *testing.T) {
	primary := &stubFetcher{name: "primary", articles: []domain.Article{freshArticle(1, "ai ethics")}}
	extra := &stubFetcher{name: "extra", articles: []domain.Article{freshArticle(2, "ai ethics")}}
	factory := &stubFactory{
		primary:    []sources.Fetcher{primary},
		remaining:  []sources.Fetcher{extra},
		lastResort: &stubFetcher{name: "mock"},
	}
	g := newTestAggregator(&stubRanker{}, factory)

	res, err := g.Generate(context.Background(), Request{Topics: []string{"ai"}, ArticleCount: 2})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(res.Articles) != 2 {
		t.Fatalf("top-up should close the gap, got %d", len(res.Articles))
	}
	if extra.calls == 0 {
		t.Fatal("remaining outlet was never queried")
	}
}

func TestGenerateLastResort(t *testing.T) {
	mock := &stubFetcher{name: "mock", articles: []domain.Article{freshArticle(9, "ai roundup")}}
	factory := &stubFactory{
		primary:    []sources.Fetcher{&stubFetcher{name: "empty"}},
		lastResort: mock,
	}
	g := newTestAggregator(&stubRanker{}, factory)

	res, err := g.Generate(context.Background(), Request{Topics: []string{"ai"}, ArticleCount: 1})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(res.Articles) != 1 || mock.calls != 1 {
		t.Fatalf("last resort should fire exactly once, articles=%d calls=%d", len(res.Articles), mock.calls)
	}
}

func TestGenerateSummaries(t *testing.T) {
	long := freshArticle(1, "ai research")
	long.Content = "This body is comfortably longer than one hundred characters so the summarizer should be invoked for it, definitely."
	short := freshArticle(2, "ai research")
	short.Content = "Short ai note."

	ranker := &stubRanker{}
	factory := &stubFactory{
		primary:    []sources.Fetcher{&stubFetcher{name: "p", articles: []domain.Article{long, short}}},
		lastResort: &stubFetcher{name: "mock"},
	}
	g := newTestAggregator(ranker, factory)

	res, err := g.Generate(context.Background(), Request{Topics: []string{"ai"}, ArticleCount: 5, Summarize: true})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if ranker.summarizeCalls != 1 {
		t.Fatalf("summarizer called %d times, want 1 (short content used as-is)", ranker.summarizeCalls)
	}
	for _, a := range res.Articles {
		if _, ok := a.Metadata["summary"]; !ok {
			t.Errorf("article %q missing summary metadata", a.Title)
		}
	}
}

func TestExpandTopics(t *testing.T) {
	expanded := expandTopics([]string{"AI", "ai"})
	found := false
	for _, term := range expanded {
		if term == "machine learning" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expansion of ai should include machine learning: %v", expanded)
	}
	seen := map[string]bool{}
	for _, term := range expanded {
		if seen[term] {
			t.Fatalf("duplicate term %q", term)
		}
		seen[term] = true
	}
}

func TestContainsAnyWordBoundary(t *testing.T) {
	if containsAny("the senator said nothing", []string{"ai"}) {
		t.Error("short token must not match inside another word")
	}
	if !containsAny("breakthrough in AI today", []string{"ai"}) {
		t.Error("short token should match as a whole word")
	}
	if !containsAny("advances in machine learning", []string{"machine learning"}) {
		t.Error("phrases match as substrings")
	}
	if !relevant("anything", "at all", nil) {
		t.Error("empty topic list passes everything")
	}
}
