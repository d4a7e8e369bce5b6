package sources

import (
	"strings"
	"time"

	"github.com/PranavKumarAV/Lets-stay-updated/internal/domain"
)

// Factory turns selected sources into an ordered fetch chain: NewsAPI
// first where usable, then RSS feeds, and a mock generator as the final
// safety net.
type Factory struct {
	registry *Registry
	newsapi  *NewsAPIClient
	maxAge   time.Duration
	timeout  time.Duration
}

func NewFactory(registry *Registry, newsapi *NewsAPIClient, maxAge, timeout time.Duration) *Factory {
	return &Factory{registry: registry, newsapi: newsapi, maxAge: maxAge, timeout: timeout}
}

// Strategies builds the fetch chain for the selected sources. Outlets the
// registry does not know still get a NewsAPI keyword fetcher, since the
// API can search without a source id.
func (f *Factory) Strategies(selected []domain.Source) []Fetcher {
	var chain []Fetcher
	var feeds []Fetcher

	for _, s := range selected {
		outlet, known := f.registry.Lookup(s.Name)
		if !known {
			outlet = Outlet{Name: s.Name}
		}
		if f.newsapi != nil && f.newsapi.Enabled() {
			chain = append(chain, NewNewsAPIFetcher(f.newsapi, outlet))
		}
		if outlet.FeedURL != "" {
			feeds = append(feeds, NewRSSFetcher(outlet, f.maxAge, f.timeout))
		}
	}
	return append(chain, feeds...)
}

// LastResort returns the mock generator used only after the primary chain
// and the top-up pass both came up empty-handed.
func (f *Factory) LastResort(selected []domain.Source) Fetcher {
	source := "News Wire"
	if len(selected) > 0 {
		source = selected[0].Name
	}
	return NewMockFetcher(source)
}

// Remaining builds RSS fetchers for registry outlets not already used, so
// a short harvest can be topped up from the rest of the registry.
func (f *Factory) Remaining(selected []domain.Source) []Fetcher {
	used := make(map[string]bool, len(selected))
	for _, s := range selected {
		used[strings.ToLower(s.Name)] = true
	}

	var out []Fetcher
	for _, outlet := range f.registry.Remaining(used) {
		if outlet.FeedURL == "" {
			continue
		}
		out = append(out, NewRSSFetcher(outlet, f.maxAge, f.timeout))
	}
	return out
}
