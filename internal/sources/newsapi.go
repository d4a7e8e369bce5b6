package sources

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/PranavKumarAV/Lets-stay-updated/internal/cache"
	"github.com/PranavKumarAV/Lets-stay-updated/internal/domain"
	"github.com/PranavKumarAV/Lets-stay-updated/internal/logger"
	"github.com/PranavKumarAV/Lets-stay-updated/internal/metrics"
	"github.com/PranavKumarAV/Lets-stay-updated/internal/storage"
)

const (
	defaultNewsAPIBase = "https://newsapi.org"
	maxPageSize        = 100
	sourceIDCacheTTL   = 12 * time.Hour
	lookbackDays       = 7
)

// ErrRateLimited means every configured NewsAPI key is exhausted; callers
// should move down the fallback chain for the rest of the process.
var ErrRateLimited = errors.New("newsapi: all keys rate limited")

// NewsAPIClient is the long-lived NewsAPI transport shared by per-outlet
// fetchers. It rotates across keys on 429 and remembers when the whole
// account pool is exhausted.
type NewsAPIClient struct {
	baseURL    string
	httpClient *http.Client
	cache      *cache.Cache
	ids        *storage.SourceIDStore

	mu          sync.Mutex
	keys        []string
	keyIdx      int
	rateLimited bool
}

func NewNewsAPIClient(keys []string, timeout time.Duration, c *cache.Cache, ids *storage.SourceIDStore) *NewsAPIClient {
	return &NewsAPIClient{
		baseURL:    defaultNewsAPIBase,
		httpClient: &http.Client{Timeout: timeout},
		cache:      c,
		ids:        ids,
		keys:       keys,
	}
}

// Enabled reports whether NewsAPI is worth trying at all.
func (c *NewsAPIClient) Enabled() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.keys) > 0 && !c.rateLimited
}

func (c *NewsAPIClient) currentKey() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.keys) == 0 || c.rateLimited {
		return "", false
	}
	return c.keys[c.keyIdx], true
}

// rotateKey advances to the next key after a 429. When the rotation wraps
// all the way around, the pool is marked exhausted.
func (c *NewsAPIClient) rotateKey() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.keyIdx++
	if c.keyIdx >= len(c.keys) {
		c.keyIdx = 0
		c.rateLimited = true
		logger.Warn("every newsapi key is rate limited, disabling newsapi for this run")
		return false
	}
	logger.Info("rotating newsapi key", "index", c.keyIdx)
	return true
}

type newsAPIResponse struct {
	Status   string `json:"status"`
	Message  string `json:"message"`
	Articles []struct {
		Source struct {
			ID   string `json:"id"`
			Name string `json:"name"`
		} `json:"source"`
		Author      string `json:"author"`
		Title       string `json:"title"`
		Description string `json:"description"`
		URL         string `json:"url"`
		PublishedAt string `json:"publishedAt"`
		Content     string `json:"content"`
	} `json:"articles"`
}

// get performs one API call, rotating keys on 429 until one works or the
// pool is exhausted.
func (c *NewsAPIClient) get(ctx context.Context, path string, params url.Values, out any) error {
	for {
		key, ok := c.currentKey()
		if !ok {
			return ErrRateLimited
		}
		params.Set("apiKey", key)

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), nil)
		if err != nil {
			return fmt.Errorf("building request: %w", err)
		}
		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("calling newsapi: %w", err)
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			resp.Body.Close()
			if !c.rotateKey() {
				return ErrRateLimited
			}
			continue
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			return fmt.Errorf("newsapi status %d", resp.StatusCode)
		}

		err = json.NewDecoder(resp.Body).Decode(out)
		resp.Body.Close()
		if err != nil {
			return fmt.Errorf("decoding newsapi response: %w", err)
		}
		return nil
	}
}

// Everything queries /v2/everything for the topics, optionally pinned to a
// source id.
func (c *NewsAPIClient) Everything(ctx context.Context, topics []string, sourceID string, count int) ([]domain.Article, error) {
	pageSize := count * 2
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	params := url.Values{
		"q":        {strings.Join(topics, " OR ")},
		"language": {"en"},
		"sortBy":   {"publishedAt"},
		"from":     {time.Now().UTC().AddDate(0, 0, -lookbackDays).Format("2006-01-02")},
		"pageSize": {fmt.Sprint(pageSize)},
	}
	if sourceID != "" {
		params.Set("sources", sourceID)
	}

	var parsed newsAPIResponse
	if err := c.get(ctx, "/v2/everything", params, &parsed); err != nil {
		return nil, err
	}
	if parsed.Status != "ok" {
		return nil, fmt.Errorf("newsapi error: %s", parsed.Message)
	}

	out := make([]domain.Article, 0, len(parsed.Articles))
	for _, item := range parsed.Articles {
		if item.Title == "" || item.URL == "" {
			continue
		}
		content := item.Content
		if content == "" {
			content = item.Description
		}
		a := domain.Article{
			Title:   item.Title,
			Content: content,
			URL:     item.URL,
			Source:  item.Source.Name,
		}
		if t, err := time.Parse(time.RFC3339, item.PublishedAt); err == nil {
			a.PublishedAt = t
		}
		a.SetMeta("api", true)
		if item.Author != "" {
			a.SetMeta("author", item.Author)
		}
		out = append(out, a)
	}
	return out, nil
}

// ResolveSourceID maps an outlet name to a NewsAPI source id using, in
// order, the persisted map, the in-process cache, and the /v2/sources
// endpoint.
func (c *NewsAPIClient) ResolveSourceID(ctx context.Context, name string) (string, bool) {
	if c.ids != nil {
		if id, ok := c.ids.Get(name); ok {
			return id, true
		}
	}
	cacheKey := "newsapi-id:" + cache.Key(name)
	if c.cache != nil {
		if id, ok := c.cache.Get(cacheKey); ok {
			return id, id != ""
		}
	}

	var parsed struct {
		Status  string `json:"status"`
		Sources []struct {
			ID   string `json:"id"`
			Name string `json:"name"`
		} `json:"sources"`
	}
	if err := c.get(ctx, "/v2/sources", url.Values{"language": {"en"}}, &parsed); err != nil {
		logger.Warn("newsapi source discovery failed", "name", name, "error", err)
		return "", false
	}

	needle := strings.ToLower(name)
	id := ""
	for _, s := range parsed.Sources {
		candidate := strings.ToLower(s.Name)
		if candidate == needle || strings.Contains(candidate, needle) || strings.Contains(needle, candidate) {
			id = s.ID
			break
		}
	}
	if c.cache != nil {
		c.cache.Set(cacheKey, id, sourceIDCacheTTL)
	}
	if id != "" && c.ids != nil {
		if err := c.ids.Put(name, id); err != nil {
			logger.Warn("failed to persist source id", "name", name, "error", err)
		}
	}
	return id, id != ""
}

// NewsAPIFetcher fetches one outlet's articles through the shared client.
type NewsAPIFetcher struct {
	client *NewsAPIClient
	outlet Outlet
}

func NewNewsAPIFetcher(client *NewsAPIClient, outlet Outlet) *NewsAPIFetcher {
	return &NewsAPIFetcher{client: client, outlet: outlet}
}

func (f *NewsAPIFetcher) Name() string {
	return f.outlet.Name + " via newsapi"
}

func (f *NewsAPIFetcher) Fetch(ctx context.Context, topics []string, count int) ([]domain.Article, error) {
	if !f.client.Enabled() {
		return nil, ErrRateLimited
	}

	sourceID := f.outlet.NewsAPIID
	if sourceID == "" {
		sourceID, _ = f.client.ResolveSourceID(ctx, f.outlet.Name)
	}

	articles, err := f.client.Everything(ctx, topics, sourceID, count)
	if err != nil {
		return nil, err
	}
	for i := range articles {
		if articles[i].Source == "" {
			articles[i].Source = f.outlet.Name
		}
	}
	metrics.Global.AddArticlesFetched(len(articles))
	return articles, nil
}
