package llm

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/generative-ai-go/genai"
	openai "github.com/sashabaranov/go-openai"
	"google.golang.org/api/option"

	"github.com/PranavKumarAV/Lets-stay-updated/internal/domain"
	"github.com/PranavKumarAV/Lets-stay-updated/internal/jsonrepair"
	"github.com/PranavKumarAV/Lets-stay-updated/internal/logger"
	"github.com/PranavKumarAV/Lets-stay-updated/internal/metrics"
)

const (
	rankBatchSize      = 20
	rankContentLimit   = 300
	summarizeBodyLimit = 1500
	maxSelectedSources = 12
	minSelectedSources = 5
)

// Client runs model requests against the candidate list, rotating to the
// next model when one hits its quota. Every public method degrades to a
// deterministic fallback instead of returning an error to callers.
type Client struct {
	candidates []ModelConfig
	health     *ProviderHealth
	timeout    time.Duration

	mu     sync.Mutex
	gemini map[string]*genai.Client
}

func New(candidates []ModelConfig, health *ProviderHealth, timeout time.Duration) *Client {
	return &Client{
		candidates: candidates,
		health:     health,
		timeout:    timeout,
		gemini:     make(map[string]*genai.Client),
	}
}

// Enabled reports whether any model is configured at all.
func (c *Client) Enabled() bool {
	return len(c.candidates) > 0
}

// Candidates exposes the configured model list for health reporting.
func (c *Client) Candidates() []ModelConfig {
	return c.candidates
}

// ReadyModels reports how many candidates are off cooldown right now.
func (c *Client) ReadyModels() int {
	return c.health.AvailableCount(c.candidates)
}

// complete tries each available candidate in priority order. Quota failures
// put the model on cooldown and move on; other failures move on without a
// cooldown. The last error is surfaced when everything fails.
func (c *Client) complete(ctx context.Context, system, user string, jsonMode bool) (string, error) {
	var lastErr error
	for _, mc := range c.candidates {
		if !c.health.Available(mc.Key()) {
			continue
		}
		metrics.Global.IncrementModelRequests()
		out, err := c.completeWith(ctx, mc, system, user, jsonMode)
		if err == nil {
			return out, nil
		}
		metrics.Global.IncrementModelFailures()
		lastErr = err
		if isQuotaError(err) {
			logger.Warn("model exhausted, rotating", "model", mc.Key(), "error", err)
			c.health.MarkExhausted(mc.Key())
			continue
		}
		logger.Warn("model request failed", "model", mc.Key(), "error", err)
	}
	if lastErr == nil {
		lastErr = errors.New("no model available")
	}
	return "", lastErr
}

func (c *Client) completeWith(ctx context.Context, mc ModelConfig, system, user string, jsonMode bool) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if mc.Provider == "gemini" {
		return c.completeGemini(ctx, mc, system, user, jsonMode)
	}
	return c.completeOpenAI(ctx, mc, system, user, jsonMode)
}

func (c *Client) completeOpenAI(ctx context.Context, mc ModelConfig, system, user string, jsonMode bool) (string, error) {
	cfg := openai.DefaultConfig(mc.APIKey)
	cfg.BaseURL = mc.BaseURL
	cfg.HTTPClient = &http.Client{Timeout: c.timeout}
	client := openai.NewClientWithConfig(cfg)

	req := openai.ChatCompletionRequest{
		Model: mc.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
		MaxTokens:   mc.MaxTokens,
		Temperature: mc.Temperature,
	}
	if jsonMode {
		req.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	resp, err := client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("empty completion response")
	}
	return resp.Choices[0].Message.Content, nil
}

func (c *Client) completeGemini(ctx context.Context, mc ModelConfig, system, user string, jsonMode bool) (string, error) {
	gc, err := c.geminiClient(ctx, mc.APIKey)
	if err != nil {
		return "", err
	}

	model := gc.GenerativeModel(mc.Model)
	model.SetMaxOutputTokens(int32(mc.MaxTokens))
	model.SetTemperature(mc.Temperature)
	if jsonMode {
		model.ResponseMIMEType = "application/json"
	}

	resp, err := model.GenerateContent(ctx, genai.Text(system+"\n\n"+user))
	if err != nil {
		return "", err
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", errors.New("empty gemini response")
	}
	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		sb.WriteString(fmt.Sprintf("%v", part))
	}
	return sb.String(), nil
}

func (c *Client) geminiClient(ctx context.Context, apiKey string) (*genai.Client, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gc, ok := c.gemini[apiKey]; ok {
		return gc, nil
	}
	gc, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}
	c.gemini[apiKey] = gc
	return gc, nil
}

func isQuotaError(err error) bool {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) && apiErr.HTTPStatusCode == http.StatusTooManyRequests {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, marker := range []string{"429", "quota", "rate limit", "rate_limit", "exhausted"} {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}

// SelectSources asks a model to pick 5-12 outlets for the given topics and
// region, filtering out anything the caller excluded. Any failure falls
// back to the static source list.
func (c *Client) SelectSources(ctx context.Context, topics []string, region string, excluded []string) []domain.Source {
	if !c.Enabled() {
		return FallbackSources(region, excluded)
	}

	system := "You are a news curation expert. Respond with valid JSON only, no markdown."
	user := fmt.Sprintf(`Recommend the best news sources for these topics: %s.
Target region: %s.
Include a mix of traditional outlets, newsletters and community sources.
Return between %d and %d sources as JSON:
{"sources": [{"name": "...", "type": "traditional|newsletter|community", "relevanceScore": 1-100, "credibilityScore": 1-100, "reasoning": "..."}]}`,
		strings.Join(topics, ", "), region, minSelectedSources, maxSelectedSources)

	raw, err := c.complete(ctx, system, user, true)
	if err != nil {
		logger.Warn("source selection failed, using fallback", "error", err)
		metrics.Global.IncrementFallbacksUsed()
		return FallbackSources(region, excluded)
	}

	var parsed struct {
		Sources []domain.Source `json:"sources"`
	}
	if err := jsonrepair.Decode(raw, &parsed); err != nil || len(parsed.Sources) == 0 {
		logger.Warn("unusable source selection response, using fallback", "error", err)
		metrics.Global.IncrementFallbacksUsed()
		return FallbackSources(region, excluded)
	}

	out := filterExcluded(parsed.Sources, excluded)
	if len(out) == 0 {
		metrics.Global.IncrementFallbacksUsed()
		return FallbackSources(region, excluded)
	}
	if len(out) > maxSelectedSources {
		out = out[:maxSelectedSources]
	}
	return out
}

func filterExcluded(sources []domain.Source, excluded []string) []domain.Source {
	if len(excluded) == 0 {
		return sources
	}
	out := sources[:0:0]
	for _, s := range sources {
		name := strings.ToLower(s.Name)
		skip := false
		for _, ex := range excluded {
			if ex != "" && strings.Contains(name, strings.ToLower(ex)) {
				skip = true
				break
			}
		}
		if !skip {
			out = append(out, s)
		}
	}
	return out
}

// rankedArticle is the wire shape the ranking prompt asks for. Scores come
// back as floats from some models.
type rankedArticle struct {
	Title     string  `json:"title"`
	Topic     string  `json:"topic"`
	AIScore   float64 `json:"ai_score"`
	Reasoning string  `json:"reasoning"`
}

// RankArticles scores articles 1-100 for relevance to the topics, in
// batches, and returns them sorted best first. Ranked results merge onto
// the original articles by exact title; anything the model invented is
// dropped. Any failure falls back to the heuristic ranker over the whole
// input set.
func (c *Client) RankArticles(ctx context.Context, articles []domain.Article, topics []string, prefs map[string]any) []domain.Article {
	if len(articles) == 0 {
		return articles
	}
	if !c.Enabled() {
		metrics.Global.IncrementFallbacksUsed()
		return HeuristicRank(articles, topics)
	}

	var ranked []domain.Article
	for start := 0; start < len(articles); start += rankBatchSize {
		end := start + rankBatchSize
		if end > len(articles) {
			end = len(articles)
		}
		batch, err := c.rankBatch(ctx, articles[start:end], topics, prefs)
		if err != nil {
			logger.Warn("ranking failed, using heuristic scores", "error", err)
			metrics.Global.IncrementFallbacksUsed()
			return HeuristicRank(articles, topics)
		}
		ranked = append(ranked, batch...)
	}

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].AIScore != ranked[j].AIScore {
			return ranked[i].AIScore > ranked[j].AIScore
		}
		return ranked[i].PublishedAt.After(ranked[j].PublishedAt)
	})
	metrics.Global.AddArticlesRanked(len(ranked))
	return ranked
}

func (c *Client) rankBatch(ctx context.Context, batch []domain.Article, topics []string, prefs map[string]any) ([]domain.Article, error) {
	var payload strings.Builder
	for i, a := range batch {
		content := truncateRunes(a.Content, rankContentLimit)
		fmt.Fprintf(&payload, "%d. title: %s\n   source: %s\n   topic: %s\n   content: %s\n", i+1, a.Title, a.Source, a.Topic, content)
	}

	system := "You are a news ranking expert. Respond with valid JSON only, no markdown."
	user := fmt.Sprintf(`Score each article 1-100 for relevance to these topics: %s.%s
Articles:
%s
Return JSON: {"articles": [{"title": "<exact title>", "topic": "...", "ai_score": 1-100, "reasoning": "..."}]}
Keep every title exactly as given.`,
		strings.Join(topics, ", "), prefsHint(prefs), payload.String())

	raw, err := c.complete(ctx, system, user, true)
	if err != nil {
		return nil, err
	}

	var parsed struct {
		Articles []rankedArticle `json:"articles"`
	}
	if err := jsonrepair.Decode(raw, &parsed); err != nil {
		return nil, fmt.Errorf("decoding ranking response: %w", err)
	}
	if len(parsed.Articles) == 0 {
		return nil, errors.New("ranking response contained no articles")
	}
	return mergeRanked(batch, parsed.Articles), nil
}

func prefsHint(prefs map[string]any) string {
	if len(prefs) == 0 {
		return ""
	}
	parts := make([]string, 0, len(prefs))
	for k, v := range prefs {
		parts = append(parts, fmt.Sprintf("%s=%v", k, v))
	}
	sort.Strings(parts)
	return " User preferences: " + strings.Join(parts, ", ") + "."
}

// mergeRanked matches model output back to the input articles by exact
// title. First match wins so duplicate titles cannot double-count, and
// titles the model made up are ignored.
func mergeRanked(batch []domain.Article, ranked []rankedArticle) []domain.Article {
	used := make([]bool, len(batch))
	var out []domain.Article
	for _, r := range ranked {
		for i, a := range batch {
			if used[i] || a.Title != r.Title {
				continue
			}
			used[i] = true
			a.AIScore = domain.ClampScore(int(math.Round(r.AIScore)))
			if r.Topic != "" {
				a.Topic = r.Topic
			}
			if r.Reasoning != "" {
				a.SetMeta("reasoning", r.Reasoning)
			}
			out = append(out, a)
			break
		}
	}
	return out
}

// Summarize condenses article content into 2-3 sentences. Failures fall
// back to a truncation of the original content.
func (c *Client) Summarize(ctx context.Context, content string) string {
	if !c.Enabled() {
		return FallbackSummary(content)
	}
	body := truncateRunes(content, summarizeBodyLimit)

	system := "You summarize news articles. Respond with the summary text only."
	user := fmt.Sprintf("Summarize this article in 2-3 sentences:\n\n%s", body)

	out, err := c.complete(ctx, system, user, false)
	if err != nil || strings.TrimSpace(out) == "" {
		metrics.Global.IncrementFallbacksUsed()
		return FallbackSummary(content)
	}
	metrics.Global.IncrementSummariesGenerated()
	return strings.TrimSpace(out)
}
