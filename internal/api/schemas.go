// Package api exposes the aggregation pipeline over HTTP.
package api

import (
	"errors"
	"strings"
	"time"

	"github.com/PranavKumarAV/Lets-stay-updated/internal/domain"
)

const (
	minArticleCount = 5
	maxArticleCount = 50
)

// GenerateNewsRequest is the POST /api/news/generate payload.
type GenerateNewsRequest struct {
	Region          string   `json:"region"`
	Country         string   `json:"country,omitempty"`
	Topics          []string `json:"topics"`
	ArticleCount    int      `json:"article_count"`
	ExcludedSources []string `json:"excluded_sources,omitempty"`
	Summarize       bool     `json:"summarize,omitempty"`
}

// Validate normalizes the request in place. The article count clamps to
// the allowed range instead of failing.
func (r *GenerateNewsRequest) Validate() error {
	var topics []string
	for _, t := range r.Topics {
		if t = strings.TrimSpace(t); t != "" {
			topics = append(topics, t)
		}
	}
	r.Topics = topics
	if len(r.Topics) == 0 {
		return errors.New("at least one topic is required")
	}
	if r.Region == "" {
		r.Region = "international"
	}
	if r.ArticleCount < minArticleCount {
		r.ArticleCount = minArticleCount
	}
	if r.ArticleCount > maxArticleCount {
		r.ArticleCount = maxArticleCount
	}
	return nil
}

// GenerateNewsResponse mirrors the stored article set.
type GenerateNewsResponse struct {
	Articles         []domain.Article `json:"articles"`
	TotalCount       int              `json:"total_count"`
	GeneratedAt      time.Time        `json:"generated_at"`
	ProcessingTimeMS int64            `json:"processing_time_ms"`
}

// GetSourcesRequest is the POST /api/news/sources payload.
type GetSourcesRequest struct {
	Topics          []string `json:"topics"`
	Region          string   `json:"region"`
	ExcludedSources []string `json:"excluded_sources,omitempty"`
}

func (r *GetSourcesRequest) Validate() error {
	var topics []string
	for _, t := range r.Topics {
		if t = strings.TrimSpace(t); t != "" {
			topics = append(topics, t)
		}
	}
	r.Topics = topics
	if len(r.Topics) == 0 {
		return errors.New("at least one topic is required")
	}
	if r.Region == "" {
		r.Region = "international"
	}
	return nil
}

type GetSourcesResponse struct {
	Sources []domain.Source `json:"sources"`
}

type ArticlesResponse struct {
	Articles []domain.Article `json:"articles"`
	Count    int              `json:"count"`
}

type CleanupResponse struct {
	Message string `json:"message"`
	Deleted int64  `json:"deleted"`
}

type HealthResponse struct {
	Status       string    `json:"status"`
	Message      string    `json:"message"`
	Timestamp    time.Time `json:"timestamp"`
	LLMAvailable bool      `json:"llm_available"`
	ModelsReady  int       `json:"models_ready"`
}

type ErrorResponse struct {
	Detail string `json:"detail"`
}
