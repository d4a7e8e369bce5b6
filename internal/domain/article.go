package domain

import "time"

// Article is a single news item as it moves through the pipeline: fetched,
// deduplicated, ranked and finally persisted.
type Article struct {
	ID          int64          `json:"id,omitempty"`
	Title       string         `json:"title"`
	Content     string         `json:"content"`
	URL         string         `json:"url"`
	Source      string         `json:"source"`
	Topic       string         `json:"topic"`
	AIScore     int            `json:"ai_score"`
	PublishedAt time.Time      `json:"published_at"`
	FetchedAt   time.Time      `json:"fetched_at,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

// SetMeta writes a metadata key, allocating the map on first use.
func (a *Article) SetMeta(key string, value any) {
	if a.Metadata == nil {
		a.Metadata = make(map[string]any)
	}
	a.Metadata[key] = value
}

// Recent reports whether the article was published within the given window.
// Articles with no parseable publish time are treated as not recent.
func (a *Article) Recent(now time.Time, window time.Duration) bool {
	if a.PublishedAt.IsZero() {
		return false
	}
	return now.Sub(a.PublishedAt) <= window
}

// Source is a candidate news outlet recommended either by the model or by
// the static fallback list.
type Source struct {
	Name             string `json:"name"`
	Type             string `json:"type"`
	RelevanceScore   int    `json:"relevanceScore"`
	CredibilityScore int    `json:"credibilityScore"`
	Reasoning        string `json:"reasoning"`
}

// ClampScore keeps an AI score inside the valid 1-100 range.
func ClampScore(score int) int {
	if score < 1 {
		return 1
	}
	if score > 100 {
		return 100
	}
	return score
}
