// Package metrics keeps process-wide counters for the aggregation pipeline,
// exposed over the /metrics monitoring endpoint.
package metrics

import (
	"sync"
	"time"
)

type Metrics struct {
	mu sync.RWMutex

	// Counters
	ArticlesFetched    int64
	DuplicatesFiltered int64
	ArticlesRejected   int64 // failed relevance or recency checks
	ArticlesRanked     int64
	SummariesGenerated int64
	FallbacksUsed      int64 // heuristic paths taken instead of the model
	ModelRequests      int64
	ModelFailures      int64

	// Timings
	LastProcessingTime    time.Duration
	AverageProcessingTime time.Duration
	TotalProcessingTime   time.Duration
	ProcessingCount       int64

	// Status
	LastRunTime   time.Time
	LastErrorTime time.Time
	LastError     string
	IsHealthy     bool
}

var Global = &Metrics{IsHealthy: true}

func (m *Metrics) AddArticlesFetched(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ArticlesFetched += int64(n)
}

func (m *Metrics) IncrementDuplicatesFiltered() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DuplicatesFiltered++
}

func (m *Metrics) IncrementArticlesRejected() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ArticlesRejected++
}

func (m *Metrics) AddArticlesRanked(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ArticlesRanked += int64(n)
}

func (m *Metrics) IncrementSummariesGenerated() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SummariesGenerated++
}

func (m *Metrics) IncrementFallbacksUsed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.FallbacksUsed++
}

func (m *Metrics) IncrementModelRequests() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ModelRequests++
}

func (m *Metrics) IncrementModelFailures() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ModelFailures++
}

func (m *Metrics) RecordProcessingTime(duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.LastProcessingTime = duration
	m.TotalProcessingTime += duration
	m.ProcessingCount++

	if m.ProcessingCount > 0 {
		m.AverageProcessingTime = m.TotalProcessingTime / time.Duration(m.ProcessingCount)
	}
}

func (m *Metrics) SetLastRun() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastRunTime = time.Now()
	m.IsHealthy = true
}

func (m *Metrics) SetError(err string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastError = err
	m.LastErrorTime = time.Now()
	m.IsHealthy = false
}

func (m *Metrics) GetStats() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return map[string]interface{}{
		"articles_fetched":           m.ArticlesFetched,
		"duplicates_filtered":        m.DuplicatesFiltered,
		"articles_rejected":          m.ArticlesRejected,
		"articles_ranked":            m.ArticlesRanked,
		"summaries_generated":        m.SummariesGenerated,
		"fallbacks_used":             m.FallbacksUsed,
		"model_requests":             m.ModelRequests,
		"model_failures":             m.ModelFailures,
		"last_processing_time_ms":    m.LastProcessingTime.Milliseconds(),
		"average_processing_time_ms": m.AverageProcessingTime.Milliseconds(),
		"last_run_time":              m.LastRunTime.Format(time.RFC3339),
		"last_error_time":            m.LastErrorTime.Format(time.RFC3339),
		"last_error":                 m.LastError,
		"is_healthy":                 m.IsHealthy,
	}
}
