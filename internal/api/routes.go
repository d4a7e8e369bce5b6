package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/PranavKumarAV/Lets-stay-updated/internal/domain"
	"github.com/PranavKumarAV/Lets-stay-updated/internal/logger"
	"github.com/PranavKumarAV/Lets-stay-updated/internal/metrics"
	"github.com/PranavKumarAV/Lets-stay-updated/internal/news"
	"github.com/PranavKumarAV/Lets-stay-updated/internal/storage"
)

// Pipeline is the aggregation entry point the handlers call.
type Pipeline interface {
	Generate(ctx context.Context, req news.Request) (*news.Result, error)
}

// SourceSelector answers the standalone source-recommendation endpoint.
type SourceSelector interface {
	SelectSources(ctx context.Context, topics []string, region string, excluded []string) []domain.Source
}

// ModelStatus feeds the health endpoint.
type ModelStatus interface {
	Enabled() bool
	ReadyModels() int
}

// ArticleStore is the persistence surface the handlers need.
type ArticleStore interface {
	SaveArticles(ctx context.Context, articles []domain.Article) int
	QueryArticles(ctx context.Context, f storage.ArticleFilter) ([]domain.Article, error)
	PurgeOlderThan(ctx context.Context, age time.Duration) (int64, error)
}

// Server wires the pipeline, the store and the model status into an HTTP
// handler.
type Server struct {
	pipeline   Pipeline
	selector   SourceSelector
	store      ArticleStore
	models     ModelStatus
	articleTTL time.Duration
}

func NewServer(pipeline Pipeline, selector SourceSelector, store ArticleStore, models ModelStatus, articleTTL time.Duration) *Server {
	return &Server{
		pipeline:   pipeline,
		selector:   selector,
		store:      store,
		models:     models,
		articleTTL: articleTTL,
	}
}

// Handler builds the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/news/generate", s.handleGenerate)
	mux.HandleFunc("POST /api/news/sources", s.handleSources)
	mux.HandleFunc("GET /api/news/articles", s.handleArticles)
	mux.HandleFunc("POST /api/news/cleanup", s.handleCleanup)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /metrics", s.handleMetrics)
	return mux
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req GenerateNewsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	prefs := map[string]any{"region": req.Region}
	if req.Country != "" {
		prefs["country"] = req.Country
	}

	result, err := s.pipeline.Generate(r.Context(), news.Request{
		Topics:          req.Topics,
		Region:          req.Region,
		ArticleCount:    req.ArticleCount,
		ExcludedSources: req.ExcludedSources,
		Preferences:     prefs,
		Summarize:       req.Summarize,
	})
	if err != nil {
		logger.Error("news generation failed", "error", err)
		metrics.Global.SetError(err.Error())
		writeError(w, http.StatusInternalServerError, "failed to generate news feed")
		return
	}

	saved := s.store.SaveArticles(r.Context(), result.Articles)
	if saved < len(result.Articles) {
		logger.Warn("some articles were not persisted", "saved", saved, "total", len(result.Articles))
	}

	// Old articles are purged out of band so the response is not held up.
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if _, err := s.store.PurgeOlderThan(ctx, s.articleTTL); err != nil {
			logger.Warn("background purge failed", "error", err)
		}
	}()

	writeJSON(w, http.StatusOK, GenerateNewsResponse{
		Articles:         result.Articles,
		TotalCount:       result.TotalCount,
		GeneratedAt:      time.Now().UTC(),
		ProcessingTimeMS: time.Since(start).Milliseconds(),
	})
}

func (s *Server) handleSources(w http.ResponseWriter, r *http.Request) {
	var req GetSourcesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	sources := s.selector.SelectSources(r.Context(), req.Topics, req.Region, req.ExcludedSources)
	writeJSON(w, http.StatusOK, GetSourcesResponse{Sources: sources})
}

func (s *Server) handleArticles(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := storage.ArticleFilter{
		Source: q.Get("source"),
		Limit:  20,
	}
	if topics := q.Get("topics"); topics != "" {
		filter.Topics = splitCSV(topics)
	}
	if v := q.Get("min_ai_score"); v != "" {
		if n, err := parsePositiveInt(v); err == nil {
			filter.MinScore = n
		}
	}
	if v := q.Get("limit"); v != "" {
		if n, err := parsePositiveInt(v); err == nil {
			filter.Limit = n
		}
	}

	articles, err := s.store.QueryArticles(r.Context(), filter)
	if err != nil {
		logger.Error("article query failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get articles")
		return
	}
	if articles == nil {
		articles = []domain.Article{}
	}
	writeJSON(w, http.StatusOK, ArticlesResponse{Articles: articles, Count: len(articles)})
}

func (s *Server) handleCleanup(w http.ResponseWriter, r *http.Request) {
	deleted, err := s.store.PurgeOlderThan(r.Context(), s.articleTTL)
	if err != nil {
		logger.Error("cleanup failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to clean up articles")
		return
	}
	writeJSON(w, http.StatusOK, CleanupResponse{
		Message: "cleanup complete",
		Deleted: deleted,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:       "ok",
		Message:      "service is healthy",
		Timestamp:    time.Now().UTC(),
		LLMAvailable: s.models.Enabled(),
		ModelsReady:  s.models.ReadyModels(),
	})
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, metrics.Global.GetStats())
}

func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func parsePositiveInt(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	if n < 0 {
		n = 0
	}
	return n, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, ErrorResponse{Detail: detail})
}
