// Package config loads all runtime settings from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server settings
	Environment string
	Port        int
	Debug       bool

	// LLM settings
	LLMProvider    string // preferred provider: groq | openai | gemini
	LLMModel       string // preferred model for that provider
	LLMMaxTokens   int
	LLMTemperature float64
	GroqAPIKey     string
	OpenAIAPIKey   string
	GeminiAPIKey   string
	ModelCooldown  time.Duration // cooldown after a model reports quota exhaustion

	// News provider settings
	NewsAPIKey  string
	NewsAPIKey1 string
	NewsAPIKey2 string

	// Pipeline settings
	RecencyWindow     time.Duration // max article age for the output set
	MaxFetchAttempts  int
	MaxArticles       int // upper bound on article_count per request
	DefaultArticles   int
	SummarizeArticles bool
	VerifyURLs        bool // live reachability check, off by default
	RequestTimeout    time.Duration

	// Storage settings
	DatabasePath    string
	ArticleTTL      time.Duration // retention for persisted articles
	OutletsPath     string
	SourceIDMapPath string
}

func Load() (*Config, error) {
	// .env is a development convenience; a missing file is not an error.
	_ = godotenv.Load()

	cfg := &Config{
		// Default values
		Environment:       getEnvOrDefault("ENVIRONMENT", "development"),
		Port:              getEnvIntOrDefault("PORT", 5000),
		LLMProvider:       strings.ToLower(getEnvOrDefault("LLM_PROVIDER", "groq")),
		LLMModel:          os.Getenv("LLM_MODEL"),
		LLMMaxTokens:      getEnvIntOrDefault("LLM_MAX_TOKENS", 2048),
		LLMTemperature:    0.7,
		ModelCooldown:     getEnvDurationOrDefault("MODEL_COOLDOWN_SECONDS", 300*time.Second),
		RecencyWindow:     getEnvDurationOrDefault("RECENCY_WINDOW_HOURS", 7*24*time.Hour),
		MaxFetchAttempts:  getEnvIntOrDefault("MAX_FETCH_ATTEMPTS", 5),
		MaxArticles:       getEnvIntOrDefault("MAX_ARTICLES_PER_REQUEST", 50),
		DefaultArticles:   getEnvIntOrDefault("DEFAULT_ARTICLE_COUNT", 5),
		RequestTimeout:    getEnvDurationOrDefault("REQUEST_TIMEOUT_SECONDS", 10*time.Second),
		DatabasePath:      getEnvOrDefault("DATABASE_PATH", "news_app.db"),
		ArticleTTL:        getEnvDurationOrDefault("ARTICLE_CACHE_HOURS", 24*time.Hour),
		OutletsPath:       getEnvOrDefault("OUTLETS_CONFIG_PATH", "configs/outlets.yaml"),
		SourceIDMapPath:   getEnvOrDefault("SOURCE_ID_CACHE_PATH", "source_ids.json"),
		SummarizeArticles: os.Getenv("SUMMARIZE_ARTICLES") != "false",
	}

	cfg.Debug = cfg.Environment == "development" || os.Getenv("DEBUG") == "true"
	cfg.VerifyURLs = os.Getenv("VERIFY_URLS") == "true"

	if v := os.Getenv("LLM_TEMPERATURE"); v != "" {
		if val, err := strconv.ParseFloat(v, 64); err == nil && val >= 0 && val <= 2 {
			cfg.LLMTemperature = val
		}
	}

	// API keys. Every one of these is optional: the pipeline degrades to
	// RSS, mock generation and heuristic scoring without them.
	cfg.GroqAPIKey = os.Getenv("GROQ_API_KEY")
	cfg.OpenAIAPIKey = os.Getenv("OPENAI_API_KEY")
	cfg.GeminiAPIKey = os.Getenv("GEMINI_API_KEY")
	cfg.NewsAPIKey = os.Getenv("NEWS_API_KEY")
	cfg.NewsAPIKey1 = os.Getenv("NEWS_API_KEY_1")
	cfg.NewsAPIKey2 = os.Getenv("NEWS_API_KEY_2")

	return cfg, cfg.Validate()
}

// NewsAPIKeys returns the configured provider keys in rotation order.
func (c *Config) NewsAPIKeys() []string {
	var keys []string
	for _, k := range []string{c.NewsAPIKey, c.NewsAPIKey1, c.NewsAPIKey2} {
		if k != "" {
			keys = append(keys, k)
		}
	}
	return keys
}

// HasLLMKey reports whether any model credential is configured.
func (c *Config) HasLLMKey() bool {
	return c.GroqAPIKey != "" || c.OpenAIAPIKey != "" || c.GeminiAPIKey != ""
}

func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("PORT must be in 1-65535, got %d", c.Port)
	}
	if c.MaxFetchAttempts < 1 {
		return fmt.Errorf("MAX_FETCH_ATTEMPTS must be at least 1")
	}
	if c.DefaultArticles < 1 || c.DefaultArticles > c.MaxArticles {
		return fmt.Errorf("DEFAULT_ARTICLE_COUNT must be in 1-%d", c.MaxArticles)
	}
	if c.RecencyWindow <= 0 {
		return fmt.Errorf("RECENCY_WINDOW_HOURS must be positive")
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvDurationOrDefault reads an integer env var whose unit is implied by
// the variable name (…_HOURS or …_SECONDS) and converts it to a duration.
func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil || n <= 0 {
		return defaultValue
	}
	if strings.HasSuffix(key, "HOURS") {
		return time.Duration(n) * time.Hour
	}
	return time.Duration(n) * time.Second
}
