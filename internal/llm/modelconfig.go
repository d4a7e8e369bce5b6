// Package llm talks to the ranking/summarization models and carries the
// deterministic fallbacks used when no model is reachable.
package llm

import (
	"github.com/PranavKumarAV/Lets-stay-updated/internal/config"
)

const (
	groqBaseURL   = "https://api.groq.com/openai/v1"
	openaiBaseURL = "https://api.openai.com/v1"
)

// ModelConfig describes one candidate (provider, model) pair. Groq and
// OpenAI are OpenAI-compatible HTTP APIs; Gemini goes through its own SDK.
type ModelConfig struct {
	Provider    string
	Model       string
	APIKey      string
	BaseURL     string
	MaxTokens   int
	Temperature float32

	// Free-tier envelope, informational
	RequestsPerMinute int
	TokensPerHour     int
	ContextWindow     int
}

// Key identifies a candidate in the cooldown map.
func (m ModelConfig) Key() string {
	return m.Provider + "/" + m.Model
}

// Candidates builds the priority-ordered model list from the configured
// credentials. The hard-coded order prefers the free Groq tier, then OpenAI,
// then Gemini; LLM_PROVIDER/LLM_MODEL moves a specific pair to the front.
func Candidates(cfg *config.Config) []ModelConfig {
	maxTokens := cfg.LLMMaxTokens
	temp := float32(cfg.LLMTemperature)

	var list []ModelConfig
	if cfg.GroqAPIKey != "" {
		list = append(list,
			ModelConfig{
				Provider: "groq", Model: "llama-3.1-70b-versatile",
				APIKey: cfg.GroqAPIKey, BaseURL: groqBaseURL,
				MaxTokens: maxTokens, Temperature: temp,
				RequestsPerMinute: 30, TokensPerHour: 1000000, ContextWindow: 131072,
			},
			ModelConfig{
				Provider: "groq", Model: "llama-3.1-8b-instant",
				APIKey: cfg.GroqAPIKey, BaseURL: groqBaseURL,
				MaxTokens: maxTokens, Temperature: temp,
				RequestsPerMinute: 30, TokensPerHour: 1000000, ContextWindow: 131072,
			},
		)
	}
	if cfg.OpenAIAPIKey != "" {
		list = append(list, ModelConfig{
			Provider: "openai", Model: "gpt-4o-mini",
			APIKey: cfg.OpenAIAPIKey, BaseURL: openaiBaseURL,
			MaxTokens: maxTokens, Temperature: temp,
			ContextWindow: 128000,
		})
	}
	if cfg.GeminiAPIKey != "" {
		list = append(list, ModelConfig{
			Provider: "gemini", Model: "gemini-1.5-flash",
			APIKey: cfg.GeminiAPIKey,
			MaxTokens: maxTokens, Temperature: temp,
		})
	}

	if cfg.LLMModel != "" {
		list = promote(list, cfg.LLMProvider, cfg.LLMModel, cfg, maxTokens, temp)
	}
	return list
}

// promote moves the requested (provider, model) pair to the head of the
// list, synthesizing the entry if the provider has a key but the model is
// not one of the defaults.
func promote(list []ModelConfig, provider, model string, cfg *config.Config, maxTokens int, temp float32) []ModelConfig {
	for i, mc := range list {
		if mc.Provider == provider && mc.Model == model {
			return append([]ModelConfig{mc}, append(list[:i:i], list[i+1:]...)...)
		}
	}

	var custom ModelConfig
	switch provider {
	case "groq":
		if cfg.GroqAPIKey == "" {
			return list
		}
		custom = ModelConfig{Provider: "groq", Model: model, APIKey: cfg.GroqAPIKey, BaseURL: groqBaseURL, MaxTokens: maxTokens, Temperature: temp}
	case "openai":
		if cfg.OpenAIAPIKey == "" {
			return list
		}
		custom = ModelConfig{Provider: "openai", Model: model, APIKey: cfg.OpenAIAPIKey, BaseURL: openaiBaseURL, MaxTokens: maxTokens, Temperature: temp}
	case "gemini":
		if cfg.GeminiAPIKey == "" {
			return list
		}
		custom = ModelConfig{Provider: "gemini", Model: model, APIKey: cfg.GeminiAPIKey, MaxTokens: maxTokens, Temperature: temp}
	default:
		return list
	}
	return append([]ModelConfig{custom}, list...)
}
