package llm

import (
	"testing"
	"time"
)

func TestProviderHealthCooldown(t *testing.T) {
	h := NewProviderHealth(5 * time.Minute)

	if !h.Available("groq/llama-3.1-70b-versatile") {
		t.Fatal("fresh model should be available")
	}

	h.MarkExhausted("groq/llama-3.1-70b-versatile")
	if h.Available("groq/llama-3.1-70b-versatile") {
		t.Fatal("exhausted model should be on cooldown")
	}
	if !h.Available("groq/llama-3.1-8b-instant") {
		t.Fatal("cooldown must not leak to other models")
	}
}

func TestProviderHealthExpiry(t *testing.T) {
	h := NewProviderHealth(5 * time.Minute)
	h.MarkExhausted("openai/gpt-4o-mini")

	// Move the clock past the cooldown window.
	h.now = func() time.Time { return time.Now().Add(10 * time.Minute) }
	if !h.Available("openai/gpt-4o-mini") {
		t.Fatal("model should recover after the cooldown elapses")
	}
}

func TestAvailableCount(t *testing.T) {
	h := NewProviderHealth(time.Hour)
	candidates := []ModelConfig{
		{Provider: "groq", Model: "llama-3.1-70b-versatile"},
		{Provider: "groq", Model: "llama-3.1-8b-instant"},
		{Provider: "gemini", Model: "gemini-1.5-flash"},
	}
	h.MarkExhausted("groq/llama-3.1-8b-instant")
	if got := h.AvailableCount(candidates); got != 2 {
		t.Fatalf("AvailableCount = %d, want 2", got)
	}
}
