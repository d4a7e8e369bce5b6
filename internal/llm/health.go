package llm

import (
	"sync"
	"time"
)

// ProviderHealth tracks per-model cooldowns after quota or rate-limit
// failures. Callers share one instance; there is no package-level state.
type ProviderHealth struct {
	mu       sync.Mutex
	cooldown time.Duration
	until    map[string]time.Time
	now      func() time.Time
}

// NewProviderHealth returns a tracker that sidelines a model for the given
// duration after MarkExhausted.
func NewProviderHealth(cooldown time.Duration) *ProviderHealth {
	return &ProviderHealth{
		cooldown: cooldown,
		until:    make(map[string]time.Time),
		now:      time.Now,
	}
}

// MarkExhausted puts the model on cooldown.
func (h *ProviderHealth) MarkExhausted(key string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.until[key] = h.now().Add(h.cooldown)
}

// Available reports whether the model is usable right now.
func (h *ProviderHealth) Available(key string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	until, ok := h.until[key]
	if !ok {
		return true
	}
	if h.now().After(until) {
		delete(h.until, key)
		return true
	}
	return false
}

// AvailableCount reports how many of the given candidates are usable. The
// health endpoint exposes this.
func (h *ProviderHealth) AvailableCount(candidates []ModelConfig) int {
	n := 0
	for _, mc := range candidates {
		if h.Available(mc.Key()) {
			n++
		}
	}
	return n
}
