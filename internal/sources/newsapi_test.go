package sources

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/PranavKumarAV/Lets-stay-updated/internal/cache"
	"github.com/PranavKumarAV/Lets-stay-updated/internal/storage"
)

const everythingBody = `{
	"status": "ok",
	"articles": [
		{
			"source": {"id": "bbc-news", "name": "BBC News"},
			"author": "Staff",
			"title": "Parliament passes budget",
			"description": "Short description",
			"url": "https://example.com/budget",
			"publishedAt": "2026-08-30T10:00:00Z",
			"content": "Full content here"
		},
		{
			"source": {"id": "", "name": ""},
			"title": "",
			"url": ""
		}
	]
}`

func newTestClient(t *testing.T, baseURL string, keys []string) *NewsAPIClient {
	t.Helper()
	ids, err := storage.NewSourceIDStore(filepath.Join(t.TempDir(), "ids.json"))
	if err != nil {
		t.Fatalf("NewSourceIDStore: %v", err)
	}
	c := NewNewsAPIClient(keys, 5*time.Second, cache.New(), ids)
	c.baseURL = baseURL
	return c
}

func TestEverythingMapsArticles(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("apiKey") == "" {
			t.Error("request missing api key")
		}
		w.Write([]byte(everythingBody))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, []string{"key-a"})
	articles, err := c.Everything(context.Background(), []string{"politics"}, "bbc-news", 5)
	if err != nil {
		t.Fatalf("Everything: %v", err)
	}
	if len(articles) != 1 {
		t.Fatalf("got %d articles, want 1 (empty entries skipped)", len(articles))
	}
	a := articles[0]
	if a.Title != "Parliament passes budget" || a.Source != "BBC News" {
		t.Errorf("unexpected article: %+v", a)
	}
	if a.PublishedAt.IsZero() {
		t.Error("publishedAt should be parsed")
	}
	if v, ok := a.Metadata["api"].(bool); !ok || !v {
		t.Error("api marker missing from metadata")
	}
}

func TestKeyRotationOnRateLimit(t *testing.T) {
	var seenKeys []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.URL.Query().Get("apiKey")
		seenKeys = append(seenKeys, key)
		if key == "key-a" {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(everythingBody))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, []string{"key-a", "key-b"})
	articles, err := c.Everything(context.Background(), []string{"politics"}, "", 5)
	if err != nil {
		t.Fatalf("Everything after rotation: %v", err)
	}
	if len(articles) != 1 {
		t.Fatalf("got %d articles, want 1", len(articles))
	}
	if len(seenKeys) != 2 || seenKeys[0] != "key-a" || seenKeys[1] != "key-b" {
		t.Fatalf("rotation order wrong: %v", seenKeys)
	}
	if !c.Enabled() {
		t.Fatal("client should stay enabled while a key still works")
	}
}

func TestAllKeysExhausted(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, []string{"key-a", "key-b"})
	if _, err := c.Everything(context.Background(), []string{"ai"}, "", 5); err != ErrRateLimited {
		t.Fatalf("err = %v, want ErrRateLimited", err)
	}
	if c.Enabled() {
		t.Fatal("client must disable itself once every key is limited")
	}

	// Later calls short-circuit without touching the network.
	if _, err := c.Everything(context.Background(), []string{"ai"}, "", 5); err != ErrRateLimited {
		t.Fatalf("err after exhaustion = %v, want ErrRateLimited", err)
	}
}

func TestResolveSourceID(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Write([]byte(`{"status":"ok","sources":[
			{"id":"bbc-news","name":"BBC News"},
			{"id":"espn","name":"ESPN"}
		]}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, []string{"key-a"})
	id, ok := c.ResolveSourceID(context.Background(), "BBC")
	if !ok || id != "bbc-news" {
		t.Fatalf("ResolveSourceID = %q, %v", id, ok)
	}

	// Second lookup hits the persisted map, not the API.
	id, ok = c.ResolveSourceID(context.Background(), "BBC")
	if !ok || id != "bbc-news" {
		t.Fatalf("cached ResolveSourceID = %q, %v", id, ok)
	}
	if calls != 1 {
		t.Fatalf("API called %d times, want 1", calls)
	}
}
