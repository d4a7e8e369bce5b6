package sources

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/PranavKumarAV/Lets-stay-updated/internal/logger"
)

// Outlet describes one known news outlet and how to reach it.
type Outlet struct {
	Name      string `yaml:"name"`
	NewsAPIID string `yaml:"newsapi_id"`
	FeedURL   string `yaml:"feed_url"`
	Region    string `yaml:"region"`
}

// Registry resolves outlet names from the selected-source step to concrete
// fetch targets.
type Registry struct {
	outlets []Outlet
}

// builtinOutlets keep the fallback chain working when no outlets file is
// deployed.
var builtinOutlets = []Outlet{
	{Name: "Reuters", FeedURL: "https://www.reutersagency.com/feed/?best-topics=top-news", Region: "international"},
	{Name: "Associated Press", NewsAPIID: "associated-press", Region: "international"},
	{Name: "BBC News", NewsAPIID: "bbc-news", FeedURL: "https://feeds.bbci.co.uk/news/rss.xml", Region: "international"},
	{Name: "NPR", FeedURL: "https://feeds.npr.org/1001/rss.xml", Region: "us"},
	{Name: "The Guardian", FeedURL: "https://www.theguardian.com/world/rss", Region: "international"},
	{Name: "Al Jazeera", NewsAPIID: "al-jazeera-english", FeedURL: "https://www.aljazeera.com/xml/rss/all.xml", Region: "international"},
	{Name: "The Verge", NewsAPIID: "the-verge", FeedURL: "https://www.theverge.com/rss/index.xml", Region: "international"},
	{Name: "TechCrunch", NewsAPIID: "techcrunch", FeedURL: "https://techcrunch.com/feed/", Region: "international"},
	{Name: "ESPN", NewsAPIID: "espn", FeedURL: "https://www.espn.com/espn/rss/news", Region: "international"},
}

// LoadRegistry reads the outlets file, falling back to the builtin list
// when the file is missing or unreadable.
func LoadRegistry(path string) *Registry {
	data, err := os.ReadFile(path)
	if err != nil {
		logger.Warn("outlets file unavailable, using builtin outlets", "path", path, "error", err)
		return &Registry{outlets: builtinOutlets}
	}

	var parsed struct {
		Outlets []Outlet `yaml:"outlets"`
	}
	if err := yaml.Unmarshal(data, &parsed); err != nil || len(parsed.Outlets) == 0 {
		logger.Warn("outlets file unparseable, using builtin outlets", "path", path, "error", err)
		return &Registry{outlets: builtinOutlets}
	}
	logger.Info("loaded outlet registry", "path", path, "outlets", len(parsed.Outlets))
	return &Registry{outlets: parsed.Outlets}
}

// NewRegistry builds a registry from an explicit outlet list.
func NewRegistry(outlets []Outlet) *Registry {
	return &Registry{outlets: outlets}
}

// Lookup finds an outlet by name, tolerating case differences and partial
// matches in either direction ("BBC" matches "BBC News").
func (r *Registry) Lookup(name string) (Outlet, bool) {
	needle := strings.ToLower(strings.TrimSpace(name))
	if needle == "" {
		return Outlet{}, false
	}
	for _, o := range r.outlets {
		if strings.ToLower(o.Name) == needle {
			return o, true
		}
	}
	for _, o := range r.outlets {
		haystack := strings.ToLower(o.Name)
		if strings.Contains(haystack, needle) || strings.Contains(needle, haystack) {
			return o, true
		}
	}
	return Outlet{}, false
}

// All returns every registered outlet.
func (r *Registry) All() []Outlet {
	return r.outlets
}

// Remaining returns outlets whose names are not in the used set, for
// topping up when the selected sources come up short.
func (r *Registry) Remaining(used map[string]bool) []Outlet {
	var out []Outlet
	for _, o := range r.outlets {
		if !used[strings.ToLower(o.Name)] {
			out = append(out, o)
		}
	}
	return out
}

func (o Outlet) String() string {
	return fmt.Sprintf("%s (newsapi=%q feed=%q)", o.Name, o.NewsAPIID, o.FeedURL)
}
