package llm

import (
	"math/rand"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/PranavKumarAV/Lets-stay-updated/internal/domain"
)

const (
	heuristicBase        = 60
	heuristicTopicBonus  = 20
	heuristicJitter      = 10
	fallbackSummaryLen   = 200
	fallbackSummaryWords = 40
)

// FallbackSources is the static outlet list used when no model is
// reachable. A regional aggregate entry is added for non-international
// requests.
func FallbackSources(region string, excluded []string) []domain.Source {
	sources := []domain.Source{
		{Name: "Reuters", Type: "traditional", RelevanceScore: 90, CredibilityScore: 95, Reasoning: "Global wire service with broad topic coverage"},
		{Name: "Associated Press", Type: "traditional", RelevanceScore: 88, CredibilityScore: 95, Reasoning: "Wide-reaching wire service"},
		{Name: "BBC News", Type: "traditional", RelevanceScore: 85, CredibilityScore: 92, Reasoning: "International broadcaster"},
		{Name: "NPR", Type: "traditional", RelevanceScore: 80, CredibilityScore: 90, Reasoning: "In-depth reporting"},
		{Name: "The Guardian", Type: "traditional", RelevanceScore: 80, CredibilityScore: 88, Reasoning: "Global coverage with open access"},
		{Name: "Substack", Type: "newsletter", RelevanceScore: 70, CredibilityScore: 75, Reasoning: "Independent expert newsletters"},
	}
	if region != "" && !strings.EqualFold(region, "international") {
		sources = append(sources, domain.Source{
			Name:             capitalize(region) + " News",
			Type:             "traditional",
			RelevanceScore:   75,
			CredibilityScore: 80,
			Reasoning:        "Regional coverage for " + region,
		})
	}
	return filterExcluded(sources, excluded)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + s[size:]
}

// truncateRunes cuts s to at most max bytes without splitting a UTF-8
// sequence.
func truncateRunes(s string, max int) string {
	if len(s) <= max {
		return s
	}
	for max > 0 && !utf8.RuneStart(s[max]) {
		max--
	}
	return s[:max]
}

// HeuristicRank scores articles without a model: a base score, a bonus when
// the title mentions a requested topic, and a little jitter so equal
// articles do not always sort identically. Results come back best first.
func HeuristicRank(articles []domain.Article, topics []string) []domain.Article {
	out := make([]domain.Article, len(articles))
	copy(out, articles)
	for i := range out {
		score := heuristicBase
		text := strings.ToLower(out[i].Title + " " + out[i].Content)
		for _, topic := range topics {
			if topic != "" && strings.Contains(text, strings.ToLower(topic)) {
				score += heuristicTopicBonus
				break
			}
		}
		score += rand.Intn(2*heuristicJitter+1) - heuristicJitter
		out[i].AIScore = domain.ClampScore(score)
		if out[i].Topic == "" && len(topics) > 0 {
			out[i].Topic = topics[0]
		}
	}
	sortByScore(out)
	return out
}

func sortByScore(articles []domain.Article) {
	sort.Slice(articles, func(i, j int) bool {
		if articles[i].AIScore != articles[j].AIScore {
			return articles[i].AIScore > articles[j].AIScore
		}
		return articles[i].PublishedAt.After(articles[j].PublishedAt)
	})
}

// FallbackSummary truncates content to roughly the first forty words when
// no model is available to summarize it.
func FallbackSummary(content string) string {
	content = strings.TrimSpace(content)
	if content == "" {
		return ""
	}
	words := strings.Fields(content)
	if len(words) > fallbackSummaryWords {
		return strings.Join(words[:fallbackSummaryWords], " ") + "..."
	}
	if len(content) > fallbackSummaryLen {
		return strings.TrimSpace(truncateRunes(content, fallbackSummaryLen)) + "..."
	}
	return content
}
