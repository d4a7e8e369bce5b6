package news

import (
	"regexp"
	"strings"
)

// synonyms broadens topic matching. Keys and values are lower case; the
// table is symmetric enough for the topics users actually request.
var synonyms = map[string][]string{
	"ai":                      {"artificial intelligence", "machine learning", "ml", "deep learning", "llm", "neural network"},
	"artificial intelligence": {"ai", "machine learning", "ml", "deep learning"},
	"machine learning":        {"ai", "artificial intelligence", "ml"},
	"tech":                    {"technology", "software", "startup"},
	"technology":              {"tech", "software", "startup"},
	"politics":                {"government", "election", "policy", "parliament", "senate"},
	"sports":                  {"football", "basketball", "soccer", "tennis", "olympics", "championship"},
	"movies":                  {"film", "cinema", "hollywood", "box office"},
	"finance":                 {"markets", "stocks", "economy", "banking"},
	"health":                  {"medicine", "medical", "healthcare"},
	"climate":                 {"global warming", "climate change", "emissions"},
}

// expandTopics returns each topic plus its registered synonyms, lower
// cased and deduplicated.
func expandTopics(topics []string) []string {
	seen := make(map[string]bool)
	var out []string
	add := func(term string) {
		term = strings.ToLower(strings.TrimSpace(term))
		if term != "" && !seen[term] {
			seen[term] = true
			out = append(out, term)
		}
	}
	for _, topic := range topics {
		add(topic)
		for _, syn := range synonyms[strings.ToLower(strings.TrimSpace(topic))] {
			add(syn)
		}
	}
	return out
}

// containsAny distinguishes phrases from short tokens: phrases match as
// substrings, tokens of three characters or fewer need word boundaries so
// "ai" does not match "said".
func containsAny(text string, keywords []string) bool {
	text = strings.ToLower(text)
	for _, k := range keywords {
		k = strings.ToLower(strings.TrimSpace(k))
		if k == "" {
			continue
		}
		if strings.Contains(k, " ") {
			if strings.Contains(text, k) {
				return true
			}
			continue
		}
		if len(k) <= 3 {
			re := regexp.MustCompile(`\b` + regexp.QuoteMeta(k) + `\b`)
			if re.MatchString(text) {
				return true
			}
			continue
		}
		if strings.Contains(text, k) {
			return true
		}
	}
	return false
}

// relevant reports whether the article text mentions any requested topic
// or synonym. An empty topic list passes everything.
func relevant(title, content string, expandedTopics []string) bool {
	if len(expandedTopics) == 0 {
		return true
	}
	return containsAny(title+" "+content, expandedTopics)
}
