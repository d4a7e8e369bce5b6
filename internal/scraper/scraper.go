// Package scraper pulls full article text out of news pages for articles
// whose feed entry only carried a headline or a short teaser.
package scraper

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/PranavKumarAV/Lets-stay-updated/internal/logger"
	"github.com/PranavKumarAV/Lets-stay-updated/internal/retry"
)

const (
	minParagraphLen = 20
	maxContentLen   = 4000
	enoughParas     = 3
)

// contentSelectors covers the article-body markup most news sites use,
// tried in order until enough paragraphs turn up.
var contentSelectors = []string{
	"article p",
	".article-body p",
	".article-content p",
	".post-content p",
	".entry-content p",
	".story-body p",
	"main p",
	"#content p",
	"p",
}

// Scraper fetches pages and extracts readable text.
type Scraper struct {
	client *http.Client
}

func New(timeout time.Duration) *Scraper {
	return &Scraper{client: &http.Client{Timeout: timeout}}
}

// Extract downloads the page and returns its article text, retrying
// transient fetch failures.
func (s *Scraper) Extract(ctx context.Context, url string) (string, error) {
	var content string
	err := retry.WithRetry(ctx, retry.Config{MaxAttempts: 2, Delay: time.Second}, func() error {
		var err error
		content, err = s.extractOnce(ctx, url)
		return err
	})
	if err != nil {
		return "", err
	}
	return content, nil
}

func (s *Scraper) extractOnce(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; news-aggregator/1.0)")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("loading page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", fmt.Errorf("parsing HTML: %w", err)
	}

	content := extractParagraphs(doc)
	if content == "" {
		return "", fmt.Errorf("no readable content at %s", url)
	}
	return content, nil
}

func extractParagraphs(doc *goquery.Document) string {
	var paragraphs []string
	for _, selector := range contentSelectors {
		doc.Find(selector).Each(func(_ int, sel *goquery.Selection) {
			text := strings.TrimSpace(sel.Text())
			if len(text) >= minParagraphLen {
				paragraphs = append(paragraphs, text)
			}
		})
		if len(paragraphs) >= enoughParas {
			break
		}
	}
	content := strings.Join(paragraphs, "\n\n")
	if len(content) > maxContentLen {
		content = content[:maxContentLen]
	}
	return content
}

// EnrichContent fills in fuller text for items whose content is shorter
// than minLen. Failures leave the original content alone.
func (s *Scraper) EnrichContent(ctx context.Context, url, current string, minLen int) string {
	if len(current) >= minLen || url == "" {
		return current
	}
	content, err := s.Extract(ctx, url)
	if err != nil {
		logger.Debug("content enrichment skipped", "url", url, "error", err)
		return current
	}
	return content
}

// Reachable reports whether the URL answers with a success status. Used
// only when link verification is switched on.
func (s *Scraper) Reachable(ctx context.Context, url string) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return false
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode < 400
}
