package tools

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"concierge/pkg/logger"
)

// GuideEntry is one recommendation extracted from the area-guide page
type GuideEntry struct {
	Title    string `json:"title"`
	Category string `json:"category"`
	Summary  string `json:"summary"`
}

// GuideFetcher pulls local recommendations from the property's area-guide
// page
type GuideFetcher struct {
	guideURL   string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewGuideFetcher creates a fetcher for the given guide URL
func NewGuideFetcher(guideURL string) *GuideFetcher {
	return &GuideFetcher{
		guideURL: guideURL,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		logger: logger.Get(),
	}
}

// Fetch retrieves and parses the guide page, optionally filtered by
// category. Guide pages mark entries with .guide-entry blocks; pages without
// that markup fall back to list items.
func (g *GuideFetcher) Fetch(ctx context.Context, category string) ([]GuideEntry, error) {
	if g.guideURL == "" {
		return nil, fmt.Errorf("no area guide configured")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.guideURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "text/html")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("guide fetch failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("guide fetch failed: status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse guide page: %w", err)
	}

	entries := []GuideEntry{}
	doc.Find(".guide-entry").Each(func(_ int, s *goquery.Selection) {
		entry := GuideEntry{
			Title:    strings.TrimSpace(s.Find(".guide-title").First().Text()),
			Category: strings.ToLower(strings.TrimSpace(s.Find(".guide-category").First().Text())),
			Summary:  strings.TrimSpace(s.Find(".guide-summary").First().Text()),
		}
		if entry.Title != "" {
			entries = append(entries, entry)
		}
	})

	if len(entries) == 0 {
		doc.Find("li").Each(func(_ int, s *goquery.Selection) {
			text := strings.TrimSpace(s.Text())
			if text != "" && len(entries) < 20 {
				entries = append(entries, GuideEntry{Title: text})
			}
		})
	}

	if category != "" {
		category = strings.ToLower(category)
		filtered := entries[:0]
		for _, e := range entries {
			if e.Category == "" || strings.Contains(e.Category, category) {
				filtered = append(filtered, e)
			}
		}
		entries = filtered
	}

	g.logger.Debug("Guide entries fetched",
		zap.String("url", g.guideURL),
		zap.Int("count", len(entries)),
	)
	return entries, nil
}
