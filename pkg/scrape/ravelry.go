package scrape

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"tooldex/pkg/domain"
)

// RavelryScraper reads pattern metadata from the Ravelry API. Ravelry uses
// basic auth with an application key and secret rather than bearer tokens.
type RavelryScraper struct {
	key     string
	secret  string
	client  *http.Client
	baseURL string
}

// NewRavelryScraper creates a Ravelry scraper with API credentials.
func NewRavelryScraper(key, secret string) *RavelryScraper {
	return &RavelryScraper{
		key:     key,
		secret:  secret,
		client:  &http.Client{Timeout: 30 * time.Second},
		baseURL: "https://api.ravelry.com",
	}
}

// Name implements ProductScraper.
func (s *RavelryScraper) Name() string { return "ravelry" }

// Supports reports whether the URL points at a ravelry.com pattern.
func (s *RavelryScraper) Supports(rawURL string) bool {
	if !hostMatches(rawURL, "ravelry.com") {
		return false
	}
	_, err := patternSlug(rawURL)
	return err == nil
}

// ravelryPattern is the subset of the patterns API response used here.
type ravelryPattern struct {
	Pattern struct {
		Name  string `json:"name"`
		Notes string `json:"notes"`
		Free  bool   `json:"free"`
		Price float64 `json:"price"`
		Author struct {
			Name string `json:"name"`
		} `json:"pattern_author"`
		Photos []struct {
			MediumURL string `json:"medium_url"`
		} `json:"photos"`
	} `json:"pattern"`
}

// Scrape fetches pattern metadata for the given URL.
func (s *RavelryScraper) Scrape(ctx context.Context, rawURL string) (*domain.ScrapedProduct, error) {
	slug, err := patternSlug(rawURL)
	if err != nil {
		return nil, err
	}

	endpoint := fmt.Sprintf("%s/patterns/%s.json", s.baseURL, slug)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.SetBasicAuth(s.key, s.secret)
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch ravelry pattern: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ravelry API returned %d for pattern %s", resp.StatusCode, slug)
	}

	var rp ravelryPattern
	if err := json.NewDecoder(resp.Body).Decode(&rp); err != nil {
		return nil, fmt.Errorf("decode ravelry response: %w", err)
	}

	priceCents := 0
	if !rp.Pattern.Free {
		priceCents = int(rp.Pattern.Price * 100)
	}

	scraped := &domain.ScrapedProduct{
		SourceURL:   rawURL,
		Source:      s.Name(),
		Name:        rp.Pattern.Name,
		Description: rp.Pattern.Notes,
		Vendor:      rp.Pattern.Author.Name,
		PriceCents:  priceCents,
		ScrapedAt:   time.Now(),
	}
	if len(rp.Pattern.Photos) > 0 {
		scraped.ImageURL = rp.Pattern.Photos[0].MediumURL
	}
	return scraped, nil
}

// patternSlug extracts the pattern slug from URLs like
// https://www.ravelry.com/patterns/library/one-hand-mittens.
func patternSlug(rawURL string) (string, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}

	parts := strings.Split(strings.Trim(parsed.Path, "/"), "/")
	if len(parts) < 3 || parts[0] != "patterns" || parts[1] != "library" || parts[2] == "" {
		return "", fmt.Errorf("not a pattern URL: %s", rawURL)
	}
	return parts[2], nil
}
