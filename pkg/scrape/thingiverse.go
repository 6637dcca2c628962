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
	"tooldex/pkg/httpclient"
)

// ThingiverseScraper reads 3D-printable tool metadata from the Thingiverse
// things API with a bearer token.
type ThingiverseScraper struct {
	client  *httpclient.HTTPClient
	baseURL string
}

// NewThingiverseScraper creates a Thingiverse scraper.
func NewThingiverseScraper(tokens httpclient.TokenSource) *ThingiverseScraper {
	return &ThingiverseScraper{
		client:  httpclient.NewAuthorizedClient(tokens),
		baseURL: "https://api.thingiverse.com",
	}
}

// Name implements ProductScraper.
func (s *ThingiverseScraper) Name() string { return "thingiverse" }

// Supports reports whether the URL points at a thingiverse.com thing.
func (s *ThingiverseScraper) Supports(rawURL string) bool {
	if !hostMatches(rawURL, "thingiverse.com") {
		return false
	}
	_, err := thingID(rawURL)
	return err == nil
}

// thing is the subset of the things API response the directory needs.
type thing struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	PublicURL   string `json:"public_url"`
	LikeCount   int    `json:"like_count"`
	Creator     struct {
		Name string `json:"name"`
	} `json:"creator"`
	License string `json:"license"`
}

// Scrape fetches thing metadata for the given URL.
func (s *ThingiverseScraper) Scrape(ctx context.Context, rawURL string) (*domain.ScrapedProduct, error) {
	id, err := thingID(rawURL)
	if err != nil {
		return nil, err
	}

	endpoint := fmt.Sprintf("%s/things/%s", s.baseURL, id)
	resp, err := s.client.GetContext(ctx, endpoint)
	if err != nil {
		return nil, fmt.Errorf("fetch thingiverse thing: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("thingiverse API returned %d for thing %s", resp.StatusCode, id)
	}

	var th thing
	if err := json.NewDecoder(resp.Body).Decode(&th); err != nil {
		return nil, fmt.Errorf("decode thingiverse response: %w", err)
	}

	return &domain.ScrapedProduct{
		SourceURL:   rawURL,
		Source:      s.Name(),
		Name:        th.Name,
		Description: th.Description,
		Vendor:      th.Creator.Name,
		Homepage:    th.PublicURL,
		License:     th.License,
		Stars:       th.LikeCount,
		PriceCents:  0,
		ScrapedAt:   time.Now(),
	}, nil
}

// thingID extracts the numeric thing id from URLs like
// https://www.thingiverse.com/thing:4089053.
func thingID(rawURL string) (string, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}

	path := strings.Trim(parsed.Path, "/")
	if !strings.HasPrefix(path, "thing:") {
		return "", fmt.Errorf("not a thing URL: %s", rawURL)
	}

	id := strings.TrimPrefix(path, "thing:")
	if id == "" {
		return "", fmt.Errorf("empty thing id in %s", rawURL)
	}
	return id, nil
}
