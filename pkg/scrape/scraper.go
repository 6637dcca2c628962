// Package scrape pulls product metadata out of the platforms the directory
// links to. Each integration knows one platform; the registry routes a URL
// to the scraper that supports it.
package scrape

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"tooldex/pkg/domain"
)

// ErrUnsupportedURL is returned when no registered scraper supports a URL.
var ErrUnsupportedURL = errors.New("no scraper supports this URL")

// ProductScraper extracts product metadata from a source URL.
type ProductScraper interface {
	// Name identifies the integration ("github", "goat", ...).
	Name() string

	// Supports reports whether this scraper handles the URL.
	Supports(rawURL string) bool

	// Scrape fetches and extracts product metadata.
	Scrape(ctx context.Context, rawURL string) (*domain.ScrapedProduct, error)
}

// Registry routes URLs to scrapers. Scrapers are tried in registration
// order, so register the generic fallback last.
type Registry struct {
	scrapers []ProductScraper
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register appends a scraper.
func (r *Registry) Register(s ProductScraper) {
	r.scrapers = append(r.scrapers, s)
}

// For returns the first scraper that supports the URL.
func (r *Registry) For(rawURL string) (ProductScraper, error) {
	for _, s := range r.scrapers {
		if s.Supports(rawURL) {
			return s, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedURL, rawURL)
}

// Scrape routes the URL and runs the matching scraper.
func (r *Registry) Scrape(ctx context.Context, rawURL string) (*domain.ScrapedProduct, error) {
	s, err := r.For(rawURL)
	if err != nil {
		return nil, err
	}
	return s.Scrape(ctx, rawURL)
}

// hostMatches reports whether the URL's host is the given host or one of
// its subdomains.
func hostMatches(rawURL, host string) bool {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	h := parsed.Hostname()
	if h == host {
		return true
	}
	return len(h) > len(host) && h[len(h)-len(host)-1] == '.' && h[len(h)-len(host):] == host
}
