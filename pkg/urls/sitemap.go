package urls

import (
	"fmt"

	"tooldex/pkg/sitemap"
)

// SitemapFetcher adapts the sitemap parser to the URLsFetcher interface so
// vendor sitemaps can feed product discovery.
type SitemapFetcher struct {
	parser *sitemap.Parser
}

// NewSitemapFetcher creates a new sitemap fetcher
func NewSitemapFetcher() *SitemapFetcher {
	return &SitemapFetcher{
		parser: sitemap.NewParser(),
	}
}

// Fetch implements URLsFetcher interface - parses the sitemap at the given URL
func (f *SitemapFetcher) Fetch(sitemapURL string) ([]URL, error) {
	entries, err := f.parser.ParseFromURL(sitemapURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse sitemap: %w", err)
	}

	found := make([]URL, 0, len(entries))
	for _, entry := range entries {
		if entry.Location != "" {
			found = append(found, URL{Location: entry.Location})
		}
	}

	if len(found) == 0 {
		return nil, fmt.Errorf("sitemap contains no URLs")
	}

	return found, nil
}
