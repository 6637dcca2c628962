package urls

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"tooldex/pkg/httpclient"

	"github.com/PuerkitoBio/goquery"
)

// URLExtractor is a function type that extracts product URLs from HTML content
type URLExtractor func(html string) ([]URL, error)

// HTMLFetcher handles fetching HTML pages and extracting URLs using a provided extractor
type HTMLFetcher struct {
	client    *httpclient.HTTPClient
	extractor URLExtractor
}

// NewHTMLFetcher creates a new HTML fetcher with the given extractor function
// Uses CloudflareClient by default to avoid 403 errors from Cloudflare-protected sites
func NewHTMLFetcher(extractor URLExtractor) *HTMLFetcher {
	return NewHTMLFetcherWithClient(extractor, httpclient.CloudflareClient)
}

// NewHTMLFetcherWithClient creates a new HTML fetcher with a specific client type
func NewHTMLFetcherWithClient(extractor URLExtractor, clientType httpclient.ClientType) *HTMLFetcher {
	return &HTMLFetcher{
		client:    httpclient.NewClient(clientType),
		extractor: extractor,
	}
}

// Fetch implements URLsFetcher interface - fetches HTML from the given URL and extracts URLs
func (f *HTMLFetcher) Fetch(pageURL string) ([]URL, error) {
	html, err := f.fetchHTML(pageURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch HTML: %w", err)
	}

	found, err := f.extractURLsFromHTML(html)
	if err != nil {
		return nil, fmt.Errorf("failed to extract URLs: %w", err)
	}

	if len(found) == 0 {
		return nil, fmt.Errorf("no URLs found in HTML")
	}

	return found, nil
}

// fetchHTML fetches the HTML content from the given URL
func (f *HTMLFetcher) fetchHTML(pageURL string) (string, error) {
	resp, err := f.client.Get(pageURL)
	if err != nil {
		return "", fmt.Errorf("failed to fetch URL: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}

	return string(body), nil
}

// extractURLsFromHTML extracts URLs from HTML using the configured extractor
func (f *HTMLFetcher) extractURLsFromHTML(html string) ([]URL, error) {
	if f.extractor == nil {
		return nil, fmt.Errorf("extractor function is not set")
	}

	return f.extractor(html)
}

// productSourceHosts are the platforms the directory can scrape metadata
// from. Links to anything else on a listing page are noise.
var productSourceHosts = []string{
	"github.com",
	"ravelry.com",
	"thingiverse.com",
	"goat.com",
}

// ExtractStoreLinks extracts links to known product platforms from an HTML
// page. Used to discover candidate products on vendor and community listing
// pages.
func ExtractStoreLinks(html string) ([]URL, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	seen := make(map[string]bool)
	var found []URL

	doc.Find("a[href]").Each(func(i int, link *goquery.Selection) {
		href, exists := link.Attr("href")
		if !exists || href == "" {
			return
		}

		parsed, err := url.Parse(href)
		if err != nil || parsed.Host == "" {
			return
		}

		host := parsed.Hostname()
		if !isProductSourceHost(host) {
			return
		}

		if seen[href] {
			return
		}
		seen[href] = true

		found = append(found, URL{
			Location: href,
			Title:    strings.TrimSpace(link.Text()),
		})
	})

	if len(found) == 0 {
		return nil, fmt.Errorf("no store links found in HTML")
	}

	return found, nil
}

// isProductSourceHost reports whether host belongs to a known platform.
func isProductSourceHost(host string) bool {
	for _, h := range productSourceHosts {
		if host == h || strings.HasSuffix(host, "."+h) {
			return true
		}
	}
	return false
}
