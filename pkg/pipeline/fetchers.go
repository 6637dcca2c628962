package pipeline

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"tooldex/pkg/httpclient"
	"tooldex/pkg/urls"

	"go.uber.org/zap"
)

// BasicUrlFetcher wraps a URLsFetcher to extract URLs from a base URL
// Used for file lists and store-link pages where URLs come straight
// from the base URL
type BasicUrlFetcher struct {
	fetcher urls.URLsFetcher
	filters []urls.UrlFilter
}

// NewBasicURLFetcher creates a new base URL fetcher
func NewBasicURLFetcher(fetcher urls.URLsFetcher) *BasicUrlFetcher {
	return &BasicUrlFetcher{
		fetcher: fetcher,
		filters: nil,
	}
}

// NewBasicURLFetcherWithFilters creates a new base URL fetcher with filters
func NewBasicURLFetcherWithFilters(fetcher urls.URLsFetcher, filters []urls.UrlFilter) *BasicUrlFetcher {
	return &BasicUrlFetcher{
		fetcher: fetcher,
		filters: filters,
	}
}

// Fetch extracts URLs from the given base URL and applies filters
func (f *BasicUrlFetcher) Fetch(ctx context.Context, baseURL string) ([]string, error) {
	found, err := f.fetcher.Fetch(baseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch URLs: %w", err)
	}

	result := make([]string, 0, len(found))
	for _, u := range found {
		if u.Location != "" {
			result = append(result, u.Location)
		}
	}

	if len(f.filters) > 0 {
		filtered, err := urls.FilterURLs(ctx, result, f.filters...)
		if err != nil {
			return nil, fmt.Errorf("filter error: %w", err)
		}
		result = filtered
	}

	return result, nil
}

// NewStoreLinkFetcher creates a BasicUrlFetcher that extracts product store
// links from HTML pages
func NewStoreLinkFetcher(filters ...urls.UrlFilter) *BasicUrlFetcher {
	return NewBasicURLFetcherWithFilters(urls.NewHTMLFetcher(urls.ExtractStoreLinks), filters)
}

// NewFileListFetcher creates a BasicUrlFetcher that reads source URLs from a
// local file, one per line
func NewFileListFetcher(filters ...urls.UrlFilter) *BasicUrlFetcher {
	return NewBasicURLFetcherWithFilters(urls.NewFileFetcher(), filters)
}

// PageRangeGenerator generates directory page URLs from a base URL and page
// pattern. Used for paginated category listings where page URLs look like
// "https://site.com/tools?page=1", "?page=2", etc.
// It generates page URLs until it finds a page that doesn't exist (404 or
// other error) or contains content indicating no more pages.
// Implements URLGenerator
type PageRangeGenerator struct {
	baseURL             string // Base URL (e.g., "https://site.com")
	pagePattern         string // Page pattern with %d placeholder (e.g., "/tools/page/%d")
	httpClient          *httpclient.HTTPClient
	emptyContentMarkers []string // Strings that indicate no content
	logger              *zap.Logger
}

// NewPageRangeGenerator creates a new page range generator
func NewPageRangeGenerator(baseURL, pagePattern string, logger *zap.Logger) *PageRangeGenerator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PageRangeGenerator{
		baseURL:             baseURL,
		pagePattern:         pagePattern,
		httpClient:          httpclient.NewClient(httpclient.BrowserClient),
		emptyContentMarkers: []string{"no products found", "0 results"},
		logger:              logger,
	}
}

// Generate generates page URLs from the configured pattern
// Stops when a page does not exist, indicating the end of pagination
func (f *PageRangeGenerator) Generate(ctx context.Context) ([]string, error) {
	var allPageURLs []string
	currentPage := 1

	for {
		select {
		case <-ctx.Done():
			return allPageURLs, ctx.Err()
		default:
		}

		pageURL := f.baseURL + fmt.Sprintf(f.pagePattern, currentPage)
		stop, err := f.shouldStopPagination(ctx, currentPage, pageURL)
		if err != nil || stop {
			break
		}

		allPageURLs = append(allPageURLs, pageURL)
		currentPage++
	}

	f.logger.Info("generated directory page URLs", zap.Int("count", len(allPageURLs)))
	return allPageURLs, nil
}

// shouldStopPagination checks if the page exists and still has listings
func (f *PageRangeGenerator) shouldStopPagination(ctx context.Context, currentPage int, pageURL string) (bool, error) {
	exists, err := f.checkPageExists(pageURL)
	if err != nil {
		f.logger.Warn("page check failed, stopping pagination",
			zap.Int("page", currentPage), zap.Error(err))
		return true, err
	}
	if !exists {
		return true, nil
	}

	// Every 10 pages, check content for empty markers
	if currentPage%10 == 0 {
		empty, err := f.pageIsEmpty(ctx, pageURL)
		if err != nil {
			return false, nil // Continue on error
		}
		return empty, nil
	}

	return false, nil
}

// checkPageExists checks if a page exists using a HEAD request
func (f *PageRangeGenerator) checkPageExists(pageURL string) (bool, error) {
	resp, err := f.httpClient.Head(pageURL)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	return resp.StatusCode == http.StatusOK, nil
}

// pageIsEmpty fetches the page and looks for empty content markers
func (f *PageRangeGenerator) pageIsEmpty(ctx context.Context, pageURL string) (bool, error) {
	resp, err := f.httpClient.GetContext(ctx, pageURL)
	if err != nil {
		return false, fmt.Errorf("failed to fetch page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return false, fmt.Errorf("failed to read response body: %w", err)
	}

	bodyStr := strings.ToLower(string(body))
	for _, marker := range f.emptyContentMarkers {
		if strings.Contains(bodyStr, marker) {
			return true, nil
		}
	}

	return false, nil
}
