package urls

import (
	"context"
	"net/url"
	"strings"
)

// URL represents a candidate product link found on a source page
type URL struct {
	Location string // URL of the product or store listing
	Title    string // Link text or title (optional)
}

// URLsFetcher defines the interface for URL sources (listing pages, files, etc.)
type URLsFetcher interface {
	Fetch(baseURL string) ([]URL, error)
}

// UrlFilter defines the interface for URL filtering
type UrlFilter interface {
	ShouldKeep(ctx context.Context, url string) (bool, error)
}

// BaseURLFilter filters out base/root URLs
type BaseURLFilter struct{}

// NewBaseURLFilter creates a new base URL filter
func NewBaseURLFilter() *BaseURLFilter {
	return &BaseURLFilter{}
}

// ShouldKeep returns false if URL is a base/root URL
func (f *BaseURLFilter) ShouldKeep(ctx context.Context, urlStr string) (bool, error) {
	parsed, err := url.Parse(urlStr)
	if err != nil {
		// If we can't parse it, don't filter it out (let it fail later if needed)
		return true, nil
	}

	path := strings.Trim(parsed.Path, "/")
	return path != "", nil
}

// AlreadyTrackedFilter filters out URLs the directory already tracks
type AlreadyTrackedFilter struct {
	trackedURLs map[string]bool
}

// NewAlreadyTrackedFilter creates a filter over the set of tracked URLs
func NewAlreadyTrackedFilter(trackedURLs map[string]bool) *AlreadyTrackedFilter {
	return &AlreadyTrackedFilter{
		trackedURLs: trackedURLs,
	}
}

// ShouldKeep returns false if URL is already tracked
func (f *AlreadyTrackedFilter) ShouldKeep(ctx context.Context, urlStr string) (bool, error) {
	exists := f.trackedURLs[urlStr]
	return !exists, nil
}

// HostAllowlistFilter keeps only URLs whose host is (a subdomain of) one of
// the allowed hosts
type HostAllowlistFilter struct {
	hosts []string
}

// NewHostAllowlistFilter creates a host allowlist filter
func NewHostAllowlistFilter(hosts ...string) *HostAllowlistFilter {
	return &HostAllowlistFilter{hosts: hosts}
}

// ShouldKeep returns true if the URL's host is allowed
func (f *HostAllowlistFilter) ShouldKeep(ctx context.Context, urlStr string) (bool, error) {
	parsed, err := url.Parse(urlStr)
	if err != nil {
		return false, nil
	}

	host := parsed.Hostname()
	for _, allowed := range f.hosts {
		if host == allowed || strings.HasSuffix(host, "."+allowed) {
			return true, nil
		}
	}
	return false, nil
}

// FilterURLs applies all filters to a list of URLs
func FilterURLs(ctx context.Context, candidates []string, filters ...UrlFilter) ([]string, error) {
	filtered := make([]string, 0, len(candidates))

	for _, urlStr := range candidates {
		keep := true
		for _, f := range filters {
			shouldKeep, err := f.ShouldKeep(ctx, urlStr)
			if err != nil {
				return nil, err
			}
			if !shouldKeep {
				keep = false
				break
			}
		}
		if keep {
			filtered = append(filtered, urlStr)
		}
	}

	return filtered, nil
}
