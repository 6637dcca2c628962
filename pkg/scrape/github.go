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

// GitHubScraper reads repository metadata from the GitHub REST API. Open
// source assistive tools are overwhelmingly listed by their repo URL.
type GitHubScraper struct {
	client  *httpclient.HTTPClient
	baseURL string
}

// NewGitHubScraper creates a GitHub scraper. tokens may be nil for
// unauthenticated (rate-limited) access.
func NewGitHubScraper(tokens httpclient.TokenSource) *GitHubScraper {
	var client *httpclient.HTTPClient
	if tokens != nil {
		client = httpclient.NewAuthorizedClient(tokens)
	} else {
		client = httpclient.NewClient(httpclient.APIClient)
	}
	return &GitHubScraper{
		client:  client,
		baseURL: "https://api.github.com",
	}
}

// Name implements ProductScraper.
func (s *GitHubScraper) Name() string { return "github" }

// Supports reports whether the URL points at a github.com repository.
func (s *GitHubScraper) Supports(rawURL string) bool {
	if !hostMatches(rawURL, "github.com") {
		return false
	}
	_, _, err := splitRepoPath(rawURL)
	return err == nil
}

// githubRepo is the subset of the repos API response the directory needs.
type githubRepo struct {
	Name        string `json:"name"`
	FullName    string `json:"full_name"`
	Description string `json:"description"`
	Homepage    string `json:"homepage"`
	Stars       int    `json:"stargazers_count"`
	Owner       struct {
		Login string `json:"login"`
	} `json:"owner"`
	License struct {
		SPDXID string `json:"spdx_id"`
	} `json:"license"`
}

// Scrape fetches repo metadata for the given repository URL.
func (s *GitHubScraper) Scrape(ctx context.Context, rawURL string) (*domain.ScrapedProduct, error) {
	owner, repo, err := splitRepoPath(rawURL)
	if err != nil {
		return nil, err
	}

	endpoint := fmt.Sprintf("%s/repos/%s/%s", s.baseURL, owner, repo)
	resp, err := s.client.GetContext(ctx, endpoint)
	if err != nil {
		return nil, fmt.Errorf("fetch github repo: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("github API returned %d for %s/%s", resp.StatusCode, owner, repo)
	}

	var gh githubRepo
	if err := json.NewDecoder(resp.Body).Decode(&gh); err != nil {
		return nil, fmt.Errorf("decode github response: %w", err)
	}

	return &domain.ScrapedProduct{
		SourceURL:   rawURL,
		Source:      s.Name(),
		Name:        gh.Name,
		Description: gh.Description,
		Vendor:      gh.Owner.Login,
		Homepage:    gh.Homepage,
		License:     gh.License.SPDXID,
		Stars:       gh.Stars,
		// Repo-hosted tools are free by definition.
		PriceCents: 0,
		ScrapedAt:  time.Now(),
	}, nil
}

// splitRepoPath extracts owner and repo from a github.com URL.
func splitRepoPath(rawURL string) (owner, repo string, err error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "", "", err
	}

	parts := strings.Split(strings.Trim(parsed.Path, "/"), "/")
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("not a repository URL: %s", rawURL)
	}
	return parts[0], strings.TrimSuffix(parts[1], ".git"), nil
}
