package scrape

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/net/html"

	"tooldex/pkg/domain"
	"tooldex/pkg/httpclient"
)

// GenericScraper is the fallback for plain vendor websites: it walks the
// page head for title, description, OpenGraph and Twitter Card tags.
type GenericScraper struct {
	client *httpclient.HTTPClient
}

// NewGenericScraper creates the fallback scraper.
func NewGenericScraper() *GenericScraper {
	return &GenericScraper{
		client: httpclient.NewClient(httpclient.BrowserClient),
	}
}

// Name implements ProductScraper.
func (s *GenericScraper) Name() string { return "website" }

// Supports accepts any http(s) URL; register this scraper last.
func (s *GenericScraper) Supports(rawURL string) bool {
	return strings.HasPrefix(rawURL, "http://") || strings.HasPrefix(rawURL, "https://")
}

// Scrape fetches the page and extracts its metadata.
func (s *GenericScraper) Scrape(ctx context.Context, rawURL string) (*domain.ScrapedProduct, error) {
	resp, err := s.client.GetContext(ctx, rawURL)
	if err != nil {
		return nil, fmt.Errorf("fetch page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("page returned %d for %s", resp.StatusCode, rawURL)
	}

	// Metadata lives in the head; 128KB is plenty and bounds hostile pages.
	limited := io.LimitReader(resp.Body, 128*1024)

	doc, err := html.Parse(limited)
	if err != nil {
		return nil, fmt.Errorf("parse page: %w", err)
	}

	meta := extractPageMeta(doc)
	if meta.title == "" && meta.ogTitle == "" {
		return nil, fmt.Errorf("no usable metadata found at %s", rawURL)
	}

	scraped := &domain.ScrapedProduct{
		SourceURL:   rawURL,
		Source:      s.Name(),
		Name:        meta.ogTitle,
		Description: meta.ogDescription,
		Homepage:    rawURL,
		ImageURL:    meta.ogImage,
		ScrapedAt:   time.Now(),
	}
	if scraped.Name == "" {
		scraped.Name = meta.title
	}
	if scraped.Description == "" {
		scraped.Description = meta.description
	}
	if meta.siteName != "" {
		scraped.Vendor = meta.siteName
	}
	return scraped, nil
}

// pageMeta collects the head tags the fallback cares about.
type pageMeta struct {
	title         string
	description   string
	siteName      string
	ogTitle       string
	ogDescription string
	ogImage       string
}

// extractPageMeta walks the node tree and picks up title/meta content.
// Twitter Card tags fill gaps the OpenGraph tags leave.
func extractPageMeta(doc *html.Node) pageMeta {
	var meta pageMeta

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "title":
				if n.FirstChild != nil && meta.title == "" {
					meta.title = strings.TrimSpace(n.FirstChild.Data)
				}
			case "meta":
				var name, property, content string
				for _, attr := range n.Attr {
					switch attr.Key {
					case "name":
						name = attr.Val
					case "property":
						property = attr.Val
					case "content":
						content = attr.Val
					}
				}

				switch {
				case name == "description":
					meta.description = content
				case property == "og:title":
					meta.ogTitle = content
				case property == "og:description":
					meta.ogDescription = content
				case property == "og:image":
					meta.ogImage = content
				case property == "og:site_name":
					meta.siteName = content
				case name == "twitter:title" && meta.ogTitle == "":
					meta.ogTitle = content
				case name == "twitter:description" && meta.ogDescription == "":
					meta.ogDescription = content
				}
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return meta
}
