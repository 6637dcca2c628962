package scrape

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"tooldex/pkg/domain"
	"tooldex/pkg/httpclient"
)

// GoatScraper extracts listing metadata from goat.com product pages. GOAT
// has no public API, so this one works off the page markup: OpenGraph tags
// plus the price node. The site sits behind Cloudflare, hence the
// curl-profile client.
type GoatScraper struct {
	client  *httpclient.HTTPClient
	baseURL string
}

// NewGoatScraper creates a GOAT page scraper.
func NewGoatScraper() *GoatScraper {
	return &GoatScraper{
		client: httpclient.NewClient(httpclient.CloudflareClient),
	}
}

// Name implements ProductScraper.
func (s *GoatScraper) Name() string { return "goat" }

// Supports reports whether the URL is a goat.com listing.
func (s *GoatScraper) Supports(rawURL string) bool {
	return hostMatches(rawURL, "goat.com")
}

// Scrape fetches the listing page and extracts product metadata.
func (s *GoatScraper) Scrape(ctx context.Context, rawURL string) (*domain.ScrapedProduct, error) {
	fetchURL := rawURL
	if s.baseURL != "" {
		// Test override: rewrite the host, keep the path.
		fetchURL = s.baseURL + pathOf(rawURL)
	}

	resp, err := s.client.GetContext(ctx, fetchURL)
	if err != nil {
		return nil, fmt.Errorf("fetch goat listing: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("goat returned %d for %s", resp.StatusCode, rawURL)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse goat listing: %w", err)
	}

	scraped := &domain.ScrapedProduct{
		SourceURL: rawURL,
		Source:    s.Name(),
		ScrapedAt: time.Now(),
	}

	scraped.Name = metaContent(doc, "og:title")
	scraped.Description = metaContent(doc, "og:description")
	scraped.ImageURL = metaContent(doc, "og:image")
	scraped.Vendor = strings.TrimSpace(doc.Find("[data-qa='product_brand']").First().Text())

	if amount := metaContent(doc, "og:price:amount"); amount != "" {
		scraped.PriceCents = parsePriceCents(amount)
	}
	if scraped.PriceCents == 0 {
		scraped.PriceCents = parsePriceCents(doc.Find("[data-qa='buy_bar_price']").First().Text())
	}

	if scraped.Name == "" {
		return nil, fmt.Errorf("no product metadata found at %s", rawURL)
	}
	return scraped, nil
}

// metaContent returns the content of a <meta property=...> tag.
func metaContent(doc *goquery.Document, property string) string {
	content, _ := doc.Find(fmt.Sprintf("meta[property='%s']", property)).First().Attr("content")
	return strings.TrimSpace(content)
}

// parsePriceCents turns price text like "$129.99" into cents. Unparseable
// text yields 0, which the directory displays as "price unknown".
func parsePriceCents(text string) int {
	cleaned := strings.TrimSpace(text)
	cleaned = strings.TrimLeft(cleaned, "$€£ ")
	cleaned = strings.ReplaceAll(cleaned, ",", "")
	if cleaned == "" {
		return 0
	}

	value, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || value < 0 {
		return 0
	}
	return int(value * 100)
}

// pathOf returns the path+query of a URL, "/" when unparseable.
func pathOf(rawURL string) string {
	if idx := strings.Index(rawURL, "://"); idx >= 0 {
		rest := rawURL[idx+3:]
		if slash := strings.Index(rest, "/"); slash >= 0 {
			return rest[slash:]
		}
	}
	return "/"
}
