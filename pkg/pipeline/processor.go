package pipeline

import (
	"context"
	"fmt"

	"tooldex/pkg/db"
	"tooldex/pkg/domain"
	"tooldex/pkg/scrape"
)

// ScrapeProcessor implements ProductProcessor by routing each URL through a
// scraper registry
type ScrapeProcessor struct {
	registry *scrape.Registry
}

// NewScrapeProcessor creates a processor over the given registry
func NewScrapeProcessor(registry *scrape.Registry) *ScrapeProcessor {
	return &ScrapeProcessor{registry: registry}
}

// ProcessProduct scrapes the URL with whichever integration supports it
func (p *ScrapeProcessor) ProcessProduct(ctx context.Context, url string) (*domain.ScrapedProduct, error) {
	if p.registry == nil {
		return nil, fmt.Errorf("scraper registry is not set")
	}

	product, err := p.registry.Scrape(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to scrape %s: %w", url, err)
	}
	return product, nil
}

// LandingSaver implements ProductSaver by writing to the MongoDB landing store
type LandingSaver struct {
	store *db.LandingStore
}

// NewLandingSaver creates a new landing store saver
func NewLandingSaver(store *db.LandingStore) *LandingSaver {
	return &LandingSaver{store: store}
}

// SaveScrapedProduct upserts the product into the landing store
func (s *LandingSaver) SaveScrapedProduct(ctx context.Context, product *domain.ScrapedProduct) error {
	return s.store.SaveScrapedProduct(ctx, product)
}
