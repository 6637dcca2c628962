package worker

import (
	"context"
	"fmt"

	"tooldex/pkg/domain"
	"tooldex/pkg/scrape"
)

// ProductSaver persists a scraped product. Satisfied by db.LandingStore.
type ProductSaver interface {
	SaveScrapedProduct(ctx context.Context, product *domain.ScrapedProduct) error
}

// Worker re-scrapes a single product source URL and lands the result
type Worker struct {
	registry *scrape.Registry
	store    ProductSaver
}

// NewWorker creates a new worker
func NewWorker(registry *scrape.Registry, store ProductSaver) *Worker {
	return &Worker{
		registry: registry,
		store:    store,
	}
}

// ProcessURL processes a single URL: scrapes it and saves to the landing store
func (w *Worker) ProcessURL(ctx context.Context, url string) error {
	product, err := w.registry.Scrape(ctx, url)
	if err != nil {
		return fmt.Errorf("failed to scrape: %w", err)
	}

	if err := w.store.SaveScrapedProduct(ctx, product); err != nil {
		return fmt.Errorf("failed to save product: %w", err)
	}

	return nil
}
