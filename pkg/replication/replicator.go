package replication

import (
	"context"
	"fmt"
	"sync"

	"tooldex/pkg/db"
	"tooldex/pkg/domain"

	"go.uber.org/zap"
)

// Config wires the replication dependencies.
type Config struct {
	Landing  *db.LandingStore
	Postgres db.DBProvider
	Logger   *zap.Logger
}

// Replicator copies landed scrape results from MongoDB into the serving
// Postgres database as pending directory entries.
//
// This is a one-shot, "copy everything new" flow.
type Replicator struct {
	landing *db.LandingStore
	store   *db.ProductStore
	logger  *zap.Logger
}

func NewReplicator(cfg Config) (*Replicator, error) {
	if cfg.Landing == nil {
		return nil, fmt.Errorf("landing store is required")
	}
	if cfg.Postgres == nil {
		return nil, fmt.Errorf("postgres client is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Replicator{
		landing: cfg.Landing,
		store:   db.NewProductStore(cfg.Postgres),
		logger:  logger,
	}, nil
}

// Replicate reads all scraped products from the landing store and imports
// the ones whose source URL is not yet in Postgres.
//
// Products are processed in parallel batches to keep memory and connection
// usage bounded.
func (r *Replicator) Replicate(ctx context.Context) error {
	if err := r.store.EnsureSchema(ctx); err != nil {
		return err
	}

	scraped, err := r.landing.AllScrapedProducts(ctx)
	if err != nil {
		return fmt.Errorf("read landing store: %w", err)
	}

	r.logger.Info("loaded scraped products from landing store",
		zap.Int("count", len(scraped)))

	processed, imported, err := r.processBatches(ctx, scraped)
	if err != nil {
		return err
	}

	r.logger.Info("replication complete",
		zap.Int("processed", processed),
		zap.Int("imported", imported))
	return nil
}

// processBatches imports all scraped products in parallel batches and
// returns total processed and imported counts.
func (r *Replicator) processBatches(ctx context.Context, scraped []domain.ScrapedProduct) (int, int, error) {
	const batchSize = 100
	const numWorkers = 5

	type batchJob struct {
		batch []domain.ScrapedProduct
		start int
		end   int
	}

	type batchResult struct {
		processed int
		imported  int
		err       error
	}

	numBatches := (len(scraped) + batchSize - 1) / batchSize
	jobs := make(chan batchJob, numBatches)
	results := make(chan batchResult, numBatches)

	for start := 0; start < len(scraped); start += batchSize {
		end := start + batchSize
		if end > len(scraped) {
			end = len(scraped)
		}
		jobs <- batchJob{batch: scraped[start:end], start: start, end: end}
	}
	close(jobs)

	var wg sync.WaitGroup
	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobs {
				imported, err := r.processBatch(ctx, job.batch, job.start, job.end)
				results <- batchResult{
					processed: len(job.batch),
					imported:  imported,
					err:       err,
				}
			}
		}()
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	totalProcessed := 0
	totalImported := 0

	for result := range results {
		if result.err != nil {
			return totalProcessed, totalImported, result.err
		}
		totalProcessed += result.processed
		totalImported += result.imported
	}

	return totalProcessed, totalImported, nil
}

// processBatch checks which source URLs already exist, filters them out,
// and imports the remainder.
func (r *Replicator) processBatch(ctx context.Context, batch []domain.ScrapedProduct, start, end int) (int, error) {
	urls := make([]string, 0, len(batch))
	for _, p := range batch {
		if p.SourceURL != "" {
			urls = append(urls, p.SourceURL)
		}
	}

	existing, err := r.store.ExistingSourceURLs(ctx, urls)
	if err != nil {
		return 0, fmt.Errorf("check existing source urls for batch [%d:%d]: %w", start, end, err)
	}

	toImport := make([]domain.ScrapedProduct, 0, len(batch))
	for _, p := range batch {
		if p.SourceURL == "" || existing[p.SourceURL] {
			continue
		}
		toImport = append(toImport, p)
	}

	if len(toImport) == 0 {
		return 0, nil
	}

	if err := r.store.ImportScraped(ctx, toImport); err != nil {
		return 0, fmt.Errorf("import batch [%d:%d]: %w", start, end, err)
	}

	r.logger.Debug("imported batch",
		zap.Int("start", start),
		zap.Int("end", end),
		zap.Int("imported", len(toImport)))

	return len(toImport), nil
}
