package worker

import (
	"context"
	"fmt"
	"sync"

	"tooldex/pkg/scrape"

	"go.uber.org/zap"
)

// Manager manages workers and distributes source URLs to them
type Manager struct {
	workerCount int
	registry    *scrape.Registry
	store       ProductSaver
	logger      *zap.Logger
}

// NewManager creates a new manager
func NewManager(workerCount int, registry *scrape.Registry, store ProductSaver, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		workerCount: workerCount,
		registry:    registry,
		store:       store,
		logger:      logger,
	}
}

// ProcessURLs distributes URLs to workers and processes them concurrently
func (m *Manager) ProcessURLs(ctx context.Context, urls []string) error {
	// Create job channel
	jobChan := make(chan string, len(urls))

	for _, url := range urls {
		jobChan <- url
	}
	close(jobChan)

	var wg sync.WaitGroup

	// Results channel to collect success/error from workers (no contention)
	type result struct {
		success  bool
		url      string
		workerID int
		err      error
	}
	resultsChan := make(chan result, len(urls))

	for i := 0; i < m.workerCount; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()

			w := NewWorker(m.registry, m.store)

			for url := range jobChan {
				err := w.ProcessURL(ctx, url)
				resultsChan <- result{
					success:  err == nil,
					url:      url,
					workerID: workerID,
					err:      err,
				}
			}
		}(i)
	}

	// Close results channel when all workers finish
	go func() {
		wg.Wait()
		close(resultsChan)
	}()

	// Aggregate results (single goroutine reads from channel)
	var successCount, errorCount uint64

	for res := range resultsChan {
		if res.success {
			successCount++
			if successCount%100 == 0 {
				m.logger.Info("re-scrape progress",
					zap.Uint64("successful", successCount),
					zap.Uint64("errors", errorCount))
			}
		} else {
			errorCount++
			m.logger.Warn("failed to process URL",
				zap.Int("worker", res.workerID),
				zap.String("url", res.url),
				zap.Error(res.err))
		}
	}

	m.logger.Info("re-scrape completed",
		zap.Uint64("successful", successCount),
		zap.Uint64("errors", errorCount),
		zap.Int("total", len(urls)))

	if errorCount > 0 && successCount == 0 {
		return fmt.Errorf("all %d URLs failed to process", errorCount)
	}

	return nil
}
