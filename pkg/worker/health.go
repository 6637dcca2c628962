package worker

import (
	"context"
	"net/http"
	"sync"
	"time"

	"tooldex/pkg/db"
	"tooldex/pkg/domain"
	"tooldex/pkg/httpclient"

	"go.uber.org/zap"
)

// urlCheck is one product link queued for a health probe
type urlCheck struct {
	productID string
	url       string
}

// LinkStore is the serving-store surface the health check needs. Satisfied
// by db.ProductStore.
type LinkStore interface {
	ListProducts(ctx context.Context, q db.ProductQuery) ([]domain.Product, error)
	SetURLHealth(ctx context.Context, productID, url string, healthy bool) error
}

// HealthManager runs two levels of workers:
// Level 1: product readers that expand products into their links
// Level 2: probe workers that HEAD each link and record the outcome
type HealthManager struct {
	probeWorkers int
	store        LinkStore
	client       *httpclient.HTTPClient
	logger       *zap.Logger
}

// HealthConfig holds configuration for HealthManager
type HealthConfig struct {
	ProbeWorkers int
	Store        LinkStore
	Logger       *zap.Logger

	// Timeout bounds each probe request. Zero keeps the client default.
	Timeout time.Duration
}

// NewHealthManager creates a new link health manager
func NewHealthManager(cfg HealthConfig) *HealthManager {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	workers := cfg.ProbeWorkers
	if workers <= 0 {
		workers = 5
	}
	client := httpclient.NewClient(httpclient.BrowserClient)
	if cfg.Timeout > 0 {
		client.SetTimeout(cfg.Timeout)
	}
	return &HealthManager{
		probeWorkers: workers,
		store:        cfg.Store,
		client:       client,
		logger:       logger,
	}
}

// CheckAll probes every link of every approved product and records
// healthy/unhealthy per link.
func (m *HealthManager) CheckAll(ctx context.Context) error {
	products, err := m.store.ListProducts(ctx, db.ProductQuery{Status: domain.ModerationApproved})
	if err != nil {
		return err
	}

	checkChan := make(chan urlCheck, m.probeWorkers*2)

	var wg sync.WaitGroup
	m.startProbeWorkers(ctx, &wg, checkChan)

	for _, p := range products {
		for _, u := range p.URLs {
			select {
			case checkChan <- urlCheck{productID: p.ID, url: u.URL}:
			case <-ctx.Done():
				close(checkChan)
				wg.Wait()
				return ctx.Err()
			}
		}
	}
	close(checkChan)

	wg.Wait()
	return nil
}

// startProbeWorkers starts Level 2 workers that:
// - Read link checks from checkChan
// - HEAD each URL
// - Record the health outcome in the serving store
func (m *HealthManager) startProbeWorkers(ctx context.Context, wg *sync.WaitGroup, checkChan <-chan urlCheck) {
	for i := 0; i < m.probeWorkers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()

			for {
				select {
				case check, ok := <-checkChan:
					if !ok {
						return
					}

					healthy := m.probe(ctx, check.url)
					if err := m.store.SetURLHealth(ctx, check.productID, check.url, healthy); err != nil {
						m.logger.Warn("failed to record link health",
							zap.Int("worker", workerID),
							zap.String("url", check.url),
							zap.Error(err))
						continue
					}
					if !healthy {
						m.logger.Info("link unhealthy",
							zap.String("product_id", check.productID),
							zap.String("url", check.url))
					}

				case <-ctx.Done():
					return
				}
			}
		}(i)
	}
}

// probe checks a single URL with a HEAD request. Cancelling ctx aborts an
// in-flight request.
func (m *HealthManager) probe(ctx context.Context, url string) bool {
	resp, err := m.client.HeadContext(ctx, url)
	if err != nil {
		return false
	}
	defer resp.Body.Close()

	return resp.StatusCode < http.StatusBadRequest
}
