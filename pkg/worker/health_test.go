package worker

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"tooldex/pkg/db"
	"tooldex/pkg/domain"
)

// linkMemoryStore serves a fixed product list and records health outcomes
type linkMemoryStore struct {
	products []domain.Product

	healthMu sync.Mutex
	health   map[string]bool
}

func newLinkMemoryStore(products []domain.Product) *linkMemoryStore {
	return &linkMemoryStore{
		products: products,
		health:   make(map[string]bool),
	}
}

func (s *linkMemoryStore) ListProducts(ctx context.Context, q db.ProductQuery) ([]domain.Product, error) {
	return s.products, nil
}

func (s *linkMemoryStore) SetURLHealth(ctx context.Context, productID, url string, healthy bool) error {
	s.healthMu.Lock()
	defer s.healthMu.Unlock()
	s.health[url] = healthy
	return nil
}

func (s *linkMemoryStore) healthOf(url string) (bool, bool) {
	s.healthMu.Lock()
	defer s.healthMu.Unlock()
	h, ok := s.health[url]
	return h, ok
}

func TestHealthManager_RecordsOutcomes(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/gone" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	store := newLinkMemoryStore([]domain.Product{
		{
			ID: "p1",
			URLs: []domain.ProductURL{
				{ProductID: "p1", URL: server.URL + "/ok"},
				{ProductID: "p1", URL: server.URL + "/gone"},
			},
		},
	})

	manager := NewHealthManager(HealthConfig{ProbeWorkers: 2, Store: store})
	if err := manager.CheckAll(context.Background()); err != nil {
		t.Fatalf("CheckAll failed: %v", err)
	}

	if healthy, ok := store.healthOf(server.URL + "/ok"); !ok || !healthy {
		t.Errorf("expected %s/ok recorded healthy, got healthy=%v recorded=%v", server.URL, healthy, ok)
	}
	if healthy, ok := store.healthOf(server.URL + "/gone"); !ok || healthy {
		t.Errorf("expected %s/gone recorded unhealthy, got healthy=%v recorded=%v", server.URL, healthy, ok)
	}
}

func TestHealthManager_CancelAbortsInFlightProbe(t *testing.T) {
	// The handler holds the request open until the client gives up, so
	// CheckAll can only return promptly if cancellation reaches the probe.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	store := newLinkMemoryStore([]domain.Product{
		{ID: "p1", URLs: []domain.ProductURL{{ProductID: "p1", URL: server.URL}}},
	})

	manager := NewHealthManager(HealthConfig{ProbeWorkers: 1, Store: store})

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	done := make(chan struct{})
	go func() {
		_ = manager.CheckAll(ctx)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("CheckAll did not return after cancellation")
	}
}

func TestHealthManager_ProbeTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(2 * time.Second):
		case <-r.Context().Done():
		}
	}))
	defer server.Close()

	store := newLinkMemoryStore([]domain.Product{
		{ID: "p1", URLs: []domain.ProductURL{{ProductID: "p1", URL: server.URL}}},
	})

	manager := NewHealthManager(HealthConfig{
		ProbeWorkers: 1,
		Store:        store,
		Timeout:      100 * time.Millisecond,
	})

	if err := manager.CheckAll(context.Background()); err != nil {
		t.Fatalf("CheckAll failed: %v", err)
	}
	if healthy, ok := store.healthOf(server.URL); !ok || healthy {
		t.Errorf("expected timed-out link recorded unhealthy, got healthy=%v recorded=%v", healthy, ok)
	}
}
