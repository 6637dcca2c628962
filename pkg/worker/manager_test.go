package worker

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"tooldex/pkg/domain"
	"tooldex/pkg/scrape"
)

// fakeScraper answers for a fixed host and fails on demand
type fakeScraper struct {
	host string
	fail bool
}

func (s *fakeScraper) Name() string { return s.host }

func (s *fakeScraper) Supports(rawURL string) bool {
	return strings.Contains(rawURL, s.host)
}

func (s *fakeScraper) Scrape(ctx context.Context, rawURL string) (*domain.ScrapedProduct, error) {
	if s.fail {
		return nil, fmt.Errorf("scrape failed for %s", rawURL)
	}
	return &domain.ScrapedProduct{
		SourceURL: rawURL,
		Source:    s.host,
		Name:      "Fake Product",
		ScrapedAt: time.Now(),
	}, nil
}

// memorySaver collects saved products in memory
type memorySaver struct {
	mu    sync.Mutex
	saved []*domain.ScrapedProduct
}

func (m *memorySaver) SaveScrapedProduct(ctx context.Context, product *domain.ScrapedProduct) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saved = append(m.saved, product)
	return nil
}

func (m *memorySaver) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.saved)
}

func TestManager_ProcessURLs(t *testing.T) {
	registry := scrape.NewRegistry()
	registry.Register(&fakeScraper{host: "github.com"})

	saver := &memorySaver{}
	manager := NewManager(3, registry, saver, nil)

	urls := []string{
		"https://github.com/owner/tool1",
		"https://github.com/owner/tool2",
		"https://github.com/owner/tool3",
	}

	if err := manager.ProcessURLs(context.Background(), urls); err != nil {
		t.Fatalf("ProcessURLs failed: %v", err)
	}

	if saver.count() != 3 {
		t.Errorf("Expected 3 saved products, got %d", saver.count())
	}
}

func TestManager_ProcessURLs_PartialFailure(t *testing.T) {
	registry := scrape.NewRegistry()
	registry.Register(&fakeScraper{host: "github.com"})
	// thingiverse URLs have no scraper, so they fail routing

	saver := &memorySaver{}
	manager := NewManager(2, registry, saver, nil)

	urls := []string{
		"https://github.com/owner/tool1",
		"https://www.thingiverse.com/thing:42",
	}

	if err := manager.ProcessURLs(context.Background(), urls); err != nil {
		t.Fatalf("Expected partial failure to succeed overall, got: %v", err)
	}

	if saver.count() != 1 {
		t.Errorf("Expected 1 saved product, got %d", saver.count())
	}
}

func TestManager_ProcessURLs_AllFail(t *testing.T) {
	registry := scrape.NewRegistry()
	registry.Register(&fakeScraper{host: "github.com", fail: true})

	saver := &memorySaver{}
	manager := NewManager(2, registry, saver, nil)

	err := manager.ProcessURLs(context.Background(), []string{
		"https://github.com/owner/tool1",
		"https://github.com/owner/tool2",
	})
	if err == nil {
		t.Fatal("Expected error when every URL fails")
	}
	if saver.count() != 0 {
		t.Errorf("Expected no saved products, got %d", saver.count())
	}
}

func TestWorker_ProcessURL(t *testing.T) {
	registry := scrape.NewRegistry()
	registry.Register(&fakeScraper{host: "github.com"})

	saver := &memorySaver{}
	w := NewWorker(registry, saver)

	if err := w.ProcessURL(context.Background(), "https://github.com/owner/tool"); err != nil {
		t.Fatalf("ProcessURL failed: %v", err)
	}
	if saver.count() != 1 {
		t.Fatalf("Expected 1 saved product, got %d", saver.count())
	}
	if saver.saved[0].SourceURL != "https://github.com/owner/tool" {
		t.Errorf("Unexpected source URL: %s", saver.saved[0].SourceURL)
	}
}
