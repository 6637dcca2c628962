package urls

import (
	"context"
	"os"
	"testing"
)

func TestExtractStoreLinks(t *testing.T) {
	html := `<html><body>
		<a href="https://github.com/nvaccess/nvda">NVDA</a>
		<a href="https://www.thingiverse.com/thing:4089053">Key guard</a>
		<a href="https://example.com/unrelated">Unrelated</a>
		<a href="https://github.com/nvaccess/nvda">NVDA duplicate</a>
		<a href="/relative/link">Relative</a>
	</body></html>`

	found, err := ExtractStoreLinks(html)
	if err != nil {
		t.Fatalf("ExtractStoreLinks failed: %v", err)
	}

	if len(found) != 2 {
		t.Fatalf("Expected 2 store links, got %d", len(found))
	}

	if found[0].Location != "https://github.com/nvaccess/nvda" {
		t.Errorf("Unexpected first link: %s", found[0].Location)
	}
	if found[0].Title != "NVDA" {
		t.Errorf("Unexpected first title: %s", found[0].Title)
	}
}

func TestExtractStoreLinks_NoLinks(t *testing.T) {
	_, err := ExtractStoreLinks("<html><body><p>no links here</p></body></html>")
	if err == nil {
		t.Fatal("Expected error for page without store links")
	}
}

func TestFilterURLs(t *testing.T) {
	ctx := context.Background()

	candidates := []string{
		"https://github.com/owner/tool",
		"https://github.com/",
		"https://example.com/page",
		"https://github.com/owner/known",
	}

	tracked := map[string]bool{
		"https://github.com/owner/known": true,
	}

	filtered, err := FilterURLs(ctx, candidates,
		NewBaseURLFilter(),
		NewHostAllowlistFilter("github.com"),
		NewAlreadyTrackedFilter(tracked),
	)
	if err != nil {
		t.Fatalf("FilterURLs failed: %v", err)
	}

	if len(filtered) != 1 {
		t.Fatalf("Expected 1 URL after filtering, got %d: %v", len(filtered), filtered)
	}
	if filtered[0] != "https://github.com/owner/tool" {
		t.Errorf("Unexpected URL kept: %s", filtered[0])
	}
}

func TestHostAllowlistFilter_Subdomains(t *testing.T) {
	f := NewHostAllowlistFilter("goat.com")
	ctx := context.Background()

	keep, err := f.ShouldKeep(ctx, "https://www.goat.com/sneakers/x")
	if err != nil || !keep {
		t.Errorf("Expected subdomain to be kept, got keep=%v err=%v", keep, err)
	}

	keep, err = f.ShouldKeep(ctx, "https://notgoat.com/sneakers/x")
	if err != nil || keep {
		t.Errorf("Expected other host to be dropped, got keep=%v err=%v", keep, err)
	}
}

func TestFileFetcher(t *testing.T) {
	file, err := os.CreateTemp("", "tracked-urls-*.txt")
	if err != nil {
		t.Fatalf("Failed to create temp file: %v", err)
	}
	defer os.Remove(file.Name())

	content := `https://github.com/owner/tool1
https://github.com/owner/tool2

# comment line
https://www.thingiverse.com/thing:42,
`
	if _, err := file.WriteString(content); err != nil {
		t.Fatalf("Failed to write temp file: %v", err)
	}
	file.Close()

	fetcher := NewFileFetcher()
	found, err := fetcher.Fetch(file.Name())
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}

	if len(found) != 3 {
		t.Fatalf("Expected 3 URLs, got %d", len(found))
	}
	if found[2].Location != "https://www.thingiverse.com/thing:42" {
		t.Errorf("Trailing comma not trimmed: %s", found[2].Location)
	}
}
