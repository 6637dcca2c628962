package news

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

const articleHTML = `<!DOCTYPE html>
<html>
<head><title>Screen Reader Update Released</title></head>
<body>
<article>
<h1>Screen Reader Update Released</h1>
<p>The latest release adds braille display auto-detection and faster document navigation.
Users upgrading from the previous version will notice improved responsiveness in web browsers.</p>
<p>The update is available now from the project download page and through the built-in updater.</p>
</article>
</body>
</html>`

func feedXML(articleURL string) string {
	return fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
<channel>
<title>Assistive Tech News</title>
<item>
<title>Screen Reader Update Released</title>
<link>%s</link>
<pubDate>Mon, 10 Mar 2025 09:00:00 GMT</pubDate>
</item>
<item>
<title>Entry Without Link</title>
</item>
</channel>
</rss>`, articleURL)
}

func TestFeedReader(t *testing.T) {
	article := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, articleHTML)
	}))
	defer article.Close()

	feed := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		fmt.Fprint(w, feedXML(article.URL))
	}))
	defer feed.Close()

	reader := NewFeedReader()
	entries, err := reader.Read(context.Background(), feed.URL)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}

	if len(entries) != 1 {
		t.Fatalf("Expected 1 entry (linkless items skipped), got %d", len(entries))
	}
	if entries[0].Link != article.URL {
		t.Errorf("Unexpected link: %s", entries[0].Link)
	}
	if entries[0].Title != "Screen Reader Update Released" {
		t.Errorf("Unexpected title: %s", entries[0].Title)
	}
	if entries[0].Published.IsZero() {
		t.Error("Expected published time to be parsed")
	}
}

func TestFeedReader_EmptyFeed(t *testing.T) {
	feed := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<?xml version="1.0"?><rss version="2.0"><channel><title>Empty</title></channel></rss>`)
	}))
	defer feed.Close()

	_, err := NewFeedReader().Read(context.Background(), feed.URL)
	if err == nil {
		t.Fatal("Expected error for empty feed")
	}
}

func TestIngestFeed(t *testing.T) {
	article := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, articleHTML)
	}))
	defer article.Close()

	feed := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, feedXML(article.URL))
	}))
	defer feed.Close()

	ingestor := NewIngestor()
	items, err := ingestor.IngestFeed(context.Background(), feed.URL)
	if err != nil {
		t.Fatalf("IngestFeed failed: %v", err)
	}

	if len(items) != 1 {
		t.Fatalf("Expected 1 item, got %d", len(items))
	}

	item := items[0]
	if item.URL != article.URL {
		t.Errorf("Unexpected item URL: %s", item.URL)
	}
	if item.Title != "Screen Reader Update Released" {
		t.Errorf("Unexpected title: %s", item.Title)
	}
	if !strings.Contains(item.Text, "braille display auto-detection") {
		t.Errorf("Extracted text missing article content: %q", item.Text)
	}
	if item.Summary == "" {
		t.Error("Expected a generated summary")
	}
	if item.FetchedAt.IsZero() {
		t.Error("Expected FetchedAt to be set")
	}
}

func TestIngestFeed_SkipsFailedEntries(t *testing.T) {
	article := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, articleHTML)
	}))
	defer article.Close()

	broken := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer broken.Close()

	feed := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `<?xml version="1.0"?>
<rss version="2.0"><channel><title>Mixed</title>
<item><title>Good</title><link>%s</link></item>
<item><title>Bad</title><link>%s</link></item>
</channel></rss>`, article.URL, broken.URL)
	}))
	defer feed.Close()

	items, err := NewIngestor().IngestFeed(context.Background(), feed.URL)
	if err != nil {
		t.Fatalf("IngestFeed failed: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("Expected only the good entry, got %d items", len(items))
	}
}

func TestExtractTitle_Fallbacks(t *testing.T) {
	extractor := NewDefaultExtractor()

	title, err := extractor.ExtractTitle(`<html><head><title>Page Title</title></head><body></body></html>`)
	if err != nil {
		t.Fatalf("ExtractTitle failed: %v", err)
	}
	if title != "Page Title" {
		t.Errorf("Unexpected title: %s", title)
	}

	_, err = extractor.ExtractTitle(`<html><body><p>nothing here</p></body></html>`)
	if err == nil {
		t.Fatal("Expected error when no title is present")
	}
}

func TestSummarize(t *testing.T) {
	if got := Summarize("short text", 100); got != "short text" {
		t.Errorf("Short text should pass through, got %q", got)
	}

	long := strings.Repeat("word ", 100)
	got := Summarize(long, 50)
	if len([]rune(got)) > 51 {
		t.Errorf("Summary too long: %d runes", len([]rune(got)))
	}
	if !strings.HasSuffix(got, "…") {
		t.Errorf("Expected truncation marker, got %q", got)
	}
}
