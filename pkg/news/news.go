package news

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"time"

	"tooldex/pkg/domain"
	"tooldex/pkg/httpclient"
)

const (
	// maxBodyBytes caps how much of an article page is read before extraction.
	maxBodyBytes = 1 << 20

	// summaryRunes is the length of the stored summary when the feed
	// itself carries no description.
	summaryRunes = 280
)

// Ingestor turns feed entries into stored news items by fetching each
// linked page and extracting its readable content.
type Ingestor struct {
	reader    *FeedReader
	client    *httpclient.HTTPClient
	extractor Extractor
}

// NewIngestor creates an ingestor with the default browser client and extractor
func NewIngestor() *Ingestor {
	return &Ingestor{
		reader:    NewFeedReader(),
		client:    httpclient.NewClient(httpclient.BrowserClient),
		extractor: NewDefaultExtractor(),
	}
}

// NewIngestorWithDeps creates an ingestor with explicit dependencies
func NewIngestorWithDeps(reader *FeedReader, client *httpclient.HTTPClient, extractor Extractor) *Ingestor {
	return &Ingestor{
		reader:    reader,
		client:    client,
		extractor: extractor,
	}
}

// IngestFeed reads the feed at feedURL and returns a news item for every
// entry whose page could be fetched and extracted. Entries that fail are
// skipped rather than failing the whole feed.
func (in *Ingestor) IngestFeed(ctx context.Context, feedURL string) ([]domain.NewsItem, error) {
	entries, err := in.reader.Read(ctx, feedURL)
	if err != nil {
		return nil, fmt.Errorf("failed to read feed %s: %w", feedURL, err)
	}

	source := feedHost(feedURL)

	items := make([]domain.NewsItem, 0, len(entries))
	for _, entry := range entries {
		item, err := in.ingestEntry(ctx, entry, source)
		if err != nil {
			continue
		}
		items = append(items, item)
	}

	if len(items) == 0 {
		return nil, fmt.Errorf("no entries from %s could be ingested", feedURL)
	}

	return items, nil
}

func (in *Ingestor) ingestEntry(ctx context.Context, entry FeedEntry, source string) (domain.NewsItem, error) {
	resp, err := in.client.GetContext(ctx, entry.Link)
	if err != nil {
		return domain.NewsItem{}, fmt.Errorf("failed to fetch %s: %w", entry.Link, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		return domain.NewsItem{}, fmt.Errorf("unexpected status %d for %s", resp.StatusCode, entry.Link)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return domain.NewsItem{}, fmt.Errorf("failed to read %s: %w", entry.Link, err)
	}

	htmlContent := string(body)

	text, err := in.extractor.ExtractText(htmlContent)
	if err != nil {
		return domain.NewsItem{}, fmt.Errorf("failed to extract text from %s: %w", entry.Link, err)
	}

	title := entry.Title
	if title == "" {
		title, err = in.extractor.ExtractTitle(htmlContent)
		if err != nil {
			return domain.NewsItem{}, fmt.Errorf("failed to extract title from %s: %w", entry.Link, err)
		}
	}

	summary := entry.Summary
	if summary == "" {
		summary = Summarize(text, summaryRunes)
	}

	return domain.NewsItem{
		URL:       entry.Link,
		Title:     title,
		Summary:   summary,
		Text:      text,
		Source:    source,
		FetchedAt: time.Now(),
	}, nil
}

func feedHost(feedURL string) string {
	parsed, err := url.Parse(feedURL)
	if err != nil || parsed.Host == "" {
		return feedURL
	}
	return parsed.Host
}
