package news

import (
	"context"
	"fmt"
	"time"

	"github.com/mmcdole/gofeed"
)

// FeedEntry is a single item pulled from an RSS/Atom feed.
type FeedEntry struct {
	Link      string
	Title     string
	Summary   string
	Published time.Time
}

// FeedReader handles RSS/Atom feed parsing operations
type FeedReader struct {
	feedParser *gofeed.Parser
}

// NewFeedReader creates a new feed reader
func NewFeedReader() *FeedReader {
	return &FeedReader{
		feedParser: gofeed.NewParser(),
	}
}

// Read fetches and parses an RSS/Atom feed from the given URL
func (r *FeedReader) Read(ctx context.Context, feedURL string) ([]FeedEntry, error) {
	feed, err := r.feedParser.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed: %w", err)
	}

	if feed == nil || len(feed.Items) == 0 {
		return nil, fmt.Errorf("feed contains no items")
	}

	entries := make([]FeedEntry, 0, len(feed.Items))
	for _, item := range feed.Items {
		if item.Link == "" {
			continue
		}
		entry := FeedEntry{
			Link:    item.Link,
			Title:   item.Title,
			Summary: item.Description,
		}
		if item.PublishedParsed != nil {
			entry.Published = *item.PublishedParsed
		}
		entries = append(entries, entry)
	}

	if len(entries) == 0 {
		return nil, fmt.Errorf("no valid links found in feed items")
	}

	return entries, nil
}
