package domain

import "time"

// ScrapedProduct is the raw result of scraping a product source URL,
// landed in the document store before replication into the serving store.
type ScrapedProduct struct {
	SourceURL   string    `json:"source_url" bson:"source_url"`
	Source      string    `json:"source" bson:"source"`
	Name        string    `json:"name" bson:"name"`
	Description string    `json:"description" bson:"description"`
	Vendor      string    `json:"vendor" bson:"vendor"`
	Homepage    string    `json:"homepage,omitempty" bson:"homepage,omitempty"`
	License     string    `json:"license,omitempty" bson:"license,omitempty"`
	PriceCents  int       `json:"price_cents" bson:"price_cents"`
	Stars       int       `json:"stars,omitempty" bson:"stars,omitempty"`
	ImageURL    string    `json:"image_url,omitempty" bson:"image_url,omitempty"`
	ScrapedAt   time.Time `json:"scraped_at" bson:"scraped_at"`
}
