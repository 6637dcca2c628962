package domain

import "time"

// ModerationStatus tracks where a submitted product sits in review.
type ModerationStatus string

const (
	ModerationPending  ModerationStatus = "pending"
	ModerationApproved ModerationStatus = "approved"
	ModerationRejected ModerationStatus = "rejected"
)

// URLKind classifies a product link by the platform it points at.
type URLKind string

const (
	URLKindGitHub      URLKind = "github"
	URLKindRavelry     URLKind = "ravelry"
	URLKindThingiverse URLKind = "thingiverse"
	URLKindGoat        URLKind = "goat"
	URLKindWebsite     URLKind = "website"
)

// Product represents an accessibility tool listed in the directory.
type Product struct {
	ID          string           `json:"id" db:"id"`
	Name        string           `json:"name" db:"name"`
	Description string           `json:"description" db:"description"`
	Vendor      string           `json:"vendor" db:"vendor"`
	Category    string           `json:"category" db:"category"`
	PriceCents  int              `json:"price_cents" db:"price_cents"`
	Platforms   []string         `json:"platforms" db:"platforms"`
	Status      ModerationStatus `json:"status" db:"status"`
	URLs        []ProductURL     `json:"urls"`
	CreatedAt   time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at" db:"updated_at"`
}

// ProductURL is a store or source link attached to a product. Health is
// refreshed by the scrape pipeline.
type ProductURL struct {
	ProductID   string    `json:"product_id" db:"product_id"`
	URL         string    `json:"url" db:"url"`
	Kind        URLKind   `json:"kind" db:"kind"`
	Healthy     bool      `json:"healthy" db:"healthy"`
	LastChecked time.Time `json:"last_checked" db:"last_checked"`
}

// Rating is a single user rating of a product, 1 through 5.
type Rating struct {
	ProductID string    `json:"product_id" db:"product_id"`
	UserID    string    `json:"user_id" db:"user_id"`
	Stars     int       `json:"stars" db:"stars"`
	Comment   string    `json:"comment,omitempty" db:"comment"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// RatingSummary aggregates the ratings shown on a product card.
type RatingSummary struct {
	ProductID string  `json:"product_id"`
	Count     int     `json:"count"`
	Average   float64 `json:"average"`
}

// UserRequest is a community suggestion to add a product to the directory.
type UserRequest struct {
	ID        string           `json:"id" db:"id"`
	UserID    string           `json:"user_id" db:"user_id"`
	Name      string           `json:"name" db:"name"`
	URL       string           `json:"url" db:"url"`
	Notes     string           `json:"notes,omitempty" db:"notes"`
	Status    ModerationStatus `json:"status" db:"status"`
	CreatedAt time.Time        `json:"created_at" db:"created_at"`
}
