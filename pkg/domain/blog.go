package domain

import "time"

// BlogPost is an article in the directory's blog/news subsystem. Body is
// markdown; rendering and sanitization happen at display time.
type BlogPost struct {
	ID          string    `json:"id" db:"id"`
	AuthorID    string    `json:"author_id" db:"author_id"`
	Title       string    `json:"title" db:"title"`
	Slug        string    `json:"slug" db:"slug"`
	Body        string    `json:"body" db:"body"`
	Published   bool      `json:"published" db:"published"`
	PublishedAt time.Time `json:"published_at,omitempty" db:"published_at"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// NewsItem is an announcement ingested from an external feed, held as a
// draft until a moderator promotes it to a blog post.
type NewsItem struct {
	URL       string    `json:"url" bson:"url"`
	Title     string    `json:"title" bson:"title"`
	Summary   string    `json:"summary" bson:"summary"`
	Text      string    `json:"text" bson:"text"`
	Source    string    `json:"source" bson:"source"`
	FetchedAt time.Time `json:"fetched_at" bson:"fetched_at"`
}
