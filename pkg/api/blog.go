package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"tooldex/pkg/domain"
)

// ListBlogPosts fetches blog posts. With publishedOnly false the backend
// includes drafts, which it only does for moderators.
func (c *Client) ListBlogPosts(ctx context.Context, publishedOnly bool) ([]domain.BlogPost, error) {
	v := url.Values{}
	if publishedOnly {
		v.Set("published", "true")
	}

	var out struct {
		Posts []domain.BlogPost `json:"posts"`
	}
	if err := c.do(ctx, http.MethodGet, "/blog/posts", v, nil, &out); err != nil {
		return nil, fmt.Errorf("list blog posts: %w", err)
	}
	return out.Posts, nil
}

// GetBlogPost fetches one post by slug.
func (c *Client) GetBlogPost(ctx context.Context, slug string) (*domain.BlogPost, error) {
	var out domain.BlogPost
	if err := c.do(ctx, http.MethodGet, "/blog/posts/"+url.PathEscape(slug), nil, nil, &out); err != nil {
		return nil, fmt.Errorf("get blog post %s: %w", slug, err)
	}
	return &out, nil
}

// CreateBlogPost creates a post. Moderator or admin only.
func (c *Client) CreateBlogPost(ctx context.Context, title, body string, publish bool) (*domain.BlogPost, error) {
	if err := c.requireModerator(); err != nil {
		return nil, err
	}

	req := struct {
		Title     string `json:"title"`
		Body      string `json:"body"`
		Published bool   `json:"published"`
	}{Title: title, Body: body, Published: publish}

	var out domain.BlogPost
	if err := c.do(ctx, http.MethodPost, "/blog/posts", nil, req, &out); err != nil {
		return nil, fmt.Errorf("create blog post: %w", err)
	}
	return &out, nil
}
