package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"tooldex/pkg/catalog"
	"tooldex/pkg/domain"
)

// ProductQuery narrows a product listing. Zero values mean "no constraint".
type ProductQuery struct {
	Query         string
	Category      string
	Platform      string
	MaxPriceCents int
	Status        domain.ModerationStatus
	Page          int
	PerPage       int
}

// values encodes the query as backend query parameters.
func (q ProductQuery) values() url.Values {
	v := url.Values{}
	if q.Query != "" {
		v.Set("q", q.Query)
	}
	if q.Category != "" {
		v.Set("category", q.Category)
	}
	if q.Platform != "" {
		v.Set("platform", q.Platform)
	}
	if q.MaxPriceCents > 0 {
		v.Set("max_price_cents", strconv.Itoa(q.MaxPriceCents))
	}
	if q.Status != "" {
		v.Set("status", string(q.Status))
	}
	if q.Page > 0 {
		v.Set("page", strconv.Itoa(q.Page))
	}
	if q.PerPage > 0 {
		v.Set("per_page", strconv.Itoa(q.PerPage))
	}
	return v
}

// ListProducts fetches products matching the query.
func (c *Client) ListProducts(ctx context.Context, query ProductQuery) ([]domain.Product, error) {
	var out struct {
		Products []domain.Product `json:"products"`
	}
	if err := c.do(ctx, http.MethodGet, "/products", query.values(), nil, &out); err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return out.Products, nil
}

// GetProduct fetches a single product by id.
func (c *Client) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	var out domain.Product
	if err := c.do(ctx, http.MethodGet, "/products/"+url.PathEscape(id), nil, nil, &out); err != nil {
		return nil, fmt.Errorf("get product %s: %w", id, err)
	}
	return &out, nil
}

// SubmitRating records the current user's rating of a product and returns
// the updated summary.
func (c *Client) SubmitRating(ctx context.Context, productID string, stars int, comment string) (*domain.RatingSummary, error) {
	rating := domain.Rating{
		ProductID: productID,
		UserID:    c.session.Identity().UserID,
		Stars:     stars,
		Comment:   comment,
	}
	if err := catalog.ValidateRating(&rating); err != nil {
		return nil, err
	}

	body := struct {
		Stars   int    `json:"stars"`
		Comment string `json:"comment,omitempty"`
	}{Stars: stars, Comment: comment}

	var out domain.RatingSummary
	path := "/products/" + url.PathEscape(productID) + "/ratings"
	if err := c.do(ctx, http.MethodPost, path, nil, body, &out); err != nil {
		return nil, fmt.Errorf("submit rating: %w", err)
	}
	return &out, nil
}

// GetRatingSummary fetches the aggregate rating for a product.
func (c *Client) GetRatingSummary(ctx context.Context, productID string) (*domain.RatingSummary, error) {
	var out domain.RatingSummary
	path := "/products/" + url.PathEscape(productID) + "/ratings"
	if err := c.do(ctx, http.MethodGet, path, nil, nil, &out); err != nil {
		return nil, fmt.Errorf("get rating summary: %w", err)
	}
	return &out, nil
}
