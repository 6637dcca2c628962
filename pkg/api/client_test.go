package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tooldex/pkg/auth"
	"tooldex/pkg/catalog"
	"tooldex/pkg/domain"
)

func devClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(server.URL, auth.NewDevSession())
}

func userClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	session := auth.NewDevSession()
	session.User.Role = domain.RoleUser
	return NewClient(server.URL, session)
}

func TestListProducts_QueryAndToken(t *testing.T) {
	c := devClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/products", r.URL.Path)
		assert.Equal(t, "Bearer dev-token", r.Header.Get("Authorization"))
		assert.Equal(t, "screen reader", r.URL.Query().Get("q"))
		assert.Equal(t, "2500", r.URL.Query().Get("max_price_cents"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"products":[{"id":"p1","name":"NVDA","price_cents":0,"status":"approved"}]}`))
	})

	products, err := c.ListProducts(context.Background(), ProductQuery{
		Query:         "screen reader",
		MaxPriceCents: 2500,
	})
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "NVDA", products[0].Name)
	assert.Equal(t, domain.ModerationApproved, products[0].Status)
}

func TestGetProduct_WireMapping(t *testing.T) {
	c := devClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/products/p42", r.URL.Path)
		w.Write([]byte(`{
			"id": "p42",
			"name": "Tactile Keypad",
			"vendor": "AdaptCo",
			"price_cents": 4999,
			"platforms": ["windows", "linux"],
			"status": "approved",
			"urls": [{"product_id":"p42","url":"https://github.com/adaptco/keypad","kind":"github","healthy":true}]
		}`))
	})

	p, err := c.GetProduct(context.Background(), "p42")
	require.NoError(t, err)
	assert.Equal(t, 4999, p.PriceCents)
	assert.Equal(t, []string{"windows", "linux"}, p.Platforms)
	require.Len(t, p.URLs, 1)
	assert.Equal(t, domain.URLKindGitHub, p.URLs[0].Kind)
}

func TestSubmitRating_Validation(t *testing.T) {
	c := devClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected for invalid stars")
	})

	_, err := c.SubmitRating(context.Background(), "p1", 6, "")
	assert.ErrorIs(t, err, catalog.ErrInvalidStars)
}

func TestSubmitRating_PostsAndReturnsSummary(t *testing.T) {
	c := devClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/products/p1/ratings", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		w.Write([]byte(`{"product_id":"p1","count":3,"average":4.3}`))
	})

	summary, err := c.SubmitRating(context.Background(), "p1", 5, "great")
	require.NoError(t, err)
	assert.Equal(t, 3, summary.Count)
	assert.InDelta(t, 4.3, summary.Average, 0.001)
}

func TestAPIError_Decoding(t *testing.T) {
	c := devClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"message":"product not found"}`))
	})

	_, err := c.GetProduct(context.Background(), "missing")
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Equal(t, "product not found", apiErr.Message)
}

func TestModeratorGuards(t *testing.T) {
	c := userClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("guarded operation must not reach the backend")
	})

	_, err := c.CreateBlogPost(context.Background(), "t", "b", false)
	assert.ErrorIs(t, err, ErrForbidden)

	err = c.ApproveRequest(context.Background(), "r1")
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestCreateRequest_AllowedForUsers(t *testing.T) {
	c := userClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		w.Write([]byte(`{"id":"r9","name":"Braille Labeler","url":"https://example.com","status":"pending"}`))
	})

	req, err := c.CreateRequest(context.Background(), "Braille Labeler", "https://example.com", "")
	require.NoError(t, err)
	assert.Equal(t, domain.ModerationPending, req.Status)
}
