package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"tooldex/pkg/domain"
)

// ListRequests fetches community product requests, optionally narrowed to a
// moderation status.
func (c *Client) ListRequests(ctx context.Context, status domain.ModerationStatus) ([]domain.UserRequest, error) {
	v := url.Values{}
	if status != "" {
		v.Set("status", string(status))
	}

	var out struct {
		Requests []domain.UserRequest `json:"requests"`
	}
	if err := c.do(ctx, http.MethodGet, "/requests", v, nil, &out); err != nil {
		return nil, fmt.Errorf("list requests: %w", err)
	}
	return out.Requests, nil
}

// CreateRequest submits a product suggestion from the current user.
func (c *Client) CreateRequest(ctx context.Context, name, rawURL, notes string) (*domain.UserRequest, error) {
	req := struct {
		Name  string `json:"name"`
		URL   string `json:"url"`
		Notes string `json:"notes,omitempty"`
	}{Name: name, URL: rawURL, Notes: notes}

	var out domain.UserRequest
	if err := c.do(ctx, http.MethodPost, "/requests", nil, req, &out); err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	return &out, nil
}

// ApproveRequest marks a request approved. Moderator or admin only.
func (c *Client) ApproveRequest(ctx context.Context, id string) error {
	return c.resolveRequest(ctx, id, domain.ModerationApproved)
}

// RejectRequest marks a request rejected. Moderator or admin only.
func (c *Client) RejectRequest(ctx context.Context, id string) error {
	return c.resolveRequest(ctx, id, domain.ModerationRejected)
}

func (c *Client) resolveRequest(ctx context.Context, id string, status domain.ModerationStatus) error {
	if err := c.requireModerator(); err != nil {
		return err
	}

	body := struct {
		Status domain.ModerationStatus `json:"status"`
	}{Status: status}

	path := "/requests/" + url.PathEscape(id)
	if err := c.do(ctx, http.MethodPatch, path, nil, body, nil); err != nil {
		return fmt.Errorf("resolve request %s: %w", id, err)
	}
	return nil
}
