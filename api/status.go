package api

import (
	"context"
	"fmt"
	"net/url"
	"spaces-client/models"
)

func (c *Client) MyStatus(ctx context.Context) (*models.UserStatus, error) {
	var st models.UserStatus
	if err := c.get(ctx, "/status/my-status", &st); err != nil {
		return nil, err
	}
	return &st, nil
}

func (c *Client) SetStatus(ctx context.Context, status models.Status) error {
	if !status.Valid() {
		return fmt.Errorf("invalid status %q", status)
	}
	q := url.Values{}
	q.Set("status", string(status))
	return c.post(ctx, withQuery("/status/set-status", q), struct{}{}, nil)
}

func (c *Client) UserStatus(ctx context.Context, userID models.ID) (*models.UserStatus, error) {
	var st models.UserStatus
	if err := c.get(ctx, fmt.Sprintf("/status/user/%d", userID), &st); err != nil {
		return nil, err
	}
	return &st, nil
}

// OnlineUsers lists users currently online, optionally scoped to a space.
func (c *Client) OnlineUsers(ctx context.Context, spaceID models.ID) ([]models.UserStatus, error) {
	q := url.Values{}
	if spaceID != 0 {
		q.Set("space_id", spaceID.String())
	}
	var users []models.UserStatus
	if err := c.get(ctx, withQuery("/status/online", q), &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (c *Client) Heartbeat(ctx context.Context) error {
	return c.post(ctx, "/status/heartbeat", struct{}{}, nil)
}
