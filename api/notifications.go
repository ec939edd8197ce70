package api

import (
	"context"
	"fmt"
	"net/url"
	"spaces-client/models"
	"strconv"
)

func (c *Client) Notifications(ctx context.Context, unreadOnly bool, limit int) ([]models.Notification, error) {
	q := url.Values{}
	q.Set("unread_only", strconv.FormatBool(unreadOnly))
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	var list []models.Notification
	if err := c.get(ctx, withQuery("/notifications/", q), &list); err != nil {
		return nil, err
	}
	return list, nil
}

func (c *Client) UnreadCount(ctx context.Context) (int, error) {
	var resp models.UnreadCount
	if err := c.get(ctx, "/notifications/unread-count", &resp); err != nil {
		return 0, err
	}
	return resp.UnreadCount, nil
}

func (c *Client) MarkNotificationRead(ctx context.Context, id models.ID) error {
	return c.post(ctx, fmt.Sprintf("/notifications/%d/read", id), struct{}{}, nil)
}

func (c *Client) MarkAllNotificationsRead(ctx context.Context) error {
	return c.post(ctx, "/notifications/mark-all-read", struct{}{}, nil)
}
