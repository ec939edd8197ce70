package api

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"spaces-client/models"
	"strconv"
)

func (c *Client) Messages(ctx context.Context, chatID models.ID, limit, offset int) ([]models.Message, error) {
	q := url.Values{}
	q.Set("limit", strconv.Itoa(limit))
	q.Set("offset", strconv.Itoa(offset))

	var msgs []models.Message
	if err := c.get(ctx, withQuery(fmt.Sprintf("/messages/%d", chatID), q), &msgs); err != nil {
		return nil, err
	}
	return msgs, nil
}

func (c *Client) SendMessage(ctx context.Context, chatID models.ID, req models.SendMessageRequest) (*models.Message, error) {
	if req.Type == "" {
		req.Type = models.MessageTypeText
	}
	var msg models.Message
	if err := c.post(ctx, fmt.Sprintf("/messages/%d", chatID), req, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

func (c *Client) SearchMessages(ctx context.Context, chatID models.ID, query string, limit, offset int) ([]models.Message, error) {
	q := url.Values{}
	q.Set("q", query)
	q.Set("limit", strconv.Itoa(limit))
	q.Set("offset", strconv.Itoa(offset))

	var msgs []models.Message
	if err := c.get(ctx, withQuery(fmt.Sprintf("/messages/%d/search", chatID), q), &msgs); err != nil {
		return nil, err
	}
	return msgs, nil
}

func (c *Client) UpdateMessage(ctx context.Context, chatID, messageID models.ID, content string) (*models.Message, error) {
	var msg models.Message
	err := c.patch(ctx, fmt.Sprintf("/messages/%d/%d", chatID, messageID), models.UpdateMessageRequest{Content: content}, &msg)
	if err != nil {
		return nil, err
	}
	return &msg, nil
}

func (c *Client) DeleteMessage(ctx context.Context, chatID, messageID models.ID) error {
	return c.delete(ctx, fmt.Sprintf("/messages/%d/%d", chatID, messageID), nil)
}

// ToggleReaction adds the reaction, or removes it when the viewer already
// reacted with it. The response is the authoritative aggregate.
func (c *Client) ToggleReaction(ctx context.Context, chatID, messageID models.ID, reaction string) (*models.ReactionsResponse, error) {
	var resp models.ReactionsResponse
	err := c.post(ctx, fmt.Sprintf("/messages/%d/%d/reactions", chatID, messageID), models.ReactionRequest{Reaction: reaction}, &resp)
	if err != nil {
		return nil, err
	}
	if resp.MessageID == 0 {
		resp.MessageID = messageID
	}
	return &resp, nil
}

// UploadAttachment posts a file into the chat and returns the resulting message.
func (c *Client) UploadAttachment(ctx context.Context, chatID models.ID, filename string, r io.Reader) (*models.Message, error) {
	var msg models.Message
	if err := c.upload(ctx, fmt.Sprintf("/messages/%d/upload", chatID), "file", filename, r, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
