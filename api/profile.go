package api

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"spaces-client/models"
)

func (c *Client) MyProfile(ctx context.Context) (*models.User, error) {
	var u models.User
	if err := c.get(ctx, "/profile/me", &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *Client) UpdateProfile(ctx context.Context, upd models.ProfileUpdate) (*models.User, error) {
	var u models.User
	if err := c.patch(ctx, "/profile/me", upd, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *Client) Profile(ctx context.Context, userID models.ID) (*models.User, error) {
	var u models.User
	if err := c.get(ctx, fmt.Sprintf("/profile/%d", userID), &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *Client) ProfileByNickname(ctx context.Context, nickname string) (*models.User, error) {
	var u models.User
	if err := c.get(ctx, "/profile/nickname/"+url.PathEscape(nickname), &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *Client) UploadAvatar(ctx context.Context, filename string, r io.Reader) (*models.User, error) {
	var u models.User
	if err := c.upload(ctx, "/profile/me/avatar", "file", filename, r, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *Client) UploadBanner(ctx context.Context, filename string, r io.Reader) (*models.User, error) {
	var u models.User
	if err := c.upload(ctx, "/profile/me/banner", "file", filename, r, &u); err != nil {
		return nil, err
	}
	return &u, nil
}
