package api

import (
	"context"
	"fmt"
	"spaces-client/models"
)

func (c *Client) Spaces(ctx context.Context) ([]models.Space, error) {
	var spaces []models.Space
	if err := c.get(ctx, "/spaces/", &spaces); err != nil {
		return nil, err
	}
	return spaces, nil
}

func (c *Client) CreateSpace(ctx context.Context, req models.CreateSpaceRequest) (*models.Space, error) {
	var space models.Space
	if err := c.post(ctx, "/spaces/", req, &space); err != nil {
		return nil, err
	}
	return &space, nil
}

func (c *Client) DeleteSpace(ctx context.Context, spaceID models.ID) error {
	return c.delete(ctx, fmt.Sprintf("/spaces/%d", spaceID), nil)
}

// JoinSpace adds the viewer to the space. Already-member answers surface as
// ServerErrors the caller may ignore.
func (c *Client) JoinSpace(ctx context.Context, spaceID models.ID) error {
	return c.post(ctx, fmt.Sprintf("/spaces/%d/join", spaceID), struct{}{}, nil)
}

func (c *Client) LeaveSpace(ctx context.Context, spaceID models.ID) error {
	return c.post(ctx, fmt.Sprintf("/spaces/%d/leave", spaceID), struct{}{}, nil)
}

func (c *Client) Participants(ctx context.Context, spaceID models.ID) ([]models.Participant, error) {
	var members []models.Participant
	if err := c.get(ctx, fmt.Sprintf("/spaces/%d/participants", spaceID), &members); err != nil {
		return nil, err
	}
	return members, nil
}

func (c *Client) Kick(ctx context.Context, spaceID, userID models.ID) error {
	return c.delete(ctx, fmt.Sprintf("/spaces/%d/kick/%d", spaceID, userID), nil)
}

func (c *Client) Ban(ctx context.Context, spaceID, userID models.ID, req models.BanRequest) error {
	return c.post(ctx, fmt.Sprintf("/spaces/%d/ban/%d", spaceID, userID), req, nil)
}

func (c *Client) Unban(ctx context.Context, spaceID, userID models.ID) error {
	return c.delete(ctx, fmt.Sprintf("/spaces/%d/ban/%d", spaceID, userID), nil)
}

func (c *Client) Bans(ctx context.Context, spaceID models.ID) ([]models.Ban, error) {
	var bans []models.Ban
	if err := c.get(ctx, fmt.Sprintf("/spaces/%d/bans", spaceID), &bans); err != nil {
		return nil, err
	}
	return bans, nil
}

func (c *Client) Roles(ctx context.Context, spaceID models.ID) ([]models.Role, error) {
	var roles []models.Role
	if err := c.get(ctx, fmt.Sprintf("/spaces/%d/roles", spaceID), &roles); err != nil {
		return nil, err
	}
	return roles, nil
}

func (c *Client) CreateRole(ctx context.Context, spaceID models.ID, req models.CreateRoleRequest) (*models.Role, error) {
	var role models.Role
	if err := c.post(ctx, fmt.Sprintf("/spaces/%d/roles", spaceID), req, &role); err != nil {
		return nil, err
	}
	return &role, nil
}

func (c *Client) AssignRole(ctx context.Context, spaceID, userID, roleID models.ID) error {
	return c.post(ctx, fmt.Sprintf("/spaces/%d/assign-role/%d/%d", spaceID, userID, roleID), struct{}{}, nil)
}

func (c *Client) MyPermissions(ctx context.Context, spaceID models.ID) (*models.PermissionsResponse, error) {
	var perms models.PermissionsResponse
	if err := c.get(ctx, fmt.Sprintf("/spaces/%d/my-permissions", spaceID), &perms); err != nil {
		return nil, err
	}
	return &perms, nil
}
