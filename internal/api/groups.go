package api

import (
	"context"
	"net/http"

	"github.com/expense-share/client/internal/model"
)

// ListGroups returns the groups the user belongs to.
func (c *Client) ListGroups(ctx context.Context) ([]model.Group, error) {
	var groups []model.Group
	if err := c.do(ctx, http.MethodGet, "/api/groups", nil, &groups); err != nil {
		return nil, err
	}
	return groups, nil
}

// GetGroup returns a group with its members.
func (c *Client) GetGroup(ctx context.Context, groupID int64) (*model.Group, error) {
	var group model.Group
	if err := c.do(ctx, http.MethodGet, groupPath(groupID), nil, &group); err != nil {
		return nil, err
	}
	return &group, nil
}

// CreateGroup creates a group owned by the current user.
func (c *Client) CreateGroup(ctx context.Context, req model.GroupRequest) (*model.Group, error) {
	var group model.Group
	if err := c.do(ctx, http.MethodPost, "/api/groups", req, &group); err != nil {
		return nil, err
	}
	return &group, nil
}

// UpdateGroup renames a group or changes its currency.
func (c *Client) UpdateGroup(ctx context.Context, groupID int64, req model.GroupRequest) (*model.Group, error) {
	var group model.Group
	if err := c.do(ctx, http.MethodPut, groupPath(groupID), req, &group); err != nil {
		return nil, err
	}
	return &group, nil
}

// InviteMember invites a user to a group by username.
func (c *Client) InviteMember(ctx context.Context, groupID int64, username string) (*model.Invite, error) {
	var invite model.Invite
	if err := c.do(ctx, http.MethodPost, groupPath(groupID, "invites"), model.InviteRequest{Username: username}, &invite); err != nil {
		return nil, err
	}
	return &invite, nil
}
