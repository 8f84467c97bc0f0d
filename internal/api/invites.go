package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/expense-share/client/internal/model"
)

// ListInvites returns the current user's pending invites.
func (c *Client) ListInvites(ctx context.Context) ([]model.Invite, error) {
	var invites []model.Invite
	if err := c.do(ctx, http.MethodGet, "/api/invites", nil, &invites); err != nil {
		return nil, err
	}
	return invites, nil
}

// AcceptInvite accepts an invite and joins its group.
func (c *Client) AcceptInvite(ctx context.Context, inviteID int64) (*model.Invite, error) {
	var invite model.Invite
	if err := c.do(ctx, http.MethodPost, fmt.Sprintf("/api/invites/%d/accept", inviteID), nil, &invite); err != nil {
		return nil, err
	}
	return &invite, nil
}
