package api

import (
	"context"
	"net/http"

	"github.com/expense-share/client/internal/model"
)

// Me returns the authenticated user.
func (c *Client) Me(ctx context.Context) (*model.User, error) {
	var user model.User
	if err := c.do(ctx, http.MethodGet, "/api/auth/me", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Login starts a cookie session.
func (c *Client) Login(ctx context.Context, username, password string) error {
	return c.do(ctx, http.MethodPost, "/api/auth/login", model.LoginRequest{Username: username, Password: password}, nil)
}

// Logout ends the cookie session.
func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/api/auth/logout", nil, nil)
}
