package api

import (
	"context"
	"net/http"

	"github.com/expense-share/client/internal/model"
)

// SpendingSummary returns what the user paid and owes across groups.
func (c *Client) SpendingSummary(ctx context.Context) (*model.SpendingSummary, error) {
	var summary model.SpendingSummary
	if err := c.do(ctx, http.MethodGet, "/api/profile/spending-summary", nil, &summary); err != nil {
		return nil, err
	}
	return &summary, nil
}
