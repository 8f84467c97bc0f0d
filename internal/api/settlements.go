package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/expense-share/client/internal/model"
)

// ListSettlements returns recommended transfers and recorded settlements.
func (c *Client) ListSettlements(ctx context.Context, groupID int64) (*model.SettlementSummary, error) {
	var summary model.SettlementSummary
	if err := c.do(ctx, http.MethodGet, groupPath(groupID, "settlements"), nil, &summary); err != nil {
		return nil, err
	}
	return &summary, nil
}

// RecordSettlement records a payment made by the current user.
func (c *Client) RecordSettlement(ctx context.Context, groupID int64, req model.SettlementRequest) (*model.Settlement, error) {
	var settlement model.Settlement
	if err := c.do(ctx, http.MethodPost, groupPath(groupID, "settlements"), req, &settlement); err != nil {
		return nil, err
	}
	return &settlement, nil
}

// ConfirmSettlement confirms receipt of a settlement.
func (c *Client) ConfirmSettlement(ctx context.Context, groupID, settlementID int64) (*model.Settlement, error) {
	var settlement model.Settlement
	path := groupPath(groupID, "settlements", strconv.FormatInt(settlementID, 10), "confirm")
	if err := c.do(ctx, http.MethodPost, path, nil, &settlement); err != nil {
		return nil, err
	}
	return &settlement, nil
}
