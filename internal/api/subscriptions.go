package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/expense-share/client/internal/model"
)

// ListSubscriptions returns a group's subscriptions ordered by due date.
func (c *Client) ListSubscriptions(ctx context.Context, groupID int64) ([]model.Subscription, error) {
	var subs []model.Subscription
	if err := c.do(ctx, http.MethodGet, groupPath(groupID, "subscriptions"), nil, &subs); err != nil {
		return nil, err
	}
	return subs, nil
}

// CreateSubscription adds a recurring cost to a group.
func (c *Client) CreateSubscription(ctx context.Context, groupID int64, req model.SubscriptionRequest) (*model.Subscription, error) {
	var sub model.Subscription
	if err := c.do(ctx, http.MethodPost, groupPath(groupID, "subscriptions"), req, &sub); err != nil {
		return nil, err
	}
	return &sub, nil
}

// UpdateSubscription replaces a subscription and its member shares.
func (c *Client) UpdateSubscription(ctx context.Context, groupID, subID int64, req model.SubscriptionRequest) (*model.Subscription, error) {
	var sub model.Subscription
	path := groupPath(groupID, "subscriptions", strconv.FormatInt(subID, 10))
	if err := c.do(ctx, http.MethodPut, path, req, &sub); err != nil {
		return nil, err
	}
	return &sub, nil
}

// DeleteSubscription removes a subscription.
func (c *Client) DeleteSubscription(ctx context.Context, groupID, subID int64) error {
	return c.do(ctx, http.MethodDelete, groupPath(groupID, "subscriptions", strconv.FormatInt(subID, 10)), nil, nil)
}

// PaySubscription records the current period as an expense and advances the
// due date.
func (c *Client) PaySubscription(ctx context.Context, groupID, subID int64) (*model.PaymentResult, error) {
	var result model.PaymentResult
	path := groupPath(groupID, "subscriptions", strconv.FormatInt(subID, 10), "pay")
	if err := c.do(ctx, http.MethodPost, path, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
