package store

import (
	"context"

	"github.com/expense-share/client/internal/model"
)

const requestFailed = "Request failed"

// Subscriptions wraps the recurring cost endpoints of a group. It keeps no
// list of its own; callers hold the results.
type Subscriptions struct {
	app *App

	Loading *Ref[bool]
	Error   *Ref[string]
}

// Subscriptions creates a subscriptions store.
func (a *App) Subscriptions() *Subscriptions {
	return &Subscriptions{
		app:     a,
		Loading: NewRef(false),
		Error:   NewRef(""),
	}
}

// track runs fn with Loading set and records its failure in Error.
func (s *Subscriptions) track(fn func() error) error {
	s.Loading.Set(true)
	s.Error.Set("")
	defer s.Loading.Set(false)

	if err := fn(); err != nil {
		opErr := mutationFailure(err, requestFailed)
		s.Error.Set(opErr.Message)
		return opErr
	}
	return nil
}

// List returns a group's subscriptions.
func (s *Subscriptions) List(ctx context.Context, groupID int64) ([]model.Subscription, error) {
	var subs []model.Subscription
	err := s.track(func() (err error) {
		subs, err = s.app.client.ListSubscriptions(ctx, groupID)
		return err
	})
	return subs, err
}

// Create adds a subscription to a group.
func (s *Subscriptions) Create(ctx context.Context, groupID int64, req model.SubscriptionRequest) (*model.Subscription, error) {
	var sub *model.Subscription
	err := s.track(func() (err error) {
		sub, err = s.app.client.CreateSubscription(ctx, groupID, req)
		return err
	})
	return sub, err
}

// Update saves a subscription.
func (s *Subscriptions) Update(ctx context.Context, groupID, subID int64, req model.SubscriptionRequest) (*model.Subscription, error) {
	var sub *model.Subscription
	err := s.track(func() (err error) {
		sub, err = s.app.client.UpdateSubscription(ctx, groupID, subID, req)
		return err
	})
	return sub, err
}

// Remove deletes a subscription.
func (s *Subscriptions) Remove(ctx context.Context, groupID, subID int64) error {
	return s.track(func() error {
		return s.app.client.DeleteSubscription(ctx, groupID, subID)
	})
}

// Pay records the current period of a subscription as an expense.
func (s *Subscriptions) Pay(ctx context.Context, groupID, subID int64) (*model.PaymentResult, error) {
	var result *model.PaymentResult
	err := s.track(func() (err error) {
		result, err = s.app.client.PaySubscription(ctx, groupID, subID)
		return err
	})
	return result, err
}
