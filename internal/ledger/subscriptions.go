package ledger

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/expense-share/client/internal/model"
)

func cloneSubscription(sub *model.Subscription) model.Subscription {
	out := *sub
	out.Members = append([]model.SubscriptionMember{}, sub.Members...)
	if sub.CategoryID != nil {
		id := *sub.CategoryID
		out.CategoryID = &id
	}
	return out
}

// subscriptionMembers checks explicit shares or gives every group member an
// equal share.
func subscriptionMembers(g *groupRecord, members []model.SubscriptionMember) ([]model.SubscriptionMember, error) {
	if len(members) == 0 {
		out := make([]model.SubscriptionMember, len(g.members))
		for i, id := range g.members {
			out[i] = model.SubscriptionMember{UserID: id, Share: 1}
		}
		return out, nil
	}
	seen := make(map[int64]bool)
	for _, m := range members {
		if !g.hasMember(m.UserID) || seen[m.UserID] {
			return nil, fail(model.ErrInvalidRequest, "Subscription members must be distinct group members")
		}
		seen[m.UserID] = true
	}
	return append([]model.SubscriptionMember{}, members...), nil
}

// ListSubscriptions returns a group's subscriptions by next due date.
func (s *Service) ListSubscriptions(userID, groupID int64) ([]model.Subscription, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, err := s.memberGroup(userID, groupID); err != nil {
		return nil, err
	}
	subs := []model.Subscription{}
	for _, sub := range s.subscriptions {
		if sub.GroupID == groupID {
			subs = append(subs, cloneSubscription(sub))
		}
	}
	sort.Slice(subs, func(i, j int) bool {
		if subs[i].NextDueDate != subs[j].NextDueDate {
			return subs[i].NextDueDate < subs[j].NextDueDate
		}
		return subs[i].ID < subs[j].ID
	})
	return subs, nil
}

func (s *Service) applySubscription(g *groupRecord, sub *model.Subscription, req *model.SubscriptionRequest) error {
	if req.CategoryID != nil {
		if _, err := s.groupCategory(g.id, *req.CategoryID); err != nil {
			return err
		}
	}
	members, err := subscriptionMembers(g, req.Members)
	if err != nil {
		return err
	}
	sub.Name = strings.TrimSpace(req.Name)
	sub.AmountCents = req.AmountCents
	sub.Cadence = req.Cadence
	sub.NextDueDate = req.NextDueDate
	sub.Notes = req.Notes
	sub.CategoryID = req.CategoryID
	sub.Members = members
	return nil
}

// CreateSubscription adds a recurring cost to a group.
func (s *Service) CreateSubscription(userID, groupID int64, req *model.SubscriptionRequest) (*model.Subscription, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	g, err := s.memberGroup(userID, groupID)
	if err != nil {
		return nil, err
	}
	sub := &model.Subscription{GroupID: groupID, CreatedByID: userID}
	if err := s.applySubscription(g, sub, req); err != nil {
		return nil, err
	}
	sub.ID = s.nextID("subscription")
	s.subscriptions[sub.ID] = sub

	out := cloneSubscription(sub)
	return &out, nil
}

func (s *Service) groupSubscription(groupID, subID int64) (*model.Subscription, error) {
	sub, ok := s.subscriptions[subID]
	if !ok || sub.GroupID != groupID {
		return nil, fail(model.ErrNotFound, "Subscription not found")
	}
	return sub, nil
}

// UpdateSubscription replaces a subscription's fields.
func (s *Service) UpdateSubscription(userID, groupID, subID int64, req *model.SubscriptionRequest) (*model.Subscription, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	g, err := s.memberGroup(userID, groupID)
	if err != nil {
		return nil, err
	}
	sub, err := s.groupSubscription(groupID, subID)
	if err != nil {
		return nil, err
	}
	updated := cloneSubscription(sub)
	if err := s.applySubscription(g, &updated, req); err != nil {
		return nil, err
	}
	*sub = updated

	out := cloneSubscription(sub)
	return &out, nil
}

// DeleteSubscription removes a subscription.
func (s *Service) DeleteSubscription(userID, groupID, subID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.memberGroup(userID, groupID); err != nil {
		return err
	}
	if _, err := s.groupSubscription(groupID, subID); err != nil {
		return err
	}
	delete(s.subscriptions, subID)
	return nil
}

// PaySubscription records the current instalment as an expense paid by
// userID, split by member shares, and moves the due date on by one cadence.
func (s *Service) PaySubscription(userID, groupID, subID int64) (*model.PaymentResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, err := s.memberGroup(userID, groupID)
	if err != nil {
		return nil, err
	}
	sub, err := s.groupSubscription(groupID, subID)
	if err != nil {
		return nil, err
	}
	due, err := time.Parse(model.DateLayout, sub.NextDueDate)
	if err != nil {
		return nil, model.ErrInvalidDate
	}

	var users, weights []int64
	for _, m := range sub.Members {
		if g.hasMember(m.UserID) {
			users = append(users, m.UserID)
			weights = append(weights, m.Share)
		}
	}
	if len(users) == 0 {
		return nil, fail(model.ErrInvalidRequest, "Subscription has no members")
	}
	parts := Allocate(sub.AmountCents, weights)
	splits := make([]model.ExpenseSplit, len(users))
	for i, id := range users {
		splits[i] = model.ExpenseSplit{UserID: id, AmountCents: parts[i]}
	}

	e := &model.Expense{
		ID:          s.nextID("expense"),
		GroupID:     groupID,
		CategoryID:  sub.CategoryID,
		Description: fmt.Sprintf("%s (%s)", sub.Name, sub.NextDueDate),
		AmountCents: sub.AmountCents,
		PaidByID:    userID,
		Splits:      splits,
		CreatedAt:   s.timestamp(),
	}
	s.expenses[e.ID] = e
	sub.NextDueDate = sub.Cadence.Advance(due).Format(model.DateLayout)
	s.publish(g.members, model.EventExpensesChanged, model.GroupEvent{GroupID: groupID})

	return &model.PaymentResult{
		Subscription: cloneSubscription(sub),
		Expense:      cloneExpense(e),
	}, nil
}

// SpendingSummary reports how much userID paid and owes in each of their
// groups and overall.
func (s *Service) SpendingSummary(userID int64) *model.SpendingSummary {
	s.mu.RLock()
	defer s.mu.RUnlock()

	summary := &model.SpendingSummary{Groups: []model.GroupSpending{}}
	var groups []*groupRecord
	for _, g := range s.groups {
		if g.hasMember(userID) {
			groups = append(groups, g)
		}
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].id < groups[j].id })

	for _, g := range groups {
		gs := model.GroupSpending{GroupID: g.id, GroupName: g.name, Currency: g.currency}
		for _, e := range s.expenses {
			if e.GroupID != g.id {
				continue
			}
			if e.PaidByID == userID {
				gs.Paid += e.AmountCents
			}
			for _, sp := range e.Splits {
				if sp.UserID == userID {
					gs.Owed += sp.AmountCents
				}
			}
		}
		gs.Net = gs.Paid - gs.Owed
		summary.Groups = append(summary.Groups, gs)
		summary.OverallPaid += gs.Paid
		summary.OverallOwed += gs.Owed
	}
	summary.OverallNet = summary.OverallPaid - summary.OverallOwed
	return summary
}
