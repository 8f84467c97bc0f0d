package ledger

import (
	"sort"

	"github.com/expense-share/client/internal/model"
)

// balances returns each member's net position in cents: positive means the
// group owes them. Recorded settlements count as soon as the payer records
// them.
func (s *Service) balances(g *groupRecord) map[int64]int64 {
	bal := make(map[int64]int64, len(g.members))
	for _, id := range g.members {
		bal[id] = 0
	}
	for _, e := range s.expenses {
		if e.GroupID != g.id {
			continue
		}
		bal[e.PaidByID] += e.AmountCents
		for _, sp := range e.Splits {
			bal[sp.UserID] -= sp.AmountCents
		}
	}
	for _, st := range s.settlements {
		if st.GroupID != g.id {
			continue
		}
		bal[st.PayerID] += st.AmountCents
		bal[st.ReceiverID] -= st.AmountCents
	}
	return bal
}

// Recommend turns balances into transfers by repeatedly matching the largest
// debtor with the largest creditor. Ties go to the lower user id. When the
// balances sum to zero, applying the transfers settles everyone.
func Recommend(balances map[int64]int64) []model.Recommendation {
	type position struct {
		userID int64
		amount int64
	}
	var debtors, creditors []position
	for id, b := range balances {
		switch {
		case b < 0:
			debtors = append(debtors, position{id, -b})
		case b > 0:
			creditors = append(creditors, position{id, b})
		}
	}
	byAmount := func(ps []position) {
		sort.Slice(ps, func(i, j int) bool {
			if ps[i].amount != ps[j].amount {
				return ps[i].amount > ps[j].amount
			}
			return ps[i].userID < ps[j].userID
		})
	}
	byAmount(debtors)
	byAmount(creditors)

	recs := []model.Recommendation{}
	i, j := 0, 0
	for i < len(debtors) && j < len(creditors) {
		amount := min(debtors[i].amount, creditors[j].amount)
		recs = append(recs, model.Recommendation{
			FromUserID:  debtors[i].userID,
			ToUserID:    creditors[j].userID,
			AmountCents: amount,
		})
		debtors[i].amount -= amount
		creditors[j].amount -= amount
		if debtors[i].amount == 0 {
			i++
		}
		if creditors[j].amount == 0 {
			j++
		}
	}
	return recs
}

// Settlements returns the recommended transfers and the recorded
// settlements of a group, newest first.
func (s *Service) Settlements(userID, groupID int64) (*model.SettlementSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	g, err := s.memberGroup(userID, groupID)
	if err != nil {
		return nil, err
	}

	summary := model.EmptySettlementSummary()
	summary.Recommendations = Recommend(s.balances(g))
	for _, st := range s.settlements {
		if st.GroupID == groupID {
			summary.Records = append(summary.Records, *st)
		}
	}
	sort.Slice(summary.Records, func(i, j int) bool {
		a, b := summary.Records[i], summary.Records[j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID > b.ID
	})
	return &summary, nil
}

// RecordSettlement records a payment from userID to the receiver. It starts
// out confirmed by the payer only.
func (s *Service) RecordSettlement(userID, groupID int64, req *model.SettlementRequest) (*model.Settlement, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if req.ReceiverID == userID {
		return nil, model.ErrSelfSettlement
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	g, err := s.memberGroup(userID, groupID)
	if err != nil {
		return nil, err
	}
	if !g.hasMember(req.ReceiverID) {
		return nil, fail(model.ErrInvalidRequest, "Receiver must be a group member")
	}

	now := s.now().UTC()
	st := &model.Settlement{
		ID:               s.nextID("settlement"),
		GroupID:          groupID,
		PayerID:          userID,
		ReceiverID:       req.ReceiverID,
		AmountCents:      req.AmountCents,
		Status:           model.SettlementPayerConfirmed,
		PayerConfirmedAt: &now,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	s.settlements[st.ID] = st
	s.publish(g.members, model.EventSettlementUpdate, model.GroupEvent{GroupID: groupID})

	out := *st
	return &out, nil
}

// ConfirmSettlement completes a settlement. Only the receiver may confirm.
func (s *Service) ConfirmSettlement(userID, groupID, settlementID int64) (*model.Settlement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, err := s.memberGroup(userID, groupID)
	if err != nil {
		return nil, err
	}
	st, ok := s.settlements[settlementID]
	if !ok || st.GroupID != groupID {
		return nil, fail(model.ErrNotFound, "Settlement not found")
	}
	if st.ReceiverID != userID {
		return nil, fail(model.ErrForbidden, "Only the receiver can confirm a settlement")
	}
	if st.Status == model.SettlementComplete {
		return nil, fail(model.ErrConflict, "Settlement already confirmed")
	}

	now := s.now().UTC()
	st.Status = model.SettlementComplete
	st.ReceiverConfirmedAt = &now
	st.UpdatedAt = now
	s.publish(g.members, model.EventSettlementUpdate, model.GroupEvent{GroupID: groupID})

	out := *st
	return &out, nil
}
