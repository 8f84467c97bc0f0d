package ledger

import (
	"sort"
	"strings"

	"github.com/expense-share/client/internal/model"
)

func cloneExpense(e *model.Expense) model.Expense {
	out := *e
	out.Splits = append([]model.ExpenseSplit{}, e.Splits...)
	if e.CategoryID != nil {
		id := *e.CategoryID
		out.CategoryID = &id
	}
	return out
}

// Allocate divides total across weights in proportion, handing leftover cents
// to the largest remainders and breaking ties by position. The parts always
// sum to total.
func Allocate(total int64, weights []int64) []int64 {
	parts := make([]int64, len(weights))
	var sum int64
	for _, w := range weights {
		sum += w
	}
	if sum <= 0 {
		return parts
	}

	rems := make([]int64, len(weights))
	allocated := int64(0)
	for i, w := range weights {
		parts[i] = total * w / sum
		rems[i] = total * w % sum
		allocated += parts[i]
	}

	order := make([]int, len(weights))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return rems[order[a]] > rems[order[b]] })
	for k := 0; allocated < total; k++ {
		parts[order[k%len(order)]]++
		allocated++
	}
	return parts
}

// buildSplits validates explicit splits or derives them from the category's
// shares, falling back to an even split across the group.
func (s *Service) buildSplits(g *groupRecord, req *model.ExpenseRequest) ([]model.ExpenseSplit, error) {
	if len(req.Splits) > 0 {
		splits := make([]model.ExpenseSplit, 0, len(req.Splits))
		seen := make(map[int64]bool)
		for _, sp := range req.Splits {
			if !g.hasMember(sp.UserID) {
				return nil, fail(model.ErrInvalidRequest, "Split users must be group members")
			}
			if seen[sp.UserID] {
				return nil, fail(model.ErrInvalidRequest, "Each member may appear in splits once")
			}
			seen[sp.UserID] = true
			splits = append(splits, sp)
		}
		return splits, nil
	}

	var users, weights []int64
	if req.CategoryID != nil {
		for _, sp := range s.categories[*req.CategoryID].Splits {
			if g.hasMember(sp.UserID) {
				users = append(users, sp.UserID)
				weights = append(weights, sp.Share)
			}
		}
	}
	if len(users) == 0 {
		users = append(users, g.members...)
		weights = make([]int64, len(users))
		for i := range weights {
			weights[i] = 1
		}
	}

	parts := Allocate(req.AmountCents, weights)
	splits := make([]model.ExpenseSplit, len(users))
	for i, id := range users {
		splits[i] = model.ExpenseSplit{UserID: id, AmountCents: parts[i]}
	}
	return splits, nil
}

func (s *Service) prepareExpense(userID int64, g *groupRecord, req *model.ExpenseRequest) ([]model.ExpenseSplit, error) {
	if req.PaidByID == 0 {
		req.PaidByID = userID
	}
	if !g.hasMember(req.PaidByID) {
		return nil, fail(model.ErrInvalidRequest, "Payer must be a group member")
	}
	if req.CategoryID != nil {
		if _, err := s.groupCategory(g.id, *req.CategoryID); err != nil {
			return nil, err
		}
	}
	return s.buildSplits(g, req)
}

// ListExpenses returns a group's expenses, newest first.
func (s *Service) ListExpenses(userID, groupID int64) ([]model.Expense, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, err := s.memberGroup(userID, groupID); err != nil {
		return nil, err
	}
	expenses := []model.Expense{}
	for _, e := range s.expenses {
		if e.GroupID == groupID {
			expenses = append(expenses, cloneExpense(e))
		}
	}
	sort.Slice(expenses, func(i, j int) bool {
		if expenses[i].CreatedAt != expenses[j].CreatedAt {
			return expenses[i].CreatedAt > expenses[j].CreatedAt
		}
		return expenses[i].ID > expenses[j].ID
	})
	return expenses, nil
}

// CreateExpense records an expense and notifies the group. A zero PaidByID
// means the caller paid; empty splits are derived from the category or
// divided evenly.
func (s *Service) CreateExpense(userID, groupID int64, req *model.ExpenseRequest) (*model.Expense, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	g, err := s.memberGroup(userID, groupID)
	if err != nil {
		return nil, err
	}
	splits, err := s.prepareExpense(userID, g, req)
	if err != nil {
		return nil, err
	}

	e := &model.Expense{
		ID:          s.nextID("expense"),
		GroupID:     groupID,
		CategoryID:  req.CategoryID,
		Description: strings.TrimSpace(req.Description),
		AmountCents: req.AmountCents,
		PaidByID:    req.PaidByID,
		Splits:      splits,
		CreatedAt:   s.timestamp(),
	}
	s.expenses[e.ID] = e
	s.publish(g.members, model.EventExpensesChanged, model.GroupEvent{GroupID: groupID})

	out := cloneExpense(e)
	return &out, nil
}

func (s *Service) groupExpense(groupID, expenseID int64) (*model.Expense, error) {
	e, ok := s.expenses[expenseID]
	if !ok || e.GroupID != groupID {
		return nil, fail(model.ErrNotFound, "Expense not found")
	}
	return e, nil
}

// UpdateExpense replaces an expense and its splits.
func (s *Service) UpdateExpense(userID, groupID, expenseID int64, req *model.ExpenseRequest) (*model.Expense, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	g, err := s.memberGroup(userID, groupID)
	if err != nil {
		return nil, err
	}
	e, err := s.groupExpense(groupID, expenseID)
	if err != nil {
		return nil, err
	}
	splits, err := s.prepareExpense(userID, g, req)
	if err != nil {
		return nil, err
	}

	e.CategoryID = req.CategoryID
	e.Description = strings.TrimSpace(req.Description)
	e.AmountCents = req.AmountCents
	e.PaidByID = req.PaidByID
	e.Splits = splits
	s.publish(g.members, model.EventExpensesChanged, model.GroupEvent{GroupID: groupID})

	out := cloneExpense(e)
	return &out, nil
}

// DeleteExpense removes an expense.
func (s *Service) DeleteExpense(userID, groupID, expenseID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, err := s.memberGroup(userID, groupID)
	if err != nil {
		return err
	}
	if _, err := s.groupExpense(groupID, expenseID); err != nil {
		return err
	}
	delete(s.expenses, expenseID)
	s.publish(g.members, model.EventExpensesChanged, model.GroupEvent{GroupID: groupID})
	return nil
}
