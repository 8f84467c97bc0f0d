package store

import (
	"context"
	"encoding/json"

	"github.com/expense-share/client/internal/model"
	"github.com/expense-share/client/internal/notify"
)

// Expenses holds expenses and settlements keyed by group id.
type Expenses struct {
	app *App

	ExpensesByGroup *Ref[map[int64][]model.Expense]
	LoadingExpenses *Ref[bool]
	ExpensesError   *Ref[string]
	SavingExpense   *Ref[bool]

	SettlementsByGroup *Ref[map[int64]model.SettlementSummary]
	LoadingSettlements *Ref[bool]
	SettlementsError   *Ref[string]

	// Guarded by app.mu.
	settlementSub bool
	expenseSub    bool
}

func newExpenses(app *App) *Expenses {
	return &Expenses{
		app:                app,
		ExpensesByGroup:    NewRef(map[int64][]model.Expense{}),
		LoadingExpenses:    NewRef(false),
		ExpensesError:      NewRef(""),
		SavingExpense:      NewRef(false),
		SettlementsByGroup: NewRef(map[int64]model.SettlementSummary{}),
		LoadingSettlements: NewRef(false),
		SettlementsError:   NewRef(""),
	}
}

// Expenses returns the cached expenses of a group.
func (s *Expenses) Expenses(groupID int64) []model.Expense {
	return s.ExpensesByGroup.Get()[groupID]
}

// Settlements returns the cached settlement summary of a group.
func (s *Expenses) Settlements(groupID int64) model.SettlementSummary {
	summary, ok := s.SettlementsByGroup.Get()[groupID]
	if !ok {
		return model.EmptySettlementSummary()
	}
	return summary
}

func (s *Expenses) setExpenses(groupID int64, expenses []model.Expense) {
	s.updateExpenses(groupID, func([]model.Expense) []model.Expense { return expenses })
}

func (s *Expenses) updateExpenses(groupID int64, fn func([]model.Expense) []model.Expense) {
	s.ExpensesByGroup.Update(func(m map[int64][]model.Expense) map[int64][]model.Expense {
		out := make(map[int64][]model.Expense, len(m)+1)
		for k, v := range m {
			out[k] = v
		}
		out[groupID] = fn(m[groupID])
		return out
	})
}

func (s *Expenses) setSettlements(groupID int64, summary model.SettlementSummary) {
	s.updateSettlements(groupID, func(model.SettlementSummary) model.SettlementSummary { return summary })
}

func (s *Expenses) updateSettlements(groupID int64, fn func(model.SettlementSummary) model.SettlementSummary) {
	s.SettlementsByGroup.Update(func(m map[int64]model.SettlementSummary) map[int64]model.SettlementSummary {
		out := make(map[int64]model.SettlementSummary, len(m)+1)
		for k, v := range m {
			out[k] = v
		}
		current, ok := m[groupID]
		if !ok {
			current = model.EmptySettlementSummary()
		}
		out[groupID] = fn(current)
		return out
	})
}

// FetchExpenses loads a group's expenses. On failure the group's entry is
// emptied and its cached copy dropped.
func (s *Expenses) FetchExpenses(ctx context.Context, groupID int64) error {
	s.LoadingExpenses.Set(true)
	s.ExpensesError.Set("")
	defer s.LoadingExpenses.Set(false)

	expenses, err := s.app.client.ListExpenses(ctx, groupID)
	if err != nil {
		opErr := loadFailure(err, "Unable to load expenses")
		s.ExpensesError.Set(opErr.Message)
		s.setExpenses(groupID, []model.Expense{})
		s.app.forget(ctx, expensesKey(groupID))
		return opErr
	}
	if expenses == nil {
		expenses = []model.Expense{}
	}
	s.setExpenses(groupID, expenses)
	s.app.save(ctx, expensesKey(groupID), expenses)
	return nil
}

// CreateExpense records an expense and puts it first in its group.
func (s *Expenses) CreateExpense(ctx context.Context, groupID int64, req model.ExpenseRequest) (*model.Expense, error) {
	s.SavingExpense.Set(true)
	s.ExpensesError.Set("")
	defer s.SavingExpense.Set(false)

	created, err := s.app.client.CreateExpense(ctx, groupID, req)
	if err != nil {
		opErr := mutationFailure(err, "Unable to create expense")
		s.ExpensesError.Set(opErr.Message)
		return nil, opErr
	}
	s.updateExpenses(groupID, func(current []model.Expense) []model.Expense {
		return prepend(*created, current)
	})
	return created, nil
}

// UpdateExpense saves an expense and replaces it in its group when present.
func (s *Expenses) UpdateExpense(ctx context.Context, groupID, expenseID int64, req model.ExpenseRequest) (*model.Expense, error) {
	s.SavingExpense.Set(true)
	s.ExpensesError.Set("")
	defer s.SavingExpense.Set(false)

	updated, err := s.app.client.UpdateExpense(ctx, groupID, expenseID, req)
	if err != nil {
		opErr := mutationFailure(err, "Unable to update expense")
		s.ExpensesError.Set(opErr.Message)
		return nil, opErr
	}
	s.updateExpenses(groupID, func(current []model.Expense) []model.Expense {
		out := make([]model.Expense, len(current))
		copy(out, current)
		for i := range out {
			if out[i].ID == expenseID {
				out[i] = *updated
				break
			}
		}
		return out
	})
	return updated, nil
}

// DeleteExpense deletes an expense and drops it from its group.
func (s *Expenses) DeleteExpense(ctx context.Context, groupID, expenseID int64) error {
	s.ExpensesError.Set("")

	if err := s.app.client.DeleteExpense(ctx, groupID, expenseID); err != nil {
		opErr := mutationFailure(err, "Unable to delete expense")
		s.ExpensesError.Set(opErr.Message)
		return opErr
	}
	s.updateExpenses(groupID, func(current []model.Expense) []model.Expense {
		return removeByID(current, expenseID, func(e model.Expense) int64 { return e.ID })
	})
	return nil
}

// FetchSettlements loads a group's settlement summary. On failure the group's
// entry becomes an empty summary and its cached copy is dropped.
func (s *Expenses) FetchSettlements(ctx context.Context, groupID int64) error {
	s.LoadingSettlements.Set(true)
	s.SettlementsError.Set("")
	defer s.LoadingSettlements.Set(false)

	summary, err := s.app.client.ListSettlements(ctx, groupID)
	if err != nil {
		opErr := loadFailure(err, "Unable to load settlements")
		s.SettlementsError.Set(opErr.Message)
		s.setSettlements(groupID, model.EmptySettlementSummary())
		s.app.forget(ctx, settlementsKey(groupID))
		return opErr
	}
	normalized := normalizeSummary(*summary)
	s.setSettlements(groupID, normalized)
	s.app.save(ctx, settlementsKey(groupID), normalized)
	return nil
}

// RecordSettlement records a payment and puts it first in the group's
// records. Recommendations are left as they were.
func (s *Expenses) RecordSettlement(ctx context.Context, groupID int64, req model.SettlementRequest) (*model.Settlement, error) {
	s.SettlementsError.Set("")

	record, err := s.app.client.RecordSettlement(ctx, groupID, req)
	if err != nil {
		opErr := mutationFailure(err, "Unable to record settlement")
		s.SettlementsError.Set(opErr.Message)
		return nil, opErr
	}
	s.updateSettlements(groupID, func(summary model.SettlementSummary) model.SettlementSummary {
		summary = normalizeSummary(summary)
		return model.SettlementSummary{
			Recommendations: summary.Recommendations,
			Records:         prepend(*record, summary.Records),
		}
	})
	return record, nil
}

// ConfirmSettlement confirms receipt of a settlement and replaces its record.
func (s *Expenses) ConfirmSettlement(ctx context.Context, groupID, settlementID int64) (*model.Settlement, error) {
	s.SettlementsError.Set("")

	updated, err := s.app.client.ConfirmSettlement(ctx, groupID, settlementID)
	if err != nil {
		opErr := mutationFailure(err, "Unable to confirm settlement")
		s.SettlementsError.Set(opErr.Message)
		return nil, opErr
	}
	s.updateSettlements(groupID, func(summary model.SettlementSummary) model.SettlementSummary {
		summary = normalizeSummary(summary)
		return model.SettlementSummary{
			Recommendations: summary.Recommendations,
			Records:         replaceByID(summary.Records, *updated, func(r model.Settlement) int64 { return r.ID }),
		}
	})
	return updated, nil
}

// ConnectToExpenseNotifications subscribes, once per App, to
// settlement_update (refetch settlements) and expenses_changed (refetch
// expenses and settlements) for the event's group.
func (s *Expenses) ConnectToExpenseNotifications() {
	s.app.subscribe(&s.settlementSub, model.EventSettlementUpdate, func(data json.RawMessage, _ notify.Envelope) {
		groupID, ok := groupIDOf(data)
		if !ok {
			return
		}
		s.app.background(func(ctx context.Context) {
			s.FetchSettlements(ctx, groupID)
		})
	})
	s.app.subscribe(&s.expenseSub, model.EventExpensesChanged, func(data json.RawMessage, _ notify.Envelope) {
		groupID, ok := groupIDOf(data)
		if !ok {
			return
		}
		s.app.background(func(ctx context.Context) {
			s.FetchExpenses(ctx, groupID)
		})
		s.app.background(func(ctx context.Context) {
			s.FetchSettlements(ctx, groupID)
		})
	})
}

func normalizeSummary(s model.SettlementSummary) model.SettlementSummary {
	if s.Recommendations == nil {
		s.Recommendations = []model.Recommendation{}
	}
	if s.Records == nil {
		s.Records = []model.Settlement{}
	}
	return s
}
