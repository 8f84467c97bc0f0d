package model

import "strings"

// Expense is a payment made by one member and split across members.
// Amounts are stored in cents.
type Expense struct {
	ID          int64          `json:"id"`
	GroupID     int64          `json:"group_id"`
	CategoryID  *int64         `json:"category_id,omitempty"`
	Description string         `json:"description"`
	AmountCents int64          `json:"amount_cents"`
	PaidByID    int64          `json:"paid_by_id"`
	Splits      []ExpenseSplit `json:"splits"`
	CreatedAt   string         `json:"created_at,omitempty"`
}

// ExpenseSplit is the portion of an expense owed by a member.
type ExpenseSplit struct {
	UserID      int64 `json:"user_id"`
	AmountCents int64 `json:"amount_cents"`
}

// ExpenseRequest is the body for creating or updating an expense.
type ExpenseRequest struct {
	Description string         `json:"description"`
	AmountCents int64          `json:"amount_cents"`
	PaidByID    int64          `json:"paid_by_id"`
	CategoryID  *int64         `json:"category_id,omitempty"`
	Splits      []ExpenseSplit `json:"splits"`
}

// Validate validates the expense request.
func (r *ExpenseRequest) Validate() error {
	if strings.TrimSpace(r.Description) == "" {
		return ErrNameRequired
	}
	if r.AmountCents <= 0 {
		return ErrInvalidAmount
	}
	if len(r.Splits) == 0 {
		return nil
	}
	var total int64
	for _, s := range r.Splits {
		if s.AmountCents < 0 {
			return ErrInvalidAmount
		}
		total += s.AmountCents
	}
	if total != r.AmountCents {
		return ErrSplitMismatch
	}
	return nil
}
