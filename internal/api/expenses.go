package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/expense-share/client/internal/model"
)

// ListExpenses returns a group's expenses, newest first.
func (c *Client) ListExpenses(ctx context.Context, groupID int64) ([]model.Expense, error) {
	var expenses []model.Expense
	if err := c.do(ctx, http.MethodGet, groupPath(groupID, "expenses"), nil, &expenses); err != nil {
		return nil, err
	}
	return expenses, nil
}

// CreateExpense records an expense.
func (c *Client) CreateExpense(ctx context.Context, groupID int64, req model.ExpenseRequest) (*model.Expense, error) {
	var expense model.Expense
	if err := c.do(ctx, http.MethodPost, groupPath(groupID, "expenses"), req, &expense); err != nil {
		return nil, err
	}
	return &expense, nil
}

// UpdateExpense replaces an expense and its splits.
func (c *Client) UpdateExpense(ctx context.Context, groupID, expenseID int64, req model.ExpenseRequest) (*model.Expense, error) {
	var expense model.Expense
	path := groupPath(groupID, "expenses", strconv.FormatInt(expenseID, 10))
	if err := c.do(ctx, http.MethodPut, path, req, &expense); err != nil {
		return nil, err
	}
	return &expense, nil
}

// DeleteExpense removes an expense.
func (c *Client) DeleteExpense(ctx context.Context, groupID, expenseID int64) error {
	return c.do(ctx, http.MethodDelete, groupPath(groupID, "expenses", strconv.FormatInt(expenseID, 10)), nil, nil)
}
