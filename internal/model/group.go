package model

import "strings"

// DefaultCurrency is used when a group is created without a currency.
const DefaultCurrency = "GBP"

// Member is a user that belongs to a group.
type Member struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

// Group is an expense-sharing group.
type Group struct {
	ID       int64    `json:"id"`
	Name     string   `json:"name"`
	OwnerID  int64    `json:"owner_id"`
	Currency string   `json:"currency"`
	Members  []Member `json:"members"`
}

// HasMember reports whether the user belongs to the group.
func (g *Group) HasMember(userID int64) bool {
	for _, m := range g.Members {
		if m.ID == userID {
			return true
		}
	}
	return false
}

// GroupRequest is the body for creating or updating a group.
type GroupRequest struct {
	Name      string  `json:"name"`
	Currency  string  `json:"currency,omitempty"`
	MemberIDs []int64 `json:"member_ids,omitempty"`
}

// Validate validates the group request.
func (r *GroupRequest) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return ErrNameRequired
	}
	return nil
}

// Category is a spending category with a budget and default split shares.
type Category struct {
	ID          int64           `json:"id"`
	GroupID     int64           `json:"group_id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	BudgetCents int64           `json:"budget_cents"`
	Splits      []CategorySplit `json:"splits"`
	CreatedAt   string          `json:"created_at,omitempty"`
}

// CategorySplit assigns a share weight of a category to a member.
type CategorySplit struct {
	UserID   int64  `json:"user_id,omitempty"`
	Username string `json:"username"`
	Share    int64  `json:"share"`
}

// CategoryRequest is the body for creating or updating a category.
type CategoryRequest struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	BudgetCents int64           `json:"budget_cents"`
	Splits      []CategorySplit `json:"splits"`
}

// Validate validates the category request.
func (r *CategoryRequest) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return ErrNameRequired
	}
	if r.BudgetCents < 0 {
		return ErrInvalidAmount
	}
	return nil
}
