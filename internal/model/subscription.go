package model

import (
	"strings"
	"time"
)

// DateLayout is the wire format of calendar dates.
const DateLayout = "2006-01-02"

// Cadence is how often a subscription is due.
type Cadence string

const (
	CadenceMonthly   Cadence = "monthly"
	CadenceQuarterly Cadence = "quarterly"
	CadenceYearly    Cadence = "yearly"
)

// Valid reports whether c is a known cadence.
func (c Cadence) Valid() bool {
	switch c {
	case CadenceMonthly, CadenceQuarterly, CadenceYearly:
		return true
	}
	return false
}

// Advance returns the next due date after d.
func (c Cadence) Advance(d time.Time) time.Time {
	switch c {
	case CadenceQuarterly:
		return d.AddDate(0, 3, 0)
	case CadenceYearly:
		return d.AddDate(1, 0, 0)
	default:
		return d.AddDate(0, 1, 0)
	}
}

// Subscription is a recurring group cost.
type Subscription struct {
	ID          int64                `json:"id"`
	GroupID     int64                `json:"group_id"`
	Name        string               `json:"name"`
	AmountCents int64                `json:"amount_cents"`
	Cadence     Cadence              `json:"cadence"`
	NextDueDate string               `json:"next_due_date"`
	Notes       string               `json:"notes"`
	CategoryID  *int64               `json:"category_id,omitempty"`
	CreatedByID int64                `json:"created_by_id"`
	Members     []SubscriptionMember `json:"members"`
}

// SubscriptionMember is a member's share weight (not a percentage).
type SubscriptionMember struct {
	UserID int64 `json:"user_id"`
	Share  int64 `json:"share"`
}

// SubscriptionRequest is the body for creating or updating a subscription.
type SubscriptionRequest struct {
	Name        string               `json:"name"`
	AmountCents int64                `json:"amount_cents"`
	Cadence     Cadence              `json:"cadence"`
	NextDueDate string               `json:"next_due_date"`
	Notes       string               `json:"notes"`
	CategoryID  *int64               `json:"category_id,omitempty"`
	Members     []SubscriptionMember `json:"members"`
}

// Validate validates the subscription request.
func (r *SubscriptionRequest) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return ErrNameRequired
	}
	if r.AmountCents <= 0 {
		return ErrInvalidAmount
	}
	if !r.Cadence.Valid() {
		return ErrInvalidCadence
	}
	if _, err := time.Parse(DateLayout, r.NextDueDate); err != nil {
		return ErrInvalidDate
	}
	for _, m := range r.Members {
		if m.Share <= 0 {
			return ErrInvalidAmount
		}
	}
	return nil
}

// PaymentResult is returned by POST /api/groups/{id}/subscriptions/{sid}/pay.
type PaymentResult struct {
	Subscription Subscription `json:"subscription"`
	Expense      Expense      `json:"expense"`
}
