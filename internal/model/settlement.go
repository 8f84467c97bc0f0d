package model

import "time"

// SettlementStatus is the confirmation state of a settlement.
type SettlementStatus string

const (
	SettlementPayerConfirmed SettlementStatus = "payer_confirmed"
	SettlementComplete       SettlementStatus = "complete"
)

// Settlement records a payment from one member to another.
type Settlement struct {
	ID                  int64            `json:"id"`
	GroupID             int64            `json:"group_id"`
	PayerID             int64            `json:"payer_id"`
	ReceiverID          int64            `json:"receiver_id"`
	AmountCents         int64            `json:"amount_cents"`
	Status              SettlementStatus `json:"status"`
	PayerConfirmedAt    *time.Time       `json:"payer_confirmed_at,omitempty"`
	ReceiverConfirmedAt *time.Time       `json:"receiver_confirmed_at,omitempty"`
	CreatedAt           time.Time        `json:"created_at"`
	UpdatedAt           time.Time        `json:"updated_at"`
}

// Recommendation is a suggested transfer that settles outstanding balances.
type Recommendation struct {
	FromUserID  int64 `json:"from_user_id"`
	ToUserID    int64 `json:"to_user_id"`
	AmountCents int64 `json:"amount_cents"`
}

// SettlementSummary is the settlements view of a group.
type SettlementSummary struct {
	Recommendations []Recommendation `json:"recommendations"`
	Records         []Settlement     `json:"records"`
}

// EmptySettlementSummary returns a summary with non-nil empty slices.
func EmptySettlementSummary() SettlementSummary {
	return SettlementSummary{
		Recommendations: []Recommendation{},
		Records:         []Settlement{},
	}
}

// SettlementRequest is the body of POST /api/groups/{id}/settlements.
type SettlementRequest struct {
	ReceiverID  int64 `json:"receiver_id"`
	AmountCents int64 `json:"amount_cents"`
}

// Validate validates the settlement request.
func (r *SettlementRequest) Validate() error {
	if r.AmountCents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}
