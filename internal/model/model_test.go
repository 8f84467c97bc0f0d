package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpenseRequestValidate(t *testing.T) {
	tests := []struct {
		name string
		req  ExpenseRequest
		want error
	}{
		{"even split", ExpenseRequest{Description: "Milk", AmountCents: 300}, nil},
		{"blank description", ExpenseRequest{Description: "  ", AmountCents: 300}, ErrNameRequired},
		{"zero amount", ExpenseRequest{Description: "Milk"}, ErrInvalidAmount},
		{"explicit splits", ExpenseRequest{Description: "Milk", AmountCents: 300, Splits: []ExpenseSplit{
			{UserID: 1, AmountCents: 100}, {UserID: 2, AmountCents: 200},
		}}, nil},
		{"zero share allowed", ExpenseRequest{Description: "Milk", AmountCents: 300, Splits: []ExpenseSplit{
			{UserID: 1, AmountCents: 300}, {UserID: 2, AmountCents: 0},
		}}, nil},
		{"negative split", ExpenseRequest{Description: "Milk", AmountCents: 300, Splits: []ExpenseSplit{
			{UserID: 1, AmountCents: 400}, {UserID: 2, AmountCents: -100},
		}}, ErrInvalidAmount},
		{"splits short", ExpenseRequest{Description: "Milk", AmountCents: 300, Splits: []ExpenseSplit{
			{UserID: 1, AmountCents: 100},
		}}, ErrSplitMismatch},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.req.Validate(), tt.want)
		})
	}
}

func TestGroupAndCategoryRequestValidate(t *testing.T) {
	assert.NoError(t, (&GroupRequest{Name: "Flat"}).Validate())
	assert.ErrorIs(t, (&GroupRequest{Name: ""}).Validate(), ErrNameRequired)

	assert.NoError(t, (&CategoryRequest{Name: "Food", BudgetCents: 0}).Validate())
	assert.ErrorIs(t, (&CategoryRequest{Name: "\t"}).Validate(), ErrNameRequired)
	assert.ErrorIs(t, (&CategoryRequest{Name: "Food", BudgetCents: -1}).Validate(), ErrInvalidAmount)
}

func TestSettlementRequestValidate(t *testing.T) {
	assert.NoError(t, (&SettlementRequest{ReceiverID: 2, AmountCents: 1}).Validate())
	assert.ErrorIs(t, (&SettlementRequest{ReceiverID: 2}).Validate(), ErrInvalidAmount)
}

func TestSubscriptionRequestValidate(t *testing.T) {
	valid := func() SubscriptionRequest {
		return SubscriptionRequest{
			Name:        "Internet",
			AmountCents: 3000,
			Cadence:     CadenceMonthly,
			NextDueDate: "2024-02-01",
			Members:     []SubscriptionMember{{UserID: 1, Share: 1}},
		}
	}

	req := valid()
	assert.NoError(t, req.Validate())

	req = valid()
	req.Name = ""
	assert.ErrorIs(t, req.Validate(), ErrNameRequired)

	req = valid()
	req.AmountCents = -5
	assert.ErrorIs(t, req.Validate(), ErrInvalidAmount)

	req = valid()
	req.Cadence = "weekly"
	assert.ErrorIs(t, req.Validate(), ErrInvalidCadence)

	req = valid()
	req.NextDueDate = "01/02/2024"
	assert.ErrorIs(t, req.Validate(), ErrInvalidDate)

	req = valid()
	req.Members[0].Share = 0
	assert.ErrorIs(t, req.Validate(), ErrInvalidAmount)
}

func TestCadence(t *testing.T) {
	due := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, "2024-02-15", CadenceMonthly.Advance(due).Format(DateLayout))
	assert.Equal(t, "2024-04-15", CadenceQuarterly.Advance(due).Format(DateLayout))
	assert.Equal(t, "2025-01-15", CadenceYearly.Advance(due).Format(DateLayout))

	assert.True(t, CadenceYearly.Valid())
	assert.False(t, Cadence("").Valid())
	assert.False(t, Cadence("Monthly").Valid())
}

func TestGroupHasMember(t *testing.T) {
	g := &Group{ID: 1, Members: []Member{{ID: 1, Username: "alice"}, {ID: 2, Username: "bob"}}}
	assert.True(t, g.HasMember(2))
	assert.False(t, g.HasMember(3))
}

func TestEmptySettlementSummaryEncodesArrays(t *testing.T) {
	b, err := json.Marshal(EmptySettlementSummary())
	require.NoError(t, err)
	assert.JSONEq(t, `{"recommendations":[],"records":[]}`, string(b))
}
