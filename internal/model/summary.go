package model

// GroupSpending is a user's position in one group. Amounts are in cents.
type GroupSpending struct {
	GroupID   int64  `json:"group_id"`
	GroupName string `json:"group_name"`
	Currency  string `json:"currency"`
	Paid      int64  `json:"paid"`
	Owed      int64  `json:"owed"`
	Net       int64  `json:"net"`
}

// SpendingSummary is returned by GET /api/profile/spending-summary.
type SpendingSummary struct {
	Groups      []GroupSpending `json:"groups"`
	OverallPaid int64           `json:"overall_paid"`
	OverallOwed int64           `json:"overall_owed"`
	OverallNet  int64           `json:"overall_net"`
}
