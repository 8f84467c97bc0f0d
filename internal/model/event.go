package model

// Notification event types pushed over /ws/notifications.
const (
	EventInvite            = "invite"
	EventCategoriesChanged = "categories_changed"
	EventExpensesChanged   = "expenses_changed"
	EventSettlementUpdate  = "settlement_update"
)

// GroupEvent is the data of the group-scoped change events.
type GroupEvent struct {
	GroupID int64 `json:"group_id"`
}
