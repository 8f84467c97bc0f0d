package model

// InviteStatus is the state of a group invite.
type InviteStatus string

const (
	InvitePending  InviteStatus = "pending"
	InviteAccepted InviteStatus = "accepted"
)

// Invite is an invitation for a user to join a group.
type Invite struct {
	ID        int64        `json:"id"`
	GroupID   int64        `json:"group_id"`
	GroupName string       `json:"group_name,omitempty"`
	InviterID int64        `json:"inviter_id"`
	Inviter   string       `json:"inviter,omitempty"`
	InviteeID int64        `json:"invitee_id"`
	Status    InviteStatus `json:"status"`
	CreatedAt string       `json:"created_at,omitempty"`
}

// InviteRequest is the body of POST /api/groups/{id}/invites.
type InviteRequest struct {
	Username string `json:"username"`
}
