package store

import (
	"context"
	"encoding/json"

	"github.com/expense-share/client/internal/model"
	"github.com/expense-share/client/internal/notify"
)

// Invites holds the user's pending group invites.
type Invites struct {
	app *App

	Invites *Ref[[]model.Invite]
	Loading *Ref[bool]
	Error   *Ref[string]
	// AcceptingInviteID is the invite being accepted, or 0.
	AcceptingInviteID *Ref[int64]

	subscribed bool // guarded by app.mu
}

func newInvites(app *App) *Invites {
	return &Invites{
		app:               app,
		Invites:           NewRef([]model.Invite{}),
		Loading:           NewRef(false),
		Error:             NewRef(""),
		AcceptingInviteID: NewRef[int64](0),
	}
}

// FetchInvites loads pending invites. On failure the list is emptied.
func (s *Invites) FetchInvites(ctx context.Context) error {
	s.Loading.Set(true)
	s.Error.Set("")
	defer s.Loading.Set(false)

	invites, err := s.app.client.ListInvites(ctx)
	if err != nil {
		opErr := loadFailure(err, "Unable to load invites")
		s.Error.Set(opErr.Message)
		s.Invites.Set([]model.Invite{})
		return opErr
	}
	if invites == nil {
		invites = []model.Invite{}
	}
	s.Invites.Set(invites)
	s.app.save(ctx, keyInvites, invites)
	return nil
}

// AcceptInvite accepts an invite and removes it from the list.
func (s *Invites) AcceptInvite(ctx context.Context, inviteID int64) (*model.Invite, error) {
	s.AcceptingInviteID.Set(inviteID)
	s.Error.Set("")
	defer s.AcceptingInviteID.Set(0)

	accepted, err := s.app.client.AcceptInvite(ctx, inviteID)
	if err != nil {
		opErr := mutationFailure(err, "Unable to accept invite")
		s.Error.Set(opErr.Message)
		return nil, opErr
	}
	s.Invites.Update(func(invites []model.Invite) []model.Invite {
		return removeByID(invites, inviteID, func(inv model.Invite) int64 { return inv.ID })
	})
	return accepted, nil
}

// ConnectToInviteSocket subscribes, once per App, to invite notifications. A
// pushed invite replaces the one with the same id or goes first in the list.
func (s *Invites) ConnectToInviteSocket() {
	s.app.subscribe(&s.subscribed, model.EventInvite, func(data json.RawMessage, env notify.Envelope) {
		if !env.HasData() {
			return
		}
		var invite model.Invite
		if err := json.Unmarshal(data, &invite); err != nil {
			s.app.logger.Debug().Err(err).Msg("ignoring invite notification")
			return
		}
		s.addOrUpdate(invite)
	})
}

func (s *Invites) addOrUpdate(invite model.Invite) {
	s.Invites.Update(func(invites []model.Invite) []model.Invite {
		for i := range invites {
			if invites[i].ID == invite.ID {
				return replaceByID(invites, invite, func(inv model.Invite) int64 { return inv.ID })
			}
		}
		return prepend(invite, invites)
	})
}
