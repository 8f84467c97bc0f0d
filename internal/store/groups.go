package store

import (
	"context"
	"net/http"

	"github.com/expense-share/client/internal/api"
	"github.com/expense-share/client/internal/model"
)

// Groups holds the user's groups and the group being viewed.
type Groups struct {
	app *App

	Groups        *Ref[[]model.Group]
	LoadingGroups *Ref[bool]
	GroupsError   *Ref[string]

	ActiveGroup  *Ref[*model.Group]
	LoadingGroup *Ref[bool]
	GroupError   *Ref[string]

	CreatingGroup    *Ref[bool]
	CreateGroupError *Ref[string]
}

func newGroups(app *App) *Groups {
	return &Groups{
		app:              app,
		Groups:           NewRef([]model.Group{}),
		LoadingGroups:    NewRef(false),
		GroupsError:      NewRef(""),
		ActiveGroup:      NewRef[*model.Group](nil),
		LoadingGroup:     NewRef(false),
		GroupError:       NewRef(""),
		CreatingGroup:    NewRef(false),
		CreateGroupError: NewRef(""),
	}
}

// FetchGroups loads the group list. On failure the list is emptied.
func (s *Groups) FetchGroups(ctx context.Context) error {
	s.LoadingGroups.Set(true)
	s.GroupsError.Set("")
	defer s.LoadingGroups.Set(false)

	groups, err := s.app.client.ListGroups(ctx)
	if err != nil {
		opErr := loadFailure(err, "Unable to load groups")
		s.GroupsError.Set(opErr.Message)
		s.Groups.Set([]model.Group{})
		return opErr
	}
	if groups == nil {
		groups = []model.Group{}
	}
	s.Groups.Set(groups)
	s.app.save(ctx, keyGroups, groups)
	return nil
}

// FetchGroup loads one group into ActiveGroup. On failure ActiveGroup is nil.
func (s *Groups) FetchGroup(ctx context.Context, groupID int64) error {
	s.LoadingGroup.Set(true)
	s.GroupError.Set("")
	defer s.LoadingGroup.Set(false)

	group, err := s.app.client.GetGroup(ctx, groupID)
	if err != nil {
		var opErr *OpError
		switch api.StatusCode(err) {
		case http.StatusNotFound:
			opErr = &OpError{Message: "Group not found", Err: err}
		case http.StatusForbidden:
			opErr = &OpError{Message: "You do not have access to this group", Err: err}
		default:
			opErr = loadFailure(err, "Unable to load group")
		}
		s.GroupError.Set(opErr.Message)
		s.ActiveGroup.Set(nil)
		return opErr
	}
	s.ActiveGroup.Set(group)
	return nil
}

// CreateGroup creates a group and puts it first in the list.
func (s *Groups) CreateGroup(ctx context.Context, req model.GroupRequest) (*model.Group, error) {
	s.CreatingGroup.Set(true)
	s.CreateGroupError.Set("")
	defer s.CreatingGroup.Set(false)

	created, err := s.app.client.CreateGroup(ctx, req)
	if err != nil {
		opErr := mutationFailure(err, "Unable to create group")
		s.CreateGroupError.Set(opErr.Message)
		return nil, opErr
	}
	s.Groups.Update(func(groups []model.Group) []model.Group {
		return prepend(*created, groups)
	})
	return created, nil
}

// UpdateGroup saves a group and replaces it in the list and, when it is the
// one being viewed, in ActiveGroup.
func (s *Groups) UpdateGroup(ctx context.Context, groupID int64, req model.GroupRequest) (*model.Group, error) {
	updated, err := s.app.client.UpdateGroup(ctx, groupID, req)
	if err != nil {
		return nil, mutationFailure(err, "Unable to update group")
	}
	s.ActiveGroup.Update(func(active *model.Group) *model.Group {
		if active != nil && active.ID == updated.ID {
			return updated
		}
		return active
	})
	s.Groups.Update(func(groups []model.Group) []model.Group {
		return replaceByID(groups, *updated, func(g model.Group) int64 { return g.ID })
	})
	return updated, nil
}

// InviteMember invites a user to a group by username.
func (s *Groups) InviteMember(ctx context.Context, groupID int64, username string) (*model.Invite, error) {
	invite, err := s.app.client.InviteMember(ctx, groupID, username)
	if err != nil {
		return nil, mutationFailure(err, "Unable to invite member")
	}
	return invite, nil
}

func prepend[T any](item T, list []T) []T {
	out := make([]T, 0, len(list)+1)
	out = append(out, item)
	return append(out, list...)
}

// replaceByID returns a copy of list with the element matching item's id
// replaced. The list is returned unchanged when there is no match.
func replaceByID[T any](list []T, item T, id func(T) int64) []T {
	out := make([]T, len(list))
	copy(out, list)
	for i := range out {
		if id(out[i]) == id(item) {
			out[i] = item
		}
	}
	return out
}

func removeByID[T any](list []T, target int64, id func(T) int64) []T {
	out := make([]T, 0, len(list))
	for _, item := range list {
		if id(item) != target {
			out = append(out, item)
		}
	}
	return out
}
