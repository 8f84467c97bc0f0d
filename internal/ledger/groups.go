package ledger

import (
	"sort"
	"strings"

	"github.com/expense-share/client/internal/model"
)

func (s *Service) groupView(g *groupRecord) model.Group {
	members := make([]model.Member, 0, len(g.members))
	for _, id := range g.members {
		members = append(members, model.Member{ID: id, Username: s.accounts[id].user.Username})
	}
	return model.Group{
		ID:       g.id,
		Name:     g.name,
		OwnerID:  g.ownerID,
		Currency: g.currency,
		Members:  members,
	}
}

// ListGroups returns the groups userID belongs to, oldest first.
func (s *Service) ListGroups(userID int64) []model.Group {
	s.mu.RLock()
	defer s.mu.RUnlock()

	groups := []model.Group{}
	for _, g := range s.groups {
		if g.hasMember(userID) {
			groups = append(groups, s.groupView(g))
		}
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].ID < groups[j].ID })
	return groups
}

// GetGroup returns a group the user belongs to.
func (s *Service) GetGroup(userID, groupID int64) (*model.Group, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	g, err := s.memberGroup(userID, groupID)
	if err != nil {
		return nil, err
	}
	view := s.groupView(g)
	return &view, nil
}

// CreateGroup creates a group owned by userID. The owner and every id in
// MemberIDs become members once each.
func (s *Service) CreateGroup(userID int64, req *model.GroupRequest) (*model.Group, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range req.MemberIDs {
		if _, ok := s.accounts[id]; !ok {
			return nil, fail(model.ErrInvalidRequest, "User not found")
		}
	}

	currency := strings.ToUpper(strings.TrimSpace(req.Currency))
	if currency == "" {
		currency = model.DefaultCurrency
	}
	g := &groupRecord{
		id:       s.nextID("group"),
		name:     strings.TrimSpace(req.Name),
		ownerID:  userID,
		currency: currency,
	}
	g.addMember(userID)
	for _, id := range req.MemberIDs {
		g.addMember(id)
	}
	s.groups[g.id] = g
	s.logger.Debug().Int64("group_id", g.id).Int64("owner_id", userID).Msg("group created")

	view := s.groupView(g)
	return &view, nil
}

// UpdateGroup renames a group, changes its currency when one is given and
// adds any new MemberIDs.
func (s *Service) UpdateGroup(userID, groupID int64, req *model.GroupRequest) (*model.Group, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	g, err := s.memberGroup(userID, groupID)
	if err != nil {
		return nil, err
	}
	for _, id := range req.MemberIDs {
		if _, ok := s.accounts[id]; !ok {
			return nil, fail(model.ErrInvalidRequest, "User not found")
		}
	}

	g.name = strings.TrimSpace(req.Name)
	if c := strings.ToUpper(strings.TrimSpace(req.Currency)); c != "" {
		g.currency = c
	}
	for _, id := range req.MemberIDs {
		g.addMember(id)
	}

	view := s.groupView(g)
	return &view, nil
}

func (s *Service) inviteView(inv *model.Invite) model.Invite {
	out := *inv
	if g, ok := s.groups[inv.GroupID]; ok {
		out.GroupName = g.name
	}
	if a, ok := s.accounts[inv.InviterID]; ok {
		out.Inviter = a.user.Username
	}
	return out
}

// InviteMember invites a user by username and notifies them.
func (s *Service) InviteMember(userID, groupID int64, username string) (*model.Invite, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, err := s.memberGroup(userID, groupID)
	if err != nil {
		return nil, err
	}
	inviteeID, ok := s.usernames[strings.TrimSpace(username)]
	if !ok {
		return nil, fail(model.ErrNotFound, "User not found")
	}
	if g.hasMember(inviteeID) {
		return nil, fail(model.ErrConflict, "User is already a member of this group")
	}
	for _, inv := range s.invites {
		if inv.GroupID == groupID && inv.InviteeID == inviteeID && inv.Status == model.InvitePending {
			return nil, fail(model.ErrConflict, "User already has a pending invite")
		}
	}

	inv := &model.Invite{
		ID:        s.nextID("invite"),
		GroupID:   groupID,
		InviterID: userID,
		InviteeID: inviteeID,
		Status:    model.InvitePending,
		CreatedAt: s.timestamp(),
	}
	s.invites[inv.ID] = inv

	view := s.inviteView(inv)
	s.publish([]int64{inviteeID}, model.EventInvite, view)
	return &view, nil
}

// ListInvites returns the pending invites addressed to userID, newest first.
func (s *Service) ListInvites(userID int64) []model.Invite {
	s.mu.RLock()
	defer s.mu.RUnlock()

	invites := []model.Invite{}
	for _, inv := range s.invites {
		if inv.InviteeID == userID && inv.Status == model.InvitePending {
			invites = append(invites, s.inviteView(inv))
		}
	}
	sort.Slice(invites, func(i, j int) bool { return invites[i].ID > invites[j].ID })
	return invites
}

// AcceptInvite marks the invite accepted and adds the invitee to the group.
func (s *Service) AcceptInvite(userID, inviteID int64) (*model.Invite, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	inv, ok := s.invites[inviteID]
	if !ok || inv.InviteeID != userID {
		return nil, fail(model.ErrNotFound, "Invite not found")
	}
	if inv.Status != model.InvitePending {
		return nil, fail(model.ErrConflict, "Invite is no longer pending")
	}
	g, ok := s.groups[inv.GroupID]
	if !ok {
		return nil, fail(model.ErrNotFound, "Group not found")
	}

	inv.Status = model.InviteAccepted
	g.addMember(userID)

	view := s.inviteView(inv)
	return &view, nil
}

func cloneCategory(c *model.Category) model.Category {
	out := *c
	out.Splits = append([]model.CategorySplit{}, c.Splits...)
	return out
}

// resolveSplits fills in user ids from usernames.
func (s *Service) resolveSplits(splits []model.CategorySplit) ([]model.CategorySplit, error) {
	out := make([]model.CategorySplit, 0, len(splits))
	for _, sp := range splits {
		id, ok := s.usernames[strings.TrimSpace(sp.Username)]
		if !ok {
			return nil, fail(model.ErrInvalidRequest, "User not found")
		}
		if sp.Share <= 0 {
			return nil, model.ErrInvalidAmount
		}
		out = append(out, model.CategorySplit{UserID: id, Username: s.accounts[id].user.Username, Share: sp.Share})
	}
	return out, nil
}

// ListCategories returns the categories of a group, oldest first.
func (s *Service) ListCategories(userID, groupID int64) ([]model.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, err := s.memberGroup(userID, groupID); err != nil {
		return nil, err
	}
	categories := []model.Category{}
	for _, c := range s.categories {
		if c.GroupID == groupID {
			categories = append(categories, cloneCategory(c))
		}
	}
	sort.Slice(categories, func(i, j int) bool { return categories[i].ID < categories[j].ID })
	return categories, nil
}

// CreateCategory adds a category and notifies the group.
func (s *Service) CreateCategory(userID, groupID int64, req *model.CategoryRequest) (*model.Category, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	g, err := s.memberGroup(userID, groupID)
	if err != nil {
		return nil, err
	}
	splits, err := s.resolveSplits(req.Splits)
	if err != nil {
		return nil, err
	}

	c := &model.Category{
		ID:          s.nextID("category"),
		GroupID:     groupID,
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		BudgetCents: req.BudgetCents,
		Splits:      splits,
		CreatedAt:   s.timestamp(),
	}
	s.categories[c.ID] = c
	s.publish(g.members, model.EventCategoriesChanged, model.GroupEvent{GroupID: groupID})

	out := cloneCategory(c)
	return &out, nil
}

func (s *Service) groupCategory(groupID, categoryID int64) (*model.Category, error) {
	c, ok := s.categories[categoryID]
	if !ok || c.GroupID != groupID {
		return nil, fail(model.ErrNotFound, "Category not found")
	}
	return c, nil
}

// UpdateCategory replaces a category's fields and splits.
func (s *Service) UpdateCategory(userID, groupID, categoryID int64, req *model.CategoryRequest) (*model.Category, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	g, err := s.memberGroup(userID, groupID)
	if err != nil {
		return nil, err
	}
	c, err := s.groupCategory(groupID, categoryID)
	if err != nil {
		return nil, err
	}
	splits, err := s.resolveSplits(req.Splits)
	if err != nil {
		return nil, err
	}

	c.Name = strings.TrimSpace(req.Name)
	c.Description = req.Description
	c.BudgetCents = req.BudgetCents
	c.Splits = splits
	s.publish(g.members, model.EventCategoriesChanged, model.GroupEvent{GroupID: groupID})

	out := cloneCategory(c)
	return &out, nil
}

// DeleteCategory removes a category. Expenses and subscriptions that used it
// keep existing without a category.
func (s *Service) DeleteCategory(userID, groupID, categoryID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, err := s.memberGroup(userID, groupID)
	if err != nil {
		return err
	}
	if _, err := s.groupCategory(groupID, categoryID); err != nil {
		return err
	}

	delete(s.categories, categoryID)
	for _, e := range s.expenses {
		if e.CategoryID != nil && *e.CategoryID == categoryID {
			e.CategoryID = nil
		}
	}
	for _, sub := range s.subscriptions {
		if sub.CategoryID != nil && *sub.CategoryID == categoryID {
			sub.CategoryID = nil
		}
	}
	s.publish(g.members, model.EventCategoriesChanged, model.GroupEvent{GroupID: groupID})
	return nil
}
