// Package ledger is an in-memory expense-sharing backend used by the dev
// server and by end-to-end tests of the client.
package ledger

import (
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/expense-share/client/internal/model"
)

// DemoPassword is the password of every seeded account.
const DemoPassword = "password"

// Publisher delivers an event to the notification sockets of the given users.
// Publish is called with the service lock held, so it must not block or call
// back into the Service.
type Publisher interface {
	Publish(userIDs []int64, eventType string, data any)
}

// Config holds configuration for the service.
type Config struct {
	Publisher Publisher
	Now       func() time.Time
	Logger    *zerolog.Logger
}

// Error is a failure with a client-facing detail message. Kind is one of the
// model sentinel errors and decides the HTTP status.
type Error struct {
	Kind   error
	Detail string
}

func (e *Error) Error() string { return e.Detail }

func (e *Error) Unwrap() error { return e.Kind }

func fail(kind error, detail string) error {
	return &Error{Kind: kind, Detail: detail}
}

// Detail returns the message a client should see for err.
func Detail(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Detail
	}
	return err.Error()
}

type account struct {
	user     model.User
	password string
}

type groupRecord struct {
	id       int64
	name     string
	ownerID  int64
	currency string
	members  []int64
}

func (g *groupRecord) hasMember(userID int64) bool {
	for _, id := range g.members {
		if id == userID {
			return true
		}
	}
	return false
}

// addMember is idempotent.
func (g *groupRecord) addMember(userID int64) {
	if !g.hasMember(userID) {
		g.members = append(g.members, userID)
	}
}

// Service holds every account, group and ledger entry in memory.
type Service struct {
	publisher Publisher
	now       func() time.Time
	logger    zerolog.Logger

	mu            sync.RWMutex
	seq           map[string]int64
	accounts      map[int64]*account
	usernames     map[string]int64
	sessions      map[string]int64
	groups        map[int64]*groupRecord
	categories    map[int64]*model.Category
	expenses      map[int64]*model.Expense
	settlements   map[int64]*model.Settlement
	invites       map[int64]*model.Invite
	subscriptions map[int64]*model.Subscription
}

// NewService creates an empty Service.
func NewService(cfg Config) *Service {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	logger := zerolog.Nop()
	if cfg.Logger != nil {
		logger = cfg.Logger.With().Str("component", "ledger").Logger()
	}
	return &Service{
		publisher:     cfg.Publisher,
		now:           cfg.Now,
		logger:        logger,
		seq:           make(map[string]int64),
		accounts:      make(map[int64]*account),
		usernames:     make(map[string]int64),
		sessions:      make(map[string]int64),
		groups:        make(map[int64]*groupRecord),
		categories:    make(map[int64]*model.Category),
		expenses:      make(map[int64]*model.Expense),
		settlements:   make(map[int64]*model.Settlement),
		invites:       make(map[int64]*model.Invite),
		subscriptions: make(map[int64]*model.Subscription),
	}
}

// SeedDemo registers alice, bob and cara and a "Flat share" group owned by
// alice with bob as a member.
func (s *Service) SeedDemo() error {
	var ids []int64
	for _, name := range []string{"alice", "bob", "cara"} {
		u, err := s.RegisterUser(name, name+"@example.com", DemoPassword)
		if err != nil {
			return err
		}
		ids = append(ids, u.ID)
	}
	_, err := s.CreateGroup(ids[0], &model.GroupRequest{Name: "Flat share", MemberIDs: []int64{ids[1]}})
	return err
}

func (s *Service) nextID(kind string) int64 {
	s.seq[kind]++
	return s.seq[kind]
}

func (s *Service) timestamp() string {
	return s.now().UTC().Format(time.RFC3339Nano)
}

func (s *Service) publish(userIDs []int64, eventType string, data any) {
	if s.publisher == nil || len(userIDs) == 0 {
		return
	}
	s.publisher.Publish(append([]int64(nil), userIDs...), eventType, data)
}

// RegisterUser creates an account.
func (s *Service) RegisterUser(username, email, password string) (*model.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, model.ErrNameRequired
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.usernames[username]; ok {
		return nil, fail(model.ErrConflict, "Username already taken")
	}
	a := &account{
		user:     model.User{ID: s.nextID("user"), Username: username, Email: email},
		password: password,
	}
	s.accounts[a.user.ID] = a
	s.usernames[username] = a.user.ID

	u := a.user
	return &u, nil
}

// Login checks the credentials and opens a session.
func (s *Service) Login(username, password string) (string, *model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.usernames[username]
	if !ok || s.accounts[id].password != password {
		return "", nil, fail(model.ErrUnauthorized, "Invalid username or password")
	}
	token := uuid.New().String()
	s.sessions[token] = id
	s.logger.Info().Str("username", username).Msg("user logged in")

	u := s.accounts[id].user
	return token, &u, nil
}

// Logout ends the session; unknown tokens are ignored.
func (s *Service) Logout(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, token)
}

// Authenticate returns the user owning the session token.
func (s *Service) Authenticate(token string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.sessions[token]
	if !ok {
		return nil, fail(model.ErrUnauthorized, "Not authenticated")
	}
	u := s.accounts[id].user
	return &u, nil
}

// UserByName looks up an account by username.
func (s *Service) UserByName(username string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.usernames[username]
	if !ok {
		return nil, fail(model.ErrNotFound, "User not found")
	}
	u := s.accounts[id].user
	return &u, nil
}

// memberGroup returns the group when userID belongs to it.
func (s *Service) memberGroup(userID, groupID int64) (*groupRecord, error) {
	g, ok := s.groups[groupID]
	if !ok {
		return nil, fail(model.ErrNotFound, "Group not found")
	}
	if !g.hasMember(userID) {
		return nil, fail(model.ErrForbidden, "You are not a member of this group")
	}
	return g, nil
}
