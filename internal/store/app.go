// Package store holds the client-side state of the expense-sharing app:
// reactive cells filled from the REST API and kept fresh by notifications.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/expense-share/client/internal/api"
	"github.com/expense-share/client/internal/model"
	"github.com/expense-share/client/internal/notify"
	"github.com/expense-share/client/internal/repository"
)

// Snapshot cache keys.
const (
	keyGroups            = "groups"
	keyInvites           = "invites"
	keySummary           = "profile/summary"
	keyExpensesPrefix    = "expenses/"
	keySettlementsPrefix = "settlements/"
)

// Subscriber is the notification source the stores subscribe to.
type Subscriber interface {
	Subscribe(eventType string, handler notify.Handler) (unsubscribe func())
}

// SnapshotStore persists the last successfully fetched payloads.
type SnapshotStore interface {
	Put(ctx context.Context, s *repository.Snapshot) error
	List(ctx context.Context, prefix string) ([]*repository.Snapshot, error)
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
}

// Options configures an App.
type Options struct {
	Client *api.Client
	// Notifications is nil when there is no notification socket; the
	// Connect* methods are then no-ops.
	Notifications Subscriber
	Snapshots     SnapshotStore
	Logger        *zerolog.Logger
}

// App owns the shared stores. Auth, Groups, Expenses, Invites and Profile are
// singletons; Categories and Subscriptions are created per use.
type App struct {
	client    *api.Client
	notify    Subscriber
	snapshots SnapshotStore
	logger    zerolog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu          sync.Mutex
	closed      bool
	unsubscribe []func()
	categories  bool

	Auth     *Auth
	Groups   *Groups
	Expenses *Expenses
	Invites  *Invites
	Profile  *Profile
}

// NewApp creates an App.
func NewApp(opts Options) (*App, error) {
	if opts.Client == nil {
		return nil, errors.New("api client is required")
	}
	logger := zerolog.Nop()
	if opts.Logger != nil {
		logger = opts.Logger.With().Str("component", "store").Logger()
	}

	ctx, cancel := context.WithCancel(context.Background())
	a := &App{
		client:    opts.Client,
		notify:    opts.Notifications,
		snapshots: opts.Snapshots,
		logger:    logger,
		ctx:       ctx,
		cancel:    cancel,
	}
	a.Auth = newAuth(a)
	a.Groups = newGroups(a)
	a.Expenses = newExpenses(a)
	a.Invites = newInvites(a)
	a.Profile = newProfile(a)
	return a, nil
}

// Client returns the API client the stores use.
func (a *App) Client() *api.Client {
	return a.client
}

// Close drops every notification subscription made through the stores and
// waits for background refetches to finish.
func (a *App) Close() error {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return nil
	}
	a.closed = true
	unsubscribe := a.unsubscribe
	a.unsubscribe = nil
	a.mu.Unlock()

	for _, fn := range unsubscribe {
		fn()
	}
	a.cancel()
	a.wg.Wait()
	return nil
}

// Wait blocks until background refetches started so far have finished.
func (a *App) Wait() {
	a.wg.Wait()
}

// subscribe registers handler once for the App. claimed reports whether the
// guard was already taken. It returns false when there is no notification
// source or the App is closed.
func (a *App) subscribe(claimed *bool, eventType string, handler notify.Handler) bool {
	if a.notify == nil {
		return false
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed || *claimed {
		return false
	}
	*claimed = true
	a.unsubscribe = append(a.unsubscribe, a.notify.Subscribe(eventType, handler))
	return true
}

// background runs fn on its own goroutine bound to the App's lifetime.
func (a *App) background(fn func(ctx context.Context)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return
	}
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		fn(a.ctx)
	}()
}

func (a *App) save(ctx context.Context, key string, v any) {
	if a.snapshots == nil {
		return
	}
	payload, err := json.Marshal(v)
	if err != nil {
		a.logger.Warn().Err(err).Str("key", key).Msg("encode snapshot")
		return
	}
	if err := a.snapshots.Put(ctx, &repository.Snapshot{Key: key, Payload: payload}); err != nil {
		a.logger.Warn().Err(err).Str("key", key).Msg("save snapshot")
	}
}

// forget drops cached payloads that no longer reflect the server.
func (a *App) forget(ctx context.Context, keys ...string) {
	if a.snapshots == nil {
		return
	}
	for _, key := range keys {
		err := a.snapshots.Delete(ctx, key)
		if err != nil && !errors.Is(err, repository.ErrSnapshotNotFound) {
			a.logger.Warn().Err(err).Str("key", key).Msg("delete snapshot")
		}
	}
}

// clearSnapshots empties the cache so another user never restores it.
func (a *App) clearSnapshots(ctx context.Context) {
	if a.snapshots == nil {
		return
	}
	if err := a.snapshots.Clear(ctx); err != nil {
		a.logger.Warn().Err(err).Msg("clear snapshots")
	}
}

// Restore fills the stores from the snapshot cache and returns how many
// snapshots were applied. Undecodable snapshots are skipped.
func (a *App) Restore(ctx context.Context) (int, error) {
	if a.snapshots == nil {
		return 0, nil
	}
	snapshots, err := a.snapshots.List(ctx, "")
	if err != nil {
		return 0, fmt.Errorf("list snapshots: %w", err)
	}

	restored := 0
	for _, s := range snapshots {
		if err := a.restoreOne(s); err != nil {
			a.logger.Warn().Err(err).Str("key", s.Key).Msg("skipping snapshot")
			continue
		}
		restored++
	}
	a.logger.Debug().Int("restored", restored).Msg("snapshots restored")
	return restored, nil
}

func (a *App) restoreOne(s *repository.Snapshot) error {
	switch {
	case s.Key == keyGroups:
		return restoreInto(s.Payload, a.Groups.Groups)
	case s.Key == keyInvites:
		return restoreInto(s.Payload, a.Invites.Invites)
	case s.Key == keySummary:
		return restoreInto(s.Payload, a.Profile.Summary)
	case strings.HasPrefix(s.Key, keyExpensesPrefix):
		groupID, err := strconv.ParseInt(strings.TrimPrefix(s.Key, keyExpensesPrefix), 10, 64)
		if err != nil {
			return err
		}
		var expenses []model.Expense
		if err := json.Unmarshal(s.Payload, &expenses); err != nil {
			return err
		}
		a.Expenses.setExpenses(groupID, expenses)
		return nil
	case strings.HasPrefix(s.Key, keySettlementsPrefix):
		groupID, err := strconv.ParseInt(strings.TrimPrefix(s.Key, keySettlementsPrefix), 10, 64)
		if err != nil {
			return err
		}
		var summary model.SettlementSummary
		if err := json.Unmarshal(s.Payload, &summary); err != nil {
			return err
		}
		a.Expenses.setSettlements(groupID, summary)
		return nil
	}
	return fmt.Errorf("unknown snapshot key %q", s.Key)
}

func restoreInto[T any](payload []byte, ref *Ref[T]) error {
	var v T
	if err := json.Unmarshal(payload, &v); err != nil {
		return err
	}
	ref.Set(v)
	return nil
}

func expensesKey(groupID int64) string {
	return keyExpensesPrefix + strconv.FormatInt(groupID, 10)
}

func settlementsKey(groupID int64) string {
	return keySettlementsPrefix + strconv.FormatInt(groupID, 10)
}

// groupIDOf extracts a non-zero group_id from notification data.
func groupIDOf(data json.RawMessage) (int64, bool) {
	var ev model.GroupEvent
	if len(data) == 0 || json.Unmarshal(data, &ev) != nil || ev.GroupID == 0 {
		return 0, false
	}
	return ev.GroupID, true
}
