package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/expense-share/client/internal/api"
	"github.com/expense-share/client/internal/config"
	"github.com/expense-share/client/internal/db"
	"github.com/expense-share/client/internal/logging"
	"github.com/expense-share/client/internal/notify"
	"github.com/expense-share/client/internal/repository"
	"github.com/expense-share/client/internal/store"
)

// cliEnv is everything a command needs: config, stores and, when enabled,
// the notification relay.
type cliEnv struct {
	cfg    *config.Config
	logger *zerolog.Logger
	app    *store.App
	relay  *notify.Relay

	closers []func()
}

// Close releases resources in reverse order of acquisition.
func (e *cliEnv) Close() {
	for i := len(e.closers) - 1; i >= 0; i-- {
		e.closers[i]()
	}
}

// newEnv loads configuration and builds the stores. Unless offline, it loads
// the current user and logs in with the configured credentials when there is
// none. Without credentials the stores stay signed out.
func newEnv(ctx context.Context) (_ *cliEnv, err error) {
	cfg, err := config.Load(configFlag, envFileFlag)
	if err != nil {
		return nil, err
	}
	if baseURLFlag != "" {
		cfg.BaseURL = baseURLFlag
	}

	env := &cliEnv{cfg: cfg}
	defer func() {
		if err != nil {
			env.Close()
		}
	}()

	cleanup, err := logging.Init(cfg.LogFile, cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	env.closers = append(env.closers, cleanup)
	env.logger = logging.Get()
	for _, w := range cfg.Validate() {
		env.logger.Warn().Msg(w)
	}

	client, err := api.New(api.Config{BaseURL: cfg.BaseURL, Timeout: cfg.RequestTimeout, Logger: env.logger})
	if err != nil {
		return nil, err
	}

	opts := store.Options{Client: client, Logger: env.logger}

	if !cfg.NotificationsDisabled {
		wsURL, err := notify.NotificationsURL(cfg.BaseURL)
		if err != nil {
			return nil, err
		}
		env.relay = notify.NewRelay(notify.Config{
			URL:            wsURL,
			ReconnectDelay: cfg.ReconnectDelay,
			HistorySize:    cfg.HistorySize,
			Dialer:         notify.NewWebSocketDialer(client.Jar()),
			Logger:         env.logger,
		})
		env.closers = append(env.closers, func() { env.relay.Close() })
		opts.Notifications = env.relay
	}

	if cfg.CacheDB != "" {
		database, err := db.InitDB(cfg.CacheDB)
		if err != nil {
			return nil, fmt.Errorf("open snapshot cache: %w", err)
		}
		env.closers = append(env.closers, db.ResetDB)
		opts.Snapshots = repository.NewSnapshotRepository(database)
	} else if offlineFlag {
		return nil, errors.New("--offline needs a snapshot cache; set cache_db or LEDGER_CACHE_DB")
	}

	env.app, err = store.NewApp(opts)
	if err != nil {
		return nil, err
	}
	env.closers = append(env.closers, func() { env.app.Close() })

	if offlineFlag {
		n, err := env.app.Restore(ctx)
		if err != nil {
			return nil, err
		}
		env.logger.Debug().Int("snapshots", n).Msg("restored from cache")
		return env, nil
	}

	if err := env.signIn(ctx); err != nil {
		return nil, err
	}
	return env, nil
}

func (e *cliEnv) signIn(ctx context.Context) error {
	e.app.Auth.FetchCurrentUser(ctx)
	if e.app.Auth.Authenticated() {
		return nil
	}
	if e.cfg.Username == "" {
		e.logger.Debug().Msg("no credentials configured")
		return nil
	}
	return e.app.Auth.Login(ctx, e.cfg.Username, e.cfg.Password)
}

// online runs fetch unless the command is reading from the cache.
func online(ctx context.Context, fetch func(context.Context) error) error {
	if offlineFlag {
		return nil
	}
	return fetch(ctx)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func parseID(arg, what string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s %q", what, arg)
	}
	return id, nil
}
