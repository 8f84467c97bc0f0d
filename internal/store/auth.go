package store

import (
	"context"

	"github.com/expense-share/client/internal/api"
	"github.com/expense-share/client/internal/model"
)

// Auth tracks the signed-in user.
type Auth struct {
	app *App

	CurrentUser *Ref[*model.User]
	// AuthLoaded turns true after the first FetchCurrentUser, whatever its outcome.
	AuthLoaded *Ref[bool]
}

func newAuth(app *App) *Auth {
	return &Auth{
		app:         app,
		CurrentUser: NewRef[*model.User](nil),
		AuthLoaded:  NewRef(false),
	}
}

// FetchCurrentUser loads the session user. Any failure leaves the user nil.
func (s *Auth) FetchCurrentUser(ctx context.Context) {
	defer s.AuthLoaded.Set(true)

	user, err := s.app.client.Me(ctx)
	if err != nil {
		s.app.logger.Debug().Err(err).Msg("not authenticated")
		s.CurrentUser.Set(nil)
		return
	}
	s.CurrentUser.Set(user)
}

// Login starts a session and loads the user.
func (s *Auth) Login(ctx context.Context, username, password string) error {
	if err := s.app.client.Login(ctx, username, password); err != nil {
		return mutationFailure(err, "Invalid username or password")
	}
	s.FetchCurrentUser(ctx)
	return nil
}

// Logout ends the session. The user and the snapshot cache are cleared
// whatever the server answers; only a transport failure leaves them in place.
func (s *Auth) Logout(ctx context.Context) error {
	if err := s.app.client.Logout(ctx); err != nil && api.StatusCode(err) == 0 {
		return err
	}
	s.CurrentUser.Set(nil)
	s.app.clearSnapshots(ctx)
	return nil
}

// Loaded reports whether the user has been fetched at least once.
func (s *Auth) Loaded() bool {
	return s.AuthLoaded.Get()
}

// Authenticated reports whether a user is signed in.
func (s *Auth) Authenticated() bool {
	return s.CurrentUser.Get() != nil
}
