package store

import (
	"context"

	"github.com/expense-share/client/internal/model"
)

// Profile holds the user's spending summary across groups.
type Profile struct {
	app *App

	Summary *Ref[*model.SpendingSummary]
	Loading *Ref[bool]
	Error   *Ref[string]
}

func newProfile(app *App) *Profile {
	return &Profile{
		app:     app,
		Summary: NewRef[*model.SpendingSummary](nil),
		Loading: NewRef(false),
		Error:   NewRef(""),
	}
}

// FetchSpendingSummary loads the summary. On failure it is reset to nil.
func (s *Profile) FetchSpendingSummary(ctx context.Context) error {
	s.Loading.Set(true)
	s.Error.Set("")
	defer s.Loading.Set(false)

	summary, err := s.app.client.SpendingSummary(ctx)
	if err != nil {
		opErr := loadFailure(err, "Unable to load spending summary")
		s.Error.Set(opErr.Message)
		s.Summary.Set(nil)
		return opErr
	}
	s.Summary.Set(summary)
	s.app.save(ctx, keySummary, summary)
	return nil
}
