package store

import (
	"context"
	"encoding/json"

	"github.com/expense-share/client/internal/model"
	"github.com/expense-share/client/internal/notify"
)

// Categories is the category list of the group named by a group id cell.
// A zero group id means no group is selected.
type Categories struct {
	app     *App
	groupID *Ref[int64]

	Categories *Ref[[]model.Category]
	Loading    *Ref[bool]
	Error      *Ref[string]
}

// Categories creates a category store bound to groupID.
func (a *App) Categories(groupID *Ref[int64]) *Categories {
	return &Categories{
		app:        a,
		groupID:    groupID,
		Categories: NewRef([]model.Category{}),
		Loading:    NewRef(false),
		Error:      NewRef(""),
	}
}

// FetchCategories loads the categories of the current group. The list is kept
// on failure.
func (s *Categories) FetchCategories(ctx context.Context) error {
	groupID := s.groupID.Get()
	if groupID == 0 {
		return nil
	}
	s.Loading.Set(true)
	s.Error.Set("")
	defer s.Loading.Set(false)

	categories, err := s.app.client.ListCategories(ctx, groupID)
	if err != nil {
		opErr := mutationFailure(err, "Failed to fetch categories")
		s.Error.Set(opErr.Message)
		return opErr
	}
	if categories == nil {
		categories = []model.Category{}
	}
	s.Categories.Set(categories)
	return nil
}

// CreateCategory creates a category in the current group. It returns nil, nil
// when no group is selected. The list is refreshed by FetchCategories or the
// categories_changed notification, not here.
func (s *Categories) CreateCategory(ctx context.Context, req model.CategoryRequest) (*model.Category, error) {
	groupID := s.groupID.Get()
	if groupID == 0 {
		return nil, nil
	}
	created, err := s.app.client.CreateCategory(ctx, groupID, req)
	if err != nil {
		return nil, mutationFailure(err, "Failed to create category")
	}
	return created, nil
}

// UpdateCategory saves a category of the current group.
func (s *Categories) UpdateCategory(ctx context.Context, categoryID int64, req model.CategoryRequest) (*model.Category, error) {
	updated, err := s.app.client.UpdateCategory(ctx, s.groupID.Get(), categoryID, req)
	if err != nil {
		return nil, mutationFailure(err, "Failed to update category")
	}
	return updated, nil
}

// DeleteCategory deletes a category of the current group.
func (s *Categories) DeleteCategory(ctx context.Context, categoryID int64) error {
	if err := s.app.client.DeleteCategory(ctx, s.groupID.Get(), categoryID); err != nil {
		return mutationFailure(err, "Failed to delete category")
	}
	return nil
}

// ConnectToCategoryNotifications subscribes to categories_changed. Only the
// first call per App subscribes; later calls, from any Categories store, do
// nothing. onChange runs on the notification goroutine and only for events
// that carry a group id.
func (s *Categories) ConnectToCategoryNotifications(onChange func(groupID int64, data json.RawMessage)) {
	s.app.subscribe(&s.app.categories, model.EventCategoriesChanged, func(data json.RawMessage, _ notify.Envelope) {
		groupID, ok := groupIDOf(data)
		if ok && onChange != nil {
			onChange(groupID, data)
		}
	})
}
