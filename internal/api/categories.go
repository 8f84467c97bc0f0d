package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/expense-share/client/internal/model"
)

// ListCategories returns the categories of a group.
func (c *Client) ListCategories(ctx context.Context, groupID int64) ([]model.Category, error) {
	var categories []model.Category
	if err := c.do(ctx, http.MethodGet, groupPath(groupID, "categories"), nil, &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

// CreateCategory adds a category to a group.
func (c *Client) CreateCategory(ctx context.Context, groupID int64, req model.CategoryRequest) (*model.Category, error) {
	var category model.Category
	if err := c.do(ctx, http.MethodPost, groupPath(groupID, "categories"), req, &category); err != nil {
		return nil, err
	}
	return &category, nil
}

// UpdateCategory replaces a category.
func (c *Client) UpdateCategory(ctx context.Context, groupID, categoryID int64, req model.CategoryRequest) (*model.Category, error) {
	var category model.Category
	path := groupPath(groupID, "categories", strconv.FormatInt(categoryID, 10))
	if err := c.do(ctx, http.MethodPut, path, req, &category); err != nil {
		return nil, err
	}
	return &category, nil
}

// DeleteCategory removes a category.
func (c *Client) DeleteCategory(ctx context.Context, groupID, categoryID int64) error {
	return c.do(ctx, http.MethodDelete, groupPath(groupID, "categories", strconv.FormatInt(categoryID, 10)), nil, nil)
}
