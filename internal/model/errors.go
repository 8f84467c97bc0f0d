package model

import "errors"

var (
	// ErrNameRequired is returned when a group, category or subscription is missing its name.
	ErrNameRequired = errors.New("name is required")

	// ErrInvalidAmount is returned when an amount is zero or negative.
	ErrInvalidAmount = errors.New("amount must be positive")

	// ErrSplitMismatch is returned when expense splits do not add up to the expense amount.
	ErrSplitMismatch = errors.New("splits must add up to the expense amount")

	// ErrInvalidCadence is returned when a subscription cadence is not monthly, quarterly or yearly.
	ErrInvalidCadence = errors.New("cadence must be monthly, quarterly or yearly")

	// ErrInvalidDate is returned when a date is not in YYYY-MM-DD form.
	ErrInvalidDate = errors.New("date must be formatted as YYYY-MM-DD")

	// ErrSelfSettlement is returned when payer and receiver are the same user.
	ErrSelfSettlement = errors.New("payer and receiver must differ")

	// ErrInvalidRequest is returned when a request references unknown or unrelated resources.
	ErrInvalidRequest = errors.New("invalid request")

	// ErrNotFound is returned when a resource is not found.
	ErrNotFound = errors.New("not found")

	// ErrUnauthorized is returned when a user is not authenticated.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden is returned when access to a resource is forbidden.
	ErrForbidden = errors.New("forbidden")

	// ErrConflict is returned when a resource already exists or is in the wrong state.
	ErrConflict = errors.New("conflict")
)
