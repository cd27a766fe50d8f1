package repository

import "errors"

var (
	ErrOrderNotFound    = errors.New("order not found")
	ErrMenuItemNotFound = errors.New("menu item not found")
	ErrCategoryNotFound = errors.New("category not found")
	ErrSettingsNotFound = errors.New("settings not found")

	// ErrInsufficientStock is returned by the conditional stock decrement
	// when the remaining quantity cannot cover the request.
	ErrInsufficientStock = errors.New("insufficient stock")

	// ErrCategoryInUse blocks deletion while menu items reference the
	// category by name.
	ErrCategoryInUse = errors.New("category is referenced by menu items")

	// ErrCollectionNotClearable rejects bulk deletes outside the whitelist.
	ErrCollectionNotClearable = errors.New("collection cannot be cleared")
)
