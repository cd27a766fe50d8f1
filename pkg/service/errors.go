package service

import (
	"errors"
	"fmt"
)

var (
	ErrNoItems       = errors.New("order contains no items")
	ErrInvalidStatus = errors.New("invalid status")
)

// ItemNotFoundError rejects the whole order when a line item references a
// menu item that does not exist.
type ItemNotFoundError struct {
	ItemID string
	Name   string
}

func (e *ItemNotFoundError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("menu item %q not found", e.Name)
	}
	return fmt.Sprintf("menu item %s not found", e.ItemID)
}

// InsufficientStockError names the item and the actual remaining count so
// the customer sees an actionable message.
type InsufficientStockError struct {
	Name      string
	Requested int
	Remaining int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %q: requested %d, only %d remaining",
		e.Name, e.Requested, e.Remaining)
}

// InvalidQuantityError rejects non-positive line item quantities.
type InvalidQuantityError struct {
	Name     string
	Quantity int
}

func (e *InvalidQuantityError) Error() string {
	return fmt.Sprintf("invalid quantity %d for item %q", e.Quantity, e.Name)
}
