package domain

import "errors"

// ErrNotFound is returned by the order store when no record matches.
var ErrNotFound = errors.New("order not found in store")

// Finalization failure kinds. Callers match them with errors.Is; the wrapped
// cause stays reachable through the same chain.
var (
	ErrOrderNotFound = errors.New("order not found")
	ErrNotification  = errors.New("notification failed")
	ErrPersistence   = errors.New("persistence failed")
)

// ErrInvalidOrder rejects a new order before anything is stored.
var ErrInvalidOrder = errors.New("invalid order")
