package services

import (
	"errors"
	"fmt"
)

// ErrDuplicateResource is returned by LockStore.Insert when the unique index
// on resource_key rejects the create. It signals contention, not a fault.
var ErrDuplicateResource = errors.New("lock resource already exists")

// ErrReservationConflict means the requested table set overlaps an existing
// pending or confirmed reservation for the same date and time. Retrying the
// identical request cannot succeed.
var ErrReservationConflict = errors.New("tables already reserved for this slot")

// ErrItemUnavailable means a requested catalog item is inactive.
type ErrItemUnavailable struct {
	Food_id string
}

func (e *ErrItemUnavailable) Error() string {
	return fmt.Sprintf("item %s is not available", e.Food_id)
}

// ErrInsufficientStock is a business rejection, not a race: the effective
// quantity at validation time could not cover the request.
type ErrInsufficientStock struct {
	Food_id   string
	Requested int
	Available int
}

func (e *ErrInsufficientStock) Error() string {
	return fmt.Sprintf("insufficient stock for %s: requested %d, available %d", e.Food_id, e.Requested, e.Available)
}

// ErrStockConflict means the optimistic version check kept failing past the
// retry budget. The client may retry with fresh data.
type ErrStockConflict struct {
	Food_id  string
	Attempts int
}

func (e *ErrStockConflict) Error() string {
	return fmt.Sprintf("stock version conflict on %s after %d attempts", e.Food_id, e.Attempts)
}

// ErrLockExhausted means every acquisition attempt found the resource held.
// Maps to a "system busy, retry" response at the edge.
type ErrLockExhausted struct {
	Resource string
	Attempts int
}

func (e *ErrLockExhausted) Error() string {
	return fmt.Sprintf("could not acquire lock on %s after %d attempts", e.Resource, e.Attempts)
}
