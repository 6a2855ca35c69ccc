// Package store is the persistence boundary for tracked orders. The
// tracking job depends only on the OrderStore interface.
package store

import (
	"context"
	"errors"

	"variant-tracker/internal/types"
)

// ErrVersionConflict is returned by Save when the order row changed since
// it was loaded.
var ErrVersionConflict = errors.New("order modified concurrently")

// OrderStore persists tracked orders and their observation history.
type OrderStore interface {
	// ListTracked loads every tracked order with its full history.
	ListTracked(ctx context.Context) ([]types.TrackedOrder, error)
	// Save writes an updated order atomically: the counter update and any
	// newly appended observations either all land or none do.
	Save(ctx context.Context, order *types.TrackedOrder) error
	// Create inserts a new order, assigning an id when none is set.
	Create(ctx context.Context, order *types.TrackedOrder) error
}
