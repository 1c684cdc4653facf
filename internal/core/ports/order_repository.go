// Package ports defines the contracts between the application core and its
// adapters: repositories bound to a unit of work, and the event publisher.
//
// Error conventions shared by every adapter:
//   - a missing row is an *errs.ObjectNotFoundError
//   - a lost optimistic update is an *errs.VersionIsInvalidError
//   - anything else means the store failed
package ports

import (
	"context"

	"trackit/internal/core/domain/model/kernel"
	"trackit/internal/core/domain/model/order"
)

// OrderRepository defines the persistence contract for order aggregates.
type OrderRepository interface {
	// Add persists a new order and tracks it for event flushing.
	Add(ctx context.Context, aggregate *order.Order) error

	// Update is a compare-and-swap on the version the aggregate was loaded
	// with. It stores Version+1 on success and returns
	// *errs.VersionIsInvalidError when the stored version moved on.
	Update(ctx context.Context, aggregate *order.Order) error

	// Get loads an order by id.
	Get(ctx context.Context, id kernel.UUID) (*order.Order, error)

	// ListActiveByCarrier returns the accepted, not yet delivered orders of a
	// carrier, oldest first.
	ListActiveByCarrier(ctx context.Context, carrierID kernel.UUID) ([]*order.Order, error)

	// ListByCustomer returns every order of a customer, newest first.
	ListByCustomer(ctx context.Context, customerID kernel.UUID) ([]*order.Order, error)
}
