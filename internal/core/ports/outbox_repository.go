package ports

import (
	"context"
	"time"

	"trackit/internal/core/domain/model/kernel"
	"trackit/internal/core/domain/model/order"
)

// OutboxRepository keeps lifecycle events until the relay job has published them.
type OutboxRepository interface {
	// Add stores events in the current transaction.
	Add(ctx context.Context, events ...order.Event) error

	// ListPending returns up to limit unpublished events, oldest first.
	ListPending(ctx context.Context, limit int) ([]order.Event, error)

	// MarkPublished flags an event as delivered to the transport.
	MarkPublished(ctx context.Context, eventID kernel.UUID, at time.Time) error
}
