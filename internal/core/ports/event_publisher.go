package ports

import (
	"context"

	"trackit/internal/core/domain/model/order"
)

// EventPublisher fans a lifecycle event out to interested parties. Delivery
// is at least once; consumers must tolerate duplicates.
type EventPublisher interface {
	Publish(ctx context.Context, event order.Event) error
}
