package publisher

import (
	"context"
	"log/slog"

	"trackit/internal/core/domain/model/order"
	"trackit/internal/core/ports"
)

var _ ports.EventPublisher = (*LogPublisher)(nil)

// LogPublisher writes events to the structured log. It is the default
// transport when no broker is configured.
type LogPublisher struct {
	logger *slog.Logger
}

func NewLogPublisher(logger *slog.Logger) *LogPublisher {
	return &LogPublisher{logger: logger.With("component", "log_publisher")}
}

func (p *LogPublisher) Publish(ctx context.Context, e order.Event) error {
	m := NewMessage(e)
	attrs := []any{
		"event_id", m.ID,
		"order_id", m.OrderID,
		"status", m.NewStatus,
		"actor_id", m.ActorID,
		"customer_id", m.CustomerID,
		"vendor_id", m.VendorID,
		"timestamp", m.Timestamp,
	}
	if m.CarrierID != nil {
		attrs = append(attrs, "carrier_id", *m.CarrierID)
	}
	if e.RecipientToken != nil {
		attrs = append(attrs, "recipient_token_issued", true)
	}
	p.logger.InfoContext(ctx, "order event", attrs...)
	return nil
}
