package commands

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"trackit/internal/core/domain/model/kernel"
	"trackit/internal/core/domain/model/order"
	"trackit/internal/core/ports"
	"trackit/internal/pkg/metrics"
)

type (
	// DeliveryHistoryRecorder is satisfied by *RecordDeliveryHistoryCommandHandler.
	DeliveryHistoryRecorder interface {
		Handle(ctx context.Context, cmd RecordDeliveryHistoryCommand) (kernel.UUID, bool, error)
	}

	// PredictionInvalidator drops a customer's cached delivery model.
	PredictionInvalidator interface {
		Invalidate(customerID kernel.UUID)
	}
)

// RelayOutboxResult summarises one relay run.
type RelayOutboxResult struct {
	Published int
	Failed    int
}

// RelayOutboxCommandHandler drains the outbox after commit:
//
//  1. list pending events, oldest first
//  2. for a delivered event, append the customer's history record and drop
//     the customer's cached model
//  3. publish the event
//  4. mark it published
//
// A failed event stays pending for the next run. Later events of the same
// order are held back in that run so consumers see every order's events in
// commit order. Nothing here writes order state.
type RelayOutboxCommandHandler struct {
	uowFactory  OutboxUoWFactory
	publisher   ports.EventPublisher
	history     DeliveryHistoryRecorder
	invalidator PredictionInvalidator
	now         func() time.Time
	logger      *slog.Logger
}

func NewRelayOutboxCommandHandler(
	uowFactory OutboxUoWFactory,
	publisher ports.EventPublisher,
	history DeliveryHistoryRecorder,
	invalidator PredictionInvalidator,
	now func() time.Time,
	logger *slog.Logger,
) RelayOutboxCommandHandler {
	return RelayOutboxCommandHandler{
		uowFactory:  uowFactory,
		publisher:   publisher,
		history:     history,
		invalidator: invalidator,
		now:         now,
		logger:      logger.With("component", "outbox_relay"),
	}
}

// Handle returns an error only when the outbox cannot be read. Per-event
// failures are logged and counted in the result.
func (h *RelayOutboxCommandHandler) Handle(ctx context.Context, cmd RelayOutboxCommand) (RelayOutboxResult, error) {
	if err := cmd.Validate(); err != nil {
		return RelayOutboxResult{}, err
	}

	outbox := h.uowFactory.Create().OutboxRepository()
	events, err := outbox.ListPending(ctx, cmd.BatchSize())
	if err != nil {
		return RelayOutboxResult{}, fmt.Errorf("list pending events: %w", err)
	}

	var res RelayOutboxResult
	blocked := make(map[kernel.UUID]struct{})
	for _, e := range events {
		if _, ok := blocked[e.OrderID]; ok {
			continue
		}

		if err = h.relay(ctx, outbox, e); err != nil {
			blocked[e.OrderID] = struct{}{}
			res.Failed++
			metrics.OutboxFailuresTotal.Inc()
			h.logger.WarnContext(ctx, "event left pending",
				"event_id", e.ID.String(), "order_id", e.OrderID.String(), "status", e.Status.String(), "error", err)
			continue
		}

		res.Published++
		metrics.OutboxPublishedTotal.Inc()
		metrics.TransitionsTotal.WithLabelValues(e.Status.String()).Inc()
	}

	return res, nil
}

func (h *RelayOutboxCommandHandler) relay(ctx context.Context, outbox ports.OutboxRepository, e order.Event) error {
	if e.Status == order.Delivered {
		if err := h.recordHistory(ctx, e); err != nil {
			return err
		}
	}

	if err := h.publisher.Publish(ctx, e); err != nil {
		return fmt.Errorf("publish: %w", err)
	}

	if err := outbox.MarkPublished(ctx, e.ID, h.now()); err != nil {
		return fmt.Errorf("mark published: %w", err)
	}
	return nil
}

func (h *RelayOutboxCommandHandler) recordHistory(ctx context.Context, e order.Event) error {
	cmd, err := NewRecordDeliveryHistoryCommand(e.OrderID)
	if err != nil {
		return err
	}

	customerID, inserted, err := h.history.Handle(ctx, cmd)
	if err != nil {
		return fmt.Errorf("record delivery history: %w", err)
	}

	// A record written by an earlier, unmarked attempt still leaves the
	// cache possibly stale, so invalidate either way.
	h.invalidator.Invalidate(customerID)
	if inserted {
		h.logger.DebugContext(ctx, "delivery history recorded",
			"order_id", e.OrderID.String(), "customer_id", customerID.String())
	}
	return nil
}
