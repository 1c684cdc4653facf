package commands

import (
	"context"
	"time"

	"trackit/internal/core/domain/model/order"
)

// CreateOrderCommandHandler persists a new pending order. The creation event
// reaches the vendor through the outbox.
type CreateOrderCommandHandler struct {
	uowFactory OrderUoWFactory
	now        func() time.Time
}

// NewCreateOrderCommandHandler creates a handler for order creation.
func NewCreateOrderCommandHandler(uowFactory OrderUoWFactory, now func() time.Time) CreateOrderCommandHandler {
	return CreateOrderCommandHandler{
		uowFactory: uowFactory,
		now:        now,
	}
}

// Handle creates the order in pending status.
func (h *CreateOrderCommandHandler) Handle(ctx context.Context, cmd CreateOrderCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	o, err := order.NewOrder(
		cmd.OrderID(),
		cmd.CustomerID(),
		cmd.VendorID(),
		cmd.Description(),
		cmd.Window(),
		cmd.Speed(),
		cmd.EstimatedAmount(),
		h.now(),
	)
	if err != nil {
		return err
	}

	uow := h.uowFactory.Create()
	if err = uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	if err = uow.OrderRepository().Add(ctx, o); err != nil {
		return err
	}

	return uow.Commit(ctx)
}
