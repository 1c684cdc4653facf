package commands

import (
	"context"
	"time"
)

// RejectOrderCommandHandler moves a pending order to the terminal rejected status.
type RejectOrderCommandHandler struct {
	uowFactory OrderUoWFactory
	now        func() time.Time
}

func NewRejectOrderCommandHandler(uowFactory OrderUoWFactory, now func() time.Time) RejectOrderCommandHandler {
	return RejectOrderCommandHandler{
		uowFactory: uowFactory,
		now:        now,
	}
}

// Handle applies the rejection. Errors follow AcceptOrderCommandHandler.Handle.
func (h *RejectOrderCommandHandler) Handle(ctx context.Context, cmd RejectOrderCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return asRejection(err)
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	orderRepo := uow.OrderRepository()

	o, err := orderRepo.Get(ctx, cmd.OrderID())
	if err != nil {
		return asRejection(err)
	}

	if err = o.Reject(cmd.VendorID(), h.now()); err != nil {
		return err
	}

	if err = orderRepo.Update(ctx, o); err != nil {
		return asRejection(err)
	}

	return asRejection(uow.Commit(ctx))
}
