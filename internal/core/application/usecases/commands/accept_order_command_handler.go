package commands

import (
	"context"
	"time"

	"trackit/internal/core/domain/model/kernel"
	"trackit/internal/core/domain/services"
)

// AcceptOrderResult tells the vendor who carries the order and what to print
// on the package.
type AcceptOrderResult struct {
	CarrierID    kernel.UUID
	PackageToken string
}

// AcceptOrderCommandHandler accepts a pending order: a carrier is drawn from
// the available pool and the package token is minted.
//
// Example:
//
//	handler := NewAcceptOrderCommandHandler(uowFactory, services.NewRandomCarrierAssigner(gen), time.Now)
//	cmd, _ := NewAcceptOrderCommand(orderID, vendorID)
//
//	res, err := handler.Handle(ctx, cmd)
//	if errors.Is(err, services.ErrNoCarrierAvailable) {
//	    // the order stays pending
//	}
type AcceptOrderCommandHandler struct {
	uowFactory AcceptUoWFactory
	assigner   services.CarrierAssigner
	now        func() time.Time
}

// NewAcceptOrderCommandHandler creates a handler for vendor acceptance.
func NewAcceptOrderCommandHandler(
	uowFactory AcceptUoWFactory,
	assigner services.CarrierAssigner,
	now func() time.Time,
) AcceptOrderCommandHandler {
	return AcceptOrderCommandHandler{
		uowFactory: uowFactory,
		assigner:   assigner,
		now:        now,
	}
}

// Handle returns rejection OrderNotFound, Unauthorized, InvalidTransition or
// ScanConflict, services.ErrNoCarrierAvailable, or a StoreUnavailable rejection.
func (h *AcceptOrderCommandHandler) Handle(ctx context.Context, cmd AcceptOrderCommand) (AcceptOrderResult, error) {
	if err := cmd.Validate(); err != nil {
		return AcceptOrderResult{}, err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return AcceptOrderResult{}, asRejection(err)
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	orderRepo := uow.OrderRepository()
	carrierRepo := uow.CarrierRepository()

	o, err := orderRepo.Get(ctx, cmd.OrderID())
	if err != nil {
		return AcceptOrderResult{}, asRejection(err)
	}

	if err = o.CheckVendorDecision(cmd.VendorID()); err != nil {
		return AcceptOrderResult{}, err
	}

	carriers, err := carrierRepo.GetAllAvailable(ctx)
	if err != nil {
		return AcceptOrderResult{}, asRejection(err)
	}

	chosen, err := h.assigner.Assign(o, cmd.VendorID(), carriers, h.now())
	if err != nil {
		return AcceptOrderResult{}, err
	}

	if err = orderRepo.Update(ctx, o); err != nil {
		return AcceptOrderResult{}, asRejection(err)
	}

	if err = uow.Commit(ctx); err != nil {
		return AcceptOrderResult{}, asRejection(err)
	}

	return AcceptOrderResult{
		CarrierID:    chosen.ID(),
		PackageToken: *o.PackageToken(),
	}, nil
}
