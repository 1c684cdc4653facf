package commands

import (
	"context"

	"trackit/internal/core/domain/model/carrier"
)

// RegisterCarrierCommandHandler stores a new, available carrier.
type RegisterCarrierCommandHandler struct {
	uowFactory CarrierUoWFactory
}

func NewRegisterCarrierCommandHandler(uowFactory CarrierUoWFactory) RegisterCarrierCommandHandler {
	return RegisterCarrierCommandHandler{
		uowFactory: uowFactory,
	}
}

func (h *RegisterCarrierCommandHandler) Handle(ctx context.Context, cmd RegisterCarrierCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	c, err := carrier.NewCarrier(cmd.CarrierID(), cmd.Name())
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

	if err = uow.CarrierRepository().Add(ctx, c); err != nil {
		return err
	}

	return uow.Commit(ctx)
}
