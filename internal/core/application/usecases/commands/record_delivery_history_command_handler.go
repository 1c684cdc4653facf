package commands

import (
	"context"
	"time"

	"trackit/internal/core/domain/model/history"
	"trackit/internal/core/domain/model/kernel"
)

// RecordDeliveryHistoryCommandHandler appends the history record of a
// delivered order. Running it twice for the same order writes one record.
type RecordDeliveryHistoryCommandHandler struct {
	uowFactory HistoryUoWFactory
	now        func() time.Time
}

func NewRecordDeliveryHistoryCommandHandler(uowFactory HistoryUoWFactory, now func() time.Time) RecordDeliveryHistoryCommandHandler {
	return RecordDeliveryHistoryCommandHandler{
		uowFactory: uowFactory,
		now:        now,
	}
}

// Handle returns the customer whose history changed, and whether a record
// was written.
func (h *RecordDeliveryHistoryCommandHandler) Handle(
	ctx context.Context,
	cmd RecordDeliveryHistoryCommand,
) (kernel.UUID, bool, error) {
	if err := cmd.Validate(); err != nil {
		return kernel.UUID{}, false, err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return kernel.UUID{}, false, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	o, err := uow.OrderRepository().Get(ctx, cmd.OrderID())
	if err != nil {
		return kernel.UUID{}, false, err
	}

	record, err := history.FromDeliveredOrder(o, h.now())
	if err != nil {
		return kernel.UUID{}, false, err
	}

	inserted, err := uow.HistoryRepository().Add(ctx, record)
	if err != nil {
		return kernel.UUID{}, false, err
	}

	if err = uow.Commit(ctx); err != nil {
		return kernel.UUID{}, false, err
	}

	return record.CustomerID, inserted, nil
}
