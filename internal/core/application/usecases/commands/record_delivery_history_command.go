package commands

import (
	"errors"

	"trackit/internal/core/domain/model/kernel"
	"trackit/internal/pkg/guard"
)

var ErrRecordDeliveryHistoryCommandIsNotConstructed = errors.New(
	"RecordDeliveryHistoryCommand must be created via NewRecordDeliveryHistoryCommand constructor",
)

// RecordDeliveryHistoryCommand turns a delivered order into an advisor
// training example.
type RecordDeliveryHistoryCommand struct { //nolint:recvcheck //using for validation
	orderID kernel.UUID

	guard guard.ConstructorGuard
}

func NewRecordDeliveryHistoryCommand(orderID kernel.UUID) (RecordDeliveryHistoryCommand, error) {
	if err := orderID.Validate(); err != nil {
		return RecordDeliveryHistoryCommand{}, err
	}

	return RecordDeliveryHistoryCommand{
		orderID: orderID,
		guard:   guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the command was created through the constructor.
func (c RecordDeliveryHistoryCommand) Validate() error {
	return c.guard.Validate(ErrRecordDeliveryHistoryCommandIsNotConstructed)
}

func (c RecordDeliveryHistoryCommand) OrderID() kernel.UUID { return c.orderID }
