package commands

import (
	"errors"

	"trackit/internal/core/domain/model/kernel"
	"trackit/internal/pkg/guard"
)

var ErrRejectOrderCommandIsNotConstructed = errors.New(
	"RejectOrderCommand must be created via NewRejectOrderCommand constructor",
)

// RejectOrderCommand is a vendor refusing a pending order.
type RejectOrderCommand struct { //nolint:recvcheck //using for validation
	orderID  kernel.UUID
	vendorID kernel.UUID

	guard guard.ConstructorGuard
}

func NewRejectOrderCommand(orderID, vendorID kernel.UUID) (RejectOrderCommand, error) {
	if err := errors.Join(orderID.Validate(), vendorID.Validate()); err != nil {
		return RejectOrderCommand{}, err
	}

	return RejectOrderCommand{
		orderID:  orderID,
		vendorID: vendorID,
		guard:    guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the command was created through the constructor.
func (c RejectOrderCommand) Validate() error {
	return c.guard.Validate(ErrRejectOrderCommandIsNotConstructed)
}

func (c RejectOrderCommand) OrderID() kernel.UUID  { return c.orderID }
func (c RejectOrderCommand) VendorID() kernel.UUID { return c.vendorID }
