package commands

import (
	"errors"

	"trackit/internal/core/domain/model/kernel"
	"trackit/internal/pkg/guard"
)

var ErrAcceptOrderCommandIsNotConstructed = errors.New(
	"AcceptOrderCommand must be created via NewAcceptOrderCommand constructor",
)

// AcceptOrderCommand is a vendor taking a pending order.
type AcceptOrderCommand struct { //nolint:recvcheck //using for validation
	orderID  kernel.UUID
	vendorID kernel.UUID

	guard guard.ConstructorGuard
}

// NewAcceptOrderCommand creates the command; vendorID is the authenticated actor.
func NewAcceptOrderCommand(orderID, vendorID kernel.UUID) (AcceptOrderCommand, error) {
	if err := errors.Join(orderID.Validate(), vendorID.Validate()); err != nil {
		return AcceptOrderCommand{}, err
	}

	return AcceptOrderCommand{
		orderID:  orderID,
		vendorID: vendorID,
		guard:    guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the command was created through the constructor.
func (c AcceptOrderCommand) Validate() error {
	return c.guard.Validate(ErrAcceptOrderCommandIsNotConstructed)
}

func (c AcceptOrderCommand) OrderID() kernel.UUID  { return c.orderID }
func (c AcceptOrderCommand) VendorID() kernel.UUID { return c.vendorID }
