package commands

import (
	"errors"
	"strings"

	"trackit/internal/core/domain/model/kernel"
	"trackit/internal/core/domain/model/order"
	"trackit/internal/pkg/guard"
)

var (
	ErrCreateOrderCommandIsNotConstructed = errors.New(
		"CreateOrderCommand must be created via NewCreateOrderCommand constructor",
	)
	ErrDescriptionIsRequired = errors.New("description is required")
	ErrAmountIsNegative      = errors.New("estimated amount must not be negative")
)

// CreateOrderCommand places a new order from a customer with a vendor.
//
// Example:
//
//	orderID := kernel.NewUUID()
//	cmd, err := NewCreateOrderCommand(orderID, customerID, vendorID,
//	    "2 boxes of books", order.Window1Hour, order.SpeedStandard, 1250)
//	if err != nil {
//	    return fmt.Errorf("invalid order data: %w", err)
//	}
//
//	handler := NewCreateOrderCommandHandler(uowFactory, time.Now)
//	if err := handler.Handle(ctx, cmd); err != nil {
//	    return fmt.Errorf("failed to create order: %w", err)
//	}
type CreateOrderCommand struct { //nolint:recvcheck //using for validation
	orderID         kernel.UUID
	customerID      kernel.UUID
	vendorID        kernel.UUID
	description     string
	window          order.Window
	speed           order.Speed
	estimatedAmount int64

	guard guard.ConstructorGuard
}

// NewCreateOrderCommand validates every field and joins the failures.
func NewCreateOrderCommand(
	orderID, customerID, vendorID kernel.UUID,
	description string,
	window order.Window,
	speed order.Speed,
	estimatedAmount int64,
) (CreateOrderCommand, error) {
	cmd := CreateOrderCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setIDs(orderID, customerID, vendorID),
		cmd.setDescription(description),
		cmd.setPreferences(window, speed),
		cmd.setEstimatedAmount(estimatedAmount),
	); err != nil {
		return CreateOrderCommand{}, err
	}

	return cmd, nil
}

// Validate ensures the command was created through the constructor.
func (c CreateOrderCommand) Validate() error {
	return c.guard.Validate(ErrCreateOrderCommandIsNotConstructed)
}

func (c CreateOrderCommand) OrderID() kernel.UUID    { return c.orderID }
func (c CreateOrderCommand) CustomerID() kernel.UUID { return c.customerID }
func (c CreateOrderCommand) VendorID() kernel.UUID   { return c.vendorID }
func (c CreateOrderCommand) Description() string     { return c.description }
func (c CreateOrderCommand) Window() order.Window    { return c.window }
func (c CreateOrderCommand) Speed() order.Speed      { return c.speed }
func (c CreateOrderCommand) EstimatedAmount() int64  { return c.estimatedAmount }

func (c *CreateOrderCommand) setIDs(orderID, customerID, vendorID kernel.UUID) error {
	if err := errors.Join(orderID.Validate(), customerID.Validate(), vendorID.Validate()); err != nil {
		return err
	}

	c.orderID = orderID
	c.customerID = customerID
	c.vendorID = vendorID
	return nil
}

func (c *CreateOrderCommand) setDescription(description string) error {
	if strings.TrimSpace(description) == "" {
		return ErrDescriptionIsRequired
	}

	c.description = description
	return nil
}

func (c *CreateOrderCommand) setPreferences(window order.Window, speed order.Speed) error {
	if err := errors.Join(window.Validate(), speed.Validate()); err != nil {
		return err
	}

	c.window = window
	c.speed = speed
	return nil
}

func (c *CreateOrderCommand) setEstimatedAmount(amount int64) error {
	if amount < 0 {
		return ErrAmountIsNegative
	}

	c.estimatedAmount = amount
	return nil
}
