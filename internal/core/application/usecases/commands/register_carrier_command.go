package commands

import (
	"errors"
	"strings"

	"trackit/internal/core/domain/model/kernel"
	"trackit/internal/pkg/guard"
)

var (
	ErrRegisterCarrierCommandIsNotConstructed = errors.New(
		"RegisterCarrierCommand must be created via NewRegisterCarrierCommand constructor",
	)
	ErrCarrierNameIsRequired = errors.New("carrier name is required")
)

// RegisterCarrierCommand adds a carrier to the assignment pool.
type RegisterCarrierCommand struct { //nolint:recvcheck //using for validation
	carrierID kernel.UUID
	name      string

	guard guard.ConstructorGuard
}

func NewRegisterCarrierCommand(carrierID kernel.UUID, name string) (RegisterCarrierCommand, error) {
	var nameErr error
	if strings.TrimSpace(name) == "" {
		nameErr = ErrCarrierNameIsRequired
	}
	if err := errors.Join(carrierID.Validate(), nameErr); err != nil {
		return RegisterCarrierCommand{}, err
	}

	return RegisterCarrierCommand{
		carrierID: carrierID,
		name:      name,
		guard:     guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the command was created through the constructor.
func (c RegisterCarrierCommand) Validate() error {
	return c.guard.Validate(ErrRegisterCarrierCommandIsNotConstructed)
}

func (c RegisterCarrierCommand) CarrierID() kernel.UUID { return c.carrierID }
func (c RegisterCarrierCommand) Name() string           { return c.name }
