package commands

import (
	"errors"
	"strings"

	"trackit/internal/core/domain/model/kernel"
	"trackit/internal/core/domain/model/rejection"
	"trackit/internal/pkg/guard"
)

var ErrScanTokenCommandIsNotConstructed = errors.New(
	"ScanTokenCommand must be created via NewScanTokenCommand constructor",
)

// ScanTokenCommand is one QR scan: the raw payload and the authenticated actor.
type ScanTokenCommand struct { //nolint:recvcheck //using for validation
	raw     string
	actorID kernel.UUID

	guard guard.ConstructorGuard
}

// NewScanTokenCommand rejects a blank payload as MalformedToken and a missing
// actor as Unauthorized.
func NewScanTokenCommand(raw string, actorID kernel.UUID) (ScanTokenCommand, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ScanTokenCommand{}, rejection.New(rejection.MalformedToken, "empty payload")
	}
	if err := actorID.Validate(); err != nil {
		return ScanTokenCommand{}, rejection.Wrap(rejection.Unauthorized, err)
	}

	return ScanTokenCommand{
		raw:     raw,
		actorID: actorID,
		guard:   guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the command was created through the constructor.
func (c ScanTokenCommand) Validate() error {
	return c.guard.Validate(ErrScanTokenCommandIsNotConstructed)
}

func (c ScanTokenCommand) Token() string        { return c.raw }
func (c ScanTokenCommand) ActorID() kernel.UUID { return c.actorID }
