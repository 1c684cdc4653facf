// Package carrier models the people who move packages between custody points.
package carrier

import (
	"errors"
	"strings"

	"trackit/internal/core/domain/model/kernel"
	"trackit/internal/pkg/errs"
	"trackit/internal/pkg/guard"
)

var (
	// ErrNameIsRequired is returned when a carrier is created without a name.
	ErrNameIsRequired = errs.NewValueIsRequiredError("name")
	// ErrCarrierIsNotConstructed is returned when using an improperly initialized Carrier.
	ErrCarrierIsNotConstructed = errors.New("Carrier must be created via NewCarrier or RestoreCarrier")
)

// Carrier is a member of the pool the assignment policy draws from.
// Only available carriers are offered new orders.
//
// Example:
//
//	c, err := carrier.NewCarrier(kernel.NewUUID(), "Asha")
//	if err != nil {
//	    return err
//	}
//	c.SetAvailable(false) // off shift
type Carrier struct {
	id        kernel.UUID
	name      string
	available bool
	guard     guard.ConstructorGuard
}

// NewCarrier registers a carrier, available by default.
func NewCarrier(id kernel.UUID, name string) (*Carrier, error) {
	return RestoreCarrier(id, name, true)
}

// RestoreCarrier rebuilds a carrier from storage.
func RestoreCarrier(id kernel.UUID, name string, available bool) (*Carrier, error) {
	c := &Carrier{
		available: available,
		guard:     guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		c.setID(id),
		c.setName(name),
	); err != nil {
		return nil, err
	}

	return c, nil
}

// Validate ensures the carrier was built through a constructor.
func (c *Carrier) Validate() error {
	if c == nil {
		return ErrCarrierIsNotConstructed
	}
	return c.guard.Validate(ErrCarrierIsNotConstructed)
}

// IsEqual compares carriers by identity.
func (c *Carrier) IsEqual(other *Carrier) bool {
	return other != nil && c.id.IsEqual(other.id)
}

func (c *Carrier) ID() kernel.UUID { return c.id }
func (c *Carrier) Name() string    { return c.name }
func (c *Carrier) Available() bool { return c.available }

// SetAvailable moves the carrier in or out of the assignment pool.
func (c *Carrier) SetAvailable(available bool) {
	c.available = available
}

func (c *Carrier) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	c.id = id
	return nil
}

func (c *Carrier) setName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrNameIsRequired
	}
	c.name = name
	return nil
}
