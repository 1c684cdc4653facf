package services

import (
	"errors"
	"math/rand/v2"
	"time"

	"trackit/internal/core/domain/model/carrier"
	"trackit/internal/core/domain/model/kernel"
	"trackit/internal/core/domain/model/order"
)

// ErrNoCarrierAvailable is returned when the pool holds no available carrier.
// The order stays pending.
var ErrNoCarrierAvailable = errors.New("no carrier available")

// PackageTokenMinter issues the token a vendor prints on the package.
type PackageTokenMinter interface {
	MintPackageToken(orderID kernel.UUID) (string, error)
}

// CarrierAssigner accepts a pending order on behalf of its vendor: it picks a
// carrier, mints the package token and moves the order to accepted.
type CarrierAssigner interface {
	Assign(o *order.Order, vendorID kernel.UUID, carriers []*carrier.Carrier, at time.Time) (*carrier.Carrier, error)
}

var _ CarrierAssigner = (*RandomCarrierAssigner)(nil)

// RandomCarrierAssigner picks uniformly at random among available carriers.
//
// Example usage:
//
//	assigner := services.NewRandomCarrierAssigner(token.NewGenerator())
//	chosen, err := assigner.Assign(o, vendorID, carriers, time.Now())
//	if errors.Is(err, services.ErrNoCarrierAvailable) {
//	    // retry later, the order is still pending
//	}
type RandomCarrierAssigner struct {
	minter PackageTokenMinter
	intn   func(n int) int
}

// NewRandomCarrierAssigner uses math/rand/v2 for selection.
func NewRandomCarrierAssigner(minter PackageTokenMinter) *RandomCarrierAssigner {
	return NewRandomCarrierAssignerWithSource(minter, rand.IntN)
}

// NewRandomCarrierAssignerWithSource lets tests pin the choice. intn must
// return a value in [0, n).
func NewRandomCarrierAssignerWithSource(minter PackageTokenMinter, intn func(n int) int) *RandomCarrierAssigner {
	return &RandomCarrierAssigner{minter: minter, intn: intn}
}

// Assign checks the vendor decision first, so an unauthorized or late accept
// is reported before the pool is considered.
//
// Returns:
//   - the chosen carrier on success
//   - rejection Unauthorized or InvalidTransition from the order
//   - ErrNoCarrierAvailable when nobody can take the order
func (a *RandomCarrierAssigner) Assign(
	o *order.Order,
	vendorID kernel.UUID,
	carriers []*carrier.Carrier,
	at time.Time,
) (*carrier.Carrier, error) {
	if err := o.Validate(); err != nil {
		return nil, err
	}
	if err := o.CheckVendorDecision(vendorID); err != nil {
		return nil, err
	}

	pool := make([]*carrier.Carrier, 0, len(carriers))
	for _, c := range carriers {
		if err := c.Validate(); err != nil {
			return nil, err
		}
		if c.Available() {
			pool = append(pool, c)
		}
	}
	if len(pool) == 0 {
		return nil, ErrNoCarrierAvailable
	}

	chosen := pool[a.intn(len(pool))]

	packageToken, err := a.minter.MintPackageToken(o.ID())
	if err != nil {
		return nil, err
	}

	if err = o.Accept(vendorID, chosen.ID(), packageToken, at); err != nil {
		return nil, err
	}

	return chosen, nil
}
