package queries

import (
	"errors"
	"time"

	"trackit/internal/core/domain/model/kernel"
	"trackit/internal/core/domain/model/order"
	"trackit/internal/pkg/guard"
)

var ErrGetCarrierOrdersQueryIsNotConstructed = errors.New(
	"GetCarrierOrdersQuery must be created via NewGetCarrierOrdersQuery constructor",
)

// GetCarrierOrdersQuery is a carrier's worklist: assigned orders that are
// not delivered yet. A carrier may only read its own list.
type GetCarrierOrdersQuery struct {
	carrierID kernel.UUID
	actorID   kernel.UUID

	guard guard.ConstructorGuard
}

func NewGetCarrierOrdersQuery(carrierID, actorID kernel.UUID) (GetCarrierOrdersQuery, error) {
	if err := errors.Join(carrierID.Validate(), actorID.Validate()); err != nil {
		return GetCarrierOrdersQuery{}, err
	}

	return GetCarrierOrdersQuery{
		carrierID: carrierID,
		actorID:   actorID,
		guard:     guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the query was created through the constructor.
func (q GetCarrierOrdersQuery) Validate() error {
	return q.guard.Validate(ErrGetCarrierOrdersQueryIsNotConstructed)
}

func (q GetCarrierOrdersQuery) CarrierID() kernel.UUID { return q.carrierID }
func (q GetCarrierOrdersQuery) ActorID() kernel.UUID   { return q.actorID }

type GetCarrierOrdersQueryResponse struct {
	ID          kernel.UUID
	Description string
	Window      order.Window
	Speed       order.Speed
	Status      order.Status
	ScanCount   int
	AcceptedAt  time.Time
}
