package queries

import (
	"errors"
	"time"

	"trackit/internal/core/domain/model/kernel"
	"trackit/internal/core/domain/model/order"
	"trackit/internal/core/domain/model/token"
	"trackit/internal/pkg/guard"
)

var ErrGetOrderQueryIsNotConstructed = errors.New(
	"GetOrderQuery must be created via NewGetOrderQuery constructor",
)

// GetOrderQuery loads one order with its scan trail. Only the customer, the
// vendor and the assigned carrier may read it.
type GetOrderQuery struct {
	orderID kernel.UUID
	actorID kernel.UUID

	guard guard.ConstructorGuard
}

func NewGetOrderQuery(orderID, actorID kernel.UUID) (GetOrderQuery, error) {
	if err := errors.Join(orderID.Validate(), actorID.Validate()); err != nil {
		return GetOrderQuery{}, err
	}

	return GetOrderQuery{
		orderID: orderID,
		actorID: actorID,
		guard:   guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the query was created through the constructor.
func (q GetOrderQuery) Validate() error {
	return q.guard.Validate(ErrGetOrderQueryIsNotConstructed)
}

func (q GetOrderQuery) OrderID() kernel.UUID { return q.orderID }
func (q GetOrderQuery) ActorID() kernel.UUID { return q.actorID }

// GetOrderQueryResponse never carries token values; those are served as QR
// images to the party allowed to hold them.
type GetOrderQueryResponse struct {
	ID              kernel.UUID
	CustomerID      kernel.UUID
	VendorID        kernel.UUID
	CarrierID       *kernel.UUID
	Description     string
	Window          order.Window
	Speed           order.Speed
	Status          order.Status
	ScanCount       int
	EstimatedAmount int64
	FinalAmount     *int64
	Timeline        order.Timeline
	Scans           []ScanView
}

type ScanView struct {
	ID        kernel.UUID
	ActorID   kernel.UUID
	Class     token.Class
	ScannedAt time.Time
}
