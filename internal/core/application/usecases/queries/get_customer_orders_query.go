package queries

import (
	"errors"
	"time"

	"trackit/internal/core/domain/model/kernel"
	"trackit/internal/core/domain/model/order"
	"trackit/internal/pkg/guard"
)

var ErrGetCustomerOrdersQueryIsNotConstructed = errors.New(
	"GetCustomerOrdersQuery must be created via NewGetCustomerOrdersQuery constructor",
)

// GetCustomerOrdersQuery is a customer's dashboard: every order they placed,
// newest first. A customer may only read their own list.
type GetCustomerOrdersQuery struct {
	customerID kernel.UUID
	actorID    kernel.UUID

	guard guard.ConstructorGuard
}

func NewGetCustomerOrdersQuery(customerID, actorID kernel.UUID) (GetCustomerOrdersQuery, error) {
	if err := errors.Join(customerID.Validate(), actorID.Validate()); err != nil {
		return GetCustomerOrdersQuery{}, err
	}

	return GetCustomerOrdersQuery{
		customerID: customerID,
		actorID:    actorID,
		guard:      guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the query was created through the constructor.
func (q GetCustomerOrdersQuery) Validate() error {
	return q.guard.Validate(ErrGetCustomerOrdersQueryIsNotConstructed)
}

func (q GetCustomerOrdersQuery) CustomerID() kernel.UUID { return q.customerID }
func (q GetCustomerOrdersQuery) ActorID() kernel.UUID    { return q.actorID }

type GetCustomerOrdersQueryResponse struct {
	ID              kernel.UUID
	VendorID        kernel.UUID
	CarrierID       *kernel.UUID
	Description     string
	Window          order.Window
	Speed           order.Speed
	Status          order.Status
	ScanCount       int
	EstimatedAmount int64
	FinalAmount     *int64
	CreatedAt       time.Time
}
