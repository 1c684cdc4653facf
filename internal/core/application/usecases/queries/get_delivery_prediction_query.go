package queries

import (
	"errors"

	"trackit/internal/core/domain/model/kernel"
	"trackit/internal/core/domain/model/order"
	"trackit/internal/pkg/guard"
)

var ErrGetDeliveryPredictionQueryIsNotConstructed = errors.New(
	"GetDeliveryPredictionQuery must be created via NewGetDeliveryPredictionQuery constructor",
)

// GetDeliveryPredictionQuery asks which window and speed a customer is likely
// to pick. A nil vendorID means the customer's most frequent vendor.
type GetDeliveryPredictionQuery struct {
	customerID kernel.UUID
	vendorID   *kernel.UUID

	guard guard.ConstructorGuard
}

func NewGetDeliveryPredictionQuery(customerID kernel.UUID, vendorID *kernel.UUID) (GetDeliveryPredictionQuery, error) {
	errList := []error{customerID.Validate()}
	if vendorID != nil {
		errList = append(errList, vendorID.Validate())
	}
	if err := errors.Join(errList...); err != nil {
		return GetDeliveryPredictionQuery{}, err
	}

	return GetDeliveryPredictionQuery{
		customerID: customerID,
		vendorID:   vendorID,
		guard:      guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the query was created through the constructor.
func (q GetDeliveryPredictionQuery) Validate() error {
	return q.guard.Validate(ErrGetDeliveryPredictionQueryIsNotConstructed)
}

func (q GetDeliveryPredictionQuery) CustomerID() kernel.UUID { return q.customerID }
func (q GetDeliveryPredictionQuery) VendorID() *kernel.UUID  { return q.vendorID }

type GetDeliveryPredictionQueryResponse struct {
	VendorID         kernel.UUID
	Window           order.Window
	Speed            order.Speed
	WindowConfidence float64
	SpeedConfidence  float64
	Basis            int
}
