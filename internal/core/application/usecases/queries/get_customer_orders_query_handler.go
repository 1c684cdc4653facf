package queries

import (
	"context"

	"trackit/internal/core/domain/model/rejection"
)

type GetCustomerOrdersQueryHandler struct {
	orders OrderReader
}

func NewGetCustomerOrdersQueryHandler(orders OrderReader) GetCustomerOrdersQueryHandler {
	return GetCustomerOrdersQueryHandler{orders: orders}
}

// Handle returns the customer's orders in the repository's order, newest first.
func (h GetCustomerOrdersQueryHandler) Handle(
	ctx context.Context,
	query GetCustomerOrdersQuery,
) ([]GetCustomerOrdersQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}
	if !query.ActorID().IsEqual(query.CustomerID()) {
		return nil, rejection.New(rejection.Unauthorized, "a customer may only list their own orders")
	}

	orders, err := h.orders.ListByCustomer(ctx, query.CustomerID())
	if err != nil {
		return nil, asRejection(err)
	}

	resp := make([]GetCustomerOrdersQueryResponse, 0, len(orders))
	for _, o := range orders {
		resp = append(resp, GetCustomerOrdersQueryResponse{
			ID:              o.ID(),
			VendorID:        o.VendorID(),
			CarrierID:       o.CarrierID(),
			Description:     o.Description(),
			Window:          o.Window(),
			Speed:           o.Speed(),
			Status:          o.Status(),
			ScanCount:       o.ScanCount(),
			EstimatedAmount: o.EstimatedAmount(),
			FinalAmount:     o.FinalAmount(),
			CreatedAt:       o.Timeline().CreatedAt,
		})
	}

	return resp, nil
}
