package queries

import (
	"context"

	"trackit/internal/core/domain/model/rejection"
)

type GetCarrierOrdersQueryHandler struct {
	orders OrderReader
}

func NewGetCarrierOrdersQueryHandler(orders OrderReader) GetCarrierOrdersQueryHandler {
	return GetCarrierOrdersQueryHandler{orders: orders}
}

// Handle returns the worklist oldest first.
func (h GetCarrierOrdersQueryHandler) Handle(
	ctx context.Context,
	query GetCarrierOrdersQuery,
) ([]GetCarrierOrdersQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}
	if !query.ActorID().IsEqual(query.CarrierID()) {
		return nil, rejection.New(rejection.Unauthorized, "a carrier may only list its own orders")
	}

	orders, err := h.orders.ListActiveByCarrier(ctx, query.CarrierID())
	if err != nil {
		return nil, asRejection(err)
	}

	resp := make([]GetCarrierOrdersQueryResponse, 0, len(orders))
	for _, o := range orders {
		item := GetCarrierOrdersQueryResponse{
			ID:          o.ID(),
			Description: o.Description(),
			Window:      o.Window(),
			Speed:       o.Speed(),
			Status:      o.Status(),
			ScanCount:   o.ScanCount(),
		}
		if at := o.Timeline().AcceptedAt; at != nil {
			item.AcceptedAt = *at
		}
		resp = append(resp, item)
	}

	return resp, nil
}
