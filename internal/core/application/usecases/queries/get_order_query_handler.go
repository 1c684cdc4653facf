package queries

import (
	"context"

	"trackit/internal/core/domain/model/kernel"
	"trackit/internal/core/domain/model/order"
	"trackit/internal/core/domain/model/rejection"
)

type GetOrderQueryHandler struct {
	orders OrderReader
	scans  ScanReader
}

func NewGetOrderQueryHandler(orders OrderReader, scans ScanReader) GetOrderQueryHandler {
	return GetOrderQueryHandler{orders: orders, scans: scans}
}

// Handle returns OrderNotFound for an unknown id and Unauthorized for an
// actor who is not a party to the order.
func (h GetOrderQueryHandler) Handle(ctx context.Context, query GetOrderQuery) (GetOrderQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return GetOrderQueryResponse{}, err
	}

	o, err := h.orders.Get(ctx, query.OrderID())
	if err != nil {
		return GetOrderQueryResponse{}, asRejection(err)
	}
	if !isParty(o, query.ActorID()) {
		return GetOrderQueryResponse{}, rejection.New(rejection.Unauthorized, "not a party to the order")
	}

	records, err := h.scans.ListByOrder(ctx, o.ID())
	if err != nil {
		return GetOrderQueryResponse{}, asRejection(err)
	}

	resp := GetOrderQueryResponse{
		ID:              o.ID(),
		CustomerID:      o.CustomerID(),
		VendorID:        o.VendorID(),
		CarrierID:       o.CarrierID(),
		Description:     o.Description(),
		Window:          o.Window(),
		Speed:           o.Speed(),
		Status:          o.Status(),
		ScanCount:       o.ScanCount(),
		EstimatedAmount: o.EstimatedAmount(),
		FinalAmount:     o.FinalAmount(),
		Timeline:        o.Timeline(),
		Scans:           make([]ScanView, 0, len(records)),
	}
	for _, r := range records {
		resp.Scans = append(resp.Scans, ScanView{
			ID:        r.ID(),
			ActorID:   r.ActorID(),
			Class:     r.Class(),
			ScannedAt: r.ScannedAt(),
		})
	}

	return resp, nil
}

func isParty(o *order.Order, actorID kernel.UUID) bool {
	if actorID.IsEqual(o.CustomerID()) || actorID.IsEqual(o.VendorID()) {
		return true
	}
	c := o.CarrierID()
	return c != nil && actorID.IsEqual(*c)
}
