package queries

import (
	"context"
)

type GetDeliveryPredictionQueryHandler struct {
	predictor Predictor
}

func NewGetDeliveryPredictionQueryHandler(predictor Predictor) GetDeliveryPredictionQueryHandler {
	return GetDeliveryPredictionQueryHandler{predictor: predictor}
}

// Handle passes services.ErrPredictionUnavailable through unchanged.
func (h GetDeliveryPredictionQueryHandler) Handle(
	ctx context.Context,
	query GetDeliveryPredictionQuery,
) (GetDeliveryPredictionQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return GetDeliveryPredictionQueryResponse{}, err
	}

	p, err := h.predictor.Predict(ctx, query.CustomerID(), query.VendorID())
	if err != nil {
		return GetDeliveryPredictionQueryResponse{}, err
	}

	return GetDeliveryPredictionQueryResponse{
		VendorID:         p.VendorID,
		Window:           p.Window,
		Speed:            p.Speed,
		WindowConfidence: p.WindowConfidence,
		SpeedConfidence:  p.SpeedConfidence,
		Basis:            p.Basis,
	}, nil
}
