package http

import (
	"time"

	"trackit/internal/core/application/usecases/queries"
	"trackit/internal/core/domain/model/kernel"
)

type ScanRequest struct {
	Token string `json:"token" validate:"required,max=256"`
}

type ScanResponse struct {
	OrderID              string `json:"orderId"`
	NewStatus            string `json:"newStatus"`
	ScanCount            int    `json:"scanCount"`
	RecipientTokenIssued bool   `json:"recipientTokenIssued"`
}

type CreateOrderRequest struct {
	VendorID        string `json:"vendorId" validate:"required,uuid"`
	Description     string `json:"description" validate:"required,max=500"`
	Window          string `json:"window" validate:"required,oneof=30min 1hour 2hour flexible"`
	Speed           string `json:"speed" validate:"required,oneof=express standard economy"`
	EstimatedAmount int64  `json:"estimatedAmount" validate:"min=0"`
}

type CreateOrderResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

type AcceptOrderResponse struct {
	CarrierID    string `json:"carrierId"`
	PackageToken string `json:"packageToken"`
}

type RegisterCarrierRequest struct {
	Name string `json:"name" validate:"required,max=200"`
}

type CarrierResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type ScanView struct {
	ID        string    `json:"id"`
	ActorID   string    `json:"actorId"`
	Class     string    `json:"class"`
	ScannedAt time.Time `json:"scannedAt"`
}

type Timeline struct {
	CreatedAt        time.Time  `json:"createdAt"`
	AcceptedAt       *time.Time `json:"acceptedAt,omitempty"`
	RejectedAt       *time.Time `json:"rejectedAt,omitempty"`
	DispatchedAt     *time.Time `json:"dispatchedAt,omitempty"`
	InTransitAt      *time.Time `json:"inTransitAt,omitempty"`
	OutForDeliveryAt *time.Time `json:"outForDeliveryAt,omitempty"`
	DeliveredAt      *time.Time `json:"deliveredAt,omitempty"`
}

type OrderResponse struct {
	ID              string     `json:"id"`
	CustomerID      string     `json:"customerId"`
	VendorID        string     `json:"vendorId"`
	CarrierID       *string    `json:"carrierId,omitempty"`
	Description     string     `json:"description"`
	Window          string     `json:"window"`
	Speed           string     `json:"speed"`
	Status          string     `json:"status"`
	StatusDisplay   string     `json:"statusDisplay"`
	ScanCount       int        `json:"scanCount"`
	EstimatedAmount int64      `json:"estimatedAmount"`
	FinalAmount     *int64     `json:"finalAmount,omitempty"`
	Timeline        Timeline   `json:"timeline"`
	Scans           []ScanView `json:"scans"`
}

type CarrierOrder struct {
	ID          string    `json:"id"`
	Description string    `json:"description"`
	Window      string    `json:"window"`
	Speed       string    `json:"speed"`
	Status      string    `json:"status"`
	ScanCount   int       `json:"scanCount"`
	AcceptedAt  time.Time `json:"acceptedAt"`
}

type CustomerOrder struct {
	ID              string    `json:"id"`
	VendorID        string    `json:"vendorId"`
	CarrierID       *string   `json:"carrierId,omitempty"`
	Description     string    `json:"description"`
	Window          string    `json:"window"`
	Speed           string    `json:"speed"`
	Status          string    `json:"status"`
	ScanCount       int       `json:"scanCount"`
	EstimatedAmount int64     `json:"estimatedAmount"`
	FinalAmount     *int64    `json:"finalAmount,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
}

type PredictionResponse struct {
	VendorID         string  `json:"vendorId"`
	Window           string  `json:"window"`
	Speed            string  `json:"speed"`
	WindowConfidence float64 `json:"windowConfidence"`
	SpeedConfidence  float64 `json:"speedConfidence"`
	Basis            int     `json:"basis"`
}

func optionalID(id *kernel.UUID) *string {
	if id == nil {
		return nil
	}
	s := id.String()
	return &s
}

func toOrderResponse(o queries.GetOrderQueryResponse) OrderResponse {
	resp := OrderResponse{
		ID:              o.ID.String(),
		CustomerID:      o.CustomerID.String(),
		VendorID:        o.VendorID.String(),
		CarrierID:       optionalID(o.CarrierID),
		Description:     o.Description,
		Window:          o.Window.String(),
		Speed:           o.Speed.String(),
		Status:          o.Status.String(),
		StatusDisplay:   o.Status.DisplayName(),
		ScanCount:       o.ScanCount,
		EstimatedAmount: o.EstimatedAmount,
		FinalAmount:     o.FinalAmount,
		Timeline: Timeline{
			CreatedAt:        o.Timeline.CreatedAt,
			AcceptedAt:       o.Timeline.AcceptedAt,
			RejectedAt:       o.Timeline.RejectedAt,
			DispatchedAt:     o.Timeline.DispatchedAt,
			InTransitAt:      o.Timeline.InTransitAt,
			OutForDeliveryAt: o.Timeline.OutForDeliveryAt,
			DeliveredAt:      o.Timeline.DeliveredAt,
		},
		Scans: make([]ScanView, 0, len(o.Scans)),
	}
	for _, s := range o.Scans {
		resp.Scans = append(resp.Scans, ScanView{
			ID:        s.ID.String(),
			ActorID:   s.ActorID.String(),
			Class:     s.Class.String(),
			ScannedAt: s.ScannedAt,
		})
	}
	return resp
}
