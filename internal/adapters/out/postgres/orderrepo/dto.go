// Package orderrepo persists order aggregates with GORM.
package orderrepo

import (
	"time"

	"trackit/internal/core/domain/model/kernel"
	"trackit/internal/core/domain/model/order"

	"github.com/google/uuid"
)

// OrderDTO is one row of the orders table. Version drives the optimistic
// concurrency check of Update.
type OrderDTO struct {
	ID               uuid.UUID  `gorm:"type:uuid;primaryKey"`
	CustomerID       uuid.UUID  `gorm:"type:uuid;not null;index"`
	VendorID         uuid.UUID  `gorm:"type:uuid;not null"`
	CarrierID        *uuid.UUID `gorm:"type:uuid;index"`
	Description      string     `gorm:"not null"`
	Window           string     `gorm:"size:16;not null"`
	Speed            string     `gorm:"size:16;not null"`
	Status           int        `gorm:"not null;index"`
	PackageToken     *string
	RecipientToken   *string
	ScanCount        int   `gorm:"not null;default:0"`
	EstimatedAmount  int64 `gorm:"not null"`
	FinalAmount      *int64
	CreatedAt        time.Time `gorm:"not null;autoCreateTime:false"`
	AcceptedAt       *time.Time
	RejectedAt       *time.Time
	DispatchedAt     *time.Time
	InTransitAt      *time.Time
	OutForDeliveryAt *time.Time
	DeliveredAt      *time.Time
	Version          int `gorm:"not null;default:0"`
}

func (OrderDTO) TableName() string {
	return "orders"
}

func fromDomain(aggregate *order.Order) OrderDTO {
	s := aggregate.Snapshot()
	return OrderDTO{
		ID:               s.ID.Bytes(),
		CustomerID:       s.CustomerID.Bytes(),
		VendorID:         s.VendorID.Bytes(),
		CarrierID:        uuidPtr(s.CarrierID),
		Description:      s.Description,
		Window:           s.Window.String(),
		Speed:            s.Speed.String(),
		Status:           int(s.Status),
		PackageToken:     s.PackageToken,
		RecipientToken:   s.RecipientToken,
		ScanCount:        s.ScanCount,
		EstimatedAmount:  s.EstimatedAmount,
		FinalAmount:      s.FinalAmount,
		CreatedAt:        s.Timeline.CreatedAt,
		AcceptedAt:       s.Timeline.AcceptedAt,
		RejectedAt:       s.Timeline.RejectedAt,
		DispatchedAt:     s.Timeline.DispatchedAt,
		InTransitAt:      s.Timeline.InTransitAt,
		OutForDeliveryAt: s.Timeline.OutForDeliveryAt,
		DeliveredAt:      s.Timeline.DeliveredAt,
		Version:          s.Version,
	}
}

// toDomain rebuilds the aggregate through order.Restore, so a row that breaks
// an invariant is reported instead of loaded.
func toDomain(dto OrderDTO) (*order.Order, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}
	customerID, err := kernel.UUIDFromBytes(dto.CustomerID[:])
	if err != nil {
		return nil, err
	}
	vendorID, err := kernel.UUIDFromBytes(dto.VendorID[:])
	if err != nil {
		return nil, err
	}

	var carrierID *kernel.UUID
	if dto.CarrierID != nil {
		cID, carrierErr := kernel.UUIDFromBytes((*dto.CarrierID)[:])
		if carrierErr != nil {
			return nil, carrierErr
		}
		carrierID = &cID
	}

	window, err := order.ParseWindow(dto.Window)
	if err != nil {
		return nil, err
	}
	speed, err := order.ParseSpeed(dto.Speed)
	if err != nil {
		return nil, err
	}

	return order.Restore(order.Snapshot{
		ID:              id,
		CustomerID:      customerID,
		VendorID:        vendorID,
		CarrierID:       carrierID,
		Description:     dto.Description,
		Window:          window,
		Speed:           speed,
		Status:          order.Status(dto.Status),
		PackageToken:    dto.PackageToken,
		RecipientToken:  dto.RecipientToken,
		ScanCount:       dto.ScanCount,
		EstimatedAmount: dto.EstimatedAmount,
		FinalAmount:     dto.FinalAmount,
		Timeline: order.Timeline{
			CreatedAt:        dto.CreatedAt.UTC(),
			AcceptedAt:       utcPtr(dto.AcceptedAt),
			RejectedAt:       utcPtr(dto.RejectedAt),
			DispatchedAt:     utcPtr(dto.DispatchedAt),
			InTransitAt:      utcPtr(dto.InTransitAt),
			OutForDeliveryAt: utcPtr(dto.OutForDeliveryAt),
			DeliveredAt:      utcPtr(dto.DeliveredAt),
		},
		Version: dto.Version,
	})
}

func uuidPtr(id *kernel.UUID) *uuid.UUID {
	if id == nil {
		return nil
	}
	raw := id.Bytes()
	return &raw
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
