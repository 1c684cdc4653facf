// Package historyrepo stores delivery history records with GORM.
package historyrepo

import (
	"context"
	"time"

	"trackit/internal/core/domain/model/history"
	"trackit/internal/core/domain/model/kernel"
	"trackit/internal/core/domain/model/order"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DeliveryHistoryDTO has the order id as its key, so each order contributes
// at most one record.
type DeliveryHistoryDTO struct {
	OrderID    uuid.UUID `gorm:"type:uuid;primaryKey"`
	CustomerID uuid.UUID `gorm:"type:uuid;not null;index"`
	VendorID   uuid.UUID `gorm:"type:uuid;not null"`
	Window     string    `gorm:"size:16;not null"`
	Speed      string    `gorm:"size:16;not null"`
	Weekday    int       `gorm:"type:smallint;not null"`
	Hour       int       `gorm:"type:smallint;not null"`
	Successful bool      `gorm:"not null"`
	RecordedAt time.Time `gorm:"not null"`
}

func (DeliveryHistoryDTO) TableName() string {
	return "delivery_history"
}

// GormHistoryRepository implements ports.HistoryRepository using GORM.
type GormHistoryRepository struct {
	db *gorm.DB
}

func NewGormHistoryRepository(db *gorm.DB) *GormHistoryRepository {
	return &GormHistoryRepository{db: db}
}

// Add uses INSERT ... ON CONFLICT DO NOTHING and reports whether a row was
// written.
func (r *GormHistoryRepository) Add(ctx context.Context, record history.Record) (bool, error) {
	if err := record.Validate(); err != nil {
		return false, err
	}

	dto := DeliveryHistoryDTO{
		OrderID:    record.OrderID.Bytes(),
		CustomerID: record.CustomerID.Bytes(),
		VendorID:   record.VendorID.Bytes(),
		Window:     record.Window.String(),
		Speed:      record.Speed.String(),
		Weekday:    int(record.Weekday),
		Hour:       record.Hour,
		Successful: record.Successful,
		RecordedAt: record.RecordedAt.UTC(),
	}
	result := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&dto)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (r *GormHistoryRepository) ListSuccessfulByCustomer(
	ctx context.Context,
	customerID kernel.UUID,
) ([]history.Record, error) {
	var dtos []DeliveryHistoryDTO
	err := r.db.WithContext(ctx).
		Where("customer_id = ? AND successful", customerID.Bytes()).
		Order("recorded_at, order_id").
		Find(&dtos).Error
	if err != nil {
		return nil, err
	}

	records := make([]history.Record, 0, len(dtos))
	for _, dto := range dtos {
		rec, convErr := toDomain(dto)
		if convErr != nil {
			return nil, convErr
		}
		records = append(records, rec)
	}
	return records, nil
}

func toDomain(dto DeliveryHistoryDTO) (history.Record, error) {
	orderID, err := kernel.UUIDFromBytes(dto.OrderID[:])
	if err != nil {
		return history.Record{}, err
	}
	customerID, err := kernel.UUIDFromBytes(dto.CustomerID[:])
	if err != nil {
		return history.Record{}, err
	}
	vendorID, err := kernel.UUIDFromBytes(dto.VendorID[:])
	if err != nil {
		return history.Record{}, err
	}
	window, err := order.ParseWindow(dto.Window)
	if err != nil {
		return history.Record{}, err
	}
	speed, err := order.ParseSpeed(dto.Speed)
	if err != nil {
		return history.Record{}, err
	}

	rec := history.Record{
		OrderID:    orderID,
		CustomerID: customerID,
		VendorID:   vendorID,
		Window:     window,
		Speed:      speed,
		Weekday:    time.Weekday(dto.Weekday),
		Hour:       dto.Hour,
		Successful: dto.Successful,
		RecordedAt: dto.RecordedAt.UTC(),
	}
	return rec, rec.Validate()
}
