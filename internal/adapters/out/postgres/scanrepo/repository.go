// Package scanrepo stores the append-only scan audit trail with GORM.
package scanrepo

import (
	"context"
	"time"

	"trackit/internal/core/domain/model/kernel"
	"trackit/internal/core/domain/model/scan"
	"trackit/internal/core/domain/model/token"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ScanRecordDTO struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	OrderID   uuid.UUID `gorm:"type:uuid;not null;index"`
	ActorID   uuid.UUID `gorm:"type:uuid;not null"`
	Class     string    `gorm:"size:16;not null"`
	Token     string    `gorm:"not null"`
	ScannedAt time.Time `gorm:"not null;index"`
}

func (ScanRecordDTO) TableName() string {
	return "scan_records"
}

// GormScanRecordRepository implements ports.ScanRecordRepository using GORM.
type GormScanRecordRepository struct {
	db *gorm.DB
}

func NewGormScanRecordRepository(db *gorm.DB) *GormScanRecordRepository {
	return &GormScanRecordRepository{db: db}
}

func (r *GormScanRecordRepository) Add(ctx context.Context, record *scan.Record) error {
	if err := record.Validate(); err != nil {
		return err
	}

	dto := ScanRecordDTO{
		ID:        record.ID().Bytes(),
		OrderID:   record.OrderID().Bytes(),
		ActorID:   record.ActorID().Bytes(),
		Class:     record.Class().String(),
		Token:     record.Token(),
		ScannedAt: record.ScannedAt(),
	}
	return r.db.WithContext(ctx).Create(&dto).Error
}

func (r *GormScanRecordRepository) ListByOrder(ctx context.Context, orderID kernel.UUID) ([]*scan.Record, error) {
	var dtos []ScanRecordDTO
	if err := r.db.WithContext(ctx).Where("order_id = ?", orderID.Bytes()).Order("scanned_at, id").Find(&dtos).Error; err != nil {
		return nil, err
	}

	records := make([]*scan.Record, 0, len(dtos))
	for _, dto := range dtos {
		rec, err := toDomain(dto)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

func toDomain(dto ScanRecordDTO) (*scan.Record, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}
	orderID, err := kernel.UUIDFromBytes(dto.OrderID[:])
	if err != nil {
		return nil, err
	}
	actorID, err := kernel.UUIDFromBytes(dto.ActorID[:])
	if err != nil {
		return nil, err
	}
	class, err := token.ParseClass(dto.Class)
	if err != nil {
		return nil, err
	}
	return scan.RestoreRecord(id, orderID, actorID, class, dto.Token, dto.ScannedAt)
}
