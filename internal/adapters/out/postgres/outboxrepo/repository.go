// Package outboxrepo stores lifecycle events until the relay publishes them.
package outboxrepo

import (
	"context"
	"time"

	"trackit/internal/core/domain/model/kernel"
	"trackit/internal/core/domain/model/order"
	"trackit/internal/pkg/errs"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OutboxEventDTO is one pending or published event. Seq keeps insertion
// order for events that share a timestamp.
type OutboxEventDTO struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey"`
	Seq            int64     `gorm:"autoIncrement;not null;uniqueIndex"`
	OrderID        uuid.UUID `gorm:"type:uuid;not null;index"`
	Status         string    `gorm:"size:32;not null"`
	ActorID        uuid.UUID `gorm:"type:uuid;not null"`
	OccurredAt     time.Time `gorm:"not null"`
	RecipientToken *string
	CustomerID     uuid.UUID  `gorm:"type:uuid;not null"`
	VendorID       uuid.UUID  `gorm:"type:uuid;not null"`
	CarrierID      *uuid.UUID `gorm:"type:uuid"`
	PublishedAt    *time.Time `gorm:"index"`
}

func (OutboxEventDTO) TableName() string {
	return "outbox_events"
}

// GormOutboxRepository implements ports.OutboxRepository using GORM.
type GormOutboxRepository struct {
	db *gorm.DB
}

func NewGormOutboxRepository(db *gorm.DB) *GormOutboxRepository {
	return &GormOutboxRepository{db: db}
}

func (r *GormOutboxRepository) Add(ctx context.Context, events ...order.Event) error {
	if len(events) == 0 {
		return nil
	}

	dtos := make([]OutboxEventDTO, 0, len(events))
	for _, e := range events {
		dtos = append(dtos, fromDomain(e))
	}
	return r.db.WithContext(ctx).Create(&dtos).Error
}

// ListPending returns up to limit unpublished events, oldest first.
func (r *GormOutboxRepository) ListPending(ctx context.Context, limit int) ([]order.Event, error) {
	if limit <= 0 {
		return []order.Event{}, nil
	}

	var dtos []OutboxEventDTO
	err := r.db.WithContext(ctx).
		Where("published_at IS NULL").
		Order("occurred_at, seq").
		Limit(limit).
		Find(&dtos).Error
	if err != nil {
		return nil, err
	}

	events := make([]order.Event, 0, len(dtos))
	for _, dto := range dtos {
		e, convErr := toDomain(dto)
		if convErr != nil {
			return nil, convErr
		}
		events = append(events, e)
	}
	return events, nil
}

// MarkPublished keeps the first publication time when called twice.
func (r *GormOutboxRepository) MarkPublished(ctx context.Context, eventID kernel.UUID, at time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&OutboxEventDTO{}).
		Where("id = ? AND published_at IS NULL", eventID.Bytes()).
		Update("published_at", at.UTC())
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected > 0 {
		return nil
	}

	var count int64
	if err := r.db.WithContext(ctx).Model(&OutboxEventDTO{}).Where("id = ?", eventID.Bytes()).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return errs.NewObjectNotFoundError("outbox event", eventID.String())
	}
	return nil
}

func fromDomain(e order.Event) OutboxEventDTO {
	dto := OutboxEventDTO{
		ID:             e.ID.Bytes(),
		OrderID:        e.OrderID.Bytes(),
		Status:         e.Status.String(),
		ActorID:        e.ActorID.Bytes(),
		OccurredAt:     e.OccurredAt.UTC(),
		RecipientToken: e.RecipientToken,
		CustomerID:     e.CustomerID.Bytes(),
		VendorID:       e.VendorID.Bytes(),
	}
	if e.CarrierID != nil {
		raw := e.CarrierID.Bytes()
		dto.CarrierID = &raw
	}
	return dto
}

func toDomain(dto OutboxEventDTO) (order.Event, error) {
	ids := make([]kernel.UUID, 0, 5)
	for _, raw := range []uuid.UUID{dto.ID, dto.OrderID, dto.ActorID, dto.CustomerID, dto.VendorID} {
		id, err := kernel.UUIDFromBytes(raw[:])
		if err != nil {
			return order.Event{}, err
		}
		ids = append(ids, id)
	}

	status, err := order.ParseStatus(dto.Status)
	if err != nil {
		return order.Event{}, err
	}

	e := order.Event{
		ID:             ids[0],
		OrderID:        ids[1],
		Status:         status,
		ActorID:        ids[2],
		OccurredAt:     dto.OccurredAt.UTC(),
		RecipientToken: dto.RecipientToken,
		CustomerID:     ids[3],
		VendorID:       ids[4],
	}
	if dto.CarrierID != nil {
		cID, cErr := kernel.UUIDFromBytes((*dto.CarrierID)[:])
		if cErr != nil {
			return order.Event{}, cErr
		}
		e.CarrierID = &cID
	}
	return e, nil
}
