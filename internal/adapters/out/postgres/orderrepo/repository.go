package orderrepo

import (
	"context"
	"errors"

	"trackit/internal/adapters/out/postgres/pgerr"
	"trackit/internal/core/domain/model/kernel"
	"trackit/internal/core/domain/model/order"
	"trackit/internal/pkg/errs"

	"gorm.io/gorm"
)

// GormOrderRepository implements ports.OrderRepository using GORM.
type GormOrderRepository struct {
	db      *gorm.DB
	tracker aggregateTracker
}

// aggregateTracker collects written orders so their events reach the outbox.
type aggregateTracker interface {
	TrackAggregate(ctx context.Context, aggregate *order.Order) error
}

func NewGormOrderRepository(db *gorm.DB, tracker aggregateTracker) *GormOrderRepository {
	return &GormOrderRepository{
		db:      db,
		tracker: tracker,
	}
}

// Add inserts a new order. A duplicate id is an *errs.ValueIsInvalidError.
func (r *GormOrderRepository) Add(ctx context.Context, aggregate *order.Order) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	if err := r.db.WithContext(ctx).Create(&dto).Error; err != nil {
		if pgerr.IsUniqueViolation(err) {
			return errs.NewValueIsInvalidErrorWithCause("order id", err)
		}
		return err
	}

	return r.tracker.TrackAggregate(ctx, aggregate)
}

// Update writes every column and bumps the version, but only while the row
// still holds the version the aggregate was loaded with. The conditional
// UPDATE takes the row lock, so of two racing writers exactly one matches.
func (r *GormOrderRepository) Update(ctx context.Context, aggregate *order.Order) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	dto.Version = aggregate.Version() + 1

	result := r.db.WithContext(ctx).
		Model(&OrderDTO{}).
		Where("id = ? AND version = ?", dto.ID, aggregate.Version()).
		Select("*").
		Updates(&dto)
	if result.Error != nil {
		if pgerr.IsConcurrencyFailure(result.Error) {
			return errs.NewVersionIsInvalidErrorWithCause("order", result.Error)
		}
		return result.Error
	}

	if result.RowsAffected == 0 {
		var count int64
		if err := r.db.WithContext(ctx).Model(&OrderDTO{}).Where("id = ?", dto.ID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return errs.NewObjectNotFoundError("order", aggregate.ID().String())
		}
		return errs.NewVersionIsInvalidError("order")
	}

	return r.tracker.TrackAggregate(ctx, aggregate)
}

func (r *GormOrderRepository) Get(ctx context.Context, id kernel.UUID) (*order.Order, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var dto OrderDTO
	if err := r.db.WithContext(ctx).First(&dto, "id = ?", id.Bytes()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("order", id.String())
		}
		return nil, err
	}

	return toDomain(dto)
}

// ListActiveByCarrier returns accepted, not yet delivered orders, oldest first.
func (r *GormOrderRepository) ListActiveByCarrier(ctx context.Context, carrierID kernel.UUID) ([]*order.Order, error) {
	var dtos []OrderDTO
	err := r.db.WithContext(ctx).
		Where("carrier_id = ? AND status NOT IN ?", carrierID.Bytes(), []int{int(order.Delivered), int(order.Rejected)}).
		Order("accepted_at, id").
		Find(&dtos).Error
	if err != nil {
		return nil, err
	}
	return toDomainAll(dtos)
}

// ListByCustomer returns every order of a customer, newest first.
func (r *GormOrderRepository) ListByCustomer(ctx context.Context, customerID kernel.UUID) ([]*order.Order, error) {
	var dtos []OrderDTO
	err := r.db.WithContext(ctx).
		Where("customer_id = ?", customerID.Bytes()).
		Order("created_at DESC, id").
		Find(&dtos).Error
	if err != nil {
		return nil, err
	}
	return toDomainAll(dtos)
}

func toDomainAll(dtos []OrderDTO) ([]*order.Order, error) {
	orders := make([]*order.Order, 0, len(dtos))
	for _, dto := range dtos {
		o, err := toDomain(dto)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, nil
}
