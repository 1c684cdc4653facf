package carrierrepo

import (
	"context"
	"errors"

	"trackit/internal/adapters/out/postgres/pgerr"
	"trackit/internal/core/domain/model/carrier"
	"trackit/internal/core/domain/model/kernel"
	"trackit/internal/pkg/errs"

	"gorm.io/gorm"
)

// GormCarrierRepository implements ports.CarrierRepository using GORM.
type GormCarrierRepository struct {
	db *gorm.DB
}

func NewGormCarrierRepository(db *gorm.DB) *GormCarrierRepository {
	return &GormCarrierRepository{db: db}
}

func (r *GormCarrierRepository) Add(ctx context.Context, c *carrier.Carrier) error {
	if err := c.Validate(); err != nil {
		return err
	}

	dto := fromDomain(c)
	if err := r.db.WithContext(ctx).Create(&dto).Error; err != nil {
		if pgerr.IsUniqueViolation(err) {
			return errs.NewValueIsInvalidErrorWithCause("carrier id", err)
		}
		return err
	}
	return nil
}

func (r *GormCarrierRepository) Get(ctx context.Context, id kernel.UUID) (*carrier.Carrier, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var dto CarrierDTO
	if err := r.db.WithContext(ctx).First(&dto, "id = ?", id.Bytes()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("carrier", id.String())
		}
		return nil, err
	}

	return toDomain(dto)
}

// GetAllAvailable returns the pool sorted by name.
func (r *GormCarrierRepository) GetAllAvailable(ctx context.Context) ([]*carrier.Carrier, error) {
	var dtos []CarrierDTO
	if err := r.db.WithContext(ctx).Where("available = ?", true).Order("name, id").Find(&dtos).Error; err != nil {
		return nil, err
	}

	carriers := make([]*carrier.Carrier, 0, len(dtos))
	for _, dto := range dtos {
		c, err := toDomain(dto)
		if err != nil {
			return nil, err
		}
		carriers = append(carriers, c)
	}
	return carriers, nil
}
