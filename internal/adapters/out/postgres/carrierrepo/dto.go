// Package carrierrepo persists the carrier pool with GORM.
package carrierrepo

import (
	"trackit/internal/core/domain/model/carrier"
	"trackit/internal/core/domain/model/kernel"

	"github.com/google/uuid"
)

type CarrierDTO struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name      string    `gorm:"type:varchar(255);not null"`
	Available bool      `gorm:"not null;index"`
}

func (CarrierDTO) TableName() string {
	return "carriers"
}

func fromDomain(c *carrier.Carrier) CarrierDTO {
	return CarrierDTO{
		ID:        c.ID().Bytes(),
		Name:      c.Name(),
		Available: c.Available(),
	}
}

func toDomain(dto CarrierDTO) (*carrier.Carrier, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}
	return carrier.RestoreCarrier(id, dto.Name, dto.Available)
}
