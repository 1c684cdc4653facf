package ports

import (
	"context"

	"trackit/internal/core/domain/model/carrier"
	"trackit/internal/core/domain/model/kernel"
)

// CarrierRepository stores the carrier pool.
type CarrierRepository interface {
	Add(ctx context.Context, c *carrier.Carrier) error
	Get(ctx context.Context, id kernel.UUID) (*carrier.Carrier, error)

	// GetAllAvailable returns the carriers the assignment policy may pick.
	GetAllAvailable(ctx context.Context) ([]*carrier.Carrier, error)
}
