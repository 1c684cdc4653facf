package queries

import (
	"context"
	"errors"

	"trackit/internal/core/domain/model/kernel"
	"trackit/internal/core/domain/model/order"
	"trackit/internal/core/domain/model/rejection"
	"trackit/internal/core/domain/model/scan"
	"trackit/internal/core/domain/services"
	"trackit/internal/pkg/errs"
)

// OrderReader is the read side of ports.OrderRepository.
type OrderReader interface {
	Get(ctx context.Context, id kernel.UUID) (*order.Order, error)
	ListActiveByCarrier(ctx context.Context, carrierID kernel.UUID) ([]*order.Order, error)
	ListByCustomer(ctx context.Context, customerID kernel.UUID) ([]*order.Order, error)
}

// ScanReader is the read side of ports.ScanRecordRepository.
type ScanReader interface {
	ListByOrder(ctx context.Context, orderID kernel.UUID) ([]*scan.Record, error)
}

// Predictor is implemented by advisor.Advisor.
type Predictor interface {
	Predict(ctx context.Context, customerID kernel.UUID, vendorID *kernel.UUID) (services.Prediction, error)
}

func asRejection(err error) error {
	if err == nil || rejection.KindOf(err) != rejection.Unknown {
		return err
	}
	if errors.Is(err, errs.ErrObjectNotFound) {
		return rejection.Wrap(rejection.OrderNotFound, err)
	}
	return rejection.Wrap(rejection.StoreUnavailable, err)
}
