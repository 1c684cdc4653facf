package ports

import (
	"context"

	"trackit/internal/core/domain/model/kernel"
	"trackit/internal/core/domain/model/scan"
)

// ScanRecordRepository is the append-only audit trail of accepted scans.
type ScanRecordRepository interface {
	Add(ctx context.Context, record *scan.Record) error

	// ListByOrder returns the records of an order in scan order.
	ListByOrder(ctx context.Context, orderID kernel.UUID) ([]*scan.Record, error)
}
