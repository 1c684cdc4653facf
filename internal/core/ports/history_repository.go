package ports

import (
	"context"

	"trackit/internal/core/domain/model/history"
	"trackit/internal/core/domain/model/kernel"
)

// HistoryRepository stores the advisor's training examples.
type HistoryRepository interface {
	// Add inserts the record unless one exists for the same order. It reports
	// whether a row was written.
	Add(ctx context.Context, record history.Record) (bool, error)

	// ListSuccessfulByCustomer returns the successful records of a customer.
	ListSuccessfulByCustomer(ctx context.Context, customerID kernel.UUID) ([]history.Record, error)
}
