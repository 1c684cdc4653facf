package ports

import (
	"context"
)

// UnitOfWorkFactory creates new UnitOfWork instances for each request/command.
type UnitOfWorkFactory interface {
	Create() UnitOfWork
}

// UnitOfWork is a business transaction boundary. A transition, its scan
// record and its events become visible together or not at all.
//
// Domain events raised by orders passed to OrderRepository().Add or Update
// are written to the outbox by Commit, inside the transaction.
type UnitOfWork interface {
	// Begin starts a new transaction.
	Begin(ctx context.Context) error

	// Commit flushes tracked domain events to the outbox and commits.
	Commit(ctx context.Context) error

	// Rollback discards every change of the current transaction.
	Rollback(ctx context.Context) error

	OrderRepository() OrderRepository
	ScanRecordRepository() ScanRecordRepository
	CarrierRepository() CarrierRepository
	OutboxRepository() OutboxRepository
	HistoryRepository() HistoryRepository
}
