// Package commands contains the operations that change order state.
// Every handler follows the same shape: validate the command, open a unit of
// work, load, apply domain logic, persist, commit.
package commands

import (
	"context"

	"trackit/internal/core/ports"
)

// Unit of Work interfaces narrowed to what each handler touches.
type (
	// TxManager handles the transaction lifecycle.
	TxManager interface {
		Begin(ctx context.Context) error
		Commit(ctx context.Context) error
		Rollback(ctx context.Context) error
	}

	OrderRepoFactory interface {
		OrderRepository() ports.OrderRepository
	}

	ScanRecordRepoFactory interface {
		ScanRecordRepository() ports.ScanRecordRepository
	}

	CarrierRepoFactory interface {
		CarrierRepository() ports.CarrierRepository
	}

	HistoryRepoFactory interface {
		HistoryRepository() ports.HistoryRepository
	}

	OutboxRepoFactory interface {
		OutboxRepository() ports.OutboxRepository
	}

	// OrderUoW is used by commands that touch only orders.
	OrderUoW interface {
		TxManager
		OrderRepoFactory
	}

	OrderUoWFactory interface {
		Create() OrderUoW
	}

	// AcceptUoW reads the carrier pool and updates the order.
	AcceptUoW interface {
		TxManager
		OrderRepoFactory
		CarrierRepoFactory
	}

	AcceptUoWFactory interface {
		Create() AcceptUoW
	}

	// ScanUoW updates the order and appends the scan record in one transaction.
	//
	// Example:
	//   uow := factory.Create()
	//   err := uow.Begin(ctx)
	//   defer uow.Rollback(ctx)
	//
	//   o, err := uow.OrderRepository().Get(ctx, orderID)
	//   // ... validate and apply the scan
	//   err = uow.OrderRepository().Update(ctx, o)
	//   err = uow.ScanRecordRepository().Add(ctx, record)
	//
	//   err = uow.Commit(ctx)
	ScanUoW interface {
		TxManager
		OrderRepoFactory
		ScanRecordRepoFactory
	}

	ScanUoWFactory interface {
		Create() ScanUoW
	}

	// CarrierUoW manages carrier-only operations.
	CarrierUoW interface {
		TxManager
		CarrierRepoFactory
	}

	CarrierUoWFactory interface {
		Create() CarrierUoW
	}

	// HistoryUoW reads a delivered order and appends its history record.
	HistoryUoW interface {
		TxManager
		OrderRepoFactory
		HistoryRepoFactory
	}

	HistoryUoWFactory interface {
		Create() HistoryUoW
	}

	// OutboxUoW reads pending events and marks them published. The relay
	// uses it without Begin, so each mark is written on its own.
	OutboxUoW interface {
		TxManager
		OutboxRepoFactory
	}

	OutboxUoWFactory interface {
		Create() OutboxUoW
	}
)
