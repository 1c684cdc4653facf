// Package postgres provides the GORM implementation of the Unit of Work
// pattern over the order lifecycle tables.
//
// A unit of work wraps one database transaction. Repositories obtained from
// it run inside that transaction once Begin was called, and against the
// plain connection otherwise. Orders written through OrderRepository are
// tracked; Commit writes their pending domain events to the outbox inside
// the same transaction, so a transition and its events become visible
// together.
//
// Usage:
//
//	uow := factory.Create()
//	if err := uow.Begin(ctx); err != nil {
//	    return err
//	}
//	defer func() {
//	    _ = uow.Rollback(ctx)
//	}()
//
//	o, err := uow.OrderRepository().Get(ctx, orderID)
//	// ... apply the transition
//	if err = uow.OrderRepository().Update(ctx, o); err != nil {
//	    return err
//	}
//	return uow.Commit(ctx)
//
// Concurrency Considerations:
//   - each UnitOfWork belongs to one goroutine
//   - order updates are compare-and-swap on the version column; the losing
//     writer gets *errs.VersionIsInvalidError
package postgres

import (
	"context"

	"trackit/internal/adapters/out/postgres/carrierrepo"
	"trackit/internal/adapters/out/postgres/historyrepo"
	"trackit/internal/adapters/out/postgres/orderrepo"
	"trackit/internal/adapters/out/postgres/outboxrepo"
	"trackit/internal/adapters/out/postgres/pgerr"
	"trackit/internal/adapters/out/postgres/scanrepo"
	"trackit/internal/core/domain/model/order"
	"trackit/internal/core/ports"
	"trackit/internal/pkg/errs"

	"gorm.io/gorm"
)

var (
	_ ports.UnitOfWorkFactory = (*GormUnitOfWorkFactory)(nil)
	_ ports.UnitOfWork        = (*GormUnitOfWork)(nil)
)

// GormUnitOfWorkFactory creates UnitOfWork instances over one connection pool.
type GormUnitOfWorkFactory struct {
	db *gorm.DB
}

func NewGormUnitOfWorkFactory(db *gorm.DB) *GormUnitOfWorkFactory {
	return &GormUnitOfWorkFactory{db: db}
}

// Create produces a fresh unit of work with its own transaction state and
// tracked aggregates.
func (f *GormUnitOfWorkFactory) Create() ports.UnitOfWork {
	return &GormUnitOfWork{
		db:      f.db,
		tracked: make([]*order.Order, 0),
	}
}

// GormUnitOfWork coordinates one database transaction and the orders
// written in it.
type GormUnitOfWork struct {
	db      *gorm.DB
	tx      *gorm.DB
	tracked []*order.Order
}

// Begin starts a transaction. Calling it twice does not nest.
func (uow *GormUnitOfWork) Begin(ctx context.Context) error {
	if uow.tx != nil {
		return nil
	}

	tx := uow.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return tx.Error
	}
	uow.tx = tx
	return nil
}

// Commit writes the events of every tracked order to the outbox and commits.
// A serialization failure is reported as *errs.VersionIsInvalidError.
func (uow *GormUnitOfWork) Commit(ctx context.Context) error {
	if uow.tx == nil {
		return gorm.ErrInvalidTransaction
	}

	if err := uow.flushEvents(ctx, uow.tx); err != nil {
		return err
	}

	err := uow.tx.Commit().Error
	uow.tx = nil
	if err != nil {
		uow.tracked = uow.tracked[:0]
		if pgerr.IsConcurrencyFailure(err) {
			return errs.NewVersionIsInvalidErrorWithCause("order", err)
		}
		return err
	}

	for _, o := range uow.tracked {
		o.ClearDomainEvents()
	}
	uow.tracked = uow.tracked[:0]
	return nil
}

// Rollback discards the transaction. Without one it returns
// gorm.ErrInvalidTransaction, which deferred callers ignore.
func (uow *GormUnitOfWork) Rollback(_ context.Context) error {
	uow.tracked = uow.tracked[:0]
	if uow.tx == nil {
		return gorm.ErrInvalidTransaction
	}

	err := uow.tx.Rollback().Error
	uow.tx = nil
	return err
}

// TrackAggregate registers an order written in this unit of work. Outside a
// transaction its events are written to the outbox at once.
func (uow *GormUnitOfWork) TrackAggregate(ctx context.Context, aggregate *order.Order) error {
	for _, o := range uow.tracked {
		if o == aggregate {
			return nil
		}
	}
	uow.tracked = append(uow.tracked, aggregate)

	if uow.tx != nil {
		return nil
	}
	if err := uow.flushEvents(ctx, uow.db); err != nil {
		return err
	}
	for _, o := range uow.tracked {
		o.ClearDomainEvents()
	}
	uow.tracked = uow.tracked[:0]
	return nil
}

func (uow *GormUnitOfWork) flushEvents(ctx context.Context, db *gorm.DB) error {
	events := make([]order.Event, 0)
	for _, o := range uow.tracked {
		events = append(events, o.DomainEvents()...)
	}
	return outboxrepo.NewGormOutboxRepository(db).Add(ctx, events...)
}

func (uow *GormUnitOfWork) conn() *gorm.DB {
	if uow.tx != nil {
		return uow.tx
	}
	return uow.db
}

func (uow *GormUnitOfWork) OrderRepository() ports.OrderRepository {
	return orderrepo.NewGormOrderRepository(uow.conn(), uow)
}

func (uow *GormUnitOfWork) ScanRecordRepository() ports.ScanRecordRepository {
	return scanrepo.NewGormScanRecordRepository(uow.conn())
}

func (uow *GormUnitOfWork) CarrierRepository() ports.CarrierRepository {
	return carrierrepo.NewGormCarrierRepository(uow.conn())
}

func (uow *GormUnitOfWork) OutboxRepository() ports.OutboxRepository {
	return outboxrepo.NewGormOutboxRepository(uow.conn())
}

func (uow *GormUnitOfWork) HistoryRepository() ports.HistoryRepository {
	return historyrepo.NewGormHistoryRepository(uow.conn())
}
