package memory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"trackit/internal/core/domain/model/carrier"
	"trackit/internal/core/domain/model/history"
	"trackit/internal/core/domain/model/kernel"
	"trackit/internal/core/domain/model/order"
	"trackit/internal/core/domain/model/scan"
	"trackit/internal/core/ports"
	"trackit/internal/pkg/errs"
)

var ErrNoTransaction = errors.New("memory: no transaction in progress")

var (
	_ ports.UnitOfWorkFactory = (*UnitOfWorkFactory)(nil)
	_ ports.UnitOfWork        = (*UnitOfWork)(nil)
)

// UnitOfWorkFactory creates units of work over one Store.
type UnitOfWorkFactory struct {
	store *Store
}

func NewUnitOfWorkFactory(store *Store) *UnitOfWorkFactory {
	return &UnitOfWorkFactory{store: store}
}

func (f *UnitOfWorkFactory) Create() ports.UnitOfWork {
	return NewUnitOfWork(f.store)
}

type orderWrite struct {
	aggregate *order.Order
	snap      order.Snapshot
	isNew     bool
}

type publishMark struct {
	eventID kernel.UUID
	at      time.Time
}

// UnitOfWork stages writes until Commit. Outside Begin/Commit every write is
// applied at once, in a transaction of its own.
type UnitOfWork struct {
	store *Store
	begun bool

	orders    map[kernel.UUID]orderWrite
	scans     []*scan.Record
	carriers  []*carrier.Carrier
	history   []history.Record
	events    []order.Event
	published []publishMark
}

func NewUnitOfWork(store *Store) *UnitOfWork {
	uow := &UnitOfWork{store: store}
	uow.reset()
	return uow
}

func (uow *UnitOfWork) reset() {
	uow.orders = make(map[kernel.UUID]orderWrite)
	uow.scans = nil
	uow.carriers = nil
	uow.history = nil
	uow.events = nil
	uow.published = nil
}

// Begin is a no-op when a transaction is already open.
func (uow *UnitOfWork) Begin(_ context.Context) error {
	uow.begun = true
	return nil
}

func (uow *UnitOfWork) Commit(_ context.Context) error {
	if !uow.begun {
		return ErrNoTransaction
	}
	err := uow.apply()
	uow.begun = false
	uow.reset()
	return err
}

// Rollback drops staged writes. After Commit it does nothing.
func (uow *UnitOfWork) Rollback(_ context.Context) error {
	uow.begun = false
	uow.reset()
	return nil
}

func (uow *UnitOfWork) OrderRepository() ports.OrderRepository {
	return &orderRepository{uow: uow}
}

func (uow *UnitOfWork) ScanRecordRepository() ports.ScanRecordRepository {
	return &scanRepository{uow: uow}
}

func (uow *UnitOfWork) CarrierRepository() ports.CarrierRepository {
	return &carrierRepository{uow: uow}
}

func (uow *UnitOfWork) OutboxRepository() ports.OutboxRepository {
	return &outboxRepository{uow: uow}
}

func (uow *UnitOfWork) HistoryRepository() ports.HistoryRepository {
	return &historyRepository{uow: uow}
}

// flush applies staged writes right away when no transaction is open.
func (uow *UnitOfWork) flush() error {
	if uow.begun {
		return nil
	}
	err := uow.apply()
	uow.reset()
	return err
}

func (uow *UnitOfWork) apply() error {
	ids := make([]kernel.UUID, 0, len(uow.orders)+len(uow.scans))
	for id := range uow.orders {
		ids = append(ids, id)
	}
	for _, r := range uow.scans {
		ids = append(ids, r.OrderID())
	}

	slots, unlock := uow.store.lockSlots(ids)
	defer unlock()

	if err := uow.check(slots); err != nil {
		return err
	}

	if len(uow.published) > 0 {
		uow.store.outboxMu.Lock()
		for _, m := range uow.published {
			if uow.store.outboxIndex(m.eventID) < 0 {
				uow.store.outboxMu.Unlock()
				return errs.NewObjectNotFoundError("outbox event", m.eventID)
			}
		}
		uow.store.outboxMu.Unlock()
	}

	events := make([]order.Event, 0, len(uow.events))
	for id, w := range uow.orders {
		sl := slots[id]
		sl.exists = true
		sl.snap = w.snap
		events = append(events, w.aggregate.DomainEvents()...)
	}
	for _, r := range uow.scans {
		sl := slots[r.OrderID()]
		sl.scans = append(sl.scans, r)
	}

	if len(uow.carriers) > 0 {
		uow.store.carriersMu.Lock()
		for _, c := range uow.carriers {
			uow.store.carriers[c.ID()] = carrierRow{name: c.Name(), available: c.Available()}
		}
		uow.store.carriersMu.Unlock()
	}

	if len(uow.history) > 0 {
		uow.store.historyMu.Lock()
		for _, r := range uow.history {
			if _, ok := uow.store.history[r.OrderID]; !ok {
				uow.store.history[r.OrderID] = r
			}
		}
		uow.store.historyMu.Unlock()
	}

	sortEvents(events)
	events = append(events, uow.events...)
	if len(events) > 0 || len(uow.published) > 0 {
		uow.store.outboxMu.Lock()
		for _, e := range events {
			uow.store.outbox = append(uow.store.outbox, outboxRow{event: e})
		}
		for _, m := range uow.published {
			row := &uow.store.outbox[uow.store.outboxIndex(m.eventID)]
			if row.publishedAt == nil {
				at := m.at.UTC()
				row.publishedAt = &at
			}
		}
		uow.store.outboxMu.Unlock()
	}

	for _, w := range uow.orders {
		w.aggregate.ClearDomainEvents()
	}
	return nil
}

// check runs with the touched slots locked.
func (uow *UnitOfWork) check(slots map[kernel.UUID]*slot) error {
	for id, w := range uow.orders {
		sl := slots[id]
		switch {
		case w.isNew && sl.exists:
			return errs.NewValueIsInvalidErrorWithCause("order id", fmt.Errorf("order %s already exists", id))
		case !w.isNew && !sl.exists:
			return errs.NewObjectNotFoundError("order", id)
		case !w.isNew && sl.snap.Version != w.aggregate.Version():
			return errs.NewVersionIsInvalidError("order")
		}
	}
	for _, r := range uow.scans {
		if _, staged := uow.orders[r.OrderID()]; !staged && !slots[r.OrderID()].exists {
			return errs.NewObjectNotFoundError("order", r.OrderID())
		}
	}
	return nil
}

// outboxIndex runs with outboxMu held.
func (s *Store) outboxIndex(id kernel.UUID) int {
	for i := range s.outbox {
		if s.outbox[i].event.ID.IsEqual(id) {
			return i
		}
	}
	return -1
}
