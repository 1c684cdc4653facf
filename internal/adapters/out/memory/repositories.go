package memory

import (
	"context"
	"sort"
	"time"

	"trackit/internal/core/domain/model/carrier"
	"trackit/internal/core/domain/model/history"
	"trackit/internal/core/domain/model/kernel"
	"trackit/internal/core/domain/model/order"
	"trackit/internal/core/domain/model/scan"
	"trackit/internal/pkg/errs"
)

type orderRepository struct {
	uow *UnitOfWork
}

func (r *orderRepository) Add(_ context.Context, aggregate *order.Order) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}
	r.uow.orders[aggregate.ID()] = orderWrite{
		aggregate: aggregate,
		snap:      cloneSnapshot(aggregate.Snapshot()),
		isNew:     true,
	}
	return r.uow.flush()
}

// Update fails early when the stored version already moved on. Commit checks
// again under the slot lock.
func (r *orderRepository) Update(_ context.Context, aggregate *order.Order) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	isNew := false
	if staged, ok := r.uow.orders[aggregate.ID()]; ok && staged.isNew {
		isNew = true
	} else if err := r.checkVersion(aggregate); err != nil {
		return err
	}

	snap := cloneSnapshot(aggregate.Snapshot())
	if !isNew {
		snap.Version++
	}
	r.uow.orders[aggregate.ID()] = orderWrite{aggregate: aggregate, snap: snap, isNew: isNew}
	return r.uow.flush()
}

func (r *orderRepository) checkVersion(aggregate *order.Order) error {
	sl, ok := r.uow.store.existingSlot(aggregate.ID())
	if !ok {
		return errs.NewObjectNotFoundError("order", aggregate.ID())
	}
	sl.mu.Lock()
	defer sl.mu.Unlock()

	if !sl.exists {
		return errs.NewObjectNotFoundError("order", aggregate.ID())
	}
	if sl.snap.Version != aggregate.Version() {
		return errs.NewVersionIsInvalidError("order")
	}
	return nil
}

func (r *orderRepository) Get(_ context.Context, id kernel.UUID) (*order.Order, error) {
	snap, ok := r.load(id)
	if !ok {
		return nil, errs.NewObjectNotFoundError("order", id)
	}
	return order.Restore(snap)
}

func (r *orderRepository) load(id kernel.UUID) (order.Snapshot, bool) {
	sl, ok := r.uow.store.existingSlot(id)
	if !ok {
		return order.Snapshot{}, false
	}
	sl.mu.Lock()
	defer sl.mu.Unlock()
	if !sl.exists {
		return order.Snapshot{}, false
	}
	return cloneSnapshot(sl.snap), true
}

func (r *orderRepository) ListActiveByCarrier(_ context.Context, carrierID kernel.UUID) ([]*order.Order, error) {
	snaps := r.collect(func(s order.Snapshot) bool {
		return s.CarrierID != nil && s.CarrierID.IsEqual(carrierID) && !s.Status.IsTerminal()
	})
	sort.Slice(snaps, func(i, j int) bool {
		return acceptedAt(snaps[i]).Before(acceptedAt(snaps[j]))
	})
	return restoreAll(snaps)
}

func (r *orderRepository) ListByCustomer(_ context.Context, customerID kernel.UUID) ([]*order.Order, error) {
	snaps := r.collect(func(s order.Snapshot) bool {
		return s.CustomerID.IsEqual(customerID)
	})
	sort.Slice(snaps, func(i, j int) bool {
		return snaps[i].Timeline.CreatedAt.After(snaps[j].Timeline.CreatedAt)
	})
	return restoreAll(snaps)
}

func (r *orderRepository) collect(keep func(order.Snapshot) bool) []order.Snapshot {
	var out []order.Snapshot
	r.uow.store.slots.Range(func(_, v any) bool {
		sl := v.(*slot)
		sl.mu.Lock()
		if sl.exists && keep(sl.snap) {
			out = append(out, cloneSnapshot(sl.snap))
		}
		sl.mu.Unlock()
		return true
	})
	return out
}

func acceptedAt(s order.Snapshot) time.Time {
	if s.Timeline.AcceptedAt == nil {
		return time.Time{}
	}
	return *s.Timeline.AcceptedAt
}

func restoreAll(snaps []order.Snapshot) ([]*order.Order, error) {
	out := make([]*order.Order, 0, len(snaps))
	for _, s := range snaps {
		o, err := order.Restore(s)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, nil
}

type scanRepository struct {
	uow *UnitOfWork
}

func (r *scanRepository) Add(_ context.Context, record *scan.Record) error {
	if err := record.Validate(); err != nil {
		return err
	}
	r.uow.scans = append(r.uow.scans, record)
	return r.uow.flush()
}

func (r *scanRepository) ListByOrder(_ context.Context, orderID kernel.UUID) ([]*scan.Record, error) {
	sl, ok := r.uow.store.existingSlot(orderID)
	if !ok {
		return []*scan.Record{}, nil
	}
	sl.mu.Lock()
	defer sl.mu.Unlock()

	out := make([]*scan.Record, len(sl.scans))
	copy(out, sl.scans)
	return out, nil
}

type carrierRepository struct {
	uow *UnitOfWork
}

func (r *carrierRepository) Add(_ context.Context, c *carrier.Carrier) error {
	if err := c.Validate(); err != nil {
		return err
	}
	r.uow.carriers = append(r.uow.carriers, c)
	return r.uow.flush()
}

func (r *carrierRepository) Get(_ context.Context, id kernel.UUID) (*carrier.Carrier, error) {
	r.uow.store.carriersMu.RLock()
	row, ok := r.uow.store.carriers[id]
	r.uow.store.carriersMu.RUnlock()
	if !ok {
		return nil, errs.NewObjectNotFoundError("carrier", id)
	}
	return carrier.RestoreCarrier(id, row.name, row.available)
}

// GetAllAvailable returns the pool sorted by name.
func (r *carrierRepository) GetAllAvailable(_ context.Context) ([]*carrier.Carrier, error) {
	r.uow.store.carriersMu.RLock()
	defer r.uow.store.carriersMu.RUnlock()

	out := make([]*carrier.Carrier, 0, len(r.uow.store.carriers))
	for id, row := range r.uow.store.carriers {
		if !row.available {
			continue
		}
		c, err := carrier.RestoreCarrier(id, row.name, row.available)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name() == out[j].Name() {
			return out[i].ID().Less(out[j].ID())
		}
		return out[i].Name() < out[j].Name()
	})
	return out, nil
}

type outboxRepository struct {
	uow *UnitOfWork
}

func (r *outboxRepository) Add(_ context.Context, events ...order.Event) error {
	r.uow.events = append(r.uow.events, events...)
	return r.uow.flush()
}

func (r *outboxRepository) ListPending(_ context.Context, limit int) ([]order.Event, error) {
	r.uow.store.outboxMu.Lock()
	defer r.uow.store.outboxMu.Unlock()

	out := make([]order.Event, 0)
	for _, row := range r.uow.store.outbox {
		if len(out) >= limit {
			break
		}
		if row.publishedAt == nil {
			out = append(out, row.event)
		}
	}
	return out, nil
}

func (r *outboxRepository) MarkPublished(_ context.Context, eventID kernel.UUID, at time.Time) error {
	r.uow.published = append(r.uow.published, publishMark{eventID: eventID, at: at})
	return r.uow.flush()
}

type historyRepository struct {
	uow *UnitOfWork
}

// Add reports false when the order already has a record, stored or staged.
func (r *historyRepository) Add(_ context.Context, record history.Record) (bool, error) {
	if err := record.Validate(); err != nil {
		return false, err
	}
	for _, staged := range r.uow.history {
		if staged.OrderID.IsEqual(record.OrderID) {
			return false, nil
		}
	}

	r.uow.store.historyMu.RLock()
	_, exists := r.uow.store.history[record.OrderID]
	r.uow.store.historyMu.RUnlock()
	if exists {
		return false, nil
	}

	r.uow.history = append(r.uow.history, record)
	return true, r.uow.flush()
}

func (r *historyRepository) ListSuccessfulByCustomer(_ context.Context, customerID kernel.UUID) ([]history.Record, error) {
	r.uow.store.historyMu.RLock()
	defer r.uow.store.historyMu.RUnlock()

	out := make([]history.Record, 0)
	for _, rec := range r.uow.store.history {
		if rec.Successful && rec.CustomerID.IsEqual(customerID) {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RecordedAt.Before(out[j].RecordedAt) })
	return out, nil
}
