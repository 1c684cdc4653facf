// Package memory is the in-process order lifecycle store.
//
// Every order lives in its own slot guarded by its own mutex, together with
// its scan records. A unit of work stages its writes and applies them on
// Commit: it locks the touched slots in id order, checks every expected
// version, then applies everything and appends the events to the outbox.
// There is no store-wide lock on the scan path, so scans of different orders
// never wait for each other.
package memory

import (
	"sort"
	"sync"
	"time"

	"trackit/internal/core/domain/model/history"
	"trackit/internal/core/domain/model/kernel"
	"trackit/internal/core/domain/model/order"
	"trackit/internal/core/domain/model/scan"
)

type slot struct {
	mu     sync.Mutex
	exists bool
	snap   order.Snapshot
	scans  []*scan.Record
}

type carrierRow struct {
	name      string
	available bool
}

type outboxRow struct {
	event       order.Event
	publishedAt *time.Time
}

// Store holds every table of the in-memory adapter.
type Store struct {
	slots sync.Map // kernel.UUID -> *slot

	carriersMu sync.RWMutex
	carriers   map[kernel.UUID]carrierRow

	historyMu sync.RWMutex
	history   map[kernel.UUID]history.Record

	outboxMu sync.Mutex
	outbox   []outboxRow
}

func NewStore() *Store {
	return &Store{
		carriers: make(map[kernel.UUID]carrierRow),
		history:  make(map[kernel.UUID]history.Record),
	}
}

func (s *Store) slot(id kernel.UUID) *slot {
	v, _ := s.slots.LoadOrStore(id, &slot{})
	return v.(*slot)
}

func (s *Store) existingSlot(id kernel.UUID) (*slot, bool) {
	v, ok := s.slots.Load(id)
	if !ok {
		return nil, false
	}
	return v.(*slot), true
}

// lockSlots locks the slots of ids in a stable order and returns the unlock
// function.
func (s *Store) lockSlots(ids []kernel.UUID) (map[kernel.UUID]*slot, func()) {
	sorted := make([]kernel.UUID, len(ids))
	copy(sorted, ids)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Less(sorted[j]) })

	locked := make(map[kernel.UUID]*slot, len(sorted))
	held := make([]*slot, 0, len(sorted))
	for _, id := range sorted {
		if _, dup := locked[id]; dup {
			continue
		}
		sl := s.slot(id)
		sl.mu.Lock()
		locked[id] = sl
		held = append(held, sl)
	}

	return locked, func() {
		for i := len(held) - 1; i >= 0; i-- {
			held[i].mu.Unlock()
		}
	}
}

// cloneSnapshot deep copies the pointer fields so stored rows never alias a
// live aggregate.
func cloneSnapshot(s order.Snapshot) order.Snapshot {
	out := s
	out.CarrierID = clonePtr(s.CarrierID)
	out.PackageToken = clonePtr(s.PackageToken)
	out.RecipientToken = clonePtr(s.RecipientToken)
	out.FinalAmount = clonePtr(s.FinalAmount)
	out.Timeline.AcceptedAt = clonePtr(s.Timeline.AcceptedAt)
	out.Timeline.RejectedAt = clonePtr(s.Timeline.RejectedAt)
	out.Timeline.DispatchedAt = clonePtr(s.Timeline.DispatchedAt)
	out.Timeline.InTransitAt = clonePtr(s.Timeline.InTransitAt)
	out.Timeline.OutForDeliveryAt = clonePtr(s.Timeline.OutForDeliveryAt)
	out.Timeline.DeliveredAt = clonePtr(s.Timeline.DeliveredAt)
	return out
}

func sortEvents(events []order.Event) {
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].OccurredAt.Before(events[j].OccurredAt)
	})
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
