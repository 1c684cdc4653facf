package order

import (
	"time"

	"trackit/internal/core/domain/model/kernel"
)

// Event is raised by every committed transition, creation included.
// The unit of work writes pending events to the outbox in the same
// transaction as the order row; the relay job fans them out afterwards.
type Event struct {
	ID             kernel.UUID
	OrderID        kernel.UUID
	Status         Status
	ActorID        kernel.UUID
	OccurredAt     time.Time
	RecipientToken *string
	CustomerID     kernel.UUID
	VendorID       kernel.UUID
	CarrierID      *kernel.UUID
}

func (o *Order) raise(actorID kernel.UUID, at time.Time) {
	e := Event{
		ID:         kernel.NewUUID(),
		OrderID:    o.id,
		Status:     o.status,
		ActorID:    actorID,
		OccurredAt: at,
		CustomerID: o.customerID,
		VendorID:   o.vendorID,
	}
	if o.carrierID != nil {
		id := *o.carrierID
		e.CarrierID = &id
	}
	if o.status == OutForDelivery && o.recipientToken != nil {
		tok := *o.recipientToken
		e.RecipientToken = &tok
	}
	o.events = append(o.events, e)
}

// DomainEvents returns the events raised since the order was built or loaded.
func (o *Order) DomainEvents() []Event {
	out := make([]Event, len(o.events))
	copy(out, o.events)
	return out
}

// ClearDomainEvents drops pending events once they are persisted.
func (o *Order) ClearDomainEvents() {
	o.events = nil
}
