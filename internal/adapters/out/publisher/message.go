// Package publisher holds the EventPublisher transports the outbox relay
// fans lifecycle events out through.
//
// Every event goes out as a broadcast copy routed under "order.<status>".
// The broadcast copy never carries the recipient token: when a transition
// issued one, a second copy holding it is routed to the customer alone under
// "customer.<customerId>.order.<status>".
package publisher

import (
	"encoding/json"
	"fmt"
	"time"

	"trackit/internal/core/domain/model/order"
)

// Audiences of an Envelope.
const (
	AudienceBroadcast = "broadcast"
	AudienceCustomer  = "customer"
)

// Message is the wire form of an order.Event.
type Message struct {
	ID             string    `json:"id"`
	OrderID        string    `json:"orderId"`
	NewStatus      string    `json:"newStatus"`
	ActorID        string    `json:"actorId"`
	Timestamp      time.Time `json:"timestamp"`
	RecipientToken *string   `json:"recipientToken,omitempty"`
	CustomerID     string    `json:"customerId"`
	VendorID       string    `json:"vendorId"`
	CarrierID      *string   `json:"carrierId,omitempty"`
}

// NewMessage builds the broadcast form, without the recipient token.
func NewMessage(e order.Event) Message {
	m := Message{
		ID:         e.ID.String(),
		OrderID:    e.OrderID.String(),
		NewStatus:  e.Status.String(),
		ActorID:    e.ActorID.String(),
		Timestamp:  e.OccurredAt.UTC(),
		CustomerID: e.CustomerID.String(),
		VendorID:   e.VendorID.String(),
	}
	if e.CarrierID != nil {
		id := e.CarrierID.String()
		m.CarrierID = &id
	}
	return m
}

// NewCustomerMessage builds the customer's copy, which includes the
// recipient token when the event issued one.
func NewCustomerMessage(e order.Event) Message {
	m := NewMessage(e)
	m.RecipientToken = e.RecipientToken
	return m
}

// Envelope is one addressed copy of an event.
type Envelope struct {
	EventID    string
	Audience   string
	RoutingKey string
	Body       []byte
}

// Envelopes returns the broadcast copy, followed by the customer copy when
// the event carries a recipient token.
func Envelopes(e order.Event) ([]Envelope, error) {
	body, err := Encode(e)
	if err != nil {
		return nil, err
	}
	out := []Envelope{{
		EventID:    e.ID.String(),
		Audience:   AudienceBroadcast,
		RoutingKey: RoutingKey(e),
		Body:       body,
	}}
	if e.RecipientToken == nil {
		return out, nil
	}

	body, err = json.Marshal(NewCustomerMessage(e))
	if err != nil {
		return nil, fmt.Errorf("encode event %s: %w", e.ID, err)
	}
	return append(out, Envelope{
		EventID:    e.ID.String(),
		Audience:   AudienceCustomer,
		RoutingKey: CustomerRoutingKey(e),
		Body:       body,
	}), nil
}

// Encode renders the broadcast body.
func Encode(e order.Event) ([]byte, error) {
	body, err := json.Marshal(NewMessage(e))
	if err != nil {
		return nil, fmt.Errorf("encode event %s: %w", e.ID, err)
	}
	return body, nil
}

// RoutingKey is "order.<status>", the key of the broadcast copy.
func RoutingKey(e order.Event) string {
	return "order." + e.Status.String()
}

// CustomerRoutingKey is "customer.<customerId>.order.<status>".
func CustomerRoutingKey(e order.Event) string {
	return "customer." + e.CustomerID.String() + "." + RoutingKey(e)
}
