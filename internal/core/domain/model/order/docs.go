// Package order provides the Order aggregate root and its lifecycle state
// machine.
//
// The package includes:
//   - Order: identity, parties, preferences, tokens, scan counter and timeline
//   - Status: the fixed path pending -> accepted -> dispatched -> in_transit ->
//     out_for_delivery -> delivered, plus terminal rejected
//   - Window and Speed: the customer's delivery preferences
//   - Event: raised by every transition and flushed to the outbox
//
// Key business rules:
//   - only the vendor accepts or rejects, and only a pending order
//   - only the assigned carrier scans, with the order's current token
//   - exactly three package scans, then one recipient scan
//   - rejected calls never mutate the aggregate
package order
