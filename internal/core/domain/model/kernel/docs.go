// Package kernel holds the primitives shared by every aggregate of the tracking
// domain. Today that is the UUID value object used for orders, actors,
// carriers, scan records and outbox events.
package kernel
