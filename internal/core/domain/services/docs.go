// Package services holds the domain logic that does not belong to a single
// aggregate.
//
// The package includes:
//   - ScanValidator: applies a parsed token to an order and builds the scan record
//   - CarrierAssigner: accepts a pending order by picking a carrier and minting
//     the package token
//   - DeliveryPredictor: fits the per-customer window/speed vote from history
package services
