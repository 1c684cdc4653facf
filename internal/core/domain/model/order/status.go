package order

import (
	"fmt"

	"trackit/internal/core/domain/model/rejection"
	"trackit/internal/pkg/errs"
)

// MaxPackageScans is the number of custody scans a package token allows.
const MaxPackageScans = 3

// Status represents the lifecycle state of an order.
//
// State transitions:
//
//	Pending ──┬──> Accepted ──> Dispatched ──> InTransit ──> OutForDelivery ──> Delivered
//	          │
//	          └──> Rejected
//
// Every arrow is taken at most once. Delivered and Rejected are terminal.
// The integer value is the persisted form; String returns the API code.
type Status int

const (
	// Unknown catches uninitialized Status values.
	Unknown Status = iota

	// Pending is the initial status: the vendor has not answered yet.
	Pending

	// Accepted means the vendor took the order, a carrier is assigned and
	// the package token is minted.
	Accepted

	// Dispatched follows the first package scan.
	Dispatched

	// InTransit follows the second package scan.
	InTransit

	// OutForDelivery follows the third package scan, which also mints the
	// recipient token.
	OutForDelivery

	// Delivered follows the recipient scan. Terminal.
	Delivered

	// Rejected is reachable only from Pending. Terminal.
	Rejected
)

type statusInfo struct {
	code    string
	display string
	// scans is the number of package scans an order in this status has taken.
	scans int
	// rank is the position on the delivery path; Rejected sits beside Accepted.
	rank int
}

func getStatusInfos() map[Status]statusInfo {
	return map[Status]statusInfo{
		Pending:        {"pending", "Pending", 0, 0},
		Accepted:       {"accepted", "Accepted", 0, 1},
		Dispatched:     {"dispatched", "Dispatched", 1, 2},
		InTransit:      {"in_transit", "In Transit", 2, 3},
		OutForDelivery: {"out_for_delivery", "Out for Delivery", 3, 4},
		Delivered:      {"delivered", "Delivered", 3, 5},
		Rejected:       {"rejected", "Rejected", 0, 1},
	}
}

// Statuses returns every valid status in path order.
func Statuses() []Status {
	return []Status{Pending, Accepted, Dispatched, InTransit, OutForDelivery, Delivered, Rejected}
}

// ParseStatus maps an API code such as "in_transit" back to a Status.
func ParseStatus(code string) (Status, error) {
	for s, info := range getStatusInfos() {
		if info.code == code {
			return s, nil
		}
	}
	return Unknown, errs.NewValueIsInvalidErrorWithCause("status is invalid", fmt.Errorf("%q is not a valid status", code))
}

// Validate rejects Unknown and out of range values.
func (s Status) Validate() error {
	if _, ok := getStatusInfos()[s]; !ok {
		return errs.NewValueIsInvalidErrorWithCause("status is invalid", fmt.Errorf("%d is not a valid status", s))
	}
	return nil
}

// String returns the snake_case code used in events and API payloads.
func (s Status) String() string {
	if info, ok := getStatusInfos()[s]; ok {
		return info.code
	}
	return "unknown"
}

// DisplayName returns the label shown to people, e.g. "Out for Delivery".
func (s Status) DisplayName() string {
	if info, ok := getStatusInfos()[s]; ok {
		return info.display
	}
	return "Unknown"
}

// IsTerminal reports whether no transition leaves s.
func (s Status) IsTerminal() bool {
	return s == Delivered || s == Rejected
}

// ExpectedScanCount is the package scan counter every order in status s must carry.
func (s Status) ExpectedScanCount() int {
	return getStatusInfos()[s].scans
}

// HasCarrier reports whether an order in status s must have a carrier and a
// package token.
func (s Status) HasCarrier() bool {
	return s != Unknown && s != Pending && s != Rejected
}

// Reached reports whether an order in status s has passed through other.
// Rejected only reaches itself and Pending.
func (s Status) Reached(other Status) bool {
	if s == Rejected || other == Rejected {
		return s == other || other == Pending
	}
	return getStatusInfos()[s].rank >= getStatusInfos()[other].rank && s != Unknown && other != Unknown
}

// Accept transitions Pending to Accepted.
func (s Status) Accept() (Status, error) {
	if s != Pending {
		return Unknown, rejection.Newf(rejection.InvalidTransition, "cannot accept an order that is %s", s)
	}
	return Accepted, nil
}

// Reject transitions Pending to Rejected.
func (s Status) Reject() (Status, error) {
	if s != Pending {
		return Unknown, rejection.Newf(rejection.InvalidTransition, "cannot reject an order that is %s", s)
	}
	return Rejected, nil
}

// AdvanceByPackageScan returns the status a package scan leads to, given the
// number of package scans already taken.
//
//	counter 0: Accepted   -> Dispatched
//	counter 1: Dispatched -> InTransit
//	counter 2: InTransit  -> OutForDelivery
//	counter 3: AlreadyMaxScanned
//
// A counter that disagrees with s is an InvalidTransition.
func (s Status) AdvanceByPackageScan(scanCount int) (Status, error) {
	if scanCount >= MaxPackageScans {
		return Unknown, rejection.Newf(rejection.AlreadyMaxScanned, "%d of %d package scans used", scanCount, MaxPackageScans)
	}

	var required, next Status
	switch scanCount {
	case 0:
		required, next = Accepted, Dispatched
	case 1:
		required, next = Dispatched, InTransit
	case 2:
		required, next = InTransit, OutForDelivery
	default:
		return Unknown, rejection.Newf(rejection.InvalidTransition, "scan counter %d is negative", scanCount)
	}

	if s != required {
		return Unknown, rejection.Newf(rejection.InvalidTransition,
			"package scan %d requires %s, order is %s", scanCount+1, required, s)
	}
	return next, nil
}

// Deliver transitions OutForDelivery to Delivered.
func (s Status) Deliver() (Status, error) {
	if s != OutForDelivery {
		return Unknown, rejection.Newf(rejection.NotReadyForDelivery, "order is %s", s)
	}
	return Delivered, nil
}
