package order

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"trackit/internal/core/domain/model/kernel"
	"trackit/internal/core/domain/model/rejection"
	"trackit/internal/pkg/errs"
)

var (
	// ErrOrderIsNotConstructed is returned when an Order instance was not created through
	// NewOrder or Restore.
	ErrOrderIsNotConstructed = errors.New("Order must be created via NewOrder or Restore")
)

// TokenMinter issues the recipient token when the third package scan lands.
type TokenMinter interface {
	MintRecipientToken(orderID, customerID kernel.UUID) (string, error)
}

// ScanOutcome is what an accepted scan did to the order.
type ScanOutcome struct {
	Status               Status
	ScanCount            int
	RecipientTokenIssued bool
}

// Timeline holds the moment each lifecycle status was reached.
// A nil pointer means the status has not been reached.
type Timeline struct {
	CreatedAt        time.Time
	AcceptedAt       *time.Time
	RejectedAt       *time.Time
	DispatchedAt     *time.Time
	InTransitAt      *time.Time
	OutForDeliveryAt *time.Time
	DeliveredAt      *time.Time
}

// At returns the time status s was reached, or nil.
func (t Timeline) At(s Status) *time.Time {
	switch s {
	case Pending:
		c := t.CreatedAt
		return &c
	case Accepted:
		return t.AcceptedAt
	case Rejected:
		return t.RejectedAt
	case Dispatched:
		return t.DispatchedAt
	case InTransit:
		return t.InTransitAt
	case OutForDelivery:
		return t.OutForDeliveryAt
	case Delivered:
		return t.DeliveredAt
	default:
		return nil
	}
}

func (t *Timeline) stamp(s Status, at time.Time) {
	at = at.UTC()
	switch s {
	case Accepted:
		t.AcceptedAt = &at
	case Rejected:
		t.RejectedAt = &at
	case Dispatched:
		t.DispatchedAt = &at
	case InTransit:
		t.InTransitAt = &at
	case OutForDelivery:
		t.OutForDeliveryAt = &at
	case Delivered:
		t.DeliveredAt = &at
	default:
	}
}

func (t Timeline) clone() Timeline {
	cp := func(p *time.Time) *time.Time {
		if p == nil {
			return nil
		}
		v := *p
		return &v
	}
	return Timeline{
		CreatedAt:        t.CreatedAt,
		AcceptedAt:       cp(t.AcceptedAt),
		RejectedAt:       cp(t.RejectedAt),
		DispatchedAt:     cp(t.DispatchedAt),
		InTransitAt:      cp(t.InTransitAt),
		OutForDeliveryAt: cp(t.OutForDeliveryAt),
		DeliveredAt:      cp(t.DeliveredAt),
	}
}

// Order is the aggregate root of a delivery. It owns the lifecycle status,
// both tokens and the package scan counter, and it is the only place those
// change.
//
// Order follows these invariants:
//   - status moves forward along the fixed path, never skips, never goes back
//   - the scan counter is in [0, 3] and matches the status
//   - a recipient token exists iff the counter is 3
//   - a carrier and a package token exist iff the order was accepted
//   - delivered and rejected orders are immutable
//
// Every method checks all its preconditions before mutating anything, so a
// rejected call leaves the order untouched.
type Order struct {
	id              kernel.UUID
	customerID      kernel.UUID
	vendorID        kernel.UUID
	carrierID       *kernel.UUID
	description     string
	window          Window
	speed           Speed
	status          Status
	packageToken    *string
	recipientToken  *string
	scanCount       int
	estimatedAmount int64
	finalAmount     *int64
	timeline        Timeline

	// version is the stored version the order was loaded with.
	version int

	events []Event

	isConstructed bool
}

// NewOrder creates a pending order placed by a customer with a vendor.
//
// Parameters:
//   - id: order identifier
//   - customerID, vendorID: the two parties
//   - description: free text, must not be blank
//   - window, speed: the customer's delivery preferences
//   - estimatedAmount: price estimate in minor currency units, >= 0
//   - createdAt: creation time, stored in UTC
//
// Returns the order with one pending Event raised, or every validation
// failure joined.
//
// Example:
//
//	o, err := order.NewOrder(kernel.NewUUID(), customerID, vendorID,
//	    "2 boxes of books", order.Window1Hour, order.SpeedStandard, 12_50, time.Now())
func NewOrder(
	id, customerID, vendorID kernel.UUID,
	description string,
	window Window,
	speed Speed,
	estimatedAmount int64,
	createdAt time.Time,
) (*Order, error) {
	o := &Order{
		status:        Pending,
		isConstructed: true,
	}

	if err := errors.Join(
		o.setID(id),
		o.setParties(customerID, vendorID),
		o.setDescription(description),
		window.Validate(),
		speed.Validate(),
		o.setEstimatedAmount(estimatedAmount),
		o.setCreatedAt(createdAt),
	); err != nil {
		return nil, err
	}

	o.window = window
	o.speed = speed
	o.raise(customerID, o.timeline.CreatedAt)

	return o, nil
}

// Snapshot is the full persisted state of an order.
type Snapshot struct {
	ID              kernel.UUID
	CustomerID      kernel.UUID
	VendorID        kernel.UUID
	CarrierID       *kernel.UUID
	Description     string
	Window          Window
	Speed           Speed
	Status          Status
	PackageToken    *string
	RecipientToken  *string
	ScanCount       int
	EstimatedAmount int64
	FinalAmount     *int64
	Timeline        Timeline
	Version         int
}

// Restore rebuilds an order from storage. The snapshot must satisfy every
// aggregate invariant; a row that does not is reported, not repaired.
func Restore(s Snapshot) (*Order, error) {
	o := &Order{
		id:              s.ID,
		customerID:      s.CustomerID,
		vendorID:        s.VendorID,
		carrierID:       s.CarrierID,
		description:     s.Description,
		window:          s.Window,
		speed:           s.Speed,
		status:          s.Status,
		packageToken:    s.PackageToken,
		recipientToken:  s.RecipientToken,
		scanCount:       s.ScanCount,
		estimatedAmount: s.EstimatedAmount,
		finalAmount:     s.FinalAmount,
		timeline:        s.Timeline.clone(),
		version:         s.Version,
		isConstructed:   true,
	}

	if err := o.checkInvariants(); err != nil {
		return nil, fmt.Errorf("restore order %s: %w", s.ID, err)
	}

	return o, nil
}

// Snapshot exports the state for persistence. Version is the version the
// order was loaded with; stores compare against it and write Version+1.
func (o *Order) Snapshot() Snapshot {
	return Snapshot{
		ID:              o.id,
		CustomerID:      o.customerID,
		VendorID:        o.vendorID,
		CarrierID:       o.CarrierID(),
		Description:     o.description,
		Window:          o.window,
		Speed:           o.speed,
		Status:          o.status,
		PackageToken:    o.PackageToken(),
		RecipientToken:  o.RecipientToken(),
		ScanCount:       o.scanCount,
		EstimatedAmount: o.estimatedAmount,
		FinalAmount:     o.FinalAmount(),
		Timeline:        o.timeline.clone(),
		Version:         o.version,
	}
}

// Validate ensures the Order instance was built through NewOrder or Restore.
func (o *Order) Validate() error {
	if o == nil || !o.isConstructed {
		return ErrOrderIsNotConstructed
	}
	return nil
}

// IsEqual compares two orders by identity.
func (o *Order) IsEqual(other *Order) bool {
	return other != nil && o.id.IsEqual(other.id)
}

func (o *Order) ID() kernel.UUID         { return o.id }
func (o *Order) CustomerID() kernel.UUID { return o.customerID }
func (o *Order) VendorID() kernel.UUID   { return o.vendorID }
func (o *Order) Description() string     { return o.description }
func (o *Order) Window() Window          { return o.window }
func (o *Order) Speed() Speed            { return o.speed }
func (o *Order) Status() Status          { return o.status }
func (o *Order) ScanCount() int          { return o.scanCount }
func (o *Order) EstimatedAmount() int64  { return o.estimatedAmount }
func (o *Order) Timeline() Timeline      { return o.timeline.clone() }
func (o *Order) Version() int            { return o.version }

// CarrierID returns the assigned carrier, nil before acceptance.
func (o *Order) CarrierID() *kernel.UUID {
	if o.carrierID == nil {
		return nil
	}
	id := *o.carrierID
	return &id
}

// PackageToken returns the current package token, nil before acceptance.
func (o *Order) PackageToken() *string {
	return cloneString(o.packageToken)
}

// RecipientToken returns the current recipient token, nil before the third package scan.
func (o *Order) RecipientToken() *string {
	return cloneString(o.recipientToken)
}

// FinalAmount returns the charged amount, nil until delivery.
func (o *Order) FinalAmount() *int64 {
	if o.finalAmount == nil {
		return nil
	}
	v := *o.finalAmount
	return &v
}

// CheckVendorDecision reports whether actorID may accept or reject the order
// now. Use it before doing side work such as carrier selection.
func (o *Order) CheckVendorDecision(actorID kernel.UUID) error {
	if !o.vendorID.IsEqual(actorID) {
		return rejection.New(rejection.Unauthorized, "only the order's vendor can accept or reject it")
	}
	if o.status != Pending {
		return rejection.Newf(rejection.InvalidTransition, "order is already %s", o.status)
	}
	return nil
}

// Accept records the vendor's acceptance: the carrier is assigned and the
// package token stored.
//
// Returns Unauthorized when actorID is not the vendor and InvalidTransition
// when the order is not pending.
func (o *Order) Accept(actorID, carrierID kernel.UUID, packageToken string, at time.Time) error {
	if err := o.CheckVendorDecision(actorID); err != nil {
		return err
	}
	if err := carrierID.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(packageToken) == "" {
		return errs.NewValueIsRequiredError("package token")
	}

	next, err := o.status.Accept()
	if err != nil {
		return err
	}

	o.status = next
	o.carrierID = &carrierID
	o.packageToken = &packageToken
	o.timeline.stamp(next, at)
	o.raise(actorID, at)
	return nil
}

// Reject records the vendor's refusal. Rejected is terminal.
func (o *Order) Reject(actorID kernel.UUID, at time.Time) error {
	if err := o.CheckVendorDecision(actorID); err != nil {
		return err
	}

	next, err := o.status.Reject()
	if err != nil {
		return err
	}

	o.status = next
	o.timeline.stamp(next, at)
	o.raise(actorID, at)
	return nil
}

// RegisterPackageScan applies one package token scan.
//
// Checks, in order:
//  1. scanned equals the current package token, else WrongToken
//  2. actorID is the assigned carrier, else Unauthorized
//  3. fewer than three scans were taken, else AlreadyMaxScanned
//  4. the status matches the scan counter, else InvalidTransition
//
// The third scan mints the recipient token through minter.
func (o *Order) RegisterPackageScan(
	actorID kernel.UUID,
	scanned string,
	at time.Time,
	minter TokenMinter,
) (ScanOutcome, error) {
	if o.packageToken == nil || *o.packageToken != scanned {
		return ScanOutcome{}, rejection.New(rejection.WrongToken, "package token does not match the order")
	}
	if err := o.checkCarrier(actorID); err != nil {
		return ScanOutcome{}, err
	}

	next, err := o.status.AdvanceByPackageScan(o.scanCount)
	if err != nil {
		return ScanOutcome{}, err
	}

	var recipient *string
	if next == OutForDelivery {
		if minter == nil {
			return ScanOutcome{}, errs.NewValueIsRequiredError("token minter")
		}
		minted, mintErr := minter.MintRecipientToken(o.id, o.customerID)
		if mintErr != nil {
			return ScanOutcome{}, fmt.Errorf("mint recipient token: %w", mintErr)
		}
		recipient = &minted
	}

	o.status = next
	o.scanCount++
	o.recipientToken = recipient
	o.timeline.stamp(next, at)
	o.raise(actorID, at)

	return ScanOutcome{
		Status:               o.status,
		ScanCount:            o.scanCount,
		RecipientTokenIssued: recipient != nil,
	}, nil
}

// RegisterRecipientScan applies the final handoff scan.
//
// Checks, in order:
//  1. the order is out for delivery, else NotReadyForDelivery
//  2. scanned equals the current recipient token, else WrongToken
//  3. actorID is the assigned carrier, else Unauthorized
//
// On success the order is delivered and the final amount is set to the estimate.
func (o *Order) RegisterRecipientScan(actorID kernel.UUID, scanned string, at time.Time) (ScanOutcome, error) {
	next, err := o.status.Deliver()
	if err != nil {
		return ScanOutcome{}, err
	}
	if o.recipientToken == nil || *o.recipientToken != scanned {
		return ScanOutcome{}, rejection.New(rejection.WrongToken, "recipient token does not match the order")
	}
	if err = o.checkCarrier(actorID); err != nil {
		return ScanOutcome{}, err
	}

	final := o.estimatedAmount
	o.status = next
	o.finalAmount = &final
	o.timeline.stamp(next, at)
	o.raise(actorID, at)

	return ScanOutcome{Status: o.status, ScanCount: o.scanCount}, nil
}

func (o *Order) checkCarrier(actorID kernel.UUID) error {
	if o.carrierID == nil || !o.carrierID.IsEqual(actorID) {
		return rejection.New(rejection.Unauthorized, "scanner is not the assigned carrier")
	}
	return nil
}

func (o *Order) checkInvariants() error {
	problems := []error{
		o.id.Validate(),
		o.customerID.Validate(),
		o.vendorID.Validate(),
		o.window.Validate(),
		o.speed.Validate(),
		o.status.Validate(),
	}
	if strings.TrimSpace(o.description) == "" {
		problems = append(problems, errs.NewValueIsRequiredError("description"))
	}
	if o.estimatedAmount < 0 {
		problems = append(problems, errs.NewValueIsOutOfRangeError("estimated amount", o.estimatedAmount, 0, "any"))
	}
	if o.version < 0 {
		problems = append(problems, errs.NewValueIsOutOfRangeError("version", o.version, 0, "any"))
	}
	if o.scanCount < 0 || o.scanCount > MaxPackageScans {
		problems = append(problems, errs.NewValueIsOutOfRangeError("scan count", o.scanCount, 0, MaxPackageScans))
	}
	if err := errors.Join(problems...); err != nil {
		return err
	}

	mismatch := func(what string, format string, args ...any) error {
		return errs.NewValueIsInvalidErrorWithCause(what, fmt.Errorf(format, args...))
	}

	if want := o.status.ExpectedScanCount(); o.scanCount != want {
		problems = append(problems, mismatch("scan count", "%s order must have %d scans, has %d", o.status, want, o.scanCount))
	}
	if (o.recipientToken != nil) != (o.scanCount == MaxPackageScans) {
		problems = append(problems, mismatch("recipient token", "present=%t with %d scans", o.recipientToken != nil, o.scanCount))
	}
	if (o.carrierID != nil) != o.status.HasCarrier() {
		problems = append(problems, mismatch("carrier", "present=%t for %s order", o.carrierID != nil, o.status))
	}
	if (o.packageToken != nil) != o.status.HasCarrier() {
		problems = append(problems, mismatch("package token", "present=%t for %s order", o.packageToken != nil, o.status))
	}
	if (o.finalAmount != nil) != (o.status == Delivered) {
		problems = append(problems, mismatch("final amount", "present=%t for %s order", o.finalAmount != nil, o.status))
	}
	if o.timeline.CreatedAt.IsZero() {
		problems = append(problems, errs.NewValueIsRequiredError("created at"))
	}
	for _, s := range Statuses() {
		if s == Pending {
			continue
		}
		if reached, stamped := o.status.Reached(s), o.timeline.At(s) != nil; reached != stamped {
			problems = append(problems, mismatch("timeline", "%s timestamp present=%t for %s order", s, stamped, o.status))
		}
	}

	return errors.Join(problems...)
}

func (o *Order) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	o.id = id
	return nil
}

func (o *Order) setParties(customerID, vendorID kernel.UUID) error {
	if err := errors.Join(customerID.Validate(), vendorID.Validate()); err != nil {
		return err
	}
	o.customerID = customerID
	o.vendorID = vendorID
	return nil
}

func (o *Order) setDescription(description string) error {
	description = strings.TrimSpace(description)
	if description == "" {
		return errs.NewValueIsRequiredError("description")
	}
	o.description = description
	return nil
}

func (o *Order) setEstimatedAmount(amount int64) error {
	if amount < 0 {
		return errs.NewValueIsInvalidErrorWithCause("estimated amount", fmt.Errorf("%d is negative", amount))
	}
	o.estimatedAmount = amount
	return nil
}

func (o *Order) setCreatedAt(at time.Time) error {
	if at.IsZero() {
		return errs.NewValueIsRequiredError("created at")
	}
	o.timeline.CreatedAt = at.UTC()
	return nil
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
