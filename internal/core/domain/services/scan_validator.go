package services

import (
	"time"

	"trackit/internal/core/domain/model/kernel"
	"trackit/internal/core/domain/model/order"
	"trackit/internal/core/domain/model/rejection"
	"trackit/internal/core/domain/model/scan"
	"trackit/internal/core/domain/model/token"
)

// ScanResult is what an accepted scan changed.
type ScanResult struct {
	order.ScanOutcome

	// Record is the audit entry to append together with the order update.
	Record *scan.Record
}

// ScanValidator decides whether a scanned token may advance an order and
// applies the transition when it may.
//
// The caller does the first three steps of a scan: parse the payload
// (MalformedToken) and look the order up by the parsed id (OrderNotFound).
// Validate then dispatches on the token class. A rejection leaves the order
// untouched and produces no record.
type ScanValidator struct {
	minter order.TokenMinter
	now    func() time.Time
}

// NewScanValidator builds a validator that mints recipient tokens with minter
// and stamps transitions with now.
func NewScanValidator(minter order.TokenMinter, now func() time.Time) *ScanValidator {
	return &ScanValidator{minter: minter, now: now}
}

// Validate applies tok, scanned by actorID, to o.
func (v *ScanValidator) Validate(o *order.Order, tok token.Token, actorID kernel.UUID) (ScanResult, error) {
	if err := o.Validate(); err != nil {
		return ScanResult{}, err
	}
	if err := actorID.Validate(); err != nil {
		return ScanResult{}, rejection.Wrap(rejection.Unauthorized, err)
	}
	if !tok.OrderID().IsEqual(o.ID()) {
		return ScanResult{}, rejection.Newf(rejection.OrderNotFound, "token names order %s", tok.OrderID())
	}

	if c := tok.Class(); c != token.Package && c != token.Recipient {
		return ScanResult{}, rejection.Newf(rejection.UnknownTokenClass, "tag %q", tok.Tag())
	}

	at := v.now()
	record, err := scan.NewRecord(o.ID(), actorID, tok.Class(), tok.Raw(), at)
	if err != nil {
		return ScanResult{}, err
	}

	var outcome order.ScanOutcome
	if tok.Class() == token.Package {
		outcome, err = o.RegisterPackageScan(actorID, tok.Raw(), at, v.minter)
	} else {
		outcome, err = o.RegisterRecipientScan(actorID, tok.Raw(), at)
	}
	if err != nil {
		return ScanResult{}, err
	}

	return ScanResult{ScanOutcome: outcome, Record: record}, nil
}
