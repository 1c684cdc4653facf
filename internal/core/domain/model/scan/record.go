// Package scan holds the append-only audit trail of accepted scans.
package scan

import (
	"errors"
	"strings"
	"time"

	"trackit/internal/core/domain/model/kernel"
	"trackit/internal/core/domain/model/token"
	"trackit/internal/pkg/errs"
	"trackit/internal/pkg/guard"
)

// ErrRecordIsNotConstructed is returned when using an improperly initialized Record.
var ErrRecordIsNotConstructed = errors.New("scan Record must be created via NewRecord or RestoreRecord")

// Record is one accepted scan. Rejected scans leave no record. The number of
// package records of an order equals its scan counter.
type Record struct {
	id        kernel.UUID
	orderID   kernel.UUID
	actorID   kernel.UUID
	class     token.Class
	token     string
	scannedAt time.Time
	guard     guard.ConstructorGuard
}

// NewRecord builds a record with a fresh id.
func NewRecord(orderID, actorID kernel.UUID, class token.Class, raw string, scannedAt time.Time) (*Record, error) {
	return RestoreRecord(kernel.NewUUID(), orderID, actorID, class, raw, scannedAt)
}

// RestoreRecord rebuilds a record from storage.
func RestoreRecord(
	id, orderID, actorID kernel.UUID,
	class token.Class,
	raw string,
	scannedAt time.Time,
) (*Record, error) {
	var problems []error
	problems = append(problems, id.Validate(), orderID.Validate(), actorID.Validate(), class.Validate())
	if strings.TrimSpace(raw) == "" {
		problems = append(problems, errs.NewValueIsRequiredError("token"))
	}
	if scannedAt.IsZero() {
		problems = append(problems, errs.NewValueIsRequiredError("scanned at"))
	}
	if err := errors.Join(problems...); err != nil {
		return nil, err
	}

	return &Record{
		id:        id,
		orderID:   orderID,
		actorID:   actorID,
		class:     class,
		token:     raw,
		scannedAt: scannedAt.UTC(),
		guard:     guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the record was built through a constructor.
func (r *Record) Validate() error {
	if r == nil {
		return ErrRecordIsNotConstructed
	}
	return r.guard.Validate(ErrRecordIsNotConstructed)
}

func (r *Record) ID() kernel.UUID      { return r.id }
func (r *Record) OrderID() kernel.UUID { return r.orderID }
func (r *Record) ActorID() kernel.UUID { return r.actorID }
func (r *Record) Class() token.Class   { return r.class }
func (r *Record) Token() string        { return r.token }
func (r *Record) ScannedAt() time.Time { return r.scannedAt }
