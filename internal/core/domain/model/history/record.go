// Package history holds the training examples the delivery advisor learns from.
package history

import (
	"errors"
	"fmt"
	"time"

	"trackit/internal/core/domain/model/kernel"
	"trackit/internal/core/domain/model/order"
	"trackit/internal/pkg/errs"
)

// Record is one finished order reduced to the features the advisor uses.
// There is at most one record per order.
type Record struct {
	OrderID    kernel.UUID
	CustomerID kernel.UUID
	VendorID   kernel.UUID
	Window     order.Window
	Speed      order.Speed
	Weekday    time.Weekday
	Hour       int
	Successful bool
	RecordedAt time.Time
}

// FromDeliveredOrder derives the record of a delivered order. Weekday and
// hour come from the order's creation time in UTC.
func FromDeliveredOrder(o *order.Order, recordedAt time.Time) (Record, error) {
	if err := o.Validate(); err != nil {
		return Record{}, err
	}
	if o.Status() != order.Delivered {
		return Record{}, errs.NewValueIsInvalidErrorWithCause("order status",
			fmt.Errorf("history needs a delivered order, %s is %s", o.ID(), o.Status()))
	}

	created := o.Timeline().CreatedAt.UTC()
	r := Record{
		OrderID:    o.ID(),
		CustomerID: o.CustomerID(),
		VendorID:   o.VendorID(),
		Window:     o.Window(),
		Speed:      o.Speed(),
		Weekday:    created.Weekday(),
		Hour:       created.Hour(),
		Successful: true,
		RecordedAt: recordedAt.UTC(),
	}
	return r, r.Validate()
}

// Validate checks every field.
func (r Record) Validate() error {
	var problems []error
	problems = append(problems,
		r.OrderID.Validate(),
		r.CustomerID.Validate(),
		r.VendorID.Validate(),
		r.Window.Validate(),
		r.Speed.Validate(),
	)
	if r.Weekday < time.Sunday || r.Weekday > time.Saturday {
		problems = append(problems, errs.NewValueIsOutOfRangeError("weekday", int(r.Weekday), 0, 6))
	}
	if r.Hour < 0 || r.Hour > 23 {
		problems = append(problems, errs.NewValueIsOutOfRangeError("hour", r.Hour, 0, 23))
	}
	if r.RecordedAt.IsZero() {
		problems = append(problems, errs.NewValueIsRequiredError("recorded at"))
	}
	return errors.Join(problems...)
}
