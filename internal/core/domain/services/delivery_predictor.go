package services

import (
	"errors"
	"time"

	"trackit/internal/core/domain/model/history"
	"trackit/internal/core/domain/model/kernel"
	"trackit/internal/core/domain/model/order"
)

// MinHistoryRecords is the number of successful deliveries a customer needs
// before predictions are offered.
const MinHistoryRecords = 5

// ErrPredictionUnavailable is returned while a customer has too little history.
var ErrPredictionUnavailable = errors.New("prediction unavailable")

// PredictionQuery describes the order a customer is about to place.
// A nil VendorID means the customer's most frequent vendor.
type PredictionQuery struct {
	VendorID *kernel.UUID
	Weekday  time.Weekday
	Hour     int
}

// Prediction is the suggested window and speed with the share of the vote
// each label won, both in [0, 1].
type Prediction struct {
	VendorID         kernel.UUID
	Window           order.Window
	Speed            order.Speed
	WindowConfidence float64
	SpeedConfidence  float64
	// Basis is the number of history records that voted.
	Basis int
	// VendorMatches is how many of them were with the queried vendor.
	VendorMatches int
}

// DeliveryModel is the fitted state for one customer. It is immutable and
// safe for concurrent use.
type DeliveryModel struct {
	customerID    kernel.UUID
	records       []history.Record
	defaultVendor kernel.UUID
}

// DeliveryPredictor fits per-customer models from delivery history.
//
// The model is a weighted vote: every past delivery votes for its own window
// and speed with weight
//
//	1 + 2*vendorMatch + weekdayMatch + hourProximity
//
// where hourProximity = 1 - |Δh|/12 measured around the 24 hour clock.
type DeliveryPredictor struct{}

// NewDeliveryPredictor creates a DeliveryPredictor.
func NewDeliveryPredictor() DeliveryPredictor {
	return DeliveryPredictor{}
}

// Fit keeps the successful records of customerID and fails with
// ErrPredictionUnavailable when fewer than MinHistoryRecords remain.
func (DeliveryPredictor) Fit(customerID kernel.UUID, records []history.Record) (*DeliveryModel, error) {
	if err := customerID.Validate(); err != nil {
		return nil, err
	}

	kept := make([]history.Record, 0, len(records))
	for _, r := range records {
		if r.Successful && r.CustomerID.IsEqual(customerID) {
			kept = append(kept, r)
		}
	}
	if len(kept) < MinHistoryRecords {
		return nil, ErrPredictionUnavailable
	}

	return &DeliveryModel{
		customerID:    customerID,
		records:       kept,
		defaultVendor: mostFrequentVendor(kept),
	}, nil
}

// CustomerID returns the customer the model was fitted for.
func (m *DeliveryModel) CustomerID() kernel.UUID {
	return m.customerID
}

// Size returns the number of records the model was fitted on.
func (m *DeliveryModel) Size() int {
	return len(m.records)
}

// Predict runs the vote. An unseen vendor simply matches no record, so the
// whole history decides.
func (m *DeliveryModel) Predict(q PredictionQuery) Prediction {
	vendor := m.defaultVendor
	if q.VendorID != nil {
		vendor = *q.VendorID
	}

	windowVotes := make(map[order.Window]float64)
	speedVotes := make(map[order.Speed]float64)
	var total float64
	matches := 0

	for _, r := range m.records {
		w := 1.0
		if r.VendorID.IsEqual(vendor) {
			w += 2
			matches++
		}
		if r.Weekday == q.Weekday {
			w++
		}
		w += hourProximity(r.Hour, q.Hour)

		windowVotes[r.Window] += w
		speedVotes[r.Speed] += w
		total += w
	}

	window, windowWeight := pickWinner(order.Windows(), windowVotes)
	speed, speedWeight := pickWinner(order.Speeds(), speedVotes)

	return Prediction{
		VendorID:         vendor,
		Window:           window,
		Speed:            speed,
		WindowConfidence: windowWeight / total,
		SpeedConfidence:  speedWeight / total,
		Basis:            len(m.records),
		VendorMatches:    matches,
	}
}

// hourProximity is 1 for the same hour and 0 for hours 12 apart.
func hourProximity(a, b int) float64 {
	d := a - b
	if d < 0 {
		d = -d
	}
	d %= 24
	if d > 12 {
		d = 24 - d
	}
	return 1 - float64(d)/12
}

// pickWinner returns the label with the largest weight. Ties go to the label
// listed first.
func pickWinner[L comparable](labels []L, votes map[L]float64) (L, float64) {
	var (
		best       L
		bestWeight = -1.0
	)
	for _, l := range labels {
		if w, ok := votes[l]; ok && w > bestWeight {
			best, bestWeight = l, w
		}
	}
	return best, bestWeight
}

// mostFrequentVendor breaks ties with the most recent delivery.
func mostFrequentVendor(records []history.Record) kernel.UUID {
	type tally struct {
		count  int
		latest time.Time
	}
	counts := make(map[kernel.UUID]*tally)
	var best kernel.UUID
	var bestTally *tally

	for _, r := range records {
		t, ok := counts[r.VendorID]
		if !ok {
			t = &tally{}
			counts[r.VendorID] = t
		}
		t.count++
		if r.RecordedAt.After(t.latest) {
			t.latest = r.RecordedAt
		}
	}
	for vendor, t := range counts {
		if bestTally == nil ||
			t.count > bestTally.count ||
			(t.count == bestTally.count && t.latest.After(bestTally.latest)) {
			best, bestTally = vendor, t
		}
	}
	return best
}
