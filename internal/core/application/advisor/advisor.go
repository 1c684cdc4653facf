// Package advisor suggests a delivery window and speed to a customer from
// their own delivery history.
//
// Every customer has a cache entry holding a fitted model and a dirty flag.
// Invalidate marks the entry dirty; the next Predict refits it from the
// history repository before answering. Customers never share a model, and
// refits of different customers run in parallel.
package advisor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"trackit/internal/core/domain/model/history"
	"trackit/internal/core/domain/model/kernel"
	"trackit/internal/core/domain/services"
	"trackit/internal/pkg/metrics"
)

// ErrPredictionUnavailable is returned while a customer has fewer than
// services.MinHistoryRecords successful deliveries.
var ErrPredictionUnavailable = services.ErrPredictionUnavailable

// HistoryReader is the part of the history repository the advisor reads.
type HistoryReader interface {
	ListSuccessfulByCustomer(ctx context.Context, customerID kernel.UUID) ([]history.Record, error)
}

// entry is guarded by mu except for dirty, which Invalidate sets without
// waiting for a refit in progress.
type entry struct {
	mu     sync.Mutex
	model  *services.DeliveryModel
	fitted bool
	dirty  atomic.Bool
}

// Advisor caches one delivery model per customer.
type Advisor struct {
	history   HistoryReader
	predictor services.DeliveryPredictor
	now       func() time.Time
	logger    *slog.Logger

	mu      sync.Mutex
	entries map[kernel.UUID]*entry
}

func NewAdvisor(history HistoryReader, now func() time.Time, logger *slog.Logger) *Advisor {
	return &Advisor{
		history:   history,
		predictor: services.NewDeliveryPredictor(),
		now:       now,
		logger:    logger.With("component", "advisor"),
		entries:   make(map[kernel.UUID]*entry),
	}
}

// Predict answers for an order placed now. A nil vendorID selects the
// customer's most frequent vendor.
func (a *Advisor) Predict(ctx context.Context, customerID kernel.UUID, vendorID *kernel.UUID) (services.Prediction, error) {
	if err := customerID.Validate(); err != nil {
		return services.Prediction{}, err
	}
	if vendorID != nil {
		if err := vendorID.Validate(); err != nil {
			return services.Prediction{}, err
		}
	}

	e := a.entry(customerID)
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.fitted || e.dirty.Load() {
		if err := a.refit(ctx, customerID, e); err != nil {
			return services.Prediction{}, err
		}
	}
	if e.model == nil {
		return services.Prediction{}, ErrPredictionUnavailable
	}

	at := a.now().UTC()
	return e.model.Predict(services.PredictionQuery{
		VendorID: vendorID,
		Weekday:  at.Weekday(),
		Hour:     at.Hour(),
	}), nil
}

// Invalidate marks the customer's model stale. It never waits for a refit:
// an invalidation that lands while one is running triggers another on the
// next Predict.
func (a *Advisor) Invalidate(customerID kernel.UUID) {
	a.mu.Lock()
	e, ok := a.entries[customerID]
	a.mu.Unlock()
	if !ok {
		return
	}

	e.dirty.Store(true)
}

func (a *Advisor) entry(customerID kernel.UUID) *entry {
	a.mu.Lock()
	defer a.mu.Unlock()

	e, ok := a.entries[customerID]
	if !ok {
		e = &entry{}
		a.entries[customerID] = e
	}
	return e
}

// refit runs with e.mu held. dirty is cleared before the history is read.
func (a *Advisor) refit(ctx context.Context, customerID kernel.UUID, e *entry) error {
	stale := e.dirty.Swap(false)

	records, err := a.history.ListSuccessfulByCustomer(ctx, customerID)
	if err != nil {
		if stale {
			e.dirty.Store(true)
		}
		return fmt.Errorf("load delivery history: %w", err)
	}

	model, err := a.predictor.Fit(customerID, records)
	switch {
	case errors.Is(err, services.ErrPredictionUnavailable):
		model = nil
	case err != nil:
		if stale {
			e.dirty.Store(true)
		}
		return err
	}

	e.model, e.fitted = model, true
	metrics.AdvisorFitsTotal.Inc()
	a.logger.DebugContext(ctx, "delivery model refitted",
		"customer_id", customerID.String(), "records", len(records))
	return nil
}
