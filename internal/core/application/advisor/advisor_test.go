package advisor_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"trackit/internal/core/application/advisor"
	"trackit/internal/core/domain/model/history"
	"trackit/internal/core/domain/model/kernel"
	"trackit/internal/core/domain/model/order"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// Monday 09:00 UTC.
var now = time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)

type MockHistoryReader struct{ mock.Mock }

func (m *MockHistoryReader) ListSuccessfulByCustomer(ctx context.Context, id kernel.UUID) ([]history.Record, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]history.Record), args.Error(1)
}

func newAdvisor(h advisor.HistoryReader) *advisor.Advisor {
	return advisor.NewAdvisor(h, func() time.Time { return now }, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func records(customer, vendor kernel.UUID, n int, window order.Window, speed order.Speed) []history.Record {
	out := make([]history.Record, 0, n)
	for i := range n {
		out = append(out, history.Record{
			OrderID:    kernel.NewUUID(),
			CustomerID: customer,
			VendorID:   vendor,
			Window:     window,
			Speed:      speed,
			Weekday:    time.Monday,
			Hour:       9,
			Successful: true,
			RecordedAt: now.Add(-time.Duration(i) * time.Hour),
		})
	}
	return out
}

func TestAdvisor_Predict(t *testing.T) {
	ctx := t.Context()
	customer, vendor := kernel.NewUUID(), kernel.NewUUID()

	h := new(MockHistoryReader)
	h.On("ListSuccessfulByCustomer", ctx, customer).
		Return(records(customer, vendor, 6, order.Window30Min, order.SpeedExpress), nil).Once()

	a := newAdvisor(h)
	p, err := a.Predict(ctx, customer, nil)

	require.NoError(t, err)
	assert.Equal(t, order.Window30Min, p.Window)
	assert.Equal(t, order.SpeedExpress, p.Speed)
	assert.InDelta(t, 1.0, p.WindowConfidence, 1e-9)
	assert.Equal(t, vendor, p.VendorID)
	assert.Equal(t, 6, p.Basis)
}

func TestAdvisor_Predict_UsesCacheUntilInvalidated(t *testing.T) {
	ctx := t.Context()
	customer, vendor := kernel.NewUUID(), kernel.NewUUID()

	h := new(MockHistoryReader)
	mock.InOrder(
		h.On("ListSuccessfulByCustomer", ctx, customer).
			Return(records(customer, vendor, 5, order.Window1Hour, order.SpeedStandard), nil).Once(),
		h.On("ListSuccessfulByCustomer", ctx, customer).
			Return(records(customer, vendor, 9, order.Window2Hour, order.SpeedEconomy), nil).Once(),
	)
	a := newAdvisor(h)

	first, err := a.Predict(ctx, customer, nil)
	require.NoError(t, err)
	again, err := a.Predict(ctx, customer, nil)
	require.NoError(t, err)
	assert.Equal(t, first, again)
	h.AssertNumberOfCalls(t, "ListSuccessfulByCustomer", 1)

	a.Invalidate(customer)
	refreshed, err := a.Predict(ctx, customer, nil)

	require.NoError(t, err)
	assert.Equal(t, order.Window2Hour, refreshed.Window)
	assert.Equal(t, 9, refreshed.Basis)
	h.AssertExpectations(t)
}

func TestAdvisor_Predict_Unavailable(t *testing.T) {
	ctx := t.Context()
	customer, vendor := kernel.NewUUID(), kernel.NewUUID()

	h := new(MockHistoryReader)
	mock.InOrder(
		h.On("ListSuccessfulByCustomer", ctx, customer).
			Return(records(customer, vendor, 4, order.Window1Hour, order.SpeedStandard), nil).Once(),
		h.On("ListSuccessfulByCustomer", ctx, customer).
			Return(records(customer, vendor, 5, order.Window1Hour, order.SpeedStandard), nil).Once(),
	)
	a := newAdvisor(h)

	_, err := a.Predict(ctx, customer, nil)
	require.ErrorIs(t, err, advisor.ErrPredictionUnavailable)

	_, err = a.Predict(ctx, customer, nil)
	require.ErrorIs(t, err, advisor.ErrPredictionUnavailable)
	h.AssertNumberOfCalls(t, "ListSuccessfulByCustomer", 1)

	a.Invalidate(customer)
	_, err = a.Predict(ctx, customer, nil)
	require.NoError(t, err)
}

func TestAdvisor_Predict_StoreFailureIsNotCached(t *testing.T) {
	ctx := t.Context()
	customer, vendor := kernel.NewUUID(), kernel.NewUUID()

	h := new(MockHistoryReader)
	mock.InOrder(
		h.On("ListSuccessfulByCustomer", ctx, customer).Return(nil, errors.New("connection refused")).Once(),
		h.On("ListSuccessfulByCustomer", ctx, customer).
			Return(records(customer, vendor, 5, order.Window1Hour, order.SpeedStandard), nil).Once(),
	)
	a := newAdvisor(h)

	_, err := a.Predict(ctx, customer, nil)
	require.Error(t, err)
	assert.NotErrorIs(t, err, advisor.ErrPredictionUnavailable)

	_, err = a.Predict(ctx, customer, nil)
	require.NoError(t, err)
}

func TestAdvisor_CustomersDoNotShareModels(t *testing.T) {
	ctx := t.Context()
	alice, bob, vendor := kernel.NewUUID(), kernel.NewUUID(), kernel.NewUUID()

	h := new(MockHistoryReader)
	h.On("ListSuccessfulByCustomer", mock.Anything, alice).
		Return(records(alice, vendor, 5, order.Window30Min, order.SpeedExpress), nil).Once()
	h.On("ListSuccessfulByCustomer", mock.Anything, bob).
		Return(records(bob, vendor, 5, order.WindowFlexible, order.SpeedEconomy), nil).Once()
	a := newAdvisor(h)

	var wg sync.WaitGroup
	results := make([]order.Window, 2)
	for i, c := range []kernel.UUID{alice, bob} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p, err := a.Predict(ctx, c, nil)
			if err == nil {
				results[i] = p.Window
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, []order.Window{order.Window30Min, order.WindowFlexible}, results)
	a.Invalidate(kernel.NewUUID())
	h.AssertExpectations(t)
}

func TestAdvisor_Predict_RejectsNilCustomer(t *testing.T) {
	a := newAdvisor(new(MockHistoryReader))

	_, err := a.Predict(t.Context(), kernel.UUID{}, nil)

	require.ErrorIs(t, err, kernel.ErrUUIDIsNotConstructed)
}

func TestAdvisor_Invalidate_DoesNotWaitForRefit(t *testing.T) {
	ctx := t.Context()
	customer, vendor := kernel.NewUUID(), kernel.NewUUID()
	started, release := make(chan struct{}), make(chan struct{})

	h := new(MockHistoryReader)
	mock.InOrder(
		h.On("ListSuccessfulByCustomer", ctx, customer).
			Return(records(customer, vendor, 5, order.Window1Hour, order.SpeedStandard), nil).Once(),
		h.On("ListSuccessfulByCustomer", ctx, customer).
			Run(func(mock.Arguments) {
				close(started)
				<-release
			}).
			Return(records(customer, vendor, 6, order.Window1Hour, order.SpeedStandard), nil).Once(),
		h.On("ListSuccessfulByCustomer", ctx, customer).
			Return(records(customer, vendor, 9, order.Window2Hour, order.SpeedEconomy), nil).Once(),
	)
	a := newAdvisor(h)

	_, err := a.Predict(ctx, customer, nil)
	require.NoError(t, err)
	a.Invalidate(customer)

	refitted := make(chan error, 1)
	go func() {
		_, err := a.Predict(ctx, customer, nil)
		refitted <- err
	}()
	<-started

	invalidated := make(chan struct{})
	go func() {
		a.Invalidate(customer)
		close(invalidated)
	}()
	select {
	case <-invalidated:
	case <-time.After(time.Second):
		t.Fatal("Invalidate waited for the refit in progress")
	}

	close(release)
	require.NoError(t, <-refitted)

	// The invalidation that arrived mid-refit forces one more refit.
	p, err := a.Predict(ctx, customer, nil)
	require.NoError(t, err)
	assert.Equal(t, order.Window2Hour, p.Window)
	assert.Equal(t, 9, p.Basis)
	h.AssertExpectations(t)
}
