package order_test

import (
	"errors"
	"testing"
	"time"

	"trackit/internal/core/domain/model/kernel"
	"trackit/internal/core/domain/model/order"
	"trackit/internal/core/domain/model/rejection"
	"trackit/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const packageToken = "TRACKIT_PACKAGE_test_20250101000000_00"

var now = time.Date(2025, 6, 2, 10, 30, 0, 0, time.UTC)

type stubMinter struct {
	token string
	err   error
	calls int
}

func (m *stubMinter) MintRecipientToken(_, _ kernel.UUID) (string, error) {
	m.calls++
	return m.token, m.err
}

type parties struct {
	customer, vendor, carrier kernel.UUID
}

func newParties() parties {
	return parties{customer: kernel.NewUUID(), vendor: kernel.NewUUID(), carrier: kernel.NewUUID()}
}

func newPendingOrder(t *testing.T, p parties) *order.Order {
	t.Helper()
	o, err := order.NewOrder(kernel.NewUUID(), p.customer, p.vendor, "books", order.Window1Hour, order.SpeedStandard, 1250, now)
	require.NoError(t, err)
	return o
}

func newAcceptedOrder(t *testing.T, p parties) *order.Order {
	t.Helper()
	o := newPendingOrder(t, p)
	require.NoError(t, o.Accept(p.vendor, p.carrier, packageToken, now))
	return o
}

func newOutForDeliveryOrder(t *testing.T, p parties, recipientToken string) *order.Order {
	t.Helper()
	o := newAcceptedOrder(t, p)
	minter := &stubMinter{token: recipientToken}
	for range 3 {
		_, err := o.RegisterPackageScan(p.carrier, packageToken, now, minter)
		require.NoError(t, err)
	}
	return o
}

func TestNewOrder(t *testing.T) {
	p := newParties()

	t.Run("should create pending order", func(t *testing.T) {
		id := kernel.NewUUID()

		o, err := order.NewOrder(id, p.customer, p.vendor, "  books ", order.Window30Min, order.SpeedExpress, 0, now)

		require.NoError(t, err)
		require.NoError(t, o.Validate())
		assert.True(t, o.ID().IsEqual(id))
		assert.Equal(t, order.Pending, o.Status())
		assert.Equal(t, "books", o.Description())
		assert.Equal(t, 0, o.ScanCount())
		assert.Nil(t, o.CarrierID())
		assert.Nil(t, o.PackageToken())
		assert.Nil(t, o.RecipientToken())
		assert.Nil(t, o.FinalAmount())
		assert.Equal(t, now, o.Timeline().CreatedAt)

		events := o.DomainEvents()
		require.Len(t, events, 1)
		assert.Equal(t, order.Pending, events[0].Status)
		assert.True(t, events[0].ActorID.IsEqual(p.customer))
	})

	t.Run("should join all validation errors", func(t *testing.T) {
		o, err := order.NewOrder(kernel.UUID{}, p.customer, kernel.UUID{}, " ", "weekly", "teleport", -5, time.Time{})

		require.Error(t, err)
		assert.Nil(t, o)
		assert.ErrorIs(t, err, kernel.ErrUUIDIsNotConstructed)
		assert.ErrorIs(t, err, errs.ErrValueIsRequired)
		assert.ErrorIs(t, err, errs.ErrValueIsInvalid)
		assert.Contains(t, err.Error(), "description")
		assert.Contains(t, err.Error(), "weekly")
		assert.Contains(t, err.Error(), "teleport")
		assert.Contains(t, err.Error(), "-5 is negative")
		assert.Contains(t, err.Error(), "created at")
	})
}

func TestOrder_VendorDecision(t *testing.T) {
	p := newParties()

	t.Run("should accept with carrier and package token", func(t *testing.T) {
		o := newPendingOrder(t, p)
		o.ClearDomainEvents()

		err := o.Accept(p.vendor, p.carrier, packageToken, now)

		require.NoError(t, err)
		assert.Equal(t, order.Accepted, o.Status())
		require.NotNil(t, o.CarrierID())
		assert.True(t, o.CarrierID().IsEqual(p.carrier))
		require.NotNil(t, o.PackageToken())
		assert.Equal(t, packageToken, *o.PackageToken())
		require.NotNil(t, o.Timeline().AcceptedAt)
		require.Len(t, o.DomainEvents(), 1)
		assert.Equal(t, order.Accepted, o.DomainEvents()[0].Status)
	})

	t.Run("should refuse anyone but the vendor", func(t *testing.T) {
		o := newPendingOrder(t, p)

		err := o.Accept(p.customer, p.carrier, packageToken, now)

		assert.True(t, rejection.Is(err, rejection.Unauthorized))
		assert.Equal(t, order.Pending, o.Status())
		assert.Nil(t, o.CarrierID())

		err = o.Reject(p.carrier, now)
		assert.True(t, rejection.Is(err, rejection.Unauthorized))
	})

	t.Run("should reject pending order", func(t *testing.T) {
		o := newPendingOrder(t, p)

		require.NoError(t, o.Reject(p.vendor, now))

		assert.Equal(t, order.Rejected, o.Status())
		require.NotNil(t, o.Timeline().RejectedAt)
		assert.Nil(t, o.PackageToken())
	})

	t.Run("should refuse a second decision", func(t *testing.T) {
		accepted := newAcceptedOrder(t, p)
		assert.True(t, rejection.Is(accepted.Accept(p.vendor, p.carrier, packageToken, now), rejection.InvalidTransition))
		assert.True(t, rejection.Is(accepted.Reject(p.vendor, now), rejection.InvalidTransition))

		rejected := newPendingOrder(t, p)
		require.NoError(t, rejected.Reject(p.vendor, now))
		assert.True(t, rejection.Is(rejected.Accept(p.vendor, p.carrier, packageToken, now), rejection.InvalidTransition))
		assert.Equal(t, order.Rejected, rejected.Status())
	})

	t.Run("should require a package token", func(t *testing.T) {
		o := newPendingOrder(t, p)

		err := o.Accept(p.vendor, p.carrier, " ", now)

		assert.ErrorIs(t, err, errs.ErrValueIsRequired)
		assert.Equal(t, order.Pending, o.Status())
	})
}

func TestOrder_RegisterPackageScan(t *testing.T) {
	p := newParties()

	t.Run("should walk the custody path", func(t *testing.T) {
		o := newAcceptedOrder(t, p)
		minter := &stubMinter{token: "T2"}
		want := []order.Status{order.Dispatched, order.InTransit, order.OutForDelivery}

		for i, status := range want {
			outcome, err := o.RegisterPackageScan(p.carrier, packageToken, now.Add(time.Duration(i)*time.Hour), minter)

			require.NoError(t, err)
			assert.Equal(t, status, outcome.Status)
			assert.Equal(t, i+1, outcome.ScanCount)
			assert.Equal(t, status == order.OutForDelivery, outcome.RecipientTokenIssued)
			assert.Equal(t, i+1 == order.MaxPackageScans, o.RecipientToken() != nil)
		}

		assert.Equal(t, 1, minter.calls)
		assert.Equal(t, "T2", *o.RecipientToken())
		tl := o.Timeline()
		require.NotNil(t, tl.DispatchedAt)
		require.NotNil(t, tl.InTransitAt)
		require.NotNil(t, tl.OutForDeliveryAt)
		assert.Nil(t, tl.DeliveredAt)

		events := o.DomainEvents()
		last := events[len(events)-1]
		assert.Equal(t, order.OutForDelivery, last.Status)
		require.NotNil(t, last.RecipientToken)
		assert.Equal(t, "T2", *last.RecipientToken)
	})

	t.Run("should refuse a fourth scan without change", func(t *testing.T) {
		o := newOutForDeliveryOrder(t, p, "T2")
		before := o.Snapshot()

		_, err := o.RegisterPackageScan(p.carrier, packageToken, now, &stubMinter{token: "T3"})

		assert.True(t, rejection.Is(err, rejection.AlreadyMaxScanned))
		assert.Equal(t, before, o.Snapshot())
	})

	t.Run("should check token before carrier", func(t *testing.T) {
		o := newAcceptedOrder(t, p)

		_, err := o.RegisterPackageScan(kernel.NewUUID(), "TRACKIT_PACKAGE_stale", now, nil)

		assert.True(t, rejection.Is(err, rejection.WrongToken))
		assert.Equal(t, 0, o.ScanCount())
	})

	t.Run("should refuse foreign carrier", func(t *testing.T) {
		o := newAcceptedOrder(t, p)

		_, err := o.RegisterPackageScan(kernel.NewUUID(), packageToken, now, nil)

		assert.True(t, rejection.Is(err, rejection.Unauthorized))
		assert.Equal(t, order.Accepted, o.Status())
	})

	t.Run("should refuse scans on pending and rejected orders", func(t *testing.T) {
		pending := newPendingOrder(t, p)
		_, err := pending.RegisterPackageScan(p.carrier, packageToken, now, nil)
		assert.True(t, rejection.Is(err, rejection.WrongToken))

		rejected := newPendingOrder(t, p)
		require.NoError(t, rejected.Reject(p.vendor, now))
		_, err = rejected.RegisterPackageScan(p.carrier, packageToken, now, nil)
		assert.True(t, rejection.Is(err, rejection.WrongToken))
	})

	t.Run("should leave order untouched when minting fails", func(t *testing.T) {
		o := newAcceptedOrder(t, p)
		minter := &stubMinter{token: "T2"}
		for range 2 {
			_, err := o.RegisterPackageScan(p.carrier, packageToken, now, minter)
			require.NoError(t, err)
		}
		before := o.Snapshot()

		_, err := o.RegisterPackageScan(p.carrier, packageToken, now, &stubMinter{err: errors.New("boom")})

		require.Error(t, err)
		assert.Equal(t, rejection.Unknown, rejection.KindOf(err))
		assert.Equal(t, before, o.Snapshot())
	})
}

func TestOrder_RegisterRecipientScan(t *testing.T) {
	p := newParties()

	t.Run("should deliver with the recipient token", func(t *testing.T) {
		o := newOutForDeliveryOrder(t, p, "T2")

		outcome, err := o.RegisterRecipientScan(p.carrier, "T2", now)

		require.NoError(t, err)
		assert.Equal(t, order.Delivered, outcome.Status)
		assert.Equal(t, 3, outcome.ScanCount)
		require.NotNil(t, o.FinalAmount())
		assert.Equal(t, int64(1250), *o.FinalAmount())
		require.NotNil(t, o.Timeline().DeliveredAt)
	})

	t.Run("should report not ready before out for delivery", func(t *testing.T) {
		o := newAcceptedOrder(t, p)
		for range 2 {
			_, err := o.RegisterPackageScan(p.carrier, packageToken, now, nil)
			require.NoError(t, err)
		}

		_, err := o.RegisterRecipientScan(p.carrier, "anything", now)

		assert.True(t, rejection.Is(err, rejection.NotReadyForDelivery))
		assert.Equal(t, order.InTransit, o.Status())
	})

	t.Run("should refuse a second recipient scan", func(t *testing.T) {
		o := newOutForDeliveryOrder(t, p, "T2")
		_, err := o.RegisterRecipientScan(p.carrier, "T2", now)
		require.NoError(t, err)

		_, err = o.RegisterRecipientScan(p.carrier, "T2", now)

		assert.True(t, rejection.Is(err, rejection.NotReadyForDelivery))
	})

	t.Run("should refuse stale token and foreign carrier", func(t *testing.T) {
		o := newOutForDeliveryOrder(t, p, "T2")

		_, err := o.RegisterRecipientScan(p.carrier, "T1", now)
		assert.True(t, rejection.Is(err, rejection.WrongToken))

		_, err = o.RegisterRecipientScan(p.customer, "T2", now)
		assert.True(t, rejection.Is(err, rejection.Unauthorized))

		assert.Equal(t, order.OutForDelivery, o.Status())
	})
}

func TestRestore(t *testing.T) {
	p := newParties()

	t.Run("should round trip every reachable state", func(t *testing.T) {
		delivered := newOutForDeliveryOrder(t, p, "T2")
		_, err := delivered.RegisterRecipientScan(p.carrier, "T2", now)
		require.NoError(t, err)
		rejected := newPendingOrder(t, p)
		require.NoError(t, rejected.Reject(p.vendor, now))

		for _, o := range []*order.Order{
			newPendingOrder(t, p),
			newAcceptedOrder(t, p),
			newOutForDeliveryOrder(t, p, "T2"),
			delivered,
			rejected,
		} {
			restored, restoreErr := order.Restore(o.Snapshot())

			require.NoError(t, restoreErr, o.Status().String())
			assert.Equal(t, o.Snapshot(), restored.Snapshot())
			assert.Empty(t, restored.DomainEvents())
		}
	})

	t.Run("should refuse broken invariants", func(t *testing.T) {
		base := newOutForDeliveryOrder(t, p, "T2").Snapshot()

		cases := map[string]func(s *order.Snapshot){
			"counter out of range":    func(s *order.Snapshot) { s.ScanCount = 4 },
			"counter behind status":   func(s *order.Snapshot) { s.ScanCount = 2 },
			"recipient token missing": func(s *order.Snapshot) { s.RecipientToken = nil },
			"carrier missing":         func(s *order.Snapshot) { s.CarrierID = nil },
			"package token missing":   func(s *order.Snapshot) { s.PackageToken = nil },
			"timestamp missing":       func(s *order.Snapshot) { s.Timeline.InTransitAt = nil },
			"delivered without time":  func(s *order.Snapshot) { s.Status = order.Delivered; s.FinalAmount = new(int64) },
			"unknown status":          func(s *order.Snapshot) { s.Status = order.Unknown },
			"negative version":        func(s *order.Snapshot) { s.Version = -1 },
		}

		for name, mutate := range cases {
			t.Run(name, func(t *testing.T) {
				s := base
				mutate(&s)

				_, err := order.Restore(s)

				require.Error(t, err)
			})
		}
	})
}

func TestOrder_Validate(t *testing.T) {
	var o order.Order
	require.ErrorIs(t, o.Validate(), order.ErrOrderIsNotConstructed)

	var nilOrder *order.Order
	require.ErrorIs(t, nilOrder.Validate(), order.ErrOrderIsNotConstructed)
}
