package services_test

import (
	"testing"
	"time"

	"trackit/internal/core/domain/model/history"
	"trackit/internal/core/domain/model/kernel"
	"trackit/internal/core/domain/model/order"
	"trackit/internal/core/domain/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func historyRecord(customer, vendor kernel.UUID, w order.Window, s order.Speed, day time.Weekday, hour int) history.Record {
	return history.Record{
		OrderID:    kernel.NewUUID(),
		CustomerID: customer,
		VendorID:   vendor,
		Window:     w,
		Speed:      s,
		Weekday:    day,
		Hour:       hour,
		Successful: true,
		RecordedAt: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestDeliveryPredictor_Fit(t *testing.T) {
	customer := kernel.NewUUID()
	vendor := kernel.NewUUID()

	t.Run("should need five successful records", func(t *testing.T) {
		records := make([]history.Record, 0, 6)
		for range 4 {
			records = append(records, historyRecord(customer, vendor, order.Window1Hour, order.SpeedStandard, time.Monday, 10))
		}
		failed := historyRecord(customer, vendor, order.Window1Hour, order.SpeedStandard, time.Monday, 10)
		failed.Successful = false
		records = append(records, failed, historyRecord(kernel.NewUUID(), vendor, order.Window1Hour, order.SpeedStandard, time.Monday, 10))

		_, err := services.NewDeliveryPredictor().Fit(customer, records)

		require.ErrorIs(t, err, services.ErrPredictionUnavailable)
	})

	t.Run("should fit with exactly five", func(t *testing.T) {
		records := make([]history.Record, 0, 5)
		for range 5 {
			records = append(records, historyRecord(customer, vendor, order.Window1Hour, order.SpeedStandard, time.Monday, 10))
		}

		model, err := services.NewDeliveryPredictor().Fit(customer, records)

		require.NoError(t, err)
		assert.Equal(t, 5, model.Size())
		assert.True(t, model.CustomerID().IsEqual(customer))
	})
}

func TestDeliveryModel_Predict(t *testing.T) {
	customer := kernel.NewUUID()
	favourite := kernel.NewUUID()
	other := kernel.NewUUID()

	records := []history.Record{
		historyRecord(customer, favourite, order.Window30Min, order.SpeedExpress, time.Friday, 19),
		historyRecord(customer, favourite, order.Window30Min, order.SpeedExpress, time.Friday, 20),
		historyRecord(customer, favourite, order.Window30Min, order.SpeedStandard, time.Saturday, 18),
		historyRecord(customer, other, order.Window2Hour, order.SpeedEconomy, time.Monday, 9),
		historyRecord(customer, other, order.Window2Hour, order.SpeedEconomy, time.Monday, 8),
	}
	model, err := services.NewDeliveryPredictor().Fit(customer, records)
	require.NoError(t, err)

	t.Run("should default to the most frequent vendor", func(t *testing.T) {
		p := model.Predict(services.PredictionQuery{Weekday: time.Friday, Hour: 19})

		assert.True(t, p.VendorID.IsEqual(favourite))
		assert.Equal(t, order.Window30Min, p.Window)
		assert.Equal(t, order.SpeedExpress, p.Speed)
		assert.Equal(t, 5, p.Basis)
		assert.Equal(t, 3, p.VendorMatches)
		assert.Greater(t, p.WindowConfidence, 0.5)
		assert.LessOrEqual(t, p.WindowConfidence, 1.0)
		assert.Greater(t, p.SpeedConfidence, 0.0)
		assert.LessOrEqual(t, p.SpeedConfidence, 1.0)
	})

	t.Run("should follow the queried vendor", func(t *testing.T) {
		p := model.Predict(services.PredictionQuery{VendorID: &other, Weekday: time.Monday, Hour: 9})

		assert.Equal(t, order.Window2Hour, p.Window)
		assert.Equal(t, order.SpeedEconomy, p.Speed)
		assert.Equal(t, 2, p.VendorMatches)
	})

	t.Run("should fall back to full history for unseen vendor", func(t *testing.T) {
		unseen := kernel.NewUUID()

		p := model.Predict(services.PredictionQuery{VendorID: &unseen, Weekday: time.Sunday, Hour: 3})

		assert.True(t, p.VendorID.IsEqual(unseen))
		assert.Equal(t, 0, p.VendorMatches)
		assert.Equal(t, 5, p.Basis)
		assert.Equal(t, order.Window30Min, p.Window)
	})

	t.Run("should be deterministic", func(t *testing.T) {
		q := services.PredictionQuery{Weekday: time.Wednesday, Hour: 12}

		assert.Equal(t, model.Predict(q), model.Predict(q))
	})
}
