package postgres

import (
	"trackit/internal/adapters/out/postgres/carrierrepo"
	"trackit/internal/adapters/out/postgres/historyrepo"
	"trackit/internal/adapters/out/postgres/orderrepo"
	"trackit/internal/adapters/out/postgres/outboxrepo"
	"trackit/internal/adapters/out/postgres/scanrepo"

	"gorm.io/gorm"
)

// Migrate creates or updates every table of the store.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&orderrepo.OrderDTO{},
		&scanrepo.ScanRecordDTO{},
		&carrierrepo.CarrierDTO{},
		&outboxrepo.OutboxEventDTO{},
		&historyrepo.DeliveryHistoryDTO{},
	)
}
