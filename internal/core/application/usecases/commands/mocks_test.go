package commands_test

import (
	"context"
	"time"

	"trackit/internal/core/application/usecases/commands"
	"trackit/internal/core/domain/model/carrier"
	"trackit/internal/core/domain/model/history"
	"trackit/internal/core/domain/model/kernel"
	"trackit/internal/core/domain/model/order"
	"trackit/internal/core/domain/model/scan"
	"trackit/internal/core/ports"

	"github.com/stretchr/testify/mock"
)

var fixedNow = time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)

func clock() time.Time { return fixedNow }

type MockOrderRepository struct{ mock.Mock }

func (m *MockOrderRepository) Add(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockOrderRepository) Update(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockOrderRepository) Get(ctx context.Context, id kernel.UUID) (*order.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderRepository) ListActiveByCarrier(ctx context.Context, id kernel.UUID) ([]*order.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*order.Order), args.Error(1)
}

func (m *MockOrderRepository) ListByCustomer(ctx context.Context, id kernel.UUID) ([]*order.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*order.Order), args.Error(1)
}

type MockScanRecordRepository struct{ mock.Mock }

func (m *MockScanRecordRepository) Add(ctx context.Context, r *scan.Record) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}

func (m *MockScanRecordRepository) ListByOrder(ctx context.Context, id kernel.UUID) ([]*scan.Record, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*scan.Record), args.Error(1)
}

type MockCarrierRepository struct{ mock.Mock }

func (m *MockCarrierRepository) Add(ctx context.Context, c *carrier.Carrier) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockCarrierRepository) Get(ctx context.Context, id kernel.UUID) (*carrier.Carrier, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*carrier.Carrier), args.Error(1)
}

func (m *MockCarrierRepository) GetAllAvailable(ctx context.Context) ([]*carrier.Carrier, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*carrier.Carrier), args.Error(1)
}

type MockHistoryRepository struct{ mock.Mock }

func (m *MockHistoryRepository) Add(ctx context.Context, r history.Record) (bool, error) {
	args := m.Called(ctx, r)
	return args.Bool(0), args.Error(1)
}

func (m *MockHistoryRepository) ListSuccessfulByCustomer(ctx context.Context, id kernel.UUID) ([]history.Record, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]history.Record), args.Error(1)
}

// MockUoW satisfies every narrowed unit of work interface.
type MockUoW struct{ mock.Mock }

func (m *MockUoW) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUoW) Commit(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUoW) Rollback(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUoW) OrderRepository() ports.OrderRepository {
	args := m.Called()
	return args.Get(0).(ports.OrderRepository)
}

func (m *MockUoW) ScanRecordRepository() ports.ScanRecordRepository {
	args := m.Called()
	return args.Get(0).(ports.ScanRecordRepository)
}

func (m *MockUoW) CarrierRepository() ports.CarrierRepository {
	args := m.Called()
	return args.Get(0).(ports.CarrierRepository)
}

func (m *MockUoW) HistoryRepository() ports.HistoryRepository {
	args := m.Called()
	return args.Get(0).(ports.HistoryRepository)
}

func (m *MockUoW) OutboxRepository() ports.OutboxRepository {
	args := m.Called()
	return args.Get(0).(ports.OutboxRepository)
}

type MockOrderUoWFactory struct{ mock.Mock }

func (m *MockOrderUoWFactory) Create() commands.OrderUoW {
	args := m.Called()
	return args.Get(0).(commands.OrderUoW)
}

type MockAcceptUoWFactory struct{ mock.Mock }

func (m *MockAcceptUoWFactory) Create() commands.AcceptUoW {
	args := m.Called()
	return args.Get(0).(commands.AcceptUoW)
}

type MockScanUoWFactory struct{ mock.Mock }

func (m *MockScanUoWFactory) Create() commands.ScanUoW {
	args := m.Called()
	return args.Get(0).(commands.ScanUoW)
}

type MockCarrierUoWFactory struct{ mock.Mock }

func (m *MockCarrierUoWFactory) Create() commands.CarrierUoW {
	args := m.Called()
	return args.Get(0).(commands.CarrierUoW)
}

type MockHistoryUoWFactory struct{ mock.Mock }

func (m *MockHistoryUoWFactory) Create() commands.HistoryUoW {
	args := m.Called()
	return args.Get(0).(commands.HistoryUoW)
}

type MockOutboxUoWFactory struct{ mock.Mock }

func (m *MockOutboxUoWFactory) Create() commands.OutboxUoW {
	args := m.Called()
	return args.Get(0).(commands.OutboxUoW)
}

type MockOutboxRepository struct{ mock.Mock }

func (m *MockOutboxRepository) Add(ctx context.Context, events ...order.Event) error {
	args := m.Called(ctx, events)
	return args.Error(0)
}

func (m *MockOutboxRepository) ListPending(ctx context.Context, limit int) ([]order.Event, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]order.Event), args.Error(1)
}

func (m *MockOutboxRepository) MarkPublished(ctx context.Context, id kernel.UUID, at time.Time) error {
	args := m.Called(ctx, id, at)
	return args.Error(0)
}

type MockEventPublisher struct{ mock.Mock }

func (m *MockEventPublisher) Publish(ctx context.Context, e order.Event) error {
	args := m.Called(ctx, e)
	return args.Error(0)
}

type MockHistoryRecorder struct{ mock.Mock }

func (m *MockHistoryRecorder) Handle(
	ctx context.Context,
	cmd commands.RecordDeliveryHistoryCommand,
) (kernel.UUID, bool, error) {
	args := m.Called(ctx, cmd)
	return args.Get(0).(kernel.UUID), args.Bool(1), args.Error(2)
}

type MockInvalidator struct{ mock.Mock }

func (m *MockInvalidator) Invalidate(customerID kernel.UUID) {
	m.Called(customerID)
}

type stubMinter struct{}

func (stubMinter) MintPackageToken(kernel.UUID) (string, error) { return "PKG", nil }
