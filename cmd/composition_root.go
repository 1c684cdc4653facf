package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	httpin "trackit/internal/adapters/in/http"
	"trackit/internal/adapters/out/memory"
	"trackit/internal/adapters/out/postgres"
	"trackit/internal/adapters/out/publisher"
	"trackit/internal/core/application/advisor"
	"trackit/internal/core/application/usecases/commands"
	"trackit/internal/core/application/usecases/queries"
	"trackit/internal/core/domain/model/token"
	"trackit/internal/core/domain/services"
	"trackit/internal/core/ports"
	"trackit/internal/jobs"

	"github.com/labstack/echo/v4"
	gorm_postgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type CompositionRoot struct {
	cfg    Config
	logger *slog.Logger
	now    func() time.Time

	uowFactory ports.UnitOfWorkFactory
	reader     ports.UnitOfWork
	publisher  ports.EventPublisher
	tokens     *token.Generator
	advisor    *advisor.Advisor

	closers []func() error
}

// NewCompositionRoot opens the configured store and publisher.
func NewCompositionRoot(ctx context.Context, cfg Config, logger *slog.Logger) (*CompositionRoot, error) {
	c := &CompositionRoot{
		cfg:    cfg,
		logger: logger,
		now:    time.Now,
		tokens: token.NewGenerator(),
	}

	uowFactory, err := c.openStore()
	if err != nil {
		return nil, err
	}
	c.uowFactory = uowFactory
	// Outside Begin/Commit a unit of work reads straight from the store.
	c.reader = uowFactory.Create()
	c.advisor = advisor.NewAdvisor(c.reader.HistoryRepository(), c.now, logger)

	pub, err := c.openPublisher(ctx)
	if err != nil {
		_ = c.Close()
		return nil, err
	}
	c.publisher = pub

	return c, nil
}

func (c *CompositionRoot) openStore() (ports.UnitOfWorkFactory, error) {
	switch c.cfg.Store {
	case StorePostgres:
		db, err := gorm.Open(gorm_postgres.Open(c.cfg.DatabaseDSN), &gorm.Config{})
		if err != nil {
			return nil, fmt.Errorf("open database: %w", err)
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("database handle: %w", err)
		}
		c.closers = append(c.closers, sqlDB.Close)

		if err := postgres.Migrate(db); err != nil {
			_ = c.Close()
			return nil, fmt.Errorf("migrate: %w", err)
		}
		return postgres.NewGormUnitOfWorkFactory(db), nil
	case StoreMemory, "":
		return memory.NewUnitOfWorkFactory(memory.NewStore()), nil
	default:
		return nil, fmt.Errorf("unknown store %q", c.cfg.Store)
	}
}

func (c *CompositionRoot) openPublisher(ctx context.Context) (ports.EventPublisher, error) {
	switch c.cfg.Publisher {
	case PublisherRabbitMQ:
		p, err := publisher.DialRabbitMQ(c.cfg.RabbitMQURL, c.logger)
		if err != nil {
			return nil, err
		}
		c.closers = append(c.closers, p.Close)
		return p, nil
	case PublisherSQS:
		client, err := publisher.NewSQSClient(ctx, c.cfg.AWSRegion, c.cfg.SQSEndpoint)
		if err != nil {
			return nil, err
		}
		return publisher.NewSQSPublisher(client, c.cfg.SQSQueueURL, c.logger), nil
	case PublisherWebhook:
		return publisher.NewWebhookPublisher(publisher.WebhookConfig{
			URL:          c.cfg.WebhookURL,
			Timeout:      c.cfg.WebhookTimeout,
			RetryCount:   c.cfg.WebhookRetries,
			RetryWait:    c.cfg.WebhookRetryWait,
			RetryMaxWait: c.cfg.WebhookRetryMaxWait,
		}, c.logger), nil
	case PublisherLog, "":
		return publisher.NewLogPublisher(c.logger), nil
	default:
		return nil, fmt.Errorf("unknown publisher %q", c.cfg.Publisher)
	}
}

// Close releases the publisher connection and the database pool.
func (c *CompositionRoot) Close() error {
	var errs []error
	for i := len(c.closers) - 1; i >= 0; i-- {
		errs = append(errs, c.closers[i]())
	}
	c.closers = nil
	return errors.Join(errs...)
}

func (c *CompositionRoot) Advisor() *advisor.Advisor {
	return c.advisor
}

func (c *CompositionRoot) CreateScanTokenCommandHandler() commands.ScanTokenCommandHandler {
	var f commands.ScanUoWFactory = FuncScanUoWFactory(func() commands.ScanUoW {
		return c.uowFactory.Create()
	})
	return commands.NewScanTokenCommandHandler(f, services.NewScanValidator(c.tokens, c.now), c.logger)
}

func (c *CompositionRoot) CreateCreateOrderCommandHandler() commands.CreateOrderCommandHandler {
	var f commands.OrderUoWFactory = FuncOrderUoWFactory(func() commands.OrderUoW {
		return c.uowFactory.Create()
	})
	return commands.NewCreateOrderCommandHandler(f, c.now)
}

func (c *CompositionRoot) CreateAcceptOrderCommandHandler() commands.AcceptOrderCommandHandler {
	var f commands.AcceptUoWFactory = FuncAcceptUoWFactory(func() commands.AcceptUoW {
		return c.uowFactory.Create()
	})
	return commands.NewAcceptOrderCommandHandler(f, services.NewRandomCarrierAssigner(c.tokens), c.now)
}

func (c *CompositionRoot) CreateRejectOrderCommandHandler() commands.RejectOrderCommandHandler {
	var f commands.OrderUoWFactory = FuncOrderUoWFactory(func() commands.OrderUoW {
		return c.uowFactory.Create()
	})
	return commands.NewRejectOrderCommandHandler(f, c.now)
}

func (c *CompositionRoot) CreateRegisterCarrierCommandHandler() commands.RegisterCarrierCommandHandler {
	var f commands.CarrierUoWFactory = FuncCarrierUoWFactory(func() commands.CarrierUoW {
		return c.uowFactory.Create()
	})
	return commands.NewRegisterCarrierCommandHandler(f)
}

func (c *CompositionRoot) CreateRecordDeliveryHistoryCommandHandler() commands.RecordDeliveryHistoryCommandHandler {
	var f commands.HistoryUoWFactory = FuncHistoryUoWFactory(func() commands.HistoryUoW {
		return c.uowFactory.Create()
	})
	return commands.NewRecordDeliveryHistoryCommandHandler(f, c.now)
}

func (c *CompositionRoot) CreateRelayOutboxCommandHandler() commands.RelayOutboxCommandHandler {
	var f commands.OutboxUoWFactory = FuncOutboxUoWFactory(func() commands.OutboxUoW {
		return c.uowFactory.Create()
	})
	history := c.CreateRecordDeliveryHistoryCommandHandler()
	return commands.NewRelayOutboxCommandHandler(f, c.publisher, &history, c.advisor, c.now, c.logger)
}

func (c *CompositionRoot) CreateGetOrderQueryHandler() queries.GetOrderQueryHandler {
	return queries.NewGetOrderQueryHandler(c.reader.OrderRepository(), c.reader.ScanRecordRepository())
}

func (c *CompositionRoot) CreateGetOrderTokenQueryHandler() queries.GetOrderTokenQueryHandler {
	return queries.NewGetOrderTokenQueryHandler(c.reader.OrderRepository())
}

func (c *CompositionRoot) CreateGetCarrierOrdersQueryHandler() queries.GetCarrierOrdersQueryHandler {
	return queries.NewGetCarrierOrdersQueryHandler(c.reader.OrderRepository())
}

func (c *CompositionRoot) CreateGetCustomerOrdersQueryHandler() queries.GetCustomerOrdersQueryHandler {
	return queries.NewGetCustomerOrdersQueryHandler(c.reader.OrderRepository())
}

func (c *CompositionRoot) CreateGetDeliveryPredictionQueryHandler() queries.GetDeliveryPredictionQueryHandler {
	return queries.NewGetDeliveryPredictionQueryHandler(c.advisor)
}

// CreateRouter fails when the embedded OpenAPI document is invalid.
func (c *CompositionRoot) CreateRouter(ctx context.Context) (*echo.Echo, error) {
	server := httpin.NewServer(httpin.Handlers{
		ScanToken:         c.CreateScanTokenCommandHandler(),
		CreateOrder:       c.CreateCreateOrderCommandHandler(),
		AcceptOrder:       c.CreateAcceptOrderCommandHandler(),
		RejectOrder:       c.CreateRejectOrderCommandHandler(),
		RegisterCarrier:   c.CreateRegisterCarrierCommandHandler(),
		GetOrder:          c.CreateGetOrderQueryHandler(),
		GetOrderToken:     c.CreateGetOrderTokenQueryHandler(),
		GetCarrierOrders:  c.CreateGetCarrierOrdersQueryHandler(),
		GetCustomerOrders: c.CreateGetCustomerOrdersQueryHandler(),
		GetPrediction:     c.CreateGetDeliveryPredictionQueryHandler(),
	})
	return httpin.NewRouter(ctx, server, []byte(c.cfg.JWTSecret), c.logger)
}

func (c *CompositionRoot) CreateJobManager() *jobs.JobManager {
	relay := c.CreateRelayOutboxCommandHandler()
	return jobs.NewJobManager(
		jobs.NewOutboxRelayJob(&relay, c.cfg.RelayBatchSize, c.cfg.RelaySchedule, c.logger),
	)
}

type FuncOrderUoWFactory func() commands.OrderUoW

func (f FuncOrderUoWFactory) Create() commands.OrderUoW {
	return f()
}

type FuncAcceptUoWFactory func() commands.AcceptUoW

func (f FuncAcceptUoWFactory) Create() commands.AcceptUoW {
	return f()
}

type FuncScanUoWFactory func() commands.ScanUoW

func (f FuncScanUoWFactory) Create() commands.ScanUoW {
	return f()
}

type FuncCarrierUoWFactory func() commands.CarrierUoW

func (f FuncCarrierUoWFactory) Create() commands.CarrierUoW {
	return f()
}

type FuncHistoryUoWFactory func() commands.HistoryUoW

func (f FuncHistoryUoWFactory) Create() commands.HistoryUoW {
	return f()
}

type FuncOutboxUoWFactory func() commands.OutboxUoW

func (f FuncOutboxUoWFactory) Create() commands.OutboxUoW {
	return f()
}
