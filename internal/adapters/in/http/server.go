package http

import (
	"net/http"
	"time"

	"trackit/internal/core/application/usecases/commands"
	"trackit/internal/core/application/usecases/queries"
	"trackit/internal/core/domain/model/kernel"
	"trackit/internal/core/domain/model/order"
	"trackit/internal/core/domain/model/rejection"
	"trackit/internal/core/domain/model/token"
	"trackit/internal/pkg/metrics"

	"github.com/labstack/echo/v4"
)

// Server binds HTTP requests to application use cases.
type Server struct {
	// Command handlers
	scanTokenHandler       commands.ScanTokenCommandHandler
	createOrderHandler     commands.CreateOrderCommandHandler
	acceptOrderHandler     commands.AcceptOrderCommandHandler
	rejectOrderHandler     commands.RejectOrderCommandHandler
	registerCarrierHandler commands.RegisterCarrierCommandHandler

	// Query handlers
	getOrderHandler          queries.GetOrderQueryHandler
	getOrderTokenHandler     queries.GetOrderTokenQueryHandler
	getCarrierOrdersHandler  queries.GetCarrierOrdersQueryHandler
	getCustomerOrdersHandler queries.GetCustomerOrdersQueryHandler
	getPredictionHandler     queries.GetDeliveryPredictionQueryHandler
}

// Handlers groups the use cases the server exposes.
type Handlers struct {
	ScanToken       commands.ScanTokenCommandHandler
	CreateOrder     commands.CreateOrderCommandHandler
	AcceptOrder     commands.AcceptOrderCommandHandler
	RejectOrder     commands.RejectOrderCommandHandler
	RegisterCarrier commands.RegisterCarrierCommandHandler

	GetOrder          queries.GetOrderQueryHandler
	GetOrderToken     queries.GetOrderTokenQueryHandler
	GetCarrierOrders  queries.GetCarrierOrdersQueryHandler
	GetCustomerOrders queries.GetCustomerOrdersQueryHandler
	GetPrediction     queries.GetDeliveryPredictionQueryHandler
}

func NewServer(h Handlers) *Server {
	return &Server{
		scanTokenHandler:         h.ScanToken,
		createOrderHandler:       h.CreateOrder,
		acceptOrderHandler:       h.AcceptOrder,
		rejectOrderHandler:       h.RejectOrder,
		registerCarrierHandler:   h.RegisterCarrier,
		getOrderHandler:          h.GetOrder,
		getOrderTokenHandler:     h.GetOrderToken,
		getCarrierOrdersHandler:  h.GetCarrierOrders,
		getCustomerOrdersHandler: h.GetCustomerOrders,
		getPredictionHandler:     h.GetPrediction,
	}
}

// RegisterRoutes mounts the authenticated API under /api/v1.
func (s *Server) RegisterRoutes(e *echo.Echo, auth echo.MiddlewareFunc) {
	api := e.Group("/api/v1", auth)

	api.POST("/scans", s.ScanToken)
	api.POST("/orders", s.CreateOrder)
	api.GET("/orders/:id", s.GetOrder)
	api.POST("/orders/:id/accept", s.AcceptOrder)
	api.POST("/orders/:id/reject", s.RejectOrder)
	api.GET("/orders/:id/qr/:class", s.GetOrderQR)
	api.POST("/carriers", s.RegisterCarrier)
	api.GET("/carriers/:id/orders", s.GetCarrierOrders)
	api.GET("/customers/:id/orders", s.GetCustomerOrders)
	api.GET("/predictions", s.GetPrediction)
}

// ScanToken handles POST /api/v1/scans.
func (s *Server) ScanToken(c echo.Context) error {
	started := time.Now()
	defer func() {
		metrics.ScanDuration.Observe(time.Since(started).Seconds())
	}()

	actorID, err := actorFrom(c)
	if err != nil {
		return writeError(c, err)
	}

	var req ScanRequest
	if err = bindBody(c, &req); err != nil {
		metrics.ScansTotal.WithLabelValues(rejection.MalformedToken.String()).Inc()
		return writeError(c, rejection.Wrap(rejection.MalformedToken, err))
	}

	cmd, err := commands.NewScanTokenCommand(req.Token, actorID)
	if err != nil {
		metrics.ScansTotal.WithLabelValues(rejection.MalformedToken.String()).Inc()
		return writeError(c, rejection.Wrap(rejection.MalformedToken, err))
	}

	res, err := s.scanTokenHandler.Handle(c.Request().Context(), cmd)
	if err != nil {
		metrics.ScansTotal.WithLabelValues(rejection.KindOf(err).String()).Inc()
		return writeError(c, err)
	}

	metrics.ScansTotal.WithLabelValues("ok").Inc()
	return c.JSON(http.StatusOK, ScanResponse{
		OrderID:              res.OrderID.String(),
		NewStatus:            res.NewStatus.String(),
		ScanCount:            res.ScanCount,
		RecipientTokenIssued: res.RecipientTokenIssued,
	})
}

// CreateOrder handles POST /api/v1/orders. The caller is the customer.
func (s *Server) CreateOrder(c echo.Context) error {
	actorID, err := actorFrom(c)
	if err != nil {
		return writeError(c, err)
	}

	var req CreateOrderRequest
	if err = bindBody(c, &req); err != nil {
		return writeError(c, err)
	}
	vendorID, err := parseID("vendorId", req.VendorID)
	if err != nil {
		return writeError(c, err)
	}

	orderID := kernel.NewUUID()
	cmd, err := commands.NewCreateOrderCommand(orderID, actorID, vendorID,
		req.Description, order.Window(req.Window), order.Speed(req.Speed), req.EstimatedAmount)
	if err != nil {
		return writeError(c, err)
	}

	if err = s.createOrderHandler.Handle(c.Request().Context(), cmd); err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusCreated, CreateOrderResponse{
		ID:     orderID.String(),
		Status: order.Pending.String(),
	})
}

// GetOrder handles GET /api/v1/orders/:id.
func (s *Server) GetOrder(c echo.Context) error {
	actorID, err := actorFrom(c)
	if err != nil {
		return writeError(c, err)
	}
	orderID, err := pathUUID(c, "id")
	if err != nil {
		return writeError(c, err)
	}

	query, err := queries.NewGetOrderQuery(orderID, actorID)
	if err != nil {
		return writeError(c, err)
	}

	o, err := s.getOrderHandler.Handle(c.Request().Context(), query)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, toOrderResponse(o))
}

// AcceptOrder handles POST /api/v1/orders/:id/accept. The caller is the vendor.
func (s *Server) AcceptOrder(c echo.Context) error {
	actorID, err := actorFrom(c)
	if err != nil {
		return writeError(c, err)
	}
	orderID, err := pathUUID(c, "id")
	if err != nil {
		return writeError(c, err)
	}

	cmd, err := commands.NewAcceptOrderCommand(orderID, actorID)
	if err != nil {
		return writeError(c, err)
	}

	res, err := s.acceptOrderHandler.Handle(c.Request().Context(), cmd)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, AcceptOrderResponse{
		CarrierID:    res.CarrierID.String(),
		PackageToken: res.PackageToken,
	})
}

// RejectOrder handles POST /api/v1/orders/:id/reject. The caller is the vendor.
func (s *Server) RejectOrder(c echo.Context) error {
	actorID, err := actorFrom(c)
	if err != nil {
		return writeError(c, err)
	}
	orderID, err := pathUUID(c, "id")
	if err != nil {
		return writeError(c, err)
	}

	cmd, err := commands.NewRejectOrderCommand(orderID, actorID)
	if err != nil {
		return writeError(c, err)
	}

	if err = s.rejectOrderHandler.Handle(c.Request().Context(), cmd); err != nil {
		return writeError(c, err)
	}

	return c.NoContent(http.StatusNoContent)
}

// GetOrderQR handles GET /api/v1/orders/:id/qr/:class and answers a PNG.
func (s *Server) GetOrderQR(c echo.Context) error {
	actorID, err := actorFrom(c)
	if err != nil {
		return writeError(c, err)
	}
	orderID, err := pathUUID(c, "id")
	if err != nil {
		return writeError(c, err)
	}
	class, err := token.ParseClass(c.Param("class"))
	if err != nil {
		return writeError(c, rejection.Wrap(rejection.UnknownTokenClass, err))
	}

	query, err := queries.NewGetOrderTokenQuery(orderID, actorID, class)
	if err != nil {
		return writeError(c, err)
	}

	raw, err := s.getOrderTokenHandler.Handle(c.Request().Context(), query)
	if err != nil {
		return writeError(c, err)
	}

	png, err := renderQR(raw)
	if err != nil {
		return writeError(c, err)
	}

	c.Response().Header().Set(echo.HeaderCacheControl, "no-store")
	return c.Blob(http.StatusOK, "image/png", png)
}

// RegisterCarrier handles POST /api/v1/carriers. The caller registers
// itself, so the carrier id is the caller's id.
func (s *Server) RegisterCarrier(c echo.Context) error {
	actorID, err := actorFrom(c)
	if err != nil {
		return writeError(c, err)
	}

	var req RegisterCarrierRequest
	if err = bindBody(c, &req); err != nil {
		return writeError(c, err)
	}

	cmd, err := commands.NewRegisterCarrierCommand(actorID, req.Name)
	if err != nil {
		return writeError(c, err)
	}

	if err = s.registerCarrierHandler.Handle(c.Request().Context(), cmd); err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusCreated, CarrierResponse{ID: actorID.String(), Name: req.Name})
}

// GetCarrierOrders handles GET /api/v1/carriers/:id/orders.
func (s *Server) GetCarrierOrders(c echo.Context) error {
	actorID, err := actorFrom(c)
	if err != nil {
		return writeError(c, err)
	}
	carrierID, err := pathUUID(c, "id")
	if err != nil {
		return writeError(c, err)
	}

	query, err := queries.NewGetCarrierOrdersQuery(carrierID, actorID)
	if err != nil {
		return writeError(c, err)
	}

	orders, err := s.getCarrierOrdersHandler.Handle(c.Request().Context(), query)
	if err != nil {
		return writeError(c, err)
	}

	response := make([]CarrierOrder, len(orders))
	for i, o := range orders {
		response[i] = CarrierOrder{
			ID:          o.ID.String(),
			Description: o.Description,
			Window:      o.Window.String(),
			Speed:       o.Speed.String(),
			Status:      o.Status.String(),
			ScanCount:   o.ScanCount,
			AcceptedAt:  o.AcceptedAt,
		}
	}

	return c.JSON(http.StatusOK, response)
}

// GetCustomerOrders handles GET /api/v1/customers/:id/orders.
func (s *Server) GetCustomerOrders(c echo.Context) error {
	actorID, err := actorFrom(c)
	if err != nil {
		return writeError(c, err)
	}
	customerID, err := pathUUID(c, "id")
	if err != nil {
		return writeError(c, err)
	}

	query, err := queries.NewGetCustomerOrdersQuery(customerID, actorID)
	if err != nil {
		return writeError(c, err)
	}

	orders, err := s.getCustomerOrdersHandler.Handle(c.Request().Context(), query)
	if err != nil {
		return writeError(c, err)
	}

	response := make([]CustomerOrder, len(orders))
	for i, o := range orders {
		response[i] = CustomerOrder{
			ID:              o.ID.String(),
			VendorID:        o.VendorID.String(),
			CarrierID:       optionalID(o.CarrierID),
			Description:     o.Description,
			Window:          o.Window.String(),
			Speed:           o.Speed.String(),
			Status:          o.Status.String(),
			ScanCount:       o.ScanCount,
			EstimatedAmount: o.EstimatedAmount,
			FinalAmount:     o.FinalAmount,
			CreatedAt:       o.CreatedAt,
		}
	}

	return c.JSON(http.StatusOK, response)
}

// GetPrediction handles GET /api/v1/predictions for the calling customer.
func (s *Server) GetPrediction(c echo.Context) error {
	actorID, err := actorFrom(c)
	if err != nil {
		return writeError(c, err)
	}
	vendorID, err := queryUUID(c, "vendor_id")
	if err != nil {
		return writeError(c, err)
	}

	query, err := queries.NewGetDeliveryPredictionQuery(actorID, vendorID)
	if err != nil {
		return writeError(c, err)
	}

	p, err := s.getPredictionHandler.Handle(c.Request().Context(), query)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, PredictionResponse{
		VendorID:         p.VendorID.String(),
		Window:           p.Window.String(),
		Speed:            p.Speed.String(),
		WindowConfidence: p.WindowConfidence,
		SpeedConfidence:  p.SpeedConfidence,
		Basis:            p.Basis,
	})
}
