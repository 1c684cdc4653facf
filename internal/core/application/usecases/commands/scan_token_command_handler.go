package commands

import (
	"context"
	"log/slog"

	"trackit/internal/core/domain/model/kernel"
	"trackit/internal/core/domain/model/order"
	"trackit/internal/core/domain/model/rejection"
	"trackit/internal/core/domain/model/token"
	"trackit/internal/core/domain/services"
)

// ScanTokenResult is the answer a scanning client shows.
type ScanTokenResult struct {
	OrderID              kernel.UUID
	NewStatus            order.Status
	ScanCount            int
	RecipientTokenIssued bool
}

// ScanTokenCommandHandler runs the scan flow:
//
//  1. parse the payload (MalformedToken)
//  2. load the order named by the token (OrderNotFound)
//  3. validate and apply the scan (UnknownTokenClass, WrongToken, Unauthorized,
//     AlreadyMaxScanned, NotReadyForDelivery, InvalidTransition)
//  4. write the order, its scan record and its events in one unit of work
//     (ScanConflict when a concurrent scan won, StoreUnavailable otherwise)
//
// A StoreUnavailable attempt is retried once with the same input. ScanConflict
// is never retried: the competing scan already consumed the state this one
// was validated against.
type ScanTokenCommandHandler struct {
	uowFactory ScanUoWFactory
	validator  *services.ScanValidator
	logger     *slog.Logger
}

func NewScanTokenCommandHandler(
	uowFactory ScanUoWFactory,
	validator *services.ScanValidator,
	logger *slog.Logger,
) ScanTokenCommandHandler {
	return ScanTokenCommandHandler{
		uowFactory: uowFactory,
		validator:  validator,
		logger:     logger.With("component", "scan_token_handler"),
	}
}

// Handle returns a *rejection.Error for every refused scan.
func (h *ScanTokenCommandHandler) Handle(ctx context.Context, cmd ScanTokenCommand) (ScanTokenResult, error) {
	if err := cmd.Validate(); err != nil {
		return ScanTokenResult{}, err
	}

	tok, err := token.Parse(cmd.Token())
	if err != nil {
		return ScanTokenResult{}, err
	}

	res, err := h.attempt(ctx, tok, cmd.ActorID())
	if rejection.Is(err, rejection.StoreUnavailable) {
		h.logger.WarnContext(ctx, "store unavailable, retrying scan once",
			"order_id", tok.OrderID().String(), "error", err)
		res, err = h.attempt(ctx, tok, cmd.ActorID())
	}

	return res, err
}

func (h *ScanTokenCommandHandler) attempt(ctx context.Context, tok token.Token, actorID kernel.UUID) (ScanTokenResult, error) {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return ScanTokenResult{}, asRejection(err)
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	orderRepo := uow.OrderRepository()
	scanRepo := uow.ScanRecordRepository()

	o, err := orderRepo.Get(ctx, tok.OrderID())
	if err != nil {
		return ScanTokenResult{}, asRejection(err)
	}

	result, err := h.validator.Validate(o, tok, actorID)
	if err != nil {
		return ScanTokenResult{}, err
	}

	if err = orderRepo.Update(ctx, o); err != nil {
		return ScanTokenResult{}, asRejection(err)
	}

	if err = scanRepo.Add(ctx, result.Record); err != nil {
		return ScanTokenResult{}, asRejection(err)
	}

	if err = uow.Commit(ctx); err != nil {
		return ScanTokenResult{}, asRejection(err)
	}

	return ScanTokenResult{
		OrderID:              o.ID(),
		NewStatus:            result.Status,
		ScanCount:            result.ScanCount,
		RecipientTokenIssued: result.RecipientTokenIssued,
	}, nil
}
