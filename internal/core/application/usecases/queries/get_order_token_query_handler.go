package queries

import (
	"context"

	"trackit/internal/core/domain/model/rejection"
	"trackit/internal/core/domain/model/token"
	"trackit/internal/pkg/errs"
)

type GetOrderTokenQueryHandler struct {
	orders OrderReader
}

func NewGetOrderTokenQueryHandler(orders OrderReader) GetOrderTokenQueryHandler {
	return GetOrderTokenQueryHandler{orders: orders}
}

// Handle returns the raw token. A token that was not issued yet is an
// *errs.ObjectNotFoundError.
func (h GetOrderTokenQueryHandler) Handle(ctx context.Context, query GetOrderTokenQuery) (string, error) {
	if err := query.Validate(); err != nil {
		return "", err
	}

	o, err := h.orders.Get(ctx, query.OrderID())
	if err != nil {
		return "", asRejection(err)
	}

	var value *string
	switch query.Class() {
	case token.Package:
		if !query.ActorID().IsEqual(o.VendorID()) {
			return "", rejection.New(rejection.Unauthorized, "only the vendor holds the package token")
		}
		value = o.PackageToken()
	case token.Recipient:
		if !query.ActorID().IsEqual(o.CustomerID()) {
			return "", rejection.New(rejection.Unauthorized, "only the customer holds the recipient token")
		}
		value = o.RecipientToken()
	default:
		return "", rejection.Newf(rejection.UnknownTokenClass, "class %s", query.Class())
	}

	if value == nil {
		return "", errs.NewObjectNotFoundError(query.Class().String()+" token", o.ID())
	}
	return *value, nil
}
