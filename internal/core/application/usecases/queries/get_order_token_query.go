package queries

import (
	"errors"

	"trackit/internal/core/domain/model/kernel"
	"trackit/internal/core/domain/model/token"
	"trackit/internal/pkg/guard"
)

var ErrGetOrderTokenQueryIsNotConstructed = errors.New(
	"GetOrderTokenQuery must be created via NewGetOrderTokenQuery constructor",
)

// GetOrderTokenQuery fetches the current token of one class so it can be
// rendered as a QR code. The vendor holds the package token, the customer
// holds the recipient token.
type GetOrderTokenQuery struct {
	orderID kernel.UUID
	actorID kernel.UUID
	class   token.Class

	guard guard.ConstructorGuard
}

func NewGetOrderTokenQuery(orderID, actorID kernel.UUID, class token.Class) (GetOrderTokenQuery, error) {
	if err := errors.Join(orderID.Validate(), actorID.Validate(), class.Validate()); err != nil {
		return GetOrderTokenQuery{}, err
	}

	return GetOrderTokenQuery{
		orderID: orderID,
		actorID: actorID,
		class:   class,
		guard:   guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the query was created through the constructor.
func (q GetOrderTokenQuery) Validate() error {
	return q.guard.Validate(ErrGetOrderTokenQueryIsNotConstructed)
}

func (q GetOrderTokenQuery) OrderID() kernel.UUID { return q.orderID }
func (q GetOrderTokenQuery) ActorID() kernel.UUID { return q.actorID }
func (q GetOrderTokenQuery) Class() token.Class   { return q.class }
