package http

import (
	"errors"
	"net/http"

	"trackit/internal/core/application/advisor"
	"trackit/internal/core/domain/model/rejection"
	"trackit/internal/core/domain/services"
	"trackit/internal/pkg/errs"

	"github.com/labstack/echo/v4"
)

// Error is the failure payload of every endpoint.
type Error struct {
	Code    int    `json:"code"`
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// StatusOf maps a rejection kind onto its HTTP status.
func StatusOf(kind rejection.Kind) int {
	switch kind {
	case rejection.MalformedToken, rejection.UnknownTokenClass:
		return http.StatusBadRequest
	case rejection.Unauthorized:
		return http.StatusForbidden
	case rejection.OrderNotFound:
		return http.StatusNotFound
	case rejection.WrongToken:
		return http.StatusUnprocessableEntity
	case rejection.AlreadyMaxScanned, rejection.NotReadyForDelivery,
		rejection.InvalidTransition, rejection.ScanConflict:
		return http.StatusConflict
	case rejection.StoreUnavailable:
		return http.StatusServiceUnavailable
	case rejection.Unknown:
		return http.StatusInternalServerError
	}
	return http.StatusInternalServerError
}

func errorPayload(err error) Error {
	if kind := rejection.KindOf(err); kind != rejection.Unknown {
		status := StatusOf(kind)
		return Error{Code: status, Kind: kind.String(), Message: kind.Message()}
	}

	switch {
	case errors.Is(err, services.ErrNoCarrierAvailable):
		return Error{Code: http.StatusConflict, Kind: "NoCarrierAvailable", Message: "No carrier is available, try again later."}
	case errors.Is(err, advisor.ErrPredictionUnavailable):
		return Error{Code: http.StatusNotFound, Kind: "PredictionUnavailable", Message: "Not enough delivery history for a prediction."}
	case errors.Is(err, errs.ErrObjectNotFound):
		return Error{Code: http.StatusNotFound, Kind: "NotFound", Message: "Requested resource does not exist yet."}
	case errors.Is(err, errs.ErrValueIsInvalid),
		errors.Is(err, errs.ErrValueIsRequired),
		errors.Is(err, errs.ErrValueIsOutOfRange),
		errors.Is(err, errBadRequest):
		return Error{Code: http.StatusBadRequest, Kind: "InvalidRequest", Message: err.Error()}
	default:
		return Error{Code: http.StatusInternalServerError, Kind: "Internal", Message: "Unexpected error."}
	}
}

func writeError(c echo.Context, err error) error {
	payload := errorPayload(err)
	if payload.Code >= http.StatusInternalServerError {
		c.Logger().Error(err)
	}
	return c.JSON(payload.Code, payload)
}
