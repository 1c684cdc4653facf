package commands

import (
	"errors"

	"trackit/internal/core/domain/model/rejection"
	"trackit/internal/pkg/errs"
)

// asRejection maps a repository or transaction error onto the rejection
// taxonomy. Domain rejections pass through unchanged.
func asRejection(err error) error {
	if err == nil {
		return nil
	}
	if rejection.KindOf(err) != rejection.Unknown {
		return err
	}

	switch {
	case errors.Is(err, errs.ErrObjectNotFound):
		return rejection.Wrap(rejection.OrderNotFound, err)
	case errors.Is(err, errs.ErrVersionIsInvalid):
		return rejection.Wrap(rejection.ScanConflict, err)
	default:
		return rejection.Wrap(rejection.StoreUnavailable, err)
	}
}
