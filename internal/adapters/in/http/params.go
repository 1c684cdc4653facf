package http

import (
	"errors"
	"fmt"

	"trackit/internal/core/domain/model/kernel"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/oapi-codegen/runtime"
)

var errBadRequest = errors.New("bad request")

// requestValidator plugs go-playground/validator into echo's Bind flow.
type requestValidator struct {
	validate *validator.Validate
}

func newRequestValidator() *requestValidator {
	return &requestValidator{validate: validator.New()}
}

func (v *requestValidator) Validate(i interface{}) error {
	if err := v.validate.Struct(i); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) && len(ve) > 0 {
			fe := ve[0]
			return fmt.Errorf("%w: field %s failed on %q", errBadRequest, fe.Field(), fe.Tag())
		}
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return nil
}

// bindBody decodes the JSON body into dst and validates it.
func bindBody(c echo.Context, dst interface{}) error {
	if err := c.Bind(dst); err != nil {
		return fmt.Errorf("%w: invalid request body", errBadRequest)
	}
	return c.Validate(dst)
}

// pathUUID binds a simple-style path parameter and parses it as an id.
func pathUUID(c echo.Context, name string) (kernel.UUID, error) {
	var raw string
	err := runtime.BindStyledParameterWithLocation("simple", false, name, runtime.ParamLocationPath, c.Param(name), &raw)
	if err != nil {
		return kernel.UUID{}, fmt.Errorf("%w: invalid format for parameter %s: %v", errBadRequest, name, err)
	}
	return parseID(name, raw)
}

// queryUUID binds an optional form-style query parameter.
func queryUUID(c echo.Context, name string) (*kernel.UUID, error) {
	var raw *string
	err := runtime.BindQueryParameter("form", true, false, name, c.QueryParams(), &raw)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid format for parameter %s: %v", errBadRequest, name, err)
	}
	if raw == nil || *raw == "" {
		return nil, nil
	}
	id, err := parseID(name, *raw)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

func parseID(name, raw string) (kernel.UUID, error) {
	id, err := kernel.UUIDFromString(raw)
	if err != nil {
		return kernel.UUID{}, fmt.Errorf("%w: %s is not a valid id", errBadRequest, name)
	}
	return id, nil
}
