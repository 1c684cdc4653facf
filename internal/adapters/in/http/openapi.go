package http

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/labstack/echo/v4"
	"github.com/swaggo/swag"
)

//go:embed openapi.json
var openAPIDocument []byte

var registerDocOnce sync.Once

// LoadOpenAPI parses and validates the embedded API description.
func LoadOpenAPI(ctx context.Context) (*openapi3.T, error) {
	return loadOpenAPI(ctx, openAPIDocument)
}

func loadOpenAPI(ctx context.Context, data []byte) (*openapi3.T, error) {
	loader := openapi3.NewLoader()
	loader.Context = ctx

	doc, err := loader.LoadFromData(data)
	if err != nil {
		return nil, fmt.Errorf("load openapi document: %w", err)
	}
	if err = doc.Validate(ctx); err != nil {
		return nil, fmt.Errorf("validate openapi document: %w", err)
	}
	return doc, nil
}

// apiDocs is a validated document rendered once for the docs endpoints.
type apiDocs struct {
	raw []byte
}

func newAPIDocs(doc *openapi3.T) (*apiDocs, error) {
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("render openapi document: %w", err)
	}
	return &apiDocs{raw: raw}, nil
}

// ReadDoc serves the document to the swagger UI.
func (d *apiDocs) ReadDoc() string { return string(d.raw) }

func (d *apiDocs) serve(c echo.Context) error {
	return c.Blob(http.StatusOK, echo.MIMEApplicationJSON, d.raw)
}

// register hands the document to swag. swag panics on a second
// registration under one name, so only the first router registers.
func (d *apiDocs) register() {
	registerDocOnce.Do(func() {
		swag.Register(swag.Name, d)
	})
}
