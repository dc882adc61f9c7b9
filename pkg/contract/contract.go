// Package contract loads the OpenAPI description of the external form
// endpoints and validates outgoing payloads against it.
package contract

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/getkin/kin-openapi/openapi3"
)

// Operation identifiers declared in the embedded document.
const (
	OperationRegister = "register"
	OperationContact  = "sendContactMessage"
)

var (
	// ErrContractViolation wraps schema validation failures.
	ErrContractViolation = errors.New("contract: payload violates request schema")
	// ErrUnknownOperation is returned for operation ids the document lacks.
	ErrUnknownOperation = errors.New("contract: unknown operation")
)

//go:embed openapi.yaml
var embeddedDocument []byte

// Document returns the raw embedded OpenAPI document.
func Document() []byte {
	return append([]byte(nil), embeddedDocument...)
}

// Contract holds the request body schema of every operation in a document.
type Contract struct {
	bodies map[string]*openapi3.Schema
}

// Load parses the embedded document.
func Load(ctx context.Context) (*Contract, error) {
	return LoadData(ctx, embeddedDocument)
}

// LoadData parses and validates raw as an OpenAPI 3 document.
func LoadData(ctx context.Context, raw []byte) (*Contract, error) {
	if len(raw) == 0 {
		return nil, errors.New("contract: document payload is empty")
	}
	loader := &openapi3.Loader{Context: ctx}
	doc, err := loader.LoadFromData(raw)
	if err != nil {
		return nil, fmt.Errorf("contract: load document: %w", err)
	}
	if err := doc.Validate(ctx, openapi3.DisableExamplesValidation()); err != nil {
		return nil, fmt.Errorf("contract: validate document: %w", err)
	}
	if doc.Paths == nil || doc.Paths.Len() == 0 {
		return nil, errors.New("contract: document does not contain any paths")
	}

	c := &Contract{bodies: make(map[string]*openapi3.Schema)}
	for path, item := range doc.Paths.Map() {
		if item == nil {
			continue
		}
		for method, op := range item.Operations() {
			if op == nil || op.OperationID == "" {
				continue
			}
			schema := requestSchema(op.RequestBody)
			if schema == nil {
				return nil, fmt.Errorf("contract: %s %s has no JSON request body", method, path)
			}
			c.bodies[op.OperationID] = schema
		}
	}
	return c, nil
}

// Operations lists the operation ids known to the contract.
func (c *Contract) Operations() []string {
	if c == nil {
		return nil
	}
	out := make([]string, 0, len(c.bodies))
	for id := range c.bodies {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// ValidateRequest checks payload against the request schema of operationID.
// The payload is round-tripped through JSON so struct tags decide field names.
func (c *Contract) ValidateRequest(_ context.Context, operationID string, payload any) error {
	if c == nil {
		return nil
	}
	schema, ok := c.bodies[operationID]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownOperation, operationID)
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("contract: encode payload: %w", err)
	}
	var value any
	if err := json.Unmarshal(raw, &value); err != nil {
		return fmt.Errorf("contract: decode payload: %w", err)
	}

	if err := schema.VisitJSON(value); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrContractViolation, operationID, err)
	}
	return nil
}

func requestSchema(body *openapi3.RequestBodyRef) *openapi3.Schema {
	if body == nil || body.Value == nil {
		return nil
	}
	mt, ok := body.Value.Content["application/json"]
	if !ok || mt == nil || mt.Schema == nil {
		return nil
	}
	return mt.Schema.Value
}
