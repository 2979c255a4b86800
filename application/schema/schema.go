// Package schema generates and enforces the JSON schema of the document
// handed to plugin processes.
package schema

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	invopop "github.com/invopop/jsonschema"
	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/makeitso-dev/mis/domain/entities"
)

// ContextSchemaID is the resource name the context schema is compiled under.
const ContextSchemaID = "https://makeitso.dev/schemas/execution-context.json"

// GenerateSchema reflects a JSON schema from v's Go type and stamps it
// with id.
func GenerateSchema(id string, v any) ([]byte, error) {
	r := &invopop.Reflector{
		ExpandedStruct: true,
	}
	s := r.Reflect(v)
	s.ID = invopop.ID(id)
	s.Title = reflect.TypeOf(v).Name()
	out, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal schema for %T: %w", v, err)
	}
	return out, nil
}

// ContextSchema returns the schema of entities.ExecutionContext.
func ContextSchema() ([]byte, error) {
	return GenerateSchema(ContextSchemaID, entities.ExecutionContext{})
}

// Validator checks serialized documents against a compiled schema.
type Validator struct {
	schema *jsonschema.Schema
}

// NewValidator compiles raw under id.
func NewValidator(id string, raw []byte) (*Validator, error) {
	c := jsonschema.NewCompiler()
	if err := c.AddResource(id, strings.NewReader(string(raw))); err != nil {
		return nil, fmt.Errorf("add schema resource %s: %w", id, err)
	}
	s, err := c.Compile(id)
	if err != nil {
		return nil, fmt.Errorf("compile schema %s: %w", id, err)
	}
	return &Validator{schema: s}, nil
}

// NewContextValidator compiles the execution context schema.
func NewContextValidator() (*Validator, error) {
	raw, err := ContextSchema()
	if err != nil {
		return nil, err
	}
	return NewValidator(ContextSchemaID, raw)
}

// Validate checks a JSON document.
func (v *Validator) Validate(doc []byte) error {
	var obj any
	if err := json.Unmarshal(doc, &obj); err != nil {
		return fmt.Errorf("decode document: %w", err)
	}
	if err := v.schema.Validate(obj); err != nil {
		var ve *jsonschema.ValidationError
		if errors.As(err, &ve) {
			return fmt.Errorf("document does not match schema: %s", ve.Error())
		}
		return err
	}
	return nil
}
