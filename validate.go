// FILE: lixenwraith/confman/validate.go
package confman

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// Validator checks a merged configuration tree against a schema. A nil schema
// must be accepted without checks.
type Validator interface {
	Validate(tree *Mapping, schema any) error
}

// ValidatorFunc adapts a function to Validator.
type ValidatorFunc func(tree *Mapping, schema any) error

func (f ValidatorFunc) Validate(tree *Mapping, schema any) error { return f(tree, schema) }

// JSONSchemaValidator validates with JSON Schema (draft 4, 6 and 7). The schema
// may be JSON bytes, a JSON string, a *Mapping or any Go value that marshals
// to a schema object. Only the first violation is reported.
type JSONSchemaValidator struct{}

func (JSONSchemaValidator) Validate(tree *Mapping, schema any) error {
	if schema == nil {
		return nil
	}

	var schemaLoader gojsonschema.JSONLoader
	switch s := schema.(type) {
	case []byte:
		schemaLoader = gojsonschema.NewBytesLoader(s)
	case string:
		schemaLoader = gojsonschema.NewStringLoader(s)
	case *Mapping:
		schemaLoader = gojsonschema.NewGoLoader(s.ToMap())
	case Value:
		schemaLoader = gojsonschema.NewGoLoader(s.Interface())
	default:
		schemaLoader = gojsonschema.NewGoLoader(s)
	}

	result, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewGoLoader(tree.ToMap()))
	if err != nil {
		return &Error{Kind: ErrValidation, Op: "validate", Err: fmt.Errorf("schema could not be applied: %w", err)}
	}
	if result.Valid() {
		return nil
	}

	first := result.Errors()[0]
	return &ValidationError{
		Field:   schemaField(first.Field()),
		Message: first.Description(),
	}
}

// schemaField converts the library's field notation to a dotted path, with ""
// for the document itself.
func schemaField(field string) string {
	if field == "(root)" {
		return ""
	}
	return strings.TrimPrefix(field, "(root).")
}
