// Package jsonschema compiles JSON Schema documents and reports every
// violation found in an instance.
package jsonschema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// ValidationErrors represents a collection of validation errors
type ValidationErrors []error

// Error implements the error interface for ValidationErrors
func (ve ValidationErrors) Error() string {
	msgs := make([]string, 0, len(ve))
	for _, err := range ve {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// Violation is a single schema failure at a location in the instance.
type Violation struct {
	Location string
	Message  string
}

func (v Violation) Error() string {
	return fmt.Sprintf("validation error at %s: %s", v.Location, v.Message)
}

// Schema is a compiled schema ready to validate decoded JSON values.
type Schema struct {
	name   string
	schema *jsonschema.Schema
}

// Compile compiles the schema document registered under name.
func Compile(name string, document []byte) (*Schema, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(name, bytes.NewReader(document)); err != nil {
		return nil, fmt.Errorf("invalid schema %s: %w", name, err)
	}
	schema, err := compiler.Compile(name)
	if err != nil {
		return nil, fmt.Errorf("invalid schema %s: %w", name, err)
	}
	return &Schema{name: name, schema: schema}, nil
}

// MustCompile is like Compile but panics if the schema cannot be compiled.
func MustCompile(name string, document []byte) *Schema {
	s, err := Compile(name, document)
	if err != nil {
		panic(err)
	}
	return s
}

// Validate checks a value produced by encoding/json decoding into
// interface{}. It returns nil or ValidationErrors holding one Violation per
// failing leaf.
func (s *Schema) Validate(doc interface{}) error {
	err := s.schema.Validate(doc)
	if err == nil {
		return nil
	}
	if ve, ok := err.(*jsonschema.ValidationError); ok {
		return flatten(ve)
	}
	return ValidationErrors{err}
}

// ValidateJSON decodes data and validates the result.
func (s *Schema) ValidateJSON(data []byte) error {
	var doc interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return ValidationErrors{fmt.Errorf("invalid JSON: %w", err)}
	}
	return s.Validate(doc)
}

// ValidateWithErrors validates a JSON string against a JSON Schema.
// It reports whether the JSON is valid and, if not, every violation.
func ValidateWithErrors(jsonStr, schemaStr string) (bool, ValidationErrors) {
	s, err := Compile("schema.json", []byte(schemaStr))
	if err != nil {
		return false, ValidationErrors{err}
	}
	if err := s.ValidateJSON([]byte(jsonStr)); err != nil {
		if ve, ok := err.(ValidationErrors); ok {
			return false, ve
		}
		return false, ValidationErrors{err}
	}
	return true, nil
}

// flatten keeps only the leaves of the cause tree; inner nodes just say
// that a subschema failed.
func flatten(err *jsonschema.ValidationError) ValidationErrors {
	if len(err.Causes) == 0 {
		location := err.InstanceLocation
		if location == "" {
			location = "/"
		}
		return ValidationErrors{Violation{Location: location, Message: err.Message}}
	}

	var errs ValidationErrors
	for _, cause := range err.Causes {
		errs = append(errs, flatten(cause)...)
	}
	return errs
}
