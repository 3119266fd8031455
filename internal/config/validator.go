package config

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/wesleyorama2/syncreq/pkg/jsonschema"
)

//go:embed schema.json
var schemaDocument []byte

var fileSchema = jsonschema.MustCompile("request-file.json", schemaDocument)

// ValidationError represents a request file validation error
type ValidationError struct {
	Path    string
	Message string
}

// Error returns the error message
func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

// ValidationErrors collects every problem found in one file.
type ValidationErrors []ValidationError

func (ve ValidationErrors) Error() string {
	msgs := make([]string, 0, len(ve))
	for _, e := range ve {
		msgs = append(msgs, e.Error())
	}
	return strings.Join(msgs, "; ")
}

// validateDocument checks a decoded file against the embedded schema.
// Locations are reported in dotted form, e.g. "requests.login.url".
func validateDocument(doc interface{}) ValidationErrors {
	err := fileSchema.Validate(doc)
	if err == nil {
		return nil
	}

	violations, ok := err.(jsonschema.ValidationErrors)
	if !ok {
		return ValidationErrors{{Path: "$", Message: err.Error()}}
	}

	var errs ValidationErrors
	for _, v := range violations {
		ve := ValidationError{Path: "$", Message: v.Error()}
		if violation, ok := v.(jsonschema.Violation); ok {
			ve.Path = dotted(violation.Location)
			ve.Message = violation.Message
		}
		errs = append(errs, ve)
	}
	return errs
}

func dotted(pointer string) string {
	pointer = strings.Trim(pointer, "/")
	if pointer == "" {
		return "$"
	}
	return strings.ReplaceAll(pointer, "/", ".")
}
