package request

import "fmt"

// ValidationError reports a descriptor that was rejected before any
// transport work began.
type ValidationError struct {
	Field   string
	Message string
}

// Error returns the error message
func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid request descriptor: %s: %s", e.Field, e.Message)
}
