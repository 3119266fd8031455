package executor

import (
	"errors"
	"fmt"
)

var (
	// ErrInsufficientBuffer is returned by Drain when the destination is
	// smaller than the pending body.
	ErrInsufficientBuffer = errors.New("insufficient buffer length")

	// ErrBusy is returned when an Executor is used by two callers at once.
	ErrBusy = errors.New("executor is already processing a call")
)

// UsageError reports a misuse of the Executor API. It never describes a
// transport outcome.
type UsageError struct {
	Op  string
	Err error
}

func (e *UsageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *UsageError) Unwrap() error {
	return e.Err
}
