package client

import "errors"

var (
	// ErrTimeout is returned by End when the total timeout elapsed.
	ErrTimeout = errors.New("request timed out")
	// ErrConnectTimeout is returned by End when a timeout elapsed and a
	// connect timeout had been set. The transport does not say which of the
	// two fired.
	ErrConnectTimeout = errors.New("connect timed out")
)

// TransportError carries the transport's message for a failed exchange.
type TransportError struct {
	Message string
}

func (e *TransportError) Error() string {
	return e.Message
}
