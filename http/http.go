package http

import (
	"github.com/wesleyorama2/syncreq/internal/client"
	"github.com/wesleyorama2/syncreq/internal/executor"
	"github.com/wesleyorama2/syncreq/internal/request"
)

// Descriptor types
type (
	Descriptor      = request.Descriptor
	TLSOptions      = request.TLSOptions
	ValidationError = request.ValidationError
)

// Executor types
type (
	Executor         = executor.Executor
	Option           = executor.Option
	Result           = executor.Result
	Kind             = executor.Kind
	UsageError       = executor.UsageError
	TransportConfig  = executor.TransportConfig
	TransportFactory = executor.TransportFactory
)

// Request types
type (
	Options        = client.Options
	Request        = client.Request
	Response       = client.Response
	Header         = client.Header
	TransportError = client.TransportError
)

// Outcome kinds
const (
	Success  = executor.Success
	TimedOut = executor.TimedOut
	Failed   = executor.Failed
)

// MaxRedirects is the number of redirect hops followed per exchange.
const MaxRedirects = executor.MaxRedirects

// DefaultTimeout applies when a descriptor sets no timeout.
const DefaultTimeout = request.DefaultTimeout

var (
	ErrBusy               = executor.ErrBusy
	ErrInsufficientBuffer = executor.ErrInsufficientBuffer
	ErrTimeout            = client.ErrTimeout
	ErrConnectTimeout     = client.ErrConnectTimeout
)

var (
	// NewExecutor creates an Executor.
	NewExecutor = executor.New
	// WithTransportFactory replaces the per-call transport.
	WithTransportFactory = executor.WithTransportFactory
	// NewTransport builds the default per-call transport.
	NewTransport = executor.NewTransport
	// FromMap validates an untyped descriptor.
	FromMap = request.FromMap
	// NewRequest creates a Request with defaults applied.
	NewRequest = client.NewRequest
	// Do sends a Request built from Options.
	Do = client.Do
	// ParseHeaders reads raw header lines into a status code and headers.
	ParseHeaders = client.ParseHeaders
)
