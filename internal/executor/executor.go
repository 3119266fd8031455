package executor

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptrace"
	"net/textproto"
	"net/url"
	"os"
	"sync/atomic"
	"time"

	"github.com/wesleyorama2/syncreq/internal/log"
	"github.com/wesleyorama2/syncreq/internal/request"
)

// Executor performs one HTTP exchange per Execute call and keeps the
// response body until Drain hands it to the caller.
//
// An Executor processes at most one call at a time. Use one Executor per
// goroutine; overlapping calls fail with ErrBusy.
type Executor struct {
	newTransport TransportFactory
	logger       *log.Logger

	busy    atomic.Bool
	body    bytes.Buffer
	pending atomic.Int64
	headers []string
}

// Option configures an Executor
type Option func(*Executor)

// WithTransportFactory replaces the transport built for each call.
func WithTransportFactory(f TransportFactory) Option {
	return func(e *Executor) {
		e.newTransport = f
	}
}

// WithLogger sets the logger used for call diagnostics.
func WithLogger(l *log.Logger) Option {
	return func(e *Executor) {
		e.logger = l
	}
}

// New creates an Executor with the given options.
func New(options ...Option) *Executor {
	e := &Executor{
		newTransport: NewTransport,
		logger:       log.Default(),
	}
	for _, option := range options {
		option(e)
	}
	return e
}

// Run validates an untyped descriptor and executes it.
func (e *Executor) Run(input map[string]interface{}) (Result, error) {
	d, err := request.FromMap(input)
	if err != nil {
		return Result{}, err
	}
	return e.Execute(d)
}

// Execute performs the exchange described by d and blocks until it
// completes, times out or fails.
//
// The returned error is only ever a *request.ValidationError or a
// *UsageError. Transport outcomes, including timeouts and TLS failures, are
// reported through the Result. Any HTTP status, 4xx and 5xx included, is a
// Success.
func (e *Executor) Execute(d *request.Descriptor) (Result, error) {
	if err := d.Validate(); err != nil {
		return Result{}, err
	}
	if !e.busy.CompareAndSwap(false, true) {
		return Result{}, &UsageError{Op: "execute", Err: ErrBusy}
	}
	defer e.busy.Store(false)

	e.body.Reset()
	e.pending.Store(0)
	e.headers = nil

	start := time.Now()
	res := e.perform(d)

	if res.Kind != Success {
		e.body.Reset()
	}
	e.pending.Store(int64(e.body.Len()))
	e.headers = nil

	e.logger.Debug("request finished",
		"method", d.Method,
		"url", d.URL,
		"outcome", res.Kind.String(),
		"bodyLength", res.BodyLength,
		"elapsed", time.Since(start),
		"error", res.Message,
	)
	return res, nil
}

// Drain copies the body of the last successful Execute into dst and empties
// the internal buffer. It returns the number of bytes copied.
//
// When dst is too small nothing is copied, the body stays pending and the
// error wraps ErrInsufficientBuffer.
func (e *Executor) Drain(dst []byte) (int, error) {
	if !e.busy.CompareAndSwap(false, true) {
		return 0, &UsageError{Op: "drain", Err: ErrBusy}
	}
	defer e.busy.Store(false)

	if len(dst) < e.body.Len() {
		return 0, &UsageError{Op: "drain", Err: ErrInsufficientBuffer}
	}
	n := copy(dst, e.body.Bytes())
	e.body.Reset()
	e.pending.Store(0)
	return n, nil
}

// Pending returns the number of body bytes waiting to be drained. It may be
// called while another goroutine is inside Execute, which reports zero until
// the call completes.
func (e *Executor) Pending() int {
	return int(e.pending.Load())
}

func (e *Executor) perform(d *request.Descriptor) Result {
	e.logger.Debug("executing request",
		"method", d.Method,
		"url", d.URL,
		"headers", len(d.Headers),
		"bodyLength", len(d.Body),
		"connectTimeout", d.ConnectTimeout,
		"timeout", d.Timeout,
		"verifyPeer", d.TLS.VerifyPeer,
	)
	if !d.TLS.VerifyPeer {
		e.logger.Debug("TLS peer verification disabled; server certificate and hostname are not checked", "url", d.URL)
	}

	tlsConfig, err := buildTLSConfig(d.TLS)
	if err != nil {
		return failed(err.Error())
	}

	rt, err := e.newTransport(TransportConfig{
		TLS:            tlsConfig,
		ConnectTimeout: d.ConnectTimeout,
		Bodiless:       len(d.Body) == 0,
	})
	if err != nil {
		return failed(err.Error())
	}

	client := &http.Client{
		Transport:     &recordingTransport{base: rt, record: e.appendHeaders},
		Timeout:       d.Timeout,
		CheckRedirect: limitRedirects(MaxRedirects),
	}
	defer client.CloseIdleConnections()

	var body io.Reader
	if len(d.Body) > 0 {
		body = bytes.NewReader(d.Body)
	}
	req, err := http.NewRequest(d.Method, d.URL, body)
	if err != nil {
		return failed(err.Error())
	}
	applyHeaderLines(req, d.Headers)

	trace := &httptrace.ClientTrace{
		Got1xxResponse: func(code int, header textproto.MIMEHeader) error {
			e.appendHeaders(informationalHeaderLines(code, header))
			return nil
		},
	}
	req = req.WithContext(httptrace.WithClientTrace(req.Context(), trace))

	resp, err := client.Do(req)
	if err != nil {
		return classify(err)
	}
	defer resp.Body.Close()

	if _, err := io.Copy(&e.body, resp.Body); err != nil {
		return classify(err)
	}

	return succeeded(e.body.Len(), e.headers)
}

func (e *Executor) appendHeaders(lines []string) {
	e.headers = append(e.headers, lines...)
}

func classify(err error) Result {
	if isTimeout(err) {
		return timedOut()
	}
	return failed(transportMessage(err))
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, os.ErrDeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// transportMessage strips the method and URL that net/http prefixes to
// client errors.
func transportMessage(err error) string {
	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Err != nil {
		return urlErr.Err.Error()
	}
	return err.Error()
}
