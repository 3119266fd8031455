package client

import (
	"bytes"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/wesleyorama2/syncreq/internal/executor"
	"github.com/wesleyorama2/syncreq/internal/request"
)

// Options describes a request in terms of its URL parts.
type Options struct {
	Method   string
	Protocol string
	Host     string
	Port     int
	Path     string
	Headers  map[string]string
	Body     []byte

	// RejectUnauthorized defaults to true when nil. Unlike the executor,
	// this layer verifies server certificates unless told otherwise.
	RejectUnauthorized *bool

	CA         string
	Cert       string
	PFX        string
	Key        string
	Passphrase string
}

// Request accumulates headers and body until End sends it.
type Request struct {
	opts           Options
	headers        map[string]string
	body           bytes.Buffer
	timeout        time.Duration
	connectTimeout time.Duration
}

// NewRequest applies defaults to opts and returns a request ready to be
// written to and ended.
func NewRequest(opts Options) *Request {
	if opts.Method == "" {
		opts.Method = "GET"
	}
	opts.Method = strings.ToUpper(opts.Method)
	if opts.Protocol == "" {
		opts.Protocol = "http"
	}
	if opts.Port == 0 {
		opts.Port = 80
		if opts.Protocol == "https" {
			opts.Port = 443
		}
	}
	if opts.Path == "" {
		opts.Path = "/"
	}
	if opts.Host == "" {
		opts.Host = "127.0.0.1"
	}
	if opts.RejectUnauthorized == nil {
		reject := true
		opts.RejectUnauthorized = &reject
	}

	r := &Request{
		opts:    opts,
		headers: make(map[string]string),
	}
	for name, value := range opts.Headers {
		r.SetHeader(name, value)
	}
	r.body.Write(opts.Body)
	return r
}

// GetHeader returns the value of a header, ignoring case.
func (r *Request) GetHeader(name string) string {
	return r.headers[strings.ToLower(name)]
}

// SetHeader sets a header, replacing any value stored under the same name
// in any case.
func (r *Request) SetHeader(name, value string) *Request {
	r.headers[strings.ToLower(name)] = value
	return r
}

// RemoveHeader deletes a header, ignoring case.
func (r *Request) RemoveHeader(name string) *Request {
	delete(r.headers, strings.ToLower(name))
	return r
}

// Write appends data to the request body.
func (r *Request) Write(data []byte) (int, error) {
	return r.body.Write(data)
}

// SetTimeout bounds the whole exchange.
func (r *Request) SetTimeout(d time.Duration) *Request {
	r.timeout = d
	return r
}

// SetConnectTimeout bounds connection setup. When it is set, any timeout
// reported by End is attributed to the connect phase.
func (r *Request) SetConnectTimeout(d time.Duration) *Request {
	r.connectTimeout = d
	return r
}

// URL returns the endpoint assembled from protocol, host, port and path.
func (r *Request) URL() string {
	return fmt.Sprintf("%s://%s:%d%s", r.opts.Protocol, r.opts.Host, r.opts.Port, r.opts.Path)
}

// HeaderLines renders the header map as raw lines, sorted by name.
func (r *Request) HeaderLines() []string {
	names := make([]string, 0, len(r.headers))
	for name := range r.headers {
		names = append(names, name)
	}
	sort.Strings(names)

	lines := make([]string, 0, len(names))
	for _, name := range names {
		lines = append(lines, name+": "+r.headers[name])
	}
	return lines
}

// Descriptor converts the request into a validated request.Descriptor.
func (r *Request) Descriptor() (*request.Descriptor, error) {
	d := &request.Descriptor{
		Method:         r.opts.Method,
		URL:            r.URL(),
		Headers:        r.HeaderLines(),
		ConnectTimeout: r.connectTimeout,
		Timeout:        r.timeout,
		TLS: request.TLSOptions{
			VerifyPeer:          *r.opts.RejectUnauthorized,
			CABundle:            r.opts.CA,
			ClientKey:           r.opts.Key,
			ClientKeyPassphrase: r.opts.Passphrase,
		},
	}
	if r.body.Len() > 0 {
		d.Body = append([]byte(nil), r.body.Bytes()...)
	}
	if r.opts.Cert != "" {
		d.TLS.ClientCert = r.opts.Cert
	} else if r.opts.PFX != "" {
		d.TLS.ClientCert = r.opts.PFX
		d.TLS.ClientCertPKCS12 = true
	}

	if err := d.Validate(); err != nil {
		return nil, err
	}
	return d, nil
}

// End appends data to the body, sends the request and waits for the
// response. Timeouts come back as ErrTimeout or ErrConnectTimeout and other
// transport failures as *TransportError. HTTP error statuses are not errors.
func (r *Request) End(data []byte) (*Response, error) {
	if len(data) > 0 {
		r.body.Write(data)
	}

	d, err := r.Descriptor()
	if err != nil {
		return nil, err
	}

	start := time.Now()
	e := executor.New()
	res, err := e.Execute(d)
	if err != nil {
		return nil, err
	}

	switch res.Kind {
	case executor.TimedOut:
		if r.connectTimeout > 0 {
			return nil, ErrConnectTimeout
		}
		return nil, ErrTimeout
	case executor.Failed:
		return nil, &TransportError{Message: res.Message}
	}

	body := make([]byte, res.BodyLength)
	n, err := e.Drain(body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	status, headers := ParseHeaders(res.Headers)
	return &Response{
		StatusCode:   status,
		Headers:      headers,
		RawHeaders:   res.Headers,
		Body:         body[:n],
		ResponseTime: time.Since(start),
	}, nil
}

// Do builds a request from opts and ends it without extra body data.
func Do(opts Options) (*Response, error) {
	return NewRequest(opts).End(nil)
}
