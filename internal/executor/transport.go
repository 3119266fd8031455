package executor

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/http"
	"net/textproto"
	"sort"
	"strings"
	"time"
)

// MaxRedirects is the number of Location hops followed before the executor
// stops and keeps the last response.
const MaxRedirects = 5

// TransportConfig carries the per-call settings a transport must honour.
type TransportConfig struct {
	TLS            *tls.Config
	ConnectTimeout time.Duration
	// Bodiless marks a call without a request body. The request head then
	// never carries Content-Length, whatever the verb.
	Bodiless bool
}

// TransportFactory creates the round tripper used for exactly one call.
type TransportFactory func(cfg TransportConfig) (http.RoundTripper, error)

// NewTransport is the default TransportFactory. The returned transport never
// reuses connections and only speaks HTTP/1.x.
func NewTransport(cfg TransportConfig) (http.RoundTripper, error) {
	dialer := &net.Dialer{
		Timeout: cfg.ConnectTimeout,
	}

	t := &http.Transport{
		DialContext:         dialer.DialContext,
		TLSClientConfig:     cfg.TLS,
		TLSHandshakeTimeout: cfg.ConnectTimeout,
		DisableKeepAlives:   true,
		DisableCompression:  true,
		// A non-nil empty map turns off HTTP/2 upgrade.
		TLSNextProto: map[string]func(string, *tls.Conn) http.RoundTripper{},
	}

	if cfg.Bodiless {
		t.DialContext = func(ctx context.Context, network, addr string) (net.Conn, error) {
			conn, err := dialer.DialContext(ctx, network, addr)
			if err != nil {
				return nil, err
			}
			return &emptyLengthConn{Conn: conn}, nil
		}
		// The head has to be rewritten before encryption, so TLS is set up
		// here instead of inside the transport.
		t.DialTLSContext = func(ctx context.Context, network, addr string) (net.Conn, error) {
			conn, err := dialTLS(ctx, dialer, cfg, network, addr)
			if err != nil {
				return nil, err
			}
			return &emptyLengthConn{Conn: conn}, nil
		}
	}

	return t, nil
}

func dialTLS(ctx context.Context, dialer *net.Dialer, cfg TransportConfig, network, addr string) (*tls.Conn, error) {
	raw, err := dialer.DialContext(ctx, network, addr)
	if err != nil {
		return nil, err
	}

	tlsConfig := &tls.Config{}
	if cfg.TLS != nil {
		tlsConfig = cfg.TLS.Clone()
	}
	if tlsConfig.ServerName == "" {
		host, _, err := net.SplitHostPort(addr)
		if err != nil {
			host = addr
		}
		tlsConfig.ServerName = host
	}
	tlsConfig.NextProtos = []string{"http/1.1"}

	if cfg.ConnectTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.ConnectTimeout)
		defer cancel()
	}

	conn := tls.Client(raw, tlsConfig)
	if err := conn.HandshakeContext(ctx); err != nil {
		raw.Close()
		return nil, err
	}
	return conn, nil
}

var (
	headTerminator = []byte("\r\n\r\n")
	emptyLength    = []byte("\r\nContent-Length: 0\r\n")
)

// emptyLengthConn drops the "Content-Length: 0" line that net/http writes
// for a bodiless POST, PUT or PATCH. Writes are held back until the request
// head is complete; everything after it passes through untouched.
type emptyLengthConn struct {
	net.Conn
	head []byte
	done bool
}

func (c *emptyLengthConn) Write(p []byte) (int, error) {
	if c.done {
		return c.Conn.Write(p)
	}

	c.head = append(c.head, p...)
	end := bytes.Index(c.head, headTerminator)
	if end < 0 {
		return len(p), nil
	}

	out := bytes.Replace(c.head[:end+2], emptyLength, []byte("\r\n"), 1)
	out = append(out, c.head[end+2:]...)
	c.head = nil
	c.done = true

	if _, err := c.Conn.Write(out); err != nil {
		return 0, err
	}
	return len(p), nil
}

// recordingTransport reports the header block of every response it sees,
// including intermediate redirect responses.
type recordingTransport struct {
	base   http.RoundTripper
	record func(lines []string)
}

func (t *recordingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := t.base.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	t.record(responseHeaderLines(resp))
	return resp, nil
}

func (t *recordingTransport) CloseIdleConnections() {
	if c, ok := t.base.(interface{ CloseIdleConnections() }); ok {
		c.CloseIdleConnections()
	}
}

// limitRedirects follows at most max hops and then hands back the last
// response instead of failing.
func limitRedirects(max int) func(req *http.Request, via []*http.Request) error {
	return func(req *http.Request, via []*http.Request) error {
		if len(via) > max {
			return http.ErrUseLastResponse
		}
		return nil
	}
}

// responseHeaderLines renders a header block the way it appears on the wire:
// the status line, one line per field value, then the empty terminator line.
// net/http does not keep field order, so names are sorted.
func responseHeaderLines(resp *http.Response) []string {
	proto := resp.Proto
	if proto == "" {
		proto = fmt.Sprintf("HTTP/%d.%d", resp.ProtoMajor, resp.ProtoMinor)
	}
	status := resp.Status
	if status == "" {
		status = fmt.Sprintf("%d %s", resp.StatusCode, http.StatusText(resp.StatusCode))
	}
	return headerBlock(proto+" "+status, resp.Header)
}

func informationalHeaderLines(code int, header textproto.MIMEHeader) []string {
	return headerBlock(fmt.Sprintf("HTTP/1.1 %d %s", code, http.StatusText(code)), header)
}

func headerBlock(statusLine string, header map[string][]string) []string {
	names := make([]string, 0, len(header))
	for name := range header {
		names = append(names, name)
	}
	sort.Strings(names)

	lines := make([]string, 0, len(header)+2)
	lines = append(lines, statusLine+"\r\n")
	for _, name := range names {
		for _, value := range header[name] {
			lines = append(lines, name+": "+value+"\r\n")
		}
	}
	return append(lines, "\r\n")
}

// Header names net/http writes itself. They must use the canonical key or the
// transport sends its own value alongside the caller's.
var managedHeaders = map[string]bool{
	"Host":              true,
	"User-Agent":        true,
	"Content-Length":    true,
	"Transfer-Encoding": true,
	"Trailer":           true,
}

// applyHeaderLines attaches raw "Name: value" lines to req without merging
// or changing the case of names.
//
//	"Name: value"  sends the header
//	"Name:"        suppresses a header the transport would add by itself
//	"Name;"        sends the header with an empty value
func applyHeaderLines(req *http.Request, lines []string) {
	suppressUserAgent := false

	for _, line := range lines {
		line = strings.TrimRight(line, "\r\n")
		name, value, empty := splitHeaderLine(line)
		if name == "" {
			continue
		}

		canonical := textproto.CanonicalMIMEHeaderKey(name)
		if managedHeaders[canonical] {
			name = canonical
		}

		if value == "" && !empty {
			if canonical == "User-Agent" {
				suppressUserAgent = true
			}
			continue
		}

		if canonical == "Host" {
			req.Host = value
			continue
		}
		req.Header[name] = append(req.Header[name], value)
	}

	if suppressUserAgent && len(req.Header["User-Agent"]) == 0 {
		req.Header["User-Agent"] = []string{""}
	}
}

// splitHeaderLine returns the name and value of a raw header line. empty is
// true for the "Name;" form.
func splitHeaderLine(line string) (name, value string, empty bool) {
	if i := strings.IndexByte(line, ':'); i >= 0 {
		return strings.TrimSpace(line[:i]), strings.TrimSpace(line[i+1:]), false
	}
	if strings.HasSuffix(line, ";") {
		return strings.TrimSpace(strings.TrimSuffix(line, ";")), "", true
	}
	return strings.TrimSpace(line), "", true
}
