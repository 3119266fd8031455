package request

import (
	"encoding/json"
	"fmt"
	"math"
	"time"
)

// DefaultTimeout is used for both the connect and the total timeout when the
// caller does not supply one. It only exists so that a request never inherits
// the transport's "wait forever" behaviour.
const DefaultTimeout = time.Hour

// Keys of the untyped input object accepted by FromMap.
const (
	KeyMethod             = "method"
	KeyURL                = "url"
	KeyHeaders            = "headers"
	KeyBody               = "body"
	KeyConnectTimeoutMs   = "connect_timeout_ms"
	KeyTimeoutMs          = "timeout_ms"
	KeyRejectUnauthorized = "rejectUnauthorized"
	KeyCA                 = "ca"
	KeyCert               = "cert"
	KeyPFX                = "pfx"
	KeyKey                = "key"
	KeyPassphrase         = "passphrase"
)

// Descriptor is a validated description of one HTTP call.
type Descriptor struct {
	Method         string
	URL            string
	Headers        []string
	Body           []byte
	ConnectTimeout time.Duration
	Timeout        time.Duration
	TLS            TLSOptions
}

// TLSOptions holds trust and identity material for a single call.
//
// VerifyPeer defaults to false: unless the caller opts in, neither the server
// certificate chain nor its hostname is checked. This is a deliberate and
// dangerous default kept for callers talking to internal or test endpoints.
type TLSOptions struct {
	VerifyPeer          bool
	CABundle            string
	ClientCert          string
	ClientCertPKCS12    bool
	ClientKey           string
	ClientKeyPassphrase string
}

// HasClientCert reports whether a client certificate was supplied.
func (o TLSOptions) HasClientCert() bool {
	return o.ClientCert != ""
}

// Validate checks the required fields and fills in default timeouts.
func (d *Descriptor) Validate() error {
	if d == nil {
		return &ValidationError{Field: "descriptor", Message: "descriptor cannot be nil"}
	}
	if d.Method == "" {
		return &ValidationError{Field: KeyMethod, Message: "method is required"}
	}
	if d.URL == "" {
		return &ValidationError{Field: KeyURL, Message: "url is required"}
	}
	if d.ConnectTimeout <= 0 {
		d.ConnectTimeout = DefaultTimeout
	}
	if d.Timeout <= 0 {
		d.Timeout = DefaultTimeout
	}
	return nil
}

// FromMap builds a Descriptor from an untyped object such as the result of
// decoding JSON or YAML. The keys method, url and headers must be present and
// method and url must be strings; every other key is optional.
func FromMap(input map[string]interface{}) (*Descriptor, error) {
	if input == nil {
		return nil, &ValidationError{Field: "descriptor", Message: "input cannot be nil"}
	}
	for _, key := range []string{KeyMethod, KeyURL, KeyHeaders} {
		if _, ok := input[key]; !ok {
			return nil, &ValidationError{Field: key, Message: "missing required field"}
		}
	}

	method, ok := input[KeyMethod].(string)
	if !ok {
		return nil, &ValidationError{Field: KeyMethod, Message: fmt.Sprintf("must be a string, got %T", input[KeyMethod])}
	}
	url, ok := input[KeyURL].(string)
	if !ok {
		return nil, &ValidationError{Field: KeyURL, Message: fmt.Sprintf("must be a string, got %T", input[KeyURL])}
	}

	d := &Descriptor{
		Method:         method,
		URL:            url,
		Headers:        headerLines(input[KeyHeaders]),
		Body:           bodyBytes(input[KeyBody]),
		ConnectTimeout: millis(input[KeyConnectTimeoutMs]),
		Timeout:        millis(input[KeyTimeoutMs]),
	}

	d.TLS.CABundle = stringValue(input[KeyCA])
	d.TLS.ClientKey = stringValue(input[KeyKey])
	d.TLS.ClientKeyPassphrase = stringValue(input[KeyPassphrase])
	if cert := stringValue(input[KeyCert]); cert != "" {
		d.TLS.ClientCert = cert
	} else if pfx := stringValue(input[KeyPFX]); pfx != "" {
		d.TLS.ClientCert = pfx
		d.TLS.ClientCertPKCS12 = true
	}
	if verify, ok := input[KeyRejectUnauthorized].(bool); ok {
		d.TLS.VerifyPeer = verify
	}

	if err := d.Validate(); err != nil {
		return nil, err
	}
	return d, nil
}

// headerLines accepts []string or []interface{}. Anything else, or a slice
// holding a non-string element, yields no headers at all.
func headerLines(v interface{}) []string {
	switch lines := v.(type) {
	case []string:
		out := make([]string, len(lines))
		copy(out, lines)
		return out
	case []interface{}:
		out := make([]string, 0, len(lines))
		for _, line := range lines {
			s, ok := line.(string)
			if !ok {
				return nil
			}
			out = append(out, s)
		}
		return out
	default:
		return nil
	}
}

func bodyBytes(v interface{}) []byte {
	switch body := v.(type) {
	case string:
		if body == "" {
			return nil
		}
		return []byte(body)
	case []byte:
		if len(body) == 0 {
			return nil
		}
		out := make([]byte, len(body))
		copy(out, body)
		return out
	default:
		return nil
	}
}

func stringValue(v interface{}) string {
	s, _ := v.(string)
	return s
}

// millis converts a numeric millisecond value. Non-numeric values map to zero,
// which Validate replaces with DefaultTimeout.
func millis(v interface{}) time.Duration {
	var ms int64
	switch n := v.(type) {
	case int:
		ms = int64(n)
	case int8:
		ms = int64(n)
	case int16:
		ms = int64(n)
	case int32:
		ms = int64(n)
	case int64:
		ms = n
	case uint:
		ms = clampUint(uint64(n))
	case uint8:
		ms = int64(n)
	case uint16:
		ms = int64(n)
	case uint32:
		ms = int64(n)
	case uint64:
		ms = clampUint(n)
	case float32:
		ms = clampFloat(float64(n))
	case float64:
		ms = clampFloat(n)
	case json.Number:
		if i, err := n.Int64(); err == nil {
			ms = i
		} else if f, err := n.Float64(); err == nil {
			ms = clampFloat(f)
		}
	default:
		return 0
	}
	if ms <= 0 {
		return 0
	}
	if ms > math.MaxInt64/int64(time.Millisecond) {
		return time.Duration(math.MaxInt64)
	}
	return time.Duration(ms) * time.Millisecond
}

func clampUint(n uint64) int64 {
	if n > math.MaxInt64 {
		return math.MaxInt64
	}
	return int64(n)
}

func clampFloat(f float64) int64 {
	if math.IsNaN(f) || f <= 0 {
		return 0
	}
	if f >= math.MaxInt64 {
		return math.MaxInt64
	}
	return int64(f)
}
