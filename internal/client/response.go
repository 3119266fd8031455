package client

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// Header maps header names, as sent by the server, to their last value.
type Header map[string]string

// Get returns the value for name, ignoring case.
func (h Header) Get(name string) string {
	if v, ok := h[name]; ok {
		return v
	}
	for key, v := range h {
		if strings.EqualFold(key, name) {
			return v
		}
	}
	return ""
}

// Response represents an HTTP response
type Response struct {
	StatusCode   int
	Headers      Header
	RawHeaders   []string
	Body         []byte
	ResponseTime time.Duration
}

// BodyString returns the response body as a string
func (r *Response) BodyString() string {
	return string(r.Body)
}

// JSON unmarshals the response body into the provided interface
func (r *Response) JSON(v interface{}) error {
	return json.Unmarshal(r.Body, v)
}

// GetHeader returns the value of the specified header
func (r *Response) GetHeader(key string) string {
	return r.Headers.Get(key)
}

// IsSuccess returns true if the response status code is in the 2xx range
func (r *Response) IsSuccess() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// IsRedirect returns true if the response status code is in the 3xx range
func (r *Response) IsRedirect() bool {
	return r.StatusCode >= 300 && r.StatusCode < 400
}

// IsClientError returns true if the response status code is in the 4xx range
func (r *Response) IsClientError() bool {
	return r.StatusCode >= 400 && r.StatusCode < 500
}

// IsServerError returns true if the response status code is in the 5xx range
func (r *Response) IsServerError() bool {
	return r.StatusCode >= 500 && r.StatusCode < 600
}

// GetResponseTimeMillis returns the response time in milliseconds
func (r *Response) GetResponseTimeMillis() int64 {
	return r.ResponseTime.Milliseconds()
}

// ParseHeaders reads raw header lines into a status code and a header map.
//
// The status comes from the last status line, defaulting to 200 when there
// is none. Each status line starts a fresh header map, so after a redirect
// chain only the final response's fields remain.
func ParseHeaders(lines []string) (int, Header) {
	status := 200
	headers := make(Header)

	for _, line := range lines {
		line = strings.TrimRight(line, "\r\n")
		if code, ok := statusCode(line); ok {
			status = code
			headers = make(Header)
			continue
		}

		i := strings.IndexByte(line, ':')
		if i <= 0 {
			continue
		}
		headers[line[:i]] = strings.TrimLeft(line[i+1:], " \t")
	}
	return status, headers
}

// statusCode recognises "HTTP/x.y NNN ..." and "HTTP/2 NNN".
func statusCode(line string) (int, bool) {
	if !strings.HasPrefix(line, "HTTP/") {
		return 0, false
	}
	fields := strings.Fields(line)
	if len(fields) < 2 || len(fields[1]) != 3 {
		return 0, false
	}
	code, err := strconv.Atoi(fields[1])
	if err != nil {
		return 0, false
	}
	return code, true
}
