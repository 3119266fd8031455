package client

import (
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// optionsFor points Options at a test server.
func optionsFor(t *testing.T, server *httptest.Server) Options {
	t.Helper()
	u, err := url.Parse(server.URL)
	require.NoError(t, err)
	host, portStr, err := net.SplitHostPort(u.Host)
	require.NoError(t, err)
	port, err := strconv.Atoi(portStr)
	require.NoError(t, err)
	return Options{Protocol: u.Scheme, Host: host, Port: port}
}

func TestNewRequest_Defaults(t *testing.T) {
	r := NewRequest(Options{})
	assert.Equal(t, "GET", r.opts.Method)
	assert.Equal(t, "http://127.0.0.1:80/", r.URL())
	assert.True(t, *r.opts.RejectUnauthorized)

	r = NewRequest(Options{Protocol: "https", Method: "post", Host: "example.com", Path: "/x"})
	assert.Equal(t, "POST", r.opts.Method)
	assert.Equal(t, "https://example.com:443/x", r.URL())
}

func TestRequest_HeadersIgnoreCase(t *testing.T) {
	r := NewRequest(Options{Headers: map[string]string{"Content-Type": "text/plain"}})
	assert.Equal(t, "text/plain", r.GetHeader("content-type"))

	r.SetHeader("CONTENT-TYPE", "application/json").SetHeader("X-B", "2").SetHeader("x-a", "1")
	assert.Equal(t, "application/json", r.GetHeader("Content-Type"))
	assert.Equal(t, []string{"content-type: application/json", "x-a: 1", "x-b: 2"}, r.HeaderLines())

	r.RemoveHeader("Content-Type")
	assert.Empty(t, r.GetHeader("content-type"))
	assert.Len(t, r.HeaderLines(), 2)
}

func TestRequest_Descriptor(t *testing.T) {
	reject := false
	r := NewRequest(Options{PFX: "/tmp/id.p12", Passphrase: "pw", RejectUnauthorized: &reject, Body: []byte("a")})
	_, _ = r.Write([]byte("b"))
	r.SetTimeout(2 * time.Second).SetConnectTimeout(time.Second)

	d, err := r.Descriptor()
	require.NoError(t, err)
	assert.Equal(t, []byte("ab"), d.Body)
	assert.Equal(t, 2*time.Second, d.Timeout)
	assert.Equal(t, time.Second, d.ConnectTimeout)
	assert.False(t, d.TLS.VerifyPeer)
	assert.Equal(t, "/tmp/id.p12", d.TLS.ClientCert)
	assert.True(t, d.TLS.ClientCertPKCS12)
	assert.Equal(t, "pw", d.TLS.ClientKeyPassphrase)

	r = NewRequest(Options{Cert: "/tmp/c.pem", PFX: "/tmp/id.p12"})
	d, err = r.Descriptor()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/c.pem", d.TLS.ClientCert, "cert wins over pfx")
	assert.False(t, d.TLS.ClientCertPKCS12)
	assert.Nil(t, d.Body)
}

func TestRequest_End(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("X-Method", r.Method)
		w.Header().Set("X-Token", r.Header.Get("X-Token"))
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"echo":"` + string(body) + `"}`))
	}))
	defer server.Close()

	opts := optionsFor(t, server)
	opts.Method = "put"
	opts.Path = "/items"
	req := NewRequest(opts).SetHeader("x-token", "abc")
	_, err := req.Write([]byte("hello "))
	require.NoError(t, err)

	resp, err := req.End([]byte("world"))
	require.NoError(t, err)

	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.True(t, resp.IsSuccess())
	assert.Equal(t, "PUT", resp.GetHeader("x-method"))
	assert.Equal(t, "abc", resp.Headers.Get("X-Token"))
	assert.Equal(t, "HTTP/1.1 201 Created\r\n", resp.RawHeaders[0])

	var payload map[string]string
	require.NoError(t, resp.JSON(&payload))
	assert.Equal(t, "hello world", payload["echo"])
	assert.GreaterOrEqual(t, resp.GetResponseTimeMillis(), int64(0))
}

func TestRequest_EndErrorStatusIsNotAnError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer server.Close()

	resp, err := Do(optionsFor(t, server))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.True(t, resp.IsClientError())
	assert.False(t, resp.IsServerError())
	assert.Equal(t, "gone\n", resp.BodyString())
}

func TestRequest_EndFollowsRedirects(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/old", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Hop", "first")
		http.Redirect(w, r, "/new", http.StatusFound)
	})
	mux.HandleFunc("/new", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("moved"))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	opts := optionsFor(t, server)
	opts.Path = "/old"
	resp, err := Do(opts)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "moved", resp.BodyString())
	assert.Empty(t, resp.GetHeader("X-Hop"), "only the final hop's fields remain")
	assert.Contains(t, resp.RawHeaders, "HTTP/1.1 302 Found\r\n")
}

func TestRequest_EndTimeouts(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-time.After(5 * time.Second):
		}
	}))
	defer server.Close()
	defer close(release)

	_, err := NewRequest(optionsFor(t, server)).SetTimeout(100 * time.Millisecond).End(nil)
	assert.ErrorIs(t, err, ErrTimeout)

	_, err = NewRequest(optionsFor(t, server)).
		SetTimeout(100 * time.Millisecond).
		SetConnectTimeout(time.Second).
		End(nil)
	assert.ErrorIs(t, err, ErrConnectTimeout)
}

func TestRequest_EndTransportError(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := listener.Addr().(*net.TCPAddr).Port
	require.NoError(t, listener.Close())

	_, err = Do(Options{Port: port})
	var transportErr *TransportError
	require.True(t, errors.As(err, &transportErr), "got %v", err)
	assert.NotEmpty(t, transportErr.Message)
}

func TestRequest_RejectUnauthorized(t *testing.T) {
	server := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("secure"))
	}))
	defer server.Close()

	_, err := Do(optionsFor(t, server))
	var transportErr *TransportError
	assert.True(t, errors.As(err, &transportErr), "self-signed certificate is rejected by default")

	reject := false
	opts := optionsFor(t, server)
	opts.RejectUnauthorized = &reject
	resp, err := Do(opts)
	require.NoError(t, err)
	assert.Equal(t, "secure", resp.BodyString())
}

func TestParseHeaders(t *testing.T) {
	tests := []struct {
		name    string
		lines   []string
		status  int
		headers Header
	}{
		{
			name:    "no status line",
			lines:   []string{"X-A: 1\r\n"},
			status:  200,
			headers: Header{"X-A": "1"},
		},
		{
			name: "redirect chain keeps last block",
			lines: []string{
				"HTTP/1.1 301 Moved Permanently\r\n", "Location: /b\r\n", "\r\n",
				"HTTP/1.1 204 No Content\r\n", "X-Final:   yes\r\n", "\r\n",
			},
			status:  204,
			headers: Header{"X-Final": "yes"},
		},
		{
			name:    "http2 status line",
			lines:   []string{"HTTP/2 418\r\n", "Empty:\r\n"},
			status:  418,
			headers: Header{"Empty": ""},
		},
		{
			name:    "value with colons",
			lines:   []string{"HTTP/1.0 200 OK\r\n", "Link: <http://x>; rel=a\r\n", "junk line\r\n"},
			status:  200,
			headers: Header{"Link": "<http://x>; rel=a"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, headers := ParseHeaders(tt.lines)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.headers, headers)
		})
	}
}

func TestResponse_StatusClasses(t *testing.T) {
	cases := map[int][4]bool{
		200: {true, false, false, false},
		302: {false, true, false, false},
		404: {false, false, true, false},
		503: {false, false, false, true},
	}
	for code, want := range cases {
		r := &Response{StatusCode: code}
		assert.Equal(t, want, [4]bool{r.IsSuccess(), r.IsRedirect(), r.IsClientError(), r.IsServerError()}, "status %d", code)
	}
}
