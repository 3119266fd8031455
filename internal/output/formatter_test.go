package output

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/wesleyorama2/syncreq/internal/executor"
	"github.com/wesleyorama2/syncreq/internal/request"
	"github.com/wesleyorama2/syncreq/internal/stats"
)

func successExchange() Exchange {
	return Exchange{
		Request: &request.Descriptor{
			Method:  "POST",
			URL:     "http://localhost/users",
			Headers: []string{"Content-Type: application/json"},
			Body:    []byte(`{"name":"Ada"}`),
		},
		Result: executor.Result{
			Kind:       executor.Success,
			BodyLength: 20,
			Headers: []string{
				"HTTP/1.1 301 Moved Permanently\r\n", "Location: /users/1\r\n", "\r\n",
				"HTTP/1.1 201 Created\r\n", "Content-Type: application/json\r\n", "\r\n",
			},
		},
		Body:      []byte(`{"id":1,"name":"Ada"}`),
		Elapsed:   42 * time.Millisecond,
		Extracted: map[string]string{"id": "1"},
	}
}

func TestParseFormat(t *testing.T) {
	for name, want := range map[string]OutputFormat{"": FormatText, "TEXT": FormatText, "json": FormatJSON, "yaml": FormatYAML} {
		got, err := ParseFormat(name)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseFormat("xml")
	assert.Error(t, err)
}

func TestGetFormatter(t *testing.T) {
	assert.IsType(t, &Formatter{}, GetFormatter(FormatText, false, true))
	assert.IsType(t, &JSONFormatter{}, GetFormatter(FormatJSON, false, true))
	assert.IsType(t, &YAMLFormatter{}, GetFormatter(FormatYAML, false, true))
}

func TestFormatter_Success(t *testing.T) {
	out := NewFormatter(false, true).FormatResult(successExchange())

	assert.Contains(t, out, "▶ REQUEST: POST http://localhost/users\n")
	assert.Contains(t, out, "◀ RESPONSE: HTTP/1.1 201 Created (42ms, 20 bytes)\n")
	assert.Contains(t, out, `"name": "Ada"`)
	assert.Contains(t, out, "id = 1")
	assert.NotContains(t, out, "Headers:")
}

func TestFormatter_VerboseShowsHeaders(t *testing.T) {
	out := NewFormatter(true, true).FormatResult(successExchange())

	assert.Contains(t, out, "    Content-Type: application/json\n")
	assert.Contains(t, out, "    HTTP/1.1 301 Moved Permanently\n")
	assert.Contains(t, out, "  Body: 14 bytes\n")

	f := NewFormatter(false, true)
	f.Include = true
	assert.Contains(t, f.FormatResult(successExchange()), "    Location: /users/1\n")
}

func TestFormatter_Failures(t *testing.T) {
	f := NewFormatter(false, true)

	out := f.FormatResult(Exchange{Result: executor.Result{Kind: executor.TimedOut}, Elapsed: time.Second})
	assert.Equal(t, "✗ TIMED OUT after 1000ms\n", out)

	out = f.FormatResult(Exchange{Result: executor.Result{Kind: executor.Failed, Message: "connection refused"}})
	assert.Equal(t, "✗ FAILED: connection refused\n", out)
}

func TestFormatter_BinaryBody(t *testing.T) {
	x := successExchange()
	x.Body = []byte{0xff, 0x00, 0xfe}
	out := NewFormatter(false, true).FormatResult(x)
	assert.Contains(t, out, "<3 bytes of binary data>")
}

func TestFormatter_Summary(t *testing.T) {
	r := stats.NewRecorder()
	r.Record(10*time.Millisecond, executor.Result{Kind: executor.Success, BodyLength: 5})
	r.Record(20*time.Millisecond, executor.Result{Kind: executor.TimedOut})

	out := NewFormatter(false, true).FormatSummary(nil, r.Summary())
	assert.True(t, strings.HasPrefix(out, "✗ SUMMARY: 2 requests, 1 succeeded, 1 timed out, 0 failed (50.0% success)\n"), out)
	assert.Contains(t, out, "Latency: min 10ms")
	assert.Contains(t, out, "5 bytes received")

	out = NewFormatter(false, true).FormatSummary(nil, stats.Summary{})
	assert.Equal(t, "✓ SUMMARY: 0 requests, 0 succeeded, 0 timed out, 0 failed (0.0% success)\n", out)
}

func TestJSONFormatter(t *testing.T) {
	f := &JSONFormatter{Verbose: true, Pretty: true}

	var data map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(f.FormatResult(successExchange())), &data))
	assert.Equal(t, "success", data["outcome"])
	assert.Equal(t, float64(201), data["statusCode"])
	assert.Equal(t, "HTTP/1.1 201 Created", data["status"])
	assert.Equal(t, map[string]interface{}{"id": float64(1), "name": "Ada"}, data["body"])
	assert.Contains(t, data["headers"], "Location: /users/1")
	assert.Equal(t, float64(42), data["elapsedMs"])

	require.NoError(t, json.Unmarshal([]byte(f.FormatResult(Exchange{
		Result: executor.Result{Kind: executor.Failed, Message: "boom"},
	})), &data))
	assert.Equal(t, "failed", data["outcome"])
	assert.Equal(t, "boom", data["message"])
}

func TestYAMLFormatter(t *testing.T) {
	f := &YAMLFormatter{}

	var data map[string]interface{}
	require.NoError(t, yaml.Unmarshal([]byte(f.FormatResult(successExchange())), &data))
	assert.Equal(t, "success", data["outcome"])
	assert.Equal(t, 201, data["statusCode"])
	assert.Nil(t, data["headers"], "headers are only included when verbose")

	r := stats.NewRecorder()
	r.Record(time.Millisecond, executor.Result{Kind: executor.Success})
	require.NoError(t, yaml.Unmarshal([]byte(f.FormatSummary(&request.Descriptor{Method: "GET", URL: "http://x"}, r.Summary())), &data))
	assert.Equal(t, 1, data["total"])
	assert.InDelta(t, 1.0, data["successRate"], 1e-9)
}

func TestColorScheme_Status(t *testing.T) {
	s := DefaultColorScheme()
	assert.Same(t, s.StatusOK, s.Status(executor.Success, 204))
	assert.Same(t, s.StatusWarn, s.Status(executor.Success, 302))
	assert.Same(t, s.StatusError, s.Status(executor.Success, 500))
	assert.Same(t, s.StatusError, s.Status(executor.TimedOut, 0))
}

func TestUseColor(t *testing.T) {
	assert.False(t, UseColor(true, nil))
	assert.False(t, UseColor(false, nil))
}
