package output

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"gopkg.in/yaml.v3"

	"github.com/wesleyorama2/syncreq/internal/client"
	"github.com/wesleyorama2/syncreq/internal/executor"
	"github.com/wesleyorama2/syncreq/internal/request"
	"github.com/wesleyorama2/syncreq/internal/stats"
)

// OutputFormat represents the available output formats
type OutputFormat string

const (
	// FormatText is the default human-readable text format
	FormatText OutputFormat = "text"
	// FormatJSON outputs in JSON format
	FormatJSON OutputFormat = "json"
	// FormatYAML outputs in YAML format
	FormatYAML OutputFormat = "yaml"
)

// ParseFormat validates a format name given on the command line.
func ParseFormat(name string) (OutputFormat, error) {
	switch f := OutputFormat(strings.ToLower(name)); f {
	case FormatText, FormatJSON, FormatYAML:
		return f, nil
	case "":
		return FormatText, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want text, json or yaml)", name)
	}
}

// Exchange is one executed request together with what came back.
type Exchange struct {
	Name      string
	Request   *request.Descriptor
	Result    executor.Result
	Body      []byte
	Elapsed   time.Duration
	Extracted map[string]string
}

// FormatProvider is an interface for different output formatters
type FormatProvider interface {
	FormatResult(x Exchange) string
	FormatSummary(d *request.Descriptor, s stats.Summary) string
}

// GetFormatter returns the formatter for the specified format
func GetFormatter(format OutputFormat, verbose, noColor bool) FormatProvider {
	switch format {
	case FormatJSON:
		return &JSONFormatter{Verbose: verbose, Pretty: true}
	case FormatYAML:
		return &YAMLFormatter{Verbose: verbose}
	default:
		return NewFormatter(verbose, noColor)
	}
}

// RequestData represents the structured data of a request
type RequestData struct {
	Method   string   `json:"method" yaml:"method"`
	URL      string   `json:"url" yaml:"url"`
	Headers  []string `json:"headers,omitempty" yaml:"headers,omitempty"`
	BodySize int      `json:"bodySize,omitempty" yaml:"bodySize,omitempty"`
}

// ResultData represents the structured data of an outcome
type ResultData struct {
	Name       string            `json:"name,omitempty" yaml:"name,omitempty"`
	Request    RequestData       `json:"request" yaml:"request"`
	Outcome    string            `json:"outcome" yaml:"outcome"`
	StatusCode int               `json:"statusCode,omitempty" yaml:"statusCode,omitempty"`
	Status     string            `json:"status,omitempty" yaml:"status,omitempty"`
	Headers    []string          `json:"headers,omitempty" yaml:"headers,omitempty"`
	Body       interface{}       `json:"body,omitempty" yaml:"body,omitempty"`
	BodyLength int               `json:"bodyLength" yaml:"bodyLength"`
	Message    string            `json:"message,omitempty" yaml:"message,omitempty"`
	ElapsedMs  int64             `json:"elapsedMs" yaml:"elapsedMs"`
	Extracted  map[string]string `json:"extracted,omitempty" yaml:"extracted,omitempty"`
	Timestamp  string            `json:"timestamp" yaml:"timestamp"`
}

// SummaryData represents the structured data of a repeat run
type SummaryData struct {
	Request     RequestData `json:"request" yaml:"request"`
	Total       int64       `json:"total" yaml:"total"`
	Success     int64       `json:"success" yaml:"success"`
	TimedOut    int64       `json:"timedOut" yaml:"timedOut"`
	Failed      int64       `json:"failed" yaml:"failed"`
	SuccessRate float64     `json:"successRate" yaml:"successRate"`
	Throughput  float64     `json:"throughputPerSec" yaml:"throughputPerSec"`
	Bytes       int64       `json:"bytes" yaml:"bytes"`
	Latency     LatencyData `json:"latencyMs" yaml:"latencyMs"`
}

// LatencyData holds latency figures in fractional milliseconds
type LatencyData struct {
	Min    float64 `json:"min" yaml:"min"`
	Mean   float64 `json:"mean" yaml:"mean"`
	StdDev float64 `json:"stdDev" yaml:"stdDev"`
	P50    float64 `json:"p50" yaml:"p50"`
	P90    float64 `json:"p90" yaml:"p90"`
	P95    float64 `json:"p95" yaml:"p95"`
	P99    float64 `json:"p99" yaml:"p99"`
	Max    float64 `json:"max" yaml:"max"`
}

func requestData(d *request.Descriptor, verbose bool) RequestData {
	if d == nil {
		return RequestData{}
	}
	data := RequestData{Method: d.Method, URL: d.URL, BodySize: len(d.Body)}
	if verbose {
		data.Headers = d.Headers
	}
	return data
}

func resultData(x Exchange, verbose bool) ResultData {
	data := ResultData{
		Name:       x.Name,
		Request:    requestData(x.Request, verbose),
		Outcome:    x.Result.Kind.String(),
		BodyLength: x.Result.BodyLength,
		Message:    x.Result.Message,
		ElapsedMs:  x.Elapsed.Milliseconds(),
		Extracted:  x.Extracted,
		Timestamp:  time.Now().Format(time.RFC3339),
	}
	if x.Result.Kind == executor.Success {
		data.StatusCode, data.Status = statusOf(x.Result.Headers)
		if verbose {
			data.Headers = trimLines(x.Result.Headers)
		}
		data.Body = structuredBody(x.Body)
	}
	return data
}

func summaryData(d *request.Descriptor, s stats.Summary) SummaryData {
	return SummaryData{
		Request:     requestData(d, false),
		Total:       s.Total,
		Success:     s.Success,
		TimedOut:    s.TimedOut,
		Failed:      s.Failed,
		SuccessRate: s.SuccessRate(),
		Throughput:  s.Throughput(),
		Bytes:       s.Bytes,
		Latency: LatencyData{
			Min:    millis(s.Min),
			Mean:   millis(s.Mean),
			StdDev: millis(s.StdDev),
			P50:    millis(s.P50),
			P90:    millis(s.P90),
			P95:    millis(s.P95),
			P99:    millis(s.P99),
			Max:    millis(s.Max),
		},
	}
}

// statusOf returns the final status code and status line.
func statusOf(lines []string) (int, string) {
	code, _ := client.ParseHeaders(lines)
	status := ""
	for _, line := range lines {
		if strings.HasPrefix(line, "HTTP/") {
			status = strings.TrimRight(line, "\r\n")
		}
	}
	if status == "" {
		return 0, ""
	}
	return code, status
}

// trimLines drops line terminators and the blank separator lines.
func trimLines(lines []string) []string {
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if line = strings.TrimRight(line, "\r\n"); line != "" {
			out = append(out, line)
		}
	}
	return out
}

// structuredBody decodes JSON bodies so they nest in the document; other
// text is kept as a string and binary content is only described.
func structuredBody(body []byte) interface{} {
	if len(body) == 0 {
		return nil
	}
	var v interface{}
	if json.Valid(body) && json.Unmarshal(body, &v) == nil {
		return v
	}
	if utf8.Valid(body) {
		return string(body)
	}
	return fmt.Sprintf("<%d bytes of binary data>", len(body))
}

func millis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

// JSONFormatter formats output as JSON
type JSONFormatter struct {
	Verbose bool
	Pretty  bool
}

// FormatResult formats an exchange as JSON
func (f *JSONFormatter) FormatResult(x Exchange) string {
	return f.marshal(resultData(x, f.Verbose))
}

// FormatSummary formats a repeat summary as JSON
func (f *JSONFormatter) FormatSummary(d *request.Descriptor, s stats.Summary) string {
	return f.marshal(summaryData(d, s))
}

func (f *JSONFormatter) marshal(v interface{}) string {
	var out []byte
	var err error
	if f.Pretty {
		out, err = json.MarshalIndent(v, "", "  ")
	} else {
		out, err = json.Marshal(v)
	}
	if err != nil {
		return fmt.Sprintf(`{"error": %q}`, err.Error())
	}
	return string(out) + "\n"
}

// YAMLFormatter formats output as YAML
type YAMLFormatter struct {
	Verbose bool
}

// FormatResult formats an exchange as a YAML document
func (f *YAMLFormatter) FormatResult(x Exchange) string {
	return f.marshal(resultData(x, f.Verbose))
}

// FormatSummary formats a repeat summary as a YAML document
func (f *YAMLFormatter) FormatSummary(d *request.Descriptor, s stats.Summary) string {
	return f.marshal(summaryData(d, s))
}

func (f *YAMLFormatter) marshal(v interface{}) string {
	out, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Sprintf("error: %q\n", err.Error())
	}
	return "---\n" + string(out)
}
