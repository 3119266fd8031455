package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/wesleyorama2/syncreq/internal/executor"
	"github.com/wesleyorama2/syncreq/internal/request"
	"github.com/wesleyorama2/syncreq/internal/stats"
)

// Formatter renders exchanges as human-readable text
type Formatter struct {
	Verbose bool
	NoColor bool
	// Include prints response header lines even when not verbose.
	Include bool

	colors *ColorScheme
}

// NewFormatter creates a new formatter with the given options
func NewFormatter(verbose, noColor bool) *Formatter {
	colors := DefaultColorScheme()
	if noColor {
		colors = NoColorScheme()
	}
	return &Formatter{
		Verbose: verbose,
		NoColor: noColor,
		colors:  colors,
	}
}

// FormatResult formats an exchange for display
func (f *Formatter) FormatResult(x Exchange) string {
	var buf strings.Builder

	if x.Request != nil {
		f.writeRequest(&buf, x)
	}

	switch x.Result.Kind {
	case executor.TimedOut:
		fmt.Fprintf(&buf, "%s %s after %dms\n",
			ErrorIcon(f.NoColor), f.colors.StatusError.Sprint("TIMED OUT"), x.Elapsed.Milliseconds())
		return buf.String()
	case executor.Failed:
		fmt.Fprintf(&buf, "%s %s: %s\n",
			ErrorIcon(f.NoColor), f.colors.StatusError.Sprint("FAILED"), x.Result.Message)
		return buf.String()
	}

	code, status := statusOf(x.Result.Headers)
	if status == "" {
		status = "(no status line)"
	}
	fmt.Fprintf(&buf, "◀ RESPONSE: %s (%dms, %d bytes)\n",
		f.colors.Status(x.Result.Kind, code).Sprint(status), x.Elapsed.Milliseconds(), x.Result.BodyLength)

	if f.Verbose || f.Include {
		buf.WriteString("  Headers:\n")
		for _, line := range trimLines(x.Result.Headers) {
			f.writeHeaderLine(&buf, line)
		}
	}

	if len(x.Body) > 0 {
		buf.WriteString("  Body:\n")
		buf.WriteString(formatBody(x.Body))
		buf.WriteString("\n")
	}

	if len(x.Extracted) > 0 {
		buf.WriteString("  Extracted:\n")
		names := make([]string, 0, len(x.Extracted))
		for name := range x.Extracted {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprintf(&buf, "    %s = %s\n", f.colors.Highlight.Sprint(name), x.Extracted[name])
		}
	}

	return buf.String()
}

func (f *Formatter) writeRequest(buf *strings.Builder, x Exchange) {
	label := "REQUEST"
	if x.Name != "" {
		label = "REQUEST " + x.Name
	}
	fmt.Fprintf(buf, "▶ %s: %s %s\n", label,
		f.colors.Method.Sprint(x.Request.Method), f.colors.URL.Sprint(x.Request.URL))

	if f.Verbose {
		if len(x.Request.Headers) > 0 {
			buf.WriteString("  Headers:\n")
			for _, line := range x.Request.Headers {
				f.writeHeaderLine(buf, line)
			}
		}
		if len(x.Request.Body) > 0 {
			fmt.Fprintf(buf, "  Body: %d bytes\n", len(x.Request.Body))
		}
	}
}

func (f *Formatter) writeHeaderLine(buf *strings.Builder, line string) {
	i := strings.IndexAny(line, ":;")
	if i <= 0 || strings.HasPrefix(line, "HTTP/") {
		fmt.Fprintf(buf, "    %s\n", line)
		return
	}
	fmt.Fprintf(buf, "    %s%s\n", f.colors.HeaderKey.Sprint(line[:i+1]), f.colors.HeaderValue.Sprint(line[i+1:]))
}

// FormatSummary formats the outcome of a repeat run
func (f *Formatter) FormatSummary(d *request.Descriptor, s stats.Summary) string {
	var buf strings.Builder

	icon := SuccessIcon(f.NoColor)
	if s.Success < s.Total {
		icon = ErrorIcon(f.NoColor)
	}
	fmt.Fprintf(&buf, "%s SUMMARY: %d requests, %s, %s, %s (%.1f%% success)\n",
		icon, s.Total,
		f.colors.Success.Sprintf("%d succeeded", s.Success),
		f.colors.StatusWarn.Sprintf("%d timed out", s.TimedOut),
		f.colors.Error.Sprintf("%d failed", s.Failed),
		s.SuccessRate()*100)
	if s.Total == 0 {
		return buf.String()
	}

	fmt.Fprintf(&buf, "  Latency: min %s  p50 %s  p90 %s  p95 %s  p99 %s  max %s\n",
		s.Min, s.P50, s.P90, s.P95, s.P99, s.Max)
	fmt.Fprintf(&buf, "  Mean:    %s (stddev %s)\n", s.Mean, s.StdDev)
	fmt.Fprintf(&buf, "  Throughput: %.2f req/s over %s, %d bytes received\n",
		s.Throughput(), s.Elapsed, s.Bytes)
	return buf.String()
}

// formatBody pretty-prints JSON and describes binary content.
func formatBody(body []byte) string {
	if !utf8.Valid(body) {
		return fmt.Sprintf("  <%d bytes of binary data>", len(body))
	}
	var pretty bytes.Buffer
	if err := json.Indent(&pretty, body, "  ", "  "); err != nil {
		return "  " + string(body)
	}
	return "  " + pretty.String()
}
