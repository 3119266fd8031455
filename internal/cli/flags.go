package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/wesleyorama2/syncreq/internal/executor"
	"github.com/wesleyorama2/syncreq/internal/log"
	"github.com/wesleyorama2/syncreq/internal/output"
	"github.com/wesleyorama2/syncreq/internal/request"
)

func addOutputFlags(cmd *cobra.Command) {
	cmd.Flags().String("format", "text", "Output format (text, json, yaml)")
	cmd.Flags().BoolP("verbose", "v", false, "Show request details and response headers")
	cmd.Flags().BoolP("include", "i", false, "Show response header lines")
	cmd.Flags().Bool("no-color", false, "Disable colored output")
}

// formatterFromFlags builds the formatter selected by the output flags.
// Color is used only when stdout is a terminal.
func formatterFromFlags(cmd *cobra.Command) (output.FormatProvider, error) {
	name, _ := cmd.Flags().GetString("format")
	verbose, _ := cmd.Flags().GetBool("verbose")
	include, _ := cmd.Flags().GetBool("include")
	noColor, _ := cmd.Flags().GetBool("no-color")

	format, err := output.ParseFormat(name)
	if err != nil {
		return nil, err
	}

	noColor = !output.UseColor(noColor, fileOf(cmd.OutOrStdout()))
	formatter := output.GetFormatter(format, verbose, noColor)
	if text, ok := formatter.(*output.Formatter); ok {
		text.Include = include
	}
	return formatter, nil
}

func fileOf(w io.Writer) *os.File {
	f, _ := w.(*os.File)
	return f
}

// parseAssignments splits repeated NAME=VALUE flag values.
func parseAssignments(flag string, values []string) (map[string]string, error) {
	out := make(map[string]string, len(values))
	for _, v := range values {
		name, value, ok := strings.Cut(v, "=")
		if !ok || strings.TrimSpace(name) == "" {
			return nil, fmt.Errorf("invalid --%s %q: expected NAME=VALUE", flag, v)
		}
		out[strings.TrimSpace(name)] = value
	}
	return out, nil
}

// execute runs d on e and collects the body of a successful exchange.
func execute(e *executor.Executor, name string, d *request.Descriptor) (output.Exchange, error) {
	start := time.Now()
	res, err := e.Execute(d)
	x := output.Exchange{Name: name, Request: d, Result: res, Elapsed: time.Since(start)}
	if err != nil {
		return x, err
	}

	log.Debug("request completed", "name", name, "method", d.Method, "url", d.URL,
		"outcome", res.Kind, "elapsed", x.Elapsed, "bytes", res.BodyLength)

	if res.Kind == executor.Success {
		buf := make([]byte, res.BodyLength)
		n, err := e.Drain(buf)
		if err != nil {
			return x, err
		}
		x.Body = buf[:n]
	}
	return x, nil
}

// outcomeError converts a timed-out or failed Result into an error carrying
// the matching exit code.
func outcomeError(res executor.Result) error {
	switch res.Kind {
	case executor.TimedOut:
		return &OutcomeError{Code: ExitTimedOut, Err: fmt.Errorf("request timed out")}
	case executor.Failed:
		return &OutcomeError{Code: ExitFailed, Err: fmt.Errorf("request failed: %s", res.Message)}
	}
	return nil
}
