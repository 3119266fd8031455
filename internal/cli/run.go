package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wesleyorama2/syncreq/internal/executor"
	"github.com/wesleyorama2/syncreq/internal/log"
	"github.com/wesleyorama2/syncreq/internal/output"
	"github.com/wesleyorama2/syncreq/internal/pace"
	"github.com/wesleyorama2/syncreq/internal/request"
	"github.com/wesleyorama2/syncreq/internal/stats"
	"github.com/wesleyorama2/syncreq/pkg/jsonpath"
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run URL",
		Short: "Execute a single request and print the outcome",
		Example: `  syncreq run https://example.com/
  syncreq run -X POST -H "Content-Type: application/json" -d '{"a":1}' http://localhost:8080/items
  syncreq run --verify --cacert ca.pem --cert client.p12 --cert-type P12 --pass secret https://internal/
  syncreq run --repeat 50 -m 2s http://localhost:8080/health`,
		Args: cobra.ExactArgs(1),
		RunE: runRequest,
	}

	cmd.Flags().StringP("request", "X", "GET", "Request method, sent verbatim")
	cmd.Flags().StringArrayP("header", "H", []string{}, `Raw header line (can be used multiple times). "Name:" removes a default header, "Name;" sends it empty`)
	cmd.Flags().StringP("data", "d", "", "Request body")
	cmd.Flags().String("data-file", "", "Read the request body from a file")
	cmd.Flags().Duration("connect-timeout", 0, "Connect timeout (default 1h)")
	cmd.Flags().DurationP("max-time", "m", 0, "Total timeout (default 1h)")
	cmd.Flags().Bool("verify", false, "Verify the server certificate")
	cmd.Flags().String("cacert", "", "CA bundle used to verify the server")
	cmd.Flags().String("cert", "", "Client certificate file")
	cmd.Flags().String("cert-type", "PEM", "Client certificate type (PEM or P12)")
	cmd.Flags().String("key", "", "Client private key file")
	cmd.Flags().String("pass", "", "Passphrase for the private key or PKCS#12 bundle")
	cmd.Flags().StringP("output", "o", "", "Write the response body to a file instead of printing it")
	cmd.Flags().StringArray("extract", []string{}, "Extract NAME=JSONPATH from a JSON response body (can be used multiple times)")
	cmd.Flags().Int("repeat", 1, "Execute the request N times in sequence and print a latency summary")
	cmd.Flags().Float64("rate", 0, "Start at most this many repeated requests per second (0 means back to back)")
	addOutputFlags(cmd)

	return cmd
}

func runRequest(cmd *cobra.Command, args []string) error {
	d, err := descriptorFromFlags(cmd, args[0])
	if err != nil {
		return err
	}

	formatter, err := formatterFromFlags(cmd)
	if err != nil {
		return err
	}

	extractFlags, _ := cmd.Flags().GetStringArray("extract")
	extracts, err := parseAssignments("extract", extractFlags)
	if err != nil {
		return err
	}

	repeat, _ := cmd.Flags().GetInt("repeat")
	if repeat < 1 {
		return fmt.Errorf("--repeat must be at least 1")
	}

	e := executor.New()
	if repeat > 1 {
		return repeatRequest(cmd, e, d, formatter, repeat)
	}

	x, err := execute(e, "", d)
	if err != nil {
		return err
	}

	var extractErr error
	if len(extracts) > 0 && x.Result.Kind == executor.Success {
		x.Extracted, extractErr = jsonpath.ExtractAll(x.Body, extracts)
	}

	outputPath, _ := cmd.Flags().GetString("output")
	if outputPath != "" && x.Result.Kind == executor.Success {
		if err := os.WriteFile(outputPath, x.Body, 0644); err != nil {
			return fmt.Errorf("error writing response body: %w", err)
		}
		log.Info("response body written", "path", outputPath, "bytes", len(x.Body))
		x.Body = nil
	}

	fmt.Fprint(cmd.OutOrStdout(), formatter.FormatResult(x))

	if err := outcomeError(x.Result); err != nil {
		return err
	}
	return extractErr
}

// repeatRequest executes d n times on one executor and prints a summary.
// Individual outcomes are printed only when verbose.
func repeatRequest(cmd *cobra.Command, e *executor.Executor, d *request.Descriptor, formatter output.FormatProvider, n int) error {
	verbose, _ := cmd.Flags().GetBool("verbose")
	rate, _ := cmd.Flags().GetFloat64("rate")
	pacer := pace.New(rate)
	rec := stats.NewRecorder()

	for i := 0; i < n; i++ {
		if err := pacer.Wait(cmd.Context()); err != nil {
			return err
		}
		x, err := execute(e, fmt.Sprintf("#%d", i+1), d)
		if err != nil {
			return err
		}
		rec.Record(x.Elapsed, x.Result)
		if verbose {
			x.Body = nil
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatResult(x))
		}
	}

	s := rec.Summary()
	fmt.Fprint(cmd.OutOrStdout(), formatter.FormatSummary(d, s))

	switch {
	case s.Failed > 0:
		return &OutcomeError{Code: ExitFailed, Err: fmt.Errorf("%d of %d requests failed", s.Failed, s.Total)}
	case s.TimedOut > 0:
		return &OutcomeError{Code: ExitTimedOut, Err: fmt.Errorf("%d of %d requests timed out", s.TimedOut, s.Total)}
	}
	return nil
}

// descriptorFromFlags builds and validates the descriptor for url.
func descriptorFromFlags(cmd *cobra.Command, url string) (*request.Descriptor, error) {
	flags := cmd.Flags()
	method, _ := flags.GetString("request")
	headers, _ := flags.GetStringArray("header")
	data, _ := flags.GetString("data")
	dataFile, _ := flags.GetString("data-file")
	connectTimeout, _ := flags.GetDuration("connect-timeout")
	maxTime, _ := flags.GetDuration("max-time")
	verify, _ := flags.GetBool("verify")
	caCert, _ := flags.GetString("cacert")
	cert, _ := flags.GetString("cert")
	certType, _ := flags.GetString("cert-type")
	key, _ := flags.GetString("key")
	pass, _ := flags.GetString("pass")

	d := &request.Descriptor{
		Method:         method,
		URL:            url,
		Headers:        headers,
		ConnectTimeout: connectTimeout,
		Timeout:        maxTime,
		TLS: request.TLSOptions{
			VerifyPeer:          verify,
			CABundle:            caCert,
			ClientCert:          cert,
			ClientKey:           key,
			ClientKeyPassphrase: pass,
		},
	}

	switch strings.ToUpper(certType) {
	case "PEM":
	case "P12", "PKCS12":
		d.TLS.ClientCertPKCS12 = true
	default:
		return nil, fmt.Errorf("invalid --cert-type %q: expected PEM or P12", certType)
	}

	switch {
	case data != "" && dataFile != "":
		return nil, fmt.Errorf("--data and --data-file cannot be used together")
	case dataFile != "":
		body, err := os.ReadFile(dataFile)
		if err != nil {
			return nil, fmt.Errorf("error reading request body: %w", err)
		}
		d.Body = body
	case data != "":
		d.Body = []byte(data)
	}

	if err := d.Validate(); err != nil {
		return nil, err
	}
	return d, nil
}
