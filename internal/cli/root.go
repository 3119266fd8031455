package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/wesleyorama2/syncreq/internal/log"
)

var version = "0.1.0"

// Exit codes returned by ExitCode.
const (
	ExitOK       = 0
	ExitError    = 1
	ExitTimedOut = 2
	ExitFailed   = 3
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "syncreq",
		Short:   "Perform blocking HTTP requests and report raw headers and body",
		Version: version,
		Long: `syncreq performs one HTTP exchange at a time and waits for it to finish.
It prints the raw response header lines of every hop, including redirects
and informational responses, followed by the body.

Exit status is 0 when the exchange completed (any HTTP status), 1 on usage or
validation errors, 2 when a timeout elapsed and 3 on any other transport
failure.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level, _ := cmd.Flags().GetString("log-level")
			log.SetOutput(cmd.ErrOrStderr())
			return log.SetLevel(level)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.PersistentFlags().String("log-level", "warn", "Log level (trace, debug, info, warn, error)")

	cmd.AddCommand(newRunCmd())
	cmd.AddCommand(newExecCmd())
	cmd.AddCommand(newValidateCmd())
	return cmd
}

// Execute runs the root command and prints any error to stderr.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	err := RootCmd.Execute()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
	}
	return err
}

// OutcomeError reports an exchange that did not complete.
type OutcomeError struct {
	Code int
	Err  error
}

func (e *OutcomeError) Error() string {
	return e.Err.Error()
}

func (e *OutcomeError) Unwrap() error {
	return e.Err
}

// ExitCode maps an error returned by Execute to a process exit status.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	var outcome *OutcomeError
	if errors.As(err, &outcome) {
		return outcome.Code
	}
	return ExitError
}

// worse returns whichever error maps to the higher exit code.
func worse(a, b error) error {
	if ExitCode(b) > ExitCode(a) {
		return b
	}
	return a
}
