package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/wesleyorama2/syncreq/internal/config"
	"github.com/wesleyorama2/syncreq/internal/output"
)

func newValidateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate FILE",
		Short: "Check a request file without sending anything",
		Args:  cobra.ExactArgs(1),
		RunE:  validateFile,
	}

	cmd.Flags().StringArray("var", []string{}, "Set a variable NAME=VALUE, overriding the file (can be used multiple times)")
	cmd.Flags().Bool("no-color", false, "Disable colored output")

	return cmd
}

func validateFile(cmd *cobra.Command, args []string) error {
	path := args[0]
	out := cmd.OutOrStdout()
	noColor, _ := cmd.Flags().GetBool("no-color")
	noColor = !output.UseColor(noColor, fileOf(out))

	varFlags, _ := cmd.Flags().GetStringArray("var")
	vars, err := parseAssignments("var", varFlags)
	if err != nil {
		return err
	}

	f, err := config.LoadFile(path)
	if err != nil {
		return reportInvalid(out, path, err, noColor)
	}

	reqs, err := f.Requests(vars)
	if err != nil {
		return reportInvalid(out, path, err, noColor)
	}

	fmt.Fprintf(out, "%s %s: %d requests valid\n", output.SuccessIcon(noColor), path, len(reqs))
	for _, name := range f.Names() {
		fmt.Fprintf(out, "  %s: %s %s\n", name, reqs[name].Method, reqs[name].URL)
	}
	return nil
}

func reportInvalid(out io.Writer, path string, err error, noColor bool) error {
	var problems config.ValidationErrors
	if !errors.As(err, &problems) {
		return err
	}

	fmt.Fprintf(out, "%s %s: %d problems\n", output.ErrorIcon(noColor), path, len(problems))
	for _, p := range problems {
		fmt.Fprintf(out, "  %s\n", p.Error())
	}
	return fmt.Errorf("%s is not a valid request file", path)
}
