package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wesleyorama2/syncreq/internal/config"
	"github.com/wesleyorama2/syncreq/internal/executor"
	"github.com/wesleyorama2/syncreq/internal/log"
	"github.com/wesleyorama2/syncreq/internal/request"
)

func newExecCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "exec FILE [NAME...]",
		Short: "Execute named requests from a request file",
		Long: `Execute requests defined in a YAML or JSON request file, one after the
other. Without names every request in the file runs, in name order.`,
		Example: `  syncreq exec requests.yaml
  syncreq exec requests.yaml login profile --var host=staging.example.com`,
		Args: cobra.MinimumNArgs(1),
		RunE: execRequests,
	}

	cmd.Flags().StringArray("var", []string{}, "Set a variable NAME=VALUE, overriding the file (can be used multiple times)")
	addOutputFlags(cmd)

	return cmd
}

func execRequests(cmd *cobra.Command, args []string) error {
	f, err := config.LoadFile(args[0])
	if err != nil {
		return err
	}

	varFlags, _ := cmd.Flags().GetStringArray("var")
	vars, err := parseAssignments("var", varFlags)
	if err != nil {
		return err
	}

	formatter, err := formatterFromFlags(cmd)
	if err != nil {
		return err
	}

	names := args[1:]
	if len(names) == 0 {
		names = f.Names()
	}

	// Build everything first so a bad entry stops the run before any
	// request goes out.
	descriptors := make(map[string]*request.Descriptor, len(names))
	for _, name := range names {
		d, err := f.Request(name, vars)
		if err != nil {
			return err
		}
		descriptors[name] = d
	}

	e := executor.New()
	var result error
	for _, name := range names {
		x, err := execute(e, name, descriptors[name])
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), formatter.FormatResult(x))

		if err := outcomeError(x.Result); err != nil {
			log.Warn("request did not complete", "name", name, "outcome", x.Result.Kind, "message", x.Result.Message)
			result = worse(result, fmt.Errorf("%s: %w", name, err))
		}
	}
	return result
}
