package list

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	cmdutil "github.com/a4blue/sarb/internal/cmd"
	"github.com/a4blue/sarb/internal/formatters"
	"github.com/a4blue/sarb/internal/parsers"
	sarbErrors "github.com/a4blue/sarb/pkg/shared/errors"
)

// Kinds of registries the list command can show.
const (
	KindInputFormats  = "input-formats"
	KindOutputFormats = "output-formats"
)

// RunOptions holds the arguments of a list run.
type RunOptions struct {
	Kind string
	JSON bool
}

type listing struct {
	Option string   `json:"option"`
	Codes  []string `json:"codes"`
}

var exampleListUsage = `  # List every input and output format
  sarb list

  # List the output formats as JSON
  sarb list output-formats --json`

// New creates the list command.
func New(env *cmdutil.Env) *cobra.Command {
	opts := &RunOptions{}
	cmd := &cobra.Command{
		Use:                   "list [input-formats|output-formats] [--json]",
		SilenceUsage:          true,
		DisableFlagsInUseLine: true,
		Example:               exampleListUsage,
		Short:                 "List the supported input and output formats",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateListArgs(opts, args); err != nil {
				env.Logger.Error("invalid list arguments", "error", err)
				return sarbErrors.NewCommandError(fmt.Errorf("invalid list arguments: %w", err), sarbErrors.ExitInvalidOption)
			}

			var out []listing
			if opts.Kind == "" || opts.Kind == KindInputFormats {
				out = append(out, listing{Option: parsers.InputFormatOption, Codes: env.Parsers.Codes()})
			}
			if opts.Kind == "" || opts.Kind == KindOutputFormats {
				out = append(out, listing{Option: formatters.OutputFormatOption, Codes: env.Formatters.Codes()})
			}

			if err := printListing(cmd.OutOrStdout(), out, opts.JSON); err != nil {
				return sarbErrors.NewCommandError(fmt.Errorf("failed to print listing: %w", err), sarbErrors.ExitUnexpected)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&opts.JSON, "json", false, "print the listing as JSON")
	return cmd
}

func printListing(w io.Writer, out []listing, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}
	for _, l := range out {
		if _, err := fmt.Fprintf(w, "--%s:\n", l.Option); err != nil {
			return err
		}
		for _, code := range l.Codes {
			if _, err := fmt.Fprintf(w, "  %s\n", code); err != nil {
				return err
			}
		}
	}
	return nil
}
