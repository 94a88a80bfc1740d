package createbaseline

import (
	"fmt"

	"github.com/spf13/cobra"

	cmdutil "github.com/a4blue/sarb/internal/cmd"
	"github.com/a4blue/sarb/internal/pruner"
	sarbErrors "github.com/a4blue/sarb/pkg/shared/errors"
)

// DefaultInputFormat is used when --input-format is not given.
const DefaultInputFormat = "sarif"

// RunOptions holds the arguments of a create-baseline run.
type RunOptions struct {
	BaselineFile string
	InputFormat  string
	ProjectRoot  string
	Input        string
	Force        bool
}

var exampleCreateBaselineUsage = `  # Record the current SARIF results as the baseline
  semgrep --sarif . | sarb create-baseline baseline.json

  # Read results from a file using the sarb-json format
  sarb create-baseline baseline.json --input-format sarb-json --input results.json

  # The analysed project lives in a subfolder of the repository
  sarb create-baseline baseline.json --input results.sarif --project-root services/api`

// New creates the create-baseline command. env is read when the command runs.
func New(env *cmdutil.Env) *cobra.Command {
	opts := &RunOptions{}
	cmd := &cobra.Command{
		Use:                   "create-baseline BASELINE_FILE [--input-format FORMAT] [--project-root DIR] [--input FILE] [--force]",
		SilenceUsage:          true,
		DisableFlagsInUseLine: true,
		Example:               exampleCreateBaselineUsage,
		Short:                 "Record analysis results as the baseline for later runs",
		Long: `Parses static analysis results and stores them, anchored to the HEAD commit,
in BASELINE_FILE. The working tree must be clean unless --force is given.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 && !cmdutil.HasFlags(cmd.Flags()) {
				return cmd.Help()
			}
			return run(cmd, env, opts, args)
		},
	}

	cmd.Flags().StringVarP(&opts.InputFormat, "input-format", "t", DefaultInputFormat, "format of the analysis results")
	cmd.Flags().StringVar(&opts.ProjectRoot, "project-root", "", "root of the analysed project (default: current directory)")
	cmd.Flags().StringVarP(&opts.Input, "input", "i", cmdutil.StdinInput, "analysis results file, '-' for stdin")
	cmd.Flags().BoolVar(&opts.Force, "force", false, "create the baseline even if tracked files have uncommitted changes")
	return cmd
}

func run(cmd *cobra.Command, env *cmdutil.Env, opts *RunOptions, args []string) error {
	logger := env.Logger.Named("create-baseline")

	if err := validateCreateBaselineArgs(opts, args); err != nil {
		logger.Error("invalid create-baseline arguments", "error", err)
		return sarbErrors.NewCommandError(err, sarbErrors.ExitInvalidOption)
	}
	if _, err := env.Parsers.Get(opts.InputFormat); err != nil {
		logger.Error("invalid input format", "error", err)
		return cmdutil.ToCommandError(err)
	}

	projectRoot, err := cmdutil.ResolveProjectRoot(opts.ProjectRoot)
	if err != nil {
		logger.Error("invalid project root", "error", err)
		return sarbErrors.NewCommandError(fmt.Errorf("invalid project root: %w", err), sarbErrors.ExitInvalidOption)
	}

	input, err := cmdutil.OpenInput(opts.Input, cmd.InOrStdin())
	if err != nil {
		logger.Error("failed to open analysis results", "error", err)
		return cmdutil.ToCommandError(err)
	}
	defer input.Close()

	snap, err := env.Service.CreateBaseline(cmd.Context(), pruner.CreateRequest{
		BaselineFile: opts.BaselineFile,
		InputFormat:  opts.InputFormat,
		Input:        input,
		ProjectRoot:  projectRoot,
		Force:        opts.Force,
	})
	if err != nil {
		logger.Error("failed to create baseline", "error", err)
		return cmdutil.ToCommandError(err)
	}

	fmt.Fprintf(cmd.ErrOrStderr(), "Baseline created with %d issue(s) at revision %s\n", snap.Len(), snap.Revision())
	return nil
}
