package removebaseline

import (
	"fmt"

	"github.com/spf13/cobra"

	cmdutil "github.com/a4blue/sarb/internal/cmd"
	"github.com/a4blue/sarb/internal/history"
	"github.com/a4blue/sarb/internal/pruner"
	"github.com/a4blue/sarb/pkg/shared/config"
	sarbErrors "github.com/a4blue/sarb/pkg/shared/errors"
)

// RunOptions holds the arguments of a remove-baseline run.
type RunOptions struct {
	BaselineFile    string
	OutputFormat    string
	ProjectRoot     string
	Input           string
	CurrentRevision string
	StrictMessage   bool
	CleanWorktree   bool
}

var exampleRemoveBaselineUsage = `  # Show only findings introduced since the baseline
  semgrep --sarif . | sarb remove-baseline baseline.json

  # Read results from a file and emit SARIF for code scanning upload
  sarb remove-baseline baseline.json --input results.sarif --output-format sarif > new.sarif

  # Compare against a committed revision rather than the working tree
  sarb remove-baseline baseline.json --input results.sarif --current-revision origin/main`

// New creates the remove-baseline command. env is read when the command runs.
func New(env *cmdutil.Env) *cobra.Command {
	opts := &RunOptions{}
	cmd := &cobra.Command{
		Use:                   "remove-baseline BASELINE_FILE [--output-format FORMAT] [--project-root DIR] [--input FILE] [--current-revision REV | --clean-worktree] [--strict-message]",
		SilenceUsage:          true,
		DisableFlagsInUseLine: true,
		Example:               exampleRemoveBaselineUsage,
		Short:                 "Report analysis results that are not in the baseline",
		Long: `Reads the latest analysis results, projects every baseline finding through the
git history onto the current revision and reports only the findings that remain.
Exits with code 1 when new issues are found.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 && !cmdutil.HasFlags(cmd.Flags()) {
				return cmd.Help()
			}
			return run(cmd, env, opts, args)
		},
	}

	cmd.Flags().StringVarP(&opts.OutputFormat, "output-format", "f", "", "output format (default from config, else table)")
	cmd.Flags().StringVar(&opts.ProjectRoot, "project-root", "", "root of the analysed project (default: current directory)")
	cmd.Flags().StringVarP(&opts.Input, "input", "i", cmdutil.StdinInput, "analysis results file, '-' for stdin")
	cmd.Flags().StringVar(&opts.CurrentRevision, "current-revision", "", "revision the analysis ran against (default: working tree)")
	cmd.Flags().BoolVar(&opts.StrictMessage, "strict-message", false, "require finding messages to match as well")
	cmd.Flags().BoolVar(&opts.CleanWorktree, "clean-worktree", false, "treat the working tree as identical to HEAD")
	return cmd
}

func run(cmd *cobra.Command, env *cmdutil.Env, opts *RunOptions, args []string) error {
	logger := env.Logger.Named("remove-baseline")

	if err := validateRemoveBaselineArgs(opts, args); err != nil {
		logger.Error("invalid remove-baseline arguments", "error", err)
		return sarbErrors.NewCommandError(err, sarbErrors.ExitInvalidOption)
	}
	if opts.OutputFormat == "" {
		opts.OutputFormat = config.DefaultFormat(env.Config)
	}
	formatter, err := env.Formatters.Get(opts.OutputFormat)
	if err != nil {
		logger.Error("invalid output format", "error", err)
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

	pruned, err := env.Service.RemoveBaseline(cmd.Context(), pruner.RemoveRequest{
		BaselineFile:    opts.BaselineFile,
		Input:           input,
		ProjectRoot:     projectRoot,
		CurrentRevision: currentRevision(opts),
		Options: pruner.Options{
			Workers:      config.Workers(env.Config),
			MatchMessage: opts.StrictMessage || config.GetBoolValue(env.Config, "Matching.IncludeMessage", false),
			Logger:       logger,
		},
	})
	if err != nil {
		logger.Error("failed to remove baseline", "error", err)
		return cmdutil.ToCommandError(err)
	}

	stderr := cmd.ErrOrStderr()
	fmt.Fprintf(stderr, "Latest analysis issue count: %d\n", pruned.TotalCount())
	fmt.Fprintf(stderr, "Baseline issue count: %d\n", pruned.BaselineCount())
	fmt.Fprintf(stderr, "Issue count with baseline removed: %d\n", pruned.ResidualCount())

	if err := formatter.Format(cmd.OutOrStdout(), pruned); err != nil {
		logger.Error("failed to write report", "format", formatter.Identifier(), "error", err)
		return sarbErrors.NewCommandError(fmt.Errorf("failed to write report: %w", err), sarbErrors.ExitUnexpected)
	}

	if pruned.HasNewIssues() {
		return sarbErrors.NewIssuesError(pruned.ResidualCount())
	}
	return nil
}

func currentRevision(opts *RunOptions) history.Revision {
	switch {
	case opts.CleanWorktree:
		return "HEAD"
	case opts.CurrentRevision != "":
		return history.Revision(opts.CurrentRevision)
	default:
		return history.Worktree
	}
}
