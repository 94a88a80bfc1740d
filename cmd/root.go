package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	createbaseline "github.com/a4blue/sarb/cmd/create-baseline"
	"github.com/a4blue/sarb/cmd/list"
	removebaseline "github.com/a4blue/sarb/cmd/remove-baseline"
	"github.com/a4blue/sarb/cmd/version"
	"github.com/a4blue/sarb/internal/baseline"
	cmdutil "github.com/a4blue/sarb/internal/cmd"
	"github.com/a4blue/sarb/internal/formatters"
	"github.com/a4blue/sarb/internal/git"
	"github.com/a4blue/sarb/internal/parsers"
	"github.com/a4blue/sarb/internal/pruner"
	"github.com/a4blue/sarb/pkg/shared/config"
	sarbErrors "github.com/a4blue/sarb/pkg/shared/errors"
	"github.com/a4blue/sarb/pkg/shared/logger"
)

type rootOptions struct {
	cfgFile  string
	logLevel string
}

// NewRootCmd builds the sarb command tree. Configuration is loaded once the
// flags are parsed and shared with the sub-commands through env.
func NewRootCmd(env *cmdutil.Env) *cobra.Command {
	opts := &rootOptions{}
	rootCmd := &cobra.Command{
		Use:                   "sarb [command]",
		SilenceUsage:          true,
		SilenceErrors:         true,
		DisableFlagsInUseLine: true,
		Short:                 "sarb hides static analysis findings that predate a baseline.",
		Long: `sarb records the results of a static analysis tool as a baseline and later
reports only the findings introduced since then. Baseline findings are tracked
through git history, so code that moved or files that were renamed do not
resurface as new issues.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initEnv(cmd, env, opts)
		},
	}
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.PersistentFlags().StringVar(&opts.cfgFile, "config", "", "config file (default is $SARB_CONFIG or "+config.DefaultConfigFile+")")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level: TRACE, DEBUG, INFO, WARN or ERROR")

	rootCmd.AddCommand(
		createbaseline.New(env),
		removebaseline.New(env),
		list.New(env),
		version.NewVersionCmd(),
	)
	return rootCmd
}

// initEnv loads the configuration and wires the services the commands use.
// Fields already set on env are kept.
func initEnv(cmd *cobra.Command, env *cmdutil.Env, opts *rootOptions) error {
	if env.Config == nil {
		cfg, err := config.LoadConfig(opts.cfgFile)
		if err != nil {
			return sarbErrors.NewCommandError(fmt.Errorf("failed to load config: %w", err), sarbErrors.ExitInvalidOption)
		}
		if opts.logLevel != "" {
			cfg.Logger.Level = opts.logLevel
		}
		if err := config.ValidateConfig(cfg); err != nil {
			return sarbErrors.NewCommandError(err, sarbErrors.ExitInvalidOption)
		}
		env.Config = cfg
	}
	if env.Logger == nil {
		env.Logger = logger.NewLoggerWithOutput(env.Config, "sarb", cmd.ErrOrStderr())
	}
	if env.Parsers == nil {
		env.Parsers = parsers.Default(env.Logger)
	}
	if env.Formatters == nil {
		env.Formatters = formatters.Default(version.CoreVersion)
	}
	if env.Service == nil {
		cfg, log := env.Config, env.Logger
		factory := func(projectRoot string) (pruner.HistoryAnalyser, error) {
			return git.NewAnalyser(log, cfg, projectRoot)
		}
		env.Service = pruner.NewService(log, baseline.NewStore(log), env.Parsers, factory, version.CoreVersion)
	}
	return nil
}

// Execute runs the command line and returns the process exit code.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	rootCmd := NewRootCmd(&cmdutil.Env{})
	rootCmd.SetArgs(args)
	rootCmd.SetIn(stdin)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	err := rootCmd.ExecuteContext(ctx)
	code := sarbErrors.ExitCode(err)
	if err != nil && code != sarbErrors.ExitNewIssues {
		var cmdErr *sarbErrors.CommandError
		if !errors.As(err, &cmdErr) {
			// flag parsing and unknown commands
			code = sarbErrors.ExitInvalidOption
		}
		fmt.Fprintf(stderr, "Error: %v\n", err)
	}
	return code
}
