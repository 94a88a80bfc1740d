package cmd

import (
	"context"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/pflag"

	"github.com/a4blue/sarb/internal/baseline"
	"github.com/a4blue/sarb/internal/formatters"
	"github.com/a4blue/sarb/internal/parsers"
	"github.com/a4blue/sarb/internal/pruner"
	"github.com/a4blue/sarb/pkg/shared/config"
)

// BaselineService is the part of pruner.Service the commands use.
type BaselineService interface {
	CreateBaseline(ctx context.Context, req pruner.CreateRequest) (baseline.Snapshot, error)
	RemoveBaseline(ctx context.Context, req pruner.RemoveRequest) (*pruner.PrunedResults, error)
}

var _ BaselineService = (*pruner.Service)(nil)

// Env carries what commands need at run time. The root command fills it in
// after flags are parsed and before any sub-command runs.
type Env struct {
	Config     *config.Config
	Logger     hclog.Logger
	Parsers    *parsers.Registry
	Formatters *formatters.Registry
	Service    BaselineService
}

// HasFlags reports whether any flag was set on the command line.
func HasFlags(flags *pflag.FlagSet) bool {
	set := false
	flags.Visit(func(*pflag.Flag) { set = true })
	return set
}
