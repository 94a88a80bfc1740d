package pruner

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/hashicorp/go-hclog"

	"github.com/a4blue/sarb/internal/baseline"
	"github.com/a4blue/sarb/internal/history"
	"github.com/a4blue/sarb/internal/parsers"
)

// ErrUncommittedChanges is returned when a baseline would be anchored to HEAD
// while tracked files differ from it.
var ErrUncommittedChanges = errors.New("working tree has uncommitted changes")

// HistoryAnalyser is a history provider that also knows the state of the
// repository it reads.
type HistoryAnalyser interface {
	history.Provider
	Head() (history.Revision, error)
	Resolve(rev history.Revision) (history.Revision, error)
	IsAncestor(ancestor, descendant history.Revision) (bool, error)
	HasUncommittedChanges() (bool, error)
	Checkout() history.Checkout
}

// HistoryFactory opens the history of the project rooted at projectRoot.
type HistoryFactory func(projectRoot string) (HistoryAnalyser, error)

// Service ties the baseline store, the parsers and the history backend
// together for the CLI commands.
type Service struct {
	logger      hclog.Logger
	store       *baseline.Store
	parsers     *parsers.Registry
	history     HistoryFactory
	toolVersion string
}

func NewService(logger hclog.Logger, store *baseline.Store, parserRegistry *parsers.Registry, factory HistoryFactory, toolVersion string) *Service {
	return &Service{
		logger:      logger,
		store:       store,
		parsers:     parserRegistry,
		history:     factory,
		toolVersion: toolVersion,
	}
}

// CreateRequest describes a create-baseline run.
type CreateRequest struct {
	BaselineFile string
	InputFormat  string
	Input        io.Reader
	ProjectRoot  string
	// Force allows anchoring to HEAD despite uncommitted changes.
	Force bool
}

// CreateBaseline parses the analysis results and stores them anchored to HEAD.
func (s *Service) CreateBaseline(ctx context.Context, req CreateRequest) (baseline.Snapshot, error) {
	parser, err := s.parsers.Get(req.InputFormat)
	if err != nil {
		return baseline.Snapshot{}, err
	}

	analyser, err := s.history(req.ProjectRoot)
	if err != nil {
		return baseline.Snapshot{}, history.Unavailable(err)
	}
	head, err := analyser.Head()
	if err != nil {
		return baseline.Snapshot{}, history.Unavailable(err)
	}
	dirty, err := analyser.HasUncommittedChanges()
	if err != nil {
		return baseline.Snapshot{}, history.Unavailable(err)
	}
	if dirty {
		if !req.Force {
			return baseline.Snapshot{}, fmt.Errorf("%w: commit or stash them before creating a baseline, or use --force", ErrUncommittedChanges)
		}
		s.logger.Warn("creating baseline with uncommitted changes; findings in modified files may not be tracked correctly")
	}

	if err := ctx.Err(); err != nil {
		return baseline.Snapshot{}, err
	}
	res, err := parser.Parse(req.Input, req.ProjectRoot)
	if err != nil {
		return baseline.Snapshot{}, err
	}

	snap := baseline.New(head, res, parser.Identifier(), baseline.WithToolVersion(s.toolVersion))
	if err := s.store.Save(req.BaselineFile, snap); err != nil {
		return baseline.Snapshot{}, err
	}
	return snap, nil
}

// RemoveRequest describes a remove-baseline run.
type RemoveRequest struct {
	BaselineFile string
	Input        io.Reader
	ProjectRoot  string
	// CurrentRevision is the revision the analysis ran against. Empty means
	// the working tree.
	CurrentRevision history.Revision
	Options         Options
}

// RemoveBaseline loads the baseline, parses the latest results with the
// parser the baseline was created with and prunes them.
func (s *Service) RemoveBaseline(ctx context.Context, req RemoveRequest) (*PrunedResults, error) {
	snap, err := s.store.Load(req.BaselineFile)
	if err != nil {
		return nil, err
	}
	parser, err := s.parsers.Get(snap.ParserID())
	if err != nil {
		return nil, fmt.Errorf("%w: baseline was created by unknown parser: %w", baseline.ErrInvalidBaseline, err)
	}

	analyser, err := s.history(req.ProjectRoot)
	if err != nil {
		return nil, history.Unavailable(err)
	}

	current := req.CurrentRevision
	if current == "" {
		current = history.Worktree
	}
	current, err = analyser.Resolve(current)
	if err != nil {
		return nil, history.Unavailable(err)
	}
	if ok, err := analyser.IsAncestor(snap.Revision(), current); err == nil && !ok {
		s.logger.Warn("baseline revision is not an ancestor of the current revision, comparing the two trees directly",
			"baseline", snap.Revision(), "current", current)
	}

	res, err := parser.Parse(req.Input, req.ProjectRoot)
	if err != nil {
		return nil, err
	}

	opts := req.Options
	if opts.Logger == nil {
		opts.Logger = s.logger
	}
	pruned, err := Prune(ctx, snap, res, analyser, current, opts)
	if err != nil {
		return nil, err
	}

	checkout := analyser.Checkout()
	if current != history.Worktree {
		checkout.Commit = string(current)
	}
	return pruned.WithCheckout(checkout), nil
}
