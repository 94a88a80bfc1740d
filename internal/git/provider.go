package git

import (
	"context"
	"fmt"
	"path"
	"strings"
	"sync"

	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/hashicorp/go-hclog"

	"github.com/a4blue/sarb/internal/history"
	"github.com/a4blue/sarb/internal/results"
	"github.com/a4blue/sarb/pkg/shared/config"
)

// Provider answers projection queries from git history. Finding paths are
// relative to the project root, which may be a subfolder of the repository.
type Provider struct {
	client        *Client
	logger        hclog.Logger
	metadata      *RepositoryMetadata
	subfolder     string
	maxChain      int
	detectRenames bool

	mu     sync.Mutex
	chains map[chainKey]history.Chain
}

type chainKey struct {
	from history.Revision
	to   history.Revision
}

var _ history.Provider = (*Provider)(nil)

// NewProvider binds a provider to client. projectRoot must lie inside the
// repository. The working tree status is read once here and reused by the
// rest of the run.
func NewProvider(client *Client, cfg *config.Config, projectRoot string) (*Provider, error) {
	md, err := projectMetadata(client.root, projectRoot)
	if err != nil {
		return nil, err
	}
	return &Provider{
		client:        client,
		logger:        client.logger.Named("history"),
		metadata:      md,
		subfolder:     md.Subfolder,
		maxChain:      config.MaxChainCommits(cfg),
		detectRenames: config.GetBoolValue(cfg, "History.DetectRenames", true),
		chains:        make(map[chainKey]history.Chain),
	}, nil
}

// ProjectLocation implements history.Provider.
func (p *Provider) ProjectLocation(ctx context.Context, loc results.Location, from, to history.Revision) (history.Outcome, error) {
	chain, err := p.chain(ctx, from, to)
	if err != nil {
		return history.Outcome{}, history.Unavailable(err)
	}

	repoLoc, err := results.NewLocation(path.Join(p.subfolder, loc.Path()), loc.Line())
	if err != nil {
		return history.Outcome{}, err
	}
	outcome, err := chain.Project(repoLoc)
	if err != nil {
		return history.Outcome{}, err
	}

	switch outcome.Kind {
	case history.Deleted:
		return outcome, nil
	case history.Unchanged:
		return history.UnchangedAt(loc), nil
	}

	rel, ok := p.toProjectPath(outcome.Location.Path())
	if !ok {
		p.logger.Debug("finding moved outside the project root", "from", loc, "to", outcome.Location)
		return history.Gone(), nil
	}
	moved, err := results.NewLocation(rel, outcome.Location.Line())
	if err != nil {
		return history.Outcome{}, err
	}
	if moved == loc {
		return history.UnchangedAt(loc), nil
	}
	return history.MovedTo(moved), nil
}

// chain returns the cached step list between two revisions, computing it on
// first use. The lock is held while computing so concurrent callers share the work.
func (p *Provider) chain(ctx context.Context, from, to history.Revision) (history.Chain, error) {
	key := chainKey{from: from, to: to}

	p.mu.Lock()
	defer p.mu.Unlock()

	if chain, ok := p.chains[key]; ok {
		return chain, nil
	}
	chain, err := p.buildChain(ctx, from, to)
	if err != nil {
		return nil, err
	}
	p.chains[key] = chain
	return chain, nil
}

func (p *Provider) buildChain(ctx context.Context, from, to history.Revision) (history.Chain, error) {
	if from == history.Worktree {
		return nil, fmt.Errorf("%w: a baseline cannot be anchored to the working tree", ErrRevisionNotFound)
	}

	fromCommit, err := p.client.resolveCommit(string(from))
	if err != nil {
		return nil, err
	}

	includeWorktree := to == history.Worktree
	target := string(to)
	if includeWorktree || target == "" {
		target = "HEAD"
	}
	toCommit, err := p.client.resolveCommit(target)
	if err != nil {
		return nil, err
	}

	commits := p.firstParentPath(fromCommit, toCommit)

	var chain history.Chain
	prev := fromCommit
	for _, commit := range commits {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		step, err := p.client.stepBetween(ctx, prev, commit, p.detectRenames)
		if err != nil {
			return nil, err
		}
		if len(step) > 0 {
			chain = append(chain, step)
		}
		prev = commit
	}

	if includeWorktree {
		step, err := p.client.worktreeStep(toCommit, p.metadata.status)
		if err != nil {
			return nil, err
		}
		if len(step) > 0 {
			chain = append(chain, step)
		}
	}

	p.logger.Debug("built history chain", "from", fromCommit.Hash.String(), "to", toCommit.Hash.String(),
		"commits", len(commits), "steps", len(chain), "worktree", includeWorktree)
	return chain, nil
}

// firstParentPath lists the commits after from up to and including to, oldest
// first, following first parents. When from is not on that path within
// maxChain commits the list collapses to a single direct step.
func (p *Provider) firstParentPath(from, to *object.Commit) []*object.Commit {
	if from.Hash == to.Hash {
		return nil
	}

	var reversed []*object.Commit
	current := to
	for i := 0; i < p.maxChain; i++ {
		reversed = append(reversed, current)
		if current.NumParents() == 0 {
			break
		}
		parent, err := current.Parent(0)
		if err != nil {
			p.logger.Debug("parent not available, using direct diff", "commit", current.Hash.String(), "error", err)
			break
		}
		if parent.Hash == from.Hash {
			out := make([]*object.Commit, len(reversed))
			for j, c := range reversed {
				out[len(reversed)-1-j] = c
			}
			return out
		}
		current = parent
	}

	p.logger.Debug("baseline commit not on first-parent path, using direct diff",
		"from", from.Hash.String(), "to", to.Hash.String(), "max_chain_commits", p.maxChain)
	return []*object.Commit{to}
}

// toProjectPath converts a repository relative path back into a project relative one.
func (p *Provider) toProjectPath(repoPath string) (string, bool) {
	if p.subfolder == "" {
		return repoPath, true
	}
	prefix := p.subfolder + "/"
	if !strings.HasPrefix(repoPath, prefix) {
		return "", false
	}
	return strings.TrimPrefix(repoPath, prefix), true
}

func projectMetadata(repoRoot, projectRoot string) (*RepositoryMetadata, error) {
	md, err := CollectRepositoryMetadata(projectRoot)
	if err != nil {
		return nil, err
	}
	if md.RepoRootFolder != repoRoot {
		return nil, fmt.Errorf("%w: %q is not inside repository %q", ErrOutsideProject, projectRoot, repoRoot)
	}
	return md, nil
}

// NewAnalyser opens the repository containing projectRoot and returns a
// provider bound to it.
func NewAnalyser(logger hclog.Logger, cfg *config.Config, projectRoot string) (*Provider, error) {
	client, err := New(logger, cfg, projectRoot)
	if err != nil {
		return nil, err
	}
	return NewProvider(client, cfg, projectRoot)
}

// Head returns the commit HEAD points at.
func (p *Provider) Head() (history.Revision, error) {
	hash, err := p.client.Head()
	if err != nil {
		return "", err
	}
	return history.Revision(hash), nil
}

// Resolve expands rev to a full commit hash. WORKTREE is returned unchanged.
func (p *Provider) Resolve(rev history.Revision) (history.Revision, error) {
	if rev == history.Worktree {
		return rev, nil
	}
	hash, err := p.client.ResolveRevision(string(rev))
	if err != nil {
		return "", err
	}
	return history.Revision(hash), nil
}

// HasUncommittedChanges reports whether tracked files differed from HEAD when
// the provider was opened.
func (p *Provider) HasUncommittedChanges() (bool, error) {
	return p.metadata.Dirty, nil
}

// Checkout describes the repository the project lives in.
func (p *Provider) Checkout() history.Checkout {
	return p.metadata.Checkout()
}

// IsAncestor reports whether ancestor is reachable from descendant. WORKTREE
// stands for HEAD.
func (p *Provider) IsAncestor(ancestor, descendant history.Revision) (bool, error) {
	if descendant == history.Worktree {
		descendant = "HEAD"
	}
	return p.client.IsAncestor(string(ancestor), string(descendant))
}
