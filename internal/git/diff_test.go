package git

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	gitconfig "github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/a4blue/sarb/internal/history"
	"github.com/a4blue/sarb/internal/results"
	"github.com/a4blue/sarb/pkg/shared/config"
)

type historyRepo struct {
	dir    string
	repo   *git.Repository
	wt     *git.Worktree
	hashes []plumbing.Hash
}

// setupHistoryRepo initialises a repository with three commits:
//
//	base:   a.txt (5 lines), keep.txt, gone.txt, stable.txt
//	second: two lines inserted at the top of a.txt, keep.txt renamed, gone.txt deleted
//	third:  the original third line of a.txt rewritten
func setupHistoryRepo(t *testing.T) *historyRepo {
	t.Helper()

	dir := t.TempDir()
	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)
	wt, err := repo.Worktree()
	require.NoError(t, err)

	hr := &historyRepo{dir: dir, repo: repo, wt: wt}

	hr.hashes = append(hr.hashes, commitFiles(t, wt, map[string]string{
		"a.txt":      "one\ntwo\nthree\nfour\nfive\n",
		"keep.txt":   "alpha\nbeta\ngamma\n",
		"gone.txt":   "bye\n",
		"stable.txt": "still\nhere\n",
	}, nil, "base commit"))

	hr.hashes = append(hr.hashes, commitFiles(t, wt, map[string]string{
		"a.txt":          "zero\nzero2\none\ntwo\nthree\nfour\nfive\n",
		"moved/keep.txt": "alpha\nbeta\ngamma\n",
	}, []string{"keep.txt", "gone.txt"}, "second commit"))

	hr.hashes = append(hr.hashes, commitFiles(t, wt, map[string]string{
		"a.txt": "zero\nzero2\none\ntwo\nTHREE\nfour\nfive\n",
	}, nil, "third commit"))

	return hr
}

func (hr *historyRepo) rev(i int) history.Revision {
	return history.Revision(hr.hashes[i].String())
}

func newTestGitClient(t *testing.T, dir string) *Client {
	t.Helper()
	repo, err := git.PlainOpen(dir)
	require.NoError(t, err)
	return &Client{
		logger:  hclog.NewNullLogger(),
		repo:    repo,
		root:    dir,
		timeout: time.Minute,
	}
}

func newTestProvider(t *testing.T, dir, projectRoot string, cfg *config.Config) *Provider {
	t.Helper()
	if cfg == nil {
		cfg = &config.Config{}
	}
	p, err := NewProvider(newTestGitClient(t, dir), cfg, projectRoot)
	require.NoError(t, err)
	return p
}

func TestProviderProjectsAcrossCommits(t *testing.T) {
	hr := setupHistoryRepo(t)
	p := newTestProvider(t, hr.dir, hr.dir, nil)
	ctx := context.Background()

	tests := []struct {
		name     string
		loc      results.Location
		wantKind history.Kind
		wantLoc  results.Location
	}{
		{name: "shifted by insertion", loc: results.MustLocation("a.txt", 1), wantKind: history.Moved, wantLoc: results.MustLocation("a.txt", 3)},
		{name: "rewritten line", loc: results.MustLocation("a.txt", 3), wantKind: history.Deleted},
		{name: "shifted last line", loc: results.MustLocation("a.txt", 5), wantKind: history.Moved, wantLoc: results.MustLocation("a.txt", 7)},
		{name: "renamed file", loc: results.MustLocation("keep.txt", 2), wantKind: history.Moved, wantLoc: results.MustLocation("moved/keep.txt", 2)},
		{name: "deleted file", loc: results.MustLocation("gone.txt", 1), wantKind: history.Deleted},
		{name: "untouched file", loc: results.MustLocation("stable.txt", 2), wantKind: history.Unchanged, wantLoc: results.MustLocation("stable.txt", 2)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			outcome, err := p.ProjectLocation(ctx, tt.loc, hr.rev(0), hr.rev(2))
			require.NoError(t, err)
			assert.Equal(t, tt.wantKind, outcome.Kind)
			if tt.wantKind != history.Deleted {
				assert.Equal(t, tt.wantLoc, outcome.Location)
			}
		})
	}
}

func TestProviderDirectDiffMatchesChain(t *testing.T) {
	hr := setupHistoryRepo(t)
	ctx := context.Background()

	chained := newTestProvider(t, hr.dir, hr.dir, nil)
	direct := newTestProvider(t, hr.dir, hr.dir, &config.Config{History: config.History{MaxChainCommits: 1}})

	for _, loc := range []results.Location{
		results.MustLocation("a.txt", 1),
		results.MustLocation("a.txt", 3),
		results.MustLocation("a.txt", 5),
		results.MustLocation("keep.txt", 3),
	} {
		want, err := chained.ProjectLocation(ctx, loc, hr.rev(0), hr.rev(2))
		require.NoError(t, err)
		got, err := direct.ProjectLocation(ctx, loc, hr.rev(0), hr.rev(2))
		require.NoError(t, err)
		assert.Equal(t, want, got, "location %s", loc)
	}
}

func TestProviderSameRevision(t *testing.T) {
	hr := setupHistoryRepo(t)
	p := newTestProvider(t, hr.dir, hr.dir, nil)

	loc := results.MustLocation("a.txt", 3)
	outcome, err := p.ProjectLocation(context.Background(), loc, hr.rev(2), "HEAD")
	require.NoError(t, err)
	assert.Equal(t, history.UnchangedAt(loc), outcome)
}

func TestProviderWorktree(t *testing.T) {
	hr := setupHistoryRepo(t)
	require.NoError(t, os.WriteFile(filepath.Join(hr.dir, "a.txt"), []byte("new\nzero\nzero2\none\ntwo\nTHREE\nfour\nfive\n"), 0o644))
	require.NoError(t, os.Remove(filepath.Join(hr.dir, "stable.txt")))

	p := newTestProvider(t, hr.dir, hr.dir, nil)
	ctx := context.Background()

	outcome, err := p.ProjectLocation(ctx, results.MustLocation("a.txt", 1), hr.rev(0), history.Worktree)
	require.NoError(t, err)
	assert.Equal(t, history.MovedTo(results.MustLocation("a.txt", 4)), outcome)

	outcome, err = p.ProjectLocation(ctx, results.MustLocation("stable.txt", 1), hr.rev(0), history.Worktree)
	require.NoError(t, err)
	assert.Equal(t, history.Deleted, outcome.Kind)

	outcome, err = p.ProjectLocation(ctx, results.MustLocation("a.txt", 1), hr.rev(0), hr.rev(2))
	require.NoError(t, err)
	assert.Equal(t, history.MovedTo(results.MustLocation("a.txt", 3)), outcome, "committed projection must ignore the worktree")
}

func TestProviderSubfolderProject(t *testing.T) {
	dir := t.TempDir()
	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)
	wt, err := repo.Worktree()
	require.NoError(t, err)

	base := commitFiles(t, wt, map[string]string{
		"app/src.txt":  "a\nb\n",
		"app/move.txt": "x\ny\n",
	}, nil, "base")
	head := commitFiles(t, wt, map[string]string{
		"app/src.txt":    "top\na\nb\n",
		"other/move.txt": "x\ny\n",
	}, []string{"app/move.txt"}, "head")

	p := newTestProvider(t, dir, filepath.Join(dir, "app"), nil)
	ctx := context.Background()

	outcome, err := p.ProjectLocation(ctx, results.MustLocation("src.txt", 2), history.Revision(base.String()), history.Revision(head.String()))
	require.NoError(t, err)
	assert.Equal(t, history.MovedTo(results.MustLocation("src.txt", 3)), outcome)

	outcome, err = p.ProjectLocation(ctx, results.MustLocation("move.txt", 1), history.Revision(base.String()), history.Revision(head.String()))
	require.NoError(t, err)
	assert.Equal(t, history.Deleted, outcome.Kind, "moving out of the project root resolves the finding")
}

func TestProviderUnknownRevision(t *testing.T) {
	hr := setupHistoryRepo(t)
	p := newTestProvider(t, hr.dir, hr.dir, nil)

	_, err := p.ProjectLocation(context.Background(), results.MustLocation("a.txt", 1),
		"0123456789abcdef0123456789abcdef01234567", "HEAD")
	assert.ErrorIs(t, err, history.ErrHistoryUnavailable)
	assert.ErrorIs(t, err, ErrRevisionNotFound)

	_, err = p.ProjectLocation(context.Background(), results.MustLocation("a.txt", 1), "no-such-branch", "HEAD")
	assert.ErrorIs(t, err, history.ErrHistoryUnavailable)
}

func TestLineMapFromText(t *testing.T) {
	m := lineMapFromText("a\nb\nc\nd\n", "a\nX\nc\nd\ne\n")

	got, ok := m.Map(1)
	assert.True(t, ok)
	assert.Equal(t, 1, got)

	_, ok = m.Map(2)
	assert.False(t, ok)

	got, ok = m.Map(4)
	assert.True(t, ok)
	assert.Equal(t, 4, got)

	assert.Equal(t, 0, countLines(""))
	assert.Equal(t, 1, countLines("no newline"))
	assert.Equal(t, 2, countLines("a\nb\n"))
}

func commitFiles(t *testing.T, wt *git.Worktree, files map[string]string, removed []string, message string) plumbing.Hash {
	t.Helper()

	for path, content := range files {
		abs := filepath.Join(wt.Filesystem.Root(), path)
		if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", abs, err)
		}
		if err := os.WriteFile(abs, []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", abs, err)
		}
		if _, err := wt.Add(path); err != nil {
			t.Fatalf("add %s: %v", path, err)
		}
	}
	for _, path := range removed {
		if _, err := wt.Remove(path); err != nil {
			t.Fatalf("remove %s: %v", path, err)
		}
	}

	hash, err := wt.Commit(message, &git.CommitOptions{
		Author: &object.Signature{Name: "tester", Email: "tester@example.com", When: time.Now()},
	})
	if err != nil {
		t.Fatalf("commit: %v", err)
	}
	return hash
}

func TestProviderRepositoryQueries(t *testing.T) {
	hr := setupHistoryRepo(t)
	p := newTestProvider(t, hr.dir, hr.dir, nil)

	head, err := p.Head()
	require.NoError(t, err)
	assert.Equal(t, hr.rev(2), head)

	resolved, err := p.Resolve("HEAD~2")
	require.NoError(t, err)
	assert.Equal(t, hr.rev(0), resolved)

	resolved, err = p.Resolve(history.Worktree)
	require.NoError(t, err)
	assert.Equal(t, history.Worktree, resolved)

	_, err = p.Resolve("no-such-branch")
	assert.ErrorIs(t, err, ErrRevisionNotFound)

	ok, err := p.IsAncestor(hr.rev(0), history.Worktree)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = p.IsAncestor(hr.rev(2), hr.rev(0))
	require.NoError(t, err)
	assert.False(t, ok)

	dirty, err := p.HasUncommittedChanges()
	require.NoError(t, err)
	assert.False(t, dirty)

	require.NoError(t, os.WriteFile(filepath.Join(hr.dir, "untracked.txt"), []byte("x\n"), 0o644))
	dirty, err = newTestProvider(t, hr.dir, hr.dir, nil).HasUncommittedChanges()
	require.NoError(t, err)
	assert.False(t, dirty, "untracked files do not count")

	require.NoError(t, os.WriteFile(filepath.Join(hr.dir, "stable.txt"), []byte("changed\n"), 0o644))
	dirty, err = newTestProvider(t, hr.dir, hr.dir, nil).HasUncommittedChanges()
	require.NoError(t, err)
	assert.True(t, dirty)

	dirty, err = p.HasUncommittedChanges()
	require.NoError(t, err)
	assert.False(t, dirty, "status is read once when the provider is opened")
}

func TestProviderCheckout(t *testing.T) {
	hr := setupHistoryRepo(t)

	assert.Equal(t, history.Checkout{Branch: "master", Commit: hr.hashes[2].String()},
		newTestProvider(t, hr.dir, hr.dir, nil).Checkout())

	_, err := hr.repo.CreateRemote(&gitconfig.RemoteConfig{
		Name: "origin",
		URLs: []string{"https://example.com/acme/app.git"},
	})
	require.NoError(t, err)

	assert.Equal(t, history.Checkout{
		RemoteURL: "https://example.com/acme/app",
		Branch:    "master",
		Commit:    hr.hashes[2].String(),
	}, newTestProvider(t, hr.dir, hr.dir, nil).Checkout())
}
