package pruner

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/a4blue/sarb/internal/baseline"
	"github.com/a4blue/sarb/internal/history"
	"github.com/a4blue/sarb/internal/parsers"
	"github.com/a4blue/sarb/internal/results"
)

type fakeAnalyser struct {
	*history.StaticProvider
	head     history.Revision
	dirty    bool
	checkout history.Checkout
	resolved []history.Revision
}

func (f *fakeAnalyser) Head() (history.Revision, error) { return f.head, nil }

func (f *fakeAnalyser) Resolve(rev history.Revision) (history.Revision, error) {
	f.resolved = append(f.resolved, rev)
	if rev == "unknown" {
		return "", errors.New("revision not found")
	}
	return rev, nil
}

func (f *fakeAnalyser) IsAncestor(_, _ history.Revision) (bool, error) { return true, nil }

func (f *fakeAnalyser) HasUncommittedChanges() (bool, error) { return f.dirty, nil }

func (f *fakeAnalyser) Checkout() history.Checkout { return f.checkout }

func newTestService(t *testing.T, analyser *fakeAnalyser) *Service {
	t.Helper()
	logger := hclog.NewNullLogger()
	return NewService(logger, baseline.NewStore(logger), parsers.Default(logger),
		func(string) (HistoryAnalyser, error) { return analyser, nil }, "test")
}

const baselineInput = `[
	{"file": "file1", "line": 10, "type": "bug", "message": "old"},
	{"file": "file2", "line": 1, "type": "style"}
]`

func TestServiceCreateAndRemove(t *testing.T) {
	checkout := history.Checkout{RemoteURL: "https://example.com/acme/app", Branch: "main", Commit: string(baselineRev)}
	analyser := &fakeAnalyser{StaticProvider: history.NewStaticProvider(), head: baselineRev, checkout: checkout}
	analyser.Set(results.MustLocation("file1", 10), history.MovedTo(results.MustLocation("file1", 12)))
	svc := newTestService(t, analyser)
	baselineFile := filepath.Join(t.TempDir(), "baseline.sarb")

	snap, err := svc.CreateBaseline(context.Background(), CreateRequest{
		BaselineFile: baselineFile,
		InputFormat:  "sarb-json",
		Input:        strings.NewReader(baselineInput),
		ProjectRoot:  "/project",
	})
	require.NoError(t, err)
	assert.Equal(t, baselineRev, snap.Revision())
	assert.Equal(t, "sarb-json", snap.ParserID())
	assert.Equal(t, "test", snap.ToolVersion())
	assert.Equal(t, 2, snap.Len())

	latest := `[
		{"file": "file1", "line": 12, "type": "bug", "message": "old"},
		{"file": "file3", "line": 1, "type": "bug"}
	]`
	pruned, err := svc.RemoveBaseline(context.Background(), RemoveRequest{
		BaselineFile: baselineFile,
		Input:        strings.NewReader(latest),
		ProjectRoot:  "/project",
	})
	require.NoError(t, err)
	assert.Equal(t, 2, pruned.TotalCount())
	assert.Equal(t, 1, pruned.MatchedCount())
	assert.Equal(t, 2, pruned.BaselineCount())
	require.Equal(t, 1, pruned.ResidualCount())
	assert.Equal(t, results.MustLocation("file3", 1), pruned.Residual().At(0).Location())
	assert.Equal(t, []history.Revision{history.Worktree}, analyser.resolved)
	assert.Equal(t, checkout, pruned.Checkout())
}

func TestServiceRemoveRecordsAnalysedRevision(t *testing.T) {
	analyser := &fakeAnalyser{
		StaticProvider: history.NewStaticProvider(),
		head:           baselineRev,
		checkout:       history.Checkout{RemoteURL: "https://example.com/acme/app", Branch: "main", Commit: string(baselineRev)},
	}
	svc := newTestService(t, analyser)
	baselineFile := filepath.Join(t.TempDir(), "baseline.sarb")

	_, err := svc.CreateBaseline(context.Background(), CreateRequest{
		BaselineFile: baselineFile,
		InputFormat:  "sarb-json",
		Input:        strings.NewReader(baselineInput),
		ProjectRoot:  "/project",
	})
	require.NoError(t, err)

	pruned, err := svc.RemoveBaseline(context.Background(), RemoveRequest{
		BaselineFile:    baselineFile,
		Input:           strings.NewReader(baselineInput),
		ProjectRoot:     "/project",
		CurrentRevision: currentRev,
	})
	require.NoError(t, err)
	assert.Equal(t, history.Checkout{
		RemoteURL: "https://example.com/acme/app",
		Branch:    "main",
		Commit:    string(currentRev),
	}, pruned.Checkout())
}

func TestServiceCreateRefusesDirtyWorktree(t *testing.T) {
	analyser := &fakeAnalyser{StaticProvider: history.NewStaticProvider(), head: baselineRev, dirty: true}
	svc := newTestService(t, analyser)
	baselineFile := filepath.Join(t.TempDir(), "baseline.sarb")

	req := CreateRequest{
		BaselineFile: baselineFile,
		InputFormat:  "sarb-json",
		Input:        strings.NewReader(baselineInput),
		ProjectRoot:  "/project",
	}
	_, err := svc.CreateBaseline(context.Background(), req)
	assert.ErrorIs(t, err, ErrUncommittedChanges)
	assert.NoFileExists(t, baselineFile)

	req.Force = true
	_, err = svc.CreateBaseline(context.Background(), req)
	require.NoError(t, err)
	assert.FileExists(t, baselineFile)
}

func TestServiceCreateUnknownParser(t *testing.T) {
	svc := newTestService(t, &fakeAnalyser{StaticProvider: history.NewStaticProvider(), head: baselineRev})
	_, err := svc.CreateBaseline(context.Background(), CreateRequest{
		BaselineFile: filepath.Join(t.TempDir(), "b.sarb"),
		InputFormat:  "psalm",
		Input:        strings.NewReader("[]"),
		ProjectRoot:  "/project",
	})
	assert.EqualError(t, err, "Invalid value [psalm] for option [input-format]. Pick one of: sarif|sarb-json")
}

func TestServiceRemoveErrors(t *testing.T) {
	analyser := &fakeAnalyser{StaticProvider: history.NewStaticProvider(), head: baselineRev}
	svc := newTestService(t, analyser)
	dir := t.TempDir()
	baselineFile := filepath.Join(dir, "baseline.sarb")

	_, err := svc.RemoveBaseline(context.Background(), RemoveRequest{BaselineFile: filepath.Join(dir, "missing.sarb"), Input: strings.NewReader("[]")})
	assert.ErrorIs(t, err, baseline.ErrInvalidBaseline)

	require.NoError(t, baseline.NewStore(nil).Save(baselineFile, baseline.New(baselineRev, results.Of(), "phpstan")))
	_, err = svc.RemoveBaseline(context.Background(), RemoveRequest{BaselineFile: baselineFile, Input: strings.NewReader("[]")})
	assert.ErrorIs(t, err, baseline.ErrInvalidBaseline, "baseline recorded with an unregistered parser")

	require.NoError(t, baseline.NewStore(nil).Save(baselineFile, baseline.New(baselineRev, results.Of(), "sarb-json")))
	_, err = svc.RemoveBaseline(context.Background(), RemoveRequest{BaselineFile: baselineFile, Input: strings.NewReader("nope")})
	assert.ErrorIs(t, err, parsers.ErrInvalidInput)

	_, err = svc.RemoveBaseline(context.Background(), RemoveRequest{BaselineFile: baselineFile, Input: strings.NewReader("[]"), CurrentRevision: "unknown"})
	assert.ErrorIs(t, err, history.ErrHistoryUnavailable)
}
