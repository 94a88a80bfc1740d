package createbaseline

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/a4blue/sarb/internal/baseline"
	cmdutil "github.com/a4blue/sarb/internal/cmd"
	"github.com/a4blue/sarb/internal/history"
	"github.com/a4blue/sarb/internal/parsers"
	"github.com/a4blue/sarb/internal/pruner"
	"github.com/a4blue/sarb/internal/results"
	sarbErrors "github.com/a4blue/sarb/pkg/shared/errors"
)

type stubService struct {
	err     error
	calls   int
	request pruner.CreateRequest
	input   string
}

func (s *stubService) CreateBaseline(_ context.Context, req pruner.CreateRequest) (baseline.Snapshot, error) {
	s.calls++
	s.request = req
	data, _ := io.ReadAll(req.Input)
	s.input = string(data)
	if s.err != nil {
		return baseline.Snapshot{}, s.err
	}
	f, err := results.NewFinding(results.MustLocation("src/a.go", 3), "nil-deref", "", "", nil)
	if err != nil {
		return baseline.Snapshot{}, err
	}
	return baseline.New("0123456789abcdef0123456789abcdef01234567", results.Of(f), req.InputFormat), nil
}

func (s *stubService) RemoveBaseline(context.Context, pruner.RemoveRequest) (*pruner.PrunedResults, error) {
	return nil, fmt.Errorf("not used")
}

func execute(t *testing.T, svc *stubService, args ...string) (string, error) {
	t.Helper()
	env := &cmdutil.Env{
		Logger:  hclog.NewNullLogger(),
		Parsers: parsers.Default(hclog.NewNullLogger()),
		Service: svc,
	}
	cmd := New(env)
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetIn(strings.NewReader("{}"))
	cmd.SetArgs(append(args, "--project-root", t.TempDir()))
	err := cmd.ExecuteContext(context.Background())
	return stderr.String(), err
}

func TestCreateBaseline(t *testing.T) {
	svc := &stubService{}
	stderr, err := execute(t, svc, "baseline.json")

	require.NoError(t, err)
	assert.Equal(t, 1, svc.calls)
	assert.Equal(t, "baseline.json", svc.request.BaselineFile)
	assert.Equal(t, DefaultInputFormat, svc.request.InputFormat)
	assert.False(t, svc.request.Force)
	assert.Equal(t, "{}", svc.input)
	assert.Contains(t, stderr, "Baseline created with 1 issue(s) at revision 0123456789abcdef0123456789abcdef01234567")
}

func TestCreateBaselineForceAndFormat(t *testing.T) {
	svc := &stubService{}
	_, err := execute(t, svc, "baseline.json", "--input-format", "sarb-json", "--force")

	require.NoError(t, err)
	assert.Equal(t, "sarb-json", svc.request.InputFormat)
	assert.True(t, svc.request.Force)
}

func TestCreateBaselineUnknownInputFormat(t *testing.T) {
	svc := &stubService{}
	_, err := execute(t, svc, "baseline.json", "--input-format", "rubbish")

	require.Error(t, err)
	assert.Equal(t, sarbErrors.ExitInvalidOption, sarbErrors.ExitCode(err))
	assert.Equal(t, "Invalid value [rubbish] for option [input-format]. Pick one of: sarif|sarb-json", err.Error())
	assert.Zero(t, svc.calls)
}

func TestCreateBaselineErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "dirty worktree", err: fmt.Errorf("%w: commit first", pruner.ErrUncommittedChanges), want: sarbErrors.ExitUnexpected},
		{name: "not a repository", err: history.Unavailable(fmt.Errorf("no repo")), want: sarbErrors.ExitHistoryUnavailable},
		{name: "bad results", err: fmt.Errorf("%w: not sarif", parsers.ErrInvalidInput), want: sarbErrors.ExitInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, &stubService{err: tt.err}, "baseline.json")
			require.Error(t, err)
			assert.Equal(t, tt.want, sarbErrors.ExitCode(err))
		})
	}
}

func TestCreateBaselineArguments(t *testing.T) {
	svc := &stubService{}
	_, err := execute(t, svc, "one.json", "two.json")
	require.Error(t, err)
	assert.Equal(t, sarbErrors.ExitInvalidOption, sarbErrors.ExitCode(err))
	assert.Zero(t, svc.calls)
}
