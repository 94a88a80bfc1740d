package list

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cmdutil "github.com/a4blue/sarb/internal/cmd"
	"github.com/a4blue/sarb/internal/formatters"
	"github.com/a4blue/sarb/internal/parsers"
	sarbErrors "github.com/a4blue/sarb/pkg/shared/errors"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	env := &cmdutil.Env{
		Logger:     hclog.NewNullLogger(),
		Parsers:    parsers.Default(hclog.NewNullLogger()),
		Formatters: formatters.Default("dev"),
	}
	cmd := New(env)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestListAll(t *testing.T) {
	out, err := execute(t)
	require.NoError(t, err)
	assert.Equal(t, "--input-format:\n  sarif\n  sarb-json\n--output-format:\n  table\n  json\n  sarif\n  text\n", out)
}

func TestListOutputFormatsJSON(t *testing.T) {
	out, err := execute(t, KindOutputFormats, "--json")
	require.NoError(t, err)

	var got []listing
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "output-format", got[0].Option)
	assert.Equal(t, []string{"json", "sarif", "table", "text"}, got[0].Codes)
}

func TestListInvalidKind(t *testing.T) {
	_, err := execute(t, "plugins")
	require.Error(t, err)
	assert.Equal(t, sarbErrors.ExitInvalidOption, sarbErrors.ExitCode(err))
}
