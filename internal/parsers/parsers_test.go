package parsers

import (
	"errors"
	"strings"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/a4blue/sarb/internal/results"
	sarbErrors "github.com/a4blue/sarb/pkg/shared/errors"
)

func TestDefaultRegistry(t *testing.T) {
	reg := Default(hclog.NewNullLogger())
	assert.Equal(t, []string{"sarif", "sarb-json"}, reg.Codes())

	p, err := reg.Get("sarif")
	require.NoError(t, err)
	assert.Equal(t, "sarif", p.Identifier())

	_, err = reg.Get("phpstan")
	var choiceErr *sarbErrors.InvalidChoiceError
	require.True(t, errors.As(err, &choiceErr))
	assert.Equal(t, "Invalid value [phpstan] for option [input-format]. Pick one of: sarif|sarb-json", err.Error())
}

func TestSarbJSONParser(t *testing.T) {
	input := `[
		{"file": "/project/src/a.go", "line": 10, "type": "bug", "message": "nil deref", "severity": "error"},
		{"file": "src/b.go", "line": 2, "type": "style"}
	]`
	got, err := NewSarbJSONParser(nil).Parse(strings.NewReader(input), "/project")
	require.NoError(t, err)
	require.Equal(t, 2, got.Len())

	assert.Equal(t, results.MustLocation("src/a.go", 10), got.At(0).Location())
	assert.Equal(t, results.Type("bug"), got.At(0).Type())
	assert.Equal(t, "nil deref", got.At(0).Message())
	assert.Equal(t, results.MustLocation("src/b.go", 2), got.At(1).Location())
}

func TestSarbJSONParserAcceptsFormatterOutput(t *testing.T) {
	input := `{"latest_count": 1, "baseline_count": 0, "results": [{"file": "a.go", "line": 1, "type": "t"}]}`
	got, err := NewSarbJSONParser(nil).Parse(strings.NewReader(input), "/project")
	require.NoError(t, err)
	assert.Equal(t, 1, got.Len())
}

func TestSarbJSONParserRejectsInvalidInput(t *testing.T) {
	tests := map[string]string{
		"not json":        "This is\na multiline\nstring",
		"empty":           "",
		"object":          `{"foo": 1}`,
		"outside root":    `[{"file": "/elsewhere/a.go", "line": 1, "type": "t"}]`,
		"bad line":        `[{"file": "a.go", "line": 0, "type": "t"}]`,
		"missing type":    `[{"file": "a.go", "line": 1}]`,
		"escaping parent": `[{"file": "../a.go", "line": 1, "type": "t"}]`,
	}
	for name, input := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := NewSarbJSONParser(nil).Parse(strings.NewReader(input), "/project")
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

func TestSarifParser(t *testing.T) {
	input := `{"version": "2.1.0", "runs": [{"tool": {"driver": {"name": "phpstan"}}, "results": [
		{"ruleId": "argument.type", "message": {"text": "wrong type"}, "locations": [{"physicalLocation": {
			"artifactLocation": {"uri": "src/Foo.php"}, "region": {"startLine": 12}}}]}]}]}`

	got, err := NewSarifParser(nil).Parse(strings.NewReader(input), "/project")
	require.NoError(t, err)
	require.Equal(t, 1, got.Len())
	assert.Equal(t, results.MustLocation("src/Foo.php", 12), got.At(0).Location())
	assert.Equal(t, results.Type("argument.type"), got.At(0).Type())

	_, err = NewSarifParser(nil).Parse(strings.NewReader("garbage"), "/project")
	assert.ErrorIs(t, err, ErrInvalidInput)
}
