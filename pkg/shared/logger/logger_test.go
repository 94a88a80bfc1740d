package logger

import (
	"bytes"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"

	"github.com/a4blue/sarb/pkg/shared/config"
)

func TestDetermineLogLevel(t *testing.T) {
	t.Setenv(LevelEnv, "")
	assert.Equal(t, hclog.Warn, determineLogLevel(nil))
	assert.Equal(t, hclog.Debug, determineLogLevel(&config.Config{Logger: config.Logger{Level: "debug"}}))

	t.Setenv(LevelEnv, "trace")
	assert.Equal(t, hclog.Trace, determineLogLevel(&config.Config{Logger: config.Logger{Level: "error"}}))

	t.Setenv(LevelEnv, "bogus")
	assert.Equal(t, hclog.Info, determineLogLevel(nil))
}

func TestNewLoggerWithOutputJSON(t *testing.T) {
	t.Setenv(LevelEnv, "info")
	enabled := true
	var buf bytes.Buffer

	lg := NewLoggerWithOutput(&config.Config{Logger: config.Logger{JSONFormat: &enabled}}, "test", &buf)
	lg.Info("projected", "count", 3)

	assert.Contains(t, buf.String(), `"@message":"projected"`)
	assert.Contains(t, buf.String(), `"count":3`)
}
