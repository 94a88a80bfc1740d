package logger

import (
	"io"
	"os"
	"strings"

	"github.com/hashicorp/go-hclog"

	"github.com/a4blue/sarb/pkg/shared/config"
)

// LevelEnv overrides the configured log level.
const LevelEnv = "SARB_LOG_LEVEL"

// NewLogger creates a new hclog.Logger based on the YAML configuration and the provided name.
// Logs go to stderr; stdout is reserved for formatter output.
func NewLogger(cfg *config.Config, name string) hclog.Logger {
	return NewLoggerWithOutput(cfg, name, os.Stderr)
}

// NewLoggerWithOutput is NewLogger writing to out.
func NewLoggerWithOutput(cfg *config.Config, name string, out io.Writer) hclog.Logger {
	return hclog.New(&hclog.LoggerOptions{
		Name:            name,
		DisableTime:     true,
		JSONFormat:      config.GetBoolValue(cfg, "Logger.JSONFormat", false),
		IncludeLocation: config.GetBoolValue(cfg, "Logger.IncludeLocation", false),
		Output:          out,
		Level:           determineLogLevel(cfg),
	})
}

// determineLogLevel returns a log level determined first by an environment variable, and if not set, by the provided configuration.
// If neither configuration nor environment variable specifies a log level, it defaults to WARN
// so that normal runs only print the report.
func determineLogLevel(cfg *config.Config) hclog.Level {
	if logLevelEnv := os.Getenv(LevelEnv); logLevelEnv != "" {
		return parseLogLevel(strings.ToUpper(logLevelEnv))
	}
	if cfg != nil && cfg.Logger.Level != "" {
		return parseLogLevel(strings.ToUpper(cfg.Logger.Level))
	}
	return hclog.Warn
}

// parseLogLevel converts a string level to hclog.Level.
func parseLogLevel(levelStr string) hclog.Level {
	switch levelStr {
	case "TRACE":
		return hclog.Trace
	case "DEBUG":
		return hclog.Debug
	case "INFO":
		return hclog.Info
	case "WARN":
		return hclog.Warn
	case "ERROR":
		return hclog.Error
	default:
		return hclog.Info
	}
}

// GetLoggerOutput adapts logger to an io.Writer, used for git progress output.
func GetLoggerOutput(logger hclog.Logger) io.Writer {
	if logger == nil {
		return io.Discard
	}
	return logger.StandardWriter(&hclog.StandardLoggerOptions{InferLevels: true})
}
