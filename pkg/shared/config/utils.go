package config

import (
	"reflect"
	"strings"
	"time"
)

const (
	DefaultMaxChainCommits = 500
	DefaultWorkers         = 4
	DefaultAuthType        = "ssh-agent"
	DefaultOutputFormat    = "table"
	DefaultHistoryTimeout  = 2 * time.Minute
)

// GetBoolValue retrieves a boolean value from a nested struct based on a dot-separated path.
// It returns the provided defaultValue if the specified field is not explicitly set or is nil.
func GetBoolValue(config interface{}, fieldPath string, defaultValue bool) bool {
	if config == nil {
		return defaultValue
	}

	val := reflect.ValueOf(config)
	for _, field := range strings.Split(fieldPath, ".") {
		if val.Kind() == reflect.Ptr {
			if val.IsNil() {
				return defaultValue
			}
			val = val.Elem()
		}
		if val.Kind() != reflect.Struct {
			return defaultValue
		}
		val = val.FieldByName(field)
		if !val.IsValid() {
			return defaultValue
		}
	}

	if val.Kind() == reflect.Ptr && !val.IsNil() {
		return val.Elem().Bool()
	} else if val.Kind() == reflect.Bool {
		return val.Bool()
	}

	return defaultValue
}

// SetThen returns value if it is not the zero value, otherwise defaultValue.
func SetThen[T any](value T, defaultValue T) T {
	if reflect.ValueOf(value).IsZero() {
		return defaultValue
	}
	return value
}

// MaxChainCommits returns the configured bound on first-parent walks.
func MaxChainCommits(cfg *Config) int {
	if cfg == nil {
		return DefaultMaxChainCommits
	}
	return SetThen(cfg.History.MaxChainCommits, DefaultMaxChainCommits)
}

// Workers returns how many projections may run concurrently.
func Workers(cfg *Config) int {
	if cfg == nil {
		return DefaultWorkers
	}
	return SetThen(cfg.History.Workers, DefaultWorkers)
}

// HistoryTimeout bounds git operations such as fetching a missing commit.
func HistoryTimeout(cfg *Config) time.Duration {
	if cfg == nil {
		return DefaultHistoryTimeout
	}
	return SetThen(cfg.History.Timeout, DefaultHistoryTimeout)
}

// DefaultFormat returns the output format used when none is requested.
func DefaultFormat(cfg *Config) string {
	if cfg == nil {
		return DefaultOutputFormat
	}
	return SetThen(cfg.Output.DefaultFormat, DefaultOutputFormat)
}
