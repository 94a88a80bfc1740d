package config

import (
	"fmt"
	"time"
)

var supportedAuthTypes = map[string]struct{}{
	"ssh-agent": {},
	"ssh-key":   {},
	"http":      {},
	"none":      {},
}

// ValidateConfig checks if the global configurations have valid values.
func ValidateConfig(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("YAML global config: configuration object is nil")
	}
	if err := ValidateLoggerConfig(&cfg.Logger); err != nil {
		return fmt.Errorf("YAML global config: logger directive is invalid: %w", err)
	}
	if err := ValidateHistoryConfig(&cfg.History); err != nil {
		return fmt.Errorf("YAML global config: history directive is invalid: %w", err)
	}
	return nil
}

// ValidateLoggerConfig checks the log level name.
func ValidateLoggerConfig(loggerConfig *Logger) error {
	switch loggerConfig.Level {
	case "", "trace", "debug", "info", "warn", "error",
		"TRACE", "DEBUG", "INFO", "WARN", "ERROR":
		return nil
	default:
		return fmt.Errorf("unknown level %q", loggerConfig.Level)
	}
}

// ValidateHistoryConfig checks if the history provider configurations have valid values.
func ValidateHistoryConfig(historyConfig *History) error {
	if historyConfig == nil {
		return fmt.Errorf("history configuration is nil")
	}
	if historyConfig.Workers < 0 || historyConfig.Workers > 64 {
		return fmt.Errorf("workers must be between 1 and 64, or 0 for the default: %d", historyConfig.Workers)
	}
	if historyConfig.MaxChainCommits < 0 || historyConfig.MaxChainCommits > 100000 {
		return fmt.Errorf("max_chain_commits must be between 1 and 100000, or 0 for the default: %d", historyConfig.MaxChainCommits)
	}
	if err := validateDuration(historyConfig.Timeout, "timeout", 1*time.Hour); err != nil {
		return err
	}
	if historyConfig.AuthType != "" {
		if _, ok := supportedAuthTypes[historyConfig.AuthType]; !ok {
			return fmt.Errorf("unsupported auth_type %q", historyConfig.AuthType)
		}
	}
	if historyConfig.AuthType == "ssh-key" && historyConfig.SSHKey == "" {
		return fmt.Errorf("ssh_key is required for auth_type ssh-key")
	}
	return nil
}

// validateDuration checks that a time.Duration is valid and within a specified maximum duration.
func validateDuration(d time.Duration, name string, max time.Duration) error {
	if d < 0 {
		return fmt.Errorf("invalid duration for %q: %v cannot be negative", name, d)
	}
	if d > max {
		return fmt.Errorf("%q duration is too long: %v exceeds maximum of %v", name, d, max)
	}
	return nil
}
