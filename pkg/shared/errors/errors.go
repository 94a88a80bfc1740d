package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Exit codes returned by the sarb binary.
const (
	ExitSuccess            = 0
	ExitNewIssues          = 1
	ExitInvalidOption      = 11
	ExitInvalidInput       = 12
	ExitHistoryUnavailable = 13
	ExitUnexpected         = 100
)

// CommandError represents an error that occurred during command execution together
// with the process exit code it maps to.
type CommandError struct {
	ExitCode int
	Err      error
}

// Error implements the error interface.
func (e *CommandError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("command failed with exit code %d", e.ExitCode)
	}
	return e.Err.Error()
}

func (e *CommandError) Unwrap() error { return e.Err }

// NewCommandError creates a new CommandError instance.
func NewCommandError(err error, code int) *CommandError {
	return &CommandError{ExitCode: code, Err: err}
}

// NewIssuesError signals that pruning succeeded but left residual findings.
func NewIssuesError(count int) *CommandError {
	return &CommandError{ExitCode: ExitNewIssues, Err: fmt.Errorf("%d new issue(s) found since baseline", count)}
}

// ExitCode maps err to a process exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var cmdErr *CommandError
	if errors.As(err, &cmdErr) {
		return cmdErr.ExitCode
	}
	return ExitUnexpected
}

// InvalidChoiceError reports an unknown registry code.
type InvalidChoiceError struct {
	Option  string
	Value   string
	Choices []string
}

func (e *InvalidChoiceError) Error() string {
	return fmt.Sprintf("Invalid value [%s] for option [%s]. Pick one of: %s", e.Value, e.Option, strings.Join(e.Choices, "|"))
}
