// Package cmd holds helpers shared by the CLI commands.
package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/a4blue/sarb/internal/baseline"
	"github.com/a4blue/sarb/internal/history"
	"github.com/a4blue/sarb/internal/parsers"
	"github.com/a4blue/sarb/internal/results"
	sarbErrors "github.com/a4blue/sarb/pkg/shared/errors"
	"github.com/a4blue/sarb/pkg/shared/files"
)

// StdinInput selects standard input as the analysis results source.
const StdinInput = "-"

// OpenInput opens path for reading, or returns stdin when path is empty or "-".
func OpenInput(path string, stdin io.Reader) (io.ReadCloser, error) {
	if path == "" || path == StdinInput {
		return io.NopCloser(stdin), nil
	}
	expanded, err := files.ExpandPath(path)
	if err != nil {
		return nil, err
	}
	if err := files.ValidatePath(expanded); err != nil {
		return nil, fmt.Errorf("%w: %w", parsers.ErrInvalidInput, err)
	}
	f, err := os.Open(expanded)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", parsers.ErrInvalidInput, err)
	}
	return f, nil
}

// ResolveProjectRoot returns the absolute project root, defaulting to the
// current working directory.
func ResolveProjectRoot(path string) (string, error) {
	root, err := files.ResolveDir(path)
	if err != nil {
		return "", err
	}
	if err := files.ValidateDir(root); err != nil {
		return "", err
	}
	return root, nil
}

// ToCommandError attaches the exit code matching err.
func ToCommandError(err error) *sarbErrors.CommandError {
	if err == nil {
		return nil
	}
	var cmdErr *sarbErrors.CommandError
	if errors.As(err, &cmdErr) {
		return cmdErr
	}
	return sarbErrors.NewCommandError(err, exitCodeFor(err))
}

func exitCodeFor(err error) int {
	var choiceErr *sarbErrors.InvalidChoiceError
	switch {
	case errors.Is(err, baseline.ErrInvalidBaseline):
		return sarbErrors.ExitInvalidInput
	case errors.As(err, &choiceErr):
		return sarbErrors.ExitInvalidOption
	case errors.Is(err, parsers.ErrInvalidInput), errors.Is(err, results.ErrInvalidLocation):
		return sarbErrors.ExitInvalidInput
	case errors.Is(err, history.ErrHistoryUnavailable):
		return sarbErrors.ExitHistoryUnavailable
	default:
		return sarbErrors.ExitUnexpected
	}
}
