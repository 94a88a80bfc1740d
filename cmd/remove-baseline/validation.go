package removebaseline

import (
	"fmt"
	"strings"
)

// validateRemoveBaselineArgs checks the positional arguments and flag combinations.
func validateRemoveBaselineArgs(opts *RunOptions, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("expected exactly one BASELINE_FILE argument, got %d", len(args))
	}
	opts.BaselineFile = strings.TrimSpace(args[0])
	if opts.BaselineFile == "" {
		return fmt.Errorf("BASELINE_FILE must not be empty")
	}
	if opts.CleanWorktree && opts.CurrentRevision != "" {
		return fmt.Errorf("--clean-worktree and --current-revision cannot be combined")
	}
	return nil
}
