package createbaseline

import (
	"fmt"
	"strings"
)

func validateCreateBaselineArgs(opts *RunOptions, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("expected exactly one BASELINE_FILE argument, got %d", len(args))
	}
	opts.BaselineFile = strings.TrimSpace(args[0])
	if opts.BaselineFile == "" {
		return fmt.Errorf("BASELINE_FILE must not be empty")
	}
	opts.InputFormat = strings.TrimSpace(opts.InputFormat)
	return nil
}
