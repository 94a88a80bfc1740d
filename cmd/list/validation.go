package list

import "fmt"

// validateListArgs validates the arguments provided to the list command.
func validateListArgs(opts *RunOptions, args []string) error {
	if len(args) > 1 {
		return fmt.Errorf("only one positional argument is allowed")
	}
	opts.Kind = ""
	if len(args) == 0 {
		return nil
	}
	switch args[0] {
	case KindInputFormats, KindOutputFormats:
		opts.Kind = args[0]
		return nil
	default:
		return fmt.Errorf("unknown kind %q, expected %s or %s", args[0], KindInputFormats, KindOutputFormats)
	}
}
