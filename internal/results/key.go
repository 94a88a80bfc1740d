package results

import "fmt"

// MatchKey identifies "the same issue" across two analysis runs. Two findings
// with equal keys are interchangeable for pruning.
type MatchKey struct {
	Path    string
	Line    int
	Type    Type
	Message string
}

// Key derives the default matching key: normalised path, line and type.
func Key(loc Location, typ Type) MatchKey {
	return MatchKey{Path: loc.Path(), Line: loc.Line(), Type: typ}
}

// KeyWithMessage derives the strict key that also requires identical messages.
func KeyWithMessage(loc Location, typ Type, message string) MatchKey {
	k := Key(loc, typ)
	k.Message = message
	return k
}

// KeyFunc derives the key of a finding at the given (possibly projected) location.
type KeyFunc func(loc Location, f Finding) MatchKey

// LocationTypeKey ignores the message.
func LocationTypeKey(loc Location, f Finding) MatchKey {
	return Key(loc, f.Type())
}

// StrictKey includes the message.
func StrictKey(loc Location, f Finding) MatchKey {
	return KeyWithMessage(loc, f.Type(), f.Message())
}

func (k MatchKey) String() string {
	if k.Message == "" {
		return fmt.Sprintf("%s:%d|%s", k.Path, k.Line, k.Type)
	}
	return fmt.Sprintf("%s:%d|%s|%s", k.Path, k.Line, k.Type, k.Message)
}
