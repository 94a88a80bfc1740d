package history

import (
	"github.com/a4blue/sarb/internal/results"
)

// FileChange describes what happened to one file between two adjacent revisions.
type FileChange struct {
	From    string
	To      string
	Deleted bool
	Lines   LineMap
}

// Step holds the file changes between two adjacent revisions, keyed by the
// path in the older revision. Files absent from the step are untouched.
type Step map[string]FileChange

// Chain is an ordered list of steps from an older revision to a newer one.
type Chain []Step

// Project walks loc through every step. Renames update the path, line maps
// shift the line, and a deleted file or line ends the walk.
func (c Chain) Project(loc results.Location) (Outcome, error) {
	path, line := loc.Path(), loc.Line()
	for _, step := range c {
		change, touched := step[path]
		if !touched {
			continue
		}
		if change.Deleted {
			return Gone(), nil
		}
		mapped, ok := change.Lines.Map(line)
		if !ok {
			return Gone(), nil
		}
		line = mapped
		if change.To != "" {
			path = change.To
		}
	}

	if path == loc.Path() && line == loc.Line() {
		return UnchangedAt(loc), nil
	}
	projected, err := results.NewLocation(path, line)
	if err != nil {
		return Outcome{}, err
	}
	return MovedTo(projected), nil
}
