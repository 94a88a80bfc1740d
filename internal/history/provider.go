// Package history projects finding locations from one revision of a project
// to another.
package history

import (
	"context"
	"errors"
	"fmt"

	"github.com/a4blue/sarb/internal/results"
)

// ErrHistoryUnavailable is returned when revision data cannot be retrieved.
// It is fatal for a whole pruning run.
var ErrHistoryUnavailable = errors.New("history unavailable")

// Revision is an opaque identifier of a point in the project's history.
// Revisions are only comparable through a Provider.
type Revision string

// Worktree denotes the uncommitted state of the working copy.
const Worktree Revision = "WORKTREE"

func (r Revision) String() string { return string(r) }

// Checkout identifies the repository a project was analysed in. Empty
// fields are unknown.
type Checkout struct {
	RemoteURL string
	Branch    string
	Commit    string
}

// Kind classifies a projection outcome.
type Kind int

const (
	Unchanged Kind = iota
	Moved
	Deleted
)

func (k Kind) String() string {
	switch k {
	case Unchanged:
		return "unchanged"
	case Moved:
		return "moved"
	case Deleted:
		return "deleted"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Outcome is the result of projecting a single location.
type Outcome struct {
	Kind     Kind
	Location results.Location
}

// UnchangedAt builds an Unchanged outcome.
func UnchangedAt(loc results.Location) Outcome { return Outcome{Kind: Unchanged, Location: loc} }

// MovedTo builds a Moved outcome.
func MovedTo(loc results.Location) Outcome { return Outcome{Kind: Moved, Location: loc} }

// Gone is the Deleted outcome.
func Gone() Outcome { return Outcome{Kind: Deleted} }

// Exists reports whether the projected location still exists.
func (o Outcome) Exists() bool { return o.Kind != Deleted }

// Provider answers forward projection queries. Implementations must be safe
// for concurrent use.
type Provider interface {
	// ProjectLocation maps loc as seen at revision from onto revision to.
	// Backend failures are returned wrapped in ErrHistoryUnavailable.
	ProjectLocation(ctx context.Context, loc results.Location, from, to Revision) (Outcome, error)
}

// Unavailable wraps err so that errors.Is(err, ErrHistoryUnavailable) holds.
func Unavailable(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrHistoryUnavailable) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrHistoryUnavailable, err)
}
