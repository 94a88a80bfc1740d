// Package baseline holds the recorded state of a project's analysis results
// at a given revision, and its on-disk representation.
package baseline

import (
	"time"

	"github.com/google/uuid"

	"github.com/a4blue/sarb/internal/history"
	"github.com/a4blue/sarb/internal/results"
)

// GitHistoryAnalyser is the identifier of the only history backend.
const GitHistoryAnalyser = "git"

// Snapshot is an immutable baseline: the findings present at Revision, along
// with the parser that produced them.
type Snapshot struct {
	id              uuid.UUID
	revision        history.Revision
	results         results.Results
	parserID        string
	historyAnalyser string
	createdAt       time.Time
	toolVersion     string
}

// Option customises a snapshot at construction time.
type Option func(*Snapshot)

// WithID sets the snapshot identifier instead of generating one.
func WithID(id uuid.UUID) Option {
	return func(s *Snapshot) { s.id = id }
}

// WithCreatedAt overrides the creation time.
func WithCreatedAt(t time.Time) Option {
	return func(s *Snapshot) { s.createdAt = t.UTC() }
}

// WithToolVersion records the version of sarb that created the snapshot.
func WithToolVersion(v string) Option {
	return func(s *Snapshot) { s.toolVersion = v }
}

// WithHistoryAnalyser records the history backend used to resolve revision.
func WithHistoryAnalyser(name string) Option {
	return func(s *Snapshot) { s.historyAnalyser = name }
}

// New builds a snapshot.
func New(revision history.Revision, res results.Results, parserID string, opts ...Option) Snapshot {
	s := Snapshot{
		id:              uuid.New(),
		revision:        revision,
		results:         res,
		parserID:        parserID,
		historyAnalyser: GitHistoryAnalyser,
		createdAt:       time.Now().UTC().Truncate(time.Second),
	}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

func (s Snapshot) ID() uuid.UUID { return s.id }
func (s Snapshot) Revision() history.Revision { return s.revision }
func (s Snapshot) Results() results.Results { return s.results }
func (s Snapshot) ParserID() string { return s.parserID }
func (s Snapshot) HistoryAnalyser() string { return s.historyAnalyser }
func (s Snapshot) CreatedAt() time.Time { return s.createdAt }
func (s Snapshot) ToolVersion() string { return s.toolVersion }
func (s Snapshot) Len() int { return s.results.Len() }

// Equal compares two snapshots by value, including every finding in order.
func (s Snapshot) Equal(other Snapshot) bool {
	if s.id != other.id ||
		s.revision != other.revision ||
		s.parserID != other.parserID ||
		s.historyAnalyser != other.historyAnalyser ||
		!s.createdAt.Equal(other.createdAt) ||
		s.toolVersion != other.toolVersion ||
		s.results.Len() != other.results.Len() {
		return false
	}
	for i := 0; i < s.results.Len(); i++ {
		if !findingsEqual(s.results.At(i), other.results.At(i)) {
			return false
		}
	}
	return true
}

func findingsEqual(a, b results.Finding) bool {
	if a.Location() != b.Location() ||
		a.Type() != b.Type() ||
		a.Message() != b.Message() ||
		a.Severity() != b.Severity() {
		return false
	}
	ae, be := a.Extras(), b.Extras()
	if len(ae) != len(be) {
		return false
	}
	for i := range ae {
		if ae[i] != be[i] {
			return false
		}
	}
	return true
}
