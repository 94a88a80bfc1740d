package history

import (
	"context"
	"fmt"
	"sync"

	"github.com/a4blue/sarb/internal/results"
)

// StaticProvider serves projections from an in-memory table. Locations that
// are not registered are reported Unchanged.
type StaticProvider struct {
	mu        sync.RWMutex
	outcomes  map[results.Location]Outcome
	failures  map[results.Location]error
	revisions map[Revision]struct{}
	calls     int
}

// NewStaticProvider returns an empty provider that knows the given revisions.
// With no revisions every revision is accepted.
func NewStaticProvider(known ...Revision) *StaticProvider {
	p := &StaticProvider{
		outcomes: make(map[results.Location]Outcome),
		failures: make(map[results.Location]error),
	}
	if len(known) > 0 {
		p.revisions = make(map[Revision]struct{}, len(known))
		for _, r := range known {
			p.revisions[r] = struct{}{}
		}
	}
	return p
}

// Set registers the outcome for loc.
func (p *StaticProvider) Set(loc results.Location, outcome Outcome) *StaticProvider {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.outcomes[loc] = outcome
	return p
}

// Fail makes projecting loc return err.
func (p *StaticProvider) Fail(loc results.Location, err error) *StaticProvider {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.failures[loc] = err
	return p
}

// Calls returns how many projections were requested.
func (p *StaticProvider) Calls() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.calls
}

// ProjectLocation implements Provider.
func (p *StaticProvider) ProjectLocation(ctx context.Context, loc results.Location, from, to Revision) (Outcome, error) {
	if err := ctx.Err(); err != nil {
		return Outcome{}, err
	}

	p.mu.Lock()
	p.calls++
	p.mu.Unlock()

	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.revisions != nil {
		for _, r := range []Revision{from, to} {
			if _, ok := p.revisions[r]; !ok {
				return Outcome{}, Unavailable(fmt.Errorf("unknown revision %q", r))
			}
		}
	}
	if err, ok := p.failures[loc]; ok {
		return Outcome{}, Unavailable(err)
	}
	if outcome, ok := p.outcomes[loc]; ok {
		return outcome, nil
	}
	return UnchangedAt(loc), nil
}
