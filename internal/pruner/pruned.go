package pruner

import (
	"github.com/a4blue/sarb/internal/baseline"
	"github.com/a4blue/sarb/internal/history"
	"github.com/a4blue/sarb/internal/results"
)

// PrunedResults is the outcome of removing a baseline from an analysis run.
type PrunedResults struct {
	baseline baseline.Snapshot
	residual results.Results
	total    int
	matched  int
	checkout history.Checkout
}

// NewPrunedResults assembles a result directly. It is exported for callers
// that substitute the pruning step, such as command tests.
func NewPrunedResults(snap baseline.Snapshot, residual results.Results, total int) *PrunedResults {
	matched := total - residual.Len()
	if matched < 0 {
		matched = 0
	}
	return &PrunedResults{baseline: snap, residual: residual, total: total, matched: matched}
}

// Baseline returns the snapshot the run was pruned against.
func (p *PrunedResults) Baseline() baseline.Snapshot { return p.baseline }

// Residual returns the findings not covered by the baseline, in input order.
func (p *PrunedResults) Residual() results.Results { return p.residual }

// WithCheckout records the repository the latest analysis ran in.
func (p *PrunedResults) WithCheckout(c history.Checkout) *PrunedResults {
	p.checkout = c
	return p
}

// Checkout returns the repository the latest analysis ran in, if known.
func (p *PrunedResults) Checkout() history.Checkout { return p.checkout }

// TotalCount is the number of findings in the latest analysis.
func (p *PrunedResults) TotalCount() int { return p.total }

// MatchedCount is the number of findings suppressed by the baseline.
func (p *PrunedResults) MatchedCount() int { return p.matched }

// ResidualCount is the number of new findings.
func (p *PrunedResults) ResidualCount() int { return p.residual.Len() }

// BaselineCount is the number of findings recorded in the baseline.
func (p *PrunedResults) BaselineCount() int { return p.baseline.Len() }

// HasNewIssues reports whether any finding survived pruning.
func (p *PrunedResults) HasNewIssues() bool { return !p.residual.IsEmpty() }
