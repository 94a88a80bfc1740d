// Package pruner removes the findings recorded in a baseline from a newer
// analysis run, following code movement through the project's history.
package pruner

import (
	"context"
	"errors"
	"fmt"

	"github.com/hashicorp/go-hclog"
	"golang.org/x/sync/errgroup"

	"github.com/a4blue/sarb/internal/baseline"
	"github.com/a4blue/sarb/internal/history"
	"github.com/a4blue/sarb/internal/results"
	"github.com/a4blue/sarb/pkg/shared/config"
)

// Options tunes a pruning run. The zero value is valid.
type Options struct {
	// Workers bounds concurrent projection queries. Values < 1 use the default.
	Workers int
	// MatchMessage makes the message part of the matching key.
	MatchMessage bool
	Logger       hclog.Logger
}

// Prune projects every baseline finding from the baseline revision onto
// currentRevision and removes matching findings from current.
//
// Matching is count based: N baseline findings with a given key suppress at
// most N current findings with that key. Baseline findings whose code was
// deleted never suppress anything. Any projection error aborts the run and no
// partial result is returned.
func Prune(ctx context.Context, snap baseline.Snapshot, current results.Results, provider history.Provider, currentRevision history.Revision, opts Options) (*PrunedResults, error) {
	if provider == nil {
		return nil, errors.New("no history provider configured")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	logger := opts.Logger
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	keyOf := results.LocationTypeKey
	if opts.MatchMessage {
		keyOf = results.StrictKey
	}

	projected, err := projectBaseline(ctx, snap, provider, currentRevision, keyOf, workers(opts.Workers))
	if err != nil {
		return nil, err
	}

	remaining := make(map[results.MatchKey]int, len(projected))
	for _, k := range projected {
		remaining[k]++
	}

	residual := results.NewBuilder(current.Len())
	matched := 0
	current.Each(func(_ int, f results.Finding) {
		k := keyOf(f.Location(), f)
		if remaining[k] > 0 {
			remaining[k]--
			matched++
			return
		}
		residual.Add(f)
	})

	logger.Debug("pruning finished",
		"baseline", snap.Len(),
		"projected", len(projected),
		"current", current.Len(),
		"matched", matched,
		"residual", residual.Len())

	return &PrunedResults{
		baseline: snap,
		residual: residual.Build(),
		total:    current.Len(),
		matched:  matched,
	}, nil
}

// projectBaseline returns the keys of every baseline finding that still
// exists at currentRevision.
func projectBaseline(ctx context.Context, snap baseline.Snapshot, provider history.Provider, currentRevision history.Revision, keyOf results.KeyFunc, limit int) ([]results.MatchKey, error) {
	findings := snap.Results().All()
	slots := make([]*results.MatchKey, len(findings))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for i, f := range findings {
		i, f := i, f
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			outcome, err := provider.ProjectLocation(gCtx, f.Location(), snap.Revision(), currentRevision)
			if err != nil {
				return fmt.Errorf("failed to project %s: %w", f.Location(), err)
			}
			if !outcome.Exists() {
				return nil
			}
			loc := outcome.Location
			if loc.IsZero() {
				loc = f.Location()
			}
			k := keyOf(loc, f)
			slots[i] = &k
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	keys := make([]results.MatchKey, 0, len(slots))
	for _, k := range slots {
		if k != nil {
			keys = append(keys, *k)
		}
	}
	return keys, nil
}

func workers(n int) int {
	if n < 1 {
		return config.DefaultWorkers
	}
	return n
}
