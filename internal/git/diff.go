package git

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/utils/merkletrie"
	"github.com/sourcegraph/go-diff/diff"

	"github.com/a4blue/sarb/internal/history"
	log "github.com/a4blue/sarb/pkg/shared/logger"
)

const (
	origin       = "origin"
	tmpRefPrefix = "refs/sarb/tmp/"
)

// stepBetween computes the file changes between two adjacent commits. Every
// modified file gets a line map built from its unified diff hunks; renames keep
// the old path as key and carry the new path in To.
func (c *Client) stepBetween(ctx context.Context, from, to *object.Commit, detectRenames bool) (history.Step, error) {
	fromTree, err := from.Tree()
	if err != nil {
		return nil, fmt.Errorf("failed to load tree of %s: %w", from.Hash, err)
	}
	toTree, err := to.Tree()
	if err != nil {
		return nil, fmt.Errorf("failed to load tree of %s: %w", to.Hash, err)
	}

	opts := &object.DiffTreeOptions{DetectRenames: detectRenames}
	if detectRenames {
		opts = object.DefaultDiffTreeOptions
	}
	changes, err := object.DiffTreeWithOptions(ctx, fromTree, toTree, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to diff %s..%s: %w", from.Hash, to.Hash, err)
	}

	step := make(history.Step, len(changes))
	for _, change := range changes {
		action, err := change.Action()
		if err != nil {
			return nil, fmt.Errorf("failed to classify change: %w", err)
		}

		switch action {
		case merkletrie.Insert:
			// new files cannot carry baseline findings
			continue
		case merkletrie.Delete:
			step[change.From.Name] = history.FileChange{From: change.From.Name, Deleted: true}
			continue
		}

		fc, err := c.fileChange(ctx, change)
		if err != nil {
			return nil, err
		}
		step[fc.From] = fc
	}

	return step, nil
}

// fileChange builds the line map for a modified or renamed file.
func (c *Client) fileChange(ctx context.Context, change *object.Change) (history.FileChange, error) {
	fc := history.FileChange{From: change.From.Name, To: change.To.Name}

	// pure rename, content identical
	if change.From.TreeEntry.Hash == change.To.TreeEntry.Hash {
		return fc, nil
	}

	patch, err := change.PatchContext(ctx)
	if err != nil {
		return fc, fmt.Errorf("failed to compute patch for %q: %w", fc.From, err)
	}
	for _, fp := range patch.FilePatches() {
		if fp.IsBinary() {
			c.logger.Debug("binary file changed, lines cannot be tracked", "path", fc.From)
			fc.Deleted = true
			return fc, nil
		}
	}

	fileDiff, err := diff.ParseFileDiff([]byte(patch.String()))
	if err != nil {
		return fc, fmt.Errorf("failed to parse diff of %q: %w", fc.From, err)
	}

	fc.Lines, err = history.LineMapFromHunks(convertHunks(fileDiff.Hunks))
	if err != nil {
		return fc, fmt.Errorf("invalid diff for %q: %w", fc.From, err)
	}
	return fc, nil
}

func convertHunks(hunks []*diff.Hunk) []history.Hunk {
	out := make([]history.Hunk, 0, len(hunks))
	for _, h := range hunks {
		if h == nil {
			continue
		}
		out = append(out, history.Hunk{
			OrigStartLine: int(h.OrigStartLine),
			OrigLines:     int(h.OrigLines),
			NewStartLine:  int(h.NewStartLine),
			NewLines:      int(h.NewLines),
			Body:          h.Body,
		})
	}
	return out
}

func (c *Client) ensureCommitPresent(hash plumbing.Hash) error {
	if _, err := c.repo.CommitObject(hash); err != nil {
		if !c.fetchMissing {
			return err
		}
		c.logger.Debug("commit missing locally, attempting fetch", "hash", hash.String())
		if err := c.fetchCommit(hash); err != nil {
			return err
		}
	}
	return nil
}

func (c *Client) fetchCommit(hash plumbing.Hash) error {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	output := io.MultiWriter(
		log.GetLoggerOutput(c.logger),
		os.Stderr,
	)

	remoteName := origin
	if _, err := c.repo.Remote(remoteName); err != nil {
		remotes, rErr := c.repo.Remotes()
		if rErr != nil || len(remotes) == 0 {
			return fmt.Errorf("no remotes available to fetch commit %s", hash.String())
		}
		remoteName = remotes[0].Config().Name
	}

	tmpRef := plumbing.ReferenceName(tmpRefPrefix + hash.String())
	refspec := config.RefSpec(fmt.Sprintf("+%s:%s", hash.String(), tmpRef.String()))

	c.logger.Debug("fetching commit", "remote", remoteName, "hash", hash.String())

	fetchErr := c.repo.FetchContext(ctx, &git.FetchOptions{
		RemoteName: remoteName,
		Auth:       c.auth,
		Progress:   output,
		RefSpecs:   []config.RefSpec{refspec},
		Tags:       git.NoTags,
	})
	if fetchErr != nil && fetchErr != git.NoErrAlreadyUpToDate {
		c.logger.Warn("fetch commit failed", "hash", hash.String(), "error", fetchErr)
		return fetchErr
	}

	defer func() {
		_ = c.repo.Storer.RemoveReference(tmpRef)
	}()

	if _, err := c.repo.CommitObject(hash); err != nil {
		return err
	}
	c.logger.Debug("commit fetched", "hash", hash.String())
	return nil
}
