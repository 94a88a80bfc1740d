package git

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	gitdiff "github.com/go-git/go-git/v5/utils/diff"
	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/a4blue/sarb/internal/history"
)

// worktreeStep computes the uncommitted changes of tracked files on top of
// head, using a status taken against head. Renames are not detected in the
// working tree: a moved file shows up as deleted.
func (c *Client) worktreeStep(head *object.Commit, status git.Status) (history.Step, error) {
	headTree, err := head.Tree()
	if err != nil {
		return nil, fmt.Errorf("failed to load tree of %s: %w", head.Hash, err)
	}

	step := make(history.Step)
	for path, st := range status {
		if !isTrackedChange(st) {
			continue
		}

		headFile, err := headTree.File(path)
		if err != nil {
			if errors.Is(err, object.ErrFileNotFound) {
				// staged addition
				continue
			}
			return nil, fmt.Errorf("failed to read %q at HEAD: %w", path, err)
		}

		current, err := os.ReadFile(filepath.Join(c.root, filepath.FromSlash(path)))
		if err != nil {
			if os.IsNotExist(err) {
				step[path] = history.FileChange{From: path, Deleted: true}
				continue
			}
			return nil, fmt.Errorf("failed to read %q from worktree: %w", path, err)
		}

		isBinary, err := headFile.IsBinary()
		if err != nil {
			return nil, fmt.Errorf("failed to inspect %q: %w", path, err)
		}
		if isBinary {
			step[path] = history.FileChange{From: path, Deleted: true}
			continue
		}

		original, err := headFile.Contents()
		if err != nil {
			return nil, fmt.Errorf("failed to read %q at HEAD: %w", path, err)
		}

		step[path] = history.FileChange{
			From:  path,
			To:    path,
			Lines: lineMapFromText(original, string(current)),
		}
	}
	return step, nil
}

func isTrackedChange(st *git.FileStatus) bool {
	if st.Worktree == git.Untracked && st.Staging == git.Untracked {
		return false
	}
	return st.Worktree != git.Unmodified || st.Staging != git.Unmodified
}

// lineMapFromText diffs two file versions line by line.
func lineMapFromText(original, current string) history.LineMap {
	diffs := gitdiff.Do(original, current)
	ops := make([]history.Op, 0, len(diffs))
	for _, d := range diffs {
		n := countLines(d.Text)
		switch d.Type {
		case diffmatchpatch.DiffEqual:
			ops = append(ops, history.Op{Kind: history.OpEqual, Lines: n})
		case diffmatchpatch.DiffInsert:
			ops = append(ops, history.Op{Kind: history.OpInsert, Lines: n})
		case diffmatchpatch.DiffDelete:
			ops = append(ops, history.Op{Kind: history.OpDelete, Lines: n})
		}
	}
	return history.NewLineMap(ops)
}

func countLines(text string) int {
	if text == "" {
		return 0
	}
	n := strings.Count(text, "\n")
	if !strings.HasSuffix(text, "\n") {
		n++
	}
	return n
}
