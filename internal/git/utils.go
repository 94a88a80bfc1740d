package git

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

var fullHashPattern = regexp.MustCompile(`^[0-9a-f]{40}$`)

// findGitRepositoryPath function finds a git repository path for a given source folder
func findGitRepositoryPath(sourceFolder string) (string, error) {
	if sourceFolder == "" {
		return "", fmt.Errorf("source folder is not set")
	}

	if abs, err := filepath.Abs(sourceFolder); err == nil {
		sourceFolder = abs
	}

	// check if source folder is a subfolder of a git repository
	for {
		_, err := git.PlainOpen(sourceFolder)
		if err == nil {
			return sourceFolder, nil
		}

		// move up one level
		parent := filepath.Dir(sourceFolder)

		// check if reached the root folder
		if parent == sourceFolder {
			break
		}
		sourceFolder = parent
	}

	return "", ErrNotRepository
}

// isFullHash reports whether rev looks like a complete SHA-1 commit id.
func isFullHash(rev string) bool {
	return fullHashPattern.MatchString(strings.ToLower(rev))
}

// resolveCommit turns a revision expression into a commit object. When the
// revision is a full hash that is missing locally and fetching is enabled, it
// is fetched from the remote first.
func (c *Client) resolveCommit(rev string) (*object.Commit, error) {
	rev = strings.TrimSpace(rev)
	if rev == "" {
		return nil, ErrEmptyRevision
	}

	if isFullHash(rev) {
		hash := plumbing.NewHash(rev)
		if err := c.ensureCommitPresent(hash); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrRevisionNotFound, rev, err)
		}
		return c.repo.CommitObject(hash)
	}

	hash, err := c.repo.ResolveRevision(plumbing.Revision(rev))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrRevisionNotFound, rev, err)
	}
	commit, err := c.repo.CommitObject(*hash)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrRevisionNotFound, rev, err)
	}
	return commit, nil
}

// Head returns the hash of the commit HEAD points at.
func (c *Client) Head() (string, error) {
	head, err := c.repo.Head()
	if err != nil {
		if err == plumbing.ErrReferenceNotFound {
			return "", ErrNoCommits
		}
		return "", fmt.Errorf("failed to resolve HEAD: %w", err)
	}
	return head.Hash().String(), nil
}

// ResolveRevision expands a revision expression (HEAD, branch, tag, hash) to a full commit hash.
func (c *Client) ResolveRevision(rev string) (string, error) {
	commit, err := c.resolveCommit(rev)
	if err != nil {
		return "", err
	}
	return commit.Hash.String(), nil
}

// IsAncestor reports whether ancestor is reachable from descendant.
func (c *Client) IsAncestor(ancestor, descendant string) (bool, error) {
	a, err := c.resolveCommit(ancestor)
	if err != nil {
		return false, err
	}
	d, err := c.resolveCommit(descendant)
	if err != nil {
		return false, err
	}
	return a.IsAncestor(d)
}
