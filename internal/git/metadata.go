package git

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5"

	"github.com/a4blue/sarb/internal/history"
)

// RepositoryMetadata describes where a project lives inside its repository.
type RepositoryMetadata struct {
	BranchName     *string
	CommitHash     *string
	RemoteURL      *string
	Subfolder      string
	RepoRootFolder string
	Dirty          bool

	status git.Status
}

// CollectRepositoryMetadata function collects repository metadata
// that includes branch name, commit hash, remote URL, subfolder, repository root folder
// and whether the working tree has uncommitted changes.
func CollectRepositoryMetadata(sourceFolder string) (*RepositoryMetadata, error) {
	if sourceFolder == "" {
		return &RepositoryMetadata{}, fmt.Errorf("source folder is not set")
	}

	if absSource, err := filepath.Abs(sourceFolder); err == nil {
		sourceFolder = absSource
	}

	md := &RepositoryMetadata{
		RepoRootFolder: filepath.Clean(sourceFolder),
	}

	repoRootFolder, err := findGitRepositoryPath(sourceFolder)
	if err != nil {
		return md, err
	}

	md.RepoRootFolder = filepath.Clean(repoRootFolder)

	repo, err := git.PlainOpen(repoRootFolder)
	if err != nil {
		return md, fmt.Errorf("failed to open repository: %w", err)
	}

	if rel, err := filepath.Rel(repoRootFolder, sourceFolder); err == nil && rel != "." {
		md.Subfolder = filepath.ToSlash(rel)
	}

	if head, err := repo.Head(); err == nil {
		if head.Name().IsBranch() {
			branchName := head.Name().Short()
			md.BranchName = &branchName
		}

		hash := head.Hash().String()
		md.CommitHash = &hash
	}

	if remote, err := repo.Remote(origin); err == nil {
		if cfg := remote.Config(); cfg != nil && len(cfg.URLs) > 0 {
			remoteURL := strings.TrimSuffix(cfg.URLs[0], ".git")
			md.RemoteURL = &remoteURL
		}
	}

	wt, err := repo.Worktree()
	if err != nil {
		return md, fmt.Errorf("failed to open worktree: %w", err)
	}
	md.status, err = wt.Status()
	if err != nil {
		return md, fmt.Errorf("failed to read worktree status: %w", err)
	}
	md.Dirty = hasTrackedChanges(md.status)

	return md, nil
}

// Checkout converts the metadata into the history view of the repository.
func (md *RepositoryMetadata) Checkout() history.Checkout {
	var c history.Checkout
	if md.RemoteURL != nil {
		c.RemoteURL = *md.RemoteURL
	}
	if md.BranchName != nil {
		c.Branch = *md.BranchName
	}
	if md.CommitHash != nil {
		c.Commit = *md.CommitHash
	}
	return c
}

// hasTrackedChanges ignores untracked files: they cannot carry baseline findings.
func hasTrackedChanges(status git.Status) bool {
	for _, st := range status {
		if isTrackedChange(st) {
			return true
		}
	}
	return false
}
