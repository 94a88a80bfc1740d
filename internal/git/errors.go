package git

import "errors"

// Repository errors
var (
	ErrNotRepository  = errors.New("folder is not inside a git repository")
	ErrNoCommits      = errors.New("repository has no commits")
	ErrOutsideProject = errors.New("path is outside the project root")
)

// Revision resolution errors
var (
	ErrRevisionNotFound = errors.New("revision not found")
	ErrEmptyRevision    = errors.New("revision is empty")
)
