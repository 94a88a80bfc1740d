package results

import (
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"strings"
)

// ErrInvalidLocation is returned when a path or line number cannot identify
// a position inside the project.
var ErrInvalidLocation = errors.New("invalid location")

// Location is a project-relative, slash separated file path plus a 1-based line.
type Location struct {
	path string
	line int
}

// NewLocation normalises relPath and validates both parts.
func NewLocation(relPath string, line int) (Location, error) {
	if line < 1 {
		return Location{}, fmt.Errorf("%w: line number must be >= 1, got %d", ErrInvalidLocation, line)
	}
	normalised, err := NormalisePath(relPath)
	if err != nil {
		return Location{}, err
	}
	return Location{path: normalised, line: line}, nil
}

// MustLocation is NewLocation for fixtures; it panics on invalid input.
func MustLocation(relPath string, line int) Location {
	loc, err := NewLocation(relPath, line)
	if err != nil {
		panic(err)
	}
	return loc
}

// NewLocationFromAbsolute builds a location from an absolute file name that
// lives under projectRoot.
func NewLocationFromAbsolute(projectRoot, absPath string, line int) (Location, error) {
	if strings.TrimSpace(projectRoot) == "" {
		return Location{}, fmt.Errorf("%w: project root is not set", ErrInvalidLocation)
	}
	rel, err := filepath.Rel(filepath.Clean(projectRoot), filepath.Clean(absPath))
	if err != nil {
		return Location{}, fmt.Errorf("%w: %q is not under %q: %v", ErrInvalidLocation, absPath, projectRoot, err)
	}
	return NewLocation(rel, line)
}

// NormalisePath converts a relative path to its canonical comparison form:
// forward slashes, no "." segments, no leading "./" and no trailing slash.
func NormalisePath(p string) (string, error) {
	p = strings.TrimSpace(p)
	if p == "" {
		return "", fmt.Errorf("%w: empty path", ErrInvalidLocation)
	}
	p = strings.TrimPrefix(p, "file://")
	p = strings.ReplaceAll(p, "\\", "/")
	if strings.HasPrefix(p, "/") {
		return "", fmt.Errorf("%w: path %q must be relative to the project root", ErrInvalidLocation, p)
	}
	cleaned := path.Clean(p)
	if cleaned == "." || cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", fmt.Errorf("%w: path %q escapes the project root", ErrInvalidLocation, p)
	}
	return cleaned, nil
}

// Path returns the normalised relative path.
func (l Location) Path() string { return l.path }

// Line returns the 1-based line number.
func (l Location) Line() int { return l.line }

// IsZero reports whether l was never initialised.
func (l Location) IsZero() bool { return l.path == "" && l.line == 0 }

func (l Location) String() string {
	return fmt.Sprintf("%s:%d", l.path, l.line)
}
