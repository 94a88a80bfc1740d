package sarif

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/owenrumney/go-sarif/v2/sarif"

	"github.com/a4blue/sarb/internal/results"
)

// PathWithin checks if a path is within another path (root).
// It handles both absolute and relative paths, attempting to resolve them first.
// Returns true if path is within root, or if root is empty.
func PathWithin(path, root string) bool {
	if root == "" {
		return true
	}
	cleanPath, err1 := filepath.Abs(path)
	cleanRoot, err2 := filepath.Abs(root)
	if err1 != nil || err2 != nil {
		cleanPath = filepath.Clean(path)
		cleanRoot = filepath.Clean(root)
	}
	if cleanPath == cleanRoot {
		return true
	}
	rootWithSep := cleanRoot + string(filepath.Separator)
	return strings.HasPrefix(cleanPath, rootWithSep)
}

// normaliseURI turns a SARIF artifact URI into a host path. file:// URIs are
// decoded; anything else is returned as written with slashes converted.
func normaliseURI(rawURI string) string {
	rawURI = strings.TrimSpace(rawURI)
	if strings.HasPrefix(rawURI, "file:") {
		if u, err := url.Parse(rawURI); err == nil && u.Path != "" {
			return filepath.FromSlash(u.Path)
		}
		rawURI = strings.TrimPrefix(strings.TrimPrefix(rawURI, "file://"), "file:")
	}
	if unescaped, err := url.PathUnescape(rawURI); err == nil {
		rawURI = unescaped
	}
	return filepath.FromSlash(rawURI)
}

// ToProjectPath converts a SARIF artifact URI to a forward-slash path relative
// to projectRoot. Absolute URIs must point inside projectRoot; relative URIs
// are taken to be relative to it already.
func ToProjectPath(rawURI, projectRoot string) (string, error) {
	local := normaliseURI(rawURI)
	if local == "" {
		return "", fmt.Errorf("%w: empty artifact URI", results.ErrInvalidLocation)
	}

	if filepath.IsAbs(local) {
		if projectRoot == "" || !PathWithin(local, projectRoot) {
			return "", fmt.Errorf("%w: %q is outside the project root %q", results.ErrInvalidLocation, rawURI, projectRoot)
		}
		rel, err := filepath.Rel(projectRoot, local)
		if err != nil {
			return "", fmt.Errorf("%w: %v", results.ErrInvalidLocation, err)
		}
		local = rel
	}

	return results.NormalisePath(filepath.ToSlash(local))
}

// ExtractArtifactURI returns the URI of the first physical location of res.
func ExtractArtifactURI(res *sarif.Result) string {
	if res == nil || len(res.Locations) == 0 {
		return ""
	}
	loc := res.Locations[0]
	if loc == nil || loc.PhysicalLocation == nil {
		return ""
	}
	art := loc.PhysicalLocation.ArtifactLocation
	if art == nil || art.URI == nil {
		return ""
	}
	return strings.TrimSpace(*art.URI)
}

// ExtractRegionFromResult returns start and end line numbers (0 when not present)
// taken from the SARIF result's first location region.
func ExtractRegionFromResult(res *sarif.Result) (int, int) {
	region := firstRegion(res)
	if region == nil {
		return 0, 0
	}
	start, end := 0, 0
	if region.StartLine != nil {
		start = *region.StartLine
	}
	if region.EndLine != nil {
		end = *region.EndLine
	}
	return start, end
}

func extractStartColumn(res *sarif.Result) int {
	region := firstRegion(res)
	if region == nil || region.StartColumn == nil {
		return 0
	}
	return *region.StartColumn
}

func firstRegion(res *sarif.Result) *sarif.Region {
	if res == nil || len(res.Locations) == 0 {
		return nil
	}
	loc := res.Locations[0]
	if loc == nil || loc.PhysicalLocation == nil {
		return nil
	}
	return loc.PhysicalLocation.Region
}
