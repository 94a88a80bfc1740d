// Package ci discovers metadata about the CI job sarb runs in.
package ci

import (
	"net/url"
	"os"
	"strings"
)

// Kind identifies a CI provider.
type Kind int

const (
	Unknown Kind = iota
	GitHub
	GitLab
	Bitbucket
)

// LookupFunc fetches environment variables. nil means os.Getenv.
type LookupFunc func(string) string

// Environment is the checkout a CI job works on.
type Environment struct {
	Kind          Kind
	Commit        string
	Branch        string
	RepositoryURL string
}

func (k Kind) String() string {
	switch k {
	case GitHub:
		return "github"
	case GitLab:
		return "gitlab"
	case Bitbucket:
		return "bitbucket"
	default:
		return "unknown"
	}
}

// DetectKind infers the CI provider from well-known environment variables.
func DetectKind(lookup LookupFunc) Kind {
	if lookup == nil {
		lookup = os.Getenv
	}
	switch {
	case lookup("GITHUB_REPOSITORY") != "" || lookup("GITHUB_SHA") != "":
		return GitHub
	case strings.EqualFold(lookup("GITLAB_CI"), "true") || lookup("CI_PROJECT_PATH") != "":
		return GitLab
	case lookup("BITBUCKET_WORKSPACE") != "" || lookup("BITBUCKET_REPO_SLUG") != "":
		return Bitbucket
	default:
		return Unknown
	}
}

// Detect returns the CI environment, or false outside a known CI provider.
func Detect(lookup LookupFunc) (Environment, bool) {
	if lookup == nil {
		lookup = os.Getenv
	}
	switch DetectKind(lookup) {
	case GitHub:
		return gitHubEnvironment(lookup), true
	case GitLab:
		return gitLabEnvironment(lookup), true
	case Bitbucket:
		return bitbucketEnvironment(lookup), true
	default:
		return Environment{}, false
	}
}

// See https://docs.github.com/en/actions/reference/workflows-and-actions/variables.
func gitHubEnvironment(lookup LookupFunc) Environment {
	env := Environment{Kind: GitHub, Commit: lookup("GITHUB_SHA")}
	if server, repo := lookup("GITHUB_SERVER_URL"), lookup("GITHUB_REPOSITORY"); server != "" && repo != "" {
		env.RepositoryURL = strings.TrimSuffix(server, "/") + "/" + repo
	}
	// pull request jobs run on a merge ref, the head branch is more useful
	env.Branch = lookup("GITHUB_HEAD_REF")
	if env.Branch == "" && lookup("GITHUB_REF_TYPE") == "branch" {
		env.Branch = lookup("GITHUB_REF_NAME")
	}
	return env
}

// See https://docs.gitlab.com/ci/variables/predefined_variables/.
func gitLabEnvironment(lookup LookupFunc) Environment {
	env := Environment{
		Kind:          GitLab,
		Commit:        lookup("CI_COMMIT_SHA"),
		RepositoryURL: lookup("CI_PROJECT_URL"),
		Branch:        lookup("CI_COMMIT_BRANCH"),
	}
	if env.Branch == "" {
		env.Branch = lookup("CI_MERGE_REQUEST_SOURCE_BRANCH_NAME")
	}
	return env
}

// See https://support.atlassian.com/bitbucket-cloud/docs/variables-and-secrets/.
func bitbucketEnvironment(lookup LookupFunc) Environment {
	env := Environment{
		Kind:   Bitbucket,
		Commit: lookup("BITBUCKET_COMMIT"),
		Branch: lookup("BITBUCKET_BRANCH"),
	}
	if origin := lookup("BITBUCKET_GIT_HTTP_ORIGIN"); origin != "" {
		if u, err := url.Parse(origin); err == nil && u.Scheme != "" && u.Host != "" {
			env.RepositoryURL = origin
		}
	}
	return env
}
