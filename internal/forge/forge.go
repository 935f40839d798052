// Package forge talks to the REST APIs of the supported code hosting
// services (GitHub, GitLab, Gitea and Forgejo) and normalizes their issue and
// pull request payloads into common types.
package forge

import (
	"context"
	"fmt"
	"strings"

	"github.com/runger/git-forge/internal/git"
)

// Type identifies a forge API flavor.
type Type string

const (
	TypeGitHub  Type = "github"
	TypeGitLab  Type = "gitlab"
	TypeGitea   Type = "gitea"
	TypeForgejo Type = "forgejo"
)

// ParseType validates a forge type from a flag or config value.
func ParseType(s string) (Type, error) {
	switch Type(strings.ToLower(s)) {
	case TypeGitHub, TypeGitLab, TypeGitea, TypeForgejo:
		return Type(strings.ToLower(s)), nil
	}
	return "", fmt.Errorf("unknown forge type %q (supported: github, gitlab, gitea, forgejo)", s)
}

// DetectType guesses the forge type from a hostname.
func DetectType(host string) (Type, error) {
	host = strings.ToLower(host)
	switch {
	case strings.Contains(host, "github"):
		return TypeGitHub, nil
	case strings.Contains(host, "gitlab"):
		return TypeGitLab, nil
	case strings.Contains(host, "gitea"):
		return TypeGitea, nil
	case strings.Contains(host, "forgejo"), strings.Contains(host, "codeberg"):
		return TypeForgejo, nil
	}
	return "", fmt.Errorf("unable to detect forge type from host %q; set the forge-type config key or the --api flag", host)
}

// Client is the per-forge API surface the CLI works against.
type Client interface {
	Issues(ctx context.Context, f IssueFilters) (Page[Issue], error)
	CreateIssue(ctx context.Context, opts CreateIssueOptions) (Issue, error)
	PullRequests(ctx context.Context, f PullRequestFilters) (Page[PullRequest], error)
	CreatePullRequest(ctx context.Context, opts CreatePullRequestOptions) (PullRequest, error)

	// PullRequestRef returns the remote ref that holds a pull request's
	// head, suitable for git fetch.
	PullRequestRef(number int) string

	// WebURL builds the browser URL for a forge page.
	WebURL(target WebTarget) (string, error)
}

// NewClient builds a client for the given forge type. An empty apiURL uses
// the forge's conventional API location on the remote's host.
func NewClient(remote git.Remote, t Type, apiURL string) (Client, error) {
	httpc := newHTTPClient()
	switch t {
	case TypeGitHub:
		return newGitHubClient(httpc, remote, apiURL), nil
	case TypeGitLab:
		return newGitLabClient(httpc, remote, apiURL), nil
	case TypeGitea, TypeForgejo:
		return newGiteaClient(httpc, remote, apiURL), nil
	}
	return nil, fmt.Errorf("unknown forge type %q", t)
}

// webBaseURL is the repository home page; shared by all forges.
func webBaseURL(remote git.Remote) string {
	return "https://" + remote.HostKey() + "/" + remote.Path
}

// matchesQuery is the client-side fallback for forges whose list endpoints
// have no free-text search parameter.
func matchesQuery(title, query string) bool {
	if query == "" {
		return true
	}
	return strings.Contains(strings.ToLower(title), strings.ToLower(query))
}
