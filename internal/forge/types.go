package forge

import "fmt"

// DefaultPerPage is the page size used when the caller does not set one.
const DefaultPerPage = 30

// IssueState filters issue listings.
type IssueState string

const (
	IssueStateOpen   IssueState = "open"
	IssueStateClosed IssueState = "closed"
	IssueStateAll    IssueState = "all"
)

// ParseIssueState validates a state string from a flag or fetch option.
func ParseIssueState(s string) (IssueState, error) {
	switch IssueState(s) {
	case IssueStateOpen, IssueStateClosed, IssueStateAll:
		return IssueState(s), nil
	}
	return "", fmt.Errorf("invalid issue state %q (expected open, closed or all)", s)
}

// PullRequestState filters pull request listings.
type PullRequestState string

const (
	PRStateOpen   PullRequestState = "open"
	PRStateClosed PullRequestState = "closed"
	PRStateMerged PullRequestState = "merged"
	PRStateAll    PullRequestState = "all"
)

// ParsePullRequestState validates a state string from a flag or fetch option.
func ParsePullRequestState(s string) (PullRequestState, error) {
	switch PullRequestState(s) {
	case PRStateOpen, PRStateClosed, PRStateMerged, PRStateAll:
		return PullRequestState(s), nil
	}
	return "", fmt.Errorf("invalid pull request state %q (expected open, closed, merged or all)", s)
}

// Issue is a forge issue normalized across providers.
type Issue struct {
	ID     int      `json:"id"`
	Title  string   `json:"title"`
	State  string   `json:"state"`
	Author string   `json:"author"`
	URL    string   `json:"url"`
	Labels []string `json:"labels"`
}

// DisplayText renders the one-line form shown in the selection list.
func (i Issue) DisplayText() string {
	return fmt.Sprintf("%d: %s", i.ID, i.Title)
}

// PullRequest is a forge pull/merge request normalized across providers.
type PullRequest struct {
	ID           int      `json:"id"`
	Title        string   `json:"title"`
	State        string   `json:"state"`
	Author       string   `json:"author"`
	URL          string   `json:"url"`
	Labels       []string `json:"labels"`
	CreatedAt    string   `json:"created"`
	UpdatedAt    string   `json:"updated"`
	SourceBranch string   `json:"source"`
	TargetBranch string   `json:"target"`
	Draft        bool     `json:"draft"`
}

// DisplayText renders the one-line form shown in the selection list.
func (p PullRequest) DisplayText() string {
	return fmt.Sprintf("%d: %s", p.ID, p.Title)
}

// Page is one page of a listing plus whether more pages exist.
type Page[T any] struct {
	Items   []T
	HasNext bool
}

// IssueFilters narrows an issue listing.
type IssueFilters struct {
	State   IssueState
	Author  string
	Labels  []string
	Query   string
	Page    int
	PerPage int
}

// PullRequestFilters narrows a pull request listing.
type PullRequestFilters struct {
	State   PullRequestState
	Author  string
	Labels  []string
	Query   string
	Draft   bool
	Page    int
	PerPage int
}

// CreateIssueOptions describes a new issue.
type CreateIssueOptions struct {
	Title string
	Body  string
}

// CreatePullRequestOptions describes a new pull request.
type CreatePullRequestOptions struct {
	Title        string
	Body         string
	SourceBranch string
	TargetBranch string
	Draft        bool
}

// WebKind selects which forge page a web URL points at.
type WebKind int

const (
	WebHome WebKind = iota
	WebIssues
	WebIssue
	WebNewIssue
	WebPullRequests
	WebPullRequest
	WebCommit
	WebFile
)

// WebTarget describes a forge web page to open in the browser.
type WebTarget struct {
	Kind   WebKind
	Number int    // issue or pull request number
	Commit string // commit sha, also pins WebFile
	Path   string // repository-relative file path
	Line   int    // optional line anchor for WebFile
}
