package forge

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/runger/git-forge/internal/git"
)

var gitlabAuth = auth{envVar: "GIT_FORGE_GITLAB_TOKEN", scheme: "Bearer"}

type gitLabClient struct {
	http   *httpClient
	remote git.Remote
	base   string
}

func newGitLabClient(httpc *httpClient, remote git.Remote, apiURL string) *gitLabClient {
	base := apiURL
	if base == "" {
		base = "https://" + remote.HostKey() + "/api/v4"
	}
	return &gitLabClient{http: httpc, remote: remote, base: base}
}

// https://docs.gitlab.com/ee/api/issues.html
type gitlabIssue struct {
	IID    int        `json:"iid"`
	Title  string     `json:"title"`
	State  string     `json:"state"`
	Labels []string   `json:"labels"`
	Author gitlabUser `json:"author"`
	WebURL string     `json:"web_url"`
}

type gitlabUser struct {
	Username string `json:"username"`
}

// https://docs.gitlab.com/ee/api/merge_requests.html
type gitlabMergeRequest struct {
	IID          int        `json:"iid"`
	Title        string     `json:"title"`
	State        string     `json:"state"`
	Labels       []string   `json:"labels"`
	Author       gitlabUser `json:"author"`
	CreatedAt    string     `json:"created_at"`
	UpdatedAt    string     `json:"updated_at"`
	WebURL       string     `json:"web_url"`
	SourceBranch string     `json:"source_branch"`
	TargetBranch string     `json:"target_branch"`
	Draft        bool       `json:"draft"`
}

func (i gitlabIssue) toIssue() Issue {
	return Issue{
		ID:     i.IID,
		Title:  i.Title,
		State:  gitlabState(i.State),
		Author: i.Author.Username,
		URL:    i.WebURL,
		Labels: i.Labels,
	}
}

func (m gitlabMergeRequest) toPullRequest() PullRequest {
	return PullRequest{
		ID:           m.IID,
		Title:        m.Title,
		State:        gitlabState(m.State),
		Author:       m.Author.Username,
		URL:          m.WebURL,
		Labels:       m.Labels,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
		SourceBranch: m.SourceBranch,
		TargetBranch: m.TargetBranch,
		Draft:        m.Draft,
	}
}

// GitLab says "opened" where everyone else says "open".
func gitlabState(s string) string {
	if s == "opened" {
		return "open"
	}
	return s
}

func (c *gitLabClient) Issues(ctx context.Context, f IssueFilters) (Page[Issue], error) {
	q := url.Values{}
	if f.State != IssueStateAll {
		q.Set("state", gitlabStateParam(string(f.State)))
	}
	q.Set("page", strconv.Itoa(f.Page))
	q.Set("per_page", strconv.Itoa(f.PerPage))
	if f.Author != "" {
		q.Set("author_username", f.Author)
	}
	if len(f.Labels) > 0 {
		q.Set("labels", strings.Join(f.Labels, ","))
	}
	if f.Query != "" {
		q.Set("search", f.Query)
	}

	var raw []gitlabIssue
	hasNext, err := c.http.getJSON(ctx, c.projectURL("issues"), q, gitlabAuth, nil, &raw)
	if err != nil {
		return Page[Issue]{}, fmt.Errorf("fetching issues from GitLab: %w", err)
	}

	issues := make([]Issue, len(raw))
	for i, issue := range raw {
		issues[i] = issue.toIssue()
	}
	return Page[Issue]{Items: issues, HasNext: hasNext}, nil
}

func (c *gitLabClient) CreateIssue(ctx context.Context, opts CreateIssueOptions) (Issue, error) {
	body := map[string]any{
		"title":       opts.Title,
		"description": opts.Body,
	}
	var raw gitlabIssue
	if err := c.http.postJSON(ctx, c.projectURL("issues"), gitlabAuth, nil, body, &raw); err != nil {
		return Issue{}, fmt.Errorf("creating issue on GitLab: %w", err)
	}
	return raw.toIssue(), nil
}

func (c *gitLabClient) PullRequests(ctx context.Context, f PullRequestFilters) (Page[PullRequest], error) {
	q := url.Values{}
	if f.State != PRStateAll {
		q.Set("state", gitlabStateParam(string(f.State)))
	}
	q.Set("page", strconv.Itoa(f.Page))
	q.Set("per_page", strconv.Itoa(f.PerPage))
	if f.Author != "" {
		q.Set("author_username", f.Author)
	}
	if len(f.Labels) > 0 {
		q.Set("labels", strings.Join(f.Labels, ","))
	}
	if f.Query != "" {
		q.Set("search", f.Query)
	}
	if f.Draft {
		q.Set("wip", "yes")
	}

	var raw []gitlabMergeRequest
	hasNext, err := c.http.getJSON(ctx, c.projectURL("merge_requests"), q, gitlabAuth, nil, &raw)
	if err != nil {
		return Page[PullRequest]{}, fmt.Errorf("fetching merge requests from GitLab: %w", err)
	}

	prs := make([]PullRequest, len(raw))
	for i, mr := range raw {
		prs[i] = mr.toPullRequest()
	}
	return Page[PullRequest]{Items: prs, HasNext: hasNext}, nil
}

func (c *gitLabClient) CreatePullRequest(ctx context.Context, opts CreatePullRequestOptions) (PullRequest, error) {
	title := opts.Title
	if opts.Draft && !strings.HasPrefix(title, "Draft: ") {
		title = "Draft: " + title
	}
	body := map[string]any{
		"title":         title,
		"source_branch": opts.SourceBranch,
		"target_branch": opts.TargetBranch,
		"description":   opts.Body,
	}
	var raw gitlabMergeRequest
	if err := c.http.postJSON(ctx, c.projectURL("merge_requests"), gitlabAuth, nil, body, &raw); err != nil {
		return PullRequest{}, fmt.Errorf("creating merge request on GitLab: %w", err)
	}
	return raw.toPullRequest(), nil
}

func (c *gitLabClient) PullRequestRef(number int) string {
	return fmt.Sprintf("merge-requests/%d/head", number)
}

func (c *gitLabClient) WebURL(target WebTarget) (string, error) {
	base := webBaseURL(c.remote)
	switch target.Kind {
	case WebHome:
		return base, nil
	case WebIssues:
		return base + "/-/issues", nil
	case WebIssue:
		return fmt.Sprintf("%s/-/issues/%d", base, target.Number), nil
	case WebNewIssue:
		return base + "/-/issues/new", nil
	case WebPullRequests:
		return base + "/-/merge_requests", nil
	case WebPullRequest:
		return fmt.Sprintf("%s/-/merge_requests/%d", base, target.Number), nil
	case WebCommit:
		return base + "/-/commit/" + target.Commit, nil
	case WebFile:
		u := base + "/-/blob/" + target.Commit + "/" + target.Path
		if target.Line > 0 {
			u += fmt.Sprintf("#L%d", target.Line)
		}
		return u, nil
	}
	return "", fmt.Errorf("unsupported web target %d", target.Kind)
}

// projectURL builds /projects/{id}/{resource} with the project path
// URL-encoded, slashes included, as GitLab requires.
func (c *gitLabClient) projectURL(resource string) string {
	encoded := strings.ReplaceAll(url.PathEscape(c.remote.Path), "/", "%2F")
	return c.base + "/projects/" + encoded + "/" + resource
}

func gitlabStateParam(s string) string {
	if s == "open" {
		return "opened"
	}
	return s
}
