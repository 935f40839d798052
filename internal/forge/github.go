package forge

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/runger/git-forge/internal/git"
)

var githubAuth = auth{envVar: "GITHUB_TOKEN", scheme: "Bearer"}

type githubClient struct {
	http   *httpClient
	remote git.Remote
	base   string
}

func newGitHubClient(httpc *httpClient, remote git.Remote, apiURL string) *githubClient {
	base := apiURL
	if base == "" {
		if remote.Host == "github.com" {
			base = "https://api.github.com"
		} else {
			base = "https://" + remote.HostKey() + "/api/v3"
		}
	}
	return &githubClient{http: httpc, remote: remote, base: base}
}

// https://docs.github.com/en/rest/issues/issues
type githubIssue struct {
	Number  int           `json:"number"`
	Title   string        `json:"title"`
	State   string        `json:"state"`
	Labels  []githubLabel `json:"labels"`
	User    githubUser    `json:"user"`
	HTMLURL string        `json:"html_url"`
	// Present only when the "issue" is actually a pull request.
	PullRequest *struct{} `json:"pull_request"`
}

type githubLabel struct {
	Name string `json:"name"`
}

type githubUser struct {
	Login string `json:"login"`
}

// https://docs.github.com/en/rest/pulls/pulls
type githubPullRequest struct {
	Number    int           `json:"number"`
	Title     string        `json:"title"`
	State     string        `json:"state"`
	Labels    []githubLabel `json:"labels"`
	User      githubUser    `json:"user"`
	CreatedAt string        `json:"created_at"`
	UpdatedAt string        `json:"updated_at"`
	HTMLURL   string        `json:"html_url"`
	Head      githubPrRef   `json:"head"`
	Base      githubPrRef   `json:"base"`
	Draft     bool          `json:"draft"`
	MergedAt  *string       `json:"merged_at"`
}

type githubPrRef struct {
	Ref string `json:"ref"`
}

func (i githubIssue) toIssue() Issue {
	return Issue{
		ID:     i.Number,
		Title:  i.Title,
		State:  i.State,
		Author: i.User.Login,
		URL:    i.HTMLURL,
		Labels: labelNames(i.Labels),
	}
}

func (p githubPullRequest) toPullRequest() PullRequest {
	state := p.State
	if p.MergedAt != nil {
		state = "merged"
	}
	return PullRequest{
		ID:           p.Number,
		Title:        p.Title,
		State:        state,
		Author:       p.User.Login,
		URL:          p.HTMLURL,
		Labels:       labelNames(p.Labels),
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
		SourceBranch: p.Head.Ref,
		TargetBranch: p.Base.Ref,
		Draft:        p.Draft,
	}
}

func labelNames(labels []githubLabel) []string {
	names := make([]string, len(labels))
	for i, l := range labels {
		names[i] = l.Name
	}
	return names
}

func (c *githubClient) Issues(ctx context.Context, f IssueFilters) (Page[Issue], error) {
	q := url.Values{}
	q.Set("state", string(f.State))
	q.Set("page", strconv.Itoa(f.Page))
	q.Set("per_page", strconv.Itoa(f.PerPage))
	if f.Author != "" {
		q.Set("creator", f.Author)
	}
	if len(f.Labels) > 0 {
		q.Set("labels", strings.Join(f.Labels, ","))
	}

	var raw []githubIssue
	hasNext, err := c.http.getJSON(ctx, c.issuesURL(), q, githubAuth, c.headers(), &raw)
	if err != nil {
		return Page[Issue]{}, fmt.Errorf("fetching issues from GitHub: %w", err)
	}

	issues := make([]Issue, 0, len(raw))
	for _, i := range raw {
		// The issues endpoint also returns pull requests.
		if i.PullRequest != nil {
			continue
		}
		if !matchesQuery(i.Title, f.Query) {
			continue
		}
		issues = append(issues, i.toIssue())
	}
	return Page[Issue]{Items: issues, HasNext: hasNext}, nil
}

func (c *githubClient) CreateIssue(ctx context.Context, opts CreateIssueOptions) (Issue, error) {
	body := map[string]any{
		"title": opts.Title,
		"body":  opts.Body,
	}
	var raw githubIssue
	if err := c.http.postJSON(ctx, c.issuesURL(), githubAuth, c.headers(), body, &raw); err != nil {
		return Issue{}, fmt.Errorf("creating issue on GitHub: %w", err)
	}
	return raw.toIssue(), nil
}

func (c *githubClient) PullRequests(ctx context.Context, f PullRequestFilters) (Page[PullRequest], error) {
	q := url.Values{}
	// "merged" is not a valid state parameter; fetch closed PRs and keep
	// the merged ones.
	state := f.State
	if state == PRStateMerged {
		state = PRStateClosed
	}
	q.Set("state", string(state))
	q.Set("page", strconv.Itoa(f.Page))
	q.Set("per_page", strconv.Itoa(f.PerPage))

	var raw []githubPullRequest
	hasNext, err := c.http.getJSON(ctx, c.pullsURL(), q, githubAuth, c.headers(), &raw)
	if err != nil {
		return Page[PullRequest]{}, fmt.Errorf("fetching pull requests from GitHub: %w", err)
	}

	prs := make([]PullRequest, 0, len(raw))
	for _, p := range raw {
		switch f.State {
		case PRStateMerged:
			if p.MergedAt == nil {
				continue
			}
		case PRStateClosed:
			if p.MergedAt != nil {
				continue
			}
		}
		if f.Author != "" && p.User.Login != f.Author {
			continue
		}
		if !hasAllLabels(labelNames(p.Labels), f.Labels) {
			continue
		}
		if f.Draft && !p.Draft {
			continue
		}
		if !matchesQuery(p.Title, f.Query) {
			continue
		}
		prs = append(prs, p.toPullRequest())
	}
	return Page[PullRequest]{Items: prs, HasNext: hasNext}, nil
}

func (c *githubClient) CreatePullRequest(ctx context.Context, opts CreatePullRequestOptions) (PullRequest, error) {
	body := map[string]any{
		"title": opts.Title,
		"head":  opts.SourceBranch,
		"base":  opts.TargetBranch,
		"body":  opts.Body,
		"draft": opts.Draft,
	}
	var raw githubPullRequest
	if err := c.http.postJSON(ctx, c.pullsURL(), githubAuth, c.headers(), body, &raw); err != nil {
		return PullRequest{}, fmt.Errorf("creating pull request on GitHub: %w", err)
	}
	return raw.toPullRequest(), nil
}

func (c *githubClient) PullRequestRef(number int) string {
	return fmt.Sprintf("pull/%d/head", number)
}

func (c *githubClient) WebURL(target WebTarget) (string, error) {
	base := webBaseURL(c.remote)
	switch target.Kind {
	case WebHome:
		return base, nil
	case WebIssues:
		return base + "/issues", nil
	case WebIssue:
		return fmt.Sprintf("%s/issues/%d", base, target.Number), nil
	case WebNewIssue:
		return base + "/issues/new", nil
	case WebPullRequests:
		return base + "/pulls", nil
	case WebPullRequest:
		return fmt.Sprintf("%s/pull/%d", base, target.Number), nil
	case WebCommit:
		return base + "/commit/" + target.Commit, nil
	case WebFile:
		u := base + "/blob/" + target.Commit + "/" + target.Path
		if target.Line > 0 {
			u += fmt.Sprintf("#L%d", target.Line)
		}
		return u, nil
	}
	return "", fmt.Errorf("unsupported web target %d", target.Kind)
}

func (c *githubClient) issuesURL() string {
	return c.base + "/repos/" + c.remote.Path + "/issues"
}

func (c *githubClient) pullsURL() string {
	return c.base + "/repos/" + c.remote.Path + "/pulls"
}

func (c *githubClient) headers() http.Header {
	h := http.Header{}
	h.Set("Accept", "application/vnd.github+json")
	return h
}

func hasAllLabels(have, want []string) bool {
	for _, w := range want {
		found := false
		for _, h := range have {
			if h == w {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
