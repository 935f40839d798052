package forge

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/runger/git-forge/internal/git"
)

var giteaAuth = auth{envVar: "GITEA_TOKEN", scheme: "token"}

// giteaClient speaks the Gitea REST API, which Forgejo also implements.
type giteaClient struct {
	http   *httpClient
	remote git.Remote
	base   string
}

func newGiteaClient(httpc *httpClient, remote git.Remote, apiURL string) *giteaClient {
	base := apiURL
	if base == "" {
		base = "https://" + remote.HostKey() + "/api/v1"
	}
	return &giteaClient{http: httpc, remote: remote, base: base}
}

// https://docs.gitea.com/api/next/
type giteaIssue struct {
	Number  int          `json:"number"`
	Title   string       `json:"title"`
	State   string       `json:"state"`
	Labels  []giteaLabel `json:"labels"`
	User    giteaUser    `json:"user"`
	HTMLURL string       `json:"html_url"`
}

type giteaLabel struct {
	Name string `json:"name"`
}

type giteaUser struct {
	Login string `json:"login"`
}

type giteaPullRequest struct {
	Number    int          `json:"number"`
	Title     string       `json:"title"`
	State     string       `json:"state"`
	Labels    []giteaLabel `json:"labels"`
	User      giteaUser    `json:"user"`
	CreatedAt string       `json:"created_at"`
	UpdatedAt string       `json:"updated_at"`
	HTMLURL   string       `json:"html_url"`
	Head      giteaPrRef   `json:"head"`
	Base      giteaPrRef   `json:"base"`
	Merged    bool         `json:"merged"`
}

type giteaPrRef struct {
	Ref string `json:"ref"`
}

func (i giteaIssue) toIssue() Issue {
	return Issue{
		ID:     i.Number,
		Title:  i.Title,
		State:  i.State,
		Author: i.User.Login,
		URL:    i.HTMLURL,
		Labels: giteaLabelNames(i.Labels),
	}
}

func (p giteaPullRequest) toPullRequest() PullRequest {
	state := p.State
	if p.Merged {
		state = "merged"
	}
	return PullRequest{
		ID:           p.Number,
		Title:        p.Title,
		State:        state,
		Author:       p.User.Login,
		URL:          p.HTMLURL,
		Labels:       giteaLabelNames(p.Labels),
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
		SourceBranch: p.Head.Ref,
		TargetBranch: p.Base.Ref,
		Draft:        strings.HasPrefix(p.Title, "WIP:"),
	}
}

func giteaLabelNames(labels []giteaLabel) []string {
	names := make([]string, len(labels))
	for i, l := range labels {
		names[i] = l.Name
	}
	return names
}

func (c *giteaClient) Issues(ctx context.Context, f IssueFilters) (Page[Issue], error) {
	q := url.Values{}
	q.Set("state", string(f.State))
	q.Set("page", strconv.Itoa(f.Page))
	q.Set("limit", strconv.Itoa(f.PerPage))
	// The endpoint returns pull requests too unless told otherwise.
	q.Set("type", "issues")
	if f.Author != "" {
		q.Set("created_by", f.Author)
	}
	if len(f.Labels) > 0 {
		q.Set("labels", strings.Join(f.Labels, ","))
	}
	if f.Query != "" {
		q.Set("q", f.Query)
	}

	var raw []giteaIssue
	hasNext, err := c.http.getJSON(ctx, c.repoURL("issues"), q, giteaAuth, nil, &raw)
	if err != nil {
		return Page[Issue]{}, fmt.Errorf("fetching issues from Gitea: %w", err)
	}

	issues := make([]Issue, len(raw))
	for i, issue := range raw {
		issues[i] = issue.toIssue()
	}
	return Page[Issue]{Items: issues, HasNext: hasNext}, nil
}

func (c *giteaClient) CreateIssue(ctx context.Context, opts CreateIssueOptions) (Issue, error) {
	body := map[string]any{
		"title": opts.Title,
		"body":  opts.Body,
	}
	var raw giteaIssue
	if err := c.http.postJSON(ctx, c.repoURL("issues"), giteaAuth, nil, body, &raw); err != nil {
		return Issue{}, fmt.Errorf("creating issue on Gitea: %w", err)
	}
	return raw.toIssue(), nil
}

func (c *giteaClient) PullRequests(ctx context.Context, f PullRequestFilters) (Page[PullRequest], error) {
	q := url.Values{}
	// Merged PRs report state "closed"; fetch those and keep the merged
	// ones.
	state := f.State
	if state == PRStateMerged {
		state = PRStateClosed
	}
	q.Set("state", string(state))
	q.Set("page", strconv.Itoa(f.Page))
	q.Set("limit", strconv.Itoa(f.PerPage))

	var raw []giteaPullRequest
	hasNext, err := c.http.getJSON(ctx, c.repoURL("pulls"), q, giteaAuth, nil, &raw)
	if err != nil {
		return Page[PullRequest]{}, fmt.Errorf("fetching pull requests from Gitea: %w", err)
	}

	prs := make([]PullRequest, 0, len(raw))
	for _, p := range raw {
		switch f.State {
		case PRStateMerged:
			if !p.Merged {
				continue
			}
		case PRStateClosed:
			if p.Merged {
				continue
			}
		}
		if f.Author != "" && p.User.Login != f.Author {
			continue
		}
		if !hasAllLabels(giteaLabelNames(p.Labels), f.Labels) {
			continue
		}
		pr := p.toPullRequest()
		if f.Draft && !pr.Draft {
			continue
		}
		if !matchesQuery(p.Title, f.Query) {
			continue
		}
		prs = append(prs, pr)
	}
	return Page[PullRequest]{Items: prs, HasNext: hasNext}, nil
}

func (c *giteaClient) CreatePullRequest(ctx context.Context, opts CreatePullRequestOptions) (PullRequest, error) {
	title := opts.Title
	if opts.Draft && !strings.HasPrefix(title, "WIP:") {
		title = "WIP: " + title
	}
	body := map[string]any{
		"title": title,
		"head":  opts.SourceBranch,
		"base":  opts.TargetBranch,
		"body":  opts.Body,
	}
	var raw giteaPullRequest
	if err := c.http.postJSON(ctx, c.repoURL("pulls"), giteaAuth, nil, body, &raw); err != nil {
		return PullRequest{}, fmt.Errorf("creating pull request on Gitea: %w", err)
	}
	return raw.toPullRequest(), nil
}

func (c *giteaClient) PullRequestRef(number int) string {
	return fmt.Sprintf("pull/%d/head", number)
}

func (c *giteaClient) WebURL(target WebTarget) (string, error) {
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
		return fmt.Sprintf("%s/pulls/%d", base, target.Number), nil
	case WebCommit:
		return base + "/commit/" + target.Commit, nil
	case WebFile:
		u := base + "/src/commit/" + target.Commit + "/" + target.Path
		if target.Line > 0 {
			u += fmt.Sprintf("#L%d", target.Line)
		}
		return u, nil
	}
	return "", fmt.Errorf("unsupported web target %d", target.Kind)
}

func (c *giteaClient) repoURL(resource string) string {
	return c.base + "/repos/" + c.remote.Path + "/" + resource
}
