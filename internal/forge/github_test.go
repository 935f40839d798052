package forge

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runger/git-forge/internal/git"
)

func githubTestClient(t *testing.T, handler http.Handler) *githubClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return newGitHubClient(newHTTPClient(), git.Remote{Host: "github.com", Path: "user/repo"}, srv.URL)
}

func TestGitHubIssuesFiltersOutPullRequests(t *testing.T) {
	c := githubTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/repos/user/repo/issues", r.URL.Path)
		assert.Equal(t, "open", r.URL.Query().Get("state"))
		assert.Equal(t, "1", r.URL.Query().Get("page"))
		assert.Equal(t, "30", r.URL.Query().Get("per_page"))
		assert.Equal(t, "alice", r.URL.Query().Get("creator"))
		assert.Equal(t, "bug,ui", r.URL.Query().Get("labels"))
		assert.Equal(t, "application/vnd.github+json", r.Header.Get("Accept"))
		w.Write([]byte(`[
			{"number": 1, "title": "Real issue", "state": "open", "user": {"login": "alice"}, "html_url": "https://github.com/user/repo/issues/1", "labels": [{"name": "bug"}]},
			{"number": 2, "title": "Sneaky PR", "state": "open", "user": {"login": "bob"}, "pull_request": {}}
		]`))
	}))

	page, err := c.Issues(context.Background(), IssueFilters{
		State:   IssueStateOpen,
		Author:  "alice",
		Labels:  []string{"bug", "ui"},
		Page:    1,
		PerPage: 30,
	})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, Issue{
		ID:     1,
		Title:  "Real issue",
		State:  "open",
		Author: "alice",
		URL:    "https://github.com/user/repo/issues/1",
		Labels: []string{"bug"},
	}, page.Items[0])
	assert.False(t, page.HasNext)
}

func TestGitHubIssuesQueryFilter(t *testing.T) {
	c := githubTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[
			{"number": 1, "title": "Login crashes", "state": "open", "user": {"login": "a"}},
			{"number": 2, "title": "Slow startup", "state": "open", "user": {"login": "a"}}
		]`))
	}))

	page, err := c.Issues(context.Background(), IssueFilters{State: IssueStateOpen, Query: "login", Page: 1, PerPage: 30})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "Login crashes", page.Items[0].Title)
}

func TestGitHubPullRequestsMergedState(t *testing.T) {
	c := githubTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/repos/user/repo/pulls", r.URL.Path)
		// merged is not a server-side state; closed is requested instead
		assert.Equal(t, "closed", r.URL.Query().Get("state"))
		w.Write([]byte(`[
			{"number": 10, "title": "Merged one", "state": "closed", "user": {"login": "a"}, "merged_at": "2026-01-02T03:04:05Z", "head": {"ref": "feature"}, "base": {"ref": "main"}},
			{"number": 11, "title": "Just closed", "state": "closed", "user": {"login": "a"}, "merged_at": null, "head": {"ref": "other"}, "base": {"ref": "main"}}
		]`))
	}))

	page, err := c.PullRequests(context.Background(), PullRequestFilters{State: PRStateMerged, Page: 1, PerPage: 30})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, 10, page.Items[0].ID)
	assert.Equal(t, "merged", page.Items[0].State)
	assert.Equal(t, "feature", page.Items[0].SourceBranch)
}

func TestGitHubPullRequestsClosedExcludesMerged(t *testing.T) {
	c := githubTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[
			{"number": 10, "title": "Merged one", "state": "closed", "user": {"login": "a"}, "merged_at": "2026-01-02T03:04:05Z"},
			{"number": 11, "title": "Just closed", "state": "closed", "user": {"login": "a"}, "merged_at": null}
		]`))
	}))

	page, err := c.PullRequests(context.Background(), PullRequestFilters{State: PRStateClosed, Page: 1, PerPage: 30})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, 11, page.Items[0].ID)
}

func TestGitHubCreateIssue(t *testing.T) {
	t.Setenv("GITHUB_TOKEN", "tkn")
	c := githubTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer tkn", r.Header.Get("Authorization"))
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "New issue", body["title"])
		assert.Equal(t, "Details here", body["body"])
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"number": 7, "title": "New issue", "state": "open", "user": {"login": "me"}, "html_url": "https://github.com/user/repo/issues/7"}`))
	}))

	issue, err := c.CreateIssue(context.Background(), CreateIssueOptions{Title: "New issue", Body: "Details here"})
	require.NoError(t, err)
	assert.Equal(t, 7, issue.ID)
}

func TestGitHubCreatePullRequest(t *testing.T) {
	t.Setenv("GITHUB_TOKEN", "tkn")
	c := githubTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "feature", body["head"])
		assert.Equal(t, "main", body["base"])
		assert.Equal(t, true, body["draft"])
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"number": 3, "title": "A change", "state": "open", "user": {"login": "me"}, "draft": true, "head": {"ref": "feature"}, "base": {"ref": "main"}}`))
	}))

	pr, err := c.CreatePullRequest(context.Background(), CreatePullRequestOptions{
		Title:        "A change",
		SourceBranch: "feature",
		TargetBranch: "main",
		Draft:        true,
	})
	require.NoError(t, err)
	assert.Equal(t, 3, pr.ID)
	assert.True(t, pr.Draft)
}

func TestGitHubWebURLs(t *testing.T) {
	c := newGitHubClient(newHTTPClient(), git.Remote{Host: "github.com", Path: "user/repo"}, "")

	tests := []struct {
		target WebTarget
		expect string
	}{
		{WebTarget{Kind: WebHome}, "https://github.com/user/repo"},
		{WebTarget{Kind: WebIssues}, "https://github.com/user/repo/issues"},
		{WebTarget{Kind: WebIssue, Number: 12}, "https://github.com/user/repo/issues/12"},
		{WebTarget{Kind: WebNewIssue}, "https://github.com/user/repo/issues/new"},
		{WebTarget{Kind: WebPullRequests}, "https://github.com/user/repo/pulls"},
		{WebTarget{Kind: WebPullRequest, Number: 34}, "https://github.com/user/repo/pull/34"},
		{WebTarget{Kind: WebCommit, Commit: "abc123"}, "https://github.com/user/repo/commit/abc123"},
		{WebTarget{Kind: WebFile, Commit: "abc123", Path: "src/main.go", Line: 10}, "https://github.com/user/repo/blob/abc123/src/main.go#L10"},
	}
	for _, tt := range tests {
		u, err := c.WebURL(tt.target)
		require.NoError(t, err)
		assert.Equal(t, tt.expect, u)
	}
}

func TestGitHubPullRequestRef(t *testing.T) {
	c := newGitHubClient(newHTTPClient(), git.Remote{Host: "github.com", Path: "user/repo"}, "")
	assert.Equal(t, "pull/42/head", c.PullRequestRef(42))
}
