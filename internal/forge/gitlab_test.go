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

func gitlabTestClient(t *testing.T, handler http.Handler) *gitLabClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return newGitLabClient(newHTTPClient(), git.Remote{Host: "gitlab.com", Path: "group/subgroup/repo"}, srv.URL)
}

func TestGitLabIssues(t *testing.T) {
	c := gitlabTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// the project path travels URL-encoded in a single segment
		assert.Equal(t, "/projects/group%2Fsubgroup%2Frepo/issues", r.URL.EscapedPath())
		assert.Equal(t, "opened", r.URL.Query().Get("state"))
		assert.Equal(t, "alice", r.URL.Query().Get("author_username"))
		assert.Equal(t, "crash", r.URL.Query().Get("search"))
		w.Write([]byte(`[
			{"iid": 5, "title": "Crash on save", "state": "opened", "author": {"username": "alice"}, "web_url": "https://gitlab.com/group/subgroup/repo/-/issues/5", "labels": ["bug"]}
		]`))
	}))

	page, err := c.Issues(context.Background(), IssueFilters{
		State:   IssueStateOpen,
		Author:  "alice",
		Query:   "crash",
		Page:    1,
		PerPage: 30,
	})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, Issue{
		ID:     5,
		Title:  "Crash on save",
		State:  "open",
		Author: "alice",
		URL:    "https://gitlab.com/group/subgroup/repo/-/issues/5",
		Labels: []string{"bug"},
	}, page.Items[0])
}

func TestGitLabIssuesAllStateOmitsParam(t *testing.T) {
	c := gitlabTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.False(t, r.URL.Query().Has("state"))
		w.Write([]byte(`[]`))
	}))

	_, err := c.Issues(context.Background(), IssueFilters{State: IssueStateAll, Page: 1, PerPage: 30})
	require.NoError(t, err)
}

func TestGitLabMergeRequests(t *testing.T) {
	c := gitlabTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/projects/group%2Fsubgroup%2Frepo/merge_requests", r.URL.EscapedPath())
		assert.Equal(t, "merged", r.URL.Query().Get("state"))
		assert.Equal(t, "yes", r.URL.Query().Get("wip"))
		w.Write([]byte(`[
			{"iid": 9, "title": "Draft: WIP work", "state": "merged", "author": {"username": "bob"}, "source_branch": "feature", "target_branch": "main", "draft": true, "web_url": "https://gitlab.com/group/subgroup/repo/-/merge_requests/9"}
		]`))
	}))

	page, err := c.PullRequests(context.Background(), PullRequestFilters{
		State:   PRStateMerged,
		Draft:   true,
		Page:    1,
		PerPage: 30,
	})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, 9, page.Items[0].ID)
	assert.Equal(t, "merged", page.Items[0].State)
	assert.True(t, page.Items[0].Draft)
}

func TestGitLabCreateMergeRequestDraftPrefix(t *testing.T) {
	t.Setenv("GIT_FORGE_GITLAB_TOKEN", "tkn")
	c := gitlabTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tkn", r.Header.Get("Authorization"))
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "Draft: A change", body["title"])
		assert.Equal(t, "feature", body["source_branch"])
		assert.Equal(t, "main", body["target_branch"])
		assert.Equal(t, "Details", body["description"])
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"iid": 2, "title": "Draft: A change", "state": "opened", "author": {"username": "me"}, "draft": true}`))
	}))

	pr, err := c.CreatePullRequest(context.Background(), CreatePullRequestOptions{
		Title:        "A change",
		Body:         "Details",
		SourceBranch: "feature",
		TargetBranch: "main",
		Draft:        true,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, pr.ID)
	assert.True(t, pr.Draft)
}

func TestGitLabWebURLs(t *testing.T) {
	c := newGitLabClient(newHTTPClient(), git.Remote{Host: "gitlab.com", Path: "user/repo"}, "")

	u, err := c.WebURL(WebTarget{Kind: WebIssue, Number: 5})
	require.NoError(t, err)
	assert.Equal(t, "https://gitlab.com/user/repo/-/issues/5", u)

	u, err = c.WebURL(WebTarget{Kind: WebPullRequest, Number: 9})
	require.NoError(t, err)
	assert.Equal(t, "https://gitlab.com/user/repo/-/merge_requests/9", u)

	u, err = c.WebURL(WebTarget{Kind: WebFile, Commit: "deadbeef", Path: "lib/a.rb", Line: 3})
	require.NoError(t, err)
	assert.Equal(t, "https://gitlab.com/user/repo/-/blob/deadbeef/lib/a.rb#L3", u)
}

func TestGitLabPullRequestRef(t *testing.T) {
	c := newGitLabClient(newHTTPClient(), git.Remote{Host: "gitlab.com", Path: "user/repo"}, "")
	assert.Equal(t, "merge-requests/7/head", c.PullRequestRef(7))
}
