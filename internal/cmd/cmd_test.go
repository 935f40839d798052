package cmd

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runger/git-forge/internal/config"
	"github.com/runger/git-forge/internal/forge"
	"github.com/runger/git-forge/internal/histstore"
	"github.com/runger/git-forge/internal/picker"
)

func TestIssueFiltersFromOptions(t *testing.T) {
	filters, err := issueFiltersFromOptions(map[string]string{
		"state":  "closed",
		"author": "alice",
		"labels": "bug, ui",
		"query":  "crash",
	}, 2, 30)
	require.NoError(t, err)

	assert.Equal(t, forge.IssueFilters{
		State:   forge.IssueStateClosed,
		Author:  "alice",
		Labels:  []string{"bug", "ui"},
		Query:   "crash",
		Page:    2,
		PerPage: 30,
	}, filters)
}

func TestIssueFiltersFromOptionsDefaults(t *testing.T) {
	filters, err := issueFiltersFromOptions(nil, 1, 30)
	require.NoError(t, err)
	assert.Equal(t, forge.IssueStateOpen, filters.State)
}

func TestIssueFiltersFromOptionsRejectsUnknownKey(t *testing.T) {
	_, err := issueFiltersFromOptions(map[string]string{"milestone": "v2"}, 1, 30)
	require.Error(t, err)
	assert.ErrorContains(t, err, `unknown search option "milestone"`)
}

func TestIssueFiltersFromOptionsInvalidState(t *testing.T) {
	_, err := issueFiltersFromOptions(map[string]string{"state": "merged"}, 1, 30)
	assert.Error(t, err)
}

func TestPRFiltersFromOptions(t *testing.T) {
	filters, err := prFiltersFromOptions(map[string]string{
		"state": "merged",
		"draft": "true",
		"query": "feature",
	}, 3, 50)
	require.NoError(t, err)

	assert.Equal(t, forge.PullRequestFilters{
		State:   forge.PRStateMerged,
		Draft:   true,
		Query:   "feature",
		Page:    3,
		PerPage: 50,
	}, filters)
}

func TestPRFiltersFromOptionsInvalidDraft(t *testing.T) {
	_, err := prFiltersFromOptions(map[string]string{"draft": "maybe"}, 1, 30)
	require.Error(t, err)
	assert.ErrorContains(t, err, "invalid draft value")
}

func TestSplitLabels(t *testing.T) {
	assert.Equal(t, []string{"bug", "ui"}, splitLabels("bug, ui"))
	assert.Equal(t, []string{"bug"}, splitLabels("bug,,"))
	assert.Nil(t, splitLabels(""))
}

func TestSelectionAborted(t *testing.T) {
	assert.True(t, selectionAborted(picker.ErrNoSelection))
	assert.True(t, selectionAborted(fmt.Errorf("picking issue: %w", picker.ErrNoSelection)))
	assert.False(t, selectionAborted(nil))
	assert.False(t, selectionAborted(fmt.Errorf("boom")))
}

func TestSplitPathLine(t *testing.T) {
	tests := []struct {
		arg  string
		file string
		line int
	}{
		{"main.go", "main.go", 0},
		{"main.go:42", "main.go", 42},
		{"a:b/main.go:7", "a:b/main.go", 7},
		{"main.go:notanumber", "main.go:notanumber", 0},
		{"main.go:0", "main.go:0", 0},
	}
	for _, tt := range tests {
		file, line := splitPathLine(tt.arg)
		assert.Equal(t, tt.file, file, tt.arg)
		assert.Equal(t, tt.line, line, tt.arg)
	}
}

func TestParseListingNumber(t *testing.T) {
	n, ok, err := parseListingNumber("all")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Zero(t, n)

	n, ok, err = parseListingNumber("128")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 128, n)

	for _, bad := range []string{"", "-1", "0", "abc"} {
		_, _, err := parseListingNumber(bad)
		assert.Error(t, err, bad)
	}
}

func initTestRepo(t *testing.T, remoteURL string) {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}
	dir := t.TempDir()
	for _, args := range [][]string{
		{"init", "--quiet"},
		{"remote", "add", "origin", remoteURL},
	} {
		c := exec.Command("git", args...)
		c.Dir = dir
		require.NoError(t, c.Run(), "git %v", args)
	}
	t.Chdir(dir)
}

func TestBrowseFileTarget(t *testing.T) {
	initTestRepo(t, "https://github.com/user/repo.git")
	require.NoError(t, os.MkdirAll("sub", 0755))
	require.NoError(t, os.WriteFile("sub/file.go", []byte("package sub\n"), 0644))

	target, err := browseFileTarget(context.Background(), "sub/file.go:12", "")
	require.NoError(t, err)
	assert.Equal(t, forge.WebTarget{
		Kind:   forge.WebFile,
		Commit: "HEAD",
		Path:   "sub/file.go",
		Line:   12,
	}, target)

	_, err = browseFileTarget(context.Background(), "../elsewhere.go", "")
	require.Error(t, err)
	assert.ErrorContains(t, err, "outside the repository")
}

func TestResolveRemoteWithUndetectableHost(t *testing.T) {
	initTestRepo(t, "https://git.internal.example/team/repo.git")

	name, remote, err := resolveRemote(context.Background(), &config.Config{})
	require.NoError(t, err)
	assert.Equal(t, "origin", name)
	assert.Equal(t, "git.internal.example/team/repo", remote.RemoteKey())

	// The remote resolves even though the host maps to no known forge, so
	// config scope selection works on self-hosted remotes.
	_, err = forge.DetectType(remote.Host)
	assert.Error(t, err)
}

func TestSearchLoggerRecordsSubmits(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", t.TempDir())

	logger := newSearchLogger()
	logger.record("crash @state=open")
	logger.record("panic @author=alice")
	logger.Close()

	store, err := histstore.Open(config.DefaultPaths().DatabaseFile())
	require.NoError(t, err)
	defer store.Close()

	entries, err := store.List(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "panic @author=alice", entries[0].Query)
	assert.Equal(t, entries[0].SessionID, entries[1].SessionID)
}

func TestCommandRegistration(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"issue", "pr", "browse", "config", "history", "completions", "version"} {
		assert.True(t, names[want], "missing command %q", want)
	}
}
