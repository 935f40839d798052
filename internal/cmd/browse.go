package cmd

import (
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/google/shlex"
	"github.com/spf13/cobra"

	"github.com/runger/git-forge/internal/config"
	"github.com/runger/git-forge/internal/forge"
	"github.com/runger/git-forge/internal/git"
)

var (
	browseCommit    string
	browseIssues    string
	browsePRs       string
	browseNoBrowser bool
)

var browseCmd = &cobra.Command{
	Use:   "browse [path[:line]]",
	Short: "Open the repository in the browser",
	Long: `Open a forge page of the current repository in the browser.

Without arguments the repository home page opens. A path argument opens
that file at HEAD (or at --commit), optionally anchored to a line.
--issues and --prs open the listing pages, or a single issue or pull
request when given a number. --no-browser prints the URL instead.

Examples:
  git-forge browse                      # repository home
  git-forge browse --issues             # issue listing
  git-forge browse --issues=128         # a single issue
  git-forge browse --prs --no-browser   # print the PR listing URL
  git-forge browse --commit v1.2.0      # a commit page
  git-forge browse internal/cmd/browse.go:42`,
	Args: cobra.MaximumNArgs(1),
	RunE: runBrowse,
}

func init() {
	browseCmd.Flags().StringVarP(&browseCommit, "commit", "c", "", "open this commit-ish, or pin the path argument to it")
	browseCmd.Flags().StringVarP(&browseIssues, "issues", "i", "", "open the issue listing, or issue N with --issues=N")
	browseCmd.Flags().StringVarP(&browsePRs, "prs", "p", "", "open the pull request listing, or PR N with --prs=N")
	browseCmd.Flags().BoolVarP(&browseNoBrowser, "no-browser", "n", false, "print the URL instead of opening it")
	browseCmd.Flags().Lookup("issues").NoOptDefVal = "all"
	browseCmd.Flags().Lookup("prs").NoOptDefVal = "all"
	browseCmd.MarkFlagsMutuallyExclusive("issues", "prs")
	rootCmd.AddCommand(browseCmd)
}

func runBrowse(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	setup, err := setupForge(ctx)
	if err != nil {
		return err
	}

	var target forge.WebTarget
	switch {
	case len(args) == 1:
		target, err = browseFileTarget(ctx, args[0], browseCommit)
		if err != nil {
			return err
		}
	case browseCommit != "":
		sha, err := git.RevParse(ctx, browseCommit)
		if err != nil {
			return err
		}
		target = forge.WebTarget{Kind: forge.WebCommit, Commit: sha}
	case browseIssues != "":
		number, ok, err := parseListingNumber(browseIssues)
		if err != nil {
			return fmt.Errorf("invalid issue number %q", browseIssues)
		}
		target = forge.WebTarget{Kind: forge.WebIssues}
		if ok {
			target = forge.WebTarget{Kind: forge.WebIssue, Number: number}
		}
	case browsePRs != "":
		number, ok, err := parseListingNumber(browsePRs)
		if err != nil {
			return fmt.Errorf("invalid pull request number %q", browsePRs)
		}
		target = forge.WebTarget{Kind: forge.WebPullRequests}
		if ok {
			target = forge.WebTarget{Kind: forge.WebPullRequest, Number: number}
		}
	default:
		target = forge.WebTarget{Kind: forge.WebHome}
	}

	url, err := setup.client.WebURL(target)
	if err != nil {
		return err
	}
	if browseNoBrowser {
		fmt.Println(url)
		return nil
	}
	return openInBrowser(ctx, setup, url)
}

// browseFileTarget turns a path[:line] argument into a file target, made
// relative to the repository root. The file is pinned to HEAD unless a
// commit-ish is given.
func browseFileTarget(ctx context.Context, arg, commitish string) (forge.WebTarget, error) {
	file, line := splitPathLine(arg)

	abs, err := filepath.Abs(file)
	if err != nil {
		return forge.WebTarget{}, err
	}
	root, err := git.RepoRoot(ctx)
	if err != nil {
		return forge.WebTarget{}, err
	}
	rel, err := filepath.Rel(root, abs)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return forge.WebTarget{}, fmt.Errorf("path %q is outside the repository", file)
	}

	commit := "HEAD"
	if commitish != "" {
		commit, err = git.RevParse(ctx, commitish)
		if err != nil {
			return forge.WebTarget{}, err
		}
	}

	return forge.WebTarget{
		Kind:   forge.WebFile,
		Commit: commit,
		Path:   filepath.ToSlash(rel),
		Line:   line,
	}, nil
}

// splitPathLine splits a trailing :N line suffix off a path argument. A
// suffix that is not a number stays part of the path.
func splitPathLine(arg string) (string, int) {
	if i := strings.LastIndex(arg, ":"); i >= 0 {
		if line, err := strconv.Atoi(arg[i+1:]); err == nil && line > 0 {
			return arg[:i], line
		}
	}
	return arg, 0
}

// parseListingNumber interprets an --issues/--prs flag value: the no-value
// form means the listing page, a number means a single item.
func parseListingNumber(value string) (int, bool, error) {
	if value == "all" {
		return 0, false, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil || n <= 0 {
		return 0, false, fmt.Errorf("not a positive number: %q", value)
	}
	return n, true, nil
}

// openInBrowser launches the configured browser command on a URL, falling
// back to the platform opener.
func openInBrowser(ctx context.Context, setup *forgeSetup, url string) error {
	var argv []string
	if configured, ok := setup.cfg.Effective(config.KeyBrowserCommand, setup.remote); ok {
		var err error
		argv, err = shlex.Split(configured)
		if err != nil {
			return fmt.Errorf("invalid browser command %q: %w", configured, err)
		}
	}
	if len(argv) == 0 {
		argv = []string{platformOpener()}
	}

	c := exec.CommandContext(ctx, argv[0], append(argv[1:], url)...)
	if err := c.Run(); err != nil {
		return fmt.Errorf("opening %s with %s: %w", url, argv[0], err)
	}
	return nil
}

func platformOpener() string {
	switch runtime.GOOS {
	case "darwin":
		return "open"
	case "windows":
		return "explorer"
	default:
		return "xdg-open"
	}
}
