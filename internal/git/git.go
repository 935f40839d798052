// Package git wraps the git subprocess operations the CLI needs: remote
// inspection, branch handling, and fetching pull request refs.
package git

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// run executes git with the given arguments and returns trimmed stdout.
func run(ctx context.Context, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	var stdout, stderr strings.Builder
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			return "", fmt.Errorf("git %s: %w", strings.Join(args, " "), err)
		}
		return "", fmt.Errorf("git %s: %s", strings.Join(args, " "), msg)
	}
	return strings.TrimSpace(stdout.String()), nil
}

// RemoteURL returns the URL configured for a remote.
func RemoteURL(ctx context.Context, remote string) (string, error) {
	url, err := run(ctx, "remote", "get-url", remote)
	if err != nil {
		return "", fmt.Errorf("getting url for remote %q: %w", remote, err)
	}
	return url, nil
}

// RemoteData fetches and parses the URL of a remote.
func RemoteData(ctx context.Context, remote string) (Remote, error) {
	url, err := RemoteURL(ctx, remote)
	if err != nil {
		return Remote{}, err
	}
	data, ok := ParseRemoteURL(url)
	if !ok {
		return Remote{}, fmt.Errorf("unrecognized remote url format (supported: https and ssh): %s", url)
	}
	return data, nil
}

// CurrentBranch returns the checked-out branch name.
func CurrentBranch(ctx context.Context) (string, error) {
	branch, err := run(ctx, "branch", "--show-current")
	if err != nil {
		return "", fmt.Errorf("getting current branch: %w", err)
	}
	if branch == "" {
		return "", fmt.Errorf("no branch checked out")
	}
	return branch, nil
}

// DefaultBranch determines the default branch of a remote from its HEAD ref,
// falling back to main or master when the HEAD ref is not set locally.
func DefaultBranch(ctx context.Context, remote string) (string, error) {
	ref, err := run(ctx, "symbolic-ref", "refs/remotes/"+remote+"/HEAD")
	if err == nil {
		if i := strings.LastIndex(ref, "/"); i >= 0 {
			return ref[i+1:], nil
		}
		return ref, nil
	}

	for _, branch := range []string{"main", "master"} {
		if _, err := run(ctx, "rev-parse", "--verify", remote+"/"+branch); err == nil {
			return branch, nil
		}
	}
	return "", fmt.Errorf("couldn't determine default branch for remote %q", remote)
}

// FetchPullRequest fetches a pull request ref from the remote into a local
// branch.
func FetchPullRequest(ctx context.Context, remote, prRef, branch string) error {
	if _, err := run(ctx, "fetch", remote, prRef+":"+branch); err != nil {
		return fmt.Errorf("fetching pull request ref %q: %w", prRef, err)
	}
	return nil
}

// CheckoutBranch checks out a local branch.
func CheckoutBranch(ctx context.Context, branch string) error {
	if _, err := run(ctx, "checkout", branch); err != nil {
		return fmt.Errorf("checking out branch %q: %w", branch, err)
	}
	return nil
}

// PushBranch pushes a branch to a remote, optionally setting the upstream.
func PushBranch(ctx context.Context, remote, branch string, setUpstream bool) error {
	args := []string{"push", remote, branch}
	if setUpstream {
		args = append(args, "-u")
	}
	if _, err := run(ctx, args...); err != nil {
		return fmt.Errorf("pushing branch %q to %q: %w", branch, remote, err)
	}
	return nil
}

// RevParse resolves a commit-ish to its SHA.
func RevParse(ctx context.Context, arg string) (string, error) {
	sha, err := run(ctx, "rev-parse", arg)
	if err != nil {
		return "", err
	}
	if sha == "" {
		return "", fmt.Errorf("no commit hash for %q", arg)
	}
	return sha, nil
}

// RepoRoot returns the absolute path of the working tree root.
func RepoRoot(ctx context.Context) (string, error) {
	return RevParse(ctx, "--show-toplevel")
}
