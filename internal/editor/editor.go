// Package editor collects a title and body by opening the user's editor on
// a temp file, the way git does for commit messages.
package editor

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/google/shlex"
)

// ErrEmptyMessage is returned when the user leaves the title empty,
// aborting the operation.
var ErrEmptyMessage = errors.New("aborting due to empty message")

// cutMarker separates the message from the instructions below it. The ">8"
// scissors follow git's convention; everything under the marker is ignored.
const cutMarker = "------------------------ >8 ------------------------"

const instructions = `Enter the title on the first line. An optional longer
description goes on the lines below it.`

// Command resolves the editor command line: the configured value wins, then
// $EDITOR, then vi. The command is split shell-style so configured values
// like "code --wait" work.
func Command(configured string) ([]string, error) {
	raw := configured
	if raw == "" {
		raw = os.Getenv("EDITOR")
	}
	if raw == "" {
		raw = "vi"
	}
	argv, err := shlex.Split(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid editor command %q: %w", raw, err)
	}
	if len(argv) == 0 {
		return nil, fmt.Errorf("invalid editor command %q", raw)
	}
	return argv, nil
}

// Prompt opens the editor on a temp file seeded with template and returns
// the title and body the user wrote. template may pre-fill the message, for
// example with the branch name as the title.
func Prompt(ctx context.Context, command []string, template string) (title, body string, err error) {
	f, err := os.CreateTemp("", "git-forge-*.md")
	if err != nil {
		return "", "", fmt.Errorf("creating message file: %w", err)
	}
	path := f.Name()
	defer os.Remove(path)

	content := template + "\n\n" + cutMarker + "\n" + instructions + "\n"
	if _, err := f.WriteString(content); err != nil {
		f.Close()
		return "", "", fmt.Errorf("writing message file: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", "", fmt.Errorf("writing message file: %w", err)
	}

	cmd := exec.CommandContext(ctx, command[0], append(command[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return "", "", fmt.Errorf("running editor %s: %w", command[0], err)
	}

	edited, err := os.ReadFile(path)
	if err != nil {
		return "", "", fmt.Errorf("reading message file: %w", err)
	}
	return ParseMessage(string(edited))
}

// ParseMessage splits an edited message into title and body. Content at or
// below the cut marker is discarded. An empty title aborts.
func ParseMessage(content string) (title, body string, err error) {
	if idx := strings.Index(content, cutMarker); idx >= 0 {
		content = content[:idx]
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return "", "", ErrEmptyMessage
	}

	title, body, _ = strings.Cut(content, "\n")
	return strings.TrimSpace(title), strings.TrimSpace(body), nil
}
