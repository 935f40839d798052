package cmd

import (
	"context"
	"errors"
	"log/slog"

	"github.com/runger/git-forge/internal/config"
	"github.com/runger/git-forge/internal/forge"
	"github.com/runger/git-forge/internal/git"
	"github.com/runger/git-forge/internal/picker"
)

var (
	flagRemote    string
	flagForgeType string
	flagAPI       string
)

func init() {
	rootCmd.PersistentFlags().StringVar(&flagRemote, "remote", "", "git remote to operate on (default: configured default-remote, then origin)")
	rootCmd.PersistentFlags().StringVar(&flagForgeType, "type", "", "forge type: github, gitlab, gitea or forgejo (default: detected from host)")
	rootCmd.PersistentFlags().StringVar(&flagAPI, "api", "", "API base URL override")
}

// selectionAborted reports whether an interactive session ended because the
// user quit without selecting anything. The CLI treats that as a normal
// exit, not an error.
func selectionAborted(err error) bool {
	return errors.Is(err, picker.ErrNoSelection)
}

// forgeSetup bundles everything a forge-touching command needs.
type forgeSetup struct {
	cfg        *config.Config
	remoteName string
	remote     git.Remote
	client     forge.Client
}

// resolveRemote picks the remote name (flag, then configured default-remote,
// then origin) and parses its URL. It needs a git repository but no forge
// client, so commands that only care about the remote can use it even when
// the forge type is unknown.
func resolveRemote(ctx context.Context, cfg *config.Config) (string, git.Remote, error) {
	remoteName := flagRemote
	if remoteName == "" {
		remoteName, _ = cfg.EffectiveGlobal(config.KeyDefaultRemote)
	}
	if remoteName == "" {
		remoteName = "origin"
	}

	remote, err := git.RemoteData(ctx, remoteName)
	return remoteName, remote, err
}

// setupForge resolves the remote, forge type and API client for the current
// repository, honoring flags over config over detection.
func setupForge(ctx context.Context) (*forgeSetup, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	remoteName, remote, err := resolveRemote(ctx, cfg)
	if err != nil {
		return nil, err
	}

	typeName := flagForgeType
	if typeName == "" {
		typeName, _ = cfg.Effective(config.KeyForgeType, remote)
	}

	var forgeType forge.Type
	if typeName != "" {
		forgeType, err = forge.ParseType(typeName)
	} else {
		forgeType, err = forge.DetectType(remote.Host)
	}
	if err != nil {
		return nil, err
	}

	client, err := forge.NewClient(remote, forgeType, flagAPI)
	if err != nil {
		return nil, err
	}

	slog.Debug("resolved forge",
		"remote", remoteName,
		"host", remote.HostKey(),
		"path", remote.Path,
		"type", forgeType)

	return &forgeSetup{
		cfg:        cfg,
		remoteName: remoteName,
		remote:     remote,
		client:     client,
	}, nil
}
