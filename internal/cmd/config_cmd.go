package cmd

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/spf13/cobra"

	"github.com/runger/git-forge/internal/config"
	"github.com/runger/git-forge/internal/editor"
)

var (
	configGlobal    bool
	configHostKey   string
	configRemoteKey string
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Get or set configuration values",
	Long: `Get or set git-forge configuration values.

Configuration is stored in ~/.config/git-forge/config.yaml (XDG
compliant) and has three scopes: global, per host and per remote. A
remote-scoped value wins over a host-scoped one, which wins over a
global one.

Keys may use path segments; lookups fall back to shorter variants, so
"pr/create/editor" falls back to "pr/editor" and then "editor".

Examples:
  git-forge config get forge-type
  git-forge config set --global editor-command "code --wait"
  git-forge config set --host gitlab.example.com forge-type gitlab
  git-forge config set --remote github.com/user/repo pr/create/target develop
  git-forge config unset --global editor-command
  git-forge config edit`,
}

var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Print a configuration value",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigGet,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Args:  cobra.ExactArgs(2),
	RunE:  runConfigSet,
}

var configUnsetCmd = &cobra.Command{
	Use:   "unset <key>",
	Short: "Remove a configuration value",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigUnset,
}

var configEditCmd = &cobra.Command{
	Use:   "edit",
	Short: "Open the configuration file in the editor",
	Args:  cobra.NoArgs,
	RunE:  runConfigEdit,
}

func init() {
	for _, c := range []*cobra.Command{configGetCmd, configSetCmd, configUnsetCmd} {
		c.Flags().BoolVar(&configGlobal, "global", false, "use the global scope")
		c.Flags().StringVar(&configHostKey, "host", "", "use the scope of this host (host[:port])")
		c.Flags().StringVar(&configRemoteKey, "remote-key", "", "use the scope of this remote (host[:port]/path)")
		c.MarkFlagsMutuallyExclusive("global", "host", "remote-key")
	}

	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configUnsetCmd)
	configCmd.AddCommand(configEditCmd)
	rootCmd.AddCommand(configCmd)
}

func configScope() (config.Scope, string, bool) {
	switch {
	case configHostKey != "":
		return config.ScopeHost, configHostKey, true
	case configRemoteKey != "":
		return config.ScopeRemote, configRemoteKey, true
	case configGlobal:
		return config.ScopeGlobal, "", true
	}
	return config.ScopeGlobal, "", false
}

func runConfigGet(cmd *cobra.Command, args []string) error {
	key := args[0]
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	scope, scopeKey, explicit := configScope()
	if explicit {
		value, ok := cfg.Get(scope, scopeKey, key)
		if !ok {
			return fmt.Errorf("key %q is not set in this scope", key)
		}
		fmt.Println(value)
		return nil
	}

	// No scope given: resolve effectively against the current repository,
	// falling back to global-only when not inside one. Only the remote is
	// needed here, so an unrecognized forge host must not get in the way.
	if _, remote, err := resolveRemote(cmd.Context(), cfg); err == nil {
		if value, ok := cfg.Effective(key, remote); ok {
			fmt.Println(value)
			return nil
		}
		return fmt.Errorf("key %q is not set", key)
	}
	if value, ok := cfg.EffectiveGlobal(key); ok {
		fmt.Println(value)
		return nil
	}
	return fmt.Errorf("key %q is not set", key)
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	key, value := args[0], args[1]
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	scope, scopeKey, explicit := configScope()
	if !explicit {
		// Default to the current repository's remote scope when inside
		// one, otherwise global.
		if _, remote, err := resolveRemote(cmd.Context(), cfg); err == nil {
			scope, scopeKey = config.ScopeRemote, remote.RemoteKey()
		}
	}

	cfg.Set(scope, scopeKey, key, value)
	return cfg.Save()
}

func runConfigUnset(cmd *cobra.Command, args []string) error {
	key := args[0]
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	scope, scopeKey, explicit := configScope()
	if !explicit {
		if _, remote, err := resolveRemote(cmd.Context(), cfg); err == nil {
			scope, scopeKey = config.ScopeRemote, remote.RemoteKey()
		}
	}

	if !cfg.Unset(scope, scopeKey, key) {
		return fmt.Errorf("key %q is not set in this scope", key)
	}
	return cfg.Save()
}

func runConfigEdit(cmd *cobra.Command, args []string) error {
	paths := config.DefaultPaths()
	if err := paths.EnsureDirectories(); err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	configured, _ := cfg.EffectiveGlobal(config.KeyEditorCommand)
	command, err := editor.Command(configured)
	if err != nil {
		return err
	}

	c := exec.CommandContext(cmd.Context(), command[0], append(command[1:], paths.ConfigFile())...)
	c.Stdin = os.Stdin
	c.Stdout = os.Stdout
	c.Stderr = os.Stderr
	return c.Run()
}
