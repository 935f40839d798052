package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/runger/git-forge/internal/git"
)

// Well-known keys. Any key is accepted; these are the ones the CLI reads.
const (
	KeyForgeType      = "forge-type"
	KeyEditorCommand  = "editor-command"
	KeyBrowserCommand = "browser-command"
	KeyDefaultRemote  = "default-remote"
	KeyPRTarget       = "pr/create/target"
	KeyPageSize       = "page-size"
)

// Scope selects which layer of the configuration a get or set applies to.
type Scope int

const (
	// ScopeGlobal applies to every repository.
	ScopeGlobal Scope = iota
	// ScopeHost applies to all repositories on one forge host.
	ScopeHost
	// ScopeRemote applies to a single repository.
	ScopeRemote
)

// Config represents the git-forge configuration. Values are layered: a
// remote-scoped entry wins over a host-scoped one, which wins over a
// global one.
type Config struct {
	Global  map[string]string            `yaml:"global,omitempty"`
	Hosts   map[string]map[string]string `yaml:"hosts,omitempty"`
	Remotes map[string]map[string]string `yaml:"remotes,omitempty"`
}

// Load loads configuration from the default path.
func Load() (*Config, error) {
	paths := DefaultPaths()
	return LoadFromFile(paths.ConfigFile())
}

// LoadFromFile loads configuration from the specified file.
// If the file doesn't exist, returns an empty configuration.
func LoadFromFile(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return cfg, nil
}

// Save saves the configuration to the default path.
func (c *Config) Save() error {
	paths := DefaultPaths()
	return c.SaveToFile(paths.ConfigFile())
}

// SaveToFile saves the configuration to the specified file.
func (c *Config) SaveToFile(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Effective resolves a key for a remote, walking scopes from most to least
// specific (remote, host, global) and trying shorter path variants of the
// key at each scope, so "pr/create/editor" falls back to "pr/editor" and
// then "editor".
func (c *Config) Effective(key string, remote git.Remote) (string, bool) {
	scopes := []map[string]string{
		c.Remotes[remote.RemoteKey()],
		c.Hosts[remote.HostKey()],
		c.Global,
	}
	for _, scope := range scopes {
		if scope == nil {
			continue
		}
		for _, variant := range keyVariants(key) {
			if v, ok := scope[variant]; ok {
				return v, true
			}
		}
	}
	return "", false
}

// EffectiveGlobal resolves a key without any remote context, so only the
// global scope applies.
func (c *Config) EffectiveGlobal(key string) (string, bool) {
	for _, variant := range keyVariants(key) {
		if v, ok := c.Global[variant]; ok {
			return v, true
		}
	}
	return "", false
}

// Get returns the value stored at exactly this key and scope, without any
// fallback.
func (c *Config) Get(scope Scope, scopeKey, key string) (string, bool) {
	m := c.scopeMap(scope, scopeKey, false)
	if m == nil {
		return "", false
	}
	v, ok := m[key]
	return v, ok
}

// Set stores a value at the given key and scope.
func (c *Config) Set(scope Scope, scopeKey, key, value string) {
	c.scopeMap(scope, scopeKey, true)[key] = value
}

// Unset removes a key from the given scope. It reports whether the key
// existed.
func (c *Config) Unset(scope Scope, scopeKey, key string) bool {
	m := c.scopeMap(scope, scopeKey, false)
	if m == nil {
		return false
	}
	_, ok := m[key]
	delete(m, key)
	c.dropEmptyScopes()
	return ok
}

func (c *Config) scopeMap(scope Scope, scopeKey string, create bool) map[string]string {
	switch scope {
	case ScopeGlobal:
		if c.Global == nil && create {
			c.Global = map[string]string{}
		}
		return c.Global
	case ScopeHost:
		return nestedScope(&c.Hosts, scopeKey, create)
	case ScopeRemote:
		return nestedScope(&c.Remotes, scopeKey, create)
	}
	return nil
}

func nestedScope(scopes *map[string]map[string]string, key string, create bool) map[string]string {
	m := (*scopes)[key]
	if m == nil && create {
		if *scopes == nil {
			*scopes = map[string]map[string]string{}
		}
		m = map[string]string{}
		(*scopes)[key] = m
	}
	return m
}

// dropEmptyScopes removes host and remote entries left without any keys so
// they do not linger in the saved YAML.
func (c *Config) dropEmptyScopes() {
	for k, m := range c.Hosts {
		if len(m) == 0 {
			delete(c.Hosts, k)
		}
	}
	for k, m := range c.Remotes {
		if len(m) == 0 {
			delete(c.Remotes, k)
		}
	}
}

// keyVariants expands "a/b/c" into ["a/b/c", "a/c", "c"]: each variant
// drops one more intermediate path segment while keeping the final one.
func keyVariants(key string) []string {
	parts := strings.Split(key, "/")
	if len(parts) == 1 {
		return []string{key}
	}
	variants := make([]string, 0, len(parts))
	last := parts[len(parts)-1]
	for i := len(parts) - 1; i >= 1; i-- {
		variant := strings.Join(append(append([]string{}, parts[:i]...), last), "/")
		variants = append(variants, variant)
	}
	variants = append(variants, last)
	return variants
}
