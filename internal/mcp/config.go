// Package mcp connects to the MCP servers named by a benchmark config and
// exposes their tools to eino agents.
package mcp

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/bytedance/sonic"
)

// ServerConfig describes one server. Command-based servers speak stdio;
// URL-based servers use streamable HTTP, or SSE when Type is "sse".
type ServerConfig struct {
	Command string            `json:"command,omitempty"`
	Args    []string          `json:"args,omitempty"`
	Env     map[string]string `json:"env,omitempty"`
	Type    string            `json:"type,omitempty"`
	URL     string            `json:"url,omitempty"`
	Headers map[string]string `json:"headers,omitempty"`
}

// Config is the content of configs/<name>.json.
type Config struct {
	ConfigName  string                  `json:"config_name"`
	Description string                  `json:"description"`
	MCPServers  map[string]ServerConfig `json:"mcp_servers"`
}

// ServerNames returns the configured server names, sorted.
func (c *Config) ServerNames() []string {
	names := make([]string, 0, len(c.MCPServers))
	for n := range c.MCPServers {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// LoadConfig reads <dir>/<name>.json.
func LoadConfig(dir, name string) (*Config, error) {
	path := filepath.Join(dir, name+".json")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read MCP config %s: %w", path, err)
	}
	var cfg Config
	if err := sonic.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse MCP config %s: %w", path, err)
	}
	if cfg.ConfigName == "" {
		cfg.ConfigName = name
	}
	if cfg.MCPServers == nil {
		cfg.MCPServers = map[string]ServerConfig{}
	}
	return &cfg, nil
}

// ListConfigs returns the config names found in dir, sorted.
func ListConfigs(dir string) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(matches))
	for _, m := range matches {
		names = append(names, strings.TrimSuffix(filepath.Base(m), ".json"))
	}
	sort.Strings(names)
	return names, nil
}

var envTemplate = regexp.MustCompile(`\$\{(\w+)\}`)

// LookupFunc finds an environment variable. os.LookupEnv satisfies it.
type LookupFunc func(string) (string, bool)

// MissingEnv lists every ${VAR} referenced by env, headers or url that
// lookup cannot resolve to a non-empty value. The result is sorted.
func MissingEnv(cfg *Config, lookup LookupFunc) []string {
	missing := map[string]struct{}{}
	check := func(s string) {
		for _, m := range envTemplate.FindAllStringSubmatch(s, -1) {
			if v, ok := lookup(m[1]); !ok || v == "" {
				missing[m[1]] = struct{}{}
			}
		}
	}
	for _, s := range cfg.MCPServers {
		for _, v := range s.Env {
			check(v)
		}
		for _, v := range s.Headers {
			check(v)
		}
		check(s.URL)
	}
	out := make([]string, 0, len(missing))
	for v := range missing {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// Resolve returns a copy of cfg with every ${VAR} substituted.
func Resolve(cfg *Config, lookup LookupFunc) (*Config, error) {
	out := &Config{ConfigName: cfg.ConfigName, Description: cfg.Description, MCPServers: make(map[string]ServerConfig, len(cfg.MCPServers))}
	for name, s := range cfg.MCPServers {
		r, err := resolveServer(s, lookup)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve MCP server '%s': %w", name, err)
		}
		out.MCPServers[name] = r
	}
	return out, nil
}

func resolveServer(s ServerConfig, lookup LookupFunc) (ServerConfig, error) {
	var err error
	resolve := func(v string) string {
		return envTemplate.ReplaceAllStringFunc(v, func(m string) string {
			name := envTemplate.FindStringSubmatch(m)[1]
			val, ok := lookup(name)
			if (!ok || val == "") && err == nil {
				err = fmt.Errorf("environment variable %s is not set (required for MCP config)", name)
			}
			return val
		})
	}
	resolveMap := func(in map[string]string) map[string]string {
		if in == nil {
			return nil
		}
		out := make(map[string]string, len(in))
		for k, v := range in {
			out[k] = resolve(v)
		}
		return out
	}

	r := s
	r.Args = append([]string(nil), s.Args...)
	r.Env = resolveMap(s.Env)
	r.Headers = resolveMap(s.Headers)
	r.URL = resolve(s.URL)
	return r, err
}
