// Package config loads and validates the gate.config.yml file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"gopkg.in/yaml.v3"
)

// FileName is the default config file name, looked up from the working
// directory upward.
const FileName = "gate.config.yml"

// Default values applied when the file leaves a field unset.
const (
	DefaultTimeout      = 60 * time.Second
	DefaultLogTailLines = 50
)

// Config holds a validated gate configuration. It is read-only once loaded.
type Config struct {
	Version int                       `json:"version"`
	Phases  map[string][]string       `json:"phases"`
	Gates   map[string]GateDefinition `json:"gates"`
	Options Options                   `json:"options"`
}

// GateDefinition describes a single external verification command.
type GateDefinition struct {
	Command string            `json:"command"`
	Timeout int               `json:"timeout,omitempty"` // seconds
	Cwd     string            `json:"cwd,omitempty"`     // relative to the repo root
	Env     map[string]string `json:"env,omitempty"`     // merged over the inherited environment
}

// TimeoutDuration returns the configured timeout or the default.
func (g GateDefinition) TimeoutDuration() time.Duration {
	if g.Timeout > 0 {
		return time.Duration(g.Timeout) * time.Second
	}
	return DefaultTimeout
}

// WorkDir returns the directory the gate runs in, resolved against root.
func (g GateDefinition) WorkDir(root string) string {
	if g.Cwd == "" || g.Cwd == "." {
		return root
	}
	return filepath.Join(root, g.Cwd)
}

// Options holds run-wide settings.
type Options struct {
	RawLogTailLines       int   `json:"logTailLines,omitempty"`
	RawStopOnFirstFailure *bool `json:"stopOnFirstFailure,omitempty"`
}

// LogTailLines returns how many trailing output lines are kept per gate.
func (c *Config) LogTailLines() int {
	if c.Options.RawLogTailLines > 0 {
		return c.Options.RawLogTailLines
	}
	return DefaultLogTailLines
}

// StopOnFirstFailure reports whether later gates are skipped once one fails.
func (c *Config) StopOnFirstFailure() bool {
	if c.Options.RawStopOnFirstFailure != nil {
		return *c.Options.RawStopOnFirstFailure
	}
	return true
}

// PhaseNames returns the configured phase names in sorted order.
func (c *Config) PhaseNames() []string {
	names := make([]string, 0, len(c.Phases))
	for name := range c.Phases {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// LoadResult holds the parsed config and the directory gates run from.
type LoadResult struct {
	Config   *Config
	Path     string // absolute path of the file that was read
	RepoRoot string // directory containing the config; workspace for explicit paths
}

// Load reads and validates the config. When path is empty, gate.config.yml
// is looked up from workspace upward and its directory becomes the repo root.
// When path is set it is resolved against workspace, which stays the root.
// All failures are returned as *Error.
func Load(workspace, path string) (*LoadResult, error) {
	workspace, err := filepath.Abs(workspace)
	if err != nil {
		return nil, Errorf(err, "resolving workspace: %v", err)
	}

	root := workspace
	if path == "" {
		path = filepath.Join(workspace, FileName)
		if found, ferr := findConfig(workspace); ferr == nil {
			path = found
			root = filepath.Dir(found)
		}
	} else if !filepath.IsAbs(path) {
		path = filepath.Join(workspace, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, Errorf(err, "Failed to read config file at '%s': %v", path, err)
	}

	cfg, err := Parse(data, filepath.Base(path))
	if err != nil {
		return nil, err
	}
	return &LoadResult{Config: cfg, Path: path, RepoRoot: root}, nil
}

// Parse decodes and validates config text. name is only used in messages.
func Parse(data []byte, name string) (*Config, error) {
	raw, err := Decode(data)
	if err != nil {
		return nil, Errorf(err, "Failed to parse YAML in '%s': %v", name, err)
	}
	cfg, err := Validate(raw)
	if err != nil {
		return nil, Errorf(err, "invalid %s at %v", name, err)
	}
	return cfg, nil
}

// Decode turns YAML text into a generic value.
func Decode(data []byte) (any, error) {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// findConfig walks upward from dir looking for gate.config.yml.
func findConfig(dir string) (string, error) {
	for {
		candidate := filepath.Join(dir, FileName)
		if st, err := os.Stat(candidate); err == nil && !st.IsDir() {
			return candidate, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("%s not found", FileName)
		}
		dir = parent
	}
}
