// Package config loads the optional .itr.yaml project file. The file
// lets a repository pin a database path, a default output format, and
// seed urgency weights without every agent passing flags.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"
)

// FileName is the project config file looked up from the working
// directory upward, the same walk the database search does.
const FileName = ".itr.yaml"

// Config is the root of a .itr.yaml file.
type Config struct {
	// DB overrides the database location. Environment and --db still
	// win over it.
	DB string `yaml:"db,omitempty"`
	// Format is the default output format when --format is not given:
	// compact, json or pretty.
	Format string `yaml:"format,omitempty"`
	// Urgency seeds stored weight overrides at init time. Keys are the
	// config names without the "urgency." prefix, e.g. "blocking" or
	// "priority.critical".
	Urgency map[string]float64 `yaml:"urgency,omitempty"`
}

// Load reads and parses the config file at the given path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", FileName, err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", FileName, err)
	}
	return &cfg, nil
}

// Find walks from startDir toward the filesystem root looking for a
// config file. Returns nil without error when there is none; a file
// that exists but cannot be parsed is an error, not a silent default.
func Find(startDir string) (*Config, error) {
	dir := startDir
	for {
		candidate := filepath.Join(dir, FileName)
		if _, err := os.Stat(candidate); err == nil {
			return Load(candidate)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return nil, nil
		}
		dir = parent
	}
}

// UrgencyEntry is one seed weight with its full config-table key.
type UrgencyEntry struct {
	Key   string
	Value float64
}

// UrgencyEntries returns the seed weights as full config-table keys in
// sorted order.
func (c *Config) UrgencyEntries() []UrgencyEntry {
	keys := make([]string, 0, len(c.Urgency))
	for k := range c.Urgency {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	entries := make([]UrgencyEntry, len(keys))
	for i, k := range keys {
		entries[i] = UrgencyEntry{Key: "urgency." + k, Value: c.Urgency[k]}
	}
	return entries
}
