package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Severity values accepted in rule configuration.
var validSeverities = map[string]bool{
	"error":   true,
	"warning": true,
	"info":    true,
	"off":     true,
}

// Config is the top-level configuration for tsdoc-lint
type Config struct {
	// ProjectName names the documentation root; defaults to the root
	// directory's base name
	ProjectName string `json:"projectName,omitempty"`

	// Include is a list of glob patterns selecting source files
	Include []string `json:"include,omitempty"`

	// Exclude is a list of glob patterns removed from the include set
	Exclude []string `json:"exclude,omitempty"`

	// FileModules treats every file as a module of its own, with the
	// file's leading comment block as its documentation
	FileModules *bool `json:"fileModules,omitempty"`

	// Lint contains linting rule configuration
	Lint LintConfig `json:"lint,omitempty"`

	// Analysis contains analysis options
	Analysis AnalysisConfig `json:"analysis,omitempty"`
}

// LintConfig contains linting configuration
type LintConfig struct {
	// Rules maps rule names to severity: "off", "info", "warning", "error"
	Rules map[string]string `json:"rules,omitempty"`

	// IgnorePatterns is a list of file patterns to skip linting entirely
	IgnorePatterns []string `json:"ignorePatterns,omitempty"`
}

// CacheConfig controls incremental indexing cache behavior
type CacheConfig struct {
	// Enabled turns on incremental cache usage
	Enabled *bool `json:"enabled,omitempty"`

	// Dir is the cache directory (relative to project root if not absolute)
	Dir string `json:"dir,omitempty"`
}

// AnalysisConfig contains analysis options
type AnalysisConfig struct {
	// MaxParallelFiles limits concurrent file processing (0 = auto)
	MaxParallelFiles int `json:"maxParallelFiles,omitempty"`

	// Cache controls incremental indexing cache behavior
	Cache CacheConfig `json:"cache,omitempty"`
}

// DefaultConfig returns a sensible default configuration
func DefaultConfig() *Config {
	return &Config{
		Include: []string{"**/*.ts", "**/*.tsx", "**/*.js"},
		Exclude: []string{"**/node_modules/**"},
		Lint: LintConfig{
			Rules:          map[string]string{},
			IgnorePatterns: []string{},
		},
		FileModules: boolPtr(true),
		Analysis: AnalysisConfig{
			MaxParallelFiles: 0, // auto
			Cache: CacheConfig{
				Enabled: boolPtr(true),
				Dir:     ".tsdoc_cache",
			},
		},
	}
}

func boolPtr(v bool) *bool {
	return &v
}

// Load finds and loads the configuration file
// Search order:
//  1. ./tsdoc_lint.json (current working directory)
//  2. ./.tsdoc_lint.json (current working directory)
//  3. <rootPath>/tsdoc_lint.json (if different from cwd)
//  4. ~/.config/tsdoc_lint/config.json
//
// Returns DefaultConfig if no config file is found
func Load(rootPath string) (*Config, error) {
	cwd, _ := os.Getwd()

	searchPaths := []string{
		filepath.Join(cwd, "tsdoc_lint.json"),
		filepath.Join(cwd, ".tsdoc_lint.json"),
	}

	if info, err := os.Stat(rootPath); err == nil && info.IsDir() {
		absRoot, _ := filepath.Abs(rootPath)
		if absRoot != cwd {
			searchPaths = append(searchPaths,
				filepath.Join(rootPath, "tsdoc_lint.json"),
				filepath.Join(rootPath, ".tsdoc_lint.json"),
			)
		}
	}

	if home, err := os.UserHomeDir(); err == nil {
		searchPaths = append(searchPaths, filepath.Join(home, ".config", "tsdoc_lint", "config.json"))
	}

	for _, path := range searchPaths {
		if _, err := os.Stat(path); err == nil {
			return LoadFile(path)
		}
	}

	return DefaultConfig(), nil
}

// LoadFile loads configuration from a specific file
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}

	return &cfg, nil
}

// applyDefaults fills in missing configuration with defaults
func (c *Config) applyDefaults() {
	if len(c.Include) == 0 {
		c.Include = []string{"**/*.ts", "**/*.tsx", "**/*.js"}
	}
	if c.Exclude == nil {
		c.Exclude = []string{"**/node_modules/**"}
	}
	if c.FileModules == nil {
		c.FileModules = boolPtr(true)
	}
	if c.Lint.Rules == nil {
		c.Lint.Rules = make(map[string]string)
	}
	if c.Analysis.Cache.Dir == "" {
		c.Analysis.Cache.Dir = ".tsdoc_cache"
	}
	if c.Analysis.Cache.Enabled == nil {
		c.Analysis.Cache.Enabled = boolPtr(true)
	}
}

func (c *Config) validate() error {
	for rule, severity := range c.Lint.Rules {
		if !validSeverities[severity] {
			return fmt.Errorf("rule %q has unknown severity %q (want error, warning, info, or off)", rule, severity)
		}
	}
	return nil
}

// Save writes the configuration to a file
func (c *Config) Save(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}

// GetRuleSeverity returns the severity for a rule, or the default if not configured
func (c *Config) GetRuleSeverity(rule string, defaultSeverity string) string {
	if severity, ok := c.Lint.Rules[rule]; ok {
		return severity
	}
	return defaultSeverity
}

// IsRuleEnabled returns true if the rule is not set to "off"
func (c *Config) IsRuleEnabled(rule string) bool {
	if severity, ok := c.Lint.Rules[rule]; ok {
		return severity != "off"
	}
	return true // enabled by default
}

// ShouldIgnoreFile checks if a file should be skipped entirely
func (c *Config) ShouldIgnoreFile(filePath string) bool {
	for _, pattern := range c.Lint.IgnorePatterns {
		if matchesPattern(filePath, pattern) {
			return true
		}
	}
	return false
}
