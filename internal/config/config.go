package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"github.com/gerunddev/jotdown/internal/highlight"
	"github.com/gerunddev/jotdown/internal/markup"
)

// Config represents the jotdown configuration
type Config struct {
	SourceDir        string        `json:"source_dir"`
	OutputDir        string        `json:"output_dir"`
	SourceExt        string        `json:"source_ext"`
	LogFile          string        `json:"log_file"`
	LogLevel         string        `json:"log_level,omitempty"`
	Interval         time.Duration `json:"-"` // Custom JSON handling below
	CodeMode         string        `json:"code_mode"`
	HighlightStyle   string        `json:"highlight_style,omitempty"`
	HighlightClasses bool          `json:"highlight_classes,omitempty"`
	Standalone       bool          `json:"standalone,omitempty"`
	ExcludePatterns  []string      `json:"exclude_patterns,omitempty"`
}

// fileConfig is the on-disk shape, with the interval as a duration string
type fileConfig struct {
	SourceDir        string   `json:"source_dir"`
	OutputDir        string   `json:"output_dir"`
	SourceExt        string   `json:"source_ext"`
	LogFile          string   `json:"log_file"`
	LogLevel         string   `json:"log_level,omitempty"`
	Interval         string   `json:"interval"`
	CodeMode         string   `json:"code_mode"`
	HighlightStyle   string   `json:"highlight_style,omitempty"`
	HighlightClasses bool     `json:"highlight_classes,omitempty"`
	Standalone       bool     `json:"standalone,omitempty"`
	ExcludePatterns  []string `json:"exclude_patterns,omitempty"`
}

// DefaultConfig returns default configuration
func DefaultConfig() *Config {
	home, _ := os.UserHomeDir()
	return &Config{
		SourceDir:       filepath.Join(home, "jotdown"),
		OutputDir:       filepath.Join(home, "jotdown", "site"),
		SourceExt:       ".jd",
		LogFile:         filepath.Join(os.TempDir(), "jotdown.log"),
		LogLevel:        "info",
		Interval:        5 * time.Second,
		CodeMode:        "paired",
		HighlightStyle:  highlight.DefaultStyle,
		ExcludePatterns: []string{},
	}
}

// ConfigPath returns the path to the config file
// Uses ~/.config on all platforms for consistency
// Can be overridden for testing
var ConfigPath = func() string {
	home, err := os.UserHomeDir()
	if err != nil {
		// Fallback to XDG if home dir unavailable
		return filepath.Join(xdg.ConfigHome, "jotdown", "config.json")
	}
	return filepath.Join(home, ".config", "jotdown", "config.json")
}

// StateFilePath returns the path to the build state file
// Uses platform-specific XDG data directory
// Can be overridden for testing
var StateFilePath = func() string {
	return filepath.Join(xdg.DataHome, "jotdown", "state.json")
}

// Load reads configuration from the config directory
func Load() (*Config, error) {
	data, err := os.ReadFile(ConfigPath())
	if err != nil {
		// Return default config if file doesn't exist
		if os.IsNotExist(err) {
			cfg := DefaultConfig()
			if err := cfg.ExpandPaths(); err != nil {
				return nil, fmt.Errorf("failed to expand paths: %w", err)
			}
			return cfg, nil
		}
		return nil, err
	}

	raw := fileConfig{Interval: DefaultConfig().Interval.String()}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	interval, err := time.ParseDuration(raw.Interval)
	if err != nil {
		return nil, fmt.Errorf("invalid interval format '%s': %w", raw.Interval, err)
	}

	cfg := &Config{
		SourceDir:        raw.SourceDir,
		OutputDir:        raw.OutputDir,
		SourceExt:        raw.SourceExt,
		LogFile:          raw.LogFile,
		LogLevel:         raw.LogLevel,
		Interval:         interval,
		CodeMode:         raw.CodeMode,
		HighlightStyle:   raw.HighlightStyle,
		HighlightClasses: raw.HighlightClasses,
		Standalone:       raw.Standalone,
		ExcludePatterns:  raw.ExcludePatterns,
	}
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	if err := cfg.ExpandPaths(); err != nil {
		return nil, fmt.Errorf("failed to expand paths: %w", err)
	}

	return cfg, nil
}

// applyDefaults fills optional fields left empty in the file
func (c *Config) applyDefaults() {
	if c.SourceExt == "" {
		c.SourceExt = ".jd"
	}
	if c.CodeMode == "" {
		c.CodeMode = "paired"
	}
	if c.HighlightStyle == "" {
		c.HighlightStyle = highlight.DefaultStyle
	}
	if c.ExcludePatterns == nil {
		c.ExcludePatterns = []string{}
	}
}

// Save writes configuration to the config directory
func (c *Config) Save() error {
	configPath := ConfigPath()

	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	raw := fileConfig{
		SourceDir:        c.SourceDir,
		OutputDir:        c.OutputDir,
		SourceExt:        c.SourceExt,
		LogFile:          c.LogFile,
		LogLevel:         c.LogLevel,
		Interval:         c.Interval.String(),
		CodeMode:         c.CodeMode,
		HighlightStyle:   c.HighlightStyle,
		HighlightClasses: c.HighlightClasses,
		Standalone:       c.Standalone,
		ExcludePatterns:  c.ExcludePatterns,
	}

	data, err := json.MarshalIndent(raw, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.SourceDir == "" {
		return fmt.Errorf("source_dir cannot be empty")
	}
	if c.OutputDir == "" {
		return fmt.Errorf("output_dir cannot be empty")
	}
	if c.SourceExt == "" || c.SourceExt[0] != '.' {
		return fmt.Errorf("source_ext must start with '.'")
	}
	if c.Interval <= 0 {
		return fmt.Errorf("interval must be positive")
	}
	if _, ok := markup.ParseCodeMode(c.CodeMode); !ok {
		return fmt.Errorf("invalid code_mode '%s': must be one of: paired, fenced", c.CodeMode)
	}
	for _, pattern := range c.ExcludePatterns {
		if _, err := filepath.Match(pattern, ""); err != nil {
			return fmt.Errorf("invalid exclude pattern '%s': %w", pattern, err)
		}
	}

	return nil
}

// Mode returns the configured backtick model
func (c *Config) Mode() markup.CodeMode {
	mode, _ := markup.ParseCodeMode(c.CodeMode)
	return mode
}

// ExpandPaths expands any ~ or relative paths to absolute paths
func (c *Config) ExpandPaths() error {
	var err error

	c.SourceDir, err = expandPath(c.SourceDir)
	if err != nil {
		return fmt.Errorf("failed to expand source_dir: %w", err)
	}

	c.OutputDir, err = expandPath(c.OutputDir)
	if err != nil {
		return fmt.Errorf("failed to expand output_dir: %w", err)
	}

	c.LogFile, err = expandPath(c.LogFile)
	if err != nil {
		return fmt.Errorf("failed to expand log_file: %w", err)
	}

	return nil
}

// expandPath expands ~ to home directory and converts to absolute path
func expandPath(path string) (string, error) {
	if path == "" {
		return path, nil
	}

	if path[0] == '~' {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		if len(path) == 1 {
			return homeDir, nil
		}
		path = filepath.Join(homeDir, path[1:])
	}

	return filepath.Abs(path)
}
