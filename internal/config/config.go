package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// FileName is the config file looked up in the working directory.
const FileName = ".ftreport.yml"

const (
	// FormatText prints one styled line per feature.
	FormatText = "text"
	// FormatJSON prints the report document itself.
	FormatJSON = "json"
)

// Config captures options sourced from the config file or flags.
type Config struct {
	Dir      string `yaml:"dir"`
	Database string `yaml:"database"`
	Reports  string `yaml:"reports"`
	LogLevel string `yaml:"log_level"`
	Format   string `yaml:"format"`
}

// Default returns the configuration used when no file or flags say otherwise.
func Default() Config {
	return Config{
		Dir:      ".ftreport",
		LogLevel: "info",
		Format:   FormatText,
	}
}

// Load reads path, or FileName when path is empty. A missing default
// file is not an error; a missing explicit file is.
func Load(path string) (Config, error) {
	cfg := Default()
	explicit := path != ""
	if !explicit {
		path = FileName
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !explicit {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config %q: %w", path, err)
	}

	var fileCfg Config
	if err := yaml.Unmarshal(data, &fileCfg); err != nil {
		return cfg, fmt.Errorf("parse config %q: %w", path, err)
	}
	cfg = merge(cfg, fileCfg)
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config %q: %w", path, err)
	}
	return cfg, nil
}

func merge(base, override Config) Config {
	out := base
	if override.Dir != "" {
		out.Dir = override.Dir
	}
	if override.Database != "" {
		out.Database = override.Database
	}
	if override.Reports != "" {
		out.Reports = override.Reports
	}
	if override.LogLevel != "" {
		out.LogLevel = override.LogLevel
	}
	if override.Format != "" {
		out.Format = override.Format
	}
	return out
}

// FlagValues carries CLI flags that override the file.
type FlagValues struct {
	Verbose bool
	Format  string
}

// ApplyFlags mutates cfg with flags that were set explicitly.
func ApplyFlags(cfg *Config, flags FlagValues) {
	if flags.Verbose {
		cfg.LogLevel = "debug"
	}
	if flags.Format != "" {
		cfg.Format = flags.Format
	}
}

func (c Config) Validate() error {
	if c.Format != FormatText && c.Format != FormatJSON {
		return fmt.Errorf("format must be %q or %q, got %q", FormatText, FormatJSON, c.Format)
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// DatabasePath is the history database location.
func (c Config) DatabasePath() string {
	if c.Database != "" {
		return c.Database
	}
	return filepath.Join(c.Dir, "ftreport.db")
}

// ReportsDir is where report documents are written and synced from.
func (c Config) ReportsDir() string {
	if c.Reports != "" {
		return c.Reports
	}
	return filepath.Join(c.Dir, "reports")
}

func (c Config) Level() (slog.Level, error) {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("unknown log level %q", c.LogLevel)
}
