package app

import (
	"errors"
	"fmt"
	"regexp"
	"runtime"
	"strings"

	"github.com/specialistvlad/pyslotgen/internal/pyimpl"
	"golang.org/x/mod/module"
)

// Defaults applied by NewConfig to fields left empty.
const (
	DefaultStrategy  = "direct"
	DefaultSuffix    = "_pyslots"
	DefaultLogFormat = "text"
	DefaultLogLevel  = "info"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	Paths []string // manifest files or directories holding them

	Strategy string
	Crate    string // project-wide binding library import path
	Suffix   string // appended to the manifest stem to name generated files

	LogFormat string
	LogLevel  string
	Jobs      int

	// CheckOnly expands and reports without writing files.
	CheckOnly bool
}

var suffixPattern = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

// NewConfig fills defaults into cfg and validates it.
func NewConfig(cfg Config) (*Config, error) {
	if len(cfg.Paths) == 0 {
		return nil, errors.New("at least one manifest path is required")
	}
	for _, p := range cfg.Paths {
		if strings.TrimSpace(p) == "" {
			return nil, errors.New("manifest paths cannot be empty")
		}
	}

	if cfg.Strategy == "" {
		cfg.Strategy = DefaultStrategy
	}
	if _, err := pyimpl.ParseStrategy(cfg.Strategy); err != nil {
		return nil, err
	}
	cfg.Strategy = strings.ToLower(cfg.Strategy)

	if cfg.Crate != "" {
		if err := module.CheckImportPath(cfg.Crate); err != nil {
			return nil, fmt.Errorf("invalid crate: %w", err)
		}
	}

	if cfg.Suffix == "" {
		cfg.Suffix = DefaultSuffix
	}
	if !suffixPattern.MatchString(cfg.Suffix) {
		return nil, fmt.Errorf("invalid suffix %q: only letters, digits and underscores are allowed", cfg.Suffix)
	}

	if cfg.LogFormat == "" {
		cfg.LogFormat = DefaultLogFormat
	}
	cfg.LogFormat = strings.ToLower(cfg.LogFormat)
	if cfg.LogFormat != "text" && cfg.LogFormat != "json" {
		return nil, fmt.Errorf("invalid log format %q: must be 'text' or 'json'", cfg.LogFormat)
	}

	if cfg.LogLevel == "" {
		cfg.LogLevel = DefaultLogLevel
	}
	cfg.LogLevel = strings.ToLower(cfg.LogLevel)
	if _, ok := logLevels[cfg.LogLevel]; !ok {
		return nil, fmt.Errorf("invalid log level %q: must be 'debug', 'info', 'warn', or 'error'", cfg.LogLevel)
	}

	switch {
	case cfg.Jobs < 0:
		return nil, fmt.Errorf("jobs must not be negative, got %d", cfg.Jobs)
	case cfg.Jobs == 0:
		cfg.Jobs = runtime.GOMAXPROCS(0)
	}

	return &cfg, nil
}

// Settings returns the expansion settings selected by the configuration.
func (c *Config) Settings() pyimpl.Settings {
	strategy, err := pyimpl.ParseStrategy(c.Strategy)
	if err != nil {
		panic(fmt.Sprintf("unvalidated configuration: %v", err))
	}
	return pyimpl.Settings{Strategy: strategy, Crate: c.Crate}
}
