// Package project provides project-level configuration and source document
// discovery for nbweave runs.
package project

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/dhruv-naik/nbweave/core"
)

// ConfigFile is the project configuration filename looked up in the
// project directory.
const ConfigFile = "nbweave.yml"

// Config is the nbweave.yml project configuration. Flags override it.
type Config struct {
	// OutputDir receives downloaded sources and their artifacts.
	// Defaults to ".nbweave".
	OutputDir string `yaml:"output-dir"`

	// Keep lists render kinds preserved after a run, in addition to the
	// preview (always kept). Valid values: structured-embed, executed-snapshot.
	Keep []string `yaml:"keep"`

	// DownloadResources enables downloading remote images referenced by
	// source documents as local resource files.
	DownloadResources bool `yaml:"download-resources"`

	// LogLevel is one of debug, info, warn, error. Defaults to info.
	LogLevel string `yaml:"log-level"`
}

// Default returns the configuration used when no nbweave.yml exists.
func Default() *Config {
	return &Config{
		OutputDir: ".nbweave",
		LogLevel:  "info",
	}
}

// Load reads nbweave.yml from dir. A missing file yields Default() and no
// error; a malformed file is an error.
func Load(dir string) (*Config, error) {
	path := filepath.Join(dir, ConfigFile)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if cfg.OutputDir == "" {
		cfg.OutputDir = ".nbweave"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// KeepKinds returns the configured keep list as render kinds.
func (c *Config) KeepKinds() []core.RenderKind {
	kinds := make([]core.RenderKind, 0, len(c.Keep))
	for _, k := range c.Keep {
		kinds = append(kinds, core.RenderKind(k))
	}
	return kinds
}

func (c *Config) validate() error {
	valid := map[string]bool{
		string(core.KindStructuredEmbed):  true,
		string(core.KindExecutedSnapshot): true,
		string(core.KindPreview):          true,
	}
	for _, k := range c.Keep {
		if !valid[k] {
			return fmt.Errorf("unknown render kind %q in keep list", k)
		}
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log-level %q", c.LogLevel)
	}
	return nil
}
