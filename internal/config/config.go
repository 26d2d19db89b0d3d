// Package config loads the optional YAML settings file.
//
// Every field can also be given on the command line; flags win over the
// file, and the file wins over built-in defaults.
package config

import (
	"fmt"
	"os"

	"github.com/andresmejia3/gestureprep/internal/dataset"
	"gopkg.in/yaml.v3"
)

// Config mirrors the settings file.
type Config struct {
	Root       string   `yaml:"root"`
	DisplayDir string   `yaml:"display_dir"`
	ProcessDir string   `yaml:"process_dir"`
	Classes    []string `yaml:"classes"`
	Tiers      []int    `yaml:"tiers"`
	Kernel     string   `yaml:"kernel"`
	Workers    int      `yaml:"-"` // read through fileConfig.Workers
	LogFile    string   `yaml:"log_file"`
	DB         string   `yaml:"db"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Root:       "samples",
		DisplayDir: dataset.DefaultDisplayDir,
		ProcessDir: dataset.DefaultProcessDir,
		Classes:    dataset.DefaultClasses(),
		Tiers:      dataset.DefaultTiers(),
		Kernel:     "linear",
		Workers:    1,
	}
}

// fileConfig is the on-disk form. Workers is a pointer so an explicit
// "workers: 0" (one per CPU) is distinguishable from an absent key.
type fileConfig struct {
	Config  `yaml:",inline"`
	Workers *int `yaml:"workers"`
}

// Load reads path over the defaults. Unknown keys are rejected so typos
// do not silently fall back to defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	f, err := os.Open(path)
	if err != nil {
		return cfg, fmt.Errorf("opening config: %w", err)
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	var file fileConfig
	if err := dec.Decode(&file); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}
	cfg.merge(file.Config)
	if file.Workers != nil {
		cfg.Workers = *file.Workers
	}
	return cfg, nil
}

func (c *Config) merge(o Config) {
	if o.Root != "" {
		c.Root = o.Root
	}
	if o.DisplayDir != "" {
		c.DisplayDir = o.DisplayDir
	}
	if o.ProcessDir != "" {
		c.ProcessDir = o.ProcessDir
	}
	if len(o.Classes) > 0 {
		c.Classes = o.Classes
	}
	if len(o.Tiers) > 0 {
		c.Tiers = o.Tiers
	}
	if o.Kernel != "" {
		c.Kernel = o.Kernel
	}
	if o.LogFile != "" {
		c.LogFile = o.LogFile
	}
	if o.DB != "" {
		c.DB = o.DB
	}
}

// Layout returns the dataset layout described by the settings.
func (c Config) Layout() dataset.Layout {
	return dataset.Layout{Root: c.Root, DisplayDir: c.DisplayDir, ProcessDir: c.ProcessDir}
}
