// Package config holds the runtime knobs for a digitnet run, loaded from
// YAML and adjusted by command-line overrides.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Config captures the runtime knobs for a training run.
type Config struct {
	DataDir         string  `yaml:"data_dir"`
	Synthetic       bool    `yaml:"synthetic"`
	MaxSamples      int     `yaml:"max_samples"`
	ValidationSplit float64 `yaml:"validation_split"`

	Epochs    int `yaml:"epochs"`
	BatchSize int `yaml:"batch_size"`

	Hidden []int  `yaml:"hidden"`
	Output string `yaml:"output"`

	Optimizer string  `yaml:"optimizer"`
	LR        float64 `yaml:"lr"`
	Momentum  float64 `yaml:"momentum"`

	Mean         float64 `yaml:"mean"`
	Std          float64 `yaml:"std"`
	ComputeStats bool    `yaml:"compute_stats"`

	Seed       uint64 `yaml:"seed"`
	LogEvery   int    `yaml:"log_every"`
	Checkpoint string `yaml:"checkpoint"`
}

// Overrides captures CLI supplied values. Zero values leave the config
// untouched.
type Overrides struct {
	DataDir    string
	Synthetic  bool
	MaxSamples int
	Epochs     int
	BatchSize  int
	Optimizer  string
	LR         float64
	Seed       uint64
	LogEvery   int
	Checkpoint string
}

// Default returns the configuration used when no file is given: an MLP
// 784-128-64-10 trained with SGD on MNIST.
func Default() *Config {
	return &Config{
		DataDir:         "data/mnist",
		ValidationSplit: 0.1,
		Epochs:          5,
		BatchSize:       64,
		Hidden:          []int{128, 64},
		Output:          "logits",
		Optimizer:       "sgd",
		LR:              0.01,
		Momentum:        0.9,
		Mean:            0.1307,
		Std:             0.3081,
		Seed:            42,
		LogEvery:        100,
	}
}

// Load reads and validates a Config from YAML. Keys missing from the file
// keep their Default values; unknown keys are an error.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	cfg, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse decodes YAML from r on top of Default without validating.
func Parse(r io.Reader) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return cfg, nil
}

// ApplyOverrides updates cfg using any non-zero override.
func (c *Config) ApplyOverrides(o Overrides) {
	if o.DataDir != "" {
		c.DataDir = o.DataDir
	}
	if o.Synthetic {
		c.Synthetic = true
	}
	if o.MaxSamples > 0 {
		c.MaxSamples = o.MaxSamples
	}
	if o.Epochs > 0 {
		c.Epochs = o.Epochs
	}
	if o.BatchSize > 0 {
		c.BatchSize = o.BatchSize
	}
	if o.Optimizer != "" {
		c.Optimizer = o.Optimizer
	}
	if o.LR > 0 {
		c.LR = o.LR
	}
	if o.Seed != 0 {
		c.Seed = o.Seed
	}
	if o.LogEvery > 0 {
		c.LogEvery = o.LogEvery
	}
	if o.Checkpoint != "" {
		c.Checkpoint = o.Checkpoint
	}
}

// Validate verifies the config is runnable.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}
	if !c.Synthetic && c.DataDir == "" {
		return errors.New("data_dir must be set unless synthetic is true")
	}
	if c.MaxSamples < 0 {
		return fmt.Errorf("max_samples must be >= 0 (got %d)", c.MaxSamples)
	}
	if c.ValidationSplit < 0 || c.ValidationSplit >= 1 {
		return fmt.Errorf("validation_split must be in [0, 1) (got %g)", c.ValidationSplit)
	}
	if c.Epochs < 0 {
		return fmt.Errorf("epochs must be >= 0 (got %d)", c.Epochs)
	}
	if c.BatchSize <= 0 {
		return fmt.Errorf("batch_size must be > 0 (got %d)", c.BatchSize)
	}
	for i, h := range c.Hidden {
		if h <= 0 {
			return fmt.Errorf("hidden[%d] must be > 0 (got %d)", i, h)
		}
	}
	switch c.Output {
	case "logits", "logsoftmax":
	default:
		return fmt.Errorf("output must be logits or logsoftmax (got %q)", c.Output)
	}
	switch c.Optimizer {
	case "sgd", "adam":
	default:
		return fmt.Errorf("optimizer must be sgd or adam (got %q)", c.Optimizer)
	}
	if c.LR <= 0 {
		return fmt.Errorf("lr must be > 0 (got %g)", c.LR)
	}
	if c.Momentum < 0 || c.Momentum >= 1 {
		return fmt.Errorf("momentum must be in [0, 1) (got %g)", c.Momentum)
	}
	if !c.ComputeStats && c.Std <= 0 {
		return fmt.Errorf("std must be > 0 (got %g)", c.Std)
	}
	if c.LogEvery <= 0 {
		c.LogEvery = 100
	}
	return nil
}
