// Package suite drives the loops engine: configuration, workspace
// initialization, checksums, snapshots and result sinks.
package suite

import (
	_ "embed"
	"fmt"
	"math"
	"os"
	"slices"

	"github.com/ahmedtd/lcals/loops"
	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultConfigYAML []byte

type ChecksumConfig struct {
	Enabled bool `yaml:"enabled"`
	Samples int  `yaml:"samples"`
}

type ClassConfig struct {
	Length  int `yaml:"length"`
	Samples int `yaml:"samples"`
}

// Config describes one run of the suite.
type Config struct {
	Precision      string                 `yaml:"precision"`
	Variants       []string               `yaml:"variants"`
	Loops          []string               `yaml:"loops"`
	Passes         int                    `yaml:"passes"`
	SampleFraction float64                `yaml:"sample_fraction"`
	Checksum       ChecksumConfig         `yaml:"checksum"`
	SizeClasses    map[string]ClassConfig `yaml:"size_classes"`
	LoopWeights    map[string]float64     `yaml:"loop_weights"`
}

// DefaultConfig returns the embedded default configuration.
func DefaultConfig() Config {
	var cfg Config
	if err := yaml.Unmarshal(defaultConfigYAML, &cfg); err != nil {
		panic(fmt.Sprintf("embedded default config: %v", err))
	}
	return cfg
}

// ParseConfig overlays data on the default configuration and validates the
// result.
func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("while parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("while reading config file: %w", err)
	}
	return ParseConfig(data)
}

func (cfg Config) Validate() error {
	if cfg.Precision != "float32" && cfg.Precision != "float64" {
		return fmt.Errorf("invalid precision %q: want float32 or float64", cfg.Precision)
	}
	if len(cfg.Variants) == 0 {
		return fmt.Errorf("no variants configured")
	}
	if _, err := cfg.VariantList(); err != nil {
		return err
	}
	if _, err := cfg.LoopIDs(); err != nil {
		return err
	}
	if cfg.Passes < 1 {
		return fmt.Errorf("passes must be at least 1, got %d", cfg.Passes)
	}
	if !(cfg.SampleFraction > 0) || math.IsInf(cfg.SampleFraction, 0) {
		return fmt.Errorf("sample_fraction must be positive, got %v", cfg.SampleFraction)
	}
	if cfg.Checksum.Enabled && cfg.Checksum.Samples < 1 {
		return fmt.Errorf("checksum samples must be at least 1, got %d", cfg.Checksum.Samples)
	}

	for name, cc := range cfg.SizeClasses {
		if _, err := loops.ParseSizeClass(name); err != nil {
			return fmt.Errorf("in size_classes: %w", err)
		}
		if cc.Length < 0 {
			return fmt.Errorf("size class %s: negative length %d", name, cc.Length)
		}
		if cc.Samples < 1 {
			return fmt.Errorf("size class %s: samples must be at least 1, got %d", name, cc.Samples)
		}
	}
	for c := loops.SizeClass(0); c < loops.NumSizeClasses; c++ {
		if _, ok := cfg.SizeClasses[c.String()]; !ok {
			return fmt.Errorf("size class %s is not configured", c)
		}
	}

	for name, w := range cfg.LoopWeights {
		if _, err := loops.ParseLoopID(name); err != nil {
			return fmt.Errorf("in loop_weights: %w", err)
		}
		if !(w > 0) {
			return fmt.Errorf("loop weight %s must be positive, got %v", name, w)
		}
	}

	return nil
}

// VariantList parses Variants, dropping duplicates.
func (cfg Config) VariantList() ([]loops.Variant, error) {
	out := []loops.Variant{}
	for _, name := range cfg.Variants {
		v, err := loops.ParseVariant(name)
		if err != nil {
			return nil, fmt.Errorf("in variants: %w", err)
		}
		if !slices.Contains(out, v) {
			out = append(out, v)
		}
	}
	return out, nil
}

// LoopIDs parses Loops.  An empty result means every loop.
func (cfg Config) LoopIDs() ([]loops.LoopID, error) {
	out := []loops.LoopID{}
	for _, name := range cfg.Loops {
		id, err := loops.ParseLoopID(name)
		if err != nil {
			return nil, fmt.Errorf("in loops: %w", err)
		}
		if !slices.Contains(out, id) {
			out = append(out, id)
		}
	}
	slices.Sort(out)
	return out, nil
}

// Selection returns the run selection, indexed by LoopID.
func (cfg Config) Selection() ([]bool, error) {
	ids, err := cfg.LoopIDs()
	if err != nil {
		return nil, err
	}
	sel := make([]bool, loops.NumLoops)
	for id := range sel {
		sel[id] = len(ids) == 0 || slices.Contains(ids, loops.LoopID(id))
	}
	return sel, nil
}

// Samples is the configured sample count of loop id in class c: the class
// base count scaled by the loop weight and the sample fraction, at least 1.
func (cfg Config) Samples(id loops.LoopID, c loops.SizeClass) int {
	w, ok := cfg.LoopWeights[id.String()]
	if !ok {
		w = 1
	}
	base := cfg.SizeClasses[c.String()].Samples
	n := int(math.Round(float64(base) * w * cfg.SampleFraction))
	return max(n, 1)
}

// Stats builds one Stat per loop, indexed by LoopID.
func (cfg Config) Stats() []loops.Stat {
	stats := make([]loops.Stat, loops.NumLoops)
	for i := range stats {
		id := loops.LoopID(i)
		stats[i].ID = id
		for c := loops.SizeClass(0); c < loops.NumSizeClasses; c++ {
			stats[i].Length[c] = cfg.SizeClasses[c.String()].Length
			stats[i].SamplesPerPass[c] = cfg.Samples(id, c)
		}
	}
	return stats
}

// MaxLength is the workspace capacity the configuration needs.
func (cfg Config) MaxLength() int {
	n := 0
	for _, cc := range cfg.SizeClasses {
		n = max(n, cc.Length)
	}
	return n
}

func (cfg Config) RunConfig() loops.RunConfig {
	return loops.RunConfig{
		ChecksumMode:    cfg.Checksum.Enabled,
		ChecksumSamples: cfg.Checksum.Samples,
	}
}
