// Package config provides the configuration surface for scenepool tooling.
// The library itself is configured in code; this package backs the bench CLI
// and any embedding application that wants to drive pool pre-warm sizes and
// observability settings from a YAML file.
package config

import (
	"fmt"
	"time"
)

// Config is the root configuration document.
type Config struct {
	// Name identifies the run or deployment
	Name string `yaml:"name" json:"name"`

	// Pooling settings applied to the pool collection
	Pooling PoolingConfig `yaml:"pooling" json:"pooling"`

	// Observability settings for logging, metrics and tracing
	Observability ObservabilityConfig `yaml:"observability" json:"observability"`

	// Simulation settings for the bench command
	Simulation SimulationConfig `yaml:"simulation" json:"simulation"`
}

// PoolingConfig controls collection-wide pooling behavior.
type PoolingConfig struct {
	// DebugChecks enables extra re-validation passes (hook drift warnings)
	DebugChecks bool `yaml:"debug_checks" json:"debug_checks"`
	// PreWarm maps prototype name to the capacity ensured before the run
	PreWarm map[string]int `yaml:"pre_warm" json:"pre_warm"`
}

// ObservabilityConfig controls logging, metrics and tracing.
type ObservabilityConfig struct {
	// LogLevel sets logging verbosity (debug, info, warn, error)
	LogLevel string `yaml:"log_level" json:"log_level"`
	// Development switches the logger to a human-oriented console encoding
	Development bool `yaml:"development" json:"development"`
	// Encoding selects the log encoding (json or console)
	Encoding string `yaml:"encoding" json:"encoding"`
	// EnableMetrics activates prometheus collection
	EnableMetrics bool `yaml:"enable_metrics" json:"enable_metrics"`
	// EnableTracing activates otel span emission
	EnableTracing bool `yaml:"enable_tracing" json:"enable_tracing"`
	// TracingSampleRate controls trace sampling (0.0-1.0)
	TracingSampleRate float64 `yaml:"tracing_sample_rate" json:"tracing_sample_rate"`
}

// SimulationConfig drives the deterministic spawn/despawn simulation behind
// the bench command.
type SimulationConfig struct {
	// Seed makes runs reproducible
	Seed int64 `yaml:"seed" json:"seed"`
	// Frames is the number of simulated frames
	Frames int `yaml:"frames" json:"frames"`
	// SpawnsPerFrame is how many instances each frame checks out
	SpawnsPerFrame int `yaml:"spawns_per_frame" json:"spawns_per_frame"`
	// LifetimeFrames is how many frames a spawned instance lives before it
	// is returned
	LifetimeFrames int `yaml:"lifetime_frames" json:"lifetime_frames"`
	// CascadeEvery tears down a populated mount node (with the required
	// broadcast) every N frames; 0 disables cascades
	CascadeEvery int `yaml:"cascade_every" json:"cascade_every"`
	// FrameBudget caps wall time per simulated frame in the report
	FrameBudget time.Duration `yaml:"frame_budget" json:"frame_budget"`
	// Prototypes describes the entity templates the simulation spawns from
	Prototypes []PrototypeConfig `yaml:"prototypes" json:"prototypes"`
}

// PrototypeConfig describes one entity template.
type PrototypeConfig struct {
	// Name labels the prototype in stats and metrics
	Name string `yaml:"name" json:"name"`
	// Children is the number of child nodes under the prototype root
	Children int `yaml:"children" json:"children"`
	// Weight biases spawn selection toward this prototype
	Weight int `yaml:"weight" json:"weight"`
}

// NewDefault returns a Config with working defaults for a short bench run.
func NewDefault(name string) *Config {
	return &Config{
		Name: name,
		Pooling: PoolingConfig{
			DebugChecks: false,
			PreWarm:     map[string]int{},
		},
		Observability: ObservabilityConfig{
			LogLevel:          "info",
			Development:       false,
			Encoding:          "json",
			EnableMetrics:     true,
			EnableTracing:     false,
			TracingSampleRate: 0.1,
		},
		Simulation: SimulationConfig{
			Seed:           1,
			Frames:         600,
			SpawnsPerFrame: 8,
			LifetimeFrames: 30,
			CascadeEvery:   120,
			FrameBudget:    16 * time.Millisecond,
			Prototypes: []PrototypeConfig{
				{Name: "bullet", Children: 0, Weight: 4},
				{Name: "spark", Children: 2, Weight: 2},
				{Name: "drone", Children: 5, Weight: 1},
			},
		},
	}
}

// Validate checks required fields and value ranges. Call after loading to
// catch errors early.
func (c *Config) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("name is required")
	}
	if c.Simulation.Frames <= 0 {
		return fmt.Errorf("simulation.frames must be positive")
	}
	if c.Simulation.SpawnsPerFrame < 0 {
		return fmt.Errorf("simulation.spawns_per_frame cannot be negative")
	}
	if c.Simulation.LifetimeFrames <= 0 {
		return fmt.Errorf("simulation.lifetime_frames must be positive")
	}
	if c.Simulation.CascadeEvery < 0 {
		return fmt.Errorf("simulation.cascade_every cannot be negative")
	}
	if len(c.Simulation.Prototypes) == 0 {
		return fmt.Errorf("simulation.prototypes must not be empty")
	}
	seen := make(map[string]bool, len(c.Simulation.Prototypes))
	for _, proto := range c.Simulation.Prototypes {
		if proto.Name == "" {
			return fmt.Errorf("prototype name is required")
		}
		if seen[proto.Name] {
			return fmt.Errorf("duplicate prototype name %q", proto.Name)
		}
		seen[proto.Name] = true
		if proto.Children < 0 {
			return fmt.Errorf("prototype %q: children cannot be negative", proto.Name)
		}
		if proto.Weight < 0 {
			return fmt.Errorf("prototype %q: weight cannot be negative", proto.Name)
		}
	}
	for name, capacity := range c.Pooling.PreWarm {
		if !seen[name] {
			return fmt.Errorf("pre_warm references unknown prototype %q", name)
		}
		if capacity < 0 {
			return fmt.Errorf("pre_warm for %q cannot be negative", name)
		}
	}
	if rate := c.Observability.TracingSampleRate; rate < 0 || rate > 1 {
		return fmt.Errorf("tracing_sample_rate must be within [0, 1]")
	}
	return nil
}
