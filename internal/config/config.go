package config

import (
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/hardgas/internal/dynamo"
	"github.com/san-kum/hardgas/internal/physics"
	"github.com/san-kum/hardgas/internal/sim"
)

const (
	DefaultWidth       = 1.0
	DefaultHeight      = 1.0
	DefaultParticles   = 100
	DefaultRadius      = 0.001
	DefaultVMax        = 0.4
	DefaultDt          = 0.002
	DefaultDuration    = 100.0
	DefaultSeed        = 45
	DefaultSampleEvery = 1000
)

type Config struct {
	Width         float64 `yaml:"width"`
	Height        float64 `yaml:"height"`
	Particles     int     `yaml:"particles"`
	Radius        float64 `yaml:"radius"`
	Mass          float64 `yaml:"mass"`
	VMax          float64 `yaml:"vmax"`
	Dt            float64 `yaml:"dt"`
	Duration      float64 `yaml:"duration"`
	Seed          int64   `yaml:"seed"`
	SampleEvery   int     `yaml:"sample_every"`
	SnapshotEvery int     `yaml:"snapshot_every"`
	MaxAttempts   int     `yaml:"max_attempts"`
}

func DefaultConfig() *Config {
	return &Config{
		Width:       DefaultWidth,
		Height:      DefaultHeight,
		Particles:   DefaultParticles,
		Radius:      DefaultRadius,
		Mass:        physics.DefaultMass,
		VMax:        DefaultVMax,
		Dt:          DefaultDt,
		Duration:    DefaultDuration,
		Seed:        DefaultSeed,
		SampleEvery: DefaultSampleEvery,
		MaxAttempts: physics.DefaultMaxAttempts,
	}
}

func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if err := Overlay(path, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Overlay replaces the fields of cfg that the file at path sets.
func Overlay(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks every field a run depends on, including whether the
// requested population can physically fit the box.
func (c *Config) Validate() error {
	switch {
	case !(c.Width > 0) || !(c.Height > 0) || math.IsInf(c.Width, 0) || math.IsInf(c.Height, 0):
		return fmt.Errorf("%w: box extents must be positive, got %gx%g", dynamo.ErrParameterBounds, c.Width, c.Height)
	case c.Particles <= 0:
		return fmt.Errorf("%w: particles must be positive, got %d", dynamo.ErrParameterBounds, c.Particles)
	case !(c.Radius > 0):
		return fmt.Errorf("%w: radius must be positive, got %g", dynamo.ErrParameterBounds, c.Radius)
	case !(c.Mass > 0) || math.IsInf(c.Mass, 0):
		return fmt.Errorf("%w: mass must be positive and finite, got %g", dynamo.ErrParameterBounds, c.Mass)
	case !(c.VMax >= 0) || math.IsInf(c.VMax, 0):
		return fmt.Errorf("%w: vmax must be non-negative and finite, got %g", dynamo.ErrParameterBounds, c.VMax)
	case !(c.Dt > 0):
		return fmt.Errorf("%w: dt must be positive, got %g", dynamo.ErrParameterBounds, c.Dt)
	case !(c.Duration > 0):
		return fmt.Errorf("%w: duration must be positive, got %g", dynamo.ErrParameterBounds, c.Duration)
	case c.SampleEvery <= 0:
		return fmt.Errorf("%w: sample_every must be positive, got %d", dynamo.ErrParameterBounds, c.SampleEvery)
	case c.SnapshotEvery < 0:
		return fmt.Errorf("%w: snapshot_every must not be negative, got %d", dynamo.ErrParameterBounds, c.SnapshotEvery)
	case 2*c.Radius > c.Width || 2*c.Radius > c.Height:
		return fmt.Errorf("%w: radius %g is too large for a %gx%g box", dynamo.ErrParameterBounds, c.Radius, c.Width, c.Height)
	case float64(c.Particles)*math.Pi*c.Radius*c.Radius > c.Width*c.Height:
		return fmt.Errorf("%w: %d discs of radius %g exceed the box area", dynamo.ErrParameterBounds, c.Particles, c.Radius)
	}
	return nil
}

// Steps is the number of whole steps that fit in Duration.
func (c *Config) Steps() int {
	return int(math.Round(c.Duration / c.Dt))
}

func (c *Config) SimConfig() sim.Config {
	return sim.Config{
		Dt:            c.Dt,
		Steps:         c.Steps(),
		SampleEvery:   c.SampleEvery,
		SnapshotEvery: c.SnapshotEvery,
		ValidateState: true,
	}
}

// NewBox builds an empty box carrying the configured mass and placement
// budget.
func (c *Config) NewBox() (*physics.Box, error) {
	box, err := physics.NewBox(c.Width, c.Height)
	if err != nil {
		return nil, err
	}
	box.Mass = c.Mass
	if c.MaxAttempts > 0 {
		box.MaxAttempts = c.MaxAttempts
	}
	return box, nil
}

// Populate builds a box and fills it from seed.
func (c *Config) Populate(seed int64) (*physics.Box, error) {
	box, err := c.NewBox()
	if err != nil {
		return nil, err
	}
	if err := box.InitializeRandom(c.Particles, c.Radius, c.VMax, seed); err != nil {
		return nil, err
	}
	return box, nil
}

func (c *Config) Clone() *Config {
	cp := *c
	return &cp
}
