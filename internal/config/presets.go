package config

import "sort"

var Presets = map[string]*Config{
	// The original run: a thousand sampling windows of a sparse gas.
	"reference": {
		Width: 1, Height: 1, Particles: 100, Radius: 0.001, Mass: 1, VMax: 0.4,
		Dt: 0.002, Duration: 100, Seed: 45, SampleEvery: 1000,
	},
	"dilute": {
		Width: 1, Height: 1, Particles: 50, Radius: 0.002, Mass: 1, VMax: 0.4,
		Dt: 0.002, Duration: 20, Seed: 45, SampleEvery: 500,
	},
	"dense": {
		Width: 1, Height: 1, Particles: 400, Radius: 0.01, Mass: 1, VMax: 0.4,
		Dt: 0.001, Duration: 20, Seed: 45, SampleEvery: 1000, SnapshotEvery: 100,
	},
	"tiny": {
		Width: 1, Height: 1, Particles: 10, Radius: 0.02, Mass: 1, VMax: 0.4,
		Dt: 0.002, Duration: 2, Seed: 45, SampleEvery: 100, SnapshotEvery: 10,
	},
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	p, ok := Presets[name]
	if !ok {
		return nil
	}
	cfg := p.Clone()
	if cfg.MaxAttempts == 0 {
		cfg.MaxAttempts = DefaultConfig().MaxAttempts
	}
	return cfg
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
