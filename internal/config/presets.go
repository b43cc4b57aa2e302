package config

import (
	"sort"

	"github.com/san-kum/offsetctl/internal/panel"
)

// Presets are named run configurations for the standalone harness.
var presets = map[string]func() *Config{
	"bench":  benchPreset,
	"gentle": gentlePreset,
}

// GetPreset returns a named preset, or nil if unknown.
func GetPreset(name string) *Config {
	if f, ok := presets[name]; ok {
		return f()
	}
	return nil
}

// ListPresets returns preset names in sorted order.
func ListPresets() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// benchPreset drives both sliders through one large excursion each.
func benchPreset() *Config {
	cfg := DefaultConfig()
	cfg.Duration = 30
	cfg.Schedule = []panel.Move{
		{At: 1.0, Role: "cam", Value: 50},
		{At: 2.0, Role: "support", Value: 1.5},
		{At: 15.0, Role: "cam", Value: 0},
	}
	return cfg
}

// gentlePreset halves the rates for models that need a softer approach.
func gentlePreset() *Config {
	cfg := DefaultConfig()
	for name, rc := range cfg.Roles {
		rc.MaxRate /= 2
		cfg.Roles[name] = rc
	}
	cfg.Schedule = []panel.Move{
		{At: 1.0, Role: "cam", Value: 25},
		{At: 1.0, Role: "support", Value: 0.75},
	}
	return cfg
}
