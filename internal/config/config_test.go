package config

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/san-kum/offsetctl/internal/panel"
	"github.com/san-kum/offsetctl/internal/tracker"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config must validate: %v", err)
	}
	if cfg.Dt <= 0 {
		t.Error("dt should be positive")
	}
	if cfg.Order[0] != "cam" {
		t.Errorf("cam must own the surface, order starts with %s", cfg.Order[0])
	}
	if !cfg.Roles["cam"].SnapOnArrival {
		t.Error("cam role should snap on arrival")
	}
	if cfg.Roles["support"].SnapOnArrival {
		t.Error("support role should hold short of target")
	}
	if cfg.PollTimeout() != 10*time.Millisecond {
		t.Errorf("expected 10ms poll timeout, got %v", cfg.PollTimeout())
	}
}

func TestValidateFailures(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero dt", func(c *Config) { c.Dt = 0 }},
		{"negative duration", func(c *Config) { c.Duration = -1 }},
		{"negative start", func(c *Config) { c.StartTime = -0.5 }},
		{"zero poll", func(c *Config) { c.PollMs = 0 }},
		{"empty order", func(c *Config) { c.Order = nil }},
		{"unknown role in order", func(c *Config) { c.Order = []string{"winch"} }},
		{"unconfigured role", func(c *Config) { delete(c.Roles, "support") }},
		{"bad rate", func(c *Config) {
			rc := c.Roles["cam"]
			rc.MaxRate = -1
			c.Roles["cam"] = rc
		}},
		{"bad schedule role", func(c *Config) {
			c.Schedule = []panel.Move{{At: 1, Role: "winch", Value: 2}}
		}},
	}

	for _, tc := range cases {
		cfg := DefaultConfig()
		tc.mutate(cfg)
		if err := cfg.Validate(); err == nil {
			t.Errorf("%s: expected validation error", tc.name)
		}
	}
}

func TestValidateWrapsTrackerErrors(t *testing.T) {
	cfg := DefaultConfig()
	rc := cfg.Roles["cam"]
	rc.MaxRate = -1
	cfg.Roles["cam"] = rc

	if err := cfg.Validate(); !errors.Is(err, tracker.ErrInvalidRate) {
		t.Errorf("expected ErrInvalidRate, got %v", err)
	}
}

func TestLoadSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "offsetctl.yaml")

	cfg := DefaultConfig()
	cfg.Duration = 12.5
	cfg.Schedule = []panel.Move{{At: 2, Role: "support", Value: 1.25}}

	if err := Save(path, cfg); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if loaded.Duration != 12.5 {
		t.Errorf("expected duration 12.5, got %f", loaded.Duration)
	}
	if len(loaded.Schedule) != 1 || loaded.Schedule[0].Value != 1.25 {
		t.Errorf("schedule not preserved: %+v", loaded.Schedule)
	}
	if loaded.Roles["cam"].Scale != 0.001 {
		t.Errorf("cam scale not preserved: %v", loaded.Roles["cam"].Scale)
	}
}

func TestParsedOrder(t *testing.T) {
	cfg := DefaultConfig()
	order, err := cfg.ParsedOrder()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(order) != 2 || order[0] != tracker.RoleCam || order[1] != tracker.RoleSupport {
		t.Errorf("unexpected order: %v", order)
	}
}

func TestGetPreset(t *testing.T) {
	cfg := GetPreset("bench")
	if cfg == nil {
		t.Fatal("expected bench preset")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("bench preset must validate: %v", err)
	}
	if len(cfg.Schedule) == 0 {
		t.Error("bench preset should carry a schedule")
	}

	if GetPreset("nonexistent") != nil {
		t.Error("expected nil for unknown preset")
	}
}

func TestListPresets(t *testing.T) {
	names := ListPresets()
	if len(names) == 0 {
		t.Fatal("expected presets")
	}
	for i := 1; i < len(names); i++ {
		if names[i-1] > names[i] {
			t.Errorf("presets not sorted: %v", names)
		}
	}
}
