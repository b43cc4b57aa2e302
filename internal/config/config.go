package config

import (
	"fmt"
	"os"
	"time"

	"github.com/san-kum/offsetctl/internal/panel"
	"github.com/san-kum/offsetctl/internal/tracker"
	"gopkg.in/yaml.v3"
)

const (
	DefaultDt          = 0.02
	DefaultDuration    = 60.0
	DefaultStartTime   = 1.0
	DefaultPollMs      = 10
	DefaultCamMax      = 150.0
	DefaultCamRate     = 0.02
	DefaultSupportMax  = 3.0
	DefaultSupportRate = 0.30
)

type Config struct {
	Dt        float64                       `yaml:"dt"`
	Duration  float64                       `yaml:"duration"`
	StartTime float64                       `yaml:"start_time"`
	PollMs    int                           `yaml:"poll_timeout_ms"`
	Order     []string                      `yaml:"order"`
	Roles     map[string]tracker.RoleConfig `yaml:"roles"`
	Schedule  []panel.Move                  `yaml:"schedule"`
}

// DefaultConfig mirrors the slider panel the module was built around: a cam
// offset in mm that snaps on arrival and a support offset in m that holds
// short of its target. The cam role is first in the order and owns the
// control surface.
func DefaultConfig() *Config {
	return &Config{
		Dt:        DefaultDt,
		Duration:  DefaultDuration,
		StartTime: DefaultStartTime,
		PollMs:    DefaultPollMs,
		Order:     []string{"cam", "support"},
		Roles: map[string]tracker.RoleConfig{
			"cam": {
				Label:         "cam offset (mm)",
				Object:        "ShaftOffset-Controlled",
				Min:           0,
				Max:           DefaultCamMax,
				Resolution:    1,
				Scale:         0.001,
				MaxRate:       DefaultCamRate,
				SnapOnArrival: true,
			},
			"support": {
				Label:         "support offset (m)",
				Object:        "MoveSupport-Controlled",
				Min:           0,
				Max:           DefaultSupportMax,
				Resolution:    0.01,
				Scale:         1,
				MaxRate:       DefaultSupportRate,
				SnapOnArrival: false,
			},
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate fails fast on the first configuration problem. Nothing is
// silently defaulted past this point.
func (c *Config) Validate() error {
	if c.Dt <= 0 {
		return fmt.Errorf("dt must be positive, got %f", c.Dt)
	}
	if c.Duration <= 0 {
		return fmt.Errorf("duration must be positive, got %f", c.Duration)
	}
	if c.StartTime < 0 {
		return fmt.Errorf("start_time must not be negative, got %f", c.StartTime)
	}
	if c.PollMs <= 0 {
		return fmt.Errorf("poll_timeout_ms must be positive, got %d", c.PollMs)
	}
	if len(c.Order) == 0 {
		return fmt.Errorf("order must name at least the surface-owning role")
	}

	for _, name := range c.Order {
		role, err := tracker.ParseRole(name)
		if err != nil {
			return err
		}
		rc, ok := c.Roles[name]
		if !ok {
			return fmt.Errorf("%w: %q listed in order but not configured", tracker.ErrUnknownRole, name)
		}
		if err := rc.Validate(); err != nil {
			return fmt.Errorf("role %s: %w", role, err)
		}
	}

	for _, m := range c.Schedule {
		if _, err := tracker.ParseRole(m.Role); err != nil {
			return fmt.Errorf("schedule entry at t=%f: %w", m.At, err)
		}
	}

	return nil
}

// ParsedOrder returns the declared per-step invocation order. The first role
// owns the control surface.
func (c *Config) ParsedOrder() ([]tracker.Role, error) {
	order := make([]tracker.Role, 0, len(c.Order))
	for _, name := range c.Order {
		role, err := tracker.ParseRole(name)
		if err != nil {
			return nil, err
		}
		order = append(order, role)
	}
	return order, nil
}

// RoleConfigs keys the configured roles by parsed Role.
func (c *Config) RoleConfigs() (map[tracker.Role]tracker.RoleConfig, error) {
	out := make(map[tracker.Role]tracker.RoleConfig, len(c.Roles))
	for name, rc := range c.Roles {
		role, err := tracker.ParseRole(name)
		if err != nil {
			return nil, err
		}
		out[role] = rc
	}
	return out, nil
}

// PollTimeout returns the bounded wait used when polling the surface.
func (c *Config) PollTimeout() time.Duration {
	return time.Duration(c.PollMs) * time.Millisecond
}
