package tracker

import "fmt"

// Role identifies one of the two tracked structural control points.
type Role int

const (
	// RoleCam is the primary offset (slider in mm, snaps on arrival).
	RoleCam Role = iota
	// RoleSupport is the secondary offset (slider in m, holds short of target).
	RoleSupport
)

var roleNames = map[Role]string{
	RoleCam:     "cam",
	RoleSupport: "support",
}

func (r Role) String() string {
	if name, ok := roleNames[r]; ok {
		return name
	}
	return fmt.Sprintf("role(%d)", int(r))
}

// ParseRole maps a configuration name to a Role.
func ParseRole(name string) (Role, error) {
	switch name {
	case "cam":
		return RoleCam, nil
	case "support":
		return RoleSupport, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownRole, name)
}

// Roles lists all known roles in declaration order.
func Roles() []Role {
	return []Role{RoleCam, RoleSupport}
}

// RoleConfig is the static configuration for one tracked role. Slider values
// are in engineering units; Scale converts them to position units before they
// reach the tracker (the cam slider reads in mm, positions are in m).
type RoleConfig struct {
	Label         string  `yaml:"label"`
	Object        string  `yaml:"object"`
	Min           float64 `yaml:"min"`
	Max           float64 `yaml:"max"`
	Resolution    float64 `yaml:"resolution"`
	Scale         float64 `yaml:"scale"`
	MaxRate       float64 `yaml:"max_rate"`
	SnapOnArrival bool    `yaml:"snap_on_arrival"`
}

// Validate checks the configuration, returning the first problem found.
func (c RoleConfig) Validate() error {
	if isBad(c.MaxRate) || c.MaxRate < 0 {
		return fmt.Errorf("%w: got %v", ErrInvalidRate, c.MaxRate)
	}
	if isBad(c.Min) || isBad(c.Max) || c.Min >= c.Max {
		return fmt.Errorf("%w: [%v, %v]", ErrInvalidBounds, c.Min, c.Max)
	}
	if isBad(c.Resolution) || c.Resolution <= 0 {
		return fmt.Errorf("%w: got %v", ErrInvalidResolution, c.Resolution)
	}
	return nil
}

// ToPosition converts a slider value to position units.
func (c RoleConfig) ToPosition(sliderValue float64) float64 {
	scale := c.Scale
	if scale == 0 {
		scale = 1
	}
	return sliderValue * scale
}
