package tracker

import (
	"errors"
	"testing"
)

func TestParseRole(t *testing.T) {
	cases := []struct {
		name string
		want Role
	}{
		{"cam", RoleCam},
		{"support", RoleSupport},
	}

	for _, tc := range cases {
		role, err := ParseRole(tc.name)
		if err != nil {
			t.Errorf("%s: unexpected error: %v", tc.name, err)
		}
		if role != tc.want {
			t.Errorf("%s: expected %v, got %v", tc.name, tc.want, role)
		}
		if role.String() != tc.name {
			t.Errorf("round trip: expected %q, got %q", tc.name, role.String())
		}
	}
}

func TestParseRoleUnknown(t *testing.T) {
	_, err := ParseRole("winch")
	if !errors.Is(err, ErrUnknownRole) {
		t.Errorf("expected ErrUnknownRole, got %v", err)
	}
}

func TestToPosition(t *testing.T) {
	cam := RoleConfig{Scale: 0.001}
	if got := cam.ToPosition(150); got != 0.150 {
		t.Errorf("expected 0.150 m for 150 mm, got %v", got)
	}

	// zero scale means slider units are position units
	support := RoleConfig{}
	if got := support.ToPosition(2.5); got != 2.5 {
		t.Errorf("expected identity scale, got %v", got)
	}
}
