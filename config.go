package motor

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// ErrInvalidConfig wraps every validation failure
var ErrInvalidConfig = errors.New("invalid locomotion config")

// Config is the static tuning of a Controller, read every tick and never written by it
type Config struct {
	// MoveSpeed in m/s
	MoveSpeed     float64   `yaml:"move_speed"`
	NormalizeMove bool      `yaml:"normalize_move"`
	MoveForceMode ForceMode `yaml:"move_force_mode"`
	GroundDrag    float64   `yaml:"ground_drag"`
	AirDrag       float64   `yaml:"air_drag"`

	RotateSpeed         float64   `yaml:"rotate_speed"`
	RotateForceMode     ForceMode `yaml:"rotate_force_mode"`
	AngularDrag         float64   `yaml:"angular_drag"`
	PureRotationPhysics bool      `yaml:"pure_rotation_physics"`

	GroundTolerance float64   `yaml:"ground_tolerance"`
	GroundUpForce   float64   `yaml:"ground_up_force"`
	GroundLayers    LayerMask `yaml:"ground_layers"`

	JumpHeight float64 `yaml:"jump_height"`
	// Gravity is the signed vertical acceleration, negative pulls down
	Gravity     float64 `yaml:"gravity"`
	AirFriction float64 `yaml:"air_friction"`

	CameraDistance       float64 `yaml:"camera_distance"`
	CameraSmoothing      float64 `yaml:"camera_smoothing"`
	ApplyCameraSmoothing bool    `yaml:"apply_camera_smoothing"`
	// FollowOffset is the camera target height above the body root
	FollowOffset float64 `yaml:"follow_offset"`

	ThirdPerson bool `yaml:"third_person"`
	Strafe      bool `yaml:"strafe"`
}

func DefaultConfig() Config {
	return Config{
		MoveSpeed:     5,
		NormalizeMove: true,
		MoveForceMode: ForceModeVelocityChange,
		GroundDrag:    5,
		AirDrag:       0.5,

		RotateSpeed:     15,
		RotateForceMode: ForceModeVelocityChange,
		AngularDrag:     5,

		GroundTolerance: 0.1,
		GroundUpForce:   1,
		GroundLayers:    AllLayers,

		JumpHeight:  1,
		Gravity:     -9.81,
		AirFriction: 20,

		CameraDistance:       10,
		CameraSmoothing:      5,
		ApplyCameraSmoothing: true,
		FollowOffset:         1.6,

		ThirdPerson: true,
	}
}

// TerminalVelocity is the largest vertical speed gravity may build up
func (c Config) TerminalVelocity() float64 {
	return math.Abs(c.Gravity) + c.AirFriction
}

// JumpVelocity solves the projectile equation for the launch speed reaching JumpHeight
func (c Config) JumpVelocity() float64 {
	return math.Sqrt(c.JumpHeight * -2 * c.Gravity)
}

// Validate reports every invalid field
func (c Config) Validate() error {
	var errs []error
	nonNegative := []struct {
		name  string
		value float64
	}{
		{"move_speed", c.MoveSpeed},
		{"ground_drag", c.GroundDrag},
		{"air_drag", c.AirDrag},
		{"rotate_speed", c.RotateSpeed},
		{"angular_drag", c.AngularDrag},
		{"ground_tolerance", c.GroundTolerance},
		{"ground_up_force", c.GroundUpForce},
		{"jump_height", c.JumpHeight},
		{"air_friction", c.AirFriction},
		{"camera_distance", c.CameraDistance},
		{"camera_smoothing", c.CameraSmoothing},
	}
	for _, field := range nonNegative {
		if field.value < 0 || math.IsNaN(field.value) || math.IsInf(field.value, 0) {
			errs = append(errs, fmt.Errorf("%w: %s must be a finite value >= 0, got %v", ErrInvalidConfig, field.name, field.value))
		}
	}

	if c.Gravity > 0 || math.IsNaN(c.Gravity) || math.IsInf(c.Gravity, 0) {
		errs = append(errs, fmt.Errorf("%w: gravity must be finite and <= 0, got %v", ErrInvalidConfig, c.Gravity))
	}
	if c.MoveForceMode != ForceModeVelocityChange && c.MoveForceMode != ForceModeForce {
		errs = append(errs, fmt.Errorf("%w: unknown move_force_mode %d", ErrInvalidConfig, c.MoveForceMode))
	}
	if c.RotateForceMode != ForceModeVelocityChange && c.RotateForceMode != ForceModeForce {
		errs = append(errs, fmt.Errorf("%w: unknown rotate_force_mode %d", ErrInvalidConfig, c.RotateForceMode))
	}

	return errors.Join(errs...)
}

func (m ForceMode) String() string {
	switch m {
	case ForceModeVelocityChange:
		return "velocity_change"
	case ForceModeForce:
		return "force"
	default:
		return fmt.Sprintf("ForceMode(%d)", int(m))
	}
}

func (m ForceMode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText accepts the names produced by String
func (m *ForceMode) UnmarshalText(text []byte) error {
	switch strings.ToLower(strings.TrimSpace(string(text))) {
	case "velocity_change", "velocitychange":
		*m = ForceModeVelocityChange
	case "force":
		*m = ForceModeForce
	default:
		return fmt.Errorf("unknown force mode %q", text)
	}
	return nil
}

// StrafeMode reports whether the body faces the camera, which first person always does
func (c Config) StrafeMode() bool {
	return c.Strafe || !c.ThirdPerson
}
