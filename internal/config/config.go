package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"time"

	"github.com/akmonengine/motor"
	"github.com/akmonengine/motor/input"
	"github.com/akmonengine/motor/internal/logger"
	"github.com/go-gl/mathgl/mgl64"
	"gopkg.in/yaml.v3"
)

var ErrInvalid = errors.New("invalid playground config")

type Config struct {
	Logging    logger.Config    `yaml:"logging"`
	Simulation SimulationConfig `yaml:"simulation"`
	Input      InputConfig      `yaml:"input"`
	Locomotion motor.Config     `yaml:"locomotion"`
	Character  CharacterConfig  `yaml:"character"`
	Scene      SceneConfig      `yaml:"scene"`
	Telemetry  TelemetryConfig  `yaml:"telemetry"`
}

type SimulationConfig struct {
	// TickRate is the fixed physics rate in Hz
	TickRate float64 `yaml:"tick_rate"`
	// FrameRate caps the frame loop in Hz, 0 runs unlimited
	FrameRate        float64 `yaml:"frame_rate"`
	MaxTicksPerFrame int     `yaml:"max_ticks_per_frame"`
	Substeps         int     `yaml:"substeps"`
	// Duration stops a headless run, 0 runs until the script ends
	Duration time.Duration `yaml:"duration"`
}

// TickDelta is the fixed tick length in seconds
func (s SimulationConfig) TickDelta() float64 {
	return 1 / s.TickRate
}

type InputConfig struct {
	Mode        string       `yaml:"mode"` // "raw", "smoothed"
	Sensitivity float64      `yaml:"sensitivity"`
	Gravity     float64      `yaml:"gravity"`
	Snap        bool         `yaml:"snap"`
	Script      []input.Step `yaml:"script"`
}

type CharacterConfig struct {
	Radius     float64    `yaml:"radius"`
	HalfHeight float64    `yaml:"half_height"`
	Density    float64    `yaml:"density"`
	Layer      int        `yaml:"layer"`
	Position   mgl64.Vec3 `yaml:"position"`
}

type BoxConfig struct {
	Position    mgl64.Vec3 `yaml:"position"`
	HalfExtents mgl64.Vec3 `yaml:"half_extents"`
	Trigger     bool       `yaml:"trigger"`
}

type SceneConfig struct {
	Boxes []BoxConfig `yaml:"boxes"`
}

type TelemetryConfig struct {
	Enabled bool   `yaml:"enabled"`
	Listen  string `yaml:"listen"`
	Path    string `yaml:"path"`
	// Every broadcasts the state once per this many ticks
	Every int `yaml:"every"`
}

func Default() Config {
	return Config{
		Logging: logger.Config{Level: "info", Format: "console"},
		Simulation: SimulationConfig{
			TickRate:         50,
			FrameRate:        60,
			MaxTicksPerFrame: 5,
			Substeps:         4,
		},
		Input: InputConfig{
			Mode:        "raw",
			Sensitivity: 3,
			Gravity:     3,
			Snap:        true,
		},
		Locomotion: motor.DefaultConfig(),
		Character: CharacterConfig{
			Radius:     0.4,
			HalfHeight: 0.5,
			Density:    1,
			Layer:      1,
			Position:   mgl64.Vec3{0, 0.9, 0},
		},
		Telemetry: TelemetryConfig{
			Listen: "127.0.0.1:8080",
			Path:   "/ws",
			Every:  5,
		},
	}
}

// Load reads path over the defaults, keys missing from the file keep their default value
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c Config) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalid}, args...)...))
		}
	}

	sim := c.Simulation
	check(positive(sim.TickRate), "simulation.tick_rate must be > 0, got %v", sim.TickRate)
	check(sim.FrameRate >= 0 && !math.IsInf(sim.FrameRate, 0), "simulation.frame_rate must be >= 0, got %v", sim.FrameRate)
	check(sim.MaxTicksPerFrame > 0, "simulation.max_ticks_per_frame must be > 0, got %d", sim.MaxTicksPerFrame)
	check(sim.Substeps > 0, "simulation.substeps must be > 0, got %d", sim.Substeps)
	check(sim.Duration >= 0, "simulation.duration must be >= 0, got %v", sim.Duration)

	switch c.Input.Mode {
	case "raw", "smoothed":
	default:
		check(false, "input.mode must be raw or smoothed, got %q", c.Input.Mode)
	}
	check(c.Input.Sensitivity >= 0, "input.sensitivity must be >= 0, got %v", c.Input.Sensitivity)
	check(c.Input.Gravity >= 0, "input.gravity must be >= 0, got %v", c.Input.Gravity)

	if err := c.Locomotion.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("locomotion: %w", err))
	}

	ch := c.Character
	check(positive(ch.Radius), "character.radius must be > 0, got %v", ch.Radius)
	check(ch.HalfHeight >= 0, "character.half_height must be >= 0, got %v", ch.HalfHeight)
	check(positive(ch.Density), "character.density must be > 0, got %v", ch.Density)
	check(ch.Layer >= 0 && ch.Layer < 32, "character.layer must be in [0, 32), got %d", ch.Layer)

	for i, box := range c.Scene.Boxes {
		h := box.HalfExtents
		check(positive(h.X()) && positive(h.Y()) && positive(h.Z()), "scene.boxes[%d].half_extents must be > 0, got %v", i, h)
	}

	if c.Telemetry.Enabled {
		check(c.Telemetry.Listen != "", "telemetry.listen is required when telemetry is enabled")
		check(len(c.Telemetry.Path) > 0 && c.Telemetry.Path[0] == '/', "telemetry.path must start with /, got %q", c.Telemetry.Path)
		check(c.Telemetry.Every > 0, "telemetry.every must be > 0, got %d", c.Telemetry.Every)
	}

	return errors.Join(errs...)
}

func positive(v float64) bool {
	return v > 0 && !math.IsInf(v, 0)
}
