package telemetry

import (
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/akmonengine/motor"
)

var (
	ErrUnknownCommand = errors.New("unknown command")
	ErrUnknownOption  = errors.New("unknown option")
	ErrReadOnly       = errors.New("telemetry is read only")
)

// Command is a client request. A toggle without Enabled flips the option.
//
//	{"type": "toggle", "option": "strafe"}
//	{"type": "toggle", "option": "third_person", "enabled": false}
//	{"type": "frame_rate", "frame_rate": 15}
type Command struct {
	Type      string  `json:"type"`
	Option    string  `json:"option,omitempty"`
	Enabled   *bool   `json:"enabled,omitempty"`
	FrameRate float64 `json:"frame_rate,omitempty"`
}

type Applier interface {
	Apply(cmd Command) error
}

// Poster runs funcs on the simulation goroutine
type Poster interface {
	Post(fn func())
}

// LoopApplier checks commands on the connection goroutine and posts the change
// onto the loop, so the controller sees it on its next tick.
type LoopApplier struct {
	Loop    Poster
	Options motor.Options
	// SetFrameRate handles frame_rate commands, nil rejects them
	SetFrameRate func(hz float64)
	Logger       *slog.Logger
}

func (a LoopApplier) Apply(cmd Command) error {
	switch cmd.Type {
	case "toggle":
		get, set, err := a.option(cmd.Option)
		if err != nil {
			return err
		}
		a.Loop.Post(func() {
			enabled := !get()
			if cmd.Enabled != nil {
				enabled = *cmd.Enabled
			}
			set(enabled)
			a.logger().Info("option changed", "option", cmd.Option, "enabled", enabled)
		})
	case "frame_rate":
		if a.SetFrameRate == nil {
			return fmt.Errorf("%w: frame_rate", ErrUnknownCommand)
		}
		if cmd.FrameRate < 0 || math.IsNaN(cmd.FrameRate) {
			return fmt.Errorf("frame_rate must be >= 0, got %v", cmd.FrameRate)
		}
		a.Loop.Post(func() {
			a.SetFrameRate(cmd.FrameRate)
			a.logger().Info("frame rate changed", "frame_rate", cmd.FrameRate)
		})
	default:
		return fmt.Errorf("%w: %q", ErrUnknownCommand, cmd.Type)
	}

	return nil
}

func (a LoopApplier) option(name string) (func() bool, func(bool), error) {
	switch name {
	case "strafe":
		return a.Options.Strafe, a.Options.SetStrafe, nil
	case "third_person":
		return a.Options.ThirdPerson, a.Options.SetThirdPerson, nil
	case "pure_rotation_physics":
		return a.Options.PureRotationPhysics, a.Options.SetPureRotationPhysics, nil
	default:
		return nil, nil, fmt.Errorf("%w: %q", ErrUnknownOption, name)
	}
}

func (a LoopApplier) logger() *slog.Logger {
	if a.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return a.Logger
}
