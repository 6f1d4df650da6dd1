package main

import (
	"context"
	"log/slog"

	"github.com/akmonengine/motor"
	"github.com/akmonengine/motor/input"
	"github.com/akmonengine/motor/internal/config"
	"github.com/akmonengine/motor/internal/loop"
)

// runHeadless replays the configured script as fast as possible, one tick per
// frame, and returns the final controller state.
func runHeadless(ctx context.Context, cfg *config.Config, logger *slog.Logger) (motor.State, error) {
	script := input.NewScript(cfg.Input.Script...)
	scene, err := NewScene(cfg, script, logger)
	if err != nil {
		return motor.State{}, err
	}

	dt := cfg.Simulation.TickDelta()
	frames := script.Frames()
	if cfg.Simulation.Duration > 0 {
		frames = max(frames, int(cfg.Simulation.Duration.Seconds()/dt))
	}

	l := loop.New(dt, cfg.Simulation.MaxTicksPerFrame)
	l.Frame = scene.Frame
	l.Tick = scene.Tick

	closer, err := serveTelemetry(cfg, scene, l, logger)
	if err != nil {
		return motor.State{}, err
	}
	defer closer.Close()

	logger.Info("headless run", "frames", frames, "tick_rate", cfg.Simulation.TickRate, "input", cfg.Input.Mode)
	for range frames {
		if err := ctx.Err(); err != nil {
			return scene.Controller.State(), err
		}
		l.Advance(dt)
	}

	state := scene.Controller.State()
	logger.Info("headless run finished",
		"ticks", state.Tick,
		"position", state.Position,
		"grounded", state.Grounded,
		"yaw", state.Yaw,
	)

	return state, nil
}
