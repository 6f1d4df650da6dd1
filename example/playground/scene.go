package main

import (
	"fmt"
	"log/slog"

	"github.com/akmonengine/motor"
	"github.com/akmonengine/motor/actor"
	"github.com/akmonengine/motor/bind"
	"github.com/akmonengine/motor/camera"
	"github.com/akmonengine/motor/input"
	"github.com/akmonengine/motor/internal/config"
	"github.com/akmonengine/motor/world"
	"github.com/go-gl/mathgl/mgl64"
)

// Scene is the playground world: a ground plane, the configured boxes and one
// capsule character driven by a controller.
type Scene struct {
	World      *world.World
	Character  *actor.RigidBody
	Body       *bind.Body
	Rig        *camera.Rig
	Follow     *motor.TransformRef
	Visuals    *bind.Visuals
	Controller *motor.Controller
	Boxes      []*actor.RigidBody

	// smoothed is nil when the input is used raw
	smoothed *input.Smoothed
}

func NewScene(cfg *config.Config, source motor.InputSource, logger *slog.Logger) (*Scene, error) {
	w := world.New(mgl64.Vec3{0, cfg.Locomotion.Gravity, 0})
	w.Substeps = cfg.Simulation.Substeps

	ground := actor.NewRigidBody(actor.Transform{}, &actor.Plane{Normal: mgl64.Vec3{0, 1, 0}}, actor.BodyTypeStatic, 0)
	w.AddBody(ground)

	s := &Scene{World: w}
	for _, box := range cfg.Scene.Boxes {
		body := actor.NewRigidBody(actor.Transform{Position: box.Position}, &actor.Box{HalfExtents: box.HalfExtents}, actor.BodyTypeStatic, 0)
		body.IsTrigger = box.Trigger
		w.AddBody(body)
		s.Boxes = append(s.Boxes, body)
	}

	ch := cfg.Character
	capsule := &actor.Capsule{Radius: ch.Radius, HalfHeight: ch.HalfHeight}
	s.Character = actor.NewRigidBody(actor.Transform{Position: ch.Position}, capsule, actor.BodyTypeDynamic, ch.Density)
	s.Character.Layer = ch.Layer
	w.AddBody(s.Character)
	s.Body = bind.NewBody(s.Character, bind.FeetPivot(capsule))

	if cfg.Input.Mode == "smoothed" {
		s.smoothed = input.NewSmoothed(source, cfg.Input.Sensitivity, cfg.Input.Gravity, cfg.Input.Snap)
		source = s.smoothed
	}

	locomotion := cfg.Locomotion
	locomotion.GroundLayers &^= 1 << uint(ch.Layer)

	target := motor.BodyAnchor{Body: s.Body, Offset: locomotion.FollowOffset}
	s.Follow = motor.NewTransformRef(target.Pose())
	s.Rig = camera.NewRig(s.Follow, locomotion.CameraDistance)
	s.Visuals = &bind.Visuals{Elements: []string{"body", "nose"}}

	controller, err := motor.New(locomotion, motor.Refs{
		Body:     motor.Bind[motor.Body](s.Body),
		Collider: motor.Bind[motor.Collider](s.Body),
		Query:    motor.Bind[motor.SpatialQuery](bind.Query{World: w}),
		Input:    motor.Bind[motor.InputSource](source),
		Camera:   motor.Bind[motor.CameraRig](s.Rig),
		Visuals:  motor.Bind[motor.RenderToggle](s.Visuals),
		Follow:   motor.Bind[motor.Transform](s.Follow),
		Target:   motor.Bind[motor.PoseSource](target),
	}, motor.WithLogger(logger.With("component", "controller")))
	if err != nil {
		return nil, fmt.Errorf("build scene: %w", err)
	}
	s.Controller = controller

	s.logEvents(logger)

	return s, nil
}

func (s *Scene) logEvents(logger *slog.Logger) {
	for _, kind := range []motor.EventType{
		motor.GROUND_ENTER,
		motor.GROUND_EXIT,
		motor.JUMP,
		motor.STRAFE_CHANGED,
		motor.CAMERA_MODE_CHANGED,
		motor.ROTATION_MODE_CHANGED,
	} {
		s.Controller.Subscribe(kind, func(event motor.Event) {
			logger.Debug("controller event", "type", event.Kind, "tick", event.Tick, "position", event.Position)
		})
	}

	for _, kind := range []world.EventType{world.TRIGGER_ENTER, world.TRIGGER_EXIT} {
		s.World.Events.Subscribe(kind, func(event world.Event) {
			if event.Other(s.Character) == nil {
				return
			}
			logger.Info("character "+event.Kind.String(), "position", s.Body.Position())
		})
	}
}

// Frame samples input once per rendered frame
func (s *Scene) Frame(dt float64) {
	if s.smoothed != nil {
		s.smoothed.Update(dt)
	}
	s.Controller.StepFrame(dt)
}

// Tick integrates the physics world then runs the controller for one fixed step. The
// camera stage comes last, so the rig follows the body where this step left it. Forces
// the controller adds are integrated by the next step.
func (s *Scene) Tick(dt float64) {
	s.World.Step(dt)
	s.Controller.StepTick(dt)
}
