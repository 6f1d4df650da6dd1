package world

import (
	"github.com/akmonengine/motor/actor"
	"github.com/go-gl/mathgl/mgl64"
)

const (
	DEFAULT_WORKERS   = 1
	DEFAULT_SUBSTEPS  = 4
	DEFAULT_CELL_SIZE = 2.0
	DEFAULT_CELLS     = 1024
)

type World struct {
	// List of all rigid bodies in the world
	Bodies []*actor.RigidBody
	// Gravity acceleration (m/s², or N/kg), only applied to bodies with UseGravity
	Gravity     mgl64.Vec3
	Substeps    int
	SpatialGrid *SpatialGrid
	Workers     int
	Events      Events
}

// New creates a world with the default grid and substeps
func New(gravity mgl64.Vec3) *World {
	return &World{
		Gravity:     gravity,
		Substeps:    DEFAULT_SUBSTEPS,
		SpatialGrid: NewSpatialGrid(DEFAULT_CELL_SIZE, DEFAULT_CELLS),
		Workers:     DEFAULT_WORKERS,
		Events:      NewEvents(),
	}
}

// AddBody adds a rigid body to the world
func (w *World) AddBody(body *actor.RigidBody) {
	w.Bodies = append(w.Bodies, body)
}

// RemoveBody removes a rigid body from the world
func (w *World) RemoveBody(body *actor.RigidBody) {
	for i, b := range w.Bodies {
		if b == body {
			w.Bodies = append(w.Bodies[:i], w.Bodies[i+1:]...)
			w.Events.forget(body)
			return
		}
	}
}

func (w *World) Step(dt float64) {
	if dt <= 0 {
		return
	}
	w.Workers = max(DEFAULT_WORKERS, w.Workers)
	w.Substeps = max(1, w.Substeps)
	if w.SpatialGrid == nil {
		w.SpatialGrid = NewSpatialGrid(DEFAULT_CELL_SIZE, DEFAULT_CELLS)
	}
	h := dt / float64(w.Substeps)

	for range w.Substeps {
		w.integrate(h)

		// Broad phase then analytic narrow phase
		constraints := NarrowPhase(BroadPhase(w.SpatialGrid, w.Bodies))
		constraints = w.Events.recordCollisions(constraints)

		// Contacts share bodies, the solver runs sequentially
		for _, c := range constraints {
			c.SolvePosition(h)
		}

		w.update(h)

		for _, c := range constraints {
			c.SolveVelocity(h)
		}
	}

	w.Events.flush()
}

func (w *World) integrate(h float64) {
	task(w.Workers, w.Bodies, func(body *actor.RigidBody) {
		body.Integrate(h, w.Gravity)
	})
}

func (w *World) update(h float64) {
	task(w.Workers, w.Bodies, func(body *actor.RigidBody) {
		body.Update(h)
	})
}

