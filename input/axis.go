package input

import (
	"math"

	"github.com/akmonengine/motor"
)

// Axis eases a raw axis value the way analog game input does: it moves toward the
// pressed direction at Sensitivity units per second and falls back to rest at Gravity
// units per second. With Snap, reversing the direction restarts from zero.
type Axis struct {
	Sensitivity float64
	Gravity     float64
	Snap        bool

	value float64
}

func (a *Axis) Value() float64 {
	return a.value
}

func (a *Axis) Reset() {
	a.value = 0
}

// Update moves the value toward raw and returns it
func (a *Axis) Update(raw, dt float64) float64 {
	raw = math.Max(-1, math.Min(1, raw))
	if dt <= 0 || math.IsNaN(raw) {
		return a.value
	}

	if a.Snap && raw != 0 && a.value != 0 && math.Signbit(raw) != math.Signbit(a.value) {
		a.value = 0
	}

	rate := a.Sensitivity
	if raw == 0 {
		rate = a.Gravity
	}
	if rate <= 0 {
		a.value = raw
		return a.value
	}

	step := rate * dt
	switch {
	case a.value < raw:
		a.value = math.Min(a.value+step, raw)
	case a.value > raw:
		a.value = math.Max(a.value-step, raw)
	}

	return a.value
}

// Smoothed wraps a source and eases both of its axes. Update is called once per frame
// before the controller polls it.
type Smoothed struct {
	Source motor.InputSource
	X, Y   Axis
}

var _ motor.InputSource = (*Smoothed)(nil)

func NewSmoothed(source motor.InputSource, sensitivity, gravity float64, snap bool) *Smoothed {
	axis := Axis{Sensitivity: sensitivity, Gravity: gravity, Snap: snap}
	return &Smoothed{Source: source, X: axis, Y: axis}
}

func (s *Smoothed) Update(dt float64) {
	x, y := s.Source.Axis()
	s.X.Update(x, dt)
	s.Y.Update(y, dt)
}

func (s *Smoothed) Axis() (float64, float64) {
	return s.X.Value(), s.Y.Value()
}

func (s *Smoothed) JumpPressed() bool {
	return s.Source.JumpPressed()
}
