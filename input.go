package motor

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// sampleInput polls the input source. A jump press stays pending until a tick consumes it.
func (c *Controller) sampleInput() {
	c.input = mgl64.Vec2{}
	if input, ok := c.refs.Input.Get(); ok {
		x, y := input.Axis()
		c.input = mgl64.Vec2{sanitizeAxis(x), sanitizeAxis(y)}
		if input.JumpPressed() {
			c.jumpRequested = true
		}
	}

	c.idle = c.input.Len() < Epsilon
}

func sanitizeAxis(value float64) float64 {
	if math.IsNaN(value) {
		return 0
	}
	return mgl64.Clamp(value, -1, 1)
}

// updateIntent turns the input into a world direction, relative to the camera when
// strafing and to the body otherwise. The direction is only latched while grounded
// and not idle.
func (c *Controller) updateIntent() {
	if c.idle || !c.grounded {
		return
	}

	var yaw float64
	if c.cfg.StrafeMode() {
		camera, ok := c.refs.Camera.Get()
		if !ok {
			return
		}
		yaw = camera.Yaw()
	} else {
		body, ok := c.refs.Body.Get()
		if !ok {
			return
		}
		yaw = YawOfQuaternion(body.Rotation())
	}

	c.moveDirection = YawRotation(yaw).Rotate(mgl64.Vec3{c.input.X(), 0, c.input.Y()})
}
