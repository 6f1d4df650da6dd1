package motor

import "github.com/go-gl/mathgl/mgl64"

// torqueGain scales the summed correction quaternions into a torque
const torqueGain = 4.0

// rotate turns the body toward the camera yaw when strafing, toward the move direction
// otherwise
func (c *Controller) rotate(ctx *tickContext) {
	if ctx.strafe != c.previousStrafe {
		left := c.previousStrafe
		c.previousStrafe = ctx.strafe
		c.logger.Debug("strafe changed", "strafe", ctx.strafe)
		c.events.emit(Event{Kind: STRAFE_CHANGED, Tick: ctx.tick, Position: ctx.position(), Enabled: ctx.strafe})

		if left && ctx.hasBody {
			if forward := horizontal(ctx.body.Rotation().Rotate(Forward)); forward.Len() > Epsilon {
				ctx.moveDirection = forward.Normalize()
			}
		}
	}

	if !ctx.hasBody {
		return
	}

	var yaw float64
	if ctx.strafe {
		if !ctx.hasCamera {
			return
		}
		yaw = ctx.camera.Yaw()
	} else {
		if horizontal(ctx.moveDirection).Len() < Epsilon {
			return
		}
		yaw = YawOfDirection(ctx.moveDirection)
	}

	if ctx.cfg.PureRotationPhysics {
		c.rotateWithTorque(ctx, yaw)
	} else {
		c.rotateDirect(ctx, yaw)
	}
}

func (c *Controller) rotateWithTorque(ctx *tickContext, yaw float64) {
	body := ctx.body
	if body.FreezeRotation() {
		body.SetFreezeRotation(false)
	}

	rotation := body.Rotation()
	var torque mgl64.Vec3
	if current := horizontal(rotation.Rotate(Forward)); current.Len() > Epsilon {
		wanted := YawRotation(yaw).Rotate(Forward)
		torque = torque.Add(mgl64.QuatBetweenVectors(current.Normalize(), wanted).V)
	}
	torque = torque.Add(mgl64.QuatBetweenVectors(rotation.Rotate(Up), Up).V)
	torque = torque.Mul(ctx.cfg.RotateSpeed * torqueGain)

	if hasNaN(torque) {
		c.logger.Debug("rotation torque suppressed", "tick", ctx.tick, "torque", torque)
		return
	}
	body.AddTorque(torque, ctx.cfg.RotateForceMode)
}

// rotateDirect moves a fraction of the remaining way to the target yaw each tick
func (c *Controller) rotateDirect(ctx *tickContext, yaw float64) {
	body := ctx.body
	if !body.FreezeRotation() {
		body.SetFreezeRotation(true)
	}

	body.SetRotation(nlerp(body.Rotation(), YawRotation(yaw), ctx.cfg.RotateSpeed*ctx.dt))
}
