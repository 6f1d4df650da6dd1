package motor

import "github.com/go-gl/mathgl/mgl64"

// drag bleeds the horizontal velocity, faster on the ground than in the air.
// The engine's own linear drag is kept at zero.
func (c *Controller) drag(ctx *tickContext) {
	if !ctx.hasBody {
		return
	}
	body := ctx.body

	if body.Drag() != 0 {
		body.SetDrag(0)
	}

	rate := ctx.cfg.AirDrag
	if ctx.grounded {
		rate = ctx.cfg.GroundDrag
	}
	velocity := body.Velocity()
	target := mgl64.Vec3{0, velocity.Y(), 0}
	body.SetVelocity(lerpVec3(velocity, target, clamp01(rate*ctx.dt)))

	if body.AngularDrag() != ctx.cfg.AngularDrag {
		body.SetAngularDrag(ctx.cfg.AngularDrag)
	}
}
