package motor

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// moveDamping saturates the move force for large offsets
const moveDamping = 5.0

// move pushes the body toward the position it should reach this tick, only on the ground
func (c *Controller) move(ctx *tickContext) {
	if !ctx.hasBody || !ctx.grounded {
		return
	}

	var offset mgl64.Vec3
	if !ctx.idle {
		direction := ctx.moveDirection
		if ctx.cfg.NormalizeMove {
			direction = direction.Normalize()
		}
		offset = direction.Mul(ctx.cfg.MoveSpeed * ctx.dt)
	}

	velocity := offset.Mul(1 / ctx.dt)
	force := ctx.body.Velocity().Mul(-1).Add(offset).Add(velocity)
	force = force.Mul(1 / (1 + offset.Dot(offset)*moveDamping))
	force[1] = 0

	if hasNaN(force) {
		c.logger.Debug("move force suppressed", "tick", ctx.tick, "force", force)
		return
	}
	ctx.body.AddForce(force, ctx.cfg.MoveForceMode)
}

// vertical applies gravity up to the terminal velocity and launches pending jumps
func (c *Controller) vertical(ctx *tickContext) {
	jumpRequested := ctx.jumpRequested
	ctx.jumpRequested = false
	if !ctx.hasBody {
		return
	}

	velocity := ctx.body.Velocity()
	terminal := ctx.cfg.TerminalVelocity()
	velocity[1] = mgl64.Clamp(velocity.Y()+ctx.cfg.Gravity*ctx.dt, -terminal, terminal)

	switch {
	case ctx.grounded && jumpRequested && ctx.jumpImpulse <= 0:
		velocity[1] = ctx.cfg.JumpVelocity()
		ctx.jumpImpulse = velocity.Y()
		c.events.emit(Event{Kind: JUMP, Tick: ctx.tick, Position: ctx.position(), Speed: velocity.Y()})
	case ctx.jumpImpulse > 0 && velocity.Y() > 0:
		ctx.jumpImpulse = velocity.Y()
	case ctx.jumpImpulse > 0:
		ctx.jumpImpulse = 0
	}

	if math.IsNaN(velocity.Y()) {
		return
	}
	ctx.body.SetVelocity(velocity)
}
