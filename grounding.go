package motor

// snapDamping softens the snap correction as the gap to the ground grows
const snapDamping = 5.0

// ground casts a ray from the collider center down past the body root. A hit above the
// root pulls the body up toward the surface with a damped spring, unless a jump is
// still rising.
func (c *Controller) ground(ctx *tickContext) {
	wasGrounded := ctx.grounded
	ctx.grounded = false
	defer c.reportGrounding(ctx, wasGrounded)

	if !ctx.hasBody || !ctx.hasCollider || !ctx.hasQuery {
		return
	}

	root := ctx.body.Position()
	center := ctx.collider.BoundsCenter()
	distance := root.Sub(center).Len() + ctx.cfg.GroundTolerance

	hit, ok := ctx.query.Raycast(center, Up.Mul(-1), distance, ctx.cfg.GroundLayers)
	if !ok {
		return
	}
	ctx.grounded = true

	if hit.Point.Y() <= root.Y() || ctx.jumpImpulse > 0 {
		return
	}

	localY := hit.Point.Y() - root.Y()
	step := Up.Mul(localY)
	velocityP := (localY + localY/ctx.dt) / (1 + step.Dot(step)*snapDamping)
	t := clamp01(ctx.cfg.GroundUpForce * velocityP * ctx.dt)

	axis := Up
	if ctx.cfg.PureRotationPhysics {
		axis = ctx.body.Rotation().Rotate(Up)
	}
	ctx.body.SetPosition(root.Add(axis.Mul(lerp(0, localY, t))))

	velocity := ctx.body.Velocity()
	velocity[1] = 0
	ctx.body.SetVelocity(velocity)
}

func (c *Controller) reportGrounding(ctx *tickContext, wasGrounded bool) {
	if wasGrounded == ctx.grounded {
		return
	}

	kind := GROUND_EXIT
	if ctx.grounded {
		kind = GROUND_ENTER
	}
	c.events.emit(Event{Kind: kind, Tick: ctx.tick, Position: ctx.position()})
}
