package motor

import "github.com/go-gl/mathgl/mgl64"

// tickContext carries what the stages of one tick read and hand to each other.
// It is built from the latched controller state and committed back once the tick ends.
type tickContext struct {
	dt   float64
	tick uint64
	cfg  Config

	body        Body
	collider    Collider
	query       SpatialQuery
	camera      CameraRig
	hasBody     bool
	hasCollider bool
	hasQuery    bool
	hasCamera   bool

	strafe bool
	idle   bool

	moveDirection mgl64.Vec3
	grounded      bool
	jumpImpulse   float64
	jumpRequested bool
}

func (c *Controller) newTickContext(dt float64) *tickContext {
	ctx := &tickContext{
		dt:   dt,
		tick: c.tick,
		cfg:  c.cfg,

		strafe: c.cfg.StrafeMode(),
		idle:   c.idle,

		moveDirection: c.moveDirection,
		grounded:      c.grounded,
		jumpImpulse:   c.jumpImpulse,
		jumpRequested: c.jumpRequested,
	}
	ctx.body, ctx.hasBody = c.refs.Body.Get()
	ctx.collider, ctx.hasCollider = c.refs.Collider.Get()
	ctx.query, ctx.hasQuery = c.refs.Query.Get()
	ctx.camera, ctx.hasCamera = c.refs.Camera.Get()

	return ctx
}

// commit latches the tick results into the controller
func (c *Controller) commit(ctx *tickContext) {
	c.moveDirection = ctx.moveDirection
	c.grounded = ctx.grounded
	c.jumpImpulse = ctx.jumpImpulse
	c.jumpRequested = ctx.jumpRequested
}

// position is the body root, or the origin when no body is bound
func (ctx *tickContext) position() mgl64.Vec3 {
	if !ctx.hasBody {
		return mgl64.Vec3{}
	}
	return ctx.body.Position()
}
