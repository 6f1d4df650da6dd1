package motor

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Options is the runtime tuning surface of a Controller, changes apply from the next tick
type Options interface {
	Strafe() bool
	SetStrafe(strafe bool)
	ThirdPerson() bool
	SetThirdPerson(thirdPerson bool)
	PureRotationPhysics() bool
	SetPureRotationPhysics(enabled bool)
	Config() Config
	SetConfig(cfg Config) error
}

var _ Options = (*Controller)(nil)

type Option func(*Controller)

// WithLogger sets the logger used for mode transitions and suppressed forces
func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// Controller drives one character body. It is not safe for concurrent use: StepFrame,
// StepTick and the Options setters must be called from the same goroutine.
type Controller struct {
	cfg    Config
	refs   Refs
	logger *slog.Logger
	events Events

	active bool
	tick   uint64

	// Per-frame input
	input         mgl64.Vec2
	idle          bool
	jumpRequested bool

	// Latched across ticks
	moveDirection mgl64.Vec3
	grounded      bool
	jumpImpulse   float64

	previousStrafe       bool
	previousPureRotation bool
	previousThirdPerson  bool
	cameraDirty          bool
	smoothCamera         bool
}

// New validates cfg and returns an inactive controller, activated by its first step
func New(cfg Config, refs Refs, opts ...Option) (*Controller, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("new controller: %w", err)
	}

	c := &Controller{
		cfg:    cfg,
		refs:   refs,
		logger: slog.New(slog.DiscardHandler),
		events: NewEvents(),
		idle:   true,
	}
	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// Activate latches the initial state. It runs once, later calls do nothing.
func (c *Controller) Activate() {
	if c.active {
		return
	}
	c.active = true

	if body, ok := c.refs.Body.Get(); ok {
		body.SetFreezeRotation(!c.cfg.PureRotationPhysics)
		if forward := horizontal(body.Rotation().Rotate(Forward)); forward.Len() > Epsilon {
			c.moveDirection = forward.Normalize()
		}
	}
	c.previousStrafe = c.cfg.StrafeMode()
	c.previousPureRotation = c.cfg.PureRotationPhysics
	c.previousThirdPerson = c.cfg.ThirdPerson
	c.cameraDirty = true

	c.logger.Debug("controller activated",
		"strafe", c.previousStrafe,
		"third_person", c.previousThirdPerson,
		"pure_rotation_physics", c.previousPureRotation,
	)
}

// StepFrame samples input and updates the move intent, once per rendered frame
func (c *Controller) StepFrame(dt float64) {
	c.Activate()
	c.sampleInput()
	c.updateIntent()
}

// StepTick runs the fixed-step pipeline. A non-positive or non-finite dt is ignored.
func (c *Controller) StepTick(dt float64) {
	if !(dt > 0) || math.IsInf(dt, 0) {
		return
	}
	c.Activate()
	c.tick++

	ctx := c.newTickContext(dt)
	c.detectModes(ctx)

	c.ground(ctx)
	c.move(ctx)
	c.vertical(ctx)
	c.rotate(ctx)
	c.drag(ctx)
	c.followCamera(ctx)

	c.commit(ctx)
	c.events.flush()
}

// Subscribe adds a listener called at the end of the tick that produced the event
func (c *Controller) Subscribe(eventType EventType, listener EventListener) {
	c.events.Subscribe(eventType, listener)
}

// detectModes reports option changes made since the previous tick
func (c *Controller) detectModes(ctx *tickContext) {
	if ctx.cfg.PureRotationPhysics != c.previousPureRotation {
		c.previousPureRotation = ctx.cfg.PureRotationPhysics
		c.logger.Debug("rotation mode changed", "pure_rotation_physics", c.previousPureRotation)
		c.events.emit(Event{
			Kind:     ROTATION_MODE_CHANGED,
			Tick:     ctx.tick,
			Position: ctx.position(),
			Enabled:  c.previousPureRotation,
		})
	}
}

// State is a snapshot of the controller, as published to observers
type State struct {
	Tick                uint64     `json:"tick"`
	Active              bool       `json:"active"`
	Grounded            bool       `json:"grounded"`
	Idle                bool       `json:"idle"`
	Strafe              bool       `json:"strafe"`
	ThirdPerson         bool       `json:"third_person"`
	PureRotationPhysics bool       `json:"pure_rotation_physics"`
	Input               mgl64.Vec2 `json:"input"`
	MoveDirection       mgl64.Vec3 `json:"move_direction"`
	JumpImpulse         float64    `json:"jump_impulse"`
	Position            mgl64.Vec3 `json:"position"`
	Velocity            mgl64.Vec3 `json:"velocity"`
	Yaw                 float64    `json:"yaw"`
}

func (c *Controller) State() State {
	state := State{
		Tick:                c.tick,
		Active:              c.active,
		Grounded:            c.grounded,
		Idle:                c.idle,
		Strafe:              c.cfg.StrafeMode(),
		ThirdPerson:         c.cfg.ThirdPerson,
		PureRotationPhysics: c.cfg.PureRotationPhysics,
		Input:               c.input,
		MoveDirection:       c.moveDirection,
		JumpImpulse:         c.jumpImpulse,
	}
	if body, ok := c.refs.Body.Get(); ok {
		state.Position = body.Position()
		state.Velocity = body.Velocity()
		state.Yaw = YawOfQuaternion(body.Rotation())
	}

	return state
}

func (c *Controller) Strafe() bool {
	return c.cfg.Strafe
}

func (c *Controller) SetStrafe(strafe bool) {
	c.cfg.Strafe = strafe
}

func (c *Controller) ThirdPerson() bool {
	return c.cfg.ThirdPerson
}

func (c *Controller) SetThirdPerson(thirdPerson bool) {
	c.cfg.ThirdPerson = thirdPerson
}

func (c *Controller) PureRotationPhysics() bool {
	return c.cfg.PureRotationPhysics
}

func (c *Controller) SetPureRotationPhysics(enabled bool) {
	c.cfg.PureRotationPhysics = enabled
}

func (c *Controller) Config() Config {
	return c.cfg
}

// SetConfig replaces the whole configuration. An invalid cfg is rejected and the
// current one is kept.
func (c *Controller) SetConfig(cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("set config: %w", err)
	}
	c.cfg = cfg
	// Camera distance and smoothing are only applied by a camera transition
	c.cameraDirty = true

	return nil
}
