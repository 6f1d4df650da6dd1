package motor

// followCamera moves the follow transform toward its target and pumps the rig once
func (c *Controller) followCamera(ctx *tickContext) {
	follow, hasFollow := c.refs.Follow.Get()
	target, hasTarget := c.refs.Target.Get()
	if !hasFollow || !hasTarget {
		return
	}

	c.cameraTransition(ctx)

	wanted := target.Pose()
	if c.smoothCamera {
		current := follow.Pose()
		t := clamp01(ctx.cfg.CameraSmoothing * ctx.dt)
		wanted = Pose{
			Position: lerpVec3(current.Position, wanted.Position, t),
			Rotation: nlerp(current.Rotation, wanted.Rotation, t),
		}
	}
	follow.SetPose(wanted)

	if ctx.hasCamera {
		if !ctx.camera.ManualUpdate() {
			ctx.camera.SetManualUpdate(true)
		}
		ctx.camera.Update()
	}
}

// cameraTransition switches between third and first person. It runs on a mode change,
// on the first camera tick and after a config replacement.
func (c *Controller) cameraTransition(ctx *tickContext) {
	thirdPerson := ctx.cfg.ThirdPerson
	changed := thirdPerson != c.previousThirdPerson
	if !changed && !c.cameraDirty {
		return
	}
	c.previousThirdPerson = thirdPerson
	c.cameraDirty = false

	distance := 0.0
	if thirdPerson {
		distance = ctx.cfg.CameraDistance
	}
	c.smoothCamera = ctx.cfg.ApplyCameraSmoothing && thirdPerson

	if visuals, ok := c.refs.Visuals.Get(); ok {
		visuals.SetVisible(thirdPerson)
	}
	if ctx.hasCamera {
		ctx.camera.SetDistance(distance)
	}

	if changed {
		c.logger.Debug("camera mode changed", "third_person", thirdPerson, "distance", distance)
		c.events.emit(Event{Kind: CAMERA_MODE_CHANGED, Tick: ctx.tick, Position: ctx.position(), Enabled: thirdPerson})
	}
}
