package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/akmonengine/motor"
	"github.com/akmonengine/motor/input"
	"github.com/akmonengine/motor/internal/config"
	"github.com/akmonengine/motor/internal/loop"
	"github.com/gdamore/tcell/v2"
	"github.com/go-gl/mathgl/mgl64"
)

const (
	slowFrameRate = 15
	// Terminal cells are about twice as tall as wide
	colsPerMeter = 2.0
	rowsPerMeter = 1.0
	eventHistory = 5
)

var (
	styleDefault = tcell.StyleDefault
	styleHeader  = tcell.StyleDefault.Foreground(tcell.ColorBlack).Background(tcell.ColorTeal)
	styleBox     = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleTrigger = tcell.StyleDefault.Foreground(tcell.ColorPurple)
	styleChar    = tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true)
	styleCamera  = tcell.StyleDefault.Foreground(tcell.ColorBlue)
	styleGood    = tcell.StyleDefault.Foreground(tcell.ColorGreen)
	styleDim     = tcell.StyleDefault.Foreground(tcell.ColorDarkGray)
)

// arrows by yaw octant, starting at +Z which is drawn up
var arrows = [8]rune{'↑', '↗', '→', '↘', '↓', '↙', '←', '↖'}

type view struct {
	screen tcell.Screen
	scene  *Scene
	loop   *loop.Loop
	events []string
}

func runInteractive(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("create screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("init screen: %w", err)
	}
	defer screen.Fini()

	l := loop.New(cfg.Simulation.TickDelta(), cfg.Simulation.MaxTicksPerFrame)
	l.SetFrameRate(cfg.Simulation.FrameRate)

	// Actions run on the loop goroutine, the keyboard only posts them
	var scene *Scene
	keyboard := input.NewKeyboard(input.Actions{
		ToggleStrafe: func() {
			l.Post(func() { scene.Controller.SetStrafe(!scene.Controller.Strafe()) })
		},
		ToggleThirdPerson: func() {
			l.Post(func() { scene.Controller.SetThirdPerson(!scene.Controller.ThirdPerson()) })
		},
		ToggleRotation: func() {
			l.Post(func() { scene.Controller.SetPureRotationPhysics(!scene.Controller.PureRotationPhysics()) })
		},
		CycleFrameRate: func() {
			l.Post(func() {
				rate := float64(slowFrameRate)
				if l.FrameRate() == slowFrameRate {
					rate = cfg.Simulation.FrameRate
				}
				l.SetFrameRate(rate)
				logger.Info("frame rate changed", "frame_rate", rate)
			})
		},
		Orbit: func(yawSteps, pitchSteps float64) {
			l.Post(func() { scene.Rig.Orbit(yawSteps, pitchSteps) })
		},
		Quit: cancel,
	})

	scene, err = NewScene(cfg, keyboard, logger)
	if err != nil {
		return err
	}

	v := &view{screen: screen, scene: scene, loop: l}
	v.recordEvents()

	l.Frame = func(dt float64) {
		scene.Frame(dt)
		v.draw()
	}
	l.Tick = scene.Tick

	closer, err := serveTelemetry(cfg, scene, l, logger)
	if err != nil {
		return err
	}
	defer closer.Close()

	go func() {
		for {
			ev := screen.PollEvent()
			if ev == nil {
				return
			}
			if _, ok := ev.(*tcell.EventResize); ok {
				l.Post(screen.Sync)
				continue
			}
			if !keyboard.HandleEvent(ev) {
				return
			}
		}
	}()

	err = l.Run(ctx)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (v *view) recordEvents() {
	for _, kind := range []motor.EventType{
		motor.GROUND_ENTER,
		motor.GROUND_EXIT,
		motor.JUMP,
		motor.STRAFE_CHANGED,
		motor.CAMERA_MODE_CHANGED,
		motor.ROTATION_MODE_CHANGED,
	} {
		v.scene.Controller.Subscribe(kind, func(event motor.Event) {
			line := fmt.Sprintf("%6d %s", event.Tick, event.Kind)
			switch event.Kind {
			case motor.JUMP:
				line += fmt.Sprintf(" %.2fm/s", event.Speed)
			case motor.STRAFE_CHANGED, motor.CAMERA_MODE_CHANGED, motor.ROTATION_MODE_CHANGED:
				line += fmt.Sprintf(" %v", event.Enabled)
			}
			v.events = append(v.events, line)
			if len(v.events) > eventHistory {
				v.events = v.events[len(v.events)-eventHistory:]
			}
		})
	}
}

func (v *view) draw() {
	s := v.screen
	s.Clear()
	width, height := s.Size()
	state := v.scene.Controller.State()

	frameRate := "unlimited"
	if rate := v.loop.FrameRate(); rate > 0 {
		frameRate = fmt.Sprintf("%.0f fps", rate)
	}
	header := fmt.Sprintf(" motor playground  tick %d  frame cap %s", state.Tick, frameRate)
	fill(s, 0, width, styleHeader)
	text(s, 0, 0, header, styleHeader)

	mapTop, mapBottom := 1, height-8
	center := state.Position
	cx, cy := width/2, (mapTop+mapBottom)/2
	cell := func(p mgl64.Vec3) (int, int) {
		col := cx + int(math.Round((p.X()-center.X())*colsPerMeter))
		row := cy - int(math.Round((p.Z()-center.Z())*rowsPerMeter))
		return col, row
	}
	inMap := func(col, row int) bool {
		return col >= 0 && col < width && row >= mapTop && row < mapBottom
	}

	for _, box := range v.scene.Boxes {
		aabb := box.Shape.GetAABB()
		style, glyph := styleBox, '#'
		if box.IsTrigger {
			style, glyph = styleTrigger, '~'
		}
		minCol, maxRow := cell(aabb.Min)
		maxCol, minRow := cell(aabb.Max)
		for row := max(minRow, mapTop); row <= min(maxRow, mapBottom-1); row++ {
			for col := max(minCol, 0); col <= min(maxCol, width-1); col++ {
				s.SetContent(col, row, glyph, nil, style)
			}
		}
	}

	if state.ThirdPerson {
		if col, row := cell(v.scene.Rig.Position()); inMap(col, row) {
			s.SetContent(col, row, 'C', nil, styleCamera)
		}
	}
	octant := int(math.Round(state.Yaw/45)) & 7
	s.SetContent(cx, cy, arrows[octant], nil, styleChar)

	row := mapBottom
	status := []struct {
		label string
		on    bool
	}{
		{"grounded", state.Grounded},
		{"strafe", state.Strafe},
		{"third person", state.ThirdPerson},
		{"pure rotation", state.PureRotationPhysics},
	}
	col := 1
	for _, st := range status {
		style := styleDim
		if st.on {
			style = styleGood
		}
		col = text(s, col, row, st.label, style) + 2
	}
	row++
	text(s, 1, row, fmt.Sprintf("position %5.1f %5.1f %5.1f  speed %4.1f m/s  yaw %4.0f",
		state.Position.X(), state.Position.Y(), state.Position.Z(),
		state.Velocity.Len(), state.Yaw), styleDefault)
	row++
	for _, line := range v.events {
		text(s, 1, row, line, styleDim)
		row++
	}
	text(s, 1, height-1, "wasd move  space jump  arrows orbit  t strafe  v view  r rotation  f fps  q quit", styleDim)

	s.Show()
}

func fill(s tcell.Screen, row, width int, style tcell.Style) {
	for col := range width {
		s.SetContent(col, row, ' ', nil, style)
	}
}

// text draws str from col and returns the column after it
func text(s tcell.Screen, col, row int, str string, style tcell.Style) int {
	for _, r := range str {
		s.SetContent(col, row, r, nil, style)
		col++
	}
	return col
}
