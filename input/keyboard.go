package input

import (
	"sync"
	"time"

	"github.com/akmonengine/motor"
	"github.com/gdamore/tcell/v2"
)

const DEFAULT_MOVE_PULSE = 180 * time.Millisecond

// Actions are the non-movement hotkeys. Nil actions are ignored.
type Actions struct {
	ToggleStrafe      func()
	ToggleThirdPerson func()
	ToggleRotation    func()
	// CycleFrameRate switches between an unlimited and a low frame rate
	CycleFrameRate func()
	// Orbit turns the camera by steps, yaw to the right and pitch down
	Orbit func(yawSteps, pitchSteps float64)
	Quit  func()
}

// Keyboard turns terminal key events into a move axis. Terminals only report presses,
// so each press holds its direction for Pulse, refreshed by key repeat.
// Keys are handled on the event goroutine while the controller polls from the loop.
type Keyboard struct {
	Pulse   time.Duration
	Actions Actions

	mu            sync.Mutex
	now           func() time.Time
	forwardUntil  time.Time
	backwardUntil time.Time
	leftUntil     time.Time
	rightUntil    time.Time
	jump          bool
}

var _ motor.InputSource = (*Keyboard)(nil)

func NewKeyboard(actions Actions) *Keyboard {
	return &Keyboard{
		Pulse:   DEFAULT_MOVE_PULSE,
		Actions: actions,
		now:     time.Now,
	}
}

// HandleEvent reports false once the user asked to quit
func (k *Keyboard) HandleEvent(event tcell.Event) bool {
	ev, ok := event.(*tcell.EventKey)
	if !ok {
		return true
	}
	return k.HandleKey(ev.Key(), ev.Rune(), ev.Modifiers())
}

// HandleKey reports false once the user asked to quit
func (k *Keyboard) HandleKey(key tcell.Key, r rune, mod tcell.ModMask) bool {
	switch key {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		k.run(k.Actions.Quit)
		return false
	case tcell.KeyUp:
		k.orbit(0, -1)
	case tcell.KeyDown:
		k.orbit(0, 1)
	case tcell.KeyLeft:
		k.orbit(-1, 0)
	case tcell.KeyRight:
		k.orbit(1, 0)
	case tcell.KeyRune:
		return k.handleRune(r)
	}

	return true
}

func (k *Keyboard) handleRune(r rune) bool {
	switch r {
	case 'w', 'W':
		k.pulse(&k.forwardUntil, &k.backwardUntil)
	case 's', 'S':
		k.pulse(&k.backwardUntil, &k.forwardUntil)
	case 'a', 'A':
		k.pulse(&k.leftUntil, &k.rightUntil)
	case 'd', 'D':
		k.pulse(&k.rightUntil, &k.leftUntil)
	case ' ':
		k.mu.Lock()
		k.jump = true
		k.mu.Unlock()
	case 't', 'T':
		k.run(k.Actions.ToggleStrafe)
	case 'v', 'V':
		k.run(k.Actions.ToggleThirdPerson)
	case 'r', 'R':
		k.run(k.Actions.ToggleRotation)
	case 'f', 'F':
		k.run(k.Actions.CycleFrameRate)
	case 'q', 'Q':
		k.run(k.Actions.Quit)
		return false
	}

	return true
}

// pulse holds one direction and releases the opposite one
func (k *Keyboard) pulse(hold, release *time.Time) {
	k.mu.Lock()
	defer k.mu.Unlock()

	*hold = k.now().Add(k.Pulse)
	*release = time.Time{}
}

func (k *Keyboard) orbit(yawSteps, pitchSteps float64) {
	if k.Actions.Orbit != nil {
		k.Actions.Orbit(yawSteps, pitchSteps)
	}
}

func (k *Keyboard) run(action func()) {
	if action != nil {
		action()
	}
}

func (k *Keyboard) Axis() (float64, float64) {
	k.mu.Lock()
	defer k.mu.Unlock()

	now := k.now()
	held := func(until time.Time) float64 {
		if now.Before(until) {
			return 1
		}
		return 0
	}

	return held(k.rightUntil) - held(k.leftUntil), held(k.forwardUntil) - held(k.backwardUntil)
}

func (k *Keyboard) JumpPressed() bool {
	k.mu.Lock()
	defer k.mu.Unlock()

	pressed := k.jump
	k.jump = false
	return pressed
}
