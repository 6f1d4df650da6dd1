package input

import "github.com/akmonengine/motor"

// Step holds an input for a number of frames. Jump is pressed on its first frame.
type Step struct {
	Frames int     `yaml:"frames"`
	X      float64 `yaml:"x"`
	Y      float64 `yaml:"y"`
	Jump   bool    `yaml:"jump"`
}

// Script replays steps one frame at a time, for headless runs and tests.
// Axis advances the script, it must be polled once per frame before JumpPressed.
type Script struct {
	steps []Step
	step  int
	frame int
	// jumpPending is set when a step with Jump starts
	jumpPending bool
}

var _ motor.InputSource = (*Script)(nil)

func NewScript(steps ...Step) *Script {
	kept := make([]Step, 0, len(steps))
	for _, s := range steps {
		if s.Frames > 0 {
			kept = append(kept, s)
		}
	}
	return &Script{steps: kept, frame: -1}
}

func (s *Script) Axis() (float64, float64) {
	if s.Done() {
		return 0, 0
	}

	s.frame++
	if s.frame >= s.steps[s.step].Frames {
		s.step++
		s.frame = 0
	}
	if s.Done() {
		return 0, 0
	}

	current := s.steps[s.step]
	if s.frame == 0 && current.Jump {
		s.jumpPending = true
	}
	return current.X, current.Y
}

func (s *Script) JumpPressed() bool {
	pressed := s.jumpPending
	s.jumpPending = false
	return pressed
}

// Done reports whether every step has been played
func (s *Script) Done() bool {
	return s.step >= len(s.steps)
}

// Frames is the total length of the script
func (s *Script) Frames() int {
	total := 0
	for _, step := range s.steps {
		total += step.Frames
	}
	return total
}
