package input

import "testing"

func TestScript_Replay(t *testing.T) {
	script := NewScript(
		Step{Frames: 2, Y: 1},
		Step{Frames: 0, X: 5},
		Step{Frames: 1, X: -1, Jump: true},
	)

	if script.Frames() != 3 {
		t.Fatalf("Frames() = %d, want 3", script.Frames())
	}

	type frame struct {
		x, y float64
		jump bool
	}
	want := []frame{
		{0, 1, false},
		{0, 1, false},
		{-1, 0, true},
		{0, 0, false},
	}

	for i, w := range want {
		x, y := script.Axis()
		jump := script.JumpPressed()
		if x != w.x || y != w.y || jump != w.jump {
			t.Errorf("frame %d = (%v, %v, %v), want (%v, %v, %v)", i, x, y, jump, w.x, w.y, w.jump)
		}
	}

	if !script.Done() {
		t.Error("Done() = false after the last step")
	}
}

func TestScript_JumpOnlyOnFirstFrame(t *testing.T) {
	script := NewScript(Step{Frames: 3, Jump: true})

	jumps := 0
	for range 3 {
		script.Axis()
		if script.JumpPressed() {
			jumps++
		}
	}

	if jumps != 1 {
		t.Errorf("jumps = %d, want 1", jumps)
	}
}

func TestScript_Empty(t *testing.T) {
	script := NewScript()

	if !script.Done() {
		t.Error("Done() = false for an empty script")
	}
	if x, y := script.Axis(); x != 0 || y != 0 {
		t.Errorf("Axis() = (%v, %v), want zero", x, y)
	}
}
