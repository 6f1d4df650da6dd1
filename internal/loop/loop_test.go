package loop

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"
)

func almostEqual(a, b, epsilon float64) bool {
	return math.Abs(a-b) < epsilon
}

func TestAdvance_TickCount(t *testing.T) {
	tests := []struct {
		name      string
		frames    []float64
		maxTicks  int
		wantTicks []int
	}{
		{"exact ticks", []float64{0.04, 0.02}, 5, []int{2, 1}},
		{"accumulates remainders", []float64{0.015, 0.015, 0.015}, 5, []int{0, 1, 1}},
		{"capped", []float64{0.5}, 3, []int{3}},
		{"backlog dropped after cap", []float64{0.5, 0.03}, 3, []int{3, 1}},
		{"negative frame ignored", []float64{-1, 0.02}, 5, []int{0, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := New(0.02, tt.maxTicks)
			for i, dt := range tt.frames {
				if got := l.Advance(dt); got != tt.wantTicks[i] {
					t.Errorf("frame %d: Advance(%v) = %d ticks, want %d", i, dt, got, tt.wantTicks[i])
				}
			}
		})
	}
}

func TestAdvance_CallbackOrder(t *testing.T) {
	var calls []string
	l := New(0.02, 5)
	l.Frame = func(dt float64) { calls = append(calls, "frame") }
	l.Tick = func(dt float64) {
		if !almostEqual(dt, 0.02, 1e-12) {
			t.Errorf("tick dt = %v, want 0.02", dt)
		}
		calls = append(calls, "tick")
	}
	l.Post(func() { calls = append(calls, "posted") })

	l.Advance(0.041)

	want := []string{"posted", "frame", "tick", "tick"}
	if len(calls) != len(want) {
		t.Fatalf("calls = %v, want %v", calls, want)
	}
	for i := range want {
		if calls[i] != want[i] {
			t.Errorf("calls[%d] = %q, want %q", i, calls[i], want[i])
		}
	}
	if l.Ticks() != 2 || l.Frames() != 1 {
		t.Errorf("counters = %d ticks %d frames, want 2 and 1", l.Ticks(), l.Frames())
	}
}

func TestPost_RunsOnce(t *testing.T) {
	l := New(0.02, 5)
	runs := 0
	l.Post(func() { runs++ })

	l.Advance(0)
	l.Advance(0)

	if runs != 1 {
		t.Errorf("posted func ran %d times, want 1", runs)
	}
}

func TestSetFrameRate(t *testing.T) {
	l := New(0.02, 5)

	l.SetFrameRate(30)
	if l.framePeriod() != time.Second/30 {
		t.Errorf("framePeriod() = %v, want %v", l.framePeriod(), time.Second/30)
	}

	for _, hz := range []float64{0, -5, math.NaN(), math.Inf(1)} {
		l.SetFrameRate(hz)
		if l.FrameRate() != 0 || l.framePeriod() != UNLIMITED_FRAME_PERIOD {
			t.Errorf("SetFrameRate(%v): rate %v period %v, want unlimited", hz, l.FrameRate(), l.framePeriod())
		}
	}
}

func TestRun_StopsOnCancel(t *testing.T) {
	l := New(0.001, 10)
	var mu sync.Mutex
	ticks := 0
	l.Tick = func(dt float64) {
		mu.Lock()
		ticks++
		mu.Unlock()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := l.Run(ctx)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Run() = %v, want context.DeadlineExceeded", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if ticks == 0 {
		t.Error("Run() never ticked")
	}
}
