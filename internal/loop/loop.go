package loop

import (
	"context"
	"math"
	"sync"
	"time"
)

// UNLIMITED_FRAME_PERIOD paces the loop when no frame rate is set
const UNLIMITED_FRAME_PERIOD = time.Millisecond

// Loop drives a controller the way a game engine does: Frame runs once per
// rendered frame with the real elapsed time, Tick runs at a fixed rate from an
// accumulator. Funcs posted from other goroutines run on the loop goroutine
// before the next frame.
type Loop struct {
	TickDelta        float64
	MaxTicksPerFrame int
	Frame            func(dt float64)
	Tick             func(dt float64)

	mu        sync.Mutex
	posted    []func()
	frameRate float64

	accumulator float64
	ticks       uint64
	frames      uint64
}

func New(tickDelta float64, maxTicksPerFrame int) *Loop {
	return &Loop{
		TickDelta:        tickDelta,
		MaxTicksPerFrame: max(1, maxTicksPerFrame),
	}
}

// Post queues fn to run on the loop goroutine at the next frame boundary
func (l *Loop) Post(fn func()) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.posted = append(l.posted, fn)
}

// SetFrameRate caps Run to hz frames per second, 0 or less runs unlimited
func (l *Loop) SetFrameRate(hz float64) {
	if math.IsNaN(hz) || math.IsInf(hz, 0) {
		hz = 0
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.frameRate = max(0, hz)
}

func (l *Loop) FrameRate() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.frameRate
}

func (l *Loop) Ticks() uint64 {
	return l.ticks
}

func (l *Loop) Frames() uint64 {
	return l.frames
}

// Advance runs one frame of dt seconds and returns the number of ticks it ran.
// Time the tick cap could not consume is dropped instead of carried over.
func (l *Loop) Advance(dt float64) int {
	l.drain()
	if dt < 0 || math.IsNaN(dt) || math.IsInf(dt, 0) {
		dt = 0
	}

	l.frames++
	if l.Frame != nil {
		l.Frame(dt)
	}

	if l.TickDelta <= 0 {
		return 0
	}

	l.accumulator += dt
	ticks := 0
	for l.accumulator >= l.TickDelta && ticks < l.MaxTicksPerFrame {
		if l.Tick != nil {
			l.Tick(l.TickDelta)
		}
		l.accumulator -= l.TickDelta
		l.ticks++
		ticks++
	}
	if l.accumulator >= l.TickDelta {
		l.accumulator = 0
	}

	return ticks
}

func (l *Loop) drain() {
	l.mu.Lock()
	posted := l.posted
	l.posted = nil
	l.mu.Unlock()

	for _, fn := range posted {
		fn()
	}
}

func (l *Loop) framePeriod() time.Duration {
	rate := l.FrameRate()
	if rate <= 0 {
		return UNLIMITED_FRAME_PERIOD
	}
	return time.Duration(float64(time.Second) / rate)
}

// Run advances frames until ctx is cancelled
func (l *Loop) Run(ctx context.Context) error {
	period := l.framePeriod()
	ticker := time.NewTicker(period)
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-ticker.C:
			l.Advance(now.Sub(last).Seconds())
			last = now

			if next := l.framePeriod(); next != period {
				period = next
				ticker.Reset(period)
			}
		}
	}
}
