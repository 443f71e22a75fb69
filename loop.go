package bramble

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"
)

// FrameRenderer draws one frame. *Renderer implements it.
type FrameRenderer interface {
	Render()
}

// Loop runs the scene at a fixed logic rate, decoupled from the render rate.
//
// Every Frame call converts the elapsed time into ticks and runs the scene's
// Tick once per whole tick accumulated, catching up after slow frames, then
// renders exactly once.
type Loop struct {
	// TargetRate is the number of logic ticks per second. It also caps the
	// reported FPS.
	TargetRate int

	// Clock returns the time since an arbitrary fixed origin. Defaults to the
	// time since the loop was created.
	Clock func() time.Duration

	// Present, when set, is called by Run after every frame, typically to
	// swap buffers and wait for vsync. Without it Run sleeps for the rest of
	// the tick period.
	Present func()

	scene    *Scene
	renderer FrameRenderer

	delta       float64
	lastTime    time.Duration
	frames      int
	lastFPSTime time.Duration
	fps         int

	running atomic.Bool
	inFrame bool
}

// NewLoop creates a loop ticking scene rate times per second and drawing
// through renderer.
func NewLoop(rate int, scene *Scene, renderer FrameRenderer) *Loop {
	if rate <= 0 {
		panic(ErrInvalidRate.Error())
	}
	start := time.Now()
	return &Loop{
		TargetRate: rate,
		Clock:      func() time.Duration { return time.Since(start) },
		scene:      scene,
		renderer:   renderer,
		fps:        rate,
	}
}

// Frame advances the loop to now: it runs every tick accumulated since the
// previous call, then renders once. It returns the number of ticks run.
// Panics if called re-entrantly.
func (l *Loop) Frame(now time.Duration) int {
	if l.inFrame {
		panic("bramble: Frame called during a frame")
	}
	l.inFrame = true
	defer func() { l.inFrame = false }()

	elapsed := float64(now-l.lastTime) / float64(time.Millisecond)
	l.lastTime = now
	l.delta += elapsed * float64(l.TargetRate) / 1000

	ticks := 0
	for l.delta >= 1 {
		l.scene.Tick()
		l.delta--
		ticks++
	}

	l.renderer.Render()

	l.frames++
	if now-l.lastFPSTime > time.Second {
		l.fps = min(l.frames, l.TargetRate)
		l.frames = 0
		l.lastFPSTime = now
	}
	return ticks
}

// FPS returns the frame rate measured over the last full second, never
// above TargetRate.
func (l *Loop) FPS() int {
	return l.fps
}

// Running reports whether Run is active.
func (l *Loop) Running() bool {
	return l.running.Load()
}

// Stop asks Run to return after the current frame. Safe to call from any
// goroutine.
func (l *Loop) Stop() {
	l.running.Store(false)
}

// Run calls Frame until Stop is called or ctx is done. It returns
// ErrInvalidRate without running a frame if TargetRate is not positive.
func (l *Loop) Run(ctx context.Context) error {
	if l.TargetRate <= 0 {
		return fmt.Errorf("bramble: run loop at %d ticks/s: %w", l.TargetRate, ErrInvalidRate)
	}
	l.begin()
	defer l.end()

	period := time.Second / time.Duration(l.TargetRate)
	for l.running.Load() {
		if err := ctx.Err(); err != nil {
			return err
		}
		start := l.Clock()
		l.Frame(start)
		if l.Present != nil {
			l.Present()
			continue
		}
		if wait := period - (l.Clock() - start); wait > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(wait):
			}
		}
	}
	return nil
}

// begin marks the loop running and emits EventStart on the root.
func (l *Loop) begin() {
	l.running.Store(true)
	l.lastTime = l.Clock()
	l.lastFPSTime = l.lastTime
	Logger().Info("loop started", slog.Int("rate", l.TargetRate))
	l.scene.emit(EventStart, l.scene.root)
}

// end marks the loop stopped and emits EventStop on the root.
func (l *Loop) end() {
	l.running.Store(false)
	l.scene.emit(EventStop, l.scene.root)
	Logger().Info("loop stopped")
}
