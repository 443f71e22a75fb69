package bramble

import (
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// defaultTweenStep is the time a TweenGroup advances per rendered frame.
const defaultTweenStep = float32(1.0 / 60)

// TweenGroup animates up to 4 float64 fields on a Node simultaneously.
// Create one via the convenience constructors (TweenPosition, TweenScale,
// TweenTint, TweenAlpha, TweenRotation) and either assign it to the node's
// Animation, which advances it by Step after every draw, or call Update(dt)
// yourself. If the target node is disposed, the group stops immediately.
type TweenGroup struct {
	tweens [4]*gween.Tween
	count  int
	fields [4]*float64
	target *Node
	Done   bool
	// Step is the number of seconds ProcessFrame advances.
	Step float32
	// OnDone is called once when the group finishes.
	OnDone func()
}

// Update advances all tweens by dt seconds and writes values to the target
// fields. If the target node has been disposed, Done is set to true and no
// writes occur.
func (g *TweenGroup) Update(dt float32) {
	if g.Done {
		return
	}

	if g.target != nil && g.target.IsDisposed() {
		g.Done = true
		return
	}

	allDone := true
	for i := 0; i < g.count; i++ {
		val, finished := g.tweens[i].Update(dt)
		*g.fields[i] = float64(val)
		if !finished {
			allDone = false
		}
	}
	g.Done = allDone
	if g.Done && g.OnDone != nil {
		g.OnDone()
	}
}

// ProcessFrame implements Animator.
func (g *TweenGroup) ProcessFrame(*Node) {
	g.Update(g.Step)
}

func newTweenGroup(node *Node, count int) *TweenGroup {
	return &TweenGroup{count: count, target: node, Step: defaultTweenStep}
}

// TweenPosition creates a TweenGroup that animates node.X and node.Y to the
// given target coordinates over the specified duration using the easing function.
func TweenPosition(node *Node, toX, toY float64, duration float32, fn ease.TweenFunc) *TweenGroup {
	g := newTweenGroup(node, 2)
	g.tweens[0] = gween.New(float32(node.X), float32(toX), duration, fn)
	g.tweens[1] = gween.New(float32(node.Y), float32(toY), duration, fn)
	g.fields[0] = &node.X
	g.fields[1] = &node.Y
	return g
}

// TweenScale creates a TweenGroup that animates node.ScaleX and node.ScaleY to
// the given target values over the specified duration using the easing function.
func TweenScale(node *Node, toSX, toSY float64, duration float32, fn ease.TweenFunc) *TweenGroup {
	g := newTweenGroup(node, 2)
	g.tweens[0] = gween.New(float32(node.ScaleX), float32(toSX), duration, fn)
	g.tweens[1] = gween.New(float32(node.ScaleY), float32(toSY), duration, fn)
	g.fields[0] = &node.ScaleX
	g.fields[1] = &node.ScaleY
	return g
}

// TweenTint creates a TweenGroup that animates all four components of the
// node's tint to the target color. A node without a tint starts from white.
func TweenTint(node *Node, to Color, duration float32, fn ease.TweenFunc) *TweenGroup {
	if node.Tint == nil {
		c := ColorWhite
		node.Tint = &c
	}
	tint := node.Tint
	g := newTweenGroup(node, 4)
	g.tweens[0] = gween.New(float32(tint.R), float32(to.R), duration, fn)
	g.tweens[1] = gween.New(float32(tint.G), float32(to.G), duration, fn)
	g.tweens[2] = gween.New(float32(tint.B), float32(to.B), duration, fn)
	g.tweens[3] = gween.New(float32(tint.A), float32(to.A), duration, fn)
	g.fields[0] = &tint.R
	g.fields[1] = &tint.G
	g.fields[2] = &tint.B
	g.fields[3] = &tint.A
	return g
}

// TweenAlpha creates a TweenGroup that animates node.Alpha to the target value
// over the specified duration using the easing function.
func TweenAlpha(node *Node, to float64, duration float32, fn ease.TweenFunc) *TweenGroup {
	g := newTweenGroup(node, 1)
	g.tweens[0] = gween.New(float32(node.Alpha), float32(to), duration, fn)
	g.fields[0] = &node.Alpha
	return g
}

// TweenRotation creates a TweenGroup that animates node.Rotation (degrees)
// to the target value over the specified duration using the easing function.
func TweenRotation(node *Node, to float64, duration float32, fn ease.TweenFunc) *TweenGroup {
	g := newTweenGroup(node, 1)
	g.tweens[0] = gween.New(float32(node.Rotation), float32(to), duration, fn)
	g.fields[0] = &node.Rotation
	return g
}

// --- Frame animation ---

// FrameAnimation flips a sprite through a sequence of regions, holding each
// for FrameDelay rendered frames.
type FrameAnimation struct {
	Frames     []*TextureRegion
	FrameDelay int
	Loop       bool
	Playing    bool
	// OnComplete is called when a non-looping animation reaches its last frame.
	OnComplete func()

	current int
	counter int
}

// NewFrameAnimation creates a looping, playing animation over frames.
func NewFrameAnimation(frames []*TextureRegion, delay int) *FrameAnimation {
	return &FrameAnimation{Frames: frames, FrameDelay: delay, Loop: true, Playing: true}
}

// Frame returns the index of the current frame.
func (a *FrameAnimation) Frame() int {
	return a.current
}

// SetFrame jumps to frame i.
func (a *FrameAnimation) SetFrame(i int) {
	if i < 0 || i >= len(a.Frames) {
		panic("bramble: animation frame out of range")
	}
	a.current = i
	a.counter = 0
}

// Play starts or resumes the animation.
func (a *FrameAnimation) Play() { a.Playing = true }

// Stop pauses the animation on its current frame.
func (a *FrameAnimation) Stop() { a.Playing = false }

// ProcessFrame implements Animator. The node's Region is set to the
// current frame.
func (a *FrameAnimation) ProcessFrame(n *Node) {
	if len(a.Frames) == 0 {
		return
	}
	if a.Playing {
		a.counter++
		if a.counter >= max(a.FrameDelay, 1) {
			a.counter = 0
			switch {
			case a.current+1 < len(a.Frames):
				a.current++
			case a.Loop:
				a.current = 0
			default:
				a.Playing = false
				if a.OnComplete != nil {
					a.OnComplete()
				}
			}
		}
	}
	n.Region = a.Frames[a.current]
}
