package bramble

import (
	"math"
	"time"
)

// renderContext is the state a node inherits from its parent during a
// render pass. Rotation is deliberately absent: it is applied per node.
type renderContext struct {
	x, y           float64
	scaleX, scaleY float64
	alpha          float64
}

var rootContext = renderContext{scaleX: 1, scaleY: 1, alpha: 1}

// Renderer draws a Scene through a Device. It owns the per-pass state (the
// z-order counter and scratch vertex buffers) and flushes the texture
// pipeline before and after each traversal.
type Renderer struct {
	scene    *Scene
	device   Device
	textures TexturePipeline

	zOrder int
	inPass bool

	// OnRendered, when set, is called at the end of every pass.
	OnRendered func()

	quadBuf []Quad
	triBuf  []Triangle
	segBuf  []Segment
	stats   debugStats
}

// NewRenderer creates a renderer for scene.
func NewRenderer(scene *Scene, device Device, textures TexturePipeline) *Renderer {
	return &Renderer{
		scene:    scene,
		device:   device,
		textures: textures,
	}
}

// Scene returns the rendered scene.
func (r *Renderer) Scene() *Scene {
	return r.scene
}

// Render performs one full pass: pending uploads, clear, traversal from the
// root, pending deletions. Panics if called while a pass is in progress.
func (r *Renderer) Render() {
	if r.inPass {
		panic("bramble: Render called during a render pass")
	}
	r.inPass = true
	defer func() { r.inPass = false }()

	s := r.scene
	debug := s.debug
	r.stats = debugStats{}
	var t0 time.Time
	if debug {
		t0 = time.Now()
	}

	for _, t := range s.takeReleased() {
		r.textures.UnloadTexture(t)
	}
	r.stats.uploads = r.textures.LoadPending()

	if debug {
		r.stats.loadTime = time.Since(t0)
		t0 = time.Now()
	}

	r.zOrder = 0
	r.device.Clear(s.Background)
	r.renderNode(s.root, rootContext)

	if debug {
		r.stats.traverseTime = time.Since(t0)
		t0 = time.Now()
	}

	r.stats.deletions = r.textures.UnloadPending()

	if debug {
		r.stats.unloadTime = time.Since(t0)
		s.debugLog(r.stats)
	}
	if r.OnRendered != nil {
		r.OnRendered()
	}
}

// LastZOrder returns the number of nodes drawn by the last pass.
func (r *Renderer) LastZOrder() int {
	return r.zOrder
}

// renderNode draws n and its subtree. Invisible nodes are skipped with
// their subtree and consume no z-order.
func (r *Renderer) renderNode(n *Node, ctx renderContext) {
	if !n.Visible {
		return
	}
	s := r.scene

	if n.OnPreFrame != nil {
		n.OnPreFrame(n)
	}
	s.emit(EventPreFrame, n)

	r.zOrder++
	n.ZOrder = r.zOrder
	r.stats.visibleNodes++

	ox := ctx.scaleX * n.X
	oy := ctx.scaleY * n.Y
	if n.PixelAligned {
		ox = math.Round(ox)
		oy = math.Round(oy)
	}
	cur := renderContext{
		x:      ctx.x + ox,
		y:      ctx.y + oy,
		scaleX: ctx.scaleX * n.ScaleX,
		scaleY: ctx.scaleY * n.ScaleY,
		alpha:  ctx.alpha * n.Alpha,
	}
	n.worldMatrix = nodeMatrix(cur.x, cur.y, cur.scaleX, cur.scaleY, n.Rotation)
	n.worldAlpha = cur.alpha
	n.drawn = true

	tint := Color{1, 1, 1, cur.alpha}
	if n.Tint != nil {
		tint = Color{n.Tint.R, n.Tint.G, n.Tint.B, cur.alpha * n.Tint.A}
	}

	switch n.Kind {
	case KindGroup:
		for i := 0; i < len(n.children); i++ {
			id := n.children[i]
			if c := s.nodes[id]; c != nil {
				r.renderNode(c, cur)
			}
			i = n.resumeIndex(i, id)
		}
	case KindSprite:
		r.drawSprite(n, tint)
	case KindBitmapText:
		r.drawText(n, tint)
	case KindShape:
		r.drawShape(n, tint)
	}

	if n.Animation != nil {
		n.Animation.ProcessFrame(n)
	}

	if n.OnPostFrame != nil {
		n.OnPostFrame(n)
	}
	s.emit(EventPostFrame, n)
}

// bindTexture enables and binds t. It reports false when t cannot be drawn
// this pass, which is not an error.
func (r *Renderer) bindTexture(t *Texture) bool {
	if t == nil || t.Disposed() {
		return false
	}
	r.textures.Enable(t)
	if !r.textures.Bind(t) {
		r.textures.Disable(t)
		return false
	}
	return true
}
