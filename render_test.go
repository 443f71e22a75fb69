package bramble

import (
	"image/color"
	"math"
	"strings"
	"testing"
)

func approxEqual(a, b float64) bool {
	return math.Abs(a-b) < epsilon
}

// --- Pass structure ---

func TestRenderClearsToBackground(t *testing.T) {
	s, d, _, r := newTestRenderer()
	s.Background = Color{0.1, 0.2, 0.3, 1}
	r.Render()
	if len(d.clears) != 1 {
		t.Fatalf("clears = %d, want 1", len(d.clears))
	}
	if d.clears[0] != s.Background {
		t.Errorf("clear color = %v, want %v", d.clears[0], s.Background)
	}
}

func TestRenderZOrderIsPreOrder(t *testing.T) {
	s, _, _, r := newTestRenderer()
	a := s.NewGroup("a")
	a1 := s.NewGroup("a1")
	b := s.NewGroup("b")
	s.Root().AddChild(a)
	a.AddChild(a1)
	s.Root().AddChild(b)

	r.Render()

	want := map[*Node]int{s.Root(): 1, a: 2, a1: 3, b: 4}
	for n, z := range want {
		if n.ZOrder != z {
			t.Errorf("%s.ZOrder = %d, want %d", n.Name, n.ZOrder, z)
		}
	}
	if r.LastZOrder() != 4 {
		t.Errorf("LastZOrder = %d, want 4", r.LastZOrder())
	}
}

func TestRenderZOrderRestartsEveryPass(t *testing.T) {
	s, _, _, r := newTestRenderer()
	a := s.NewGroup("a")
	s.Root().AddChild(a)
	r.Render()
	r.Render()
	if a.ZOrder != 2 {
		t.Errorf("ZOrder = %d, want 2", a.ZOrder)
	}
}

func TestRenderSkipsInvisibleSubtree(t *testing.T) {
	s, d, _, r := newTestRenderer()
	hidden := s.NewGroup("hidden")
	hidden.Visible = false
	inner := s.NewRectangle("inner", 4, 4, ColorWhite)
	hidden.AddChild(inner)
	after := s.NewGroup("after")
	s.Root().AddChild(hidden)
	s.Root().AddChild(after)

	r.Render()

	if len(d.draws) != 0 {
		t.Errorf("draws = %d, want 0", len(d.draws))
	}
	if after.ZOrder != 2 {
		t.Errorf("after.ZOrder = %d, want 2 (invisible nodes consume no z-order)", after.ZOrder)
	}
	if inner.ZOrder != 0 {
		t.Errorf("inner.ZOrder = %d, want 0", inner.ZOrder)
	}
}

func TestRenderReentrantPanics(t *testing.T) {
	s, _, _, r := newTestRenderer()
	var recovered any
	s.Root().OnPreFrame = func(*Node) {
		defer func() { recovered = recover() }()
		r.Render()
	}
	r.Render()
	if recovered == nil {
		t.Fatal("expected panic from nested Render")
	}
}

func TestRenderFrameCallbackOrder(t *testing.T) {
	s, _, _, r := newTestRenderer()
	a := s.NewGroup("a")
	b := s.NewGroup("b")
	s.Root().AddChild(a)
	a.AddChild(b)

	var log []string
	for _, n := range []*Node{s.Root(), a, b} {
		n.OnPreFrame = func(n *Node) { log = append(log, "pre:"+n.Name) }
		n.OnPostFrame = func(n *Node) { log = append(log, "post:"+n.Name) }
	}
	r.Render()

	got := strings.Join(log, " ")
	want := "pre:root pre:a pre:b post:b post:a post:root"
	if got != want {
		t.Errorf("order = %q, want %q", got, want)
	}
}

func TestRenderEmitsFrameEvents(t *testing.T) {
	s, _, _, r := newTestRenderer()
	rec := &recordingSink{}
	s.SetEventSink(rec)
	a := s.NewGroup("a")
	s.Root().AddChild(a)
	rec.events = nil

	r.Render()

	want := []SceneEvent{
		{Type: EventPreFrame, Node: s.Root().ID},
		{Type: EventPreFrame, Node: a.ID},
		{Type: EventPostFrame, Node: a.ID},
		{Type: EventPostFrame, Node: s.Root().ID},
	}
	if len(rec.events) != len(want) {
		t.Fatalf("events = %v, want %v", rec.events, want)
	}
	for i := range want {
		if rec.events[i] != want[i] {
			t.Errorf("event[%d] = %v, want %v", i, rec.events[i], want[i])
		}
	}
}

func TestRenderCallsOnRendered(t *testing.T) {
	_, _, _, r := newTestRenderer()
	calls := 0
	r.OnRendered = func() { calls++ }
	r.Render()
	r.Render()
	if calls != 2 {
		t.Errorf("OnRendered calls = %d, want 2", calls)
	}
}

// --- Transform composition ---

func TestRenderScaleComposesOffsets(t *testing.T) {
	s, _, _, r := newTestRenderer()
	parent := s.NewGroup("parent")
	parent.SetPosition(5, 5)
	parent.SetScale(2, 2)
	child := s.NewGroup("child")
	child.SetPosition(10, 0)
	child.SetScale(3, 3)
	s.Root().AddChild(parent)
	parent.AddChild(child)

	r.Render()

	m := child.WorldMatrix()
	if !approxEqual(m[4], 25) || !approxEqual(m[5], 5) {
		t.Errorf("translation = (%v, %v), want (25, 5)", m[4], m[5])
	}
	if !approxEqual(m[0], 6) || !approxEqual(m[3], 6) {
		t.Errorf("scale = (%v, %v), want (6, 6)", m[0], m[3])
	}
}

func TestRenderRotationNotInherited(t *testing.T) {
	s, _, _, r := newTestRenderer()
	parent := s.NewGroup("parent")
	parent.SetRotation(90)
	child := s.NewGroup("child")
	child.SetPosition(10, 0)
	s.Root().AddChild(parent)
	parent.AddChild(child)

	r.Render()

	pm := parent.WorldMatrix()
	if !approxEqual(pm[0], 0) || !approxEqual(pm[1], 1) {
		t.Errorf("parent matrix = %v, want a 90 degree rotation", pm)
	}
	cm := child.WorldMatrix()
	want := Affine{1, 0, 0, 1, 10, 0}
	for i := range want {
		if !approxEqual(cm[i], want[i]) {
			t.Fatalf("child matrix = %v, want %v", cm, want)
		}
	}
}

func TestRenderOwnRotation(t *testing.T) {
	s, _, _, r := newTestRenderer()
	n := s.NewGroup("n")
	n.SetPosition(10, 20)
	n.SetRotation(90)
	s.Root().AddChild(n)
	r.Render()

	x, y := n.LocalToWorld(1, 0)
	if !approxEqual(x, 10) || !approxEqual(y, 21) {
		t.Errorf("LocalToWorld(1, 0) = (%v, %v), want (10, 21)", x, y)
	}
}

func TestRenderPixelAlignedRoundsOffset(t *testing.T) {
	s, _, _, r := newTestRenderer()
	parent := s.NewGroup("parent")
	parent.SetScale(1.5, 1.5)
	child := s.NewGroup("child")
	child.SetPosition(1, 3)
	child.PixelAligned = true
	s.Root().AddChild(parent)
	parent.AddChild(child)

	r.Render()

	m := child.WorldMatrix()
	if m[4] != 2 || m[5] != 5 {
		t.Errorf("translation = (%v, %v), want (2, 5)", m[4], m[5])
	}
}

func TestRenderAlphaMultiplies(t *testing.T) {
	s, d, _, r := newTestRenderer()
	parent := s.NewGroup("parent")
	parent.Alpha = 0.5
	rect := s.NewRectangle("rect", 4, 4, Color{1, 0, 0, 0.5})
	rect.Alpha = 0.5
	s.Root().AddChild(parent)
	parent.AddChild(rect)

	r.Render()

	if !approxEqual(rect.WorldAlpha(), 0.25) {
		t.Errorf("WorldAlpha = %v, want 0.25", rect.WorldAlpha())
	}
	if len(d.draws) != 1 {
		t.Fatalf("draws = %d, want 1", len(d.draws))
	}
	tint := d.draws[0].tint
	if tint.R != 1 || tint.G != 0 || !approxEqual(tint.A, 0.125) {
		t.Errorf("tint = %v, want {1 0 0 0.125}", tint)
	}
}

// --- Kinds ---

func TestRenderRectangle(t *testing.T) {
	s, d, _, r := newTestRenderer()
	rect := s.NewRectangle("rect", 10, 20, ColorWhite)
	s.Root().AddChild(rect)
	r.Render()

	if len(d.draws) != 1 || d.draws[0].op != "triangles" {
		t.Fatalf("draws = %+v, want one triangles call", d.draws)
	}
	tris := d.draws[0].tris
	if len(tris) != 2 {
		t.Fatalf("triangles = %d, want 2", len(tris))
	}
	if tris[0].B != (Vec2{10, 0}) || tris[1].C != (Vec2{0, 20}) {
		t.Errorf("triangles = %v", tris)
	}
}

func TestRenderEmptyShapesDrawNothing(t *testing.T) {
	s, d, _, r := newTestRenderer()
	s.Root().AddChild(s.NewRectangle("zero", 0, 10, ColorWhite))
	s.Root().AddChild(s.NewFreeShape("free", nil, ColorWhite))
	s.Root().AddChild(s.NewLineBatch("lines", nil, ColorWhite))
	r.Render()
	if len(d.draws) != 0 {
		t.Errorf("draws = %d, want 0", len(d.draws))
	}
}

func TestRenderLineBatch(t *testing.T) {
	s, d, _, r := newTestRenderer()
	n := s.NewLineBatch("lines", []Line{
		{A: Vec2{0, 0}, B: Vec2{10, 0}},
	}, ColorWhite)
	n.Shape.LineWidth = 3
	s.Root().AddChild(n)
	r.Render()

	if len(d.draws) != 1 || d.draws[0].op != "lines" {
		t.Fatalf("draws = %+v, want one lines call", d.draws)
	}
	if d.draws[0].width != 3 {
		t.Errorf("width = %v, want 3", d.draws[0].width)
	}
	if len(d.draws[0].segs) != 1 {
		t.Errorf("segments = %v, want 1", d.draws[0].segs)
	}
}

func TestRenderSpriteDrawsAfterUpload(t *testing.T) {
	s, d, e, r := newTestRenderer()
	tex := e.CreateTexture(solidImage(8, 8, color.RGBA{255, 0, 0, 255}))
	sp := s.NewSprite("sp", tex.Region())
	s.Root().AddChild(sp)

	r.Render()

	if len(d.uploads) != 1 || d.uploads[0] != tex.ID {
		t.Fatalf("uploads = %v, want [%d]", d.uploads, tex.ID)
	}
	if len(d.draws) != 1 || d.draws[0].op != "quads" {
		t.Fatalf("draws = %+v, want one quads call", d.draws)
	}
	if d.draws[0].textID != tex.ID {
		t.Errorf("bound texture = %d, want %d", d.draws[0].textID, tex.ID)
	}
	if d.bound != 0 {
		t.Error("texture should be unbound after drawing")
	}
}

func TestRenderSkipsTextureCreatedDuringPass(t *testing.T) {
	s, d, e, r := newTestRenderer()
	sp := s.NewSprite("sp", nil)
	s.Root().AddChild(sp)
	sp.OnPreFrame = func(n *Node) {
		if n.Region == nil {
			n.Region = e.CreateTexture(solidImage(4, 4, color.RGBA{A: 255})).Region()
		}
	}

	r.Render()
	if len(d.draws) != 0 {
		t.Fatalf("first pass draws = %d, want 0", len(d.draws))
	}

	r.Render()
	if len(d.draws) != 1 {
		t.Errorf("second pass draws = %d, want 1", len(d.draws))
	}
}

func TestRenderSkipsDisposedTexture(t *testing.T) {
	s, d, e, r := newTestRenderer()
	tex := e.CreateTexture(solidImage(4, 4, color.RGBA{A: 255}))
	s.Root().AddChild(s.NewSprite("sp", tex.Region()))
	r.Render()
	if len(d.draws) != 1 {
		t.Fatalf("draws = %d, want 1", len(d.draws))
	}

	e.UnloadTexture(tex)
	d.draws = nil
	r.Render()

	if len(d.draws) != 0 {
		t.Errorf("draws after unload = %d, want 0", len(d.draws))
	}
	if len(d.deletes) != 1 {
		t.Errorf("deletes = %d, want 1", len(d.deletes))
	}
}

func TestRenderSkipsForeignTexture(t *testing.T) {
	s, d, _, r := newTestRenderer()
	foreign := &Texture{ID: 99, Width: 4, Height: 4}
	s.Root().AddChild(s.NewSprite("sp", foreign.Region()))
	r.Render()
	if len(d.draws) != 0 {
		t.Errorf("draws = %d, want 0", len(d.draws))
	}
}

func TestRenderUnloadsAfterTraversal(t *testing.T) {
	s, d, e, r := newTestRenderer()
	tex := e.CreateTexture(solidImage(4, 4, color.RGBA{A: 255}))
	sp := s.NewSprite("sp", tex.Region())
	s.Root().AddChild(sp)
	r.Render()

	sp.OnPostFrame = func(*Node) { e.UnloadTexture(tex) }
	d.draws = nil
	r.Render()

	// Unloaded after its draw in the same pass.
	if len(d.draws) != 1 {
		t.Errorf("draws = %d, want 1", len(d.draws))
	}
	if len(d.deletes) != 1 {
		t.Errorf("deletes = %d, want 1", len(d.deletes))
	}
}

func TestRenderAnimationRunsAfterDraw(t *testing.T) {
	s, _, _, r := newTestRenderer()
	n := s.NewGroup("n")
	s.Root().AddChild(n)
	anim := &countingAnimator{}
	n.Animation = anim
	n.OnPostFrame = func(*Node) {
		if anim.calls != 1 {
			t.Errorf("animation calls at post frame = %d, want 1", anim.calls)
		}
	}
	r.Render()
	if anim.calls != 1 {
		t.Errorf("animation calls = %d, want 1", anim.calls)
	}
}

func TestRenderBitmapText(t *testing.T) {
	s, d, e, r := newTestRenderer()
	font := newTestFont(t, e)
	n := s.NewBitmapText("label", font, "AB")
	s.Root().AddChild(n)

	r.Render()

	if len(d.draws) != 1 {
		t.Fatalf("draws = %d, want 1", len(d.draws))
	}
	if len(d.draws[0].quads) != 2 {
		t.Errorf("quads = %d, want 2", len(d.draws[0].quads))
	}
	if d.draws[0].textID != font.Texture.ID {
		t.Errorf("bound texture = %d, want font atlas %d", d.draws[0].textID, font.Texture.ID)
	}
}

func TestRenderCachedText(t *testing.T) {
	s, d, e, r := newTestRenderer()
	font := newTestFont(t, e)
	n := s.NewBitmapText("label", font, "AB")
	n.Text.CacheAsSprite = true
	s.Root().AddChild(n)

	// First pass bakes; the baked texture is uploaded by the next pass.
	r.Render()
	if len(d.draws) != 0 {
		t.Fatalf("first pass draws = %d, want 0", len(d.draws))
	}
	cache := n.Text.CachedTexture()
	if cache == nil {
		t.Fatal("expected a cached texture after the first pass")
	}

	r.Render()
	if len(d.draws) != 1 || len(d.draws[0].quads) != 1 {
		t.Fatalf("second pass draws = %+v, want one single-quad call", d.draws)
	}
	if d.draws[0].textID != cache.ID {
		t.Errorf("bound texture = %d, want cache %d", d.draws[0].textID, cache.ID)
	}

	// Unchanged text reuses the cache.
	r.Render()
	if n.Text.CachedTexture() != cache {
		t.Error("cache should be reused while text is unchanged")
	}

	n.Text.SetText("BA")
	r.Render()
	if !cache.Disposed() {
		t.Error("old cache should be unloaded after a text change")
	}
	if n.Text.CachedTexture() == cache {
		t.Error("text change should rebake the cache")
	}
}

func TestRenderCachedTextReleasedOnDispose(t *testing.T) {
	s, _, e, r := newTestRenderer()
	font := newTestFont(t, e)
	n := s.NewBitmapText("label", font, "A")
	n.Text.CacheAsSprite = true
	s.Root().AddChild(n)
	r.Render()
	cache := n.Text.CachedTexture()
	if cache == nil {
		t.Fatal("expected a cached texture")
	}

	n.Dispose()
	r.Render()
	if !cache.Disposed() {
		t.Error("cache of a disposed node should be unloaded by the next pass")
	}
}

// --- Helpers ---

type countingAnimator struct {
	calls int
}

func (a *countingAnimator) ProcessFrame(*Node) { a.calls++ }

type recordingSink struct {
	events []SceneEvent
}

func (r *recordingSink) EmitEvent(e SceneEvent) {
	r.events = append(r.events, e)
}

// newTestFont creates a font with glyphs A (8×10) and B (6×10) on a 16×16
// atlas owned by e.
func newTestFont(t *testing.T, e *TextureEngine) *BitmapFont {
	t.Helper()
	tex := e.CreateTexture(solidImage(16, 16, color.RGBA{255, 255, 255, 255}))
	font, err := ParseBitmapFont(strings.NewReader("A 0 0 8 10\nB 8 0 6 10\n"), tex)
	if err != nil {
		t.Fatalf("ParseBitmapFont: %v", err)
	}
	return font
}

func TestRenderSiblingAfterSelfRemoval(t *testing.T) {
	s, d, _, r := newTestRenderer()
	a := s.NewRectangle("a", 4, 4, ColorWhite)
	b := s.NewRectangle("b", 4, 4, ColorWhite)
	s.Root().AddChild(a)
	s.Root().AddChild(b)
	a.OnPostFrame = func(n *Node) { n.RemoveFromParent() }

	r.Render()
	if len(d.draws) != 2 {
		t.Fatalf("draws = %d, want 2", len(d.draws))
	}
	if b.ZOrder != 3 {
		t.Errorf("b.ZOrder = %d, want 3", b.ZOrder)
	}

	d.draws = nil
	r.Render()
	if len(d.draws) != 1 || b.ZOrder != 2 {
		t.Errorf("second pass draws = %d, b.ZOrder = %d, want 1, 2", len(d.draws), b.ZOrder)
	}
}
