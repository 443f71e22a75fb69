package bramble

import (
	"strings"
	"testing"
)

func TestNewScene(t *testing.T) {
	s := NewScene(640, 480)
	if s.Width() != 640 || s.Height() != 480 {
		t.Errorf("size = %vx%v, want 640x480", s.Width(), s.Height())
	}
	if s.Background != ColorBlack {
		t.Errorf("Background = %v, want black", s.Background)
	}
	root := s.Root()
	if root == nil || root.Kind != KindGroup {
		t.Fatal("root should be a group")
	}
	if root.ID != 1 {
		t.Errorf("root.ID = %d, want 1", root.ID)
	}
	if !root.InScene() {
		t.Error("root should be in scene")
	}
	if s.NodeCount() != 1 {
		t.Errorf("NodeCount = %d, want 1", s.NodeCount())
	}
}

func TestTickChildrenBeforeParent(t *testing.T) {
	s := NewScene(10, 10)
	a := s.NewGroup("a")
	a1 := s.NewGroup("a1")
	a2 := s.NewGroup("a2")
	b := s.NewGroup("b")
	s.Root().AddChild(a)
	a.AddChild(a1)
	a.AddChild(a2)
	s.Root().AddChild(b)

	var got []string
	for _, n := range []*Node{s.Root(), a, a1, a2, b} {
		n.OnTick = func(n *Node) { got = append(got, n.Name) }
	}
	s.Tick()

	want := "a1 a2 a b root"
	if strings.Join(got, " ") != want {
		t.Errorf("tick order = %v, want %q", got, want)
	}
}

func TestTickSkipsInvisible(t *testing.T) {
	s := NewScene(10, 10)
	hidden := s.NewGroup("hidden")
	hidden.Visible = false
	inner := s.NewGroup("inner")
	hidden.AddChild(inner)
	s.Root().AddChild(hidden)

	ticks := 0
	hidden.OnTick = func(*Node) { ticks++ }
	inner.OnTick = func(*Node) { ticks++ }
	s.Tick()

	if ticks != 0 {
		t.Errorf("ticks = %d, want 0", ticks)
	}
}

func TestTickSkipsDetached(t *testing.T) {
	s := NewScene(10, 10)
	n := s.NewGroup("detached")
	ticked := false
	n.OnTick = func(*Node) { ticked = true }
	s.Tick()
	if ticked {
		t.Error("detached node should not tick")
	}
}

func TestTickEmitsEvents(t *testing.T) {
	s := NewScene(10, 10)
	rec := &recordingSink{}
	s.SetEventSink(rec)
	s.Tick()
	if len(rec.events) != 1 || rec.events[0].Type != EventTick || rec.events[0].Node != s.Root().ID {
		t.Errorf("events = %v, want one tick on root", rec.events)
	}
}

func TestSetSize(t *testing.T) {
	s := NewScene(100, 100)
	rec := &recordingSink{}
	s.SetEventSink(rec)
	var got [][2]float64
	s.OnResize(func(w, h float64) { got = append(got, [2]float64{w, h}) })

	s.SetSize(200, 150)
	s.SetSize(200, 150) // unchanged
	s.SetWidth(300)
	s.SetHeight(50)

	want := [][2]float64{{200, 150}, {300, 150}, {300, 50}}
	if len(got) != len(want) {
		t.Fatalf("resize calls = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("resize[%d] = %v, want %v", i, got[i], want[i])
		}
	}
	if len(rec.events) != 3 {
		t.Fatalf("events = %d, want 3", len(rec.events))
	}
	e := rec.events[0]
	if e.Type != EventResize || e.Width != 200 || e.Height != 150 {
		t.Errorf("event = %+v", e)
	}
}

func TestSetSizeNegativePanics(t *testing.T) {
	s := NewScene(10, 10)
	assertPanics(t, func() { s.SetSize(-1, 10) })
}

func TestWalk(t *testing.T) {
	s := NewScene(10, 10)
	a := s.NewGroup("a")
	a1 := s.NewGroup("a1")
	b := s.NewGroup("b")
	b.Visible = false
	s.Root().AddChild(a)
	a.AddChild(a1)
	s.Root().AddChild(b)

	var got []string
	s.Walk(s.Root(), func(n *Node) bool {
		got = append(got, n.Name)
		return n != a
	})
	if strings.Join(got, " ") != "root a b" {
		t.Errorf("walk = %v, want [root a b]", got)
	}
}

func TestDebugModeWarnsOnDeepTree(t *testing.T) {
	s := NewScene(10, 10)
	s.SetDebugMode(true)
	if !s.DebugMode() {
		t.Fatal("DebugMode should be on")
	}
	buf := captureLogs(t)

	parent := s.Root()
	for i := 0; i <= debugMaxTreeDepth; i++ {
		g := s.NewGroup("deep")
		parent.AddChild(g)
		parent = g
	}
	if !strings.Contains(buf.String(), "tree depth exceeds threshold") {
		t.Errorf("log = %q, want depth warning", buf.String())
	}
}

func TestTickSiblingAfterSelfRemoval(t *testing.T) {
	s := NewScene(10, 10)
	a := s.NewGroup("a")
	b := s.NewGroup("b")
	s.Root().AddChild(a)
	s.Root().AddChild(b)

	aTicks, bTicks := 0, 0
	a.OnTick = func(n *Node) {
		aTicks++
		n.RemoveFromParent()
	}
	b.OnTick = func(*Node) { bTicks++ }

	s.Tick()
	if aTicks != 1 || bTicks != 1 {
		t.Errorf("ticks a=%d b=%d, want 1 1", aTicks, bTicks)
	}
	s.Tick()
	if aTicks != 1 || bTicks != 2 {
		t.Errorf("after second tick a=%d b=%d, want 1 2", aTicks, bTicks)
	}
}

func TestTickSiblingAfterEarlierSiblingRemoved(t *testing.T) {
	s := NewScene(10, 10)
	a := s.NewGroup("a")
	b := s.NewGroup("b")
	c := s.NewGroup("c")
	s.Root().AddChild(a)
	s.Root().AddChild(b)
	s.Root().AddChild(c)

	var got []string
	a.OnTick = func(n *Node) { got = append(got, n.Name) }
	b.OnTick = func(n *Node) {
		got = append(got, n.Name)
		a.RemoveFromParent()
	}
	c.OnTick = func(n *Node) { got = append(got, n.Name) }

	s.Tick()
	if strings.Join(got, " ") != "a b c" {
		t.Errorf("ticked = %v, want [a b c]", got)
	}
}
