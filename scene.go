package bramble

import (
	"fmt"
	"sync"
)

// Scene is the top-level object that owns the node arena, the root group,
// the logical resolution and the background color.
type Scene struct {
	nodes  map[NodeID]*Node
	nextID NodeID
	root   *Node

	width  float64
	height float64

	// Background is the color the frame is cleared to.
	Background Color

	sink     EventSink
	debug    bool
	onResize []func(width, height float64)

	// Textures owned by nodes that no longer need them. The renderer hands
	// them to its texture backend on the next pass.
	releaseMu sync.Mutex
	released  []*Texture
}

// NewScene creates a scene of the given logical size with a root group.
func NewScene(width, height float64) *Scene {
	s := &Scene{
		nodes:      make(map[NodeID]*Node),
		width:      width,
		height:     height,
		Background: ColorBlack,
	}
	s.root = s.newNode("root", KindGroup)
	return s
}

// Root returns the scene's root group.
func (s *Scene) Root() *Node {
	return s.root
}

// Node returns the live node with the given id, or nil.
func (s *Scene) Node(id NodeID) *Node {
	return s.nodes[id]
}

// NodeCount returns the number of live nodes, including the root.
func (s *Scene) NodeCount() int {
	return len(s.nodes)
}

// --- Node constructors ---

func (s *Scene) newNode(name string, kind Kind) *Node {
	s.nextID++
	n := &Node{
		ID:      s.nextID,
		Name:    name,
		Kind:    kind,
		ScaleX:  1,
		ScaleY:  1,
		Alpha:   1,
		Visible: true,
		RepeatX: 1,
		RepeatY: 1,
		scene:   s,
	}
	s.nodes[n.ID] = n
	return n
}

// NewGroup creates a detached group node.
func (s *Scene) NewGroup(name string) *Node {
	return s.newNode(name, KindGroup)
}

// NewSprite creates a detached sprite node that draws region.
func (s *Scene) NewSprite(name string, region *TextureRegion) *Node {
	n := s.newNode(name, KindSprite)
	n.Region = region
	return n
}

// NewBitmapText creates a detached text node.
func (s *Scene) NewBitmapText(name string, font *BitmapFont, text string) *Node {
	n := s.newNode(name, KindBitmapText)
	n.Text = &BitmapText{Font: font, text: text}
	return n
}

// NewRectangle creates a detached filled rectangle of size w×h.
func (s *Scene) NewRectangle(name string, w, h float64, c Color) *Node {
	n := s.newNode(name, KindShape)
	n.Shape = &Shape{Kind: ShapeRectangle, Width: w, Height: h}
	n.Tint = &c
	return n
}

// NewFreeShape creates a detached shape made of solid triangles.
func (s *Scene) NewFreeShape(name string, tris []Triangle, c Color) *Node {
	n := s.newNode(name, KindShape)
	n.Shape = &Shape{Kind: ShapeFree, Triangles: tris}
	n.Tint = &c
	return n
}

// NewLineBatch creates a detached shape drawing lines one pixel wide.
func (s *Scene) NewLineBatch(name string, lines []Line, c Color) *Node {
	n := s.newNode(name, KindShape)
	n.Shape = &Shape{Kind: ShapeLines, Lines: lines, LineWidth: 1}
	n.Tint = &c
	return n
}

// --- Size ---

// Width returns the logical width.
func (s *Scene) Width() float64 { return s.width }

// Height returns the logical height.
func (s *Scene) Height() float64 { return s.height }

// SetSize changes the logical size and broadcasts EventResize.
func (s *Scene) SetSize(width, height float64) {
	if width < 0 || height < 0 {
		panic(fmt.Sprintf("bramble: invalid scene size %vx%v", width, height))
	}
	if width == s.width && height == s.height {
		return
	}
	s.width = width
	s.height = height
	for _, fn := range s.onResize {
		fn(width, height)
	}
	if s.sink != nil {
		s.sink.EmitEvent(SceneEvent{Type: EventResize, Node: s.root.ID, Width: width, Height: height})
	}
}

// SetWidth changes the logical width.
func (s *Scene) SetWidth(width float64) { s.SetSize(width, s.height) }

// SetHeight changes the logical height.
func (s *Scene) SetHeight(height float64) { s.SetSize(s.width, height) }

// OnResize registers fn to be called after every size change.
func (s *Scene) OnResize(fn func(width, height float64)) {
	s.onResize = append(s.onResize, fn)
}

// --- Events ---

// SetEventSink sets the optional ECS bridge.
func (s *Scene) SetEventSink(sink EventSink) {
	s.sink = sink
}

// SetDebugMode enables or disables debug mode. When enabled, tree depth and
// child count warnings and per-pass stats are logged.
func (s *Scene) SetDebugMode(enabled bool) {
	s.debug = enabled
}

// DebugMode reports whether debug mode is on.
func (s *Scene) DebugMode() bool {
	return s.debug
}

func (s *Scene) emit(t EventType, n *Node) {
	if s.sink != nil {
		s.sink.EmitEvent(SceneEvent{Type: t, Node: n.ID})
	}
}

// notifyAdded delivers the added notification to n and then its
// descendants, in child order.
func (s *Scene) notifyAdded(n *Node) {
	if n.OnAddedToScene != nil {
		n.OnAddedToScene(n)
	}
	s.emit(EventAddedToScene, n)
	for i := 0; i < len(n.children); i++ {
		id := n.children[i]
		if c := s.nodes[id]; c != nil {
			s.notifyAdded(c)
		}
		i = n.resumeIndex(i, id)
	}
}

// notifyRemoved is the symmetric counterpart of notifyAdded.
// A node is flagged as removing until its subtree has been notified.
func (s *Scene) notifyRemoved(n *Node) {
	n.removing = true
	defer func() { n.removing = false }()

	if n.OnRemovedFromScene != nil {
		n.OnRemovedFromScene(n)
	}
	s.emit(EventRemovedFromScene, n)
	for i := 0; i < len(n.children); i++ {
		id := n.children[i]
		if c := s.nodes[id]; c != nil {
			s.notifyRemoved(c)
		}
		i = n.resumeIndex(i, id)
	}
}

// --- Logic ---

// Tick delivers one logic update to every visible node reachable from root.
// Children are ticked before their parent. Invisible subtrees are skipped.
// A node may detach itself or a sibling from OnTick; siblings still
// attached are ticked once.
func (s *Scene) Tick() {
	s.tickNode(s.root)
}

func (s *Scene) tickNode(n *Node) {
	if !n.Visible {
		return
	}
	for i := 0; i < len(n.children); i++ {
		id := n.children[i]
		if c := s.nodes[id]; c != nil {
			s.tickNode(c)
		}
		i = n.resumeIndex(i, id)
	}
	if n.OnTick != nil {
		n.OnTick(n)
	}
	s.emit(EventTick, n)
}

// Walk calls fn for n and every descendant in pre-order, regardless of
// visibility. Returning false from fn skips that node's subtree.
func (s *Scene) Walk(n *Node, fn func(*Node) bool) {
	if n == nil || !fn(n) {
		return
	}
	for i := 0; i < len(n.children); i++ {
		if c := s.nodes[n.children[i]]; c != nil {
			s.Walk(c, fn)
		}
	}
}

// --- Texture release ---

func (s *Scene) releaseTexture(t *Texture) {
	if t == nil {
		return
	}
	s.releaseMu.Lock()
	s.released = append(s.released, t)
	s.releaseMu.Unlock()
}

// takeReleased returns and clears the released texture list.
func (s *Scene) takeReleased() []*Texture {
	s.releaseMu.Lock()
	out := s.released
	s.released = nil
	s.releaseMu.Unlock()
	return out
}
