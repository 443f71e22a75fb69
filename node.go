package bramble

import "fmt"

// NodeID is a node's stable handle in its scene's arena. Zero means "none".
type NodeID uint32

// Animator is the per-frame animation capability. ProcessFrame is called once
// per render pass, after the node has been drawn.
type Animator interface {
	ProcessFrame(n *Node)
}

// Node is the fundamental scene graph element. A single flat struct is used
// for all node kinds; Kind selects which of the kind-specific fields the
// renderer reads.
//
// Nodes are created by a Scene and live in its arena. Parent and child links
// are NodeIDs resolved through the scene.
type Node struct {
	// Identity
	ID   NodeID
	Name string
	Kind Kind

	// Transform (local). Rotation is in degrees and applies to this node's
	// own drawing only; it is not passed down to children.
	X, Y     float64
	ScaleX   float64
	ScaleY   float64
	Rotation float64

	// Visibility
	Alpha        float64
	Visible      bool
	PixelAligned bool

	// ZOrder is stamped by the renderer with the node's pre-order position
	// in the last pass. It is only meaningful within that pass.
	ZOrder int

	// Capabilities
	Tint      *Color
	Animation Animator

	// Sprite fields (KindSprite)
	Region  *TextureRegion
	RepeatX float64
	RepeatY float64
	// VertexBleedingFix grows each tile by this many pixels on every side.
	VertexBleedingFix float32
	// TextureBleedingFix shrinks each tile's texture coordinates by this
	// amount (in normalized units) on every side.
	TextureBleedingFix float32

	// Text fields (KindBitmapText)
	Text *BitmapText

	// Shape fields (KindShape)
	Shape *Shape

	// Metadata
	UserData any

	// Per-node callbacks (nil by default)
	OnAddedToScene     func(n *Node)
	OnRemovedFromScene func(n *Node)
	OnTick             func(n *Node)
	OnPreFrame         func(n *Node)
	OnPostFrame        func(n *Node)

	scene    *Scene
	parent   NodeID
	children []NodeID

	// Computed during the last render pass.
	worldMatrix Affine
	worldAlpha  float64
	drawn       bool

	disposed bool
	// removing is set while the node's removed notification is in flight.
	removing bool
}

func (n *Node) String() string {
	return fmt.Sprintf("Node{id=%d, name=%q, kind=%s}", n.ID, n.Name, n.Kind)
}

// Scene returns the scene that owns the node.
func (n *Node) Scene() *Scene {
	return n.scene
}

// WorldAlpha returns the effective alpha the node was last drawn with.
func (n *Node) WorldAlpha() float64 {
	return n.worldAlpha
}

// --- Tree manipulation ---

// AddChild appends child to this group's children.
// If child already has a parent, it is removed from that parent first.
// Panics if n is not a group, child is nil, child belongs to another scene,
// or child is an ancestor of this node (cycle).
func (n *Node) AddChild(child *Node) {
	n.addChild(child, -1)
}

// AddChildAt inserts child at the given index.
// Same reparenting and cycle-check behavior as AddChild.
func (n *Node) AddChildAt(child *Node, index int) {
	if index < 0 || index > len(n.children) {
		panic("bramble: child index out of range")
	}
	n.addChild(child, index)
}

// addChild inserts child at index, or appends it when index is negative.
func (n *Node) addChild(child *Node, index int) {
	n.checkAttach(child)
	if child.parent != 0 {
		child.RemoveFromParent()
	}
	if index < 0 || index > len(n.children) {
		index = len(n.children)
	}
	child.parent = n.ID
	n.children = append(n.children, 0)
	copy(n.children[index+1:], n.children[index:])
	n.children[index] = child.ID

	s := n.scene
	if s.debug {
		debugCheckTreeDepth(child)
		debugCheckChildCount(n)
	}
	if n.InScene() {
		s.notifyAdded(child)
	}
}

func (n *Node) checkAttach(child *Node) {
	if child == nil {
		panic("bramble: cannot add nil child")
	}
	if n.Kind != KindGroup {
		panic(fmt.Sprintf("bramble: cannot add child to %s node %q", n.Kind, n.Name))
	}
	if n.disposed || child.disposed {
		panic(fmt.Sprintf("bramble: add child %q to %q: node is disposed", child.Name, n.Name))
	}
	if child.scene != n.scene {
		panic(fmt.Sprintf("bramble: node %q belongs to a different scene", child.Name))
	}
	if child == n.scene.root {
		panic("bramble: root cannot be added as a child")
	}
	if isAncestor(child, n) {
		panic("bramble: adding child would create a cycle")
	}
}

// RemoveChild detaches child from this group.
// Panics if child's parent is not n.
func (n *Node) RemoveChild(child *Node) {
	if child == nil || child.parent != n.ID {
		panic("bramble: child's parent is not this node")
	}
	n.RemoveChildAt(n.indexOf(child.ID))
}

// RemoveChildAt removes and returns the child at the given index.
func (n *Node) RemoveChildAt(index int) *Node {
	if index < 0 || index >= len(n.children) {
		panic("bramble: child index out of range")
	}
	child := n.scene.nodes[n.children[index]]
	// A removal callback that detaches or disposes its own node lands here
	// again; the notification is already being delivered.
	if n.InScene() && !child.removing {
		n.scene.notifyRemoved(child)
	}
	// Callbacks may have moved things around.
	if i := n.indexOf(child.ID); i >= 0 {
		copy(n.children[i:], n.children[i+1:])
		n.children[len(n.children)-1] = 0
		n.children = n.children[:len(n.children)-1]
	}
	child.parent = 0
	return child
}

// RemoveFromParent detaches this node from its parent.
// No-op if this node has no parent.
func (n *Node) RemoveFromParent() {
	if p := n.Parent(); p != nil {
		p.RemoveChild(n)
	}
}

// RemoveChildren detaches all children from this group.
// Children are NOT disposed.
func (n *Node) RemoveChildren() {
	for len(n.children) > 0 {
		n.RemoveChildAt(len(n.children) - 1)
	}
}

// Children returns the child nodes in paint order.
func (n *Node) Children() []*Node {
	out := make([]*Node, len(n.children))
	for i, id := range n.children {
		out[i] = n.scene.nodes[id]
	}
	return out
}

// ChildIDs returns the child id list. The returned slice MUST NOT be
// mutated by the caller.
func (n *Node) ChildIDs() []NodeID {
	return n.children
}

// NumChildren returns the number of children.
func (n *Node) NumChildren() int {
	return len(n.children)
}

// ChildAt returns the child at the given index.
func (n *Node) ChildAt(index int) *Node {
	return n.scene.nodes[n.children[index]]
}

// Parent returns the owning group, or nil.
func (n *Node) Parent() *Node {
	if n.parent == 0 || n.scene == nil {
		return nil
	}
	return n.scene.nodes[n.parent]
}

// SetChildIndex moves child to a new index among its siblings.
func (n *Node) SetChildIndex(child *Node, index int) {
	if child.parent != n.ID {
		panic("bramble: child's parent is not this node")
	}
	if index < 0 || index >= len(n.children) {
		panic("bramble: child index out of range")
	}
	old := n.indexOf(child.ID)
	if old == index {
		return
	}
	if old < index {
		copy(n.children[old:], n.children[old+1:index+1])
	} else {
		copy(n.children[index+1:], n.children[index:old])
	}
	n.children[index] = child.ID
}

// InScene reports whether the node is reachable from its scene's root.
func (n *Node) InScene() bool {
	if n.scene == nil || n.disposed {
		return false
	}
	for p := n; p != nil; p = p.Parent() {
		if p == n.scene.root {
			return true
		}
	}
	return false
}

// --- Disposal ---

// Dispose removes this node from its parent, marks it and all descendants
// as disposed and releases them from the scene's arena. A cached text
// texture owned by a disposed node is unloaded on the next render pass.
func (n *Node) Dispose() {
	if n.disposed {
		return
	}
	if n == n.scene.root {
		panic("bramble: cannot dispose the scene root")
	}
	n.RemoveFromParent()
	n.dispose()
}

func (n *Node) dispose() {
	s := n.scene
	for _, id := range n.children {
		if c := s.nodes[id]; c != nil {
			c.parent = 0
			c.dispose()
		}
	}
	if n.Text != nil {
		s.releaseTexture(n.Text.takeCache())
	}
	delete(s.nodes, n.ID)
	n.disposed = true
	n.children = nil
	n.parent = 0
	n.Animation = nil
	n.UserData = nil
	n.OnAddedToScene = nil
	n.OnRemovedFromScene = nil
	n.OnTick = nil
	n.OnPreFrame = nil
	n.OnPostFrame = nil
}

// IsDisposed returns true if this node has been disposed.
func (n *Node) IsDisposed() bool {
	return n.disposed
}

// --- Helpers ---

// isAncestor reports whether candidate is node or one of its ancestors.
func isAncestor(candidate, node *Node) bool {
	for p := node; p != nil; p = p.Parent() {
		if p == candidate {
			return true
		}
	}
	return false
}

// resumeIndex returns the index to continue a child loop from after the
// child id at index i was visited and callbacks may have moved or removed
// children.
func (n *Node) resumeIndex(i int, id NodeID) int {
	if i < len(n.children) && n.children[i] == id {
		return i
	}
	if j := n.indexOf(id); j >= 0 {
		return j
	}
	return i - 1
}

func (n *Node) indexOf(id NodeID) int {
	for i, c := range n.children {
		if c == id {
			return i
		}
	}
	return -1
}
