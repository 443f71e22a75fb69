package bramble

import (
	"math"

	"golang.org/x/image/math/f64"
)

// Affine is a 2D affine matrix [a, b, c, d, tx, ty]:
//
//	| a  c  tx |
//	| b  d  ty |
//	| 0  0   1 |
type Affine [6]float64

// IdentityAffine is the identity matrix.
var IdentityAffine = Affine{1, 0, 0, 1, 0, 0}

// nodeMatrix builds Translate(x, y) · Rotate(deg) · Scale(sx, sy).
func nodeMatrix(x, y, sx, sy, deg float64) Affine {
	if deg == 0 {
		return Affine{sx, 0, 0, sy, x, y}
	}
	sin, cos := math.Sincos(deg * math.Pi / 180)
	return Affine{cos * sx, sin * sx, -sin * sy, cos * sy, x, y}
}

// multiplyAffine multiplies two affine matrices: result = parent * child.
func multiplyAffine(p, c Affine) Affine {
	return Affine{
		p[0]*c[0] + p[2]*c[1],
		p[1]*c[0] + p[3]*c[1],
		p[0]*c[2] + p[2]*c[3],
		p[1]*c[2] + p[3]*c[3],
		p[0]*c[4] + p[2]*c[5] + p[4],
		p[1]*c[4] + p[3]*c[5] + p[5],
	}
}

// invertAffine computes the inverse of an affine matrix.
// Returns the identity matrix if the matrix is singular.
func invertAffine(m Affine) Affine {
	det := m[0]*m[3] - m[2]*m[1]
	if det > -1e-12 && det < 1e-12 {
		return IdentityAffine
	}
	invDet := 1.0 / det
	a := m[3] * invDet
	b := -m[1] * invDet
	c := -m[2] * invDet
	d := m[0] * invDet
	return Affine{
		a, b, c, d,
		-(a*m[4] + c*m[5]),
		-(b*m[4] + d*m[5]),
	}
}

// aff3 converts m to the row-major layout of golang.org/x/image.
func (m Affine) aff3() f64.Aff3 {
	return f64.Aff3{m[0], m[2], m[4], m[1], m[3], m[5]}
}

// Apply transforms the point (x, y).
func (m Affine) Apply(x, y float64) (float64, float64) {
	return m[0]*x + m[2]*y + m[4], m[1]*x + m[3]*y + m[5]
}

// --- Transform property setters ---

// SetPosition sets the node's local X and Y.
func (n *Node) SetPosition(x, y float64) {
	n.X = x
	n.Y = y
}

// SetScale sets the node's ScaleX and ScaleY.
func (n *Node) SetScale(sx, sy float64) {
	n.ScaleX = sx
	n.ScaleY = sy
}

// SetRotation sets the node's rotation in degrees.
func (n *Node) SetRotation(deg float64) {
	n.Rotation = deg
}

// --- Coordinate conversion ---

// WorldMatrix returns the matrix the node was last drawn with. It is the
// identity until the node has been rendered once.
func (n *Node) WorldMatrix() Affine {
	if !n.drawn {
		return IdentityAffine
	}
	return n.worldMatrix
}

// WorldToLocal converts a frame-space point to this node's local space,
// as of the last render pass.
func (n *Node) WorldToLocal(wx, wy float64) (lx, ly float64) {
	return invertAffine(n.WorldMatrix()).Apply(wx, wy)
}

// LocalToWorld converts a local-space point to frame space, as of the last
// render pass.
func (n *Node) LocalToWorld(lx, ly float64) (wx, wy float64) {
	return n.WorldMatrix().Apply(lx, ly)
}

// --- Bounds ---

// Bounds returns the frame-space axis-aligned box around what the node drew
// in the last render pass. A group's bounds enclose its drawn children. The
// zero Rect is returned for nodes that were not drawn.
func (n *Node) Bounds() Rect {
	minX, minY, maxX, maxY, ok := n.bounds()
	if !ok {
		return Rect{}
	}
	return Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}

func (n *Node) bounds() (minX, minY, maxX, maxY float64, ok bool) {
	if !n.drawn || !n.Visible || n.disposed {
		return 0, 0, 0, 0, false
	}
	if n.Kind == KindGroup {
		for _, c := range n.Children() {
			x0, y0, x1, y1, cok := c.bounds()
			if !cok {
				continue
			}
			if !ok {
				minX, minY, maxX, maxY, ok = x0, y0, x1, y1, true
				continue
			}
			minX, minY = math.Min(minX, x0), math.Min(minY, y0)
			maxX, maxY = math.Max(maxX, x1), math.Max(maxY, y1)
		}
		return minX, minY, maxX, maxY, ok
	}

	lx0, ly0, lx1, ly1, lok := n.localExtent()
	if !lok {
		return 0, 0, 0, 0, false
	}
	m := n.worldMatrix
	minX, minY = math.Inf(1), math.Inf(1)
	maxX, maxY = math.Inf(-1), math.Inf(-1)
	for _, p := range [4][2]float64{{lx0, ly0}, {lx1, ly0}, {lx0, ly1}, {lx1, ly1}} {
		x, y := m.Apply(p[0], p[1])
		minX, minY = math.Min(minX, x), math.Min(minY, y)
		maxX, maxY = math.Max(maxX, x), math.Max(maxY, y)
	}
	return minX, minY, maxX, maxY, true
}

// localExtent returns the local-space box of a drawable node's content.
func (n *Node) localExtent() (x0, y0, x1, y1 float64, ok bool) {
	switch n.Kind {
	case KindSprite:
		if n.Region == nil || n.RepeatX <= 0 || n.RepeatY <= 0 {
			return 0, 0, 0, 0, false
		}
		return 0, 0, float64(n.Region.Width) * n.RepeatX, float64(n.Region.Height) * n.RepeatY, true
	case KindBitmapText:
		if n.Text == nil || n.Text.IsEmpty() {
			return 0, 0, 0, 0, false
		}
		w, h := n.Text.Measure()
		return 0, 0, w, h, true
	case KindShape:
		if n.Shape == nil {
			return 0, 0, 0, 0, false
		}
		return n.Shape.extent()
	}
	return 0, 0, 0, 0, false
}

// NodeAt returns the topmost drawn node whose bounds contain the frame-space
// point (x, y), as of the last render pass. Groups are never returned.
func (s *Scene) NodeAt(x, y float64) *Node {
	var hit *Node
	s.Walk(s.root, func(n *Node) bool {
		if !n.Visible {
			return false
		}
		if n.Kind != KindGroup && n.drawn && n.Bounds().Contains(x, y) {
			if hit == nil || n.ZOrder > hit.ZOrder {
				hit = n
			}
		}
		return true
	})
	return hit
}
