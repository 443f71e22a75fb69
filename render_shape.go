package bramble

func (r *Renderer) drawShape(n *Node, tint Color) {
	sh := n.Shape
	if sh == nil {
		return
	}
	switch sh.Kind {
	case ShapeRectangle:
		if sh.Width <= 0 || sh.Height <= 0 {
			return
		}
		w, h := sh.Width, sh.Height
		r.triBuf = append(r.triBuf[:0],
			Triangle{A: Vec2{0, 0}, B: Vec2{w, 0}, C: Vec2{w, h}},
			Triangle{A: Vec2{0, 0}, B: Vec2{w, h}, C: Vec2{0, h}},
		)
		r.device.DrawTriangles(r.triBuf, n.worldMatrix, tint)
	case ShapeFree:
		if len(sh.Triangles) == 0 {
			return
		}
		r.device.DrawTriangles(sh.Triangles, n.worldMatrix, tint)
	case ShapeLines:
		r.segBuf = sh.appendSegments(r.segBuf[:0])
		if len(r.segBuf) == 0 {
			return
		}
		width := sh.LineWidth
		if width <= 0 {
			width = 1
		}
		r.device.DrawLines(r.segBuf, n.worldMatrix, width, tint)
	}
}
