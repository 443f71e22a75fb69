package bramble

import "math"

// ShapeKind selects how a Shape is drawn.
type ShapeKind uint8

const (
	ShapeRectangle ShapeKind = iota // filled Width×Height rectangle at the origin
	ShapeFree                       // filled triangles
	ShapeLines                      // line strips
)

// Line is one entry of a line batch. Consecutive lines are joined into a
// strip through their endpoints; a closing line ends the current strip so
// the next line starts a new one.
type Line struct {
	A, B    Vec2
	Closing bool
}

// Shape is the geometry of a KindShape node. Its color comes from the
// node's Tint.
type Shape struct {
	Kind ShapeKind

	// ShapeRectangle
	Width  float64
	Height float64

	// ShapeFree
	Triangles []Triangle

	// ShapeLines
	Lines     []Line
	LineWidth float64
	// Stipple is a 16-bit dash pattern read from the least significant bit.
	// Each bit covers StippleFactor units of length along a strip. Zero and
	// 0xFFFF draw solid lines.
	Stipple       uint16
	StippleFactor int
}

// extent returns the local-space box around the shape's geometry.
func (s *Shape) extent() (x0, y0, x1, y1 float64, ok bool) {
	if s.Kind == ShapeRectangle {
		return 0, 0, s.Width, s.Height, s.Width > 0 && s.Height > 0
	}
	x0, y0 = math.Inf(1), math.Inf(1)
	x1, y1 = math.Inf(-1), math.Inf(-1)
	grow := func(v Vec2) {
		x0, y0 = math.Min(x0, v.X), math.Min(y0, v.Y)
		x1, y1 = math.Max(x1, v.X), math.Max(y1, v.Y)
		ok = true
	}
	switch s.Kind {
	case ShapeFree:
		for _, t := range s.Triangles {
			grow(t.A)
			grow(t.B)
			grow(t.C)
		}
	case ShapeLines:
		for _, l := range s.Lines {
			grow(l.A)
			grow(l.B)
		}
	}
	if !ok {
		return 0, 0, 0, 0, false
	}
	return x0, y0, x1, y1, true
}

// Strips returns the vertex sequences of the line batch.
func (s *Shape) Strips() [][]Vec2 {
	var strips [][]Vec2
	var cur []Vec2
	for _, l := range s.Lines {
		cur = append(cur, l.A, l.B)
		if l.Closing {
			strips = append(strips, cur)
			cur = nil
		}
	}
	if len(cur) > 0 {
		strips = append(strips, cur)
	}
	return strips
}

// appendSegments appends the visible pieces of every strip to dst.
func (s *Shape) appendSegments(dst []Segment) []Segment {
	solid := s.Stipple == 0 || s.Stipple == 0xFFFF
	for _, strip := range s.Strips() {
		if solid {
			for i := 1; i < len(strip); i++ {
				if strip[i-1] != strip[i] {
					dst = append(dst, Segment{A: strip[i-1], B: strip[i]})
				}
			}
			continue
		}
		dst = stippleStrip(dst, strip, s.Stipple, s.StippleFactor)
	}
	return dst
}

// stippleStrip walks a strip by distance and keeps the pieces whose pattern
// bit is set. The pattern restarts at the beginning of every strip.
func stippleStrip(dst []Segment, strip []Vec2, pattern uint16, factor int) []Segment {
	f := float64(factor)
	if f <= 0 {
		f = 1
	}
	var pos float64
	for i := 1; i < len(strip); i++ {
		a, b := strip[i-1], strip[i]
		dx, dy := b.X-a.X, b.Y-a.Y
		length := math.Hypot(dx, dy)
		if length == 0 {
			continue
		}
		at := func(d float64) Vec2 {
			t := d / length
			return Vec2{X: a.X + dx*t, Y: a.Y + dy*t}
		}

		open := false
		var start Vec2
		for d := 0.0; d < length; {
			bit := int(math.Floor((pos + d) / f))
			next := float64(bit+1)*f - pos
			if next <= d {
				next = d + f
			}
			if next > length {
				next = length
			}
			on := pattern>>(bit%16)&1 == 1
			switch {
			case on && !open:
				start, open = at(d), true
			case !on && open:
				dst = append(dst, Segment{A: start, B: at(d)})
				open = false
			}
			d = next
		}
		if open {
			dst = append(dst, Segment{A: start, B: b})
		}
		pos += length
	}
	return dst
}
