package bramble

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
)

// EbitenDevice is a Device drawing onto an *ebiten.Image with
// DrawTriangles32. Textures are ebiten images keyed by handle.
type EbitenDevice struct {
	target *ebiten.Image
	images map[TextureHandle]*ebiten.Image
	next   TextureHandle
	bound  *ebiten.Image
	white  *ebiten.Image
	filter ebiten.Filter

	verts []ebiten.Vertex
	inds  []uint32
}

// NewEbitenDevice creates a device. smooth selects linear filtering.
func NewEbitenDevice(smooth bool) *EbitenDevice {
	d := &EbitenDevice{
		images: make(map[TextureHandle]*ebiten.Image),
		filter: ebiten.FilterNearest,
	}
	if smooth {
		d.filter = ebiten.FilterLinear
	}
	return d
}

// SetTarget selects the image subsequent draws go to.
func (d *EbitenDevice) SetTarget(img *ebiten.Image) {
	d.target = img
}

// Target returns the current draw target.
func (d *EbitenDevice) Target() *ebiten.Image {
	return d.target
}

// TextureCount returns the number of live device textures.
func (d *EbitenDevice) TextureCount() int {
	return len(d.images)
}

// Clear implements Device.
func (d *EbitenDevice) Clear(c Color) {
	if d.target == nil {
		return
	}
	d.target.Fill(c.RGBA())
}

// UploadTexture implements Device.
func (d *EbitenDevice) UploadTexture(id uint32, img *image.RGBA) (TextureHandle, error) {
	if img == nil || img.Bounds().Empty() {
		return 0, fmt.Errorf("bramble: upload texture %d: empty image", id)
	}
	d.next++
	d.images[d.next] = ebiten.NewImageFromImage(img)
	return d.next, nil
}

// DeleteTexture implements Device.
func (d *EbitenDevice) DeleteTexture(h TextureHandle) {
	img, ok := d.images[h]
	if !ok {
		return
	}
	if d.bound == img {
		d.bound = nil
	}
	img.Deallocate()
	delete(d.images, h)
}

// BindTexture implements Device.
func (d *EbitenDevice) BindTexture(h TextureHandle) {
	d.bound = d.images[h]
}

// UnbindTexture implements Device.
func (d *EbitenDevice) UnbindTexture() {
	d.bound = nil
}

// premultiplied returns c with its color channels multiplied by alpha.
func premultiplied(c Color) (r, g, b, a float32) {
	a = float32(c.A)
	return float32(c.R) * a, float32(c.G) * a, float32(c.B) * a, a
}

// DrawQuads implements Device.
func (d *EbitenDevice) DrawQuads(quads []Quad, m Affine, tint Color) {
	if d.target == nil || d.bound == nil || len(quads) == 0 {
		return
	}
	b := d.bound.Bounds()
	sw := float32(b.Dx())
	sh := float32(b.Dy())
	cr, cg, cb, ca := premultiplied(tint)

	d.verts = d.verts[:0]
	d.inds = d.inds[:0]
	for _, q := range quads {
		// TL, TR, BL, BR
		lx := [4]float32{q.X0, q.X1, q.X0, q.X1}
		ly := [4]float32{q.Y0, q.Y0, q.Y1, q.Y1}
		su := [4]float32{q.U0, q.U1, q.U0, q.U1}
		sv := [4]float32{q.V0, q.V0, q.V1, q.V1}
		base := uint32(len(d.verts))
		for i := 0; i < 4; i++ {
			dx, dy := m.Apply(float64(lx[i]), float64(ly[i]))
			d.verts = append(d.verts, ebiten.Vertex{
				DstX:   float32(dx),
				DstY:   float32(dy),
				SrcX:   float32(b.Min.X) + su[i]*sw,
				SrcY:   float32(b.Min.Y) + sv[i]*sh,
				ColorR: cr,
				ColorG: cg,
				ColorB: cb,
				ColorA: ca,
			})
		}
		d.inds = append(d.inds,
			base+0, base+1, base+2,
			base+1, base+3, base+2,
		)
	}
	d.flush(d.bound)
}

// DrawTriangles implements Device.
func (d *EbitenDevice) DrawTriangles(tris []Triangle, m Affine, tint Color) {
	if d.target == nil || len(tris) == 0 {
		return
	}
	d.verts = d.verts[:0]
	d.inds = d.inds[:0]
	for _, t := range tris {
		d.appendSolid(m, tint, t.A, t.B, t.C)
	}
	d.flush(d.whitePixel())
}

// DrawLines implements Device. Each segment becomes a quad of the given
// width centered on the transformed segment.
func (d *EbitenDevice) DrawLines(segs []Segment, m Affine, width float64, tint Color) {
	if d.target == nil || len(segs) == 0 {
		return
	}
	d.verts = d.verts[:0]
	d.inds = d.inds[:0]
	half := width / 2
	for _, s := range segs {
		ax, ay := m.Apply(s.A.X, s.A.Y)
		bx, by := m.Apply(s.B.X, s.B.Y)
		dx, dy := bx-ax, by-ay
		l := math.Hypot(dx, dy)
		if l == 0 {
			continue
		}
		nx, ny := -dy/l*half, dx/l*half
		p0 := Vec2{ax + nx, ay + ny}
		p1 := Vec2{bx + nx, by + ny}
		p2 := Vec2{bx - nx, by - ny}
		p3 := Vec2{ax - nx, ay - ny}
		d.appendSolid(IdentityAffine, tint, p0, p1, p2)
		d.appendSolid(IdentityAffine, tint, p0, p2, p3)
	}
	d.flush(d.whitePixel())
}

func (d *EbitenDevice) appendSolid(m Affine, tint Color, pts ...Vec2) {
	cr, cg, cb, ca := premultiplied(tint)
	base := uint32(len(d.verts))
	for _, p := range pts {
		x, y := m.Apply(p.X, p.Y)
		d.verts = append(d.verts, ebiten.Vertex{
			DstX:   float32(x),
			DstY:   float32(y),
			SrcX:   0.5,
			SrcY:   0.5,
			ColorR: cr,
			ColorG: cg,
			ColorB: cb,
			ColorA: ca,
		})
		d.inds = append(d.inds, base)
		base++
	}
}

func (d *EbitenDevice) flush(src *ebiten.Image) {
	if len(d.inds) == 0 {
		return
	}
	var op ebiten.DrawTrianglesOptions
	op.Filter = d.filter
	op.ColorScaleMode = ebiten.ColorScaleModePremultipliedAlpha
	d.target.DrawTriangles32(d.verts, d.inds, src, &op)
}

// whitePixel returns a lazily created 1x1 white image used as the source
// of untextured geometry.
func (d *EbitenDevice) whitePixel() *ebiten.Image {
	if d.white == nil {
		d.white = ebiten.NewImage(1, 1)
		d.white.Fill(color.White)
	}
	return d.white
}
