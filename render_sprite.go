package bramble

import "github.com/chewxy/math32"

func (r *Renderer) drawSprite(n *Node, tint Color) {
	reg := n.Region
	if reg == nil || !r.bindTexture(reg.Texture) {
		return
	}
	r.quadBuf = appendSpriteQuads(r.quadBuf[:0], reg, n.RepeatX, n.RepeatY, n.VertexBleedingFix, n.TextureBleedingFix)
	r.device.DrawQuads(r.quadBuf, n.worldMatrix, tint)
	r.textures.Disable(reg.Texture)
}

// appendSpriteQuads appends the tiles of a sprite repeated repeatX×repeatY
// times. When the remaining repeat count on an axis is below one, the last
// tile shrinks by that fraction in both its extent and its texture span.
func appendSpriteQuads(dst []Quad, reg *TextureRegion, repeatX, repeatY float64, vbf, tbf float32) []Quad {
	u, v, uw, vh := reg.uv()
	tW := float32(reg.Width)
	tH := float32(reg.Height)
	rx := float32(repeatX)
	ry := float32(repeatY)

	for rY := float32(0); rY < ry; rY++ {
		py := math32.Floor(rY*tH + 0.5)
		for rX := float32(0); rX < rx; rX++ {
			px := math32.Floor(rX*tW + 0.5)
			q := Quad{
				X0: px - vbf,
				Y0: py - vbf,
				X1: px + tW + vbf,
				Y1: py + tH + vbf,
				U0: u + tbf,
				V0: v + tbf,
				U1: u + uw - tbf,
				V1: v + vh - tbf,
			}
			if rem := rx - rX; rem < 1 {
				q.X1 = px + tW*rem + vbf
				q.U1 = u + uw*rem - tbf
			}
			if rem := ry - rY; rem < 1 {
				q.Y1 = py + tH*rem + vbf
				q.V1 = v + vh*rem - tbf
			}
			dst = append(dst, q)
		}
	}
	return dst
}
