package bramble

import "log/slog"

func (r *Renderer) drawText(n *Node, tint Color) {
	bt := n.Text
	if bt == nil || bt.IsEmpty() {
		return
	}
	if bt.CacheAsSprite {
		r.drawCachedText(n, bt, tint)
		return
	}
	t := bt.Font.Texture
	if !r.bindTexture(t) {
		return
	}
	glyphs, _, _ := bt.layout()
	r.quadBuf = appendGlyphQuads(r.quadBuf[:0], glyphs, t, n.VertexBleedingFix, n.TextureBleedingFix)
	r.device.DrawQuads(r.quadBuf, n.worldMatrix, tint)
	r.textures.Disable(t)
}

// drawCachedText draws the text from its baked texture, rebaking it when the
// text, font, alignment or tint color changed. A freshly baked texture
// becomes drawable after the next pass uploads it.
func (r *Renderer) drawCachedText(n *Node, bt *BitmapText, tint Color) {
	key := textCacheKey{text: bt.text, font: bt.Font, align: bt.Align, tint: ColorWhite}
	if n.Tint != nil {
		key.tint = Color{n.Tint.R, n.Tint.G, n.Tint.B, 1}
	}
	if !bt.baked || bt.cacheKey != key {
		if old := bt.takeCache(); old != nil {
			r.textures.UnloadTexture(old)
		}
		bt.baked = true
		bt.cacheKey = key
		tex, err := r.textures.BitmapTextToTexture(n)
		if err != nil {
			Logger().Warn("bitmap text cache failed", slog.String("node", n.Name), slog.Any("err", err))
			return
		}
		bt.cache = tex
	}
	t := bt.cache
	if !r.bindTexture(t) {
		return
	}
	r.quadBuf = append(r.quadBuf[:0], Quad{
		X1: float32(t.Width),
		Y1: float32(t.Height),
		U1: 1,
		V1: 1,
	})
	// The color is baked into the texture; only alpha applies here.
	r.device.DrawQuads(r.quadBuf, n.worldMatrix, Color{1, 1, 1, tint.A})
	r.textures.Disable(t)
}

// appendGlyphQuads appends one quad per placed glyph, sampling the font
// atlas t.
func appendGlyphQuads(dst []Quad, glyphs []placedGlyph, t *Texture, vbf, tbf float32) []Quad {
	if t.Width == 0 || t.Height == 0 {
		return dst
	}
	tw := float32(t.Width)
	th := float32(t.Height)
	for _, pg := range glyphs {
		g := pg.glyph
		x := float32(pg.x)
		y := float32(pg.y)
		w := float32(g.Width)
		h := float32(g.Height)
		dst = append(dst, Quad{
			X0: x - vbf,
			Y0: y - vbf,
			X1: x + w + vbf,
			Y1: y + h + vbf,
			U0: float32(g.X)/tw + tbf,
			V0: float32(g.Y)/th + tbf,
			U1: float32(g.X)/tw + w/tw - tbf,
			V1: float32(g.Y)/th + h/th - tbf,
		})
	}
	return dst
}
