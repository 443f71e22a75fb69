package bramble

import (
	"fmt"
	"sync/atomic"
)

// Texture is one GPU-uploadable image. It is created by a TextureEngine and
// immutable afterwards, except for disposal. A texture is valid to reference
// as soon as it is created, but it can only be bound after the engine's next
// LoadPending.
type Texture struct {
	ID     uint32
	Width  int
	Height int

	disposed atomic.Bool
}

// Disposed reports whether the texture has been unloaded. Disposal is final.
func (t *Texture) Disposed() bool {
	return t.disposed.Load()
}

// markDisposed flips the disposed flag and reports whether this call did it.
func (t *Texture) markDisposed() bool {
	return t.disposed.CompareAndSwap(false, true)
}

// Region returns a region covering the whole texture.
func (t *Texture) Region() *TextureRegion {
	return &TextureRegion{Texture: t, Width: t.Width, Height: t.Height}
}

// SubRegion returns a region for the given rectangle of the texture.
func (t *Texture) SubRegion(x, y, w, h int) *TextureRegion {
	return &TextureRegion{Texture: t, X: x, Y: y, Width: w, Height: h}
}

func (t *Texture) String() string {
	return fmt.Sprintf("Texture{id=%d, %dx%d, disposed=%t}", t.ID, t.Width, t.Height, t.Disposed())
}

// TextureRegion is a rectangular sub-view into a Texture. Its lifetime is
// bounded by the texture's: once the texture is disposed the region draws
// nothing.
type TextureRegion struct {
	Texture *Texture
	X, Y    int
	Width   int
	Height  int
}

// SubRegion returns a region relative to this one.
func (r *TextureRegion) SubRegion(x, y, w, h int) *TextureRegion {
	return &TextureRegion{Texture: r.Texture, X: r.X + x, Y: r.Y + y, Width: w, Height: h}
}

// uv returns the normalized texture coordinates of the region.
func (r *TextureRegion) uv() (u, v, w, h float32) {
	tw := float32(r.Texture.Width)
	th := float32(r.Texture.Height)
	if tw == 0 || th == 0 {
		return 0, 0, 0, 0
	}
	return float32(r.X) / tw, float32(r.Y) / th, float32(r.Width) / tw, float32(r.Height) / th
}
