package bramble

import "image"

// TextureHandle identifies a texture object living on the device.
type TextureHandle uint32

// Quad is one textured rectangle in node-local space. U/V are normalized
// texture coordinates into the currently bound texture.
type Quad struct {
	X0, Y0, X1, Y1 float32
	U0, V0, U1, V1 float32
}

// Triangle is an untextured triangle in node-local space.
type Triangle struct {
	A, B, C Vec2
}

// Segment is a line segment in node-local space.
type Segment struct {
	A, B Vec2
}

// Device is the immediate-mode graphics backend the renderer draws through.
// Every method must be called from the goroutine that owns the graphics
// context.
type Device interface {
	// Clear fills the frame with c.
	Clear(c Color)
	// UploadTexture creates a device texture from img.
	UploadTexture(id uint32, img *image.RGBA) (TextureHandle, error)
	// DeleteTexture frees a device texture. Unknown handles are ignored.
	DeleteTexture(h TextureHandle)
	// BindTexture selects the texture used by DrawQuads.
	BindTexture(h TextureHandle)
	// UnbindTexture clears the bound texture.
	UnbindTexture()
	// DrawQuads draws quads from the bound texture, transformed by m and
	// multiplied by tint.
	DrawQuads(quads []Quad, m Affine, tint Color)
	// DrawTriangles draws solid triangles transformed by m.
	DrawTriangles(tris []Triangle, m Affine, tint Color)
	// DrawLines draws segments of the given width (in device pixels)
	// transformed by m.
	DrawLines(segs []Segment, m Affine, width float64, tint Color)
}

// TextureBackend is the texture capability the renderer consumes.
type TextureBackend interface {
	// Bind makes t current on the device. It returns false while t has no
	// device texture yet; callers skip drawing for this frame.
	Bind(t *Texture) bool
	Enable(t *Texture)
	Disable(t *Texture)
	// CreateTexture allocates a texture and schedules its upload.
	CreateTexture(img image.Image) *Texture
	// UnloadTexture schedules deletion. Unloading twice is a no-op.
	UnloadTexture(t *Texture)
	// BitmapTextToTexture renders a text node into a new texture.
	BitmapTextToTexture(n *Node) (*Texture, error)
}

// TexturePipeline is a TextureBackend whose deferred work is flushed by the
// renderer once before and once after each traversal.
type TexturePipeline interface {
	TextureBackend
	// LoadPending performs all queued uploads and returns how many ran.
	LoadPending() int
	// UnloadPending performs all queued deletions and returns how many ran.
	UnloadPending() int
}
