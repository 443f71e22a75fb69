package bramble

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"log/slog"
	"math"

	"github.com/anthonynsimon/bild/adjust"
	"github.com/anthonynsimon/bild/clone"
	"golang.org/x/image/draw"
)

// TextureEngine turns CPU images into device textures. Creation and unload
// requests may come from any goroutine; they only touch the registry and the
// queues. The device work happens in LoadPending and UnloadPending, which
// the renderer calls on the render goroutine once per pass.
type TextureEngine struct {
	device   Device
	registry *TextureRegistry
	loads    taskQueue[loadTask]
	unloads  taskQueue[*Texture]

	enabled *Texture

	// OnCreate, when set, is called for every texture the engine creates.
	// key is the region name the texture should be registered under, or ""
	// for plain textures.
	OnCreate func(t *Texture, key string)
	// OnUnload, when set, is called once for every texture the engine
	// disposes, whoever requested the unload.
	OnUnload func(t *Texture)
}

// NewTextureEngine creates an engine that uploads through device.
func NewTextureEngine(device Device) *TextureEngine {
	return &TextureEngine{
		device:   device,
		registry: NewTextureRegistry(),
	}
}

// Registry returns the engine's texture registry.
func (e *TextureEngine) Registry() *TextureRegistry {
	return e.registry
}

// Bind implements TextureBackend.
func (e *TextureEngine) Bind(t *Texture) bool {
	if t == nil || t.Disposed() {
		return false
	}
	h, ok := e.registry.Handle(t.ID)
	if !ok {
		return false
	}
	e.device.BindTexture(h)
	return true
}

// Enable implements TextureBackend.
func (e *TextureEngine) Enable(t *Texture) {
	e.enabled = t
}

// Disable implements TextureBackend.
func (e *TextureEngine) Disable(t *Texture) {
	if e.enabled == t {
		e.enabled = nil
	}
	e.device.UnbindTexture()
}

// CreateTexture implements TextureBackend. The texture is returned before it
// is uploaded; Bind fails for it until the next LoadPending.
func (e *TextureEngine) CreateTexture(img image.Image) *Texture {
	return e.createTexture(clone.AsRGBA(img), "")
}

// createTexture allocates, retains and queues rgba. keyFormat, when not
// empty, is formatted with the new texture's id to name its region.
func (e *TextureEngine) createTexture(rgba *image.RGBA, keyFormat string) *Texture {
	b := rgba.Bounds()
	t := e.registry.allocate(b.Dx(), b.Dy())
	e.registry.retainImage(t.ID, rgba)
	e.loads.push(loadTask{texture: t, width: t.Width, height: t.Height, pixels: rgba})
	if e.OnCreate != nil {
		key := ""
		if keyFormat != "" {
			key = fmt.Sprintf(keyFormat, t.ID)
		}
		e.OnCreate(t, key)
	}
	return t
}

// UnloadTexture implements TextureBackend. The retained CPU image is dropped
// immediately; the device texture is freed on the next UnloadPending.
func (e *TextureEngine) UnloadTexture(t *Texture) {
	if t == nil || !t.markDisposed() {
		return
	}
	e.registry.dropImage(t.ID)
	e.unloads.push(t)
	if e.OnUnload != nil {
		e.OnUnload(t)
	}
}

// PendingLoads returns the number of queued uploads.
func (e *TextureEngine) PendingLoads() int {
	return e.loads.len()
}

// PendingUnloads returns the number of queued deletions.
func (e *TextureEngine) PendingUnloads() int {
	return e.unloads.len()
}

// LoadPending uploads every queued texture in FIFO order. Textures disposed
// while queued are skipped.
func (e *TextureEngine) LoadPending() int {
	n := 0
	for _, task := range e.loads.drain() {
		t := task.texture
		if t.Disposed() {
			continue
		}
		h, err := e.device.UploadTexture(t.ID, task.pixels)
		if err != nil {
			Logger().Warn("texture upload failed", slog.Uint64("texture", uint64(t.ID)), slog.Any("err", err))
			continue
		}
		e.registry.setHandle(t.ID, h)
		n++
	}
	return n
}

// UnloadPending frees the device texture of every queued unload in FIFO order.
func (e *TextureEngine) UnloadPending() int {
	n := 0
	for _, t := range e.unloads.drain() {
		if h, ok := e.registry.removeHandle(t.ID); ok {
			e.device.DeleteTexture(h)
			n++
		}
		e.registry.dropImage(t.ID)
	}
	return n
}

// retainedImage returns the CPU pixels of t.
func (e *TextureEngine) retainedImage(t *Texture) (*image.RGBA, error) {
	if t == nil {
		return nil, ErrNoImage
	}
	if t.Disposed() {
		return nil, fmt.Errorf("%w: texture %d", ErrTextureDisposed, t.ID)
	}
	img, ok := e.registry.Image(t.ID)
	if !ok {
		return nil, fmt.Errorf("%w: texture %d", ErrNoImage, t.ID)
	}
	return img, nil
}

// --- Composition ---

// CombineCell places one texture region onto a combined texture.
// Use NewCombineCell for defaults.
type CombineCell struct {
	Region *TextureRegion
	X, Y   int
	ScaleX float64
	ScaleY float64
	// Rotation in degrees around (X, Y).
	Rotation float64
	// RepeatX and RepeatY tile the region; fractional values draw a partial
	// last tile.
	RepeatX float64
	RepeatY float64
	Alpha   float64
	// Color, when set, multiplies the region's RGB channels.
	Color *Color
}

// NewCombineCell returns a cell drawing region once at (x, y).
func NewCombineCell(region *TextureRegion, x, y int) CombineCell {
	return CombineCell{
		Region:  region,
		X:       x,
		Y:       y,
		ScaleX:  1,
		ScaleY:  1,
		RepeatX: 1,
		RepeatY: 1,
		Alpha:   1,
	}
}

// Combine composes a new width×height texture from the retained images of
// other textures. The result is registered as "_texture_<id>".
func (e *TextureEngine) Combine(width, height int, cells []CombineCell) (*Texture, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("bramble: combine: invalid size %dx%d", width, height)
	}
	canvas := image.NewRGBA(image.Rect(0, 0, width, height))
	for i := range cells {
		if err := e.drawCell(canvas, &cells[i]); err != nil {
			return nil, fmt.Errorf("bramble: combine cell %d: %w", i, err)
		}
	}
	return e.createTexture(canvas, "_texture_%d"), nil
}

func (e *TextureEngine) drawCell(dst *image.RGBA, cell *CombineCell) error {
	if cell.Region == nil {
		return errors.New("nil region")
	}
	atlas, err := e.retainedImage(cell.Region.Texture)
	if err != nil {
		return err
	}
	r := cell.Region
	var src image.Image = atlas.SubImage(image.Rect(r.X, r.Y, r.X+r.Width, r.Y+r.Height))
	if cell.Color != nil {
		src = colorize(src, *cell.Color)
	}
	sb := src.Bounds()

	var mask image.Image
	if cell.Alpha < 1 {
		mask = image.NewUniform(color.Alpha{A: channel8(cell.Alpha)})
	}

	sin, cos := math.Sincos(cell.Rotation * math.Pi / 180)
	ox, oy := float64(cell.X), float64(cell.Y)
	rot := Affine{cos, sin, -sin, cos, ox - cos*ox + sin*oy, oy - sin*ox - cos*oy}

	tileW := float64(r.Width)
	tileH := float64(r.Height)
	for rY := 0.0; rY < cell.RepeatY; rY++ {
		for rX := 0.0; rX < cell.RepeatX; rX++ {
			valX, valY := 1.0, 1.0
			if rem := cell.RepeatX - rX; rem < 1 {
				valX = rem
			}
			if rem := cell.RepeatY - rY; rem < 1 {
				valY = rem
			}
			sr := image.Rect(sb.Min.X, sb.Min.Y,
				sb.Min.X+int(tileW*valX), sb.Min.Y+int(tileH*valY))
			if sr.Empty() {
				continue
			}
			tx := ox + tileW*rX*cell.ScaleX
			ty := oy + tileH*rY*cell.ScaleY
			place := Affine{
				cell.ScaleX, 0, 0, cell.ScaleY,
				tx - cell.ScaleX*float64(sb.Min.X), ty - cell.ScaleY*float64(sb.Min.Y),
			}
			m := multiplyAffine(rot, place)
			draw.NearestNeighbor.Transform(dst, m.aff3(), src, sr, draw.Over, &draw.Options{SrcMask: mask})
		}
	}
	return nil
}

// colorize multiplies the RGB channels of img by c, keeping alpha.
func colorize(img image.Image, c Color) *image.RGBA {
	rf, gf, bf := clamp01(c.R), clamp01(c.G), clamp01(c.B)
	return adjust.Apply(img, func(px color.RGBA) color.RGBA {
		return color.RGBA{
			R: uint8(float64(px.R) * rf),
			G: uint8(float64(px.G) * gf),
			B: uint8(float64(px.B) * bf),
			A: px.A,
		}
	})
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

// BitmapTextToTexture implements TextureBackend. Each glyph is copied from
// the font atlas's retained image and color filtered with the node's tint.
// The result is registered as "_texture_text_<id>".
func (e *TextureEngine) BitmapTextToTexture(n *Node) (*Texture, error) {
	if n == nil || n.Kind != KindBitmapText || n.Text == nil || n.Text.Font == nil {
		return nil, errors.New("bramble: bitmap text to texture: node has no bitmap text")
	}
	bt := n.Text
	atlas, err := e.retainedImage(bt.Font.Texture)
	if err != nil {
		return nil, fmt.Errorf("bramble: bitmap text to texture: %w", err)
	}
	glyphs, w, h := bt.layout()
	iw, ih := int(math.Ceil(w)), int(math.Ceil(h))
	if iw <= 0 || ih <= 0 {
		return nil, fmt.Errorf("bramble: bitmap text to texture: empty text %q", bt.text)
	}
	tint := ColorWhite
	if n.Tint != nil {
		tint = *n.Tint
	}

	canvas := image.NewRGBA(image.Rect(0, 0, iw, ih))
	ab := atlas.Bounds()
	for _, g := range glyphs {
		gx, gy := g.glyph.X, g.glyph.Y
		var offX, offY int
		if gx < 0 {
			offX, gx = -gx, 0
		}
		if gy < 0 {
			offY, gy = -gy, 0
		}
		src := image.Rect(gx, gy, gx+g.glyph.Width, gy+g.glyph.Height).Intersect(ab)
		if src.Empty() {
			continue
		}
		colored := colorize(atlas.SubImage(src), tint)
		dx := int(g.x) + offX
		dy := int(g.y) + offY
		draw.Draw(canvas, image.Rect(dx, dy, dx+src.Dx(), dy+src.Dy()), colored, colored.Bounds().Min, draw.Over)
	}

	return e.createTexture(canvas, "_texture_text_%d"), nil
}
