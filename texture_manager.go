package bramble

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"  // register GIF decoder
	_ "image/jpeg" // register JPEG decoder
	_ "image/png"  // register PNG decoder
	"io"
	"io/fs"
	"log/slog"
	"path"
	"slices"
	"sync"

	"github.com/h2non/filetype"
	_ "golang.org/x/image/bmp"  // register BMP decoder
	_ "golang.org/x/image/webp" // register WebP decoder
)

type regionKey struct {
	path       string
	x, y, w, h int
}

// TextureManager tracks the textures created through an engine, caches
// textures by asset path and keeps the table of named regions.
type TextureManager struct {
	engine *TextureEngine
	assets fs.FS

	mu       sync.Mutex
	textures []*Texture
	byPath   map[string]*Texture
	regions  map[string]*TextureRegion
	cached   map[regionKey]*TextureRegion
}

// NewTextureManager creates a manager reading assets from fsys. It takes over
// the engine's OnCreate and OnUnload hooks.
func NewTextureManager(engine *TextureEngine, assets fs.FS) *TextureManager {
	m := &TextureManager{
		engine:  engine,
		assets:  assets,
		byPath:  make(map[string]*Texture),
		regions: make(map[string]*TextureRegion),
		cached:  make(map[regionKey]*TextureRegion),
	}
	engine.OnCreate = m.track
	engine.OnUnload = m.untrack
	return m
}

// Engine returns the underlying texture engine.
func (m *TextureManager) Engine() *TextureEngine {
	return m.engine
}

func (m *TextureManager) track(t *Texture, key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.textures = append(m.textures, t)
	if key != "" {
		m.regions[key] = t.Region()
	}
}

// --- Textures ---

// CreateTexture creates a texture from img. See TextureEngine.CreateTexture.
func (m *TextureManager) CreateTexture(img image.Image) *Texture {
	return m.engine.CreateTexture(img)
}

// LoadTexture decodes the image asset at p and creates a texture from it.
// Repeated loads of the same path return the cached texture until it is
// unloaded.
func (m *TextureManager) LoadTexture(p string) (*Texture, error) {
	m.mu.Lock()
	if t, ok := m.byPath[p]; ok && !t.Disposed() {
		m.mu.Unlock()
		return t, nil
	}
	m.mu.Unlock()

	data, err := fs.ReadFile(m.assets, p)
	if err != nil {
		return nil, &ResourceError{Op: "load texture", Path: p, Err: err}
	}
	img, err := decodeImage(data)
	if err != nil {
		return nil, &ResourceError{Op: "load texture", Path: p, Err: err}
	}
	t := m.engine.CreateTexture(img)

	m.mu.Lock()
	m.byPath[p] = t
	m.mu.Unlock()
	Logger().Info("texture loaded", slog.String("path", p), slog.Uint64("texture", uint64(t.ID)),
		slog.Int("width", t.Width), slog.Int("height", t.Height))
	return t, nil
}

// LoadTextureFrom decodes an image from r and creates a texture from it.
func (m *TextureManager) LoadTextureFrom(r io.Reader) (*Texture, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, &ResourceError{Op: "load texture", Err: err}
	}
	img, err := decodeImage(data)
	if err != nil {
		return nil, &ResourceError{Op: "load texture", Err: err}
	}
	return m.engine.CreateTexture(img), nil
}

func decodeImage(data []byte) (image.Image, error) {
	if !filetype.IsImage(data) {
		return nil, ErrNotImage
	}
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		kind, _ := filetype.Match(data)
		return nil, fmt.Errorf("decode %s (%s): %w", kind.Extension, format, err)
	}
	return img, nil
}

// UnloadTexture unloads t and forgets every path and region that refers
// to it.
func (m *TextureManager) UnloadTexture(t *Texture) {
	m.engine.UnloadTexture(t)
}

func (m *TextureManager) untrack(t *Texture) {
	m.mu.Lock()
	m.forget(t)
	m.mu.Unlock()
}

// forget drops t from the manager's tables. m.mu must be held.
func (m *TextureManager) forget(t *Texture) {
	m.textures = slices.DeleteFunc(m.textures, func(x *Texture) bool { return x == t })
	for p, x := range m.byPath {
		if x == t {
			delete(m.byPath, p)
		}
	}
	for k, r := range m.regions {
		if r.Texture == t {
			delete(m.regions, k)
		}
	}
	for k, r := range m.cached {
		if r.Texture == t {
			delete(m.cached, k)
		}
	}
}

// Clear unloads every tracked texture.
func (m *TextureManager) Clear() {
	m.mu.Lock()
	all := m.textures
	m.textures = nil
	clear(m.byPath)
	clear(m.regions)
	clear(m.cached)
	m.mu.Unlock()
	for _, t := range all {
		m.engine.UnloadTexture(t)
	}
}

// TextureCount returns the number of tracked textures.
func (m *TextureManager) TextureCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.textures)
}

// Texture returns the i-th tracked texture in creation order.
func (m *TextureManager) Texture(i int) *Texture {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.textures[i]
}

// ContainsTexture reports whether t is tracked.
func (m *TextureManager) ContainsTexture(t *Texture) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Contains(m.textures, t)
}

// --- Regions ---

// AddTextureRegion registers r under key, replacing any previous entry.
func (m *TextureManager) AddTextureRegion(key string, r *TextureRegion) {
	m.mu.Lock()
	m.regions[key] = r
	m.mu.Unlock()
}

// Region returns the region registered under key. A missing key is an error
// wrapping ErrRegionNotFound.
func (m *TextureManager) Region(key string) (*TextureRegion, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.regions[key]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrRegionNotFound, key)
	}
	return r, nil
}

// MustRegion is like Region but panics if key is not registered.
func (m *TextureManager) MustRegion(key string) *TextureRegion {
	r, err := m.Region(key)
	if err != nil {
		panic(err)
	}
	return r
}

// CachedRegion returns the region (x, y, w, h) of the texture at p, loading
// the texture if needed. The same arguments return the same region.
func (m *TextureManager) CachedRegion(p string, x, y, w, h int) (*TextureRegion, error) {
	k := regionKey{path: p, x: x, y: y, w: w, h: h}
	m.mu.Lock()
	if r, ok := m.cached[k]; ok {
		m.mu.Unlock()
		return r, nil
	}
	m.mu.Unlock()

	t, err := m.LoadTexture(p)
	if err != nil {
		return nil, err
	}
	r := t.SubRegion(x, y, w, h)
	m.mu.Lock()
	m.cached[k] = r
	m.mu.Unlock()
	return r, nil
}

// --- Descriptors ---

// LoadAtlasDescriptor reads the text atlas descriptor at p, loads every image
// it names (relative to the descriptor's directory) and registers its
// regions.
func (m *TextureManager) LoadAtlasDescriptor(p string) error {
	f, err := m.assets.Open(p)
	if err != nil {
		return &ResourceError{Op: "load atlas", Path: p, Err: err}
	}
	defer f.Close()
	if err := m.ReadAtlasDescriptor(f, path.Dir(p)); err != nil {
		return &ResourceError{Op: "load atlas", Path: p, Err: err}
	}
	return nil
}

// ReadAtlasDescriptor parses a descriptor from r. Asset names are resolved
// against dir.
func (m *TextureManager) ReadAtlasDescriptor(r io.Reader, dir string) error {
	d, err := ParseAtlasDescriptor(r)
	if err != nil {
		return err
	}
	for _, sheet := range d.Sheets {
		t, err := m.LoadTexture(path.Join(dir, sheet.Asset))
		if err != nil {
			return err
		}
		for _, nr := range sheet.Regions {
			m.AddTextureRegion(nr.Key, t.SubRegion(nr.X, nr.Y, nr.Width, nr.Height))
		}
	}
	return nil
}

// LoadTexturePackerAtlas reads TexturePacker JSON at p, loads its page
// images (relative to the JSON's directory) and registers every frame as a
// named region.
func (m *TextureManager) LoadTexturePackerAtlas(p string) error {
	data, err := fs.ReadFile(m.assets, p)
	if err != nil {
		return &ResourceError{Op: "load atlas", Path: p, Err: err}
	}
	atlas, err := ParseTexturePackerAtlas(data)
	if err != nil {
		return &ResourceError{Op: "load atlas", Path: p, Err: err}
	}
	pages := make([]*Texture, len(atlas.Pages))
	for i, img := range atlas.Pages {
		if img == "" {
			return &ResourceError{Op: "load atlas", Path: p, Err: fmt.Errorf("page %d has no image", i)}
		}
		if pages[i], err = m.LoadTexture(path.Join(path.Dir(p), img)); err != nil {
			return err
		}
	}
	for name, f := range atlas.Frames {
		m.AddTextureRegion(name, pages[f.Page].SubRegion(f.X, f.Y, f.Width, f.Height))
	}
	return nil
}

// LoadBitmapFont reads a font descriptor and its glyph atlas image.
func (m *TextureManager) LoadBitmapFont(descriptorPath, imagePath string) (*BitmapFont, error) {
	t, err := m.LoadTexture(imagePath)
	if err != nil {
		return nil, err
	}
	f, err := m.assets.Open(descriptorPath)
	if err != nil {
		return nil, &ResourceError{Op: "load font", Path: descriptorPath, Err: err}
	}
	defer f.Close()
	font, err := ParseBitmapFont(f, t)
	if err != nil {
		return nil, &ResourceError{Op: "load font", Path: descriptorPath, Err: err}
	}
	return font, nil
}
