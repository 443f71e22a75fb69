package bramble

import (
	"image"
	"sync"
)

// TextureRegistry owns the set of logical textures and their GPU handle and
// CPU image associations. It performs no GPU calls itself.
//
// A texture id with no handle entry means "not yet uploaded" and must not be
// bound.
type TextureRegistry struct {
	mu      sync.Mutex
	nextID  uint32
	handles map[uint32]TextureHandle
	images  map[uint32]*image.RGBA
}

// NewTextureRegistry creates an empty registry. Ids start at 1.
func NewTextureRegistry() *TextureRegistry {
	return &TextureRegistry{
		handles: make(map[uint32]TextureHandle),
		images:  make(map[uint32]*image.RGBA),
	}
}

// allocate assigns the next texture id.
func (r *TextureRegistry) allocate(width, height int) *Texture {
	r.mu.Lock()
	r.nextID++
	id := r.nextID
	r.mu.Unlock()
	return &Texture{ID: id, Width: width, Height: height}
}

// Handle returns the GPU handle for a texture id, if it has been uploaded.
func (r *TextureRegistry) Handle(id uint32) (TextureHandle, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	h, ok := r.handles[id]
	return h, ok
}

func (r *TextureRegistry) setHandle(id uint32, h TextureHandle) {
	r.mu.Lock()
	r.handles[id] = h
	r.mu.Unlock()
}

func (r *TextureRegistry) removeHandle(id uint32) (TextureHandle, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	h, ok := r.handles[id]
	if ok {
		delete(r.handles, id)
	}
	return h, ok
}

// Image returns the retained CPU image for a texture id. Images are dropped
// as soon as the texture is unloaded.
func (r *TextureRegistry) Image(id uint32) (*image.RGBA, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	img, ok := r.images[id]
	return img, ok
}

func (r *TextureRegistry) retainImage(id uint32, img *image.RGBA) {
	r.mu.Lock()
	r.images[id] = img
	r.mu.Unlock()
}

func (r *TextureRegistry) dropImage(id uint32) {
	r.mu.Lock()
	delete(r.images, id)
	r.mu.Unlock()
}

// MappedCount returns the number of textures that currently hold a GPU handle.
func (r *TextureRegistry) MappedCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.handles)
}
