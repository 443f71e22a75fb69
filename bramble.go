package bramble

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

// Color represents an RGBA color with components in [0, 1]. Not premultiplied.
// Premultiplication occurs when a device submits vertices.
type Color struct {
	R, G, B, A float64
}

var (
	// ColorWhite is the default tint (no color modification).
	ColorWhite = Color{1, 1, 1, 1}
	// ColorBlack is the default scene background.
	ColorBlack = Color{0, 0, 0, 1}
)

// RGBA converts c to an 8-bit straight-alpha color.
func (c Color) RGBA() color.NRGBA {
	return color.NRGBA{
		R: channel8(c.R),
		G: channel8(c.G),
		B: channel8(c.B),
		A: channel8(c.A),
	}
}

func channel8(v float64) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return uint8(v*255 + 0.5)
}

// ParseHexColor parses "#rrggbb" or "#rrggbbaa" (the leading '#' is optional).
func ParseHexColor(s string) (Color, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) != 6 && len(s) != 8 {
		return Color{}, fmt.Errorf("bramble: invalid hex color %q", s)
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("bramble: invalid hex color %q: %w", s, err)
	}
	if len(s) == 6 {
		v = v<<8 | 0xff
	}
	return Color{
		R: float64(v>>24&0xff) / 255,
		G: float64(v>>16&0xff) / 255,
		B: float64(v>>8&0xff) / 255,
		A: float64(v&0xff) / 255,
	}, nil
}

// Vec2 is a 2D vector used for positions, offsets and shape vertices.
type Vec2 struct {
	X, Y float64
}

// Rect is an axis-aligned rectangle. The coordinate system has its origin at
// the top-left, with Y increasing downward.
type Rect struct {
	X, Y, Width, Height float64
}

// Contains reports whether the point (x, y) lies inside the rectangle.
// Points on the edge are considered inside.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x <= r.X+r.Width &&
		y >= r.Y && y <= r.Y+r.Height
}

// Kind is the closed set of node kinds the renderer knows how to draw.
type Kind uint8

const (
	KindGroup      Kind = iota // owns an ordered list of children, no visual output
	KindSprite                 // draws a TextureRegion, optionally tiled
	KindBitmapText             // draws glyphs from a BitmapFont atlas
	KindShape                  // draws untextured vector primitives
)

func (k Kind) String() string {
	switch k {
	case KindGroup:
		return "group"
	case KindSprite:
		return "sprite"
	case KindBitmapText:
		return "bitmap-text"
	case KindShape:
		return "shape"
	default:
		return "kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// EventType identifies a scene lifecycle event.
type EventType uint8

const (
	EventAddedToScene     EventType = iota // node became reachable from the root
	EventRemovedFromScene                  // node is about to stop being reachable from the root
	EventTick                              // one fixed-step logic update
	EventPreFrame                          // node is about to be drawn
	EventPostFrame                         // node and its subtree have been drawn
	EventResize                            // the scene's logical size changed
	EventStart                             // the frame loop started
	EventStop                              // the frame loop stopped
)

// SceneEvent is delivered to the scene's EventSink.
type SceneEvent struct {
	Type EventType
	Node NodeID
	// Width and Height are set for EventResize.
	Width  float64
	Height float64
}

// EventSink is the interface for optional ECS integration. When set on a
// Scene, lifecycle events are forwarded to it.
type EventSink interface {
	EmitEvent(event SceneEvent)
}

// TextAlign controls horizontal alignment of lines within a BitmapText.
type TextAlign uint8

const (
	TextAlignLeft   TextAlign = iota // align text to the left edge (default)
	TextAlignCenter                  // center each line within the widest line
	TextAlignRight                   // align each line to the right edge
)
