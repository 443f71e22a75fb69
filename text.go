package bramble

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"
)

// --- Glyph ---

// Glyph is the atlas rectangle of one character.
type Glyph struct {
	X, Y   int
	Width  int
	Height int
}

// --- BitmapFont ---

const asciiGlyphCount = 128

// BitmapFont renders text from a pre-rasterized glyph atlas.
type BitmapFont struct {
	// Texture holds the glyph atlas.
	Texture *Texture
	// SpacingX is added after every glyph, SpacingY after every line.
	SpacingX int
	SpacingY int

	lineHeight int

	asciiGlyphs [asciiGlyphCount]Glyph // fixed array for ASCII, zero-alloc lookup
	asciiSet    [asciiGlyphCount]bool  // which ASCII entries are populated
	extGlyphs   map[rune]Glyph
}

// ParseBitmapFont reads a font descriptor:
//
//	#meta spacingX 1 spacingY 2
//	A 0 0 8 10
//	  8 0 4 10
//
// Each glyph line starts with the character itself (which may be a space),
// followed by its atlas x, y, width and height.
func ParseBitmapFont(r io.Reader, tex *Texture) (*BitmapFont, error) {
	f := &BitmapFont{Texture: tex, extGlyphs: make(map[rune]Glyph)}
	sc := bufio.NewScanner(r)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimRight(sc.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		if strings.HasPrefix(line, "#meta") {
			if err := f.parseMeta(strings.Fields(line)[1:]); err != nil {
				return nil, fmt.Errorf("bramble: font descriptor line %d: %w", lineNo, err)
			}
			continue
		}
		ch, size := utf8.DecodeRuneInString(line)
		fields := strings.Fields(line[size:])
		if len(fields) != 4 {
			return nil, fmt.Errorf("bramble: font descriptor line %d: want <char> x y w h, got %q", lineNo, line)
		}
		var v [4]int
		for i, s := range fields {
			n, err := strconv.Atoi(s)
			if err != nil {
				return nil, fmt.Errorf("bramble: font descriptor line %d: %w", lineNo, err)
			}
			v[i] = n
		}
		f.setGlyph(ch, Glyph{X: v[0], Y: v[1], Width: v[2], Height: v[3]})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("bramble: font descriptor: %w", err)
	}
	return f, nil
}

func (f *BitmapFont) parseMeta(fields []string) error {
	if len(fields)%2 != 0 {
		return fmt.Errorf("odd number of #meta fields")
	}
	for i := 0; i < len(fields); i += 2 {
		v, err := strconv.Atoi(fields[i+1])
		if err != nil {
			return fmt.Errorf("#meta %s: %w", fields[i], err)
		}
		switch fields[i] {
		case "spacingX":
			f.SpacingX = v
		case "spacingY":
			f.SpacingY = v
		}
	}
	return nil
}

func (f *BitmapFont) setGlyph(r rune, g Glyph) {
	if r >= 0 && r < asciiGlyphCount {
		f.asciiGlyphs[r] = g
		f.asciiSet[r] = true
	} else {
		f.extGlyphs[r] = g
	}
	if g.Height > f.lineHeight {
		f.lineHeight = g.Height
	}
}

// Glyph returns the glyph for r.
func (f *BitmapFont) Glyph(r rune) (Glyph, bool) {
	if r >= 0 && r < asciiGlyphCount {
		return f.asciiGlyphs[r], f.asciiSet[r]
	}
	g, ok := f.extGlyphs[r]
	return g, ok
}

// LineHeight returns the height of the tallest glyph.
func (f *BitmapFont) LineHeight() float64 {
	return float64(f.lineHeight)
}

// MeasureString returns the pixel size of s laid out left-aligned.
func (f *BitmapFont) MeasureString(s string) (width, height float64) {
	_, w, h := layoutText(f, s, TextAlignLeft)
	return w, h
}

// --- BitmapText ---

// BitmapText is the text content of a KindBitmapText node.
type BitmapText struct {
	Font  *BitmapFont
	Align TextAlign
	// CacheAsSprite renders the text into its own texture once and draws it
	// as a single quad until the text, font, alignment or tint changes.
	CacheAsSprite bool

	text string

	cache    *Texture
	cacheKey textCacheKey
	baked    bool
}

type textCacheKey struct {
	text  string
	font  *BitmapFont
	align TextAlign
	tint  Color
}

// Text returns the current text.
func (bt *BitmapText) Text() string {
	return bt.text
}

// SetText replaces the text.
func (bt *BitmapText) SetText(s string) {
	bt.text = s
}

// IsEmpty reports whether there is nothing to draw.
func (bt *BitmapText) IsEmpty() bool {
	return bt.text == "" || bt.Font == nil
}

// Measure returns the laid-out pixel size of the text.
func (bt *BitmapText) Measure() (width, height float64) {
	if bt.Font == nil {
		return 0, 0
	}
	_, w, h := layoutText(bt.Font, bt.text, bt.Align)
	return w, h
}

// CachedTexture returns the texture the text was last baked into, or nil.
func (bt *BitmapText) CachedTexture() *Texture {
	return bt.cache
}

// takeCache detaches and returns the cached texture.
func (bt *BitmapText) takeCache() *Texture {
	t := bt.cache
	bt.cache = nil
	bt.cacheKey = textCacheKey{}
	bt.baked = false
	return t
}

func (bt *BitmapText) layout() ([]placedGlyph, float64, float64) {
	return layoutText(bt.Font, bt.text, bt.Align)
}

// placedGlyph is a glyph positioned in text-local pixels (top-left origin).
type placedGlyph struct {
	x, y  float64
	glyph Glyph
}

// layoutText places the glyphs of s line by line. Glyphs sit on the bottom
// of their line. Characters missing from the font are skipped.
func layoutText(f *BitmapFont, s string, align TextAlign) ([]placedGlyph, float64, float64) {
	if f == nil || s == "" {
		return nil, 0, 0
	}
	lh := float64(f.lineHeight)
	lines := strings.Split(s, "\n")
	widths := make([]float64, len(lines))
	var maxW float64
	for i, line := range lines {
		var w float64
		for _, r := range line {
			if g, ok := f.Glyph(r); ok {
				w += float64(g.Width + f.SpacingX)
			}
		}
		if w > 0 {
			w -= float64(f.SpacingX)
		}
		widths[i] = w
		if w > maxW {
			maxW = w
		}
	}

	out := make([]placedGlyph, 0, len(s))
	var y float64
	for i, line := range lines {
		var x float64
		switch align {
		case TextAlignCenter:
			x = (maxW - widths[i]) / 2
		case TextAlignRight:
			x = maxW - widths[i]
		}
		for _, r := range line {
			g, ok := f.Glyph(r)
			if !ok {
				continue
			}
			out = append(out, placedGlyph{x: x, y: y + lh - float64(g.Height), glyph: g})
			x += float64(g.Width + f.SpacingX)
		}
		y += lh + float64(f.SpacingY)
	}
	h := float64(len(lines))*lh + float64(len(lines)-1)*float64(f.SpacingY)
	return out, maxW, h
}
