package bramble

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// --- Text descriptor ---

// AtlasDescriptor is a parsed text atlas descriptor. The format is line
// oriented:
//
//	:spritesheet.png
//	hero 0 0 16 16
//	coin 16 0 8 8
//
// A line starting with ':' names the image the following region lines refer
// to. Region lines are "<key> <x> <y> <w> <h>". Blank lines are ignored.
type AtlasDescriptor struct {
	Sheets []AtlasSheet
}

// AtlasSheet is one image of a descriptor and its named regions.
type AtlasSheet struct {
	Asset   string
	Regions []NamedRegion
}

// NamedRegion is a rectangle registered under a key.
type NamedRegion struct {
	Key           string
	X, Y          int
	Width, Height int
}

// ParseAtlasDescriptor reads a text atlas descriptor.
func ParseAtlasDescriptor(r io.Reader) (*AtlasDescriptor, error) {
	d := &AtlasDescriptor{}
	sc := bufio.NewScanner(r)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		if name, ok := strings.CutPrefix(line, ":"); ok {
			name = strings.TrimSpace(name)
			if name == "" {
				return nil, fmt.Errorf("bramble: atlas descriptor line %d: empty asset name", lineNo)
			}
			d.Sheets = append(d.Sheets, AtlasSheet{Asset: name})
			continue
		}
		if len(d.Sheets) == 0 {
			return nil, fmt.Errorf("bramble: atlas descriptor line %d: region before any ':<asset>' line", lineNo)
		}
		fields := strings.Fields(line)
		if len(fields) != 5 {
			return nil, fmt.Errorf("bramble: atlas descriptor line %d: want <key> x y w h, got %q", lineNo, line)
		}
		var v [4]int
		for i, s := range fields[1:] {
			n, err := strconv.Atoi(s)
			if err != nil {
				return nil, fmt.Errorf("bramble: atlas descriptor line %d: %w", lineNo, err)
			}
			v[i] = n
		}
		sheet := &d.Sheets[len(d.Sheets)-1]
		sheet.Regions = append(sheet.Regions, NamedRegion{
			Key: fields[0], X: v[0], Y: v[1], Width: v[2], Height: v[3],
		})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("bramble: atlas descriptor: %w", err)
	}
	return d, nil
}

// --- TexturePacker JSON ---

// PackedAtlas is a parsed TexturePacker JSON atlas. Supports both the hash
// format (single "frames" object with "meta.image") and the array format
// ("textures" array with per-page frame lists).
type PackedAtlas struct {
	// Pages lists the image file of each page.
	Pages []string
	// Frames maps a region name to its page and rectangle.
	Frames map[string]PackedFrame
}

// PackedFrame is one named frame of a PackedAtlas.
type PackedFrame struct {
	Page int
	NamedRegion
}

type jsonRect struct {
	X int `json:"x"`
	Y int `json:"y"`
	W int `json:"w"`
	H int `json:"h"`
}

type jsonFrame struct {
	Frame jsonRect `json:"frame"`
}

type jsonTexturePage struct {
	Image  string               `json:"image"`
	Frames map[string]jsonFrame `json:"frames"`
}

// ParseTexturePackerAtlas parses TexturePacker JSON data.
func ParseTexturePackerAtlas(jsonData []byte) (*PackedAtlas, error) {
	var probe struct {
		Frames   json.RawMessage `json:"frames"`
		Textures json.RawMessage `json:"textures"`
		Meta     struct {
			Image string `json:"image"`
		} `json:"meta"`
	}
	if err := json.Unmarshal(jsonData, &probe); err != nil {
		return nil, fmt.Errorf("bramble: failed to parse atlas JSON: %w", err)
	}

	atlas := &PackedAtlas{Frames: make(map[string]PackedFrame)}
	switch {
	case probe.Textures != nil:
		var textures []jsonTexturePage
		if err := json.Unmarshal(probe.Textures, &textures); err != nil {
			return nil, fmt.Errorf("bramble: failed to parse atlas textures array: %w", err)
		}
		for i, tex := range textures {
			atlas.Pages = append(atlas.Pages, tex.Image)
			for name, f := range tex.Frames {
				atlas.Frames[name] = packedFrame(name, f, i)
			}
		}
	case probe.Frames != nil:
		var frames map[string]jsonFrame
		if err := json.Unmarshal(probe.Frames, &frames); err != nil {
			return nil, fmt.Errorf("bramble: failed to parse atlas frames: %w", err)
		}
		atlas.Pages = []string{probe.Meta.Image}
		for name, f := range frames {
			atlas.Frames[name] = packedFrame(name, f, 0)
		}
	default:
		return nil, fmt.Errorf("bramble: atlas JSON has neither \"frames\" nor \"textures\" key")
	}
	return atlas, nil
}

func packedFrame(name string, f jsonFrame, page int) PackedFrame {
	return PackedFrame{
		Page: page,
		NamedRegion: NamedRegion{
			Key:    name,
			X:      f.Frame.X,
			Y:      f.Frame.Y,
			Width:  f.Frame.W,
			Height: f.Frame.H,
		},
	}
}
