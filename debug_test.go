package bramble

import (
	"bytes"
	"errors"
	"io/fs"
	"log/slog"
	"strings"
	"testing"
)

// captureLogs routes bramble's logger into a buffer for the rest of the test.
func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	SetLogger(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	t.Cleanup(func() { SetLogger(nil) })
	return &buf
}

func TestDefaultLoggerIsSilent(t *testing.T) {
	SetLogger(nil)
	if Logger().Enabled(t.Context(), slog.LevelError) {
		t.Error("default logger should be disabled")
	}
}

func TestDebugLogRenderStats(t *testing.T) {
	s, _, _, r := newTestRenderer()
	s.SetDebugMode(true)
	buf := captureLogs(t)
	s.Root().AddChild(s.NewGroup("a"))

	r.Render()

	out := buf.String()
	if !strings.Contains(out, "render pass") {
		t.Fatalf("log = %q, want render pass stats", out)
	}
	if !strings.Contains(out, "visible=2") {
		t.Errorf("log = %q, want visible=2", out)
	}
}

func TestDebugLogOffByDefault(t *testing.T) {
	s, _, _, r := newTestRenderer()
	buf := captureLogs(t)
	s.Root().AddChild(s.NewGroup("a"))
	r.Render()
	if strings.Contains(buf.String(), "render pass") {
		t.Errorf("stats logged outside debug mode: %q", buf.String())
	}
}

func TestDebugCheckChildCount(t *testing.T) {
	s := NewScene(10, 10)
	s.SetDebugMode(true)
	buf := captureLogs(t)
	for i := 0; i <= debugMaxChildCount; i++ {
		s.Root().AddChild(s.NewGroup("leaf"))
	}
	if !strings.Contains(buf.String(), "child count exceeds threshold") {
		t.Error("expected child count warning")
	}
}

func TestResourceError(t *testing.T) {
	err := &ResourceError{Op: "load texture", Path: "a.png", Err: fs.ErrNotExist}
	if !errors.Is(err, fs.ErrNotExist) {
		t.Error("ResourceError should unwrap to its cause")
	}
	want := "bramble: load texture a.png: file does not exist"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
	noPath := &ResourceError{Op: "load texture", Err: ErrNotImage}
	if !strings.HasPrefix(noPath.Error(), "bramble: load texture: ") {
		t.Errorf("Error() = %q", noPath.Error())
	}
}

func TestParseHexColor(t *testing.T) {
	tests := []struct {
		in      string
		want    Color
		wantErr bool
	}{
		{"#ff0000", Color{1, 0, 0, 1}, false},
		{"00ff00", Color{0, 1, 0, 1}, false},
		{"#0000ff00", Color{0, 0, 1, 0}, false},
		{"#fff", Color{}, true},
		{"#gggggg", Color{}, true},
	}
	for _, tt := range tests {
		got, err := ParseHexColor(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseHexColor(%q) err = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseHexColor(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestColorRGBA(t *testing.T) {
	c := Color{1, 0.5, -1, 2}.RGBA()
	if c.R != 255 || c.G != 128 || c.B != 0 || c.A != 255 {
		t.Errorf("RGBA = %v, want {255 128 0 255}", c)
	}
}

func TestKindString(t *testing.T) {
	if KindBitmapText.String() != "bitmap-text" {
		t.Errorf("String = %q", KindBitmapText.String())
	}
	if Kind(9).String() != "kind(9)" {
		t.Errorf("String = %q", Kind(9).String())
	}
}
