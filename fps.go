package bramble

import "strconv"

// fpsRefreshTicks is how many logic ticks the counter waits between
// text updates.
const fpsRefreshTicks = 30

// NewFPSCounter creates a text node showing the loop's measured frame rate.
// The text is refreshed every 30 ticks.
func NewFPSCounter(s *Scene, font *BitmapFont, loop *Loop) *Node {
	n := s.NewBitmapText("fps_counter", font, "FPS "+strconv.Itoa(loop.FPS()))
	ticks := 0
	n.OnTick = func(n *Node) {
		ticks++
		if ticks < fpsRefreshTicks {
			return
		}
		ticks = 0
		n.Text.SetText("FPS " + strconv.Itoa(loop.FPS()))
	}
	return n
}
