package bramble

import (
	"log/slog"
	"time"
)

// debugStats holds per-pass timing and counts.
// Only populated when the scene is in debug mode.
type debugStats struct {
	loadTime     time.Duration
	traverseTime time.Duration
	unloadTime   time.Duration
	visibleNodes int
	uploads      int
	deletions    int
}

// debugLog reports the stats of one render pass at debug level.
func (s *Scene) debugLog(stats debugStats) {
	if !s.debug {
		return
	}
	total := stats.loadTime + stats.traverseTime + stats.unloadTime
	Logger().Debug("render pass",
		slog.Duration("load", stats.loadTime),
		slog.Duration("traverse", stats.traverseTime),
		slog.Duration("unload", stats.unloadTime),
		slog.Duration("total", total),
		slog.Int("visible", stats.visibleNodes),
		slog.Int("uploads", stats.uploads),
		slog.Int("deletions", stats.deletions),
	)
}

// debugMaxTreeDepth is the depth above which debug mode warns.
const debugMaxTreeDepth = 32

func debugCheckTreeDepth(n *Node) {
	depth := 0
	for p := n; p != nil; p = p.Parent() {
		depth++
	}
	if depth > debugMaxTreeDepth {
		Logger().Warn("tree depth exceeds threshold",
			slog.Int("depth", depth),
			slog.Int("threshold", debugMaxTreeDepth),
			slog.String("node", n.Name))
	}
}

// debugMaxChildCount is the child count above which debug mode warns.
const debugMaxChildCount = 1000

func debugCheckChildCount(n *Node) {
	if len(n.children) > debugMaxChildCount {
		Logger().Warn("child count exceeds threshold",
			slog.String("node", n.Name),
			slog.Int("children", len(n.children)),
			slog.Int("threshold", debugMaxChildCount))
	}
}
