package bramble

import (
	"image"
	"sync"
)

// loadTask is a pending GPU upload. It is consumed exactly once.
type loadTask struct {
	texture *Texture
	width   int
	height  int
	pixels  *image.RGBA
}

// taskQueue is a FIFO with many producers and a single consumer (the render
// goroutine). drain hands the consumer everything queued so far.
type taskQueue[T any] struct {
	mu    sync.Mutex
	items []T
	spare []T
}

func (q *taskQueue[T]) push(item T) {
	q.mu.Lock()
	q.items = append(q.items, item)
	q.mu.Unlock()
}

// drain returns all queued items in enqueue order and empties the queue.
// The returned slice is only valid until the next drain.
func (q *taskQueue[T]) drain() []T {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := q.items
	clear(q.spare)
	q.items = q.spare[:0]
	q.spare = out
	return out
}

func (q *taskQueue[T]) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}
