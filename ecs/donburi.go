// Package ecs provides ECS adapters for bramble.
package ecs

import (
	"github.com/phanxgames/bramble"

	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/events"
)

// SceneEventType is the Donburi event type for bramble scene events.
var SceneEventType = events.NewEventType[bramble.SceneEvent]()

type donburiSink struct {
	world donburi.World
	mask  uint32
}

// NewDonburiSink creates an EventSink backed by a Donburi world. Scene
// events are published to SceneEventType and can be consumed with
// events.Subscribe and ProcessEvents. With no types given every event is
// forwarded; otherwise only the listed types are.
func NewDonburiSink(world donburi.World, types ...bramble.EventType) bramble.EventSink {
	s := &donburiSink{world: world}
	for _, t := range types {
		s.mask |= 1 << t
	}
	return s
}

func (s *donburiSink) EmitEvent(event bramble.SceneEvent) {
	if s.mask != 0 && s.mask&(1<<event.Type) == 0 {
		return
	}
	SceneEventType.Publish(s.world, event)
}
