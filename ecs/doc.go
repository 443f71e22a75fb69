// Package ecs provides ECS adapters for bramble's scene event system.
//
// The primary adapter is [NewDonburiSink], which bridges bramble scene events
// (added/removed, tick, pre/post frame, resize, loop start/stop) into a
// [Donburi] world as typed events. Subscribe to [SceneEventType] in your ECS
// systems to receive them.
//
// Usage:
//
//	sink := ecs.NewDonburiSink(world)
//	scene.SetEventSink(sink)
//
// [Donburi]: https://github.com/yohamta/donburi
package ecs
