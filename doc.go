// Package bramble is a retained-mode 2D scene-graph renderer for
// [Ebitengine] with a deferred texture pipeline.
//
// Bramble walks a mutable tree of visual nodes once per frame, composes
// their transforms, assigns paint order and draws each node through a
// [Device]. GPU textures are created and destroyed through queues that are
// flushed once before and once after each traversal, so textures can be
// requested from any goroutine while uploads stay on the render goroutine.
//
// # Quick start
//
// The simplest way to get started is [NewApp], which wires every piece
// together and runs inside an ebiten window:
//
//	app, err := bramble.NewApp(bramble.DefaultConfig(), os.DirFS("assets"))
//	if err != nil {
//		log.Fatal(err)
//	}
//	box := app.Scene.NewRectangle("box", 40, 40, bramble.Color{R: 0.3, G: 0.7, B: 1, A: 1})
//	app.Scene.Root().AddChild(box)
//	log.Fatal(app.Run())
//
// # Scene graph
//
// Every visual element is a [Node] owned by a [Scene]. Nodes form a tree
// rooted at [Scene.Root] and are addressed by [NodeID]. Create them with the
// scene's constructors: [Scene.NewGroup], [Scene.NewSprite],
// [Scene.NewBitmapText], [Scene.NewRectangle], [Scene.NewFreeShape] and
// [Scene.NewLineBatch]. Only groups have children; insertion order is
// paint order.
//
//	ui := scene.NewGroup("ui")
//	scene.Root().AddChild(ui)
//
// Attaching a subtree to a group that is reachable from the root delivers
// OnAddedToScene to every node of the subtree, parent first, in child order.
// Detaching delivers OnRemovedFromScene the same way.
//
// # Transforms
//
// Position and scale compose down the tree: a child's offset is scaled by
// its parent's accumulated scale. Alpha multiplies. Rotation (in degrees)
// is local to each node and is not passed to children. Set PixelAligned to
// round the scaled offset to whole pixels.
//
// # Rendering
//
// [Renderer.Render] performs one pass: pending texture uploads, clear to
// [Scene.Background], a pre-order traversal that skips invisible subtrees
// and stamps each visited node's ZOrder, then pending texture deletions.
// A node whose texture is not uploaded yet, or was unloaded, is skipped for
// that pass.
//
// # Textures
//
// [TextureEngine] creates textures from images and queues them for upload.
// [TextureManager] adds asset loading from an [io/fs.FS], a path cache,
// named regions, atlas descriptors, TexturePacker atlases and bitmap fonts.
//
//	tex, err := app.Textures.LoadTexture("hero.png")
//	hero := scene.NewSprite("hero", tex.Region())
//
// # Frame loop
//
// [Loop] runs [Scene.Tick] at a fixed rate and renders once per frame,
// catching up with several ticks after a slow frame.
//
// # ECS integration
//
// Set an [EventSink] on the scene to receive lifecycle events. The ecs
// sub-module forwards them into a Donburi world.
//
// [Ebitengine]: https://ebitengine.org
package bramble
