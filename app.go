package bramble

import (
	"fmt"
	"io/fs"

	"github.com/hajimehoshi/ebiten/v2"
)

// App wires a Scene, an EbitenDevice, the texture pipeline, a Renderer and
// a Loop into an ebiten.Game.
type App struct {
	Config   Config
	Scene    *Scene
	Device   *EbitenDevice
	Engine   *TextureEngine
	Textures *TextureManager
	Renderer *Renderer
	Loop     *Loop

	// ScreenshotDir is where Screenshot writes PNG files.
	ScreenshotDir   string
	screenshotQueue []string
}

// NewApp builds an App from cfg. Assets are read from assets.
func NewApp(cfg Config, assets fs.FS) (*App, error) {
	cfg.fillDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("bramble: new app: %w", err)
	}
	bg, _ := cfg.BackgroundColor()

	scene := NewScene(float64(cfg.Width), float64(cfg.Height))
	scene.Background = bg
	scene.SetDebugMode(cfg.Debug)

	device := NewEbitenDevice(cfg.SmoothMode)
	engine := NewTextureEngine(device)
	textures := NewTextureManager(engine, assets)
	renderer := NewRenderer(scene, device, engine)

	a := &App{
		Config:        cfg,
		Scene:         scene,
		Device:        device,
		Engine:        engine,
		Textures:      textures,
		Renderer:      renderer,
		Loop:          NewLoop(cfg.FrameRate, scene, renderer),
		ScreenshotDir: "screenshots",
	}
	renderer.OnRendered = a.flushScreenshots
	return a, nil
}

// Update implements ebiten.Game. Logic ticks run from Draw through the
// loop, so Update only reports termination.
func (a *App) Update() error {
	if !a.Loop.Running() {
		return ebiten.Termination
	}
	return nil
}

// Draw implements ebiten.Game.
func (a *App) Draw(screen *ebiten.Image) {
	a.Device.SetTarget(screen)
	a.Loop.Frame(a.Loop.Clock())
}

// Layout implements ebiten.Game. The logical size is the scene's size.
func (a *App) Layout(_, _ int) (int, int) {
	return int(a.Scene.Width()), int(a.Scene.Height())
}

// Run opens the window and blocks until Stop is called or the window is
// closed.
func (a *App) Run() error {
	ebiten.SetWindowTitle(a.Config.Title)
	ebiten.SetWindowSize(a.Config.Width, a.Config.Height)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetTPS(a.Config.FrameRate)

	a.Loop.begin()
	defer a.Loop.end()
	return ebiten.RunGame(a)
}

// Stop ends Run after the current frame.
func (a *App) Stop() {
	a.Loop.Stop()
}
