package orion

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/oliverbestmann/tessel/config"
	"github.com/oliverbestmann/tessel/glimpse/desktop"
	"github.com/oliverbestmann/tessel/pulse"
	"github.com/oliverbestmann/tessel/pulse/commands"
	"github.com/oliverbestmann/tessel/pulse/driver/wgpudrv"
)

type RunOptions struct {
	Config config.Config

	// Textures loads the textures bound to the renderer. This field is required.
	Textures func(base *pulse.Base) ([]*pulse.Texture, error)

	// Scene fills the vertex and index buffers of the renderer before the loop starts.
	Scene func(renderer *commands.TextureRenderer) error
}

// Run opens a window and renders the scene until the window is closed.
func Run(opts RunOptions) error {
	if opts.Textures == nil {
		return errors.New("Textures must not be nil")
	}

	cfg := opts.Config

	if cfg.Graphics.LogLevel != "" {
		wgpudrv.SetLogLevel(cfg.Graphics.LogLevel)
	}

	graphicsOptions, err := pulse.NewOptions(cfg.Graphics)
	if err != nil {
		return fmt.Errorf("graphics options: %w", err)
	}

	indexing, err := commands.ParseIndexing(cfg.Renderer.Indexing)
	if err != nil {
		return fmt.Errorf("renderer options: %w", err)
	}

	// create a new window
	win, err := desktop.NewWindow(desktop.Options{
		Title:     cfg.Window.Title,
		Width:     cfg.Window.Width,
		Height:    cfg.Window.Height,
		Resizable: cfg.Window.Resizable,
	})

	if err != nil {
		return fmt.Errorf("create window: %w", err)
	}

	defer win.Terminate()

	// initialize the webgpu device
	base, err := pulse.Init(wgpudrv.NewInstance(graphicsOptions.Backends), graphicsOptions).
		WithWindow(win).
		CreateSurface().
		NegotiateAdapter().
		RequestDevice(nil, nil, pulse.DownlevelWebGL2Limits()).
		ConfigureSurface().
		Build()

	if err != nil {
		return fmt.Errorf("initializing wgpu: %w", err)
	}

	defer base.Release()

	textures, err := opts.Textures(base)
	if err != nil {
		return fmt.Errorf("load textures: %w", err)
	}

	defer func() {
		for _, texture := range textures {
			texture.Release()
		}
	}()

	builder := commands.NewTextureRenderer(base, win).WithIndexing(indexing)

	var watcher *ShaderWatcher

	if path := cfg.Renderer.ShaderPath; path != "" {
		code, err := loadShader(path)
		if err != nil {
			return err
		}

		builder = builder.WithShader(code)

		watcher, err = WatchShader(path)
		if err != nil {
			return fmt.Errorf("watch shader: %w", err)
		}

		defer watcher.Close()
	}

	renderer, err := builder.
		CreatePipeline(cfg.Renderer.MaxTextures).
		CreateBuffers().
		CreateBindGroup(textures).
		Build()

	if err != nil {
		return fmt.Errorf("create renderer: %w", err)
	}

	defer renderer.Release()

	// the configured clear color is srgb encoded
	renderer.SetClearColor(pulse.ColorSRGBA(
		cfg.Renderer.ClearColor[0],
		cfg.Renderer.ClearColor[1],
		cfg.Renderer.ClearColor[2],
		cfg.Renderer.ClearColor[3],
	))

	if opts.Scene != nil {
		if err := opts.Scene(renderer); err != nil {
			return fmt.Errorf("build scene: %w", err)
		}
	}

	slog.Info("Start render loop",
		slog.Int("textures", len(textures)),
		slog.String("indexing", indexing.String()),
	)

	loop := &Loop{
		Window:   win,
		Base:     base,
		Renderer: renderer,
	}

	if watcher != nil {
		loop.Shaders = watcher.Updates()
	}

	return loop.Run()
}

func loadShader(path string) (string, error) {
	code, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read shader: %w", err)
	}

	if err := commands.ValidateWGSL(string(code)); err != nil {
		return "", fmt.Errorf("shader %q: %w", path, err)
	}

	return string(code), nil
}
