package orion

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/oliverbestmann/tessel/glimpse"
	"github.com/oliverbestmann/tessel/pulse"
	"github.com/oliverbestmann/tessel/pulse/driver"
)

// Renderer draws one frame into the surface texture.
type Renderer interface {
	Resize(config wgpu.SurfaceConfiguration) error
	Render(target driver.TextureView) error
}

// ShaderReloader is implemented by renderers that can replace their shader at runtime.
type ShaderReloader interface {
	ReloadShader(code string) error
}

// Loop drives a Renderer from the events of a window.
type Loop struct {
	Window   glimpse.Window
	Base     *pulse.Base
	Renderer Renderer
	Stats    FrameTimes

	// Reports receives the instance report when R is pressed, defaults to stdout.
	Reports io.Writer

	// Shaders delivers shader sources to apply between frames, may be nil.
	Shaders <-chan string
}

// Run processes window events until the window is closed or escape is pressed.
// An error is returned if a frame could not be rendered.
func (l *Loop) Run() error {
	for {
		events := l.Window.PollEvents()

		keys := l.Window.Keys()
		if keys.JustPressed[glimpse.KeyEscape] {
			return nil
		}

		if keys.JustPressed[glimpse.KeyR] {
			printReport(l.reports(), l.Base)
		}

		for _, event := range events {
			done, err := l.handle(event)
			if err != nil {
				return err
			}

			if done {
				return nil
			}
		}

		l.applyShader()
	}
}

func (l *Loop) handle(event glimpse.Event) (bool, error) {
	switch ev := event.(type) {
	case glimpse.CloseRequestedEvent:
		return true, nil

	case glimpse.ResizedEvent:
		width, height := l.Base.Resize(ev.Width, ev.Height)

		slog.Debug("Resize surface",
			slog.Int("width", int(width)),
			slog.Int("height", int(height)),
		)

		if err := l.Renderer.Resize(l.Base.Config()); err != nil {
			return false, fmt.Errorf("resize renderer: %w", err)
		}

	case glimpse.RedrawEventsClearedEvent:
		l.Window.RequestRedraw()

	case glimpse.RedrawRequestedEvent:
		if err := l.renderFrame(); err != nil {
			return false, err
		}
	}

	return false, nil
}

func (l *Loop) renderFrame() error {
	if avg, ok := l.Stats.Tick(time.Now()); ok {
		slog.Info("Frame time",
			slog.Duration("average", avg),
			slog.Duration("max", l.Stats.MaxDuration),
		)
	}

	// get the surface texture (the actual screen)
	surface, err := l.Base.AcquireFrame()
	if err != nil {
		return fmt.Errorf("acquire frame: %w", err)
	}

	defer func() {
		if surface != nil {
			surface.Release()
		}
	}()

	view, err := surface.CreateView()
	if err != nil {
		return fmt.Errorf("create surface view: %w", err)
	}

	defer view.Release()

	if err := l.Renderer.Render(view); err != nil {
		return fmt.Errorf("render: %w", err)
	}

	// present the rendered image
	l.Base.Surface.Present()

	// we do not need to release the screen if present was successful
	surface = nil

	return nil
}

func (l *Loop) applyShader() {
	if l.Shaders == nil {
		return
	}

	select {
	case code := <-l.Shaders:
		reloader, ok := l.Renderer.(ShaderReloader)
		if !ok {
			return
		}

		if err := reloader.ReloadShader(code); err != nil {
			slog.Warn("Keep previous shader", slog.String("err", err.Error()))
		}

	default:
	}
}

func (l *Loop) reports() io.Writer {
	if l.Reports == nil {
		return os.Stdout
	}

	return l.Reports
}
