// Package desktop provides a glimpse.Window backed by a glfw window.
package desktop

import (
	"fmt"
	"log/slog"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/cogentcore/webgpu/wgpuglfw"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/oliverbestmann/tessel/glimpse"
)

type Options struct {
	Title     string
	Width     int
	Height    int
	Resizable bool
}

type glfwWindow struct {
	win   *glfw.Window
	queue glimpse.EventQueue
}

// NewWindow creates a window without a client api, the surface is created by webgpu.
// It must be called from the main thread.
func NewWindow(opts Options) (glimpse.Window, error) {
	if err := glfw.Init(); err != nil {
		return nil, fmt.Errorf("initialize glfw: %w", err)
	}

	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)
	glfw.WindowHint(glfw.Resizable, boolHint(opts.Resizable))

	window, err := glfw.CreateWindow(opts.Width, opts.Height, opts.Title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, fmt.Errorf("create window: %w", err)
	}

	w := &glfwWindow{win: window}

	configureEvents(window, &w.queue)

	// draw the first frame right away
	w.queue.RequestRedraw()

	return w, nil
}

func (g *glfwWindow) Size() (uint32, uint32) {
	width, height := g.win.GetFramebufferSize()
	return uint32(max(width, 0)), uint32(max(height, 0))
}

func (g *glfwWindow) SurfaceDescriptor() *wgpu.SurfaceDescriptor {
	return wgpuglfw.GetSurfaceDescriptor(g.win)
}

func (g *glfwWindow) PollEvents() []glimpse.Event {
	g.queue.NextTick()

	glfw.PollEvents()

	if g.win.ShouldClose() {
		g.win.SetShouldClose(false)
		g.queue.Push(glimpse.CloseRequestedEvent{})
	}

	return g.queue.Drain()
}

func (g *glfwWindow) Keys() *glimpse.KeysState {
	return &g.queue.Keys
}

func (g *glfwWindow) RequestRedraw() {
	g.queue.RequestRedraw()
}

func (g *glfwWindow) Terminate() {
	g.win.Destroy()
	glfw.Terminate()
}

func configureEvents(window *glfw.Window, queue *glimpse.EventQueue) {
	window.SetKeyCallback(func(_win *glfw.Window, glfwKey glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
		if action == glfw.Repeat {
			return
		}

		key, ok := keyOf(glfwKey)
		if !ok {
			return
		}

		queue.Push(glimpse.KeyEvent{Key: key, Pressed: action == glfw.Press})
	})

	// the framebuffer size also changes when the window moves to a screen
	// with a different scale factor
	window.SetFramebufferSizeCallback(func(_win *glfw.Window, width int, height int) {
		queue.Push(glimpse.ResizedEvent{
			Width:  uint32(max(width, 0)),
			Height: uint32(max(height, 0)),
		})
	})

	window.SetRefreshCallback(func(_win *glfw.Window) {
		queue.RequestRedraw()
	})
}

var glfwToKey = map[glfw.Key]glimpse.Key{
	glfw.KeyEscape: glimpse.KeyEscape,
	glfw.KeyEnter:  glimpse.KeyEnter,
	glfw.KeySpace:  glimpse.KeySpace,
	glfw.KeyR:      glimpse.KeyR,
	glfw.KeyS:      glimpse.KeyS,
	glfw.KeyF:      glimpse.KeyF,
	glfw.KeyUp:     glimpse.KeyUp,
	glfw.KeyDown:   glimpse.KeyDown,
	glfw.KeyLeft:   glimpse.KeyLeft,
	glfw.KeyRight:  glimpse.KeyRight,
}

func keyOf(glfwKey glfw.Key) (key glimpse.Key, ok bool) {
	key, ok = glfwToKey[glfwKey]
	if !ok {
		slog.Debug(
			"Unknown key code",
			slog.String("key", glfw.GetKeyName(glfwKey, 0)),
		)
	}

	return
}

func boolHint(value bool) int {
	if value {
		return glfw.True
	}

	return glfw.False
}
