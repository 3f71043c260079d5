package glimpse

import "github.com/cogentcore/webgpu/wgpu"

// Window is a native window that can be rendered to.
type Window interface {
	// Size returns the inner size of the window in physical pixels.
	Size() (uint32, uint32)

	SurfaceDescriptor() *wgpu.SurfaceDescriptor

	// PollEvents processes pending window system events and returns them in
	// the order they were received, followed by the redraw events.
	PollEvents() []Event

	// Keys returns the key state after the events of the last call to PollEvents.
	Keys() *KeysState

	// RequestRedraw schedules a RedrawRequestedEvent for the next call to PollEvents.
	RequestRedraw()

	Terminate()
}
