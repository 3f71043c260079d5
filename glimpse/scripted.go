package glimpse

import "github.com/cogentcore/webgpu/wgpu"

// Scripted is a Window without a native window. Every call to PollEvents
// replays the next scripted batch. Once all batches are replayed it
// requests to be closed.
type Scripted struct {
	Width, Height uint32

	batches [][]Event
	queue   EventQueue

	Polls      int
	Terminated bool
}

func NewScripted(width, height uint32, batches ...[]Event) *Scripted {
	return &Scripted{
		Width:   width,
		Height:  height,
		batches: batches,
	}
}

func (s *Scripted) Size() (uint32, uint32) {
	return s.Width, s.Height
}

func (s *Scripted) SurfaceDescriptor() *wgpu.SurfaceDescriptor {
	return &wgpu.SurfaceDescriptor{Label: "scripted"}
}

func (s *Scripted) PollEvents() []Event {
	s.Polls++
	s.queue.NextTick()

	if len(s.batches) == 0 {
		s.queue.Push(CloseRequestedEvent{})
		return s.queue.Drain()
	}

	batch := s.batches[0]
	s.batches = s.batches[1:]

	for _, event := range batch {
		if ev, ok := event.(ResizedEvent); ok {
			s.Width, s.Height = ev.Width, ev.Height
		}

		s.queue.Push(event)
	}

	return s.queue.Drain()
}

func (s *Scripted) Keys() *KeysState {
	return &s.queue.Keys
}

func (s *Scripted) RequestRedraw() {
	s.queue.RequestRedraw()
}

func (s *Scripted) Terminate() {
	s.Terminated = true
}
