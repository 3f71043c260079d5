package glimpse

type Event interface {
	isEvent()
}

type ResizedEvent struct {
	Width, Height uint32
}

type CloseRequestedEvent struct{}

type KeyEvent struct {
	Key     Key
	Pressed bool
}

type RedrawRequestedEvent struct{}

// RedrawEventsClearedEvent is emitted as the last event of every batch.
type RedrawEventsClearedEvent struct{}

func (ResizedEvent) isEvent()             {}
func (CloseRequestedEvent) isEvent()      {}
func (KeyEvent) isEvent()                 {}
func (RedrawRequestedEvent) isEvent()     {}
func (RedrawEventsClearedEvent) isEvent() {}

// EventQueue collects events from window system callbacks until they are drained.
// It is not safe for concurrent use, callbacks run on the thread that polls.
type EventQueue struct {
	events []Event
	redraw bool

	Keys KeysState
}

func (q *EventQueue) Push(event Event) {
	if ev, ok := event.(KeyEvent); ok {
		if ev.Pressed {
			q.Keys.press(ev.Key)
		} else {
			q.Keys.release(ev.Key)
		}
	}

	q.events = append(q.events, event)
}

func (q *EventQueue) RequestRedraw() {
	q.redraw = true
}

// Drain returns all queued events, then a RedrawRequestedEvent if a redraw was
// requested, then a RedrawEventsClearedEvent. The queue is empty afterwards.
func (q *EventQueue) Drain() []Event {
	events := q.events
	q.events = nil

	if q.redraw {
		q.redraw = false
		events = append(events, RedrawRequestedEvent{})
	}

	events = append(events, RedrawEventsClearedEvent{})

	return events
}

// NextTick resets the per batch key state.
func (q *EventQueue) NextTick() {
	q.Keys.nextTick()
}
