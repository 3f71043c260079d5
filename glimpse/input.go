package glimpse

import "log/slog"

// KeysState tracks keyboard state across event batches. The Just* sets
// only hold the transitions of the current batch.
type KeysState struct {
	Pressed      map[Key]bool
	JustPressed  map[Key]bool
	JustReleased map[Key]bool
}

func (k *KeysState) press(key Key) {
	slog.Debug("Key pressed", slog.String("key", key.String()))

	mark(&k.Pressed, key, true)
	mark(&k.JustPressed, key, true)
}

func (k *KeysState) release(key Key) {
	slog.Debug("Key released", slog.String("key", key.String()))

	mark(&k.Pressed, key, false)
	mark(&k.JustReleased, key, true)
}

func (k *KeysState) nextTick() {
	clear(k.JustPressed)
	clear(k.JustReleased)
}

func mark(m *map[Key]bool, key Key, value bool) {
	if *m == nil {
		*m = map[Key]bool{}
	}

	(*m)[key] = value
}
