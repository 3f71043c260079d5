package orion

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/oliverbestmann/tessel/pulse/commands"
)

// ShaderWatcher watches a shader file and delivers validated updates of its source.
type ShaderWatcher struct {
	path    string
	watcher *fsnotify.Watcher
	updates chan string
	done    chan struct{}
}

// WatchShader starts watching the shader file at path. The directory is watched so
// that editors replacing the file are noticed too.
func WatchShader(path string) (*ShaderWatcher, error) {
	path, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve shader path: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	if err := watcher.Add(filepath.Dir(path)); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("watch %q: %w", path, err)
	}

	w := &ShaderWatcher{
		path:    path,
		watcher: watcher,
		updates: make(chan string, 1),
		done:    make(chan struct{}),
	}

	go w.run()

	return w, nil
}

// Updates delivers the source of the shader after every valid change. Only the
// latest pending update is kept.
func (w *ShaderWatcher) Updates() <-chan string {
	return w.updates
}

func (w *ShaderWatcher) Close() error {
	close(w.done)
	return w.watcher.Close()
}

func (w *ShaderWatcher) run() {
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}

			if filepath.Clean(event.Name) != w.path {
				continue
			}

			if event.Op&(fsnotify.Create|fsnotify.Write) != 0 {
				w.reload()
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}

			slog.Warn("Shader watcher failed", slog.String("err", err.Error()))

		case <-w.done:
			return
		}
	}
}

func (w *ShaderWatcher) reload() {
	code, err := os.ReadFile(w.path)
	if err != nil {
		slog.Warn("Failed to read shader", slog.String("path", w.path), slog.String("err", err.Error()))
		return
	}

	if err := commands.ValidateWGSL(string(code)); err != nil {
		slog.Warn("Ignore invalid shader", slog.String("path", w.path), slog.String("err", err.Error()))
		return
	}

	// replace a pending update that was not yet consumed
	select {
	case <-w.updates:
	default:
	}

	select {
	case w.updates <- string(code):
	case <-w.done:
	}
}
