package config

import (
	"fmt"
	"path/filepath"
	"sync"

	"github.com/Carmen-Shannon/oxy-paint/common"
	"github.com/fsnotify/fsnotify"
)

// watcher is the implementation of the Watcher interface.
type watcher struct {
	mu       *sync.Mutex
	path     string
	fs       *fsnotify.Watcher
	onChange func(*Config)
	done     chan struct{}
	closed   bool
}

// Watcher reloads a config file whenever it changes on disk.
//
// The directory is watched rather than the file so editors that save by rename keep being observed.
// Files that fail to load are logged and skipped; the last good config stays in effect.
type Watcher interface {
	// Path returns the watched file.
	Path() string

	// Close stops watching. Safe to call more than once.
	//
	// Returns:
	//   - error: error from the underlying watcher
	Close() error
}

var _ Watcher = &watcher{}

// NewWatcher starts watching path. onChange runs on the watcher goroutine with every successfully
// reloaded config, so it must be safe to call concurrently with the frame loop.
//
// Parameters:
//   - path: the config file to watch
//   - onChange: the reload callback
//
// Returns:
//   - Watcher: the running watcher
//   - error: error if the watch cannot be established
func NewWatcher(path string, onChange func(*Config)) (Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve config path %s: %w", path, err)
	}
	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create config watcher: %w", err)
	}
	if err := fs.Add(filepath.Dir(abs)); err != nil {
		fs.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", filepath.Dir(abs), err)
	}

	w := &watcher{
		mu:       &sync.Mutex{},
		path:     abs,
		fs:       fs,
		onChange: onChange,
		done:     make(chan struct{}),
	}
	go w.loop()
	return w, nil
}

func (w *watcher) Path() string {
	return w.path
}

func (w *watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	w.mu.Unlock()

	err := w.fs.Close()
	<-w.done
	return err
}

func (w *watcher) loop() {
	defer close(w.done)
	log := common.ComponentLogger("config")
	for {
		select {
		case ev, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != w.path || !(ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create)) {
				continue
			}
			c, err := Load(w.path)
			if err != nil {
				log.Warn("config reload skipped", "path", w.path, "error", err)
				continue
			}
			log.Info("config reloaded", "path", w.path)
			if w.onChange != nil {
				w.onChange(c)
			}
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			log.Warn("config watcher error", "error", err)
		}
	}
}
