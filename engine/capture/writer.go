// Package capture persists texture snapshots as lossless image files. Writes run on a worker pool so
// disk IO stays off the frame thread.
package capture

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-paint/common"
)

// DefaultDir is the output directory used when none is configured.
const DefaultDir = "captures"

// writer is the implementation of the Writer interface.
type writer struct {
	mu      *sync.Mutex
	dir     string
	format  Format
	workers int

	pool   worker.DynamicWorkerPool
	wg     sync.WaitGroup
	taskID atomic.Int64
	errs   []error
	closed bool

	// pending holds the newest unwritten texture per output path. A path in draining has exactly one
	// task on the pool, so writes to the same file never overlap and the last save wins.
	pending  map[string]*common.Texture
	draining map[string]bool
}

// Writer saves textures into a fixed directory, one file per texture named after it.
type Writer interface {
	// Dir returns the output directory.
	Dir() string

	// Format returns the encoding used for new files.
	Format() Format

	// Path returns the file a texture with the given name is written to.
	//
	// Parameters:
	//   - name: the texture name
	//
	// Returns:
	//   - string: the output path
	Path(name string) string

	// Save queues tex for writing and returns immediately.
	// The texture is an immutable snapshot so it is safe to keep using it. A save that replaces a
	// not yet written texture of the same name supersedes it, so the file ends up holding the latest.
	//
	// Parameters:
	//   - tex: the texture to persist
	//
	// Returns:
	//   - string: the path the file will be written to
	//   - error: if the writer is closed or tex is nil
	Save(tex *common.Texture) (string, error)

	// Flush blocks until every queued write has finished and returns the errors collected since the
	// previous Flush.
	//
	// Returns:
	//   - error: the joined write errors, or nil
	Flush() error

	// Close flushes and stops the worker pool. Further saves fail.
	//
	// Returns:
	//   - error: the result of the final flush
	Close() error
}

var _ Writer = &writer{}

// NewWriter creates a capture writer. The output directory is created on first write.
//
// Parameters:
//   - options: variadic list of WriterBuilderOption functions
//
// Returns:
//   - Writer: the writer
func NewWriter(options ...WriterBuilderOption) Writer {
	w := &writer{
		mu:      &sync.Mutex{},
		dir:     DefaultDir,
		format:  FormatPNG,
		workers:  2,
		pending:  make(map[string]*common.Texture),
		draining: make(map[string]bool),
	}
	for _, opt := range options {
		opt(w)
	}
	w.pool = worker.NewDynamicWorkerPool(w.workers, 64, time.Second)
	return w
}

func (w *writer) Dir() string {
	return w.dir
}

func (w *writer) Format() Format {
	return w.format
}

func (w *writer) Path(name string) string {
	base := filepath.Base(strings.TrimSpace(name))
	if base == "." || base == string(filepath.Separator) || base == "" {
		base = "texture"
	}
	return filepath.Join(w.dir, base+w.format.Extension())
}

func (w *writer) Save(tex *common.Texture) (string, error) {
	if tex == nil {
		return "", errors.New("capture: nil texture")
	}

	path := w.Path(tex.Name())

	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return "", errors.New("capture: writer closed")
	}
	w.pending[path] = tex
	if w.draining[path] {
		w.mu.Unlock()
		return path, nil
	}
	w.draining[path] = true
	w.wg.Add(1)
	w.mu.Unlock()

	// The pool queue is bounded, so submit outside the lock that drain needs.
	w.pool.SubmitTask(worker.Task{
		ID:      int(w.taskID.Add(1)),
		Payload: path,
		Do: func() (any, error) {
			defer w.wg.Done()
			return path, w.drain(path)
		},
	})
	return path, nil
}

// drain writes the pending texture for path until none is left, then releases the path.
func (w *writer) drain(path string) error {
	var errs []error
	for {
		w.mu.Lock()
		tex, ok := w.pending[path]
		if !ok {
			delete(w.draining, path)
			w.mu.Unlock()
			return errors.Join(errs...)
		}
		delete(w.pending, path)
		w.mu.Unlock()

		if err := WriteFile(path, tex, w.format); err != nil {
			common.ComponentLogger("capture").Error("write failed", "path", path, "err", err)
			w.mu.Lock()
			w.errs = append(w.errs, err)
			w.mu.Unlock()
			errs = append(errs, err)
			continue
		}
		common.ComponentLogger("capture").Info("capture written", "path", path,
			"width", tex.Width(), "height", tex.Height())
	}
}

func (w *writer) Flush() error {
	w.wg.Wait()

	w.mu.Lock()
	defer w.mu.Unlock()
	err := errors.Join(w.errs...)
	w.errs = nil
	return err
}

func (w *writer) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	w.mu.Unlock()

	err := w.Flush()
	w.pool.Stop()
	return err
}

// WriteFile encodes tex to path synchronously, creating parent directories.
//
// Parameters:
//   - path: the destination file
//   - tex: the texture to encode
//   - f: the format
//
// Returns:
//   - error: wrapped IO or encoder errors
func WriteFile(path string, tex *common.Texture, f Format) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("capture: create dir: %w", err)
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("capture: create %s: %w", path, err)
	}
	if err := Encode(file, tex.Image(), f); err != nil {
		file.Close()
		return fmt.Errorf("capture: encode %s: %w", path, err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("capture: close %s: %w", path, err)
	}
	return nil
}
