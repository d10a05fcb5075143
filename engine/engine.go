package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Carmen-Shannon/oxy-paint/common"
	"github.com/Carmen-Shannon/oxy-paint/engine/input"
	"github.com/Carmen-Shannon/oxy-paint/engine/profiler"
	"github.com/Carmen-Shannon/oxy-paint/engine/renderer"
	"github.com/Carmen-Shannon/oxy-paint/engine/scene"
	"github.com/Carmen-Shannon/oxy-paint/engine/window"
)

// ErrNoScene is returned when the engine is started without a scene or renderer.
var ErrNoScene = errors.New("engine: a scene and a renderer are required")

// settleFrames is how many frames run after a script finishes so late consumers see its last stroke.
const settleFrames = 2

// Behavior is per-frame logic driven by the engine.
//
// Every frame runs Update on every behaviour, then the render features, then LateUpdate on every
// behaviour. Destroy runs once, in reverse registration order, on every exit path.
type Behavior interface {
	Start() error
	Update(dt float32)
	LateUpdate(dt float32)
	Destroy()
}

// viewportReceiver is implemented by behaviours that turn pointer positions into rays.
type viewportReceiver interface {
	SetViewport(width, height int)
}

// engine implements the Engine interface.
type engine struct {
	mu *sync.Mutex

	window   window.Window
	renderer renderer.Renderer
	scene    scene.Scene
	input    *input.State
	script   *input.Script

	behaviors []Behavior
	started   int
	running   bool

	profiler         *profiler.Profiler
	profilingEnabled bool

	frameLimit time.Duration
	maxFrames  uint64
	frame      uint64
	scriptDone uint64

	quitChannel chan struct{}
	quitOnce    sync.Once
	closeOnce   sync.Once
	closeErr    error
}

// Engine runs the cooperative frame loop: input, Update, render features, present, LateUpdate.
type Engine interface {
	// Window returns the window, or nil for headless runs.
	Window() window.Window

	// Renderer returns the renderer.
	Renderer() renderer.Renderer

	// Scene returns the scene.
	Scene() scene.Scene

	// Input returns the input state fed by the window or the script.
	Input() *input.State

	// AddBehavior registers a behaviour. Behaviours added after Start are started immediately.
	//
	// Parameters:
	//   - b: the behaviour
	//
	// Returns:
	//   - error: the behaviour's Start error
	AddBehavior(b Behavior) error

	// EnableProfiler enables performance profiling output to the log.
	EnableProfiler()

	// DisableProfiler disables performance profiling output.
	DisableProfiler()

	// SetFrameLimit caps headless runs to fps frames per second. Pass 0 to uncap.
	//
	// Parameters:
	//   - fps: maximum frames per second
	SetFrameLimit(fps float64)

	// Frame returns the number of completed frames.
	Frame() uint64

	// Start starts every registered behaviour in order. A failing Start stops the sequence.
	//
	// Returns:
	//   - error: the first Start error
	Start() error

	// Step runs one frame. A panic inside the frame is recovered, logged and returned as an error,
	// and the engine quits.
	//
	// Parameters:
	//   - dt: the time since the previous frame in seconds
	//
	// Returns:
	//   - error: error if the frame panicked
	Step(dt float32) error

	// Resize propagates a new framebuffer size to the renderer, the camera and the behaviours.
	//
	// Parameters:
	//   - width, height: the size in pixels
	Resize(width, height int)

	// Run starts the engine and steps frames until the window closes, the context is cancelled,
	// Quit is called, the frame limit is reached or the script has finished.
	// Close is always called before Run returns.
	//
	// Parameters:
	//   - ctx: cancels the run
	//
	// Returns:
	//   - error: the first Start, frame or Close error
	Run(ctx context.Context) error

	// Quit asks Run to return after the current frame. Safe to call multiple times.
	Quit()

	// Close destroys every started behaviour in reverse order, releases the renderer and closes the
	// window. Only the first call has any effect.
	//
	// Returns:
	//   - error: error if the window could not be closed
	Close() error
}

var _ Engine = &engine{}

// NewEngine creates a new Engine instance with the provided options.
//
// Parameters:
//   - options: functional options for engine configuration
//
// Returns:
//   - Engine: the newly created engine
func NewEngine(options ...EngineBuilderOption) Engine {
	e := &engine{
		mu:          &sync.Mutex{},
		input:       input.NewState(),
		profiler:    profiler.NewProfiler(time.Second),
		quitChannel: make(chan struct{}),
	}

	for _, opt := range options {
		opt(e)
	}

	if e.window != nil {
		e.wireWindow()
	}

	return e
}

// wireWindow routes window events into the input state and the resize path.
func (e *engine) wireWindow() {
	e.window.SetResizeCallback(e.Resize)
	e.window.BindInput(e.input)
}

func (e *engine) Window() window.Window {
	return e.window
}

func (e *engine) Renderer() renderer.Renderer {
	return e.renderer
}

func (e *engine) Scene() scene.Scene {
	return e.scene
}

func (e *engine) Input() *input.State {
	return e.input
}

func (e *engine) AddBehavior(b Behavior) error {
	e.mu.Lock()
	e.behaviors = append(e.behaviors, b)
	running := e.running
	e.mu.Unlock()

	if !running {
		return nil
	}
	if err := b.Start(); err != nil {
		return err
	}
	e.mu.Lock()
	e.started = len(e.behaviors)
	e.mu.Unlock()
	return nil
}

// EnableProfiler enables performance profiling output to the log.
func (e *engine) EnableProfiler() {
	e.profilingEnabled = true
}

// DisableProfiler disables performance profiling output.
func (e *engine) DisableProfiler() {
	e.profilingEnabled = false
}

func (e *engine) SetFrameLimit(fps float64) {
	if fps <= 0 {
		e.frameLimit = 0
		return
	}
	e.frameLimit = time.Duration(float64(time.Second) / fps)
}

func (e *engine) Frame() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.frame
}

func (e *engine) Start() error {
	if e.scene == nil || e.renderer == nil {
		return ErrNoScene
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	for e.started < len(e.behaviors) {
		if err := e.behaviors[e.started].Start(); err != nil {
			return fmt.Errorf("engine: start behaviour %d: %w", e.started, err)
		}
		e.started++
	}
	e.running = true
	if e.window != nil {
		e.resizeLocked(e.window.Size())
	}
	common.ComponentLogger("engine").Info("engine started", "behaviours", len(e.behaviors), "backend", e.renderer.BackendType().String())
	return nil
}

func (e *engine) Step(dt float32) (err error) {
	e.mu.Lock()
	behaviors := e.behaviors[:e.started]
	frame := e.frame
	e.mu.Unlock()

	// Recover from panics inside the frame to avoid crashing the whole process.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("engine: frame %d panicked: %v", frame, r)
			common.ComponentLogger("engine").Error("frame recovered from panic", "frame", frame, "panic", r)
			e.Quit()
		}
	}()

	if e.script != nil {
		e.script.Apply(frame, e.input)
	}
	e.input.BeginFrame()

	for _, b := range behaviors {
		b.Update(dt)
	}

	cam := e.scene.Camera()
	passes := e.renderer.RenderFrame(cam, dt)
	if err := e.renderer.Present(cam, e.scene.DisplayDraws()); err != nil {
		common.ComponentLogger("engine").Warn("present failed", "frame", frame, "error", err)
	}

	for _, b := range behaviors {
		b.LateUpdate(dt)
	}

	e.mu.Lock()
	e.frame++
	e.mu.Unlock()

	if e.profilingEnabled && e.profiler != nil {
		e.profiler.Tick(passes)
	}
	return nil
}

func (e *engine) Resize(width, height int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.resizeLocked(width, height)
}

func (e *engine) resizeLocked(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	if e.renderer != nil {
		e.renderer.Resize(width, height)
	}
	if e.scene != nil {
		if c := e.scene.Camera(); c != nil {
			c.SetAspect(float32(width) / float32(height))
		}
	}
	for _, b := range e.behaviors {
		if v, ok := b.(viewportReceiver); ok {
			v.SetViewport(width, height)
		}
	}
}

func (e *engine) Run(ctx context.Context) (err error) {
	defer func() {
		if cerr := e.Close(); err == nil {
			err = cerr
		}
	}()

	if err := e.Start(); err != nil {
		return err
	}

	if e.window != nil {
		return e.runWindowed(ctx)
	}
	return e.runHeadless(ctx)
}

// runWindowed steps one frame per window message loop iteration.
func (e *engine) runWindowed(ctx context.Context) error {
	var stepErr error
	last := time.Now()
	e.window.Run(func() bool {
		if e.shouldStop(ctx) {
			return false
		}
		now := time.Now()
		dt := float32(now.Sub(last).Seconds())
		last = now
		if err := e.Step(dt); err != nil && stepErr == nil {
			stepErr = err
		}
		return true
	})
	return stepErr
}

// runHeadless steps frames as fast as the frame limit allows.
func (e *engine) runHeadless(ctx context.Context) error {
	last := time.Now()
	for !e.shouldStop(ctx) {
		start := time.Now()
		dt := float32(start.Sub(last).Seconds())
		last = start
		if err := e.Step(dt); err != nil {
			return err
		}

		if e.frameLimit > 0 {
			if remaining := e.frameLimit - time.Since(start); remaining > 0 {
				select {
				case <-ctx.Done():
				case <-e.quitChannel:
				case <-time.After(remaining):
				}
			}
		}
	}
	return nil
}

// shouldStop reports whether the run loop should end before the next frame.
func (e *engine) shouldStop(ctx context.Context) bool {
	select {
	case <-ctx.Done():
		return true
	case <-e.quitChannel:
		return true
	default:
	}

	frame := e.Frame()
	if e.maxFrames > 0 && frame >= e.maxFrames {
		return true
	}
	if e.script != nil && e.script.Done() {
		if e.scriptDone == 0 {
			e.scriptDone = frame + settleFrames
		}
		return frame >= e.scriptDone
	}
	return false
}

// Quit signals the run loop to stop.
// Safe to call multiple times; subsequent calls are no-ops due to sync.Once.
func (e *engine) Quit() {
	e.quitOnce.Do(func() {
		close(e.quitChannel)
	})
}

func (e *engine) Close() error {
	e.closeOnce.Do(func() {
		e.Quit()

		e.mu.Lock()
		started := e.behaviors[:e.started]
		e.mu.Unlock()

		for i := len(started) - 1; i >= 0; i-- {
			e.destroy(started[i])
		}
		if e.renderer != nil {
			e.renderer.Release()
		}
		if e.window != nil {
			e.closeErr = e.window.Close()
		}
		common.ComponentLogger("engine").Info("engine closed", "frames", e.Frame())
	})
	return e.closeErr
}

// destroy runs b.Destroy, recovering from a panic so the remaining behaviours are still destroyed.
func (e *engine) destroy(b Behavior) {
	defer func() {
		if r := recover(); r != nil {
			common.ComponentLogger("engine").Error("destroy recovered from panic", "panic", r)
		}
	}()
	b.Destroy()
}
