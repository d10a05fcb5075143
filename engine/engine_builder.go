package engine

import (
	"github.com/Carmen-Shannon/oxy-paint/engine/input"
	"github.com/Carmen-Shannon/oxy-paint/engine/renderer"
	"github.com/Carmen-Shannon/oxy-paint/engine/scene"
	"github.com/Carmen-Shannon/oxy-paint/engine/window"
)

// EngineBuilderOption is a functional option for configuring an Engine.
// Use the With* functions to create options that are applied directly to the engine instance.
type EngineBuilderOption func(*engine)

// WithProfiling enables or disables performance profiling output.
//
// Parameters:
//   - enabled: if true, enables performance profiling
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithProfiling(enabled bool) EngineBuilderOption {
	return func(e *engine) {
		e.profilingEnabled = enabled
	}
}

// WithFrameLimit caps headless runs to fps frames per second.
// Values <= 0 leave the loop uncapped.
//
// Parameters:
//   - fps: maximum frames per second
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithFrameLimit(fps float64) EngineBuilderOption {
	return func(e *engine) {
		e.SetFrameLimit(fps)
	}
}

// WithMaxFrames stops Run after n frames. 0 means no limit.
//
// Parameters:
//   - n: the frame count
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithMaxFrames(n uint64) EngineBuilderOption {
	return func(e *engine) {
		e.maxFrames = n
	}
}

// WithWindow runs the engine inside a window. Window input is routed into the engine's input state.
//
// Parameters:
//   - w: an open Window
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithWindow(w window.Window) EngineBuilderOption {
	return func(e *engine) {
		e.window = w
	}
}

// WithRenderer sets the renderer that runs the render features and presents the scene.
//
// Parameters:
//   - r: the renderer
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithRenderer(r renderer.Renderer) EngineBuilderOption {
	return func(e *engine) {
		e.renderer = r
	}
}

// WithScene sets the scene whose camera and display list are rendered.
//
// Parameters:
//   - s: the scene
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithScene(s scene.Scene) EngineBuilderOption {
	return func(e *engine) {
		e.scene = s
	}
}

// WithInput replaces the engine's input state.
//
// Parameters:
//   - s: the input state
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithInput(s *input.State) EngineBuilderOption {
	return func(e *engine) {
		if s != nil {
			e.input = s
		}
	}
}

// WithScript replays scripted input before each frame. A headless Run ends shortly after the
// script's last event.
//
// Parameters:
//   - s: the script
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithScript(s *input.Script) EngineBuilderOption {
	return func(e *engine) {
		e.script = s
	}
}

// WithBehaviors registers behaviours in order.
//
// Parameters:
//   - behaviors: the behaviours
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithBehaviors(behaviors ...Behavior) EngineBuilderOption {
	return func(e *engine) {
		e.behaviors = append(e.behaviors, behaviors...)
	}
}
