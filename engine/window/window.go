package window

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-paint/common"
	"github.com/cogentcore/webgpu/wgpu"
)

// InputSink receives pointer and keyboard events from the window. Positions are framebuffer pixels
// with the origin at the top-left. input.State implements it.
type InputSink interface {
	SetPointer(x, y float32)
	SetButton(button int, down bool)
	KeyDown(key uint32)
	KeyUp(key uint32)
}

// Window is the interactive display surface: it feeds an InputSink and drives the frame loop.
type Window interface {
	// BindInput routes pointer and keyboard events into sink. Button events also update the pointer
	// so a click is always reported at its own position.
	//
	// Parameters:
	//   - sink: the receiver of input events, or nil to drop them
	BindInput(sink InputSink)

	// SetResizeCallback sets the function called when the framebuffer is resized.
	//
	// Parameters:
	//   - callback: function receiving new width and height in pixels
	SetResizeCallback(callback func(width, height int))

	// SetScrollCallback sets the callback for vertical scroll wheel movement.
	//
	// Parameters:
	//   - callback: function receiving the scroll delta, positive away from the user
	SetScrollCallback(callback func(delta float32))

	// Run polls window events and calls frame once per iteration until frame returns false, the
	// close key is pressed or the user closes the window. Must be called from the main thread.
	//
	// Parameters:
	//   - frame: the per-iteration callback; returning false ends the loop
	Run(frame func() bool)

	// SurfaceDescriptor returns the platform surface descriptor for the WebGPU backend.
	//
	// Returns:
	//   - *wgpu.SurfaceDescriptor: the descriptor, or nil once the window is closed
	SurfaceDescriptor() *wgpu.SurfaceDescriptor

	// Size returns the current framebuffer size in pixels.
	//
	// Returns:
	//   - int, int: the width and height
	Size() (int, int)

	// Close destroys the window. Closing twice is a no-op.
	//
	// Returns:
	//   - error: error if the platform window could not be released
	Close() error
}

// sizeLimits bounds interactive resizing.
type sizeLimits struct {
	minWidth, minHeight int
	maxWidth, maxHeight int
}

// engineWindow is the implementation of the Window interface.
type engineWindow struct {
	title    string
	width    int
	height   int
	limits   sizeLimits
	closeKey uint32

	platform *glfwWindow

	sink     InputSink
	onResize func(width, height int)
	onScroll func(delta float32)
}

var _ Window = &engineWindow{}

// NewWindow creates and shows a new Window with the specified options.
//
// Parameters:
//   - options: functional options to configure the window
//
// Returns:
//   - Window: the open window
//   - error: error if the platform window could not be created
func NewWindow(options ...WindowBuilderOption) (Window, error) {
	w := newEngineWindow(options...)
	if err := w.validate(); err != nil {
		return nil, err
	}
	if err := openPlatformWindow(w); err != nil {
		return nil, fmt.Errorf("failed to create platform window: %w", err)
	}
	return w, nil
}

func newEngineWindow(options ...WindowBuilderOption) *engineWindow {
	w := &engineWindow{
		title:    "oxy-paint",
		width:    1280,
		height:   720,
		limits:   sizeLimits{minWidth: 320, minHeight: 240, maxWidth: 3840, maxHeight: 2160},
		closeKey: common.KeyEsc,
	}
	for _, opt := range options {
		opt(w)
	}
	return w
}

func (w *engineWindow) validate() error {
	l := w.limits
	if w.width <= 0 || w.height <= 0 {
		return fmt.Errorf("invalid window size %dx%d", w.width, w.height)
	}
	if l.minWidth > l.maxWidth || l.minHeight > l.maxHeight {
		return fmt.Errorf("invalid window size limits %dx%d..%dx%d", l.minWidth, l.minHeight, l.maxWidth, l.maxHeight)
	}
	return nil
}

func (w *engineWindow) BindInput(sink InputSink) {
	w.sink = sink
}

func (w *engineWindow) SetResizeCallback(callback func(width, height int)) {
	w.onResize = callback
}

func (w *engineWindow) SetScrollCallback(callback func(delta float32)) {
	w.onScroll = callback
}

func (w *engineWindow) Run(frame func() bool) {
	for w.platform != nil && w.platform.poll() {
		if !frame() {
			w.platform.requestClose()
			return
		}
	}
}

func (w *engineWindow) SurfaceDescriptor() *wgpu.SurfaceDescriptor {
	if w.platform == nil {
		return nil
	}
	return w.platform.surfaceDescriptor()
}

func (w *engineWindow) Size() (int, int) {
	return w.width, w.height
}

func (w *engineWindow) Close() error {
	if w.platform == nil {
		return nil
	}
	p := w.platform
	w.platform = nil
	return p.destroy()
}

// The handlers below are the platform-independent half of event routing.

func (w *engineWindow) handleKey(key uint32, down bool) bool {
	if down && w.closeKey != 0 && key == w.closeKey {
		return false
	}
	if w.sink == nil {
		return true
	}
	if down {
		w.sink.KeyDown(key)
	} else {
		w.sink.KeyUp(key)
	}
	return true
}

func (w *engineWindow) handleButton(button int, down bool, x, y float32) {
	if w.sink != nil {
		w.sink.SetPointer(x, y)
		w.sink.SetButton(button, down)
	}
}

func (w *engineWindow) handleCursor(x, y float32) {
	if w.sink != nil {
		w.sink.SetPointer(x, y)
	}
}

func (w *engineWindow) handleScroll(delta float32) {
	if w.onScroll != nil {
		w.onScroll(delta)
	}
}

func (w *engineWindow) handleResize(width, height int) {
	if width <= 0 || height <= 0 {
		// Minimised.
		return
	}
	w.width, w.height = width, height
	if w.onResize != nil {
		w.onResize(width, height)
	}
}
