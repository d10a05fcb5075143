// Package paint turns pointer input into brush strokes accumulated on a mesh texture.
//
// A stroke casts a ray from the camera through the pointer, writes the hit coordinates into the draw
// material and arms the paint render feature. The drawn result becomes the input of the next stroke.
package paint

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/Carmen-Shannon/oxy-paint/common"
	"github.com/Carmen-Shannon/oxy-paint/engine/camera"
	"github.com/Carmen-Shannon/oxy-paint/engine/capture"
	"github.com/Carmen-Shannon/oxy-paint/engine/game_object"
	"github.com/Carmen-Shannon/oxy-paint/engine/input"
	"github.com/Carmen-Shannon/oxy-paint/engine/renderer"
	"github.com/Carmen-Shannon/oxy-paint/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-paint/engine/renderer/renderpass"
	"github.com/Carmen-Shannon/oxy-paint/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-paint/engine/surface"
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
)

const (
	// CaptureName is the name given to every accumulated texture.
	CaptureName = "paintCapture"
	// TargetName labels the accumulator's render target.
	TargetName = "paintTarget"
	// DefaultDim is the square target size used without a base texture.
	DefaultDim = 1024
)

// accumulator is the implementation of the Accumulator interface.
type accumulator struct {
	mu      *sync.Mutex
	session uuid.UUID
	log     *slog.Logger

	renderer     renderer.Renderer
	cam          camera.Camera
	input        input.Source
	query        surface.Query
	target       game_object.GameObject
	drawMaterial material.Material
	baseTexture  *common.Texture
	writer       capture.Writer
	defaultDim   int
	button       int
	viewW        int
	viewH        int

	feature   renderpass.Feature
	lease     *renderer.TargetLease
	triggers  uint64
	strokes   uint64
	started   bool
	disabled  bool
	destroyed bool
}

// Accumulator is the frame behaviour that paints on the target object.
type Accumulator interface {
	// Start finds the paint render feature, acquires the render target and subscribes to results.
	// A renderer without the feature disables the accumulator instead of failing.
	//
	// Returns:
	//   - error: error if a required dependency is missing or the target cannot be acquired
	Start() error

	// Update triggers a stroke at the pointer while the paint button is held.
	//
	// Parameters:
	//   - dt: the time since the previous frame in seconds
	Update(dt float32)

	// LateUpdate does nothing. Results are consumed as soon as they are produced.
	//
	// Parameters:
	//   - dt: the time since the previous frame in seconds
	LateUpdate(dt float32)

	// Destroy disarms the feature and releases the render target. Safe to call more than once.
	Destroy()

	// Trigger casts a ray through a window position, writes every hit into the draw material and arms
	// the feature. The feature is armed even when nothing is hit.
	//
	// Parameters:
	//   - x, y: the window position in pixels, origin top-left
	Trigger(x, y float32)

	// SetViewport sets the window size used to turn pointer positions into rays.
	//
	// Parameters:
	//   - width, height: the size in pixels
	SetViewport(width, height int)

	// Target returns the render target, or nil before Start.
	Target() renderer.RenderTarget

	// Triggers returns how many strokes were requested.
	Triggers() uint64

	// Strokes returns how many results were accumulated.
	Strokes() uint64

	// Session returns the session ID used in log records.
	Session() uuid.UUID
}

var _ Accumulator = &accumulator{}

// NewAccumulator creates a paint accumulator.
//
// Parameters:
//   - options: variadic list of AccumulatorBuilderOption functions
//
// Returns:
//   - Accumulator: the accumulator
func NewAccumulator(options ...AccumulatorBuilderOption) Accumulator {
	a := &accumulator{
		mu:         &sync.Mutex{},
		session:    uuid.New(),
		defaultDim: DefaultDim,
		button:     common.MouseButtonLeft,
		viewW:      1280,
		viewH:      720,
	}
	for _, opt := range options {
		opt(a)
	}
	a.log = common.ComponentLogger("paint").With("session", a.session.String())
	return a
}

func (a *accumulator) Start() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.started {
		return nil
	}
	if a.renderer == nil || a.cam == nil || a.query == nil || a.target == nil || a.drawMaterial == nil {
		return fmt.Errorf("paint: renderer, camera, surface query, target object and draw material are required")
	}

	feature, ok := renderer.FeatureOf[renderpass.Feature](a.renderer)
	if !ok {
		a.log.Error("paint render feature not found, painting disabled")
		a.disabled = true
		a.started = true
		return nil
	}

	w, h := a.defaultDim, a.defaultDim
	if a.baseTexture != nil {
		w, h = a.baseTexture.Width(), a.baseTexture.Height()
		a.drawMaterial.SetTexture(shader.UniformMainTex, a.baseTexture)
		if display := a.target.Material(); display != nil && display.Texture(shader.UniformBaseMap) == nil {
			display.SetTexture(shader.UniformBaseMap, a.baseTexture)
		}
	}
	lease, err := a.renderer.AcquireTarget(TargetName, w, h)
	if err != nil {
		return fmt.Errorf("paint: acquire target: %w", err)
	}
	a.lease = lease

	feature.SetDrawMesh(a.target.Model())
	feature.SetDrawMaterial(a.drawMaterial)
	feature.SetRenderTarget(lease.Target())
	feature.Create()
	feature.SubscribeToResult(a.onResult)
	a.feature = feature

	a.started = true
	a.log.Info("paint session started", "target_width", w, "target_height", h, "can_execute", feature.CanExecute())
	return nil
}

func (a *accumulator) Update(dt float32) {
	if a.input == nil || !a.input.ButtonHeld(a.button) {
		return
	}
	x, y := a.input.Pointer()
	a.Trigger(x, y)
}

func (a *accumulator) LateUpdate(dt float32) {}

func (a *accumulator) Trigger(x, y float32) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.active() {
		return
	}

	ray := a.cam.ScreenPointToRay(x, y, a.viewW, a.viewH)
	hits := a.query.Raycast(ray.Origin, ray.Direction, math32.Inf(1))
	for _, h := range hits {
		uv := mgl32.Vec4{h.UV.X(), h.UV.Y(), 0, 0}
		if h.Role == surface.RoleProjector {
			a.drawMaterial.SetVector(shader.UniformCoordinate, uv)
		} else {
			a.drawMaterial.SetVector(shader.UniformHitUV, uv)
		}
	}

	a.feature.SetShouldExecute(true)
	a.triggers++
	a.log.Debug("stroke requested", "x", x, "y", y, "hits", len(hits))
}

// onResult makes the drawn texture the new base of both materials and disarms the feature so each
// trigger draws once.
func (a *accumulator) onResult(tex *common.Texture) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.active() {
		return
	}

	painted := tex.Renamed(CaptureName)
	if display := a.target.Material(); display != nil {
		display.SetTexture(shader.UniformBaseMap, painted)
	}
	a.drawMaterial.SetTexture(shader.UniformMainTex, painted)
	a.feature.SetShouldExecute(false)
	a.strokes++

	if a.writer != nil {
		if _, err := a.writer.Save(painted); err != nil {
			a.log.Warn("capture not saved", "error", err)
		}
	}
}

func (a *accumulator) Destroy() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.destroyed {
		return
	}
	a.destroyed = true
	if a.feature != nil {
		a.feature.SetShouldExecute(false)
	}
	if a.lease != nil {
		if err := a.lease.Release(); err != nil {
			a.log.Error("render target release failed", "error", err)
		}
	}
	a.log.Info("paint session ended", "strokes", a.strokes)
}

func (a *accumulator) SetViewport(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.viewW, a.viewH = width, height
}

func (a *accumulator) Target() renderer.RenderTarget {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.lease == nil {
		return nil
	}
	return a.lease.Target()
}

func (a *accumulator) Triggers() uint64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.triggers
}

func (a *accumulator) Strokes() uint64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.strokes
}

func (a *accumulator) Session() uuid.UUID {
	return a.session
}

// active reports whether the accumulator may touch the feature. Callers hold a.mu.
func (a *accumulator) active() bool {
	return a.started && !a.disabled && !a.destroyed
}
