// Package projector maps a rectangle of a movable projector object onto the painted surface.
//
// Each projection casts two corner rays through the scene, packs the UV coordinates they hit into
// rectangles for the draw material and arms the paint render feature. The drawn result is consumed in
// the late update phase, after the frame's draw has been submitted.
package projector

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/Carmen-Shannon/oxy-paint/common"
	"github.com/Carmen-Shannon/oxy-paint/engine/capture"
	"github.com/Carmen-Shannon/oxy-paint/engine/game_object"
	"github.com/Carmen-Shannon/oxy-paint/engine/input"
	"github.com/Carmen-Shannon/oxy-paint/engine/renderer"
	"github.com/Carmen-Shannon/oxy-paint/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-paint/engine/renderer/renderpass"
	"github.com/Carmen-Shannon/oxy-paint/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-paint/engine/surface"
	"github.com/google/uuid"
)

const (
	// CaptureName is the name of every texture consumed by the projector.
	CaptureName = "projectCapture"
	// TargetName labels the projector's render target.
	TargetName = "projectTarget"
	// DefaultDim is the square target size used without a base texture.
	DefaultDim = 1024
)

// State is the readback phase of a projection.
type State int

const (
	// StateIdle means no projection is waiting to be drawn.
	StateIdle State = iota
	// StateRequested means the feature is armed and the draw has not reported yet.
	StateRequested
	// StateReady means the draw reported and the result is consumed in the next late update.
	StateReady
)

// String returns the name of the state.
func (s State) String() string {
	switch s {
	case StateRequested:
		return "requested"
	case StateReady:
		return "ready"
	default:
		return "idle"
	}
}

// projector is the implementation of the Projector interface.
type projector struct {
	mu      *sync.Mutex
	session uuid.UUID
	log     *slog.Logger

	renderer     renderer.Renderer
	query        surface.Query
	input        input.Source
	object       game_object.GameObject
	target       game_object.GameObject
	drawMaterial material.Material
	baseTexture  *common.Texture
	writer       capture.Writer
	defaultDim   int

	params         Params
	pendingParams  *Params
	projectOnStart bool

	feature     renderpass.Feature
	lease       *renderer.TargetLease
	reference   game_object.Transform
	needsUpdate bool
	state       State
	frame       Frame
	rect        UVRect
	projections uint64
	started     bool
	disabled    bool
	destroyed   bool
}

// Projector is the frame behaviour driving UV projection.
type Projector interface {
	// Start finds the paint render feature, acquires the render target and subscribes to results.
	// A renderer without the feature disables the projector instead of failing.
	//
	// Returns:
	//   - error: error if a required object is missing or the target cannot be acquired
	Start() error

	// Update applies queued parameters, handles the reset key and projects when a projection is pending.
	//
	// Parameters:
	//   - dt: the time since the previous frame in seconds
	Update(dt float32)

	// LateUpdate consumes a finished draw: reads the target back, feeds it to the materials and disarms.
	//
	// Parameters:
	//   - dt: the time since the previous frame in seconds
	LateUpdate(dt float32)

	// Destroy disarms the feature and releases the render target. Safe to call more than once.
	Destroy()

	// Project schedules a projection for the next update.
	Project()

	// Reset restores the projector transform captured at Start, restores the base texture as the
	// accumulation input and schedules a projection.
	Reset()

	// SetParams queues new geometry. It is applied, and a projection scheduled, in the next update.
	// Safe to call from any goroutine.
	//
	// Parameters:
	//   - p: the new parameters
	SetParams(p Params)

	// Params returns the geometry in use.
	Params() Params

	// State returns the readback phase.
	State() State

	// Frame returns the corners of the latest projection.
	Frame() Frame

	// Rect returns the rectangles of the latest projection.
	Rect() UVRect

	// Projections returns how many projections have been drawn and consumed.
	Projections() uint64

	// Session returns the session ID used in log records.
	Session() uuid.UUID
}

var _ Projector = &projector{}

// NewProjector creates a projector behaviour.
//
// Parameters:
//   - options: variadic list of ProjectorBuilderOption functions
//
// Returns:
//   - Projector: the projector
func NewProjector(options ...ProjectorBuilderOption) Projector {
	p := &projector{
		mu:         &sync.Mutex{},
		session:    uuid.New(),
		params:     DefaultParams(),
		defaultDim: DefaultDim,
	}
	for _, opt := range options {
		opt(p)
	}
	p.log = common.ComponentLogger("projector").With("session", p.session.String())
	return p
}

func (p *projector) Start() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.started {
		return nil
	}
	if p.renderer == nil || p.query == nil || p.object == nil || p.target == nil || p.drawMaterial == nil {
		return fmt.Errorf("projector: renderer, surface query, projector object, target object and draw material are required")
	}

	feature, ok := renderer.FeatureOf[renderpass.Feature](p.renderer)
	if !ok {
		p.log.Error("paint render feature not found, projection disabled")
		p.disabled = true
		p.started = true
		return nil
	}

	w, h := p.defaultDim, p.defaultDim
	if p.baseTexture != nil {
		w, h = p.baseTexture.Width(), p.baseTexture.Height()
		p.drawMaterial.SetTexture(shader.UniformMainTex, p.baseTexture)
	}
	lease, err := p.renderer.AcquireTarget(TargetName, w, h)
	if err != nil {
		return fmt.Errorf("projector: acquire target: %w", err)
	}
	p.lease = lease

	p.object.SetRole(surface.RoleProjector)
	p.reference = p.object.Transform()

	feature.SetDrawMesh(p.target.Model())
	feature.SetDrawMaterial(p.drawMaterial)
	feature.SetRenderTarget(lease.Target())
	feature.Create()
	feature.SubscribeToResult(p.onResult)
	p.feature = feature

	p.needsUpdate = p.projectOnStart
	p.started = true
	p.log.Info("projector started", "target_width", w, "target_height", h, "can_execute", feature.CanExecute())
	return nil
}

func (p *projector) Update(dt float32) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.active() {
		return
	}
	if p.pendingParams != nil {
		p.params = *p.pendingParams
		p.pendingParams = nil
		p.needsUpdate = true
		p.log.Debug("parameters applied", "params", p.params)
	}
	if p.input != nil && p.input.KeyPressed(common.KeySpace) {
		p.reset()
		return
	}
	if p.needsUpdate {
		p.project()
	}
}

// project computes the frame, pushes the rectangles and arms the feature.
func (p *projector) project() {
	frame, rotated := ComputeFrame(p.object.Transform(), p.params)
	p.object.SetTransform(rotated)
	rect := BuildUVRect(p.query, frame, p.params.MaxDistance)

	p.frame = frame
	p.rect = rect
	p.drawMaterial.SetVector(shader.UniformProjectorUV, rect.Projector)
	p.drawMaterial.SetVector(shader.UniformTargetUV, rect.Target)
	if vis := p.object.Material(); vis != nil {
		vis.SetVector(shader.UniformProjectorUV, rect.Projector)
	}

	p.feature.SetShouldExecute(true)
	p.state = StateRequested
	p.needsUpdate = false
	p.log.Debug("projection requested", "projector_uv", rect.Projector, "target_uv", rect.Target)
}

// onResult runs inside the render phase. The texture is not consumed here because the target is
// read back again once the frame has been submitted.
func (p *projector) onResult(*common.Texture) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state == StateRequested {
		p.state = StateReady
	}
}

func (p *projector) LateUpdate(dt float32) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.active() || p.state != StateReady {
		return
	}

	defer func() {
		p.feature.SetShouldExecute(false)
		p.state = StateIdle
	}()

	pass := p.feature.Pass()
	if pass == nil {
		p.log.Warn("render pass disappeared before readback")
		return
	}
	tex, err := pass.Capture(CaptureName)
	if err != nil {
		p.log.Error("readback failed", "error", err)
		return
	}

	if display := p.target.Material(); display != nil {
		display.SetTexture(shader.UniformBaseMap, tex)
	}
	p.drawMaterial.SetTexture(shader.UniformMainTex, tex)
	p.projections++

	if p.writer != nil {
		if _, err := p.writer.Save(tex); err != nil {
			p.log.Warn("capture not saved", "error", err)
		}
	}
}

func (p *projector) Destroy() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.destroyed {
		return
	}
	p.destroyed = true
	if p.feature != nil {
		p.feature.SetShouldExecute(false)
	}
	if p.lease != nil {
		if err := p.lease.Release(); err != nil {
			p.log.Error("render target release failed", "error", err)
		}
	}
	p.state = StateIdle
}

func (p *projector) Project() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.needsUpdate = true
}

func (p *projector) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.active() {
		return
	}
	p.reset()
}

func (p *projector) reset() {
	p.object.SetTransform(p.reference)
	p.drawMaterial.SetTexture(shader.UniformMainTex, p.baseTexture)
	p.needsUpdate = true
	p.log.Info("projector reset")
}

func (p *projector) SetParams(params Params) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pendingParams = &params
}

func (p *projector) Params() Params {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.params
}

func (p *projector) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

func (p *projector) Frame() Frame {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.frame
}

func (p *projector) Rect() UVRect {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.rect
}

func (p *projector) Projections() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.projections
}

func (p *projector) Session() uuid.UUID {
	return p.session
}

// active reports whether the projector may touch the feature. Callers hold p.mu.
func (p *projector) active() bool {
	return p.started && !p.disabled && !p.destroyed
}
