package renderpass

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-paint/common"
	"github.com/Carmen-Shannon/oxy-paint/engine/model"
	"github.com/Carmen-Shannon/oxy-paint/engine/renderer"
	"github.com/Carmen-Shannon/oxy-paint/engine/renderer/material"
	"github.com/go-gl/mathgl/mgl32"
)

// feature is the implementation of the Feature interface.
type feature struct {
	mu      *sync.Mutex
	name    string
	backend renderer.Backend

	drawMesh     model.Model
	drawMaterial material.Material
	target       renderer.RenderTarget
	transform    mgl32.Mat4

	pass    Pass
	handler ResultHandler
}

// Feature is the host-owned render feature that builds the paint Pass from its settings.
//
// The host may call Create any number of times. Each call rebuilds the pass from the current settings
// and re-attaches the last handler given to SubscribeToResult, so consumers subscribe once. A Create
// with no mesh, material or target set builds an unconfigured pass and reports nothing missing.
type Feature interface {
	renderer.RenderFeature

	// SetDrawMesh sets the mesh drawn by the next pass built by Create.
	//
	// Parameters:
	//   - m: the mesh
	SetDrawMesh(m model.Model)

	// SetDrawMaterial sets the material drawn by the next pass built by Create.
	//
	// Parameters:
	//   - m: the material
	SetDrawMaterial(m material.Material)

	// DrawMaterial returns the configured draw material.
	DrawMaterial() material.Material

	// SetRenderTarget sets the target drawn into by the next pass built by Create.
	//
	// Parameters:
	//   - t: the render target
	SetRenderTarget(t renderer.RenderTarget)

	// SetTransform sets the transform stored with the draw request.
	//
	// Parameters:
	//   - m: the transform
	SetTransform(m mgl32.Mat4)

	// SubscribeToResult installs the result handler on the current pass and on every pass built later.
	//
	// Parameters:
	//   - h: the handler
	SubscribeToResult(h ResultHandler)

	// ShouldExecute returns the gate of the current pass, or false before Create.
	ShouldExecute() bool

	// SetShouldExecute arms or disarms the current pass. Ignored before Create.
	//
	// Parameters:
	//   - armed: the new gate value
	SetShouldExecute(armed bool)

	// CanExecute reports whether the current pass was configured with every required resource.
	CanExecute() bool

	// Pass returns the current pass, or nil before Create.
	Pass() Pass
}

var _ Feature = &feature{}

// NewFeature creates a feature. Create must be called, usually by the renderer, before it produces passes.
//
// Parameters:
//   - options: variadic list of FeatureBuilderOption functions
//
// Returns:
//   - Feature: the new feature
func NewFeature(options ...FeatureBuilderOption) Feature {
	f := &feature{
		mu:        &sync.Mutex{},
		name:      "Paint Feature",
		transform: mgl32.Ident4(),
	}
	for _, opt := range options {
		opt(f)
	}
	return f
}

func (f *feature) Name() string {
	return f.name
}

func (f *feature) SetDrawMesh(m model.Model) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.drawMesh = m
}

func (f *feature) SetDrawMaterial(m material.Material) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.drawMaterial = m
}

func (f *feature) DrawMaterial() material.Material {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.drawMaterial
}

func (f *feature) SetRenderTarget(t renderer.RenderTarget) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.target = t
}

func (f *feature) SetTransform(m mgl32.Mat4) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.transform = m
}

func (f *feature) Create() {
	f.mu.Lock()
	old := f.pass
	p := NewPass(WithPassName(f.name+" Pass"), WithPassBackend(f.backend))
	req := DrawRequest{
		Mesh:      f.drawMesh,
		Material:  f.drawMaterial,
		Target:    f.target,
		Transform: f.transform,
	}
	handler := f.handler
	f.pass = p
	f.mu.Unlock()

	if old != nil {
		old.Dispose()
	}
	// A feature with nothing set is still waiting for its consumer; leave the pass unconfigured.
	if !req.empty() {
		p.Configure(req)
	}
	if handler != nil {
		p.Subscribe(handler)
	}
	common.ComponentLogger("renderpass").Debug("feature created", "feature", f.name, "can_execute", p.CanExecute())
}

func (f *feature) AddRenderPasses(q *renderer.PassQueue, ctx renderer.FrameContext) {
	p := f.Pass()
	if p == nil || !p.CanExecute() {
		return
	}
	q.Enqueue(p)
}

func (f *feature) SubscribeToResult(h ResultHandler) {
	f.mu.Lock()
	f.handler = h
	p := f.pass
	f.mu.Unlock()

	if p != nil {
		p.Subscribe(h)
	}
}

func (f *feature) ShouldExecute() bool {
	p := f.Pass()
	if p == nil {
		return false
	}
	return p.ShouldExecute()
}

func (f *feature) SetShouldExecute(armed bool) {
	if p := f.Pass(); p != nil {
		p.SetGate(armed)
	}
}

func (f *feature) CanExecute() bool {
	p := f.Pass()
	return p != nil && p.CanExecute()
}

func (f *feature) Pass() Pass {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pass
}

func (f *feature) Dispose() {
	f.mu.Lock()
	p := f.pass
	f.pass = nil
	f.handler = nil
	f.mu.Unlock()

	if p != nil {
		p.Dispose()
	}
}
