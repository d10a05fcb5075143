package renderpass

import (
	"errors"
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy-paint/common"
	"github.com/Carmen-Shannon/oxy-paint/engine/camera"
	"github.com/Carmen-Shannon/oxy-paint/engine/model"
	"github.com/Carmen-Shannon/oxy-paint/engine/renderer"
	"github.com/Carmen-Shannon/oxy-paint/engine/renderer/material"
	"github.com/go-gl/mathgl/mgl32"
)

// ResultTextureName is the name of every texture snapshot emitted by a pass execution.
const ResultTextureName = "tiledTex"

// ErrNoBackend is returned by Capture before the pass has a backend to read from.
var ErrNoBackend = errors.New("render pass has no backend")

// DrawRequest is the work a pass draws each time it executes.
type DrawRequest struct {
	Mesh     model.Model
	Material material.Material
	Target   renderer.RenderTarget
	// Transform is stored with the request but draws always use the identity matrix.
	Transform mgl32.Mat4
}

// empty reports whether none of the draw resources are set.
func (r DrawRequest) empty() bool {
	return r.Mesh == nil && r.Material == nil && r.Target == nil
}

// ResultHandler receives the texture snapshot of one execution.
type ResultHandler func(tex *common.Texture)

// pass is the implementation of the Pass interface.
type pass struct {
	mu      *sync.Mutex
	name    string
	backend renderer.Backend

	request    DrawRequest
	configured bool
	canExecute bool
	gate       bool
	handler    ResultHandler
	executions uint64
}

// Pass is a render pass that draws one DrawRequest into its target when armed and emits a snapshot of the target.
//
// State machine: unconfigured, configured (CanExecute decided once), then idle or armed via SetGate.
// Every armed execution on the game camera draws, reads back and notifies the subscriber exactly once.
type Pass interface {
	renderer.RenderPass

	// Configure stores the request and decides CanExecute. One error is logged per missing resource.
	// A failed configuration stays failed until the next Configure.
	//
	// Parameters:
	//   - req: the draw request
	//
	// Returns:
	//   - bool: the resulting CanExecute
	Configure(req DrawRequest) bool

	// Configured reports whether Configure has been called.
	Configured() bool

	// CanExecute reports whether the last configuration had every required resource.
	CanExecute() bool

	// ShouldExecute returns the gate.
	ShouldExecute() bool

	// SetGate arms or disarms the pass. The pass never changes the gate on its own.
	//
	// Parameters:
	//   - armed: the new gate value
	SetGate(armed bool)

	// Subscribe installs the result handler, replacing any previous one.
	//
	// Parameters:
	//   - h: the handler, or nil to clear
	Subscribe(h ResultHandler)

	// Unsubscribe clears the result handler.
	Unsubscribe()

	// Executions returns the number of executions that produced a snapshot.
	Executions() uint64

	// Capture reads the target back outside of a frame.
	//
	// Parameters:
	//   - name: the name of the resulting texture
	//
	// Returns:
	//   - *common.Texture: a fresh snapshot of the target
	//   - error: error if the pass cannot execute or the readback fails
	Capture(name string) (*common.Texture, error)

	// Dispose clears the subscription and disarms the pass.
	Dispose()
}

var _ Pass = &pass{}

// NewPass creates an unconfigured pass.
//
// Parameters:
//   - options: variadic list of PassBuilderOption functions
//
// Returns:
//   - Pass: the new pass
func NewPass(options ...PassBuilderOption) Pass {
	p := &pass{
		mu:   &sync.Mutex{},
		name: "Paint Pass",
	}
	for _, opt := range options {
		opt(p)
	}
	return p
}

func (p *pass) Name() string {
	return p.name
}

func (p *pass) Configure(req DrawRequest) bool {
	log := common.ComponentLogger("renderpass").With("pass", p.name)

	ok := true
	if req.Mesh == nil {
		log.Error("draw mesh is missing")
		ok = false
	}
	if req.Material == nil {
		log.Error("draw material is missing")
		ok = false
	}
	if req.Target == nil {
		log.Error("render target is missing")
		ok = false
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.request = req
	p.configured = true
	p.canExecute = ok
	return ok
}

func (p *pass) Configured() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.configured
}

func (p *pass) CanExecute() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.canExecute
}

func (p *pass) ShouldExecute() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.gate
}

func (p *pass) SetGate(armed bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.gate = armed
}

func (p *pass) Subscribe(h ResultHandler) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.handler = h
}

func (p *pass) Unsubscribe() {
	p.Subscribe(nil)
}

func (p *pass) Executions() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.executions
}

func (p *pass) Setup(ctx renderer.FrameContext) {
	if ctx.Backend == nil {
		return
	}
	p.mu.Lock()
	p.backend = ctx.Backend
	p.mu.Unlock()
}

func (p *pass) Execute(ctx renderer.FrameContext) {
	p.mu.Lock()
	if !p.gate || !p.canExecute || ctx.Camera == nil || ctx.Camera.Type() != camera.CameraTypeGame {
		p.mu.Unlock()
		return
	}
	backend := ctx.Backend
	if backend == nil {
		backend = p.backend
	}
	req := p.request
	p.mu.Unlock()

	log := common.ComponentLogger("renderpass").With("pass", p.name, "frame", ctx.Frame)
	if backend == nil {
		log.Error("no backend to draw with")
		return
	}

	if err := backend.Draw(req.Target, req.Mesh, req.Material, mgl32.Ident4()); err != nil {
		log.Error("draw failed", "error", err)
		return
	}
	tex, err := backend.Readback(req.Target, ResultTextureName)
	if err != nil {
		log.Error("readback failed", "error", err)
		return
	}

	p.mu.Lock()
	p.executions++
	handler := p.handler
	p.mu.Unlock()

	log.Debug("pass executed", "target", req.Target.Name())
	if handler != nil {
		handler(tex)
	}
}

func (p *pass) Cleanup(ctx renderer.FrameContext) {}

func (p *pass) Capture(name string) (*common.Texture, error) {
	p.mu.Lock()
	backend := p.backend
	target := p.request.Target
	canExecute := p.canExecute
	p.mu.Unlock()

	if !canExecute {
		return nil, fmt.Errorf("capture %q: pass is not configured", name)
	}
	if backend == nil {
		return nil, ErrNoBackend
	}
	return backend.Readback(target, name)
}

func (p *pass) Dispose() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.handler = nil
	p.gate = false
}
