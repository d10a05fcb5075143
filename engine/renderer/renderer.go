package renderer

import (
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy-paint/common"
	"github.com/Carmen-Shannon/oxy-paint/engine/camera"
	"github.com/cogentcore/webgpu/wgpu"
)

// renderer is the implementation of the Renderer interface.
type renderer struct {
	mu *sync.Mutex

	backendType BackendType
	backend     Backend
	features    []RenderFeature
	frame       uint64
	released    bool

	// Pre-creation config collected from builder options
	customBackend        Backend
	surfaceDescriptor    *wgpu.SurfaceDescriptor
	surfaceWidth         int
	surfaceHeight        int
	forceFallbackAdapter bool
	pendingPresentMode   *PresentMode
}

// Renderer defines the interface for the rendering system.
//
// The Renderer owns a draw Backend and a list of RenderFeatures. Each frame it asks every feature
// for its passes and runs them against the frame camera, then optionally presents a display list
// when the backend has a surface.
type Renderer interface {
	// BackendType returns the type of the active backend.
	//
	// Returns:
	//   - BackendType: the backend type
	BackendType() BackendType

	// Backend returns the active draw backend.
	//
	// Returns:
	//   - Backend: the backend
	Backend() Backend

	// AddFeature registers a render feature and calls its Create.
	//
	// Parameters:
	//   - f: the feature to register
	AddFeature(f RenderFeature)

	// Features returns the registered features in registration order.
	//
	// Returns:
	//   - []RenderFeature: a copy of the feature list
	Features() []RenderFeature

	// RecreateFeatures calls Create on every registered feature, the way a host pipeline does when
	// its settings change.
	RecreateFeatures()

	// AcquireTarget creates a render target wrapped in a lease that releases it exactly once.
	//
	// Parameters:
	//   - name: the label of the target
	//   - width, height: the size in pixels
	//
	// Returns:
	//   - *TargetLease: the lease owning the target
	//   - error: error if the backend cannot allocate the target
	AcquireTarget(name string, width, height int) (*TargetLease, error)

	// RenderFrame collects the passes of every feature for the camera and runs
	// Setup, Execute and Cleanup on each in enqueue order.
	//
	// Parameters:
	//   - cam: the camera being rendered
	//   - dt: the time since the previous frame in seconds
	//
	// Returns:
	//   - int: the number of passes that ran
	RenderFrame(cam camera.Camera, dt float32) int

	// Present draws the display list through the camera when the backend has a surface.
	// Backends without a surface ignore the call.
	//
	// Parameters:
	//   - cam: the camera to view through
	//   - draws: the meshes to draw
	//
	// Returns:
	//   - error: error if presentation fails
	Present(cam camera.Camera, draws []DisplayDraw) error

	// Resize reconfigures the display surface, if any.
	//
	// Parameters:
	//   - width, height: the new size in pixels
	Resize(width, height int)

	// Release disposes every feature and frees the backend. Safe to call more than once.
	Release()
}

var _ Renderer = &renderer{}

// NewRenderer creates a new Renderer with the specified backend type and options.
//
// Parameters:
//   - backendType: the type of draw backend to create
//   - options: variadic list of RendererBuilderOption functions to configure the Renderer
//
// Returns:
//   - Renderer: a new Renderer
//   - error: error if the backend could not be created
func NewRenderer(backendType BackendType, options ...RendererBuilderOption) (Renderer, error) {
	r := &renderer{
		mu:          &sync.Mutex{},
		backendType: backendType,
	}

	// Apply options first so config flags (e.g. forceFallbackAdapter) are
	// available before the backend requests a GPU adapter.
	for _, opt := range options {
		opt(r)
	}

	if r.customBackend != nil {
		r.backend = r.customBackend
		r.backendType = r.customBackend.Type()
	} else {
		switch backendType {
		case BackendTypeSoftware:
			r.backend = newSoftwareRendererBackend()
		case BackendTypeWGPU:
			mode := PresentModeVSync
			if r.pendingPresentMode != nil {
				mode = *r.pendingPresentMode
			}
			b, err := newWGPURendererBackend(r.surfaceDescriptor, r.surfaceWidth, r.surfaceHeight, r.forceFallbackAdapter, mode)
			if err != nil {
				return nil, fmt.Errorf("failed to create wgpu backend: %w", err)
			}
			r.backend = b
		default:
			return nil, fmt.Errorf("unsupported backend type %d", backendType)
		}
	}

	common.ComponentLogger("renderer").Info("renderer created", "backend", r.backendType.String())
	return r, nil
}

func (r *renderer) BackendType() BackendType {
	return r.backendType
}

func (r *renderer) Backend() Backend {
	return r.backend
}

func (r *renderer) AddFeature(f RenderFeature) {
	if f == nil {
		return
	}
	r.mu.Lock()
	r.features = append(r.features, f)
	r.mu.Unlock()
	f.Create()
}

func (r *renderer) Features() []RenderFeature {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]RenderFeature, len(r.features))
	copy(out, r.features)
	return out
}

func (r *renderer) RecreateFeatures() {
	for _, f := range r.Features() {
		f.Create()
	}
}

func (r *renderer) AcquireTarget(name string, width, height int) (*TargetLease, error) {
	t, err := r.backend.CreateTarget(name, width, height)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire render target %q: %w", name, err)
	}
	return NewTargetLease(r.backend, t), nil
}

func (r *renderer) RenderFrame(cam camera.Camera, dt float32) int {
	r.mu.Lock()
	if r.released {
		r.mu.Unlock()
		return 0
	}
	r.frame++
	ctx := FrameContext{
		Frame:     r.frame,
		DeltaTime: dt,
		Camera:    cam,
		Backend:   r.backend,
	}
	features := make([]RenderFeature, len(r.features))
	copy(features, r.features)
	r.mu.Unlock()

	q := &PassQueue{}
	for _, f := range features {
		f.AddRenderPasses(q, ctx)
	}
	for _, p := range q.Passes() {
		p.Setup(ctx)
		p.Execute(ctx)
		p.Cleanup(ctx)
	}
	return q.Len()
}

func (r *renderer) Present(cam camera.Camera, draws []DisplayDraw) error {
	p, ok := r.backend.(Presenter)
	if !ok {
		return nil
	}
	return p.Present(cam, draws)
}

func (r *renderer) Resize(width, height int) {
	if p, ok := r.backend.(Presenter); ok {
		p.Resize(width, height)
	}
}

func (r *renderer) Release() {
	r.mu.Lock()
	if r.released {
		r.mu.Unlock()
		return
	}
	r.released = true
	features := r.features
	r.features = nil
	r.mu.Unlock()

	for _, f := range features {
		f.Dispose()
	}
	r.backend.Release()
}
