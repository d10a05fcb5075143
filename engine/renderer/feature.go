package renderer

import "github.com/Carmen-Shannon/oxy-paint/engine/camera"

// FrameContext describes the camera render currently in progress.
type FrameContext struct {
	// Frame is the index of the frame being rendered.
	Frame uint64
	// DeltaTime is the time since the previous frame in seconds.
	DeltaTime float32
	// Camera is the camera being rendered.
	Camera camera.Camera
	// Backend draws and reads back render targets.
	Backend Backend
}

// RenderPass is a unit of custom GPU work injected into a camera render.
// The host calls Setup, Execute and Cleanup once per frame for every enqueued pass.
type RenderPass interface {
	Name() string
	Setup(ctx FrameContext)
	Execute(ctx FrameContext)
	Cleanup(ctx FrameContext)
}

// RenderFeature is a host-owned factory of render passes.
// The host may call Create more than once over a feature's life; each call rebuilds the passes.
type RenderFeature interface {
	// Name returns the feature identifier.
	Name() string
	// Create (re)builds the feature's passes from its current settings.
	Create()
	// AddRenderPasses enqueues the passes that should run for this camera render.
	AddRenderPasses(q *PassQueue, ctx FrameContext)
	// Dispose releases the feature's passes and subscriptions.
	Dispose()
}

// PassQueue collects the passes to run for one camera render, in enqueue order.
type PassQueue struct {
	passes []RenderPass
}

// Enqueue appends a pass.
func (q *PassQueue) Enqueue(p RenderPass) {
	q.passes = append(q.passes, p)
}

// Passes returns the enqueued passes.
func (q *PassQueue) Passes() []RenderPass {
	return q.passes
}

// Len returns the number of enqueued passes.
func (q *PassQueue) Len() int {
	return len(q.passes)
}

// FeatureOf finds the first feature of type T registered on the renderer.
//
// Parameters:
//   - r: the renderer to search
//
// Returns:
//   - T: the feature
//   - bool: false if no feature of type T is registered
func FeatureOf[T RenderFeature](r Renderer) (T, bool) {
	var zero T
	if r == nil {
		return zero, false
	}
	for _, f := range r.Features() {
		if t, ok := f.(T); ok {
			return t, true
		}
	}
	return zero, false
}
