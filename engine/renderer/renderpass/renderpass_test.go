package renderpass

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/Carmen-Shannon/oxy-paint/common"
	"github.com/Carmen-Shannon/oxy-paint/engine/camera"
	"github.com/Carmen-Shannon/oxy-paint/engine/model"
	"github.com/Carmen-Shannon/oxy-paint/engine/renderer"
	"github.com/Carmen-Shannon/oxy-paint/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-paint/engine/renderer/shader"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// transformRecorder wraps a backend and records the transform of every draw.
type transformRecorder struct {
	renderer.Backend
	transforms []mgl32.Mat4
}

func (r *transformRecorder) Draw(t renderer.RenderTarget, mesh model.Model, mat material.Material, transform mgl32.Mat4) error {
	r.transforms = append(r.transforms, transform)
	return r.Backend.Draw(t, mesh, mat, transform)
}

type fixture struct {
	backend *transformRecorder
	target  renderer.RenderTarget
	req     DrawRequest
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	backend := &transformRecorder{Backend: renderer.NewSoftwareBackend()}
	target, err := backend.CreateTarget("paint", 8, 4)
	require.NoError(t, err)
	mat := material.NewMaterial(
		material.WithShader(shader.KeyDisplay),
		material.WithTexture(shader.UniformBaseMap, common.NewSolidTexture("base", 1, 1, [4]uint8{10, 20, 30, 255})),
	)
	return &fixture{
		backend: backend,
		target:  target,
		req: DrawRequest{
			Mesh:      model.NewQuad("quad", 1, 1),
			Material:  mat,
			Target:    target,
			Transform: mgl32.Translate3D(1, 2, 3),
		},
	}
}

func (f *fixture) frame(cam camera.Camera) renderer.FrameContext {
	return renderer.FrameContext{Frame: 1, Camera: cam, Backend: f.backend}
}

func run(p Pass, ctx renderer.FrameContext) {
	p.Setup(ctx)
	p.Execute(ctx)
	p.Cleanup(ctx)
}

func TestConfigureMissingResourcesIsSticky(t *testing.T) {
	f := newFixture(t)
	p := NewPass()

	assert.False(t, p.Configured())
	req := f.req
	req.Material = nil
	req.Target = nil
	assert.False(t, p.Configure(req))
	assert.True(t, p.Configured())
	assert.False(t, p.CanExecute())

	calls := 0
	p.Subscribe(func(*common.Texture) { calls++ })
	p.SetGate(true)
	run(p, f.frame(camera.NewCamera()))
	assert.Zero(t, calls)
	assert.True(t, p.ShouldExecute(), "gate is never cleared by the pass")

	assert.True(t, p.Configure(f.req))
	assert.True(t, p.CanExecute())
}

func TestExecuteRequiresGateAndGameCamera(t *testing.T) {
	f := newFixture(t)
	p := NewPass()
	require.True(t, p.Configure(f.req))

	calls := 0
	p.Subscribe(func(*common.Texture) { calls++ })

	run(p, f.frame(camera.NewCamera()))
	assert.Zero(t, calls, "disarmed")

	p.SetGate(true)
	run(p, f.frame(camera.NewCamera(camera.WithType(camera.CameraTypeSceneView))))
	run(p, f.frame(camera.NewCamera(camera.WithType(camera.CameraTypePreview))))
	assert.Zero(t, calls, "non-game cameras")
	assert.Empty(t, f.backend.transforms)

	run(p, f.frame(camera.NewCamera()))
	assert.Equal(t, 1, calls)
}

func TestExecuteEmitsSnapshotOncePerExecution(t *testing.T) {
	f := newFixture(t)
	p := NewPass()
	require.True(t, p.Configure(f.req))
	p.SetGate(true)

	var got []*common.Texture
	p.Subscribe(func(tex *common.Texture) { got = append(got, tex) })

	run(p, f.frame(camera.NewCamera()))
	run(p, f.frame(camera.NewCamera()))

	require.Len(t, got, 2)
	assert.NotSame(t, got[0], got[1])
	assert.Equal(t, ResultTextureName, got[0].Name())
	assert.Equal(t, 8, got[0].Width())
	assert.Equal(t, 4, got[0].Height())
	assert.Equal(t, [4]uint8{10, 20, 30, 255}, got[0].At(3, 2))
	assert.Equal(t, uint64(2), p.Executions())
	assert.True(t, p.ShouldExecute())
}

func TestExecuteDrawsWithIdentity(t *testing.T) {
	f := newFixture(t)
	p := NewPass()
	require.True(t, p.Configure(f.req))
	p.SetGate(true)
	run(p, f.frame(camera.NewCamera()))

	require.Len(t, f.backend.transforms, 1)
	assert.Equal(t, mgl32.Ident4(), f.backend.transforms[0])
}

func TestSubscribeReplacesAndDisposeClears(t *testing.T) {
	f := newFixture(t)
	p := NewPass()
	require.True(t, p.Configure(f.req))
	p.SetGate(true)

	first, second := 0, 0
	p.Subscribe(func(*common.Texture) { first++ })
	p.Subscribe(func(*common.Texture) { second++ })
	run(p, f.frame(camera.NewCamera()))
	assert.Zero(t, first)
	assert.Equal(t, 1, second)

	p.Unsubscribe()
	run(p, f.frame(camera.NewCamera()))
	assert.Equal(t, 1, second)
	assert.Equal(t, uint64(2), p.Executions(), "executes without a subscriber")

	p.Subscribe(func(*common.Texture) { second++ })
	p.Dispose()
	assert.False(t, p.ShouldExecute())
	p.SetGate(true)
	run(p, f.frame(camera.NewCamera()))
	assert.Equal(t, 1, second)
}

func TestSetGateTwiceExecutesOnce(t *testing.T) {
	f := newFixture(t)
	p := NewPass()
	require.True(t, p.Configure(f.req))

	calls := 0
	p.Subscribe(func(*common.Texture) { calls++ })
	p.SetGate(true)
	p.SetGate(true)
	run(p, f.frame(camera.NewCamera()))

	assert.Equal(t, 1, calls)
	assert.Equal(t, uint64(1), p.Executions())
	assert.Len(t, f.backend.transforms, 1)
}

func TestReadbackFailureSkipsNotification(t *testing.T) {
	f := newFixture(t)
	p := NewPass()
	require.True(t, p.Configure(f.req))
	p.SetGate(true)

	calls := 0
	p.Subscribe(func(*common.Texture) { calls++ })
	require.NoError(t, f.backend.ReleaseTarget(f.target))

	assert.NotPanics(t, func() { run(p, f.frame(camera.NewCamera())) })
	assert.Zero(t, calls)
	assert.Zero(t, p.Executions())
}

func TestCapture(t *testing.T) {
	f := newFixture(t)

	p := NewPass()
	_, err := p.Capture("projectCapture")
	assert.Error(t, err)

	require.True(t, p.Configure(f.req))
	_, err = p.Capture("projectCapture")
	assert.ErrorIs(t, err, ErrNoBackend)

	p = NewPass(WithPassBackend(f.backend))
	require.True(t, p.Configure(f.req))
	tex, err := p.Capture("projectCapture")
	require.NoError(t, err)
	assert.Equal(t, "projectCapture", tex.Name())
}

func TestFeatureBeforeCreate(t *testing.T) {
	feat := NewFeature()
	assert.Nil(t, feat.Pass())
	assert.False(t, feat.ShouldExecute())
	assert.NotPanics(t, func() { feat.SetShouldExecute(true) })
	assert.False(t, feat.ShouldExecute())
	assert.False(t, feat.CanExecute())

	q := &renderer.PassQueue{}
	feat.AddRenderPasses(q, renderer.FrameContext{})
	assert.Zero(t, q.Len())
}

func TestFeatureCreateReattachesHandler(t *testing.T) {
	f := newFixture(t)
	feat := NewFeature(WithDrawMesh(f.req.Mesh), WithDrawMaterial(f.req.Material), WithBackend(f.backend))

	calls := 0
	feat.SubscribeToResult(func(*common.Texture) { calls++ })

	feat.Create()
	assert.False(t, feat.CanExecute(), "no target yet")
	q := &renderer.PassQueue{}
	feat.AddRenderPasses(q, f.frame(camera.NewCamera()))
	assert.Zero(t, q.Len())

	feat.SetRenderTarget(f.target)
	feat.Create()
	first := feat.Pass()
	require.NotNil(t, first)
	assert.True(t, feat.CanExecute())
	assert.Same(t, f.req.Material, feat.DrawMaterial())

	feat.SetShouldExecute(true)
	q = &renderer.PassQueue{}
	feat.AddRenderPasses(q, f.frame(camera.NewCamera()))
	require.Equal(t, 1, q.Len())
	run(q.Passes()[0].(Pass), f.frame(camera.NewCamera()))
	assert.Equal(t, 1, calls)

	feat.Create()
	assert.NotSame(t, first, feat.Pass())
	assert.False(t, feat.ShouldExecute(), "a rebuilt pass starts disarmed")
	feat.SetShouldExecute(true)
	run(feat.Pass(), f.frame(camera.NewCamera()))
	assert.Equal(t, 2, calls, "handler survives recreation")

	feat.Dispose()
	assert.Nil(t, feat.Pass())
	assert.False(t, feat.ShouldExecute())
}

func TestFeatureFoundThroughRenderer(t *testing.T) {
	feat := NewFeature()
	r, err := renderer.NewRenderer(renderer.BackendTypeSoftware, renderer.WithFeature(feat))
	require.NoError(t, err)

	found, ok := renderer.FeatureOf[Feature](r)
	require.True(t, ok)
	assert.Same(t, feat, found)
	assert.NotNil(t, feat.Pass(), "renderer calls Create")
}

func TestFeatureCreateWithoutSettingsLogsNothing(t *testing.T) {
	var logs bytes.Buffer
	common.SetLogger(slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug})))
	t.Cleanup(func() { common.SetLogger(nil) })

	feat := NewFeature()
	_, err := renderer.NewRenderer(renderer.BackendTypeSoftware, renderer.WithFeature(feat))
	require.NoError(t, err)
	require.NotNil(t, feat.Pass())
	assert.False(t, feat.Pass().Configured())
	assert.False(t, feat.CanExecute())
	assert.NotContains(t, logs.String(), "missing")

	feat.SetDrawMesh(model.NewQuad("quad", 1, 1))
	feat.Create()
	assert.True(t, feat.Pass().Configured())
	assert.False(t, feat.CanExecute())
	assert.Contains(t, logs.String(), "draw material is missing")
	assert.Contains(t, logs.String(), "render target is missing")
	assert.NotContains(t, logs.String(), "draw mesh is missing")
}
