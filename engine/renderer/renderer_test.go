package renderer

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-paint/common"
	"github.com/Carmen-Shannon/oxy-paint/engine/camera"
	"github.com/Carmen-Shannon/oxy-paint/engine/model"
	"github.com/Carmen-Shannon/oxy-paint/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-paint/engine/renderer/shader"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	green = [4]uint8{0, 255, 0, 255}
	white = [4]uint8{255, 255, 255, 255}
	blue  = [4]uint8{0, 0, 255, 255}
	none  = [4]uint8{0, 0, 0, 0}
)

func displayMaterial(c [4]uint8) material.Material {
	return material.NewMaterial(
		material.WithShader(shader.KeyDisplay),
		material.WithTexture(shader.UniformBaseMap, common.NewSolidTexture("base", 2, 2, c)),
	)
}

func TestSoftwareDrawCoversQuad(t *testing.T) {
	b := NewSoftwareBackend()
	target, err := b.CreateTarget("paint", 8, 8)
	require.NoError(t, err)

	quad := model.NewQuad("quad", 1, 1)
	require.NoError(t, b.Draw(target, quad, displayMaterial(green), mgl32.Ident4()))

	tex, err := b.Readback(target, "snapshot")
	require.NoError(t, err)
	assert.Equal(t, 8, tex.Width())
	assert.Equal(t, 8, tex.Height())
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			assert.Equal(t, green, tex.At(x, y), "texel %d,%d", x, y)
		}
	}
}

func TestSoftwareDrawWritesOnlyCoveredTexels(t *testing.T) {
	b := NewSoftwareBackend()
	target, err := b.CreateTarget("paint", 8, 8)
	require.NoError(t, err)

	// Lower-left half of UV space.
	tri := model.NewModel(
		model.WithName("tri"),
		model.WithPositions([]mgl32.Vec3{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}}),
		model.WithUVs([]mgl32.Vec2{{0, 0}, {1, 0}, {0, 1}}),
		model.WithIndices([]uint32{0, 1, 2}),
	)
	require.NoError(t, b.Draw(target, tri, displayMaterial(green), mgl32.Ident4()))

	tex, err := b.Readback(target, "snapshot")
	require.NoError(t, err)
	assert.Equal(t, green, tex.At(0, 7), "bottom-left is v=0,u=0")
	assert.Equal(t, none, tex.At(7, 0), "top-right is outside the triangle")
}

func TestSoftwareDrawWindingIndependent(t *testing.T) {
	b := NewSoftwareBackend()
	target, err := b.CreateTarget("paint", 4, 4)
	require.NoError(t, err)

	quad := model.NewModel(
		model.WithName("mixed winding"),
		model.WithPositions([]mgl32.Vec3{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}, {1, 1, 0}}),
		model.WithUVs([]mgl32.Vec2{{0, 0}, {1, 0}, {0, 1}, {1, 1}}),
		model.WithIndices([]uint32{0, 1, 2, 1, 2, 3}),
	)
	require.NoError(t, b.Draw(target, quad, displayMaterial(green), mgl32.Ident4()))

	tex, err := b.Readback(target, "snapshot")
	require.NoError(t, err)
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			assert.Equal(t, green, tex.At(x, y), "texel %d,%d", x, y)
		}
	}
}

func TestSoftwarePaintAccumulates(t *testing.T) {
	b := NewSoftwareBackend()
	target, err := b.CreateTarget("paint", 16, 16)
	require.NoError(t, err)

	mat := material.NewMaterial(
		material.WithShader(shader.KeyPaint),
		material.WithTexture(shader.UniformMainTex, common.NewSolidTexture("base", 4, 4, white)),
		material.WithVector(shader.UniformBrushColor, mgl32.Vec4{0, 0, 1, 1}),
		material.WithVector(shader.UniformBrushRadius, mgl32.Vec4{0.2, 1, 0, 0}),
		material.WithVector(shader.UniformHitUV, mgl32.Vec4{0.5, 0.5, 0, 0}),
	)
	quad := model.NewQuad("quad", 1, 1)
	require.NoError(t, b.Draw(target, quad, mat, mgl32.Ident4()))

	tex, err := b.Readback(target, "snapshot")
	require.NoError(t, err)
	assert.Equal(t, blue, tex.At(8, 8))
	assert.Equal(t, white, tex.At(0, 0))
	assert.Equal(t, white, tex.At(15, 15))
}

func TestReadbackIsASnapshot(t *testing.T) {
	b := NewSoftwareBackend()
	target, err := b.CreateTarget("paint", 4, 4)
	require.NoError(t, err)
	quad := model.NewQuad("quad", 1, 1)

	require.NoError(t, b.Draw(target, quad, displayMaterial(green), mgl32.Ident4()))
	first, err := b.Readback(target, "first")
	require.NoError(t, err)

	require.NoError(t, b.Draw(target, quad, displayMaterial(blue), mgl32.Ident4()))
	second, err := b.Readback(target, "second")
	require.NoError(t, err)

	assert.Equal(t, "first", first.Name())
	assert.Equal(t, green, first.At(1, 1))
	assert.Equal(t, blue, second.At(1, 1))
}

func TestTargetErrors(t *testing.T) {
	b := NewSoftwareBackend()
	other := NewSoftwareBackend()

	_, err := b.CreateTarget("bad", 0, 4)
	assert.Error(t, err)

	target, err := b.CreateTarget("paint", 4, 4)
	require.NoError(t, err)
	foreign, err := other.CreateTarget("foreign", 4, 4)
	require.NoError(t, err)

	assert.ErrorIs(t, b.ReleaseTarget(foreign), ErrInvalidTarget)

	require.NoError(t, b.ReleaseTarget(target))
	assert.True(t, target.Released())
	assert.ErrorIs(t, b.ReleaseTarget(target), ErrTargetReleased)
	assert.ErrorIs(t, b.Draw(target, model.NewQuad("q", 1, 1), displayMaterial(green), mgl32.Ident4()), ErrTargetReleased)
	_, err = b.Readback(target, "snapshot")
	assert.ErrorIs(t, err, ErrTargetReleased)
}

type countingBackend struct {
	Backend
	releases int
}

func (c *countingBackend) ReleaseTarget(t RenderTarget) error {
	c.releases++
	return c.Backend.ReleaseTarget(t)
}

func TestTargetLeaseReleasesOnce(t *testing.T) {
	backend := &countingBackend{Backend: NewSoftwareBackend()}
	r, err := NewRenderer(BackendTypeSoftware, WithBackend(backend))
	require.NoError(t, err)

	lease, err := r.AcquireTarget("session", 4, 4)
	require.NoError(t, err)
	assert.Equal(t, "session", lease.Target().Name())

	require.NoError(t, lease.Release())
	require.NoError(t, lease.Release())
	require.NoError(t, lease.Release())
	assert.Equal(t, 1, backend.releases)
	assert.True(t, lease.Target().Released())
}

type recordingPass struct {
	log *[]string
}

func (p *recordingPass) Name() string             { return "recording" }
func (p *recordingPass) Setup(ctx FrameContext)   { *p.log = append(*p.log, "setup") }
func (p *recordingPass) Execute(ctx FrameContext) { *p.log = append(*p.log, "execute") }
func (p *recordingPass) Cleanup(ctx FrameContext) { *p.log = append(*p.log, "cleanup") }

type recordingFeature struct {
	log      []string
	creates  int
	disposes int
	frames   []uint64
}

func (f *recordingFeature) Name() string { return "recording" }
func (f *recordingFeature) Create()      { f.creates++ }
func (f *recordingFeature) Dispose()     { f.disposes++ }
func (f *recordingFeature) AddRenderPasses(q *PassQueue, ctx FrameContext) {
	f.frames = append(f.frames, ctx.Frame)
	q.Enqueue(&recordingPass{log: &f.log})
}

func TestRenderFrameRunsPassPhasesInOrder(t *testing.T) {
	f := &recordingFeature{}
	r, err := NewRenderer(BackendTypeSoftware, WithFeature(f))
	require.NoError(t, err)
	assert.Equal(t, 1, f.creates)

	cam := camera.NewCamera()
	assert.Equal(t, 1, r.RenderFrame(cam, 0.016))
	assert.Equal(t, 1, r.RenderFrame(cam, 0.016))

	assert.Equal(t, []string{"setup", "execute", "cleanup", "setup", "execute", "cleanup"}, f.log)
	assert.Equal(t, []uint64{1, 2}, f.frames)

	r.RecreateFeatures()
	assert.Equal(t, 2, f.creates)

	r.Release()
	r.Release()
	assert.Equal(t, 1, f.disposes)
	assert.Equal(t, 0, r.RenderFrame(cam, 0.016))
}

func TestFeatureOf(t *testing.T) {
	r, err := NewRenderer(BackendTypeSoftware)
	require.NoError(t, err)

	_, ok := FeatureOf[*recordingFeature](r)
	assert.False(t, ok)

	f := &recordingFeature{}
	r.AddFeature(f)
	found, ok := FeatureOf[*recordingFeature](r)
	require.True(t, ok)
	assert.Same(t, f, found)
	assert.Equal(t, 1, f.creates)
}

func TestSoftwareRendererPresentIsNoop(t *testing.T) {
	r, err := NewRenderer(BackendTypeSoftware)
	require.NoError(t, err)
	assert.Equal(t, BackendTypeSoftware, r.BackendType())
	assert.NoError(t, r.Present(camera.NewCamera(), nil))
	assert.NotPanics(t, func() { r.Resize(100, 100) })
}

func TestNewRendererRejectsUnknownBackend(t *testing.T) {
	_, err := NewRenderer(BackendType(42))
	assert.Error(t, err)
	assert.Equal(t, "unknown", BackendType(42).String())
	assert.Equal(t, "wgpu", BackendTypeWGPU.String())
}
