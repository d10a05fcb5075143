package projector

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-paint/common"
	"github.com/Carmen-Shannon/oxy-paint/engine/camera"
	"github.com/Carmen-Shannon/oxy-paint/engine/game_object"
	"github.com/Carmen-Shannon/oxy-paint/engine/input"
	"github.com/Carmen-Shannon/oxy-paint/engine/model"
	"github.com/Carmen-Shannon/oxy-paint/engine/renderer"
	"github.com/Carmen-Shannon/oxy-paint/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-paint/engine/renderer/renderpass"
	"github.com/Carmen-Shannon/oxy-paint/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-paint/engine/surface"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	red   = [4]uint8{255, 0, 0, 255}
	white = [4]uint8{255, 255, 255, 255}
)

func assertVec(t *testing.T, want, got mgl32.Vec3, msg string) {
	t.Helper()
	assert.True(t, want.ApproxEqualThreshold(got, 1e-5), "%s: want %v got %v", msg, want, got)
}

func TestComputeFrameCorners(t *testing.T) {
	p := DefaultParams()
	f, rotated := ComputeFrame(game_object.NewTransform(mgl32.Vec3{}), p)

	assertVec(t, mgl32.Vec3{0, -1, -1}, f.LowerLeft.Inner, "lower left")
	assertVec(t, mgl32.Vec3{0, -1, -1.5}, f.LowerLeft.Outer, "lower left outer")
	assertVec(t, mgl32.Vec3{0, 1, -1}, f.LowerRight.Inner, "lower right")
	assertVec(t, mgl32.Vec3{0, 1, -1}, f.UpperRight.Inner, "upper right")
	assertVec(t, mgl32.Vec3{0, 1, -1.5}, f.UpperRight.Outer, "upper right outer")
	assertVec(t, mgl32.Vec3{0, 0, 1}, rotated.Forward(), "no rotation")

	origin, dir := f.LowerLeft.Ray()
	assertVec(t, f.LowerLeft.Outer, origin, "ray origin")
	assertVec(t, mgl32.Vec3{0, 0, 0.5}, dir, "ray points inward")
}

func TestComputeFrameKeepsRotationOnly(t *testing.T) {
	p := DefaultParams()
	p.Rotation = 90
	p.RotationDifference = 90
	p.Width = 0.5

	start := game_object.NewTransform(mgl32.Vec3{0, 2, 0})
	f, rotated := ComputeFrame(start, p)

	assertVec(t, mgl32.Vec3{1, 0, 0}, rotated.Forward(), "rotation is kept")
	assertVec(t, mgl32.Vec3{-1, 1.5, 0}, f.LowerLeft.Inner, "lower edge uses the kept rotation")
	assertVec(t, mgl32.Vec3{0, 2.5, -1}, f.UpperRight.Inner, "upper edge turns back by the difference")
	assertVec(t, mgl32.Vec3{0, 2.5, -1.5}, f.UpperRight.Outer, "upper outer")
	assertVec(t, mgl32.Vec3{0, 0, 1}, start.Forward(), "input is not modified")
}

type ray struct {
	origin, dir mgl32.Vec3
	max         float32
}

// scriptedQuery answers the lower-left ray with lower and every later ray with upper.
func scriptedQuery(lower, upper []surface.Hit, rays *[]ray) surface.Query {
	return surface.QueryFunc(func(origin, direction mgl32.Vec3, maxDistance float32) []surface.Hit {
		*rays = append(*rays, ray{origin, direction, maxDistance})
		if len(*rays) == 1 {
			return lower
		}
		return upper
	})
}

func TestBuildUVRectRoutesByRole(t *testing.T) {
	var rays []ray
	q := scriptedQuery(
		[]surface.Hit{{Role: surface.RoleOther, UV: mgl32.Vec2{0.1, 0.2}}},
		[]surface.Hit{{Role: surface.RoleOther, UV: mgl32.Vec2{0.9, 0.8}}},
		&rays,
	)
	f, _ := ComputeFrame(game_object.NewTransform(mgl32.Vec3{}), DefaultParams())
	rect := BuildUVRect(q, f, 20)

	assert.Equal(t, mgl32.Vec4{0.1, 0.2, 0.9, 0.8}, rect.Target)
	assert.Equal(t, mgl32.Vec4{}, rect.Projector)

	require.Len(t, rays, 2)
	assertVec(t, f.LowerLeft.Outer, rays[0].origin, "min ray origin")
	assertVec(t, f.UpperRight.Outer, rays[1].origin, "max ray origin")
	assert.Equal(t, float32(20), rays[1].max)
}

func TestBuildUVRectLastHitWinsAndNoSorting(t *testing.T) {
	var rays []ray
	q := scriptedQuery(
		[]surface.Hit{
			{Role: surface.RoleProjector, UV: mgl32.Vec2{0.5, 0.5}},
			{Role: surface.RoleOther, UV: mgl32.Vec2{0.3, 0.3}},
			{Role: surface.RoleProjector, UV: mgl32.Vec2{0.9, 0.9}},
		},
		[]surface.Hit{{Role: surface.RoleProjector, UV: mgl32.Vec2{0.1, 0.2}}},
		&rays,
	)
	rect := BuildUVRect(q, Frame{}, 20)

	assert.Equal(t, mgl32.Vec4{0.9, 0.9, 0.1, 0.2}, rect.Projector, "inverted rectangles are kept")
	assert.Equal(t, mgl32.Vec4{0.3, 0.3, 0, 0}, rect.Target)
}

type countingBackend struct {
	renderer.Backend
	creates  int
	releases int
}

func (c *countingBackend) CreateTarget(name string, w, h int) (renderer.RenderTarget, error) {
	c.creates++
	return c.Backend.CreateTarget(name, w, h)
}

func (c *countingBackend) ReleaseTarget(t renderer.RenderTarget) error {
	c.releases++
	return c.Backend.ReleaseTarget(t)
}

type fixture struct {
	backend  *countingBackend
	renderer renderer.Renderer
	feature  renderpass.Feature
	state    *input.State
	object   game_object.GameObject
	target   game_object.GameObject
	draw     material.Material
	base     *common.Texture
	cam      camera.Camera
	proj     Projector
}

func fullRectQuery() surface.Query {
	return surface.QueryFunc(func(origin, direction mgl32.Vec3, maxDistance float32) []surface.Hit {
		uv := mgl32.Vec2{0, 0}
		if origin.Y() > 0 {
			uv = mgl32.Vec2{1, 1}
		}
		return []surface.Hit{
			{Role: surface.RoleProjector, UV: uv},
			{Role: surface.RoleOther, UV: uv},
		}
	})
}

func newFixture(t *testing.T, withFeature bool, options ...ProjectorBuilderOption) *fixture {
	t.Helper()
	f := &fixture{
		backend: &countingBackend{Backend: renderer.NewSoftwareBackend()},
		state:   input.NewState(),
		base:    common.NewSolidTexture("base", 8, 8, white),
		cam:     camera.NewCamera(),
	}
	opts := []renderer.RendererBuilderOption{renderer.WithBackend(f.backend)}
	if withFeature {
		f.feature = renderpass.NewFeature()
		opts = append(opts, renderer.WithFeature(f.feature))
	}
	r, err := renderer.NewRenderer(renderer.BackendTypeSoftware, opts...)
	require.NoError(t, err)
	f.renderer = r

	f.object = game_object.NewGameObject(
		game_object.WithName("projector"),
		game_object.WithModel(model.NewQuad("projector", 1, 1)),
		game_object.WithMaterial(material.NewMaterial(material.WithShader(shader.KeyDisplay))),
	)
	f.target = game_object.NewGameObject(
		game_object.WithName("canvas"),
		game_object.WithModel(model.NewQuad("canvas", 2, 2)),
		game_object.WithMaterial(material.NewMaterial(material.WithShader(shader.KeyDisplay))),
	)
	f.draw = material.NewMaterial(
		material.WithShader(shader.KeyUVProject),
		material.WithTexture(shader.UniformDecalTex, common.NewSolidTexture("decal", 4, 4, red)),
	)

	base := []ProjectorBuilderOption{
		WithRenderer(r),
		WithSurfaceQuery(fullRectQuery()),
		WithInput(f.state),
		WithProjectorObject(f.object),
		WithTargetObject(f.target),
		WithDrawMaterial(f.draw),
		WithBaseTexture(f.base),
	}
	f.proj = NewProjector(append(base, options...)...)
	return f
}

// step runs one frame the way the engine does.
func (f *fixture) step() int {
	f.state.BeginFrame()
	f.proj.Update(0.016)
	n := f.renderer.RenderFrame(f.cam, 0.016)
	f.proj.LateUpdate(0.016)
	return n
}

func TestProjectionDrawsAndConsumesInLateUpdate(t *testing.T) {
	f := newFixture(t, true, WithProjectOnStart(true))
	require.NoError(t, f.proj.Start())
	assert.Equal(t, surface.RoleProjector, f.object.Role())
	assert.Equal(t, 1, f.backend.creates)
	assert.Same(t, f.base, f.draw.Texture(shader.UniformMainTex))

	f.proj.Update(0.016)
	assert.Equal(t, StateRequested, f.proj.State())
	assert.True(t, f.feature.ShouldExecute())

	want := mgl32.Vec4{0, 0, 1, 1}
	assert.Equal(t, want, f.proj.Rect().Target)
	v, ok := f.draw.Vector(shader.UniformTargetUV)
	require.True(t, ok)
	assert.Equal(t, want, v)
	v, ok = f.object.Material().Vector(shader.UniformProjectorUV)
	require.True(t, ok)
	assert.Equal(t, want, v)

	f.renderer.RenderFrame(f.cam, 0.016)
	assert.Equal(t, StateReady, f.proj.State(), "notification only marks the result ready")
	assert.Nil(t, f.target.Material().Texture(shader.UniformBaseMap))

	f.proj.LateUpdate(0.016)
	assert.Equal(t, StateIdle, f.proj.State())
	assert.False(t, f.feature.ShouldExecute())
	assert.Equal(t, uint64(1), f.proj.Projections())

	shown := f.target.Material().Texture(shader.UniformBaseMap)
	require.NotNil(t, shown)
	assert.Equal(t, CaptureName, shown.Name())
	assert.Equal(t, 8, shown.Width())
	assert.Equal(t, red, shown.At(4, 4))
	assert.Same(t, shown, f.draw.Texture(shader.UniformMainTex))

	f.step()
	assert.Equal(t, uint64(1), f.feature.Pass().Executions(), "disarmed after consumption")
}

func TestMissingFeatureDisablesProjector(t *testing.T) {
	f := newFixture(t, false, WithProjectOnStart(true))
	require.NoError(t, f.proj.Start())

	f.step()
	assert.Equal(t, StateIdle, f.proj.State())
	assert.Equal(t, 0, f.backend.creates)
	_, ok := f.draw.Vector(shader.UniformTargetUV)
	assert.False(t, ok)
	assert.NotPanics(t, f.proj.Reset)
	f.proj.Destroy()
}

func TestStartRequiresObjects(t *testing.T) {
	r, err := renderer.NewRenderer(renderer.BackendTypeSoftware)
	require.NoError(t, err)
	assert.Error(t, NewProjector(WithRenderer(r)).Start())
}

func TestResetRestoresReferenceTransform(t *testing.T) {
	params := DefaultParams()
	params.Rotation = 45
	f := newFixture(t, true, WithParams(params))
	require.NoError(t, f.proj.Start())

	f.proj.Project()
	f.step()
	assert.Equal(t, uint64(1), f.proj.Projections())
	assert.NotEqual(t, game_object.NewTransform(mgl32.Vec3{}).Rotation, f.object.Transform().Rotation)
	assert.NotSame(t, f.base, f.draw.Texture(shader.UniformMainTex))

	f.state.KeyDown(common.KeySpace)
	f.step()
	assert.Equal(t, game_object.NewTransform(mgl32.Vec3{}), f.object.Transform())
	assert.Same(t, f.base, f.draw.Texture(shader.UniformMainTex))
	assert.Equal(t, StateIdle, f.proj.State(), "reset frame does not project")

	f.state.KeyUp(common.KeySpace)
	f.step()
	assert.Equal(t, uint64(2), f.proj.Projections())
}

func TestSetParamsAppliesOnNextUpdate(t *testing.T) {
	f := newFixture(t, true)
	require.NoError(t, f.proj.Start())

	next := DefaultParams()
	next.Width = 0.25
	f.proj.SetParams(next)
	assert.Equal(t, DefaultParams(), f.proj.Params())

	f.step()
	assert.Equal(t, next, f.proj.Params())
	assert.Equal(t, uint64(1), f.proj.Projections())
	assertVec(t, mgl32.Vec3{0, 0.25, -1}, f.proj.Frame().UpperRight.Inner, "new width")
}

func TestDestroyReleasesTargetOnce(t *testing.T) {
	f := newFixture(t, true, WithProjectOnStart(true))
	require.NoError(t, f.proj.Start())
	f.proj.Update(0.016)

	f.proj.Destroy()
	f.proj.Destroy()
	assert.Equal(t, 1, f.backend.releases)
	assert.False(t, f.feature.ShouldExecute())

	f.renderer.RenderFrame(f.cam, 0.016)
	f.proj.LateUpdate(0.016)
	assert.Equal(t, uint64(0), f.proj.Projections())
}

func TestDefaultDimWithoutBaseTexture(t *testing.T) {
	f := newFixture(t, true, WithBaseTexture(nil), WithDefaultDim(16), WithProjectOnStart(true))
	require.NoError(t, f.proj.Start())
	f.step()

	shown := f.target.Material().Texture(shader.UniformBaseMap)
	require.NotNil(t, shown)
	assert.Equal(t, 16, shown.Width())
	assert.Equal(t, 16, shown.Height())
}
