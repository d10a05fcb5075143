package material

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/Carmen-Shannon/oxy-paint/common"
	"github.com/Carmen-Shannon/oxy-paint/engine/renderer/shader"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func TestMaterialParameters(t *testing.T) {
	base := common.NewSolidTexture("base", 1, 1, [4]uint8{255, 255, 255, 255})
	m := NewMaterial(
		WithName("draw"),
		WithShader(shader.KeyPaint),
		WithTexture(shader.UniformMainTex, base),
	)

	assert.Equal(t, "draw", m.Name())
	assert.Equal(t, shader.KeyPaint, m.ShaderKey())
	assert.Same(t, base, m.Texture(shader.UniformMainTex))

	_, ok := m.Vector(shader.UniformHitUV)
	assert.False(t, ok)

	v0 := m.Version()
	m.SetVector(shader.UniformHitUV, mgl32.Vec4{0.1, 0.2, 0, 0})
	v, ok := m.Vector(shader.UniformHitUV)
	assert.True(t, ok)
	assert.Equal(t, mgl32.Vec4{0.1, 0.2, 0, 0}, v)
	assert.Greater(t, m.Version(), v0)

	m.SetTexture(shader.UniformMainTex, nil)
	assert.Nil(t, m.Texture(shader.UniformMainTex))
}

func TestUniformsSnapshotIsDetached(t *testing.T) {
	m := NewMaterial()
	m.SetVector(shader.UniformTargetUV, mgl32.Vec4{1, 2, 3, 4})
	snap := m.Uniforms()

	m.SetVector(shader.UniformTargetUV, mgl32.Vec4{})
	assert.Equal(t, mgl32.Vec4{1, 2, 3, 4}, snap.Vector(shader.UniformTargetUV, mgl32.Vec4{}))
}

func TestGPUDrawParamsDefaults(t *testing.T) {
	p := NewGPUDrawParams(shader.KeyPaint, shader.Uniforms{})
	assert.Equal(t, [4]float32(shader.DefaultHitUV), p.HitUV)
	assert.Equal(t, [4]float32(shader.DefaultRect), p.TargetUV)
	assert.Equal(t, float32(0), p.Brush[2])
	assert.Equal(t, 96, p.Size())
}

func TestGPUDrawParamsDecalFlag(t *testing.T) {
	decal := common.NewSolidTexture("decal", 1, 1, [4]uint8{})
	u := shader.Uniforms{Textures: map[string]*common.Texture{shader.UniformDecalTex: decal}}

	assert.Equal(t, float32(0), NewGPUDrawParams(shader.KeyPaint, u).Brush[2])
	assert.Equal(t, float32(1), NewGPUDrawParams(shader.KeyUVProject, u).Brush[2])

	u.Vectors = map[string]mgl32.Vec4{shader.UniformCoordinate: {0.5, 0.5, 0, 0}}
	assert.Equal(t, float32(1), NewGPUDrawParams(shader.KeyPaint, u).Brush[2])
}

func TestGPUDrawParamsMarshal(t *testing.T) {
	p := GPUDrawParams{TargetUV: [4]float32{0.1, 0.2, 0.9, 0.8}}
	buf := p.Marshal()
	assert.Len(t, buf, 96)
	assert.Equal(t, float32(0.9), math.Float32frombits(binary.LittleEndian.Uint32(buf[56:60])))
}

func TestGPUObjectDataMarshal(t *testing.T) {
	o := GPUObjectData{MVP: mgl32.Ident4()}
	buf := o.Marshal()
	assert.Len(t, buf, o.Size())
	assert.Equal(t, float32(1), math.Float32frombits(binary.LittleEndian.Uint32(buf[20:24])))
}
