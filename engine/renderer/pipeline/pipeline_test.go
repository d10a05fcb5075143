package pipeline

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-paint/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
)

func TestNewPipelineDefaults(t *testing.T) {
	p := NewPipeline(shader.KeyPaint)

	assert.Equal(t, shader.KeyPaint, p.Key())
	assert.Equal(t, wgpu.TextureFormatRGBA8Unorm, p.ColorFormat())
	assert.False(t, p.DepthTestEnabled())
	assert.False(t, p.DepthWriteEnabled())
	assert.False(t, p.BlendEnabled())
	assert.Equal(t, wgpu.CullModeNone, p.CullMode())
	assert.Equal(t, wgpu.PrimitiveTopologyTriangleList, p.Topology())
	assert.Nil(t, p.RenderPipeline())
	assert.Nil(t, p.BindGroupLayout())
}

func TestNewDisplayPipeline(t *testing.T) {
	p := NewDisplayPipeline(wgpu.TextureFormatBGRA8Unorm)

	assert.Equal(t, shader.KeyDisplay, p.Key())
	assert.Equal(t, wgpu.TextureFormatBGRA8Unorm, p.ColorFormat())
	assert.True(t, p.DepthTestEnabled())
	assert.True(t, p.DepthWriteEnabled())
}

func TestBuilderOptions(t *testing.T) {
	p := NewPipeline(shader.KeyUVProject,
		WithBlendEnabled(true),
		WithCullMode(wgpu.CullModeBack),
		WithFrontFace(wgpu.FrontFaceCW),
	)

	assert.True(t, p.BlendEnabled())
	assert.NotNil(t, p.BlendState())
	assert.Equal(t, wgpu.CullModeBack, p.CullMode())
	assert.Equal(t, wgpu.FrontFaceCW, p.FrontFace())
}

func TestReleaseWithoutGPUObjects(t *testing.T) {
	p := NewPipeline(shader.KeyPaint)
	assert.NotPanics(t, p.Release)
}
