package pipeline

import (
	"github.com/Carmen-Shannon/oxy-paint/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

// pipeline is the implementation of the Pipeline interface.
// It holds the render pipeline created for one shader key along with the state it was created from.
type pipeline struct {
	// key is the shader this pipeline draws with, also used for caching and lookups
	key shader.Key
	// colorFormat is the format of the single color attachment the pipeline writes
	colorFormat wgpu.TextureFormat

	// renderPipeline is nil until the backend creates the GPU object
	renderPipeline *wgpu.RenderPipeline
	// bindGroupLayout is the layout of group 0, shared by every bind group drawn with this pipeline
	bindGroupLayout *wgpu.BindGroupLayout

	depthTestEnabled  bool
	depthWriteEnabled bool
	blendEnabled      bool
	cullMode          wgpu.CullMode
	topology          wgpu.PrimitiveTopology
	frontFace         wgpu.FrontFace
	writeMask         wgpu.ColorWriteMask
	blendState        *wgpu.BlendState
}

// Pipeline defines the interface for a GPU render pipeline bound to one shader key. It holds all
// configuration state required for pipeline creation including color format, depth, blend, cull,
// and topology settings.
type Pipeline interface {
	// Key returns the shader key of this pipeline.
	//
	// Returns:
	//   - shader.Key: the shader key
	Key() shader.Key

	// ColorFormat returns the format of the color attachment.
	//
	// Returns:
	//   - wgpu.TextureFormat: the color format
	ColorFormat() wgpu.TextureFormat

	// RenderPipeline returns the GPU pipeline, or nil if it has not been created.
	//
	// Returns:
	//   - *wgpu.RenderPipeline: the GPU pipeline
	RenderPipeline() *wgpu.RenderPipeline

	// BindGroupLayout returns the layout of bind group 0, or nil if it has not been created.
	//
	// Returns:
	//   - *wgpu.BindGroupLayout: the layout
	BindGroupLayout() *wgpu.BindGroupLayout

	// DepthTestEnabled returns whether depth testing is enabled. Offscreen texture-space passes leave it off.
	DepthTestEnabled() bool

	// DepthWriteEnabled returns whether depth writes are enabled.
	DepthWriteEnabled() bool

	// BlendEnabled returns whether alpha blending is enabled.
	BlendEnabled() bool

	// CullMode returns the face culling mode.
	CullMode() wgpu.CullMode

	// Topology returns the primitive topology.
	Topology() wgpu.PrimitiveTopology

	// FrontFace returns the front face winding order.
	FrontFace() wgpu.FrontFace

	// WriteMask returns the color write mask.
	WriteMask() wgpu.ColorWriteMask

	// BlendState returns the blend state applied when blending is enabled.
	BlendState() *wgpu.BlendState

	// SetRenderPipeline stores the GPU pipeline created by the backend.
	//
	// Parameters:
	//   - rp: the GPU pipeline
	SetRenderPipeline(rp *wgpu.RenderPipeline)

	// SetBindGroupLayout stores the bind group layout created by the backend.
	//
	// Parameters:
	//   - bgl: the layout
	SetBindGroupLayout(bgl *wgpu.BindGroupLayout)

	// Release frees the GPU pipeline and layout.
	Release()
}

var _ Pipeline = &pipeline{}

// NewPipeline creates a new Pipeline for the given shader key with the specified configuration.
// Defaults describe an offscreen texture-space pass: RGBA8 color, no depth, no culling, no blending.
//
// Parameters:
//   - key: the shader key the pipeline draws with
//   - opts: a variadic list of PipelineBuilderOption functions to configure the pipeline
//
// Returns:
//   - Pipeline: a new Pipeline instance with the specified configuration
func NewPipeline(key shader.Key, opts ...PipelineBuilderOption) Pipeline {
	p := &pipeline{
		key:         key,
		colorFormat: wgpu.TextureFormatRGBA8Unorm,
		cullMode:    wgpu.CullModeNone,
		topology:    wgpu.PrimitiveTopologyTriangleList,
		frontFace:   wgpu.FrontFaceCCW,
		writeMask:   wgpu.ColorWriteMaskAll,
		blendState: &wgpu.BlendState{
			Color: wgpu.BlendComponent{
				SrcFactor: wgpu.BlendFactorSrcAlpha,
				DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
				Operation: wgpu.BlendOperationAdd,
			},
			Alpha: wgpu.BlendComponent{
				SrcFactor: wgpu.BlendFactorOne,
				DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
				Operation: wgpu.BlendOperationAdd,
			},
		},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// NewDisplayPipeline creates the on-screen pipeline for the display shader: depth tested and written,
// drawing to the surface format.
//
// Parameters:
//   - surfaceFormat: the format of the presentation surface
//
// Returns:
//   - Pipeline: the display pipeline configuration
func NewDisplayPipeline(surfaceFormat wgpu.TextureFormat) Pipeline {
	return NewPipeline(shader.KeyDisplay,
		WithColorFormat(surfaceFormat),
		WithDepthTestEnabled(true),
		WithDepthWriteEnabled(true),
	)
}

func (p *pipeline) Key() shader.Key {
	return p.key
}

func (p *pipeline) ColorFormat() wgpu.TextureFormat {
	return p.colorFormat
}

func (p *pipeline) RenderPipeline() *wgpu.RenderPipeline {
	return p.renderPipeline
}

func (p *pipeline) BindGroupLayout() *wgpu.BindGroupLayout {
	return p.bindGroupLayout
}

func (p *pipeline) DepthTestEnabled() bool {
	return p.depthTestEnabled
}

func (p *pipeline) DepthWriteEnabled() bool {
	return p.depthWriteEnabled
}

func (p *pipeline) BlendEnabled() bool {
	return p.blendEnabled
}

func (p *pipeline) CullMode() wgpu.CullMode {
	return p.cullMode
}

func (p *pipeline) Topology() wgpu.PrimitiveTopology {
	return p.topology
}

func (p *pipeline) FrontFace() wgpu.FrontFace {
	return p.frontFace
}

func (p *pipeline) WriteMask() wgpu.ColorWriteMask {
	return p.writeMask
}

func (p *pipeline) BlendState() *wgpu.BlendState {
	return p.blendState
}

func (p *pipeline) SetRenderPipeline(rp *wgpu.RenderPipeline) {
	p.renderPipeline = rp
}

func (p *pipeline) SetBindGroupLayout(bgl *wgpu.BindGroupLayout) {
	p.bindGroupLayout = bgl
}

func (p *pipeline) Release() {
	if p.renderPipeline != nil {
		p.renderPipeline.Release()
		p.renderPipeline = nil
	}
	if p.bindGroupLayout != nil {
		p.bindGroupLayout.Release()
		p.bindGroupLayout = nil
	}
}
