package renderer

import (
	"errors"
	"fmt"
	"runtime"
	"sync"

	"github.com/Carmen-Shannon/oxy-paint/common"
	"github.com/Carmen-Shannon/oxy-paint/engine/camera"
	"github.com/Carmen-Shannon/oxy-paint/engine/model"
	"github.com/Carmen-Shannon/oxy-paint/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-paint/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-paint/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-paint/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/mathgl/mgl32"
)

// Bindings of group 0 in the paint and uv_project shaders.
const (
	bindingParams   = 0
	bindingMainTex  = 1
	bindingDecalTex = 2
	bindingSampler  = 3
)

// Bindings of group 0 in the display shader.
const (
	bindingObject         = 0
	bindingBaseMap        = 1
	bindingDisplaySampler = 2
)

// targetFormat is the color format of every offscreen target and uploaded texture.
// Linear so readback bytes equal shader output.
const targetFormat = wgpu.TextureFormatRGBA8Unorm

// clipDepthRemap converts mgl32's [-1,1] clip depth into the [0,1] range WebGPU expects.
var clipDepthRemap = mgl32.Mat4{
	1, 0, 0, 0,
	0, 1, 0, 0,
	0, 0, 0.5, 0,
	0, 0, 0.5, 1,
}

// wgpuTarget is a GPU-resident render target.
type wgpuTarget struct {
	owner    *wgpuRendererBackendImpl
	name     string
	width    int
	height   int
	texture  *wgpu.Texture
	view     *wgpu.TextureView
	released bool
}

func (t *wgpuTarget) Name() string   { return t.name }
func (t *wgpuTarget) Width() int     { return t.width }
func (t *wgpuTarget) Height() int    { return t.height }
func (t *wgpuTarget) Released() bool { return t.released }

// displaySlot keys the per-object display resources. The same material drawn twice in one frame
// needs two uniform buffers.
type displaySlot struct {
	mat  material.Material
	slot int
}

type wgpuRendererBackendImpl struct {
	mu     *sync.Mutex
	device *wgpu.Device
	queue  *wgpu.Queue

	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	surface  *wgpu.Surface

	surfaceFormat    wgpu.TextureFormat
	surfaceWidth     int
	surfaceHeight    int
	presentMode      wgpu.PresentMode
	depthTexture     *wgpu.Texture
	depthTextureView *wgpu.TextureView

	sampler   *wgpu.Sampler
	white     *wgpu.Texture
	whiteView *wgpu.TextureView

	pipelines map[shader.Key]pipeline.Pipeline
	meshes    map[model.Model]bind_group_provider.BindGroupProvider
	materials map[material.Material]bind_group_provider.BindGroupProvider
	displays  map[displaySlot]bind_group_provider.BindGroupProvider
	targets   map[*wgpuTarget]struct{}
}

var (
	_ Backend   = &wgpuRendererBackendImpl{}
	_ Presenter = &wgpuRendererBackendImpl{}
)

// newWGPURendererBackend creates the device and, when a surface descriptor is given, the presentation surface.
//
// Parameters:
//   - surfaceDescriptor: the platform surface, or nil to run offscreen
//   - width, height: the initial surface size
//   - forceFallbackAdapter: request the software fallback adapter
//   - mode: the present mode for the surface
//
// Returns:
//   - *wgpuRendererBackendImpl: the backend
//   - error: error if no adapter or device is available
func newWGPURendererBackend(surfaceDescriptor *wgpu.SurfaceDescriptor, width, height int, forceFallbackAdapter bool, mode PresentMode) (*wgpuRendererBackendImpl, error) {
	runtime.LockOSThread()
	w := &wgpuRendererBackendImpl{
		mu:        &sync.Mutex{},
		instance:  wgpu.CreateInstance(nil),
		pipelines: make(map[shader.Key]pipeline.Pipeline),
		meshes:    make(map[model.Model]bind_group_provider.BindGroupProvider),
		materials: make(map[material.Material]bind_group_provider.BindGroupProvider),
		displays:  make(map[displaySlot]bind_group_provider.BindGroupProvider),
		targets:   make(map[*wgpuTarget]struct{}),
	}
	w.setPresentMode(mode)

	if surfaceDescriptor != nil {
		w.surface = w.instance.CreateSurface(surfaceDescriptor)
	}

	a, err := w.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		ForceFallbackAdapter: forceFallbackAdapter,
		CompatibleSurface:    w.surface,
	})
	if err != nil {
		w.Release()
		return nil, fmt.Errorf("failed to request adapter: %w", err)
	}
	w.adapter = a

	d, err := a.RequestDevice(&wgpu.DeviceDescriptor{
		Label: "Paint Device",
		RequiredLimits: &wgpu.RequiredLimits{
			Limits: wgpu.DefaultLimits(),
		},
	})
	if err != nil {
		w.Release()
		return nil, fmt.Errorf("failed to request device: %w", err)
	}
	w.device = d
	w.queue = d.GetQueue()

	if err := w.initSharedResources(); err != nil {
		w.Release()
		return nil, err
	}

	if w.surface != nil && width > 0 && height > 0 {
		if err := w.configureSurface(width, height); err != nil {
			w.Release()
			return nil, err
		}
	}
	return w, nil
}

func (b *wgpuRendererBackendImpl) setPresentMode(mode PresentMode) {
	switch mode {
	case PresentModeUncapped:
		b.presentMode = wgpu.PresentModeImmediate
	case PresentModeVSync:
		fallthrough
	default:
		b.presentMode = wgpu.PresentModeFifo
	}
}

// initSharedResources creates the sampler and the 1x1 white texture bound for unset texture channels.
func (b *wgpuRendererBackendImpl) initSharedResources() error {
	samp, err := b.device.CreateSampler(&wgpu.SamplerDescriptor{
		Label:         "Paint Sampler",
		AddressModeU:  wgpu.AddressModeClampToEdge,
		AddressModeV:  wgpu.AddressModeClampToEdge,
		AddressModeW:  wgpu.AddressModeClampToEdge,
		MagFilter:     wgpu.FilterModeLinear,
		MinFilter:     wgpu.FilterModeLinear,
		MipmapFilter:  wgpu.MipmapFilterModeLinear,
		LodMinClamp:   0,
		LodMaxClamp:   32,
		MaxAnisotropy: 1,
	})
	if err != nil {
		return fmt.Errorf("failed to create sampler: %w", err)
	}
	b.sampler = samp

	white := common.NewSolidTexture("white", 1, 1, [4]uint8{255, 255, 255, 255})
	b.white, b.whiteView, err = b.uploadTexture(white)
	if err != nil {
		return fmt.Errorf("failed to create fallback texture: %w", err)
	}
	return nil
}

func (b *wgpuRendererBackendImpl) Type() BackendType {
	return BackendTypeWGPU
}

func (b *wgpuRendererBackendImpl) CreateTarget(name string, width, height int) (RenderTarget, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid target size %dx%d", width, height)
	}
	tex, err := b.device.CreateTexture(&wgpu.TextureDescriptor{
		Label:     name,
		Usage:     wgpu.TextureUsageRenderAttachment | wgpu.TextureUsageCopySrc | wgpu.TextureUsageTextureBinding,
		Dimension: wgpu.TextureDimension2D,
		Size: wgpu.Extent3D{
			Width:              uint32(width),
			Height:             uint32(height),
			DepthOrArrayLayers: 1,
		},
		Format:        targetFormat,
		MipLevelCount: 1,
		SampleCount:   1,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create target texture %q: %w", name, err)
	}
	view, err := tex.CreateView(nil)
	if err != nil {
		tex.Release()
		return nil, fmt.Errorf("failed to create target view %q: %w", name, err)
	}

	t := &wgpuTarget{owner: b, name: name, width: width, height: height, texture: tex, view: view}
	if err := b.clearTarget(t); err != nil {
		view.Release()
		tex.Release()
		return nil, err
	}
	b.targets[t] = struct{}{}
	return t, nil
}

// clearTarget runs an empty pass that clears the target to transparent black.
func (b *wgpuRendererBackendImpl) clearTarget(t *wgpuTarget) error {
	encoder, err := b.device.CreateCommandEncoder(nil)
	if err != nil {
		return err
	}
	defer encoder.Release()

	pass := encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{
			{
				View:       t.view,
				LoadOp:     wgpu.LoadOpClear,
				StoreOp:    wgpu.StoreOpStore,
				ClearValue: wgpu.Color{},
			},
		},
	})
	pass.End()
	pass.Release()

	return b.submit(encoder)
}

func (b *wgpuRendererBackendImpl) target(t RenderTarget) (*wgpuTarget, error) {
	wt, ok := t.(*wgpuTarget)
	if !ok || wt == nil || wt.owner != b {
		return nil, ErrInvalidTarget
	}
	if wt.released {
		return nil, ErrTargetReleased
	}
	return wt, nil
}

func (b *wgpuRendererBackendImpl) ReleaseTarget(t RenderTarget) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	wt, err := b.target(t)
	if err != nil {
		return err
	}
	b.releaseTarget(wt)
	return nil
}

func (b *wgpuRendererBackendImpl) releaseTarget(wt *wgpuTarget) {
	wt.view.Release()
	wt.texture.Release()
	wt.released = true
	delete(b.targets, wt)
}

func (b *wgpuRendererBackendImpl) Draw(t RenderTarget, mesh model.Model, mat material.Material, transform mgl32.Mat4) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	wt, err := b.target(t)
	if err != nil {
		return err
	}
	if mesh == nil || mat == nil {
		return fmt.Errorf("draw into %q: mesh and material are required", wt.name)
	}
	key := mat.ShaderKey()
	if key == shader.KeyDisplay {
		return fmt.Errorf("draw into %q: display shader is on-screen only", wt.name)
	}

	p, err := b.pipeline(key, targetFormat)
	if err != nil {
		return err
	}
	meshProvider, err := b.meshProvider(mesh)
	if err != nil {
		return err
	}
	matProvider, err := b.materialProvider(mat, p)
	if err != nil {
		return err
	}

	params := material.NewGPUDrawParams(key, mat.Uniforms())
	bind_group_provider.WriteBuffers(b.queue, []bind_group_provider.BufferWrite{
		{Provider: matProvider, Binding: bindingParams, Data: params.Marshal()},
	})

	encoder, err := b.device.CreateCommandEncoder(nil)
	if err != nil {
		return fmt.Errorf("failed to create command encoder: %w", err)
	}
	defer encoder.Release()

	pass := encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{
			{
				View:    wt.view,
				LoadOp:  wgpu.LoadOpLoad,
				StoreOp: wgpu.StoreOpStore,
			},
		},
	})
	b.drawIndexed(pass, p, meshProvider, matProvider)
	pass.End()
	pass.Release()

	if err := b.submit(encoder); err != nil {
		return fmt.Errorf("draw into %q: %w", wt.name, err)
	}
	common.ComponentLogger("renderer.wgpu").Debug("draw",
		"target", wt.name, "mesh", mesh.Name(), "shader", string(key))
	return nil
}

func (b *wgpuRendererBackendImpl) drawIndexed(
	pass *wgpu.RenderPassEncoder,
	p pipeline.Pipeline,
	meshProvider bind_group_provider.BindGroupProvider,
	bindGroup bind_group_provider.BindGroupProvider,
) {
	pass.SetPipeline(p.RenderPipeline())
	pass.SetBindGroup(0, bindGroup.BindGroup(), nil)
	pass.SetVertexBuffer(0, meshProvider.VertexBuffer(), 0, wgpu.WholeSize)
	pass.SetIndexBuffer(meshProvider.IndexBuffer(), wgpu.IndexFormatUint32, 0, wgpu.WholeSize)
	pass.DrawIndexed(uint32(meshProvider.IndexCount()), 1, 0, 0, 0)
}

func (b *wgpuRendererBackendImpl) submit(encoder *wgpu.CommandEncoder) error {
	commandBuffer, err := encoder.Finish(nil)
	if err != nil {
		return fmt.Errorf("failed to finish command encoder: %w", err)
	}
	b.queue.Submit(commandBuffer)
	commandBuffer.Release()
	return nil
}

func (b *wgpuRendererBackendImpl) Readback(t RenderTarget, name string) (*common.Texture, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	wt, err := b.target(t)
	if err != nil {
		return nil, err
	}

	// Buffer rows must be padded to the copy alignment; the padding is stripped below.
	unpaddedRow := uint64(wt.width * 4)
	align := uint64(wgpu.CopyBytesPerRowAlignment)
	paddedRow := (unpaddedRow + align - 1) / align * align
	size := paddedRow * uint64(wt.height)

	buf, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: name + " Readback Buffer",
		Size:  size,
		Usage: wgpu.BufferUsageMapRead | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create readback buffer: %w", err)
	}
	defer buf.Release()

	encoder, err := b.device.CreateCommandEncoder(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create command encoder: %w", err)
	}
	defer encoder.Release()

	encoder.CopyTextureToBuffer(
		&wgpu.ImageCopyTexture{
			Texture:  wt.texture,
			MipLevel: 0,
			Origin:   wgpu.Origin3D{},
			Aspect:   wgpu.TextureAspectAll,
		},
		&wgpu.ImageCopyBuffer{
			Buffer: buf,
			Layout: wgpu.TextureDataLayout{
				Offset:       0,
				BytesPerRow:  uint32(paddedRow),
				RowsPerImage: uint32(wt.height),
			},
		},
		&wgpu.Extent3D{
			Width:              uint32(wt.width),
			Height:             uint32(wt.height),
			DepthOrArrayLayers: 1,
		},
	)
	if err := b.submit(encoder); err != nil {
		return nil, err
	}

	var status wgpu.BufferMapAsyncStatus
	err = buf.MapAsync(wgpu.MapModeRead, 0, size, func(s wgpu.BufferMapAsyncStatus) {
		status = s
	})
	if err != nil {
		return nil, fmt.Errorf("failed to map readback buffer: %w", err)
	}
	b.device.Poll(true, nil)
	if status != wgpu.BufferMapAsyncStatusSuccess {
		return nil, errors.New("readback buffer map was not successful")
	}

	mapped := buf.GetMappedRange(0, uint(size))
	pix := make([]byte, int(unpaddedRow)*wt.height)
	for y := 0; y < wt.height; y++ {
		src := uint64(y) * paddedRow
		copy(pix[uint64(y)*unpaddedRow:], mapped[src:src+unpaddedRow])
	}
	buf.Unmap()

	return common.NewTexture(name, wt.width, wt.height, pix)
}

// pipeline returns the cached pipeline for a shader key, creating the GPU objects on first use.
func (b *wgpuRendererBackendImpl) pipeline(key shader.Key, format wgpu.TextureFormat) (pipeline.Pipeline, error) {
	if p, ok := b.pipelines[key]; ok {
		return p, nil
	}

	var p pipeline.Pipeline
	if key == shader.KeyDisplay {
		p = pipeline.NewDisplayPipeline(format)
	} else {
		p = pipeline.NewPipeline(key, pipeline.WithColorFormat(format))
	}
	if err := b.registerRenderPipeline(p); err != nil {
		return nil, fmt.Errorf("failed to create pipeline %q: %w", key, err)
	}
	b.pipelines[key] = p
	return p, nil
}

// bindGroupLayoutEntries describes group 0 of each shader.
func bindGroupLayoutEntries(key shader.Key) []wgpu.BindGroupLayoutEntry {
	uniform := func(binding uint32, visibility wgpu.ShaderStage) wgpu.BindGroupLayoutEntry {
		entry := wgpu.BindGroupLayoutEntry{Binding: binding, Visibility: visibility}
		entry.Buffer.Type = wgpu.BufferBindingTypeUniform
		return entry
	}
	texture := func(binding uint32) wgpu.BindGroupLayoutEntry {
		entry := wgpu.BindGroupLayoutEntry{Binding: binding, Visibility: wgpu.ShaderStageFragment}
		entry.Texture.SampleType = wgpu.TextureSampleTypeFloat
		entry.Texture.ViewDimension = wgpu.TextureViewDimension2D
		entry.Texture.Multisampled = false
		return entry
	}
	sampler := func(binding uint32) wgpu.BindGroupLayoutEntry {
		entry := wgpu.BindGroupLayoutEntry{Binding: binding, Visibility: wgpu.ShaderStageFragment}
		entry.Sampler.Type = wgpu.SamplerBindingTypeFiltering
		return entry
	}

	if key == shader.KeyDisplay {
		return []wgpu.BindGroupLayoutEntry{
			uniform(bindingObject, wgpu.ShaderStageVertex),
			texture(bindingBaseMap),
			sampler(bindingDisplaySampler),
		}
	}
	return []wgpu.BindGroupLayoutEntry{
		uniform(bindingParams, wgpu.ShaderStageVertex|wgpu.ShaderStageFragment),
		texture(bindingMainTex),
		texture(bindingDecalTex),
		sampler(bindingSampler),
	}
}

func (b *wgpuRendererBackendImpl) registerRenderPipeline(p pipeline.Pipeline) error {
	sh, err := shader.Lookup(p.Key())
	if err != nil {
		return err
	}

	module, err := b.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label: string(sh.Key()),
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{
			Code: sh.Source(),
		},
	})
	if err != nil {
		return err
	}
	defer module.Release()

	layout, err := b.device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label:   string(p.Key()) + " Bind Group Layout",
		Entries: bindGroupLayoutEntries(p.Key()),
	})
	if err != nil {
		return fmt.Errorf("failed to create bind group layout: %w", err)
	}
	p.SetBindGroupLayout(layout)

	pipelineLayout, err := b.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            string(p.Key()),
		BindGroupLayouts: []*wgpu.BindGroupLayout{layout},
	})
	if err != nil {
		return err
	}
	defer pipelineLayout.Release()

	colorTarget := wgpu.ColorTargetState{
		Format:    p.ColorFormat(),
		WriteMask: p.WriteMask(),
	}
	if p.BlendEnabled() {
		colorTarget.Blend = p.BlendState()
	}

	var depthStencil *wgpu.DepthStencilState
	if p.DepthTestEnabled() {
		depthStencil = &wgpu.DepthStencilState{
			Format:            wgpu.TextureFormatDepth24Plus,
			DepthWriteEnabled: p.DepthWriteEnabled(),
			DepthCompare:      wgpu.CompareFunctionLess,
			StencilFront: wgpu.StencilFaceState{
				Compare: wgpu.CompareFunctionAlways,
			},
			StencilBack: wgpu.StencilFaceState{
				Compare: wgpu.CompareFunctionAlways,
			},
		}
	}

	created, err := b.device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  string(p.Key()) + " Render Pipeline",
		Layout: pipelineLayout,
		Vertex: wgpu.VertexState{
			Module:     module,
			EntryPoint: shader.VertexEntryPoint,
			Buffers: []wgpu.VertexBufferLayout{
				{
					ArrayStride: model.GPUVertexStride,
					StepMode:    wgpu.VertexStepModeVertex,
					Attributes: []wgpu.VertexAttribute{
						{Format: wgpu.VertexFormatFloat32x3, Offset: 0, ShaderLocation: 0},
						{Format: wgpu.VertexFormatFloat32x2, Offset: 12, ShaderLocation: 1},
					},
				},
			},
		},
		Fragment: &wgpu.FragmentState{
			Module:     module,
			EntryPoint: shader.FragmentEntryPoint,
			Targets:    []wgpu.ColorTargetState{colorTarget},
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  p.Topology(),
			FrontFace: p.FrontFace(),
			CullMode:  p.CullMode(),
		},
		Multisample: wgpu.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
		DepthStencil: depthStencil,
	})
	if err != nil {
		return err
	}
	p.SetRenderPipeline(created)
	return nil
}

// meshProvider returns the vertex and index buffers of a mesh, uploading them on first use.
func (b *wgpuRendererBackendImpl) meshProvider(mesh model.Model) (bind_group_provider.BindGroupProvider, error) {
	if p, ok := b.meshes[mesh]; ok {
		return p, nil
	}
	if err := mesh.Validate(); err != nil {
		return nil, err
	}

	provider := bind_group_provider.NewBindGroupProvider(mesh.Name())
	vertexData := mesh.VertexData()
	indexData := mesh.IndexData()

	vertex, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: mesh.Name() + " Vertex Buffer",
		Size:  uint64(len(vertexData)),
		Usage: wgpu.BufferUsageVertex | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, err
	}
	b.queue.WriteBuffer(vertex, 0, vertexData)

	index, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: mesh.Name() + " Index Buffer",
		Size:  uint64(len(indexData)),
		Usage: wgpu.BufferUsageIndex | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		vertex.Release()
		return nil, err
	}
	b.queue.WriteBuffer(index, 0, indexData)

	provider.SetMesh(vertex, index, mesh.IndexCount())
	b.meshes[mesh] = provider
	return provider, nil
}

// materialProvider returns the bind group of an offscreen material, rebuilding it when the material changed.
func (b *wgpuRendererBackendImpl) materialProvider(mat material.Material, p pipeline.Pipeline) (bind_group_provider.BindGroupProvider, error) {
	provider, ok := b.materials[mat]
	if ok && provider.SourceVersion() == mat.Version() && provider.BindGroup() != nil {
		return provider, nil
	}
	if !ok {
		provider = bind_group_provider.NewBindGroupProvider(mat.Name(),
			bind_group_provider.WithSampler(bindingSampler, b.sampler))
		b.materials[mat] = provider
	}

	var params material.GPUDrawParams
	if err := b.ensureUniformBuffer(provider, bindingParams, uint64(params.Size())); err != nil {
		return nil, err
	}
	u := mat.Uniforms()
	if err := b.bindTexture(provider, bindingMainTex, u.Texture(shader.UniformMainTex)); err != nil {
		return nil, err
	}
	if err := b.bindTexture(provider, bindingDecalTex, u.Texture(shader.UniformDecalTex)); err != nil {
		return nil, err
	}

	bg, err := b.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  mat.Name() + " Bind Group",
		Layout: p.BindGroupLayout(),
		Entries: []wgpu.BindGroupEntry{
			{Binding: bindingParams, Buffer: provider.Buffer(bindingParams), Offset: 0, Size: wgpu.WholeSize},
			{Binding: bindingMainTex, TextureView: provider.TextureView(bindingMainTex)},
			{Binding: bindingDecalTex, TextureView: provider.TextureView(bindingDecalTex)},
			{Binding: bindingSampler, Sampler: provider.Sampler(bindingSampler)},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create bind group for %q: %w", mat.Name(), err)
	}
	provider.SetBindGroup(bg)
	provider.SetSourceVersion(mat.Version())
	return provider, nil
}

// displayProvider returns the bind group for one on-screen object.
func (b *wgpuRendererBackendImpl) displayProvider(key displaySlot, p pipeline.Pipeline) (bind_group_provider.BindGroupProvider, error) {
	provider, ok := b.displays[key]
	if ok && provider.SourceVersion() == key.mat.Version() && provider.BindGroup() != nil {
		return provider, nil
	}
	if !ok {
		provider = bind_group_provider.NewBindGroupProvider(key.mat.Name(),
			bind_group_provider.WithSampler(bindingDisplaySampler, b.sampler))
		b.displays[key] = provider
	}

	var object material.GPUObjectData
	if err := b.ensureUniformBuffer(provider, bindingObject, uint64(object.Size())); err != nil {
		return nil, err
	}
	if err := b.bindTexture(provider, bindingBaseMap, key.mat.Texture(shader.UniformBaseMap)); err != nil {
		return nil, err
	}

	bg, err := b.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  key.mat.Name() + " Display Bind Group",
		Layout: p.BindGroupLayout(),
		Entries: []wgpu.BindGroupEntry{
			{Binding: bindingObject, Buffer: provider.Buffer(bindingObject), Offset: 0, Size: wgpu.WholeSize},
			{Binding: bindingBaseMap, TextureView: provider.TextureView(bindingBaseMap)},
			{Binding: bindingDisplaySampler, Sampler: provider.Sampler(bindingDisplaySampler)},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create display bind group for %q: %w", key.mat.Name(), err)
	}
	provider.SetBindGroup(bg)
	provider.SetSourceVersion(key.mat.Version())
	return provider, nil
}

func (b *wgpuRendererBackendImpl) ensureUniformBuffer(provider bind_group_provider.BindGroupProvider, binding int, size uint64) error {
	if provider.Buffer(binding) != nil {
		return nil
	}
	buf, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: provider.Label() + " Uniform Buffer",
		Size:  size,
		Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("failed to create uniform buffer: %w", err)
	}
	provider.SetBuffer(binding, buf)
	return nil
}

// bindTexture uploads tex for a binding, or binds the shared white texture when tex is nil.
func (b *wgpuRendererBackendImpl) bindTexture(provider bind_group_provider.BindGroupProvider, binding int, tex *common.Texture) error {
	if tex == nil {
		provider.SetTextureView(binding, b.whiteView)
		return nil
	}
	gpuTex, view, err := b.uploadTexture(tex)
	if err != nil {
		return err
	}
	provider.SetTexture(binding, gpuTex, view)
	return nil
}

func (b *wgpuRendererBackendImpl) uploadTexture(tex *common.Texture) (*wgpu.Texture, *wgpu.TextureView, error) {
	width, height := uint32(tex.Width()), uint32(tex.Height())
	gpuTex, err := b.device.CreateTexture(&wgpu.TextureDescriptor{
		Label:     tex.Name(),
		Usage:     wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopyDst,
		Dimension: wgpu.TextureDimension2D,
		Size: wgpu.Extent3D{
			Width:              width,
			Height:             height,
			DepthOrArrayLayers: 1,
		},
		Format:        targetFormat,
		MipLevelCount: 1,
		SampleCount:   1,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create texture %q: %w", tex.Name(), err)
	}

	b.queue.WriteTexture(
		&wgpu.ImageCopyTexture{
			Texture:  gpuTex,
			MipLevel: 0,
			Origin:   wgpu.Origin3D{},
			Aspect:   wgpu.TextureAspectAll,
		},
		tex.Pixels(),
		&wgpu.TextureDataLayout{
			Offset:       0,
			BytesPerRow:  width * 4,
			RowsPerImage: height,
		},
		&wgpu.Extent3D{
			Width:              width,
			Height:             height,
			DepthOrArrayLayers: 1,
		},
	)

	view, err := gpuTex.CreateView(nil)
	if err != nil {
		gpuTex.Release()
		return nil, nil, fmt.Errorf("failed to create view for %q: %w", tex.Name(), err)
	}
	return gpuTex, view, nil
}

// configureSurface (re)configures the surface and its depth texture.
func (b *wgpuRendererBackendImpl) configureSurface(width, height int) error {
	capabilities := b.surface.GetCapabilities(b.adapter)
	if len(capabilities.Formats) == 0 {
		return ErrNoSurface
	}
	b.surfaceFormat = capabilities.Formats[0]

	b.surface.Configure(b.adapter, b.device, &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      b.surfaceFormat,
		Width:       uint32(width),
		Height:      uint32(height),
		PresentMode: b.presentMode,
		AlphaMode:   capabilities.AlphaModes[0],
	})

	if b.depthTextureView != nil {
		b.depthTextureView.Release()
		b.depthTexture.Release()
	}
	depthTexture, err := b.device.CreateTexture(&wgpu.TextureDescriptor{
		Label: "Depth Texture",
		Size: wgpu.Extent3D{
			Width:              uint32(width),
			Height:             uint32(height),
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        wgpu.TextureFormatDepth24Plus,
		Usage:         wgpu.TextureUsageRenderAttachment,
	})
	if err != nil {
		return fmt.Errorf("failed to create depth texture: %w", err)
	}
	b.depthTexture = depthTexture
	b.depthTextureView, err = depthTexture.CreateView(nil)
	if err != nil {
		return fmt.Errorf("failed to create depth view: %w", err)
	}
	b.surfaceWidth, b.surfaceHeight = width, height
	return nil
}

func (b *wgpuRendererBackendImpl) Resize(width, height int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.surface == nil || width <= 0 || height <= 0 {
		return
	}
	if err := b.configureSurface(width, height); err != nil {
		common.ComponentLogger("renderer.wgpu").Error("resize failed", "error", err)
	}
}

func (b *wgpuRendererBackendImpl) Present(cam camera.Camera, draws []DisplayDraw) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.surface == nil || b.depthTextureView == nil {
		return ErrNoSurface
	}

	p, err := b.pipeline(shader.KeyDisplay, b.surfaceFormat)
	if err != nil {
		return err
	}

	type preparedDraw struct {
		mesh   bind_group_provider.BindGroupProvider
		object bind_group_provider.BindGroupProvider
	}
	prepared := make([]preparedDraw, 0, len(draws))
	viewProj := clipDepthRemap.Mul4(cam.ViewProjectionMatrix())
	for i, d := range draws {
		if d.Mesh == nil || d.Material == nil {
			continue
		}
		meshProvider, err := b.meshProvider(d.Mesh)
		if err != nil {
			return err
		}
		objProvider, err := b.displayProvider(displaySlot{mat: d.Material, slot: i}, p)
		if err != nil {
			return err
		}
		object := material.GPUObjectData{MVP: [16]float32(viewProj.Mul4(d.Model))}
		bind_group_provider.WriteBuffers(b.queue, []bind_group_provider.BufferWrite{
			{Provider: objProvider, Binding: bindingObject, Data: object.Marshal()},
		})
		prepared = append(prepared, preparedDraw{mesh: meshProvider, object: objProvider})
	}

	surfaceTexture, err := b.surface.GetCurrentTexture()
	if err != nil {
		return err
	}
	defer surfaceTexture.Release()

	view, err := surfaceTexture.CreateView(nil)
	if err != nil {
		return err
	}
	defer view.Release()

	encoder, err := b.device.CreateCommandEncoder(nil)
	if err != nil {
		return err
	}
	defer encoder.Release()

	pass := encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{
			{
				View:    view,
				LoadOp:  wgpu.LoadOpClear,
				StoreOp: wgpu.StoreOpStore,
				ClearValue: wgpu.Color{
					R: 0.1, G: 0.1, B: 0.1, A: 1.0,
				},
			},
		},
		DepthStencilAttachment: &wgpu.RenderPassDepthStencilAttachment{
			View:            b.depthTextureView,
			DepthLoadOp:     wgpu.LoadOpClear,
			DepthStoreOp:    wgpu.StoreOpDiscard,
			DepthClearValue: 1.0,
		},
	})
	for _, d := range prepared {
		b.drawIndexed(pass, p, d.mesh, d.object)
	}
	pass.End()
	pass.Release()

	if err := b.submit(encoder); err != nil {
		return err
	}
	b.surface.Present()
	return nil
}

func (b *wgpuRendererBackendImpl) Release() {
	b.mu.Lock()
	defer b.mu.Unlock()

	for t := range b.targets {
		b.releaseTarget(t)
	}
	for k, p := range b.materials {
		p.Release()
		delete(b.materials, k)
	}
	for k, p := range b.displays {
		p.Release()
		delete(b.displays, k)
	}
	for k, p := range b.meshes {
		p.Release()
		delete(b.meshes, k)
	}
	for k, p := range b.pipelines {
		p.Release()
		delete(b.pipelines, k)
	}
	if b.whiteView != nil {
		b.whiteView.Release()
		b.white.Release()
		b.whiteView, b.white = nil, nil
	}
	if b.sampler != nil {
		b.sampler.Release()
		b.sampler = nil
	}
	if b.depthTextureView != nil {
		b.depthTextureView.Release()
		b.depthTexture.Release()
		b.depthTextureView, b.depthTexture = nil, nil
	}
	if b.queue != nil {
		b.queue.Release()
		b.queue = nil
	}
	if b.device != nil {
		b.device.Release()
		b.device = nil
	}
	if b.adapter != nil {
		b.adapter.Release()
		b.adapter = nil
	}
	if b.surface != nil {
		b.surface.Release()
		b.surface = nil
	}
	if b.instance != nil {
		b.instance.Release()
		b.instance = nil
	}
}
