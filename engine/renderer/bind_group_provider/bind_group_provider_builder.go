package bind_group_provider

import "github.com/cogentcore/webgpu/wgpu"

// BindGroupProviderOption is a functional option for configuring a BindGroupProvider.
type BindGroupProviderOption func(*bindGroupProvider)

// WithBuffer sets a GPU buffer at the given binding index.
//
// Parameters:
//   - binding: the binding index for the buffer
//   - buf: the GPU buffer to set
//
// Returns:
//   - BindGroupProviderOption: a function that applies the buffer to the provider
func WithBuffer(binding int, buf *wgpu.Buffer) BindGroupProviderOption {
	return func(p *bindGroupProvider) {
		p.buffers[binding] = buf
	}
}

// WithSampler sets a shared sampler at the given binding index.
//
// Parameters:
//   - binding: the binding index for the sampler
//   - s: the sampler
//
// Returns:
//   - BindGroupProviderOption: a function that applies the sampler to the provider
func WithSampler(binding int, s *wgpu.Sampler) BindGroupProviderOption {
	return func(p *bindGroupProvider) {
		p.samplers[binding] = s
	}
}

// WithSourceVersion sets the version of the object the provider's resources are built from.
//
// Parameters:
//   - v: the version
//
// Returns:
//   - BindGroupProviderOption: a function that applies the version to the provider
func WithSourceVersion(v uint64) BindGroupProviderOption {
	return func(p *bindGroupProvider) {
		p.sourceVersion = v
	}
}
