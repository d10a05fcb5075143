package projector

import (
	"github.com/Carmen-Shannon/oxy-paint/common"
	"github.com/Carmen-Shannon/oxy-paint/engine/capture"
	"github.com/Carmen-Shannon/oxy-paint/engine/game_object"
	"github.com/Carmen-Shannon/oxy-paint/engine/input"
	"github.com/Carmen-Shannon/oxy-paint/engine/renderer"
	"github.com/Carmen-Shannon/oxy-paint/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-paint/engine/surface"
)

// ProjectorBuilderOption is a functional option for configuring a Projector.
type ProjectorBuilderOption func(*projector)

// WithRenderer sets the renderer that owns the paint render feature.
//
// Parameters:
//   - r: the renderer
//
// Returns:
//   - ProjectorBuilderOption: a function that applies the renderer option
func WithRenderer(r renderer.Renderer) ProjectorBuilderOption {
	return func(p *projector) {
		p.renderer = r
	}
}

// WithSurfaceQuery sets the query the corner rays are cast against.
//
// Parameters:
//   - q: the surface query
//
// Returns:
//   - ProjectorBuilderOption: a function that applies the query option
func WithSurfaceQuery(q surface.Query) ProjectorBuilderOption {
	return func(p *projector) {
		p.query = q
	}
}

// WithInput sets the input source polled for the reset key.
//
// Parameters:
//   - in: the input source
//
// Returns:
//   - ProjectorBuilderOption: a function that applies the input option
func WithInput(in input.Source) ProjectorBuilderOption {
	return func(p *projector) {
		p.input = in
	}
}

// WithProjectorObject sets the projector object. Its material is the visualiser that receives
// the projector rectangle, and its role is set to surface.RoleProjector on Start.
//
// Parameters:
//   - obj: the projector object
//
// Returns:
//   - ProjectorBuilderOption: a function that applies the projector object option
func WithProjectorObject(obj game_object.GameObject) ProjectorBuilderOption {
	return func(p *projector) {
		p.object = obj
	}
}

// WithTargetObject sets the painted object. Its mesh is drawn and its material displays the result.
//
// Parameters:
//   - obj: the target object
//
// Returns:
//   - ProjectorBuilderOption: a function that applies the target object option
func WithTargetObject(obj game_object.GameObject) ProjectorBuilderOption {
	return func(p *projector) {
		p.target = obj
	}
}

// WithDrawMaterial sets the material drawn into the target.
//
// Parameters:
//   - m: the draw material
//
// Returns:
//   - ProjectorBuilderOption: a function that applies the draw material option
func WithDrawMaterial(m material.Material) ProjectorBuilderOption {
	return func(p *projector) {
		p.drawMaterial = m
	}
}

// WithBaseTexture sets the texture the target starts from. It also sizes the render target.
//
// Parameters:
//   - tex: the base texture
//
// Returns:
//   - ProjectorBuilderOption: a function that applies the base texture option
func WithBaseTexture(tex *common.Texture) ProjectorBuilderOption {
	return func(p *projector) {
		p.baseTexture = tex
	}
}

// WithParams sets the initial geometry.
//
// Parameters:
//   - params: the geometry
//
// Returns:
//   - ProjectorBuilderOption: a function that applies the params option
func WithParams(params Params) ProjectorBuilderOption {
	return func(p *projector) {
		p.params = params
	}
}

// WithCaptureWriter persists every consumed texture.
//
// Parameters:
//   - w: the capture writer
//
// Returns:
//   - ProjectorBuilderOption: a function that applies the writer option
func WithCaptureWriter(w capture.Writer) ProjectorBuilderOption {
	return func(p *projector) {
		p.writer = w
	}
}

// WithDefaultDim sets the square target size used without a base texture.
//
// Parameters:
//   - dim: the size in pixels, values below 1 are ignored
//
// Returns:
//   - ProjectorBuilderOption: a function that applies the size option
func WithDefaultDim(dim int) ProjectorBuilderOption {
	return func(p *projector) {
		if dim > 0 {
			p.defaultDim = dim
		}
	}
}

// WithProjectOnStart schedules a projection for the first update.
//
// Parameters:
//   - enabled: whether to project on the first update
//
// Returns:
//   - ProjectorBuilderOption: a function that applies the option
func WithProjectOnStart(enabled bool) ProjectorBuilderOption {
	return func(p *projector) {
		p.projectOnStart = enabled
	}
}
