package paint

import (
	"github.com/Carmen-Shannon/oxy-paint/common"
	"github.com/Carmen-Shannon/oxy-paint/engine/camera"
	"github.com/Carmen-Shannon/oxy-paint/engine/capture"
	"github.com/Carmen-Shannon/oxy-paint/engine/game_object"
	"github.com/Carmen-Shannon/oxy-paint/engine/input"
	"github.com/Carmen-Shannon/oxy-paint/engine/renderer"
	"github.com/Carmen-Shannon/oxy-paint/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-paint/engine/surface"
)

// AccumulatorBuilderOption is a functional option for configuring an Accumulator.
type AccumulatorBuilderOption func(*accumulator)

// WithRenderer sets the renderer that owns the paint render feature.
func WithRenderer(r renderer.Renderer) AccumulatorBuilderOption {
	return func(a *accumulator) {
		a.renderer = r
	}
}

// WithCamera sets the camera pointer rays are cast from.
func WithCamera(cam camera.Camera) AccumulatorBuilderOption {
	return func(a *accumulator) {
		a.cam = cam
	}
}

// WithInput sets the input source polled for the paint button.
func WithInput(in input.Source) AccumulatorBuilderOption {
	return func(a *accumulator) {
		a.input = in
	}
}

// WithSurfaceQuery sets the query pointer rays are cast against.
func WithSurfaceQuery(q surface.Query) AccumulatorBuilderOption {
	return func(a *accumulator) {
		a.query = q
	}
}

// WithTargetObject sets the painted object. Its mesh is drawn and its material displays the result.
func WithTargetObject(obj game_object.GameObject) AccumulatorBuilderOption {
	return func(a *accumulator) {
		a.target = obj
	}
}

// WithDrawMaterial sets the brush material drawn into the target.
func WithDrawMaterial(m material.Material) AccumulatorBuilderOption {
	return func(a *accumulator) {
		a.drawMaterial = m
	}
}

// WithBaseTexture sets the texture strokes accumulate on. It also sizes the render target.
func WithBaseTexture(tex *common.Texture) AccumulatorBuilderOption {
	return func(a *accumulator) {
		a.baseTexture = tex
	}
}

// WithCaptureWriter persists every accumulated texture.
func WithCaptureWriter(w capture.Writer) AccumulatorBuilderOption {
	return func(a *accumulator) {
		a.writer = w
	}
}

// WithDefaultDim sets the square target size used without a base texture. Values below 1 are ignored.
func WithDefaultDim(dim int) AccumulatorBuilderOption {
	return func(a *accumulator) {
		if dim > 0 {
			a.defaultDim = dim
		}
	}
}

// WithButton sets the mouse button that paints.
func WithButton(button int) AccumulatorBuilderOption {
	return func(a *accumulator) {
		a.button = button
	}
}

// WithViewport sets the initial window size used to turn pointer positions into rays.
func WithViewport(width, height int) AccumulatorBuilderOption {
	return func(a *accumulator) {
		if width > 0 && height > 0 {
			a.viewW, a.viewH = width, height
		}
	}
}
