package renderpass

import (
	"github.com/Carmen-Shannon/oxy-paint/engine/model"
	"github.com/Carmen-Shannon/oxy-paint/engine/renderer"
	"github.com/Carmen-Shannon/oxy-paint/engine/renderer/material"
)

// FeatureBuilderOption is a functional option applied to a feature during construction via NewFeature.
type FeatureBuilderOption func(*feature)

// WithFeatureName sets the feature name.
//
// Parameters:
//   - name: the feature name
//
// Returns:
//   - FeatureBuilderOption: a function that applies the name option to a feature
func WithFeatureName(name string) FeatureBuilderOption {
	return func(f *feature) {
		f.name = name
	}
}

// WithDrawMesh sets the initial draw mesh.
//
// Parameters:
//   - m: the mesh
//
// Returns:
//   - FeatureBuilderOption: a function that applies the mesh option to a feature
func WithDrawMesh(m model.Model) FeatureBuilderOption {
	return func(f *feature) {
		f.drawMesh = m
	}
}

// WithDrawMaterial sets the initial draw material.
//
// Parameters:
//   - m: the material
//
// Returns:
//   - FeatureBuilderOption: a function that applies the material option to a feature
func WithDrawMaterial(m material.Material) FeatureBuilderOption {
	return func(f *feature) {
		f.drawMaterial = m
	}
}

// WithBackend gives every pass the feature builds a backend for Capture before the first frame.
//
// Parameters:
//   - b: the backend
//
// Returns:
//   - FeatureBuilderOption: a function that applies the backend option to a feature
func WithBackend(b renderer.Backend) FeatureBuilderOption {
	return func(f *feature) {
		f.backend = b
	}
}
