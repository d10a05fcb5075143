package model

import "github.com/go-gl/mathgl/mgl32"

// ModelBuilderOption is a functional option for configuring a Model via NewModel.
type ModelBuilderOption func(*model)

// WithName is an option builder that sets the name of the Model.
//
// Parameters:
//   - name: the model identifier
//
// Returns:
//   - ModelBuilderOption: a function that applies the name option to a model
func WithName(name string) ModelBuilderOption {
	return func(m *model) {
		m.name = name
	}
}

// WithPositions is an option builder that sets the model-space vertex positions.
//
// Parameters:
//   - positions: the vertex positions
//
// Returns:
//   - ModelBuilderOption: a function that applies the positions option to a model
func WithPositions(positions []mgl32.Vec3) ModelBuilderOption {
	return func(m *model) {
		m.positions = positions
	}
}

// WithUVs is an option builder that sets the per-vertex texture coordinates.
//
// Parameters:
//   - uvs: the texture coordinates, one per vertex
//
// Returns:
//   - ModelBuilderOption: a function that applies the uvs option to a model
func WithUVs(uvs []mgl32.Vec2) ModelBuilderOption {
	return func(m *model) {
		m.uvs = uvs
	}
}

// WithIndices is an option builder that sets the triangle list indices.
//
// Parameters:
//   - indices: the index list, three per triangle
//
// Returns:
//   - ModelBuilderOption: a function that applies the indices option to a model
func WithIndices(indices []uint32) ModelBuilderOption {
	return func(m *model) {
		m.indices = indices
	}
}
