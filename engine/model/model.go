package model

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// model is the implementation of the Model interface.
type model struct {
	name      string
	positions []mgl32.Vec3
	uvs       []mgl32.Vec2
	indices   []uint32
}

// Model defines the interface for an indexed triangle mesh with one UV channel.
// A Model is immutable once built; generators and the surface world share instances freely.
type Model interface {
	// Name retrieves the model identifier.
	//
	// Returns:
	//   - string: the model name
	Name() string

	// Positions returns the model-space vertex positions.
	//
	// Returns:
	//   - []mgl32.Vec3: the vertex positions
	Positions() []mgl32.Vec3

	// UVs returns the per-vertex texture coordinates, parallel to Positions.
	//
	// Returns:
	//   - []mgl32.Vec2: the texture coordinates
	UVs() []mgl32.Vec2

	// Indices returns the triangle list indices, three per triangle.
	//
	// Returns:
	//   - []uint32: the index list
	Indices() []uint32

	// TriangleCount returns the number of triangles in the mesh.
	//
	// Returns:
	//   - int: the triangle count
	TriangleCount() int

	// Triangle returns the vertex indices of triangle i.
	//
	// Parameters:
	//   - i: the triangle index
	//
	// Returns:
	//   - [3]uint32: the three vertex indices
	Triangle(i int) [3]uint32

	// VertexData returns the interleaved GPU vertex buffer contents (see GPUVertex).
	//
	// Returns:
	//   - []byte: the vertex data
	VertexData() []byte

	// IndexData returns the little-endian uint32 index buffer contents.
	//
	// Returns:
	//   - []byte: the index data
	IndexData() []byte

	// IndexCount returns the number of indices in the mesh.
	//
	// Returns:
	//   - int: the index count
	IndexCount() int

	// Validate checks that the mesh is drawable: matching attribute counts, a whole number of
	// triangles and every index in range.
	//
	// Returns:
	//   - error: the first problem found, or nil
	Validate() error
}

var _ Model = &model{}

// NewModel creates a new Model instance with the specified options applied.
//
// Parameters:
//   - options: a variadic list of ModelBuilderOption functions to configure the Model
//
// Returns:
//   - Model: a new instance of Model configured with the provided options
func NewModel(options ...ModelBuilderOption) Model {
	m := &model{}
	for _, opt := range options {
		opt(m)
	}
	return m
}

func (m *model) Name() string {
	return m.name
}

func (m *model) Positions() []mgl32.Vec3 {
	return m.positions
}

func (m *model) UVs() []mgl32.Vec2 {
	return m.uvs
}

func (m *model) Indices() []uint32 {
	return m.indices
}

func (m *model) TriangleCount() int {
	return len(m.indices) / 3
}

func (m *model) Triangle(i int) [3]uint32 {
	return [3]uint32{m.indices[i*3], m.indices[i*3+1], m.indices[i*3+2]}
}

func (m *model) VertexData() []byte {
	buf := make([]byte, 0, len(m.positions)*GPUVertexStride)
	for i, p := range m.positions {
		var uv mgl32.Vec2
		if i < len(m.uvs) {
			uv = m.uvs[i]
		}
		v := GPUVertex{Position: p, TexCoord: uv}
		buf = append(buf, v.Marshal()...)
	}
	return buf
}

func (m *model) IndexData() []byte {
	return marshalIndices(m.indices)
}

func (m *model) IndexCount() int {
	return len(m.indices)
}

func (m *model) Validate() error {
	if len(m.positions) == 0 {
		return fmt.Errorf("model %s has no vertices", m.name)
	}
	if len(m.uvs) != len(m.positions) {
		return fmt.Errorf("model %s has %d uvs for %d vertices", m.name, len(m.uvs), len(m.positions))
	}
	if len(m.indices) == 0 || len(m.indices)%3 != 0 {
		return fmt.Errorf("model %s index count %d is not a positive multiple of 3", m.name, len(m.indices))
	}
	for _, idx := range m.indices {
		if int(idx) >= len(m.positions) {
			return fmt.Errorf("model %s index %d out of range", m.name, idx)
		}
	}
	return nil
}
