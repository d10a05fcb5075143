package model

import (
	"fmt"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// NewCylinder generates an open cylinder (no caps) centered on the origin with its axis along +Y.
// Each radial subdivision is an independent quad of four vertices so that the UV seam never shares
// vertices: u runs from 0 to 1 around the wrap, v is 0 at the bottom ring and 1 at the top ring.
//
// Parameters:
//   - name: the model identifier
//   - radius: the cylinder radius
//   - length: the cylinder length along Y
//   - degrees: the wrap angle, 360 for a full cylinder
//   - subdivisions: the number of radial segments
//
// Returns:
//   - Model: the generated mesh
//   - error: error if any dimension is not positive
func NewCylinder(name string, radius, length, degrees float32, subdivisions int) (Model, error) {
	if radius <= 0 || length <= 0 || degrees <= 0 || subdivisions <= 0 {
		return nil, fmt.Errorf("invalid cylinder radius=%g length=%g degrees=%g subdivisions=%d", radius, length, degrees, subdivisions)
	}

	angleStep := mgl32.DegToRad(degrees) / float32(subdivisions)
	half := 0.5 * length

	positions := make([]mgl32.Vec3, 0, subdivisions*4)
	uvs := make([]mgl32.Vec2, 0, subdivisions*4)
	indices := make([]uint32, 0, subdivisions*6)

	for i := 0; i < subdivisions; i++ {
		a0 := float32(i) * angleStep
		a1 := float32(i+1) * angleStep
		u0 := float32(i) / float32(subdivisions)
		u1 := float32(i+1) / float32(subdivisions)

		positions = append(positions,
			mgl32.Vec3{radius * math32.Cos(a0), -half, radius * math32.Sin(a0)},
			mgl32.Vec3{radius * math32.Cos(a1), -half, radius * math32.Sin(a1)},
			mgl32.Vec3{radius * math32.Cos(a0), half, radius * math32.Sin(a0)},
			mgl32.Vec3{radius * math32.Cos(a1), half, radius * math32.Sin(a1)},
		)
		uvs = append(uvs,
			mgl32.Vec2{u0, 0},
			mgl32.Vec2{u1, 0},
			mgl32.Vec2{u0, 1},
			mgl32.Vec2{u1, 1},
		)

		base := uint32(i * 4)
		indices = append(indices, base, base+1, base+2, base+2, base+1, base+3)
	}

	return NewModel(
		WithName(name),
		WithPositions(positions),
		WithUVs(uvs),
		WithIndices(indices),
	), nil
}

// NewQuad generates a single quad in the XY plane centered on the origin, facing +Z,
// with UVs covering the full [0, 1] range.
//
// Parameters:
//   - name: the model identifier
//   - width: the extent along X
//   - height: the extent along Y
//
// Returns:
//   - Model: the generated mesh
func NewQuad(name string, width, height float32) Model {
	hw, hh := width/2, height/2
	return NewModel(
		WithName(name),
		WithPositions([]mgl32.Vec3{
			{-hw, -hh, 0},
			{hw, -hh, 0},
			{-hw, hh, 0},
			{hw, hh, 0},
		}),
		WithUVs([]mgl32.Vec2{
			{0, 0},
			{1, 0},
			{0, 1},
			{1, 1},
		}),
		WithIndices([]uint32{0, 1, 2, 2, 1, 3}),
	)
}
