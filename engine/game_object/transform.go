package game_object

import "github.com/go-gl/mathgl/mgl32"

// Transform is a position, orientation and scale. Local forward is +Z, up is +Y and right is +X.
type Transform struct {
	Position mgl32.Vec3
	Rotation mgl32.Quat
	Scale    mgl32.Vec3
}

// NewTransform returns the identity transform at the given position.
//
// Parameters:
//   - position: the world-space position
//
// Returns:
//   - Transform: the transform
func NewTransform(position mgl32.Vec3) Transform {
	return Transform{
		Position: position,
		Rotation: mgl32.QuatIdent(),
		Scale:    mgl32.Vec3{1, 1, 1},
	}
}

// Forward returns the world-space direction of local +Z.
func (t Transform) Forward() mgl32.Vec3 {
	return t.Rotation.Rotate(mgl32.Vec3{0, 0, 1})
}

// Up returns the world-space direction of local +Y.
func (t Transform) Up() mgl32.Vec3 {
	return t.Rotation.Rotate(mgl32.Vec3{0, 1, 0})
}

// Right returns the world-space direction of local +X.
func (t Transform) Right() mgl32.Vec3 {
	return t.Rotation.Rotate(mgl32.Vec3{1, 0, 0})
}

// RotateWorld returns the transform rotated by degrees around a world-space axis through its position.
//
// Parameters:
//   - axis: the world-space rotation axis
//   - degrees: the rotation angle
//
// Returns:
//   - Transform: the rotated transform
func (t Transform) RotateWorld(axis mgl32.Vec3, degrees float32) Transform {
	if axis.Len() == 0 {
		return t
	}
	q := mgl32.QuatRotate(mgl32.DegToRad(degrees), axis.Normalize())
	t.Rotation = q.Mul(t.Rotation).Normalize()
	return t
}

// Matrix returns the model-to-world matrix: translate, then rotate, then scale.
func (t Transform) Matrix() mgl32.Mat4 {
	return mgl32.Translate3D(t.Position.X(), t.Position.Y(), t.Position.Z()).
		Mul4(t.Rotation.Mat4()).
		Mul4(mgl32.Scale3D(t.Scale.X(), t.Scale.Y(), t.Scale.Z()))
}
