package game_object

import (
	"github.com/Carmen-Shannon/oxy-paint/engine/model"
	"github.com/Carmen-Shannon/oxy-paint/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-paint/engine/surface"
	"github.com/go-gl/mathgl/mgl32"
)

// GameObjectBuilderOption is a functional option for configuring a GameObject during construction.
type GameObjectBuilderOption func(*gameObject)

// WithID sets the object's unique identifier.
//
// Parameters:
//   - id: the ID to assign
//
// Returns:
//   - GameObjectBuilderOption: a function that applies the ID option
func WithID(id uint64) GameObjectBuilderOption {
	return func(g *gameObject) {
		g.id = id
	}
}

// WithName sets the name reported in ray hits and logs.
//
// Parameters:
//   - name: the object name
//
// Returns:
//   - GameObjectBuilderOption: a function that applies the name option
func WithName(name string) GameObjectBuilderOption {
	return func(g *gameObject) {
		g.name = name
	}
}

// WithEnabled sets whether the object starts enabled.
//
// Parameters:
//   - enabled: true to enable
//
// Returns:
//   - GameObjectBuilderOption: a function that applies the enabled option
func WithEnabled(enabled bool) GameObjectBuilderOption {
	return func(g *gameObject) {
		g.enabled.Store(enabled)
	}
}

// WithModel sets the object's mesh.
//
// Parameters:
//   - m: the Model to assign
//
// Returns:
//   - GameObjectBuilderOption: a function that applies the model option
func WithModel(m model.Model) GameObjectBuilderOption {
	return func(g *gameObject) {
		g.mdl = m
	}
}

// WithMaterial sets the object's display material.
//
// Parameters:
//   - m: the material
//
// Returns:
//   - GameObjectBuilderOption: a function that applies the material option
func WithMaterial(m material.Material) GameObjectBuilderOption {
	return func(g *gameObject) {
		g.mat = m
	}
}

// WithRole sets the classification reported when rays hit the object.
//
// Parameters:
//   - r: the role
//
// Returns:
//   - GameObjectBuilderOption: a function that applies the role option
func WithRole(r surface.SurfaceRole) GameObjectBuilderOption {
	return func(g *gameObject) {
		g.role = r
	}
}

// WithPosition sets the initial world-space position.
//
// Parameters:
//   - x, y, z: position components
//
// Returns:
//   - GameObjectBuilderOption: a function that applies the position option
func WithPosition(x, y, z float32) GameObjectBuilderOption {
	return func(g *gameObject) {
		g.transform.Position = mgl32.Vec3{x, y, z}
	}
}

// WithRotation sets the initial orientation from Euler angles in degrees, applied Y, then X, then Z.
//
// Parameters:
//   - rx, ry, rz: rotation angles in degrees
//
// Returns:
//   - GameObjectBuilderOption: a function that applies the rotation option
func WithRotation(rx, ry, rz float32) GameObjectBuilderOption {
	return func(g *gameObject) {
		g.transform.Rotation = mgl32.AnglesToQuat(
			mgl32.DegToRad(ry), mgl32.DegToRad(rx), mgl32.DegToRad(rz), mgl32.YXZ)
	}
}

// WithScale sets the initial scale.
//
// Parameters:
//   - sx, sy, sz: scale components
//
// Returns:
//   - GameObjectBuilderOption: a function that applies the scale option
func WithScale(sx, sy, sz float32) GameObjectBuilderOption {
	return func(g *gameObject) {
		g.transform.Scale = mgl32.Vec3{sx, sy, sz}
	}
}

// WithTransform sets the full initial transform.
//
// Parameters:
//   - t: the transform
//
// Returns:
//   - GameObjectBuilderOption: a function that applies the transform option
func WithTransform(t Transform) GameObjectBuilderOption {
	return func(g *gameObject) {
		g.transform = t
	}
}
