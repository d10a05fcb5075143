// Package surface answers ray queries against the painted scene. Every hit is tagged with a closed SurfaceRole
// so consumers can route it to the right shader channel without string tags.
package surface

import (
	"github.com/Carmen-Shannon/oxy-paint/engine/model"
	"github.com/go-gl/mathgl/mgl32"
)

// SurfaceRole classifies what a ray hit.
type SurfaceRole int

const (
	// RoleOther is any paintable surface that is not a projector.
	RoleOther SurfaceRole = iota
	// RoleProjector is the movable projector object used for UV projection.
	RoleProjector
)

// String returns the name of the role.
func (r SurfaceRole) String() string {
	switch r {
	case RoleProjector:
		return "projector"
	default:
		return "other"
	}
}

// Hit is a single ray intersection.
type Hit struct {
	// Collider is the name of the collider that was hit.
	Collider string
	// Role classifies the hit surface.
	Role SurfaceRole
	// UV is the interpolated texture coordinate at the hit point.
	UV mgl32.Vec2
	// Point is the world-space hit position.
	Point mgl32.Vec3
	// Distance is the world-space distance from the ray origin.
	Distance float32
}

// Query is anything that can answer ray casts against the scene.
type Query interface {
	// Raycast returns every surface hit along the ray within maxDistance.
	// Pass math32.Inf(1) for an unbounded ray.
	//
	// Parameters:
	//   - origin: the world-space ray origin
	//   - direction: the ray direction, not necessarily normalized
	//   - maxDistance: the maximum world-space distance to report
	//
	// Returns:
	//   - []Hit: at most one hit per collider, in collider registration order
	Raycast(origin, direction mgl32.Vec3, maxDistance float32) []Hit
}

// QueryFunc adapts a function to the Query interface.
type QueryFunc func(origin, direction mgl32.Vec3, maxDistance float32) []Hit

// Raycast calls f.
func (f QueryFunc) Raycast(origin, direction mgl32.Vec3, maxDistance float32) []Hit {
	return f(origin, direction, maxDistance)
}

// Collider is a triangle mesh placed in the world that rays can hit.
type Collider interface {
	// Name returns the identifier reported in hits.
	Name() string
	// Role returns the classification reported in hits.
	Role() SurfaceRole
	// Mesh returns the model-space triangle mesh.
	Mesh() model.Model
	// Matrix returns the current model-to-world transform.
	Matrix() mgl32.Mat4
}

type meshCollider struct {
	name   string
	role   SurfaceRole
	mesh   model.Model
	matrix mgl32.Mat4
}

// NewMeshCollider creates a static collider with a fixed transform.
//
// Parameters:
//   - name: the collider identifier
//   - role: the classification reported in hits
//   - mesh: the model-space mesh
//   - matrix: the model-to-world transform
//
// Returns:
//   - Collider: the static collider
func NewMeshCollider(name string, role SurfaceRole, mesh model.Model, matrix mgl32.Mat4) Collider {
	return &meshCollider{name: name, role: role, mesh: mesh, matrix: matrix}
}

func (c *meshCollider) Name() string       { return c.name }
func (c *meshCollider) Role() SurfaceRole  { return c.role }
func (c *meshCollider) Mesh() model.Model  { return c.mesh }
func (c *meshCollider) Matrix() mgl32.Mat4 { return c.matrix }
